package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestFailedDefaultsMessage(t *testing.T) {
	err := RequestFailed(http.StatusInternalServerError, "")
	require.Equal(t, GenericRequestFailure, err.Message)
	require.Equal(t, http.StatusInternalServerError, err.Status)
	assert.True(t, IsRequestFailed(err))
	assert.True(t, IsRequestFailed(fmt.Errorf("login: %w", err)))
}

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clone(ErrValidation, "title is required")
	assert.Equal(t, "title is required", err.Message)
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrRequestFailed)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Nil(t, FromError(nil))
}
