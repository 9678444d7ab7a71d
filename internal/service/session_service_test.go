package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/growth-archive/internal/dto"
	"github.com/noah-isme/growth-archive/internal/tokenstore"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
)

type fakeRemote struct {
	token   string
	delay   time.Duration
	err     error
	revoked chan string
}

func newFakeRemote(token string) *fakeRemote {
	return &fakeRemote{token: token, revoked: make(chan string, 1)}
}

func (f *fakeRemote) Credentials(ctx context.Context) (tokenstore.Credentials, bool) {
	return tokenstore.Credentials{Token: f.token, UserID: "u1"}, f.token != ""
}

func (f *fakeRemote) RevokeToken(ctx context.Context, token string) error {
	time.Sleep(f.delay)
	f.revoked <- token
	return f.err
}

func TestSessionServiceLogin(t *testing.T) {
	sess := newFakeSession()
	svc := NewSessionService(sess, nil, nil, nil)

	_, err := svc.Login(context.Background(), dto.LoginForm{Phone: "13800000000"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.False(t, sess.snap.IsLoggedIn)

	snap, err := svc.Login(context.Background(), dto.LoginForm{Phone: "13800000000", Password: "abc123"})
	require.NoError(t, err)
	assert.True(t, snap.IsLoggedIn)
}

func TestSessionServiceRegisterValidation(t *testing.T) {
	svc := NewSessionService(newFakeSession(), nil, nil, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		form dto.RegisterForm
		msg  string
	}{
		{"short phone", dto.RegisterForm{Phone: "1380000", Password: "abc123", ConfirmPassword: "abc123"}, "Phone must be 11 characters"},
		{"letters in phone", dto.RegisterForm{Phone: "1380000000a", Password: "abc123", ConfirmPassword: "abc123"}, "Phone must be numeric"},
		{"short password", dto.RegisterForm{Phone: "13800000000", Password: "abc", ConfirmPassword: "abc"}, "Password must be at least 6 characters"},
		{"mismatch", dto.RegisterForm{Phone: "13800000000", Password: "abc123", ConfirmPassword: "abc124"}, "ConfirmPassword must match Password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.form)
			require.Error(t, err)
			assert.ErrorIs(t, err, appErrors.ErrValidation)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}

	id, err := svc.Register(ctx, dto.RegisterForm{Phone: "13800000000", Password: "abc123", ConfirmPassword: "abc123"})
	require.NoError(t, err)
	assert.Equal(t, "user-13800000000", id)
}

func TestSessionServiceLogoutIgnoresServerFailure(t *testing.T) {
	sess := newFakeSession()
	sess.snap.IsLoggedIn = true
	remote := newFakeRemote("tok")
	remote.err = errors.New("offline")
	svc := NewSessionService(sess, remote, nil, nil)

	svc.Logout(context.Background())
	svc.Wait()

	assert.Equal(t, "tok", <-remote.revoked)
	assert.True(t, sess.loggedOut)
	assert.False(t, svc.Snapshot().IsLoggedIn)
}

func TestSessionServiceLogoutDoesNotWaitForServer(t *testing.T) {
	sess := newFakeSession()
	sess.snap.IsLoggedIn = true
	remote := newFakeRemote("tok")
	remote.delay = 300 * time.Millisecond
	svc := NewSessionService(sess, remote, nil, nil)

	start := time.Now()
	svc.Logout(context.Background())
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.True(t, sess.loggedOut)
	assert.False(t, svc.Snapshot().IsLoggedIn)

	select {
	case token := <-remote.revoked:
		assert.Equal(t, "tok", token)
	case <-time.After(2 * time.Second):
		t.Fatal("server logout never sent")
	}
	svc.Wait()
}

func TestSessionServiceLogoutWithoutTokenSkipsServer(t *testing.T) {
	sess := newFakeSession()
	remote := newFakeRemote("")
	svc := NewSessionService(sess, remote, nil, nil)

	svc.Logout(context.Background())
	svc.Wait()

	assert.True(t, sess.loggedOut)
	assert.Empty(t, remote.revoked)
}

func TestSessionServiceRefreshReturnsSnapshot(t *testing.T) {
	sess := newFakeSession()
	sess.snap.Items = sampleItems()
	svc := NewSessionService(sess, nil, nil, nil)

	snap := svc.Refresh(context.Background())
	assert.Len(t, snap.Items, 4)
}
