package service

import (
	"context"
	"strings"

	"github.com/noah-isme/growth-archive/internal/models"
	"github.com/noah-isme/growth-archive/internal/session"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
	"github.com/noah-isme/growth-archive/pkg/imageenc"
)

type profileSession interface {
	Snapshot() session.Snapshot
	UpdateUser(ctx context.Context, patch models.UserProfilePatch) (models.UserProfile, error)
}

// ProfileService reads and edits the signed-in profile.
type ProfileService struct {
	session profileSession
	avatars imageenc.Encoder
}

// NewProfileService constructs the service; avatars bounds inline avatar images.
func NewProfileService(sess profileSession, avatars imageenc.Encoder) *ProfileService {
	return &ProfileService{session: sess, avatars: avatars}
}

func (s *ProfileService) Get() models.UserProfile {
	return s.session.Snapshot().User
}

// Update sends only the provided fields.
func (s *ProfileService) Update(ctx context.Context, patch models.UserProfilePatch) (models.UserProfile, error) {
	if patch.Empty() {
		return models.UserProfile{}, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return models.UserProfile{}, appErrors.Clone(appErrors.ErrValidation, "Name is required")
	}
	if patch.Avatar != nil {
		if err := s.avatars.CheckDataURL(*patch.Avatar); err != nil {
			return models.UserProfile{}, err
		}
	}
	return s.session.UpdateUser(ctx, patch)
}
