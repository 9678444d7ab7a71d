package session

import (
	"context"

	"github.com/noah-isme/growth-archive/internal/models"
	"github.com/noah-isme/growth-archive/internal/normalize"
)

// MarkNotificationAsRead marks one notification read on the server, then locally.
func (s *Store) MarkNotificationAsRead(ctx context.Context, id string) error {
	if err := s.api.MarkNotificationRead(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.readIDs[id] = struct{}{}
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
		}
	}
	return nil
}

// MarkAllNotificationsAsRead marks every notification read on the server, then locally.
func (s *Store) MarkAllNotificationsAsRead(ctx context.Context) error {
	if err := s.api.MarkAllNotificationsRead(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		s.notifications[i].Read = true
		s.readIDs[s.notifications[i].ID] = struct{}{}
	}
	return nil
}

// UpdateUser sends only the provided fields and replaces the profile with the server response.
func (s *Store) UpdateUser(ctx context.Context, patch models.UserProfilePatch) (models.UserProfile, error) {
	gen := s.currentGeneration()
	rec, err := s.api.UpdateProfile(ctx, normalize.ProfileUpdate(patch))
	if err != nil {
		return models.UserProfile{}, err
	}
	user := normalize.User(*rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		s.user = user
	}
	return user, nil
}
