package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/growth-archive/internal/normalize"
	"github.com/noah-isme/growth-archive/pkg/jobs"
)

// RefreshItems replaces the item list from the server. Failures are logged and leave state as is.
func (s *Store) RefreshItems(ctx context.Context) {
	if !s.api.HasToken(ctx) {
		return
	}
	gen := s.currentGeneration()
	recs, err := s.api.ListArchives(ctx, "")
	if err != nil {
		s.logger.Warn("refresh items failed", zap.Error(err))
		return
	}
	items := normalize.Archives(recs)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		s.logger.Debug("discarding stale items refresh")
		return
	}
	s.items = items
}

// RefreshNotifications replaces the notification list from the server. Failures are logged and leave state as is.
func (s *Store) RefreshNotifications(ctx context.Context) {
	s.refreshNotifications(ctx, s.currentGeneration())
}

func (s *Store) refreshNotifications(ctx context.Context, gen uint64) {
	if !s.api.HasToken(ctx) {
		return
	}
	recs, err := s.api.ListNotifications(ctx)
	if err != nil {
		s.logger.Warn("refresh notifications failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		s.logger.Debug("discarding stale notifications refresh")
		return
	}
	s.setNotificationsLocked(normalize.Notifications(recs, s.now(), s.locale))
}

// RefreshUser replaces the profile from the server. Failures are logged and leave state as is.
func (s *Store) RefreshUser(ctx context.Context) {
	if !s.api.HasToken(ctx) {
		return
	}
	gen := s.currentGeneration()
	rec, err := s.api.GetProfile(ctx)
	if err != nil {
		s.logger.Warn("refresh user failed", zap.Error(err))
		return
	}
	user := normalize.User(*rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		s.logger.Debug("discarding stale user refresh")
		return
	}
	s.user = user
}

// scheduleNotificationRefresh re-fetches the inbox after the configured delay.
// The server may create notifications asynchronously, so this is best effort.
func (s *Store) scheduleNotificationRefresh() {
	job := jobs.Job{Type: jobRefreshNotifications, Payload: s.currentGeneration()}
	if _, err := s.queue.EnqueueAfter(s.refreshDelay, job); err != nil {
		s.logger.Warn("schedule notification refresh", zap.Error(err))
	}
}

func (s *Store) runJob(ctx context.Context, job jobs.Job) error {
	switch job.Type {
	case jobRefreshNotifications:
		gen, _ := job.Payload.(uint64)
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		s.refreshNotifications(ctx, gen)
	default:
		s.logger.Warn("unknown session job", zap.String("type", job.Type))
	}
	return nil
}
