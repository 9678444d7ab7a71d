package session

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/growth-archive/internal/dto"
	"github.com/noah-isme/growth-archive/internal/normalize"
)

// Bootstrap finishes startup. With a stored token it fetches profile, items and
// notifications concurrently; all three must succeed for the session to count as
// logged in, otherwise the token is cleared unless a login has started meanwhile.
// Loading is false when it returns.
func (s *Store) Bootstrap(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	if !s.api.HasToken(ctx) {
		return nil
	}
	s.mu.RLock()
	gen, logins := s.generation, s.logins
	s.mu.RUnlock()

	var (
		profile  *dto.UserProfileRecord
		archives []dto.ArchiveRecord
		notes    []dto.NotificationRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.api.GetProfile(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		archives, err = s.api.ListArchives(gctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		notes, err = s.api.ListNotifications(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.clearStaleToken(ctx, logins, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return nil
	}
	s.user = normalize.User(*profile)
	s.items = normalize.Archives(archives)
	s.setNotificationsLocked(normalize.Notifications(notes, s.now(), s.locale))
	s.loggedIn = true
	return nil
}

// clearStaleToken drops the stored token after a failed bootstrap unless a
// login has begun since, in which case the token may already be the new one.
// The lock is held across ClearToken so a login cannot store its token in between.
func (s *Store) clearStaleToken(ctx context.Context, logins uint64, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logins != logins {
		s.logger.Debug("session bootstrap failed after a new login, keeping token", zap.Error(cause))
		return
	}
	s.logger.Warn("session bootstrap failed, clearing token", zap.Error(cause))
	if err := s.api.ClearToken(ctx); err != nil {
		s.logger.Warn("clear token", zap.Error(err))
	}
}

// Login authenticates, marks the session logged in and refreshes everything.
// Refresh failures after a successful login are logged, not returned.
func (s *Store) Login(ctx context.Context, phone, password string) error {
	s.mu.Lock()
	s.logins++
	s.mu.Unlock()

	if _, err := s.api.Login(ctx, phone, password); err != nil {
		return err
	}

	s.mu.Lock()
	s.generation++
	s.loggedIn = true
	s.mu.Unlock()

	s.refreshAll(ctx)
	return nil
}

// Register creates an account and returns its user id. The session is not changed.
func (s *Store) Register(ctx context.Context, phone, password, name string) (string, error) {
	resp, err := s.api.Register(ctx, dto.RegisterRequest{Phone: phone, Password: password, Name: name})
	if err != nil {
		return "", err
	}
	return resp.UserID, nil
}

// Logout clears the token and all session data without contacting the server.
// It is safe to call repeatedly.
func (s *Store) Logout(ctx context.Context) {
	s.queue.CancelPending()
	if err := s.api.ClearToken(ctx); err != nil {
		s.logger.Warn("clear token", zap.Error(err))
	}

	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
}

// DeleteAccount deletes the account on the server and, once confirmed, resets the session.
func (s *Store) DeleteAccount(ctx context.Context) error {
	if err := s.api.DeleteAccount(ctx); err != nil {
		return err
	}
	s.queue.CancelPending()

	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	return nil
}

func (s *Store) refreshAll(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error { s.RefreshUser(ctx); return nil })
	g.Go(func() error { s.RefreshItems(ctx); return nil })
	g.Go(func() error { s.RefreshNotifications(ctx); return nil })
	_ = g.Wait()
}
