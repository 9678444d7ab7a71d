package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/growth-archive/internal/dto"
	"github.com/noah-isme/growth-archive/internal/session"
	"github.com/noah-isme/growth-archive/internal/tokenstore"
)

// revokeTimeout bounds the background server logout.
const revokeTimeout = 5 * time.Second

type accountSession interface {
	Snapshot() session.Snapshot
	Login(ctx context.Context, phone, password string) error
	Register(ctx context.Context, phone, password, name string) (string, error)
	Logout(ctx context.Context)
	DeleteAccount(ctx context.Context) error
	RefreshItems(ctx context.Context)
	RefreshNotifications(ctx context.Context)
	RefreshUser(ctx context.Context)
}

type remoteLogout interface {
	Credentials(ctx context.Context) (tokenstore.Credentials, bool)
	RevokeToken(ctx context.Context, token string) error
}

// SessionService validates account forms and drives the session lifecycle.
type SessionService struct {
	session  accountSession
	remote   remoteLogout
	validate *validator.Validate
	logger   *zap.Logger
	revokes  sync.WaitGroup
}

// NewSessionService constructs the service. remote may be nil to skip the server logout call.
func NewSessionService(sess accountSession, remote remoteLogout, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{session: sess, remote: remote, validate: validate, logger: logger}
}

// Snapshot returns the current session state.
func (s *SessionService) Snapshot() session.Snapshot {
	return s.session.Snapshot()
}

// Login validates the form and signs in.
func (s *SessionService) Login(ctx context.Context, form dto.LoginForm) (session.Snapshot, error) {
	if err := s.validate.Struct(form); err != nil {
		return session.Snapshot{}, validationError(err, "invalid login payload")
	}
	if err := s.session.Login(ctx, form.Phone, form.Password); err != nil {
		return session.Snapshot{}, err
	}
	return s.session.Snapshot(), nil
}

// Register validates phone length, password length and confirmation, then creates the account.
func (s *SessionService) Register(ctx context.Context, form dto.RegisterForm) (string, error) {
	if err := s.validate.Struct(form); err != nil {
		return "", validationError(err, "invalid registration payload")
	}
	return s.session.Register(ctx, form.Phone, form.Password, form.Name)
}

// Logout clears the local session at once. The server is told in the
// background with the token captured before the reset; its outcome is ignored.
func (s *SessionService) Logout(ctx context.Context) {
	var token string
	if s.remote != nil {
		if creds, ok := s.remote.Credentials(ctx); ok {
			token = creds.Token
		}
	}
	s.session.Logout(ctx)
	if token == "" {
		return
	}

	s.revokes.Add(1)
	go func() {
		defer s.revokes.Done()
		rctx, cancel := context.WithTimeout(context.Background(), revokeTimeout)
		defer cancel()
		if err := s.remote.RevokeToken(rctx, token); err != nil {
			s.logger.Debug("server logout failed", zap.Error(err))
		}
	}()
}

// Wait blocks until background server logouts have finished.
func (s *SessionService) Wait() {
	s.revokes.Wait()
}

// DeleteAccount deletes the account; the session resets only when the server confirms.
func (s *SessionService) DeleteAccount(ctx context.Context) error {
	return s.session.DeleteAccount(ctx)
}

// Refresh re-fetches profile, items and notifications concurrently.
func (s *SessionService) Refresh(ctx context.Context) session.Snapshot {
	var g errgroup.Group
	g.Go(func() error { s.session.RefreshUser(ctx); return nil })
	g.Go(func() error { s.session.RefreshItems(ctx); return nil })
	g.Go(func() error { s.session.RefreshNotifications(ctx); return nil })
	_ = g.Wait()
	return s.session.Snapshot()
}
