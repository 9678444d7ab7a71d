// Package tokenstore persists the bearer token and user id between runs.
// Token contents are opaque; nothing here parses or validates them.
package tokenstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/growth-archive/pkg/config"
	"github.com/noah-isme/growth-archive/pkg/storage"
)

// Key names match the browser client's localStorage entries.
const (
	TokenKey  = "auth_token"
	UserIDKey = "user_id"
)

// Credentials is what a successful login leaves behind.
type Credentials struct {
	Token  string `json:"auth_token"`
	UserID string `json:"user_id"`
}

// Store is durable storage for the current credentials.
type Store interface {
	// Get returns the stored credentials; ok is false when no token is stored.
	Get(ctx context.Context) (creds Credentials, ok bool, err error)
	// Set replaces the token and user id together.
	Set(ctx context.Context, token, userID string) error
	// Clear removes the token and user id together.
	Clear(ctx context.Context) error
}

// New builds the store selected by configuration. The returned close func releases backend resources.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, func() error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	noop := func() error { return nil }

	switch cfg.Tokens.Store {
	case config.TokenStoreMemory:
		return NewMemoryStore(), noop, nil
	case config.TokenStoreRedis:
		client, err := DialRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("token store: redis", zap.String("prefix", cfg.Tokens.KeyPrefix))
		return NewRedisStore(client, cfg.Tokens.KeyPrefix), client.Close, nil
	case config.TokenStoreFile, "":
		files, err := storage.NewPrivateStorage(cfg.Tokens.Dir)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("token store: file", zap.String("dir", cfg.Tokens.Dir))
		return NewFileStore(files), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown token store %q", cfg.Tokens.Store)
	}
}

// Present reports whether a token is stored, treating backend errors as absent.
func Present(ctx context.Context, s Store) bool {
	_, ok, err := s.Get(ctx)
	return err == nil && ok
}
