package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/noah-isme/growth-archive/internal/dto"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
)

func escape(segment string) string {
	return url.PathEscape(segment)
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	var out dto.RegisterResponse
	if err := c.do(ctx, "register", http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a token and stores it with the user id.
func (c *Client) Login(ctx context.Context, phone, password string) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	req := dto.LoginRequest{Phone: phone, Password: password}
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	if err := c.tokens.Set(ctx, out.AccessToken, out.UserID); err != nil {
		c.logger.Error("store token", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrRequestFailed.Code, 0, appErrors.GenericRequestFailure)
	}
	return &out, nil
}

// Logout tells the server and clears stored credentials even if the call fails.
func (c *Client) Logout(ctx context.Context) error {
	creds, _ := c.Credentials(ctx)
	callErr := c.RevokeToken(ctx, creds.Token)
	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.Warn("clear token", zap.Error(err))
	}
	return callErr
}

// RevokeToken tells the server to end the session behind token. Stored credentials are not touched.
func (c *Client) RevokeToken(ctx context.Context, token string) error {
	return c.send(ctx, "logout", http.MethodPost, "/auth/logout", token, nil, nil)
}

// CurrentUser returns the raw /auth/me payload; its shape is not relied on.
func (c *Client) CurrentUser(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, "current_user", http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAccount deletes the account and clears credentials once the server confirms.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.do(ctx, "delete_account", http.MethodDelete, "/auth/account", nil, nil); err != nil {
		return err
	}
	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.Warn("clear token", zap.Error(err))
	}
	return nil
}

// GetProfile fetches the signed-in user's profile.
func (c *Client) GetProfile(ctx context.Context) (*dto.UserProfileRecord, error) {
	var out dto.UserProfileRecord
	if err := c.do(ctx, "get_profile", http.MethodGet, "/users/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile sends a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, req dto.UserProfileUpdateRequest) (*dto.UserProfileRecord, error) {
	var out dto.UserProfileRecord
	if err := c.do(ctx, "update_profile", http.MethodPut, "/users/profile", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListArchives lists archive items, optionally filtered by category.
func (c *Client) ListArchives(ctx context.Context, category string) ([]dto.ArchiveRecord, error) {
	path := "/archives"
	if category != "" {
		path += "?" + url.Values{"category": []string{category}}.Encode()
	}
	var out []dto.ArchiveRecord
	if err := c.do(ctx, "list_archives", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetArchive fetches one archive item.
func (c *Client) GetArchive(ctx context.Context, id string) (*dto.ArchiveRecord, error) {
	var out dto.ArchiveRecord
	if err := c.do(ctx, "get_archive", http.MethodGet, archivePath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateArchive submits a new archive item.
func (c *Client) CreateArchive(ctx context.Context, req dto.ArchiveCreateRequest) (*dto.ArchiveRecord, error) {
	var out dto.ArchiveRecord
	if err := c.do(ctx, "create_archive", http.MethodPost, "/archives", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateArchive sends a partial archive update.
func (c *Client) UpdateArchive(ctx context.Context, id string, req dto.ArchiveUpdateRequest) (*dto.ArchiveRecord, error) {
	var out dto.ArchiveRecord
	if err := c.do(ctx, "update_archive", http.MethodPut, archivePath(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteArchive removes an archive item.
func (c *Client) DeleteArchive(ctx context.Context, id string) error {
	return c.do(ctx, "delete_archive", http.MethodDelete, archivePath(id), nil, nil)
}

// ListNotifications lists the user's notifications.
func (c *Client) ListNotifications(ctx context.Context) ([]dto.NotificationRecord, error) {
	var out []dto.NotificationRecord
	if err := c.do(ctx, "list_notifications", http.MethodGet, "/notifications", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkNotificationRead marks one notification read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, "mark_notification_read", http.MethodPut, "/notifications/"+escape(id)+"/read", nil, nil)
}

// MarkAllNotificationsRead marks every notification read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, "mark_all_notifications_read", http.MethodPut, "/notifications/read-all", nil, nil)
}
