package service

import (
	"context"

	"github.com/noah-isme/growth-archive/internal/models"
	"github.com/noah-isme/growth-archive/internal/selector"
	"github.com/noah-isme/growth-archive/internal/session"
)

type inboxSession interface {
	Snapshot() session.Snapshot
	MarkNotificationAsRead(ctx context.Context, id string) error
	MarkAllNotificationsAsRead(ctx context.Context) error
}

// InboxView is a filtered, grouped inbox.
type InboxView struct {
	Tab         selector.InboxTab     `json:"tab"`
	Groups      selector.Grouped      `json:"groups"`
	Items       []models.Notification `json:"items"`
	UnreadCount int                   `json:"unreadCount"`
}

// InboxService exposes notification reads and read-state changes.
type InboxService struct {
	session inboxSession
}

func NewInboxService(sess inboxSession) *InboxService {
	return &InboxService{session: sess}
}

// List filters notifications by tab and groups them by day.
func (s *InboxService) List(tab selector.InboxTab) InboxView {
	all := s.session.Snapshot().Notifications
	items := selector.FilterNotifications(all, tab)
	return InboxView{
		Tab:         tab,
		Groups:      selector.GroupNotifications(items),
		Items:       items,
		UnreadCount: selector.UnreadCount(all),
	}
}

// Get returns one notification from the session.
func (s *InboxService) Get(id string) (models.Notification, bool) {
	for _, n := range s.session.Snapshot().Notifications {
		if n.ID == id {
			return n, true
		}
	}
	return models.Notification{}, false
}

func (s *InboxService) MarkRead(ctx context.Context, id string) error {
	return s.session.MarkNotificationAsRead(ctx, id)
}

func (s *InboxService) MarkAllRead(ctx context.Context) error {
	return s.session.MarkAllNotificationsAsRead(ctx)
}
