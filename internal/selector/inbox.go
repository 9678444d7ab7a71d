package selector

import (
	"strings"

	"github.com/noah-isme/growth-archive/internal/models"
)

// InboxTab filters notifications by type.
type InboxTab string

const (
	InboxAll      InboxTab = "all"
	InboxAcademic InboxTab = "academic"
	InboxSystem   InboxTab = "system"
	InboxAlert    InboxTab = "alert"
)

var inboxAliases = map[string]InboxTab{
	"":         InboxAll,
	"all":      InboxAll,
	"全部":       InboxAll,
	"academic": InboxAcademic,
	"学业":       InboxAcademic,
	"system":   InboxSystem,
	"系统":       InboxSystem,
	"alert":    InboxAlert,
	"提醒":       InboxAlert,
}

// ParseInboxTab accepts English tab names (any case) or the Chinese tab labels.
func ParseInboxTab(raw string) (InboxTab, bool) {
	tab, ok := inboxAliases[strings.ToLower(strings.TrimSpace(raw))]
	return tab, ok
}

func (tab InboxTab) matches(t models.NotificationType) bool {
	switch tab {
	case InboxAll:
		return true
	case InboxAcademic:
		return t == models.NotificationCertificate || t == models.NotificationStatus || t == models.NotificationMilestone
	case InboxSystem:
		return t == models.NotificationSystem
	case InboxAlert:
		return t == models.NotificationAlert
	default:
		return false
	}
}

// FilterNotifications keeps notifications belonging to tab, preserving order.
func FilterNotifications(notifications []models.Notification, tab InboxTab) []models.Notification {
	out := make([]models.Notification, 0, len(notifications))
	for _, n := range notifications {
		if tab.matches(n.Type) {
			out = append(out, n)
		}
	}
	return out
}

// Grouped is an inbox split by day bucket.
type Grouped struct {
	Today     []models.Notification `json:"today"`
	Yesterday []models.Notification `json:"yesterday"`
	Older     []models.Notification `json:"older"`
}

// GroupNotifications splits notifications by their Group, preserving order.
// Unknown groups land in Older.
func GroupNotifications(notifications []models.Notification) Grouped {
	g := Grouped{
		Today:     []models.Notification{},
		Yesterday: []models.Notification{},
		Older:     []models.Notification{},
	}
	for _, n := range notifications {
		switch n.Group {
		case models.GroupToday:
			g.Today = append(g.Today, n)
		case models.GroupYesterday:
			g.Yesterday = append(g.Yesterday, n)
		default:
			g.Older = append(g.Older, n)
		}
	}
	return g
}

// HasUnread reports whether any notification is unread.
func HasUnread(notifications []models.Notification) bool {
	return UnreadCount(notifications) > 0
}

// UnreadCount counts unread notifications.
func UnreadCount(notifications []models.Notification) int {
	n := 0
	for _, note := range notifications {
		if !note.Read {
			n++
		}
	}
	return n
}
