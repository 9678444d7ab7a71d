package models

// NotificationType classifies inbox entries.
type NotificationType string

const (
	NotificationCertificate NotificationType = "certificate"
	NotificationStatus      NotificationType = "status"
	NotificationMilestone   NotificationType = "milestone"
	NotificationSystem      NotificationType = "system"
	NotificationAlert       NotificationType = "alert"
)

// NotificationGroup buckets notifications by age for the inbox.
type NotificationGroup string

const (
	GroupToday     NotificationGroup = "today"
	GroupYesterday NotificationGroup = "yesterday"
	GroupOlder     NotificationGroup = "older"
)

// Notification is an inbox entry. Time and Group are derived when the record is normalized.
type Notification struct {
	ID          string            `json:"id"`
	Type        NotificationType  `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Time        string            `json:"time"`
	Read        bool              `json:"read"`
	Group       NotificationGroup `json:"group"`
}
