package dto

// NotificationRecord is a notification as returned by the backend.
type NotificationRecord struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id,omitempty"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Read        bool   `json:"read"`
	CreatedAt   string `json:"created_at,omitempty"`
}
