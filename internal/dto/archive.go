package dto

// ArchiveRecord is an archive item as returned by the backend.
type ArchiveRecord struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id,omitempty"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	Organization string `json:"organization"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	ImageURL     string `json:"image_url,omitempty"`
	Description  string `json:"description,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// ArchiveCreateRequest is the body of POST /archives.
type ArchiveCreateRequest struct {
	Title        string `json:"title"`
	Category     string `json:"category"`
	Organization string `json:"organization,omitempty"`
	Date         string `json:"date,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	Description  string `json:"description,omitempty"`
}

// ArchiveUpdateRequest is the body of PUT /archives/{id}; only set fields are sent.
type ArchiveUpdateRequest struct {
	Title        *string `json:"title,omitempty"`
	Category     *string `json:"category,omitempty"`
	Organization *string `json:"organization,omitempty"`
	Date         *string `json:"date,omitempty"`
	Status       *string `json:"status,omitempty"`
	ImageURL     *string `json:"image_url,omitempty"`
	Description  *string `json:"description,omitempty"`
}
