package models

// ArchiveStatus is the review state the server assigns to an archive item.
type ArchiveStatus string

const (
	ArchiveStatusApproved ArchiveStatus = "approved"
	ArchiveStatusPending  ArchiveStatus = "pending"
	ArchiveStatusRejected ArchiveStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s ArchiveStatus) Valid() bool {
	switch s {
	case ArchiveStatusApproved, ArchiveStatusPending, ArchiveStatusRejected:
		return true
	default:
		return false
	}
}

// ArchiveItem is one achievement, certificate or disciplinary record as shown to the student.
type ArchiveItem struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Category     string        `json:"category"`
	Organization string        `json:"organization"`
	Date         string        `json:"date"`
	Status       ArchiveStatus `json:"status"`
	ImageURL     string        `json:"imageUrl"`
	Description  string        `json:"description,omitempty"`
}

// ArchiveDraft is a new submission; id and status are assigned by the server.
type ArchiveDraft struct {
	Title        string `json:"title" validate:"required"`
	Category     string `json:"category" validate:"required"`
	Organization string `json:"organization"`
	Date         string `json:"date"`
	ImageURL     string `json:"imageUrl"`
	Description  string `json:"description"`
}

// ArchivePatch carries a partial edit. Nil fields are left untouched.
type ArchivePatch struct {
	Title        *string        `json:"title,omitempty"`
	Category     *string        `json:"category,omitempty"`
	Organization *string        `json:"organization,omitempty"`
	Date         *string        `json:"date,omitempty"`
	Status       *ArchiveStatus `json:"status,omitempty"`
	ImageURL     *string        `json:"imageUrl,omitempty"`
	Description  *string        `json:"description,omitempty"`
}

// Empty reports whether no field is set.
func (p ArchivePatch) Empty() bool {
	return p.Title == nil && p.Category == nil && p.Organization == nil && p.Date == nil &&
		p.Status == nil && p.ImageURL == nil && p.Description == nil
}
