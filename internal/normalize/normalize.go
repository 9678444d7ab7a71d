// Package normalize converts backend wire records into the view models the
// session store holds, and view-side edits back into wire requests.
// Every function is pure; the current time is passed in.
package normalize

import (
	"time"

	"github.com/noah-isme/growth-archive/internal/dto"
	"github.com/noah-isme/growth-archive/internal/models"
)

// Archive maps a backend archive record to its view model.
func Archive(rec dto.ArchiveRecord) models.ArchiveItem {
	return models.ArchiveItem{
		ID:           rec.ID,
		Title:        rec.Title,
		Category:     rec.Category,
		Organization: rec.Organization,
		Date:         rec.Date,
		Status:       models.ArchiveStatus(rec.Status),
		ImageURL:     rec.ImageURL,
		Description:  rec.Description,
	}
}

// Archives maps a list, preserving order. A nil input yields an empty slice.
func Archives(recs []dto.ArchiveRecord) []models.ArchiveItem {
	items := make([]models.ArchiveItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, Archive(rec))
	}
	return items
}

// Notification maps a backend notification, deriving its relative time and day group at now.
func Notification(rec dto.NotificationRecord, now time.Time, locale Locale) models.Notification {
	n := models.Notification{
		ID:          rec.ID,
		Type:        models.NotificationType(rec.Type),
		Title:       rec.Title,
		Description: rec.Description,
		Read:        rec.Read,
		Group:       models.GroupOlder,
	}
	if created, ok := ParseTimestamp(rec.CreatedAt); ok {
		elapsed := now.Sub(created)
		n.Time = RelativeTime(elapsed, locale)
		n.Group = TimeGroup(elapsed)
	}
	return n
}

// Notifications maps a list, preserving order.
func Notifications(recs []dto.NotificationRecord, now time.Time, locale Locale) []models.Notification {
	out := make([]models.Notification, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Notification(rec, now, locale))
	}
	return out
}

// User maps the backend profile. Missing fields stay empty strings.
func User(rec dto.UserProfileRecord) models.UserProfile {
	return models.UserProfile{
		ID:         rec.ID,
		Name:       rec.Name,
		StudentID:  rec.StudentID,
		Avatar:     rec.Avatar,
		Grade:      rec.Grade,
		Major:      rec.Major,
		University: rec.University,
		Phone:      rec.Phone,
	}
}

// ArchiveCreate builds the create request for a draft.
func ArchiveCreate(draft models.ArchiveDraft) dto.ArchiveCreateRequest {
	return dto.ArchiveCreateRequest{
		Title:        draft.Title,
		Category:     draft.Category,
		Organization: draft.Organization,
		Date:         draft.Date,
		ImageURL:     draft.ImageURL,
		Description:  draft.Description,
	}
}

// ArchiveUpdate translates only the provided patch fields to wire names.
func ArchiveUpdate(patch models.ArchivePatch) dto.ArchiveUpdateRequest {
	req := dto.ArchiveUpdateRequest{
		Title:        copyString(patch.Title),
		Category:     copyString(patch.Category),
		Organization: copyString(patch.Organization),
		Date:         copyString(patch.Date),
		ImageURL:     copyString(patch.ImageURL),
		Description:  copyString(patch.Description),
	}
	if patch.Status != nil {
		status := string(*patch.Status)
		req.Status = &status
	}
	return req
}

// ProfileUpdate translates only the provided patch fields to wire names.
func ProfileUpdate(patch models.UserProfilePatch) dto.UserProfileUpdateRequest {
	return dto.UserProfileUpdateRequest{
		Name:       copyString(patch.Name),
		StudentID:  copyString(patch.StudentID),
		Avatar:     copyString(patch.Avatar),
		Grade:      copyString(patch.Grade),
		Major:      copyString(patch.Major),
		University: copyString(patch.University),
	}
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
