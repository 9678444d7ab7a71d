package selector

import (
	"strings"

	"github.com/noah-isme/growth-archive/internal/models"
)

// DashboardLimit is how many recent items the dashboard shows when nothing is pinned.
const DashboardLimit = 3

// FilterItems keeps items in tab whose title, organization or description
// contains query, ignoring case. An empty query matches everything.
func (t Taxonomy) FilterItems(items []models.ArchiveItem, tab Tab, query string) []models.ArchiveItem {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.ArchiveItem, 0, len(items))
	for _, item := range items {
		if !t.Matches(tab, item.Category) {
			continue
		}
		if q != "" && !containsFold(item.Title, q) && !containsFold(item.Organization, q) && !containsFold(item.Description, q) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// FilterItems applies DefaultTaxonomy.
func FilterItems(items []models.ArchiveItem, tab Tab, query string) []models.ArchiveItem {
	return DefaultTaxonomy.FilterItems(items, tab, query)
}

// DashboardItems returns the pinned items in list order, or the first
// DashboardLimit items when nothing is pinned.
func DashboardItems(items []models.ArchiveItem, pinnedIDs []string) []models.ArchiveItem {
	if len(pinnedIDs) == 0 {
		n := len(items)
		if n > DashboardLimit {
			n = DashboardLimit
		}
		return append([]models.ArchiveItem{}, items[:n]...)
	}

	pinned := make(map[string]struct{}, len(pinnedIDs))
	for _, id := range pinnedIDs {
		pinned[id] = struct{}{}
	}
	out := make([]models.ArchiveItem, 0, len(pinnedIDs))
	for _, item := range items {
		if _, ok := pinned[item.ID]; ok {
			out = append(out, item)
		}
	}
	return out
}

// SearchPinCandidates filters items for the dashboard editor: title contains
// query ignoring case, or category contains query exactly.
func SearchPinCandidates(items []models.ArchiveItem, query string) []models.ArchiveItem {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return append([]models.ArchiveItem{}, items...)
	}
	q := strings.ToLower(trimmed)
	out := make([]models.ArchiveItem, 0, len(items))
	for _, item := range items {
		if containsFold(item.Title, q) || strings.Contains(item.Category, trimmed) {
			out = append(out, item)
		}
	}
	return out
}

// TogglePin adds id to the selection or removes it when already present.
func TogglePin(pinnedIDs []string, id string) []string {
	out := make([]string, 0, len(pinnedIDs)+1)
	removed := false
	for _, p := range pinnedIDs {
		if p == id {
			removed = true
			continue
		}
		out = append(out, p)
	}
	if !removed {
		out = append(out, id)
	}
	return out
}

// Summary counts archive items for the dashboard header.
type Summary struct {
	Total    int                          `json:"total"`
	ByKind   map[Kind]int                 `json:"byKind"`
	ByStatus map[models.ArchiveStatus]int `json:"byStatus"`
}

// Summarize counts items per kind and per status.
func (t Taxonomy) Summarize(items []models.ArchiveItem) Summary {
	s := Summary{
		Total:    len(items),
		ByKind:   make(map[Kind]int, len(Kinds)+1),
		ByStatus: make(map[models.ArchiveStatus]int, 3),
	}
	for _, item := range items {
		s.ByKind[t.KindOf(item.Category)]++
		s.ByStatus[item.Status]++
	}
	return s
}

func containsFold(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}
