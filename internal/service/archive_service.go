package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/growth-archive/internal/models"
	"github.com/noah-isme/growth-archive/internal/selector"
	"github.com/noah-isme/growth-archive/internal/session"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
	"github.com/noah-isme/growth-archive/pkg/imageenc"
)

// Draft defaults applied when the form leaves a field blank.
const (
	DefaultOrganization = "未知单位"
	PlaceholderImageURL = "https://images.unsplash.com/photo-1589330694653-4a8b74de3d9e?w=400"
)

type archiveSession interface {
	Snapshot() session.Snapshot
	Item(id string) (models.ArchiveItem, bool)
	AddItem(ctx context.Context, draft models.ArchiveDraft) (models.ArchiveItem, error)
	UpdateItem(ctx context.Context, id string, patch models.ArchivePatch) (models.ArchiveItem, error)
	ReloadItem(ctx context.Context, id string) (models.ArchiveItem, error)
	DeleteItem(ctx context.Context, id string) error
	UpdatePinnedIDs(ids []string)
}

// DashboardView is what the dashboard screen renders.
type DashboardView struct {
	User        models.UserProfile   `json:"user"`
	Items       []models.ArchiveItem `json:"items"`
	PinnedIDs   []string             `json:"pinnedIds"`
	Summary     selector.Summary     `json:"summary"`
	HasUnread   bool                 `json:"hasUnread"`
	UnreadCount int                  `json:"unreadCount"`
}

// ArchiveService wraps archive operations with form defaults, validation and the category taxonomy.
type ArchiveService struct {
	session  archiveSession
	taxonomy selector.Taxonomy
	images   imageenc.Encoder
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewArchiveService constructs the service.
func NewArchiveService(sess archiveSession, images imageenc.Encoder, validate *validator.Validate, logger *zap.Logger) *ArchiveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveService{
		session:  sess,
		taxonomy: selector.DefaultTaxonomy,
		images:   images,
		validate: validate,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns items in tab matching query.
func (s *ArchiveService) List(tab selector.Tab, query string) []models.ArchiveItem {
	return s.taxonomy.FilterItems(s.session.Snapshot().Items, tab, query)
}

// Items returns every held item.
func (s *ArchiveService) Items() []models.ArchiveItem {
	return s.session.Snapshot().Items
}

// Get returns a held item, fetching it from the server when not held.
func (s *ArchiveService) Get(ctx context.Context, id string) (models.ArchiveItem, error) {
	if item, ok := s.session.Item(id); ok {
		return item, nil
	}
	return s.session.ReloadItem(ctx, id)
}

// ApplyDraftDefaults fills organization, date and image when blank.
func ApplyDraftDefaults(draft models.ArchiveDraft, now time.Time) models.ArchiveDraft {
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Category = strings.TrimSpace(draft.Category)
	if strings.TrimSpace(draft.Organization) == "" {
		draft.Organization = DefaultOrganization
	}
	if strings.TrimSpace(draft.Date) == "" {
		draft.Date = now.Format("2006-01-02")
	}
	if strings.TrimSpace(draft.ImageURL) == "" {
		draft.ImageURL = PlaceholderImageURL
	}
	return draft
}

// Create validates the draft, applies defaults and submits it.
func (s *ArchiveService) Create(ctx context.Context, draft models.ArchiveDraft) (models.ArchiveItem, error) {
	draft = ApplyDraftDefaults(draft, s.now())
	if err := s.validate.Struct(draft); err != nil {
		return models.ArchiveItem{}, validationError(err, "invalid archive payload")
	}
	if err := s.checkDate(draft.Date); err != nil {
		return models.ArchiveItem{}, err
	}
	if err := s.images.CheckDataURL(draft.ImageURL); err != nil {
		return models.ArchiveItem{}, err
	}
	return s.session.AddItem(ctx, draft)
}

// Update validates and sends a partial edit.
func (s *ArchiveService) Update(ctx context.Context, id string, patch models.ArchivePatch) (models.ArchiveItem, error) {
	if patch.Empty() {
		return models.ArchiveItem{}, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return models.ArchiveItem{}, appErrors.Clone(appErrors.ErrValidation, "Title is required")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return models.ArchiveItem{}, appErrors.Clone(appErrors.ErrValidation, "Status must be one of [approved pending rejected]")
	}
	if patch.Date != nil {
		if err := s.checkDate(*patch.Date); err != nil {
			return models.ArchiveItem{}, err
		}
	}
	if patch.ImageURL != nil {
		if err := s.images.CheckDataURL(*patch.ImageURL); err != nil {
			return models.ArchiveItem{}, err
		}
	}
	return s.session.UpdateItem(ctx, id, patch)
}

// Delete removes an item and its pin.
func (s *ArchiveService) Delete(ctx context.Context, id string) error {
	return s.session.DeleteItem(ctx, id)
}

// Dashboard assembles the dashboard view from one snapshot.
func (s *ArchiveService) Dashboard() DashboardView {
	snap := s.session.Snapshot()
	return DashboardView{
		User:        snap.User,
		Items:       selector.DashboardItems(snap.Items, snap.PinnedIDs),
		PinnedIDs:   snap.PinnedIDs,
		Summary:     s.taxonomy.Summarize(snap.Items),
		HasUnread:   selector.HasUnread(snap.Notifications),
		UnreadCount: selector.UnreadCount(snap.Notifications),
	}
}

// SetPins replaces the dashboard selection.
func (s *ArchiveService) SetPins(ids []string) []string {
	s.session.UpdatePinnedIDs(ids)
	return s.session.Snapshot().PinnedIDs
}

// PinCandidates lists items for the dashboard editor.
func (s *ArchiveService) PinCandidates(query string) []models.ArchiveItem {
	return selector.SearchPinCandidates(s.session.Snapshot().Items, query)
}

func (s *ArchiveService) checkDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "Date must be YYYY-MM-DD")
	}
	return nil
}
