// Package session holds the signed-in student's state: profile, archive
// items, pinned dashboard selection and notifications.
//
// A Store is the only writer of that state. Each operation makes its API call
// without holding the lock and applies the result in one critical section, so
// readers never observe a half-applied update. Snapshot returns deep copies.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/growth-archive/internal/dto"
	"github.com/noah-isme/growth-archive/internal/models"
	"github.com/noah-isme/growth-archive/internal/normalize"
	"github.com/noah-isme/growth-archive/pkg/jobs"
)

// DefaultNotificationRefreshDelay is how long after a create or delete the inbox is re-fetched.
const DefaultNotificationRefreshDelay = 500 * time.Millisecond

const jobRefreshNotifications = "refresh_notifications"

// API is the subset of the backend client the store depends on.
type API interface {
	HasToken(ctx context.Context) bool
	ClearToken(ctx context.Context) error
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, phone, password string) (*dto.LoginResponse, error)
	DeleteAccount(ctx context.Context) error
	GetProfile(ctx context.Context) (*dto.UserProfileRecord, error)
	UpdateProfile(ctx context.Context, req dto.UserProfileUpdateRequest) (*dto.UserProfileRecord, error)
	ListArchives(ctx context.Context, category string) ([]dto.ArchiveRecord, error)
	GetArchive(ctx context.Context, id string) (*dto.ArchiveRecord, error)
	CreateArchive(ctx context.Context, req dto.ArchiveCreateRequest) (*dto.ArchiveRecord, error)
	UpdateArchive(ctx context.Context, id string, req dto.ArchiveUpdateRequest) (*dto.ArchiveRecord, error)
	DeleteArchive(ctx context.Context, id string) error
	ListNotifications(ctx context.Context) ([]dto.NotificationRecord, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
}

// Options configures a Store. Zero values pick sensible defaults.
type Options struct {
	Logger                   *zap.Logger
	Locale                   normalize.Locale
	NotificationRefreshDelay time.Duration
	Now                      func() time.Time
	JobObserver              jobs.Observer
}

// Snapshot is a point-in-time copy of the session.
type Snapshot struct {
	Items         []models.ArchiveItem  `json:"items"`
	PinnedIDs     []string              `json:"pinnedIds"`
	Notifications []models.Notification `json:"notifications"`
	User          models.UserProfile    `json:"user"`
	IsLoggedIn    bool                  `json:"isLoggedIn"`
	Loading       bool                  `json:"loading"`
}

// Store is the session state container.
type Store struct {
	api          API
	logger       *zap.Logger
	locale       normalize.Locale
	now          func() time.Time
	refreshDelay time.Duration
	queue        *jobs.Queue

	mu            sync.RWMutex
	items         []models.ArchiveItem
	pinned        []string
	notifications []models.Notification
	user          models.UserProfile
	loggedIn      bool
	loading       bool
	// readIDs remembers notifications marked read locally so an older server
	// list cannot flip them back to unread.
	readIDs map[string]struct{}
	// logins counts login attempts; a failing bootstrap leaves the token alone
	// once a login has started.
	logins uint64
	// generation changes on every login and reset; results fetched under an
	// older generation are dropped.
	generation uint64
}

// New creates a store in the loading state. Call Bootstrap to finish startup and Close to release it.
func New(api API, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Locale == "" {
		opts.Locale = normalize.LocaleZH
	}
	if opts.NotificationRefreshDelay <= 0 {
		opts.NotificationRefreshDelay = DefaultNotificationRefreshDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{
		api:           api,
		logger:        opts.Logger,
		locale:        opts.Locale,
		now:           opts.Now,
		refreshDelay:  opts.NotificationRefreshDelay,
		items:         []models.ArchiveItem{},
		pinned:        []string{},
		notifications: []models.Notification{},
		readIDs:       map[string]struct{}{},
		loading:       true,
	}
	s.queue = jobs.NewQueue("session", s.runJob, jobs.QueueConfig{
		Workers:  1,
		Logger:   opts.Logger,
		Observer: opts.JobObserver,
	})
	s.queue.Start(context.Background())
	return s
}

// Close cancels deferred refreshes and stops the background worker.
func (s *Store) Close() {
	s.queue.Stop()
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Items:         append([]models.ArchiveItem{}, s.items...),
		PinnedIDs:     append([]string{}, s.pinned...),
		Notifications: append([]models.Notification{}, s.notifications...),
		User:          s.user,
		IsLoggedIn:    s.loggedIn,
		Loading:       s.loading,
	}
}

// IsLoggedIn reports the login flag.
func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// Loading reports whether startup is still in progress.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Item looks up a locally held archive item.
func (s *Store) Item(id string) (models.ArchiveItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.ArchiveItem{}, false
}

// PendingRefreshes returns the number of scheduled notification refreshes that have not fired.
func (s *Store) PendingRefreshes() int {
	return s.queue.Pending()
}

func (s *Store) currentGeneration() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// resetLocked clears all user data. Callers hold s.mu.
func (s *Store) resetLocked() {
	s.items = []models.ArchiveItem{}
	s.pinned = []string{}
	s.notifications = []models.Notification{}
	s.user = models.UserProfile{}
	s.loggedIn = false
	s.readIDs = map[string]struct{}{}
	s.generation++
}

// setNotificationsLocked replaces the inbox, keeping locally read flags. Callers hold s.mu.
func (s *Store) setNotificationsLocked(notes []models.Notification) {
	for i := range notes {
		if _, ok := s.readIDs[notes[i].ID]; ok {
			notes[i].Read = true
		}
	}
	s.notifications = notes
}
