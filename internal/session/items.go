package session

import (
	"context"

	"github.com/noah-isme/growth-archive/internal/models"
	"github.com/noah-isme/growth-archive/internal/normalize"
)

// AddItem submits a draft and prepends the server's echo. A notification
// refresh is scheduled because the server may emit one for the submission.
func (s *Store) AddItem(ctx context.Context, draft models.ArchiveDraft) (models.ArchiveItem, error) {
	gen := s.currentGeneration()
	rec, err := s.api.CreateArchive(ctx, normalize.ArchiveCreate(draft))
	if err != nil {
		return models.ArchiveItem{}, err
	}
	item := normalize.Archive(*rec)

	s.mu.Lock()
	if s.generation == gen {
		s.items = append([]models.ArchiveItem{item}, s.items...)
	}
	s.mu.Unlock()

	s.scheduleNotificationRefresh()
	return item, nil
}

// UpdateItem sends only the provided fields and replaces the local item with the server response.
func (s *Store) UpdateItem(ctx context.Context, id string, patch models.ArchivePatch) (models.ArchiveItem, error) {
	gen := s.currentGeneration()
	rec, err := s.api.UpdateArchive(ctx, id, normalize.ArchiveUpdate(patch))
	if err != nil {
		return models.ArchiveItem{}, err
	}
	item := normalize.Archive(*rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		for i := range s.items {
			if s.items[i].ID == id {
				s.items[i] = item
				break
			}
		}
	}
	return item, nil
}

// ReloadItem fetches one item and replaces it locally, prepending it when it was not held yet.
func (s *Store) ReloadItem(ctx context.Context, id string) (models.ArchiveItem, error) {
	gen := s.currentGeneration()
	rec, err := s.api.GetArchive(ctx, id)
	if err != nil {
		return models.ArchiveItem{}, err
	}
	item := normalize.Archive(*rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return item, nil
	}
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i] = item
			return item, nil
		}
	}
	s.items = append([]models.ArchiveItem{item}, s.items...)
	return item, nil
}

// DeleteItem deletes on the server, then drops the item and its pin together.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	if err := s.api.DeleteArchive(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	items := s.items[:0:0]
	for _, item := range s.items {
		if item.ID != id {
			items = append(items, item)
		}
	}
	pinned := make([]string, 0, len(s.pinned))
	for _, pid := range s.pinned {
		if pid != id {
			pinned = append(pinned, pid)
		}
	}
	s.items = items
	s.pinned = pinned
	s.mu.Unlock()

	s.scheduleNotificationRefresh()
	return nil
}

// UpdatePinnedIDs replaces the dashboard selection. Duplicates and empty ids are dropped, order is kept.
func (s *Store) UpdatePinnedIDs(ids []string) {
	seen := make(map[string]struct{}, len(ids))
	pinned := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		pinned = append(pinned, id)
	}

	s.mu.Lock()
	s.pinned = pinned
	s.mu.Unlock()
}
