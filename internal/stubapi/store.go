package stubapi

import (
	"sync"

	"github.com/noah-isme/growth-archive/internal/dto"
)

type account struct {
	profile      dto.UserProfileRecord
	passwordHash []byte
}

// memoryStore keeps every record in process memory. Lists are newest first.
type memoryStore struct {
	mu            sync.RWMutex
	users         map[string]*account
	phones        map[string]string
	archives      map[string][]dto.ArchiveRecord
	notifications map[string][]dto.NotificationRecord
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:         make(map[string]*account),
		phones:        make(map[string]string),
		archives:      make(map[string][]dto.ArchiveRecord),
		notifications: make(map[string][]dto.NotificationRecord),
	}
}

func (m *memoryStore) createUser(acc *account) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.phones[acc.profile.Phone]; exists {
		return false
	}
	m.users[acc.profile.ID] = acc
	m.phones[acc.profile.Phone] = acc.profile.ID
	return true
}

func (m *memoryStore) userByPhone(phone string) (*account, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.phones[phone]
	if !ok {
		return nil, false
	}
	acc, ok := m.users[id]
	return acc, ok
}

func (m *memoryStore) profile(userID string) (dto.UserProfileRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.users[userID]
	if !ok {
		return dto.UserProfileRecord{}, false
	}
	return acc.profile, true
}

func (m *memoryStore) updateProfile(userID string, apply func(*dto.UserProfileRecord)) (dto.UserProfileRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.users[userID]
	if !ok {
		return dto.UserProfileRecord{}, false
	}
	apply(&acc.profile)
	return acc.profile, true
}

func (m *memoryStore) deleteUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.users[userID]; ok {
		delete(m.phones, acc.profile.Phone)
	}
	delete(m.users, userID)
	delete(m.archives, userID)
	delete(m.notifications, userID)
}

func (m *memoryStore) listArchives(userID, category string) []dto.ArchiveRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]dto.ArchiveRecord, 0, len(m.archives[userID]))
	for _, rec := range m.archives[userID] {
		if category == "" || rec.Category == category {
			out = append(out, rec)
		}
	}
	return out
}

func (m *memoryStore) archive(userID, id string) (dto.ArchiveRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.archives[userID] {
		if rec.ID == id {
			return rec, true
		}
	}
	return dto.ArchiveRecord{}, false
}

func (m *memoryStore) insertArchive(rec dto.ArchiveRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archives[rec.UserID] = append([]dto.ArchiveRecord{rec}, m.archives[rec.UserID]...)
}

func (m *memoryStore) updateArchive(userID, id string, apply func(*dto.ArchiveRecord)) (dto.ArchiveRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.archives[userID]
	for i := range recs {
		if recs[i].ID == id {
			apply(&recs[i])
			return recs[i], true
		}
	}
	return dto.ArchiveRecord{}, false
}

func (m *memoryStore) deleteArchive(userID, id string) (dto.ArchiveRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.archives[userID]
	for i, rec := range recs {
		if rec.ID == id {
			m.archives[userID] = append(recs[:i:i], recs[i+1:]...)
			return rec, true
		}
	}
	return dto.ArchiveRecord{}, false
}

func (m *memoryStore) listNotifications(userID string) []dto.NotificationRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]dto.NotificationRecord{}, m.notifications[userID]...)
}

func (m *memoryStore) insertNotification(rec dto.NotificationRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[rec.UserID] = append([]dto.NotificationRecord{rec}, m.notifications[rec.UserID]...)
}

// markRead marks one notification, or every notification when id is empty.
func (m *memoryStore) markRead(userID, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.notifications[userID]
	for i := range recs {
		if id == "" || recs[i].ID == id {
			recs[i].Read = true
		}
	}
}
