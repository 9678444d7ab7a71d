package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"
)

const credentialsFile = "credentials.json"

type fileBackend interface {
	Save(filename string, data []byte) (string, error)
	Read(filename string) ([]byte, error)
	Delete(filename string) error
}

// FileStore keeps credentials in a user-private JSON file.
type FileStore struct {
	mu    sync.Mutex
	files fileBackend
}

// NewFileStore wraps a private storage directory.
func NewFileStore(files fileBackend) *FileStore {
	return &FileStore{files: files}
}

func (s *FileStore) Get(ctx context.Context) (Credentials, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.files.Read(credentialsFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, false, nil
		}
		return Credentials{}, false, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, false, fmt.Errorf("decode credentials: %w", err)
	}
	if creds.Token == "" {
		return Credentials{}, false, nil
	}
	return creds, true, nil
}

func (s *FileStore) Set(ctx context.Context, token, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(Credentials{Token: token, UserID: userID})
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	_, err = s.files.Save(credentialsFile, data)
	return err
}

func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files.Delete(credentialsFile)
}
