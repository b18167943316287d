package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
)

type fileStore struct {
	path string
}

func NewFileStore(path string) Store {
	return &fileStore{path: path}
}

func (s *fileStore) Load(_ context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, appErrors.SessionStoreError("Failed to load session").WithError(err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, appErrors.SessionStoreError("Session file is corrupt").WithError(err)
	}

	return &snap, nil
}

func (s *fileStore) Save(_ context.Context, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return appErrors.SessionStoreError("Failed to encode session").WithError(err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return appErrors.SessionStoreError("Failed to create session directory").WithError(err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return appErrors.SessionStoreError("Failed to save session").WithError(err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return appErrors.SessionStoreError("Failed to save session").WithError(fmt.Errorf("rename %s: %w", tmp, err))
	}

	return nil
}

func (s *fileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return appErrors.SessionStoreError("Failed to clear session").WithError(err)
	}

	return nil
}
