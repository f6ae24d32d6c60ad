package demostore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/khadmahq/khadma/internal/models"
)

// FileStore keeps the demo session as a single JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath resolves the demo session file under the user config dir,
// falling back to the working directory when none is available.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "khadma", "demo_session.json")
	}
	return ".khadma_demo_session.json"
}

func (f *FileStore) Load() (*models.Session, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s models.Session
	if err := json.Unmarshal(b, &s); err != nil || s.UserID == "" {
		// corrupt record: discard and report no demo session
		_ = os.Remove(f.path)
		return nil, nil
	}
	return &s, nil
}

func (f *FileStore) Save(s *models.Session) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, b, 0o600)
}

func (f *FileStore) Clear() error {
	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
