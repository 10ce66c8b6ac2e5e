// Package storage implements the file collaborator used for avatars and
// platform icons: a flat directory of files whose names embed a UUID so
// uploads never collide.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore writes files under a single base directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the base directory when missing and returns the
// store.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Store writes data to a new file named "<base>__<uuid><ext>" derived from
// the client's original name, and returns that name as the file reference.
func (s *LocalStore) Store(data []byte, originalName string) (string, error) {
	base := originalName
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	name := fmt.Sprintf("%s__%s%s", base, uuid.NewString(), ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write file %s: %w", name, err)
	}
	return name, nil
}

// Delete removes a stored file by reference.
func (s *LocalStore) Delete(name string) error {
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("delete file %s: %w", name, err)
	}
	return nil
}

// Exists reports whether a stored file is still present.
func (s *LocalStore) Exists(name string) bool {
	_, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil
}
