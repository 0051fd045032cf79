package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"calmmate/internal/domain"
)

// allowedFormats is the set of container extensions clients may declare on
// upload.
var allowedFormats = map[string]bool{
	"webm": true,
	"wav":  true,
	"mp3":  true,
	"ogg":  true,
}

// Store keeps artifacts in one flat directory, each file named by its opaque
// identifier plus the store's canonical extension. Paths are computable from
// the identifier alone, so no index needs to be persisted.
type Store struct {
	dir string
	ext string
}

func NewStore(dir, ext string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	return &Store{dir: dir, ext: strings.TrimPrefix(ext, ".")}, nil
}

func (s *Store) Dir() string { return s.dir }

// Format is the canonical container extension of every artifact in this store.
func (s *Store) Format() string { return s.ext }

// Put validates the client's declared extension against the allow-list,
// assigns a fresh identifier and writes the bytes. Exactly one file is
// created on success; nothing is written on rejection.
func (s *Store) Put(data []byte, declaredExt string) (string, error) {
	declaredExt = strings.ToLower(strings.TrimPrefix(declaredExt, "."))
	if !allowedFormats[declaredExt] {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, declaredExt)
	}

	id := uuid.NewString()
	if err := os.WriteFile(s.PathFor(id), data, 0644); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return id, nil
}

// PathFor is a pure lookup; it does not verify the file exists.
func (s *Store) PathFor(id string) string {
	return filepath.Join(s.dir, id+"."+s.ext)
}

func (s *Store) Exists(id string) bool {
	info, err := os.Stat(s.PathFor(id))
	return err == nil && !info.IsDir()
}

// AgeOf derives an artifact's age from its modification timestamp.
func (s *Store) AgeOf(path string) (time.Duration, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return time.Since(info.ModTime()), nil
}

// Delete removes an artifact. A file that is already gone counts as success,
// so concurrent sweeps and reads may race freely.
func (s *Store) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}
