// Package artifact allocates and removes temporary files for downloaded videos.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// VideoExt is appended to every allocated path.
const VideoExt = ".mp4"

// Store hands out collision-free paths inside a single working directory.
type Store struct {
	dir string
	log logrus.FieldLogger
}

// NewStore creates the working directory if it does not exist yet.
func NewStore(dir string, logger logrus.FieldLogger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir %s: %w", dir, err)
	}
	return &Store{
		dir: dir,
		log: logger.WithField("component", "artifact_store"),
	}, nil
}

// Dir returns the working directory.
func (s *Store) Dir() string {
	return s.dir
}

// Allocate returns a fresh path. Nothing is created on disk.
func (s *Store) Allocate() string {
	return filepath.Join(s.dir, uuid.NewString()+VideoExt)
}

// Remove deletes path. A missing file is not an error.
func (s *Store) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.WithError(err).WithField("path", path).Error("Failed to remove temp file")
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	s.log.WithField("path", path).Debug("Temp file removed")
	return nil
}
