package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// mediaDirDefault is the base directory for archived upload media.
const mediaDirDefault = "_media"

// MediaStore archives the raw bytes of uploaded recordings. The recording
// row remains the source of truth; the archive is a convenience copy and
// callers treat failures as non-fatal.
type MediaStore interface {
	// Save stores the media under the recording id, keeping the original
	// file extension, and returns the path written.
	Save(recordingID, filename string, media []byte) (string, error)
	// Remove deletes any archived media for the recording id.
	Remove(recordingID string) error
}

// LocalMediaStore implements MediaStore on the local file system.
type LocalMediaStore struct {
	basePath string
}

// NewLocalMediaStore creates a LocalMediaStore. An empty basePath defaults
// to mediaDirDefault.
func NewLocalMediaStore(basePath string) *LocalMediaStore {
	if basePath == "" {
		basePath = mediaDirDefault
	}
	return &LocalMediaStore{basePath: basePath}
}

func (s *LocalMediaStore) Save(recordingID, filename string, media []byte) (string, error) {
	if recordingID == "" {
		return "", fmt.Errorf("recordingID cannot be empty for archiving media")
	}

	ext := filepath.Ext(filename)
	path := filepath.Join(s.basePath, recordingID+ext)

	if err := os.MkdirAll(s.basePath, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	if err := os.WriteFile(path, media, 0644); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	return path, nil
}

// Remove deletes the archived file for the id regardless of extension.
// A missing file is not an error.
func (s *LocalMediaStore) Remove(recordingID string) error {
	if recordingID == "" {
		return fmt.Errorf("recordingID cannot be empty")
	}

	matches, err := filepath.Glob(filepath.Join(s.basePath, recordingID+".*"))
	if err != nil {
		return fmt.Errorf("failed to locate media files: %w", err)
	}

	for _, path := range matches {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove media file %s: %w", path, err)
		}
	}

	return nil
}
