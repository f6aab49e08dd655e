package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Store writes finished archives to a local directory.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates a store rooted at dir. The directory is created lazily on
// the first save.
func NewStore(dir string, logger *zap.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logger.Named("archive_store"),
	}
}

// Save writes the archive under the store directory and returns its absolute
// path.
func (s *Store) Save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write archive %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		// The file is on disk; fall back to the relative path.
		abs = path
	}

	s.logger.Info("Saved backup archive",
		zap.String("path", abs),
		zap.Int("bytes", len(data)),
	)

	return abs, nil
}
