package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DirProfiles = "perfiles"
	DirReports  = "reportes"
)

var ErrEmptyFile = errors.New("empty file")

// Store keeps uploaded files under a root directory. Saved files are
// addressed by their path relative to the root, with forward slashes.
type Store struct {
	logger zerolog.Logger
	root   string
}

func NewStore(logger zerolog.Logger, root string) *Store {
	return &Store{
		logger: logger,
		root:   root,
	}
}

func (s *Store) Root() string {
	return s.root
}

// Save copies the upload to <root>/<dir>/<uuid><ext> and returns
// "<dir>/<uuid><ext>".
func (s *Store) Save(fh *multipart.FileHeader, dir string) (string, error) {
	if fh == nil || fh.Size == 0 {
		return "", ErrEmptyFile
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}
	name := id.String() + strings.ToLower(filepath.Ext(fh.Filename))
	rel := path.Join(dir, name)

	if err = os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	written, err := io.Copy(dst, src)
	if err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	s.logger.Debug().
		Str("path", rel).
		Int64("bytes", written).
		Msg("saved uploaded file")
	return rel, nil
}

// Remove deletes a file previously returned by Save. A file that is
// already gone is not an error.
func (s *Store) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	clean := path.Clean("/" + rel)[1:]
	if clean == "" || clean != rel {
		return fmt.Errorf("invalid media path %q", rel)
	}

	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove media file: %w", err)
	}

	s.logger.Debug().
		Str("path", rel).
		Msg("removed media file")
	return nil
}
