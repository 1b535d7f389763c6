package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PublicPrefix is the URL path under which disk-stored images are served.
const PublicPrefix = "/uploads/"

// DiskStore keeps images in a local directory.
type DiskStore struct {
	dir    string
	logger zerolog.Logger
}

// NewDiskStore creates the upload directory if needed and returns a store
// writing into it.
func NewDiskStore(dir string, logger zerolog.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}

	return &DiskStore{
		dir:    dir,
		logger: logger.With().Str("component", "disk-image-store").Logger(),
	}, nil
}

// Dir returns the directory images are written to.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save writes the upload to a new uniquely named file.
func (s *DiskStore) Save(ctx context.Context, upload *Upload) (string, error) {
	ext, err := Extension(upload.Filename)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := "image-" + uuid.NewString() + ext
	target := filepath.Join(s.dir, name)

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		s.logger.Error().Err(err).Str("file", target).Msg("failed to create image file")
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(f, upload.Body); err != nil {
		f.Close()
		os.Remove(target)
		s.logger.Error().Err(err).Str("file", target).Msg("failed to write image file")
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to close image file: %w", err)
	}

	s.logger.Debug().Str("file", target).Msg("image stored")

	return PublicPrefix + name, nil
}

// Delete removes the file behind a reference produced by Save. References
// that do not point into the upload directory are rejected.
func (s *DiskStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name, ok := strings.CutPrefix(ref, PublicPrefix)
	if !ok || name == "" || name != path.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("image reference %q is outside the upload directory", ref)
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image %s: %w", ref, err)
	}

	return nil
}
