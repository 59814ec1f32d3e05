// ABOUTME: Local-disk implementation of the blob Store interface
// ABOUTME: Objects are flat files under a data directory with uuid-prefixed names

package blob

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStore stores objects as flat files under a single directory.
type DiskStore struct {
	dir    string
	logger *slog.Logger
}

// NewDiskStore creates the data directory if needed and returns a store over it.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	return &DiskStore{
		dir:    dir,
		logger: slog.Default().With("component", "blob"),
	}, nil
}

// Put writes the object to a uuid-prefixed file and fsyncs it before
// returning, so a returned ref always points at durable bytes.
func (s *DiskStore) Put(ctx context.Context, originalName string, r io.Reader) (string, int64, error) {
	ref := uuid.NewString() + "-" + sanitizeName(originalName)

	f, err := os.OpenFile(filepath.Join(s.dir, ref), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", 0, fmt.Errorf("creating object file: %w", err)
	}

	size, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(filepath.Join(s.dir, ref))
		return "", 0, fmt.Errorf("writing object: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(filepath.Join(s.dir, ref))
		return "", 0, fmt.Errorf("syncing object: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(filepath.Join(s.dir, ref))
		return "", 0, fmt.Errorf("closing object: %w", err)
	}

	s.logger.Debug("stored object", "ref", ref, "size", size)
	return ref, size, nil
}

// Open returns a reader over the stored object.
func (s *DiskStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.dir, ref))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("opening object: %w", err)
	}
	return f, nil
}

// Delete removes the object file. A missing file yields ErrNotFound.
func (s *DiskStore) Delete(ctx context.Context, ref string) error {
	if err := validateRef(ref); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(s.dir, ref))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("removing object: %w", err)
	}

	s.logger.Debug("deleted object", "ref", ref)
	return nil
}

// sanitizeName strips path components and separators from an upload name so
// the ref is always a plain file name.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	if name == "" || name == "." || name == ".." {
		name = "upload"
	}
	return name
}

// validateRef rejects refs that could escape the data directory. Refs are
// generated by Put, so anything with a path component is hostile input.
func validateRef(ref string) error {
	if ref == "" || filepath.Base(ref) != ref {
		return fmt.Errorf("invalid object ref %q", ref)
	}
	return nil
}
