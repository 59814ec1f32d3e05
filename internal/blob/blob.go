// ABOUTME: Binary object store abstraction for uploaded file bytes
// ABOUTME: Disk and MinIO backends share one interface keyed by opaque refs

package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a requested object does not exist
var ErrNotFound = errors.New("object not found")

// Store defines the interface for raw object persistence. The registry only
// ever holds the opaque ref; byte content never crosses into the metadata
// path.
type Store interface {
	// Put stores the bytes from r and returns a unique opaque ref plus the
	// number of bytes written. The ref embeds the original name for
	// debuggability but callers must treat it as opaque.
	Put(ctx context.Context, originalName string, r io.Reader) (ref string, size int64, err error)

	// Open returns a reader over the stored object, or ErrNotFound.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)

	// Delete removes the object. An already-missing object yields
	// ErrNotFound, which callers are free to treat as success.
	Delete(ctx context.Context, ref string) error
}
