// ABOUTME: Store interface and data types for fold-drive file metadata persistence
// ABOUTME: Defines FileRecord, ListFilter and sentinel errors for registry operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested file record does not exist
var ErrNotFound = errors.New("file not found")

// Category classifies records by mimeType for the list filter.
type Category string

const (
	CategoryAll      Category = "all"
	CategoryImage    Category = "image"
	CategoryDocument Category = "document"
	CategoryOther    Category = "other"
)

// ParseCategory maps a raw type value to a Category.
// Unknown values fall back to CategoryAll rather than failing the query.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryImage, CategoryDocument, CategoryOther:
		return Category(s)
	default:
		return CategoryAll
	}
}

// SortOrder selects the uploadDate ordering for listings.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// ParseSortOrder maps a raw sort value to a SortOrder, defaulting to newest.
func ParseSortOrder(s string) SortOrder {
	if SortOrder(s) == SortOldest {
		return SortOldest
	}
	return SortNewest
}

// FileRecord represents a single row of file metadata.
// Only Name and Notes are mutable after creation.
type FileRecord struct {
	ID           int64
	Name         string
	OriginalName string
	MimeType     string
	Size         int64
	UploadDate   time.Time
	Notes        string
	StorageRef   string // opaque reference into the binary object store
}

// FileUpdate carries a partial update. A nil field keeps the stored value;
// a pointer to the empty string is a real write.
type FileUpdate struct {
	Name  *string
	Notes *string
}

// ListFilter selects and orders records for ListFiles. The axes are
// independent and combined with AND.
type ListFilter struct {
	Search   string // case-insensitive substring over name and notes; empty = no constraint
	Category Category
	Sort     SortOrder
}

// Store defines the interface for file metadata persistence
type Store interface {
	// Insert assigns a new id, persists the record and returns the stored copy.
	// UploadDate defaults to the current time when zero.
	Insert(ctx context.Context, rec *FileRecord) (*FileRecord, error)

	// GetFile returns the record with the given id, or ErrNotFound.
	GetFile(ctx context.Context, id int64) (*FileRecord, error)

	// UpdateFile applies a partial update and returns the updated record.
	// Returns ErrNotFound when no row has the given id.
	UpdateFile(ctx context.Context, id int64, upd FileUpdate) (*FileRecord, error)

	// DeleteFile removes the row and reports whether it existed.
	// A missing row is a successful no-op, not an error.
	DeleteFile(ctx context.Context, id int64) (bool, error)

	// ListFiles returns the records matching the filter in filter order.
	ListFiles(ctx context.Context, f ListFilter) ([]*FileRecord, error)

	// Close releases any resources held by the store
	Close() error
}
