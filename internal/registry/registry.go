// ABOUTME: Record lifecycle manager coordinating metadata rows with stored objects
// ABOUTME: Exposes the list/create/update/delete operations behind the HTTP boundary

package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/2389/fold-drive/internal/blob"
	"github.com/2389/fold-drive/internal/store"
)

// Service sequences mutations that touch both the metadata store and the
// binary object store, and normalizes listing input.
type Service struct {
	store  store.Store
	blobs  blob.Store
	logger *slog.Logger
}

// New creates a registry service over the given stores.
func New(st store.Store, blobs blob.Store) *Service {
	return &Service{
		store:  st,
		blobs:  blobs,
		logger: slog.Default().With("component", "registry"),
	}
}

// CreateRequest describes a completed upload. The bytes must already be
// durable at StorageRef before Create is called; ingestion is a
// precondition, not a step.
type CreateRequest struct {
	StorageRef   string
	OriginalName string
	MimeType     string
	Size         int64
	Name         *string // display name; nil or empty falls back to OriginalName
	Notes        *string // nil falls back to ""
}

// UpdateRequest carries a partial update. A nil field keeps the stored
// value; a pointer to the empty string clears it.
type UpdateRequest struct {
	Name  *string
	Notes *string
}

// ListRequest is raw boundary input. Unknown type/sort values are coerced
// to their defaults and the search term is trimmed.
type ListRequest struct {
	Search string
	Type   string
	Sort   string
}

// DeleteResult reports whether a row existed when Delete ran.
type DeleteResult struct {
	Deleted bool
}

// Create inserts the metadata record for an already-stored object. If the
// insert fails the object is left in place for reconciliation; the registry
// does not roll back object-store writes.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*store.FileRecord, error) {
	name := req.OriginalName
	if req.Name != nil && *req.Name != "" {
		name = *req.Name
	}
	notes := ""
	if req.Notes != nil {
		notes = *req.Notes
	}

	rec, err := s.store.Insert(ctx, &store.FileRecord{
		Name:         name,
		OriginalName: req.OriginalName,
		MimeType:     req.MimeType,
		Size:         req.Size,
		Notes:        notes,
		StorageRef:   req.StorageRef,
	})
	if err != nil {
		s.logger.Error("metadata insert failed, object left for reconciliation",
			"storage_ref", req.StorageRef,
			"original_name", req.OriginalName,
			"error", err,
		)
		return nil, fmt.Errorf("creating file record: %w", err)
	}

	s.logger.Info("file created", "id", rec.ID, "name", rec.Name, "mime_type", rec.MimeType, "size", rec.Size)
	return rec, nil
}

// Get returns a single record by id, or store.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*store.FileRecord, error) {
	return s.store.GetFile(ctx, id)
}

// Update applies the partial update. Absent fields keep their stored value.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*store.FileRecord, error) {
	return s.store.UpdateFile(ctx, id, store.FileUpdate{
		Name:  req.Name,
		Notes: req.Notes,
	})
}

// Delete removes the backing object best-effort, then the metadata row.
// A record that never existed is a successful no-op with Deleted=false.
// Object-store failures never block the row's removal.
func (s *Service) Delete(ctx context.Context, id int64) (DeleteResult, error) {
	rec, err := s.store.GetFile(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return DeleteResult{Deleted: false}, nil
	}
	if err != nil {
		return DeleteResult{}, fmt.Errorf("looking up file record: %w", err)
	}

	if err := s.blobs.Delete(ctx, rec.StorageRef); err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			s.logger.Warn("backing object already missing", "id", id, "storage_ref", rec.StorageRef)
		} else {
			s.logger.Warn("object delete failed, removing metadata row anyway",
				"id", id, "storage_ref", rec.StorageRef, "error", err)
		}
	}

	deleted, err := s.store.DeleteFile(ctx, id)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("deleting file record: %w", err)
	}

	if deleted {
		s.logger.Info("file deleted", "id", id)
	}
	return DeleteResult{Deleted: deleted}, nil
}

// List normalizes the raw request and runs the filtered query.
func (s *Service) List(ctx context.Context, req ListRequest) ([]*store.FileRecord, error) {
	return s.store.ListFiles(ctx, store.ListFilter{
		Search:   strings.TrimSpace(req.Search),
		Category: store.ParseCategory(req.Type),
		Sort:     store.ParseSortOrder(req.Sort),
	})
}
