package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// insertTestFile inserts a record with sensible defaults, overridable per test.
func insertTestFile(t *testing.T, s *SQLiteStore, rec FileRecord) *FileRecord {
	t.Helper()
	if rec.Name == "" {
		rec.Name = rec.OriginalName
	}
	if rec.OriginalName == "" {
		rec.OriginalName = rec.Name
	}
	if rec.MimeType == "" {
		rec.MimeType = "application/octet-stream"
	}
	if rec.StorageRef == "" {
		rec.StorageRef = "ref-" + rec.Name + "-" + time.Now().Format("150405.000000000")
	}

	stored, err := s.Insert(context.Background(), &rec)
	require.NoError(t, err)
	return stored
}

func TestStore_Insert(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := &FileRecord{
		Name:         "Invoice.pdf",
		OriginalName: "Invoice.pdf",
		MimeType:     "application/pdf",
		Size:         2048,
		Notes:        "march invoice",
		StorageRef:   "ref-001",
	}

	stored, err := store.Insert(ctx, rec)
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)
	assert.Equal(t, "Invoice.pdf", stored.Name)
	assert.False(t, stored.UploadDate.IsZero(), "upload date should default to now")

	// Verify we can retrieve it
	retrieved, err := store.GetFile(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, retrieved.ID)
	assert.Equal(t, "application/pdf", retrieved.MimeType)
	assert.Equal(t, int64(2048), retrieved.Size)
	assert.Equal(t, "march invoice", retrieved.Notes)
	assert.Equal(t, "ref-001", retrieved.StorageRef)
}

func TestStore_Insert_KeepsSuppliedUploadDate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	stored, err := store.Insert(ctx, &FileRecord{
		Name:         "photo.png",
		OriginalName: "photo.png",
		MimeType:     "image/png",
		StorageRef:   "ref-002",
		UploadDate:   when,
	})
	require.NoError(t, err)

	retrieved, err := store.GetFile(ctx, stored.ID)
	require.NoError(t, err)
	assert.True(t, retrieved.UploadDate.Equal(when))
}

func TestStore_Insert_ReturnMatchesGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// A supplied timestamp with sub-second precision gets truncated on
	// write, and the returned record must reflect what was stored
	when := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)
	stored, err := store.Insert(ctx, &FileRecord{
		Name:         "notes.txt",
		OriginalName: "notes.txt",
		MimeType:     "text/plain",
		StorageRef:   "ref-003",
		UploadDate:   when,
	})
	require.NoError(t, err)

	retrieved, err := store.GetFile(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored, retrieved)
}

func TestStore_Insert_DuplicateStorageRef(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, &FileRecord{
		Name: "a", OriginalName: "a", MimeType: "text/plain", StorageRef: "same-ref",
	})
	require.NoError(t, err)

	_, err = store.Insert(ctx, &FileRecord{
		Name: "b", OriginalName: "b", MimeType: "text/plain", StorageRef: "same-ref",
	})
	assert.Error(t, err, "storageRef must be unique per record")
}

func TestStore_GetFile_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetFile(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateFile_PartialNotes(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := insertTestFile(t, store, FileRecord{Name: "report", Notes: "draft"})

	notes := "final"
	updated, err := store.UpdateFile(ctx, rec.ID, FileUpdate{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "report", updated.Name, "name must be untouched")
	assert.Equal(t, "final", updated.Notes)
}

func TestStore_UpdateFile_PartialName(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := insertTestFile(t, store, FileRecord{Name: "report", Notes: "draft"})

	name := "quarterly report"
	updated, err := store.UpdateFile(ctx, rec.ID, FileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "quarterly report", updated.Name)
	assert.Equal(t, "draft", updated.Notes, "notes must be untouched")
}

func TestStore_UpdateFile_EmptyStringIsAWrite(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := insertTestFile(t, store, FileRecord{Name: "report", Notes: "draft"})

	// Explicit empty string clears notes; absent (nil) would have kept them.
	empty := ""
	updated, err := store.UpdateFile(ctx, rec.ID, FileUpdate{Notes: &empty})
	require.NoError(t, err)
	assert.Equal(t, "", updated.Notes)
	assert.Equal(t, "report", updated.Name)
}

func TestStore_UpdateFile_NotFound(t *testing.T) {
	store := setupTestStore(t)

	name := "x"
	_, err := store.UpdateFile(context.Background(), 42, FileUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateFile_ImmutableFieldsStay(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := insertTestFile(t, store, FileRecord{
		Name: "pic", OriginalName: "pic.png", MimeType: "image/png", Size: 10,
	})

	name := "renamed"
	updated, err := store.UpdateFile(ctx, rec.ID, FileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, rec.OriginalName, updated.OriginalName)
	assert.Equal(t, rec.MimeType, updated.MimeType)
	assert.Equal(t, rec.Size, updated.Size)
	assert.Equal(t, rec.StorageRef, updated.StorageRef)
	assert.True(t, updated.UploadDate.Equal(rec.UploadDate))
}

func TestStore_DeleteFile_Idempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := insertTestFile(t, store, FileRecord{Name: "temp"})

	deleted, err := store.DeleteFile(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Second delete is a successful no-op
	deleted, err = store.DeleteFile(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = store.GetFile(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ConcurrentUpdatesAllApply(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := insertTestFile(t, store, FileRecord{Name: "contended", Notes: "start"})

	const writers = 8
	const updatesPerWriter = 25

	errCh := make(chan error, writers*updatesPerWriter)
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < updatesPerWriter; i++ {
				// Even writers set the name, odd writers the notes, so
				// both columns stay under contention
				var upd FileUpdate
				val := fmt.Sprintf("w%d-%d", w, i)
				if w%2 == 0 {
					upd.Name = &val
				} else {
					upd.Notes = &val
				}
				if _, err := store.UpdateFile(ctx, rec.ID, upd); err != nil {
					errCh <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		assert.NoError(t, err, "concurrent writers must queue, not fail")
	}

	// Every update was partial, so both columns hold some writer's value
	final, err := store.GetFile(ctx, rec.ID)
	require.NoError(t, err)
	assert.Regexp(t, `^w[0246]-\d+$`, final.Name)
	assert.Regexp(t, `^w[1357]-\d+$`, final.Notes)
}

func TestStore_ConcurrentDeleteAndUpdate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := insertTestFile(t, store, FileRecord{Name: "doomed"})

	errCh := make(chan error, 50)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := store.DeleteFile(ctx, rec.ID); err != nil {
			errCh <- err
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			name := fmt.Sprintf("rename-%d", i)
			_, err := store.UpdateFile(ctx, rec.ID, FileUpdate{Name: &name})
			// Racing a delete may find the row gone; anything else is a fault
			if err != nil && !errors.Is(err, ErrNotFound) {
				errCh <- err
			}
		}
	}()
	wg.Wait()
	close(errCh)

	for err := range errCh {
		assert.NoError(t, err)
	}

	_, err := store.GetFile(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_IDsNotReusedAfterDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := insertTestFile(t, store, FileRecord{Name: "first"})

	deleted, err := store.DeleteFile(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	second := insertTestFile(t, store, FileRecord{Name: "second"})
	assert.Greater(t, second.ID, first.ID, "ids must never be reused")
}
