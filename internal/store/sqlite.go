// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides file metadata persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// busy_timeout goes in the DSN so every pooled connection gets it,
	// making concurrent writers queue instead of failing with SQLITE_BUSY
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection serializes writers on our side as well
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
// AUTOINCREMENT keeps ids monotone: a deleted id is never handed out again.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			originalName TEXT NOT NULL,
			mimeType TEXT NOT NULL,
			size INTEGER NOT NULL,
			uploadDate DATETIME DEFAULT CURRENT_TIMESTAMP,
			notes TEXT DEFAULT '',
			storageRef TEXT NOT NULL UNIQUE
		);

		CREATE INDEX IF NOT EXISTS idx_files_upload_date
			ON files(uploadDate, id);

		CREATE INDEX IF NOT EXISTS idx_files_mime_type
			ON files(mimeType);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// Insert persists a new file record and returns the stored copy with its
// server-assigned id. UploadDate defaults to the current time when zero.
func (s *SQLiteStore) Insert(ctx context.Context, rec *FileRecord) (*FileRecord, error) {
	stored := *rec
	if stored.UploadDate.IsZero() {
		stored.UploadDate = time.Now()
	}
	// Match the persisted precision so the returned record equals a
	// subsequent GetFile of the same row
	stored.UploadDate = stored.UploadDate.UTC().Truncate(time.Second)

	query := `
		INSERT INTO files (name, originalName, mimeType, size, uploadDate, notes, storageRef)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		stored.Name,
		stored.OriginalName,
		stored.MimeType,
		stored.Size,
		stored.UploadDate.UTC().Format(time.RFC3339),
		stored.Notes,
		stored.StorageRef,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting file record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading inserted id: %w", err)
	}
	stored.ID = id

	s.logger.Debug("inserted file record", "id", stored.ID, "name", stored.Name, "storage_ref", stored.StorageRef)
	return &stored, nil
}

// GetFile retrieves a file record by id.
// Returns ErrNotFound if the record doesn't exist.
func (s *SQLiteStore) GetFile(ctx context.Context, id int64) (*FileRecord, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = ?`

	rec, err := scanFileRecord(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying file record: %w", err)
	}
	return rec, nil
}

// UpdateFile applies a partial update in a single statement. COALESCE keeps
// the stored value for nil fields, so one call can never land half-applied.
func (s *SQLiteStore) UpdateFile(ctx context.Context, id int64, upd FileUpdate) (*FileRecord, error) {
	query := `
		UPDATE files
		SET name = COALESCE(?, name), notes = COALESCE(?, notes)
		WHERE id = ?
	`

	res, err := s.db.ExecContext(ctx, query, upd.Name, upd.Notes, id)
	if err != nil {
		return nil, fmt.Errorf("updating file record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	s.logger.Debug("updated file record", "id", id)
	return s.GetFile(ctx, id)
}

// DeleteFile removes a file record by id and reports whether a row existed.
func (s *SQLiteStore) DeleteFile(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting file record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}

	if affected > 0 {
		s.logger.Debug("deleted file record", "id", id)
	}
	return affected > 0, nil
}

// ListFiles returns the records matching the filter. The SQL is compiled
// from the filter with all user text passed as bound arguments.
func (s *SQLiteStore) ListFiles(ctx context.Context, f ListFilter) ([]*FileRecord, error) {
	query, args := compileListQuery(f)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying file records: %w", err)
	}
	defer rows.Close()

	var records []*FileRecord
	for rows.Next() {
		rec, err := scanFileRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning file record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating file records: %w", err)
	}

	return records, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFileRecord(row rowScanner) (*FileRecord, error) {
	var rec FileRecord
	var uploadDateStr string

	if err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.OriginalName,
		&rec.MimeType,
		&rec.Size,
		&uploadDateStr,
		&rec.Notes,
		&rec.StorageRef,
	); err != nil {
		return nil, err
	}

	uploadDate, err := time.Parse(time.RFC3339, uploadDateStr)
	if err != nil {
		return nil, fmt.Errorf("parsing upload date: %w", err)
	}
	rec.UploadDate = uploadDate

	return &rec, nil
}
