// ABOUTME: HTTP handlers mapping JSON requests onto the file registry
// ABOUTME: Provides list, upload, update, delete, download and suggestion routes

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/2389/fold-drive/internal/blob"
	"github.com/2389/fold-drive/internal/registry"
	"github.com/2389/fold-drive/internal/store"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing;
// larger uploads spill to temp files.
const maxUploadMemory = 32 << 20

// Suggester proposes note text for a file. Nil disables the feature.
type Suggester interface {
	Suggest(ctx context.Context, name, mimeType string) (string, error)
}

// API holds the handlers for the /api routes.
type API struct {
	registry  *registry.Service
	blobs     blob.Store
	suggester Suggester
	logger    *slog.Logger
}

// New creates the API handler set. suggester may be nil.
func New(reg *registry.Service, blobs blob.Store, suggester Suggester) *API {
	return &API{
		registry:  reg,
		blobs:     blobs,
		suggester: suggester,
		logger:    slog.Default().With("component", "api"),
	}
}

// RegisterRoutes registers the API routes on the given mux. Authentication
// is applied by the caller around the whole mux.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/files", a.handleListFiles)
	mux.HandleFunc("POST /api/files", a.handleUploadFile)
	mux.HandleFunc("PATCH /api/files/{id}", a.handleUpdateFile)
	mux.HandleFunc("DELETE /api/files/{id}", a.handleDeleteFile)
	mux.HandleFunc("GET /api/files/{id}/download", a.handleDownloadFile)
	mux.HandleFunc("POST /api/suggest", a.handleSuggest)
}

// FileResponse is the JSON shape of a file record. The storage ref stays
// internal; bytes are served through the download route instead.
type FileResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	UploadDate   string `json:"uploadDate"`
	Notes        string `json:"notes"`
}

// UpdateFileRequest is the JSON request body for PATCH /api/files/{id}.
// Absent fields keep their stored value; explicit empty strings clear.
type UpdateFileRequest struct {
	Name  *string `json:"name"`
	Notes *string `json:"notes"`
}

// DeleteFileResponse is the JSON response for DELETE /api/files/{id}.
type DeleteFileResponse struct {
	Deleted bool `json:"deleted"`
}

// SuggestRequest is the JSON request body for POST /api/suggest.
type SuggestRequest struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// SuggestResponse is the JSON response for POST /api/suggest.
type SuggestResponse struct {
	Suggestion string `json:"suggestion"`
}

func toFileResponse(rec *store.FileRecord) FileResponse {
	return FileResponse{
		ID:           rec.ID,
		Name:         rec.Name,
		OriginalName: rec.OriginalName,
		MimeType:     rec.MimeType,
		Size:         rec.Size,
		UploadDate:   rec.UploadDate.UTC().Format(time.RFC3339),
		Notes:        rec.Notes,
	}
}

// handleListFiles handles GET /api/files with optional search/type/sort
// query parameters. Unknown type/sort values behave as all/newest.
func (a *API) handleListFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	records, err := a.registry.List(r.Context(), registry.ListRequest{
		Search: q.Get("search"),
		Type:   q.Get("type"),
		Sort:   q.Get("sort"),
	})
	if err != nil {
		a.logger.Error("listing files failed", "error", err)
		a.sendJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	response := make([]FileResponse, 0, len(records))
	for _, rec := range records {
		response = append(response, toFileResponse(rec))
	}
	a.sendJSON(w, http.StatusOK, response)
}

// handleUploadFile handles POST /api/files. The multipart "file" part is
// streamed into the object store first; the metadata row is created only
// once the bytes are durable.
func (a *API) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		a.sendJSONError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.sendJSONError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	// Strip any parameters so the stored type is just type/subtype
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}

	ref, size, err := a.blobs.Put(r.Context(), header.Filename, file)
	if err != nil {
		a.logger.Error("storing upload failed", "name", header.Filename, "error", err)
		a.sendJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	req := registry.CreateRequest{
		StorageRef:   ref,
		OriginalName: header.Filename,
		MimeType:     mimeType,
		Size:         size,
	}
	if name := r.FormValue("name"); name != "" {
		req.Name = &name
	}
	if notes := r.FormValue("notes"); notes != "" {
		req.Notes = &notes
	}

	rec, err := a.registry.Create(r.Context(), req)
	if err != nil {
		a.sendJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	a.sendJSON(w, http.StatusOK, toFileResponse(rec))
}

// handleUpdateFile handles PATCH /api/files/{id} with a partial JSON body.
func (a *API) handleUpdateFile(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}

	var req UpdateFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := a.registry.Update(r.Context(), id, registry.UpdateRequest{
		Name:  req.Name,
		Notes: req.Notes,
	})
	if errors.Is(err, store.ErrNotFound) {
		a.sendJSONError(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		a.logger.Error("updating file failed", "id", id, "error", err)
		a.sendJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	a.sendJSON(w, http.StatusOK, toFileResponse(rec))
}

// handleDeleteFile handles DELETE /api/files/{id}. Deletion is idempotent:
// a missing id is a 200 with deleted=false, never an error.
func (a *API) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}

	res, err := a.registry.Delete(r.Context(), id)
	if err != nil {
		a.logger.Error("deleting file failed", "id", id, "error", err)
		a.sendJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	a.sendJSON(w, http.StatusOK, DeleteFileResponse{Deleted: res.Deleted})
}

// handleDownloadFile handles GET /api/files/{id}/download, streaming the
// stored bytes with the recorded content type.
func (a *API) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}

	rec, err := a.registry.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		a.sendJSONError(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		a.logger.Error("looking up file failed", "id", id, "error", err)
		a.sendJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	rc, err := a.blobs.Open(r.Context(), rec.StorageRef)
	if errors.Is(err, blob.ErrNotFound) {
		a.sendJSONError(w, http.StatusNotFound, "file content missing")
		return
	}
	if err != nil {
		a.logger.Error("opening object failed", "id", id, "storage_ref", rec.StorageRef, "error", err)
		a.sendJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", rec.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.Name))
	w.Header().Set("Content-Length", strconv.FormatInt(rec.Size, 10))
	if _, err := io.Copy(w, rc); err != nil {
		a.logger.Warn("streaming download interrupted", "id", id, "error", err)
	}
}

// handleSuggest handles POST /api/suggest. The suggestion service is
// best-effort: failures degrade to 503 and never touch the registry.
func (a *API) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if a.suggester == nil {
		a.sendJSONError(w, http.StatusServiceUnavailable, "suggestions unavailable")
		return
	}

	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		a.sendJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	suggestion, err := a.suggester.Suggest(r.Context(), req.Name, req.MimeType)
	if err != nil {
		a.logger.Warn("suggestion failed", "name", req.Name, "error", err)
		a.sendJSONError(w, http.StatusServiceUnavailable, "suggestions unavailable")
		return
	}

	a.sendJSON(w, http.StatusOK, SuggestResponse{Suggestion: suggestion})
}

// pathID parses the {id} path value, writing a 400 response on failure.
func (a *API) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		a.sendJSONError(w, http.StatusBadRequest, "invalid file id")
		return 0, false
	}
	return id, true
}

func (a *API) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("encoding response failed", "error", err)
	}
}

func (a *API) sendJSONError(w http.ResponseWriter, status int, msg string) {
	a.sendJSON(w, status, map[string]string{"error": msg})
}
