// download.go - Blob serving with the download counter, and metadata
// preview.
package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/dreamingfree09/study-portal/internal/lib/sl"
	"github.com/dreamingfree09/study-portal/internal/store"
)

// serveFileHandler streams a material's PDF inline. The counter is bumped
// by one before the blob fetch, so every retrieval that reaches the blob
// store counts exactly once; preview never touches the counter.
func (cfg Config) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "PDF not found", http.StatusNotFound)
			return
		}

		m, err := cfg.Materials.MaterialByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "PDF not found", http.StatusNotFound)
				return
			}
			cfg.Log.Error("serve: lookup failed", sl.Err(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		if err := cfg.Materials.IncrementDownloads(r.Context(), id); err != nil {
			cfg.Log.Error("serve: increment failed", sl.Err(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		obj, err := cfg.Blobs.Get(r.Context(), m.BlobKey)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "PDF not found", http.StatusNotFound)
				return
			}
			cfg.Log.Error("serve: blob get failed", sl.Err(err))
			http.Error(w, "storage error", http.StatusBadGateway)
			return
		}
		defer func() { _ = obj.Close() }()

		w.Header().Set("Content-Type", pdfContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, m.FileName))
		w.WriteHeader(http.StatusOK)
		_, _ = io.Copy(w, obj)
	}
}

type previewResponse struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Subject string `json:"subject"`
}

// previewHandler returns the display metadata for the inline preview
// page without counting a download.
func (cfg Config) previewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "PDF not found", http.StatusNotFound)
			return
		}

		m, err := cfg.Materials.MaterialByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "PDF not found", http.StatusNotFound)
				return
			}
			cfg.Log.Error("preview: lookup failed", sl.Err(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, previewResponse{
			ID:      m.ID.String(),
			Title:   m.Title,
			Subject: m.Subject,
		})
	}
}
