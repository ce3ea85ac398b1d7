// delete.go - Admin material deletion: blob first, then the metadata
// row. Not transactional; a blob-store failure is logged and the row is
// removed anyway.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	"github.com/dreamingfree09/study-portal/internal/lib/sl"
	"github.com/dreamingfree09/study-portal/internal/store"
)

// deleteHandler handles GET /admin/delete/{id}. Deleting an id that does
// not exist is a no-op, not an error. The browser goes back where it
// came from.
func (cfg Config) deleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		back := r.Referer()
		if back == "" {
			back = "/dashboard"
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Redirect(w, r, back, http.StatusSeeOther)
			return
		}

		m, err := cfg.Materials.MaterialByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Redirect(w, r, back, http.StatusSeeOther)
				return
			}
			cfg.Log.Error("delete: lookup failed", sl.Err(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		if err := cfg.Blobs.Remove(r.Context(), m.BlobKey); err != nil {
			// Keep going; the metadata row still gets removed.
			cfg.Log.Error("delete: blob removal failed",
				slog.String("id", id.String()), sl.Err(err))
		}

		if err := cfg.Materials.DeleteMaterial(r.Context(), id); err != nil {
			cfg.Log.Error("delete: row delete failed", sl.Err(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		cfg.Log.Info("material deleted", slog.String("id", id.String()))
		http.Redirect(w, r, back, http.StatusSeeOther)
	}
}
