// upload.go - Admin PDF upload: validation, blob write, metadata insert.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dreamingfree09/study-portal/internal/lib/sl"
	"github.com/dreamingfree09/study-portal/internal/store"
)

const pdfContentType = "application/pdf"

// allowedFile reports whether the filename carries a .pdf extension,
// case-insensitively. No content sniffing is done.
func allowedFile(filename string) bool {
	ext := filepath.Ext(filename)
	return ext != "" && strings.EqualFold(ext, ".pdf")
}

// sanitizeFilename strips path separators and other dangerous characters
// so the original name is safe to store as a display name.
func sanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.ReplaceAll(filename, "\x00", "")
	filename = strings.Trim(filename, " .")

	if len(filename) > 255 {
		ext := filepath.Ext(filename)
		filename = filename[:255-len(ext)] + ext
	}
	if filename == "" {
		filename = "unnamed"
	}
	return filename
}

// paperDetails are the extra required fields of a question-paper upload.
type paperDetails struct {
	Year      string
	PaperType string
}

// uploadRequest is the parsed upload form. Paper is non-nil only for the
// question-paper variant, so its required fields are settled at parse
// time instead of scattered runtime branching.
type uploadRequest struct {
	Category string
	Title    string
	Subject  string
	Paper    *paperDetails
}

// parseUploadForm validates the non-file fields. It checks presence
// only; whether Category names a known variant is decided later (see
// uploadHandler).
func parseUploadForm(r *http.Request) (uploadRequest, string) {
	req := uploadRequest{
		Category: r.PostFormValue("category"),
		Title:    strings.TrimSpace(r.PostFormValue("title")),
		Subject:  strings.TrimSpace(r.PostFormValue("subject")),
	}
	if req.Category == "" || req.Title == "" || req.Subject == "" {
		return req, "All required fields must be filled"
	}

	if req.Category == store.CategoryQuestionPaper {
		p := paperDetails{
			Year:      strings.TrimSpace(r.PostFormValue("year")),
			PaperType: strings.TrimSpace(r.PostFormValue("paper_type")),
		}
		if p.Year == "" || p.PaperType == "" {
			return req, "Year and Paper Type required for question papers"
		}
		req.Paper = &p
	}
	return req, ""
}

// uploadHandler handles POST /admin/upload_pdf. Validation fails fast
// with a specific reason before any write, with one exception: a
// category outside the known set is only rejected after the blob write,
// so such a request leaves an orphan blob behind. Existing clients rely
// on that ordering.
func (cfg Config) uploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.MaxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)
		}

		file, hdr, err := r.FormFile("pdf")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
				return
			}
			redirectWithError(w, r, "/admin/upload", "No file selected")
			return
		}
		defer func() { _ = file.Close() }()

		if hdr.Filename == "" || !allowedFile(hdr.Filename) {
			redirectWithError(w, r, "/admin/upload", "Only PDF files are allowed")
			return
		}
		filename := sanitizeFilename(hdr.Filename)

		req, errMsg := parseUploadForm(r)
		if errMsg != "" {
			redirectWithError(w, r, "/admin/upload", errMsg)
			return
		}

		blobKey := store.NewBlobKey()
		if err := cfg.Blobs.Put(r.Context(), blobKey, file, hdr.Size, pdfContentType); err != nil {
			cfg.Log.Error("upload: blob put failed", sl.Err(err))
			http.Error(w, "storage error", http.StatusBadGateway)
			return
		}

		if !store.ValidCategory(req.Category) {
			// The blob written above is not cleaned up here.
			redirectWithError(w, r, "/admin/upload", "Invalid upload category")
			return
		}

		m := store.Material{
			ID:        uuid.New(),
			Title:     req.Title,
			Subject:   req.Subject,
			Category:  req.Category,
			Downloads: 0,
			BlobKey:   blobKey,
			FileName:  filename,
		}
		if req.Paper != nil {
			m.Year = req.Paper.Year
			m.PaperType = req.Paper.PaperType
		}

		if err := cfg.Materials.InsertMaterial(r.Context(), m); err != nil {
			cfg.Log.Error("upload: insert failed", sl.Err(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		cfg.Log.Info("material uploaded",
			slog.String("id", m.ID.String()),
			slog.String("category", m.Category),
			slog.String("title", m.Title),
		)
		http.Redirect(w, r, "/admin/upload", http.StatusSeeOther)
	}
}
