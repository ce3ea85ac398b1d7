// materials.go - Paginated study-materials listing and the question-paper
// table, with their filter controls.
package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/dreamingfree09/study-portal/internal/lib/sl"
	"github.com/dreamingfree09/study-portal/internal/store"
)

const perPage = 10

// pageOffset converts a 1-based page number to a row offset. Pages at or
// below zero are tolerated and behave like page 1.
func pageOffset(page int) int {
	skip := (page - 1) * perPage
	if skip < 0 {
		return 0
	}
	return skip
}

// pageCount returns ceil(total / perPage).
func pageCount(total int) int {
	return (total + perPage - 1) / perPage
}

type materialsResponse struct {
	Materials       []store.Material `json:"materials"`
	Subjects        []string         `json:"subjects"`
	SearchQuery     string           `json:"search_query,omitempty"`
	SelectedSubject string           `json:"selected_subject,omitempty"`
	Page            int              `json:"page"`
	TotalPages      int              `json:"total_pages"`
	Total           int              `json:"total"`
}

// materialsHandler lists study materials with optional free-text search,
// subject filter and pagination. Requesting a page past the last simply
// yields an empty list.
func (cfg Config) materialsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, err := strconv.Atoi(q.Get("page"))
		if err != nil {
			page = 1
		}

		f := store.ListFilter{
			Category: store.CategoryStudyMaterial,
			Search:   q.Get("q"),
			Subject:  q.Get("subject"),
		}

		total, err := cfg.Materials.CountMaterials(r.Context(), f)
		if err != nil {
			cfg.Log.Error("materials: count failed", sl.Err(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		items, err := cfg.Materials.ListMaterials(r.Context(), f, pageOffset(page), perPage)
		if err != nil {
			cfg.Log.Error("materials: list failed", sl.Err(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		subjects, err := cfg.Materials.DistinctSubjects(r.Context(), store.CategoryStudyMaterial)
		if err != nil {
			cfg.Log.Error("materials: subjects failed", sl.Err(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, materialsResponse{
			Materials:       items,
			Subjects:        subjects,
			SearchQuery:     f.Search,
			SelectedSubject: f.Subject,
			Page:            page,
			TotalPages:      pageCount(total),
			Total:           total,
		})
	}
}

type questionPapersResponse struct {
	Papers   []store.Material `json:"papers"`
	Subjects []string         `json:"subjects"`
	Years    []string         `json:"years"`
}

// questionPapersHandler lists question papers filtered by subject, year
// and paper type, newest exam year first. Not paginated.
func (cfg Config) questionPapersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := store.ListFilter{
			Category:  store.CategoryQuestionPaper,
			Subject:   q.Get("subject"),
			Year:      q.Get("year"),
			PaperType: q.Get("paper_type"),
		}

		papers, err := cfg.Materials.ListMaterials(r.Context(), f, 0, 0)
		if err != nil {
			cfg.Log.Error("papers: list failed", sl.Err(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		subjects, err := cfg.Materials.DistinctSubjects(r.Context(), store.CategoryQuestionPaper)
		if err != nil {
			cfg.Log.Error("papers: subjects failed", sl.Err(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		years, err := cfg.Materials.DistinctYears(r.Context(), store.CategoryQuestionPaper)
		if err != nil {
			cfg.Log.Error("papers: years failed", sl.Err(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, questionPapersResponse{
			Papers:   papers,
			Subjects: subjects,
			Years:    years,
		})
	}
}
