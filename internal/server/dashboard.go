package server

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/dreamingfree09/study-portal/internal/lib/sl"
	"github.com/dreamingfree09/study-portal/internal/store"
)

const recentCount = 5

type dashboardResponse struct {
	Name                string           `json:"name"`
	TotalStudyMaterials int              `json:"total_study_materials"`
	TotalQuestionPapers int              `json:"total_question_papers"`
	Recent              []store.Material `json:"recent_materials"`
}

// dashboardHandler returns per-category totals and the five most recently
// uploaded materials across both categories.
func (cfg Config) dashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())

		papers, err := cfg.Materials.CountByCategory(r.Context(), store.CategoryQuestionPaper)
		if err != nil {
			cfg.Log.Error("dashboard: count papers failed", sl.Err(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		study, err := cfg.Materials.CountByCategory(r.Context(), store.CategoryStudyMaterial)
		if err != nil {
			cfg.Log.Error("dashboard: count materials failed", sl.Err(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		recent, err := cfg.Materials.RecentMaterials(r.Context(), recentCount)
		if err != nil {
			cfg.Log.Error("dashboard: recent failed", sl.Err(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, dashboardResponse{
			Name:                sess.Name,
			TotalStudyMaterials: study,
			TotalQuestionPapers: papers,
			Recent:              recent,
		})
	}
}
