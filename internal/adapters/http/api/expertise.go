package api

import (
	"net/http"

	"github.com/okian/triage/internal/domain/category"
)

// recommendResponse mirrors GET /expertise/recommend.
type recommendResponse struct {
	Category   string              `json:"category"`
	Candidates []candidateResponse `json:"candidates"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("category")
	if raw == "" {
		writeBadRequest(w, "missing category")
		return
	}
	cat, err := category.Parse(raw)
	if err != nil {
		writeBadRequest(w, "unknown category "+raw)
		return
	}

	candidates := s.deps.Recommend(r.Context(), cat)
	resp := recommendResponse{
		Category:   cat.String(),
		Candidates: make([]candidateResponse, 0, len(candidates)),
	}
	for _, c := range candidates {
		resp.Candidates = append(resp.Candidates, candidateResponse{
			DeveloperID: c.DeveloperID,
			Score:       c.Score,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
