package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// summaryResponse mirrors GET /dashboard/summary.
type summaryResponse struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary := s.deps.Summarize(r.Context())
	resp := summaryResponse{
		Total:    summary.Total,
		ByStatus: make(map[string]int, len(summary.ByStatus)),
	}
	for status, n := range summary.ByStatus {
		resp.ByStatus[status.String()] = n
	}
	writeJSON(w, http.StatusOK, resp)
}

// predictRequest mirrors POST /predict, a category preview used by the
// submission form before the issue is created.
type predictRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type predictResponse struct {
	Category string `json:"category"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	text := strings.TrimSpace(req.Title + "\n" + req.Description)
	if text == "" {
		writeBadRequest(w, "missing description")
		return
	}

	cat, err := s.deps.PredictCategory(r.Context(), text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, predictResponse{Category: cat.String()})
}
