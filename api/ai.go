package api

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/giglink/giglink/internal/skills"
)

type AIHandler struct {
	llm *skills.LLMExtractor
}

// NewAIHandler wires the skill extraction endpoint. llm may be nil; the
// vocabulary extractor always answers.
func NewAIHandler(llm *skills.LLMExtractor) *AIHandler {
	return &AIHandler{llm: llm}
}

type extractSkillsRequest struct {
	Text string `json:"text"`
}

type extractSkillsResponse struct {
	Skills []string `json:"skills"`
}

// ExtractSkills returns the skills recognized in free text. The LLM path is
// best effort: any failure falls back to the deterministic vocabulary match.
func (h *AIHandler) ExtractSkills(w http.ResponseWriter, r *http.Request) {
	var req extractSkillsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	found := skills.Extract(req.Text)
	if h.llm != nil {
		if enriched, err := h.llm.Extract(r.Context(), req.Text); err == nil {
			found = enriched
		} else {
			logger.Warn("llm extraction failed, using vocabulary", slog.Any("err", err))
		}
	}

	if found == nil {
		found = []string{}
	}

	writeJSON(w, extractSkillsResponse{Skills: found}, http.StatusOK)
}
