package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"accentclash/internal/models"
	"accentclash/internal/service"
)

// CatalogHandler serves the practice content catalog
type CatalogHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, logger: logger}
}

type passageResponse struct {
	ID           int64    `json:"id"`
	Text         string   `json:"text"`
	Topic        string   `json:"topic"`
	Difficulty   string   `json:"difficulty"`
	CEFRLevel    string   `json:"cefrLevel"`
	PhonemeFocus []string `json:"phonemeFocus"`
	Tips         []string `json:"tips,omitempty"`
}

type twisterResponse struct {
	ID             int64    `json:"id"`
	Text           string   `json:"text"`
	TargetSpeed    string   `json:"targetSpeed"`
	TargetPhonemes []string `json:"targetPhonemes"`
	Tip            string   `json:"tip,omitempty"`
	Difficulty     string   `json:"difficulty"`
	CEFRLevel      string   `json:"cefrLevel"`
}

// ListPassages handles GET /api/catalog/passages?difficulty=
func (h *CatalogHandler) ListPassages(w http.ResponseWriter, r *http.Request) {
	difficulty := difficultyParam(r)
	passages, err := h.catalogService.ListPassages(r.Context(), difficulty)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}

	resp := make([]passageResponse, len(passages))
	for i, p := range passages {
		resp[i] = passageResponse{
			ID:           p.ID,
			Text:         p.Text,
			Topic:        p.Topic,
			Difficulty:   p.Difficulty,
			CEFRLevel:    p.CEFRLevel,
			PhonemeFocus: p.PhonemeFocus,
			Tips:         p.Tips,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// ListTwisters handles GET /api/catalog/twisters?difficulty=
func (h *CatalogHandler) ListTwisters(w http.ResponseWriter, r *http.Request) {
	difficulty := difficultyParam(r)
	twisters, err := h.catalogService.ListTwisters(r.Context(), difficulty)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}

	resp := make([]twisterResponse, len(twisters))
	for i, t := range twisters {
		resp[i] = twisterResponse{
			ID:             t.ID,
			Text:           t.Text,
			TargetSpeed:    t.TargetSpeed,
			TargetPhonemes: t.TargetPhonemes,
			Tip:            t.Tip,
			Difficulty:     t.Difficulty,
			CEFRLevel:      t.CEFRLevel,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func difficultyParam(r *http.Request) string {
	if d := r.URL.Query().Get("difficulty"); d != "" {
		return d
	}
	return models.DifficultyIntermediate
}
