package handlers

import (
	"net/http"

	"github.com/rs/zerolog"
)

// StatsHandler handles statistics endpoints
type StatsHandler struct {
	gallery Gallery
	log     zerolog.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(g Gallery, log zerolog.Logger) *StatsHandler {
	return &StatsHandler{gallery: g, log: log}
}

// Get returns gallery size and matching parameters
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.gallery.Stats(r.Context())
	if err != nil {
		respondGalleryError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
