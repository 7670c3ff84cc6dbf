package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-gallery/internal/gallery"
	"github.com/rs/zerolog"
)

const messageNotRecognized = "face not recognized"

// RecognizeHandler handles face recognition
type RecognizeHandler struct {
	gallery Gallery
	log     zerolog.Logger
}

// NewRecognizeHandler creates a new recognize handler
func NewRecognizeHandler(g Gallery, log zerolog.Logger) *RecognizeHandler {
	return &RecognizeHandler{gallery: g, log: log}
}

type recognizeRequest struct {
	Image string `json:"image"`
}

type recognizeResponse struct {
	Matched    bool                     `json:"matched"`
	Message    string                   `json:"message,omitempty"`
	Identity   *gallery.MatchedIdentity `json:"identity,omitempty"`
	Similarity float64                  `json:"similarity"`
	Alert      bool                     `json:"alert"`
}

// Recognize matches the posted face against the gallery.
// Not recognizing anyone is a 200 with matched=false.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	var req recognizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}
	if req.Image == "" {
		respondError(w, http.StatusBadRequest, "image is required")
		return
	}
	img, err := decodeImage(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.gallery.Recognize(r.Context(), img)
	if err != nil {
		respondGalleryError(w, r, h.log, err)
		return
	}

	resp := recognizeResponse{
		Matched:    res.Matched,
		Identity:   res.Identity,
		Similarity: res.Similarity,
		Alert:      res.Alert,
	}
	if !res.Matched {
		resp.Message = messageNotRecognized
	}
	respondJSON(w, http.StatusOK, resp)
}
