package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-gallery/internal/gallery"
	"github.com/rs/zerolog"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// maxRequestBody bounds JSON bodies, which carry base64 images.
const maxRequestBody = 20 << 20

// Gallery is the set of gallery operations exposed over HTTP.
type Gallery interface {
	Register(ctx context.Context, p gallery.Profile, imageData []byte) (*gallery.Identity, error)
	Recognize(ctx context.Context, imageData []byte) (gallery.MatchResult, error)
	List(ctx context.Context) (iter.Seq2[gallery.ListedIdentity, error], error)
	Get(ctx context.Context, id int64) (*gallery.Identity, error)
	Update(ctx context.Context, id int64, p gallery.Profile, imageData []byte) (*gallery.Identity, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (gallery.Stats, error)
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusForError maps a gallery error kind to an HTTP status.
func statusForError(err error) int {
	switch {
	case errors.Is(err, gallery.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gallery.ErrNoFaceDetected),
		errors.Is(err, gallery.ErrInvalidProfile),
		errors.Is(err, gallery.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, gallery.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gallery.ErrExtraction):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondGalleryError maps err to a response. Server-side failures are logged
// and answered with a generic message.
func respondGalleryError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", sanitizeForLog(r.URL.Path)).Msg("request failed")
		if status == http.StatusBadGateway {
			respondError(w, status, "embedding extractor unavailable")
			return
		}
		respondError(w, status, "internal error")
		return
	}

	message := err.Error()
	switch {
	case errors.Is(err, gallery.ErrNoFaceDetected):
		message = "no face detected"
	case errors.Is(err, gallery.ErrNotFound):
		message = "identity not found"
	}
	respondError(w, status, message)
}

// decodeJSON reads a size-limited JSON body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%s: %w", errInvalidRequestBody, err)
	}
	return nil
}

// respondDecodeError answers a failed decodeJSON: 413 when the body exceeded
// maxRequestBody, 400 otherwise.
func respondDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return
	}
	respondError(w, http.StatusBadRequest, errInvalidRequestBody)
}

// decodeImage decodes a base64 image, accepting an optional data-URL prefix.
func decodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("image is not valid base64: %w", err)
	}
	return data, nil
}

// parseID reads the {id} URL parameter.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid identity id")
	}
	return id, nil
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
