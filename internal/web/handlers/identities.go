package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-gallery/internal/gallery"
	"github.com/rs/zerolog"
)

// IdentitiesHandler handles enrollment endpoints.
type IdentitiesHandler struct {
	gallery Gallery
	log     zerolog.Logger
}

// NewIdentitiesHandler creates a new identities handler
func NewIdentitiesHandler(g Gallery, log zerolog.Logger) *IdentitiesHandler {
	return &IdentitiesHandler{gallery: g, log: log}
}

// identityRequest is the register/update body. Every profile field except
// flagged is required; image is required on register only.
type identityRequest struct {
	GivenName  *string `json:"given_name"`
	FamilyName *string `json:"family_name"`
	Code       *string `json:"code"`
	Email      *string `json:"email"`
	Flagged    *bool   `json:"flagged"`
	Image      *string `json:"image"`
}

// profile validates presence of the required fields and builds a Profile.
func (req identityRequest) profile() (gallery.Profile, error) {
	p := gallery.Profile{
		GivenName:  deref(req.GivenName),
		FamilyName: deref(req.FamilyName),
		Code:       deref(req.Code),
		Email:      deref(req.Email),
	}
	if req.Flagged != nil {
		p.Flagged = *req.Flagged
	}
	return p, p.Validate()
}

// image decodes the image field; nil when absent or empty.
func (req identityRequest) image() ([]byte, error) {
	if req.Image == nil || *req.Image == "" {
		return nil, nil
	}
	return decodeImage(*req.Image)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Create registers a new identity
func (h *IdentitiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req identityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	p, err := req.profile()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	img, err := req.image()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if img == nil {
		respondError(w, http.StatusBadRequest, "image is required")
		return
	}

	identity, err := h.gallery.Register(r.Context(), p, img)
	if err != nil {
		respondGalleryError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, identity)
}

// List returns every identity with its image inlined
func (h *IdentitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	seq, err := h.gallery.List(r.Context())
	if err != nil {
		respondGalleryError(w, r, h.log, err)
		return
	}

	items := []gallery.ListedIdentity{}
	for item, err := range seq {
		if err != nil {
			respondGalleryError(w, r, h.log, err)
			return
		}
		items = append(items, item)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"identities": items,
		"count":      len(items),
	})
}

// Get returns a single identity
func (h *IdentitiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity, err := h.gallery.Get(r.Context(), id)
	if err != nil {
		respondGalleryError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, identity)
}

// Update replaces an identity's profile and optionally its image
func (h *IdentitiesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req identityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}
	p, err := req.profile()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	img, err := req.image()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity, err := h.gallery.Update(r.Context(), id, p, img)
	if err != nil {
		respondGalleryError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, identity)
}

// Delete removes an identity
func (h *IdentitiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.gallery.Delete(r.Context(), id); err != nil {
		respondGalleryError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
}
