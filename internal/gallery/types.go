// Package gallery manages enrollment of identities and recognition of faces
// against the enrolled gallery.
package gallery

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/kozaktomas/face-gallery/internal/database"
	"github.com/kozaktomas/face-gallery/internal/notify"
)

// Profile is the caller-supplied metadata of an identity.
type Profile struct {
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Code       string `json:"code"`
	Email      string `json:"email"`
	Flagged    bool   `json:"flagged"`
}

// Validate checks that every required field is present.
func (p Profile) Validate() error {
	var missing []string
	if strings.TrimSpace(p.GivenName) == "" {
		missing = append(missing, "given_name")
	}
	if strings.TrimSpace(p.FamilyName) == "" {
		missing = append(missing, "family_name")
	}
	if strings.TrimSpace(p.Code) == "" {
		missing = append(missing, "code")
	}
	if strings.TrimSpace(p.Email) == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidProfile, strings.Join(missing, ", "))
	}
	return nil
}

// Identity is an enrolled person with a decoded embedding.
type Identity struct {
	ID int64 `json:"id"`
	Profile
	ImageRef  string    `json:"image_ref"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListedIdentity is a gallery entry with its source image inlined.
// Image is empty when the artifact no longer exists.
type ListedIdentity struct {
	ID int64 `json:"id"`
	Profile
	Image []byte `json:"image"`
}

// MatchedIdentity carries the public fields of a recognized identity.
type MatchedIdentity struct {
	ID int64 `json:"id"`
	Profile
}

// MatchResult is the outcome of Recognize. No match is a normal result, not an error.
type MatchResult struct {
	Matched    bool             `json:"matched"`
	Identity   *MatchedIdentity `json:"identity,omitempty"`
	Similarity float64          `json:"similarity"`
	// Alert mirrors the matched identity's flagged marker.
	Alert bool `json:"alert"`
}

// ArtifactStore persists source images.
type ArtifactStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	// Read returns nil bytes and no error when ref no longer exists.
	Read(ctx context.Context, ref string) ([]byte, error)
	// Remove is idempotent.
	Remove(ctx context.Context, ref string) error
}

// Extractor maps a decoded image to an embedding, or nil when no face is found.
type Extractor interface {
	Extract(ctx context.Context, img image.Image) ([]float32, error)
}

// AlertPublisher is told whenever a flagged identity is recognized.
type AlertPublisher interface {
	Publish(ctx context.Context, alert notify.Alert) error
}

func toIdentity(rec *database.StoredIdentity, emb []float32) *Identity {
	return &Identity{
		ID:        rec.ID,
		Profile:   profileOf(rec),
		ImageRef:  rec.ImageRef,
		Embedding: emb,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func profileOf(rec *database.StoredIdentity) Profile {
	return Profile{
		GivenName:  rec.GivenName,
		FamilyName: rec.FamilyName,
		Code:       rec.Code,
		Email:      rec.Email,
		Flagged:    rec.Flagged,
	}
}

func applyProfile(rec *database.StoredIdentity, p Profile) {
	rec.GivenName = p.GivenName
	rec.FamilyName = p.FamilyName
	rec.Code = p.Code
	rec.Email = p.Email
	rec.Flagged = p.Flagged
}
