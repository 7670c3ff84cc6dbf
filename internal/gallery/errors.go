package gallery

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/face-gallery/internal/database"
	"github.com/kozaktomas/face-gallery/internal/facematch"
)

// Error kinds. Test with errors.Is; concrete errors wrap one of these plus the cause.
var (
	// ErrNoFaceDetected means the image held no usable face. It is a caller
	// input problem, not a system fault.
	ErrNoFaceDetected = errors.New("no face detected")
	ErrInvalidQuery   = facematch.ErrInvalidQuery
	ErrNotFound       = database.ErrNotFound
	// ErrDecode marks a corrupt stored embedding.
	ErrDecode = facematch.ErrDecode
	// ErrStore and ErrArtifact mark infrastructure failures.
	ErrStore    = errors.New("gallery store failure")
	ErrArtifact = errors.New("image artifact failure")
	// ErrExtraction means the embedding extractor itself failed.
	ErrExtraction     = errors.New("embedding extraction failed")
	ErrInvalidProfile = errors.New("invalid profile")
)

// storeError tags err as ErrStore unless it already reports a missing identity.
func storeError(op string, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

func artifactError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrArtifact, err)
}

func notFound(id int64) error {
	return fmt.Errorf("identity %d: %w", id, ErrNotFound)
}
