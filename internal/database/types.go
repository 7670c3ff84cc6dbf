package database

import (
	"time"
)

// StoredIdentity represents an enrolled identity as persisted in the gallery.
// Embedding holds the encoded vector text (see facematch.EncodeEmbedding); it may be
// empty or malformed for legacy rows, which readers must tolerate.
type StoredIdentity struct {
	ID         int64
	GivenName  string
	FamilyName string
	Code       string
	Email      string
	Flagged    bool
	ImageRef   string // Artifact reference owned by this record
	Embedding  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
