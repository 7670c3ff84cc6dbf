package gallery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-gallery/internal/artifact"
	"github.com/kozaktomas/face-gallery/internal/database"
	"github.com/kozaktomas/face-gallery/internal/facematch"
	"github.com/kozaktomas/face-gallery/internal/imaging"
	"github.com/kozaktomas/face-gallery/internal/notify"
	"github.com/rs/zerolog"
)

// Options configures a Manager. Store, Artifacts and Extractor are required.
type Options struct {
	Store     database.IdentityWriter
	Artifacts ArtifactStore
	Extractor Extractor
	Alerts    AlertPublisher // defaults to notify.Nop
	// Dim is the embedding length produced by Extractor. Zero disables the check.
	Dim int
	// MaxImageSize bounds the longest image edge passed to Extractor. Zero disables scaling.
	MaxImageSize int
	Log          zerolog.Logger
	Now          func() time.Time // defaults to time.Now
}

// Manager enrolls, edits and removes identities, and recognizes faces against them.
// It assumes the caller serializes writes; concurrent scans may or may not
// observe concurrent enrollments.
type Manager struct {
	store        database.IdentityWriter
	artifacts    ArtifactStore
	extractor    Extractor
	alerts       AlertPublisher
	matcher      facematch.Matcher
	dim          int
	maxImageSize int
	log          zerolog.Logger
	now          func() time.Time
}

// NewManager validates opts and builds a Manager.
func NewManager(opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, errors.New("gallery store is required")
	}
	if opts.Artifacts == nil {
		return nil, errors.New("artifact store is required")
	}
	if opts.Extractor == nil {
		return nil, errors.New("embedding extractor is required")
	}
	if opts.Alerts == nil {
		opts.Alerts = notify.Nop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	log := opts.Log.With().Str("component", "gallery").Logger()
	return &Manager{
		store:        opts.Store,
		artifacts:    opts.Artifacts,
		extractor:    opts.Extractor,
		alerts:       opts.Alerts,
		matcher:      facematch.Matcher{Dim: opts.Dim, Log: log},
		dim:          opts.Dim,
		maxImageSize: opts.MaxImageSize,
		log:          log,
		now:          opts.Now,
	}, nil
}

// embed decodes imageData and extracts one face embedding from it.
// Undecodable images count as having no face.
func (m *Manager) embed(ctx context.Context, imageData []byte) ([]float32, error) {
	img, _, err := imaging.Decode(imageData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoFaceDetected, err)
	}
	img = imaging.Fit(img, m.maxImageSize)

	emb, err := m.extractor.Extract(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	if len(emb) == 0 {
		return nil, ErrNoFaceDetected
	}
	if m.dim > 0 && len(emb) != m.dim {
		return nil, fmt.Errorf("%w: extractor returned %d components, expected %d", ErrExtraction, len(emb), m.dim)
	}
	return emb, nil
}

// saveArtifact stores imageData under a fresh name derived from code.
func (m *Manager) saveArtifact(ctx context.Context, code string, imageData []byte) (string, error) {
	ref, err := m.artifacts.Save(ctx, artifact.Name(code, imaging.DetectMIMEType(imageData), m.now()), imageData)
	if err != nil {
		return "", artifactError("saving image", err)
	}
	return ref, nil
}

// discardArtifact removes ref, logging instead of failing.
func (m *Manager) discardArtifact(ctx context.Context, ref, reason string) {
	if ref == "" {
		return
	}
	if err := m.artifacts.Remove(ctx, ref); err != nil {
		m.log.Warn().Err(err).Str("image_ref", ref).Str("reason", reason).Msg("failed to remove image artifact")
	}
}

// Register enrolls a new identity from a profile and a face photograph.
// Nothing is stored when the photograph holds no detectable face.
func (m *Manager) Register(ctx context.Context, p Profile, imageData []byte) (*Identity, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	emb, err := m.embed(ctx, imageData)
	if err != nil {
		return nil, err
	}

	ref, err := m.saveArtifact(ctx, p.Code, imageData)
	if err != nil {
		return nil, err
	}

	rec := database.StoredIdentity{ImageRef: ref, Embedding: facematch.EncodeEmbedding(emb)}
	applyProfile(&rec, p)

	id, err := m.store.Create(ctx, &rec)
	if err != nil {
		m.discardArtifact(ctx, ref, "register failed")
		return nil, storeError("creating identity", err)
	}
	rec.ID = id

	// The store stamps the record; read it back so callers see the same
	// timestamps a later Get returns.
	if stored, err := m.store.Get(ctx, id); err == nil && stored != nil {
		rec.CreatedAt, rec.UpdatedAt = stored.CreatedAt, stored.UpdatedAt
	} else {
		m.log.Warn().Err(err).Int64("identity_id", id).Msg("failed to read back registered identity")
		now := m.now().UTC()
		rec.CreatedAt, rec.UpdatedAt = now, now
	}

	m.log.Info().Int64("identity_id", id).Str("code", p.Code).Msg("identity registered")
	return toIdentity(&rec, emb), nil
}

// Recognize finds the enrolled identity whose face best matches the photograph.
// A photograph without a face fails with ErrNoFaceDetected; a face that
// matches nobody is a successful result with Matched == false.
func (m *Manager) Recognize(ctx context.Context, imageData []byte) (MatchResult, error) {
	emb, err := m.embed(ctx, imageData)
	if err != nil {
		return MatchResult{}, err
	}

	candidates, err := m.store.All(ctx)
	if err != nil {
		return MatchResult{}, storeError("loading gallery", err)
	}

	res, err := m.matcher.FindBestMatch(emb, candidates)
	if err != nil {
		return MatchResult{}, err
	}

	m.log.Debug().
		Bool("matched", res.Matched).
		Float64("similarity", res.Similarity).
		Int("scanned", res.Scanned).
		Int("skipped", res.Skipped).
		Msg("gallery scanned")

	if !res.Matched {
		return MatchResult{Similarity: res.Similarity}, nil
	}

	matched := &MatchedIdentity{ID: res.Identity.ID, Profile: profileOf(res.Identity)}
	result := MatchResult{
		Matched:    true,
		Identity:   matched,
		Similarity: res.Similarity,
		Alert:      matched.Flagged,
	}

	if result.Alert {
		m.publishAlert(ctx, result)
	}
	return result, nil
}

func (m *Manager) publishAlert(ctx context.Context, result MatchResult) {
	alert := notify.Alert{
		EventID:    uuid.NewString(),
		IdentityID: result.Identity.ID,
		Code:       result.Identity.Code,
		GivenName:  result.Identity.GivenName,
		FamilyName: result.Identity.FamilyName,
		Similarity: result.Similarity,
		At:         m.now().UTC(),
	}
	if err := m.alerts.Publish(ctx, alert); err != nil {
		m.log.Error().Err(err).Int64("identity_id", alert.IdentityID).Msg("failed to publish alert")
		return
	}
	m.log.Info().Int64("identity_id", alert.IdentityID).Str("event_id", alert.EventID).Msg("flagged identity recognized")
}

// Get returns one identity. A corrupt stored embedding fails with ErrDecode.
func (m *Manager) Get(ctx context.Context, id int64) (*Identity, error) {
	rec, err := m.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	emb, err := facematch.DecodeEmbedding(rec.Embedding)
	if err != nil {
		return nil, fmt.Errorf("identity %d: %w", id, err)
	}
	return toIdentity(rec, emb), nil
}

// Profile returns the profile of one identity without decoding its
// embedding, so records that fail Get can still be edited.
func (m *Manager) Profile(ctx context.Context, id int64) (Profile, error) {
	rec, err := m.lookup(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	return profileOf(rec), nil
}

func (m *Manager) lookup(ctx context.Context, id int64) (*database.StoredIdentity, error) {
	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, storeError("loading identity", err)
	}
	if rec == nil {
		return nil, notFound(id)
	}
	return rec, nil
}

// Update replaces every profile field of an identity. When imageData is
// empty the stored embedding and image are carried over unchanged; otherwise
// both are replaced and the previous image is released once the record
// points at the new one. A failed extraction leaves the identity untouched.
func (m *Manager) Update(ctx context.Context, id int64, p Profile, imageData []byte) (*Identity, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	rec, err := m.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(imageData) == 0 {
		emb, err := facematch.DecodeEmbedding(rec.Embedding)
		if err != nil {
			return nil, fmt.Errorf("identity %d: %w", id, err)
		}
		applyProfile(rec, p)
		if err := m.store.Update(ctx, id, rec); err != nil {
			return nil, storeError("updating identity", err)
		}
		rec.UpdatedAt = m.now().UTC()
		m.log.Info().Int64("identity_id", id).Msg("identity profile updated")
		return toIdentity(rec, emb), nil
	}

	emb, err := m.embed(ctx, imageData)
	if err != nil {
		return nil, err
	}

	ref, err := m.saveArtifact(ctx, p.Code, imageData)
	if err != nil {
		return nil, err
	}

	oldRef := rec.ImageRef
	applyProfile(rec, p)
	rec.ImageRef = ref
	rec.Embedding = facematch.EncodeEmbedding(emb)

	if err := m.store.Update(ctx, id, rec); err != nil {
		m.discardArtifact(ctx, ref, "update failed")
		return nil, storeError("updating identity", err)
	}
	rec.UpdatedAt = m.now().UTC()

	if oldRef != ref {
		m.discardArtifact(ctx, oldRef, "replaced")
	}

	m.log.Info().Int64("identity_id", id).Msg("identity updated with new image")
	return toIdentity(rec, emb), nil
}

// Delete removes an identity and then, best effort, its image.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	rec, err := m.lookup(ctx, id)
	if err != nil {
		return err
	}

	if err := m.store.Delete(ctx, id); err != nil {
		return storeError("deleting identity", err)
	}

	m.discardArtifact(ctx, rec.ImageRef, "identity deleted")
	m.log.Info().Int64("identity_id", id).Msg("identity deleted")
	return nil
}

// Stats summarizes the gallery.
type Stats struct {
	Identities int     `json:"identities"`
	Dim        int     `json:"dim"`
	Threshold  float64 `json:"threshold"`
}

// Stats returns the gallery size and matching parameters.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	n, err := m.store.Count(ctx)
	if err != nil {
		return Stats{}, storeError("counting identities", err)
	}
	return Stats{Identities: n, Dim: m.dim, Threshold: facematch.Threshold}, nil
}
