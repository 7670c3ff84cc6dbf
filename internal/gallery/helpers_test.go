package gallery

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/kozaktomas/face-gallery/internal/artifact"
	"github.com/kozaktomas/face-gallery/internal/database/mock"
	"github.com/kozaktomas/face-gallery/internal/extractor"
	"github.com/kozaktomas/face-gallery/internal/notify"
	"github.com/rs/zerolog"
)

var (
	red    = color.RGBA{R: 255, A: 255}
	green  = color.RGBA{G: 255, A: 255}
	blue   = color.RGBA{B: 255, A: 255}
	black  = color.RGBA{A: 255} // "no face"
	redish = color.RGBA{R: 250, G: 12, A: 255}
)

// photo encodes a solid-colour PNG. The fake extractor turns the colour into
// the embedding, so equal colours are the same face.
func photo(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test photo: %v", err)
	}
	return buf.Bytes()
}

// colourExtractor returns the normalized RGB of the top-left pixel; black has no face.
func colourExtractor() extractor.Func {
	return func(ctx context.Context, img image.Image) ([]float32, error) {
		r, g, b, _ := img.At(img.Bounds().Min.X, img.Bounds().Min.Y).RGBA()
		if r == 0 && g == 0 && b == 0 {
			return nil, nil
		}
		return []float32{float32(r) / 0xffff, float32(g) / 0xffff, float32(b) / 0xffff}, nil
	}
}

type recordingAlerts struct {
	mu     sync.Mutex
	alerts []notify.Alert
	err    error
}

func (r *recordingAlerts) Publish(ctx context.Context, a notify.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.alerts = append(r.alerts, a)
	return nil
}

type testEnv struct {
	manager   *Manager
	store     *mock.MockIdentityStore
	artifacts *artifact.MemoryStore
	alerts    *recordingAlerts
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:     mock.NewMockIdentityStore(),
		artifacts: artifact.NewMemoryStore(),
		alerts:    &recordingAlerts{},
	}
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m, err := NewManager(Options{
		Store:     env.store,
		Artifacts: env.artifacts,
		Extractor: colourExtractor(),
		Alerts:    env.alerts,
		Dim:       3,
		Log:       zerolog.Nop(),
		Now:       func() time.Time { return clock },
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	env.manager = m
	return env
}

func profile(code string) Profile {
	return Profile{
		GivenName:  "Given " + code,
		FamilyName: "Family " + code,
		Code:       code,
		Email:      code + "@example.com",
	}
}

func (e *testEnv) register(t *testing.T, p Profile, c color.RGBA) *Identity {
	t.Helper()
	id, err := e.manager.Register(context.Background(), p, photo(t, c))
	if err != nil {
		t.Fatalf("Register(%s): %v", p.Code, err)
	}
	return id
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected error %v, got %v", target, err)
	}
}

type failingExtractor struct{}

func (failingExtractor) Extract(ctx context.Context, img image.Image) ([]float32, error) {
	return nil, errors.New("model server unavailable")
}
