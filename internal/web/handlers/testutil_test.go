package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-gallery/internal/artifact"
	"github.com/kozaktomas/face-gallery/internal/database/mock"
	"github.com/kozaktomas/face-gallery/internal/extractor"
	"github.com/kozaktomas/face-gallery/internal/gallery"
	"github.com/rs/zerolog"
)

type testGallery struct {
	manager   *gallery.Manager
	store     *mock.MockIdentityStore
	artifacts *artifact.MemoryStore
}

// newTestGallery wires a real manager over in-memory collaborators. The fake
// extractor embeds the colour of the top-left pixel; black means no face.
func newTestGallery(t *testing.T) *testGallery {
	t.Helper()
	tg := &testGallery{
		store:     mock.NewMockIdentityStore(),
		artifacts: artifact.NewMemoryStore(),
	}
	m, err := gallery.NewManager(gallery.Options{
		Store:     tg.store,
		Artifacts: tg.artifacts,
		Extractor: extractor.Func(func(ctx context.Context, img image.Image) ([]float32, error) {
			r, g, b, _ := img.At(0, 0).RGBA()
			if r == 0 && g == 0 && b == 0 {
				return nil, nil
			}
			return []float32{float32(r), float32(g), float32(b)}, nil
		}),
		Dim: 3,
		Log: zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	tg.manager = m
	return tg
}

// photoBase64 returns a base64 PNG of a solid colour.
func photoBase64(t *testing.T, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := range 2 {
		for x := range 2 {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding photo: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var raw []byte
	switch b := body.(type) {
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeResponse unmarshals a recorder body into dst.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// assertStatus fails when the recorder status differs.
func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, strings.TrimSpace(rec.Body.String()))
	}
}

func registerBody(t *testing.T, code string, c color.RGBA, flagged bool) map[string]any {
	t.Helper()
	return map[string]any{
		"given_name":  "Given " + code,
		"family_name": "Family " + code,
		"code":        code,
		"email":       code + "@example.com",
		"flagged":     flagged,
		"image":       photoBase64(t, c),
	}
}
