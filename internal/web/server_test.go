package web

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

	"github.com/kozaktomas/face-gallery/internal/artifact"
	"github.com/kozaktomas/face-gallery/internal/config"
	"github.com/kozaktomas/face-gallery/internal/database/mock"
	"github.com/kozaktomas/face-gallery/internal/extractor"
	"github.com/kozaktomas/face-gallery/internal/gallery"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	m, err := gallery.NewManager(gallery.Options{
		Store:     mock.NewMockIdentityStore(),
		Artifacts: artifact.NewMemoryStore(),
		Extractor: extractor.Func(func(ctx context.Context, img image.Image) ([]float32, error) {
			r, g, b, _ := img.At(0, 0).RGBA()
			return []float32{float32(r), float32(g), float32(b)}, nil
		}),
		Log: zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, AllowedOrigins: []string{"https://gate.example.com"}},
	}
	return NewServer(cfg, m, zerolog.Nop())
}

func bluePhoto(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{B: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/v1/photos", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestServer_EnrollAndRecognize(t *testing.T) {
	s := newTestServer(t)
	photo := bluePhoto(t)

	body, _ := json.Marshal(map[string]any{
		"given_name":  "Ana",
		"family_name": "Pérez",
		"code":        "A-7",
		"email":       "ana@example.com",
		"flagged":     true,
		"image":       photo,
	})
	rec := do(t, s, http.MethodPost, "/api/v1/identities", string(body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodPost, "/api/v1/recognize", `{"image":"`+photo+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("recognize: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Matched  bool `json:"matched"`
		Alert    bool `json:"alert"`
		Identity struct {
			Code string `json:"code"`
		} `json:"identity"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Matched || !resp.Alert || resp.Identity.Code != "A-7" {
		t.Errorf("unexpected recognition %+v", resp)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/identities/1", "")
	if rec.Code != http.StatusOK {
		t.Errorf("get: expected 200, got %d", rec.Code)
	}
	rec = do(t, s, http.MethodDelete, "/api/v1/identities/1", "")
	if rec.Code != http.StatusOK {
		t.Errorf("delete: expected 200, got %d", rec.Code)
	}
	rec = do(t, s, http.MethodGet, "/api/v1/identities/1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/recognize", nil)
	req.Header.Set("Origin", "https://gate.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://gate.example.com" {
		t.Errorf("expected allowed origin header, got %q", got)
	}
}
