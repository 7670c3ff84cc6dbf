package extractor

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range 8 {
		img.Set(i, i, color.White)
	}
	return img
}

func newFaceServer(t *testing.T, resp FaceResponse, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/face" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file field: %v", err)
		} else {
			file.Close()
			if ct := header.Header.Get("Content-Type"); ct != "image/jpeg" {
				t.Errorf("expected image/jpeg part, got %q", ct)
			}
		}

		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHTTPClient_Extract_PicksHighestScore(t *testing.T) {
	server := newFaceServer(t, FaceResponse{
		FacesCount: 3,
		Faces: []FaceDetection{
			{FaceIndex: 0, DetScore: 0.71, Embedding: []float32{1, 0}},
			{FaceIndex: 1, DetScore: 0.98, Embedding: []float32{0, 1}},
			{FaceIndex: 2, DetScore: 0.98, Embedding: []float32{1, 1}},
		},
	}, http.StatusOK)

	c := NewHTTPClient(server.URL+"/", 5*time.Second)
	emb, err := c.Extract(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(emb) != 2 || emb[0] != 0 || emb[1] != 1 {
		t.Errorf("expected embedding of first best face, got %v", emb)
	}
}

func TestHTTPClient_Extract_NoFace(t *testing.T) {
	server := newFaceServer(t, FaceResponse{FacesCount: 0}, http.StatusOK)

	emb, err := NewHTTPClient(server.URL, time.Second).Extract(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if emb != nil {
		t.Errorf("expected nil embedding, got %v", emb)
	}
}

func TestHTTPClient_Extract_NilImage(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", time.Second)
	emb, err := c.Extract(context.Background(), nil)
	if err != nil || emb != nil {
		t.Errorf("Extract(nil) = %v, %v; want nil, nil", emb, err)
	}
}

func TestHTTPClient_Extract_ServerError(t *testing.T) {
	server := newFaceServer(t, FaceResponse{}, http.StatusInternalServerError)

	if _, err := NewHTTPClient(server.URL, time.Second).Extract(context.Background(), testImage()); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestHTTPClient_Extract_EmptyEmbedding(t *testing.T) {
	server := newFaceServer(t, FaceResponse{
		FacesCount: 1,
		Faces:      []FaceDetection{{DetScore: 0.9}},
	}, http.StatusOK)

	if _, err := NewHTTPClient(server.URL, time.Second).Extract(context.Background(), testImage()); err == nil {
		t.Error("expected error for detection without embedding")
	}
}

func TestNewHTTPClient_DefaultURL(t *testing.T) {
	c := NewHTTPClient("", time.Second)
	if c.baseURL != defaultEmbeddingURL {
		t.Errorf("expected default URL, got %q", c.baseURL)
	}
}

func TestFunc(t *testing.T) {
	called := false
	f := Func(func(ctx context.Context, img image.Image) ([]float32, error) {
		called = true
		return []float32{1}, nil
	})

	if emb, err := f.Extract(context.Background(), nil); emb != nil || err != nil || called {
		t.Errorf("Func must short-circuit nil images, got %v, %v (called=%v)", emb, err, called)
	}
	if emb, err := f.Extract(context.Background(), testImage()); err != nil || len(emb) != 1 {
		t.Errorf("unexpected result %v, %v", emb, err)
	}
}
