//go:build dlib

package extractor

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/Kagami/go-face"
	"github.com/kozaktomas/face-gallery/internal/imaging"
)

// Dlib computes 128-dimensional face descriptors in-process with dlib.
type Dlib struct {
	mu         sync.Mutex
	recognizer *face.Recognizer
}

// NewDlib loads the dlib models from modelsDir.
func NewDlib(modelsDir string) (*Dlib, error) {
	recognizer, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("loading dlib models from %s: %w", modelsDir, err)
	}
	return &Dlib{recognizer: recognizer}, nil
}

// Extract returns the descriptor of the largest face in img.
func (d *Dlib) Extract(ctx context.Context, img image.Image) ([]float32, error) {
	if img == nil {
		return nil, nil
	}

	data, err := imaging.EncodeJPEG(img)
	if err != nil {
		return nil, err
	}

	// The recognizer is not safe for concurrent use.
	d.mu.Lock()
	faces, err := d.recognizer.Recognize(data)
	d.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("dlib recognition failed: %w", err)
	}
	if len(faces) == 0 {
		return nil, nil
	}

	largest := 0
	for i := range faces {
		if area(faces[i].Rectangle) > area(faces[largest].Rectangle) {
			largest = i
		}
	}
	desc := [128]float32(faces[largest].Descriptor)
	return desc[:], nil
}

// Close releases the dlib models.
func (d *Dlib) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recognizer.Close()
	return nil
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
