//go:build !dlib

package extractor

import (
	"context"
	"errors"
	"image"
)

// ErrDlibUnavailable is returned when the binary was built without dlib support.
var ErrDlibUnavailable = errors.New("dlib extractor not compiled in; rebuild with -tags dlib")

// Dlib is unavailable in this build.
type Dlib struct{}

// NewDlib always fails without the dlib build tag.
func NewDlib(modelsDir string) (*Dlib, error) {
	return nil, ErrDlibUnavailable
}

// Extract always fails without the dlib build tag.
func (d *Dlib) Extract(ctx context.Context, img image.Image) ([]float32, error) {
	return nil, ErrDlibUnavailable
}

// Close is a no-op.
func (d *Dlib) Close() error { return nil }
