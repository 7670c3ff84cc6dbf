// Package extractor turns a decoded photograph into a face embedding.
//
// Every implementation returns (nil, nil) when the image holds no detectable
// face, including when the image itself is nil.
package extractor

import (
	"context"
	"image"
)

// DlibDim is the length of a dlib face descriptor.
const DlibDim = 128

// Func adapts an ordinary function to the extractor contract.
type Func func(ctx context.Context, img image.Image) ([]float32, error)

// Extract calls f.
func (f Func) Extract(ctx context.Context, img image.Image) ([]float32, error) {
	if img == nil {
		return nil, nil
	}
	return f(ctx, img)
}
