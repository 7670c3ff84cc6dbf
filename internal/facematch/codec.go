// Package facematch holds the embedding text codec and the exhaustive
// cosine-similarity matcher used to identify a face against the gallery.
package facematch

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrDecode is returned when a stored embedding cannot be parsed.
var ErrDecode = errors.New("corrupt embedding")

// EncodeEmbedding renders an embedding as comma-separated decimals.
// Each component uses the shortest form that parses back to the same float32.
func EncodeEmbedding(v []float32) string {
	var sb strings.Builder
	sb.Grow(len(v) * 12)
	for i, x := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	}
	return sb.String()
}

// DecodeEmbedding parses an embedding that must be present and valid.
// Empty and "null" input are errors here.
func DecodeEmbedding(s string) ([]float32, error) {
	s = trimEmbedding(s)
	if s == "" || s == "null" {
		return nil, fmt.Errorf("%w: empty embedding", ErrDecode)
	}

	parts := strings.Split(s, ",")
	v := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("%w: component %d: %w", ErrDecode, i, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: component %d is not finite", ErrDecode, i)
		}
		v[i] = float32(f)
	}
	return v, nil
}

// DecodeStoredEmbedding is DecodeEmbedding for scans: an empty or "null"
// value means the record has no embedding and yields (nil, nil).
func DecodeStoredEmbedding(s string) ([]float32, error) {
	t := trimEmbedding(s)
	if t == "" || t == "null" {
		return nil, nil
	}
	return DecodeEmbedding(t)
}

// trimEmbedding strips whitespace and an optional JSON-style [ ] wrapper.
func trimEmbedding(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
