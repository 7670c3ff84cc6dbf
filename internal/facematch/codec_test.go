package facematch

import (
	"errors"
	"testing"
)

func TestEncodeEmbedding(t *testing.T) {
	tests := []struct {
		name     string
		input    []float32
		expected string
	}{
		{"empty", nil, ""},
		{"single", []float32{1}, "1"},
		{"mixed", []float32{0.5, -0.25, 3}, "0.5,-0.25,3"},
		{"shortest float32 form", []float32{0.1}, "0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeEmbedding(tt.input); got != tt.expected {
				t.Errorf("EncodeEmbedding(%v) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEmbeddingRoundTrip(t *testing.T) {
	vectors := [][]float32{
		{0.1, 0.2, 0.3},
		{-1, 0, 1},
		{1e-8, 3.4028235e38, -1.1754944e-38},
		{0.123456789, 0.987654321, 42.4242},
	}

	for _, v := range vectors {
		got, err := DecodeEmbedding(EncodeEmbedding(v))
		if err != nil {
			t.Fatalf("DecodeEmbedding(EncodeEmbedding(%v)): %v", v, err)
		}
		if len(got) != len(v) {
			t.Fatalf("length mismatch: got %d, want %d", len(got), len(v))
		}
		for i := range v {
			if got[i] != v[i] {
				t.Errorf("component %d: got %v, want %v", i, got[i], v[i])
			}
		}
	}
}

func TestDecodeEmbedding_Tolerant(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain", "0.5,0.25"},
		{"spaces", " 0.5 , 0.25 "},
		{"bracketed", "[0.5, 0.25]"},
		{"bracketed with padding", "  [ 0.5,0.25 ]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeEmbedding(tt.input)
			if err != nil {
				t.Fatalf("DecodeEmbedding(%q): %v", tt.input, err)
			}
			if len(got) != 2 || got[0] != 0.5 || got[1] != 0.25 {
				t.Errorf("DecodeEmbedding(%q) = %v", tt.input, got)
			}
		})
	}
}

func TestDecodeEmbedding_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"null", "null"},
		{"empty brackets", "[]"},
		{"garbage", "not,a,vector"},
		{"trailing comma", "0.1,0.2,"},
		{"NaN", "0.1,NaN"},
		{"infinity", "Inf,0.2"},
		{"overflow", "1e39"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEmbedding(tt.input)
			if !errors.Is(err, ErrDecode) {
				t.Errorf("DecodeEmbedding(%q) error = %v, want ErrDecode", tt.input, err)
			}
		})
	}
}

func TestDecodeStoredEmbedding(t *testing.T) {
	for _, in := range []string{"", "  ", "null", "[]"} {
		v, err := DecodeStoredEmbedding(in)
		if err != nil || v != nil {
			t.Errorf("DecodeStoredEmbedding(%q) = %v, %v; want nil, nil", in, v, err)
		}
	}

	if _, err := DecodeStoredEmbedding("0.1,x"); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode for malformed value, got %v", err)
	}

	v, err := DecodeStoredEmbedding("1,2")
	if err != nil || len(v) != 2 {
		t.Errorf("unexpected result %v, %v", v, err)
	}
}
