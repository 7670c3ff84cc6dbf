package facematch

import (
	"errors"
	"math"
	"testing"

	"github.com/kozaktomas/face-gallery/internal/database"
	"github.com/rs/zerolog"
)

func identity(id int64, emb string) database.StoredIdentity {
	return database.StoredIdentity{ID: id, Code: "C", Embedding: emb}
}

func TestFindBestMatch_EmptyGallery(t *testing.T) {
	res, err := Matcher{}.FindBestMatch([]float32{1, 0}, nil)
	if err != nil {
		t.Fatalf("FindBestMatch: %v", err)
	}
	if res.Matched || res.Identity != nil {
		t.Errorf("expected no match, got %+v", res)
	}
	if res.Similarity != 0 {
		t.Errorf("expected similarity 0, got %v", res.Similarity)
	}
}

func TestFindBestMatch_InvalidQuery(t *testing.T) {
	tests := []struct {
		name  string
		dim   int
		query []float32
	}{
		{"nil", 0, nil},
		{"empty", 3, []float32{}},
		{"wrong length", 3, []float32{1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Matcher{Dim: tt.dim}.FindBestMatch(tt.query, []database.StoredIdentity{identity(1, "1,0,0")})
			if !errors.Is(err, ErrInvalidQuery) {
				t.Errorf("expected ErrInvalidQuery, got %v", err)
			}
		})
	}
}

func TestFindBestMatch_ExactMatch(t *testing.T) {
	candidates := []database.StoredIdentity{
		identity(1, "0,1,0"),
		identity(2, "0.6,0.8,0"),
		identity(3, "0,0,1"),
	}

	res, err := Matcher{Dim: 3}.FindBestMatch([]float32{0.6, 0.8, 0}, candidates)
	if err != nil {
		t.Fatalf("FindBestMatch: %v", err)
	}
	if !res.Matched || res.Identity == nil || res.Identity.ID != 2 {
		t.Fatalf("expected match on 2, got %+v", res)
	}
	if math.Abs(res.Similarity-1) > 1e-6 {
		t.Errorf("expected similarity ~1, got %v", res.Similarity)
	}
	if res.Scanned != 3 || res.Skipped != 0 {
		t.Errorf("unexpected counters: scanned=%d skipped=%d", res.Scanned, res.Skipped)
	}
}

func TestFindBestMatch_ThresholdIsStrict(t *testing.T) {
	// (1,0) against (3,4) is exactly 3/5.
	candidates := []database.StoredIdentity{identity(1, "3,4")}

	res, err := Matcher{}.FindBestMatch([]float32{1, 0}, candidates)
	if err != nil {
		t.Fatalf("FindBestMatch: %v", err)
	}
	if res.Similarity != Threshold {
		t.Fatalf("expected similarity exactly %v, got %v", Threshold, res.Similarity)
	}
	if res.Matched || res.Identity != nil {
		t.Errorf("similarity equal to threshold must not match, got %+v", res)
	}
}

func TestFindBestMatch_BestBelowThreshold(t *testing.T) {
	candidates := []database.StoredIdentity{
		identity(1, "0,1"),
		identity(2, "1,1"),
		identity(3, "-1,0"),
	}

	res, err := Matcher{}.FindBestMatch([]float32{1, -1}, candidates)
	if err != nil {
		t.Fatalf("FindBestMatch: %v", err)
	}
	if res.Matched {
		t.Fatalf("expected no match, got %+v", res)
	}
	if res.Scanned != 3 {
		t.Errorf("expected 3 scanned, got %d", res.Scanned)
	}
}

func TestFindBestMatch_NeverReturnsAtOrBelowThreshold(t *testing.T) {
	galleries := [][]database.StoredIdentity{
		{identity(1, "0.5,0.866")},
		{identity(1, "0,1"), identity(2, "-1,0")},
		{identity(1, "0.6,0.8"), identity(2, "0.59,0.807")},
		{identity(1, "0.61,0.792"), identity(2, "0.7,0.714")},
	}

	for i, g := range galleries {
		res, err := Matcher{}.FindBestMatch([]float32{1, 0}, g)
		if err != nil {
			t.Fatalf("gallery %d: %v", i, err)
		}
		if res.Matched && res.Similarity <= Threshold {
			t.Errorf("gallery %d: matched with similarity %v <= %v", i, res.Similarity, Threshold)
		}
		if !res.Matched && res.Identity != nil {
			t.Errorf("gallery %d: identity set without match", i)
		}
	}
}

func TestFindBestMatch_FirstWinsTies(t *testing.T) {
	candidates := []database.StoredIdentity{
		identity(10, "0,1"),
		identity(11, "1,0"),
		identity(12, "2,0"),
		identity(13, "1,0"),
	}

	res, err := Matcher{}.FindBestMatch([]float32{3, 0}, candidates)
	if err != nil {
		t.Fatalf("FindBestMatch: %v", err)
	}
	if !res.Matched || res.Identity.ID != 11 {
		t.Errorf("expected first tied candidate 11, got %+v", res.Identity)
	}
}

func TestFindBestMatch_MalformedRecordsSkipped(t *testing.T) {
	candidates := []database.StoredIdentity{
		identity(1, "garbage"),
		identity(2, ""),
		identity(3, "null"),
		identity(4, "1,0,0"), // wrong length
		identity(5, "NaN,1"),
		identity(6, "0.9,0.1"),
	}

	res, err := Matcher{Log: zerolog.Nop()}.FindBestMatch([]float32{1, 0}, candidates)
	if err != nil {
		t.Fatalf("malformed records must not fail the scan: %v", err)
	}
	if !res.Matched || res.Identity.ID != 6 {
		t.Fatalf("expected match on valid record 6, got %+v", res)
	}
	if res.Scanned != 1 || res.Skipped != 5 {
		t.Errorf("unexpected counters: scanned=%d skipped=%d", res.Scanned, res.Skipped)
	}
}

func TestFindBestMatch_AllSkippedIsNoMatch(t *testing.T) {
	candidates := []database.StoredIdentity{identity(1, "bad"), identity(2, "")}

	res, err := Matcher{}.FindBestMatch([]float32{1, 0}, candidates)
	if err != nil {
		t.Fatalf("FindBestMatch: %v", err)
	}
	if res.Matched || res.Similarity != 0 {
		t.Errorf("expected no match with zero similarity, got %+v", res)
	}
}

func TestFindBestMatch_ResultIsCopy(t *testing.T) {
	candidates := []database.StoredIdentity{identity(1, "1,0")}
	res, err := Matcher{}.FindBestMatch([]float32{1, 0}, candidates)
	if err != nil || !res.Matched {
		t.Fatalf("expected match, got %+v, %v", res, err)
	}
	res.Identity.Code = "changed"
	if candidates[0].Code != "C" {
		t.Error("result identity must not alias the candidate slice")
	}
}
