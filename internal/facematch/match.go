package facematch

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/face-gallery/internal/database"
	"github.com/rs/zerolog"
)

// ErrInvalidQuery is returned when the query embedding is absent or has the wrong length.
var ErrInvalidQuery = errors.New("invalid query embedding")

// Result is the outcome of a gallery scan.
type Result struct {
	Matched    bool
	Identity   *database.StoredIdentity // set only when Matched
	Similarity float64                  // best similarity seen, 0 when nothing was comparable
	Scanned    int                      // records compared against the query
	Skipped    int                      // records ignored: no embedding, corrupt, or wrong length
}

// Matcher performs exhaustive nearest-neighbour search over gallery records.
type Matcher struct {
	// Dim is the expected embedding length. Zero takes it from the query.
	Dim int
	Log zerolog.Logger
}

// FindBestMatch returns the candidate most similar to query if that similarity
// is above Threshold. The running maximum starts at 0 and only a strictly
// greater similarity replaces it, so the earliest candidate wins ties and an
// empty gallery is indistinguishable from one with no close face.
// Corrupt candidates are logged and skipped.
func (m Matcher) FindBestMatch(query []float32, candidates []database.StoredIdentity) (Result, error) {
	if len(query) == 0 {
		return Result{}, fmt.Errorf("%w: empty", ErrInvalidQuery)
	}
	dim := m.Dim
	if dim == 0 {
		dim = len(query)
	}
	if len(query) != dim {
		return Result{}, fmt.Errorf("%w: length %d, expected %d", ErrInvalidQuery, len(query), dim)
	}

	var res Result
	var best *database.StoredIdentity
	for i := range candidates {
		c := &candidates[i]
		emb, err := DecodeStoredEmbedding(c.Embedding)
		if err != nil {
			m.Log.Warn().Err(err).Int64("identity_id", c.ID).Msg("skipping identity with corrupt embedding")
			res.Skipped++
			continue
		}
		if emb == nil {
			res.Skipped++
			continue
		}
		if len(emb) != dim {
			m.Log.Warn().Int64("identity_id", c.ID).Int("length", len(emb)).Int("expected", dim).
				Msg("skipping identity with wrong embedding length")
			res.Skipped++
			continue
		}

		res.Scanned++
		if sim := CosineSimilarity(query, emb); sim > res.Similarity {
			res.Similarity = sim
			best = c
		}
	}

	if best != nil && res.Similarity > Threshold {
		res.Matched = true
		match := *best
		res.Identity = &match
	}
	return res, nil
}
