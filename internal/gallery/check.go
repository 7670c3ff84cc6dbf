package gallery

import (
	"context"
	"errors"

	"github.com/kozaktomas/face-gallery/internal/facematch"
)

// CheckStatus classifies one gallery record.
type CheckStatus string

const (
	CheckOK               CheckStatus = "ok"
	CheckMissingEmbedding CheckStatus = "missing_embedding"
	CheckCorruptEmbedding CheckStatus = "corrupt_embedding"
	CheckWrongDimension   CheckStatus = "wrong_dimension"
)

// CheckItem is the verdict on a single record.
type CheckItem struct {
	ID              int64       `json:"id"`
	Code            string      `json:"code"`
	Status          CheckStatus `json:"status"`
	Dim             int         `json:"dim,omitempty"`
	ArtifactMissing bool        `json:"artifact_missing,omitempty"`
	Detail          string      `json:"detail,omitempty"`
}

// CheckReport aggregates a gallery check.
type CheckReport struct {
	Total            int         `json:"total"`
	Valid            int         `json:"valid"`
	MissingEmbedding int         `json:"missing_embedding"`
	Corrupt          int         `json:"corrupt"`
	WrongDimension   int         `json:"wrong_dimension"`
	MissingArtifacts int         `json:"missing_artifacts"`
	Dim              int         `json:"dim"`
	Problems         []CheckItem `json:"problems,omitempty"`
}

// Healthy reports whether every record can take part in matching and has its image.
func (r CheckReport) Healthy() bool {
	return r.Valid == r.Total && r.MissingArtifacts == 0
}

// Check walks the gallery and reports records that recognition would skip.
// fn, when non-nil, is called once per record in ID order. When no dimension
// is configured, the first valid embedding defines it.
func (m *Manager) Check(ctx context.Context, fn func(CheckItem)) (CheckReport, error) {
	records, err := m.store.All(ctx)
	if err != nil {
		return CheckReport{}, storeError("loading gallery", err)
	}

	report := CheckReport{Total: len(records), Dim: m.dim}
	for i := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rec := &records[i]
		item := CheckItem{ID: rec.ID, Code: rec.Code, Status: CheckOK}

		emb, err := facematch.DecodeStoredEmbedding(rec.Embedding)
		switch {
		case errors.Is(err, facematch.ErrDecode):
			item.Status = CheckCorruptEmbedding
			item.Detail = err.Error()
			report.Corrupt++
		case err != nil:
			return report, err
		case emb == nil:
			item.Status = CheckMissingEmbedding
			report.MissingEmbedding++
		default:
			item.Dim = len(emb)
			if report.Dim == 0 {
				report.Dim = len(emb)
			}
			if len(emb) != report.Dim {
				item.Status = CheckWrongDimension
				report.WrongDimension++
			} else {
				report.Valid++
			}
		}

		data, err := m.artifacts.Read(ctx, rec.ImageRef)
		if err != nil {
			return report, artifactError("reading image", err)
		}
		if data == nil {
			item.ArtifactMissing = true
			report.MissingArtifacts++
		}

		if item.Status != CheckOK || item.ArtifactMissing {
			report.Problems = append(report.Problems, item)
		}
		if fn != nil {
			fn(item)
		}
	}
	return report, nil
}
