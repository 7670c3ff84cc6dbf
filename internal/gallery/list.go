package gallery

import (
	"context"
	"iter"
	"sync/atomic"
)

// List snapshots the gallery and returns a sequence over it. Images are read
// lazily as the sequence advances; a missing image yields an empty payload.
// The sequence can be ranged over once; later ranges yield nothing.
// Iteration stops after the first artifact read failure, which is yielded
// as the error.
func (m *Manager) List(ctx context.Context) (iter.Seq2[ListedIdentity, error], error) {
	records, err := m.store.All(ctx)
	if err != nil {
		return nil, storeError("loading gallery", err)
	}

	var consumed atomic.Bool
	seq := func(yield func(ListedIdentity, error) bool) {
		if consumed.Swap(true) {
			return
		}
		for i := range records {
			rec := &records[i]
			item := ListedIdentity{ID: rec.ID, Profile: profileOf(rec)}

			data, err := m.artifacts.Read(ctx, rec.ImageRef)
			if err != nil {
				yield(item, artifactError("reading image", err))
				return
			}
			if data != nil {
				item.Image = data
			} else {
				item.Image = []byte{}
				if rec.ImageRef != "" {
					m.log.Debug().Int64("identity_id", rec.ID).Str("image_ref", rec.ImageRef).Msg("image artifact missing")
				}
			}

			if !yield(item, nil) {
				return
			}
		}
	}
	return seq, nil
}
