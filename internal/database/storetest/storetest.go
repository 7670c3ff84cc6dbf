// Package storetest provides a behavioural test suite shared by every
// database.IdentityWriter implementation.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/kozaktomas/face-gallery/internal/database"
)

// RunIdentityRepositoryTests exercises the gallery store contract against repo.
// repo must be empty when the suite starts.
func RunIdentityRepositoryTests(t *testing.T, repo database.IdentityWriter) {
	t.Helper()
	ctx := context.Background()

	alice := database.StoredIdentity{
		GivenName:  "Alice",
		FamilyName: "Núñez",
		Code:       "A-001",
		Email:      "alice@example.com",
		Flagged:    true,
		ImageRef:   "uploads/A-001_20240101120000_aaaa.jpg",
		Embedding:  "0.1,0.2,0.3",
	}
	bob := database.StoredIdentity{
		GivenName:  "Bob",
		FamilyName: "Stone",
		Code:       "B-002",
		Email:      "bob@example.com",
		ImageRef:   "uploads/B-002_20240101120000_bbbb.jpg",
	}

	var aliceID, bobID int64

	t.Run("EmptyGallery", func(t *testing.T) {
		all, err := repo.All(ctx)
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if len(all) != 0 {
			t.Errorf("expected empty gallery, got %d identities", len(all))
		}
		got, err := repo.Get(ctx, 4242)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil for unknown id, got %+v", got)
		}
	})

	t.Run("CreateAndGet", func(t *testing.T) {
		var err error
		aliceID, err = repo.Create(ctx, &alice)
		if err != nil {
			t.Fatalf("Create alice: %v", err)
		}
		bobID, err = repo.Create(ctx, &bob)
		if err != nil {
			t.Fatalf("Create bob: %v", err)
		}
		if aliceID <= 0 || bobID <= 0 || aliceID == bobID {
			t.Fatalf("expected distinct positive ids, got %d and %d", aliceID, bobID)
		}

		got, err := repo.Get(ctx, aliceID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got == nil {
			t.Fatal("expected identity, got nil")
		}
		assertIdentity(t, got, aliceID, alice)
		if got.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
	})

	t.Run("MissingEmbeddingIsEmptyString", func(t *testing.T) {
		got, err := repo.Get(ctx, bobID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got == nil {
			t.Fatal("expected identity, got nil")
		}
		if got.Embedding != "" {
			t.Errorf("expected empty embedding, got %q", got.Embedding)
		}
		if got.Flagged {
			t.Error("expected bob not to be flagged")
		}
	})

	t.Run("AllOrderedByID", func(t *testing.T) {
		all, err := repo.All(ctx)
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 identities, got %d", len(all))
		}
		if all[0].ID != aliceID || all[1].ID != bobID {
			t.Errorf("unexpected order: %d, %d", all[0].ID, all[1].ID)
		}
		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if count != 2 {
			t.Errorf("expected count 2, got %d", count)
		}
	})

	t.Run("Update", func(t *testing.T) {
		changed := alice
		changed.GivenName = "Alicia"
		changed.Flagged = false
		changed.Embedding = "0.4,0.5,0.6"
		if err := repo.Update(ctx, aliceID, &changed); err != nil {
			t.Fatalf("Update: %v", err)
		}
		got, err := repo.Get(ctx, aliceID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		assertIdentity(t, got, aliceID, changed)

		// Same values twice must still report success.
		if err := repo.Update(ctx, aliceID, &changed); err != nil {
			t.Fatalf("idempotent Update: %v", err)
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		err := repo.Update(ctx, 999999, &alice)
		if !errors.Is(err, database.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.Delete(ctx, bobID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		got, err := repo.Get(ctx, bobID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got != nil {
			t.Errorf("expected deleted identity to be gone, got %+v", got)
		}
		if err := repo.Delete(ctx, bobID); !errors.Is(err, database.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func assertIdentity(t *testing.T, got *database.StoredIdentity, id int64, want database.StoredIdentity) {
	t.Helper()
	if got.ID != id {
		t.Errorf("ID = %d, want %d", got.ID, id)
	}
	if got.GivenName != want.GivenName || got.FamilyName != want.FamilyName {
		t.Errorf("name = %q %q, want %q %q", got.GivenName, got.FamilyName, want.GivenName, want.FamilyName)
	}
	if got.Code != want.Code || got.Email != want.Email {
		t.Errorf("code/email = %q/%q, want %q/%q", got.Code, got.Email, want.Code, want.Email)
	}
	if got.Flagged != want.Flagged {
		t.Errorf("Flagged = %v, want %v", got.Flagged, want.Flagged)
	}
	if got.ImageRef != want.ImageRef {
		t.Errorf("ImageRef = %q, want %q", got.ImageRef, want.ImageRef)
	}
	if got.Embedding != want.Embedding {
		t.Errorf("Embedding = %q, want %q", got.Embedding, want.Embedding)
	}
}
