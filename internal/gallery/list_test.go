package gallery

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/kozaktomas/face-gallery/internal/database"
)

func TestList(t *testing.T) {
	env := newTestEnv(t)
	x := env.register(t, profile("X"), red)
	y := env.register(t, profile("Y"), green)
	env.store.AddIdentity(database.StoredIdentity{Code: "GONE", GivenName: "Gone", ImageRef: "missing.jpg"})

	seq, err := env.manager.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	var items []ListedIdentity
	for item, err := range seq {
		if err != nil {
			t.Fatalf("iteration error: %v", err)
		}
		items = append(items, item)
	}

	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != x.ID || items[1].ID != y.ID {
		t.Errorf("unexpected order: %d, %d", items[0].ID, items[1].ID)
	}
	if !bytes.Equal(items[0].Image, photo(t, red)) {
		t.Error("expected X's photo inline")
	}
	if items[2].Image == nil || len(items[2].Image) != 0 {
		t.Errorf("missing artifact must yield an empty image, got %v", items[2].Image)
	}
	if items[2].GivenName != "Gone" {
		t.Errorf("unexpected profile %+v", items[2].Profile)
	}
}

func TestList_SingleUse(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, profile("X"), red)

	seq, err := env.manager.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	if first != 1 || second != 0 {
		t.Errorf("expected 1 then 0 items, got %d then %d", first, second)
	}
}

func TestList_Snapshot(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, profile("X"), red)

	seq, err := env.manager.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	env.register(t, profile("Y"), green)

	n := 0
	for range seq {
		n++
	}
	if n != 1 {
		t.Errorf("expected snapshot of 1 identity, got %d", n)
	}
}

func TestList_EarlyBreak(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, profile("X"), red)
	env.register(t, profile("Y"), green)

	seq, _ := env.manager.List(context.Background())
	n := 0
	for range seq {
		n++
		break
	}
	if n != 1 {
		t.Errorf("expected to stop after 1, got %d", n)
	}
}

func TestList_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, profile("X"), red)

	env.artifacts.ReadError = errors.New("io timeout")
	seq, err := env.manager.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var iterErr error
	for _, err := range seq {
		iterErr = err
	}
	assertErrorIs(t, iterErr, ErrArtifact)

	env.store.AllError = errors.New("connection refused")
	_, err = env.manager.List(context.Background())
	assertErrorIs(t, err, ErrStore)
}
