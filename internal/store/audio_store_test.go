package store

import (
	"context"
	"testing"

	"github.com/musicmotivate/api/internal/model"
)

func newTestAudioStore(t *testing.T) *AudioStore {
	t.Helper()
	db, err := Open("")
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	return NewAudioStore(db)
}

func TestPut_Idempotent(t *testing.T) {
	s := newTestAudioStore(t)
	ctx := context.Background()

	first := &model.StoredAudio{
		ID:          "song-1",
		Title:       "First",
		ContentType: "audio/mpeg",
		AudioBlob:   []byte("aaa"),
		Size:        3,
	}
	if err := s.Put(ctx, first); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}

	second := &model.StoredAudio{
		ID:          "song-1",
		Title:       "Replaced",
		ContentType: "audio/mpeg",
		AudioBlob:   []byte("bbbb"),
		Size:        4,
	}
	if err := s.Put(ctx, second); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	all, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("storing the same id twice must keep one entry, got %d", len(all))
	}

	got, err := s.GetByID(ctx, "song-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Replaced" {
		t.Errorf("expected overwritten title, got %q", got.Title)
	}
	if string(got.AudioBlob) != "bbbb" {
		t.Errorf("expected overwritten blob, got %q", got.AudioBlob)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	s := newTestAudioStore(t)

	if _, err := s.GetByID(context.Background(), "missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAll_OmitsBlobs(t *testing.T) {
	s := newTestAudioStore(t)
	ctx := context.Background()

	audio := &model.StoredAudio{
		ID:        "song-1",
		Title:     "With blob",
		AudioBlob: []byte("payload"),
		Size:      7,
	}
	if err := s.Put(ctx, audio); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	all, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(all))
	}
	if len(all[0].AudioBlob) != 0 {
		t.Error("GetAll must not load blobs")
	}
	if all[0].Size != 7 {
		t.Errorf("expected size metadata, got %d", all[0].Size)
	}
}

func TestDeleteAndClear(t *testing.T) {
	s := newTestAudioStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if err := s.Put(ctx, &model.StoredAudio{ID: id, AudioBlob: []byte{1}}); err != nil {
			t.Fatalf("Put %s failed: %v", id, err)
		}
	}

	if err := s.DeleteByID(ctx, "a"); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}
	if _, err := s.GetByID(ctx, "a"); err != ErrNotFound {
		t.Errorf("expected deleted entry to be gone, got %v", err)
	}

	// Deleting a missing id is not an error.
	if err := s.DeleteByID(ctx, "missing"); err != nil {
		t.Errorf("DeleteByID on missing id returned %v", err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	all, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected empty store after Clear, got %d entries", len(all))
	}
}
