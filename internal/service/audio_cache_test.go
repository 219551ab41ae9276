package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/musicmotivate/api/internal/client"
	"github.com/musicmotivate/api/internal/config"
	"github.com/musicmotivate/api/internal/model"
	"github.com/musicmotivate/api/internal/store"
)

func newTestAudioCache(t *testing.T, allowedHosts []string) *AudioCacheService {
	t.Helper()
	db, err := store.Open("")
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	fetcher := client.NewAudioFetcher(&config.AudioConfig{
		AllowedHosts: allowedHosts,
		Timeout:      5,
	})
	return NewAudioCacheService(fetcher, store.NewAudioStore(db))
}

func TestDownloadAndStore(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-data"))
	}))
	defer remote.Close()

	cache := newTestAudioCache(t, []string{"127.0.0.1"})
	meta := model.AudioMeta{ID: "song-1", Title: "Track", Tags: "pop", Prompt: "prompt"}

	audio, err := cache.DownloadAndStore(context.Background(), remote.URL+"/song-1.mp3", meta)
	if err != nil {
		t.Fatalf("DownloadAndStore failed: %v", err)
	}
	if audio.Size != 8 {
		t.Errorf("expected size 8, got %d", audio.Size)
	}
	if audio.ContentType != "audio/mpeg" {
		t.Errorf("expected audio/mpeg, got %q", audio.ContentType)
	}

	got, err := cache.GetByID(context.Background(), "song-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if string(got.AudioBlob) != "mp3-data" {
		t.Errorf("expected persisted blob, got %q", got.AudioBlob)
	}
	if got.Title != "Track" || got.Tags != "pop" {
		t.Errorf("expected metadata persisted, got %+v", got)
	}
}

func TestDownloadAndStore_Idempotent(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("same-song"))
	}))
	defer remote.Close()

	cache := newTestAudioCache(t, []string{"127.0.0.1"})
	meta := model.AudioMeta{ID: "song-1", Title: "Track"}

	for i := 0; i < 2; i++ {
		if _, err := cache.DownloadAndStore(context.Background(), remote.URL+"/song-1.mp3", meta); err != nil {
			t.Fatalf("DownloadAndStore #%d failed: %v", i+1, err)
		}
	}

	all, err := cache.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("repeated download created duplicates: got %d entries", len(all))
	}
}

func TestDownloadAndStore_DisallowedHost(t *testing.T) {
	cache := newTestAudioCache(t, []string{"suno.ai"})

	_, err := cache.DownloadAndStore(context.Background(), "https://evil.example.com/song.mp3", model.AudioMeta{ID: "x"})
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("expected ErrDownloadFailed, got %v", err)
	}
}

func TestDownloadAndStore_UpstreamError(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer remote.Close()

	cache := newTestAudioCache(t, []string{"127.0.0.1"})

	_, err := cache.DownloadAndStore(context.Background(), remote.URL+"/gone.mp3", model.AudioMeta{ID: "x"})
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("expected ErrDownloadFailed, got %v", err)
	}
}
