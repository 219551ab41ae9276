package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/musicmotivate/api/internal/client"
	"github.com/musicmotivate/api/internal/model"
	"github.com/musicmotivate/api/internal/store"
)

var (
	// ErrDownloadFailed is returned when the audio bytes cannot be fetched.
	ErrDownloadFailed = errors.New("failed to download audio")

	// ErrStorageFailed is returned when the blob cannot be persisted.
	ErrStorageFailed = errors.New("failed to store audio")
)

// AudioCacheService downloads completed audio through the allow-listed
// fetcher and keeps it in durable local storage, keyed by provider song id.
// Storing the same id twice overwrites, so retried downloads are safe.
type AudioCacheService struct {
	fetcher *client.AudioFetcher
	store   *store.AudioStore
}

func NewAudioCacheService(fetcher *client.AudioFetcher, audioStore *store.AudioStore) *AudioCacheService {
	return &AudioCacheService{
		fetcher: fetcher,
		store:   audioStore,
	}
}

// DownloadAndStore fetches the remote audio and persists it under meta.ID.
func (s *AudioCacheService) DownloadAndStore(ctx context.Context, remoteURL string, meta model.AudioMeta) (*model.StoredAudio, error) {
	data, contentType, err := s.fetcher.Fetch(ctx, remoteURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	audio := &model.StoredAudio{
		ID:          meta.ID,
		Title:       meta.Title,
		ContentType: contentType,
		AudioBlob:   data,
		Size:        int64(len(data)),
		Tags:        meta.Tags,
		Prompt:      meta.Prompt,
		CreatedAt:   time.Now(),
	}

	if err := s.store.Put(ctx, audio); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	return audio, nil
}

// GetByID returns one cached entry including its blob.
func (s *AudioCacheService) GetByID(ctx context.Context, id string) (*model.StoredAudio, error) {
	return s.store.GetByID(ctx, id)
}

// GetAll returns metadata for every cached entry.
func (s *AudioCacheService) GetAll(ctx context.Context) ([]model.StoredAudio, error) {
	return s.store.GetAll(ctx)
}

// DeleteByID removes one cached entry.
func (s *AudioCacheService) DeleteByID(ctx context.Context, id string) error {
	return s.store.DeleteByID(ctx, id)
}

// Clear removes all cached entries.
func (s *AudioCacheService) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}
