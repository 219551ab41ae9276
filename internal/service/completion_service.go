package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/musicmotivate/api/internal/model"
)

// ErrTimeout is returned when no complete row appears within the polling
// budget. A job that never completes is only ever detected this way; the
// store is never polled for an explicit failure status.
var ErrTimeout = errors.New("song generation timed out waiting for webhook")

// completionStore is the slice of the song store the waiter reads.
type completionStore interface {
	CompletedByTaskID(ctx context.Context, taskID string) ([]model.Song, error)
}

// AudioStorer caches a completed song's audio locally.
type AudioStorer interface {
	DownloadAndStore(ctx context.Context, remoteURL string, meta model.AudioMeta) (*model.StoredAudio, error)
}

// CompletionService polls the persisted song store until a submitted task's
// rows reach complete, then caches the resulting audio locally. Polling
// rounds are strictly sequential per task; concurrent tasks wait
// independently.
type CompletionService struct {
	store    completionStore
	cache    AudioStorer
	interval time.Duration
}

func NewCompletionService(store completionStore, cache AudioStorer, interval time.Duration) *CompletionService {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &CompletionService{
		store:    store,
		cache:    cache,
		interval: interval,
	}
}

// WaitForCompletion polls for complete rows up to maxAttempts rounds. The
// first non-empty poll resolves the task: every row with an audio URL is
// downloaded and cached, and the full song list is returned. A failure to
// cache one song is logged and does not abort the others or the result
// (the song is still reported ready, just not stored locally).
func (s *CompletionService) WaitForCompletion(ctx context.Context, taskID string, maxAttempts int) ([]model.SongResult, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		songs, err := s.store.CompletedByTaskID(ctx, taskID)
		if err != nil {
			log.Printf("Poll #%d (task=%s) — store error: %v", attempt+1, taskID, err)
		}

		if len(songs) > 0 {
			for _, song := range songs {
				if song.AudioURL == "" {
					continue
				}
				meta := model.AudioMeta{
					ID:     storedAudioID(song),
					Title:  song.Title,
					Tags:   song.Tags,
					Prompt: song.Prompt,
				}
				if _, err := s.cache.DownloadAndStore(ctx, song.AudioURL, meta); err != nil {
					log.Printf("Failed to cache song %q (task=%s): %v", song.Title, taskID, err)
				}
			}
			return toSongResults(songs), nil
		}

		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.interval):
			}
		}
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrTimeout, maxAttempts)
}

// storedAudioID prefers the provider song id, falling back to the job
// record id when the webhook never carried one.
func storedAudioID(song model.Song) string {
	if song.SunoID != "" {
		return song.SunoID
	}
	return strconv.FormatUint(uint64(song.ID), 10)
}

func toSongResults(songs []model.Song) []model.SongResult {
	results := make([]model.SongResult, 0, len(songs))
	for _, song := range songs {
		results = append(results, model.SongResult{
			ID:        storedAudioID(song),
			Title:     song.Title,
			ImageURL:  song.ImageURL,
			Lyric:     song.Lyric,
			AudioURL:  song.AudioURL,
			VideoURL:  song.VideoURL,
			CreatedAt: song.CreatedAt.Format(time.RFC3339),
			ModelName: song.ModelName,
			Status:    string(song.Status),
			Prompt:    song.Prompt,
			Tags:      song.Tags,
		})
	}
	return results
}
