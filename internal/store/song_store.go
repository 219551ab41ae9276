package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/musicmotivate/api/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// SongStore persists song job records and task mappings. It is the single
// source of truth shared between the submitter, the webhook receiver and the
// completion waiter; correctness relies on single-row update semantics, not
// on any client-held lock.
type SongStore struct {
	db *gorm.DB
}

func NewSongStore(db *gorm.DB) *SongStore {
	return &SongStore{db: db}
}

// CompletionFields carries the provider metadata written alongside the
// complete status. Fields are populated atomically with the status change.
type CompletionFields struct {
	TaskID    string
	AudioURL  string
	ImageURL  string
	VideoURL  string
	Title     string
	Tags      string
	Lyric     string
	ModelName string
	Prompt    string
}

// CreatePending inserts the initial pending job record. This happens before
// the provider call so an early webhook can still be correlated.
func (s *SongStore) CreatePending(ctx context.Context, song *model.Song) error {
	song.Status = model.SongStatusPending
	if song.CreatedAt.IsZero() {
		song.CreatedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(song).Error
}

// CreateTaskMapping inserts the task correlation row.
func (s *SongStore) CreateTaskMapping(ctx context.Context, mapping *model.TaskMapping) error {
	return s.db.WithContext(ctx).Create(mapping).Error
}

// CompletedByTaskID returns all complete rows for a task id.
func (s *SongStore) CompletedByTaskID(ctx context.Context, taskID string) ([]model.Song, error) {
	var songs []model.Song
	err := s.db.WithContext(ctx).
		Where("task_id = ? AND status = ?", taskID, model.SongStatusComplete).
		Find(&songs).Error
	return songs, err
}

// MarkTaskFailed marks every row for a task id as failed. Used when the
// provider rejects the generation request, so orphaned pending rows are not
// later misread as still in progress.
func (s *SongStore) MarkTaskFailed(ctx context.Context, taskID string) error {
	return s.db.WithContext(ctx).
		Model(&model.Song{}).
		Where("task_id = ? AND status = ?", taskID, model.SongStatusPending).
		Update("status", model.SongStatusFailed).Error
}

// CompleteBySunoID transitions the row matching a provider song id to
// complete, writing the provider metadata. When no row carries the id yet,
// a pending row for the same task is claimed; failing that, a new row is
// inserted. Applying the same completion twice is safe. An empty sunoID is
// rejected outright: pending rows all carry suno_id = '' and an empty key
// would match every one of them.
func (s *SongStore) CompleteBySunoID(ctx context.Context, sunoID string, fields CompletionFields) error {
	if sunoID == "" {
		return errors.New("suno id is required")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":              model.SongStatusComplete,
		"audio_url":           fields.AudioURL,
		"image_url":           fields.ImageURL,
		"title":               fields.Title,
		"tags":                fields.Tags,
		"lyric":               fields.Lyric,
		"model_name":          fields.ModelName,
		"webhook_received_at": &now,
	}
	// A redelivery without the title marker carries no task id; writing the
	// empty value would erase the correlation an in-flight waiter polls by.
	if fields.TaskID != "" {
		updates["task_id"] = fields.TaskID
	}
	if fields.VideoURL != "" {
		updates["video_url"] = fields.VideoURL
	}

	res := s.db.WithContext(ctx).
		Model(&model.Song{}).
		Where("suno_id = ?", sunoID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// No row carries this provider id yet. Claim one pending row created at
	// submission time, if any, so the pre-created record transitions instead
	// of piling up a duplicate.
	if fields.TaskID != "" {
		var pending model.Song
		err := s.db.WithContext(ctx).
			Where("task_id = ? AND suno_id = '' AND status = ?", fields.TaskID, model.SongStatusPending).
			Order("id").
			First(&pending).Error
		if err == nil {
			updates["suno_id"] = sunoID
			return s.db.WithContext(ctx).
				Model(&model.Song{}).
				Where("id = ?", pending.ID).
				Updates(updates).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	song := model.Song{
		TaskID:            fields.TaskID,
		SunoID:            sunoID,
		Status:            model.SongStatusComplete,
		Title:             fields.Title,
		Prompt:            fields.Prompt,
		AudioURL:          fields.AudioURL,
		ImageURL:          fields.ImageURL,
		VideoURL:          fields.VideoURL,
		Lyric:             fields.Lyric,
		Tags:              fields.Tags,
		ModelName:         fields.ModelName,
		CreatedAt:         now,
		WebhookReceivedAt: &now,
	}
	return s.db.WithContext(ctx).Create(&song).Error
}

// UpsertProviderSong reconciles one batch-webhook entry keyed by provider id.
// Only status "complete" transitions the job record to complete.
func (s *SongStore) UpsertProviderSong(ctx context.Context, entry model.ProviderSong, taskID string) error {
	if entry.Status != "complete" {
		// Progress callbacks carry no terminal information for the store.
		return nil
	}
	return s.CompleteBySunoID(ctx, entry.ID, CompletionFields{
		TaskID:    taskID,
		AudioURL:  entry.AudioURL,
		ImageURL:  entry.ImageURL,
		VideoURL:  entry.VideoURL,
		Title:     entry.Title,
		Tags:      entry.Tags,
		Lyric:     entry.Lyric,
		ModelName: entry.ModelName,
		Prompt:    entry.Prompt,
	})
}

// ListByUser returns a user's songs, newest first.
func (s *SongStore) ListByUser(ctx context.Context, userID string) ([]model.Song, error) {
	var songs []model.Song
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&songs).Error
	return songs, err
}

// TaskMappingByID returns the mapping row for a task id.
func (s *SongStore) TaskMappingByID(ctx context.Context, taskID string) (*model.TaskMapping, error) {
	var mapping model.TaskMapping
	err := s.db.WithContext(ctx).Where("task_id = ?", taskID).First(&mapping).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

// ListTaskMappings returns a user's task mappings, newest first.
func (s *SongStore) ListTaskMappings(ctx context.Context, userID string) ([]model.TaskMapping, error) {
	var mappings []model.TaskMapping
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&mappings).Error
	return mappings, err
}
