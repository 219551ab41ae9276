package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/musicmotivate/api/internal/model"
)

// AudioStore persists downloaded audio blobs keyed by provider song id.
// Put overwrites on repeated storage of the same id, so retried downloads
// never duplicate entries.
type AudioStore struct {
	db *gorm.DB
}

func NewAudioStore(db *gorm.DB) *AudioStore {
	return &AudioStore{db: db}
}

// Put stores or replaces an audio entry.
func (s *AudioStore) Put(ctx context.Context, audio *model.StoredAudio) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(audio).Error
}

// GetByID returns a stored entry including its blob, or ErrNotFound.
func (s *AudioStore) GetByID(ctx context.Context, id string) (*model.StoredAudio, error) {
	var audio model.StoredAudio
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&audio).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &audio, nil
}

// GetAll returns every stored entry's metadata, newest first. Blobs are
// left out; they can be large and the history view only needs the badge.
func (s *AudioStore) GetAll(ctx context.Context) ([]model.StoredAudio, error) {
	var audios []model.StoredAudio
	err := s.db.WithContext(ctx).
		Select("id", "title", "content_type", "size", "tags", "prompt", "created_at").
		Order("created_at DESC").
		Find(&audios).Error
	return audios, err
}

// DeleteByID removes one entry. Deleting a missing id is not an error.
func (s *AudioStore) DeleteByID(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.StoredAudio{}).Error
}

// Clear removes every stored entry.
func (s *AudioStore) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("1 = 1").Delete(&model.StoredAudio{}).Error
}
