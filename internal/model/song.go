package model

import "time"

// Song status in the persisted store
type SongStatus string

const (
	SongStatusPending  SongStatus = "pending"
	SongStatusComplete SongStatus = "complete"
	SongStatusFailed   SongStatus = "failed"
)

// Song is a persisted job record for one generated track. A row is created
// with status=pending before the provider is asked to start work, so a
// webhook arriving before the submission call returns can still be matched.
type Song struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	TaskID            string     `gorm:"index" json:"taskId"`
	SunoID            string     `gorm:"index" json:"sunoId,omitempty"`
	Status            SongStatus `gorm:"index" json:"status"`
	Title             string     `json:"title"`
	Prompt            string     `json:"prompt"`
	Style             string     `json:"style,omitempty"`
	AudioURL          string     `json:"audioUrl,omitempty"`
	ImageURL          string     `json:"imageUrl,omitempty"`
	VideoURL          string     `json:"videoUrl,omitempty"`
	Lyric             string     `json:"lyric,omitempty"`
	Tags              string     `json:"tags,omitempty"`
	ModelName         string     `json:"modelName,omitempty"`
	UserID            string     `gorm:"index" json:"userId"`
	CreatedAt         time.Time  `json:"createdAt"`
	WebhookReceivedAt *time.Time `json:"webhookReceivedAt,omitempty"`
}

// TaskMapping correlates a client-generated task id with the provider-assigned
// song id once the webhook resolves it.
type TaskMapping struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    string    `gorm:"uniqueIndex" json:"taskId"`
	SunoID    string    `json:"sunoId,omitempty"`
	Title     string    `json:"title"`
	UserID    string    `gorm:"index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SongResult is the UI-facing shape of a resolved song.
type SongResult struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ImageURL  string `json:"image_url"`
	Lyric     string `json:"lyric"`
	AudioURL  string `json:"audio_url"`
	VideoURL  string `json:"video_url"`
	CreatedAt string `json:"created_at"`
	ModelName string `json:"model_name"`
	Status    string `json:"status"`
	Prompt    string `json:"prompt"`
	Tags      string `json:"tags"`
}

// StoredAudio is a locally cached audio file, keyed by provider song id
// (falling back to the song record id when the provider id is absent).
// Storing the same id again overwrites the previous entry.
type StoredAudio struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Title       string    `json:"title"`
	ContentType string    `json:"contentType"`
	AudioBlob   []byte    `gorm:"type:blob" json:"-"`
	Size        int64     `json:"size"`
	Tags        string    `json:"tags,omitempty"`
	Prompt      string    `json:"prompt,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AudioMeta carries the minimal song fields needed to cache an audio file.
type AudioMeta struct {
	ID     string
	Title  string
	Tags   string
	Prompt string
}
