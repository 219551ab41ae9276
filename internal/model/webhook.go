package model

// ProviderSong is one entry of the provider's batch webhook payload.
type ProviderSong struct {
	ID                   string `json:"id"`
	Title                string `json:"title"`
	AudioURL             string `json:"audio_url"`
	Prompt               string `json:"prompt"`
	Status               string `json:"status"`
	ImageURL             string `json:"image_url,omitempty"`
	Lyric                string `json:"lyric,omitempty"`
	VideoURL             string `json:"video_url,omitempty"`
	CreatedAt            string `json:"created_at,omitempty"`
	ModelName            string `json:"model_name,omitempty"`
	GptDescriptionPrompt string `json:"gpt_description_prompt,omitempty"`
	Type                 string `json:"type,omitempty"`
	Tags                 string `json:"tags,omitempty"`
}

// BatchWebhookPayload is the array-shaped webhook body.
type BatchWebhookPayload struct {
	Data []ProviderSong `json:"data"`
}

// DualTrackWebhookPayload is the fixed-field webhook body carrying two tracks.
// The provider song id for each track is the trailing path segment of the
// audio URL before ".mp3".
type DualTrackWebhookPayload struct {
	AudioURL1 string `json:"audio_url_1"`
	AudioURL2 string `json:"audio_url_2"`
	ImageURL1 string `json:"image_url_1"`
	ImageURL2 string `json:"image_url_2"`
	Title     string `json:"title"`
	TaskID    string `json:"task_id"`
	Tags      string `json:"tags,omitempty"`
	Lyric     string `json:"lyric,omitempty"`
	ModelName string `json:"model_name,omitempty"`
}
