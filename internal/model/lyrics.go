package model

// LyricsGenerateRequest represents the request body for lyrics generation
type LyricsGenerateRequest struct {
	Mood        string   `json:"mood" validate:"required,min=1"`
	EnergyLevel string   `json:"energyLevel" validate:"required,oneof=low medium high"`
	Genre       string   `json:"genre" validate:"required,min=1"`
	Situation   string   `json:"situation" validate:"omitempty,max=500"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,min=1"`
}

// LyricsGenerateResponse represents the response for lyrics generation.
// AudioPrompt is a style description suitable for the generation request.
type LyricsGenerateResponse struct {
	Lyrics      string `json:"lyrics"`
	AudioPrompt string `json:"audioPrompt"`
}
