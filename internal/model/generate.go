package model

// Suno model variants
type SunoModel string

const (
	SunoModelV35     SunoModel = "V3_5"
	SunoModelV4      SunoModel = "V4"
	SunoModelV45     SunoModel = "V4_5"
	SunoModelV45Plus SunoModel = "V4_5PLUS"
)

var ValidSunoModels = []SunoModel{
	SunoModelV35, SunoModelV4, SunoModelV45, SunoModelV45Plus,
}

// GenerateSongRequest is the client-facing request to start a generation.
type GenerateSongRequest struct {
	Prompt       string    `json:"prompt" validate:"required"`
	Style        string    `json:"style" validate:"required"`
	Title        string    `json:"title"`
	Instrumental bool      `json:"instrumental"`
	Model        SunoModel `json:"model" validate:"omitempty,oneof=V3_5 V4 V4_5 V4_5PLUS"`
	NegativeTags string    `json:"negativeTags"`
}

// GenerateSongResponse acknowledges an accepted generation request.
type GenerateSongResponse struct {
	TaskID string     `json:"taskId"`
	Status TaskStatus `json:"status"`
}
