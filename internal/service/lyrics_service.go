package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/musicmotivate/api/internal/client"
	"github.com/musicmotivate/api/internal/model"
)

// LyricsGenerator defines the interface for lyrics generation
type LyricsGenerator interface {
	Generate(ctx context.Context, req *model.LyricsGenerateRequest) (*model.LyricsGenerateResponse, error)
}

// LyricsService turns the questionnaire answers into song lyrics and an
// audio style prompt using the Groq chat-completion API.
type LyricsService struct {
	groqClient *client.GroqClient
}

func NewLyricsService(groqClient *client.GroqClient) *LyricsService {
	return &LyricsService{
		groqClient: groqClient,
	}
}

// Generate creates lyrics from the given mood, energy and genre. When no AI
// client is configured a deterministic mock is returned instead.
func (s *LyricsService) Generate(ctx context.Context, req *model.LyricsGenerateRequest) (*model.LyricsGenerateResponse, error) {
	if s.groqClient == nil || !s.groqClient.IsConfigured() {
		return s.generateMock(req), nil
	}

	systemPrompt := "You are a songwriter. Write motivational song lyrics matching the requested mood, energy and genre. " +
		"Answer with the lyrics first, then a final line starting with 'STYLE:' describing the musical style in one sentence."
	userPrompt := s.buildPrompt(req)

	content, err := s.groqClient.ChatCompletion(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("AI generation failed: %w", err)
	}

	lyrics, audioPrompt := splitLyricsResponse(content)
	if audioPrompt == "" {
		audioPrompt = fmt.Sprintf("%s %s song, %s energy", req.Mood, req.Genre, req.EnergyLevel)
	}

	return &model.LyricsGenerateResponse{
		Lyrics:      lyrics,
		AudioPrompt: audioPrompt,
	}, nil
}

func (s *LyricsService) buildPrompt(req *model.LyricsGenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mood: %s\nEnergy level: %s\nGenre: %s\n", req.Mood, req.EnergyLevel, req.Genre)
	if req.Situation != "" {
		fmt.Fprintf(&b, "Situation: %s\n", req.Situation)
	}
	if len(req.Tags) > 0 {
		fmt.Fprintf(&b, "Themes: %s\n", strings.Join(req.Tags, ", "))
	}
	return b.String()
}

func (s *LyricsService) generateMock(req *model.LyricsGenerateRequest) *model.LyricsGenerateResponse {
	lyrics := fmt.Sprintf(
		"[Verse 1]\nEvery morning brings a brand new day\nThese %s feelings guide me on my way\n\n[Chorus]\nKeep on moving, keep on going strong\nThis %s beat will carry me along",
		req.Mood, req.Genre,
	)
	return &model.LyricsGenerateResponse{
		Lyrics:      lyrics,
		AudioPrompt: fmt.Sprintf("%s %s song, %s energy", req.Mood, req.Genre, req.EnergyLevel),
	}
}

// splitLyricsResponse separates the lyrics body from the trailing STYLE line.
func splitLyricsResponse(content string) (lyrics, audioPrompt string) {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	var body []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToUpper(trimmed), "STYLE:") {
			audioPrompt = strings.TrimSpace(trimmed[len("STYLE:"):])
			continue
		}
		body = append(body, line)
	}
	return strings.TrimSpace(strings.Join(body, "\n")), audioPrompt
}
