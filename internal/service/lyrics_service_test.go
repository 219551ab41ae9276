package service

import (
	"context"
	"strings"
	"testing"

	"github.com/musicmotivate/api/internal/client"
	"github.com/musicmotivate/api/internal/config"
	"github.com/musicmotivate/api/internal/model"
)

func TestLyricsGenerate_MockFallback(t *testing.T) {
	// No API key configured → deterministic mock
	svc := NewLyricsService(client.NewGroqClient(&config.GroqConfig{}))

	req := &model.LyricsGenerateRequest{
		Mood:        "confident",
		EnergyLevel: "high",
		Genre:       "rock",
	}
	result, err := svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(result.Lyrics, "confident") {
		t.Errorf("expected mood in mock lyrics, got %q", result.Lyrics)
	}
	if result.AudioPrompt != "confident rock song, high energy" {
		t.Errorf("unexpected audio prompt: %q", result.AudioPrompt)
	}
}

func TestSplitLyricsResponse(t *testing.T) {
	content := "[Verse 1]\nLine one\nLine two\n\nSTYLE: upbeat pop with driving drums"
	lyrics, audioPrompt := splitLyricsResponse(content)

	if strings.Contains(lyrics, "STYLE:") {
		t.Errorf("style line must be stripped from lyrics: %q", lyrics)
	}
	if !strings.Contains(lyrics, "Line two") {
		t.Errorf("lyrics body lost: %q", lyrics)
	}
	if audioPrompt != "upbeat pop with driving drums" {
		t.Errorf("unexpected audio prompt: %q", audioPrompt)
	}
}

func TestSplitLyricsResponse_NoStyleLine(t *testing.T) {
	lyrics, audioPrompt := splitLyricsResponse("just lyrics\nno style")
	if audioPrompt != "" {
		t.Errorf("expected empty audio prompt, got %q", audioPrompt)
	}
	if lyrics != "just lyrics\nno style" {
		t.Errorf("lyrics altered: %q", lyrics)
	}
}
