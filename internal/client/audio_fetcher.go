package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/musicmotivate/api/internal/config"
)

// AudioFetcher retrieves audio bytes from provider-hosted URLs. Every fetch
// is gated by a substring allow-list of known provider domains, so it never
// acts as a general-purpose proxy.
type AudioFetcher struct {
	httpClient   *http.Client
	allowedHosts []string
}

// NewAudioFetcher creates an audio fetcher from configuration.
func NewAudioFetcher(cfg *config.AudioConfig) *AudioFetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120
	}
	return &AudioFetcher{
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		allowedHosts: cfg.AllowedHosts,
	}
}

// IsAllowed reports whether a URL matches the provider allow-list.
func (f *AudioFetcher) IsAllowed(rawURL string) bool {
	for _, host := range f.allowedHosts {
		if host != "" && strings.Contains(rawURL, host) {
			return true
		}
	}
	return false
}

// Fetch downloads the resource at rawURL and returns its bytes and content
// type (defaulting to audio/mpeg). URLs outside the allow-list are rejected
// before any network call.
func (f *AudioFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	if !f.IsAllowed(rawURL) {
		return nil, "", fmt.Errorf("url not allowed: %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("failed to fetch audio (status %d)", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read audio body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	return data, contentType, nil
}
