package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/musicmotivate/api/internal/config"
	"github.com/musicmotivate/api/internal/model"
)

// MusicGenerator defines the interface for starting a song generation.
type MusicGenerator interface {
	GenerateSongs(ctx context.Context, req *SunoGenerateRequest) (*SunoGenerateResponse, error)
	IsConfigured() bool
}

// SunoClient implements MusicGenerator for a Suno-compatible API.
type SunoClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// SunoGenerateRequest is the provider's start-generation request body.
// Title carries the embedded task-id marker; CallBackURL points at the
// webhook receiver so the provider can report completion asynchronously.
type SunoGenerateRequest struct {
	Prompt       string          `json:"prompt"`
	Style        string          `json:"style"`
	Title        string          `json:"title"`
	CustomMode   bool            `json:"customMode"`
	Instrumental bool            `json:"instrumental"`
	Model        model.SunoModel `json:"model"`
	CallBackURL  string          `json:"callBackUrl"`
	NegativeTags string          `json:"negativeTags,omitempty"`
}

// SunoGenerateResponse is the provider's acknowledgement. Code 200 means
// the job was accepted; anything else is a rejection.
type SunoGenerateResponse struct {
	Code  int                  `json:"code"`
	Msg   string               `json:"msg"`
	Data  *SunoGenerateData    `json:"data,omitempty"`
	Songs []model.ProviderSong `json:"songs,omitempty"`
}

// SunoGenerateData is the nested acknowledgement payload.
type SunoGenerateData struct {
	TaskID string               `json:"taskId,omitempty"`
	Songs  []model.ProviderSong `json:"songs,omitempty"`
}

// ProviderSongs returns whichever songs list the acknowledgement carried.
func (r *SunoGenerateResponse) ProviderSongs() []model.ProviderSong {
	if r.Data != nil && len(r.Data.Songs) > 0 {
		return r.Data.Songs
	}
	return r.Songs
}

// NewSunoClient creates a new Suno API client
func NewSunoClient(cfg *config.SunoConfig) *SunoClient {
	return &SunoClient{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// GenerateSongs submits a generation job to the provider.
func (c *SunoClient) GenerateSongs(ctx context.Context, genReq *SunoGenerateRequest) (*SunoGenerateResponse, error) {
	var result SunoGenerateResponse
	if err := c.post(ctx, "/api/v1/generate", genReq, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// post sends a POST request with JSON body
func (c *SunoClient) post(ctx context.Context, endpoint string, body interface{}, result interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, result)
}

// doRequest executes an HTTP request and parses the response
func (c *SunoClient) doRequest(req *http.Request, result interface{}) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Printf("[Suno API] → %s %s", req.Method, req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Suno API] ✗ %s %s — request failed: %v", req.Method, req.URL.String(), err)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[Suno API] ✗ %s %s — failed to read response: %v", req.Method, req.URL.String(), err)
		return fmt.Errorf("failed to read response: %w", err)
	}

	log.Printf("[Suno API] ← %d %s %s", resp.StatusCode, req.Method, req.URL.String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("suno API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		log.Printf("[Suno API] ✗ unmarshal error for %s %s: %v (body: %s)", req.Method, req.URL.String(), err, string(respBody))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// IsConfigured returns true if the client has valid configuration
func (c *SunoClient) IsConfigured() bool {
	return c.apiKey != ""
}
