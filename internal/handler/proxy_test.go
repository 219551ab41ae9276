package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/musicmotivate/api/internal/client"
	"github.com/musicmotivate/api/internal/config"
)

func setupProxyApp(allowedHosts []string) *fiber.App {
	fetcher := client.NewAudioFetcher(&config.AudioConfig{
		AllowedHosts: allowedHosts,
		Timeout:      5,
	})
	app := fiber.New()
	app.All("/api/proxy-audio", NewProxyHandler(fetcher).Handle)
	return app
}

func TestProxy_StreamsAllowedURL(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-bytes"))
	}))
	defer remote.Close()

	app := setupProxyApp([]string{"127.0.0.1"})

	resp, err := doRequest(app, http.MethodGet, "/api/proxy-audio?url="+remote.URL+"/song.mp3", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	if got := resp.Header.Get("Content-Type"); got != "audio/mpeg" {
		t.Errorf("expected audio/mpeg, got %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected open CORS, got %q", got)
	}
	if body := readBody(t, resp); body != "mp3-bytes" {
		t.Errorf("expected streamed bytes, got %q", body)
	}
}

func TestProxy_RejectsDisallowedURL(t *testing.T) {
	requested := false
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	defer remote.Close()

	app := setupProxyApp([]string{"suno.ai", "sunoapi"})

	resp, err := doRequest(app, http.MethodGet, "/api/proxy-audio?url="+remote.URL+"/song.mp3", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)

	result := parseJSON(t, resp)
	if result["error"] != "URL not allowed" {
		t.Errorf("expected URL not allowed, got %v", result["error"])
	}
	if requested {
		t.Error("disallowed URL must be rejected before any network call")
	}
}

func TestProxy_MissingURL(t *testing.T) {
	app := setupProxyApp([]string{"suno.ai"})

	resp, err := doRequest(app, http.MethodGet, "/api/proxy-audio", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)

	result := parseJSON(t, resp)
	if result["error"] != "Missing url parameter" {
		t.Errorf("expected Missing url parameter, got %v", result["error"])
	}
}

func TestProxy_MethodNotAllowed(t *testing.T) {
	app := setupProxyApp([]string{"suno.ai"})

	resp, err := doRequest(app, http.MethodPost, "/api/proxy-audio?url=https://suno.ai/a.mp3", "{}", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusMethodNotAllowed)
}

func TestProxy_UpstreamFailure(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer remote.Close()

	app := setupProxyApp([]string{"127.0.0.1"})

	resp, err := doRequest(app, http.MethodGet, "/api/proxy-audio?url="+remote.URL+"/song.mp3", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadGateway)
}
