package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"github.com/musicmotivate/api/internal/client"
	"github.com/musicmotivate/api/internal/middleware"
	"github.com/musicmotivate/api/internal/model"
	"github.com/musicmotivate/api/internal/registry"
	"github.com/musicmotivate/api/internal/service"
	"github.com/musicmotivate/api/internal/store"
)

const testJWTSecret = "test-secret"

type stubGenerator struct {
	resp *client.SunoGenerateResponse
	err  error
}

func (s *stubGenerator) GenerateSongs(ctx context.Context, req *client.SunoGenerateRequest) (*client.SunoGenerateResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *stubGenerator) IsConfigured() bool { return true }

type stubEnqueuer struct{}

func (s *stubEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	return &asynq.TaskInfo{}, nil
}

type songsTestApp struct {
	app      *fiber.App
	registry *registry.TaskRegistry
	store    *store.SongStore
	auth     *middleware.AuthMiddleware
}

func setupSongsApp(t *testing.T, gen client.MusicGenerator) *songsTestApp {
	t.Helper()

	songStore, _ := newTestStores(t)
	taskRegistry := registry.New(time.Minute)
	t.Cleanup(taskRegistry.Shutdown)

	generation := service.NewGenerationService(songStore, taskRegistry, gen, &stubEnqueuer{}, "", 60)
	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret)
	songsHandler := NewSongsHandler(generation, taskRegistry, songStore, validator.New())

	app := fiber.New()
	api := app.Group("/api", authMiddleware.Authenticate())
	songs := api.Group("/songs")
	songs.Post("/generate", songsHandler.Generate)
	songs.Get("/status/:taskId", songsHandler.Status)
	songs.Get("/", songsHandler.History)

	return &songsTestApp{app: app, registry: taskRegistry, store: songStore, auth: authMiddleware}
}

func (ta *songsTestApp) authHeaders(t *testing.T) map[string]string {
	t.Helper()
	token, err := ta.auth.GenerateToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestSongsGenerate_Accepted(t *testing.T) {
	ta := setupSongsApp(t, &stubGenerator{resp: &client.SunoGenerateResponse{Code: 200}})

	body := `{"prompt": "an uplifting run anthem", "style": "pop"}`
	resp, err := doRequest(ta.app, http.MethodPost, "/api/songs/generate", body, ta.authHeaders(t))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusAccepted)

	result := parseJSON(t, resp)
	taskID, _ := result["taskId"].(string)
	if taskID == "" {
		t.Fatal("expected taskId in response")
	}
	if result["status"] != "waiting" {
		t.Errorf("expected status waiting, got %v", result["status"])
	}

	// Status endpoint reflects the registry entry.
	resp, err = doRequest(ta.app, http.MethodGet, "/api/songs/status/"+taskID, "", ta.authHeaders(t))
	if err != nil {
		t.Fatalf("status request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	state := parseJSON(t, resp)
	if state["status"] != "waiting" {
		t.Errorf("expected waiting registry state, got %v", state["status"])
	}
}

func TestSongsGenerate_NoAuth(t *testing.T) {
	ta := setupSongsApp(t, &stubGenerator{resp: &client.SunoGenerateResponse{Code: 200}})

	resp, err := doRequest(ta.app, http.MethodPost, "/api/songs/generate", `{"prompt":"p","style":"s"}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusUnauthorized)

	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object in response")
	}
	if errObj["code"] != "UNAUTHORIZED" {
		t.Errorf("expected UNAUTHORIZED, got %v", errObj["code"])
	}
}

func TestSongsGenerate_ValidationError(t *testing.T) {
	ta := setupSongsApp(t, &stubGenerator{resp: &client.SunoGenerateResponse{Code: 200}})

	// Missing style
	resp, err := doRequest(ta.app, http.MethodPost, "/api/songs/generate", `{"prompt":"p"}`, ta.authHeaders(t))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)

	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object in response")
	}
	if errObj["code"] != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %v", errObj["code"])
	}
}

func TestSongsGenerate_ProviderRejected(t *testing.T) {
	ta := setupSongsApp(t, &stubGenerator{resp: &client.SunoGenerateResponse{Code: 500, Msg: "provider down"}})

	resp, err := doRequest(ta.app, http.MethodPost, "/api/songs/generate", `{"prompt":"p","style":"s"}`, ta.authHeaders(t))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadGateway)

	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object in response")
	}
	if errObj["code"] != "PROVIDER_ERROR" {
		t.Errorf("expected PROVIDER_ERROR, got %v", errObj["code"])
	}
}

func TestSongsStatus_NotFound(t *testing.T) {
	ta := setupSongsApp(t, &stubGenerator{resp: &client.SunoGenerateResponse{Code: 200}})

	resp, err := doRequest(ta.app, http.MethodGet, "/api/songs/status/unknown-task", "", ta.authHeaders(t))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)
}

func TestSongsHistory(t *testing.T) {
	ta := setupSongsApp(t, &stubGenerator{resp: &client.SunoGenerateResponse{Code: 200}})

	for _, title := range []string{"First", "Second"} {
		song := &model.Song{TaskID: "t-" + title, Title: title, UserID: "user-1"}
		if err := ta.store.CreatePending(context.Background(), song); err != nil {
			t.Fatalf("CreatePending failed: %v", err)
		}
	}

	resp, err := doRequest(ta.app, http.MethodGet, "/api/songs/", "", ta.authHeaders(t))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["count"] != float64(2) {
		t.Errorf("expected count 2, got %v", result["count"])
	}
}
