package handler

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/musicmotivate/api/internal/model"
	"github.com/musicmotivate/api/internal/store"
)

var (
	// audioIDPattern pulls the provider song id out of an audio URL: the last
	// path segment before the .mp3 extension.
	audioIDPattern = regexp.MustCompile(`(?i)/([^/]+)\.mp3$`)

	// taskMarkerPattern recovers the task id embedded in the title at
	// submission time, for payloads that do not carry task_id themselves.
	taskMarkerPattern = regexp.MustCompile(`\[taskId: ([0-9a-fA-F-]+)\]`)
)

// dualTrackFields are the required dual-track payload fields, checked in
// this order so the first missing one names the error.
var dualTrackFields = []string{
	"audio_url_1",
	"audio_url_2",
	"image_url_1",
	"image_url_2",
	"title",
	"task_id",
}

// WebhookHandler ingests provider callbacks. The provider sends two payload
// shapes on the same endpoint: a batch shape with a "data" array of song
// objects, and a dual-track shape with numbered flat fields. The shape is
// detected structurally, not from any header.
type WebhookHandler struct {
	store *store.SongStore
}

func NewWebhookHandler(songStore *store.SongStore) *WebhookHandler {
	return &WebhookHandler{store: songStore}
}

// Handle handles every method on /webhooks/suno. The endpoint is called by
// the provider directly, so it answers CORS preflights itself and uses the
// provider's expected plain error shapes instead of the API envelope.
func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	c.Set("Access-Control-Allow-Origin", "*")
	c.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Set("Access-Control-Allow-Headers", "Content-Type")

	switch c.Method() {
	case fiber.MethodOptions:
		return c.SendStatus(fiber.StatusOK)
	case fiber.MethodPost:
	default:
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"error": "Only POST allowed",
		})
	}

	if !strings.Contains(c.Get(fiber.HeaderContentType), "application/json") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Content-Type must be application/json",
		})
	}

	body := c.Body()

	var shape struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &shape); err != nil {
		log.Printf("Webhook: malformed body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid JSON body",
		})
	}

	if len(shape.Data) > 0 && string(shape.Data) != "null" {
		return h.handleBatch(c, body)
	}
	return h.handleDualTrack(c, body)
}

// handleBatch reconciles the array-shaped payload. Each entry is keyed by
// its provider id; only entries with status "complete" transition job
// records. The task id, absent from this shape, is recovered from the title
// marker when present.
func (h *WebhookHandler) handleBatch(c *fiber.Ctx, body []byte) error {
	var payload model.BatchWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid JSON body",
		})
	}

	processed := 0
	songs := make([]fiber.Map, 0, len(payload.Data))
	for _, entry := range payload.Data {
		if entry.ID == "" {
			// Without a provider id there is no row to key the entry to.
			log.Printf("Webhook: skipping batch entry without id (title=%q)", entry.Title)
			continue
		}
		taskID := taskIDFromTitle(entry.Title)
		if err := h.store.UpsertProviderSong(c.Context(), entry, taskID); err != nil {
			log.Printf("Webhook: failed to upsert song %s: %v", entry.ID, err)
			continue
		}
		processed++
		songs = append(songs, fiber.Map{
			"id":     entry.ID,
			"title":  entry.Title,
			"status": entry.Status,
		})
	}

	log.Printf("Webhook: batch payload processed (%d/%d songs)", processed, len(payload.Data))
	return c.JSON(fiber.Map{
		"success":   true,
		"processed": processed,
		"songs":     songs,
	})
}

// handleDualTrack reconciles the flat two-track payload. All required fields
// and both audio URLs are validated before anything is written, so a
// rejected payload never mutates the store.
func (h *WebhookHandler) handleDualTrack(c *fiber.Ctx, body []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid JSON body",
		})
	}

	for _, field := range dualTrackFields {
		value, ok := raw[field]
		if !ok || value == nil || value == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing required field: " + field,
			})
		}
	}

	var payload model.DualTrackWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid JSON body",
		})
	}

	sunoID1 := extractAudioID(payload.AudioURL1)
	if sunoID1 == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Invalid audio_url_1",
		})
	}
	sunoID2 := extractAudioID(payload.AudioURL2)
	if sunoID2 == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Invalid audio_url_2",
		})
	}

	tracks := []struct {
		sunoID   string
		audioURL string
		imageURL string
	}{
		{sunoID1, payload.AudioURL1, payload.ImageURL1},
		{sunoID2, payload.AudioURL2, payload.ImageURL2},
	}

	for _, track := range tracks {
		fields := store.CompletionFields{
			TaskID:    payload.TaskID,
			AudioURL:  track.audioURL,
			ImageURL:  track.imageURL,
			Title:     payload.Title,
			Tags:      payload.Tags,
			Lyric:     payload.Lyric,
			ModelName: payload.ModelName,
		}
		if err := h.store.CompleteBySunoID(c.Context(), track.sunoID, fields); err != nil {
			log.Printf("Webhook: failed to complete song %s (task=%s): %v",
				track.sunoID, payload.TaskID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to store song",
			})
		}
	}

	log.Printf("Webhook: dual-track payload processed (task=%s, songs=%s,%s)",
		payload.TaskID, sunoID1, sunoID2)
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

func extractAudioID(audioURL string) string {
	matches := audioIDPattern.FindStringSubmatch(audioURL)
	if len(matches) != 2 {
		return ""
	}
	return matches[1]
}

func taskIDFromTitle(title string) string {
	matches := taskMarkerPattern.FindStringSubmatch(title)
	if len(matches) != 2 {
		return ""
	}
	return matches[1]
}
