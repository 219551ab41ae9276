package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/musicmotivate/api/internal/middleware"
	"github.com/musicmotivate/api/internal/model"
	"github.com/musicmotivate/api/internal/registry"
	"github.com/musicmotivate/api/internal/service"
	"github.com/musicmotivate/api/internal/store"
	"github.com/musicmotivate/api/pkg/response"
)

type SongsHandler struct {
	generation *service.GenerationService
	registry   *registry.TaskRegistry
	store      *store.SongStore
	validator  *validator.Validate
}

func NewSongsHandler(
	generation *service.GenerationService,
	taskRegistry *registry.TaskRegistry,
	songStore *store.SongStore,
	v *validator.Validate,
) *SongsHandler {
	return &SongsHandler{
		generation: generation,
		registry:   taskRegistry,
		store:      songStore,
		validator:  v,
	}
}

// Generate handles POST /api/songs/generate
func (h *SongsHandler) Generate(c *fiber.Ctx) error {
	var req model.GenerateSongRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	userID := middleware.GetUserID(c)
	taskID, err := h.generation.Submit(c.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrProviderRejected) {
			return response.ProviderError(c, err.Error())
		}
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, model.GenerateSongResponse{
		TaskID: taskID,
		Status: model.TaskStatusWaiting,
	})
}

// Status handles GET /api/songs/status/:taskId
func (h *SongsHandler) Status(c *fiber.Ctx) error {
	taskID := c.Params("taskId")
	if taskID == "" {
		return response.ValidationError(c, "Task ID is required", nil)
	}

	state := h.registry.Get(taskID)
	if state == nil {
		return response.NotFound(c, "Task not found")
	}

	return response.OK(c, state)
}

// History handles GET /api/songs
func (h *SongsHandler) History(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	songs, err := h.store.ListByUser(c.Context(), userID)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, fiber.Map{
		"songs": songs,
		"count": len(songs),
	})
}
