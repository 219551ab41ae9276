package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/musicmotivate/api/internal/middleware"
	"github.com/musicmotivate/api/internal/store"
	"github.com/musicmotivate/api/pkg/response"
)

// TasksHandler exposes the task-mapping correlation records for debugging
// which provider songs resolved which submissions.
type TasksHandler struct {
	store *store.SongStore
}

func NewTasksHandler(songStore *store.SongStore) *TasksHandler {
	return &TasksHandler{store: songStore}
}

// List handles GET /api/tasks
func (h *TasksHandler) List(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	mappings, err := h.store.ListTaskMappings(c.Context(), userID)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, fiber.Map{
		"tasks": mappings,
		"count": len(mappings),
	})
}

// Get handles GET /api/tasks/:taskId
func (h *TasksHandler) Get(c *fiber.Ctx) error {
	taskID := c.Params("taskId")
	if taskID == "" {
		return response.ValidationError(c, "Task ID is required", nil)
	}

	mapping, err := h.store.TaskMappingByID(c.Context(), taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Task not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, mapping)
}
