package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/musicmotivate/api/internal/service"
	"github.com/musicmotivate/api/internal/store"
	"github.com/musicmotivate/api/pkg/response"
)

// LibraryHandler serves the locally cached audio library.
type LibraryHandler struct {
	cache *service.AudioCacheService
}

func NewLibraryHandler(cache *service.AudioCacheService) *LibraryHandler {
	return &LibraryHandler{cache: cache}
}

// List handles GET /api/library
func (h *LibraryHandler) List(c *fiber.Ctx) error {
	entries, err := h.cache.GetAll(c.Context())
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, fiber.Map{
		"songs": entries,
		"count": len(entries),
	})
}

// Audio handles GET /api/library/:id/audio, streaming the cached blob.
func (h *LibraryHandler) Audio(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.ValidationError(c, "Audio ID is required", nil)
	}

	audio, err := h.cache.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Audio not found")
		}
		return response.ServiceError(c, err.Error())
	}

	contentType := audio.ContentType
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(audio.AudioBlob)
}

// Delete handles DELETE /api/library/:id
func (h *LibraryHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.ValidationError(c, "Audio ID is required", nil)
	}

	if err := h.cache.DeleteByID(c.Context(), id); err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.NoContent(c)
}

// Clear handles DELETE /api/library
func (h *LibraryHandler) Clear(c *fiber.Ctx) error {
	if err := h.cache.Clear(c.Context()); err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.NoContent(c)
}
