package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/musicmotivate/api/internal/client"
)

// ProxyHandler streams provider-hosted audio through the backend so browser
// clients can play tracks whose CDN blocks cross-origin media requests.
type ProxyHandler struct {
	fetcher *client.AudioFetcher
}

func NewProxyHandler(fetcher *client.AudioFetcher) *ProxyHandler {
	return &ProxyHandler{fetcher: fetcher}
}

// Handle handles every method on /api/proxy-audio. Like the webhook endpoint
// this one is consumed directly by browsers, so it carries its own CORS
// headers and plain error shapes.
func (h *ProxyHandler) Handle(c *fiber.Ctx) error {
	c.Set("Access-Control-Allow-Origin", "*")
	c.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	c.Set("Access-Control-Allow-Headers", "Content-Type")

	switch c.Method() {
	case fiber.MethodOptions:
		return c.SendStatus(fiber.StatusOK)
	case fiber.MethodGet:
	default:
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"error": "Only GET allowed",
		})
	}

	rawURL := c.Query("url")
	if rawURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing url parameter",
		})
	}

	if !h.fetcher.IsAllowed(rawURL) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "URL not allowed",
		})
	}

	data, contentType, err := h.fetcher.Fetch(c.Context(), rawURL)
	if err != nil {
		log.Printf("Proxy: failed to fetch %s: %v", rawURL, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to fetch audio",
		})
	}

	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}
