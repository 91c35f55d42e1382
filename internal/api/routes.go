package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/manakavoo/manakavoo-backend/internal/api/handlers"
	"github.com/manakavoo/manakavoo-backend/internal/api/middleware"
	"github.com/manakavoo/manakavoo-backend/internal/api/models"
	"github.com/manakavoo/manakavoo-backend/internal/config"
	"github.com/manakavoo/manakavoo-backend/internal/services"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, cfg config.ServerConfig, svc *services.Services, logger logrus.FieldLogger) {
	chatLimit := middleware.ChatRateLimit(cfg.RateLimit, cfg.RateLimitWindow)
	chatHandler := handlers.NewChatHandler(svc.Dialogue, logger)

	// Completion endpoints
	app.Post("/openai", chatLimit, chatHandler.VideoChat)
	app.Post("/tutor", chatLimit, chatHandler.TutorChat)

	// Conversation history
	app.Get("/tutor/conversations", handlers.ListConversations(svc))
	app.Get("/tutor/conversations/:id", handlers.GetConversation(svc))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
		})
	})
}

// ErrorHandler renders every error as {error, code}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(models.ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}
