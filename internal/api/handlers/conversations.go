package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/manakavoo/manakavoo-backend/internal/api/models"
	"github.com/manakavoo/manakavoo-backend/internal/services"
)

// ListConversations handles GET /tutor/conversations
func ListConversations(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		infos, err := svc.Conversations.List(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to list conversations")
		}
		return c.JSON(models.ConversationListResponse{Conversations: infos})
	}
}

// GetConversation handles GET /tutor/conversations/:id
func GetConversation(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		conv, found, err := svc.Conversations.Load(c.UserContext(), id)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load conversation")
		}
		if !found {
			return fiber.NewError(fiber.StatusNotFound, "Conversation not found")
		}
		return c.JSON(conv)
	}
}
