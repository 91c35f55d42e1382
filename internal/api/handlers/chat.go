package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/manakavoo/manakavoo-backend/internal/api/models"
	"github.com/manakavoo/manakavoo-backend/internal/services"
)

// ChatHandler serves the two completion endpoints
type ChatHandler struct {
	dialogue *services.DialogueService
	logger   logrus.FieldLogger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(dialogue *services.DialogueService, logger logrus.FieldLogger) *ChatHandler {
	return &ChatHandler{
		dialogue: dialogue,
		logger:   logger.WithField("handler", "chat"),
	}
}

// VideoChat handles POST /openai
func (h *ChatHandler) VideoChat(c *fiber.Ctx) error {
	var req models.VideoChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Message is required")
	}

	return h.respond(c, services.TurnRequest{
		Persona:          services.PersonaVideoContext,
		Message:          req.Message,
		History:          req.History,
		ConversationID:   req.ConversationID,
		WithVideoContext: req.VideoContext != nil,
		VideoID:          req.ResolvedVideoID(),
		Timestamp:        req.Timestamp,
	})
}

// TutorChat handles POST /tutor
func (h *ChatHandler) TutorChat(c *fiber.Ctx) error {
	var req models.TutorChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Message is required")
	}

	return h.respond(c, services.TurnRequest{
		Persona:        services.PersonaTutor,
		Message:        req.Message,
		History:        req.History,
		ConversationID: req.ConversationID,
	})
}

func (h *ChatHandler) respond(c *fiber.Ctx, turn services.TurnRequest) error {
	result, err := h.dialogue.Respond(c.UserContext(), turn)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage),
			errors.Is(err, services.ErrInvalidConversationID),
			errors.Is(err, services.ErrUnknownPersona):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		default:
			h.logger.WithError(err).WithField("persona", turn.Persona).Error("turn failed")
			return fiber.NewError(fiber.StatusInternalServerError, "Error generating response: "+err.Error())
		}
	}

	return c.JSON(models.ChatResponse{
		Response:       result.Reply,
		ConversationID: result.ConversationID,
	})
}
