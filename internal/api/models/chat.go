package models

import (
	"github.com/manakavoo/manakavoo-backend/internal/models"
)

// VideoContext identifies the video a question is about
type VideoContext struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// VideoChatRequest is the body of POST /openai
type VideoChatRequest struct {
	Message        string           `json:"message"`
	History        []models.Message `json:"history"`
	VideoContext   *VideoContext    `json:"videoContext,omitempty"`
	VideoID        string           `json:"videoId,omitempty"`
	Timestamp      string           `json:"timestamp,omitempty"`
	ConversationID string           `json:"conversationId,omitempty"`
}

// ResolvedVideoID prefers the explicit videoId and falls back to the context id
func (r *VideoChatRequest) ResolvedVideoID() string {
	if r.VideoID != "" {
		return r.VideoID
	}
	if r.VideoContext != nil {
		return r.VideoContext.ID
	}
	return ""
}

// TutorChatRequest is the body of POST /tutor
type TutorChatRequest struct {
	Message        string           `json:"message"`
	History        []models.Message `json:"history"`
	ConversationID string           `json:"conversationId,omitempty"`
}

// ChatResponse is returned by both completion endpoints
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversationId"`
}

// ConversationListResponse is returned by GET /tutor/conversations
type ConversationListResponse struct {
	Conversations []models.ConversationInfo `json:"conversations"`
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
