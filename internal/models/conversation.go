package models

import (
	"encoding/json"
	"time"
)

// Role identifies the author of a conversation message. Only two values are
// representable; anything else coerces to RoleAssistant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole maps a free-form role string onto Role.
func ParseRole(s string) Role {
	if s == string(RoleUser) {
		return RoleUser
	}
	return RoleAssistant
}

// UnmarshalJSON coerces unknown role strings to RoleAssistant.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseRole(s)
	return nil
}

// Message is one entry of a conversation history
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the persisted unit of a dialogue
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
	Messages  []Message `json:"messages"`
}

// ConversationInfo is the listing projection of a Conversation
type ConversationInfo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Info projects the conversation to its listing entry.
func (c *Conversation) Info() ConversationInfo {
	return ConversationInfo{
		ID:        c.ID,
		Title:     c.Title,
		UpdatedAt: c.UpdatedAt,
	}
}
