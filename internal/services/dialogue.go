package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/manakavoo/manakavoo-backend/internal/models"
	"github.com/manakavoo/manakavoo-backend/internal/providers"
)

var (
	// ErrEmptyMessage is returned when a turn carries no user text
	ErrEmptyMessage = errors.New("message is required")
	// ErrUnknownPersona is returned for personas other than video-context and tutor
	ErrUnknownPersona = errors.New("unknown persona")
	// ErrCompletionFailed wraps any failure of the completion provider
	ErrCompletionFailed = errors.New("completion failed")
)

// Placeholders used in the video context message
const (
	noTitle      = "No title available"
	noTranscript = "No transcript available"
	noTimestamp  = "No specific timestamp"
)

var replySanitizer = strings.NewReplacer("*", "", "#", "")

// TranscriptSource is the slice of TranscriptCache the dialogue service uses
type TranscriptSource interface {
	GetTranscript(ctx context.Context, videoID string) (*models.TranscriptEntry, error)
}

// ConversationRepository is the slice of ConversationStore the dialogue service uses
type ConversationRepository interface {
	Save(ctx context.Context, id string, messages []models.Message, title string) (*models.Conversation, error)
	Load(ctx context.Context, id string) (*models.Conversation, bool, error)
}

// TurnRequest is one inbound user message
type TurnRequest struct {
	Persona Persona
	Message string
	History []models.Message

	// ConversationID continues a stored conversation when set; a fresh id is
	// minted otherwise.
	ConversationID string

	// Video persona only
	WithVideoContext bool
	VideoID          string
	Timestamp        string
}

// TurnResult is the outcome of a turn
type TurnResult struct {
	Reply          string
	ConversationID string
	Title          string
	Messages       []models.Message
}

// DialogueOptions configures the completion call
type DialogueOptions struct {
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// DialogueService runs a turn: prompt assembly, completion, sanitizing and
// persisting the extended history
type DialogueService struct {
	provider      providers.Provider
	transcripts   TranscriptSource
	conversations ConversationRepository
	opts          DialogueOptions
	newID         func() string
	logger        logrus.FieldLogger
}

// NewDialogueService creates a dialogue service
func NewDialogueService(provider providers.Provider, transcripts TranscriptSource, conversations ConversationRepository, opts DialogueOptions, logger logrus.FieldLogger) *DialogueService {
	return &DialogueService{
		provider:      provider,
		transcripts:   transcripts,
		conversations: conversations,
		opts:          opts,
		newID:         NewConversationID,
		logger:        logger.WithField("component", "dialogue"),
	}
}

// Respond runs one turn. Only validation and completion failures are
// returned; transcript and storage problems are logged and the turn goes on.
func (s *DialogueService) Respond(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	persona, err := lookupPersona(req.Persona)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	conversationID, history, err := s.resolveConversation(ctx, req)
	if err != nil {
		return nil, err
	}
	log := s.logger.WithFields(logrus.Fields{
		"persona":         req.Persona,
		"conversation_id": conversationID,
	})

	messages := make([]providers.Message, 0, len(history)+3)
	messages = append(messages, providers.Message{Role: providers.RoleSystem, Content: persona.prompt})
	for _, msg := range history {
		messages = append(messages, providers.Message{
			Role:    string(models.ParseRole(string(msg.Role))),
			Content: msg.Content,
		})
	}
	if req.Persona == PersonaVideoContext && req.WithVideoContext {
		messages = append(messages, providers.Message{
			Role:    providers.RoleSystem,
			Content: s.videoContext(ctx, req, log),
		})
	}
	messages = append(messages, providers.Message{Role: providers.RoleUser, Content: req.Message})

	reply, err := s.complete(ctx, messages, persona.maxTokens)
	if err != nil {
		log.WithError(err).Error("completion failed")
		return nil, err
	}
	reply = SanitizeReply(reply)

	extended := make([]models.Message, 0, len(history)+2)
	extended = append(extended, history...)
	extended = append(extended,
		models.Message{Role: models.RoleUser, Content: req.Message},
		models.Message{Role: models.RoleAssistant, Content: reply},
	)

	title := DeriveTitle(req.Message)
	if _, err := s.conversations.Save(ctx, conversationID, extended, title); err != nil {
		log.WithError(err).Error("failed to save conversation")
	}

	return &TurnResult{
		Reply:          reply,
		ConversationID: conversationID,
		Title:          title,
		Messages:       extended,
	}, nil
}

// resolveConversation picks the id and base history for a turn. A known
// supplied id continues from the stored messages; an unknown one keeps the
// id and the client history.
func (s *DialogueService) resolveConversation(ctx context.Context, req TurnRequest) (string, []models.Message, error) {
	history := normalizeHistory(req.History)
	if req.ConversationID == "" {
		return s.newID(), history, nil
	}
	if err := ValidateConversationID(req.ConversationID); err != nil {
		return "", nil, err
	}

	stored, found, err := s.conversations.Load(ctx, req.ConversationID)
	if err != nil {
		s.logger.WithError(err).WithField("conversation_id", req.ConversationID).
			Warn("could not load conversation, using client history")
		return req.ConversationID, history, nil
	}
	if !found {
		return req.ConversationID, history, nil
	}
	return req.ConversationID, normalizeHistory(stored.Messages), nil
}

func (s *DialogueService) videoContext(ctx context.Context, req TurnRequest, log logrus.FieldLogger) string {
	var title, transcript string
	if req.VideoID != "" {
		entry, err := s.transcripts.GetTranscript(ctx, req.VideoID)
		if err != nil {
			log.WithError(err).WithField("video_id", req.VideoID).Warn("transcript unavailable")
		} else {
			title, transcript = entry.Title, entry.Transcript
		}
	}

	return fmt.Sprintf("Video Details:\n- Title: %s\n- transcript: %s\n- Timestamp: %s",
		orDefault(title, noTitle),
		orDefault(transcript, noTranscript),
		orDefault(req.Timestamp, noTimestamp),
	)
}

func (s *DialogueService) complete(ctx context.Context, messages []providers.Message, maxTokens int) (string, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	temperature := s.opts.Temperature
	resp, err := s.provider.Complete(ctx, providers.CompletionRequest{
		Messages:    messages,
		Model:       s.opts.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCompletionFailed, err)
	}

	text, err := resp.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCompletionFailed, err)
	}
	return text, nil
}

// SanitizeReply strips the markdown markers the personas are asked to avoid
func SanitizeReply(reply string) string {
	return replySanitizer.Replace(reply)
}

func normalizeHistory(history []models.Message) []models.Message {
	out := make([]models.Message, len(history))
	for i, msg := range history {
		out[i] = models.Message{Role: models.ParseRole(string(msg.Role)), Content: msg.Content}
	}
	return out
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
