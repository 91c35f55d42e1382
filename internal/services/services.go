package services

import (
	"github.com/sirupsen/logrus"

	"github.com/manakavoo/manakavoo-backend/internal/config"
	"github.com/manakavoo/manakavoo-backend/internal/providers"
	"github.com/manakavoo/manakavoo-backend/internal/repository"
)

// VideoSource is the external video host: transcript fetch plus title lookups
type VideoSource interface {
	TranscriptFetcher
	TitleLookup
}

// Services holds all service instances
type Services struct {
	Dialogue      *DialogueService
	Conversations *ConversationStore
	Transcripts   *TranscriptCache
}

// NewServices wires the services over their stores and external capabilities
func NewServices(
	cfg *config.Config,
	provider providers.Provider,
	conversationKV repository.KVStore,
	transcriptKV repository.KVStore,
	video VideoSource,
	logger logrus.FieldLogger,
) *Services {
	conversations := NewConversationStore(conversationKV, logger)
	transcripts := NewTranscriptCache(transcriptKV, video, video, cfg.YouTube.Timeout, logger)

	dialogue := NewDialogueService(provider, transcripts, conversations, DialogueOptions{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	return &Services{
		Dialogue:      dialogue,
		Conversations: conversations,
		Transcripts:   transcripts,
	}
}
