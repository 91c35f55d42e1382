package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/manakavoo/manakavoo-backend/internal/models"
	"github.com/manakavoo/manakavoo-backend/internal/repository"
)

// ErrInvalidConversationID is returned for ids that could not have been minted
// by NewConversationID or a compatible client
var ErrInvalidConversationID = errors.New("invalid conversation id")

var conversationIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// updatedAt layouts accepted when reading records; the second covers
// timestamps written without a zone, which are taken as UTC
var updatedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// NewConversationID mints an opaque conversation identifier
func NewConversationID() string {
	return "conv_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:10]
}

// ValidateConversationID checks that id is safe to use as a storage key
func ValidateConversationID(id string) error {
	if !conversationIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidConversationID, id)
	}
	return nil
}

// conversationDocument is the persisted form of a conversation
type conversationDocument struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	UpdatedAt string           `json:"updatedAt"`
	Messages  []models.Message `json:"messages"`
}

func (d *conversationDocument) toModel() (*models.Conversation, error) {
	updatedAt, err := parseUpdatedAt(d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	messages := d.Messages
	if messages == nil {
		messages = []models.Message{}
	}
	return &models.Conversation{
		ID:        d.ID,
		Title:     d.Title,
		UpdatedAt: updatedAt,
		Messages:  messages,
	}, nil
}

func parseUpdatedAt(s string) (time.Time, error) {
	for _, layout := range updatedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable updatedAt %q", s)
}

// ConversationStore persists whole conversation records keyed by id. Saves
// overwrite; there is no merge and no locking between writers.
type ConversationStore struct {
	store  repository.KVStore
	now    func() time.Time
	logger logrus.FieldLogger
}

// NewConversationStore creates a conversation store over a KV backend
func NewConversationStore(store repository.KVStore, logger logrus.FieldLogger) *ConversationStore {
	return &ConversationStore{
		store:  store,
		now:    time.Now,
		logger: logger.WithField("component", "conversation_store"),
	}
}

// Save overwrites the record for id, stamping updatedAt with the current UTC time
func (s *ConversationStore) Save(ctx context.Context, id string, messages []models.Message, title string) (*models.Conversation, error) {
	if err := ValidateConversationID(id); err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.Message{}
	}

	updatedAt := s.now().UTC()
	doc := conversationDocument{
		ID:        id,
		Title:     title,
		UpdatedAt: updatedAt.Format(time.RFC3339Nano),
		Messages:  messages,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode conversation %s: %w", id, err)
	}
	if err := s.store.Put(ctx, id, data); err != nil {
		return nil, fmt.Errorf("failed to save conversation %s: %w", id, err)
	}

	return &models.Conversation{
		ID:        id,
		Title:     title,
		UpdatedAt: updatedAt,
		Messages:  messages,
	}, nil
}

// Load returns the record for id. A missing record yields found == false
// with a nil error.
func (s *ConversationStore) Load(ctx context.Context, id string) (*models.Conversation, bool, error) {
	if err := ValidateConversationID(id); err != nil {
		return nil, false, nil
	}

	data, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load conversation %s: %w", id, err)
	}

	var doc conversationDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("failed to decode conversation %s: %w", id, err)
	}
	conv, err := doc.toModel()
	if err != nil {
		return nil, false, fmt.Errorf("conversation %s: %w", id, err)
	}
	return conv, true, nil
}

// List returns listing entries for every stored conversation, most recently
// updated first. Records that fail to decode are logged and skipped.
func (s *ConversationStore) List(ctx context.Context) ([]models.ConversationInfo, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	infos := make([]models.ConversationInfo, 0, len(entries))
	for _, entry := range entries {
		var doc conversationDocument
		if err := json.Unmarshal(entry.Value, &doc); err != nil {
			s.logger.WithError(err).WithField("key", entry.Key).Warn("skipping undecodable conversation")
			continue
		}
		conv, err := doc.toModel()
		if err != nil {
			s.logger.WithError(err).WithField("key", entry.Key).Warn("skipping conversation")
			continue
		}
		infos = append(infos, conv.Info())
	}

	sort.SliceStable(infos, func(i, j int) bool {
		if infos[i].UpdatedAt.Equal(infos[j].UpdatedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
	})

	return infos, nil
}
