package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/manakavoo/manakavoo-backend/internal/models"
	"github.com/manakavoo/manakavoo-backend/internal/repository"
)

const (
	// MaxTranscriptChars caps the rendered transcript stored per video
	MaxTranscriptChars = 20000
	// TitleNotFound is the title stored when every lookup fails
	TitleNotFound = "Title Not Found"

	truncationMarker = "..."
)

// TranscriptFetcher retrieves the caption segments of a video
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, videoID string) ([]models.TranscriptSegment, error)
}

// TitleLookup resolves a video title; PageTitle is tried first and
// TranscriptTitle is the fallback.
type TitleLookup interface {
	PageTitle(ctx context.Context, videoID string) (string, error)
	TranscriptTitle(ctx context.Context, videoID string) (string, error)
}

// TranscriptCache serves transcripts from a KV store and fetches them from
// the video host on a miss. Entries are written once and never refreshed.
type TranscriptCache struct {
	store   repository.KVStore
	fetcher TranscriptFetcher
	titles  TitleLookup
	timeout time.Duration
	logger  logrus.FieldLogger
}

// NewTranscriptCache creates a transcript cache. timeout bounds each
// external call; zero disables the bound.
func NewTranscriptCache(store repository.KVStore, fetcher TranscriptFetcher, titles TitleLookup, timeout time.Duration, logger logrus.FieldLogger) *TranscriptCache {
	return &TranscriptCache{
		store:   store,
		fetcher: fetcher,
		titles:  titles,
		timeout: timeout,
		logger:  logger.WithField("component", "transcript_cache"),
	}
}

// GetTranscript returns the cached entry for videoID, fetching and storing
// it on a miss. Only a failed transcript fetch is returned as an error.
func (c *TranscriptCache) GetTranscript(ctx context.Context, videoID string) (*models.TranscriptEntry, error) {
	log := c.logger.WithField("video_id", videoID)

	if entry, ok := c.lookup(ctx, videoID, log); ok {
		log.Debug("transcript served from cache")
		return entry, nil
	}

	var segments []models.TranscriptSegment
	err := c.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		segments, err = c.fetcher.FetchTranscript(ctx, videoID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch transcript for %s: %w", videoID, err)
	}

	title := FirstOf(ctx, log, TitleNotFound,
		Attempt{Name: "page_title", Fn: c.bounded(func(ctx context.Context) (string, error) {
			return c.titles.PageTitle(ctx, videoID)
		})},
		Attempt{Name: "transcript_title", Fn: c.bounded(func(ctx context.Context) (string, error) {
			return c.titles.TranscriptTitle(ctx, videoID)
		})},
	)

	entry := &models.TranscriptEntry{
		Title:      title,
		Transcript: RenderTranscript(segments),
		Length:     len(segments),
	}

	if err := c.persist(ctx, videoID, entry); err != nil {
		log.WithError(err).Error("failed to save transcript to cache")
	} else {
		log.WithField("segments", entry.Length).Info("transcript cached")
	}

	return entry, nil
}

// lookup treats unreadable or undecodable cache contents as a miss
func (c *TranscriptCache) lookup(ctx context.Context, videoID string, log logrus.FieldLogger) (*models.TranscriptEntry, bool) {
	data, err := c.store.Get(ctx, videoID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.WithError(err).Warn("transcript cache unreadable, treating as empty")
		}
		return nil, false
	}

	var entry models.TranscriptEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.WithError(err).Warn("corrupt transcript cache entry, refetching")
		return nil, false
	}
	return &entry, true
}

func (c *TranscriptCache) persist(ctx context.Context, videoID string, entry *models.TranscriptEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.store.Put(ctx, videoID, data)
}

func (c *TranscriptCache) withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return fn(ctx)
}

func (c *TranscriptCache) bounded(fn func(ctx context.Context) (string, error)) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		var out string
		err := c.withTimeout(ctx, func(ctx context.Context) error {
			var err error
			out, err = fn(ctx)
			return err
		})
		return out, err
	}
}

// RenderTranscript joins segments as "{start}s: {text}" lines and truncates
// the result to MaxTranscriptChars characters plus "..." when it is longer.
func RenderTranscript(segments []models.TranscriptSegment) string {
	lines := make([]string, len(segments))
	for i, s := range segments {
		lines[i] = formatStart(s.Start) + "s: " + s.Text
	}
	return truncateChars(strings.Join(lines, "\n"), MaxTranscriptChars)
}

func truncateChars(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + truncationMarker
}

// formatStart renders seconds the way caption offsets are conventionally
// printed: shortest form, always with a fractional part ("0.0", "1.5").
func formatStart(start float64) string {
	s := strconv.FormatFloat(start, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
