// Package youtube talks to the public YouTube watch page and caption
// endpoints to fetch transcripts and video titles.
package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/manakavoo/manakavoo-backend/internal/config"
	"github.com/manakavoo/manakavoo-backend/internal/models"
)

var (
	// ErrTranscriptsDisabled means the watch page exposes no caption tracks
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
	// ErrNoTranscriptFound means no caption track matches the requested language
	ErrNoTranscriptFound = errors.New("no transcript found for the requested language")
	// ErrNoTitle means the watch page carries no usable <title>
	ErrNoTitle = errors.New("no title in watch page")
)

const captionTracksMarker = `"captionTracks":`

// Client fetches watch pages and caption tracks
type Client struct {
	http     *resty.Client
	language string
	logger   logrus.FieldLogger
}

// NewClient creates a client from configuration
func NewClient(cfg config.YouTubeConfig, logger logrus.FieldLogger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://www.youtube.com"
	}
	language := cfg.Language
	if language == "" {
		language = "en"
	}

	c := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept-Language", language).
		SetTimeout(cfg.Timeout)
	if cfg.UserAgent != "" {
		c.SetHeader("User-Agent", cfg.UserAgent)
	}

	return &Client{
		http:     c,
		language: language,
		logger:   logger.WithField("component", "youtube"),
	}
}

// captionTrack is one entry of the player response's captionTracks array
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// timedText is the XML document served by a caption track's baseUrl
type timedText struct {
	Texts []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Text  string `xml:",chardata"`
	} `xml:"text"`
}

// FetchTranscript returns the caption segments for videoID, preferring the
// configured language and falling back to the first available track.
func (c *Client) FetchTranscript(ctx context.Context, videoID string) ([]models.TranscriptSegment, error) {
	tracks, err := c.captionTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	track, ok := pickTrack(tracks, c.language)
	if !ok {
		track = tracks[0]
	}
	return c.fetchTrack(ctx, track)
}

// PageTitle scrapes the <title> element of the watch page
func (c *Client) PageTitle(ctx context.Context, videoID string) (string, error) {
	body, err := c.watchPage(ctx, videoID)
	if err != nil {
		return "", err
	}
	return extractTitle(body)
}

// TranscriptTitle uses the first caption line of the configured language as
// a stand-in title.
func (c *Client) TranscriptTitle(ctx context.Context, videoID string) (string, error) {
	tracks, err := c.captionTracks(ctx, videoID)
	if err != nil {
		return "", err
	}

	track, ok := pickTrack(tracks, c.language)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoTranscriptFound, c.language)
	}

	segments, err := c.fetchTrack(ctx, track)
	if err != nil {
		return "", err
	}
	if len(segments) == 0 {
		return "Untitled", nil
	}
	return segments[0].Text, nil
}

func (c *Client) watchPage(ctx context.Context, videoID string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("v", videoID).
		Get("/watch")
	if err != nil {
		return "", fmt.Errorf("watch page request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("watch page status %d for video %s", resp.StatusCode(), videoID)
	}
	return resp.String(), nil
}

func (c *Client) captionTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	body, err := c.watchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}

	tracks, err := parseCaptionTracks(body)
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", videoID, err)
	}
	return tracks, nil
}

func (c *Client) fetchTrack(ctx context.Context, track captionTrack) ([]models.TranscriptSegment, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("caption track request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("caption track status %d", resp.StatusCode())
	}

	return parseTimedText(resp.Body())
}

// parseCaptionTracks decodes the captionTracks JSON array embedded in a
// watch page.
func parseCaptionTracks(body string) ([]captionTrack, error) {
	idx := strings.Index(body, captionTracksMarker)
	if idx < 0 {
		return nil, ErrTranscriptsDisabled
	}

	var tracks []captionTrack
	dec := json.NewDecoder(strings.NewReader(body[idx+len(captionTracksMarker):]))
	if err := dec.Decode(&tracks); err != nil {
		return nil, fmt.Errorf("decode caption tracks: %w", err)
	}
	if len(tracks) == 0 {
		return nil, ErrTranscriptsDisabled
	}
	return tracks, nil
}

// pickTrack prefers a manually created track over an auto-generated one
func pickTrack(tracks []captionTrack, language string) (captionTrack, bool) {
	var generated *captionTrack
	for i := range tracks {
		if tracks[i].LanguageCode != language {
			continue
		}
		if tracks[i].Kind != "asr" {
			return tracks[i], true
		}
		if generated == nil {
			generated = &tracks[i]
		}
	}
	if generated != nil {
		return *generated, true
	}
	return captionTrack{}, false
}

func parseTimedText(data []byte) ([]models.TranscriptSegment, error) {
	var doc timedText
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode timed text: %w", err)
	}

	segments := make([]models.TranscriptSegment, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		start, err := strconv.ParseFloat(t.Start, 64)
		if err != nil {
			return nil, fmt.Errorf("bad start %q: %w", t.Start, err)
		}
		// dur is absent on some trailing segments
		dur, _ := strconv.ParseFloat(t.Dur, 64)

		segments = append(segments, models.TranscriptSegment{
			Start:    start,
			Duration: dur,
			Text:     html.UnescapeString(t.Text),
		})
	}
	return segments, nil
}

func extractTitle(body string) (string, error) {
	_, rest, ok := strings.Cut(body, "<title>")
	if !ok {
		return "", ErrNoTitle
	}
	title, _, ok := strings.Cut(rest, "</title>")
	if !ok {
		return "", ErrNoTitle
	}

	title = strings.TrimSpace(strings.ReplaceAll(html.UnescapeString(title), " - YouTube", ""))
	if title == "" {
		return "", ErrNoTitle
	}
	return title, nil
}
