package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manakavoo/manakavoo-backend/internal/config"
)

const timedTextXML = `<?xml version="1.0" encoding="utf-8" ?><transcript>` +
	`<text start="0" dur="1.5">Welcome to the channel</text>` +
	`<text start="1.5" dur="2.25">today we &amp;#39;re learning Go</text>` +
	`<text start="12.34">bye</text>` +
	`</transcript>`

type fakeYouTube struct {
	server     *httptest.Server
	watchHits  atomic.Int32
	tracksJSON string
	title      string
}

func newFakeYouTube(t *testing.T) *fakeYouTube {
	f := &fakeYouTube{title: "Learning Go &amp; Friends - YouTube"}
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		f.watchHits.Add(1)
		if r.URL.Query().Get("v") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `<html><head><title>%s</title></head><body><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":%s,"audioTracks":[]}}};</script></body></html>`,
			f.title, f.tracksJSON)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("lang") {
		case "en":
			_, _ = w.Write([]byte(timedTextXML))
		case "de":
			_, _ = w.Write([]byte(`<transcript><text start="0.5" dur="1">Hallo</text></transcript>`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	f.tracksJSON = fmt.Sprintf(`[{"baseUrl":"%s/api/timedtext?v=abc&lang=en","languageCode":"en","kind":"asr"}]`, f.server.URL)
	return f
}

func (f *fakeYouTube) client() *Client {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewClient(config.YouTubeConfig{
		BaseURL:  f.server.URL,
		Language: "en",
		Timeout:  5 * time.Second,
	}, logger)
}

func TestClient_FetchTranscript(t *testing.T) {
	fake := newFakeYouTube(t)

	segments, err := fake.client().FetchTranscript(context.Background(), "abc")
	require.NoError(t, err)
	require.Len(t, segments, 3)

	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 1.5, segments[0].Duration)
	assert.Equal(t, "Welcome to the channel", segments[0].Text)
	assert.Equal(t, "today we 're learning Go", segments[1].Text)
	assert.Equal(t, 12.34, segments[2].Start)
	assert.Equal(t, 0.0, segments[2].Duration)
}

func TestClient_FetchTranscriptFallsBackToFirstTrack(t *testing.T) {
	fake := newFakeYouTube(t)
	fake.tracksJSON = fmt.Sprintf(`[{"baseUrl":"%s/api/timedtext?lang=de","languageCode":"de"}]`, fake.server.URL)

	segments, err := fake.client().FetchTranscript(context.Background(), "abc")
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "Hallo", segments[0].Text)
}

func TestClient_FetchTranscriptDisabled(t *testing.T) {
	fake := newFakeYouTube(t)
	fake.tracksJSON = `[]`

	_, err := fake.client().FetchTranscript(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrTranscriptsDisabled)

	_, err = fake.client().FetchTranscript(context.Background(), "missing")
	assert.Error(t, err)
}

func TestClient_PageTitle(t *testing.T) {
	fake := newFakeYouTube(t)

	title, err := fake.client().PageTitle(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Learning Go & Friends", title)

	fake.title = " - YouTube"
	_, err = fake.client().PageTitle(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrNoTitle)
}

func TestClient_TranscriptTitle(t *testing.T) {
	fake := newFakeYouTube(t)

	title, err := fake.client().TranscriptTitle(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Welcome to the channel", title)

	fake.tracksJSON = fmt.Sprintf(`[{"baseUrl":"%s/api/timedtext?lang=de","languageCode":"de"}]`, fake.server.URL)
	_, err = fake.client().TranscriptTitle(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrNoTranscriptFound)
}

func TestPickTrack_PrefersManual(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "asr-en", LanguageCode: "en", Kind: "asr"},
		{BaseURL: "manual-de", LanguageCode: "de"},
		{BaseURL: "manual-en", LanguageCode: "en"},
	}

	track, ok := pickTrack(tracks, "en")
	require.True(t, ok)
	assert.Equal(t, "manual-en", track.BaseURL)

	_, ok = pickTrack(tracks, "fr")
	assert.False(t, ok)
}

func TestExtractTitle(t *testing.T) {
	_, err := extractTitle("<html>no title here</html>")
	assert.ErrorIs(t, err, ErrNoTitle)

	_, err = extractTitle("<title>unterminated")
	assert.ErrorIs(t, err, ErrNoTitle)

	title, err := extractTitle("<title>  Rust in 100 Seconds - YouTube </title>")
	require.NoError(t, err)
	assert.Equal(t, "Rust in 100 Seconds", title)
}
