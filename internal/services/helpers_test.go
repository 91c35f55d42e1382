package services

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/manakavoo/manakavoo-backend/internal/logging"
	"github.com/manakavoo/manakavoo-backend/internal/models"
	"github.com/manakavoo/manakavoo-backend/internal/providers"
	"github.com/manakavoo/manakavoo-backend/internal/repository"
)

func testLogger() logrus.FieldLogger {
	return logging.Discard()
}

// fakeVideo implements VideoSource with call counters
type fakeVideo struct {
	mu              sync.Mutex
	segments        []models.TranscriptSegment
	fetchErr        error
	pageTitle       string
	pageErr         error
	transcriptTitle string
	transcriptErr   error

	fetchCalls int
	pageCalls  int
	metaCalls  int
}

func (f *fakeVideo) FetchTranscript(ctx context.Context, videoID string) ([]models.TranscriptSegment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.segments, nil
}

func (f *fakeVideo) PageTitle(ctx context.Context, videoID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls++
	return f.pageTitle, f.pageErr
}

func (f *fakeVideo) TranscriptTitle(ctx context.Context, videoID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metaCalls++
	return f.transcriptTitle, f.transcriptErr
}

// fakeProvider records requests and returns a canned reply
type fakeProvider struct {
	reply    string
	err      error
	requests []providers.CompletionRequest
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResponse, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return &providers.CompletionResponse{
		Choices: []providers.Choice{{Message: providers.Message{Role: providers.RoleAssistant, Content: p.reply}}},
	}, nil
}

func (p *fakeProvider) lastRequest() providers.CompletionRequest {
	return p.requests[len(p.requests)-1]
}

// failingKV fails every operation
type failingKV struct{}

var errDiskFull = errors.New("disk full")

func (failingKV) Get(ctx context.Context, key string) ([]byte, error) { return nil, errDiskFull }
func (failingKV) Put(ctx context.Context, key string, value []byte) error { return errDiskFull }
func (failingKV) List(ctx context.Context) ([]repository.Entry, error) { return nil, errDiskFull }
