package outreach

import (
	"context"
	"time"
)

var (
	fixedPast   = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	fixedFuture = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
)

// stubSearcher is a Searcher double returning a fixed result, or an error
// when err is set.
type stubSearcher struct {
	result string
	err    error
}

func (s *stubSearcher) Search(_ context.Context, query string, maxResults int) (string, error) {
	return s.result, s.err
}

// stubSender is a Sender double recording every send and returning a fixed
// outcome.
type stubSender struct {
	ok      bool
	errText string
	sent    []sentEmail
}

type sentEmail struct {
	recipientID string
	text        string
	metadata    map[string]string
}

func (s *stubSender) Send(_ context.Context, recipientID, text string, metadata map[string]string) (bool, string) {
	s.sent = append(s.sent, sentEmail{recipientID, text, metadata})
	return s.ok, s.errText
}

// stubJobScheduler is a JobScheduler double tracking enrolled jobs.
type stubJobScheduler struct {
	nextID  int
	queries map[string]bool
	added   []string
	removed []string
}

func newStubJobScheduler() *stubJobScheduler {
	return &stubJobScheduler{queries: make(map[string]bool)}
}

func (s *stubJobScheduler) AddJob(schedule, query, channel, recipient string) (string, error) {
	s.nextID++
	id := "job-stub"
	s.queries[query] = true
	s.added = append(s.added, query)
	return id, nil
}

func (s *stubJobScheduler) RemoveJob(id string) bool {
	s.removed = append(s.removed, id)
	return true
}

func (s *stubJobScheduler) ExistingQueries() map[string]bool {
	return s.queries
}
