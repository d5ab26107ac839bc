// Package timer implements the persistent scheduler: a natural-language and
// cron schedule grammar, a JSON-backed job store, and a ticking loop that
// runs due jobs against freshly-minted agents.
package timer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Agent is the minimal surface the scheduler needs from an agent instance.
type Agent interface {
	Chat(ctx context.Context, query string) (string, error)
}

// AgentFactory mints a fresh, history-less agent for a single job run.
type AgentFactory func() (Agent, error)

// Deliverer sends a job result to a channel/recipient pair. Returning an
// error causes the scheduler to fall back to file delivery.
type Deliverer interface {
	SendProactive(ctx context.Context, channel, recipient, result string) error
}

// Scheduler runs persisted jobs on a one-minute tick.
type Scheduler struct {
	factory   AgentFactory
	deliverer Deliverer
	store     *Store
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	jobs    map[string]*Job
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger overrides the scheduler's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDeliverer configures the proactive delivery target.
func WithDeliverer(d Deliverer) Option {
	return func(s *Scheduler) {
		if d != nil {
			s.deliverer = d
		}
	}
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// tickInterval is how often the scheduler checks for due jobs.
const tickInterval = time.Minute

// New builds a Scheduler, loading any previously persisted jobs from store.
func New(factory AgentFactory, store *Store, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		factory: factory,
		store:   store,
		logger:  slog.Default().With("component", "timer"),
		now:     func() time.Time { return time.Now().UTC() },
		jobs:    make(map[string]*Job),
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}
	for _, job := range loaded {
		s.jobs[job.ID] = job
	}
	return s, nil
}

// Start begins the background tick loop. It returns immediately; call Stop
// to end it.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("scheduler started", "jobs", len(s.jobs))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				func() {
					defer func() {
						if r := recover(); r != nil {
							s.logger.Error("scheduler loop panic", "recovered", r)
						}
					}()
					s.checkJobs(ctx)
				}()
			}
		}
	}()
}

// Stop ends the tick loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stop)
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// AddJob parses schedule, validates the job cap, and persists a new job.
func (s *Scheduler) AddJob(schedule, query, channel, recipient string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.jobs) >= MaxJobs {
		return nil, fmt.Errorf("timer: maximum of %d scheduled jobs reached", MaxJobs)
	}

	next, err := NextRun(schedule, s.now())
	if err != nil {
		return nil, err
	}

	job := &Job{
		ID:          "j-" + uuid.NewString()[:8],
		Schedule:    schedule,
		Query:       query,
		Channel:     channel,
		Recipient:   recipient,
		CreatedAt:   s.now(),
		NextRun:     next,
		MaxFailures: DefaultMaxFailures,
		Enabled:     true,
	}
	s.jobs[job.ID] = job
	if err := s.persistLocked(); err != nil {
		delete(s.jobs, job.ID)
		return nil, err
	}
	s.logger.Info("job added", "id", job.ID, "schedule", schedule, "next_run", next)
	return job, nil
}

// RemoveJob deletes a job by id.
func (s *Scheduler) RemoveJob(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return false
	}
	delete(s.jobs, id)
	_ = s.persistLocked()
	return true
}

// ListJobs returns a snapshot of all jobs.
func (s *Scheduler) ListJobs() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		copyJob := *job
		out = append(out, &copyJob)
	}
	return out
}

func (s *Scheduler) persistLocked() error {
	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	return s.store.Save(jobs)
}

func (s *Scheduler) checkJobs(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	due := make([]*Job, 0)
	for _, job := range s.jobs {
		if job.Enabled && !job.NextRun.IsZero() && !now.Before(job.NextRun) {
			due = append(due, job)
		}
	}
	s.mu.Unlock()

	for _, job := range due {
		s.executeJob(ctx, job)
	}
}

func (s *Scheduler) executeJob(ctx context.Context, job *Job) {
	s.logger.Info("executing job", "id", job.ID, "query", job.Query)

	agent, err := s.factory()
	if err == nil {
		var result string
		result, err = agent.Chat(ctx, job.Query)
		if err == nil {
			s.deliverResult(ctx, job, result)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	job.LastRun = now

	if err != nil {
		s.logger.Warn("job failed", "id", job.ID, "error", err)
		job.Failures++
		backoff := time.Duration(math.Min(math.Pow(2, float64(job.Failures)), 60)) * time.Minute
		job.NextRun = now.Add(backoff)
		if job.Failures >= job.MaxFailures {
			job.Enabled = false
			s.logger.Warn("job disabled after repeated failures", "id", job.ID, "failures", job.Failures)
		}
	} else {
		job.Failures = 0
		if IsOneShot(job.Schedule) {
			job.Enabled = false
		} else if next, nextErr := NextRun(job.Schedule, now); nextErr == nil {
			job.NextRun = next
		} else {
			job.Enabled = false
		}
	}

	if persistErr := s.persistLocked(); persistErr != nil {
		s.logger.Error("failed to persist jobs", "error", persistErr)
	}
}

func (s *Scheduler) deliverResult(ctx context.Context, job *Job, result string) {
	if job.Channel != "" && job.Recipient != "" && s.deliverer != nil {
		err := s.deliverer.SendProactive(ctx, job.Channel, job.Recipient, result)
		if err == nil {
			return
		}
		s.logger.Warn("proactive delivery failed, falling back to file", "id", job.ID, "error", err)
	}
	timestamp := s.now().Format("20060102_150405")
	if err := s.store.SaveResult(job, result, timestamp); err != nil {
		s.logger.Error("failed to save job result", "id", job.ID, "error", err)
	}
}

// FormatSummary renders a human-readable one-line status for a job, used by
// the cron_list tool.
func FormatSummary(job *Job) string {
	status := "DISABLED"
	if job.Enabled {
		status = "ENABLED"
	}
	query := job.Query
	if len(query) > 60 {
		query = query[:60]
	}
	return fmt.Sprintf("%s [%s] %s\n    Query: %s\n    Next: %s | Failures: %d",
		job.ID, status, job.Schedule, query, job.NextRun.Format("2006-01-02T15:04:05"), job.Failures)
}

// Kind reports whether schedule describes a recurring or one-shot job.
func Kind(schedule string) string {
	if IsOneShot(schedule) {
		return "one-shot"
	}
	return "recurring"
}
