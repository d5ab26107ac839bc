package timer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists the job list as a single JSON array, rewritten atomically
// (write to a temp file, then rename over the target) after every mutation.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewStore opens a job store rooted at dataRoot/cron/jobs.json.
func NewStore(dataRoot string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:   filepath.Join(dataRoot, "cron", "jobs.json"),
		logger: logger.With("component", "timer.store"),
	}
}

// ResultsDir returns the fallback-delivery directory for this store.
func (s *Store) ResultsDir() string {
	return filepath.Join(filepath.Dir(s.path), "results")
}

// Load reads the job array, skipping and warning on malformed records rather
// than failing the whole load.
func (s *Store) Load() ([]*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read jobs file: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse jobs file: %w", err)
	}

	jobs := make([]*Job, 0, len(raw))
	for _, entry := range raw {
		var job Job
		if err := json.Unmarshal(entry, &job); err != nil {
			s.logger.Warn("skipping malformed job record", "error", err)
			continue
		}
		if job.ID == "" {
			s.logger.Warn("skipping job record with no id")
			continue
		}
		jobs = append(jobs, &job)
	}
	return jobs, nil
}

// Save atomically rewrites the jobs file.
func (s *Store) Save(jobs []*Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cron dir: %w", err)
	}

	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal jobs: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "jobs-*.json")
	if err != nil {
		return fmt.Errorf("create temp jobs file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp jobs file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp jobs file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename jobs file: %w", err)
	}
	return nil
}

// SaveResult writes a delivery-fallback result file for a job execution.
func (s *Store) SaveResult(job *Job, result string, at string) error {
	dir := s.ResultsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", job.ID, at))
	content := fmt.Sprintf("Job: %s\nQuery: %s\nSchedule: %s\nExecuted: %s\n%s\n\n%s",
		job.ID, job.Query, job.Schedule, at, strings.Repeat("=", 40), result)
	return os.WriteFile(path, []byte(content), 0o644)
}
