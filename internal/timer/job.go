package timer

import "time"

// Job is one persisted scheduled task.
type Job struct {
	ID          string    `json:"id"`
	Schedule    string    `json:"schedule"`
	Query       string    `json:"query"`
	Channel     string    `json:"channel,omitempty"`
	Recipient   string    `json:"recipient,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastRun     time.Time `json:"last_run,omitempty"`
	NextRun     time.Time `json:"next_run,omitempty"`
	Failures    int       `json:"failures"`
	MaxFailures int       `json:"max_failures"`
	Enabled     bool      `json:"enabled"`
}

// DefaultMaxFailures is applied to jobs created without an explicit override.
const DefaultMaxFailures = 3

// MaxJobs is the global ceiling on active scheduled jobs.
const MaxJobs = 20
