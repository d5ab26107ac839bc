package timer

import (
	"encoding/json"
	"fmt"

	"github.com/conduitrun/conduit/internal/convo"
	"github.com/conduitrun/conduit/internal/toolreg"
)

// RegisterTools installs cron_add/cron_list/cron_remove against registry,
// dispatching to scheduler.
func RegisterTools(registry *toolreg.Registry, scheduler *Scheduler) {
	registry.Register("cron_add", addHandler(scheduler), addSchema)
	registry.Register("cron_list", listHandler(scheduler), listSchema)
	registry.Register("cron_remove", removeHandler(scheduler), removeSchema)
}

func addHandler(scheduler *Scheduler) toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		var input struct {
			Schedule  string `json:"schedule"`
			Query     string `json:"query"`
			Channel   string `json:"channel"`
			Recipient string `json:"recipient"`
		}
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		job, err := scheduler.AddJob(input.Schedule, input.Query, input.Channel, input.Recipient)
		if err != nil {
			return fmt.Sprintf("Error: %v", err), nil
		}
		delivery := "saved to file"
		if input.Channel != "" {
			delivery = input.Channel + ":" + input.Recipient
		}
		return fmt.Sprintf("Scheduled job %s:\n  Query: %s\n  Schedule: %s\n  Next run: %s\n  Delivery: %s",
			job.ID, job.Query, job.Schedule, job.NextRun.Format("2006-01-02T15:04:05"), delivery), nil
	}
}

func listHandler(scheduler *Scheduler) toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		jobs := scheduler.ListJobs()
		if len(jobs) == 0 {
			return "No scheduled jobs.", nil
		}
		out := fmt.Sprintf("Scheduled jobs (%d):", len(jobs))
		for _, job := range jobs {
			out += "\n  " + FormatSummary(job)
		}
		return out, nil
	}
}

func removeHandler(scheduler *Scheduler) toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		var input struct {
			JobID string `json:"job_id"`
		}
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		if scheduler.RemoveJob(input.JobID) {
			return fmt.Sprintf("Removed job %s.", input.JobID), nil
		}
		return fmt.Sprintf("Job '%s' not found.", input.JobID), nil
	}
}

var addSchema = convo.ToolSchema{
	Name: "cron_add",
	Description: "Schedule a recurring task. The agent will run the query on the given schedule " +
		"and deliver results to a channel or save them. " +
		"Formats: 'every 6h', 'every day at 9am', 'every monday', 'cron 0 */6 * * *'.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"schedule": {"type": "string", "description": "Schedule expression (e.g. 'every 6h', 'every day at 9am', 'cron 0 */6 * * *')"},
			"query": {"type": "string", "description": "The question/task to run on each execution"},
			"channel": {"type": "string", "description": "Optional delivery channel"},
			"recipient": {"type": "string", "description": "Optional recipient ID on the channel"}
		},
		"required": ["schedule", "query"]
	}`),
}

var listSchema = convo.ToolSchema{
	Name:        "cron_list",
	Description: "List all scheduled jobs with their status, next run time, and failure count.",
	Parameters:  json.RawMessage(`{"type": "object", "properties": {}, "required": []}`),
}

var removeSchema = convo.ToolSchema{
	Name:        "cron_remove",
	Description: "Remove a scheduled job by its ID (e.g. 'j-abc123').",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {"job_id": {"type": "string", "description": "The job ID to remove"}},
		"required": ["job_id"]
	}`),
}
