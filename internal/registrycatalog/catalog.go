// Package registrycatalog implements the supplemented API registry: a JSON
// catalog of known external APIs, searchable by capability, with per-API
// call statistics. Gated behind the enable_registry flag.
package registrycatalog

import "time"

// Stats tracks call-quality metrics for one catalog entry.
type Stats struct {
	TotalCalls    int        `json:"total_calls"`
	SuccessRate   *float64   `json:"success_rate,omitempty"`
	AvgLatencyMs  *float64   `json:"avg_latency_ms,omitempty"`
	LastCheckedAt *time.Time `json:"last_checked,omitempty"`
}

// Entry is one registered API.
type Entry struct {
	Name                string     `json:"name"`
	URL                 string     `json:"url"`
	Description         string     `json:"description"`
	Category            string     `json:"category"`
	Tags                []string   `json:"tags"`
	AuthType            string     `json:"auth_type"`
	AuthToken           string     `json:"auth_token,omitempty"`
	Pricing             string     `json:"pricing"`
	EndpointsDiscovered int        `json:"endpoints_discovered"`
	AddedAt             time.Time  `json:"added_at"`
	LastUsedAt          *time.Time `json:"last_used,omitempty"`
	Stats               Stats      `json:"stats"`
}

var validAuthTypes = map[string]bool{"bearer": true, "basic": true, "api_key": true, "none": true}
