package registrycatalog

import (
	"fmt"
	"strings"
	"time"
)

// AddInput describes a new catalog entry.
type AddInput struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Tags        string `json:"tags"` // comma-separated
	AuthType    string `json:"auth_type"`
	AuthToken   string `json:"auth_token"`
	Pricing     string `json:"pricing"`
}

// Add registers a new API under input.Name, failing if the key already
// exists.
func (s *Store) Add(input AddInput) (*Entry, error) {
	k := key(input.Name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[k]; exists {
		return nil, fmt.Errorf("API '%s' already exists", k)
	}

	authType := strings.ToLower(strings.TrimSpace(input.AuthType))
	if authType == "" {
		authType = "none"
	}
	if !validAuthTypes[authType] {
		return nil, fmt.Errorf("invalid auth_type '%s'. Use: bearer, basic, api_key, or none", input.AuthType)
	}

	var tags []string
	for _, t := range strings.Split(input.Tags, ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tags = append(tags, t)
		}
	}

	pricing := strings.ToLower(strings.TrimSpace(input.Pricing))
	if pricing == "" {
		pricing = "unknown"
	}

	entry := &Entry{
		Name:        k,
		URL:         strings.TrimSuffix(input.URL, "/"),
		Description: input.Description,
		Category:    strings.ToLower(strings.TrimSpace(input.Category)),
		Tags:        tags,
		AuthType:    authType,
		AuthToken:   input.AuthToken,
		Pricing:     pricing,
		AddedAt:     time.Now().UTC(),
	}
	s.entries[k] = entry

	if err := s.save(); err != nil {
		delete(s.entries, k)
		return nil, err
	}
	return entry, nil
}

// Get returns the entry for name, or the nearest substring matches if an
// exact lookup misses.
func (s *Store) Get(name string) (entry *Entry, suggestions []string, ok bool) {
	k := key(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, found := s.entries[k]; found {
		return e, nil, true
	}

	for candidate := range s.entries {
		if strings.Contains(candidate, k) || strings.Contains(k, candidate) {
			suggestions = append(suggestions, candidate)
		}
	}
	return nil, suggestions, false
}

// Remove deletes an entry by name, returning the removed entry if present.
func (s *Store) Remove(name string) (*Entry, error) {
	k := key(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[k]
	if !ok {
		return nil, fmt.Errorf("API '%s' not found in registry", k)
	}
	delete(s.entries, k)
	if err := s.save(); err != nil {
		s.entries[k] = entry
		return nil, err
	}
	return entry, nil
}

// RecordUsage updates call statistics for name after a connection attempt
// that took latencyMs and either succeeded or failed.
func (s *Store) RecordUsage(name string, success bool, latencyMs float64) error {
	k := key(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[k]
	if !ok {
		return fmt.Errorf("API '%s' not found in registry", k)
	}

	now := time.Now().UTC()
	entry.LastUsedAt = &now
	entry.Stats.LastCheckedAt = &now

	total := entry.Stats.TotalCalls + 1
	oldCount := entry.Stats.TotalCalls
	entry.Stats.TotalCalls = total

	successValue := 0.0
	if success {
		successValue = 1.0
	}
	oldRate := 0.0
	if entry.Stats.SuccessRate != nil {
		oldRate = *entry.Stats.SuccessRate
	} else if success {
		oldRate = 1.0
	}
	newRate := (oldRate*float64(oldCount) + successValue) / float64(total)
	entry.Stats.SuccessRate = &newRate

	if success {
		oldAvg := latencyMs
		if entry.Stats.AvgLatencyMs != nil {
			oldAvg = *entry.Stats.AvgLatencyMs
		}
		newAvg := (oldAvg*float64(oldCount) + latencyMs) / float64(total)
		entry.Stats.AvgLatencyMs = &newAvg
	}

	return s.save()
}
