package registrycatalog

import (
	"sort"
	"strings"
)

// ScoredEntry pairs a catalog entry with its relevance score for one query.
type ScoredEntry struct {
	Entry *Entry
	Score float64
}

// Search ranks every entry against query (and, if set, a hard category
// filter), returning matches in descending score order.
func (s *Store) Search(query, category string) []ScoredEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var scored []ScoredEntry
	for _, entry := range s.entries {
		score := scoreMatch(entry, query, category)
		if score > 0 {
			scored = append(scored, ScoredEntry{Entry: entry, Score: score})
		}
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

// Categories returns the distinct categories present in the catalog, sorted.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := make(map[string]struct{})
	for _, entry := range s.entries {
		cat := entry.Category
		if cat == "" {
			cat = "uncategorized"
		}
		set[cat] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for cat := range set {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of entries in the catalog.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func scoreMatch(entry *Entry, query, category string) float64 {
	var score float64
	q := strings.ToLower(strings.TrimSpace(query))
	words := make(map[string]struct{})
	for _, w := range strings.Fields(q) {
		words[w] = struct{}{}
	}

	name := strings.ToLower(entry.Name)
	desc := strings.ToLower(entry.Description)
	cat := strings.ToLower(entry.Category)

	if category != "" {
		if cat != strings.ToLower(category) {
			return 0
		}
		score += 30
	}

	switch {
	case q == name:
		score += 100
	case strings.Contains(name, q) || strings.Contains(q, name):
		score += 50
	}

	for _, tag := range entry.Tags {
		tag = strings.ToLower(tag)
		if _, exact := words[tag]; exact || tag == q {
			score += 40
			continue
		}
		for w := range words {
			if strings.Contains(tag, w) || strings.Contains(w, tag) {
				score += 20
				break
			}
		}
	}

	descWords := make(map[string]struct{})
	for _, w := range strings.Fields(desc) {
		descWords[w] = struct{}{}
	}
	for w := range words {
		if _, ok := descWords[w]; ok {
			score += 10
		}
	}
	if strings.Contains(desc, q) {
		score += 25
	}

	return score
}
