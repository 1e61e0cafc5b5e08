package diagnosis

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// MaxSuggestions caps the number of ranked candidates returned.
	MaxSuggestions = 5
	// MinSymptomLength is the shortest trimmed description worth matching.
	MinSymptomLength = 3
)

// Matcher ranks candidate conditions for a symptom description. It is
// immutable after construction and safe for concurrent use.
type Matcher struct {
	entries Table
}

// NewMatcher builds a matcher over a copy of table. Keywords are lowercased
// and entries with blank keywords are dropped.
func NewMatcher(table Table) *Matcher {
	entries := make(Table, 0, len(table))
	for _, entry := range table.Clone() {
		entry.Keyword = strings.ToLower(strings.TrimSpace(entry.Keyword))
		if entry.Keyword == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return &Matcher{entries: entries}
}

// NewDefaultMatcher builds a matcher over DefaultTable.
func NewDefaultMatcher() *Matcher {
	return NewMatcher(DefaultTable())
}

// ValidSymptoms reports whether text is long enough to be matched.
func ValidSymptoms(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= MinSymptomLength
}

// Analyze returns up to MaxSuggestions candidates ranked by confidence.
func (m *Matcher) Analyze(symptoms string) []Candidate {
	return m.Match(symptoms).Candidates
}

// Match is Analyze plus the keywords that fired.
//
// Keywords match by substring containment, so "feverish" matches "fever".
// Candidates are collected in table order and a condition seen earlier wins
// over later duplicates regardless of their confidence.
func (m *Matcher) Match(symptoms string) Result {
	result := Result{MatchedKeywords: []string{}, Candidates: []Candidate{}}
	if !ValidSymptoms(symptoms) {
		return result
	}

	text := strings.ToLower(symptoms)
	seen := make(map[string]struct{})
	for _, entry := range m.entries {
		if !strings.Contains(text, entry.Keyword) {
			continue
		}
		result.MatchedKeywords = append(result.MatchedKeywords, entry.Keyword)
		for _, c := range entry.Candidates {
			if _, dup := seen[c.Condition]; dup {
				continue
			}
			seen[c.Condition] = struct{}{}
			result.Candidates = append(result.Candidates, c.clone())
		}
	}

	sort.SliceStable(result.Candidates, func(i, j int) bool {
		return result.Candidates[i].Confidence > result.Candidates[j].Confidence
	})
	if len(result.Candidates) > MaxSuggestions {
		result.Candidates = result.Candidates[:MaxSuggestions]
	}
	return result
}

// Keywords lists the keywords the matcher checks, in table order.
func (m *Matcher) Keywords() []string {
	return m.entries.Keywords()
}

// Table returns a copy of the table backing the matcher.
func (m *Matcher) Table() Table {
	return m.entries.Clone()
}
