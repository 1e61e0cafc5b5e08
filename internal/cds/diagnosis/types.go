// Package diagnosis suggests candidate conditions for free-text symptoms using
// a static keyword table.
package diagnosis

import "slices"

// Candidate is a condition suggested for a symptom keyword. Confidence is an
// editorial weight from 0 to 100, not a probability.
type Candidate struct {
	Condition            string   `json:"condition" yaml:"condition"`
	Confidence           int      `json:"confidence" yaml:"confidence"`
	Description          string   `json:"description" yaml:"description"`
	RecommendedTests     []string `json:"recommendedTests" yaml:"recommended_tests"`
	SuggestedMedications []string `json:"suggestedMedications" yaml:"suggested_medications"`
}

func (c Candidate) clone() Candidate {
	c.RecommendedTests = cloneStrings(c.RecommendedTests)
	c.SuggestedMedications = cloneStrings(c.SuggestedMedications)
	return c
}

// SymptomEntry maps a lowercase key phrase to its ordered candidates.
type SymptomEntry struct {
	Keyword    string      `json:"keyword" yaml:"keyword"`
	Candidates []Candidate `json:"candidates" yaml:"candidates"`
}

// Table is the ordered symptom knowledge table. Entry order decides which
// duplicate candidate survives when several keywords match.
type Table []SymptomEntry

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for i, entry := range t {
		candidates := make([]Candidate, len(entry.Candidates))
		for j, c := range entry.Candidates {
			candidates[j] = c.clone()
		}
		out[i] = SymptomEntry{Keyword: entry.Keyword, Candidates: candidates}
	}
	return out
}

// Keywords lists the table keywords in order.
func (t Table) Keywords() []string {
	out := make([]string, 0, len(t))
	for _, entry := range t {
		out = append(out, entry.Keyword)
	}
	return out
}

// Result is the outcome of matching a symptom description.
type Result struct {
	MatchedKeywords []string    `json:"matchedKeywords"`
	Candidates      []Candidate `json:"candidates"`
}

// Conditions returns the candidate condition names in ranked order.
func (r Result) Conditions() []string {
	out := make([]string, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		out = append(out, c.Condition)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}
