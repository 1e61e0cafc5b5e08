// Package knowledge loads, validates and stores symptom knowledge tables.
package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wolfman30/clinic-cds/internal/cds/diagnosis"
)

// ErrInvalidTable is returned when a table document fails validation.
var ErrInvalidTable = errors.New("knowledge: invalid symptom table")

type document struct {
	Symptoms []diagnosis.SymptomEntry `yaml:"symptoms" json:"symptoms"`
}

// Parse decodes a YAML symptom table.
func Parse(data []byte) (diagnosis.Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	table := diagnosis.Table(doc.Symptoms)
	if err := Validate(table); err != nil {
		return nil, err
	}
	return Normalize(table), nil
}

// ParseJSON decodes the JSON form of a table, using the camelCase keys the
// HTTP API emits.
func ParseJSON(data []byte) (diagnosis.Table, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	table := diagnosis.Table(doc.Symptoms)
	if err := Validate(table); err != nil {
		return nil, err
	}
	return Normalize(table), nil
}

// Marshal encodes a table in the document form Parse accepts.
func Marshal(table diagnosis.Table) ([]byte, error) {
	data, err := yaml.Marshal(document{Symptoms: table})
	if err != nil {
		return nil, fmt.Errorf("knowledge: marshal table: %w", err)
	}
	return data, nil
}

// Validate checks that every entry has a keyword, and every candidate a
// condition name and a confidence within 0..100.
func Validate(table diagnosis.Table) error {
	if len(table) == 0 {
		return fmt.Errorf("%w: no symptom entries", ErrInvalidTable)
	}
	seen := make(map[string]struct{}, len(table))
	for i, entry := range table {
		kw := strings.ToLower(strings.TrimSpace(entry.Keyword))
		if kw == "" {
			return fmt.Errorf("%w: entry %d has an empty keyword", ErrInvalidTable, i)
		}
		if _, dup := seen[kw]; dup {
			return fmt.Errorf("%w: duplicate keyword %q", ErrInvalidTable, kw)
		}
		seen[kw] = struct{}{}
		for j, c := range entry.Candidates {
			if strings.TrimSpace(c.Condition) == "" {
				return fmt.Errorf("%w: %q candidate %d has no condition", ErrInvalidTable, kw, j)
			}
			if c.Confidence < 0 || c.Confidence > 100 {
				return fmt.Errorf("%w: %q candidate %q confidence %d out of range", ErrInvalidTable, kw, c.Condition, c.Confidence)
			}
		}
	}
	return nil
}

// Normalize returns a copy with lowercase trimmed keywords and non-nil lists.
func Normalize(table diagnosis.Table) diagnosis.Table {
	out := table.Clone()
	for i := range out {
		out[i].Keyword = strings.ToLower(strings.TrimSpace(out[i].Keyword))
		for j := range out[i].Candidates {
			c := &out[i].Candidates[j]
			c.Condition = strings.TrimSpace(c.Condition)
			if c.RecommendedTests == nil {
				c.RecommendedTests = []string{}
			}
			if c.SuggestedMedications == nil {
				c.SuggestedMedications = []string{}
			}
		}
	}
	return out
}

// LoadFile reads and parses a table from disk.
func LoadFile(path string) (diagnosis.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("knowledge: read %s: %w", path, err)
	}
	table, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("knowledge: load %s: %w", path, err)
	}
	return table, nil
}
