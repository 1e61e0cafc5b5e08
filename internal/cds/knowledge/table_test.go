package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-cds/internal/cds/diagnosis"
)

const sampleYAML = `
symptoms:
  - keyword: "  Sore Throat "
    candidates:
      - condition: Strep Throat
        confidence: 80
        description: Bacterial pharyngitis
        recommended_tests: [Rapid strep test]
        suggested_medications: [Amoxicillin]
      - condition: Viral Pharyngitis
        confidence: 70
  - keyword: earache
    candidates:
      - condition: Otitis Media
        confidence: 75
`

func TestParse(t *testing.T) {
	table, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	require.Len(t, table, 2)

	assert.Equal(t, []string{"sore throat", "earache"}, table.Keywords())
	strep := table[0].Candidates[0]
	assert.Equal(t, "Strep Throat", strep.Condition)
	assert.Equal(t, 80, strep.Confidence)
	assert.Equal(t, []string{"Rapid strep test"}, strep.RecommendedTests)
	assert.Equal(t, []string{"Amoxicillin"}, strep.SuggestedMedications)

	viral := table[0].Candidates[1]
	assert.NotNil(t, viral.RecommendedTests)
	assert.NotNil(t, viral.SuggestedMedications)
}

func TestParse_FeedsMatcher(t *testing.T) {
	table, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	got := diagnosis.NewMatcher(table).Match("Sore throat since Monday")
	assert.Equal(t, []string{"Strep Throat", "Viral Pharyngitis"}, got.Conditions())
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"not yaml":        "symptoms: [",
		"empty":           "symptoms: []",
		"empty keyword":   "symptoms:\n  - keyword: ' '\n    candidates: []\n",
		"duplicate":       "symptoms:\n  - keyword: fever\n  - keyword: FEVER\n",
		"no condition":    "symptoms:\n  - keyword: fever\n    candidates:\n      - confidence: 50\n",
		"confidence high": "symptoms:\n  - keyword: fever\n    candidates:\n      - condition: Flu\n        confidence: 101\n",
		"confidence low":  "symptoms:\n  - keyword: fever\n    candidates:\n      - condition: Flu\n        confidence: -1\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTable)
		})
	}
}

func TestMarshal_ParsesBack(t *testing.T) {
	data, err := Marshal(diagnosis.DefaultTable())
	require.NoError(t, err)

	table, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, diagnosis.DefaultTable(), table)
}

func TestParseJSON(t *testing.T) {
	body := `{"symptoms":[{"keyword":"Earache","candidates":[{"condition":"Otitis Media","confidence":75,"recommendedTests":["Otoscopy"]}]}]}`

	table, err := ParseJSON([]byte(body))
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, "earache", table[0].Keyword)
	assert.Equal(t, []string{"Otoscopy"}, table[0].Candidates[0].RecommendedTests)

	_, err = ParseJSON([]byte(`{"symptoms":`))
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symptoms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, table, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
