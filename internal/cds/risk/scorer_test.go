package risk

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssess_EmptyInput(t *testing.T) {
	got := NewDefaultScorer().Assess(PatientInput{})

	assert.Equal(t, 0, got.RiskScore)
	assert.Equal(t, LevelLow, got.OverallRisk)
	assert.NotNil(t, got.Factors)
	assert.Empty(t, got.Factors)
	assert.Equal(t, []string{"Continue regular health checkups", "Maintain healthy lifestyle"}, got.Recommendations)
}

func TestAssess_AgeBranchesAreExclusive(t *testing.T) {
	scorer := NewDefaultScorer()

	tests := []struct {
		age        float64
		wantFactor string
		wantScore  int
	}{
		{age: 70, wantFactor: "Advanced Age", wantScore: 20},
		{age: 65, wantFactor: "Advanced Age", wantScore: 20},
		{age: 64.5, wantFactor: "Middle Age", wantScore: 10},
		{age: 50, wantFactor: "Middle Age", wantScore: 10},
		{age: 49, wantScore: 0},
	}
	for _, tt := range tests {
		got := scorer.Assess(PatientInput{Age: Ptr(tt.age)})
		assert.Equal(t, tt.wantScore, got.RiskScore, "age %v", tt.age)
		if tt.wantFactor == "" {
			assert.Empty(t, got.Factors, "age %v", tt.age)
			continue
		}
		require.Len(t, got.Factors, 1, "age %v", tt.age)
		assert.Equal(t, tt.wantFactor, got.Factors[0].Factor)
	}
}

func TestAssess_AgeDescriptionInterpolatesValue(t *testing.T) {
	got := NewDefaultScorer().Assess(PatientInput{Age: Ptr(70.0)})
	require.Len(t, got.Factors, 1)
	assert.Equal(t, "Patient is 70 years old", got.Factors[0].Description)
	assert.Equal(t, LevelMedium, got.Factors[0].Severity)
}

func TestAssess_ChronicConditions(t *testing.T) {
	got := NewDefaultScorer().Assess(PatientInput{ChronicConditions: Ptr("Type 2 Diabetes and Hypertension")})

	assert.Equal(t, []string{"Diabetes", "Hypertension"}, got.FactorLabels())
	assert.Equal(t, 45, got.RiskScore)
	assert.Equal(t, LevelMedium, got.OverallRisk)
	assert.Equal(t, []string{
		"Schedule HbA1c test every 3 months",
		"Lifestyle modifications for BP control",
	}, got.Recommendations)
}

func TestAssess_ChronicConditionSynonyms(t *testing.T) {
	scorer := NewDefaultScorer()

	tests := map[string][]string{
		"high blood pressure":      {"Hypertension"},
		"congestive HEART failure": {"Cardiac Condition"},
		"cardiac arrhythmia":       {"Cardiac Condition"},
		"COPD":                     {"Respiratory Condition"},
		"childhood asthma":         {"Respiratory Condition"},
		"migraine":                 {},
	}
	for text, want := range tests {
		got := scorer.Assess(PatientInput{ChronicConditions: Ptr(text)})
		assert.Equal(t, want, got.FactorLabels(), text)
	}
}

func TestAssess_Allergies(t *testing.T) {
	scorer := NewDefaultScorer()

	got := scorer.Assess(PatientInput{Allergies: Ptr("Penicillin")})
	require.Len(t, got.Factors, 1)
	assert.Equal(t, "Known Allergies", got.Factors[0].Factor)
	assert.Equal(t, 10, got.RiskScore)
	require.Len(t, got.Recommendations, 1)
	assert.Contains(t, got.Recommendations[0], "Penicillin")

	for _, skipped := range []string{"none", " NONE ", "None", "", "   ", "\t\n"} {
		got := scorer.Assess(PatientInput{Allergies: Ptr(skipped)})
		assert.Empty(t, got.Factors, "allergies %q", skipped)
		assert.Zero(t, got.RiskScore, "allergies %q", skipped)
		assert.Equal(t, LevelLow, got.OverallRisk, "allergies %q", skipped)
	}
}

func TestAssess_BloodPressure(t *testing.T) {
	scorer := NewDefaultScorer()

	tests := []struct {
		reading    string
		wantFactor string
		wantScore  int
	}{
		{reading: "190/130", wantFactor: "Hypertensive Crisis", wantScore: 40},
		{reading: "180/80", wantFactor: "Hypertensive Crisis", wantScore: 40},
		{reading: "120/120", wantFactor: "Hypertensive Crisis", wantScore: 40},
		{reading: "150/95", wantFactor: "Elevated Blood Pressure", wantScore: 15},
		{reading: "130/90", wantFactor: "Elevated Blood Pressure", wantScore: 15},
		{reading: "150/95 mmHg", wantFactor: "Elevated Blood Pressure", wantScore: 15},
		{reading: "120/80", wantScore: 0},
		{reading: "high/low", wantScore: 0},
		{reading: "190", wantScore: 0},
		{reading: "", wantScore: 0},
	}
	for _, tt := range tests {
		got := scorer.Assess(PatientInput{Vitals: &Vitals{BloodPressure: Ptr(tt.reading)}})
		assert.Equal(t, tt.wantScore, got.RiskScore, tt.reading)
		if tt.wantFactor == "" {
			assert.Empty(t, got.Factors, tt.reading)
			continue
		}
		require.Len(t, got.Factors, 1, tt.reading)
		assert.Equal(t, tt.wantFactor, got.Factors[0].Factor, tt.reading)
	}
}

func TestAssess_VitalsWithoutBloodPressure(t *testing.T) {
	got := NewDefaultScorer().Assess(PatientInput{Vitals: &Vitals{HeartRate: Ptr(120.0)}})
	assert.Empty(t, got.Factors)
	assert.Equal(t, 0, got.RiskScore)
}

func TestAssess_EndToEnd(t *testing.T) {
	input := PatientInput{
		Age:               Ptr(68.0),
		ChronicConditions: Ptr("diabetes, hypertension"),
		Allergies:         Ptr("Penicillin"),
		Vitals:            &Vitals{BloodPressure: Ptr("150/95")},
	}

	got := NewDefaultScorer().Assess(input)

	assert.Equal(t, []string{
		"Advanced Age",
		"Diabetes",
		"Hypertension",
		"Known Allergies",
		"Elevated Blood Pressure",
	}, got.FactorLabels())
	assert.Equal(t, 90, got.RiskScore)
	assert.Equal(t, LevelCritical, got.OverallRisk)
}

func TestAssess_ScoreIsClamped(t *testing.T) {
	input := PatientInput{
		Age:               Ptr(80.0),
		ChronicConditions: Ptr("diabetes, hypertension, heart disease, copd"),
		Allergies:         Ptr("sulfa"),
		Vitals:            &Vitals{BloodPressure: Ptr("200/125")},
	}

	got := NewDefaultScorer().Assess(input)

	assert.Len(t, got.Factors, 7)
	assert.Equal(t, 100, got.RiskScore)
	assert.Equal(t, LevelCritical, got.OverallRisk)
}

func TestAssess_IgnoresUnscoredFields(t *testing.T) {
	base := PatientInput{Age: Ptr(55.0)}
	withExtras := base
	withExtras.Gender = Ptr("female")
	withExtras.BloodGroup = Ptr("O+")
	withExtras.MedicalHistory = Ptr("Influenza")
	withExtras.CurrentMedications = []string{"Oseltamivir"}

	scorer := NewDefaultScorer()
	assert.Equal(t, scorer.Assess(base), scorer.Assess(withExtras))
}

func TestAssess_ConcurrentCallsAreIndependent(t *testing.T) {
	scorer := NewDefaultScorer()
	inputs := []PatientInput{
		{},
		{Age: Ptr(70.0)},
		{Vitals: &Vitals{BloodPressure: Ptr("190/130")}},
	}
	want := make([]Assessment, len(inputs))
	for i, in := range inputs {
		want[i] = scorer.Assess(in)
	}

	var wg sync.WaitGroup
	for n := 0; n < 20; n++ {
		for i, in := range inputs {
			wg.Add(1)
			go func(i int, in PatientInput) {
				defer wg.Done()
				assert.Equal(t, want[i], scorer.Assess(in))
			}(i, in)
		}
	}
	wg.Wait()
}

func TestNewScorer_CustomRules(t *testing.T) {
	always := Rule{
		ID: "always",
		Evaluate: func(PatientInput) (Finding, bool) {
			return Finding{Factor: Factor{Factor: "Always", Severity: LevelHigh}, Points: 55}, true
		},
	}
	scorer := NewScorer([]Rule{always, {ID: "nil"}})

	got := scorer.Assess(PatientInput{})
	assert.Equal(t, 55, got.RiskScore)
	assert.Equal(t, LevelHigh, got.OverallRisk)
	assert.Equal(t, []string{"Always"}, got.FactorLabels())
	assert.Empty(t, got.Recommendations)
	assert.Equal(t, []string{"always", "nil"}, scorer.RuleIDs())
}

func TestTierForScore(t *testing.T) {
	tests := map[int]Level{
		0:   LevelLow,
		24:  LevelLow,
		25:  LevelMedium,
		49:  LevelMedium,
		50:  LevelHigh,
		69:  LevelHigh,
		70:  LevelCritical,
		100: LevelCritical,
	}
	for score, want := range tests {
		assert.Equal(t, want, TierForScore(score), "score %d", score)
	}
}

func TestDefaultRules_Order(t *testing.T) {
	assert.Equal(t, []string{
		"age", "diabetes", "hypertension", "cardiac", "respiratory", "allergies", "blood_pressure",
	}, NewDefaultScorer().RuleIDs())
}
