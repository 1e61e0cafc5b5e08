// Package risk scores patient risk with an ordered list of additive rules.
package risk

// Level is a severity or overall risk tier.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Vitals are optional live measurements. BloodPressure uses the
// "systolic/diastolic" form, e.g. "120/80".
type Vitals struct {
	BloodPressure *string  `json:"bloodPressure,omitempty"`
	HeartRate     *float64 `json:"heartRate,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	Height        *float64 `json:"height,omitempty"`
}

// PatientInput is the subset of a patient record the scorer reads. A nil
// field means the field was not supplied and its rules are skipped.
type PatientInput struct {
	Age                *float64 `json:"age,omitempty"`
	Gender             *string  `json:"gender,omitempty"`
	BloodGroup         *string  `json:"bloodGroup,omitempty"`
	Allergies          *string  `json:"allergies,omitempty"`
	ChronicConditions  *string  `json:"chronicConditions,omitempty"`
	MedicalHistory     *string  `json:"medicalHistory,omitempty"`
	CurrentMedications []string `json:"currentMedications,omitempty"`
	Vitals             *Vitals  `json:"vitals,omitempty"`
}

// Factor is one contributing condition found in the patient data.
type Factor struct {
	Factor         string `json:"factor"`
	Severity       Level  `json:"severity"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// Assessment is the scorer output. Factors keep rule evaluation order.
type Assessment struct {
	OverallRisk     Level    `json:"overallRisk"`
	RiskScore       int      `json:"riskScore"`
	Factors         []Factor `json:"factors"`
	Recommendations []string `json:"recommendations"`
}

// FactorLabels returns the factor names in evaluation order.
func (a Assessment) FactorLabels() []string {
	out := make([]string, 0, len(a.Factors))
	for _, f := range a.Factors {
		out = append(out, f.Factor)
	}
	return out
}

// Ptr returns a pointer to v. Handy for building PatientInput literals.
func Ptr[T any](v T) *T {
	return &v
}
