package risk

import (
	"fmt"
	"strconv"
	"strings"
)

// Finding is the effect of a rule that fired.
type Finding struct {
	Factor          Factor
	Points          int
	Recommendations []string
}

// Rule pairs a predicate over the patient with its effect. Evaluate returns
// false when the rule does not apply, including when its source field is
// absent or unreadable.
type Rule struct {
	ID       string
	Evaluate func(PatientInput) (Finding, bool)
}

// DefaultRules returns the built-in rules in evaluation order: age, chronic
// conditions, allergies, blood pressure.
func DefaultRules() []Rule {
	return []Rule{
		AgeRule(),
		DiabetesRule(),
		HypertensionRule(),
		CardiacRule(),
		RespiratoryRule(),
		AllergyRule(),
		BloodPressureRule(),
	}
}

// AgeRule fires "Advanced Age" from 65 or "Middle Age" from 50, never both.
func AgeRule() Rule {
	return Rule{
		ID: "age",
		Evaluate: func(p PatientInput) (Finding, bool) {
			if p.Age == nil {
				return Finding{}, false
			}
			age := *p.Age
			desc := fmt.Sprintf("Patient is %s years old", strconv.FormatFloat(age, 'f', -1, 64))
			switch {
			case age >= 65:
				return Finding{
					Factor: Factor{
						Factor:         "Advanced Age",
						Severity:       LevelMedium,
						Description:    desc,
						Recommendation: "Annual comprehensive health screening",
					},
					Points: 20,
				}, true
			case age >= 50:
				return Finding{
					Factor: Factor{
						Factor:         "Middle Age",
						Severity:       LevelLow,
						Description:    desc,
						Recommendation: "Regular preventive screenings for blood pressure, cholesterol and glucose",
					},
					Points: 10,
				}, true
			}
			return Finding{}, false
		},
	}
}

// DiabetesRule matches "diabetes" in the chronic conditions text.
func DiabetesRule() Rule {
	return chronicConditionRule("diabetes", []string{"diabetes"}, Finding{
		Factor: Factor{
			Factor:         "Diabetes",
			Severity:       LevelHigh,
			Description:    "Diabetes raises cardiovascular, renal and infection risk",
			Recommendation: "Monitor blood glucose and HbA1c regularly",
		},
		Points:          25,
		Recommendations: []string{"Schedule HbA1c test every 3 months"},
	})
}

// HypertensionRule matches "hypertension" or "high blood pressure".
func HypertensionRule() Rule {
	return chronicConditionRule("hypertension", []string{"hypertension", "high blood pressure"}, Finding{
		Factor: Factor{
			Factor:         "Hypertension",
			Severity:       LevelMedium,
			Description:    "Documented history of hypertension",
			Recommendation: "Monitor blood pressure at every visit",
		},
		Points:          20,
		Recommendations: []string{"Lifestyle modifications for BP control"},
	})
}

// CardiacRule matches "heart" or "cardiac".
func CardiacRule() Rule {
	return chronicConditionRule("cardiac", []string{"heart", "cardiac"}, Finding{
		Factor: Factor{
			Factor:         "Cardiac Condition",
			Severity:       LevelHigh,
			Description:    "History of heart disease",
			Recommendation: "Cardiology follow-up and ECG monitoring",
		},
		Points: 30,
	})
}

// RespiratoryRule matches "asthma" or "copd".
func RespiratoryRule() Rule {
	return chronicConditionRule("respiratory", []string{"asthma", "copd"}, Finding{
		Factor: Factor{
			Factor:         "Respiratory Condition",
			Severity:       LevelMedium,
			Description:    "Chronic respiratory condition",
			Recommendation: "Keep rescue inhaler available and review lung function",
		},
		Points: 15,
	})
}

// AllergyRule fires for any allergy text other than "none". Blank text is
// treated as not supplied.
func AllergyRule() Rule {
	return Rule{
		ID: "allergies",
		Evaluate: func(p PatientInput) (Finding, bool) {
			if p.Allergies == nil {
				return Finding{}, false
			}
			text := strings.TrimSpace(*p.Allergies)
			if text == "" || strings.EqualFold(text, "none") {
				return Finding{}, false
			}
			return Finding{
				Factor: Factor{
					Factor:         "Known Allergies",
					Severity:       LevelMedium,
					Description:    fmt.Sprintf("Documented allergies: %s", text),
					Recommendation: "Check every prescription against the allergy list",
				},
				Points:          10,
				Recommendations: []string{fmt.Sprintf("Avoid known allergens: %s", text)},
			}, true
		},
	}
}

// BloodPressureRule fires "Hypertensive Crisis" from 180/120 or "Elevated
// Blood Pressure" from 140/90, never both. Unparseable readings are skipped.
func BloodPressureRule() Rule {
	return Rule{
		ID: "blood_pressure",
		Evaluate: func(p PatientInput) (Finding, bool) {
			if p.Vitals == nil || p.Vitals.BloodPressure == nil {
				return Finding{}, false
			}
			sys, dia, ok := ParseBloodPressure(*p.Vitals.BloodPressure)
			if !ok {
				return Finding{}, false
			}
			switch {
			case sys >= 180 || dia >= 120:
				return Finding{
					Factor: Factor{
						Factor:         "Hypertensive Crisis",
						Severity:       LevelCritical,
						Description:    fmt.Sprintf("Blood pressure %d/%d mmHg is in the crisis range", sys, dia),
						Recommendation: "Immediate medical attention required",
					},
					Points: 40,
				}, true
			case sys >= 140 || dia >= 90:
				return Finding{
					Factor: Factor{
						Factor:         "Elevated Blood Pressure",
						Severity:       LevelMedium,
						Description:    fmt.Sprintf("Blood pressure %d/%d mmHg is above the normal range", sys, dia),
						Recommendation: "Recheck blood pressure and review antihypertensive therapy",
					},
					Points: 15,
				}, true
			}
			return Finding{}, false
		},
	}
}

func chronicConditionRule(id string, keywords []string, finding Finding) Rule {
	return Rule{
		ID: id,
		Evaluate: func(p PatientInput) (Finding, bool) {
			if p.ChronicConditions == nil {
				return Finding{}, false
			}
			text := strings.ToLower(*p.ChronicConditions)
			for _, kw := range keywords {
				if strings.Contains(text, kw) {
					out := finding
					out.Recommendations = append([]string(nil), finding.Recommendations...)
					return out, true
				}
			}
			return Finding{}, false
		},
	}
}
