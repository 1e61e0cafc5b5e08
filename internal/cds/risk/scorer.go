package risk

const maxScore = 100

// Recommendations used when no rule fires.
var genericRecommendations = []string{
	"Continue regular health checkups",
	"Maintain healthy lifestyle",
}

// Scorer sums the points of every rule that fires. It holds no mutable state
// and is safe for concurrent use.
type Scorer struct {
	rules []Rule
}

// NewScorer builds a scorer over a copy of rules; order is preserved.
func NewScorer(rules []Rule) *Scorer {
	return &Scorer{rules: append([]Rule(nil), rules...)}
}

// NewDefaultScorer builds a scorer over DefaultRules.
func NewDefaultScorer() *Scorer {
	return NewScorer(DefaultRules())
}

// Assess evaluates every rule against the patient.
func (s *Scorer) Assess(p PatientInput) Assessment {
	out := Assessment{
		Factors:         []Factor{},
		Recommendations: []string{},
	}

	score := 0
	for _, rule := range s.rules {
		if rule.Evaluate == nil {
			continue
		}
		finding, ok := rule.Evaluate(p)
		if !ok {
			continue
		}
		score += finding.Points
		out.Factors = append(out.Factors, finding.Factor)
		out.Recommendations = append(out.Recommendations, finding.Recommendations...)
	}

	if score > maxScore {
		score = maxScore
	}
	out.RiskScore = score
	out.OverallRisk = TierForScore(score)

	if len(out.Factors) == 0 {
		out.Recommendations = append(out.Recommendations, genericRecommendations...)
	}
	return out
}

// RuleIDs lists the configured rules in evaluation order.
func (s *Scorer) RuleIDs() []string {
	ids := make([]string, 0, len(s.rules))
	for _, r := range s.rules {
		ids = append(ids, r.ID)
	}
	return ids
}

// TierForScore maps a score onto the overall risk tier.
func TierForScore(score int) Level {
	switch {
	case score >= 70:
		return LevelCritical
	case score >= 50:
		return LevelHigh
	case score >= 25:
		return LevelMedium
	default:
		return LevelLow
	}
}
