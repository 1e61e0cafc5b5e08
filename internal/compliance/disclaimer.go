package compliance

import "strings"

// DisclaimerLevel represents the verbosity of the disclaimer.
type DisclaimerLevel string

const (
	DisclaimerOff    DisclaimerLevel = "off"
	DisclaimerShort  DisclaimerLevel = "short"
	DisclaimerMedium DisclaimerLevel = "medium"
	DisclaimerFull   DisclaimerLevel = "full"
)

const (
	disclaimerShortText = "Decision support only. Not a diagnosis."

	disclaimerMediumText = "These suggestions come from static lookup tables and are not a diagnosis. Confirm with clinical judgement."

	disclaimerFullText = "These suggestions are generated from fixed keyword and rule tables. Confidence values are editorial weights, not probabilities. They do not replace examination, testing or the judgement of a licensed clinician."
)

// Disclaimer returns the text attached to decision-support responses.
type Disclaimer struct {
	level  DisclaimerLevel
	custom string
}

// NewDisclaimer builds a disclaimer. Unknown levels fall back to medium;
// custom text wins over any level except off.
func NewDisclaimer(level, custom string) Disclaimer {
	l := DisclaimerLevel(strings.ToLower(strings.TrimSpace(level)))
	switch l {
	case DisclaimerOff, DisclaimerShort, DisclaimerMedium, DisclaimerFull:
	default:
		l = DisclaimerMedium
	}
	return Disclaimer{level: l, custom: strings.TrimSpace(custom)}
}

// Level reports the configured level.
func (d Disclaimer) Level() DisclaimerLevel {
	return d.level
}

// Text returns the disclaimer text, or "" when disabled.
func (d Disclaimer) Text() string {
	if d.level == DisclaimerOff {
		return ""
	}
	if d.custom != "" {
		return d.custom
	}
	switch d.level {
	case DisclaimerShort:
		return disclaimerShortText
	case DisclaimerFull:
		return disclaimerFullText
	default:
		return disclaimerMediumText
	}
}
