package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisclaimer_Text(t *testing.T) {
	tests := []struct {
		level  string
		custom string
		want   string
		wantLv DisclaimerLevel
	}{
		{level: "short", want: disclaimerShortText, wantLv: DisclaimerShort},
		{level: "FULL", want: disclaimerFullText, wantLv: DisclaimerFull},
		{level: "medium", want: disclaimerMediumText, wantLv: DisclaimerMedium},
		{level: "bogus", want: disclaimerMediumText, wantLv: DisclaimerMedium},
		{level: "", want: disclaimerMediumText, wantLv: DisclaimerMedium},
		{level: "short", custom: " Clinic policy text ", want: "Clinic policy text", wantLv: DisclaimerShort},
		{level: "off", custom: "ignored", want: "", wantLv: DisclaimerOff},
	}
	for _, tt := range tests {
		d := NewDisclaimer(tt.level, tt.custom)
		assert.Equal(t, tt.want, d.Text(), "level %q", tt.level)
		assert.Equal(t, tt.wantLv, d.Level(), "level %q", tt.level)
	}
}

func TestDisclaimer_ZeroValue(t *testing.T) {
	var d Disclaimer
	assert.Equal(t, disclaimerMediumText, d.Text())
}
