package risk

import "strings"

// ParseBloodPressure reads a "systolic/diastolic" reading. Each side is read
// like a leading integer, so "150/95 mmHg" parses while "high/low" does not.
func ParseBloodPressure(raw string) (systolic, diastolic int, ok bool) {
	parts := strings.Split(raw, "/")
	if len(parts) != 2 {
		return 0, 0, false
	}
	systolic, ok = leadingInt(parts[0])
	if !ok {
		return 0, 0, false
	}
	diastolic, ok = leadingInt(parts[1])
	if !ok {
		return 0, 0, false
	}
	return systolic, diastolic, true
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		digits++
		if digits > 4 {
			return 0, false
		}
	}
	return n, digits > 0
}
