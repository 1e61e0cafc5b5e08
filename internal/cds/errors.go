package cds

import "errors"

var (
	// ErrSymptomsTooShort is returned when the trimmed symptom text has fewer
	// than diagnosis.MinSymptomLength characters.
	ErrSymptomsTooShort = errors.New("cds: symptoms must be at least 3 characters")
	// ErrMissingClinic is returned when no clinic id accompanies a request.
	ErrMissingClinic = errors.New("cds: clinic id required")
	// ErrMissingPatient is returned when a history lookup has no patient id.
	ErrMissingPatient = errors.New("cds: patient id required")
	// ErrInvalidSelection is returned for an unknown selection kind or empty value.
	ErrInvalidSelection = errors.New("cds: invalid selection")
	// ErrHistoryDisabled is returned when assessment history is not configured.
	ErrHistoryDisabled = errors.New("cds: assessment history disabled")
)
