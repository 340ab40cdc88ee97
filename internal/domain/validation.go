package domain

import (
	"fmt"
	"unicode/utf8"
)

// FailureKind names one way a form field can fail validation.
type FailureKind string

const (
	FailureRequired     FailureKind = "required"
	FailureMinLength    FailureKind = "minlength"
	FailureMaxLength    FailureKind = "maxlength"
	FailureDateMinToday FailureKind = "dateMinToday"
	FailureIDExists     FailureKind = "idExists"
)

// FieldFailure is one named validation failure on a field. Bound carries
// the configured limit for length failures and is zero otherwise.
type FieldFailure struct {
	Kind  FailureKind
	Bound int
}

// ValidateID checks the product identifier: required, length 3-10.
func ValidateID(value string) []FieldFailure {
	return validateText(value, IDMinLength, IDMaxLength)
}

// ValidateName checks the product name: required, length 5-100.
func ValidateName(value string) []FieldFailure {
	return validateText(value, NameMinLength, NameMaxLength)
}

// ValidateDescription checks the description: required, length 10-200.
func ValidateDescription(value string) []FieldFailure {
	return validateText(value, DescriptionMinLength, DescriptionMaxLength)
}

// ValidateLogo checks the logo URL: required only.
func ValidateLogo(value string) []FieldFailure {
	if value == "" {
		return []FieldFailure{{Kind: FailureRequired}}
	}
	return nil
}

// ValidateReleaseDate checks the release date: required, and not before
// today. The comparison is date-only; time of day never matters.
func ValidateReleaseDate(value Date, today Date) []FieldFailure {
	if value.IsZero() {
		return []FieldFailure{{Kind: FailureRequired}}
	}
	if value.Before(today) {
		return []FieldFailure{{Kind: FailureDateMinToday}}
	}
	return nil
}

// ValidateRevisionDate checks the derived revision date: required only.
// The value itself is always recomputed from the release date.
func ValidateRevisionDate(value Date) []FieldFailure {
	if value.IsZero() {
		return []FieldFailure{{Kind: FailureRequired}}
	}
	return nil
}

// validateText applies the shared required/min/max rules. Bounds count
// characters, not bytes. Length checks do not fire on an empty value;
// required already covers it.
func validateText(value string, minLen, maxLen int) []FieldFailure {
	if value == "" {
		return []FieldFailure{{Kind: FailureRequired}}
	}

	length := utf8.RuneCountInString(value)

	var failures []FieldFailure
	if length < minLen {
		failures = append(failures, FieldFailure{Kind: FailureMinLength, Bound: minLen})
	}
	if length > maxLen {
		failures = append(failures, FieldFailure{Kind: FailureMaxLength, Bound: maxLen})
	}
	return failures
}

// FailureMessage maps a set of failures to the single message shown to
// the user. When several kinds are present the most fundamental wins:
// required, then minlength, maxlength, dateMinToday, idExists.
func FailureMessage(failures []FieldFailure) string {
	if _, ok := findFailure(failures, FailureRequired); ok {
		return "This field is required!"
	}
	if f, ok := findFailure(failures, FailureMinLength); ok {
		return fmt.Sprintf("Minimum %d characters!", f.Bound)
	}
	if f, ok := findFailure(failures, FailureMaxLength); ok {
		return fmt.Sprintf("Maximum %d characters!", f.Bound)
	}
	if _, ok := findFailure(failures, FailureDateMinToday); ok {
		return "Date must be today or later!"
	}
	if _, ok := findFailure(failures, FailureIDExists); ok {
		return "ID is not available!"
	}
	return ""
}

func findFailure(failures []FieldFailure, kind FailureKind) (FieldFailure, bool) {
	for _, f := range failures {
		if f.Kind == kind {
			return f, true
		}
	}
	return FieldFailure{}, false
}
