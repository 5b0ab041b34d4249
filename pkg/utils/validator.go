package utils

import (
	"fmt"
	"regexp"
)

var isoDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateISODate validates a YYYY-MM-DD date string. Dates are compared
// lexicographically throughout the report filters, so the format matters.
func ValidateISODate(date string) error {
	if !isoDateRegex.MatchString(date) {
		return fmt.Errorf("invalid date format, expected YYYY-MM-DD: %s", date)
	}
	return nil
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return regexp.MustCompile(`[\x00-\x1f\x7f]`).ReplaceAllString(s, "")
}
