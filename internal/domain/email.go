package domain

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail is the loose address check applied before login and export.
func ValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}
