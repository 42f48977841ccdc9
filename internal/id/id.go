// Package id assigns identifiers to accounts created through this tool.
// Accounts that arrive from another store keep the ids that store gave them.
package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// New returns a fresh random account id.
func New() string {
	return uuid.NewString()
}

// Normalize trims an id read from user input and lower-cases it when it is a
// UUID, so "ABC…" and "abc…" resolve to the same account.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if u, err := uuid.Parse(s); err == nil {
		return u.String()
	}
	return s
}

// Check rejects ids that cannot be stored in a CSV cell or a URL path segment.
func Check(s string) error {
	if s == "" {
		return fmt.Errorf("empty account id")
	}
	if strings.ContainsAny(s, "/?#\r\n") {
		return fmt.Errorf("invalid account id %q", s)
	}
	return nil
}
