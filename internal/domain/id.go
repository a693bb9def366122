package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var digitsPattern = regexp.MustCompile(`\d+`)

// NormalizeID extracts the numeric part of an identifier, so that "EMP001",
// "001" and "1" all resolve to 1. Identifiers without digits are rejected.
func NormalizeID(id string) (int, error) {
	digits := digitsPattern.FindString(strings.TrimSpace(id))
	if digits == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return n, nil
}

// CanonicalID returns the normalized decimal form of id, or id unchanged when
// it carries no numeric part.
func CanonicalID(id string) string {
	n, err := NormalizeID(id)
	if err != nil {
		return strings.TrimSpace(id)
	}
	return strconv.Itoa(n)
}

// SameID compares two identifiers by their numeric part when both have one
// and by their raw text otherwise. Empty identifiers never match.
func SameID(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	na, errA := NormalizeID(a)
	nb, errB := NormalizeID(b)
	if errA == nil && errB == nil {
		return na == nb
	}
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}
