package models

import (
	"fmt"
	"strings"

	dErrors "cosurvival/pkg/domain-errors"
)

// Severity is an ordered risk classification: weak < moderate < strong < critical.
type Severity string

const (
	SeverityWeak     Severity = "weak"
	SeverityModerate Severity = "moderate"
	SeverityStrong   Severity = "strong"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityWeak:     1,
	SeverityModerate: 2,
	SeverityStrong:   3,
	SeverityCritical: 4,
}

// ParseSeverity accepts any casing and surrounding whitespace.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := severityRank[sev]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidArgument, fmt.Sprintf("unknown severity %q", s))
	}
	return sev, nil
}

func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// Rank is 0 for unknown severities so they sort below weak.
func (s Severity) Rank() int {
	return severityRank[s]
}

// Compare returns -1, 0 or 1 ordering s against other.
func (s Severity) Compare(other Severity) int {
	a, b := s.Rank(), other.Rank()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as min or more.
func (s Severity) AtLeast(min Severity) bool {
	return s.Compare(min) >= 0
}
