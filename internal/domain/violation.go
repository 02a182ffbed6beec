package domain

import "time"

// ViolationType identifies the kind of legal restriction a route conflicts with.
type ViolationType string

const (
	ViolationTypeTimeBan        ViolationType = "TIME_BAN"
	ViolationTypeWeightLimit    ViolationType = "WEIGHT_LIMIT"
	ViolationTypeRestrictedZone ViolationType = "RESTRICTED_ZONE"
)

// ViolationSeverity separates blocking violations from advisories.
type ViolationSeverity string

const (
	ViolationSeverityError   ViolationSeverity = "ERROR"
	ViolationSeverityWarning ViolationSeverity = "WARNING"
)

// Violation is a detected conflict between a planned route and a legal
// constraint. Violations are returned as data, never raised as errors.
type Violation struct {
	Type        ViolationType
	Severity    ViolationSeverity
	City        string
	Zone        string // Set for restricted-zone violations.
	Description string
	SuggestedAt time.Time // Suggested alternative departure, for time bans.
}

// Blocking reports whether the violation prevents executing the route as planned.
func (v Violation) Blocking() bool {
	return v.Severity == ViolationSeverityError
}
