package model

import "time"

// Window is a single concrete availability interval on a calendar date,
// produced by expanding the weekly template and daily overrides.
type Window struct {
	// DateKey is the YYYY-MM-DD date the window belongs to.
	DateKey string

	// Start / End are in the configured display timezone.
	Start time.Time
	End   time.Time

	// Overridden is true if the window came from a daily override rather
	// than the weekly template.
	Overridden bool
}

// Blackout is an explicit unavailability interval, kept apart from the
// weekly template and overrides.
type Blackout struct {
	ID string `json:"id"`

	// StartAt / EndAt are ISO-8601 timestamps passed through as given.
	StartAt string `json:"startAt"`
	EndAt   string `json:"endAt"`

	Reason string `json:"reason,omitempty"`
}
