package weather

import (
	"fmt"
	"time"
)

// Hours of the local samples used for night and day reporting.
const (
	NightHour = 3
	DayHour   = 15
)

// MatchMode controls how a sample's local date is compared to the target date.
type MatchMode string

const (
	// MatchDayOfMonth compares the day of month only. A sample from another month
	// that shares the day number is accepted.
	MatchDayOfMonth MatchMode = "legacy"
	// MatchFullDate compares year, month and day.
	MatchFullDate MatchMode = "full-date"
)

// ParseMatchMode validates a configured match mode name.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(s) {
	case MatchDayOfMonth, MatchFullDate:
		return MatchMode(s), nil
	case "":
		return MatchDayOfMonth, nil
	default:
		return "", fmt.Errorf("unknown match mode %q", s)
	}
}

// Selection is the outcome of picking a sample for one target slot.
type Selection struct {
	Sample ForecastSample
	// Fallback is true when no sample matched and the first one was substituted.
	Fallback bool
}

// Selector picks the sample that best matches a (day offset, hour) target.
type Selector struct {
	clock    Clock
	location *time.Location
	mode     MatchMode
}

// NewSelector creates a Selector evaluating local times in loc.
func NewSelector(clock Clock, loc *time.Location, mode MatchMode) *Selector {
	if clock == nil {
		clock = RealClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	if mode == "" {
		mode = MatchDayOfMonth
	}
	return &Selector{clock: clock, location: loc, mode: mode}
}

// Location returns the time zone used for local calendar calculations.
func (s *Selector) Location() *time.Location { return s.location }

// Now returns the current time in the selector's time zone.
func (s *Selector) Now() time.Time { return s.clock.Now().In(s.location) }

// Select returns the first sample whose local date matches now+dayOffset and whose
// local hour equals targetHour. When nothing matches, samples[0] is returned with
// Fallback set.
func (s *Selector) Select(samples []ForecastSample, dayOffset, targetHour int) (Selection, error) {
	if len(samples) == 0 {
		return Selection{}, ErrNoSamples
	}

	target := s.Now().AddDate(0, 0, dayOffset)

	for _, sample := range samples {
		local := sample.Timestamp.In(s.location)
		if local.Hour() != targetHour {
			continue
		}
		if s.sameDay(local, target) {
			return Selection{Sample: sample}, nil
		}
	}

	return Selection{Sample: samples[0], Fallback: true}, nil
}

func (s *Selector) sameDay(a, b time.Time) bool {
	if s.mode == MatchFullDate {
		ay, am, ad := a.Date()
		by, bm, bd := b.Date()
		return ay == by && am == bm && ad == bd
	}
	return a.Day() == b.Day()
}
