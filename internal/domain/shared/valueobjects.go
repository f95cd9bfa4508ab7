// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gridstats/nfl-efficiency-hub/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// Team Abbreviation Value Object
// ═══════════════════════════════════════════════════════════════════════════

// TeamAbbr represents an NFL team abbreviation (e.g., "KC", "SF", "BUF").
type TeamAbbr string

// Abbreviations are 2-3 uppercase letters.
var teamAbbrRegex = regexp.MustCompile(`^[A-Z]{2,3}$`)

// IsValid checks if the abbreviation has a valid format. It does not check
// membership in the league; that is the team package's concern.
func (t TeamAbbr) IsValid() bool {
	return teamAbbrRegex.MatchString(string(t))
}

// String returns the string representation.
func (t TeamAbbr) String() string {
	return string(t)
}

// NewTeamAbbr creates a new TeamAbbr with validation.
func NewTeamAbbr(abbr string) (TeamAbbr, error) {
	a := TeamAbbr(strings.ToUpper(strings.TrimSpace(abbr)))
	if !a.IsValid() {
		return "", ErrInvalidTeamAbbr
	}
	return a, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Season Value Object
// ═══════════════════════════════════════════════════════════════════════════

// SeasonYear represents an NFL season identified by its starting year.
type SeasonYear int

const (
	// MinSeasonYear is the earliest season with play-by-play data available.
	MinSeasonYear SeasonYear = 1999
)

// IsValid checks if the season year is within the supported range.
// The upper bound is the season currently in progress.
func (s SeasonYear) IsValid() bool {
	return s >= MinSeasonYear && int(s) <= timeutil.CurrentSeasonYear(time.Now())
}

// Int returns the underlying int value.
func (s SeasonYear) Int() int {
	return int(s)
}

// String returns the string representation.
func (s SeasonYear) String() string {
	return fmt.Sprintf("%d", int(s))
}

// IsCurrent reports whether this is the season currently in progress.
// The season rolls over in September: January through August still belong
// to the previous year's season.
func (s SeasonYear) IsCurrent() bool {
	return int(s) == timeutil.CurrentSeasonYear(time.Now())
}

// IsComplete reports whether the season has finished.
func (s SeasonYear) IsComplete() bool {
	return timeutil.IsSeasonComplete(int(s), time.Now())
}

// GamesPerTeam returns the regular-season game count for this season.
// The league moved from 16 to 17 games in 2021.
func (s SeasonYear) GamesPerTeam() int {
	if s >= 2021 {
		return 17
	}
	return 16
}

// NewSeasonYear creates a new SeasonYear with validation.
func NewSeasonYear(year int) (SeasonYear, error) {
	s := SeasonYear(year)
	if !s.IsValid() {
		return 0, ErrInvalidSeason
	}
	return s, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Season Type Value Object
// ═══════════════════════════════════════════════════════════════════════════

// SeasonType selects which part of the season to analyze.
type SeasonType string

const (
	// SeasonTypeAll includes both regular season and playoff games.
	SeasonTypeAll SeasonType = "ALL"
	// SeasonTypeRegular includes regular season games only.
	SeasonTypeRegular SeasonType = "REG"
	// SeasonTypePostseason includes playoff games only.
	SeasonTypePostseason SeasonType = "POST"
)

// IsValid checks if the season type is one of the supported values.
func (st SeasonType) IsValid() bool {
	switch st {
	case SeasonTypeAll, SeasonTypeRegular, SeasonTypePostseason:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (st SeasonType) String() string {
	return string(st)
}

// Includes reports whether a game tagged with the given type belongs to
// this selection. Game records carry "REG" or "POST", never "ALL".
func (st SeasonType) Includes(gameType string) bool {
	if st == SeasonTypeAll {
		return gameType == string(SeasonTypeRegular) || gameType == string(SeasonTypePostseason)
	}
	return gameType == string(st)
}

// NewSeasonType creates a new SeasonType with validation.
func NewSeasonType(value string) (SeasonType, error) {
	st := SeasonType(strings.ToUpper(strings.TrimSpace(value)))
	if !st.IsValid() {
		return "", ErrInvalidSeasonType
	}
	return st, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// TimeRange Value Object
// ═══════════════════════════════════════════════════════════════════════════

// TimeRange represents a time period.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// IsValid checks if the time range is valid.
func (t TimeRange) IsValid() bool {
	return !t.From.IsZero() && !t.To.IsZero() && !t.From.After(t.To)
}

// Duration returns the duration of the time range.
func (t TimeRange) Duration() time.Duration {
	return t.To.Sub(t.From)
}

// Contains checks if a time is within the range.
func (t TimeRange) Contains(tm time.Time) bool {
	return (tm.Equal(t.From) || tm.After(t.From)) && (tm.Equal(t.To) || tm.Before(t.To))
}

// NewTimeRange creates a new TimeRange with validation.
func NewTimeRange(from, to time.Time) (TimeRange, error) {
	tr := TimeRange{From: from, To: to}
	if !tr.IsValid() {
		return TimeRange{}, NewDomainError("shared", "NewTimeRange", ErrInvalidInput, "'from' must be before 'to'")
	}
	return tr, nil
}

// LastNDays returns a TimeRange for the last N days.
func LastNDays(n int) TimeRange {
	now := time.Now()
	return TimeRange{
		From: now.AddDate(0, 0, -n),
		To:   now,
	}
}
