// Package timeutil provides timezone and NFL-calendar utilities.
// All league scheduling is anchored to US Eastern time, and season arithmetic
// (September rollover, season completeness) is needed by both the domain
// entities and the caching layer's freshness policy.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// EasternTZ is the US Eastern timezone used for NFL schedules.
// Falls back to a fixed UTC-5 zone if the tzdata lookup fails.
var EasternTZ = mustLoadEastern()

func mustLoadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("America/New_York", -5*60*60)
	}
	return loc
}

// SeasonStartMonth is the month a new NFL season begins.
const SeasonStartMonth = time.September

// Now returns the current time in Eastern timezone.
func Now() time.Time {
	return time.Now().In(EasternTZ)
}

// ToEastern converts a time to Eastern timezone.
func ToEastern(t time.Time) time.Time {
	return t.In(EasternTZ)
}

// CurrentSeasonYear returns the NFL season year for the given time.
// A season that kicks off in September of year N is the "N season" even
// though it runs into January/February of N+1.
func CurrentSeasonYear(t time.Time) int {
	e := ToEastern(t)
	if e.Month() >= SeasonStartMonth {
		return e.Year()
	}
	return e.Year() - 1
}

// IsSeasonComplete reports whether the given season has finished relative
// to the reference time. A season is complete once the next season's year
// has been reached.
func IsSeasonComplete(seasonYear int, t time.Time) bool {
	return seasonYear < CurrentSeasonYear(t)
}

// IsHistoricalYear reports whether the season year is strictly before the
// current calendar year. This is the cache-validity boundary: statistics for
// historical years never change, so they may be cached indefinitely.
func IsHistoricalYear(seasonYear int, t time.Time) bool {
	return seasonYear < ToEastern(t).Year()
}

// SeasonKickoff returns an approximate season start (September 1, Eastern).
func SeasonKickoff(seasonYear int) time.Time {
	return time.Date(seasonYear, SeasonStartMonth, 1, 0, 0, 0, 0, EasternTZ)
}

// DaysSince returns whole days elapsed between then and now.
func DaysSince(then, now time.Time) int {
	d := now.Sub(then)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

// FormatDate formats a time as YYYY-MM-DD in Eastern timezone.
func FormatDate(t time.Time) string {
	return ToEastern(t).Format("2006-01-02")
}

// FormatSeason formats a season year as a display range, e.g. "2023-24".
func FormatSeason(seasonYear int) string {
	return fmt.Sprintf("%d-%02d", seasonYear, (seasonYear+1)%100)
}
