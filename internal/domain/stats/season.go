package stats

import (
	"fmt"
	"time"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
	"github.com/gridstats/nfl-efficiency-hub/pkg/timeutil"
)

// SeasonStatus describes where the league calendar currently stands.
type SeasonStatus string

const (
	SeasonInProgress SeasonStatus = "in_progress"
	SeasonPlayoffs   SeasonStatus = "playoffs"
	SeasonCompleted  SeasonStatus = "completed"
)

// SeasonInfo summarizes the current league calendar for freshness decisions
// and user-facing context.
type SeasonInfo struct {
	CurrentSeason    int          `json:"current_season"`
	Status           SeasonStatus `json:"season_status"`
	ExpectedGames    int          `json:"expected_games"`
	DataComplete     bool         `json:"data_complete"`
	AvailableSeasons []int        `json:"available_seasons"`
}

// StatusMessage is a user-facing note about a selected season. Kind is one
// of "info", "success" or "warning".
type StatusMessage struct {
	Message string `json:"message"`
	Kind    string `json:"type"`
}

// CurrentSeasonInfo derives the league calendar state at the given instant.
// September through December is the regular season, January the playoffs,
// and February through August the completed offseason.
func CurrentSeasonInfo(now time.Time) SeasonInfo {
	now = timeutil.ToEastern(now)
	month := int(now.Month())
	year := now.Year()

	var season int
	var status SeasonStatus
	switch {
	case month >= int(timeutil.SeasonStartMonth):
		season = year
		status = SeasonInProgress
	case month == 1:
		season = year - 1
		status = SeasonPlayoffs
	default:
		season = year - 1
		status = SeasonCompleted
	}

	available := make([]int, 0, season-int(shared.MinSeasonYear)+1)
	for y := season; y >= int(shared.MinSeasonYear); y-- {
		available = append(available, y)
	}

	return SeasonInfo{
		CurrentSeason:    season,
		Status:           status,
		ExpectedGames:    shared.SeasonYear(season).GamesPerTeam(),
		DataComplete:     status != SeasonInProgress,
		AvailableSeasons: available,
	}
}

// ContextMessage explains the state of a selected season relative to the
// current calendar. actualGames of 0 means the game count is unknown.
func ContextMessage(season shared.SeasonYear, actualGames int, now time.Time) StatusMessage {
	info := CurrentSeasonInfo(now)
	year := season.Int()

	switch {
	case year == info.CurrentSeason:
		switch info.Status {
		case SeasonInProgress:
			if actualGames > 0 && actualGames < info.ExpectedGames {
				return StatusMessage{
					Message: fmt.Sprintf("%d season in progress • %d/%d games played", year, actualGames, info.ExpectedGames),
					Kind:    "info",
				}
			}
			return StatusMessage{Message: fmt.Sprintf("%d season in progress", year), Kind: "info"}
		case SeasonPlayoffs:
			return StatusMessage{Message: fmt.Sprintf("%d season: Playoffs in progress", year), Kind: "info"}
		default:
			return StatusMessage{Message: fmt.Sprintf("%d season: Complete", year), Kind: "success"}
		}
	case year > info.CurrentSeason:
		return StatusMessage{Message: fmt.Sprintf("%d season hasn't started yet", year), Kind: "warning"}
	default:
		return StatusMessage{Message: fmt.Sprintf("%d season: Historical data", year), Kind: "success"}
	}
}

// DataFreshness classifies how old a served dataset is.
type DataFreshness string

const (
	FreshnessCurrent DataFreshness = "current"
	FreshnessRecent  DataFreshness = "recent"
	FreshnessAging   DataFreshness = "aging"
	FreshnessStale   DataFreshness = "stale"
)

// ClassifyFreshness buckets a dataset timestamp by age: within a day is
// current, within a week recent, within two weeks aging, anything older
// stale. A zero timestamp is always stale.
func ClassifyFreshness(fetchedAt, now time.Time) DataFreshness {
	if fetchedAt.IsZero() {
		return FreshnessStale
	}

	age := now.Sub(fetchedAt)
	switch {
	case age <= 24*time.Hour:
		return FreshnessCurrent
	case age <= 7*24*time.Hour:
		return FreshnessRecent
	case age <= 14*24*time.Hour:
		return FreshnessAging
	default:
		return FreshnessStale
	}
}
