// Package stats computes per-game and per-season offensive statistics from
// play-by-play tables. The calculator works from raw plays only; aggregated
// shortcuts were removed so every data source produces identical numbers.
package stats

import (
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
)

// Location marks whether a team played at home or on the road.
type Location string

const (
	LocationHome Location = "Home"
	LocationAway Location = "Away"
)

// OffensiveStats is one team's offensive line for a single game, including
// its composite efficiency rating.
type OffensiveStats struct {
	YardsPerPlay   float64 `json:"yards_per_play"`
	TotalYards     int     `json:"total_yards"`
	TotalPlays     int     `json:"total_plays"`
	Turnovers      int     `json:"turnovers"`
	CompletionPct  float64 `json:"completion_pct"`
	RushYPC        float64 `json:"rush_ypc"`
	Sacks          int     `json:"sacks"`
	ThirdDownPct   float64 `json:"third_down_pct"`
	SuccessRate    float64 `json:"success_rate"`
	FirstDowns     int     `json:"first_downs"`
	PointsPerDrive float64 `json:"points_per_drive"`
	RedZoneTDPct   float64 `json:"redzone_td_pct"`
	PenaltyYards   int     `json:"penalty_yards"`
	TOER           float64 `json:"toer"`
}

// GameStats is one team's statistics for a single game, with opponent and
// venue context for game-log displays.
type GameStats struct {
	GameID   string          `json:"game_id"`
	Team     shared.TeamAbbr `json:"team"`
	Opponent shared.TeamAbbr `json:"opponent"`
	Location Location        `json:"location"`

	YardsPerPlay   float64 `json:"yards_per_play"`
	TotalYards     int     `json:"total_yards"`
	TotalPlays     int     `json:"total_plays"`
	Turnovers      int     `json:"turnovers"`
	CompletionPct  float64 `json:"completion_pct"`
	RushYPC        float64 `json:"rush_ypc"`
	SacksAllowed   int     `json:"sacks_allowed"`
	ThirdDownPct   float64 `json:"third_down_pct"`
	SuccessRate    float64 `json:"success_rate"`
	FirstDowns     int     `json:"first_downs"`
	PointsPerDrive float64 `json:"points_per_drive"`
	RedZoneTDPct   float64 `json:"redzone_td_pct"`
	PenaltyYards   int     `json:"penalty_yards"`
}

// SeasonStats aggregates a team's offensive output over a season. The
// headline fields are the per-game rates the rating and rankings consume;
// the total fields keep the raw counts so a methodology view can show its
// work.
type SeasonStats struct {
	Team        shared.TeamAbbr   `json:"team"`
	Season      shared.SeasonYear `json:"season"`
	GamesPlayed int               `json:"games_played"`

	// Season-average composite rating for the team's own offense and for
	// the offenses it faced. Filled in by league-wide processing, not by
	// the per-team calculator.
	TOER        float64 `json:"toer"`
	TOERAllowed float64 `json:"toer_allowed"`

	AvgYardsPerPlay     float64 `json:"avg_yards_per_play"`
	TotalYards          int     `json:"total_yards"`
	TotalPlays          int     `json:"total_plays"`
	TurnoversPerGame    float64 `json:"turnovers_per_game"`
	CompletionPct       float64 `json:"completion_pct"`
	RushYPC             float64 `json:"rush_ypc"`
	SacksPerGame        float64 `json:"sacks_per_game"`
	ThirdDownPct        float64 `json:"third_down_pct"`
	SuccessRate         float64 `json:"success_rate"`
	FirstDownsPerGame   float64 `json:"first_downs_per_game"`
	PointsPerDrive      float64 `json:"points_per_drive"`
	RedZoneTDPct        float64 `json:"redzone_td_pct"`
	PenaltyYardsPerGame float64 `json:"penalty_yards_per_game"`

	// Raw season totals.
	TotalRushYards            int `json:"total_rush_yards"`
	TotalRushAttempts         int `json:"total_rush_attempts"`
	TotalPassCompletions      int `json:"total_pass_completions"`
	TotalPassAttempts         int `json:"total_pass_attempts"`
	TotalTurnovers            int `json:"total_turnovers"`
	TotalSacks                int `json:"total_sacks"`
	TotalThirdDowns           int `json:"total_third_downs"`
	TotalThirdDownConversions int `json:"total_third_down_conversions"`
	TotalFirstDowns           int `json:"total_first_downs"`
	TotalDrives               int `json:"total_drives"`
	TotalOffensivePoints      int `json:"total_offensive_points"`
	TotalRedZoneTrips         int `json:"total_redzone_trips"`
	TotalRedZoneTDs           int `json:"total_redzone_tds"`
	TotalPenaltyYards         int `json:"total_penalty_yards"`

	// Success rate breakdown by down.
	FirstDownSuccessfulPlays  int `json:"first_down_successful_plays"`
	FirstDownTotalPlays       int `json:"first_down_total_plays"`
	SecondDownSuccessfulPlays int `json:"second_down_successful_plays"`
	SecondDownTotalPlays      int `json:"second_down_total_plays"`
	ThirdDownSuccessfulPlays  int `json:"third_down_successful_plays"`
	ThirdDownTotalPlays       int `json:"third_down_total_plays"`

	// Scoring breakdown behind points per drive.
	TotalTouchdowns          int `json:"total_touchdowns"`
	TotalExtraPoints         int `json:"total_extra_points"`
	TotalTwoPointConversions int `json:"total_two_point_conversions"`
	TotalFieldGoals          int `json:"total_field_goals"`

	// Turnover breakdown.
	TotalInterceptions int `json:"total_interceptions"`
	TotalFumblesLost   int `json:"total_fumbles_lost"`

	// First down breakdown.
	TotalFirstDownsRush    int `json:"total_first_downs_rush"`
	TotalFirstDownsPass    int `json:"total_first_downs_pass"`
	TotalFirstDownsPenalty int `json:"total_first_downs_penalty"`

	// Third down conversion breakdown by play type.
	TotalThirdDownRushConversions int `json:"total_third_down_rush_conversions"`
	TotalThirdDownPassConversions int `json:"total_third_down_pass_conversions"`

	// Red zone outcome breakdown.
	TotalRedZoneFieldGoals int `json:"total_redzone_field_goals"`
	TotalRedZoneFailed     int `json:"total_redzone_failed"`
}

// IsEmpty reports whether the season line carries no games.
func (s SeasonStats) IsEmpty() bool {
	return s.GamesPlayed == 0
}
