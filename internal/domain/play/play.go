// Package play contains the play-by-play data model and the filters that
// select plays for each statistical context. A season of data is represented
// as a Table: a slice of typed Play records plus the set of columns the
// upstream source actually provided, so that filters can fail open when a
// source omits a column instead of producing wrong numbers.
package play

import (
	"time"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
)

// Column names as published in nflverse play-by-play data.
const (
	ColGameID             = "game_id"
	ColDrive              = "drive"
	ColPosTeam            = "posteam"
	ColDefTeam            = "defteam"
	ColHomeTeam           = "home_team"
	ColAwayTeam           = "away_team"
	ColSeasonType         = "season_type"
	ColWeek               = "week"
	ColDown               = "down"
	ColYdsToGo            = "ydstogo"
	ColYardsGained        = "yards_gained"
	ColYardline100        = "yardline_100"
	ColPlayType           = "play_type"
	ColRushAttempt        = "rush_attempt"
	ColPassAttempt        = "pass_attempt"
	ColTwoPointAttempt    = "two_point_attempt"
	ColSack               = "sack"
	ColCompletePass       = "complete_pass"
	ColInterception       = "interception"
	ColFumbleLost         = "fumble_lost"
	ColTouchdown          = "touchdown"
	ColTDTeam             = "td_team"
	ColFirstDown          = "first_down"
	ColFirstDownRush      = "first_down_rush"
	ColFirstDownPass      = "first_down_pass"
	ColFirstDownPenalty   = "first_down_penalty"
	ColExtraPointResult   = "extra_point_result"
	ColTwoPointConvResult = "two_point_conv_result"
	ColFieldGoalResult    = "field_goal_result"
	ColPenaltyTeam        = "penalty_team"
	ColPenaltyYards       = "penalty_yards"
	ColPosTeamScorePost   = "posteam_score_post"
	ColDefTeamScorePost   = "defteam_score_post"
)

// Play type values of interest.
const (
	PlayTypeQBKneel = "qb_kneel"
	PlayTypeQBSpike = "qb_spike"
)

// Result string values of interest.
const (
	ExtraPointGood  = "good"
	TwoPointSuccess = "success"
	FieldGoalMade   = "made"
)

// Exclusion marks a play as excluded from a specific metric context while
// remaining visible to the others. Exclusions are attached by
// ApplyConfiguration, never by the data source.
type Exclusion string

const (
	ExcludeNone        Exclusion = ""
	ExcludeRushing     Exclusion = "exclude_rushing"
	ExcludeCompletion  Exclusion = "exclude_completion"
	ExcludeSuccessRate Exclusion = "exclude_success_rate"
)

// Play is a single play-by-play record. Fields that can be absent in the
// source data (kickoffs have no down, timeouts no yardage) are pointers.
type Play struct {
	GameID     string
	Drive      *int
	PosTeam    string
	DefTeam    string
	HomeTeam   string
	AwayTeam   string
	SeasonType string
	Week       int

	Down        *int
	YdsToGo     int
	YardsGained *float64
	Yardline100 *float64
	PlayType    string

	RushAttempt     bool
	PassAttempt     bool
	TwoPointAttempt bool
	Sack            bool
	CompletePass    bool
	Interception    bool
	FumbleLost      bool

	Touchdown        bool
	TDTeam           string
	FirstDown        bool
	FirstDownRush    bool
	FirstDownPass    bool
	FirstDownPenalty bool

	ExtraPointResult   string
	TwoPointConvResult string
	FieldGoalResult    string

	PenaltyTeam  string
	PenaltyYards float64

	PosTeamScorePost *float64
	DefTeamScorePost *float64

	// Configuration exclusion tags, orthogonal per play type.
	KneelExclusion Exclusion
	SpikeExclusion Exclusion
}

// IsKneel reports whether the play is a QB kneel.
func (p Play) IsKneel() bool {
	return p.PlayType == PlayTypeQBKneel
}

// IsSpike reports whether the play is a clock-stopping spike.
func (p Play) IsSpike() bool {
	return p.PlayType == PlayTypeQBSpike
}

// HasYards reports whether the yardage field was present for this play.
func (p Play) HasYards() bool {
	return p.YardsGained != nil
}

// Yards returns the gained yards, or 0 when absent.
func (p Play) Yards() float64 {
	if p.YardsGained == nil {
		return 0
	}
	return *p.YardsGained
}

// ColumnSet tracks which columns the upstream source provided.
type ColumnSet map[string]struct{}

// NewColumnSet builds a ColumnSet from column names.
func NewColumnSet(cols ...string) ColumnSet {
	cs := make(ColumnSet, len(cols))
	for _, c := range cols {
		cs[c] = struct{}{}
	}
	return cs
}

// Has reports whether a single column is present.
func (cs ColumnSet) Has(col string) bool {
	_, ok := cs[col]
	return ok
}

// HasAll reports whether every listed column is present.
func (cs ColumnSet) HasAll(cols ...string) bool {
	for _, c := range cols {
		if !cs.Has(c) {
			return false
		}
	}
	return true
}

// Clone returns a copy of the column set.
func (cs ColumnSet) Clone() ColumnSet {
	out := make(ColumnSet, len(cs))
	for c := range cs {
		out[c] = struct{}{}
	}
	return out
}

// StandardColumns returns the full column set a complete play-by-play source
// provides. Sources with partial data construct their own subset.
func StandardColumns() ColumnSet {
	return NewColumnSet(
		ColGameID, ColDrive, ColPosTeam, ColDefTeam, ColHomeTeam, ColAwayTeam,
		ColSeasonType, ColWeek, ColDown, ColYdsToGo, ColYardsGained,
		ColYardline100, ColPlayType, ColRushAttempt, ColPassAttempt,
		ColTwoPointAttempt, ColSack, ColCompletePass, ColInterception,
		ColFumbleLost, ColTouchdown, ColTDTeam, ColFirstDown, ColFirstDownRush,
		ColFirstDownPass, ColFirstDownPenalty, ColExtraPointResult,
		ColTwoPointConvResult, ColFieldGoalResult, ColPenaltyTeam,
		ColPenaltyYards, ColPosTeamScorePost, ColDefTeamScorePost,
	)
}

// Table holds a set of plays plus the columns the source provided.
type Table struct {
	Plays   []Play
	Columns ColumnSet
}

// NewTable creates a Table with the standard column set.
func NewTable(plays []Play) Table {
	return Table{Plays: plays, Columns: StandardColumns()}
}

// Len returns the number of plays.
func (t Table) Len() int {
	return len(t.Plays)
}

// IsEmpty reports whether the table has no plays.
func (t Table) IsEmpty() bool {
	return len(t.Plays) == 0
}

// empty returns a zero-row table preserving the column set.
func (t Table) empty() Table {
	return Table{Plays: nil, Columns: t.Columns}
}

// withPlays returns a table with the given rows and this table's columns.
func (t Table) withPlays(plays []Play) Table {
	return Table{Plays: plays, Columns: t.Columns}
}

// Select returns the plays matching the predicate.
func (t Table) Select(keep func(Play) bool) Table {
	if t.IsEmpty() {
		return t
	}
	out := make([]Play, 0, len(t.Plays))
	for _, p := range t.Plays {
		if keep(p) {
			out = append(out, p)
		}
	}
	return t.withPlays(out)
}

// GameIDs returns the distinct game IDs in first-seen order.
func (t Table) GameIDs() []string {
	seen := make(map[string]struct{}, 32)
	var out []string
	for _, p := range t.Plays {
		if _, ok := seen[p.GameID]; ok {
			continue
		}
		seen[p.GameID] = struct{}{}
		out = append(out, p.GameID)
	}
	return out
}

// ForGame returns the plays of a single game.
func (t Table) ForGame(gameID string) Table {
	return t.Select(func(p Play) bool { return p.GameID == gameID })
}

// ForTeam returns the plays where the team had possession.
func (t Table) ForTeam(abbr shared.TeamAbbr) Table {
	team := abbr.String()
	return t.Select(func(p Play) bool { return p.PosTeam == team })
}

// ForTeamGames returns the plays of every game the team appeared in with
// possession, both teams' possessions included. Defensive analysis needs the
// opponents' plays, which ForTeam drops.
func (t Table) ForTeamGames(abbr shared.TeamAbbr) Table {
	team := abbr.String()
	games := make(map[string]struct{}, 24)
	for _, p := range t.Plays {
		if p.PosTeam == team {
			games[p.GameID] = struct{}{}
		}
	}
	return t.Select(func(p Play) bool {
		_, ok := games[p.GameID]
		return ok
	})
}

// ForSeasonType narrows the table to the selected part of the season.
// Requires the season_type column; without it the full table is returned
// so that ALL-games analysis still works on partial sources.
func (t Table) ForSeasonType(st shared.SeasonType) Table {
	if st == shared.SeasonTypeAll || !t.Columns.Has(ColSeasonType) {
		return t
	}
	return t.Select(func(p Play) bool { return st.Includes(p.SeasonType) })
}

// TeamsPresent returns the distinct possession teams in the table.
func (t Table) TeamsPresent() []shared.TeamAbbr {
	seen := make(map[string]struct{}, 32)
	var out []shared.TeamAbbr
	for _, p := range t.Plays {
		if p.PosTeam == "" {
			continue
		}
		if _, ok := seen[p.PosTeam]; ok {
			continue
		}
		seen[p.PosTeam] = struct{}{}
		out = append(out, shared.TeamAbbr(p.PosTeam))
	}
	return out
}

// Snapshot couples a table with the time it was fetched, for freshness
// reporting.
type Snapshot struct {
	Table     Table
	FetchedAt time.Time
	Source    string
}
