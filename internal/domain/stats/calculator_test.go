package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/play"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

// fixtureGame builds one KC home game against BUF with a touchdown drive,
// a turnover drive and a field goal drive. Hand-computed expectations are
// asserted below.
func fixtureGame() play.Table {
	base := play.Play{
		GameID: "2023_01_BUF_KC", PosTeam: "KC", DefTeam: "BUF",
		HomeTeam: "KC", AwayTeam: "BUF", SeasonType: "REG", Week: 1,
	}

	mk := func(mut func(*play.Play)) play.Play {
		p := base
		mut(&p)
		return p
	}

	return play.NewTable([]play.Play{
		mk(func(p *play.Play) { // drive 1: opening rush
			p.Drive, p.Down, p.YdsToGo = iptr(1), iptr(1), 10
			p.RushAttempt, p.YardsGained = true, fptr(5)
		}),
		mk(func(p *play.Play) { // drive 1: completion moving the chains
			p.Drive, p.Down, p.YdsToGo = iptr(1), iptr(2), 5
			p.PassAttempt, p.CompletePass, p.YardsGained = true, true, fptr(12)
			p.FirstDown, p.FirstDownPass = true, true
		}),
		mk(func(p *play.Play) { // drive 1: red zone touchdown pass
			p.Drive, p.Down, p.YdsToGo = iptr(1), iptr(1), 10
			p.PassAttempt, p.CompletePass, p.YardsGained = true, true, fptr(25)
			p.Touchdown, p.TDTeam = true, "KC"
			p.FirstDown, p.FirstDownPass = true, true
			p.Yardline100 = fptr(20)
		}),
		mk(func(p *play.Play) { // drive 1: extra point
			p.Drive = iptr(1)
			p.ExtraPointResult = play.ExtraPointGood
		}),
		mk(func(p *play.Play) { // drive 2: stuffed third and short
			p.Drive, p.Down, p.YdsToGo = iptr(2), iptr(3), 2
			p.RushAttempt, p.YardsGained = true, fptr(1)
		}),
		mk(func(p *play.Play) { // drive 2: intercepted, fumbled back, one turnover
			p.Drive, p.Down, p.YdsToGo = iptr(2), iptr(3), 8
			p.PassAttempt, p.YardsGained = true, fptr(0)
			p.Interception, p.FumbleLost = true, true
		}),
		mk(func(p *play.Play) { // drive 3: short gain inside the 20
			p.Drive, p.Down, p.YdsToGo = iptr(3), iptr(1), 10
			p.RushAttempt, p.YardsGained = true, fptr(3)
			p.Yardline100 = fptr(18)
		}),
		mk(func(p *play.Play) { // drive 3: settled for a field goal
			p.Drive = iptr(3)
			p.FieldGoalResult = play.FieldGoalMade
			p.Yardline100 = fptr(15)
		}),
		mk(func(p *play.Play) { // offsetting flag on the offense, final score posted
			p.PenaltyTeam, p.PenaltyYards = "KC", 10
			p.PosTeamScorePost, p.DefTeamScorePost = fptr(27), fptr(20)
		}),
	})
}

func TestPlaySucceeded_DownThresholds(t *testing.T) {
	// The same four-yard gain on ten to go flips with the down: on first
	// down 4 meets the 40% threshold exactly, on second it needs 6, on
	// third the full 10.
	gain := func(down int) play.Play {
		return play.Play{Down: iptr(down), YdsToGo: 10, YardsGained: fptr(4)}
	}

	assert.True(t, playSucceeded(gain(1)))
	assert.False(t, playSucceeded(gain(2)))
	assert.False(t, playSucceeded(gain(3)))
}

func TestCalculator_SeasonStats(t *testing.T) {
	c := NewCalculator(nil)
	season, _ := shared.NewSeasonYear(2023)

	s := c.CalculateSeasonStats(fixtureGame(), "KC", season)

	assert.Equal(t, 1, s.GamesPlayed)
	assert.Equal(t, 6, s.TotalPlays)
	assert.Equal(t, 46, s.TotalYards)
	assert.InDelta(t, 46.0/6.0, s.AvgYardsPerPlay, 1e-9)

	assert.Equal(t, 3, s.TotalPassAttempts)
	assert.Equal(t, 2, s.TotalPassCompletions)
	assert.InDelta(t, 200.0/3.0, s.CompletionPct, 1e-9)

	assert.Equal(t, 3, s.TotalRushAttempts)
	assert.Equal(t, 9, s.TotalRushYards)
	assert.InDelta(t, 3.0, s.RushYPC, 1e-9)

	assert.Equal(t, 1, s.TotalTurnovers)
	assert.Equal(t, 1, s.TotalInterceptions)
	assert.Equal(t, 1, s.TotalFumblesLost)
	assert.InDelta(t, 1.0, s.TurnoversPerGame, 1e-9)

	assert.Equal(t, 2, s.TotalThirdDowns)
	assert.Equal(t, 0, s.TotalThirdDownConversions)
	assert.InDelta(t, 0.0, s.ThirdDownPct, 1e-9)

	assert.Equal(t, 2, s.TotalFirstDowns)
	assert.Equal(t, 2, s.TotalFirstDownsPass)
	assert.Equal(t, 0, s.TotalFirstDownsRush)
	assert.InDelta(t, 2.0, s.FirstDownsPerGame, 1e-9)

	assert.InDelta(t, 50.0, s.SuccessRate, 1e-9)
	assert.Equal(t, 2, s.FirstDownSuccessfulPlays)
	assert.Equal(t, 3, s.FirstDownTotalPlays)
	assert.Equal(t, 1, s.SecondDownSuccessfulPlays)
	assert.Equal(t, 1, s.SecondDownTotalPlays)
	assert.Equal(t, 0, s.ThirdDownSuccessfulPlays)
	assert.Equal(t, 2, s.ThirdDownTotalPlays)

	assert.Equal(t, 0, s.TotalSacks)
	assert.Equal(t, 10, s.TotalPenaltyYards)
	assert.InDelta(t, 10.0, s.PenaltyYardsPerGame, 1e-9)

	assert.Equal(t, 3, s.TotalDrives)
	assert.Equal(t, 1, s.TotalTouchdowns)
	assert.Equal(t, 1, s.TotalExtraPoints)
	assert.Equal(t, 1, s.TotalFieldGoals)
	assert.Equal(t, 10, s.TotalOffensivePoints)
	assert.InDelta(t, 10.0/3.0, s.PointsPerDrive, 1e-9)

	assert.Equal(t, 2, s.TotalRedZoneTrips)
	assert.Equal(t, 1, s.TotalRedZoneTDs)
	assert.Equal(t, 1, s.TotalRedZoneFieldGoals)
	assert.Equal(t, 0, s.TotalRedZoneFailed)
	assert.InDelta(t, 50.0, s.RedZoneTDPct, 1e-9)
}

func TestCalculator_SeasonStatsEmptyData(t *testing.T) {
	c := NewCalculator(nil)
	season, _ := shared.NewSeasonYear(2023)

	s := c.CalculateSeasonStats(play.NewTable(nil), "KC", season)

	assert.True(t, s.IsEmpty())
	assert.Equal(t, shared.TeamAbbr("KC"), s.Team)
	assert.Equal(t, season, s.Season)
	assert.Zero(t, s.TotalPlays)
}

func TestCalculator_SeasonStatsMissingGameIDColumn(t *testing.T) {
	c := NewCalculator(nil)
	season, _ := shared.NewSeasonYear(2023)

	tbl := play.Table{
		Plays:   fixtureGame().Plays,
		Columns: play.NewColumnSet(play.ColRushAttempt, play.ColYardsGained),
	}

	assert.True(t, c.CalculateSeasonStats(tbl, "KC", season).IsEmpty())
}

func TestCalculator_GameStats(t *testing.T) {
	c := NewCalculator(nil)

	games := c.CalculateGameStats(fixtureGame(), "KC")

	assert.Len(t, games, 1)
	g := games[0]
	assert.Equal(t, "2023_01_BUF_KC", g.GameID)
	assert.Equal(t, shared.TeamAbbr("BUF"), g.Opponent)
	assert.Equal(t, LocationHome, g.Location)
	assert.Equal(t, 6, g.TotalPlays)
	assert.Equal(t, 46, g.TotalYards)
	assert.Equal(t, 1, g.Turnovers)
	assert.Equal(t, 10, g.PenaltyYards)
	assert.InDelta(t, 10.0/3.0, g.PointsPerDrive, 1e-9)
}

func TestCalculator_GameStatsAwayFallbackOpponent(t *testing.T) {
	c := NewCalculator(nil)

	plays := []play.Play{{
		GameID: "g1", PosTeam: "SF", HomeTeam: "SEA", AwayTeam: "SF",
		RushAttempt: true, YardsGained: fptr(4),
	}}
	tbl := play.Table{
		Plays: plays,
		Columns: play.NewColumnSet(
			play.ColGameID, play.ColPosTeam, play.ColHomeTeam, play.ColAwayTeam,
			play.ColRushAttempt, play.ColPassAttempt, play.ColTwoPointAttempt,
			play.ColYardsGained,
		),
	}

	games := c.CalculateGameStats(tbl, "SF")
	assert.Len(t, games, 1)
	assert.Equal(t, shared.TeamAbbr("SEA"), games[0].Opponent)
	assert.Equal(t, LocationAway, games[0].Location)
}

func TestCalculator_TeamRecord(t *testing.T) {
	c := NewCalculator(nil)

	rec := c.CalculateTeamRecord(fixtureGame(), "KC")

	assert.NotNil(t, rec)
	assert.Equal(t, 1, rec.RegularSeasonWins)
	assert.Equal(t, 0, rec.RegularSeasonLosses)
	assert.Equal(t, 0, rec.RegularSeasonTies)
}

func TestCalculator_TeamRecordNoData(t *testing.T) {
	c := NewCalculator(nil)
	assert.Nil(t, c.CalculateTeamRecord(play.NewTable(nil), "KC"))
}

func TestCalculator_TeamRecordWithoutScoreColumns(t *testing.T) {
	c := NewCalculator(nil)

	tbl := play.Table{
		Plays:   []play.Play{{GameID: "g1", RushAttempt: true, YardsGained: fptr(4)}},
		Columns: play.NewColumnSet(play.ColGameID, play.ColRushAttempt, play.ColYardsGained),
	}

	rec := c.CalculateTeamRecord(tbl, "KC")
	assert.NotNil(t, rec)
	assert.Equal(t, 0, rec.TotalGames())
}

func TestLeagueAverages(t *testing.T) {
	league := map[shared.TeamAbbr]SeasonStats{
		"KC":  {AvgYardsPerPlay: 6.0, TurnoversPerGame: 1.0},
		"BUF": {AvgYardsPerPlay: 5.0, TurnoversPerGame: 2.0},
	}

	avgs := LeagueAverages(league)
	assert.InDelta(t, 5.5, avgs[MetricAvgYardsPerPlay], 1e-9)
	assert.InDelta(t, 1.5, avgs[MetricTurnoversPerGame], 1e-9)
	assert.Len(t, avgs, len(AveragingMetrics))

	assert.Empty(t, LeagueAverages(nil))
}

func TestSeasonStats_MetricValue(t *testing.T) {
	s := SeasonStats{RushYPC: 4.4}

	v, ok := s.MetricValue(MetricRushYPC)
	assert.True(t, ok)
	assert.InDelta(t, 4.4, v, 1e-9)

	_, ok = s.MetricValue("passer_rating")
	assert.False(t, ok)
}
