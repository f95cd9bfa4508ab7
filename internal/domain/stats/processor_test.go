package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/play"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/toer"
)

func newTestProcessor(t *testing.T) *GameProcessor {
	t.Helper()
	engine, err := toer.NewEngine()
	assert.NoError(t, err)
	return NewGameProcessor(engine, nil)
}

func processorFixture() play.Table {
	base := play.Play{
		GameID: "2023_05_SF_SEA", HomeTeam: "SEA", AwayTeam: "SF",
		SeasonType: "REG", Week: 5,
	}

	home := base
	home.PosTeam, home.DefTeam = "SEA", "SF"
	home.Drive, home.Down, home.YdsToGo = iptr(1), iptr(1), 10
	home.RushAttempt, home.YardsGained = true, fptr(5)

	away := base
	away.PosTeam, away.DefTeam = "SF", "SEA"
	away.Drive, away.Down, away.YdsToGo = iptr(2), iptr(1), 10
	away.PassAttempt, away.CompletePass, away.YardsGained = true, true, fptr(10)
	away.FirstDown, away.FirstDownPass = true, true

	return play.NewTable([]play.Play{home, away})
}

func TestGameProcessor_ProcessAllGames(t *testing.T) {
	g := newTestProcessor(t)

	results := g.ProcessAllGames(processorFixture())

	assert.Len(t, results, 2)
	assert.Len(t, results["SEA"], 1)
	assert.Len(t, results["SF"], 1)

	res := results["SEA"][0]
	assert.Equal(t, results["SF"][0], res, "both teams share the same game result")
	assert.Equal(t, "2023_05_SF_SEA", res.GameID)
	assert.Equal(t, shared.TeamAbbr("SEA"), res.HomeTeam)
	assert.Equal(t, shared.TeamAbbr("SF"), res.AwayTeam)
	assert.Equal(t, 5, res.Week)
	assert.Equal(t, "REG", res.SeasonType)

	// Home line: one 5-yard rush. YPP 5.0 scores 0, clean turnover and sack
	// lines score 10 each, rush YPC 5.0 scores 10, a perfect success rate
	// scores 10, zero penalty yards adds 5.
	assert.Equal(t, 1, res.HomeStats.TotalPlays)
	assert.Equal(t, 5, res.HomeStats.TotalYards)
	assert.InDelta(t, 5.0, res.HomeStats.RushYPC, 1e-9)
	assert.InDelta(t, 100.0, res.HomeStats.SuccessRate, 1e-9)
	assert.InDelta(t, 45.0, res.HomeStats.TOER, 1e-9)

	// Away line: one 10-yard completion. YPP 10.0 and a 100% completion
	// rate push the rating to 55.
	assert.Equal(t, 1, res.AwayStats.TotalPlays)
	assert.InDelta(t, 100.0, res.AwayStats.CompletionPct, 1e-9)
	assert.Equal(t, 1, res.AwayStats.FirstDowns)
	assert.InDelta(t, 55.0, res.AwayStats.TOER, 1e-9)
}

func TestGameProcessor_EmptyInput(t *testing.T) {
	g := newTestProcessor(t)

	assert.Empty(t, g.ProcessAllGames(play.NewTable(nil)))

	noGameID := play.Table{
		Plays:   processorFixture().Plays,
		Columns: play.NewColumnSet(play.ColHomeTeam, play.ColAwayTeam),
	}
	assert.Empty(t, g.ProcessAllGames(noGameID))
}

func TestGameProcessor_SkipsGamesWithoutTeams(t *testing.T) {
	g := newTestProcessor(t)

	tbl := play.NewTable([]play.Play{{GameID: "g1", PosTeam: "KC"}})
	assert.Empty(t, g.ProcessAllGames(tbl))
}

func TestGameProcessor_TeamTOERStats(t *testing.T) {
	g := newTestProcessor(t)

	results := []GameResult{
		{
			HomeTeam: "KC", AwayTeam: "BUF",
			HomeStats: OffensiveStats{TOER: 80},
			AwayStats: OffensiveStats{TOER: 60},
		},
		{
			HomeTeam: "DEN", AwayTeam: "KC",
			HomeStats: OffensiveStats{TOER: 40},
			AwayStats: OffensiveStats{TOER: 70},
		},
	}

	own, allowed := g.TeamTOERStats(results, "KC")
	assert.InDelta(t, 75.0, own, 1e-9)
	assert.InDelta(t, 50.0, allowed, 1e-9)

	own, allowed = g.TeamTOERStats(nil, "KC")
	assert.Zero(t, own)
	assert.Zero(t, allowed)
}
