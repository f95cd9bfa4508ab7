package play

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func rushPlay(yards float64) Play {
	return Play{GameID: "g1", PosTeam: "KC", RushAttempt: true, YardsGained: fptr(yards), PlayType: "run"}
}

func passPlay(yards float64, complete bool) Play {
	return Play{GameID: "g1", PosTeam: "KC", PassAttempt: true, CompletePass: complete, YardsGained: fptr(yards), PlayType: "pass"}
}

func kneelPlay() Play {
	p := rushPlay(-1)
	p.PlayType = PlayTypeQBKneel
	return p
}

func spikePlay() Play {
	p := passPlay(0, false)
	p.PlayType = PlayTypeQBSpike
	return p
}

func TestFilter_OffensivePlays(t *testing.T) {
	f := NewFilter()
	tbl := NewTable([]Play{
		rushPlay(5),
		passPlay(12, true),
		{GameID: "g1", PassAttempt: true, TwoPointAttempt: true, YardsGained: fptr(2)}, // 2pt excluded
		{GameID: "g1", RushAttempt: true},                                              // no yardage recorded
		{GameID: "g1", PlayType: "punt", YardsGained: fptr(40)},                        // not rush or pass
	})

	got := f.OffensivePlays(tbl)
	assert.Equal(t, 2, got.Len())
}

func TestFilter_FailsOpenOnMissingColumns(t *testing.T) {
	f := NewFilter()
	tbl := Table{
		Plays:   []Play{rushPlay(5), passPlay(8, true)},
		Columns: NewColumnSet(ColRushAttempt, ColPassAttempt), // no two_point_attempt, yards_gained
	}

	assert.True(t, f.OffensivePlays(tbl).IsEmpty())
	assert.True(t, f.PassingPlays(tbl).IsEmpty())
	assert.True(t, f.ThirdDownAttempts(tbl).IsEmpty())
}

func TestFilter_PassingExcludesSacks(t *testing.T) {
	f := NewFilter()
	sacked := passPlay(-7, false)
	sacked.Sack = true
	tbl := NewTable([]Play{passPlay(10, true), passPlay(0, false), sacked})

	got := f.PassingPlays(tbl)
	assert.Equal(t, 2, got.Len())
}

func TestFilter_ThirdDownAttempts(t *testing.T) {
	f := NewFilter()
	third := rushPlay(3)
	third.Down = iptr(3)
	first := rushPlay(4)
	first.Down = iptr(1)
	thirdPass := passPlay(9, true)
	thirdPass.Down = iptr(3)
	noDown := rushPlay(2)

	tbl := NewTable([]Play{third, first, thirdPass, noDown})
	got := f.ThirdDownAttempts(tbl)
	assert.Equal(t, 2, got.Len())
}

func TestFilter_OffensiveTouchdowns_Attribution(t *testing.T) {
	f := NewFilter()
	offensiveTD := passPlay(25, true)
	offensiveTD.Touchdown = true
	offensiveTD.TDTeam = "KC"

	// Pick-six: KC had possession, but the defense scored
	pickSix := passPlay(0, false)
	pickSix.Touchdown = true
	pickSix.TDTeam = "BUF"
	pickSix.Interception = true

	tbl := NewTable([]Play{offensiveTD, pickSix})
	got := f.OffensiveTouchdowns(tbl, shared.TeamAbbr("KC"))
	assert.Equal(t, 1, got.Len())
	assert.Equal(t, "KC", got.Plays[0].TDTeam)
}

func TestFilter_OffensiveTouchdowns_FallbackHeuristic(t *testing.T) {
	f := NewFilter()
	positiveTD := rushPlay(12)
	positiveTD.Touchdown = true
	zeroYardOffensive := passPlay(0, true)
	zeroYardOffensive.Touchdown = true
	zeroYardReturn := Play{GameID: "g1", Touchdown: true, YardsGained: fptr(0)}

	tbl := Table{
		Plays: []Play{positiveTD, zeroYardOffensive, zeroYardReturn},
		// No td_team column: heuristic path
		Columns: NewColumnSet(ColTouchdown, ColYardsGained, ColRushAttempt, ColPassAttempt),
	}
	got := f.OffensiveTouchdowns(tbl, shared.TeamAbbr("KC"))
	assert.Equal(t, 2, got.Len())
}

func TestApplyConfiguration_RemovesWhenBothExcluded(t *testing.T) {
	tbl := NewTable([]Play{rushPlay(5), kneelPlay(), spikePlay()})

	cfg := shared.AnalyticsCleanConfig()
	got := ApplyConfiguration(tbl, cfg)
	assert.Equal(t, 1, got.Len())

	// Original table untouched
	assert.Equal(t, 3, tbl.Len())
}

func TestApplyConfiguration_TagsContextExclusions(t *testing.T) {
	tbl := NewTable([]Play{kneelPlay(), spikePlay()})

	cfg := shared.DefaultAnalysisConfig()
	cfg.IncludeQBKneelsRushing = false
	cfg.IncludeSpikesSuccessRate = false

	got := ApplyConfiguration(tbl, cfg)
	assert.Equal(t, 2, got.Len())
	assert.Equal(t, ExcludeRushing, got.Plays[0].KneelExclusion)
	assert.Equal(t, ExcludeSuccessRate, got.Plays[1].SpikeExclusion)

	// Tagged kneel is dropped by the rushing filter but kept elsewhere
	f := NewFilter()
	assert.True(t, f.RushingPlays(got.withPlays(got.Plays[:1])).IsEmpty())
	assert.Equal(t, 1, f.OffensivePlays(got.withPlays(got.Plays[:1])).Len())
}

func TestApplyConfiguration_DefaultKeepsEverything(t *testing.T) {
	tbl := NewTable([]Play{rushPlay(5), kneelPlay(), spikePlay()})
	got := ApplyConfiguration(tbl, shared.DefaultAnalysisConfig())
	assert.Equal(t, 3, got.Len())
	for _, p := range got.Plays {
		assert.Equal(t, ExcludeNone, p.KneelExclusion)
		assert.Equal(t, ExcludeNone, p.SpikeExclusion)
	}
}

func TestTable_ForSeasonType(t *testing.T) {
	reg := rushPlay(5)
	reg.SeasonType = "REG"
	post := rushPlay(7)
	post.SeasonType = "POST"
	tbl := NewTable([]Play{reg, post})

	assert.Equal(t, 2, tbl.ForSeasonType(shared.SeasonTypeAll).Len())
	assert.Equal(t, 1, tbl.ForSeasonType(shared.SeasonTypeRegular).Len())
	assert.Equal(t, 1, tbl.ForSeasonType(shared.SeasonTypePostseason).Len())

	// Without the season_type column the table passes through unchanged
	partial := Table{Plays: tbl.Plays, Columns: NewColumnSet(ColGameID)}
	assert.Equal(t, 2, partial.ForSeasonType(shared.SeasonTypeRegular).Len())
}

func TestTable_GameIDsAndTeams(t *testing.T) {
	p1 := rushPlay(5)
	p2 := rushPlay(3)
	p2.GameID = "g2"
	p2.PosTeam = "BUF"
	p3 := rushPlay(1)

	tbl := NewTable([]Play{p1, p2, p3})
	assert.Equal(t, []string{"g1", "g2"}, tbl.GameIDs())
	assert.Equal(t, []shared.TeamAbbr{"KC", "BUF"}, tbl.TeamsPresent())
	assert.Equal(t, 2, tbl.ForTeam("KC").Len())
}
