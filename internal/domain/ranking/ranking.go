// Package ranking orders the league's teams per metric with min-rank tie
// handling: tied values all receive the lowest position in the tie, and the
// next distinct value resumes at its list position.
package ranking

import (
	"fmt"
	"sort"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/stats"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/team"
)

// Metrics lists the ranked metrics in display order.
var Metrics = []string{
	stats.MetricAvgYardsPerPlay,
	stats.MetricRushYPC,
	stats.MetricPointsPerDrive,
	stats.MetricSuccessRate,
	stats.MetricThirdDownPct,
	stats.MetricCompletionPct,
	stats.MetricRedZoneTDPct,
	stats.MetricFirstDownsPerGame,
	stats.MetricTurnoversPerGame,
	stats.MetricSacksPerGame,
	stats.MetricPenaltyYardsPerGame,
}

// lowerIsBetter holds the metrics where a small value ranks first.
var lowerIsBetter = map[string]bool{
	stats.MetricTurnoversPerGame:    true,
	stats.MetricSacksPerGame:        true,
	stats.MetricPenaltyYardsPerGame: true,
}

// LowerIsBetter reports whether a small value of the metric ranks first.
func LowerIsBetter(metric string) bool {
	return lowerIsBetter[metric]
}

// Rankings maps metric name to 1-based rank for one team.
type Rankings map[string]int

// Engine ranks teams from their season lines.
type Engine struct{}

// NewEngine builds a ranking engine.
func NewEngine() *Engine {
	return &Engine{}
}

// CalculateAllRankings ranks every team on every metric in one pass over
// the league. Each metric is sorted once and shared by all teams.
func (e *Engine) CalculateAllRankings(league map[shared.TeamAbbr]stats.SeasonStats) map[shared.TeamAbbr]Rankings {
	perMetric := make(map[string]map[shared.TeamAbbr]int, len(Metrics))
	for _, metric := range Metrics {
		perMetric[metric] = e.ranksForMetric(league, metric)
	}

	out := make(map[shared.TeamAbbr]Rankings, len(league))
	for abbr := range league {
		r := make(Rankings, len(Metrics))
		for _, metric := range Metrics {
			if rank, ok := perMetric[metric][abbr]; ok {
				r[metric] = rank
			}
		}
		out[abbr] = r
	}
	return out
}

// CalculateTeamRankings ranks a single team against the supplied league.
// Returns an empty Rankings when the team is not in the league map.
func (e *Engine) CalculateTeamRankings(abbr shared.TeamAbbr, league map[shared.TeamAbbr]stats.SeasonStats) Rankings {
	if _, ok := league[abbr]; !ok {
		return Rankings{}
	}

	r := make(Rankings, len(Metrics))
	for _, metric := range Metrics {
		if rank, ok := e.ranksForMetric(league, metric)[abbr]; ok {
			r[metric] = rank
		}
	}
	return r
}

func (e *Engine) ranksForMetric(league map[shared.TeamAbbr]stats.SeasonStats, metric string) map[shared.TeamAbbr]int {
	type entry struct {
		abbr  shared.TeamAbbr
		value float64
	}

	entries := make([]entry, 0, len(league))
	for abbr, s := range league {
		v, ok := s.MetricValue(metric)
		if !ok {
			continue
		}
		entries = append(entries, entry{abbr: abbr, value: v})
	}

	asc := lowerIsBetter[metric]
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].value != entries[j].value {
			if asc {
				return entries[i].value < entries[j].value
			}
			return entries[i].value > entries[j].value
		}
		// Deterministic order within ties; the rank is shared anyway.
		return entries[i].abbr < entries[j].abbr
	})

	ranks := make(map[shared.TeamAbbr]int, len(entries))
	currentRank := 1
	for i, en := range entries {
		if i > 0 && en.value != entries[i-1].value {
			currentRank = i + 1
		}
		ranks[en.abbr] = currentRank
	}
	return ranks
}

// Performance rank cutoffs.
const (
	eliteCutoff           = 3
	top25PercentCutoff    = 8
	aboveAverageCutoff    = 16
	bottom25PercentCutoff = 25
	bottom3Cutoff         = 30
)

// PerformanceRank is a rank with display context.
type PerformanceRank struct {
	Rank        int    `json:"rank"`
	TotalTeams  int    `json:"total_teams"`
	Description string `json:"description"`
	Percentile  string `json:"percentile"`
	Color       string `json:"color"`
}

// IsElite reports whether the rank is among the top three.
func (p PerformanceRank) IsElite() bool {
	return p.Rank <= eliteCutoff
}

// IsAboveAverage reports whether the rank is in the top half.
func (p PerformanceRank) IsAboveAverage() bool {
	return p.Rank <= aboveAverageCutoff
}

// NewPerformanceRank classifies a 1-based rank into a labeled tier.
func NewPerformanceRank(rank int) PerformanceRank {
	return newPerformanceRank(rank, team.TotalTeams)
}

func newPerformanceRank(rank, totalTeams int) PerformanceRank {
	pr := PerformanceRank{Rank: rank, TotalTeams: totalTeams}

	topPct := func(cutoff int) string {
		return fmt.Sprintf("Top %d%%", cutoff*100/totalTeams)
	}
	bottomPct := func() string {
		return fmt.Sprintf("Bottom %d%%", (totalTeams-rank+1)*100/totalTeams)
	}

	switch {
	case rank == 1:
		pr.Description, pr.Percentile, pr.Color = "Best in NFL", "100th percentile", "success"
	case rank <= eliteCutoff:
		pr.Description, pr.Percentile, pr.Color = "Elite", topPct(eliteCutoff), "success"
	case rank <= top25PercentCutoff:
		pr.Description, pr.Percentile, pr.Color = "Excellent", topPct(top25PercentCutoff), "success"
	case rank <= aboveAverageCutoff:
		pr.Description, pr.Percentile, pr.Color = "Above Average", topPct(aboveAverageCutoff), "info"
	case rank <= bottom25PercentCutoff:
		pr.Description, pr.Percentile, pr.Color = "Below Average", bottomPct(), "warning"
	case rank >= bottom3Cutoff:
		pr.Description, pr.Percentile, pr.Color = "Poor", bottomPct(), "error"
	default:
		pr.Description, pr.Percentile, pr.Color = "Below Average", bottomPct(), "warning"
	}
	return pr
}
