package stats

import "github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"

// Metric names shared by league averaging and rankings.
const (
	MetricAvgYardsPerPlay     = "avg_yards_per_play"
	MetricTurnoversPerGame    = "turnovers_per_game"
	MetricCompletionPct       = "completion_pct"
	MetricRushYPC             = "rush_ypc"
	MetricSacksPerGame        = "sacks_per_game"
	MetricThirdDownPct        = "third_down_pct"
	MetricSuccessRate         = "success_rate"
	MetricFirstDownsPerGame   = "first_downs_per_game"
	MetricPointsPerDrive      = "points_per_drive"
	MetricRedZoneTDPct        = "redzone_td_pct"
	MetricPenaltyYardsPerGame = "penalty_yards_per_game"
)

// AveragingMetrics are the per-game rates league averages are computed over.
var AveragingMetrics = []string{
	MetricAvgYardsPerPlay, MetricTurnoversPerGame, MetricCompletionPct,
	MetricRushYPC, MetricSacksPerGame, MetricThirdDownPct, MetricSuccessRate,
	MetricFirstDownsPerGame, MetricPointsPerDrive, MetricRedZoneTDPct,
	MetricPenaltyYardsPerGame,
}

// MetricValue returns the named per-game rate. The second return is false
// for unknown metric names.
func (s SeasonStats) MetricValue(name string) (float64, bool) {
	switch name {
	case MetricAvgYardsPerPlay:
		return s.AvgYardsPerPlay, true
	case MetricTurnoversPerGame:
		return s.TurnoversPerGame, true
	case MetricCompletionPct:
		return s.CompletionPct, true
	case MetricRushYPC:
		return s.RushYPC, true
	case MetricSacksPerGame:
		return s.SacksPerGame, true
	case MetricThirdDownPct:
		return s.ThirdDownPct, true
	case MetricSuccessRate:
		return s.SuccessRate, true
	case MetricFirstDownsPerGame:
		return s.FirstDownsPerGame, true
	case MetricPointsPerDrive:
		return s.PointsPerDrive, true
	case MetricRedZoneTDPct:
		return s.RedZoneTDPct, true
	case MetricPenaltyYardsPerGame:
		return s.PenaltyYardsPerGame, true
	default:
		return 0, false
	}
}

// LeagueAverages computes the arithmetic mean of each averaging metric
// across the supplied teams. An empty input returns an empty map.
func LeagueAverages(league map[shared.TeamAbbr]SeasonStats) map[string]float64 {
	if len(league) == 0 {
		return map[string]float64{}
	}

	out := make(map[string]float64, len(AveragingMetrics))
	for _, metric := range AveragingMetrics {
		sum := 0.0
		n := 0
		for _, s := range league {
			v, ok := s.MetricValue(metric)
			if !ok {
				continue
			}
			sum += v
			n++
		}
		if n > 0 {
			out[metric] = sum / float64(n)
		} else {
			out[metric] = 0
		}
	}
	return out
}
