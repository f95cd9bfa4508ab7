package stats

import (
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/play"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/toer"
	"github.com/gridstats/nfl-efficiency-hub/pkg/logger"
)

// GameResult is a game-centric view holding both teams' offensive lines for
// one game. A team's defensive showing is implicitly its opponent's
// offensive line, so each game is processed exactly once and shared by both
// teams.
type GameResult struct {
	GameID     string          `json:"game_id"`
	HomeTeam   shared.TeamAbbr `json:"home_team"`
	AwayTeam   shared.TeamAbbr `json:"away_team"`
	HomeStats  OffensiveStats  `json:"home_team_offensive_stats"`
	AwayStats  OffensiveStats  `json:"away_team_offensive_stats"`
	Week       int             `json:"week"`
	SeasonType string          `json:"season_type"`
}

// GameProcessor walks a league-wide play-by-play table and rates every
// team's offensive performance in every game.
type GameProcessor struct {
	filter *play.Filter
	engine *toer.Engine
	log    *logger.Logger
}

// NewGameProcessor builds a GameProcessor around the given rating engine.
func NewGameProcessor(engine *toer.Engine, log *logger.Logger) *GameProcessor {
	if log == nil {
		log = logger.Default()
	}
	return &GameProcessor{
		filter: play.NewFilter(),
		engine: engine,
		log:    log.With(logger.Component("stats.processor")),
	}
}

// ProcessAllGames rates both teams in every game and returns the results
// keyed by team, so each GameResult appears under both participants.
func (g *GameProcessor) ProcessAllGames(t play.Table) map[shared.TeamAbbr][]GameResult {
	if t.IsEmpty() {
		return map[shared.TeamAbbr][]GameResult{}
	}
	if !t.Columns.Has(play.ColGameID) {
		g.log.Error("play-by-play table has no game_id column")
		return map[shared.TeamAbbr][]GameResult{}
	}

	gameIDs := t.GameIDs()
	g.log.Info("processing games", logger.Int("games", len(gameIDs)))

	results := make(map[shared.TeamAbbr][]GameResult)
	for _, gameID := range gameIDs {
		game := t.ForGame(gameID)
		if game.IsEmpty() {
			continue
		}

		first := game.Plays[0]
		home := shared.TeamAbbr(first.HomeTeam)
		away := shared.TeamAbbr(first.AwayTeam)
		if home == "" || away == "" {
			continue
		}

		result := GameResult{
			GameID:     gameID,
			HomeTeam:   home,
			AwayTeam:   away,
			HomeStats:  g.teamOffensiveStats(game, home),
			AwayStats:  g.teamOffensiveStats(game, away),
			Week:       first.Week,
			SeasonType: first.SeasonType,
		}
		if result.SeasonType == "" {
			result.SeasonType = shared.SeasonTypeRegular.String()
		}

		results[home] = append(results[home], result)
		results[away] = append(results[away], result)
	}

	g.log.Info("processed games", logger.Int("teams", len(results)))
	return results
}

// TeamTOERStats averages a team's own rating and its opponents' ratings
// over the given results. The second value is the team's "TOER allowed".
func (g *GameProcessor) TeamTOERStats(results []GameResult, abbr shared.TeamAbbr) (float64, float64) {
	if len(results) == 0 {
		return 0, 0
	}

	var own, allowed float64
	for _, game := range results {
		if game.HomeTeam == abbr {
			own += game.HomeStats.TOER
			allowed += game.AwayStats.TOER
		} else {
			own += game.AwayStats.TOER
			allowed += game.HomeStats.TOER
		}
	}

	n := float64(len(results))
	return own / n, allowed / n
}

// teamOffensiveStats rates one team's offense in one game. The per-game path
// deliberately uses lighter formulas than the season calculator: turnovers
// are summed rather than de-duplicated and drive points skip two-point
// conversions, matching the game-log methodology.
func (g *GameProcessor) teamOffensiveStats(game play.Table, abbr shared.TeamAbbr) OffensiveStats {
	teamPlays := game.ForTeam(abbr)

	offensive := g.filter.OffensivePlays(teamPlays)
	if offensive.IsEmpty() {
		return OffensiveStats{}
	}

	totalYards := int(sumYards(offensive))
	totalPlays := offensive.Len()
	ypp := float64(totalYards) / float64(totalPlays)

	s := OffensiveStats{
		YardsPerPlay: ypp,
		TotalYards:   totalYards,
		TotalPlays:   totalPlays,
	}

	g.fillOffensiveStats(teamPlays, abbr, &s)

	s.TOER = g.engine.Calculate(toer.Inputs{
		YardsPerPlay:   s.YardsPerPlay,
		Turnovers:      s.Turnovers,
		CompletionPct:  s.CompletionPct,
		RushYPC:        s.RushYPC,
		Sacks:          s.Sacks,
		ThirdDownPct:   s.ThirdDownPct,
		SuccessRate:    s.SuccessRate,
		FirstDowns:     float64(s.FirstDowns),
		PointsPerDrive: s.PointsPerDrive,
		RedZoneTDPct:   s.RedZoneTDPct,
		PenaltyYards:   s.PenaltyYards,
	})

	return s
}

func (g *GameProcessor) fillOffensiveStats(teamPlays play.Table, abbr shared.TeamAbbr, s *OffensiveStats) {
	offensive := g.filter.OffensivePlays(teamPlays)
	passing := g.filter.PassingPlays(teamPlays)
	rushing := g.filter.RushingPlays(teamPlays)
	thirdDowns := g.filter.ThirdDownAttempts(teamPlays)

	for _, p := range teamPlays.Plays {
		if p.Interception {
			s.Turnovers++
		}
		if p.FumbleLost {
			s.Turnovers++
		}
		if p.Sack {
			s.Sacks++
		}
	}

	if passing.Len() > 0 {
		completions := 0
		for _, p := range passing.Plays {
			if p.CompletePass {
				completions++
			}
		}
		s.CompletionPct = percentage(completions, passing.Len())
	}

	if rushing.Len() > 0 {
		s.RushYPC = sumYards(rushing) / float64(rushing.Len())
	}

	if thirdDowns.Len() > 0 && thirdDowns.Columns.HasAll(play.ColFirstDown, play.ColTouchdown) {
		conversions := 0
		for _, p := range thirdDowns.Plays {
			if p.FirstDown || p.Touchdown {
				conversions++
			}
		}
		s.ThirdDownPct = percentage(conversions, thirdDowns.Len())
	}

	if offensive.Len() > 0 && offensive.Columns.HasAll(play.ColDown, play.ColYdsToGo) {
		successful := 0
		for _, p := range offensive.Plays {
			if playSucceeded(p) {
				successful++
			}
		}
		s.SuccessRate = percentage(successful, offensive.Len())
	}

	if teamPlays.Columns.HasAll(play.ColFirstDownRush, play.ColFirstDownPass) {
		for _, p := range teamPlays.Plays {
			if p.FirstDownRush || p.FirstDownPass || p.FirstDownPenalty {
				s.FirstDowns++
			}
		}
	}

	s.PointsPerDrive = simplePointsPerDrive(teamPlays)
	s.RedZoneTDPct = simpleRedZoneTDPct(teamPlays)

	if teamPlays.Columns.HasAll(play.ColPenaltyTeam, play.ColPenaltyYards) {
		for _, p := range teamPlays.Plays {
			if p.PenaltyTeam == string(abbr) && p.PosTeam == string(abbr) {
				s.PenaltyYards += int(p.PenaltyYards)
			}
		}
	}
}

// simplePointsPerDrive totals touchdowns, field goals and extra points over
// distinct drives without per-drive attribution.
func simplePointsPerDrive(t play.Table) float64 {
	if !t.Columns.Has(play.ColDrive) {
		return 0
	}

	drives := make(map[int]struct{})
	points := 0
	for _, p := range t.Plays {
		if p.Drive == nil {
			continue
		}
		drives[*p.Drive] = struct{}{}

		if p.Touchdown {
			points += touchdownPoints
		}
		if p.FieldGoalResult == play.FieldGoalMade {
			points += fieldGoalPoints
		}
		if p.ExtraPointResult == play.ExtraPointGood {
			points += extraPointPoints
		}
	}

	if len(drives) == 0 {
		return 0
	}
	return float64(points) / float64(len(drives))
}

// simpleRedZoneTDPct groups red zone snaps by drive number only, which is
// safe inside a single game.
func simpleRedZoneTDPct(t play.Table) float64 {
	if !t.Columns.Has(play.ColYardline100) || !t.Columns.Has(play.ColDrive) {
		return 0
	}

	trips := make(map[int]bool)
	for _, p := range t.Plays {
		if p.Drive == nil || p.Yardline100 == nil {
			continue
		}
		if *p.Yardline100 > redZoneYardline || *p.Yardline100 <= 0 {
			continue
		}
		if p.Touchdown {
			trips[*p.Drive] = true
		} else if _, seen := trips[*p.Drive]; !seen {
			trips[*p.Drive] = false
		}
	}

	if len(trips) == 0 {
		return 0
	}

	tds := 0
	for _, scored := range trips {
		if scored {
			tds++
		}
	}
	return percentage(tds, len(trips))
}
