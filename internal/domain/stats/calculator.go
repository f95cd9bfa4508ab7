package stats

import (
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/play"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/team"
	"github.com/gridstats/nfl-efficiency-hub/pkg/logger"
)

// Scoring values and success-rate thresholds.
const (
	touchdownPoints          = 6
	extraPointPoints         = 1
	twoPointConversionPoints = 2
	fieldGoalPoints          = 3

	redZoneYardline = 20.0

	firstDownSuccessThreshold  = 0.4
	secondDownSuccessThreshold = 0.6
	conversionSuccessThreshold = 1.0
)

// Calculator derives offensive statistics from play-by-play tables. All
// methods are best-effort: bad or partial data yields zeroed results, never
// an abort, so one team cannot sink a league-wide computation.
type Calculator struct {
	filter *play.Filter
	log    *logger.Logger
}

// NewCalculator builds a Calculator. A nil logger falls back to the default.
func NewCalculator(log *logger.Logger) *Calculator {
	if log == nil {
		log = logger.Default()
	}
	return &Calculator{
		filter: play.NewFilter(),
		log:    log.With(logger.Component("stats.calculator")),
	}
}

// CalculateSeasonStats aggregates a team's plays into a season line. Empty
// or unusable data returns a zeroed SeasonStats for the team rather than an
// error.
func (c *Calculator) CalculateSeasonStats(t play.Table, abbr shared.TeamAbbr, season shared.SeasonYear) SeasonStats {
	empty := SeasonStats{Team: abbr, Season: season}
	if t.IsEmpty() || !t.Columns.Has(play.ColGameID) {
		return empty
	}

	gamesPlayed := len(t.GameIDs())
	if gamesPlayed == 0 {
		return empty
	}

	line := c.calculateAll(t, abbr)
	return buildSeasonStats(abbr, season, gamesPlayed, line)
}

// CalculateGameStats produces a per-game breakdown of a team's season.
func (c *Calculator) CalculateGameStats(t play.Table, abbr shared.TeamAbbr) []GameStats {
	if t.IsEmpty() || !t.Columns.Has(play.ColGameID) {
		return nil
	}

	var out []GameStats
	for _, gameID := range t.GameIDs() {
		game := t.ForGame(gameID)

		offensive := c.filter.OffensivePlays(game)
		totalYards := int(sumYards(offensive))
		totalPlays := offensive.Len()
		ypp := 0.0
		if totalPlays > 0 {
			ypp = float64(totalYards) / float64(totalPlays)
		}

		line := c.calculateAll(game, abbr)

		out = append(out, GameStats{
			GameID:         gameID,
			Team:           abbr,
			Opponent:       opponentFor(game, abbr),
			Location:       locationFor(game, abbr),
			YardsPerPlay:   ypp,
			TotalYards:     totalYards,
			TotalPlays:     totalPlays,
			Turnovers:      line.totalTurnovers,
			CompletionPct:  line.completionPct,
			RushYPC:        line.rushYPC,
			SacksAllowed:   line.sacks,
			ThirdDownPct:   line.thirdDownPct,
			SuccessRate:    line.successRate,
			FirstDowns:     line.firstDownsTotal,
			PointsPerDrive: line.pointsPerDrive,
			RedZoneTDPct:   line.redzoneTDPct,
			PenaltyYards:   line.penaltyYards,
		})
	}
	return out
}

// CalculateTeamRecord derives a win-loss record from final scores. Returns
// nil when the table carries no games; a table without score columns yields
// a zero record. Playoff results are not distinguished here, so a table of
// mixed game types should be split by season type first.
func (c *Calculator) CalculateTeamRecord(t play.Table, abbr shared.TeamAbbr) *team.Record {
	if t.IsEmpty() || !t.Columns.Has(play.ColGameID) {
		return nil
	}

	rec := &team.Record{}
	if !t.Columns.HasAll(play.ColPosTeamScorePost, play.ColDefTeamScorePost) {
		return rec
	}

	for _, gameID := range t.GameIDs() {
		game := t.ForGame(gameID)
		if game.IsEmpty() {
			continue
		}

		final := game.Plays[game.Len()-1]
		if final.PosTeamScorePost == nil || final.DefTeamScorePost == nil {
			continue
		}

		switch {
		case *final.PosTeamScorePost > *final.DefTeamScorePost:
			rec.RegularSeasonWins++
		case *final.PosTeamScorePost < *final.DefTeamScorePost:
			rec.RegularSeasonLosses++
		default:
			rec.RegularSeasonTies++
		}
	}
	return rec
}

// ── consolidated per-table computation ─────────────────────────────────────

// statLine is the full set of counts a single pass over a table produces.
type statLine struct {
	totalPlays int
	totalYards int
	avgYPP     float64

	passAttempts    int
	passCompletions int
	completionPct   float64
	rushAttempts    int
	rushYards       int
	rushYPC         float64

	interceptions  int
	fumblesLost    int
	totalTurnovers int

	thirdDownAttempts    int
	thirdDownConversions int
	thirdDownPct         float64
	thirdDownRushConv    int
	thirdDownPassConv    int

	firstDownsRush    int
	firstDownsPass    int
	firstDownsPenalty int
	firstDownsTotal   int

	successRate          float64
	firstDownSuccessful  int
	firstDownTotal       int
	secondDownSuccessful int
	secondDownTotal      int
	thirdDownSuccessful  int
	thirdDownTotal       int

	sacks        int
	penaltyYards int

	drives              int
	touchdowns          int
	extraPoints         int
	twoPointConversions int
	fieldGoals          int
	points              int
	pointsPerDrive      float64

	redzoneTrips  int
	redzoneTDs    int
	redzoneFGs    int
	redzoneFailed int
	redzoneTDPct  float64
}

func (c *Calculator) calculateAll(t play.Table, abbr shared.TeamAbbr) statLine {
	var line statLine

	offensive := c.filter.OffensivePlays(t)
	line.totalPlays = offensive.Len()
	line.totalYards = int(sumYards(offensive))
	line.avgYPP = meanYards(offensive)

	c.passingRushingStats(t, &line)
	c.turnoverStats(t, &line)
	c.downStats(t, &line)
	c.successStats(t, &line)
	c.teamSpecificStats(t, abbr, &line)

	return line
}

func (c *Calculator) passingRushingStats(t play.Table, line *statLine) {
	passPlays := c.filter.PassingPlays(t)
	rushPlays := c.filter.RushingPlays(t)

	line.passAttempts = passPlays.Len()
	for _, p := range passPlays.Plays {
		if p.CompletePass {
			line.passCompletions++
		}
	}
	line.completionPct = percentage(line.passCompletions, line.passAttempts)

	line.rushAttempts = rushPlays.Len()
	line.rushYards = int(sumYards(rushPlays))
	line.rushYPC = meanYards(rushPlays)
}

func (c *Calculator) turnoverStats(t play.Table, line *statLine) {
	for _, p := range t.Plays {
		if p.Interception {
			line.interceptions++
		}
		if p.FumbleLost {
			line.fumblesLost++
		}
	}

	// A pick-six fumbled back and recovered is still one turnover: count
	// rows where either flag is set rather than summing both flags.
	if t.Columns.HasAll(play.ColInterception, play.ColFumbleLost) {
		for _, p := range t.Plays {
			if p.Interception || p.FumbleLost {
				line.totalTurnovers++
			}
		}
	} else {
		line.totalTurnovers = line.interceptions + line.fumblesLost
	}
}

func (c *Calculator) downStats(t play.Table, line *statLine) {
	thirdDowns := c.filter.ThirdDownAttempts(t)
	line.thirdDownAttempts = thirdDowns.Len()

	if thirdDowns.Columns.HasAll(play.ColFirstDown, play.ColTouchdown) {
		for _, p := range thirdDowns.Plays {
			if !p.FirstDown && !p.Touchdown {
				continue
			}
			line.thirdDownConversions++
			if p.RushAttempt {
				line.thirdDownRushConv++
			}
			if p.PassAttempt {
				line.thirdDownPassConv++
			}
		}
		line.thirdDownPct = percentage(line.thirdDownConversions, line.thirdDownAttempts)
	}

	if t.Columns.HasAll(play.ColFirstDownRush, play.ColFirstDownPass, play.ColFirstDownPenalty) {
		for _, p := range t.Plays {
			if p.FirstDownRush {
				line.firstDownsRush++
			}
			if p.FirstDownPass {
				line.firstDownsPass++
			}
			if p.FirstDownPenalty {
				line.firstDownsPenalty++
			}
			if p.FirstDownRush || p.FirstDownPass || p.FirstDownPenalty {
				line.firstDownsTotal++
			}
		}
	}
}

func (c *Calculator) successStats(t play.Table, line *statLine) {
	if !t.Columns.HasAll(play.ColDown, play.ColYdsToGo) {
		return
	}

	eligible := c.filter.SuccessRateEligible(c.filter.OffensivePlays(t))
	if eligible.IsEmpty() {
		return
	}

	successful := 0
	for _, p := range eligible.Plays {
		ok := playSucceeded(p)
		if ok {
			successful++
		}

		down := 3
		if p.Down != nil {
			down = *p.Down
		}
		switch {
		case down == 1:
			line.firstDownTotal++
			if ok {
				line.firstDownSuccessful++
			}
		case down == 2:
			line.secondDownTotal++
			if ok {
				line.secondDownSuccessful++
			}
		default:
			line.thirdDownTotal++
			if ok {
				line.thirdDownSuccessful++
			}
		}
	}
	line.successRate = percentage(successful, eligible.Len())
}

// playSucceeded applies the down-dependent yardage thresholds: 40% of the
// distance on first down, 60% on second, the full distance on third and
// fourth.
func playSucceeded(p play.Play) bool {
	threshold := conversionSuccessThreshold
	if p.Down != nil {
		switch *p.Down {
		case 1:
			threshold = firstDownSuccessThreshold
		case 2:
			threshold = secondDownSuccessThreshold
		}
	}
	return p.Yards() >= threshold*float64(p.YdsToGo)
}

func (c *Calculator) teamSpecificStats(t play.Table, abbr shared.TeamAbbr, line *statLine) {
	if t.Columns.Has(play.ColSack) {
		for _, p := range t.Plays {
			if p.Sack {
				line.sacks++
			}
		}
	}

	if t.Columns.HasAll(play.ColPenaltyTeam, play.ColPenaltyYards, play.ColPosTeam) {
		for _, p := range t.Plays {
			if p.PenaltyTeam == string(abbr) && p.PosTeam == string(abbr) {
				line.penaltyYards += int(p.PenaltyYards)
			}
		}
	}

	c.scoringAndRedZoneStats(t, abbr, line)
}

func (c *Calculator) scoringAndRedZoneStats(t play.Table, abbr shared.TeamAbbr, line *statLine) {
	if !t.Columns.Has(play.ColDrive) {
		return
	}

	for _, drive := range groupByDrive(t) {
		drivePoints := 0

		tds := c.filter.OffensiveTouchdowns(drive, abbr).Len()
		line.touchdowns += tds
		drivePoints += tds * touchdownPoints

		if drive.Columns.Has(play.ColExtraPointResult) {
			for _, p := range drive.Plays {
				if p.ExtraPointResult == play.ExtraPointGood {
					line.extraPoints++
					drivePoints += extraPointPoints
				}
			}
		}
		if drive.Columns.Has(play.ColTwoPointConvResult) {
			for _, p := range drive.Plays {
				if p.TwoPointConvResult == play.TwoPointSuccess {
					line.twoPointConversions++
					drivePoints += twoPointConversionPoints
				}
			}
		}
		if drive.Columns.Has(play.ColFieldGoalResult) {
			for _, p := range drive.Plays {
				if p.FieldGoalResult == play.FieldGoalMade {
					line.fieldGoals++
					drivePoints += fieldGoalPoints
				}
			}
		}

		line.drives++
		line.points += drivePoints
	}

	if line.drives > 0 {
		line.pointsPerDrive = float64(line.points) / float64(line.drives)
	}

	c.redZoneStats(t, line)
}

func (c *Calculator) redZoneStats(t play.Table, line *statLine) {
	if !t.Columns.HasAll(play.ColYardline100, play.ColDrive, play.ColTouchdown) {
		return
	}

	rz := t.Select(func(p play.Play) bool {
		return p.Yardline100 != nil && *p.Yardline100 <= redZoneYardline && *p.Yardline100 > 0
	})
	if rz.IsEmpty() {
		return
	}

	hasFG := rz.Columns.Has(play.ColFieldGoalResult)
	for _, drive := range groupByDrive(rz) {
		line.redzoneTrips++

		scoredTD := false
		madeFG := false
		for _, p := range drive.Plays {
			if p.Touchdown {
				scoredTD = true
			}
			if hasFG && p.FieldGoalResult == play.FieldGoalMade {
				madeFG = true
			}
		}

		if scoredTD {
			line.redzoneTDs++
		} else if madeFG {
			line.redzoneFGs++
		}
	}

	line.redzoneFailed = line.redzoneTrips - line.redzoneTDs - line.redzoneFGs
	if line.redzoneFailed < 0 {
		line.redzoneFailed = 0
	}
	line.redzoneTDPct = percentage(line.redzoneTDs, line.redzoneTrips)
}

// ── helpers ────────────────────────────────────────────────────────────────

// groupByDrive partitions plays by (game, drive) in first-seen order,
// skipping plays with no drive number.
func groupByDrive(t play.Table) []play.Table {
	type driveKey struct {
		gameID string
		drive  int
	}

	index := make(map[driveKey]int)
	var groups [][]play.Play
	var order []driveKey

	for _, p := range t.Plays {
		if p.Drive == nil {
			continue
		}
		key := driveKey{gameID: p.GameID, drive: *p.Drive}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
			order = append(order, key)
		}
		groups[i] = append(groups[i], p)
	}

	out := make([]play.Table, len(order))
	for i := range order {
		out[i] = play.Table{Plays: groups[i], Columns: t.Columns}
	}
	return out
}

func sumYards(t play.Table) float64 {
	total := 0.0
	for _, p := range t.Plays {
		total += p.Yards()
	}
	return total
}

func meanYards(t play.Table) float64 {
	if t.Len() == 0 {
		return 0
	}
	return sumYards(t) / float64(t.Len())
}

func percentage(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator) * 100.0
}

func opponentFor(game play.Table, abbr shared.TeamAbbr) shared.TeamAbbr {
	if game.Columns.Has(play.ColDefTeam) {
		for _, p := range game.Plays {
			if p.DefTeam != "" {
				return shared.TeamAbbr(p.DefTeam)
			}
		}
	}

	if game.Columns.HasAll(play.ColHomeTeam, play.ColAwayTeam) && !game.IsEmpty() {
		first := game.Plays[0]
		switch string(abbr) {
		case first.HomeTeam:
			return shared.TeamAbbr(first.AwayTeam)
		case first.AwayTeam:
			return shared.TeamAbbr(first.HomeTeam)
		}
	}

	// Opponent unknown: fall back to the team itself so downstream
	// lookups still resolve to a real franchise.
	return abbr
}

func locationFor(game play.Table, abbr shared.TeamAbbr) Location {
	if game.Columns.Has(play.ColHomeTeam) && !game.IsEmpty() {
		if game.Plays[0].HomeTeam == string(abbr) {
			return LocationHome
		}
		return LocationAway
	}
	return LocationHome
}

func buildSeasonStats(abbr shared.TeamAbbr, season shared.SeasonYear, gamesPlayed int, line statLine) SeasonStats {
	perGame := func(total int) float64 {
		if gamesPlayed == 0 {
			return 0
		}
		return float64(total) / float64(gamesPlayed)
	}

	return SeasonStats{
		Team:        abbr,
		Season:      season,
		GamesPlayed: gamesPlayed,

		AvgYardsPerPlay:     line.avgYPP,
		TotalYards:          line.totalYards,
		TotalPlays:          line.totalPlays,
		TurnoversPerGame:    perGame(line.totalTurnovers),
		CompletionPct:       line.completionPct,
		RushYPC:             line.rushYPC,
		SacksPerGame:        perGame(line.sacks),
		ThirdDownPct:        line.thirdDownPct,
		SuccessRate:         line.successRate,
		FirstDownsPerGame:   perGame(line.firstDownsTotal),
		PointsPerDrive:      line.pointsPerDrive,
		RedZoneTDPct:        line.redzoneTDPct,
		PenaltyYardsPerGame: perGame(line.penaltyYards),

		TotalRushYards:            line.rushYards,
		TotalRushAttempts:         line.rushAttempts,
		TotalPassCompletions:      line.passCompletions,
		TotalPassAttempts:         line.passAttempts,
		TotalTurnovers:            line.totalTurnovers,
		TotalSacks:                line.sacks,
		TotalThirdDowns:           line.thirdDownAttempts,
		TotalThirdDownConversions: line.thirdDownConversions,
		TotalFirstDowns:           line.firstDownsTotal,
		TotalDrives:               line.drives,
		TotalOffensivePoints:      line.points,
		TotalRedZoneTrips:         line.redzoneTrips,
		TotalRedZoneTDs:           line.redzoneTDs,
		TotalPenaltyYards:         line.penaltyYards,

		FirstDownSuccessfulPlays:  line.firstDownSuccessful,
		FirstDownTotalPlays:       line.firstDownTotal,
		SecondDownSuccessfulPlays: line.secondDownSuccessful,
		SecondDownTotalPlays:      line.secondDownTotal,
		ThirdDownSuccessfulPlays:  line.thirdDownSuccessful,
		ThirdDownTotalPlays:       line.thirdDownTotal,

		TotalTouchdowns:          line.touchdowns,
		TotalExtraPoints:         line.extraPoints,
		TotalTwoPointConversions: line.twoPointConversions,
		TotalFieldGoals:          line.fieldGoals,

		TotalInterceptions: line.interceptions,
		TotalFumblesLost:   line.fumblesLost,

		TotalFirstDownsRush:    line.firstDownsRush,
		TotalFirstDownsPass:    line.firstDownsPass,
		TotalFirstDownsPenalty: line.firstDownsPenalty,

		TotalThirdDownRushConversions: line.thirdDownRushConv,
		TotalThirdDownPassConversions: line.thirdDownPassConv,

		TotalRedZoneFieldGoals: line.redzoneFGs,
		TotalRedZoneFailed:     line.redzoneFailed,
	}
}
