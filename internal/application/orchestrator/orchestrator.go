// Package orchestrator coordinates team statistics requests across the two
// data-retrieval strategies: loading fresh play-by-play from the remote
// provider through the league cache, or querying the database for just the
// games a team appeared in. Both strategies feed the same calculators, so
// they produce identical numbers from identical underlying data; the
// strategy only decides how the raw plays are obtained.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/play"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/stats"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/team"
	"github.com/gridstats/nfl-efficiency-hub/internal/infrastructure/cache"
	"github.com/gridstats/nfl-efficiency-hub/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// STRATEGIES
// ═══════════════════════════════════════════════════════════════════════════

// Strategy names a data-retrieval path.
type Strategy string

const (
	// StrategyFreshRemote loads the full season from the remote provider
	// through the league cache.
	StrategyFreshRemote Strategy = "fresh_remote"

	// StrategyDatabaseOptimized queries the database for only the games a
	// team appeared in.
	StrategyDatabaseOptimized Strategy = "database_optimized"
)

// ErrPlayoffsNotMade reports a postseason request for a team that played no
// playoff games that season. It is a domain answer, not a retrieval failure,
// so it surfaces to the caller instead of triggering a fallback.
var ErrPlayoffsNotMade = errors.New("team did not make the playoffs")

// AggregateSource is the database-backed source behind the optimized
// strategy. Implemented by postgres.PlayRepository.
type AggregateSource interface {
	// HasSeasonData reports whether the season's plays are loaded.
	HasSeasonData(ctx context.Context, season shared.SeasonYear) (bool, error)

	// GetTeamGames returns every play from the games a team appeared in,
	// both sides' possessions included.
	GetTeamGames(ctx context.Context, abbr shared.TeamAbbr, season shared.SeasonYear) (play.Snapshot, error)

	// SourceName identifies the source in results and logs.
	SourceName() string
}

// ═══════════════════════════════════════════════════════════════════════════
// QUERY AND RESULT
// ═══════════════════════════════════════════════════════════════════════════

// TeamAnalysisQuery holds the parameters of a team analysis request.
type TeamAnalysisQuery struct {
	Team       shared.TeamAbbr
	Season     shared.SeasonYear
	SeasonType shared.SeasonType
	Config     shared.AnalysisConfig
}

// Validate checks the query and applies defaults.
func (q *TeamAnalysisQuery) Validate() error {
	if !q.Team.IsValid() {
		return shared.NewDomainError("orchestrator", "validate", shared.ErrInvalidInput,
			fmt.Sprintf("invalid team abbreviation %q", q.Team))
	}
	if !q.Season.IsValid() {
		return shared.NewDomainError("orchestrator", "validate", shared.ErrValueOutOfRange,
			fmt.Sprintf("season %d is out of range", q.Season.Int()))
	}
	if q.SeasonType == "" {
		q.SeasonType = shared.SeasonTypeRegular
	}
	if !q.SeasonType.IsValid() {
		return shared.NewDomainError("orchestrator", "validate", shared.ErrInvalidInput,
			fmt.Sprintf("invalid season type %q", q.SeasonType))
	}
	return nil
}

// TeamAnalysis is the assembled answer for one team and season.
type TeamAnalysis struct {
	Team       shared.TeamAbbr   `json:"team"`
	Season     shared.SeasonYear `json:"season"`
	SeasonType shared.SeasonType `json:"season_type"`
	Strategy   Strategy          `json:"strategy"`
	Stats      stats.SeasonStats `json:"stats"`
	Games      []stats.GameStats `json:"games"`
	Record     *team.Record      `json:"record,omitempty"`
	Source     string            `json:"source"`
	// DataTimestamp is when the underlying play-by-play snapshot was
	// fetched, not when this analysis was computed. Freshness is judged
	// against it. Zero when no snapshot backed the analysis.
	DataTimestamp time.Time `json:"data_timestamp"`
	ComputedAt    time.Time `json:"computed_at"`
}

// IsEmpty reports whether the analysis carries no data. Empty analyses are
// still renderable; callers never receive a retrieval error.
func (a TeamAnalysis) IsEmpty() bool {
	return a.Stats.GamesPlayed == 0 && len(a.Games) == 0 && a.Record == nil
}

// ═══════════════════════════════════════════════════════════════════════════
// ORCHESTRATOR
// ═══════════════════════════════════════════════════════════════════════════

// Orchestrator answers team analysis requests. The retrieval strategy is
// decided once at construction: when a database source is configured the
// optimized path runs first and any failure in it cascades to the fresh
// path; without one, every request takes the fresh path.
type Orchestrator struct {
	cache    *cache.LeagueStatsCache
	db       AggregateSource
	calc     *stats.Calculator
	proc     *stats.GameProcessor
	events   shared.EventPublisher
	log      *logger.Logger
	strategy Strategy
	now      func() time.Time
}

// New wires an orchestrator. The database source and event publisher may be
// nil; without a database source the orchestrator is fresh-remote only.
func New(
	leagueCache *cache.LeagueStatsCache,
	db AggregateSource,
	calc *stats.Calculator,
	proc *stats.GameProcessor,
	events shared.EventPublisher,
	log *logger.Logger,
) (*Orchestrator, error) {
	if leagueCache == nil {
		return nil, shared.NewDomainError("orchestrator", "new", shared.ErrInvalidInput, "league cache is required")
	}
	if calc == nil || proc == nil {
		return nil, shared.NewDomainError("orchestrator", "new", shared.ErrInvalidInput, "calculator and game processor are required")
	}
	if log == nil {
		log = logger.Default()
	}

	strategy := StrategyFreshRemote
	if db != nil {
		strategy = StrategyDatabaseOptimized
	}

	return &Orchestrator{
		cache:    leagueCache,
		db:       db,
		calc:     calc,
		proc:     proc,
		events:   events,
		log:      log.With(logger.Component("orchestrator")),
		strategy: strategy,
		now:      time.Now,
	}, nil
}

// Strategy returns the retrieval strategy decided at construction.
func (o *Orchestrator) Strategy() Strategy {
	return o.strategy
}

// TeamAnalysis computes a team's season statistics, per-game breakdown and
// win-loss record. Validation errors and postseason requests for a team
// that missed the playoffs surface to the caller; every retrieval failure
// is absorbed and yields an empty but renderable analysis.
func (o *Orchestrator) TeamAnalysis(ctx context.Context, q TeamAnalysisQuery) (TeamAnalysis, error) {
	if err := q.Validate(); err != nil {
		return TeamAnalysis{}, err
	}

	log := o.log.With(
		logger.TeamAbbr(q.Team.String()),
		logger.SeasonYear(q.Season.Int()),
		logger.SeasonKind(q.SeasonType.String()),
	)

	analysis, err := o.run(ctx, q, log)
	if err != nil {
		if errors.Is(err, ErrPlayoffsNotMade) {
			return TeamAnalysis{}, err
		}

		log.Error("all retrieval strategies failed, returning empty analysis", logger.Err(err))
		o.publish(shared.NewStatsComputeFailedEvent(
			q.Team.String(), q.Season.Int(), q.SeasonType.String(), string(o.strategy), err.Error()))
		return o.emptyAnalysis(q), nil
	}

	o.publish(shared.NewStatsComputedEvent(
		q.Team.String(), q.Season.Int(), q.SeasonType.String(),
		len(analysis.Games), analysis.Stats.TOER, string(analysis.Strategy)))
	return analysis, nil
}

func (o *Orchestrator) run(ctx context.Context, q TeamAnalysisQuery, log *logger.Logger) (TeamAnalysis, error) {
	if o.strategy == StrategyDatabaseOptimized {
		analysis, err := o.databasePath(ctx, q)
		if err == nil || errors.Is(err, ErrPlayoffsNotMade) {
			return analysis, err
		}

		log.Warn("database strategy failed, falling back to fresh remote", logger.Err(err))
		o.publish(shared.NewStrategyFallbackEvent(
			q.Team.String(), q.Season.Int(),
			string(StrategyDatabaseOptimized), string(StrategyFreshRemote), err.Error()))
	}
	return o.freshPath(ctx, q)
}

// ─── database-optimized path ───────────────────────────────────────────────

func (o *Orchestrator) databasePath(ctx context.Context, q TeamAnalysisQuery) (TeamAnalysis, error) {
	loaded, err := o.db.HasSeasonData(ctx, q.Season)
	if err != nil {
		return TeamAnalysis{}, err
	}
	if !loaded {
		return TeamAnalysis{}, shared.NewDomainError("orchestrator", "database_path", shared.ErrEmptyDataset,
			fmt.Sprintf("season %d is not loaded in the database", q.Season.Int()))
	}

	snap, err := o.db.GetTeamGames(ctx, q.Team, q.Season)
	if err != nil {
		return TeamAnalysis{}, err
	}
	return o.assemble(q, snap.Table, snap.Source, snap.FetchedAt, StrategyDatabaseOptimized)
}

// ─── fresh-remote path ─────────────────────────────────────────────────────

func (o *Orchestrator) freshPath(ctx context.Context, q TeamAnalysisQuery) (TeamAnalysis, error) {
	snap, err := o.cache.RawSeasonData(ctx, q.Season)
	if err != nil {
		return TeamAnalysis{}, err
	}

	analysis, err := o.assemble(q, snap.Table.ForTeamGames(q.Team), snap.Source, snap.FetchedAt, StrategyFreshRemote)
	if err != nil || analysis.IsEmpty() {
		return analysis, err
	}

	// The league snapshot carries this team's ratings from the shared
	// computation and keeps the whole-league numbers warm for ranking
	// lookups. A failure here is not fatal; assemble already produced the
	// same values from the raw table.
	if ls, lsErr := o.cache.LeagueStatsFor(ctx, q.Season, q.SeasonType, q.Config); lsErr == nil {
		if row, ok := ls.TeamStats[q.Team]; ok {
			analysis.Stats = row
		}
	}
	return analysis, nil
}

// ─── shared assembly ───────────────────────────────────────────────────────

// assemble turns a play table containing (at least) the team's games into a
// TeamAnalysis. Both strategies land here, which is what keeps their output
// identical: the table's provenance differs, the arithmetic never does.
func (o *Orchestrator) assemble(q TeamAnalysisQuery, t play.Table, source string, fetchedAt time.Time, strategy Strategy) (TeamAnalysis, error) {
	teamAll := t.ForTeam(q.Team)
	seasonGames := t.ForSeasonType(q.SeasonType)
	teamSeason := seasonGames.ForTeam(q.Team)

	if teamSeason.IsEmpty() {
		if q.SeasonType == shared.SeasonTypePostseason && !teamAll.IsEmpty() {
			return TeamAnalysis{}, shared.WrapError("orchestrator", "assemble", shared.ErrNotFound,
				fmt.Sprintf("%s has no postseason games in %d", q.Team, q.Season.Int()), ErrPlayoffsNotMade)
		}
		o.log.Warn("no plays found for team",
			logger.TeamAbbr(q.Team.String()),
			logger.SeasonYear(q.Season.Int()),
			logger.SeasonKind(q.SeasonType.String()),
		)
		return o.emptyAnalysis(q), nil
	}

	configured := play.ApplyConfiguration(teamSeason, q.Config)

	seasonStats := o.calc.CalculateSeasonStats(configured, q.Team, q.Season)
	results := o.proc.ProcessAllGames(play.ApplyConfiguration(seasonGames, q.Config))
	seasonStats.TOER, seasonStats.TOERAllowed = o.proc.TeamTOERStats(results[q.Team], q.Team)

	return TeamAnalysis{
		Team:          q.Team,
		Season:        q.Season,
		SeasonType:    q.SeasonType,
		Strategy:      strategy,
		Stats:         seasonStats,
		Games:         o.calc.CalculateGameStats(configured, q.Team),
		Record:        o.fullRecord(teamAll, q.Team),
		Source:        source,
		DataTimestamp: fetchedAt,
		ComputedAt:    o.now(),
	}, nil
}

// fullRecord builds the complete win-loss record from a team's unfiltered
// possession data, splitting regular season from playoffs. The record always
// covers the whole season regardless of the requested season type.
func (o *Orchestrator) fullRecord(teamAll play.Table, abbr shared.TeamAbbr) *team.Record {
	reg := o.calc.CalculateTeamRecord(teamAll.ForSeasonType(shared.SeasonTypeRegular), abbr)
	post := o.calc.CalculateTeamRecord(teamAll.ForSeasonType(shared.SeasonTypePostseason), abbr)
	if reg == nil && post == nil {
		return nil
	}

	rec := &team.Record{}
	if reg != nil {
		rec.RegularSeasonWins = reg.RegularSeasonWins
		rec.RegularSeasonLosses = reg.RegularSeasonLosses
		rec.RegularSeasonTies = reg.RegularSeasonTies
	}
	if post != nil {
		rec.PlayoffWins = post.RegularSeasonWins
		rec.PlayoffLosses = post.RegularSeasonLosses
	}
	return rec
}

func (o *Orchestrator) emptyAnalysis(q TeamAnalysisQuery) TeamAnalysis {
	return TeamAnalysis{
		Team:       q.Team,
		Season:     q.Season,
		SeasonType: q.SeasonType,
		Strategy:   o.strategy,
		Stats:      stats.SeasonStats{Team: q.Team, Season: q.Season},
		Games:      []stats.GameStats{},
		ComputedAt: o.now(),
	}
}

func (o *Orchestrator) publish(event shared.Event) {
	if o.events == nil {
		return
	}
	if err := o.events.Publish(event); err != nil {
		o.log.Warn("event publish failed", logger.Err(err))
	}
}
