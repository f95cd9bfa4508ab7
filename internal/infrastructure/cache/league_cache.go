package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/play"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/ranking"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/stats"
	"github.com/gridstats/nfl-efficiency-hub/pkg/logger"
	"github.com/gridstats/nfl-efficiency-hub/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// LEAGUE STATS CACHE
// ═══════════════════════════════════════════════════════════════════════════

// LeagueStats is one fully computed league snapshot: every team's season
// line plus the league-wide metric averages.
type LeagueStats struct {
	TeamStats     map[shared.TeamAbbr]stats.SeasonStats `json:"team_stats"`
	Averages      map[string]float64                    `json:"averages"`
	DataTimestamp time.Time                             `json:"data_timestamp"`
	Source        string                                `json:"source"`
}

// Config tunes the league cache TTLs and size bounds.
type Config struct {
	// CurrentSeasonTTL bounds how long stats for an in-progress season are
	// served before recomputation. Historical seasons never expire since
	// their play-by-play data cannot change.
	CurrentSeasonTTL time.Duration

	// RawDataTTL bounds raw play-by-play snapshots for the current season.
	RawDataTTL time.Duration

	MaxStatsEntries   int
	MaxRankingEntries int
	MaxRawEntries     int
}

// DefaultConfig returns production cache settings.
func DefaultConfig() Config {
	return Config{
		CurrentSeasonTTL:  24 * time.Hour,
		RawDataTTL:        24 * time.Hour,
		MaxStatsEntries:   64,
		MaxRankingEntries: 64,
		MaxRawEntries:     8,
	}
}

// SnapshotStore is an optional second-level cache for computed league
// snapshots, shared across instances. A Redis-backed implementation lives in
// internal/infrastructure/persistence/redis. It is consulted after an
// in-memory miss and written through after each compute; store failures are
// logged and never surfaced, the in-process cache remains authoritative.
type SnapshotStore interface {
	GetLeagueStats(ctx context.Context, key string) (LeagueStats, error)
	SetLeagueStats(ctx context.Context, key string, ls LeagueStats, ttl time.Duration) error
	Clear(ctx context.Context, pattern string) (int, error)
}

// LeagueStatsCache computes and caches league-wide season statistics,
// rankings, and the raw play-by-play snapshots they derive from. Raw data is
// cached once per season across all season types; the season-type split and
// the analysis configuration are applied on each compute, so the expensive
// fetch is shared between REG and POST requests.
type LeagueStatsCache struct {
	repo   play.Repository
	calc   *stats.Calculator
	proc   *stats.GameProcessor
	ranker *ranking.Engine
	events shared.EventPublisher
	store  SnapshotStore
	log    *logger.Logger
	cfg    Config
	now    func() time.Time

	statsCache    *SimpleCache[LeagueStats]
	rankingsCache *SimpleCache[map[shared.TeamAbbr]ranking.Rankings]
	rawCache      *SimpleCache[play.Snapshot]
}

// NewLeagueStatsCache wires the cache to its data source and calculators.
// The event publisher may be nil when nothing listens.
func NewLeagueStatsCache(
	repo play.Repository,
	calc *stats.Calculator,
	proc *stats.GameProcessor,
	ranker *ranking.Engine,
	events shared.EventPublisher,
	log *logger.Logger,
	cfg Config,
) (*LeagueStatsCache, error) {
	if repo == nil {
		return nil, shared.NewDomainError("cache", "new", shared.ErrInvalidInput, "play repository is required")
	}
	if calc == nil || proc == nil || ranker == nil {
		return nil, shared.NewDomainError("cache", "new", shared.ErrInvalidInput, "calculator, processor and ranking engine are required")
	}
	if log == nil {
		log = logger.Default()
	}
	if cfg.CurrentSeasonTTL <= 0 {
		cfg.CurrentSeasonTTL = DefaultConfig().CurrentSeasonTTL
	}
	if cfg.RawDataTTL <= 0 {
		cfg.RawDataTTL = DefaultConfig().RawDataTTL
	}

	return &LeagueStatsCache{
		repo:          repo,
		calc:          calc,
		proc:          proc,
		ranker:        ranker,
		events:        events,
		log:           log.With(logger.Component("cache.league")),
		cfg:           cfg,
		now:           time.Now,
		statsCache:    NewSimpleCache[LeagueStats](0, cfg.MaxStatsEntries),
		rankingsCache: NewSimpleCache[map[shared.TeamAbbr]ranking.Rankings](0, cfg.MaxRankingEntries),
		rawCache:      NewSimpleCache[play.Snapshot](0, cfg.MaxRawEntries),
	}, nil
}

// WithSnapshotStore attaches a second-level snapshot store. Call before the
// cache starts serving requests.
func (c *LeagueStatsCache) WithSnapshotStore(store SnapshotStore) *LeagueStatsCache {
	c.store = store
	return c
}

// LeagueStatsFor returns the league snapshot for a season, season type and
// analysis configuration, computing it from play-by-play data on a miss.
func (c *LeagueStatsCache) LeagueStatsFor(ctx context.Context, season shared.SeasonYear, seasonType shared.SeasonType, cfg shared.AnalysisConfig) (LeagueStats, error) {
	key := shared.CacheKey(season, seasonType, cfg)

	ls, err := c.statsCache.GetOrCompute(key, func() (LeagueStats, error) {
		return c.computeLeagueStats(ctx, key, season, seasonType, cfg)
	}, validLeagueStats, c.statsTTL(season))
	if err != nil {
		return LeagueStats{}, shared.WrapError("cache", "league_stats", shared.ErrCalculation, "computing league stats", err)
	}
	return ls, nil
}

// TeamRankings returns one team's metric rankings within its season. Rankings
// are pre-computed eagerly when the league snapshot is built, so this usually
// hits the cache; a miss recomputes through the snapshot path.
func (c *LeagueStatsCache) TeamRankings(ctx context.Context, abbr shared.TeamAbbr, season shared.SeasonYear, seasonType shared.SeasonType, cfg shared.AnalysisConfig) (ranking.Rankings, error) {
	key := shared.CacheKey(season, seasonType, cfg)

	if all, ok := c.rankingsCache.Get(key, nil); ok {
		if r, found := all[abbr]; found {
			return r, nil
		}
		return ranking.Rankings{}, nil
	}

	ls, err := c.LeagueStatsFor(ctx, season, seasonType, cfg)
	if err != nil {
		return nil, err
	}

	// The snapshot path populates rankings as a side effect. Falling
	// through to a direct calculation covers a cached snapshot whose
	// rankings entry was already evicted.
	if all, ok := c.rankingsCache.Get(key, nil); ok {
		if r, found := all[abbr]; found {
			return r, nil
		}
		return ranking.Rankings{}, nil
	}
	return c.ranker.CalculateTeamRankings(abbr, ls.TeamStats), nil
}

// RawSeasonData returns a season's full play-by-play snapshot, fetching from
// the repository on a miss. The snapshot covers every season type.
func (c *LeagueStatsCache) RawSeasonData(ctx context.Context, season shared.SeasonYear) (play.Snapshot, error) {
	key := rawDataKey(season)

	snap, err := c.rawCache.GetOrCompute(key, func() (play.Snapshot, error) {
		started := c.now()
		snap, err := c.repo.GetPlayByPlay(ctx, season)
		if err != nil {
			return play.Snapshot{}, err
		}

		c.log.Info("fetched season play-by-play",
			logger.SeasonYear(season.Int()),
			logger.PlayCount(snap.Table.Len()),
			logger.String("source", snap.Source),
			logger.Latency(c.now().Sub(started)),
		)
		c.publish(shared.NewSeasonDataFetchedEvent(season.Int(), snap.Table.Len(), snap.Source, c.now().Sub(started)))
		return snap, nil
	}, validSnapshot, c.rawTTL(season))
	if err != nil {
		return play.Snapshot{}, shared.WrapError("cache", "raw_data", shared.ErrExternalService, "fetching play-by-play", err)
	}
	return snap, nil
}

// Clear drops cached data for one season, or everything when season is zero
// or negative. Returns the number of entries removed across all caches.
func (c *LeagueStatsCache) Clear(season int) int {
	pattern := ""
	if season > 0 {
		pattern = fmt.Sprintf(":%d:", season)
	}

	removed := c.statsCache.Clear(pattern)
	removed += c.rankingsCache.Clear(pattern)
	removed += c.rawCache.Clear(pattern)

	if c.store != nil {
		if n, err := c.store.Clear(context.Background(), pattern); err != nil {
			c.log.Warn("snapshot store clear failed", logger.Err(err))
		} else {
			removed += n
		}
	}

	c.log.Info("cache cleared",
		logger.String("pattern", pattern),
		logger.Int("entries", removed),
	)
	c.publish(shared.NewCacheClearedEvent(pattern, removed))
	return removed
}

// Info aggregates hit statistics from all three internal caches.
type Info struct {
	Stats    Stats `json:"stats"`
	Rankings Stats `json:"rankings"`
	RawData  Stats `json:"raw_data"`
}

// TotalEntries sums entry counts across the caches.
func (i Info) TotalEntries() int {
	return i.Stats.Size + i.Rankings.Size + i.RawData.Size
}

// Info returns a snapshot of cache effectiveness.
func (c *LeagueStatsCache) Info() Info {
	return Info{
		Stats:    c.statsCache.Stats(),
		Rankings: c.rankingsCache.Stats(),
		RawData:  c.rawCache.Stats(),
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// COMPUTATION PIPELINE
// ═══════════════════════════════════════════════════════════════════════════

func (c *LeagueStatsCache) computeLeagueStats(ctx context.Context, key string, season shared.SeasonYear, seasonType shared.SeasonType, cfg shared.AnalysisConfig) (LeagueStats, error) {
	if c.store != nil {
		if ls, err := c.store.GetLeagueStats(ctx, key); err == nil && validLeagueStats(ls) {
			c.log.Debug("league stats served from snapshot store", logger.CacheKey(key))
			// Rankings are not stored remotely; rebuild them so the
			// eager-rankings path stays warm.
			c.rankingsCache.SetWithTTL(key, c.ranker.CalculateAllRankings(ls.TeamStats), c.statsTTL(season))
			return ls, nil
		}
	}

	snap, err := c.RawSeasonData(ctx, season)
	if err != nil {
		return LeagueStats{}, err
	}

	seasonTable := snap.Table.ForSeasonType(seasonType)
	if seasonTable.IsEmpty() {
		return LeagueStats{}, shared.NewDomainError("cache", "compute", shared.ErrEmptyDataset,
			fmt.Sprintf("no %s plays for season %d", seasonType, season.Int()))
	}

	configured := play.ApplyConfiguration(seasonTable, cfg)
	results := c.proc.ProcessAllGames(configured)

	teamStats := make(map[shared.TeamAbbr]stats.SeasonStats)
	for _, abbr := range configured.TeamsPresent() {
		teamTable := c.repo.GetTeamData(seasonTable, abbr, cfg)
		ss := c.calc.CalculateSeasonStats(teamTable, abbr, season)
		ss.TOER, ss.TOERAllowed = c.proc.TeamTOERStats(results[abbr], abbr)
		teamStats[abbr] = ss
	}

	ls := LeagueStats{
		TeamStats:     teamStats,
		Averages:      stats.LeagueAverages(teamStats),
		DataTimestamp: snap.FetchedAt,
		Source:        snap.Source,
	}

	rankings := c.ranker.CalculateAllRankings(teamStats)
	c.rankingsCache.SetWithTTL(key, rankings, c.statsTTL(season))
	c.publish(shared.NewRankingsComputedEvent(season.Int(), string(seasonType), len(rankings), len(ranking.Metrics)))

	c.log.Info("league stats computed",
		logger.SeasonYear(season.Int()),
		logger.SeasonKind(string(seasonType)),
		logger.Int("teams", len(teamStats)),
		logger.CacheKey(key),
	)

	if c.store != nil {
		if err := c.store.SetLeagueStats(ctx, key, ls, c.statsTTL(season)); err != nil {
			c.log.Warn("snapshot store write failed", logger.CacheKey(key), logger.Err(err))
		}
	}
	return ls, nil
}

func (c *LeagueStatsCache) statsTTL(season shared.SeasonYear) time.Duration {
	if timeutil.IsHistoricalYear(season.Int(), c.now()) {
		return NoExpiry
	}
	return c.cfg.CurrentSeasonTTL
}

func (c *LeagueStatsCache) rawTTL(season shared.SeasonYear) time.Duration {
	if timeutil.IsHistoricalYear(season.Int(), c.now()) {
		return NoExpiry
	}
	return c.cfg.RawDataTTL
}

func (c *LeagueStatsCache) publish(event shared.Event) {
	if c.events == nil {
		return
	}
	if err := c.events.Publish(event); err != nil {
		c.log.Warn("event publish failed", logger.Err(err))
	}
}

func rawDataKey(season shared.SeasonYear) string {
	return fmt.Sprintf("raw:%d:ALL", season.Int())
}

func validLeagueStats(ls LeagueStats) bool {
	return len(ls.TeamStats) > 0
}

func validSnapshot(s play.Snapshot) bool {
	return !s.Table.IsEmpty()
}
