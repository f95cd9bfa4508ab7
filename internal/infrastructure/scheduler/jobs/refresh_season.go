// Package jobs contains the background jobs run by the scheduler.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/play"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
	"github.com/gridstats/nfl-efficiency-hub/internal/infrastructure/cache"
	"github.com/gridstats/nfl-efficiency-hub/pkg/logger"
	"github.com/gridstats/nfl-efficiency-hub/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// REFRESH CURRENT SEASON
//
// An in-progress season accumulates new games every week. This job evicts
// the current season from the cache and recomputes league stats so the next
// request is served warm with fresh data. Historical seasons are immutable
// and never refreshed.
// ═══════════════════════════════════════════════════════════════════════════

// RefreshSeasonJob recomputes the current season's league stats.
type RefreshSeasonJob struct {
	league *cache.LeagueStatsCache
	log    *logger.Logger
	now    func() time.Time
}

// NewRefreshSeasonJob creates the job.
func NewRefreshSeasonJob(league *cache.LeagueStatsCache, log *logger.Logger) *RefreshSeasonJob {
	if log == nil {
		log = logger.Default()
	}
	return &RefreshSeasonJob{
		league: league,
		log:    log.With(logger.Component("refresh_season_job")),
		now:    time.Now,
	}
}

// Name implements scheduler.Job.
func (j *RefreshSeasonJob) Name() string { return "refresh_current_season" }

// Description implements scheduler.Job.
func (j *RefreshSeasonJob) Description() string {
	return "evicts and recomputes league stats for the in-progress season"
}

// Run implements scheduler.Job.
func (j *RefreshSeasonJob) Run(ctx context.Context) error {
	year := timeutil.CurrentSeasonYear(j.now())

	season, err := shared.NewSeasonYear(year)
	if err != nil {
		return fmt.Errorf("current season: %w", err)
	}

	removed := j.league.Clear(year)
	j.log.Debug("evicted current season entries",
		logger.SeasonYear(year),
		logger.Int("removed", removed),
	)

	// Recompute eagerly so the next request hits a warm cache.
	ls, err := j.league.LeagueStatsFor(ctx, season, shared.SeasonTypeRegular, shared.DefaultAnalysisConfig())
	if err != nil {
		return fmt.Errorf("recompute league stats for %d: %w", year, err)
	}

	j.log.Info("current season refreshed",
		logger.SeasonYear(year),
		logger.Int("teams", len(ls.TeamStats)),
	)

	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// SYNC DATABASE SNAPSHOT
// ═══════════════════════════════════════════════════════════════════════════

// SyncDatabaseJob copies the current season's play-by-play into the database
// and refreshes its aggregates, keeping the database-optimized strategy
// usable without a remote fetch per request.
type SyncDatabaseJob struct {
	league *cache.LeagueStatsCache
	store  SeasonStore
	events shared.EventPublisher
	log    *logger.Logger
	now    func() time.Time
}

// SeasonStore is the database surface the sync job needs.
type SeasonStore interface {
	ImportSeason(ctx context.Context, season shared.SeasonYear, t play.Table) (int64, error)
	RefreshAggregates(ctx context.Context) error
}

// NewSyncDatabaseJob creates the job. events may be nil.
func NewSyncDatabaseJob(league *cache.LeagueStatsCache, store SeasonStore, events shared.EventPublisher, log *logger.Logger) *SyncDatabaseJob {
	if log == nil {
		log = logger.Default()
	}
	return &SyncDatabaseJob{
		league: league,
		store:  store,
		events: events,
		log:    log.With(logger.Component("sync_database_job")),
		now:    time.Now,
	}
}

// Name implements scheduler.Job.
func (j *SyncDatabaseJob) Name() string { return "sync_database_snapshot" }

// Description implements scheduler.Job.
func (j *SyncDatabaseJob) Description() string {
	return "persists the current season play-by-play and refreshes aggregates"
}

// Run implements scheduler.Job.
func (j *SyncDatabaseJob) Run(ctx context.Context) error {
	year := timeutil.CurrentSeasonYear(j.now())

	season, err := shared.NewSeasonYear(year)
	if err != nil {
		return fmt.Errorf("current season: %w", err)
	}

	snap, err := j.league.RawSeasonData(ctx, season)
	if err != nil {
		return fmt.Errorf("fetch season %d: %w", year, err)
	}

	rows, err := j.store.ImportSeason(ctx, season, snap.Table)
	if err != nil {
		return fmt.Errorf("import season %d: %w", year, err)
	}

	if err := j.store.RefreshAggregates(ctx); err != nil {
		return fmt.Errorf("refresh aggregates: %w", err)
	}

	j.log.Info("season snapshot persisted",
		logger.SeasonYear(year),
		logger.Int("plays", int(rows)),
		logger.String("source", snap.Source),
	)

	if j.events != nil {
		if err := j.events.Publish(shared.NewSnapshotPersistedEvent(year, rows, snap.Source)); err != nil {
			j.log.Warn("publish snapshot event", logger.Err(err))
		}
	}

	return nil
}
