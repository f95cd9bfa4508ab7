package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/play"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/ranking"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/stats"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/toer"
	"github.com/gridstats/nfl-efficiency-hub/internal/infrastructure/cache"
)

// frozenNow maps to the 2023 season (February is still the previous season).
var frozenNow = time.Date(2024, time.February, 10, 8, 0, 0, 0, time.UTC)

type fakeRepository struct {
	snapshot play.Snapshot
	err      error
	fetches  int
}

func (f *fakeRepository) GetPlayByPlay(_ context.Context, _ shared.SeasonYear) (play.Snapshot, error) {
	f.fetches++
	if f.err != nil {
		return play.Snapshot{}, f.err
	}
	return f.snapshot, nil
}

func (f *fakeRepository) GetTeamPlayByPlay(ctx context.Context, team shared.TeamAbbr, season shared.SeasonYear) (play.Snapshot, error) {
	snap, err := f.GetPlayByPlay(ctx, season)
	if err != nil {
		return play.Snapshot{}, err
	}
	snap.Table = snap.Table.ForTeam(team)
	return snap, nil
}

func (f *fakeRepository) GetTeamData(t play.Table, team shared.TeamAbbr, cfg shared.AnalysisConfig) play.Table {
	return play.ApplyConfiguration(t.ForTeam(team), cfg)
}

func (f *fakeRepository) RequiresCalculation() bool    { return true }
func (f *fakeRepository) SupportsAggregatedData() bool { return false }
func (f *fakeRepository) SourceName() string           { return "fake" }

type fakeSeasonStore struct {
	imported  int64
	refreshes int
	importErr error
}

func (f *fakeSeasonStore) ImportSeason(_ context.Context, _ shared.SeasonYear, t play.Table) (int64, error) {
	if f.importErr != nil {
		return 0, f.importErr
	}
	f.imported = int64(t.Len())
	return f.imported, nil
}

func (f *fakeSeasonStore) RefreshAggregates(_ context.Context) error {
	f.refreshes++
	return nil
}

type capturingPublisher struct {
	events []shared.Event
}

func (p *capturingPublisher) Publish(e shared.Event) error {
	p.events = append(p.events, e)
	return nil
}

func seasonFixture() play.Snapshot {
	fp := func(v float64) *float64 { return &v }
	ip := func(v int) *int { return &v }

	plays := []play.Play{
		{
			GameID: "2023_01_BUF_KC", Drive: ip(1), PosTeam: "KC", DefTeam: "BUF",
			HomeTeam: "KC", AwayTeam: "BUF", SeasonType: "REG", Week: 1,
			Down: ip(1), YdsToGo: 10, YardsGained: fp(6), PlayType: "run",
			RushAttempt: true, FirstDownRush: true, FirstDown: true,
		},
		{
			GameID: "2023_01_BUF_KC", Drive: ip(2), PosTeam: "BUF", DefTeam: "KC",
			HomeTeam: "KC", AwayTeam: "BUF", SeasonType: "REG", Week: 1,
			Down: ip(1), YdsToGo: 10, YardsGained: fp(8), PlayType: "pass",
			PassAttempt: true, CompletePass: true, FirstDownPass: true, FirstDown: true,
		},
	}

	return play.Snapshot{
		Table:     play.NewTable(plays),
		FetchedAt: frozenNow.Add(-time.Hour),
		Source:    "fake",
	}
}

func newJobsLeagueCache(t *testing.T, repo play.Repository) *cache.LeagueStatsCache {
	t.Helper()

	engine, err := toer.NewEngine()
	assert.NoError(t, err)

	lc, err := cache.NewLeagueStatsCache(
		repo,
		stats.NewCalculator(nil),
		stats.NewGameProcessor(engine, nil),
		ranking.NewEngine(),
		nil,
		nil,
		cache.DefaultConfig(),
	)
	assert.NoError(t, err)
	return lc
}

func TestRefreshSeasonJob_RecomputesCurrentSeason(t *testing.T) {
	repo := &fakeRepository{snapshot: seasonFixture()}
	lc := newJobsLeagueCache(t, repo)

	job := NewRefreshSeasonJob(lc, nil)
	job.now = func() time.Time { return frozenNow }

	assert.Equal(t, "refresh_current_season", job.Name())
	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, repo.fetches)

	// The cache is warm afterwards: another lookup costs no fetch.
	season, _ := shared.NewSeasonYear(2023)
	_, err := lc.LeagueStatsFor(context.Background(), season, shared.SeasonTypeRegular, shared.DefaultAnalysisConfig())
	assert.NoError(t, err)
	assert.Equal(t, 1, repo.fetches)
}

func TestRefreshSeasonJob_FetchFailure(t *testing.T) {
	repo := &fakeRepository{err: errors.New("upstream down")}
	lc := newJobsLeagueCache(t, repo)

	job := NewRefreshSeasonJob(lc, nil)
	job.now = func() time.Time { return frozenNow }

	assert.Error(t, job.Run(context.Background()))
}

func TestSyncDatabaseJob_PersistsAndPublishes(t *testing.T) {
	repo := &fakeRepository{snapshot: seasonFixture()}
	lc := newJobsLeagueCache(t, repo)
	store := &fakeSeasonStore{}
	pub := &capturingPublisher{}

	job := NewSyncDatabaseJob(lc, store, pub, nil)
	job.now = func() time.Time { return frozenNow }

	assert.Equal(t, "sync_database_snapshot", job.Name())
	assert.NoError(t, job.Run(context.Background()))

	assert.Equal(t, int64(2), store.imported)
	assert.Equal(t, 1, store.refreshes)

	assert.Len(t, pub.events, 1)
	assert.Equal(t, shared.EventSnapshotPersisted, pub.events[0].EventType())
}

func TestSyncDatabaseJob_ImportFailureSkipsRefresh(t *testing.T) {
	repo := &fakeRepository{snapshot: seasonFixture()}
	lc := newJobsLeagueCache(t, repo)
	store := &fakeSeasonStore{importErr: errors.New("copy failed")}

	job := NewSyncDatabaseJob(lc, store, nil, nil)
	job.now = func() time.Time { return frozenNow }

	assert.Error(t, job.Run(context.Background()))
	assert.Equal(t, 0, store.refreshes)
}
