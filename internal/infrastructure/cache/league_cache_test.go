package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/play"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/ranking"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/stats"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/toer"
)

// fakeRepository serves a fixed snapshot and counts full-season fetches.
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

func (f *fakeRepository) GetTeamData(t play.Table, team shared.TeamAbbr, cfg shared.AnalysisConfig) play.Table {
	return play.ApplyConfiguration(t.ForTeam(team), cfg)
}

func (f *fakeRepository) GetTeamPlayByPlay(ctx context.Context, team shared.TeamAbbr, season shared.SeasonYear) (play.Snapshot, error) {
	snap, err := f.GetPlayByPlay(ctx, season)
	if err != nil {
		return play.Snapshot{}, err
	}
	snap.Table = snap.Table.ForTeam(team)
	return snap, nil
}

func (f *fakeRepository) RequiresCalculation() bool    { return true }
func (f *fakeRepository) SupportsAggregatedData() bool { return false }
func (f *fakeRepository) SourceName() string           { return "fake" }

type capturingPublisher struct {
	events []shared.Event
}

func (p *capturingPublisher) Publish(e shared.Event) error {
	p.events = append(p.events, e)
	return nil
}

func (p *capturingPublisher) has(t shared.EventType) bool {
	for _, e := range p.events {
		if e.EventType() == t {
			return true
		}
	}
	return false
}

func leagueFixture() play.Snapshot {
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
		FetchedAt: time.Date(2024, time.February, 10, 8, 0, 0, 0, time.UTC),
		Source:    "fake",
	}
}

func newTestLeagueCache(t *testing.T, repo play.Repository, events shared.EventPublisher) *LeagueStatsCache {
	t.Helper()

	engine, err := toer.NewEngine()
	assert.NoError(t, err)

	lc, err := NewLeagueStatsCache(
		repo,
		stats.NewCalculator(nil),
		stats.NewGameProcessor(engine, nil),
		ranking.NewEngine(),
		events,
		nil,
		DefaultConfig(),
	)
	assert.NoError(t, err)
	return lc
}

func TestNewLeagueStatsCache_Validation(t *testing.T) {
	engine, err := toer.NewEngine()
	assert.NoError(t, err)

	_, err = NewLeagueStatsCache(nil, stats.NewCalculator(nil), stats.NewGameProcessor(engine, nil), ranking.NewEngine(), nil, nil, DefaultConfig())
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewLeagueStatsCache(&fakeRepository{}, nil, nil, nil, nil, nil, DefaultConfig())
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestLeagueStatsFor_ComputesAndCaches(t *testing.T) {
	repo := &fakeRepository{snapshot: leagueFixture()}
	pub := &capturingPublisher{}
	lc := newTestLeagueCache(t, repo, pub)

	ctx := context.Background()
	cfg := shared.DefaultAnalysisConfig()

	ls, err := lc.LeagueStatsFor(ctx, 2023, shared.SeasonTypeRegular, cfg)
	assert.NoError(t, err)
	assert.Len(t, ls.TeamStats, 2)
	assert.Contains(t, ls.TeamStats, shared.TeamAbbr("KC"))
	assert.Contains(t, ls.TeamStats, shared.TeamAbbr("BUF"))
	assert.Len(t, ls.Averages, len(ranking.Metrics))
	assert.Equal(t, "fake", ls.Source)
	assert.Equal(t, repo.snapshot.FetchedAt, ls.DataTimestamp)

	kc := ls.TeamStats["KC"]
	assert.Equal(t, 1, kc.GamesPlayed)
	assert.InDelta(t, 6.0, kc.AvgYardsPerPlay, 0.001)
	assert.Positive(t, kc.TOER, "per-game ratings should be folded into season stats")

	again, err := lc.LeagueStatsFor(ctx, 2023, shared.SeasonTypeRegular, cfg)
	assert.NoError(t, err)
	assert.Equal(t, ls.TeamStats, again.TeamStats)
	assert.Equal(t, 1, repo.fetches, "second request should hit the cache")

	assert.True(t, pub.has(shared.EventSeasonDataFetched))
	assert.True(t, pub.has(shared.EventRankingsComputed))
}

func TestLeagueStatsFor_RawDataSharedAcrossSeasonTypes(t *testing.T) {
	snap := leagueFixture()
	post := snap.Table.Plays[0]
	post.GameID = "2023_22_BUF_KC"
	post.SeasonType = "POST"
	snap.Table.Plays = append(snap.Table.Plays, post)

	repo := &fakeRepository{snapshot: snap}
	lc := newTestLeagueCache(t, repo, nil)
	ctx := context.Background()
	cfg := shared.DefaultAnalysisConfig()

	_, err := lc.LeagueStatsFor(ctx, 2023, shared.SeasonTypeRegular, cfg)
	assert.NoError(t, err)
	_, err = lc.LeagueStatsFor(ctx, 2023, shared.SeasonTypePostseason, cfg)
	assert.NoError(t, err)

	assert.Equal(t, 1, repo.fetches, "both season types should share one raw fetch")
}

func TestLeagueStatsFor_NoPlaysForSeasonType(t *testing.T) {
	repo := &fakeRepository{snapshot: leagueFixture()}
	lc := newTestLeagueCache(t, repo, nil)

	_, err := lc.LeagueStatsFor(context.Background(), 2023, shared.SeasonTypePostseason, shared.DefaultAnalysisConfig())
	assert.ErrorIs(t, err, shared.ErrEmptyDataset)
}

func TestLeagueStatsFor_FetchErrorNotCached(t *testing.T) {
	boom := errors.New("network down")
	repo := &fakeRepository{err: boom}
	lc := newTestLeagueCache(t, repo, nil)
	ctx := context.Background()

	_, err := lc.LeagueStatsFor(ctx, 2023, shared.SeasonTypeRegular, shared.DefaultAnalysisConfig())
	assert.ErrorIs(t, err, boom)

	repo.err = nil
	repo.snapshot = leagueFixture()
	ls, err := lc.LeagueStatsFor(ctx, 2023, shared.SeasonTypeRegular, shared.DefaultAnalysisConfig())
	assert.NoError(t, err)
	assert.Len(t, ls.TeamStats, 2)
}

func TestTeamRankings_EagerlyPrecomputed(t *testing.T) {
	repo := &fakeRepository{snapshot: leagueFixture()}
	lc := newTestLeagueCache(t, repo, nil)
	ctx := context.Background()
	cfg := shared.DefaultAnalysisConfig()

	_, err := lc.LeagueStatsFor(ctx, 2023, shared.SeasonTypeRegular, cfg)
	assert.NoError(t, err)

	r, err := lc.TeamRankings(ctx, "BUF", 2023, shared.SeasonTypeRegular, cfg)
	assert.NoError(t, err)
	assert.Len(t, r, len(ranking.Metrics))
	// BUF's single pass play out-gains KC's single rush.
	assert.Equal(t, 1, r[stats.MetricAvgYardsPerPlay])

	assert.Equal(t, 1, repo.fetches, "rankings should come from the eager pre-compute")
}

func TestTeamRankings_ColdCache(t *testing.T) {
	repo := &fakeRepository{snapshot: leagueFixture()}
	lc := newTestLeagueCache(t, repo, nil)

	r, err := lc.TeamRankings(context.Background(), "KC", 2023, shared.SeasonTypeRegular, shared.DefaultAnalysisConfig())
	assert.NoError(t, err)
	assert.Equal(t, 2, r[stats.MetricAvgYardsPerPlay])
	assert.Equal(t, 1, repo.fetches)
}

func TestTeamRankings_UnknownTeam(t *testing.T) {
	repo := &fakeRepository{snapshot: leagueFixture()}
	lc := newTestLeagueCache(t, repo, nil)

	r, err := lc.TeamRankings(context.Background(), "NYJ", 2023, shared.SeasonTypeRegular, shared.DefaultAnalysisConfig())
	assert.NoError(t, err)
	assert.Empty(t, r)
}

func TestClear_BySeason(t *testing.T) {
	repo := &fakeRepository{snapshot: leagueFixture()}
	pub := &capturingPublisher{}
	lc := newTestLeagueCache(t, repo, pub)
	ctx := context.Background()
	cfg := shared.DefaultAnalysisConfig()

	_, err := lc.LeagueStatsFor(ctx, 2023, shared.SeasonTypeRegular, cfg)
	assert.NoError(t, err)

	// Stats, rankings and raw data for 2023.
	removed := lc.Clear(2023)
	assert.Equal(t, 3, removed)
	assert.True(t, pub.has(shared.EventCacheCleared))

	_, err = lc.LeagueStatsFor(ctx, 2023, shared.SeasonTypeRegular, cfg)
	assert.NoError(t, err)
	assert.Equal(t, 2, repo.fetches, "clearing the season should force a refetch")
}

func TestClear_OtherSeasonUntouched(t *testing.T) {
	repo := &fakeRepository{snapshot: leagueFixture()}
	lc := newTestLeagueCache(t, repo, nil)
	ctx := context.Background()
	cfg := shared.DefaultAnalysisConfig()

	_, err := lc.LeagueStatsFor(ctx, 2023, shared.SeasonTypeRegular, cfg)
	assert.NoError(t, err)

	assert.Zero(t, lc.Clear(2022))

	_, err = lc.LeagueStatsFor(ctx, 2023, shared.SeasonTypeRegular, cfg)
	assert.NoError(t, err)
	assert.Equal(t, 1, repo.fetches)
}

func TestClear_All(t *testing.T) {
	repo := &fakeRepository{snapshot: leagueFixture()}
	lc := newTestLeagueCache(t, repo, nil)

	_, err := lc.LeagueStatsFor(context.Background(), 2023, shared.SeasonTypeRegular, shared.DefaultAnalysisConfig())
	assert.NoError(t, err)

	assert.Equal(t, 3, lc.Clear(0))
	assert.Zero(t, lc.Info().TotalEntries())
}

func TestInfo_AggregatesCaches(t *testing.T) {
	repo := &fakeRepository{snapshot: leagueFixture()}
	lc := newTestLeagueCache(t, repo, nil)

	_, err := lc.LeagueStatsFor(context.Background(), 2023, shared.SeasonTypeRegular, shared.DefaultAnalysisConfig())
	assert.NoError(t, err)

	info := lc.Info()
	assert.Equal(t, 1, info.Stats.Size)
	assert.Equal(t, 1, info.Rankings.Size)
	assert.Equal(t, 1, info.RawData.Size)
	assert.Equal(t, 3, info.TotalEntries())
}

func TestSeasonTTLPolicy(t *testing.T) {
	repo := &fakeRepository{snapshot: leagueFixture()}
	lc := newTestLeagueCache(t, repo, nil)
	lc.now = func() time.Time { return time.Date(2024, time.November, 1, 12, 0, 0, 0, time.UTC) }

	assert.Equal(t, NoExpiry, lc.statsTTL(2020), "completed seasons never go stale")
	assert.Equal(t, NoExpiry, lc.rawTTL(2020))
	assert.Equal(t, lc.cfg.CurrentSeasonTTL, lc.statsTTL(2024))
	assert.Equal(t, lc.cfg.RawDataTTL, lc.rawTTL(2024))
}

// fakeSnapshotStore is a map-backed SnapshotStore.
type fakeSnapshotStore struct {
	entries map[string]LeagueStats
	getErr  error
	setErr  error
	sets    int
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{entries: make(map[string]LeagueStats)}
}

func (s *fakeSnapshotStore) GetLeagueStats(_ context.Context, key string) (LeagueStats, error) {
	if s.getErr != nil {
		return LeagueStats{}, s.getErr
	}
	ls, ok := s.entries[key]
	if !ok {
		return LeagueStats{}, errors.New("miss")
	}
	return ls, nil
}

func (s *fakeSnapshotStore) SetLeagueStats(_ context.Context, key string, ls LeagueStats, _ time.Duration) error {
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.entries[key] = ls
	return nil
}

func (s *fakeSnapshotStore) Clear(_ context.Context, pattern string) (int, error) {
	if pattern == "" {
		n := len(s.entries)
		s.entries = make(map[string]LeagueStats)
		return n, nil
	}
	var n int
	for key := range s.entries {
		if strings.Contains(key, pattern) {
			delete(s.entries, key)
			n++
		}
	}
	return n, nil
}

func TestSnapshotStore_WriteThrough(t *testing.T) {
	repo := &fakeRepository{snapshot: leagueFixture()}
	store := newFakeSnapshotStore()
	lc := newTestLeagueCache(t, repo, nil).WithSnapshotStore(store)

	_, err := lc.LeagueStatsFor(context.Background(), 2023, shared.SeasonTypeRegular, shared.DefaultAnalysisConfig())
	assert.NoError(t, err)

	key := shared.CacheKey(2023, shared.SeasonTypeRegular, shared.DefaultAnalysisConfig())
	stored, ok := store.entries[key]
	assert.True(t, ok, "computed snapshot is written through to the store")
	assert.Len(t, stored.TeamStats, 2)
}

func TestSnapshotStore_ServesMemoryMiss(t *testing.T) {
	repo := &fakeRepository{snapshot: leagueFixture()}
	seed := newTestLeagueCache(t, repo, nil)
	seeded, err := seed.LeagueStatsFor(context.Background(), 2023, shared.SeasonTypeRegular, shared.DefaultAnalysisConfig())
	assert.NoError(t, err)

	store := newFakeSnapshotStore()
	key := shared.CacheKey(2023, shared.SeasonTypeRegular, shared.DefaultAnalysisConfig())
	store.entries[key] = seeded

	cold := &fakeRepository{snapshot: leagueFixture()}
	lc := newTestLeagueCache(t, cold, nil).WithSnapshotStore(store)

	got, err := lc.LeagueStatsFor(context.Background(), 2023, shared.SeasonTypeRegular, shared.DefaultAnalysisConfig())
	assert.NoError(t, err)
	assert.Equal(t, seeded.TeamStats, got.TeamStats)
	assert.Equal(t, 0, cold.fetches, "store hit avoids the play-by-play fetch")

	// The store hit also rebuilds rankings for the eager path.
	r, err := lc.TeamRankings(context.Background(), "BUF", 2023, shared.SeasonTypeRegular, shared.DefaultAnalysisConfig())
	assert.NoError(t, err)
	assert.NotEmpty(t, r)
	assert.Equal(t, 0, cold.fetches)
}

func TestSnapshotStore_FailuresAreSoft(t *testing.T) {
	repo := &fakeRepository{snapshot: leagueFixture()}
	store := newFakeSnapshotStore()
	store.getErr = errors.New("redis down")
	store.setErr = errors.New("redis down")
	lc := newTestLeagueCache(t, repo, nil).WithSnapshotStore(store)

	ls, err := lc.LeagueStatsFor(context.Background(), 2023, shared.SeasonTypeRegular, shared.DefaultAnalysisConfig())
	assert.NoError(t, err, "store failures never fail the request")
	assert.Len(t, ls.TeamStats, 2)
	assert.Equal(t, 1, store.sets, "write-through is still attempted")
}

func TestSnapshotStore_ClearedWithSeason(t *testing.T) {
	repo := &fakeRepository{snapshot: leagueFixture()}
	store := newFakeSnapshotStore()
	lc := newTestLeagueCache(t, repo, nil).WithSnapshotStore(store)

	_, err := lc.LeagueStatsFor(context.Background(), 2023, shared.SeasonTypeRegular, shared.DefaultAnalysisConfig())
	assert.NoError(t, err)
	assert.Len(t, store.entries, 1)

	removed := lc.Clear(2023)
	assert.Empty(t, store.entries)
	assert.GreaterOrEqual(t, removed, 4, "memory entries plus the store entry")
}
