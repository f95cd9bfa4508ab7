package nflverse

import (
	"context"
	"time"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/play"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
)

// sourceName identifies this repository in snapshots and logs.
const sourceName = "nflverse"

// Repository serves play-by-play data from nflverse release files. It always
// downloads full seasons; team filtering happens locally, so it reports no
// aggregated-data support and the orchestration layer treats it as the
// fresh-remote source.
type Repository struct {
	client *Client
	now    func() time.Time
}

// NewRepository wraps a client in the domain repository port.
func NewRepository(client *Client) *Repository {
	return &Repository{client: client, now: time.Now}
}

// GetPlayByPlay downloads a full season.
func (r *Repository) GetPlayByPlay(ctx context.Context, season shared.SeasonYear) (play.Snapshot, error) {
	table, err := r.client.FetchSeason(ctx, season)
	if err != nil {
		return play.Snapshot{}, err
	}
	return play.Snapshot{
		Table:     table,
		FetchedAt: r.now(),
		Source:    sourceName,
	}, nil
}

// GetTeamData narrows a season table to one team's possessions and applies
// the analysis configuration.
func (r *Repository) GetTeamData(t play.Table, team shared.TeamAbbr, cfg shared.AnalysisConfig) play.Table {
	return play.ApplyConfiguration(t.ForTeam(team), cfg)
}

// GetTeamPlayByPlay downloads the full season and filters locally; release
// files are not addressable per team.
func (r *Repository) GetTeamPlayByPlay(ctx context.Context, team shared.TeamAbbr, season shared.SeasonYear) (play.Snapshot, error) {
	snap, err := r.GetPlayByPlay(ctx, season)
	if err != nil {
		return play.Snapshot{}, err
	}
	snap.Table = snap.Table.ForTeam(team)
	return snap, nil
}

// RequiresCalculation reports that the data is raw play-by-play.
func (r *Repository) RequiresCalculation() bool { return true }

// SupportsAggregatedData reports that team-scoped queries are not supported.
func (r *Repository) SupportsAggregatedData() bool { return false }

// SourceName returns the source identifier.
func (r *Repository) SourceName() string { return sourceName }
