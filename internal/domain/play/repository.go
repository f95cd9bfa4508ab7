package play

import (
	"context"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
)

// Repository provides play-by-play data for a season. Implementations differ
// in where the data lives and how much of it they can serve, and they
// advertise those capabilities so the orchestration layer can pick a
// computation strategy once at construction time.
type Repository interface {
	// GetPlayByPlay returns a full season of play-by-play data together
	// with the time the data was fetched from its origin.
	GetPlayByPlay(ctx context.Context, season shared.SeasonYear) (Snapshot, error)

	// GetTeamData narrows a season table to one team's offensive
	// possessions and applies the analysis configuration.
	GetTeamData(t Table, team shared.TeamAbbr, cfg shared.AnalysisConfig) Table

	// GetTeamPlayByPlay returns only one team's plays for a season,
	// letting storage-backed sources push the team filter into the query.
	GetTeamPlayByPlay(ctx context.Context, team shared.TeamAbbr, season shared.SeasonYear) (Snapshot, error)

	// RequiresCalculation reports whether the data needs statistical
	// calculation (raw play-by-play) as opposed to pre-calculated
	// aggregates.
	RequiresCalculation() bool

	// SupportsAggregatedData reports whether the repository can serve
	// team-scoped queries without downloading a full season.
	SupportsAggregatedData() bool

	// SourceName is a human-readable name of the data source for logging.
	SourceName() string
}
