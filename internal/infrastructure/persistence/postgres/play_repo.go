package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/play"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
	"github.com/gridstats/nfl-efficiency-hub/pkg/logger"
	"github.com/gridstats/nfl-efficiency-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// PLAY REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// playSourceName identifies this repository in snapshots and logs.
const playSourceName = "database"

// playColumns is the select list for play rows, in scan order.
const playColumns = `game_id, drive, posteam, defteam, home_team, away_team,
	season_type, week, down, ydstogo, yards_gained, yardline_100, play_type,
	rush_attempt, pass_attempt, two_point_attempt, sack, complete_pass,
	interception, fumble_lost, touchdown, td_team, first_down, first_down_rush,
	first_down_pass, first_down_penalty, extra_point_result,
	two_point_conv_result, field_goal_result, penalty_team, penalty_yards,
	posteam_score_post, defteam_score_post`

// PlayRepository serves play-by-play data from the plays table. Unlike the
// remote source it can scope queries to a single team, which is what makes
// the database-optimized strategy cheap.
type PlayRepository struct {
	conn    *Connection
	log     *logger.Logger
	retrier *retry.Retrier
	now     func() time.Time
}

// NewPlayRepository creates a play repository over an open connection.
func NewPlayRepository(conn *Connection, log *logger.Logger) (*PlayRepository, error) {
	if conn == nil {
		return nil, shared.NewDomainError("postgres", "new_play_repo", shared.ErrInvalidInput, "connection is required")
	}
	if log == nil {
		log = logger.Default()
	}

	return &PlayRepository{
		conn:    conn,
		log:     log.With(logger.Component("postgres.plays")),
		retrier: retry.DatabaseRetrier(),
		now:     time.Now,
	}, nil
}

// GetPlayByPlay loads a full season of plays.
func (r *PlayRepository) GetPlayByPlay(ctx context.Context, season shared.SeasonYear) (play.Snapshot, error) {
	query := fmt.Sprintf(`SELECT %s FROM plays WHERE season = $1 ORDER BY game_id, id`, playColumns)
	return r.querySnapshot(ctx, season, query, season.Int())
}

// GetTeamPlayByPlay loads only one team's possessions for a season, pushing
// the team filter into the query.
func (r *PlayRepository) GetTeamPlayByPlay(ctx context.Context, team shared.TeamAbbr, season shared.SeasonYear) (play.Snapshot, error) {
	query := fmt.Sprintf(`SELECT %s FROM plays WHERE season = $1 AND posteam = $2 ORDER BY game_id, id`, playColumns)
	return r.querySnapshot(ctx, season, query, season.Int(), team.String())
}

// GetTeamGames loads every play from the games a team appeared in, both
// teams' possessions included. Defensive ratings need the opponents' plays,
// so this is the query the database-optimized strategy runs: a team's 17 to
// 21 games instead of the league's 285.
func (r *PlayRepository) GetTeamGames(ctx context.Context, team shared.TeamAbbr, season shared.SeasonYear) (play.Snapshot, error) {
	query := fmt.Sprintf(`SELECT %s FROM plays
		WHERE season = $1
		  AND game_id IN (SELECT DISTINCT game_id FROM plays WHERE season = $1 AND posteam = $2)
		ORDER BY game_id, id`, playColumns)
	return r.querySnapshot(ctx, season, query, season.Int(), team.String())
}

// GetTeamData narrows an in-memory season table to one team's possessions
// and applies the analysis configuration.
func (r *PlayRepository) GetTeamData(t play.Table, team shared.TeamAbbr, cfg shared.AnalysisConfig) play.Table {
	return play.ApplyConfiguration(t.ForTeam(team), cfg)
}

// RequiresCalculation reports that served rows are raw play-by-play.
func (r *PlayRepository) RequiresCalculation() bool { return true }

// SupportsAggregatedData reports that team-scoped queries are available.
func (r *PlayRepository) SupportsAggregatedData() bool { return true }

// SourceName returns the source identifier.
func (r *PlayRepository) SourceName() string { return playSourceName }

// HasSeasonData reports whether any plays are loaded for a season. The
// orchestration layer uses this to validate the database path before
// committing to it.
func (r *PlayRepository) HasSeasonData(ctx context.Context, season shared.SeasonYear) (bool, error) {
	var exists bool
	err := r.retrier.Do(ctx, func(ctx context.Context) error {
		row := r.conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM plays WHERE season = $1)`, season.Int())
		if err := row.Scan(&exists); err != nil {
			return retry.Retryable(err)
		}
		return nil
	})
	if err != nil {
		return false, shared.WrapError("postgres", "has_season_data", shared.ErrExternalService,
			fmt.Sprintf("checking season %d", season.Int()), err)
	}
	return exists, nil
}

// ImportSeason replaces a season's plays with the given table using COPY.
// Returns the number of rows written.
func (r *PlayRepository) ImportSeason(ctx context.Context, season shared.SeasonYear, t play.Table) (int64, error) {
	var written int64

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM plays WHERE season = $1`, season.Int()); err != nil {
			return fmt.Errorf("clear season: %w", err)
		}

		rows := make([][]interface{}, 0, t.Len())
		for _, p := range t.Plays {
			rows = append(rows, []interface{}{
				season.Int(), p.SeasonType, p.Week, p.GameID, p.Drive,
				p.PosTeam, p.DefTeam, p.HomeTeam, p.AwayTeam, p.Down,
				p.YdsToGo, p.YardsGained, p.Yardline100, p.PlayType,
				p.RushAttempt, p.PassAttempt, p.TwoPointAttempt, p.Sack,
				p.CompletePass, p.Interception, p.FumbleLost, p.Touchdown,
				p.TDTeam, p.FirstDown, p.FirstDownRush, p.FirstDownPass,
				p.FirstDownPenalty, p.ExtraPointResult, p.TwoPointConvResult,
				p.FieldGoalResult, p.PenaltyTeam, p.PenaltyYards,
				p.PosTeamScorePost, p.DefTeamScorePost,
			})
		}

		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"plays"},
			[]string{
				"season", "season_type", "week", "game_id", "drive",
				"posteam", "defteam", "home_team", "away_team", "down",
				"ydstogo", "yards_gained", "yardline_100", "play_type",
				"rush_attempt", "pass_attempt", "two_point_attempt", "sack",
				"complete_pass", "interception", "fumble_lost", "touchdown",
				"td_team", "first_down", "first_down_rush", "first_down_pass",
				"first_down_penalty", "extra_point_result", "two_point_conv_result",
				"field_goal_result", "penalty_team", "penalty_yards",
				"posteam_score_post", "defteam_score_post",
			},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("copy plays: %w", err)
		}
		written = n
		return nil
	})
	if err != nil {
		return 0, shared.WrapError("postgres", "import_season", shared.ErrExternalService,
			fmt.Sprintf("importing season %d", season.Int()), err)
	}

	r.log.Info("season imported",
		logger.SeasonYear(season.Int()),
		logger.Int64("rows", written),
	)
	return written, nil
}

// RefreshAggregates rebuilds the season aggregate view and stamps the
// refresh log.
func (r *PlayRepository) RefreshAggregates(ctx context.Context) error {
	if _, err := r.conn.Exec(ctx, `REFRESH MATERIALIZED VIEW team_season_aggregates`); err != nil {
		return shared.WrapError("postgres", "refresh_aggregates", shared.ErrExternalService,
			"refreshing team_season_aggregates", err)
	}

	// Log table is optional; a failed stamp is not a failed refresh.
	if _, err := r.conn.Exec(ctx,
		`UPDATE aggregate_refresh_log SET last_refresh = NOW() WHERE view_name = 'team_season_aggregates'`,
	); err != nil {
		r.log.Debug("refresh log not updated", logger.Err(err))
	}

	return nil
}

// AggregateFreshness returns when the aggregates were last refreshed, or nil
// when no refresh has been recorded.
func (r *PlayRepository) AggregateFreshness(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	row := r.conn.QueryRow(ctx, `SELECT MIN(last_refresh) FROM aggregate_refresh_log`)
	if err := row.Scan(&last); err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, shared.WrapError("postgres", "aggregate_freshness", shared.ErrExternalService,
			"reading refresh log", err)
	}
	return last, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ROW SCANNING
// ══════════════════════════════════════════════════════════════════════════════

func (r *PlayRepository) querySnapshot(ctx context.Context, season shared.SeasonYear, query string, args ...interface{}) (play.Snapshot, error) {
	var plays []play.Play

	err := r.retrier.Do(ctx, func(ctx context.Context) error {
		rows, err := r.conn.Query(ctx, query, args...)
		if err != nil {
			return retry.Retryable(err)
		}
		defer rows.Close()

		plays = plays[:0]
		for rows.Next() {
			p, err := scanPlay(rows)
			if err != nil {
				return retry.Permanent(err)
			}
			plays = append(plays, p)
		}
		return rows.Err()
	})
	if err != nil {
		return play.Snapshot{}, shared.WrapError("postgres", "query_plays", shared.ErrExternalService,
			fmt.Sprintf("loading season %d", season.Int()), err)
	}

	r.log.Debug("plays loaded",
		logger.SeasonYear(season.Int()),
		logger.PlayCount(len(plays)),
	)

	return play.Snapshot{
		Table:     play.NewTable(plays),
		FetchedAt: r.now(),
		Source:    playSourceName,
	}, nil
}

func scanPlay(rows pgx.Rows) (play.Play, error) {
	var p play.Play
	err := rows.Scan(
		&p.GameID, &p.Drive, &p.PosTeam, &p.DefTeam, &p.HomeTeam, &p.AwayTeam,
		&p.SeasonType, &p.Week, &p.Down, &p.YdsToGo, &p.YardsGained,
		&p.Yardline100, &p.PlayType,
		&p.RushAttempt, &p.PassAttempt, &p.TwoPointAttempt, &p.Sack,
		&p.CompletePass, &p.Interception, &p.FumbleLost, &p.Touchdown,
		&p.TDTeam, &p.FirstDown, &p.FirstDownRush, &p.FirstDownPass,
		&p.FirstDownPenalty, &p.ExtraPointResult, &p.TwoPointConvResult,
		&p.FieldGoalResult, &p.PenaltyTeam, &p.PenaltyYards,
		&p.PosTeamScorePost, &p.DefTeamScorePost,
	)
	if err != nil {
		return play.Play{}, fmt.Errorf("scan play: %w", err)
	}
	return p, nil
}
