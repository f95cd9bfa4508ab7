package postgres

// Embedded migration SQL. The plays table mirrors the nflverse play-by-play
// schema subset the calculators consume; the materialized views provide the
// pre-aggregated fast path for the database-optimized strategy.

const migration001Up = `
CREATE TABLE IF NOT EXISTS plays (
	id BIGSERIAL PRIMARY KEY,
	season INTEGER NOT NULL,
	season_type TEXT NOT NULL DEFAULT 'REG',
	week INTEGER NOT NULL DEFAULT 0,
	game_id TEXT NOT NULL,
	drive INTEGER,
	posteam TEXT NOT NULL DEFAULT '',
	defteam TEXT NOT NULL DEFAULT '',
	home_team TEXT NOT NULL DEFAULT '',
	away_team TEXT NOT NULL DEFAULT '',
	down INTEGER,
	ydstogo INTEGER NOT NULL DEFAULT 0,
	yards_gained DOUBLE PRECISION,
	yardline_100 DOUBLE PRECISION,
	play_type TEXT NOT NULL DEFAULT '',
	rush_attempt BOOLEAN NOT NULL DEFAULT FALSE,
	pass_attempt BOOLEAN NOT NULL DEFAULT FALSE,
	two_point_attempt BOOLEAN NOT NULL DEFAULT FALSE,
	sack BOOLEAN NOT NULL DEFAULT FALSE,
	complete_pass BOOLEAN NOT NULL DEFAULT FALSE,
	interception BOOLEAN NOT NULL DEFAULT FALSE,
	fumble_lost BOOLEAN NOT NULL DEFAULT FALSE,
	touchdown BOOLEAN NOT NULL DEFAULT FALSE,
	td_team TEXT NOT NULL DEFAULT '',
	first_down BOOLEAN NOT NULL DEFAULT FALSE,
	first_down_rush BOOLEAN NOT NULL DEFAULT FALSE,
	first_down_pass BOOLEAN NOT NULL DEFAULT FALSE,
	first_down_penalty BOOLEAN NOT NULL DEFAULT FALSE,
	extra_point_result TEXT NOT NULL DEFAULT '',
	two_point_conv_result TEXT NOT NULL DEFAULT '',
	field_goal_result TEXT NOT NULL DEFAULT '',
	penalty_team TEXT NOT NULL DEFAULT '',
	penalty_yards DOUBLE PRECISION NOT NULL DEFAULT 0,
	posteam_score_post DOUBLE PRECISION,
	defteam_score_post DOUBLE PRECISION,
	loaded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_plays_season ON plays(season);
CREATE INDEX IF NOT EXISTS idx_plays_season_team ON plays(season, posteam);
CREATE INDEX IF NOT EXISTS idx_plays_game ON plays(game_id);
`

const migration001Down = `
DROP TABLE IF EXISTS plays;
`

const migration002Up = `
CREATE MATERIALIZED VIEW IF NOT EXISTS team_season_aggregates AS
SELECT
	season,
	season_type,
	posteam,
	COUNT(DISTINCT game_id) AS games_played,
	COUNT(*) AS total_plays,
	COALESCE(SUM(yards_gained), 0) AS total_yards
FROM plays
WHERE posteam <> ''
GROUP BY season, season_type, posteam
WITH NO DATA;

CREATE INDEX IF NOT EXISTS idx_team_season_aggregates
	ON team_season_aggregates(season, posteam);
`

const migration002Down = `
DROP MATERIALIZED VIEW IF EXISTS team_season_aggregates;
`

const migration003Up = `
CREATE TABLE IF NOT EXISTS aggregate_refresh_log (
	view_name TEXT PRIMARY KEY,
	last_refresh TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

INSERT INTO aggregate_refresh_log (view_name)
VALUES ('team_season_aggregates')
ON CONFLICT (view_name) DO NOTHING;
`

const migration003Down = `
DROP TABLE IF EXISTS aggregate_refresh_log;
`

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_plays",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_season_aggregates",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_refresh_log",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}
