package postgres

// schema is applied statement by statement by Migrate.
//
//nolint:gochecknoglobals // Static DDL.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS trips (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		category       TEXT NOT NULL,
		mode           TEXT NOT NULL DEFAULT '',
		emission_value DOUBLE PRECISION NOT NULL DEFAULT 0,
		distance_miles DOUBLE PRECISION NOT NULL DEFAULT 0,
		passengers     INTEGER NOT NULL DEFAULT 1,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS trips_user_idx ON trips (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS routes (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		distance_miles DOUBLE PRECISION NOT NULL DEFAULT 0,
		emission       DOUBLE PRECISION NOT NULL DEFAULT 0,
		mode           TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS recommendations (
		id                TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL,
		strategy_key      TEXT NOT NULL,
		description       TEXT NOT NULL,
		category          TEXT NOT NULL,
		current_emissions DOUBLE PRECISION NOT NULL,
		potential_savings DOUBLE PRECISION NOT NULL,
		potential_impact  DOUBLE PRECISION NOT NULL,
		vehicle_type      TEXT NOT NULL,
		level             TEXT NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id                TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL,
		recommendation_id TEXT NOT NULL DEFAULT '',
		strategy_key      TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		accepted          BOOLEAN,
		feedback          TEXT NOT NULL DEFAULT '',
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS goals (
		user_id                  TEXT PRIMARY KEY,
		target_reduction_percent DOUBLE PRECISION NOT NULL,
		description              TEXT NOT NULL DEFAULT '',
		set_at                   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}
