package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// schemaDDL creates the catalog and preference tables. {{schema}} is replaced by
// the quoted schema name.
const schemaDDL = `
CREATE SCHEMA IF NOT EXISTS {{schema}};

CREATE TABLE IF NOT EXISTS {{schema}}.regions (
	code        TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	parent_code TEXT,
	level       SMALLINT NOT NULL
);

CREATE TABLE IF NOT EXISTS {{schema}}.stores (
	store_id         TEXT PRIMARY KEY,
	store_name       TEXT NOT NULL,
	tel_no           TEXT,
	post_no          TEXT,
	jibun_addr       TEXT NOT NULL DEFAULT '',
	road_addr        TEXT NOT NULL DEFAULT '',
	x_coord          DOUBLE PRECISION,
	y_coord          DOUBLE PRECISION,
	area_code        TEXT NOT NULL DEFAULT '',
	area_detail_code TEXT NOT NULL DEFAULT '',
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS stores_area_code_idx ON {{schema}}.stores (area_code);

CREATE TABLE IF NOT EXISTS {{schema}}.goods (
	good_id   TEXT PRIMARY KEY,
	good_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS {{schema}}.prices (
	good_id     TEXT NOT NULL REFERENCES {{schema}}.goods (good_id),
	store_id    TEXT NOT NULL REFERENCES {{schema}}.stores (store_id),
	inspect_day TEXT NOT NULL,
	price       BIGINT NOT NULL CHECK (price > 0),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (good_id, store_id, inspect_day)
);

CREATE TABLE IF NOT EXISTS {{schema}}.preferences (
	user_id         TEXT PRIMARY KEY,
	w_price         DOUBLE PRECISION NOT NULL DEFAULT 0.5,
	w_distance      DOUBLE PRECISION NOT NULL DEFAULT 0.5,
	selection_count INTEGER NOT NULL DEFAULT 0,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS {{schema}}.user_selection_log (
	id              BIGSERIAL PRIMARY KEY,
	user_id         TEXT NOT NULL,
	store_id        TEXT NOT NULL,
	good_name       TEXT NOT NULL DEFAULT '',
	preference_type TEXT NOT NULL,
	price           BIGINT NOT NULL DEFAULT 0,
	distance_km     DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS user_selection_log_user_idx
	ON {{schema}}.user_selection_log (user_id, created_at DESC);
`

// Migrate creates the tables in schema if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	if schema == "" {
		schema = "public"
	}
	ddl := strings.ReplaceAll(schemaDDL, "{{schema}}", pq.QuoteIdentifier(schema))
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to migrate schema %s: %w", schema, err)
	}
	return nil
}
