package repository

import (
	"context"
	"fmt"

	"kitchen-admin/internal/common/db"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS orders (
		id            TEXT PRIMARY KEY,
		customer_name TEXT NOT NULL,
		total         NUMERIC(10,2),
		status        TEXT NOT NULL,
		pickup_code   TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id           BIGSERIAL PRIMARY KEY,
		order_id     TEXT NOT NULL REFERENCES orders(id),
		menu_item_id TEXT NOT NULL,
		name         TEXT NOT NULL,
		quantity     INT NOT NULL CHECK (quantity >= 1),
		price        NUMERIC(10,2) NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		price        NUMERIC(10,2) NOT NULL CHECK (price > 0),
		category     TEXT NOT NULL DEFAULT '',
		image_url    TEXT NOT NULL DEFAULT '',
		is_available BOOLEAN NOT NULL DEFAULT true,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS order_status_log (
		id         BIGSERIAL PRIMARY KEY,
		order_id   TEXT NOT NULL REFERENCES orders(id),
		status     TEXT NOT NULL,
		changed_by TEXT NOT NULL,
		changed_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders (status, created_at DESC)`,
	// Row changes fan out through pg_notify so clients re-query instead of
	// polling. The payload stays empty: the feed carries no diff.
	`CREATE OR REPLACE FUNCTION notify_table_change() RETURNS trigger AS $$
	BEGIN
		PERFORM pg_notify(TG_TABLE_NAME || '_changed', '');
		RETURN NULL;
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS orders_notify ON orders`,
	`CREATE TRIGGER orders_notify AFTER INSERT OR UPDATE OR DELETE ON orders
		FOR EACH STATEMENT EXECUTE FUNCTION notify_table_change()`,
	`DROP TRIGGER IF EXISTS menu_items_notify ON menu_items`,
	`CREATE TRIGGER menu_items_notify AFTER INSERT OR UPDATE OR DELETE ON menu_items
		FOR EACH STATEMENT EXECUTE FUNCTION notify_table_change()`,
}

// Migrate applies the schema. Statements are idempotent, so it is safe to
// run on every startup.
func Migrate(ctx context.Context, conn *db.Conn) error {
	for i, stmt := range migrations {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
