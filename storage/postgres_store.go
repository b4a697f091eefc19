package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"flyer-deals/models"
	"flyer-deals/utils"
)

// PostgresStore persists deals to PostgreSQL (15+, for NULLS NOT DISTINCT).
type PostgresStore struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// seeds the priority stores and returns a ready-to-use PostgresStore.
func NewPostgresStore(dsn string, connectAttempts int, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: connectAttempts, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do("postgres-ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	ps := &PostgresStore{db: db, logger: logger}
	if err := ps.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS stores (
		id         UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
		name       TEXT        NOT NULL,
		slug       TEXT        UNIQUE NOT NULL,
		logo_url   TEXT,
		website    TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS deals (
		id              UUID          PRIMARY KEY DEFAULT gen_random_uuid(),
		store_id        UUID          REFERENCES stores(id) ON DELETE CASCADE,
		item_name       TEXT          NOT NULL,
		price           TEXT,
		price_numeric   DOUBLE PRECISION,
		unit_price      TEXT,
		category        TEXT,
		valid_from      DATE,
		valid_to        DATE,
		source_flyer_id TEXT,
		raw_data        JSONB,
		created_at      TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
		CONSTRAINT deals_natural_key UNIQUE NULLS NOT DISTINCT (store_id, item_name, valid_from)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_deals_valid_to ON deals(valid_to)`,
	`CREATE INDEX IF NOT EXISTS idx_deals_category ON deals(category)`,
	`CREATE INDEX IF NOT EXISTS idx_deals_price    ON deals(price_numeric)`,
}

func (ps *PostgresStore) migrate() error {
	for _, stmt := range postgresSchema {
		if _, err := ps.db.Exec(stmt); err != nil {
			return err
		}
	}
	for _, s := range SeedStores {
		_, err := ps.db.Exec(
			`INSERT INTO stores (name, slug, website) VALUES ($1, $2, $3) ON CONFLICT (slug) DO NOTHING`,
			s.Name, s.Slug, s.Website)
		if err != nil {
			return fmt.Errorf("seed store %s: %w", s.Slug, err)
		}
	}
	return nil
}

// LoadStores returns all stores.
func (ps *PostgresStore) LoadStores(ctx context.Context) ([]models.Store, error) {
	rows, err := ps.db.QueryContext(ctx, `SELECT id, slug, name, COALESCE(website, '') FROM stores ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("postgres: load stores: %w", err)
	}
	defer rows.Close()

	var stores []models.Store
	for rows.Next() {
		var s models.Store
		if err := rows.Scan(&s.ID, &s.Slug, &s.Name, &s.Website); err != nil {
			return nil, fmt.Errorf("postgres: scan store: %w", err)
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// DeleteExpired deletes deals that ended before the given date.
func (ps *PostgresStore) DeleteExpired(ctx context.Context, before string) (int64, error) {
	res, err := ps.db.ExecContext(ctx, `DELETE FROM deals WHERE valid_to < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete expired: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// UpsertDeals writes one batch in a single statement.
func (ps *PostgresStore) UpsertDeals(ctx context.Context, deals []*models.Deal, conflictKey []string) error {
	if len(deals) == 0 {
		return nil
	}
	if err := checkConflictKey(conflictKey); err != nil {
		return fmt.Errorf("postgres: upsert: %w", err)
	}

	query, args, err := buildPostgresUpsert(dedupeBatch(deals), conflictKey)
	if err != nil {
		return fmt.Errorf("postgres: upsert: %w", err)
	}
	if _, err := ps.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("postgres: upsert: %w", err)
	}
	return nil
}

func buildPostgresUpsert(batch []*models.Deal, conflictKey []string) (string, []any, error) {
	cols := len(dealColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*cols)

	for idx, d := range batch {
		args, err := dealArgs(d)
		if err != nil {
			return "", nil, err
		}
		placeholders := make([]string, cols)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", idx*cols+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs, args...)
	}

	keys := make(map[string]bool, len(conflictKey))
	for _, k := range conflictKey {
		keys[k] = true
	}
	var updates []string
	for _, c := range dealColumns {
		if !keys[c] {
			updates = append(updates, c+" = EXCLUDED."+c)
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO deals (%s)
		VALUES %s
		ON CONFLICT (%s) DO UPDATE SET %s
	`, strings.Join(dealColumns, ", "), strings.Join(valueStrings, ","),
		strings.Join(conflictKey, ", "), strings.Join(updates, ", "))

	return query, valueArgs, nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
