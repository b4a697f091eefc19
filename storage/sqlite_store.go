package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"flyer-deals/models"
	"flyer-deals/utils"
)

// SQLiteStore persists deals to a local SQLite file. It is meant for local
// runs and tests; dates are stored as ISO text so they compare correctly.
type SQLiteStore struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewSQLiteStore opens (or creates) the database at path. ":memory:" gives a
// private in-memory database.
func NewSQLiteStore(path string, logger *utils.Logger) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One connection: an in-memory database lives and dies with it.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	ss := &SQLiteStore{db: db, logger: logger}
	if err := ss.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return ss, nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS stores (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		slug       TEXT UNIQUE NOT NULL,
		logo_url   TEXT,
		website    TEXT,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS deals (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		store_id        TEXT REFERENCES stores(id) ON DELETE CASCADE,
		item_name       TEXT NOT NULL,
		price           TEXT,
		price_numeric   REAL,
		unit_price      TEXT,
		category        TEXT,
		valid_from      TEXT,
		valid_to        TEXT,
		source_flyer_id TEXT,
		raw_data        TEXT,
		created_at      TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`DROP INDEX IF EXISTS idx_deals_natural_key`,
	// ifnull folds NULL valid_from into one key value, like NULLS NOT DISTINCT.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_deals_natural_key ON deals(store_id, item_name, ifnull(valid_from, ''))`,
	`CREATE INDEX IF NOT EXISTS idx_deals_valid_to ON deals(valid_to)`,
}

func (ss *SQLiteStore) migrate() error {
	for _, stmt := range sqliteSchema {
		if _, err := ss.db.Exec(stmt); err != nil {
			return err
		}
	}
	for _, s := range SeedStores {
		_, err := ss.db.Exec(
			`INSERT INTO stores (id, name, slug, website) VALUES (?, ?, ?, ?) ON CONFLICT (slug) DO NOTHING`,
			uuid.NewString(), s.Name, s.Slug, s.Website)
		if err != nil {
			return fmt.Errorf("seed store %s: %w", s.Slug, err)
		}
	}
	return nil
}

// LoadStores returns all stores.
func (ss *SQLiteStore) LoadStores(ctx context.Context) ([]models.Store, error) {
	rows, err := ss.db.QueryContext(ctx, `SELECT id, slug, name, COALESCE(website, '') FROM stores ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load stores: %w", err)
	}
	defer rows.Close()

	var stores []models.Store
	for rows.Next() {
		var s models.Store
		if err := rows.Scan(&s.ID, &s.Slug, &s.Name, &s.Website); err != nil {
			return nil, fmt.Errorf("sqlite: scan store: %w", err)
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// DeleteExpired deletes deals that ended before the given date.
func (ss *SQLiteStore) DeleteExpired(ctx context.Context, before string) (int64, error) {
	res, err := ss.db.ExecContext(ctx, `DELETE FROM deals WHERE valid_to < ?`, before)
	if err != nil {
		return 0, fmt.Errorf("sqlite: delete expired: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// UpsertDeals replaces rows sharing the natural key, one row at a time, in a
// single transaction per batch. "valid_from IS ?" makes NULL dates match.
func (ss *SQLiteStore) UpsertDeals(ctx context.Context, deals []*models.Deal, conflictKey []string) error {
	if len(deals) == 0 {
		return nil
	}
	if err := checkConflictKey(conflictKey); err != nil {
		return fmt.Errorf("sqlite: upsert: %w", err)
	}

	tx, err := ss.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insert := fmt.Sprintf(`INSERT INTO deals (%s) VALUES (%s)`,
		strings.Join(dealColumns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(dealColumns)), ", "))

	for _, d := range dedupeBatch(deals) {
		args, err := dealArgs(d)
		if err != nil {
			return fmt.Errorf("sqlite: upsert: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM deals WHERE store_id = ? AND item_name = ? AND valid_from IS ?`,
			d.StoreID, d.ItemName, nullString(d.ValidFrom)); err != nil {
			return fmt.Errorf("sqlite: upsert %q: %w", d.ItemName, err)
		}
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("sqlite: upsert %q: %w", d.ItemName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func (ss *SQLiteStore) Close() error {
	return ss.db.Close()
}
