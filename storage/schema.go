package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"flyer-deals/models"
	"flyer-deals/utils"
)

// SeedStores are inserted by the SQL backends when missing so a fresh
// database can sync straight away.
var SeedStores = []models.Store{
	{Slug: "aldi", Name: "Aldi", Website: "https://www.aldi.us"},
	{Slug: "lidl", Name: "Lidl", Website: "https://www.lidl.com"},
	{Slug: "harris-teeter", Name: "Harris Teeter", Website: "https://www.harristeeter.com"},
	{Slug: "safeway", Name: "Safeway", Website: "https://www.safeway.com"},
}

// dealColumns is the insert column order shared by the SQL backends.
var dealColumns = []string{
	"store_id", "item_name", "price", "price_numeric", "unit_price",
	"category", "valid_from", "valid_to", "source_flyer_id", "raw_data",
}

func isDealColumn(name string) bool {
	for _, c := range dealColumns {
		if c == name {
			return true
		}
	}
	return false
}

// checkConflictKey only accepts the natural key the schemas declare unique.
func checkConflictKey(conflictKey []string) error {
	want := strings.Join(models.DealConflictKey, ",")
	got := strings.Join(conflictKey, ",")
	if got != want {
		return fmt.Errorf("unsupported conflict key %q, tables are unique on %q", got, want)
	}
	for _, c := range conflictKey {
		if !isDealColumn(c) {
			return fmt.Errorf("unknown column %q in conflict key", c)
		}
	}
	return nil
}

// dedupeBatch keeps the last deal for every natural key. A single upsert
// statement cannot touch the same row twice.
func dedupeBatch(deals []*models.Deal) []*models.Deal {
	return utils.LastByKey(deals, func(d *models.Deal) models.DealKey { return d.Key() })
}

// dealArgs returns the values of d in dealColumns order. raw_data is passed
// as text so JSON columns accept it.
func dealArgs(d *models.Deal) ([]any, error) {
	raw, err := d.RawDataJSON()
	if err != nil {
		return nil, fmt.Errorf("encode raw_data for %q: %w", d.ItemName, err)
	}
	return []any{
		d.StoreID, d.ItemName, nullString(d.Price), nullFloat(d.PriceNumeric), nullString(d.UnitPrice),
		d.Category, nullString(d.ValidFrom), nullString(d.ValidTo), d.SourceFlyerID, string(raw),
	}, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
