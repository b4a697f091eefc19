package models

import "encoding/json"

// DealConflictKey is the natural key deals are upserted on.
var DealConflictKey = []string{"store_id", "item_name", "valid_from"}

// CategoryOther is assigned when no category keyword matches.
const CategoryOther = "other"

// Deal is the canonical, persisted record of one priced item at one store
// over a validity window. Deals are built once per sync and never mutated.
type Deal struct {
	StoreID       string      `json:"store_id" validate:"required"`
	ItemName      string      `json:"item_name" validate:"required"`
	Price         *string     `json:"price"`
	PriceNumeric  *float64    `json:"price_numeric" validate:"omitempty,gte=0"`
	UnitPrice     *string     `json:"unit_price"`
	Category      string      `json:"category" validate:"required"`
	ValidFrom     *string     `json:"valid_from" validate:"omitempty,datetime=2006-01-02"`
	ValidTo       *string     `json:"valid_to" validate:"omitempty,datetime=2006-01-02"`
	SourceFlyerID string      `json:"source_flyer_id" validate:"required"`
	RawData       DealRawData `json:"raw_data"`
}

// DealRawData keeps the upstream identifiers of a deal for debugging.
// Nothing in the pipeline reads it back.
type DealRawData struct {
	FlyerID     int64           `json:"flyer_id"`
	ItemID      json.RawMessage `json:"item_id"`
	Merchant    string          `json:"merchant"`
	Description *string         `json:"description"`
	ImageURL    *string         `json:"image_url"`
}

// Key returns the natural key of the deal. A nil valid_from is distinct from
// every date but equal to another nil valid_from.
func (d *Deal) Key() DealKey {
	k := DealKey{StoreID: d.StoreID, ItemName: d.ItemName}
	if d.ValidFrom != nil {
		k.ValidFrom = *d.ValidFrom
		k.HasValidFrom = true
	}
	return k
}

// DealKey is the comparable form of the natural key.
type DealKey struct {
	StoreID      string
	ItemName     string
	ValidFrom    string
	HasValidFrom bool
}

// RawDataJSON encodes RawData for a JSON column.
func (d *Deal) RawDataJSON() ([]byte, error) {
	return json.Marshal(d.RawData)
}
