package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Flyer is one merchant's promotional period as returned by the flyer API.
// Timestamps are kept exactly as received; the normalizer truncates them.
type Flyer struct {
	ID        int64  `json:"id"`
	Merchant  string `json:"merchant"`
	ValidFrom string `json:"valid_from"`
	ValidTo   string `json:"valid_to"`
}

// Location is the metadata the flyer API resolves a postal code to.
type Location struct {
	PostalCode string  `json:"postal_code"`
	City       string  `json:"city"`
	Province   string  `json:"province"`
	Country    string  `json:"country"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

// RawItem holds one unprocessed flyer line. The API is loose about types, so
// every text-ish field goes through FlexString.
type RawItem struct {
	ID             json.RawMessage `json:"id"`
	Name           FlexString      `json:"name"`
	PriceText      FlexString      `json:"price_text"`
	CurrentPrice   FlexString      `json:"current_price"`
	PrePriceText   FlexString      `json:"pre_price_text"`
	PostPriceText  FlexString      `json:"post_price_text"`
	UnitPrice      FlexString      `json:"unit_price"`
	Description    FlexString      `json:"description"`
	ImageURL       FlexString      `json:"image_url"`
	CutoutImageURL FlexString      `json:"cutout_image_url"`
}

// FlexString decodes a JSON string, number or boolean into its text form.
// JSON null and a missing field both leave it unset.
type FlexString struct {
	Value string
	Set   bool
}

// Str builds a set FlexString; handy for fixtures.
func Str(s string) FlexString {
	return FlexString{Value: s, Set: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = FlexString{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString{Value: s, Set: true}
		return nil
	}

	// Numbers and booleans keep their literal spelling ("2.99", "true").
	*f = FlexString{Value: string(data), Set: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexString) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// String returns the text value, empty when unset.
func (f FlexString) String() string {
	return f.Value
}

// Ptr returns nil for an unset or empty value.
func (f FlexString) Ptr() *string {
	if !f.Set || f.Value == "" {
		return nil
	}
	v := f.Value
	return &v
}

// Blank reports whether the value is unset or whitespace only.
func (f FlexString) Blank() bool {
	return strings.TrimSpace(f.Value) == ""
}
