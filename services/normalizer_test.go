package services

import (
	"encoding/json"
	"io"
	"testing"

	"flyer-deals/models"
	"flyer-deals/utils"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(NewClassifier(nil, nil), utils.NewWriterLogger(io.Discard))
}

func testFlyer() *models.Flyer {
	return &models.Flyer{
		ID:        123,
		Merchant:  "Harris Teeter",
		ValidFrom: "2024-01-01T00:00:00-05:00",
		ValidTo:   "2024-01-07T23:59:59-05:00",
	}
}

func TestNormalizeSkipsBlankNames(t *testing.T) {
	n := newTestNormalizer()
	for _, name := range []models.FlexString{{}, models.Str(""), models.Str("   \t")} {
		item := &models.RawItem{Name: name, PriceText: models.Str("$1")}
		if d := n.Normalize(testFlyer(), item, "store-1"); d != nil {
			t.Errorf("Normalize(name %q) = %+v; want nil", name.Value, d)
		}
	}
}

func TestNormalizeBuildsDeal(t *testing.T) {
	n := newTestNormalizer()
	item := &models.RawItem{
		ID:             json.RawMessage(`987`),
		Name:           models.Str("  Fresh Bananas "),
		PriceText:      models.Str("$0.59"),
		UnitPrice:      models.Str("per lb"),
		Description:    models.Str("Sweet"),
		ImageURL:       models.Str("https://img/plain.jpg"),
		CutoutImageURL: models.Str("https://img/cutout.png"),
	}

	d := n.Normalize(testFlyer(), item, "store-1")
	if d == nil {
		t.Fatal("Normalize returned nil for a valid item")
	}

	if d.ItemName != "Fresh Bananas" {
		t.Errorf("ItemName = %q; want %q", d.ItemName, "Fresh Bananas")
	}
	if d.ValidFrom == nil || *d.ValidFrom != "2024-01-01" {
		t.Errorf("ValidFrom = %v; want 2024-01-01", d.ValidFrom)
	}
	if d.ValidTo == nil || *d.ValidTo != "2024-01-07" {
		t.Errorf("ValidTo = %v; want 2024-01-07", d.ValidTo)
	}
	if d.Category != "produce" {
		t.Errorf("Category = %q; want produce", d.Category)
	}
	if d.SourceFlyerID != "123" {
		t.Errorf("SourceFlyerID = %q; want 123", d.SourceFlyerID)
	}
	if d.UnitPrice == nil || *d.UnitPrice != "per lb" {
		t.Errorf("UnitPrice = %v; want per lb", d.UnitPrice)
	}
	if d.RawData.ImageURL == nil || *d.RawData.ImageURL != "https://img/cutout.png" {
		t.Errorf("RawData.ImageURL = %v; want the cutout image", d.RawData.ImageURL)
	}
	if d.RawData.Merchant != "Harris Teeter" || d.RawData.FlyerID != 123 || string(d.RawData.ItemID) != "987" {
		t.Errorf("RawData = %+v", d.RawData)
	}
}

func TestNormalizeImageFallbackAndMissingDates(t *testing.T) {
	n := newTestNormalizer()
	flyer := &models.Flyer{ID: 5, Merchant: "Aldi"}
	item := &models.RawItem{Name: models.Str("Mystery Box"), ImageURL: models.Str("https://img/plain.jpg")}

	d := n.Normalize(flyer, item, "store-1")
	if d == nil {
		t.Fatal("Normalize returned nil")
	}
	if d.ValidFrom != nil || d.ValidTo != nil {
		t.Errorf("dates = %v, %v; want nil, nil", d.ValidFrom, d.ValidTo)
	}
	if d.Price != nil || d.PriceNumeric != nil || d.UnitPrice != nil {
		t.Errorf("price fields = %v, %v, %v; want all nil", d.Price, d.PriceNumeric, d.UnitPrice)
	}
	if d.RawData.ImageURL == nil || *d.RawData.ImageURL != "https://img/plain.jpg" {
		t.Errorf("RawData.ImageURL = %v; want the plain image", d.RawData.ImageURL)
	}
	if d.Category != models.CategoryOther {
		t.Errorf("Category = %q; want other", d.Category)
	}
}

func TestNormalizeDropsInvalidDeal(t *testing.T) {
	n := newTestNormalizer()
	item := &models.RawItem{Name: models.Str("Milk")}
	if d := n.Normalize(testFlyer(), item, ""); d != nil {
		t.Errorf("Normalize with empty store id = %+v; want nil", d)
	}
}

func TestNormalizeDropsMalformedFlyerDates(t *testing.T) {
	n := newTestNormalizer()
	item := &models.RawItem{Name: models.Str("Fresh Bananas"), PriceText: models.Str("$0.59")}

	tests := []struct {
		from, to string
	}{
		{"soon", "2024-01-07T23:59:59-05:00"},
		{"2024-01-01T00:00:00-05:00", "2024-13-40T00:00:00-05:00"},
		{"01/01/2024", ""},
	}
	for _, tt := range tests {
		flyer := &models.Flyer{ID: 8, Merchant: "Aldi", ValidFrom: tt.from, ValidTo: tt.to}
		if d := n.Normalize(flyer, item, "store-1"); d != nil {
			t.Errorf("Normalize(valid %q..%q) = %+v; want nil", tt.from, tt.to, d)
		}
	}
}
