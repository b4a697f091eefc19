package services

import (
	"testing"

	"flyer-deals/models"
)

func TestMatchStore(t *testing.T) {
	c := NewClassifier(nil, nil)
	tests := []struct {
		merchant string
		want     string
		wantOK   bool
	}{
		{"Aldi", "aldi", true},
		{"LIDL US", "lidl", true},
		{"Harris Teeter", "harris-teeter", true},
		{"harris-teeter #311", "harris-teeter", true},
		{"Safeway Inc.", "safeway", true},
		{"Aldi & Lidl joint flyer", "aldi", true},
		{"Walmart", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := c.MatchStore(tt.merchant)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("MatchStore(%q) = %q, %v; want %q, %v", tt.merchant, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCategorize(t *testing.T) {
	c := NewClassifier(nil, nil)
	tests := []struct {
		name string
		want string
	}{
		{"Fresh Bananas", "produce"},
		{"FRESH BANANAS", "produce"},
		{"Boneless Chicken Breast", "meat"},
		{"Greek Yogurt", "dairy"},
		{"Whole Wheat Bread", "pantry"},      // pantry is declared before bakery
		{"Panko Breadcrumbs", "pantry"},      // substring match, no word boundaries
		{"Chocolate Chip Cookies", "bakery"}, // bakery is declared before snacks
		{"Laundry Detergent", "household"},
		{"Xyz", models.CategoryOther},
		{"", models.CategoryOther},
	}
	for _, tt := range tests {
		if got := c.Categorize(tt.name); got != tt.want {
			t.Errorf("Categorize(%q) = %q; want %q", tt.name, got, tt.want)
		}
	}
}

func TestCustomRulesKeepDeclarationOrder(t *testing.T) {
	c := NewClassifier(
		[]models.KeywordRule{{Label: "walmart", Keywords: []string{"WALMART"}}},
		[]models.KeywordRule{
			{Label: "second-listed-first", Keywords: []string{"x"}},
			{Label: "first-listed-second", Keywords: []string{"x"}},
		},
	)

	if got := c.Categorize("box"); got != "second-listed-first" {
		t.Errorf("Categorize(%q) = %q; want %q", "box", got, "second-listed-first")
	}
	if got, ok := c.MatchStore("Walmart Supercenter"); !ok || got != "walmart" {
		t.Errorf("MatchStore(%q) = %q, %v; want walmart, true", "Walmart Supercenter", got, ok)
	}
	if _, ok := c.MatchStore("Aldi"); ok {
		t.Error("custom store table should replace the defaults")
	}
}
