package services

import (
	"strings"

	"golang.org/x/text/cases"

	"flyer-deals/models"
)

// DefaultStoreRules are the priority stores. Merchants matching none of them
// are ignored.
var DefaultStoreRules = []models.KeywordRule{
	{Label: "aldi", Keywords: []string{"aldi"}},
	{Label: "lidl", Keywords: []string{"lidl"}},
	{Label: "harris-teeter", Keywords: []string{"harris teeter", "harris-teeter"}},
	{Label: "safeway", Keywords: []string{"safeway"}},
}

// DefaultCategoryRules map item names to categories. Order decides overlaps:
// "bread" is listed under pantry before bakery, "cookie" under bakery before snacks.
var DefaultCategoryRules = []models.KeywordRule{
	{Label: "produce", Keywords: []string{"apple", "banana", "orange", "lettuce", "tomato", "potato", "onion",
		"carrot", "celery", "broccoli", "spinach", "avocado", "grape", "berry",
		"strawberry", "blueberry", "lemon", "lime", "pepper", "cucumber", "fruit",
		"vegetable", "salad", "mushroom", "corn", "melon", "watermelon", "pear"}},
	{Label: "meat", Keywords: []string{"beef", "chicken", "pork", "turkey", "steak", "ground", "sausage", "bacon",
		"ham", "roast", "ribs", "wing", "thigh", "breast", "lamb", "meat", "hot dog",
		"frankfurter", "brisket", "tenderloin", "drumstick"}},
	{Label: "dairy", Keywords: []string{"milk", "cheese", "yogurt", "butter", "cream", "egg", "cottage", "sour cream",
		"half & half", "half and half", "creamer", "whipped"}},
	{Label: "pantry", Keywords: []string{"rice", "pasta", "beans", "canned", "soup", "sauce", "oil", "flour",
		"sugar", "cereal", "oatmeal", "bread", "peanut butter", "jelly", "jam",
		"honey", "syrup", "spice", "seasoning", "condiment", "ketchup", "mustard",
		"mayo", "mayonnaise", "vinegar", "dressing"}},
	{Label: "frozen", Keywords: []string{"frozen", "ice cream", "pizza", "fries", "vegetables", "meal", "dinner",
		"breakfast", "waffle", "popsicle"}},
	{Label: "bakery", Keywords: []string{"bread", "bagel", "muffin", "donut", "croissant", "roll", "bun", "cake",
		"pie", "cookie", "pastry", "tortilla"}},
	{Label: "beverages", Keywords: []string{"water", "soda", "juice", "coffee", "tea", "drink", "beverage", "pop",
		"cola", "lemonade", "energy", "sparkling", "beer", "wine", "alcohol"}},
	{Label: "snacks", Keywords: []string{"chip", "cracker", "pretzel", "popcorn", "nut", "candy", "chocolate",
		"snack", "granola", "bar", "cookie"}},
	{Label: "household", Keywords: []string{"paper", "towel", "tissue", "napkin", "detergent", "soap", "cleaner",
		"trash", "bag", "foil", "wrap", "storage", "laundry", "dish"}},
}

// Classifier resolves merchants to store slugs and item names to categories
// by ordered substring matching. The first rule with any keyword contained in
// the case-folded input wins; there is no word-boundary check, so "bread"
// also matches "breadcrumbs".
type Classifier struct {
	stores     []models.KeywordRule
	categories []models.KeywordRule
}

// NewClassifier builds a Classifier. Nil tables fall back to the defaults.
// Keywords are case-folded once here.
func NewClassifier(stores, categories []models.KeywordRule) *Classifier {
	if stores == nil {
		stores = DefaultStoreRules
	}
	if categories == nil {
		categories = DefaultCategoryRules
	}
	return &Classifier{
		stores:     foldRules(stores),
		categories: foldRules(categories),
	}
}

// MatchStore returns the slug of the first store rule matching merchantName.
func (c *Classifier) MatchStore(merchantName string) (string, bool) {
	return firstMatch(c.stores, fold(merchantName))
}

// Categorize returns the category of itemName, or "other".
func (c *Classifier) Categorize(itemName string) string {
	if label, ok := firstMatch(c.categories, fold(itemName)); ok {
		return label
	}
	return models.CategoryOther
}

func firstMatch(rules []models.KeywordRule, folded string) (string, bool) {
	for _, rule := range rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(folded, keyword) {
				return rule.Label, true
			}
		}
	}
	return "", false
}

// fold uses a fresh Caser per call; Casers carry state.
func fold(s string) string {
	return cases.Fold().String(s)
}

func foldRules(rules []models.KeywordRule) []models.KeywordRule {
	out := make([]models.KeywordRule, 0, len(rules))
	for _, r := range rules {
		kw := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k == "" {
				continue
			}
			kw = append(kw, fold(k))
		}
		out = append(out, models.KeywordRule{Label: r.Label, Keywords: kw})
	}
	return out
}
