package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"flyer-deals/models"
)

// KeywordTables overrides the built-in classifier tables. A nil slice means
// "keep the default".
type KeywordTables struct {
	Stores     []models.KeywordRule
	Categories []models.KeywordRule
}

type keywordFile struct {
	Stores []struct {
		Slug     string   `yaml:"slug"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"stores"`
	Categories []struct {
		Name     string   `yaml:"name"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"categories"`
}

// LoadKeywordTables reads ordered keyword tables from a YAML file. List order
// in the file is the match order.
func LoadKeywordTables(path string) (*KeywordTables, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("keywords: open %q: %w", path, err)
	}
	defer file.Close()

	var raw keywordFile
	if err := yaml.NewDecoder(file).Decode(&raw); err != nil {
		return nil, fmt.Errorf("keywords: decode %q: %w", path, err)
	}

	tables := &KeywordTables{}
	for i, s := range raw.Stores {
		rule, err := newRule(s.Slug, s.Keywords)
		if err != nil {
			return nil, fmt.Errorf("keywords: stores[%d]: %w", i, err)
		}
		tables.Stores = append(tables.Stores, rule)
	}
	for i, c := range raw.Categories {
		rule, err := newRule(c.Name, c.Keywords)
		if err != nil {
			return nil, fmt.Errorf("keywords: categories[%d]: %w", i, err)
		}
		tables.Categories = append(tables.Categories, rule)
	}
	return tables, nil
}

func newRule(label string, keywords []string) (models.KeywordRule, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return models.KeywordRule{}, fmt.Errorf("empty label")
	}

	kept := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			kept = append(kept, k)
		}
	}
	if len(kept) == 0 {
		return models.KeywordRule{}, fmt.Errorf("%s: no keywords", label)
	}
	return models.KeywordRule{Label: label, Keywords: kept}, nil
}
