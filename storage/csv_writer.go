package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"flyer-deals/models"
)

// CSVWriter writes a snapshot of normalized deals to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	// Write header
	if err := w.Write([]string{
		"store_id", "item_name", "price", "price_numeric", "unit_price", "category",
		"valid_from", "valid_to", "source_flyer_id", "merchant", "image_url",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteDeals appends one row per deal. Absent values are written as empty cells.
func (c *CSVWriter) WriteDeals(deals []*models.Deal) error {
	for _, d := range deals {
		numeric := ""
		if d.PriceNumeric != nil {
			numeric = strconv.FormatFloat(*d.PriceNumeric, 'f', -1, 64)
		}
		row := []string{
			d.StoreID,
			d.ItemName,
			deref(d.Price),
			numeric,
			deref(d.UnitPrice),
			d.Category,
			deref(d.ValidFrom),
			deref(d.ValidTo),
			d.SourceFlyerID,
			d.RawData.Merchant,
			deref(d.RawData.ImageURL),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
