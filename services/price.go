package services

import (
	"regexp"
	"strconv"
	"strings"

	"flyer-deals/models"
)

// priceRegexp captures the first run of digits and dots after an optional "$".
// Multi-buy offers keep their first number: "2/$5" parses to 2, not 5 or 2.5.
var priceRegexp = regexp.MustCompile(`\$?([\d.]+)`)

// ParsePrice returns the display price and its numeric value. The display
// joins the pre-price, primary and post-price fragments; the number is read
// from the primary price only. Either result is nil when absent.
func ParsePrice(item *models.RawItem) (*string, *float64) {
	primary := item.PriceText.String()
	if primary == "" {
		primary = item.CurrentPrice.String()
	}

	var display *string
	full := strings.TrimSpace(item.PrePriceText.String() + " " + primary + " " + item.PostPriceText.String())
	if full != "" {
		display = &full
	}

	return display, parseNumeric(primary)
}

func parseNumeric(text string) *float64 {
	if text == "" {
		return nil
	}
	match := priceRegexp.FindStringSubmatch(text)
	if len(match) < 2 {
		return nil
	}
	val, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return nil
	}
	return &val
}
