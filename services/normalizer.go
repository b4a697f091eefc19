package services

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"flyer-deals/models"
	"flyer-deals/utils"
)

// Normalizer turns flyer items into Deals.
type Normalizer struct {
	classifier *Classifier
	validate   *validator.Validate
	logger     *utils.Logger
}

// NewNormalizer creates a Normalizer using classifier for categories.
func NewNormalizer(classifier *Classifier, logger *utils.Logger) *Normalizer {
	return &Normalizer{
		classifier: classifier,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger,
	}
}

// Normalize builds the Deal for one flyer item. It returns nil when the item
// has no usable name or the flyer dates are not calendar dates; that is a
// skip, not an error.
func (n *Normalizer) Normalize(flyer *models.Flyer, item *models.RawItem, storeID string) *models.Deal {
	name := strings.TrimSpace(item.Name.String())
	if name == "" {
		return nil
	}

	price, numeric := ParsePrice(item)

	image := item.CutoutImageURL.Ptr()
	if image == nil {
		image = item.ImageURL.Ptr()
	}

	deal := &models.Deal{
		StoreID:       storeID,
		ItemName:      name,
		Price:         price,
		PriceNumeric:  numeric,
		UnitPrice:     item.UnitPrice.Ptr(),
		Category:      n.classifier.Categorize(name),
		ValidFrom:     datePart(flyer.ValidFrom),
		ValidTo:       datePart(flyer.ValidTo),
		SourceFlyerID: strconv.FormatInt(flyer.ID, 10),
		RawData: models.DealRawData{
			FlyerID:     flyer.ID,
			ItemID:      item.ID,
			Merchant:    flyer.Merchant,
			Description: item.Description.Ptr(),
			ImageURL:    image,
		},
	}

	if err := n.validate.Struct(deal); err != nil {
		n.logger.Debug("[normalizer] Dropping %q from flyer %d: %v", name, flyer.ID, err)
		return nil
	}
	return deal
}

// datePart keeps the calendar date of an ISO timestamp ("2024-01-01T00:00:00-05:00").
func datePart(ts string) *string {
	if ts == "" {
		return nil
	}
	date, _, _ := strings.Cut(ts, "T")
	return &date
}
