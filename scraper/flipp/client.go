// Package flipp reads flyers and flyer items from the Flipp backflipp API.
package flipp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"flyer-deals/models"
	"flyer-deals/utils"
)

// Client talks to the flyer API through a Transport. It does not retry.
type Client struct {
	baseURL   string
	locale    string
	transport Transport
	logger    *utils.Logger
}

// New creates a Client for baseURL (e.g. https://backflipp.wishabi.com/flipp).
func New(baseURL, locale string, transport Transport, logger *utils.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		locale:    locale,
		transport: transport,
		logger:    logger,
	}
}

// PostalCode resolves a postal code to location metadata.
func (c *Client) PostalCode(ctx context.Context, postalCode string) (*models.Location, error) {
	var loc models.Location
	endpoint := "/postal_codes/" + url.PathEscape(postalCode)
	if err := c.get(ctx, endpoint, nil, &loc); err != nil {
		return nil, fmt.Errorf("flipp: postal code %s: %w", postalCode, err)
	}
	if loc.PostalCode == "" {
		loc.PostalCode = postalCode
	}
	return &loc, nil
}

// Flyers lists the flyers available for a postal code.
func (c *Client) Flyers(ctx context.Context, postalCode string) ([]models.Flyer, error) {
	var flyers []models.Flyer
	params := url.Values{"postal_code": {postalCode}}
	if err := c.getList(ctx, "/flyers", params, "flyers", &flyers); err != nil {
		return nil, fmt.Errorf("flipp: flyers for %s: %w", postalCode, err)
	}
	return flyers, nil
}

// FlyerItems lists the items of one flyer.
func (c *Client) FlyerItems(ctx context.Context, flyerID int64) ([]models.RawItem, error) {
	var items []models.RawItem
	endpoint := "/flyers/" + strconv.FormatInt(flyerID, 10) + "/items"
	if err := c.getList(ctx, endpoint, nil, "items", &items); err != nil {
		return nil, fmt.Errorf("flipp: items for flyer %d: %w", flyerID, err)
	}
	return items, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	body, err := c.fetch(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// getList decodes either a bare JSON array or an object wrapping the array
// under wrapKey; the API has served both.
func (c *Client) getList(ctx context.Context, endpoint string, params url.Values, wrapKey string, out any) error {
	body, err := c.fetch(ctx, endpoint, params)
	if err != nil {
		return err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
		inner, ok := wrapped[wrapKey]
		if !ok {
			return fmt.Errorf("response object has no %q list", wrapKey)
		}
		trimmed = inner
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("locale", c.locale)

	u := c.baseURL + endpoint + "?" + params.Encode()
	c.logger.Debug("[flipp] GET %s", u)
	return c.transport.Get(ctx, u)
}
