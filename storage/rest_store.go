package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"flyer-deals/models"
	"flyer-deals/utils"
)

// RESTStore persists deals through a PostgREST endpoint such as Supabase's
// /rest/v1. The service key is sent both as apikey and bearer token.
type RESTStore struct {
	baseURL string
	key     string
	client  *http.Client
	logger  *utils.Logger
}

// NewRESTStore creates a RESTStore for a project URL like
// https://xyz.supabase.co. No request is made until the first call.
func NewRESTStore(projectURL, serviceKey string, timeout time.Duration, logger *utils.Logger) *RESTStore {
	return &RESTStore{
		baseURL: strings.TrimRight(projectURL, "/") + "/rest/v1",
		key:     serviceKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// LoadStores returns the id and slug of every store.
func (rs *RESTStore) LoadStores(ctx context.Context) ([]models.Store, error) {
	q := url.Values{"select": {"id,slug"}}
	resp, err := rs.do(ctx, http.MethodGet, "/stores", q, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("rest: load stores: %w", err)
	}
	defer resp.Body.Close()

	var stores []models.Store
	if err := json.NewDecoder(resp.Body).Decode(&stores); err != nil {
		return nil, fmt.Errorf("rest: load stores: decode: %w", err)
	}
	return stores, nil
}

// DeleteExpired deletes deals that ended before the given date. The count
// comes from the Content-Range header and is 0 when the server omits it.
func (rs *RESTStore) DeleteExpired(ctx context.Context, before string) (int64, error) {
	q := url.Values{"valid_to": {"lt." + before}}
	headers := map[string]string{"Prefer": "return=minimal,count=exact"}
	resp, err := rs.do(ctx, http.MethodDelete, "/deals", q, nil, headers)
	if err != nil {
		return 0, fmt.Errorf("rest: delete expired: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return contentRangeTotal(resp.Header.Get("Content-Range")), nil
}

// UpsertDeals posts the batch with merge-duplicates resolution on conflictKey.
func (rs *RESTStore) UpsertDeals(ctx context.Context, deals []*models.Deal, conflictKey []string) error {
	if len(deals) == 0 {
		return nil
	}
	if err := checkConflictKey(conflictKey); err != nil {
		return fmt.Errorf("rest: upsert: %w", err)
	}

	body, err := json.Marshal(dedupeBatch(deals))
	if err != nil {
		return fmt.Errorf("rest: upsert: encode: %w", err)
	}

	q := url.Values{"on_conflict": {strings.Join(conflictKey, ",")}}
	headers := map[string]string{"Prefer": "resolution=merge-duplicates,return=minimal"}
	resp, err := rs.do(ctx, http.MethodPost, "/deals", q, body, headers)
	if err != nil {
		return fmt.Errorf("rest: upsert: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (rs *RESTStore) do(ctx context.Context, method, table string, q url.Values, body []byte, headers map[string]string) (*http.Response, error) {
	u := rs.baseURL + table
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", rs.key)
	req.Header.Set("Authorization", "Bearer "+rs.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rs.logger.Debug("[rest] %s %s", method, u)
	resp, err := rs.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}

// contentRangeTotal reads N from "0-9/N" or "*/N".
func contentRangeTotal(h string) int64 {
	_, total, ok := strings.Cut(h, "/")
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(total, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (rs *RESTStore) Close() error {
	rs.client.CloseIdleConnections()
	return nil
}
