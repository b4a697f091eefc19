package flipp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flyer-deals/utils"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/flipp/", "en-us", NewHTTPTransport(5*time.Second), utils.NewWriterLogger(io.Discard))
}

func TestFlyersSendsLocaleAndPostalCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/flipp/flyers" {
			t.Errorf("path: got %q, want /flipp/flyers", r.URL.Path)
		}
		if got := r.URL.Query().Get("locale"); got != "en-us" {
			t.Errorf("locale: got %q, want en-us", got)
		}
		if got := r.URL.Query().Get("postal_code"); got != "20001" {
			t.Errorf("postal_code: got %q, want 20001", got)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		io.WriteString(w, `[{"id": 7734923, "merchant": "Harris Teeter",
			"valid_from": "2024-01-01T00:00:00-05:00", "valid_to": "2024-01-07T23:59:59-05:00",
			"extra": {"ignored": true}}]`)
	})

	flyers, err := c.Flyers(context.Background(), "20001")
	if err != nil {
		t.Fatalf("Flyers: %v", err)
	}
	if len(flyers) != 1 {
		t.Fatalf("len: got %d, want 1", len(flyers))
	}
	f := flyers[0]
	if f.ID != 7734923 || f.Merchant != "Harris Teeter" || f.ValidFrom != "2024-01-01T00:00:00-05:00" {
		t.Errorf("flyer: got %+v", f)
	}
}

func TestFlyersAcceptsWrappedList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"flyers": [{"id": 1, "merchant": "Aldi"}, {"id": 2, "merchant": "Lidl"}]}`)
	})

	flyers, err := c.Flyers(context.Background(), "20001")
	if err != nil {
		t.Fatalf("Flyers: %v", err)
	}
	if len(flyers) != 2 || flyers[1].Merchant != "Lidl" {
		t.Errorf("flyers: got %+v", flyers)
	}
}

func TestFlyerItemsDecodesLooseTypes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/flipp/flyers/42/items" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		io.WriteString(w, `[
			{"id": 991, "name": "Fresh Bananas", "price_text": "$0.59", "current_price": null},
			{"id": "a-2", "name": "Milk", "price_text": "", "current_price": 3.49, "unit_price": 0.5}
		]`)
	})

	items, err := c.FlyerItems(context.Background(), 42)
	if err != nil {
		t.Fatalf("FlyerItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len: got %d, want 2", len(items))
	}
	if items[0].PriceText.String() != "$0.59" || items[0].CurrentPrice.Set {
		t.Errorf("item 0 price fields: got %+v / %+v", items[0].PriceText, items[0].CurrentPrice)
	}
	if items[1].CurrentPrice.String() != "3.49" {
		t.Errorf("numeric current_price: got %q, want %q", items[1].CurrentPrice.String(), "3.49")
	}
	if items[1].UnitPrice.String() != "0.5" {
		t.Errorf("numeric unit_price: got %q, want %q", items[1].UnitPrice.String(), "0.5")
	}
	if string(items[1].ID) != `"a-2"` {
		t.Errorf("raw id: got %s", items[1].ID)
	}
}

func TestNonOKStatusIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	if _, err := c.FlyerItems(context.Background(), 1); err == nil {
		t.Error("expected error for 403 response")
	}
}

func TestMalformedBodyIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>blocked</html>`)
	})

	if _, err := c.Flyers(context.Background(), "20001"); err == nil {
		t.Error("expected error for non-JSON body")
	}
}

func TestPostalCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/flipp/postal_codes/20001" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		io.WriteString(w, `{"city": "Washington", "province": "DC", "country": "US"}`)
	})

	loc, err := c.PostalCode(context.Background(), "20001")
	if err != nil {
		t.Fatalf("PostalCode: %v", err)
	}
	if loc.City != "Washington" || loc.PostalCode != "20001" {
		t.Errorf("location: got %+v", loc)
	}
}
