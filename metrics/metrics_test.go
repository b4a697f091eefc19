package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.FlyerSeen("matched")
	m.FlyerSeen("matched")
	m.FlyerSeen("unmatched")
	m.FetchError("items")
	m.DealsNormalized("aldi", 3)
	m.BatchUpserted(3)
	m.ExpiredDeleted(5)

	start := time.Date(2024, 1, 3, 6, 0, 0, 0, time.UTC)
	m.Finished(start, start.Add(2*time.Second), nil)

	path := filepath.Join(t.TempDir(), "flyer_deals.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		`flyer_deals_flyers_total{outcome="matched"} 2`,
		`flyer_deals_flyers_total{outcome="unmatched"} 1`,
		`flyer_deals_fetch_errors_total{endpoint="items"} 1`,
		`flyer_deals_deals_normalized{store="aldi"} 3`,
		`flyer_deals_deals_upserted_total 3`,
		`flyer_deals_upsert_batches_total 1`,
		`flyer_deals_expired_deleted_total 5`,
		`flyer_deals_sync_duration_seconds 2`,
		`flyer_deals_last_success_timestamp_seconds 1.704261602e+09`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q:\n%s", want, out)
		}
	}
}

func TestFailedRunKeepsLastSuccess(t *testing.T) {
	m := New()
	start := time.Unix(1000, 0)
	m.Finished(start, start.Add(time.Second), errors.New("boom"))

	path := filepath.Join(t.TempDir(), "m.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "flyer_deals_last_success_timestamp_seconds 0") {
		t.Errorf("last success set after failed run:\n%s", data)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *SyncMetrics
	m.FlyerSeen("matched")
	m.BatchUpserted(10)
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("nil WriteTextfile = %v; want nil", err)
	}
}
