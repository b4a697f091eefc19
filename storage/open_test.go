package storage

import (
	"io"
	"testing"

	"flyer-deals/utils"
)

func TestOpenPicksBackendByScheme(t *testing.T) {
	opts := Options{Logger: utils.NewWriterLogger(io.Discard)}

	rest, err := Open("https://project.supabase.co", "key", opts)
	if err != nil {
		t.Fatalf("Open(https) error: %v", err)
	}
	if _, ok := rest.(*RESTStore); !ok {
		t.Errorf("Open(https) = %T; want *RESTStore", rest)
	}
	_ = rest.Close()

	lite, err := Open("sqlite://:memory:", "", opts)
	if err != nil {
		t.Fatalf("Open(sqlite) error: %v", err)
	}
	if _, ok := lite.(*SQLiteStore); !ok {
		t.Errorf("Open(sqlite) = %T; want *SQLiteStore", lite)
	}
	_ = lite.Close()
}

func TestOpenRejectsUnknownEndpoints(t *testing.T) {
	opts := Options{Logger: utils.NewWriterLogger(io.Discard)}
	for _, endpoint := range []string{"project.supabase.co", "mysql://localhost/deals"} {
		if _, err := Open(endpoint, "key", opts); err == nil {
			t.Errorf("Open(%q) succeeded; want error", endpoint)
		}
	}
}
