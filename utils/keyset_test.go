package utils

import "testing"

func TestKeySetNoDuplicates(t *testing.T) {
	s := NewKeySet[string]()

	added := s.Add("aldi|Bananas|2024-01-01")
	if !added {
		t.Error("first Add should return true")
	}

	added = s.Add("aldi|Bananas|2024-01-01")
	if added {
		t.Error("second Add of same key should return false")
	}

	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
}

func TestLastByKeyKeepsLastOccurrence(t *testing.T) {
	type row struct {
		key   string
		price int
	}
	rows := []row{{"a", 1}, {"b", 2}, {"a", 3}, {"c", 4}}

	got := LastByKey(rows, func(r row) string { return r.key })
	want := []row{{"b", 2}, {"a", 3}, {"c", 4}}

	if len(got) != len(want) {
		t.Fatalf("len: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLastByKeyUniqueInputUnchanged(t *testing.T) {
	rows := []string{"x", "y", "z"}
	got := LastByKey(rows, func(s string) string { return s })
	if len(got) != 3 {
		t.Errorf("len: got %d, want 3", len(got))
	}
}
