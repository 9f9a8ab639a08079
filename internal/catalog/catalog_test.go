package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()

	c, err := New([]Entry{
		{Name: "Steel", Price: "30", Unit: "KG", ImageURL: "https://example.com/steel.jpg"},
		{Name: "Copper", Price: "400 - 425", Unit: "KG"},
		{Name: "Plastic", Price: "10 - 15", Unit: "KG"},
		{Name: "Newspaper", Price: "14", Unit: "KG"},
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestLookupExactMatchScores100(t *testing.T) {
	c := testCatalog(t)

	entry, score := c.Lookup("steel")
	if score != 100 {
		t.Errorf("exact match score = %d, want 100", score)
	}
	if entry.Name != "Steel" {
		t.Errorf("matched %q, want Steel", entry.Name)
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	c := testCatalog(t)

	entry, score := c.Lookup("  COPPER ")
	if score != 100 {
		t.Errorf("score = %d, want 100", score)
	}
	if entry.Name != "Copper" {
		t.Errorf("matched %q, want Copper", entry.Name)
	}
}

func TestLookupDeterministic(t *testing.T) {
	c := testCatalog(t)

	first, firstScore := c.Lookup("newspapr")
	for i := 0; i < 10; i++ {
		entry, score := c.Lookup("newspapr")
		if entry.Name != first.Name || score != firstScore {
			t.Fatalf("lookup not deterministic: got (%q, %d), want (%q, %d)",
				entry.Name, score, first.Name, firstScore)
		}
	}
}

func TestLookupGarbageBelowThreshold(t *testing.T) {
	c := testCatalog(t)

	_, score := c.Lookup("zzzxqqjw")
	if score > MatchThreshold {
		t.Errorf("garbage input scored %d, want <= %d", score, MatchThreshold)
	}
}

func TestLookupEmptyInput(t *testing.T) {
	c := testCatalog(t)

	_, score := c.Lookup("   ")
	if score > MatchThreshold {
		t.Errorf("empty input scored %d, want <= %d", score, MatchThreshold)
	}
}

func TestLowerBound(t *testing.T) {
	tests := []struct {
		spec    string
		want    float64
		wantErr bool
	}{
		{spec: "30", want: 30},
		{spec: "400 - 425", want: 400},
		{spec: "10-15", want: 10},
		{spec: " 14 ", want: 14},
		{spec: "0", want: 0},
		{spec: "abc", wantErr: true},
		{spec: "", wantErr: true},
		{spec: "- 15", wantErr: true},
	}

	for _, tt := range tests {
		got, err := LowerBound(tt.spec)
		if tt.wantErr {
			if err == nil {
				t.Errorf("LowerBound(%q): expected error, got %v", tt.spec, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("LowerBound(%q) failed: %v", tt.spec, err)
			continue
		}
		if got != tt.want {
			t.Errorf("LowerBound(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.json")
	data := `[
		{"Name": "Steel", "Price": "30", "Unit": "KG", "Image URL": "https://example.com/steel.jpg"},
		{"Name": "steel", "Price": "99", "Unit": "KG"},
		{"Name": "Copper", "Price": "400 - 425", "Unit": "KG"}
	]`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	c, err := Load(path, zap.NewNop())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Duplicate keys keep the first entry.
	entry, score := c.Lookup("steel")
	if score != 100 || entry.Price != "30" {
		t.Errorf("duplicate handling: got price %q score %d, want price 30 score 100",
			entry.Price, score)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("does-not-exist.json", zap.NewNop()); err == nil {
		t.Error("expected error for missing file")
	}
}
