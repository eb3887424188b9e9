package geo

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := OpenCache(filepath.Join(t.TempDir(), "places.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheLookup(t *testing.T) {
	c := openTestCache(t)
	if err := c.Add("US-MA-Boston", 42.36, -71.06); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		lat, lon float64
		want     string
		wantOK   bool
	}{
		{"exact", 42.36, -71.06, "US-MA-Boston", true},
		{"inside box", 42.39, -71.02, "US-MA-Boston", true},
		{"lat outside", 42.42, -71.06, "", false},
		{"lon outside", 42.36, -71.12, "", false},
		{"far away", 40.71, -74.00, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Lookup(tt.lat, tt.lon)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Lookup(%f, %f) = %q, %v; want %q, %v",
					tt.lat, tt.lon, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCacheAddDedupes(t *testing.T) {
	c := openTestCache(t)
	if err := c.Add("US-MA-Boston", 42.36, -71.06); err != nil {
		t.Fatal(err)
	}
	if err := c.Add("US-MA-Boston", 42.37, -71.07); err != nil {
		t.Fatal(err)
	}
	if len(c.places) != 1 {
		t.Errorf("places = %d, want 1", len(c.places))
	}
	// The first coordinate stays authoritative.
	if c.places[0].Latitude != 42.36 {
		t.Errorf("latitude = %f, want 42.36", c.places[0].Latitude)
	}
}

func TestCachePersists(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "places.sqlite")

	c, err := OpenCache(dbFile)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Add("ES-IB-Palma", 39.57, 2.64); err != nil {
		t.Fatal(err)
	}
	c.Close()

	c, err = OpenCache(dbFile)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if got, ok := c.Lookup(39.57, 2.64); !ok || got != "ES-IB-Palma" {
		t.Errorf("Lookup after reopen = %q, %v", got, ok)
	}
}

func TestPlaceFromDirName(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"15-Boston", "Boston"},
		{"07-MA-US_Cambridge", "MA-US_Cambridge"},
		{"15", ""},
		{"06", ""},
		{"2023", ""},
		{"15-", ""},
		{"x5-Boston", ""},
		{"155-Boston", ""},
		{"photos", ""},
	}
	for _, tt := range tests {
		if got := PlaceFromDirName(tt.base); got != tt.want {
			t.Errorf("PlaceFromDirName(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestSeedFromTree(t *testing.T) {
	c := openTestCache(t)

	root := t.TempDir()
	placeDir := filepath.Join(root, "2023", "06", "15-Boston")
	plainDir := filepath.Join(root, "2023", "06", "16")
	for _, dir := range []string{placeDir, plainDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, dir := range []string{placeDir, plainDir} {
		if err := os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	read := func(path string) (float64, float64, bool) {
		return 42.36, -71.06, true
	}
	if err := c.SeedFromTree(root, read); err != nil {
		t.Fatal(err)
	}

	if got, ok := c.Lookup(42.36, -71.06); !ok || got != "Boston" {
		t.Errorf("Lookup after seed = %q, %v; want Boston, true", got, ok)
	}
	if len(c.places) != 1 {
		t.Errorf("places = %d, want 1", len(c.places))
	}
}

func TestSeedFromTreeSkipsKnownNames(t *testing.T) {
	c := openTestCache(t)
	if err := c.Add("Boston", 42.36, -71.06); err != nil {
		t.Fatal(err)
	}

	root := t.TempDir()
	dir := filepath.Join(root, "2023", "06", "15-Boston")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	probed := false
	read := func(path string) (float64, float64, bool) {
		probed = true
		return 0, 0, false
	}
	if err := c.SeedFromTree(root, read); err != nil {
		t.Fatal(err)
	}
	if probed {
		t.Error("files under an already-known place directory must not be probed")
	}
}
