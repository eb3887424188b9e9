package geo

import (
	"os"
	"path/filepath"
	"strings"
)

// filesPerDir caps how many files are probed per place directory while
// seeding the cache.
const filesPerDir = 5

// MetadataFunc reads GPS data from one file. It decouples the scan from
// the metadata package; a file without GPS returns ok=false.
type MetadataFunc func(path string) (lat, lon float64, ok bool)

// SeedFromTree walks an organized destination tree and caches the place
// names already encoded in `DD-Place` day directories, pairing each with
// a coordinate read from a file inside. This lets a run reuse earlier
// geocoding work without touching the network.
func (c *Cache) SeedFromTree(root string, read MetadataFunc) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}

		name := PlaceFromDirName(filepath.Base(path))
		if name == "" {
			return nil
		}
		if c.hasName(name) {
			return filepath.SkipDir
		}

		if lat, lon, ok := firstCoordinate(path, read); ok {
			_ = c.Add(name, lat, lon)
		}
		return filepath.SkipDir
	})
}

func (c *Cache) hasName(name string) bool {
	for _, p := range c.places {
		if p.Name == name {
			return true
		}
	}
	return false
}

func firstCoordinate(dir string, read MetadataFunc) (float64, float64, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, false
	}

	probed := 0
	for _, entry := range entries {
		if entry.IsDir() || probed >= filesPerDir {
			continue
		}
		probed++
		if lat, lon, ok := read(filepath.Join(dir, entry.Name())); ok {
			return lat, lon, true
		}
	}
	return 0, 0, false
}

// PlaceFromDirName extracts the place name from a geo-grouped day
// directory like "15-Boston" or "07-MA-US_Cambridge". Plain numeric day
// or month directories yield "".
func PlaceFromDirName(base string) string {
	day, place, found := strings.Cut(base, "-")
	if !found || place == "" {
		return ""
	}
	if len(day) != 2 || !isDigits(day) {
		return ""
	}
	return place
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
