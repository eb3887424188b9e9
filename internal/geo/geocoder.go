package geo

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const userAgent = "photokeep"

// Geocoder resolves coordinates to place names against a
// Nominatim-compatible endpoint, consulting the cache first and writing
// every fresh resolution back to it.
type Geocoder struct {
	baseURL string
	cache   *Cache
	client  *http.Client
	last    time.Time
}

// NewGeocoder wires a geocoder to its endpoint and cache. cache may be
// nil, in which case every lookup goes to the network.
func NewGeocoder(baseURL string, cache *Cache) *Geocoder {
	return &Geocoder{
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   cache,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// PlaceName returns the directory-safe place name for a coordinate.
func (g *Geocoder) PlaceName(lat, lon float64) (string, error) {
	if g.cache != nil {
		if name, ok := g.cache.Lookup(lat, lon); ok {
			return name, nil
		}
	}

	name, err := g.reverse(lat, lon)
	if err != nil {
		return "", err
	}

	if g.cache != nil {
		if err := g.cache.Add(name, lat, lon); err != nil {
			return name, err
		}
	}
	return name, nil
}

type reverseResult struct {
	Address struct {
		ISORegion   string `json:"ISO3166-2-lvl4"`
		State       string `json:"state"`
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
		Village     string `json:"village"`
		Town        string `json:"town"`
		City        string `json:"city"`
		County      string `json:"county"`
	} `json:"address"`
}

func (g *Geocoder) reverse(lat, lon float64) (string, error) {
	g.throttle()

	url := fmt.Sprintf("%s/reverse?format=json&lat=%f&lon=%f", g.baseURL, lat, lon)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var result reverseResult
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	name := buildPlaceName(result)
	if name == "" {
		return "", fmt.Errorf("no place name in geocoder response for %f,%f", lat, lon)
	}
	return name, nil
}

// Nominatim asks for at most one request per second.
func (g *Geocoder) throttle() {
	if wait := time.Second - time.Since(g.last); wait > 0 {
		time.Sleep(wait)
	}
	g.last = time.Now()
}

// buildPlaceName assembles a directory-safe name: the ISO region code (or
// state and country) plus the most specific locality available.
func buildPlaceName(result reverseResult) string {
	addr := result.Address
	var parts []string

	if addr.ISORegion != "" {
		parts = append(parts, dirSafe(addr.ISORegion))
	} else {
		if addr.State != "" {
			parts = append(parts, dirSafe(addr.State))
		}
		if addr.Country != "" {
			parts = append(parts, dirSafe(addr.Country))
		} else if addr.CountryCode != "" {
			parts = append(parts, dirSafe(addr.CountryCode))
		}
	}

	for _, locality := range []string{addr.Village, addr.Town, addr.City, addr.County} {
		if locality != "" {
			parts = append(parts, dirSafe(locality))
			break
		}
	}

	return strings.Join(parts, "-")
}

func dirSafe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, "/", "_")
}
