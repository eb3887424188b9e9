package metadata

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDMSPair parses an exiftool position like
// `39 deg 34' 4.66" N, 2 deg 38' 40.34" E` into decimal degrees.
func ParseDMSPair(position string) (float64, float64, error) {
	parts := strings.Split(strings.TrimSpace(position), ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("cannot parse GPS position %q", position)
	}

	lat, err := ParseDMS(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	lon, err := ParseDMS(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

// ParseDMS parses a single coordinate like `2 deg 38' 40.34" E`.
func ParseDMS(val string) (float64, error) {
	chunks := strings.Fields(val)
	if len(chunks) != 5 {
		return 0, fmt.Errorf("cannot parse GPS coordinate %q", val)
	}

	deg, err := strconv.ParseFloat(strings.Trim(chunks[0], " '\""), 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse GPS coordinate %q", val)
	}
	minutes, _ := strconv.ParseFloat(strings.Trim(chunks[2], " '\""), 64)
	seconds, _ := strconv.ParseFloat(strings.Trim(chunks[3], " '\""), 64)

	coord := deg + (minutes / 60) + (seconds / 3600)

	// N is "+", S is "-", E is "+", W is "-"
	switch strings.ToUpper(chunks[4]) {
	case "N", "E":
	case "S", "W":
		coord *= -1
	default:
		return 0, fmt.Errorf("cannot parse GPS reference in %q", val)
	}

	return coord, nil
}
