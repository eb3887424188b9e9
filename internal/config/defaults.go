package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Env file read at startup for run-specific defaults. Missing file is fine.
const envFileName = "photokeep.env"

// LoadEnvDefaults reads ~/.config/photokeep.env into the process
// environment so DefaultSource and friends can pick the values up.
func LoadEnvDefaults() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(home, ".config", envFileName))
}

// DefaultSource returns the most likely camera mount: the PHOTOKEEP_SOURCE
// override, else the first gphoto2 or MTP gvfs mount, else the working
// directory.
func DefaultSource() string {
	if src := os.Getenv("PHOTOKEEP_SOURCE"); src != "" {
		return src
	}

	gvfs := filepath.Join("/run/user", strconv.Itoa(os.Geteuid()), "gvfs")

	// iOS devices expose DCIM at the mount root.
	if matches, err := filepath.Glob(filepath.Join(gvfs, "gphoto2*")); err == nil && len(matches) > 0 {
		return filepath.Join(matches[0], "DCIM")
	}

	// Android over MTP nests the camera folder one level deeper.
	if matches, err := filepath.Glob(filepath.Join(gvfs, "mtp*")); err == nil && len(matches) > 0 {
		return filepath.Join(matches[0], "Internal shared storage", "DCIM", "Camera")
	}

	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// DefaultDest returns PHOTOKEEP_DEST or the user's Pictures directory.
func DefaultDest() string {
	if dest := os.Getenv("PHOTOKEEP_DEST"); dest != "" {
		return dest
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "Pictures"
	}
	return filepath.Join(home, "Pictures")
}

// DefaultCacheDir returns the directory for the geocode cache database.
func DefaultCacheDir() string {
	if dir := os.Getenv("PHOTOKEEP_CACHE_DIR"); dir != "" {
		return dir
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "."
	}
	return dir
}

// DefaultGeocoderURL returns the reverse geocoding endpoint base URL.
func DefaultGeocoderURL() string {
	if url := os.Getenv("PHOTOKEEP_GEOCODER_URL"); url != "" {
		return url
	}
	return "https://nominatim.openstreetmap.org"
}
