// Package planner turns a file's metadata and the run configuration into
// a destination plan: where the file goes, what it is called there, and
// which side actions apply. The planner itself performs no I/O; conflicts
// with existing files are the executor's concern.
package planner

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/photokeep/photokeep/internal/config"
	"github.com/photokeep/photokeep/internal/metadata"
)

// ErrBeforeSince marks files dated before the --since cutoff. They are
// reported and skipped, never treated as failures.
var ErrBeforeSince = errors.New("file predates the since date")

// SourceFile is the immutable per-file input to planning.
type SourceFile struct {
	Path    string
	ModTime time.Time
}

// Plan is the planning result for one file.
type Plan struct {
	// Dir is the destination directory relative to the destination root
	// ("2023/06/15-Boston"). Empty for in-place commands: the file stays
	// in its own directory.
	Dir string
	// Name is the destination file name including extension.
	Name string
	// Date is the effective date the plan was derived from.
	Date time.Time

	// Side actions.
	Touch       bool
	ConvertJPEG bool
}

// PlaceResolver is the reverse-geocoding collaborator.
type PlaceResolver interface {
	PlaceName(lat, lon float64) (string, error)
}

// Planner computes destination plans for one run.
type Planner struct {
	cfg    *config.Config
	places PlaceResolver
	names  *nameRegistry
}

// New creates a planner. places may be nil when geo grouping is off.
func New(cfg *config.Config, places PlaceResolver) *Planner {
	return &Planner{cfg: cfg, places: places, names: newNameRegistry()}
}

// EffectiveDate is the capture timestamp when present, else the file's
// modification time.
func EffectiveDate(meta metadata.Metadata, modTime time.Time) time.Time {
	if meta.HasCapture() {
		return meta.CaptureTime
	}
	return modTime
}

// Build computes the plan for one file. It returns ErrBeforeSince when
// the since filter excludes the file.
func (p *Planner) Build(src SourceFile, meta metadata.Metadata) (Plan, error) {
	date := EffectiveDate(meta, src.ModTime)

	if !p.cfg.Since.IsZero() && date.Before(p.cfg.Since) {
		return Plan{}, ErrBeforeSince
	}

	plan := Plan{
		Date:        date,
		Touch:       p.cfg.Touch,
		ConvertJPEG: p.cfg.Convert && IsHEIF(src.Path),
	}

	if !p.cfg.Command.InPlace() {
		plan.Dir = p.buildDir(date, meta)
	}
	plan.Name = p.buildName(src, meta, date, plan.Dir)

	return plan, nil
}

// buildDir computes the dated directory: YYYY/MM in month mode, else
// YYYY/MM/DD with an optional -Place suffix on the day segment. Month
// mode never carries a place suffix; the two granularities are exclusive.
func (p *Planner) buildDir(date time.Time, meta metadata.Metadata) string {
	year := date.Format("2006")
	month := date.Format("01")

	if p.cfg.MonthOnly {
		return filepath.Join(year, month)
	}

	day := date.Format("02")
	if p.cfg.GeoGroup && meta.HasGPS() && p.places != nil {
		if place, err := p.places.PlaceName(meta.Latitude, meta.Longitude); err == nil && place != "" {
			day = day + "-" + place
		}
	}
	return filepath.Join(year, month, day)
}

// buildName computes the destination file name. The description-based
// name and the date prefix combine when both flags are set.
func (p *Planner) buildName(src SourceFile, meta metadata.Metadata, date time.Time, dir string) string {
	base := filepath.Base(src.Path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	described := false
	if p.cfg.ImageDescription {
		if label := meta.Label(); label != "" {
			stem = SanitizeName(label)
			described = true
		}
	}

	if p.cfg.Rename {
		prefix := date.Format("2006-01-02") + "_"
		if !strings.HasPrefix(stem, prefix) {
			stem = prefix + stem
		}
	}

	name := stem + ext
	if described {
		// Description names are the only ones that can collide within a
		// run; disambiguate with a numeric suffix.
		name = p.names.claim(src.Path, dir, stem, ext)
	}
	return name
}

// IsHEIF reports whether the file is in the HEIF family.
func IsHEIF(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".heic", ".heif":
		return true
	}
	return false
}

// JPEGSibling is the path of the converted copy placed next to dst.
func JPEGSibling(dst string) string {
	ext := filepath.Ext(dst)
	return strings.TrimSuffix(dst, ext) + ".jpg"
}
