package planner

import (
	"errors"
	"testing"
	"time"

	"github.com/photokeep/photokeep/internal/config"
	"github.com/photokeep/photokeep/internal/metadata"
)

type fakeResolver struct {
	name string
	err  error
}

func (f fakeResolver) PlaceName(lat, lon float64) (string, error) {
	return f.name, f.err
}

var captured = time.Date(2023, 6, 15, 14, 30, 0, 0, time.UTC)

func capturedMeta() metadata.Metadata {
	return metadata.Metadata{CaptureTime: captured}
}

func gpsMeta() metadata.Metadata {
	m := capturedMeta()
	m.Latitude = 42.36
	m.Longitude = -71.06
	m.GPSValid = true
	return m
}

func TestEffectiveDate(t *testing.T) {
	mod := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	if got := EffectiveDate(capturedMeta(), mod); !got.Equal(captured) {
		t.Errorf("capture time present: got %v, want %v", got, captured)
	}
	if got := EffectiveDate(metadata.Metadata{}, mod); !got.Equal(mod) {
		t.Errorf("no capture time: got %v, want mod time %v", got, mod)
	}
}

func TestBuildDayDir(t *testing.T) {
	p := New(&config.Config{Command: config.CmdCopy}, nil)

	plan, err := p.Build(SourceFile{Path: "/in/IMG_0001.jpg"}, capturedMeta())
	if err != nil {
		t.Fatal(err)
	}
	if plan.Dir != "2023/06/15" {
		t.Errorf("Dir = %q, want 2023/06/15", plan.Dir)
	}
	if plan.Name != "IMG_0001.jpg" {
		t.Errorf("Name = %q, want IMG_0001.jpg", plan.Name)
	}
}

func TestBuildMonthDir(t *testing.T) {
	p := New(&config.Config{Command: config.CmdCopy, MonthOnly: true}, nil)

	plan, err := p.Build(SourceFile{Path: "/in/IMG_0001.jpg"}, capturedMeta())
	if err != nil {
		t.Fatal(err)
	}
	if plan.Dir != "2023/06" {
		t.Errorf("Dir = %q, want 2023/06", plan.Dir)
	}
}

func TestBuildGeoSuffix(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		meta    metadata.Metadata
		places  PlaceResolver
		wantDir string
	}{
		{
			"gps and resolver",
			config.Config{Command: config.CmdCopy, GeoGroup: true},
			gpsMeta(),
			fakeResolver{name: "US-MA-Boston"},
			"2023/06/15-US-MA-Boston",
		},
		{
			"no gps",
			config.Config{Command: config.CmdCopy, GeoGroup: true},
			capturedMeta(),
			fakeResolver{name: "US-MA-Boston"},
			"2023/06/15",
		},
		{
			"flag off",
			config.Config{Command: config.CmdCopy},
			gpsMeta(),
			fakeResolver{name: "US-MA-Boston"},
			"2023/06/15",
		},
		{
			"resolver fails",
			config.Config{Command: config.CmdCopy, GeoGroup: true},
			gpsMeta(),
			fakeResolver{err: errors.New("offline")},
			"2023/06/15",
		},
		{
			"nil resolver",
			config.Config{Command: config.CmdCopy, GeoGroup: true},
			gpsMeta(),
			nil,
			"2023/06/15",
		},
		{
			"month mode wins over geo",
			config.Config{Command: config.CmdCopy, GeoGroup: true, MonthOnly: true},
			gpsMeta(),
			fakeResolver{name: "US-MA-Boston"},
			"2023/06",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			p := New(&cfg, tt.places)
			plan, err := p.Build(SourceFile{Path: "/in/IMG_0001.jpg"}, tt.meta)
			if err != nil {
				t.Fatal(err)
			}
			if plan.Dir != tt.wantDir {
				t.Errorf("Dir = %q, want %q", plan.Dir, tt.wantDir)
			}
		})
	}
}

func TestBuildRenamePrefix(t *testing.T) {
	p := New(&config.Config{Command: config.CmdCopy, Rename: true}, nil)

	plan, err := p.Build(SourceFile{Path: "/in/IMG_0001.jpg"}, capturedMeta())
	if err != nil {
		t.Fatal(err)
	}
	if plan.Name != "2023-06-15_IMG_0001.jpg" {
		t.Errorf("Name = %q, want 2023-06-15_IMG_0001.jpg", plan.Name)
	}
}

func TestBuildRenameIdempotent(t *testing.T) {
	p := New(&config.Config{Command: config.CmdCopy, Rename: true}, nil)

	plan, err := p.Build(SourceFile{Path: "/in/2023-06-15_IMG_0001.jpg"}, capturedMeta())
	if err != nil {
		t.Fatal(err)
	}
	if plan.Name != "2023-06-15_IMG_0001.jpg" {
		t.Errorf("Name = %q, the date prefix must not be applied twice", plan.Name)
	}
}

func TestBuildDescriptionName(t *testing.T) {
	meta := capturedMeta()
	meta.Description = "Sunset at the Harbor!"

	p := New(&config.Config{Command: config.CmdCopy, ImageDescription: true}, nil)
	plan, err := p.Build(SourceFile{Path: "/in/IMG_0001.jpg"}, meta)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Name != "sunset-at-the-harbor.jpg" {
		t.Errorf("Name = %q, want sunset-at-the-harbor.jpg", plan.Name)
	}
}

func TestBuildDescriptionWithRename(t *testing.T) {
	meta := capturedMeta()
	meta.Title = "Harbor"

	p := New(&config.Config{Command: config.CmdCopy, ImageDescription: true, Rename: true}, nil)
	plan, err := p.Build(SourceFile{Path: "/in/IMG_0001.jpg"}, meta)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Name != "2023-06-15_harbor.jpg" {
		t.Errorf("Name = %q, want 2023-06-15_harbor.jpg", plan.Name)
	}
}

func TestBuildDescriptionCollision(t *testing.T) {
	meta := capturedMeta()
	meta.Description = "Harbor"

	p := New(&config.Config{Command: config.CmdCopy, ImageDescription: true}, nil)

	first, err := p.Build(SourceFile{Path: "/in/IMG_0001.jpg"}, meta)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Build(SourceFile{Path: "/in/IMG_0002.jpg"}, meta)
	if err != nil {
		t.Fatal(err)
	}

	if first.Name != "harbor.jpg" {
		t.Errorf("first Name = %q, want harbor.jpg", first.Name)
	}
	if second.Name != "harbor-2.jpg" {
		t.Errorf("second Name = %q, want harbor-2.jpg", second.Name)
	}

	// Re-planning the same source must keep its original claim.
	again, err := p.Build(SourceFile{Path: "/in/IMG_0001.jpg"}, meta)
	if err != nil {
		t.Fatal(err)
	}
	if again.Name != "harbor.jpg" {
		t.Errorf("replanned Name = %q, want harbor.jpg", again.Name)
	}
}

func TestBuildSinceFilter(t *testing.T) {
	since := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	p := New(&config.Config{Command: config.CmdCopy, Since: since}, nil)

	old := metadata.Metadata{CaptureTime: time.Date(2023, 6, 14, 23, 59, 0, 0, time.UTC)}
	if _, err := p.Build(SourceFile{Path: "/in/a.jpg"}, old); !errors.Is(err, ErrBeforeSince) {
		t.Errorf("day before cutoff: err = %v, want ErrBeforeSince", err)
	}

	boundary := metadata.Metadata{CaptureTime: since}
	if _, err := p.Build(SourceFile{Path: "/in/b.jpg"}, boundary); err != nil {
		t.Errorf("cutoff date itself must be processed, got %v", err)
	}
}

func TestBuildConvertFlag(t *testing.T) {
	p := New(&config.Config{Command: config.CmdCopy, Convert: true}, nil)

	heif, err := p.Build(SourceFile{Path: "/in/IMG_0001.HEIC"}, capturedMeta())
	if err != nil {
		t.Fatal(err)
	}
	if !heif.ConvertJPEG {
		t.Error("HEIC file with --convert must plan a JPEG copy")
	}

	jpg, err := p.Build(SourceFile{Path: "/in/IMG_0002.jpg"}, capturedMeta())
	if err != nil {
		t.Fatal(err)
	}
	if jpg.ConvertJPEG {
		t.Error("JPEG file must not plan a conversion")
	}
}

func TestBuildInPlaceHasNoDir(t *testing.T) {
	cfg := &config.Config{Command: config.CmdRename}
	cfg.Normalize()
	p := New(cfg, nil)

	plan, err := p.Build(SourceFile{Path: "/in/IMG_0001.jpg"}, capturedMeta())
	if err != nil {
		t.Fatal(err)
	}
	if plan.Dir != "" {
		t.Errorf("in-place Dir = %q, want empty", plan.Dir)
	}
	if plan.Name != "2023-06-15_IMG_0001.jpg" {
		t.Errorf("Name = %q, want 2023-06-15_IMG_0001.jpg", plan.Name)
	}
}

func TestIsHEIF(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.heic", true},
		{"a.HEIC", true},
		{"a.heif", true},
		{"a.jpg", false},
		{"a.heic.jpg", false},
	}
	for _, tt := range tests {
		if got := IsHEIF(tt.path); got != tt.want {
			t.Errorf("IsHEIF(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestJPEGSibling(t *testing.T) {
	if got := JPEGSibling("/out/2023/06/15/IMG_0001.HEIC"); got != "/out/2023/06/15/IMG_0001.jpg" {
		t.Errorf("JPEGSibling = %q", got)
	}
}
