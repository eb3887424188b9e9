package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/photokeep/photokeep/internal/config"
	"github.com/photokeep/photokeep/internal/geo"
	"github.com/photokeep/photokeep/internal/logging"
	"github.com/photokeep/photokeep/internal/metadata"
	"github.com/photokeep/photokeep/internal/pipeline"
	"github.com/photokeep/photokeep/internal/planner"
)

const cacheFile = "photokeep-geodata.sqlite"

func main() {
	config.LoadEnvDefaults()

	app := &cli.App{
		Name:                   "photokeep",
		Usage:                  "Organize photo and video files by capture date and location",
		UseShortOptionHandling: true,
		Commands: []*cli.Command{
			command(config.CmdCopy,
				"Copy files from source into a dated destination tree.",
				"source destination"),
			command(config.CmdMove,
				"Move files from source into a dated destination tree.",
				"source destination"),
			command(config.CmdConvert,
				"Create a JPEG copy next to each HEIF file, in place.",
				"[dir]"),
			command(config.CmdRename,
				"Rename files to YYYY-MM-DD_<name>, in place.",
				"[dir]"),
			command(config.CmdTouch,
				"Set file times to the capture date, in place.",
				"[dir]"),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logging.New(false, false).Error("%v", err)
		os.Exit(1)
	}
}

func command(cmd config.Command, usage, argsUsage string) *cli.Command {
	return &cli.Command{
		Name:      cmd.String(),
		Usage:     usage,
		ArgsUsage: argsUsage,
		Flags:     runFlags(),
		Action: func(c *cli.Context) error {
			return run(cmd, c)
		},
	}
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "dry-run",
			Aliases: []string{"d"},
			Usage:   "Do not modify anything, just report the planned actions.",
		},
		&cli.BoolFlag{
			Name:    "scan-dirs",
			Aliases: []string{"S"},
			Usage:   "Scan existing destination directories for location names before the run.",
		},
		&cli.BoolFlag{
			Name:    "force",
			Aliases: []string{"f"},
			Usage:   "Overwrite existing files at the destination.",
		},
		&cli.BoolFlag{
			Name:    "convert",
			Aliases: []string{"c"},
			Usage:   "Also produce a JPEG copy of every HEIF file.",
		},
		&cli.BoolFlag{
			Name:    "rename",
			Aliases: []string{"r"},
			Usage:   "Prefix destination file names with YYYY-MM-DD_.",
		},
		&cli.BoolFlag{
			Name:    "image-description",
			Aliases: []string{"i"},
			Usage:   "Use the embedded description or title as the file name, when present. Can be combined with -r.",
		},
		&cli.BoolFlag{
			Name:    "touch",
			Aliases: []string{"t"},
			Usage:   "Set destination file times to the capture date.",
		},
		&cli.BoolFlag{
			Name:    "month",
			Aliases: []string{"m"},
			Usage:   "Group into month directories (YYYY/MM) instead of day directories (YYYY/MM/DD).",
		},
		&cli.BoolFlag{
			Name:    "geo-group",
			Aliases: []string{"g"},
			Usage:   "Append a resolved place name to day directories (YYYY/MM/DD-Town).",
		},
		&cli.StringFlag{
			Name:    "since",
			Aliases: []string{"s"},
			Usage:   "Only process files captured on or after this YYYY-MM-DD date.",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Print nothing but warnings and errors.",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"D"},
			Usage:   "Print per-file debug output instead of the progress line.",
		},
	}
}

func run(cmd config.Command, c *cli.Context) error {
	since, err := config.ParseSince(c.String("since"))
	if err != nil {
		return err
	}

	cfg := &config.Config{
		Command:          cmd,
		SrcDir:           c.Args().Get(0),
		DestDir:          c.Args().Get(1),
		DryRun:           c.Bool("dry-run"),
		ScanDirs:         c.Bool("scan-dirs"),
		Force:            c.Bool("force"),
		Convert:          c.Bool("convert"),
		Rename:           c.Bool("rename"),
		ImageDescription: c.Bool("image-description"),
		Touch:            c.Bool("touch"),
		MonthOnly:        c.Bool("month"),
		GeoGroup:         c.Bool("geo-group"),
		Since:            since,
		Quiet:            c.Bool("quiet"),
		Debug:            c.Bool("debug"),
		GeocoderURL:      config.DefaultGeocoderURL(),
		CacheDir:         config.DefaultCacheDir(),
	}

	if cfg.SrcDir == "" {
		cfg.SrcDir = config.DefaultSource()
	}
	if cfg.DestDir == "" && !cmd.InPlace() {
		cfg.DestDir = config.DefaultDest()
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if info, err := os.Stat(cfg.SrcDir); err != nil || !info.IsDir() {
		return cli.Exit("source directory does not exist: "+cfg.SrcDir, 1)
	}

	log := logging.New(cfg.Quiet, cfg.Debug)

	session, err := metadata.OpenSession()
	if err != nil {
		log.Debug("exiftool unavailable, HEIF and video metadata will fall back to file times: %v", err)
	} else {
		defer session.Close()
	}
	reader := metadata.NewReader(session)

	var places planner.PlaceResolver
	if cfg.GeoGroup {
		places = openGeocoder(cfg, log, reader)
	}

	pipe := pipeline.New(cfg, log, reader, planner.New(cfg, places))
	pipe.Run()
	return nil
}

// openGeocoder wires the place cache and the reverse geocoder. Cache
// trouble degrades to uncached lookups; geo grouping never aborts a run.
func openGeocoder(cfg *config.Config, log *logging.Logger, reader *metadata.Reader) planner.PlaceResolver {
	cache, err := geo.OpenCache(filepath.Join(cfg.CacheDir, cacheFile))
	if err != nil {
		log.Warn("cannot open the geodata cache, lookups will not be reused: %v", err)
		return geo.NewGeocoder(cfg.GeocoderURL, nil)
	}

	if cfg.ScanDirs {
		log.Debug("scanning %s for known locations", cfg.DestDir)
		err := cache.SeedFromTree(cfg.DestDir, func(path string) (float64, float64, bool) {
			meta, rerr := reader.Read(path)
			if rerr != nil || !meta.HasGPS() {
				return 0, 0, false
			}
			return meta.Latitude, meta.Longitude, true
		})
		if err != nil {
			log.Warn("scanning destination directories failed: %v", err)
		}
	}

	return geo.NewGeocoder(cfg.GeocoderURL, cache)
}
