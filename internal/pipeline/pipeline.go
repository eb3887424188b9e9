// Package pipeline drives a run: walk the source tree, extract metadata,
// plan, and execute, one file at a time. Per-file failures are reported
// and the batch continues.
package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"

	"github.com/ztrue/tracerr"

	"github.com/photokeep/photokeep/internal/config"
	"github.com/photokeep/photokeep/internal/fileops"
	"github.com/photokeep/photokeep/internal/logging"
	"github.com/photokeep/photokeep/internal/metadata"
	"github.com/photokeep/photokeep/internal/planner"
)

// Files below this size are thumbnails or debris, not photos.
const minFileSize = 1000

var (
	mediaRegex   = regexp.MustCompile(`(?i)\.(jpg|jpeg|gif|png|heic|heif|webp|tiff|tif|bmp|raw|dng|mpg|wmv|avi|mov|m4v|3gp|mp4|flv|webm|ogv|ts|divx|mkv|mpeg)$`)
	excludeRegex = regexp.MustCompile(`(?i)/\.[a-z_0-9-]+(/|$)`)
)

// Stats are the per-run counters reported in the summary line.
type Stats struct {
	Processed int
	Converted int
	Conflicts int
	Skipped   int
	Errors    int
	TotalSize int64
}

// Pipeline wires the collaborators for one run.
type Pipeline struct {
	cfg     *config.Config
	log     *logging.Logger
	reader  *metadata.Reader
	planner *planner.Planner
}

func New(cfg *config.Config, log *logging.Logger, reader *metadata.Reader, pl *planner.Planner) *Pipeline {
	return &Pipeline{cfg: cfg, log: log, reader: reader, planner: pl}
}

// Run walks the source directory and processes every media file.
func (p *Pipeline) Run() Stats {
	var stats Stats

	walkErr := filepath.Walk(p.cfg.SrcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			stats.Errors++
			p.log.Warn("cannot read %s: %v", path, err)
			return nil
		}

		if info.IsDir() {
			if path != p.cfg.SrcDir && excludeRegex.MatchString(path+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !mediaRegex.MatchString(path) || info.Size() < minFileSize {
			stats.Skipped++
			return nil
		}

		p.processFile(path, info, &stats)
		p.printProgress(path, stats)
		return nil
	})
	if walkErr != nil {
		stats.Errors++
		p.log.Error("walking %s: %v", p.cfg.SrcDir, walkErr)
	}

	p.finishProgress()
	p.logSummary(stats)
	return stats
}

func (p *Pipeline) processFile(path string, info os.FileInfo, stats *Stats) {
	meta, merr := p.reader.Read(path)
	if merr != nil {
		p.log.Debug("no metadata for %s, using file times: %v", path, merr)
	}

	plan, err := p.planner.Build(planner.SourceFile{Path: path, ModTime: info.ModTime()}, meta)
	if errors.Is(err, planner.ErrBeforeSince) {
		stats.Skipped++
		p.log.Info("skipping %s: older than the since date", path)
		return
	}

	switch p.cfg.Command {
	case config.CmdCopy:
		err = p.place(path, plan, stats, false)
	case config.CmdMove:
		err = p.place(path, plan, stats, true)
	case config.CmdConvert:
		err = p.convertInPlace(path, plan, stats)
	case config.CmdRename:
		err = p.renameInPlace(path, plan, stats)
	case config.CmdTouch:
		err = p.touchInPlace(path, plan, stats)
	}

	if err != nil {
		stats.Errors++
		p.log.Error("skipping %s: %v", path, err)
		p.log.Debug("%s", tracerr.Sprint(tracerr.Wrap(err)))
		return
	}
	stats.TotalSize += info.Size()
}

// place implements the copy and move commands.
func (p *Pipeline) place(src string, plan planner.Plan, stats *Stats, move bool) error {
	destDir := filepath.Join(p.cfg.DestDir, plan.Dir)
	dest := filepath.Join(destDir, plan.Name)

	if dest == src {
		return errors.New("computed destination equals the source")
	}

	if skip, err := p.checkConflict(src, dest, stats); skip || err != nil {
		return err
	}

	verb := "copying"
	if move {
		verb = "moving"
	}
	if p.cfg.DryRun {
		p.log.Info("[dry-run] %s %s -> %s", verb, src, dest)
		stats.Processed++
		return nil
	}

	if err := fileops.EnsureDir(destDir); err != nil {
		return err
	}

	p.log.Debug("%s %s -> %s", verb, src, dest)
	var err error
	if move {
		err = fileops.Move(src, dest)
	} else {
		err = fileops.Copy(src, dest)
	}
	if err != nil {
		return err
	}
	stats.Processed++

	if plan.Touch {
		if err := fileops.SetTimes(dest, plan.Date); err != nil {
			p.log.Warn("cannot set times on %s: %v", dest, err)
		}
	}

	if plan.ConvertJPEG {
		if err := p.emitJPEG(dest, dest, plan, stats); err != nil {
			p.log.Warn("cannot convert %s: %v", dest, err)
		}
	}
	return nil
}

// convertInPlace implements the convert command: a .jpg sibling next to
// each HEIF file.
func (p *Pipeline) convertInPlace(src string, plan planner.Plan, stats *Stats) error {
	if !plan.ConvertJPEG {
		stats.Skipped++
		return nil
	}
	if p.cfg.DryRun {
		p.log.Info("[dry-run] converting %s -> %s", src, planner.JPEGSibling(src))
		stats.Processed++
		return nil
	}
	if err := p.emitJPEG(src, src, plan, stats); err != nil {
		return err
	}
	stats.Processed++
	return nil
}

// emitJPEG writes the converted copy next to dest, decoding from src.
func (p *Pipeline) emitJPEG(src, dest string, plan planner.Plan, stats *Stats) error {
	jpg := planner.JPEGSibling(dest)

	if fileops.PathExists(jpg) && !p.cfg.Force {
		stats.Conflicts++
		p.log.Warn("%s already exists, not converting", jpg)
		return nil
	}

	if err := fileops.ConvertHEIF(src, jpg); err != nil {
		return err
	}
	stats.Converted++

	if plan.Touch {
		if err := fileops.SetTimes(jpg, plan.Date); err != nil {
			p.log.Warn("cannot set times on %s: %v", jpg, err)
		}
	}
	return nil
}

// renameInPlace implements the rename command.
func (p *Pipeline) renameInPlace(src string, plan planner.Plan, stats *Stats) error {
	dest := filepath.Join(filepath.Dir(src), plan.Name)
	if dest == src {
		stats.Skipped++
		p.log.Debug("%s already has its final name", src)
		return nil
	}

	if skip, err := p.checkConflict(src, dest, stats); skip || err != nil {
		return err
	}

	if p.cfg.DryRun {
		p.log.Info("[dry-run] renaming %s -> %s", src, dest)
		stats.Processed++
		return nil
	}

	if err := os.Rename(src, dest); err != nil {
		return err
	}
	stats.Processed++

	if plan.Touch {
		if err := fileops.SetTimes(dest, plan.Date); err != nil {
			p.log.Warn("cannot set times on %s: %v", dest, err)
		}
	}
	return nil
}

// touchInPlace implements the touch command.
func (p *Pipeline) touchInPlace(src string, plan planner.Plan, stats *Stats) error {
	if p.cfg.DryRun {
		p.log.Info("[dry-run] touching %s -> %s", src, plan.Date.Format("2006-01-02 15:04:05"))
		stats.Processed++
		return nil
	}
	if err := fileops.SetTimes(src, plan.Date); err != nil {
		return err
	}
	stats.Processed++
	return nil
}

// checkConflict applies the overwrite policy. skip means the file is done
// (reported), not failed.
func (p *Pipeline) checkConflict(src, dest string, stats *Stats) (skip bool, err error) {
	conflict, err := fileops.CheckDest(src, dest)
	if err != nil {
		return false, err
	}

	switch conflict {
	case fileops.AlreadyImported:
		stats.Conflicts++
		p.log.Warn("%s already exists as the same file", dest)
		return true, nil
	case fileops.DifferentContent:
		if !p.cfg.Force {
			stats.Conflicts++
			p.log.Warn("%s exists and differs from %s", dest, src)
			return true, nil
		}
		if p.cfg.DryRun {
			return false, nil
		}
		if err := os.Remove(dest); err != nil {
			return false, err
		}
	}
	return false, nil
}
