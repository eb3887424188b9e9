// Package config holds the per-run configuration: the selected command,
// source/destination directories, and the flags that shape destination
// planning. A Config is built once at startup and never mutated afterwards.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// Command is the closed set of operations the tool supports.
type Command int

const (
	CmdCopy Command = iota
	CmdMove
	CmdConvert
	CmdRename
	CmdTouch
)

func (c Command) String() string {
	switch c {
	case CmdCopy:
		return "copy"
	case CmdMove:
		return "move"
	case CmdConvert:
		return "convert"
	case CmdRename:
		return "rename"
	case CmdTouch:
		return "touch"
	}
	return "unknown"
}

// InPlace reports whether the command operates on a single directory
// without a separate destination tree.
func (c Command) InPlace() bool {
	return c == CmdConvert || c == CmdRename || c == CmdTouch
}

// Config is the immutable run configuration.
type Config struct {
	Command Command
	SrcDir  string
	DestDir string

	DryRun           bool
	ScanDirs         bool
	Force            bool
	Convert          bool
	Rename           bool
	ImageDescription bool
	Touch            bool
	MonthOnly        bool
	GeoGroup         bool
	Since            time.Time // zero value means no since filter

	Quiet bool
	Debug bool

	GeocoderURL string
	CacheDir    string
}

// Accepted layouts for the --since argument, most common first.
var sinceLayouts = []string{"2006-01-02", "2006:01:02", "01/02/06"}

// ParseSince converts a --since argument to a date. An empty string is
// valid and disables the filter.
func ParseSince(val string) (time.Time, error) {
	if val == "" {
		return time.Time{}, nil
	}
	for _, layout := range sinceLayouts {
		if t, err := time.ParseInLocation(layout, val, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid since date %q (use YYYY-MM-DD)", val)
}

// Normalize resolves paths, folds the in-place commands onto their flags
// (convert command implies --convert, etc.) and points DestDir at SrcDir
// for in-place commands.
func (c *Config) Normalize() {
	c.SrcDir, _ = filepath.Abs(c.SrcDir)

	switch c.Command {
	case CmdConvert:
		c.Convert = true
	case CmdRename:
		c.Rename = true
	case CmdTouch:
		c.Touch = true
	}

	if c.Command.InPlace() {
		c.DestDir = c.SrcDir
		return
	}
	c.DestDir, _ = filepath.Abs(c.DestDir)
}

// Validate rejects configurations that cannot produce a sane run. It is
// called after Normalize and before any file is touched.
func (c *Config) Validate() error {
	if c.SrcDir == "" {
		return errors.New("source directory is missing")
	}
	if c.Command.InPlace() {
		return nil
	}
	if c.DestDir == "" {
		return errors.New("destination directory is missing")
	}
	if c.SrcDir == c.DestDir {
		return errors.New("source and destination directories cannot be the same")
	}
	return nil
}
