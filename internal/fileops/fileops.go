// Package fileops performs the filesystem side of a plan: copy, move,
// rename, timestamp retouch, HEIF conversion, and the overwrite check.
package fileops

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/kalafut/imohash"
)

const (
	DirPerms  = 0o755
	FilePerms = 0o644
)

var isUnix = runtime.GOOS == "linux" || runtime.GOOS == "darwin" ||
	runtime.GOOS == "freebsd" || runtime.GOOS == "openbsd"

func PathExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func EnsureDir(dir string) error {
	if PathExists(dir) {
		return nil
	}
	return os.MkdirAll(dir, DirPerms)
}

// Copy copies src to dest preserving attributes where the platform
// allows it.
func Copy(src, dest string) error {
	if isUnix { // windows cp does not exist nor preserve attributes
		return exec.Command("cp", "-pRP", src, dest).Run()
	}

	s, err := os.Open(src)
	if err != nil {
		return err
	}
	defer s.Close()

	d, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(d, s); err != nil {
		d.Close()
		return err
	}
	return d.Close()
}

// Move renames src to dest, falling back to copy+remove across devices.
func Move(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := Copy(src, dest); err != nil {
		return err
	}
	return os.Remove(src)
}

// SetTimes stamps both access and modification time.
func SetTimes(path string, t time.Time) error {
	return os.Chtimes(path, t, t)
}

// SameContent compares two files by sampled hash. imohash reads only the
// head, middle and tail, which is plenty to tell a re-exported photo from
// the file it came from.
func SameContent(a, b string) (bool, error) {
	ha, err := imohash.SumFile(a)
	if err != nil {
		return false, err
	}
	hb, err := imohash.SumFile(b)
	if err != nil {
		return false, err
	}
	return ha == hb, nil
}

// Conflict is the outcome of checking a destination path.
type Conflict int

const (
	NoConflict       Conflict = iota
	AlreadyImported           // destination holds identical content
	DifferentContent          // destination holds something else
)

// CheckDest inspects the computed destination without touching it.
// Whether a DifferentContent conflict blocks the file is the caller's
// call (the force flag).
func CheckDest(src, dest string) (Conflict, error) {
	if !PathExists(dest) {
		return NoConflict, nil
	}

	same, err := SameContent(src, dest)
	if err != nil {
		return DifferentContent, fmt.Errorf("comparing %s: %w", dest, err)
	}
	if same {
		return AlreadyImported, nil
	}
	return DifferentContent, nil
}
