package planner

import (
	"fmt"
	"path/filepath"

	"github.com/gosimple/slug"
)

// maxNameRunes bounds description-derived file names; descriptions can be
// whole sentences.
const maxNameRunes = 64

// SanitizeName turns free-text metadata (ImageDescription, XPTitle) into
// a path-safe file name stem.
func SanitizeName(text string) string {
	s := slug.Make(text)
	runes := []rune(s)
	if len(runes) > maxNameRunes {
		s = string(runes[:maxNameRunes])
	}
	return s
}

// nameRegistry tracks destination names claimed within a run and resolves
// collisions with a numeric suffix: name.jpg, name-2.jpg, name-3.jpg.
type nameRegistry struct {
	owners map[string]string // dir/name -> source path that owns it
}

func newNameRegistry() *nameRegistry {
	return &nameRegistry{owners: make(map[string]string)}
}

// claim returns the final name for source in dir, disambiguating when a
// different source already claimed it.
func (r *nameRegistry) claim(source, dir, stem, ext string) string {
	name := stem + ext
	key := filepath.Join(dir, name)

	owner, taken := r.owners[key]
	if !taken || owner == source {
		r.owners[key] = source
		return name
	}

	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, n, ext)
		key := filepath.Join(dir, candidate)
		owner, taken := r.owners[key]
		if !taken || owner == source {
			r.owners[key] = source
			return candidate
		}
	}
}
