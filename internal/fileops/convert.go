package fileops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// jpegQuality matches what phones use for their own JPEG exports.
const jpegQuality = 92

// ConvertHEIF decodes a HEIF file via the external heif-convert tool and
// writes a JPEG at dest. EXIF tags are carried over with exiftool on a
// best-effort basis; a missing exiftool leaves the JPEG tagless rather
// than failing the conversion.
func ConvertHEIF(src, dest string) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".photokeep-*.png")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	out, err := exec.Command("heif-convert", src, tmpPath).CombinedOutput()
	if err != nil {
		return fmt.Errorf("heif-convert %s: %v: %s", src, err, firstLine(out))
	}

	img, err := imaging.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("decoding converted image: %w", err)
	}
	if err := imaging.Save(img, dest, imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("encoding %s: %w", dest, err)
	}

	_ = exec.Command("exiftool", "-overwrite_original", "-TagsFromFile", src, dest).Run()

	return nil
}

func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
