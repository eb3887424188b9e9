package metadata

import (
	"os"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/bradfitz/latlong"
	"github.com/rwcarlsen/goexif/exif"
)

// Capture-date tags in preference order. The earliest parsed value wins,
// matching cameras that store a later edit date in DateTime.
var nativeDateTags = []exif.FieldName{
	exif.DateTimeOriginal,
	exif.DateTime,
	exif.DateTimeDigitized,
}

// ReadNative decodes EXIF from JPEG/TIFF-family files in-process.
func ReadNative(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return Metadata{}, err
	}

	var meta Metadata
	if lat, lon, lerr := x.LatLong(); lerr == nil {
		meta.Latitude = lat
		meta.Longitude = lon
		meta.GPSValid = true
		meta.Timezone = latlong.LookupZoneName(lat, lon)
	}

	meta.CaptureTime = earliestNativeDate(x, meta.Timezone)
	meta.Description = strings.TrimSpace(tagString(x, exif.ImageDescription))
	meta.Title = strings.TrimSpace(tagString(x, exif.XPTitle))
	meta.CameraModel = strings.TrimSpace(strings.TrimSpace(tagString(x, exif.Make)) + " " + strings.TrimSpace(tagString(x, exif.Model)))

	return meta, nil
}

func earliestNativeDate(x *exif.Exif, timezone string) time.Time {
	var earliest time.Time
	for _, name := range nativeDateTags {
		val := tagString(x, name)
		if val == "" {
			continue
		}
		t, err := ParseTimestamp(val, timezone)
		if err != nil {
			continue
		}
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
	}
	return earliest
}

// tagString reads a tag as text. The Windows XP* tags store UCS-2 bytes
// instead of ASCII, so decode those by hand when StringVal balks.
func tagString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	if s, serr := tag.StringVal(); serr == nil {
		return strings.Trim(s, "\x00 ")
	}
	return decodeUCS2(tag.Val)
}

func decodeUCS2(b []byte) string {
	if len(b) < 2 {
		return ""
	}
	u := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u = append(u, uint16(b[i])|uint16(b[i+1])<<8)
	}
	return strings.Trim(string(utf16.Decode(u)), "\x00 ")
}
