// Package metadata extracts capture metadata from photo and video files.
// Images in formats Go can parse natively go through goexif; everything
// else (HEIF, video containers) falls back to a long-lived exiftool
// session. Both paths populate the same Metadata value so the rest of the
// tool never cares which container a field came from.
package metadata

import "time"

// Metadata is the per-file extraction result. Absent fields keep their
// zero value; use the Has* helpers before trusting them.
type Metadata struct {
	CaptureTime time.Time

	Latitude  float64
	Longitude float64
	GPSValid  bool

	// Free-text fields usable as a destination file name.
	Description string
	Title       string

	CameraModel string
	Timezone    string // IANA zone derived from GPS, "" when unknown
}

// HasCapture reports whether a capture timestamp was found in the file.
func (m Metadata) HasCapture() bool {
	return !m.CaptureTime.IsZero()
}

// HasGPS reports whether the file carries a usable coordinate pair.
func (m Metadata) HasGPS() bool {
	return m.GPSValid
}

// Label returns the preferred free-text name for the file, if any.
func (m Metadata) Label() string {
	if m.Description != "" {
		return m.Description
	}
	return m.Title
}

// Reader extracts metadata with the native decoder first and the exiftool
// session second. A nil session disables the fallback.
type Reader struct {
	session *Session
}

// NewReader wraps an optional exiftool session.
func NewReader(session *Session) *Reader {
	return &Reader{session: session}
}

// Read never fails hard: when neither extractor can make sense of the
// file it returns an empty Metadata and the last error, and the caller
// degrades to filesystem timestamps.
func (r *Reader) Read(path string) (Metadata, error) {
	meta, err := ReadNative(path)
	if err == nil {
		return meta, nil
	}

	if r.session != nil {
		if meta, serr := r.session.Read(path); serr == nil {
			return meta, nil
		}
	}

	return Metadata{}, err
}
