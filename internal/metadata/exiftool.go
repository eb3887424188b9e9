package metadata

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/bradfitz/latlong"
)

// Session is a long-lived exiftool process in -stay_open mode, so a batch
// run pays the perl startup cost once instead of per file. It handles the
// formats goexif cannot: HEIF, video containers, RAW.
type Session struct {
	mu      sync.Mutex
	stdin   io.WriteCloser
	out     *bufio.Scanner
	outPipe io.ReadCloser
	ready   []byte
}

// Candidate date keys in exiftool's JSON output.
var sessionDateKeys = []string{
	"DateTimeOriginal", "CreateDate", "DateTimeDigitized", "GPSDateTime", "MediaCreateDate",
}

// OpenSession starts the exiftool child process. The returned Session must
// be closed to let the process exit.
func OpenSession() (*Session, error) {
	ready := []byte("{ready}\n")
	if runtime.GOOS == "windows" {
		ready = []byte("{ready}\r\n")
	}

	s := &Session{ready: ready}

	cmd := exec.Command("exiftool", "-stay_open", "True", "-@", "-", "-common_args")
	r, w := io.Pipe()
	cmd.Stdout = w
	cmd.Stderr = w
	s.outPipe = r

	var err error
	if s.stdin, err = cmd.StdinPipe(); err != nil {
		return nil, fmt.Errorf("exiftool stdin pipe: %w", err)
	}

	s.out = bufio.NewScanner(r)
	s.out.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	s.out.Split(s.splitReady)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting exiftool: %w", err)
	}
	return s, nil
}

func (s *Session) splitReady(data []byte, atEOF bool) (int, []byte, error) {
	idx := bytes.Index(data, s.ready)
	if idx == -1 {
		if atEOF && len(data) > 0 {
			return 0, data, fmt.Errorf("no ready token found")
		}
		return 0, nil, nil
	}
	return idx + len(s.ready), data[:idx], nil
}

// Close asks exiftool to shut down and closes the pipes.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, arg := range []string{"-stay_open", "False", "-execute"} {
		if _, err := fmt.Fprintln(s.stdin, arg); err != nil {
			return err
		}
	}

	var errs []error
	if err := s.outPipe.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.stdin.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("closing exiftool: %v", errs)
	}
	return nil
}

// Read extracts one file's metadata through the session.
func (s *Session) Read(path string) (Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, arg := range []string{"-json", "-api", "largefilesupport=1", "-extractEmbedded", path, "-execute"} {
		fmt.Fprintln(s.stdin, arg)
	}

	if !s.out.Scan() {
		return Metadata{}, fmt.Errorf("no exiftool output for %s", path)
	}
	if err := s.out.Err(); err != nil {
		return Metadata{}, fmt.Errorf("reading exiftool output: %w", err)
	}

	return parseSessionOutput(s.out.Bytes())
}

func parseSessionOutput(jsonBytes []byte) (Metadata, error) {
	var records []map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &records); err != nil {
		return Metadata{}, fmt.Errorf("decoding exiftool JSON: %w", err)
	}
	if len(records) == 0 {
		return Metadata{}, fmt.Errorf("empty exiftool result")
	}
	record := records[0]
	if _, bad := record["Error"]; bad {
		return Metadata{}, fmt.Errorf("exiftool error for %s", jsonValue(record, "SourceFile"))
	}

	var meta Metadata
	if pos := jsonValue(record, "GPSPosition"); pos != "" {
		if lat, lon, err := ParseDMSPair(pos); err == nil {
			meta.Latitude, meta.Longitude, meta.GPSValid = lat, lon, true
		}
	} else if latStr, lonStr := jsonValue(record, "GPSLatitude"), jsonValue(record, "GPSLongitude"); latStr != "" && lonStr != "" {
		lat, latErr := ParseDMS(latStr)
		lon, lonErr := ParseDMS(lonStr)
		if latErr == nil && lonErr == nil {
			meta.Latitude, meta.Longitude, meta.GPSValid = lat, lon, true
		}
	}
	if meta.GPSValid {
		meta.Timezone = latlong.LookupZoneName(meta.Latitude, meta.Longitude)
	}

	var candidates []time.Time
	for _, key := range sessionDateKeys {
		val := jsonValue(record, key)
		if val == "" {
			continue
		}
		if t, err := ParseTimestamp(val, meta.Timezone); err == nil {
			candidates = append(candidates, t)
		}
	}
	meta.CaptureTime = earliestOf(candidates)

	meta.Description = jsonValue(record, "ImageDescription")
	meta.Title = jsonValue(record, "Title")
	if meta.Title == "" {
		meta.Title = jsonValue(record, "XPTitle")
	}
	meta.CameraModel = strings.TrimSpace(jsonValue(record, "Make") + " " + jsonValue(record, "Model"))

	return meta, nil
}

func jsonValue(record map[string]interface{}, key string) string {
	val, ok := record[key]
	if !ok {
		return ""
	}
	switch v := val.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strings.TrimSuffix(fmt.Sprintf("%f", v), ".000000")
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
