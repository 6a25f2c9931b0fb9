// Package seginfo provides utilities for naming, discovering, and ordering
// segment files in a log-segmented store.
//
// Filename Format: <prefix>_segment_<timestamp>.log
//
// Where:
//   - prefix: a configurable string identifying the store (e.g., "ignite", "cache").
//   - timestamp: UTC time formatted as yyyyMMddHHmmssfff (millisecond precision).
//   - .log: fixed file extension.
//
// Lexicographic sort of filenames equals chronological order, because the
// timestamp component is a fixed-width, zero-padded, left-to-right
// significance string. This lets callers discover the newest segment (or
// order the whole segment stack) with a plain string sort instead of parsing
// every file.
//
// Example filenames:
//
//	ignite_segment_20240525232100123.log
//	ignite_segment_20240525232105981.log
package seginfo

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	ignerrors "github.com/emberkv/ignite/pkg/errors"
	"github.com/emberkv/ignite/pkg/filesys"
)

// timestampLayout is yyyyMMddHHmmssfff: 4-digit year, 2-digit month, day,
// hour, minute, second, then 3-digit milliseconds — 17 characters total,
// fixed-width so lexicographic order equals chronological order.
const timestampLayout = "20060102150405.000"

const extension = ".log"

// GenerateName creates a segment filename for the current UTC instant.
func GenerateName(prefix string) string {
	return GenerateNameAt(prefix, time.Now().UTC())
}

// GenerateNameAt creates a segment filename for a specific instant, useful
// for deterministic tests.
func GenerateNameAt(prefix string, at time.Time) string {
	ts := formatTimestamp(at)
	return fmt.Sprintf("%s_segment_%s%s", prefix, ts, extension)
}

// formatTimestamp renders t (converted to UTC) as yyyyMMddHHmmssfff: the
// standard library layout produces a "." before milliseconds which isn't
// part of the on-disk format, so it's stripped.
func formatTimestamp(t time.Time) string {
	s := t.UTC().Format(timestampLayout)
	return strings.Replace(s, ".", "", 1)
}

// Pattern returns the glob pattern matching this prefix's segment files
// within dir.
func Pattern(dir, prefix string) string {
	return filepath.Join(dir, prefix+"_segment_*"+extension)
}

// IsSegmentFile reports whether filename matches the <prefix>_segment_<ts>.log
// pattern for the given prefix. Non-matching files are ignored by readers,
// per the segmented-store invariant that foreign files in the directory are
// not segments.
func IsSegmentFile(filename, prefix string) bool {
	_, err := ParseTimestamp(filename, prefix)
	return err == nil
}

// ParseTimestamp extracts the timestamp component from a segment filename
// and parses it back into a time.Time (UTC).
func ParseTimestamp(filename, prefix string) (time.Time, error) {
	base := filepath.Base(filename)

	wantPrefix := prefix + "_segment_"
	if !strings.HasPrefix(base, wantPrefix) {
		return time.Time{}, fmt.Errorf("filename %s does not match prefix %s", base, prefix)
	}
	if !strings.HasSuffix(base, extension) {
		return time.Time{}, fmt.Errorf("filename %s missing %s extension", base, extension)
	}

	core := strings.TrimSuffix(strings.TrimPrefix(base, wantPrefix), extension)
	if len(core) != 17 {
		return time.Time{}, ignerrors.NewTimestampExtractionError(base, nil).
			WithDetail("reason", "malformed timestamp length").
			WithDetail("timestamp_component", core)
	}
	if _, err := strconv.ParseUint(core, 10, 64); err != nil {
		return time.Time{}, ignerrors.NewTimestampExtractionError(base, err)
	}

	reinserted := core[:14] + "." + core[14:]
	t, err := time.Parse(timestampLayout, reinserted)
	if err != nil {
		return time.Time{}, ignerrors.NewTimestampExtractionError(base, err)
	}
	return t, nil
}

// ListSegmentFiles returns the full paths of every segment file in dir
// matching prefix, sorted oldest-to-newest (lexicographic order, which
// equals chronological order for this filename format).
func ListSegmentFiles(dir, prefix string) ([]string, error) {
	matches, err := filesys.ReadDir(Pattern(dir, prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to read segment directory %s: %w", dir, err)
	}

	files := matches[:0]
	for _, m := range matches {
		if IsSegmentFile(m, prefix) {
			files = append(files, m)
		}
	}

	slices.Sort(files)
	return files, nil
}

// LatestSegmentFile returns the newest segment file's full path, or "" if
// none exist.
func LatestSegmentFile(dir, prefix string) (string, error) {
	files, err := ListSegmentFiles(dir, prefix)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", nil
	}
	return files[len(files)-1], nil
}

// GetFileInfo safely retrieves file system metadata for a given path.
func GetFileInfo(filePath string) (os.FileInfo, error) {
	file, err := os.OpenFile(filePath, os.O_RDONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info for %s: %w", filePath, err)
	}
	return stat, nil
}
