// Package options provides data structures and functions for configuring
// the Ignite database. It defines various parameters that control Ignite's
// storage behavior, performance, and maintenance operations, such as
// directory paths, segment characteristics, and compaction intervals.
package options

import (
	"strings"
	"time"
)

// FileExistenceHandling controls what storagefile.File.Create does when the
// target path already exists.
type FileExistenceHandling int

const (
	// Overwrite truncates and reopens the existing file.
	Overwrite FileExistenceHandling = iota
	// DoNothingIfExists opens the existing file as-is, preserving its content.
	DoNothingIfExists
	// ThrowIfExists returns an AlreadyExists error instead of opening the file.
	ThrowIfExists
)

// FileDeletionHandling controls what storagefile.File.Delete does when the
// target path is missing.
type FileDeletionHandling int

const (
	// DeleteIfExists removes the file if present and is a no-op otherwise.
	DeleteIfExists FileDeletionHandling = iota
	// ThrowIfNotExists returns a NotFound error when the file is missing.
	ThrowIfNotExists
)

// bloomOptions configures the Bloom filter that guards reads in the
// filtered store wrapper.
type bloomOptions struct {
	// Expected number of distinct keys the filter will hold. Used to size
	// the bit array and choose the hash count.
	//
	// Default: 10_000
	ExpectedElements uint64 `json:"expectedElements"`

	// Target false-positive rate at ExpectedElements membership. Lower
	// values need a larger bit array for the same element count.
	//
	// Default: 0.01
	TargetFalsePositive float64 `json:"targetFalsePositive"`
}

// Defines configurable parameters for each segment.
// It provides fine-grained control over segment behavior, performance, and resource utilization.
type segmentOptions struct {
	// Defines the maximum size a segment can grow to before rotation.
	// When a segment reaches this size, a new segment will be created.
	// Larger segments mean fewer files but slower compaction and recovery.
	//
	//  - Default: 1GB
	//  - Maximum: 4GB
	//  - Minimum: 512MB
	Size uint64 `json:"maxSegmentSize"`

	// Specifies where segment files are stored.
	//
	// Default: "/var/lib/ignitedb/segments"
	Directory string `json:"directory"`

	// Defines the filename prefix for segment files.
	// Final filename will be: `<prefix>_segment_<timestamp>.log`
	//
	// Default: "segment"
	//
	// Example: If Prefix is "mydata", a segment file might be
	// "mydata_segment_20240525232100123.log".
	Prefix string `json:"prefix"`
}

// Defines the configuration parameters for Ignite DB.
// It provides control over storage, performance and maintenance aspects.
type Options struct {
	// Specifies the base path where files will be stored.
	//
	// Default: "/var/lib/ignitedb"
	DataDir string `json:"dataDir"`

	// Defines how often the compaction process runs to
	// merge old segments. More frequent compaction means more
	// optimal storage but higher overhead.
	//
	// Default: 5h
	CompactInterval time.Duration `json:"compactInterval"`

	// Configures segment management including size limits and naming convention.
	SegmentOptions *segmentOptions `json:"segmentOptions"`

	// Configures the Bloom filter fronting reads in the filtered store.
	Bloom *bloomOptions `json:"bloom"`

	// Caps the number of entries the in-memory index (and its backing
	// red-black tree) will hold before rejecting further inserts with a
	// CapacityExceeded error. Zero means unbounded.
	//
	// Default: 0 (unbounded)
	IndexMaxElements uint64 `json:"indexMaxElements"`

	// Governs storagefile.File.Create behavior when the target path already
	// exists.
	//
	// Default: DoNothingIfExists
	FileExistenceHandling FileExistenceHandling `json:"fileExistenceHandling"`

	// Governs storagefile.File.Delete behavior when the target path is missing.
	//
	// Default: DeleteIfExists
	FileDeletionHandling FileDeletionHandling `json:"fileDeletionHandling"`
}

// OptionFunc is a function type that modifies the Ignite system's configuration.
type OptionFunc func(*Options)

// Applies a predefined set of default configuration values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.DataDir = opts.DataDir
		o.SegmentOptions = opts.SegmentOptions
		o.CompactInterval = opts.CompactInterval
		o.Bloom = opts.Bloom
		o.IndexMaxElements = opts.IndexMaxElements
		o.FileExistenceHandling = opts.FileExistenceHandling
		o.FileDeletionHandling = opts.FileDeletionHandling
	}
}

// Sets the primary data directory for Ignite.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// Sets the interval at which Ignite performs compaction operations.
// Intervals not longer than DefaultCompactInterval are ignored.
func WithCompactInterval(interval time.Duration) OptionFunc {
	return func(o *Options) {
		if interval > DefaultCompactInterval {
			o.CompactInterval = interval
		}
	}
}

// Sets the directory specifically for storing segment files.
func WithSegmentDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.SegmentOptions.Directory = directory
		}
	}
}

// Sets the file name prefix for segment files.
func WithSegmentPrefix(prefix string) OptionFunc {
	return func(o *Options) {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			o.SegmentOptions.Prefix = prefix
		}
	}
}

// Sets the maximum size of individual segment files. Sizes not strictly
// between MinSegmentSize and MaxSegmentSize are ignored.
func WithSegmentSize(size uint64) OptionFunc {
	return func(o *Options) {
		if size > MinSegmentSize && size < MaxSegmentSize {
			o.SegmentOptions.Size = size
		}
	}
}

// Sets the expected element count and target false-positive rate for the
// Bloom filter fronting reads.
func WithBloomOptions(expectedElements uint64, targetFalsePositive float64) OptionFunc {
	return func(o *Options) {
		if expectedElements > 0 {
			o.Bloom.ExpectedElements = expectedElements
		}
		if targetFalsePositive > 0 && targetFalsePositive < 1 {
			o.Bloom.TargetFalsePositive = targetFalsePositive
		}
	}
}

// Caps the in-memory index at maxElements entries. Zero means unbounded.
func WithIndexMaxElements(maxElements uint64) OptionFunc {
	return func(o *Options) {
		o.IndexMaxElements = maxElements
	}
}

// Sets the policy storagefile.File.Create follows when its target path already
// exists.
func WithFileExistenceHandling(handling FileExistenceHandling) OptionFunc {
	return func(o *Options) {
		o.FileExistenceHandling = handling
	}
}

// Sets the policy storagefile.File.Delete follows when its target path is missing.
func WithFileDeletionHandling(handling FileDeletionHandling) OptionFunc {
	return func(o *Options) {
		o.FileDeletionHandling = handling
	}
}
