package options

import "time"

const (
	// Specifies the default base directory where IgniteDB will store its data files.
	// If no other directory is specified during initialization, this path will be used.
	DefaultDataDir = "/var/lib/ignitedb"

	// Defines the default time duration between automatic compaction operations.
	// By default, compaction will run every 5 hours.
	DefaultCompactInterval = time.Hour * 5

	// Represents the minimum allowed size for a segment file in bytes (512MB).
	MinSegmentSize uint64 = 512 * 1024 * 1024

	// Represents the maximum allowed size for a segment file in bytes (4GB).
	MaxSegmentSize uint64 = 4 * 1024 * 1024 * 1024

	// Specifies the default target size for a new segment file in bytes (1GB).
	DefaultSegmentSize uint64 = 1 * 1024 * 1024 * 1024

	// Specifies the default subdirectory within the main data directory
	// where segment files will be stored.
	DefaultSegmentDirectory = "/segments"

	// Defines the default prefix for segment file names.
	// For example, a segment file might be named "segment_segment_20240525232100123.log".
	DefaultSegmentPrefix = "segment"

	// Specifies the default expected element count for the Bloom filter.
	DefaultBloomExpectedElements uint64 = 10_000

	// Specifies the default target false-positive rate for the Bloom filter.
	DefaultBloomTargetFalsePositive float64 = 0.01

	// Zero means the in-memory index has no capacity cap by default.
	DefaultIndexMaxElements uint64 = 0

	// DoNothingIfExists preserves existing segment data on reopen, matching
	// the recovery behavior storage initialization depends on.
	DefaultFileExistenceHandling = DoNothingIfExists

	// DeleteIfExists is idempotent, matching compaction's "remove the old
	// segment if it's still there" use.
	DefaultFileDeletionHandling = DeleteIfExists
)

// Holds the default configuration settings for an IgniteDB instance.
var defaultOptions = Options{
	DataDir:         DefaultDataDir,
	CompactInterval: DefaultCompactInterval,
	SegmentOptions: &segmentOptions{
		Size:      DefaultSegmentSize,
		Prefix:    DefaultSegmentPrefix,
		Directory: DefaultSegmentDirectory,
	},
	Bloom: &bloomOptions{
		ExpectedElements:    DefaultBloomExpectedElements,
		TargetFalsePositive: DefaultBloomTargetFalsePositive,
	},
	IndexMaxElements:      DefaultIndexMaxElements,
	FileExistenceHandling: DefaultFileExistenceHandling,
	FileDeletionHandling:  DefaultFileDeletionHandling,
}

func NewDefaultOptions() Options {
	return defaultOptions
}
