package options

const (
	// DefaultDatabasePath specifies the default location of the metastore
	// database file when none is given on the command line or in config.
	DefaultDatabasePath = "/var/lib/ndnfsd/meta.db"

	// DefaultMountPoint specifies the default kernel-bridge mount point.
	DefaultMountPoint = "/mnt/ndnfs"

	// MinSegmentSize is the smallest SEG_SIZE this implementation accepts.
	// Below this, per-segment SQL row overhead dominates actual content.
	MinSegmentSize uint32 = 512

	// MaxSegmentSize is the largest SEG_SIZE this implementation accepts.
	MaxSegmentSize uint32 = 16 * 1024 * 1024

	// DefaultSegmentSize is SEG_SIZE when unconfigured: 4096 bytes, matching
	// the size used throughout the testable properties.
	DefaultSegmentSize uint32 = 4096

	// DefaultGlobalPrefix is the URI-like prefix prepended to every
	// hierarchical segment name when none is configured.
	DefaultGlobalPrefix = "ndn:/localhost/ndnfs"

	// DefaultKeyID names the signing key identifier used to derive the
	// HMAC signing key when none is configured.
	DefaultKeyID = "ndnfs-default-key"

	// DefaultUID and DefaultGID are the uid/gid reported by getattr for
	// every FileRecord when the process is not told otherwise.
	DefaultUID uint32 = 0
	DefaultGID uint32 = 0

	// DefaultMasterKeyPath is where ndnfsd looks for the signing master
	// key file when none is configured.
	DefaultMasterKeyPath = "/etc/ndnfsd/master.key"

	// StagingVersion is the reserved version literal segments are stored
	// under while still in the staging namespace. It must never collide
	// with a wall-clock version produced by the version generator.
	StagingVersion = 100000
)

// defaultOptions holds the configuration ndnfsd falls back to when a field
// is absent from both the config file and the environment.
var defaultOptions = Options{
	DatabasePath: DefaultDatabasePath,
	MountPoint:   DefaultMountPoint,
	GlobalPrefix: DefaultGlobalPrefix,
	KeyID:        DefaultKeyID,
	SegmentSize:   DefaultSegmentSize,
	UID:           DefaultUID,
	GID:           DefaultGID,
	MasterKeyPath: DefaultMasterKeyPath,
}

// NewDefaultOptions returns a copy of the built-in default configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}
