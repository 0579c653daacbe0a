// Package options provides the process-wide configuration for ndnfsd. It
// defines every parameter fixed for the lifetime of a store — segment
// size, global naming prefix, signing key identifier, uid/gid, and the
// metastore/mount paths — and the functional-option constructors used to
// build an Options value in tests and in cmd/ndnfsd.
package options

import (
	"strings"

	ndnerrors "github.com/Anson14/ndnfs-d/pkg/errors"
)

// Options holds the configuration parameters fixed at startup and treated
// as read-only for the remainder of the process's life.
type Options struct {
	// DatabasePath is the filesystem path of the metastore's sqlite file.
	DatabasePath string `mapstructure:"database_path"`

	// MountPoint is the kernel-bridge mount point the FUSE server attaches to.
	MountPoint string `mapstructure:"mount_point"`

	// GlobalPrefix is the URI-like prefix prepended to every hierarchical
	// segment name.
	GlobalPrefix string `mapstructure:"global_prefix"`

	// KeyID identifies the signing key used to derive the HMAC signing key.
	KeyID string `mapstructure:"key_id"`

	// SegmentSize is SEG_SIZE: the fixed content length of every segment
	// but the last one of a version.
	SegmentSize uint32 `mapstructure:"segment_size"`

	// UID and GID are reported by getattr for every FileRecord.
	UID uint32 `mapstructure:"uid"`
	GID uint32 `mapstructure:"gid"`

	// MasterKeyPath is the filesystem path of the raw signing master key
	// pkg/signer derives every segment's HMAC key from.
	MasterKeyPath string `mapstructure:"master_key_path"`
}

// Validate checks that every field holds a value the rest of the system
// can act on, returning an *errors.InvalidError describing the first
// problem found.
func (o Options) Validate() error {
	if strings.TrimSpace(o.DatabasePath) == "" {
		return ndnerrors.NewConfigurationError("database_path", "must not be empty")
	}
	if strings.TrimSpace(o.MountPoint) == "" {
		return ndnerrors.NewConfigurationError("mount_point", "must not be empty")
	}
	if strings.TrimSpace(o.GlobalPrefix) == "" {
		return ndnerrors.NewConfigurationError("global_prefix", "must not be empty")
	}
	if strings.TrimSpace(o.KeyID) == "" {
		return ndnerrors.NewConfigurationError("key_id", "must not be empty")
	}
	if o.SegmentSize < MinSegmentSize || o.SegmentSize > MaxSegmentSize {
		return ndnerrors.NewConfigurationError("segment_size", "out of accepted range")
	}
	if strings.TrimSpace(o.MasterKeyPath) == "" {
		return ndnerrors.NewConfigurationError("master_key_path", "must not be empty")
	}
	return nil
}

// OptionFunc mutates an Options value being built.
type OptionFunc func(*Options)

// WithDefaultOptions seeds every field with its built-in default.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		*o = NewDefaultOptions()
	}
}

// WithDatabasePath overrides the metastore database path.
func WithDatabasePath(path string) OptionFunc {
	return func(o *Options) {
		path = strings.TrimSpace(path)
		if path != "" {
			o.DatabasePath = path
		}
	}
}

// WithMountPoint overrides the kernel-bridge mount point.
func WithMountPoint(path string) OptionFunc {
	return func(o *Options) {
		path = strings.TrimSpace(path)
		if path != "" {
			o.MountPoint = path
		}
	}
}

// WithGlobalPrefix overrides the hierarchical segment-naming prefix.
func WithGlobalPrefix(prefix string) OptionFunc {
	return func(o *Options) {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			o.GlobalPrefix = prefix
		}
	}
}

// WithKeyID overrides the signing key identifier.
func WithKeyID(id string) OptionFunc {
	return func(o *Options) {
		id = strings.TrimSpace(id)
		if id != "" {
			o.KeyID = id
		}
	}
}

// WithSegmentSize overrides SEG_SIZE, ignoring values outside the
// accepted [MinSegmentSize, MaxSegmentSize] range.
func WithSegmentSize(size uint32) OptionFunc {
	return func(o *Options) {
		if size >= MinSegmentSize && size <= MaxSegmentSize {
			o.SegmentSize = size
		}
	}
}

// WithMasterKeyPath overrides the signing master key file path.
func WithMasterKeyPath(path string) OptionFunc {
	return func(o *Options) {
		path = strings.TrimSpace(path)
		if path != "" {
			o.MasterKeyPath = path
		}
	}
}

// WithOwnership overrides the uid/gid reported by getattr.
func WithOwnership(uid, gid uint32) OptionFunc {
	return func(o *Options) {
		o.UID = uid
		o.GID = gid
	}
}

// New builds an Options value from defaults overridden left-to-right by
// the given OptionFuncs.
func New(opts ...OptionFunc) Options {
	o := NewDefaultOptions()
	for _, apply := range opts {
		apply(&o)
	}
	return o
}
