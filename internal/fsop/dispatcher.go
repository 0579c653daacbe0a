// Package fsop dispatches file-content operations — open, read, write,
// truncate, release, rename — orchestrating internal/namespace for
// metadata and internal/segment for the segment-level mechanics neither
// of those packages is allowed to know about the other's half of.
package fsop

import (
	"context"

	"go.uber.org/zap"

	"github.com/Anson14/ndnfs-d/internal/metastore"
	"github.com/Anson14/ndnfs-d/internal/namespace"
	"github.com/Anson14/ndnfs-d/internal/segment"
	ndnerrors "github.com/Anson14/ndnfs-d/pkg/errors"
)

// Config bundles everything a Dispatcher needs to construct itself.
type Config struct {
	Namespace *namespace.Manager
	Segment   *segment.Engine
	Logger    *zap.SugaredLogger
}

// Dispatcher implements open/read/write/truncate/release and the
// rename orchestration step that re-signs a moved file's segments.
type Dispatcher struct {
	ns    *namespace.Manager
	seg   *segment.Engine
	log   *zap.SugaredLogger
	locks *pathLocks
}

// New builds a Dispatcher.
func New(cfg Config) *Dispatcher {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Dispatcher{ns: cfg.Namespace, seg: cfg.Segment, log: log, locks: newPathLocks()}
}

// Open requires an existing regular-file FileRecord at path and rejects
// any path inside the staging namespace. A writable open copies the
// file's current version into staging so a subsequent Write has a buffer
// to read-modify, and holds path's write lock until Release.
func (d *Dispatcher) Open(ctx context.Context, path string, writable bool) (*Handle, error) {
	if segment.IsStagingPath(path) {
		return nil, ndnerrors.NewOperationUnsupportedError("open").WithDetail("path", path)
	}

	f, err := d.ns.GetAttr(ctx, path)
	if err != nil {
		return nil, err
	}
	if f.Type != metastore.TypeRegular {
		return nil, ndnerrors.NewInvalidError(nil, "open requires a regular file").
			WithOperation("open").WithReason("not-a-regular-file").WithProvided(path)
	}

	h := &Handle{path: path, writable: writable, currentVersion: f.CurrentVersion}
	if writable {
		h.lock = d.locks.lock(path)
		if err := d.seg.CopyCurrentToStaging(ctx, path, f.CurrentVersion); err != nil {
			h.lock.Unlock()
			return nil, err
		}
	}
	return h, nil
}

// Read serves bytes from h's path at its currently-open version, never
// the uncommitted staging buffer even on a writable handle — a reader
// of an in-progress write sees the last fully released version.
func (d *Dispatcher) Read(ctx context.Context, h *Handle, offset, length int64) ([]byte, error) {
	f, err := d.ns.GetAttr(ctx, h.path)
	if err != nil {
		return nil, err
	}
	if f.Size == 0 {
		return nil, nil
	}
	return d.seg.ReadSegmentRange(ctx, h.path, h.currentVersion, offset, length)
}

// Write stages buf into h's path's staging namespace. The write only
// becomes visible to readers once Release promotes it.
func (d *Dispatcher) Write(ctx context.Context, h *Handle, buf []byte, offset int64) (int, error) {
	if !h.writable {
		return 0, ndnerrors.NewOperationUnsupportedError("write").WithDetail("path", h.path)
	}
	if _, err := d.ns.GetAttr(ctx, h.path); err != nil {
		return 0, err
	}
	if err := d.seg.StageWrite(ctx, h.path, buf, offset); err != nil {
		return 0, err
	}
	return len(buf), nil
}

// Truncate shrinks path to length when there is no open handle for it
// (a bare truncate(2) call), immediately committing a new version and
// scheduling its signing rather than waiting for a Release that a
// handle-less truncate never triggers. It takes path's lock itself.
//
// A handle already open for write holds this same lock from Open through
// Release — call TruncateOpen instead for that case, or this deadlocks
// against the open handle forever.
func (d *Dispatcher) Truncate(ctx context.Context, path string, length int64) error {
	lock := d.locks.lock(path)
	defer lock.Unlock()

	f, err := d.ns.GetAttr(ctx, path)
	if err != nil {
		return err
	}

	newVersion, segCount, err := d.seg.TruncateToLength(ctx, path, f.CurrentVersion, length)
	if err != nil {
		return err
	}
	if err := d.ns.CommitVersion(ctx, path, newVersion, length, metastore.SignatureNotReady); err != nil {
		return err
	}
	d.seg.ScheduleSigning(path, newVersion, segCount)
	return nil
}

// TruncateOpen shrinks h's staging buffer to length. h's Open call
// already holds path's lock, so this never takes it again, and it never
// commits a version of its own: it only rewrites the staging buffer
// Release will promote, so a later write past length still lands
// correctly and a subsequent Release signs exactly one resulting
// version instead of two.
func (d *Dispatcher) TruncateOpen(ctx context.Context, h *Handle, length int64) error {
	if !h.writable {
		return ndnerrors.NewOperationUnsupportedError("truncate").WithDetail("path", h.path)
	}
	return d.seg.TruncateStaging(ctx, h.path, length)
}

// Release finalizes a writable handle: promotes its staged buffer into
// a new durable version, commits that version onto the FileRecord, and
// schedules every one of its segments for background signing. A
// read-only handle just releases its slot; there is nothing to promote.
func (d *Dispatcher) Release(ctx context.Context, h *Handle) error {
	if !h.writable {
		return nil
	}
	defer h.lock.Unlock()

	newVersion := segment.NewVersion()
	segCount, size, err := d.seg.PromoteStaging(ctx, h.path, newVersion)
	if err != nil {
		return err
	}
	if err := d.ns.CommitVersion(ctx, h.path, newVersion, size, metastore.SignatureNotReady); err != nil {
		return err
	}
	d.seg.ScheduleSigning(h.path, newVersion, segCount)
	return nil
}

// Rename moves the namespace record and every historical version's
// segments from "from" to "to", then re-signs the moved file's current
// version synchronously under its new path-derived hierarchical names
// before returning success.
func (d *Dispatcher) Rename(ctx context.Context, from, to string) error {
	movedVersion, err := d.ns.Rename(ctx, from, to)
	if err != nil {
		return err
	}
	// A directory's "current version" never has segments; Resign is a
	// no-op for it.
	return d.seg.Resign(ctx, to, movedVersion)
}
