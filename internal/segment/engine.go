// Package segment implements the segment engine: staged writes,
// promotion into a new durable version, truncation, range reads, and
// background per-segment signing. It is the only package that knows how
// a file's content is cut into fixed-size rows in the metastore.
package segment

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	ndnerrors "github.com/Anson14/ndnfs-d/pkg/errors"
	"github.com/Anson14/ndnfs-d/pkg/options"
	"github.com/Anson14/ndnfs-d/pkg/segname"
	"github.com/Anson14/ndnfs-d/pkg/signer"

	"github.com/Anson14/ndnfs-d/internal/metastore"
)

// stagingSuffix mangles a path into the private staging namespace; no
// consumer outside this package observes it.
const stagingSuffix = ".segtemp"

// Config bundles everything an Engine needs to construct itself.
type Config struct {
	Store        *metastore.Store
	Signer       *signer.Signer
	SegmentSize  uint32
	GlobalPrefix string
	Logger       *zap.SugaredLogger
}

// Engine implements the segment-level operations: stage_write,
// copy_current_to_staging, promote_staging, discard_staging,
// sign_and_store_segment, truncate_to_length, and read_segment_range.
type Engine struct {
	store        *metastore.Store
	signer       *signer.Signer
	segSize      int
	globalPrefix string
	log          *zap.SugaredLogger

	signing *signingPool
}

// New builds an Engine and starts its background signing worker pool.
func New(cfg Config) *Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	e := &Engine{
		store:        cfg.Store,
		signer:       cfg.Signer,
		segSize:      int(cfg.SegmentSize),
		globalPrefix: cfg.GlobalPrefix,
		log:          log,
	}
	e.signing = newSigningPool(e, log)
	return e
}

// Close stops the background signing worker pool, waiting for
// in-flight signing tasks to finish.
func (e *Engine) Close() {
	e.signing.close()
}

// stagingPath returns the mangled staging key for path.
func stagingPath(path string) string {
	return path + stagingSuffix
}

// IsStagingPath reports whether path is already inside the staging
// namespace, so dispatcher code can reject an `open` that would collide
// with it.
func IsStagingPath(path string) bool {
	return len(path) >= len(stagingSuffix) && path[len(path)-len(stagingSuffix):] == stagingSuffix
}

// segmentIndex and intraOffset split a byte offset against SEG_SIZE.
func (e *Engine) segmentIndex(offset int64) int {
	return int(offset / int64(e.segSize))
}

func (e *Engine) intraOffset(offset int64) int {
	return int(offset % int64(e.segSize))
}

// StageWrite appends a write to the staging namespace for path: every
// touched segment is read-modify-written, so staged bytes outside the
// written range are kept, and a gap before offset in the first segment
// is zero-padded.
func (e *Engine) StageWrite(ctx context.Context, path string, buffer []byte, offset int64) error {
	if len(buffer) == 0 {
		return nil
	}
	staged := stagingPath(path)
	startSeg := e.segmentIndex(offset)
	skew := e.intraOffset(offset)

	return e.store.WithTx(ctx, func(tx *sql.Tx) error {
		remaining := buffer
		seg := startSeg
		first := true

		for len(remaining) > 0 {
			var content []byte
			pos := 0
			if first {
				pos = skew
			}
			existing, err := e.store.GetSegment(ctx, tx, staged, options.StagingVersion, seg)
			if err == nil {
				content = append([]byte(nil), existing.Content...)
			}
			if len(content) < pos {
				padded := make([]byte, pos)
				copy(padded, content)
				content = padded
			}
			first = false

			n := e.segSize - pos
			if n > len(remaining) {
				n = len(remaining)
			}
			if len(content) < pos+n {
				content = append(content, make([]byte, pos+n-len(content))...)
			}
			copy(content[pos:], remaining[:n])
			remaining = remaining[n:]

			if err := e.store.UpsertSegment(ctx, tx, metastore.SegmentRecord{
				Path: staged, Version: options.StagingVersion, Segment: seg,
				Signature: metastore.UnsignedSentinel(), Content: content,
			}); err != nil {
				return err
			}
			seg++
		}
		return nil
	})
}

// CopyCurrentToStaging duplicates every segment of (path, currentVersion)
// into the staging namespace, so a partial overwrite preserves the
// content a later stage_write doesn't touch.
func (e *Engine) CopyCurrentToStaging(ctx context.Context, path string, currentVersion int64) error {
	if currentVersion == 0 {
		return nil
	}
	segs, err := e.store.ListSegments(ctx, nil, path, currentVersion)
	if err != nil {
		return err
	}
	if len(segs) == 0 {
		return nil
	}
	staged := stagingPath(path)
	return e.store.WithTx(ctx, func(tx *sql.Tx) error {
		for _, s := range segs {
			if err := e.store.UpsertSegment(ctx, tx, metastore.SegmentRecord{
				Path: staged, Version: options.StagingVersion, Segment: s.Segment,
				Signature: metastore.UnsignedSentinel(), Content: s.Content,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// DiscardStaging deletes every staging SegmentRecord of path.
func (e *Engine) DiscardStaging(ctx context.Context, path string) error {
	return e.store.DeleteSegments(ctx, nil, stagingPath(path))
}

// PromoteStaging atomically moves every staging SegmentRecord of path
// into (path, newVersion) and links the new version into VersionRecord,
// in one transaction. It does not update the FileRecord: it returns the
// segment count of the promoted version and the newly computed size, and
// the caller commits current_version, size and signature_state in a
// separate step.
func (e *Engine) PromoteStaging(ctx context.Context, path string, newVersion int64) (segCount int, size int64, err error) {
	staged := stagingPath(path)

	err = e.store.WithTx(ctx, func(tx *sql.Tx) error {
		if mvErr := e.store.MoveSegments(ctx, tx, staged, options.StagingVersion, path, newVersion); mvErr != nil {
			return mvErr
		}
		if vErr := e.store.InsertVersion(ctx, tx, metastore.VersionRecord{Path: path, Version: newVersion}); vErr != nil {
			return vErr
		}

		segs, lErr := e.store.ListSegments(ctx, tx, path, newVersion)
		if lErr != nil {
			return lErr
		}
		segCount = len(segs)
		size = computeSize(segs, e.segSize)
		return nil
	})
	return segCount, size, err
}

// computeSize recomputes a version's total content length as
// (K · SEG_SIZE) + length_of_last_segment, per release's size formula.
func computeSize(segs []metastore.SegmentRecord, segSize int) int64 {
	if len(segs) == 0 {
		return 0
	}
	last := segs[len(segs)-1]
	return int64(last.Segment)*int64(segSize) + int64(len(last.Content))
}

// ScheduleSigning submits one signing task per segment of (path,
// version) to the background worker pool; a later promotion of the same
// path cancels any still-pending tasks for an older version.
func (e *Engine) ScheduleSigning(path string, version int64, segmentCount int) {
	e.signing.schedule(path, version, segmentCount)
}

// SignAndStoreSegment implements sign_and_store_segment: signs one
// segment's content under its hierarchical name and stores the
// resulting signature. If this was the last unsigned segment of version
// and version is still FileRecord.current_version, signature_state is
// advanced to READY.
func (e *Engine) SignAndStoreSegment(ctx context.Context, path string, version int64, seg int) error {
	record, err := e.store.GetSegment(ctx, nil, path, version, seg)
	if err != nil {
		return err
	}

	name := segname.Name(e.globalPrefix, path, int(version), seg)
	signature := e.signer.Sign(name, record.Content)

	return e.store.WithTx(ctx, func(tx *sql.Tx) error {
		if err := e.store.UpdateSegmentSignature(ctx, tx, path, version, seg, signature); err != nil {
			return err
		}

		file, err := e.store.GetFile(ctx, tx, path)
		if err != nil {
			return err
		}
		if file.CurrentVersion != version {
			// Stale result: stored against its version but never advances
			// signature_state, per the promotion race tie-break rule.
			return nil
		}

		unsigned, err := e.store.CountUnsigned(ctx, tx, path, version)
		if err != nil {
			return err
		}
		if unsigned == 0 && file.SignatureState != metastore.SignatureReady {
			file.SignatureState = metastore.SignatureReady
			return e.store.UpdateFile(ctx, tx, file)
		}
		return nil
	})
}

// Resign re-signs every segment of (path, version) synchronously,
// reusing sign_and_store_segment's naming and signing primitives. Used
// by rename, which must re-sign every segment of the moved file's
// current version under its new path-derived name before returning
// success.
func (e *Engine) Resign(ctx context.Context, path string, version int64) error {
	segs, err := e.store.ListSegments(ctx, nil, path, version)
	if err != nil {
		return err
	}
	for _, s := range segs {
		if err := e.SignAndStoreSegment(ctx, path, version, s.Segment); err != nil {
			return ndnerrors.NewSignatureFailedError(err, path, int(version), s.Segment)
		}
	}
	return nil
}

// ReclaimOrphans discards every segment row whose path still carries the
// ".segtemp" suffix, recovering from a crash between stage_write and
// promote_staging. Called once at startup before the filesystem mounts.
func (e *Engine) ReclaimOrphans(ctx context.Context) (int64, error) {
	n, err := e.store.DeleteStagingSegments(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		e.log.Infow("reclaimed orphaned staging segments", "count", n)
	}
	return n, nil
}
