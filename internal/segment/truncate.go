package segment

import (
	"context"
	"database/sql"

	"github.com/Anson14/ndnfs-d/internal/metastore"
	ndnerrors "github.com/Anson14/ndnfs-d/pkg/errors"
	"github.com/Anson14/ndnfs-d/pkg/options"
)

// TruncateToLength implements truncate_to_length: it streams the
// segments of the current version, copying whole segments up to the
// truncation point and a trailing partial segment into a new version and
// links that version into VersionRecord, in one transaction. It does not
// update the FileRecord; the caller commits current_version, size and
// signature_state in a separate step. Every copied segment is left
// unsigned, and the caller schedules its signing rather than it being
// signed synchronously here.
//
// length greater than the current size is rejected with
// *errors.InvalidError; zero-extension is not supported.
func (e *Engine) TruncateToLength(ctx context.Context, path string, currentVersion int64, length int64) (newVersion int64, segCount int, err error) {
	segs, err := e.store.ListSegments(ctx, nil, path, currentVersion)
	if err != nil {
		return 0, 0, err
	}

	newVersion = nextVersion(currentVersion)

	err = e.store.WithTx(ctx, func(tx *sql.Tx) error {
		var cumulative int64
		written := 0

		for _, s := range segs {
			segLen := int64(len(s.Content))
			if cumulative+segLen <= length {
				if err := e.store.UpsertSegment(ctx, tx, metastore.SegmentRecord{
					Path: path, Version: newVersion, Segment: s.Segment,
					Signature: metastore.UnsignedSentinel(), Content: s.Content,
				}); err != nil {
					return err
				}
				written++
				cumulative += segLen
				continue
			}

			keep := length - cumulative
			if keep < 0 {
				return ndnerrors.NewInvalidError(nil, "truncate length exceeds current size").
					WithOperation("truncate").WithReason("length-exceeds-size").WithProvided(length)
			}
			if keep > 0 {
				if err := e.store.UpsertSegment(ctx, tx, metastore.SegmentRecord{
					Path: path, Version: newVersion, Segment: s.Segment,
					Signature: metastore.UnsignedSentinel(), Content: s.Content[:keep],
				}); err != nil {
					return err
				}
				written++
			}
			break
		}

		if cumulative < length && written == len(segs) {
			return ndnerrors.NewInvalidError(nil, "truncate length exceeds current size").
				WithOperation("truncate").WithReason("length-exceeds-size").WithProvided(length)
		}

		segCount = written
		if vErr := e.store.InsertVersion(ctx, tx, metastore.VersionRecord{Path: path, Version: newVersion}); vErr != nil {
			return vErr
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return newVersion, segCount, nil
}

// nextVersion yields a wall-clock-resolution version strictly greater
// than prev, skipping the reserved StagingVersion band.
func nextVersion(prev int64) int64 {
	return newVersionAfter(prev)
}

// TruncateStaging shrinks the staging buffer of a path that already has
// one open for write — it never commits a new version, since Release's
// PromoteStaging will pick up whatever staging holds when the handle
// closes. Growth is rejected the same as TruncateToLength.
func (e *Engine) TruncateStaging(ctx context.Context, path string, length int64) error {
	staged := stagingPath(path)
	segs, err := e.store.ListSegments(ctx, nil, staged, options.StagingVersion)
	if err != nil {
		return err
	}

	var kept []metastore.SegmentRecord
	var cumulative int64
	for _, s := range segs {
		segLen := int64(len(s.Content))
		if cumulative+segLen <= length {
			kept = append(kept, s)
			cumulative += segLen
			continue
		}

		keep := length - cumulative
		if keep < 0 {
			return ndnerrors.NewInvalidError(nil, "truncate length exceeds current size").
				WithOperation("truncate").WithReason("length-exceeds-size").WithProvided(length)
		}
		if keep > 0 {
			s.Content = s.Content[:keep]
			kept = append(kept, s)
		}
		cumulative = length
		break
	}
	if cumulative < length {
		return ndnerrors.NewInvalidError(nil, "truncate length exceeds current size").
			WithOperation("truncate").WithReason("length-exceeds-size").WithProvided(length)
	}

	return e.store.WithTx(ctx, func(tx *sql.Tx) error {
		if err := e.store.DeleteSegmentsVersion(ctx, tx, staged, options.StagingVersion); err != nil {
			return err
		}
		for _, s := range kept {
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
