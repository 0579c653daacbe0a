package metastore

import (
	"context"
	"database/sql"
	stderrors "errors"

	ndnerrors "github.com/Anson14/ndnfs-d/pkg/errors"
)

const (
	sqlUpsertSegment = `
INSERT INTO file_segments (path, version, segment, signature, content)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(path, version, segment) DO UPDATE SET signature = excluded.signature, content = excluded.content;`

	sqlGetSegment = `
SELECT path, version, segment, signature, content
FROM file_segments WHERE path = ? AND version = ? AND segment = ?;`

	sqlListSegments = `
SELECT path, version, segment, signature, content
FROM file_segments WHERE path = ? AND version = ? ORDER BY segment;`

	sqlCountUnsigned = `
SELECT COUNT(*) FROM file_segments WHERE path = ? AND version = ? AND signature = ?;`

	sqlDeleteSegments = `DELETE FROM file_segments WHERE path = ?;`

	sqlDeleteSegmentsByVer = `DELETE FROM file_segments WHERE path = ? AND version = ?;`

	sqlDeleteSegmentsLike = `DELETE FROM file_segments WHERE path = ? OR path LIKE ?;`

	sqlMoveSegments = `
UPDATE file_segments SET path = ?, version = ? WHERE path = ? AND version = ?;`

	sqlRenameSegments = `UPDATE file_segments SET path = ? WHERE path = ?;`

	sqlUpdateSegmentSig = `
UPDATE file_segments SET signature = ? WHERE path = ? AND version = ? AND segment = ?;`
)

// UpsertSegment inserts or overwrites one SegmentRecord, used both for
// staging writes (INSERT OR REPLACE semantics) and for promoted/truncated
// content.
func (s *Store) UpsertSegment(ctx context.Context, tx *sql.Tx, seg SegmentRecord) error {
	stmt := txStmt(ctx, tx, s.stmts.upsertSegment)
	_, err := stmt.ExecContext(ctx, seg.Path, seg.Version, seg.Segment, seg.Signature, seg.Content)
	return wrapExecErr(err, "upsertSegment", seg.Path)
}

// GetSegment reads one SegmentRecord, returning *errors.NotFoundError if
// it does not exist.
func (s *Store) GetSegment(ctx context.Context, tx *sql.Tx, path string, version int64, segment int) (SegmentRecord, error) {
	stmt := txStmt(ctx, tx, s.stmts.getSegment)
	row := stmt.QueryRowContext(ctx, path, version, segment)

	var seg SegmentRecord
	err := row.Scan(&seg.Path, &seg.Version, &seg.Segment, &seg.Signature, &seg.Content)
	if stderrors.Is(err, sql.ErrNoRows) {
		return SegmentRecord{}, ndnerrors.NewPathNotFoundError(path, "getSegment").
			WithDetail("version", version).WithDetail("segment", segment)
	}
	if err != nil {
		return SegmentRecord{}, wrapExecErr(err, "getSegment", path)
	}
	return seg, nil
}

// ListSegments returns every SegmentRecord of (path, version) ordered by
// segment index.
func (s *Store) ListSegments(ctx context.Context, tx *sql.Tx, path string, version int64) ([]SegmentRecord, error) {
	stmt := txStmt(ctx, tx, s.stmts.listSegments)
	rows, err := stmt.QueryContext(ctx, path, version)
	if err != nil {
		return nil, wrapExecErr(err, "listSegments", path)
	}
	defer rows.Close()

	var out []SegmentRecord
	for rows.Next() {
		var seg SegmentRecord
		if err := rows.Scan(&seg.Path, &seg.Version, &seg.Segment, &seg.Signature, &seg.Content); err != nil {
			return nil, wrapExecErr(err, "listSegments", path)
		}
		out = append(out, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapExecErr(err, "listSegments", path)
	}
	return out, nil
}

// CountUnsigned returns how many segments of (path, version) still carry
// the unsigned sentinel, used to decide whether signature_state can
// transition to READY.
func (s *Store) CountUnsigned(ctx context.Context, tx *sql.Tx, path string, version int64) (int, error) {
	stmt := txStmt(ctx, tx, s.stmts.countUnsigned)
	row := stmt.QueryRowContext(ctx, path, version, unsignedSentinel)

	var n int
	if err := row.Scan(&n); err != nil {
		return 0, wrapExecErr(err, "countUnsigned", path)
	}
	return n, nil
}

// DeleteSegments removes every SegmentRecord of path, across all versions.
func (s *Store) DeleteSegments(ctx context.Context, tx *sql.Tx, path string) error {
	stmt := txStmt(ctx, tx, s.stmts.deleteSegments)
	_, err := stmt.ExecContext(ctx, path)
	return wrapExecErr(err, "deleteSegments", path)
}

// DeleteSegmentsVersion removes every SegmentRecord of one (path, version).
func (s *Store) DeleteSegmentsVersion(ctx context.Context, tx *sql.Tx, path string, version int64) error {
	stmt := txStmt(ctx, tx, s.stmts.deleteSegmentsByVer)
	_, err := stmt.ExecContext(ctx, path, version)
	return wrapExecErr(err, "deleteSegmentsByVer", path)
}

// DeleteSegmentsSubtree removes every SegmentRecord for root itself and
// for every path under root.
func (s *Store) DeleteSegmentsSubtree(ctx context.Context, tx *sql.Tx, root string) error {
	stmt := txStmt(ctx, tx, s.stmts.deleteSegmentsLike)
	_, err := stmt.ExecContext(ctx, root, root+"/%")
	return wrapExecErr(err, "deleteSegmentsLike", root)
}

// DeleteStagingSegments removes every SegmentRecord whose path carries
// the ".segtemp" suffix, used at startup to reclaim orphaned staging
// rows left behind by a crash between stage_write and promote_staging.
func (s *Store) DeleteStagingSegments(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM file_segments WHERE path LIKE '%.segtemp';`)
	if err != nil {
		return 0, wrapExecErr(err, "reclaimOrphans", "")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapExecErr(err, "reclaimOrphans", "")
	}
	return n, nil
}

// MoveSegments rewrites every SegmentRecord of (fromPath, fromVersion)
// to (toPath, toVersion), used by promote_staging (discarding the
// ".segtemp" suffix and STAGING_VERSION). Rename uses RenameSegments.
func (s *Store) MoveSegments(ctx context.Context, tx *sql.Tx, fromPath string, fromVersion int64, toPath string, toVersion int64) error {
	stmt := txStmt(ctx, tx, s.stmts.moveSegments)
	_, err := stmt.ExecContext(ctx, toPath, toVersion, fromPath, fromVersion)
	return wrapExecErr(err, "moveSegments", fromPath)
}

// RenameSegments moves every SegmentRecord of oldPath, across all its
// versions, to newPath. Used by rename, which must relocate every
// version's segments even though only current_version's content is
// re-signed under the new name.
func (s *Store) RenameSegments(ctx context.Context, tx *sql.Tx, oldPath, newPath string) error {
	stmt := txStmt(ctx, tx, s.stmts.renameSegments)
	_, err := stmt.ExecContext(ctx, newPath, oldPath)
	return wrapExecErr(err, "renameSegments", oldPath)
}

// UpdateSegmentSignature stores the computed signature for one segment.
func (s *Store) UpdateSegmentSignature(ctx context.Context, tx *sql.Tx, path string, version int64, segment int, signature []byte) error {
	stmt := txStmt(ctx, tx, s.stmts.updateSegmentSig)
	res, err := stmt.ExecContext(ctx, signature, path, version, segment)
	if err != nil {
		return wrapExecErr(err, "updateSegmentSig", path)
	}
	return requireRowsAffected(res, path, "updateSegmentSig")
}
