package metastore

import (
	"context"
	"database/sql"
)

const (
	sqlInsertVersion     = `INSERT INTO file_versions (path, version) VALUES (?, ?);`
	sqlDeleteVersions    = `DELETE FROM file_versions WHERE path = ?;`
	sqlDeleteVersionsLike = `DELETE FROM file_versions WHERE path = ? OR path LIKE ?;`
	sqlRenameVersions    = `UPDATE file_versions SET path = ? WHERE path = ?;`
	sqlListVersions      = `SELECT path, version FROM file_versions WHERE path = ? ORDER BY version;`
)

// InsertVersion records that version now exists for path.
func (s *Store) InsertVersion(ctx context.Context, tx *sql.Tx, v VersionRecord) error {
	stmt := txStmt(ctx, tx, s.stmts.insertVersion)
	_, err := stmt.ExecContext(ctx, v.Path, v.Version)
	return wrapExecErr(err, "insertVersion", v.Path)
}

// DeleteVersions removes every VersionRecord of path, used when a file
// is unlinked. Subtree removal uses DeleteVersionsSubtree.
func (s *Store) DeleteVersions(ctx context.Context, tx *sql.Tx, path string) error {
	stmt := txStmt(ctx, tx, s.stmts.deleteVersions)
	_, err := stmt.ExecContext(ctx, path)
	return wrapExecErr(err, "deleteVersions", path)
}

// DeleteVersionsSubtree removes every VersionRecord for root itself and
// for every path under root, for recursive directory removal.
func (s *Store) DeleteVersionsSubtree(ctx context.Context, tx *sql.Tx, root string) error {
	stmt := txStmt(ctx, tx, s.stmts.deleteVersionsLike)
	_, err := stmt.ExecContext(ctx, root, root+"/%")
	return wrapExecErr(err, "deleteVersionsLike", root)
}

// RenameVersions moves every VersionRecord from oldPath to newPath.
func (s *Store) RenameVersions(ctx context.Context, tx *sql.Tx, oldPath, newPath string) error {
	stmt := txStmt(ctx, tx, s.stmts.renameVersions)
	_, err := stmt.ExecContext(ctx, newPath, oldPath)
	return wrapExecErr(err, "renameVersions", oldPath)
}

// ListVersions returns every version ever promoted for path, in
// ascending order.
func (s *Store) ListVersions(ctx context.Context, tx *sql.Tx, path string) ([]VersionRecord, error) {
	stmt := txStmt(ctx, tx, s.stmts.listVersions)
	rows, err := stmt.QueryContext(ctx, path)
	if err != nil {
		return nil, wrapExecErr(err, "listVersions", path)
	}
	defer rows.Close()

	var out []VersionRecord
	for rows.Next() {
		var v VersionRecord
		if err := rows.Scan(&v.Path, &v.Version); err != nil {
			return nil, wrapExecErr(err, "listVersions", path)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapExecErr(err, "listVersions", path)
	}
	return out, nil
}
