package metastore

import (
	"context"
	"database/sql"
	stderrors "errors"

	ndnerrors "github.com/Anson14/ndnfs-d/pkg/errors"
)

const (
	sqlInsertFile = `
INSERT INTO file_system (path, current_version, mode, type, mime_type, atime, nlink, size, ready_signed, level)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	sqlGetFile = `
SELECT path, current_version, mode, type, mime_type, atime, nlink, size, ready_signed, level
FROM file_system WHERE path = ?;`

	sqlUpdateFile = `
UPDATE file_system
SET current_version = ?, mode = ?, mime_type = ?, atime = ?, nlink = ?, size = ?, ready_signed = ?
WHERE path = ?;`

	sqlDeleteFile = `DELETE FROM file_system WHERE path = ?;`

	sqlRenameFile = `UPDATE file_system SET path = ? WHERE path = ?;`

	sqlListChildren = `
SELECT path, current_version, mode, type, mime_type, atime, nlink, size, ready_signed, level
FROM file_system WHERE level = ? AND path LIKE ? ORDER BY path;`

	sqlDeleteFileLike = `DELETE FROM file_system WHERE path = ? OR path LIKE ?;`
)

// InsertFile creates a new FileRecord. tx may be nil to run outside any
// caller-managed transaction.
func (s *Store) InsertFile(ctx context.Context, tx *sql.Tx, f FileRecord) error {
	stmt := txStmt(ctx, tx, s.stmts.insertFile)
	_, err := stmt.ExecContext(ctx, f.Path, f.CurrentVersion, f.Mode, int(f.Type), f.MimeType,
		f.Atime, f.Nlink, f.Size, int(f.SignatureState), f.Level)
	return wrapExecErr(err, "insertFile", f.Path)
}

// GetFile looks up the FileRecord for path, returning
// *errors.NotFoundError if it does not exist.
func (s *Store) GetFile(ctx context.Context, tx *sql.Tx, path string) (FileRecord, error) {
	stmt := txStmt(ctx, tx, s.stmts.getFile)
	row := stmt.QueryRowContext(ctx, path)

	var f FileRecord
	var typ, state int
	err := row.Scan(&f.Path, &f.CurrentVersion, &f.Mode, &typ, &f.MimeType, &f.Atime, &f.Nlink,
		&f.Size, &state, &f.Level)
	if stderrors.Is(err, sql.ErrNoRows) {
		return FileRecord{}, ndnerrors.NewPathNotFoundError(path, "getFile")
	}
	if err != nil {
		return FileRecord{}, wrapExecErr(err, "getFile", path)
	}
	f.Type = FileType(typ)
	f.SignatureState = SignatureState(state)
	return f, nil
}

// UpdateFile overwrites the mutable columns of an existing FileRecord.
func (s *Store) UpdateFile(ctx context.Context, tx *sql.Tx, f FileRecord) error {
	stmt := txStmt(ctx, tx, s.stmts.updateFile)
	res, err := stmt.ExecContext(ctx, f.CurrentVersion, f.Mode, f.MimeType, f.Atime, f.Nlink,
		f.Size, int(f.SignatureState), f.Path)
	if err != nil {
		return wrapExecErr(err, "updateFile", f.Path)
	}
	return requireRowsAffected(res, f.Path, "updateFile")
}

// DeleteFile removes the FileRecord for path.
func (s *Store) DeleteFile(ctx context.Context, tx *sql.Tx, path string) error {
	stmt := txStmt(ctx, tx, s.stmts.deleteFile)
	_, err := stmt.ExecContext(ctx, path)
	return wrapExecErr(err, "deleteFile", path)
}

// ListChildren returns every FileRecord one level below parentPrefix
// (parentPrefix must end in "/"), for OpenDir/readdir.
func (s *Store) ListChildren(ctx context.Context, tx *sql.Tx, parentPrefix string, level int) ([]FileRecord, error) {
	stmt := txStmt(ctx, tx, s.stmts.listChildren)
	rows, err := stmt.QueryContext(ctx, level, parentPrefix+"%")
	if err != nil {
		return nil, wrapExecErr(err, "listChildren", parentPrefix)
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		var f FileRecord
		var typ, state int
		if err := rows.Scan(&f.Path, &f.CurrentVersion, &f.Mode, &typ, &f.MimeType, &f.Atime,
			&f.Nlink, &f.Size, &state, &f.Level); err != nil {
			return nil, wrapExecErr(err, "listChildren", parentPrefix)
		}
		f.Type = FileType(typ)
		f.SignatureState = SignatureState(state)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapExecErr(err, "listChildren", parentPrefix)
	}
	return out, nil
}

// RenameFile changes a FileRecord's primary key from oldPath to newPath.
func (s *Store) RenameFile(ctx context.Context, tx *sql.Tx, oldPath, newPath string) error {
	stmt := txStmt(ctx, tx, s.stmts.renameFile)
	res, err := stmt.ExecContext(ctx, newPath, oldPath)
	if err != nil {
		return wrapExecErr(err, "renameFile", oldPath)
	}
	return requireRowsAffected(res, oldPath, "renameFile")
}

// DeleteSubtree removes root's own FileRecord plus every FileRecord whose
// path falls under root (i.e. starts with root + "/"), for recursive
// directory removal.
func (s *Store) DeleteSubtree(ctx context.Context, tx *sql.Tx, root string) error {
	stmt := txStmt(ctx, tx, s.stmts.deleteFileLike)
	_, err := stmt.ExecContext(ctx, root, root+"/%")
	return wrapExecErr(err, "deleteFileLike", root)
}

func requireRowsAffected(res sql.Result, path, statement string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrapExecErr(err, statement, path)
	}
	if n == 0 {
		return ndnerrors.NewPathNotFoundError(path, statement)
	}
	return nil
}
