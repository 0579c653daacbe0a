// Package metastore is the transactional key/row store backing the
// filesystem's three relations — file_system, file_versions, and
// file_segments — accessed through prepared parameterized statements,
// except the startup reclaim of orphaned staging segments
// (DeleteStagingSegments), which runs a fixed, parameterless statement
// that is not prepared. It is the sole persistence layer: every other package that
// needs durable state goes through a *Store.
package metastore

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"

	ndnerrors "github.com/Anson14/ndnfs-d/pkg/errors"
	"github.com/Anson14/ndnfs-d/pkg/filesys"
)

// Store wraps a *sql.DB opened against modernc.org/sqlite (pure Go, no
// cgo) and the set of prepared statements every CRUD helper in this
// package uses.
type Store struct {
	db *sql.DB

	stmts statements
}

// statements holds one *sql.Stmt per prepared query, all prepared once
// in prepare() and reused for the lifetime of the Store rather than
// re-acquired per call.
type statements struct {
	insertFile   *sql.Stmt
	getFile      *sql.Stmt
	updateFile   *sql.Stmt
	deleteFile   *sql.Stmt
	renameFile   *sql.Stmt
	listChildren *sql.Stmt
	deleteFileLike *sql.Stmt

	insertVersion     *sql.Stmt
	deleteVersions    *sql.Stmt
	deleteVersionsLike *sql.Stmt
	renameVersions    *sql.Stmt
	listVersions      *sql.Stmt

	upsertSegment       *sql.Stmt
	getSegment          *sql.Stmt
	listSegments        *sql.Stmt
	countUnsigned       *sql.Stmt
	deleteSegments      *sql.Stmt
	deleteSegmentsByVer *sql.Stmt
	deleteSegmentsLike  *sql.Stmt
	moveSegments        *sql.Stmt
	renameSegments      *sql.Stmt
	updateSegmentSig    *sql.Stmt
}

// Open opens (creating if necessary) the sqlite database at dbPath,
// creates the schema if it does not already exist, and prepares every
// statement this package uses.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := filesys.CreateDir(dir, 0755, true); err != nil {
			return nil, ndnerrors.ClassifyDirectoryCreationError(err, dir)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, ndnerrors.ClassifyDatabaseOpenError(err, dbPath)
	}
	db.SetMaxOpenConns(1) // single persistence handle per process

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, ndnerrors.ClassifyDatabaseOpenError(err, dbPath)
	}

	if err := createSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.prepare(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn inside a single transaction, committing on success and
// rolling back on any error fn returns or panics with. Modeled on the
// pack's CommitMeta(ctx, func(tx *sql.Tx) error) pattern for scoping a
// multi-statement operation (promote, rename, rmdir subtree) to one
// atomic unit.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ndnerrors.NewPersistenceError(err, "failed to begin transaction").WithStatement("BEGIN")
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = ndnerrors.NewPersistenceError(cErr, "failed to commit transaction").WithStatement("COMMIT")
		}
	}()
	err = fn(tx)
	return err
}

func (s *Store) prepare(ctx context.Context) error {
	var err error
	prep := func(dst **sql.Stmt, query string) {
		if err != nil {
			return
		}
		*dst, err = s.db.PrepareContext(ctx, query)
	}

	prep(&s.stmts.insertFile, sqlInsertFile)
	prep(&s.stmts.getFile, sqlGetFile)
	prep(&s.stmts.updateFile, sqlUpdateFile)
	prep(&s.stmts.deleteFile, sqlDeleteFile)
	prep(&s.stmts.renameFile, sqlRenameFile)
	prep(&s.stmts.listChildren, sqlListChildren)
	prep(&s.stmts.deleteFileLike, sqlDeleteFileLike)

	prep(&s.stmts.insertVersion, sqlInsertVersion)
	prep(&s.stmts.deleteVersions, sqlDeleteVersions)
	prep(&s.stmts.deleteVersionsLike, sqlDeleteVersionsLike)
	prep(&s.stmts.renameVersions, sqlRenameVersions)
	prep(&s.stmts.listVersions, sqlListVersions)

	prep(&s.stmts.upsertSegment, sqlUpsertSegment)
	prep(&s.stmts.getSegment, sqlGetSegment)
	prep(&s.stmts.listSegments, sqlListSegments)
	prep(&s.stmts.countUnsigned, sqlCountUnsigned)
	prep(&s.stmts.deleteSegments, sqlDeleteSegments)
	prep(&s.stmts.deleteSegmentsByVer, sqlDeleteSegmentsByVer)
	prep(&s.stmts.deleteSegmentsLike, sqlDeleteSegmentsLike)
	prep(&s.stmts.moveSegments, sqlMoveSegments)
	prep(&s.stmts.renameSegments, sqlRenameSegments)
	prep(&s.stmts.updateSegmentSig, sqlUpdateSegmentSig)

	if err != nil {
		return ndnerrors.NewPersistenceError(err, "failed to prepare statement").WithStatement("prepare")
	}
	return nil
}

// txStmt lets every CRUD helper accept either the Store's shared
// prepared statement or a statement bound to a caller-supplied
// transaction, without duplicating every query string.
func txStmt(ctx context.Context, tx *sql.Tx, stmt *sql.Stmt) *sql.Stmt {
	if tx == nil {
		return stmt
	}
	return tx.StmtContext(ctx, stmt)
}

func wrapExecErr(err error, statement, path string) error {
	if err == nil {
		return nil
	}
	return ndnerrors.NewPersistenceError(err, fmt.Sprintf("statement %s failed", statement)).
		WithStatement(statement).
		WithPath(path)
}
