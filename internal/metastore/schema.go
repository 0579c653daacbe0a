package metastore

import (
	"context"
	"database/sql"

	ndnerrors "github.com/Anson14/ndnfs-d/pkg/errors"
)

// Schema DDL, bit-exact to the three relations the core defines: every
// column of file_system, file_versions, and file_segments.
const (
	ddlFileSystem = `
CREATE TABLE IF NOT EXISTS file_system (
	path            TEXT PRIMARY KEY,
	current_version INTEGER NOT NULL,
	mode            INTEGER NOT NULL,
	type            INTEGER NOT NULL,
	mime_type       TEXT NOT NULL DEFAULT '',
	atime           INTEGER NOT NULL,
	nlink           INTEGER NOT NULL,
	size            INTEGER NOT NULL,
	ready_signed    INTEGER NOT NULL,
	level           INTEGER NOT NULL
);`

	ddlFileVersions = `
CREATE TABLE IF NOT EXISTS file_versions (
	path    TEXT NOT NULL,
	version INTEGER NOT NULL,
	PRIMARY KEY (path, version)
);`

	ddlFileSegments = `
CREATE TABLE IF NOT EXISTS file_segments (
	path      TEXT NOT NULL,
	version   INTEGER NOT NULL,
	segment   INTEGER NOT NULL,
	signature BLOB NOT NULL,
	content   BLOB NOT NULL,
	PRIMARY KEY (path, version, segment)
);`

	ddlSegmentsByPathVersion = `
CREATE INDEX IF NOT EXISTS idx_file_segments_path_version
	ON file_segments (path, version);`
)

func createSchema(ctx context.Context, db *sql.DB) error {
	for _, ddl := range []string{ddlFileSystem, ddlFileVersions, ddlFileSegments, ddlSegmentsByPathVersion} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return ndnerrors.NewPersistenceError(err, "failed to create schema").WithStatement("DDL")
		}
	}
	return nil
}
