package namespace

import (
	"context"
	"database/sql"

	"github.com/Anson14/ndnfs-d/internal/metastore"
	"github.com/Anson14/ndnfs-d/internal/segment"
	ndnerrors "github.com/Anson14/ndnfs-d/pkg/errors"
)

// Rename moves every relation's row from "from" to "to" in one
// transaction: FileRecord, every VersionRecord, and every SegmentRecord
// across all of the file's versions. It fails with Collision if "to"
// already exists. It returns the moved file's current version so the
// caller can re-sign that version's segments under their new
// path-derived hierarchical names — renaming never re-signs by itself,
// since the hierarchical name embeds the path.
func (m *Manager) Rename(ctx context.Context, from, to string) (movedVersion int64, err error) {
	from, to = canonical(from), canonical(to)
	if from == rootPath {
		return 0, ndnerrors.NewRootOperationError("rename")
	}
	if segment.IsStagingPath(to) {
		return 0, ndnerrors.NewStagingCollisionError(to, "rename")
	}

	err = m.store.WithTx(ctx, func(tx *sql.Tx) error {
		rec, gErr := m.store.GetFile(ctx, tx, from)
		if gErr != nil {
			return gErr
		}

		if _, err := m.store.GetFile(ctx, tx, to); err == nil {
			return ndnerrors.NewPathExistsError(to, "rename")
		} else if !ndnerrors.IsNotFoundError(err) {
			return err
		}

		toParent := parentOf(to)
		toLevel := rec.Level
		if toParent != "" {
			parentRec, pErr := m.store.GetFile(ctx, tx, toParent)
			if pErr != nil {
				return pErr
			}
			if parentRec.Type != metastore.TypeDirectory {
				return ndnerrors.NewInvalidError(nil, "destination parent is not a directory").
					WithOperation("rename").WithReason("parent-not-directory").WithProvided(toParent)
			}
			toLevel = parentRec.Level + 1
		}

		if err := m.store.RenameSegments(ctx, tx, from, to); err != nil {
			return err
		}
		if err := m.store.RenameVersions(ctx, tx, from, to); err != nil {
			return err
		}
		if err := m.store.DeleteFile(ctx, tx, from); err != nil {
			return err
		}
		moved := rec
		moved.Path, moved.Level = to, toLevel
		if err := m.store.InsertFile(ctx, tx, moved); err != nil {
			return err
		}

		movedVersion = rec.CurrentVersion
		return nil
	})
	return movedVersion, err
}
