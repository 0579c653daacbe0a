package namespace

import (
	"context"
	"database/sql"

	ndnerrors "github.com/Anson14/ndnfs-d/pkg/errors"
)

// Rmdir is forbidden on root. It deletes the directory's own FileRecord
// plus every FileRecord, VersionRecord, and SegmentRecord whose path
// falls under it — a single prefix match, not a recursive descent. It
// does not check for non-empty directories; the kernel bridge issues
// per-entry unlink first.
func (m *Manager) Rmdir(ctx context.Context, p string) error {
	p = canonical(p)
	if p == rootPath {
		return ndnerrors.NewRootRmdirError()
	}

	return m.store.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := m.store.GetFile(ctx, tx, p); err != nil {
			return err
		}
		if err := m.store.DeleteSegmentsSubtree(ctx, tx, p); err != nil {
			return err
		}
		if err := m.store.DeleteVersionsSubtree(ctx, tx, p); err != nil {
			return err
		}
		return m.store.DeleteSubtree(ctx, tx, p)
	})
}

// Unlink removes the FileRecord and every VersionRecord and SegmentRecord
// at exactly path (no subtree semantics — unlink never touches directories).
func (m *Manager) Unlink(ctx context.Context, p string) error {
	p = canonical(p)

	return m.store.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := m.store.GetFile(ctx, tx, p); err != nil {
			return err
		}
		if err := m.store.DeleteSegments(ctx, tx, p); err != nil {
			return err
		}
		if err := m.store.DeleteVersions(ctx, tx, p); err != nil {
			return err
		}
		return m.store.DeleteFile(ctx, tx, p)
	})
}
