package namespace

import (
	"context"
	"database/sql"
	"syscall"

	"github.com/Anson14/ndnfs-d/internal/metastore"
	"github.com/Anson14/ndnfs-d/internal/segment"
	ndnerrors "github.com/Anson14/ndnfs-d/pkg/errors"
)

// Mkdir creates a directory FileRecord and its initial VersionRecord.
// Fails NotFound if the parent is missing, Collision if the name is
// already taken.
func (m *Manager) Mkdir(ctx context.Context, p string, mode uint32) error {
	p = canonical(p)
	return m.create(ctx, p, mode|syscallIFDIR, metastore.TypeDirectory)
}

// Mknod creates a FileRecord whose type is inferred from mode's file-type
// bits, as mkdir does for directories, additionally inferring mime_type
// from p's extension. Initial size is 0, nlink 0.
func (m *Manager) Mknod(ctx context.Context, p string, mode uint32) error {
	p = canonical(p)
	return m.create(ctx, p, mode, typeFromMode(mode))
}

func (m *Manager) create(ctx context.Context, p string, mode uint32, typ metastore.FileType) error {
	if segment.IsStagingPath(p) {
		return ndnerrors.NewStagingCollisionError(p, "create")
	}
	parent := parentOf(p)

	return m.store.WithTx(ctx, func(tx *sql.Tx) error {
		var parentLevel int
		if parent == "" {
			// Only root has no parent. New always seeds root, so a create of
			// root itself fails below with a collision.
			parentLevel = -1
		} else {
			parentRec, err := m.store.GetFile(ctx, tx, parent)
			if err != nil {
				return err
			}
			if parentRec.Type != metastore.TypeDirectory {
				return ndnerrors.NewInvalidError(nil, "parent is not a directory").
					WithOperation("create").WithReason("parent-not-directory").WithProvided(parent)
			}
			parentLevel = parentRec.Level
		}

		if _, err := m.store.GetFile(ctx, tx, p); err == nil {
			return ndnerrors.NewPathExistsError(p, "create")
		} else if !ndnerrors.IsNotFoundError(err) {
			return err
		}

		version := segment.NewVersion()
		rec := metastore.FileRecord{
			Path: p, CurrentVersion: version, Mode: mode, Type: typ,
			Level: parentLevel + 1, SignatureState: metastore.SignatureNotReady,
		}
		if typ == metastore.TypeDirectory {
			rec.Size = dirSize
			rec.SignatureState = metastore.SignatureNotReady
		} else {
			rec.MimeType = mimeFromExt(p)
		}

		if err := m.store.InsertFile(ctx, tx, rec); err != nil {
			return err
		}
		return m.store.InsertVersion(ctx, tx, metastore.VersionRecord{Path: p, Version: version})
	})
}

// syscallIFDIR is folded into mkdir's mode so a stored FileRecord's mode
// column carries the same file-type bits mknod-created records do.
const syscallIFDIR = syscall.S_IFDIR

// typeFromMode maps POSIX file-type bits in mode to a FileType, defaulting
// to REGULAR when no recognized type bit is set.
func typeFromMode(mode uint32) metastore.FileType {
	switch mode & syscall.S_IFMT {
	case syscall.S_IFDIR:
		return metastore.TypeDirectory
	case syscall.S_IFCHR:
		return metastore.TypeCharacterSpecial
	case syscall.S_IFLNK:
		return metastore.TypeSymbolicLink
	case syscall.S_IFSOCK:
		return metastore.TypeUnixSocket
	case syscall.S_IFIFO:
		return metastore.TypeFIFOSpecial
	default:
		return metastore.TypeRegular
	}
}
