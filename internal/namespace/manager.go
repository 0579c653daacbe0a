// Package namespace maps POSIX-style paths onto FileRecords: mkdir,
// rmdir, readdir, mknod, unlink, rename, chmod, getattr, utimens, access
// and statfs. It owns the `level` invariant that turns directory listing
// into a bounded range scan instead of a recursive descent, and the
// collision/existence preconditions every create/destroy operation must
// satisfy. It never touches file content or segment signatures — that is
// internal/segment's job, orchestrated by internal/fsop.
package namespace

import (
	"context"
	"path"

	"go.uber.org/zap"

	"github.com/Anson14/ndnfs-d/internal/metastore"
	ndnerrors "github.com/Anson14/ndnfs-d/pkg/errors"
)

const rootPath = "/"

// Config bundles everything a Manager needs to construct itself.
type Config struct {
	Store  *metastore.Store
	UID    uint32
	GID    uint32
	Logger *zap.SugaredLogger
}

// Manager implements the namespace operations against a *metastore.Store.
type Manager struct {
	store *metastore.Store
	uid   uint32
	gid   uint32
	log   *zap.SugaredLogger
}

// New builds a Manager, seeding the root directory's FileRecord if it
// does not already exist.
func New(ctx context.Context, cfg Config) (*Manager, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	m := &Manager{store: cfg.Store, uid: cfg.UID, gid: cfg.GID, log: log}

	if _, err := m.store.GetFile(ctx, nil, rootPath); err != nil {
		if !ndnerrors.IsNotFoundError(err) {
			return nil, err
		}
		root := metastore.FileRecord{
			Path: rootPath, Mode: 0755, Type: metastore.TypeDirectory,
			Size: dirSize, Level: 0, SignatureState: metastore.SignatureReady,
		}
		if err := m.store.InsertFile(ctx, nil, root); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// UID and GID report the configured ownership every FileRecord is
// attributed to, there being no per-file owner in the data model.
func (m *Manager) UID() uint32 { return m.uid }
func (m *Manager) GID() uint32 { return m.gid }

// GetAttr returns the FileRecord for path, or *errors.NotFoundError.
func (m *Manager) GetAttr(ctx context.Context, p string) (metastore.FileRecord, error) {
	return m.store.GetFile(ctx, nil, canonical(p))
}

// ReadDir requires a directory FileRecord at p and returns every
// FileRecord one level below it.
func (m *Manager) ReadDir(ctx context.Context, p string) ([]metastore.FileRecord, error) {
	p = canonical(p)
	dir, err := m.store.GetFile(ctx, nil, p)
	if err != nil {
		return nil, err
	}
	if dir.Type != metastore.TypeDirectory {
		return nil, ndnerrors.NewInvalidError(nil, "not a directory").
			WithOperation("readdir").WithReason("not-a-directory").WithProvided(p)
	}
	return m.store.ListChildren(ctx, nil, childPrefix(p), dir.Level+1)
}

// Chmod updates mode only.
func (m *Manager) Chmod(ctx context.Context, p string, mode uint32) error {
	p = canonical(p)
	f, err := m.store.GetFile(ctx, nil, p)
	if err != nil {
		return err
	}
	f.Mode = mode
	return m.store.UpdateFile(ctx, nil, f)
}

// Utimens is an existence check only; the core does not track mtime
// beyond what current_version's promotion time implies.
func (m *Manager) Utimens(ctx context.Context, p string) error {
	_, err := m.store.GetFile(ctx, nil, canonical(p))
	return err
}

// Access is an existence check only.
func (m *Manager) Access(ctx context.Context, p string) error {
	_, err := m.store.GetFile(ctx, nil, canonical(p))
	return err
}

// StatFs is an existence check on the root, there being no fixed
// capacity to report for this namespace.
func (m *Manager) StatFs(ctx context.Context) error {
	_, err := m.store.GetFile(ctx, nil, rootPath)
	return err
}

// canonical normalizes a path the way path.Clean does, forcing a leading
// slash and stripping any trailing one (the root itself stays "/").
func canonical(p string) string {
	if p == "" {
		return rootPath
	}
	return path.Clean("/" + p)
}

// parentOf returns the canonical parent path of p, or "" if p is root.
func parentOf(p string) string {
	if p == rootPath {
		return ""
	}
	return path.Dir(p)
}

// childPrefix returns the LIKE prefix ListChildren expects: parent path
// plus exactly one trailing slash, collapsing root's own already-trailing
// slash.
func childPrefix(p string) string {
	if p == rootPath {
		return rootPath
	}
	return p + "/"
}

const dirSize = 4096
