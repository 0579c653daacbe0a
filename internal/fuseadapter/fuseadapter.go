// Package fuseadapter bridges internal/namespace and internal/fsop into
// the kernel-facing github.com/hanwen/go-fuse/v2/fuse/pathfs.FileSystem
// interface. Every operation works on POSIX paths rather than inodes,
// which fits a namespace layer that is itself purely path-keyed and
// never builds an in-memory inode tree.
package fuseadapter

import (
	"context"
	"os"
	"path"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/hanwen/go-fuse/v2/fuse/nodefs"
	"github.com/hanwen/go-fuse/v2/fuse/pathfs"
	"go.uber.org/zap"

	"github.com/Anson14/ndnfs-d/internal/fsop"
	"github.com/Anson14/ndnfs-d/internal/metastore"
	"github.com/Anson14/ndnfs-d/internal/namespace"
)

// Config bundles everything the adapter needs to construct itself.
type Config struct {
	Namespace  *namespace.Manager
	Dispatcher *fsop.Dispatcher
	Logger     *zap.SugaredLogger
}

// FileSystem implements pathfs.FileSystem against a namespace.Manager
// and fsop.Dispatcher pair. Unimplemented passthroughs (symlink target
// resolution, hardlinks, xattr namespaces outside what the core uses)
// fall through to pathfs.NewDefaultFileSystem's no-op defaults.
type FileSystem struct {
	pathfs.FileSystem
	ns   *namespace.Manager
	disp *fsop.Dispatcher
	log  *zap.SugaredLogger
}

// New builds a FileSystem.
func New(cfg Config) *FileSystem {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &FileSystem{
		FileSystem: pathfs.NewDefaultFileSystem(),
		ns:         cfg.Namespace,
		disp:       cfg.Dispatcher,
		log:        log,
	}
}

// canon turns a pathfs-relative name ("", "a/b") into the canonical
// absolute path the rest of the core expects ("/", "/a/b").
func canon(name string) string {
	if name == "" {
		return "/"
	}
	return "/" + name
}

func (fs *FileSystem) GetAttr(name string, _ *fuse.Context) (*fuse.Attr, fuse.Status) {
	f, err := fs.ns.GetAttr(context.Background(), canon(name))
	if err != nil {
		return nil, toStatus(err)
	}
	a := toAttr(f, fs.ns.UID(), fs.ns.GID())
	return &a, fuse.OK
}

func (fs *FileSystem) Chmod(name string, mode uint32, _ *fuse.Context) fuse.Status {
	err := fs.ns.Chmod(context.Background(), canon(name), mode)
	return toStatus(err)
}

func (fs *FileSystem) Chown(name string, _, _ uint32, _ *fuse.Context) fuse.Status {
	// Ownership is fixed process-wide configuration, not a per-file
	// attribute in the data model; accept the call as a no-op.
	_, err := fs.ns.GetAttr(context.Background(), canon(name))
	return toStatus(err)
}

func (fs *FileSystem) Utimens(name string, _, _ *time.Time, _ *fuse.Context) fuse.Status {
	return toStatus(fs.ns.Utimens(context.Background(), canon(name)))
}

func (fs *FileSystem) Access(name string, _ uint32, _ *fuse.Context) fuse.Status {
	return toStatus(fs.ns.Access(context.Background(), canon(name)))
}

func (fs *FileSystem) Truncate(name string, size uint64, _ *fuse.Context) fuse.Status {
	return toStatus(fs.disp.Truncate(context.Background(), canon(name), int64(size)))
}

func (fs *FileSystem) Mkdir(name string, mode uint32, _ *fuse.Context) fuse.Status {
	return toStatus(fs.ns.Mkdir(context.Background(), canon(name), mode))
}

func (fs *FileSystem) Mknod(name string, mode uint32, _ uint32, _ *fuse.Context) fuse.Status {
	return toStatus(fs.ns.Mknod(context.Background(), canon(name), mode))
}

func (fs *FileSystem) Rmdir(name string, _ *fuse.Context) fuse.Status {
	return toStatus(fs.ns.Rmdir(context.Background(), canon(name)))
}

func (fs *FileSystem) Unlink(name string, _ *fuse.Context) fuse.Status {
	return toStatus(fs.ns.Unlink(context.Background(), canon(name)))
}

func (fs *FileSystem) Rename(oldName, newName string, _ *fuse.Context) fuse.Status {
	return toStatus(fs.disp.Rename(context.Background(), canon(oldName), canon(newName)))
}

func (fs *FileSystem) StatFs(name string) *fuse.StatfsOut {
	if err := fs.ns.StatFs(context.Background()); err != nil {
		return nil
	}
	return &fuse.StatfsOut{}
}

func (fs *FileSystem) OpenDir(name string, _ *fuse.Context) ([]fuse.DirEntry, fuse.Status) {
	children, err := fs.ns.ReadDir(context.Background(), canon(name))
	if err != nil {
		return nil, toStatus(err)
	}
	entries := make([]fuse.DirEntry, 0, len(children))
	for _, c := range children {
		entries = append(entries, fuse.DirEntry{Name: path.Base(c.Path), Mode: typeMode(c)})
	}
	return entries, fuse.OK
}

// typeMode reports just the file-type bits of a FileRecord's mode, the
// only part readdir(3) callers are guaranteed to look at.
func typeMode(f metastore.FileRecord) uint32 {
	return f.Mode & syscall.S_IFMT
}

func (fs *FileSystem) Open(name string, flags uint32, _ *fuse.Context) (nodefs.File, fuse.Status) {
	ctx := context.Background()
	p := canon(name)
	h, err := fs.disp.Open(ctx, p, writableFromFlags(flags))
	if err != nil {
		return nil, toStatus(err)
	}
	return &file{File: nodefs.NewDefaultFile(), fs: fs, h: h}, fuse.OK
}

func (fs *FileSystem) Create(name string, flags, mode uint32, _ *fuse.Context) (nodefs.File, fuse.Status) {
	ctx := context.Background()
	p := canon(name)
	if err := fs.ns.Mknod(ctx, p, mode|syscall.S_IFREG); err != nil {
		return nil, toStatus(err)
	}
	h, err := fs.disp.Open(ctx, p, writableFromFlags(flags))
	if err != nil {
		return nil, toStatus(err)
	}
	return &file{File: nodefs.NewDefaultFile(), fs: fs, h: h}, fuse.OK
}

// writableFromFlags reports whether open(2) flags request write access.
func writableFromFlags(flags uint32) bool {
	acc := flags & uint32(os.O_ACCMODE)
	return acc == uint32(os.O_WRONLY) || acc == uint32(os.O_RDWR)
}
