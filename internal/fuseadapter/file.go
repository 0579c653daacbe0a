package fuseadapter

import (
	"context"

	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/hanwen/go-fuse/v2/fuse/nodefs"

	"github.com/Anson14/ndnfs-d/internal/fsop"
)

// file adapts one fsop.Handle to nodefs.File. Everything not overridden
// here falls through to nodefs.NewDefaultFile's no-op implementation.
type file struct {
	nodefs.File
	fs *FileSystem
	h  *fsop.Handle
}

func (f *file) Read(dest []byte, off int64) (fuse.ReadResult, fuse.Status) {
	data, err := f.fs.disp.Read(context.Background(), f.h, off, int64(len(dest)))
	if err != nil {
		return nil, toStatus(err)
	}
	return fuse.ReadResultData(data), fuse.OK
}

func (f *file) Write(data []byte, off int64) (uint32, fuse.Status) {
	n, err := f.fs.disp.Write(context.Background(), f.h, data, off)
	if err != nil {
		return 0, toStatus(err)
	}
	return uint32(n), fuse.OK
}

// Truncate shrinks this already-open handle's staging buffer. It must
// not go through Dispatcher.Truncate: Open already holds this path's
// write lock for the lifetime of the handle, and that lock is not
// reentrant.
func (f *file) Truncate(size uint64) fuse.Status {
	return toStatus(f.fs.disp.TruncateOpen(context.Background(), f.h, int64(size)))
}

func (f *file) GetAttr(out *fuse.Attr) fuse.Status {
	rec, err := f.fs.ns.GetAttr(context.Background(), f.h.Path())
	if err != nil {
		return toStatus(err)
	}
	*out = toAttr(rec, f.fs.ns.UID(), f.fs.ns.GID())
	return fuse.OK
}

// Release promotes a writable handle's staged buffer into a new durable
// version. nodefs.File.Release returns nothing, so a failure here is
// only logged; the FileRecord keeps its previous current_version.
func (f *file) Release() {
	if err := f.fs.disp.Release(context.Background(), f.h); err != nil {
		f.fs.log.Warnw("release failed to commit staged write", "path", f.h.Path(), "error", err)
	}
}
