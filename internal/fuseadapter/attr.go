package fuseadapter

import (
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/Anson14/ndnfs-d/internal/metastore"
)

// blockSize is the block size reported in fuse.Attr.Blocks, matching the
// value most kernels assume when none is given.
const blockSize = 512

// toAttr renders a FileRecord as the fuse.Attr the kernel expects from
// getattr/lookup. mtime/ctime are derived from current_version, itself a
// unix-seconds stamp, so repeated stats of an unchanged file are stable;
// atime is the stored FileRecord.Atime column, which no operation in
// this core updates after creation.
func toAttr(f metastore.FileRecord, uid, gid uint32) fuse.Attr {
	var a fuse.Attr
	a.Mode = f.Mode
	a.Size = uint64(f.Size)
	a.Nlink = f.Nlink
	if a.Nlink == 0 {
		a.Nlink = 1
	}
	a.Blocks = (a.Size + blockSize - 1) / blockSize
	a.Owner = fuse.Owner{Uid: uid, Gid: gid}

	mtime := uint64(f.CurrentVersion)
	a.Atime = uint64(f.Atime)
	a.Mtime, a.Ctime = mtime, mtime
	return a
}
