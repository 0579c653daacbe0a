package fuseadapter

import (
	"syscall"

	"github.com/hanwen/go-fuse/v2/fuse"

	ndnerrors "github.com/Anson14/ndnfs-d/pkg/errors"
)

// toStatus maps the pkg/errors taxonomy onto the errno FUSE reports to
// the kernel. A nil error is the only way to produce fuse.OK.
func toStatus(err error) fuse.Status {
	switch {
	case err == nil:
		return fuse.OK
	case ndnerrors.IsNotFoundError(err):
		return fuse.ENOENT
	case ndnerrors.IsCollisionError(err):
		return fuse.Status(syscall.EEXIST)
	case ndnerrors.IsInvalidError(err):
		return fuse.EINVAL
	case ndnerrors.IsUnsupportedError(err):
		return fuse.ENOSYS
	case ndnerrors.IsPersistenceError(err):
		return fuse.EIO
	case ndnerrors.IsSigningError(err):
		return fuse.EIO
	default:
		return fuse.EIO
	}
}
