package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Error codes categorize every failure the engine produces into exactly
// one of these before it crosses the FUSE boundary as a negative errno.
const (
	// ErrorCodeNotFound means the path, or its parent, has no FileRecord.
	ErrorCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrorCodeInvalid means the operation is structurally disallowed, e.g.
	// rmdir on root, or a path that would collide with the staging namespace.
	ErrorCodeInvalid ErrorCode = "INVALID"

	// ErrorCodeCollision means a create-type operation targets a path that
	// already has a FileRecord.
	ErrorCodeCollision ErrorCode = "COLLISION"

	// ErrorCodePersistence means the underlying store failed; surfaced as
	// an EIO-equivalent and logged.
	ErrorCodePersistence ErrorCode = "PERSISTENCE"

	// ErrorCodeSigning means the key backend failed to produce a signature.
	// Non-fatal: the segment keeps signature = NONE and remains readable.
	ErrorCodeSigning ErrorCode = "SIGNING"

	// ErrorCodeUnsupported means the operation is one the core
	// deliberately does not perform (opening a staging path, writing or
	// truncating through a read-only handle).
	ErrorCodeUnsupported ErrorCode = "UNSUPPORTED"

	// ErrorCodeInternal is the fallback for failures that don't fit any of
	// the above categories.
	ErrorCodeInternal ErrorCode = "INTERNAL"
)
