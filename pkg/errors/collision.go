package errors

// CollisionError reports that a create-type operation (mkdir, mknod,
// symlink, link, rename-target) targets a path that already has a
// FileRecord.
type CollisionError struct {
	*baseError
	path      string
	operation string
}

// NewCollisionError creates a new collision error with the provided context.
func NewCollisionError(err error, msg string) *CollisionError {
	return &CollisionError{baseError: NewBaseError(err, ErrorCodeCollision, msg)}
}

// WithPath records the path that already existed.
func (ce *CollisionError) WithPath(path string) *CollisionError {
	ce.path = path
	return ce
}

// WithOperation records which operation collided.
func (ce *CollisionError) WithOperation(operation string) *CollisionError {
	ce.operation = operation
	return ce
}

// WithDetail adds contextual information while maintaining the CollisionError type.
func (ce *CollisionError) WithDetail(key string, value any) *CollisionError {
	ce.baseError.WithDetail(key, value)
	return ce
}

// Path returns the path that already existed.
func (ce *CollisionError) Path() string {
	return ce.path
}

// Operation returns the operation that collided.
func (ce *CollisionError) Operation() string {
	return ce.operation
}

// NewPathExistsError is a convenience constructor for the common case of a
// create-type operation finding an existing FileRecord at path.
func NewPathExistsError(path, operation string) *CollisionError {
	return NewCollisionError(nil, "path already exists").
		WithPath(path).
		WithOperation(operation)
}
