package errors

// NotFoundError reports that a path (or its parent) has no FileRecord.
// This structure extends the base error system with path-specific context
// while properly supporting method chaining through all base error methods.
type NotFoundError struct {
	// Embed the base error to inherit all standard error functionality
	// including error chaining, structured details, and error codes.
	*baseError

	// path identifies which path was missing when the error occurred.
	path string

	// operation names the namespace/dispatcher operation being performed,
	// e.g. "mkdir", "getattr", "open".
	operation string
}

// NewNotFoundError creates a new not-found error with the provided context.
func NewNotFoundError(err error, msg string) *NotFoundError {
	return &NotFoundError{baseError: NewBaseError(err, ErrorCodeNotFound, msg)}
}

// Override base error methods to return *NotFoundError instead of *baseError.

// WithMessage updates the error message while maintaining the NotFoundError type.
func (ne *NotFoundError) WithMessage(msg string) *NotFoundError {
	ne.baseError.WithMessage(msg)
	return ne
}

// WithDetail adds contextual information while maintaining the NotFoundError type.
func (ne *NotFoundError) WithDetail(key string, value any) *NotFoundError {
	ne.baseError.WithDetail(key, value)
	return ne
}

// WithPath records which path was missing.
func (ne *NotFoundError) WithPath(path string) *NotFoundError {
	ne.path = path
	return ne
}

// WithOperation records which operation encountered the missing path.
func (ne *NotFoundError) WithOperation(operation string) *NotFoundError {
	ne.operation = operation
	return ne
}

// Path returns the path that was missing.
func (ne *NotFoundError) Path() string {
	return ne.path
}

// Operation returns the operation that was being performed.
func (ne *NotFoundError) Operation() string {
	return ne.operation
}

// NewPathNotFoundError is a convenience constructor for the common case of a
// lookup failing because the FileRecord for path does not exist.
func NewPathNotFoundError(path, operation string) *NotFoundError {
	return NewNotFoundError(nil, "path not found").
		WithPath(path).
		WithOperation(operation)
}

// NewParentNotFoundError is a convenience constructor for create-type
// operations whose parent directory has no FileRecord.
func NewParentNotFoundError(parent, operation string) *NotFoundError {
	return NewNotFoundError(nil, "parent directory not found").
		WithPath(parent).
		WithOperation(operation).
		WithDetail("missing", "parent")
}
