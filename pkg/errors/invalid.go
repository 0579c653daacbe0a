package errors

// InvalidError is a specialized error type for operations that are
// structurally disallowed regardless of the current state of any
// particular path: rmdir on root, a path that would collide with the
// `.segtemp` staging namespace, or a malformed configuration value.
type InvalidError struct {
	// Embed the base error to inherit all standard error functionality
	// including error chaining, structured details, and error codes.
	*baseError

	// operation names the operation that was rejected, e.g. "rmdir", "open".
	operation string

	// reason is a short machine-checkable tag for why the operation was
	// rejected ("root", "segtemp-suffix", "length-exceeds-size").
	reason string

	// provided captures the offending value, when there is one worth
	// recording (an offset, a length, a path).
	provided any
}

// NewInvalidError creates a new invalid-operation error with the provided context.
func NewInvalidError(err error, msg string) *InvalidError {
	return &InvalidError{baseError: NewBaseError(err, ErrorCodeInvalid, msg)}
}

// WithOperation records which operation was rejected.
func (ie *InvalidError) WithOperation(operation string) *InvalidError {
	ie.operation = operation
	return ie
}

// WithReason records the machine-checkable reason for rejection.
func (ie *InvalidError) WithReason(reason string) *InvalidError {
	ie.reason = reason
	return ie
}

// WithProvided captures the offending value.
func (ie *InvalidError) WithProvided(value any) *InvalidError {
	ie.provided = value
	return ie
}

// WithDetail adds contextual information while maintaining the InvalidError type.
func (ie *InvalidError) WithDetail(key string, value any) *InvalidError {
	ie.baseError.WithDetail(key, value)
	return ie
}

// Operation returns the operation that was rejected.
func (ie *InvalidError) Operation() string {
	return ie.operation
}

// Reason returns the machine-checkable rejection reason.
func (ie *InvalidError) Reason() string {
	return ie.reason
}

// Provided returns the offending value, if one was recorded.
func (ie *InvalidError) Provided() any {
	return ie.provided
}

// NewRootRmdirError reports an attempt to rmdir the filesystem root.
func NewRootRmdirError() *InvalidError {
	return NewInvalidError(nil, "cannot remove root directory").
		WithOperation("rmdir").
		WithReason("root")
}

// NewRootOperationError reports an attempt to perform operation on the
// filesystem root where root is structurally disallowed as a subject,
// e.g. renaming it.
func NewRootOperationError(operation string) *InvalidError {
	return NewInvalidError(nil, "operation not permitted on root directory").
		WithOperation(operation).
		WithReason("root")
}

// NewStagingCollisionError reports a path whose name would collide with the
// `.segtemp` staging namespace.
func NewStagingCollisionError(path, operation string) *InvalidError {
	return NewInvalidError(nil, "path would collide with staging namespace").
		WithOperation(operation).
		WithReason("segtemp-suffix").
		WithProvided(path)
}

// NewConfigurationError reports a malformed configuration value.
func NewConfigurationError(field, issue string) *InvalidError {
	return NewInvalidError(nil, "configuration validation failed").
		WithOperation("configure").
		WithReason("bad-config").
		WithDetail("field", field).
		WithDetail("issue", issue)
}
