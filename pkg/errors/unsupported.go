package errors

// UnsupportedError reports an operation the core deliberately does not
// perform: opening a path inside the `.segtemp` staging namespace, or
// writing or truncating through a read-only handle.
type UnsupportedError struct {
	*baseError
	operation string
}

// NewUnsupportedError creates a new unsupported-operation error.
func NewUnsupportedError(err error, msg string) *UnsupportedError {
	return &UnsupportedError{baseError: NewBaseError(err, ErrorCodeUnsupported, msg)}
}

// WithOperation records which operation was rejected as unsupported.
func (ue *UnsupportedError) WithOperation(operation string) *UnsupportedError {
	ue.operation = operation
	return ue
}

// WithDetail adds contextual information while maintaining the UnsupportedError type.
func (ue *UnsupportedError) WithDetail(key string, value any) *UnsupportedError {
	ue.baseError.WithDetail(key, value)
	return ue
}

// Operation returns the operation that was rejected.
func (ue *UnsupportedError) Operation() string {
	return ue.operation
}

// NewOperationUnsupportedError is a convenience constructor.
func NewOperationUnsupportedError(operation string) *UnsupportedError {
	return NewUnsupportedError(nil, "operation not supported").WithOperation(operation)
}
