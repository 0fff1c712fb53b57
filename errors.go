package tether

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrReadOnlyField indicates a write to an extra (non-fillable) field.
	ErrReadOnlyField = errors.New("read-only field")

	// ErrReadOnlyRelation indicates a write to an association.
	ErrReadOnlyRelation = errors.New("read-only relation")

	// ErrUnknownField indicates a field name the record does not know.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidValue indicates a value that cannot be stored in a field.
	ErrInvalidValue = errors.New("invalid value")

	// ErrUnknownOperation indicates the endpoint map lacks the operation.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrUnresolvedParam indicates a URL placeholder with no truthy field.
	ErrUnresolvedParam = errors.New("unresolved url parameter")

	// ErrInvalidSchema indicates a record type declaration is malformed.
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrNoTransport indicates a network operation on a record without a transport.
	ErrNoTransport = errors.New("no transport")

	// ErrUnboundRelation indicates a HasOne that is not attached to a record.
	ErrUnboundRelation = errors.New("unbound relation")

	// ErrTransport indicates the transport failed to complete a request.
	ErrTransport = errors.New("transport failed")

	// ErrUnmarshal indicates the codec failed to unmarshal input data.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrMarshal indicates the codec failed to marshal output data.
	ErrMarshal = errors.New("marshal failed")
)

// FieldError represents a rejected field access.
type FieldError struct {
	Err   error  // Underlying sentinel error (ErrReadOnlyField, etc.)
	Type  string // Record type name
	Field string // Field or relation name
	Cause error  // Conversion failure, if any
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("%s: %s.%s", e.Err.Error(), e.Type, e.Field)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// RouteError represents a failure to build a URL for an operation.
type RouteError struct {
	Err       error  // ErrUnknownOperation or ErrUnresolvedParam
	Operation string // Operation that was requested
	Param     string // Unresolved placeholder, if any
}

func (e *RouteError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s %q for operation %q", e.Err.Error(), e.Param, e.Operation)
	}
	return fmt.Sprintf("%s %q", e.Err.Error(), e.Operation)
}

func (e *RouteError) Unwrap() error {
	return e.Err
}

// SchemaError represents a malformed record type declaration.
type SchemaError struct {
	Type   string // Record type name
	Field  string // Offending field
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s.%s: %s", ErrInvalidSchema.Error(), e.Type, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidSchema.Error(), e.Type, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrInvalidSchema
}

// TransportError represents a failed request. Status and Body are set when a
// response was received; Cause is set when the request never completed or
// its body could not be decoded.
type TransportError struct {
	Method string
	URL    string
	Status int
	Body   []byte
	Cause  error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("%s %s %s: status %d", ErrTransport.Error(), e.Method, e.URL, e.Status)
	case e.Cause != nil:
		return fmt.Sprintf("%s %s %s: %v", ErrTransport.Error(), e.Method, e.URL, e.Cause)
	}
	return fmt.Sprintf("%s %s %s", ErrTransport.Error(), e.Method, e.URL)
}

func (e *TransportError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrTransport, e.Cause}
	}
	return []error{ErrTransport}
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

func newFieldError(sentinel error, typeName, field string, cause error) error {
	return &FieldError{
		Err:   sentinel,
		Type:  typeName,
		Field: field,
		Cause: cause,
	}
}

func newRouteError(sentinel error, operation, param string) error {
	return &RouteError{
		Err:       sentinel,
		Operation: operation,
		Param:     param,
	}
}

// NewCodecError creates a CodecError for marshal/unmarshal failures.
// Transports use it to report codec failures uniformly.
func NewCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}
