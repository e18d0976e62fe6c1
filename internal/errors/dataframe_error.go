// Package errors provides standardized error types for frame and codec operations.
// Every failure surfaced by the library is a *DataFrameError carrying a Kind, so
// callers can branch on the condition with errors.Is against the Err* sentinels
// or with KindOf.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a DataFrameError.
type Kind int

const (
	// KindUnknown is the zero Kind.
	KindUnknown Kind = iota
	// PreconditionViolation reports caller errors such as mask/length mismatches.
	PreconditionViolation
	// TypeMismatch reports a value whose tag disagrees with the requested type.
	TypeMismatch
	// SchemaViolation reports rows that disagree with an open table schema.
	SchemaViolation
	// CorruptFile reports bad magic, truncated footers or out-of-bounds offsets.
	CorruptFile
	// StateError reports operations invoked on a handle in the wrong mode.
	StateError
	// IndexOutOfRange reports row indices outside a column.
	IndexOutOfRange
	// ColumnNotFound reports lookups of non-existent columns.
	ColumnNotFound
	// Unsupported reports element or file types the library cannot handle.
	Unsupported
	// Internal reports failures of the underlying I/O or runtime.
	Internal
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	PreconditionViolation: "precondition violation",
	TypeMismatch:          "type mismatch",
	SchemaViolation:       "schema violation",
	CorruptFile:           "corrupt file",
	StateError:            "state error",
	IndexOutOfRange:       "index out of range",
	ColumnNotFound:        "column not found",
	Unsupported:           "unsupported",
	Internal:              "internal error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// DataFrameError represents standardized errors across all operations
type DataFrameError struct {
	Op      string // Operation name (e.g., "Filter", "OpenForReading")
	Column  string // Column name if applicable
	Message string // Human-readable error description
	Kind    Kind   // Condition class
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *DataFrameError) Error() string {
	var msg string
	switch {
	case e.Op == "":
		msg = e.Message
	case e.Column != "":
		msg = fmt.Sprintf("%s operation failed on column '%s': %s", e.Op, e.Column, e.Message)
	default:
		msg = fmt.Sprintf("%s operation failed: %s", e.Op, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error wrapping support
func (e *DataFrameError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is().
// A target without an Op is a kind sentinel and matches any error of that Kind.
func (e *DataFrameError) Is(target error) bool {
	df, ok := target.(*DataFrameError)
	if !ok {
		return false
	}
	if df.Op == "" {
		return e.Kind == df.Kind
	}
	return e.Op == df.Op && e.Column == df.Column && e.Message == df.Message && e.Kind == df.Kind
}

// KindOf returns the Kind of the first DataFrameError in err's chain.
func KindOf(err error) Kind {
	var df *DataFrameError
	if stderrors.As(err, &df) {
		return df.Kind
	}
	return KindUnknown
}

// Sentinels for errors.Is checks by condition.
var (
	ErrPreconditionViolation = &DataFrameError{Kind: PreconditionViolation, Message: PreconditionViolation.String()}
	ErrTypeMismatch          = &DataFrameError{Kind: TypeMismatch, Message: TypeMismatch.String()}
	ErrSchemaViolation       = &DataFrameError{Kind: SchemaViolation, Message: SchemaViolation.String()}
	ErrCorruptFile           = &DataFrameError{Kind: CorruptFile, Message: CorruptFile.String()}
	ErrStateError            = &DataFrameError{Kind: StateError, Message: StateError.String()}
	ErrIndexOutOfRange       = &DataFrameError{Kind: IndexOutOfRange, Message: IndexOutOfRange.String()}
	ErrColumnNotFound        = &DataFrameError{Kind: ColumnNotFound, Message: ColumnNotFound.String()}
	ErrUnsupported           = &DataFrameError{Kind: Unsupported, Message: Unsupported.String()}
)

// NewPreconditionError creates an error for caller-side contract violations
func NewPreconditionError(op, message string) *DataFrameError {
	return &DataFrameError{Op: op, Message: message, Kind: PreconditionViolation}
}

// NewValidationError creates an error for input validation failures
func NewValidationError(op, column, message string) *DataFrameError {
	return &DataFrameError{Op: op, Column: column, Message: message, Kind: PreconditionViolation}
}

// NewTypeMismatchError creates an error for value/column tag disagreement
func NewTypeMismatchError(op, column, expected, actual string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Column:  column,
		Message: fmt.Sprintf("expected %s, got %s", expected, actual),
		Kind:    TypeMismatch,
	}
}

// NewSchemaError creates an error for rows that disagree with a table schema
func NewSchemaError(op, column, message string) *DataFrameError {
	return &DataFrameError{Op: op, Column: column, Message: message, Kind: SchemaViolation}
}

// NewCorruptFileError creates an error for structurally damaged table files
func NewCorruptFileError(op, message string, cause error) *DataFrameError {
	return &DataFrameError{Op: op, Message: message, Kind: CorruptFile, Cause: cause}
}

// NewStateError creates an error for handles used in the wrong mode
func NewStateError(op, message string) *DataFrameError {
	return &DataFrameError{Op: op, Message: message, Kind: StateError}
}

// NewIndexError creates an error for out-of-bounds index access
func NewIndexError(op, column string, index, length int) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Column:  column,
		Message: fmt.Sprintf("index %d out of range [0, %d)", index, length),
		Kind:    IndexOutOfRange,
	}
}

// NewColumnNotFoundError creates an error for operations on non-existent columns
func NewColumnNotFoundError(op, column string) *DataFrameError {
	return &DataFrameError{Op: op, Column: column, Message: "column does not exist", Kind: ColumnNotFound}
}

// NewUnsupportedTypeError creates an error for unsupported data types
func NewUnsupportedTypeError(op, typeName string) *DataFrameError {
	return &DataFrameError{Op: op, Message: fmt.Sprintf("unsupported type: %s", typeName), Kind: Unsupported}
}

// NewInternalError creates an error for internal operation failures
func NewInternalError(op string, cause error) *DataFrameError {
	return &DataFrameError{Op: op, Message: "internal error occurred", Kind: Internal, Cause: cause}
}
