package qskema

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeUnknownKey    = "unknown_key"
	CodeDuplicateKey  = "duplicate_key"
	CodeInvalidFormat = "invalid_format"
	CodeParseError    = "parse_error"
	CodeTruncated     = "truncated"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	// Quantity fields
	CodeMissingUnit       = "missing_unit"
	CodeUnitValidation    = "unit_validation"
	CodeIncompatibleUnit  = "incompatible_unit"
	CodeUnsupportedExport = "unsupported_export"
)

var (
	// ErrUnitValidation marks input that could not be coerced into a quantity.
	ErrUnitValidation = errors.New("unit validation failed")
	// ErrIncompatibleUnit marks a quantity whose unit cannot satisfy the
	// field's unit or dimensionality. It also matches ErrUnitValidation.
	ErrIncompatibleUnit = fmt.Errorf("%w: incompatible unit", ErrUnitValidation)
	// ErrMissingUnit marks a bare number where the field needs an explicit unit.
	ErrMissingUnit = errors.New("missing unit")
	// ErrUnsupportedExport marks a quantity the wire format cannot represent.
	ErrUnsupportedExport = errors.New("unsupported export")
)

// UnitErrorKind classifies a UnitError.
type UnitErrorKind int

const (
	UnitValidation UnitErrorKind = iota
	IncompatibleUnit
	MissingUnit
	UnsupportedExport
)

// Code returns the Issue code for the kind.
func (k UnitErrorKind) Code() string {
	switch k {
	case IncompatibleUnit:
		return CodeIncompatibleUnit
	case MissingUnit:
		return CodeMissingUnit
	case UnsupportedExport:
		return CodeUnsupportedExport
	default:
		return CodeUnitValidation
	}
}

func (k UnitErrorKind) sentinel() error {
	switch k {
	case IncompatibleUnit:
		return ErrIncompatibleUnit
	case MissingUnit:
		return ErrMissingUnit
	case UnsupportedExport:
		return ErrUnsupportedExport
	default:
		return ErrUnitValidation
	}
}

// UnitError is the concrete error raised while coercing, checking or
// encoding a quantity. errors.Is matches it against the sentinel of its kind
// and against Cause.
type UnitError struct {
	Kind  UnitErrorKind
	Msg   string
	Cause error
}

// NewUnitError formats a UnitError of the given kind.
func NewUnitError(kind UnitErrorKind, format string, a ...any) *UnitError {
	return &UnitError{Kind: kind, Msg: fmt.Sprintf(format, a...)}
}

// WrapUnitError is NewUnitError with an underlying cause.
func WrapUnitError(kind UnitErrorKind, cause error, format string, a ...any) *UnitError {
	return &UnitError{Kind: kind, Msg: fmt.Sprintf(format, a...), Cause: cause}
}

func (e *UnitError) Error() string {
	if e.Cause != nil && e.Msg == "" {
		return e.Cause.Error()
	}
	return e.Msg
}

func (e *UnitError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind.sentinel(), e.Cause}
	}
	return []error{e.Kind.sentinel()}
}

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /box_vectors).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, expected unit, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"unit": "angstrom"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			fmt.Fprintf(b, ": %s", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes of every issue so errors.Is and errors.As see
// through an Issues value.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// AsUnitError extracts the first *UnitError from err, looking inside Issues.
func AsUnitError(err error) (*UnitError, bool) {
	var ue *UnitError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
