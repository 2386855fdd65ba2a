package units

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrUndefinedUnit is wrapped by errors for names missing from the registry.
	ErrUndefinedUnit = errors.New("units: undefined unit")
	// ErrSyntax is wrapped by errors for malformed unit or quantity strings.
	ErrSyntax = errors.New("units: syntax error")
	// ErrDimensionality is wrapped by errors for conversions between incompatible units.
	ErrDimensionality = errors.New("units: incompatible dimensionality")
	// ErrShape is wrapped by errors for arrays with mismatched or ragged shapes.
	ErrShape = errors.New("units: shape mismatch")
)

// UndefinedUnitError names a unit the registry could not resolve.
type UndefinedUnitError struct {
	Name string
}

func (e *UndefinedUnitError) Error() string {
	return fmt.Sprintf("'%s' is not defined in the unit registry", e.Name)
}

func (e *UndefinedUnitError) Unwrap() error { return ErrUndefinedUnit }

// SyntaxError reports where a unit or quantity expression failed to parse.
type SyntaxError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("cannot parse %q at offset %d: %s", e.Input, e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// DimensionalityError is returned when converting between units whose
// dimensions differ.
type DimensionalityError struct {
	From Unit
	To   Unit
}

func (e *DimensionalityError) Error() string {
	return fmt.Sprintf("cannot convert from '%s' (%s) to '%s' (%s)", e.From, e.From.Dimension(), e.To, e.To.Dimension())
}

func (e *DimensionalityError) Unwrap() error { return ErrDimensionality }

func shapeError(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrShape, fmt.Sprintf(format, a...))
}

func itoa(i int) string { return strconv.Itoa(i) }
