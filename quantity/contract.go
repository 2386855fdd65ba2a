package quantity

import (
	"math"

	qs "github.com/reoring/qskema"
	"github.com/reoring/qskema/units"
)

// ContractKind selects how a coerced quantity is checked against a field's unit.
type ContractKind int

const (
	// ExactCoerce converts compatible quantities into the declared unit and
	// casts the magnitude to the declared numeric kind.
	ExactCoerce ContractKind = iota
	// DimensionOnly accepts any unit of the same dimensionality and leaves
	// the quantity untouched.
	DimensionOnly
)

func (k ContractKind) String() string {
	if k == DimensionOnly {
		return "dimension"
	}
	return "coerce"
}

// Numeric is the magnitude kind a field stores.
type Numeric int

const (
	NumericAny Numeric = iota
	NumericInt
	NumericFloat
	NumericArray
)

func (n Numeric) String() string {
	switch n {
	case NumericInt:
		return "Int"
	case NumericFloat:
		return "Float"
	case NumericArray:
		return "Array"
	default:
		return "Any"
	}
}

// Contract binds a target unit to a checking rule and a numeric kind.
type Contract struct {
	Kind    ContractKind
	Unit    units.Unit
	Numeric Numeric
}

// ImplicitUnit reports whether bare numbers may be tagged with the contract
// unit. Coercing contracts always allow it; dimension contracts only when
// the unit is dimensionless.
func (c Contract) ImplicitUnit() bool {
	return c.Kind == ExactCoerce || c.Unit.IsDimensionless()
}

// Apply enforces the contract on a coerced quantity.
func (c Contract) Apply(q units.Quantity) (units.Quantity, error) {
	if err := checkFinite(q); err != nil {
		return units.Quantity{}, err
	}
	if c.Kind == DimensionOnly {
		if err := CheckDimensionality(q, c.Unit); err != nil {
			return units.Quantity{}, err
		}
		return q, nil
	}
	if err := c.checkShape(q); err != nil {
		return units.Quantity{}, err
	}
	if q.Unit().Equal(c.Unit) {
		return c.cast(q)
	}
	if !q.IsCompatibleWith(c.Unit) {
		return units.Quantity{}, qs.NewUnitError(qs.IncompatibleUnit,
			"Cannot convert `Quantity` with units %s to %s.", q.Unit(), c.Unit)
	}
	conv, err := q.To(c.Unit)
	if err != nil {
		return units.Quantity{}, qs.WrapUnitError(qs.IncompatibleUnit, err,
			"Cannot convert `Quantity` with units %s to %s.", q.Unit(), c.Unit)
	}
	return c.cast(conv)
}

// Check verifies an already typed value without converting it: exact
// contracts need the declared unit and numeric kind, dimension contracts a
// compatible unit.
func (c Contract) Check(q units.Quantity) error {
	if err := checkFinite(q); err != nil {
		return err
	}
	if c.Kind == DimensionOnly {
		return CheckDimensionality(q, c.Unit)
	}
	if err := c.checkShape(q); err != nil {
		return err
	}
	if !q.Unit().Equal(c.Unit) {
		return qs.NewUnitError(qs.IncompatibleUnit, "expected units %s, got %s", c.Unit, q.Unit())
	}
	switch {
	case c.Numeric == NumericInt && q.Kind() != units.KindInt,
		c.Numeric == NumericFloat && q.Kind() != units.KindFloat:
		return qs.NewUnitError(qs.UnitValidation, "expected %s magnitude, got %s", c.Numeric, q.Kind())
	}
	return nil
}

func (c Contract) checkShape(q units.Quantity) error {
	switch c.Numeric {
	case NumericInt, NumericFloat:
		if q.IsArray() {
			return qs.NewUnitError(qs.UnitValidation, "expected a scalar quantity, got an array of shape %v", q.Array().Shape())
		}
	case NumericArray:
		if !q.IsArray() {
			return qs.NewUnitError(qs.UnitValidation, "expected an array quantity, got a %s scalar", q.Kind())
		}
	}
	return nil
}

// cast converts the magnitude to the contract's numeric kind. Conversion
// can overflow, so finiteness is checked again.
func (c Contract) cast(q units.Quantity) (units.Quantity, error) {
	if err := checkFinite(q); err != nil {
		return units.Quantity{}, err
	}
	switch c.Numeric {
	case NumericInt:
		if err := checkIntRange(q); err != nil {
			return units.Quantity{}, err
		}
		return q.CastInt(), nil
	case NumericFloat:
		return q.CastFloat(), nil
	default:
		return q, nil
	}
}

// maxInt64Float is 2^63, the first float64 outside the int64 range.
const maxInt64Float = 1 << 63

func checkFinite(q units.Quantity) error {
	for _, v := range floatMagnitudes(q) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return qs.NewUnitError(qs.UnitValidation, "magnitude %v is not a finite number", v)
		}
	}
	return nil
}

func checkIntRange(q units.Quantity) error {
	for _, v := range floatMagnitudes(q) {
		if math.Abs(v) >= maxInt64Float {
			return qs.NewUnitError(qs.UnitValidation, "magnitude %v does not fit in a 64-bit integer", v)
		}
	}
	return nil
}

func floatMagnitudes(q units.Quantity) []float64 {
	switch q.Kind() {
	case units.KindFloat:
		return []float64{q.FloatValue()}
	case units.KindArray:
		if q.Array() == nil {
			return nil
		}
		return q.Array().Data()
	}
	return nil
}

// CheckDimensionality fails unless q can be expressed in u.
func CheckDimensionality(q units.Quantity, u units.Unit) error {
	if q.IsCompatibleWith(u) {
		return nil
	}
	return qs.NewUnitError(qs.IncompatibleUnit, "Dimensionality must be compatible with unit %s", u)
}
