// Package arrayunit models quantities from array libraries that attach a
// unit to a scalar or an n-dimensional array. Importing the package
// registers an adapter with the default quantity registry.
//
// Scalars are always stored as floats and arrays as float arrays,
// regardless of the element type they were built from.
package arrayunit

import (
	qs "github.com/reoring/qskema"
	"github.com/reoring/qskema/quantity"
	"github.com/reoring/qskema/units"
)

// AdapterName is the name the adapter registers under.
const AdapterName = "arrayunit"

// Value is implemented by unit-carrying values of an array library.
type Value interface {
	// Units names the unit, for example "cm" or "kg".
	Units() string
	// ToValue returns the bare magnitude: a number or a (nested) slice.
	ToValue() any
}

// Scalar is a single unit-carrying number.
type Scalar struct {
	V    float64
	Unit string
}

func (s Scalar) Units() string { return s.Unit }
func (s Scalar) ToValue() any  { return s.V }

// Array is a unit-carrying array. Data is any numeric slice, nested for
// more than one dimension.
type Array struct {
	Data any
	Unit string
}

func (a Array) Units() string { return a.Unit }
func (a Array) ToValue() any  { return a.Data }

// Of builds a Scalar or an Array depending on v.
func Of(v any, unit string) Value {
	switch t := v.(type) {
	case float64:
		return Scalar{V: t, Unit: unit}
	case int:
		return Scalar{V: float64(t), Unit: unit}
	}
	return Array{Data: v, Unit: unit}
}

func init() {
	quantity.Register(quantity.AdapterFunc(AdapterName, Adapt))
}

// Adapt claims any Value.
func Adapt(v any) (units.Quantity, bool, error) {
	av, ok := v.(Value)
	if !ok {
		return units.Quantity{}, false, nil
	}
	u, err := units.ParseUnit(av.Units())
	if err != nil {
		return units.Quantity{}, true, qs.WrapUnitError(qs.UnitValidation, err, "arrayunit: unit %q: %v", av.Units(), err)
	}
	switch m := av.ToValue().(type) {
	case float64:
		return units.Float(m, u), true, nil
	case float32:
		return units.Float(float64(m), u), true, nil
	case int:
		return units.Float(float64(m), u), true, nil
	case int64:
		return units.Float(float64(m), u), true, nil
	case nil:
		return units.Quantity{}, true, qs.NewUnitError(qs.UnitValidation, "arrayunit: value without a magnitude")
	default:
		a, err := units.ArrayFrom(m)
		if err != nil {
			return units.Quantity{}, true, qs.WrapUnitError(qs.UnitValidation, err, "arrayunit: %v", err)
		}
		return units.FromArray(a.AsType(units.Float64), u), true, nil
	}
}

// From converts a canonical quantity into the array-library form.
func From(q units.Quantity) Value {
	if q.IsArray() {
		return Array{Data: q.Array().AsType(units.Float64).Nested(), Unit: q.Units()}
	}
	return Scalar{V: q.FloatValue(), Unit: q.Units()}
}
