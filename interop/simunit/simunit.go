// Package simunit models the unit-tagged values handed out by molecular
// simulation toolkits: a value (scalar, sequence or Vec3) paired with a unit
// name. Importing the package registers an adapter with the default quantity
// registry, so fields accept these values directly:
//
//	import _ "github.com/reoring/qskema/interop/simunit"
package simunit

import (
	"fmt"

	qs "github.com/reoring/qskema"
	"github.com/reoring/qskema/quantity"
	"github.com/reoring/qskema/units"
)

// AdapterName is the name the adapter registers under.
const AdapterName = "simunit"

// Vec3 is a three-component vector, the row type of periodic box vectors.
type Vec3 struct{ X, Y, Z float64 }

// Quantity is a value tagged with a unit name such as "nanometer" or
// "kilojoule/mole". Value holds a number, a Vec3, or a slice of either.
type Quantity struct {
	Value any
	Unit  string
}

// New tags v with unit.
func New(v any, unit string) Quantity { return Quantity{Value: v, Unit: unit} }

func (q Quantity) String() string { return fmt.Sprintf("Quantity(value=%v, unit=%s)", q.Value, q.Unit) }

func init() {
	quantity.Register(quantity.AdapterFunc(AdapterName, Adapt))
}

// Adapt converts a Quantity or *Quantity. Integer scalars stay integers,
// float scalars stay floats, and sequences and Vec3 values become float
// arrays. Other values are not claimed.
func Adapt(v any) (units.Quantity, bool, error) {
	var q Quantity
	switch t := v.(type) {
	case Quantity:
		q = t
	case *Quantity:
		if t == nil {
			return units.Quantity{}, false, nil
		}
		q = *t
	default:
		return units.Quantity{}, false, nil
	}
	u, err := units.ParseUnit(q.Unit)
	if err != nil {
		return units.Quantity{}, true, qs.WrapUnitError(qs.UnitValidation, err, "simunit: unit %q: %v", q.Unit, err)
	}
	out, err := convert(q.Value, u)
	if err != nil {
		return units.Quantity{}, true, err
	}
	return out, true, nil
}

func convert(v any, u units.Unit) (units.Quantity, error) {
	switch t := v.(type) {
	case int:
		return units.Int(int64(t), u), nil
	case int32:
		return units.Int(int64(t), u), nil
	case int64:
		return units.Int(t, u), nil
	case float32:
		return units.Float(float64(t), u), nil
	case float64:
		return units.Float(t, u), nil
	case Vec3:
		return units.FromArray(units.Floats(t.X, t.Y, t.Z), u), nil
	case []Vec3:
		rows := make([][]float64, len(t))
		for i, r := range t {
			rows[i] = []float64{r.X, r.Y, r.Z}
		}
		return matrix(rows, u)
	case []float64, []int, []int64, [][]float64, [][]int, []any:
		a, err := units.ArrayFrom(flattenVec3(t))
		if err != nil {
			return units.Quantity{}, qs.WrapUnitError(qs.UnitValidation, err, "simunit: %v", err)
		}
		return units.FromArray(a.AsType(units.Float64), u), nil
	}
	return units.Quantity{}, qs.NewUnitError(qs.UnitValidation, "simunit: unsupported value of type %T", v)
}

func matrix(rows [][]float64, u units.Unit) (units.Quantity, error) {
	if len(rows) == 0 {
		return units.FromArray(units.Floats(), u), nil
	}
	a, err := units.Matrix(rows...)
	if err != nil {
		return units.Quantity{}, qs.WrapUnitError(qs.UnitValidation, err, "simunit: %v", err)
	}
	return units.FromArray(a, u), nil
}

// flattenVec3 replaces Vec3 elements of a []any with their components.
func flattenVec3(v any) any {
	s, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]any, len(s))
	for i, e := range s {
		if vec, ok := e.(Vec3); ok {
			out[i] = []float64{vec.X, vec.Y, vec.Z}
			continue
		}
		out[i] = e
	}
	return out
}

// FromQuantity converts a canonical quantity back into the toolkit form.
// Array magnitudes of shape (n, 3) become []Vec3, other arrays []float64
// row-major data.
func FromQuantity(q units.Quantity) Quantity {
	unit := q.Units()
	switch q.Kind() {
	case units.KindInt:
		return Quantity{Value: int(q.IntValue()), Unit: unit}
	case units.KindFloat:
		return Quantity{Value: q.FloatValue(), Unit: unit}
	}
	a := q.Array()
	shape := a.Shape()
	if len(shape) == 2 && shape[1] == 3 {
		vecs := make([]Vec3, shape[0])
		for i := range vecs {
			vecs[i] = Vec3{X: a.At(i, 0), Y: a.At(i, 1), Z: a.At(i, 2)}
		}
		return Quantity{Value: vecs, Unit: unit}
	}
	return Quantity{Value: a.Data(), Unit: unit}
}
