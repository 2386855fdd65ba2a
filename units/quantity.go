package units

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Kind is the magnitude kind carried by a Quantity.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Quantity is an immutable magnitude paired with a unit. The magnitude is
// an int64, a float64 or an *Array.
type Quantity struct {
	kind Kind
	i    int64
	f    float64
	arr  *Array
	unit Unit
}

// Int returns an integer quantity.
func Int(v int64, u Unit) Quantity { return Quantity{kind: KindInt, i: v, unit: u} }

// Float returns a floating point quantity.
func Float(v float64, u Unit) Quantity { return Quantity{kind: KindFloat, f: v, unit: u} }

// FromArray returns an array quantity. A nil array is treated as empty.
func FromArray(a *Array, u Unit) Quantity {
	if a == nil {
		a = Floats()
	}
	return Quantity{kind: KindArray, arr: a, unit: u}
}

// New builds a quantity from a Go number or numeric slice and a unit expression.
func New(mag any, unit string) (Quantity, error) {
	u, err := ParseUnit(unit)
	if err != nil {
		return Quantity{}, err
	}
	return NewWithUnit(mag, u)
}

// NewWithUnit is New for an already parsed unit.
func NewWithUnit(mag any, u Unit) (Quantity, error) {
	switch v := mag.(type) {
	case int:
		return Int(int64(v), u), nil
	case int8:
		return Int(int64(v), u), nil
	case int16:
		return Int(int64(v), u), nil
	case int32:
		return Int(int64(v), u), nil
	case int64:
		return Int(v, u), nil
	case uint:
		return Int(int64(v), u), nil
	case uint8:
		return Int(int64(v), u), nil
	case uint16:
		return Int(int64(v), u), nil
	case uint32:
		return Int(int64(v), u), nil
	case uint64:
		if v > math.MaxInt64 {
			return Float(float64(v), u), nil
		}
		return Int(int64(v), u), nil
	case float32:
		return Float(float64(v), u), nil
	case float64:
		return Float(v, u), nil
	case *Array:
		return FromArray(v, u), nil
	}
	rv := reflect.ValueOf(mag)
	if rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
		a, err := ArrayFrom(mag)
		if err != nil {
			return Quantity{}, err
		}
		return FromArray(a, u), nil
	}
	return Quantity{}, fmt.Errorf("units: magnitude of type %T is not numeric", mag)
}

// MustNew is like New but panics on error.
func MustNew(mag any, unit string) Quantity {
	q, err := New(mag, unit)
	if err != nil {
		panic(err)
	}
	return q
}

// Kind reports whether the magnitude is an int, a float or an array.
func (q Quantity) Kind() Kind { return q.kind }

// Unit returns the unit.
func (q Quantity) Unit() Unit { return q.unit }

// Units returns the unit rendered as a string.
func (q Quantity) Units() string { return q.unit.String() }

// IsArray reports whether the magnitude is an array.
func (q Quantity) IsArray() bool { return q.kind == KindArray }

// Magnitude returns the raw magnitude as int64, float64 or *Array.
func (q Quantity) Magnitude() any {
	switch q.kind {
	case KindInt:
		return q.i
	case KindFloat:
		return q.f
	default:
		return q.arr
	}
}

// IntValue returns a scalar magnitude as int64, truncating floats. Arrays return 0.
func (q Quantity) IntValue() int64 {
	switch q.kind {
	case KindInt:
		return q.i
	case KindFloat:
		return int64(q.f)
	default:
		return 0
	}
}

// FloatValue returns a scalar magnitude as float64. Arrays return NaN.
func (q Quantity) FloatValue() float64 {
	switch q.kind {
	case KindInt:
		return float64(q.i)
	case KindFloat:
		return q.f
	default:
		return math.NaN()
	}
}

// Array returns the array magnitude, or nil for scalars.
func (q Quantity) Array() *Array { return q.arr }

// IsCompatibleWith reports whether q can be expressed in u.
func (q Quantity) IsCompatibleWith(u Unit) bool { return q.unit.IsCompatibleWith(u) }

// To converts q to u. Converting to an equal unit returns q unchanged;
// any other conversion yields float magnitudes.
func (q Quantity) To(u Unit) (Quantity, error) {
	if q.unit.Equal(u) {
		return q, nil
	}
	if !q.unit.IsCompatibleWith(u) {
		return Quantity{}, &DimensionalityError{From: q.unit, To: u}
	}
	c := newConverter(q.unit, u)
	switch q.kind {
	case KindInt:
		if c.identity() {
			return Int(q.i, u), nil
		}
		return Float(c.apply(float64(q.i)), u), nil
	case KindFloat:
		return Float(c.apply(q.f), u), nil
	default:
		if c.identity() {
			return FromArray(q.arr, u), nil
		}
		return FromArray(q.arr.Map(c.apply, Float64), u), nil
	}
}

// ConvertTo parses unit and converts q to it.
func (q Quantity) ConvertTo(unit string) (Quantity, error) {
	u, err := ParseUnit(unit)
	if err != nil {
		return Quantity{}, err
	}
	return q.To(u)
}

// ValueIn returns the scalar magnitude of q expressed in u.
func (q Quantity) ValueIn(u Unit) (float64, error) {
	if q.kind == KindArray {
		return 0, fmt.Errorf("units: ValueIn on array quantity")
	}
	c, err := q.To(u)
	if err != nil {
		return 0, err
	}
	return c.FloatValue(), nil
}

// CastInt truncates the magnitude toward zero, keeping the unit.
func (q Quantity) CastInt() Quantity {
	switch q.kind {
	case KindFloat:
		return Int(int64(q.f), q.unit)
	case KindArray:
		return FromArray(q.arr.AsType(Int64), q.unit)
	default:
		return q
	}
}

// CastFloat converts the magnitude to float64 elements, keeping the unit.
func (q Quantity) CastFloat() Quantity {
	switch q.kind {
	case KindInt:
		return Float(float64(q.i), q.unit)
	case KindArray:
		return FromArray(q.arr.AsType(Float64), q.unit)
	default:
		return q
	}
}

// Equal reports whether both quantities denote the same amount. Compatible
// units are converted first, so 0.5 minute equals 30 second; int and float
// magnitudes compare by value.
func (q Quantity) Equal(o Quantity) bool {
	if (q.kind == KindArray) != (o.kind == KindArray) {
		return false
	}
	if !q.unit.IsCompatibleWith(o.unit) {
		return false
	}
	c, err := o.To(q.unit)
	if err != nil {
		return false
	}
	if q.kind == KindArray {
		if c.arr.Equal(q.arr) {
			return true
		}
		return !o.unit.Equal(q.unit) && c.arr.AllClose(q.arr, 1e-12, 0)
	}
	if q.kind == KindInt && c.kind == KindInt {
		return q.i == c.i
	}
	a, b := q.FloatValue(), c.FloatValue()
	if a == b {
		return true
	}
	return !o.unit.Equal(q.unit) && closeTo(a, b, 1e-12, 0)
}

// String renders "<magnitude> <unit>", for example "1.5 nanometer".
func (q Quantity) String() string {
	var mag string
	switch q.kind {
	case KindInt:
		mag = strconv.FormatInt(q.i, 10)
	case KindFloat:
		mag = strconv.FormatFloat(q.f, 'g', -1, 64)
	default:
		mag = q.arr.String()
	}
	return mag + " " + q.unit.String()
}
