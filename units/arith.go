package units

import (
	"fmt"
	"math"
)

// Add returns q + o expressed in q's unit.
func Add(q, o Quantity) (Quantity, error) { return additive(q, o, 1) }

// Sub returns q - o expressed in q's unit.
func Sub(q, o Quantity) (Quantity, error) { return additive(q, o, -1) }

func additive(q, o Quantity, sign float64) (Quantity, error) {
	c, err := o.To(q.unit)
	if err != nil {
		return Quantity{}, err
	}
	if q.kind == KindInt && c.kind == KindInt {
		return Int(q.i+int64(sign)*c.i, q.unit), nil
	}
	return elementwise(q, c, q.unit, func(a, b float64) float64 { return a + sign*b })
}

// Mul returns q * o with the product unit.
func Mul(q, o Quantity) (Quantity, error) {
	u := q.unit.Mul(o.unit)
	if q.kind == KindInt && o.kind == KindInt {
		return Int(q.i*o.i, u), nil
	}
	return elementwise(q, o, u, func(a, b float64) float64 { return a * b })
}

// Div returns q / o with the quotient unit. The magnitude is always float.
func Div(q, o Quantity) (Quantity, error) {
	u := q.unit.Div(o.unit)
	return elementwise(q.CastFloat(), o.CastFloat(), u, func(a, b float64) float64 { return a / b })
}

// Scale multiplies the magnitude by k.
func Scale(q Quantity, k float64) Quantity {
	switch q.kind {
	case KindArray:
		return FromArray(q.arr.Map(func(v float64) float64 { return v * k }, Float64), q.unit)
	default:
		return Float(q.FloatValue()*k, q.unit)
	}
}

// Pow raises q to an integer power.
func Pow(q Quantity, n int) Quantity {
	u := q.unit.Pow(n)
	switch q.kind {
	case KindArray:
		return FromArray(q.arr.Map(func(v float64) float64 { return math.Pow(v, float64(n)) }, Float64), u)
	case KindInt:
		if n >= 0 {
			out := int64(1)
			for i := 0; i < n; i++ {
				out *= q.i
			}
			return Int(out, u)
		}
	}
	return Float(math.Pow(q.FloatValue(), float64(n)), u)
}

// elementwise combines scalars with scalars, arrays with same-shaped arrays,
// and a scalar with every element of an array.
func elementwise(q, o Quantity, u Unit, f func(a, b float64) float64) (Quantity, error) {
	switch {
	case q.kind != KindArray && o.kind != KindArray:
		return Float(f(q.FloatValue(), o.FloatValue()), u), nil
	case q.kind == KindArray && o.kind == KindArray:
		if !q.arr.SameShape(o.arr) {
			return Quantity{}, shapeError("operands have shapes %v and %v", q.arr.shape, o.arr.shape)
		}
		out := q.arr.Map(func(v float64) float64 { return v }, Float64)
		for i := range out.data {
			out.data[i] = f(q.arr.data[i], o.arr.data[i])
		}
		return FromArray(out, u), nil
	case q.kind == KindArray:
		s := o.FloatValue()
		return FromArray(q.arr.Map(func(v float64) float64 { return f(v, s) }, Float64), u), nil
	case o.kind == KindArray:
		s := q.FloatValue()
		return FromArray(o.arr.Map(func(v float64) float64 { return f(s, v) }, Float64), u), nil
	}
	return Quantity{}, fmt.Errorf("units: unsupported operands")
}
