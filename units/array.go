package units

import (
	"fmt"
	"math"
	"reflect"
)

// DType is the element kind of an Array.
type DType int

const (
	Float64 DType = iota
	Int64
)

func (d DType) String() string {
	if d == Int64 {
		return "int64"
	}
	return "float64"
}

// Array is an immutable dense n-dimensional block of numbers in row-major
// order. Int64 arrays keep their elements in float64 storage and are exact
// up to 2^53.
type Array struct {
	shape []int
	data  []float64
	dtype DType
}

// NewArray copies data into an array of the given shape.
func NewArray(shape []int, data []float64, dtype DType) (*Array, error) {
	n := 1
	for _, s := range shape {
		if s < 0 {
			return nil, shapeError("negative dimension %d", s)
		}
		n *= s
	}
	if n != len(data) {
		return nil, shapeError("shape %v needs %d elements, got %d", shape, n, len(data))
	}
	a := &Array{shape: append([]int(nil), shape...), data: append([]float64(nil), data...), dtype: dtype}
	if dtype == Int64 {
		for i, v := range a.data {
			a.data[i] = math.Trunc(v)
		}
	}
	return a, nil
}

// Floats builds a one-dimensional float64 array.
func Floats(v ...float64) *Array {
	return &Array{shape: []int{len(v)}, data: append([]float64(nil), v...), dtype: Float64}
}

// Ints builds a one-dimensional int64 array.
func Ints(v ...int64) *Array {
	data := make([]float64, len(v))
	for i, x := range v {
		data[i] = float64(x)
	}
	return &Array{shape: []int{len(v)}, data: data, dtype: Int64}
}

// Matrix builds a two-dimensional float64 array. Rows must share a length.
func Matrix(rows ...[]float64) (*Array, error) {
	if len(rows) == 0 {
		return &Array{shape: []int{0, 0}, dtype: Float64}, nil
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, shapeError("row %d has %d columns, want %d", i, len(r), cols)
		}
		data = append(data, r...)
	}
	return &Array{shape: []int{len(rows), cols}, data: data, dtype: Float64}, nil
}

// ArrayFrom builds an array from a Go slice of numbers, possibly nested
// ([]float64, []int, [][]float64, []any of numbers, ...). The result is
// Int64 when every leaf is an integer type, Float64 otherwise. Ragged
// nesting and non-numeric leaves are errors.
func ArrayFrom(v any) (*Array, error) {
	if a, ok := v.(*Array); ok {
		return a, nil
	}
	b := &arrayBuilder{dtype: Int64}
	if err := b.walk(reflect.ValueOf(v), 0); err != nil {
		return nil, err
	}
	if b.shape == nil {
		return nil, fmt.Errorf("units: %T is not an array", v)
	}
	return &Array{shape: b.shape, data: b.data, dtype: b.dtype}, nil
}

type arrayBuilder struct {
	shape     []int
	data      []float64
	dtype     DType
	leafDepth int
}

func (b *arrayBuilder) walk(rv reflect.Value, depth int) error {
	for rv.Kind() == reflect.Interface || rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return fmt.Errorf("units: nil element in array")
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return fmt.Errorf("units: byte slices are not numeric arrays")
		}
		if k := rv.Type().Elem().Kind(); k == reflect.Float32 || k == reflect.Float64 {
			b.dtype = Float64
		}
		n := rv.Len()
		switch {
		case depth == len(b.shape):
			if b.leafDepth != 0 {
				return shapeError("ragged nesting at depth %d", depth)
			}
			b.shape = append(b.shape, n)
		case b.shape[depth] != n:
			return shapeError("ragged nesting at depth %d: length %d, want %d", depth, n, b.shape[depth])
		}
		for i := 0; i < n; i++ {
			if err := b.walk(rv.Index(i), depth+1); err != nil {
				return err
			}
		}
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return b.leaf(float64(rv.Int()), false, depth)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return b.leaf(float64(rv.Uint()), false, depth)
	case reflect.Float32, reflect.Float64:
		return b.leaf(rv.Float(), true, depth)
	default:
		if n, ok := rv.Interface().(interface{ Float64() (float64, error) }); ok {
			f, err := n.Float64()
			if err != nil {
				return fmt.Errorf("units: %w", err)
			}
			isFloat := false
			if s, ok := rv.Interface().(fmt.Stringer); ok {
				isFloat = looksFloat(s.String())
			}
			return b.leaf(f, isFloat, depth)
		}
		return fmt.Errorf("units: array element of type %s is not a number", rv.Type())
	}
}

func (b *arrayBuilder) leaf(v float64, isFloat bool, depth int) error {
	if b.leafDepth == 0 {
		if depth == 0 {
			return fmt.Errorf("units: scalar is not an array")
		}
		b.leafDepth = depth
	}
	if depth != b.leafDepth || depth != len(b.shape) {
		return shapeError("ragged nesting: number at depth %d, want %d", depth, b.leafDepth)
	}
	if isFloat {
		b.dtype = Float64
	}
	b.data = append(b.data, v)
	return nil
}

func looksFloat(s string) bool {
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' {
			return true
		}
	}
	return false
}

// Shape returns a copy of the dimensions.
func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

// NDim is the number of dimensions.
func (a *Array) NDim() int { return len(a.shape) }

// Len is the total number of elements.
func (a *Array) Len() int { return len(a.data) }

// DType reports the element kind.
func (a *Array) DType() DType { return a.dtype }

// Data returns a copy of the flat row-major elements.
func (a *Array) Data() []float64 { return append([]float64(nil), a.data...) }

// At returns the element at the given multi-index.
func (a *Array) At(idx ...int) float64 {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("units: index of rank %d into array of rank %d", len(idx), len(a.shape)))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= a.shape[i] {
			panic(fmt.Sprintf("units: index %d out of range for dimension %d of size %d", x, i, a.shape[i]))
		}
		off = off*a.shape[i] + x
	}
	return a.data[off]
}

// Row returns the i-th sub-array along the first dimension.
func (a *Array) Row(i int) *Array {
	if len(a.shape) < 2 {
		panic("units: Row on array with fewer than two dimensions")
	}
	stride := len(a.data) / a.shape[0]
	return &Array{
		shape: append([]int(nil), a.shape[1:]...),
		data:  append([]float64(nil), a.data[i*stride:(i+1)*stride]...),
		dtype: a.dtype,
	}
}

// Nested returns the elements as nested []any, with int64 leaves for Int64
// arrays and float64 leaves otherwise. This is the shape used on the wire.
func (a *Array) Nested() any {
	if len(a.shape) == 0 {
		return []any{}
	}
	v, _ := a.nested(0, 0)
	return v
}

func (a *Array) nested(dim, off int) (any, int) {
	n := a.shape[dim]
	out := make([]any, n)
	if dim == len(a.shape)-1 {
		for i := 0; i < n; i++ {
			if a.dtype == Int64 {
				out[i] = int64(a.data[off+i])
			} else {
				out[i] = a.data[off+i]
			}
		}
		return out, off + n
	}
	for i := 0; i < n; i++ {
		out[i], off = a.nested(dim+1, off)
	}
	return out, off
}

// Map applies f to every element, returning a new array of the given dtype.
func (a *Array) Map(f func(float64) float64, dtype DType) *Array {
	out := &Array{shape: append([]int(nil), a.shape...), data: make([]float64, len(a.data)), dtype: dtype}
	for i, v := range a.data {
		out.data[i] = f(v)
		if dtype == Int64 {
			out.data[i] = math.Trunc(out.data[i])
		}
	}
	return out
}

// AsType converts element kind; float to int truncates toward zero.
func (a *Array) AsType(dtype DType) *Array {
	if dtype == a.dtype {
		return a
	}
	return a.Map(func(v float64) float64 { return v }, dtype)
}

// SameShape reports whether both arrays have identical dimensions.
func (a *Array) SameShape(o *Array) bool {
	if len(a.shape) != len(o.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != o.shape[i] {
			return false
		}
	}
	return true
}

// Equal reports element-wise equality of shape and values. The dtype is not compared.
func (a *Array) Equal(o *Array) bool {
	if a == nil || o == nil {
		return a == o
	}
	if !a.SameShape(o) {
		return false
	}
	for i := range a.data {
		if a.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// AllClose reports element-wise closeness within rtol relative and atol
// absolute tolerance.
func (a *Array) AllClose(o *Array, rtol, atol float64) bool {
	if !a.SameShape(o) {
		return false
	}
	for i := range a.data {
		if !closeTo(a.data[i], o.data[i], rtol, atol) {
			return false
		}
	}
	return true
}

func closeTo(x, y, rtol, atol float64) bool {
	return math.Abs(x-y) <= atol+rtol*math.Abs(y)
}

func (a *Array) String() string { return fmt.Sprint(a.Nested()) }
