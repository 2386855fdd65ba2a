package quantity

import (
	"encoding/binary"
	"reflect"

	json "github.com/goccy/go-json"

	qs "github.com/reoring/qskema"
	"github.com/reoring/qskema/units"
)

// Coerce turns v into a quantity using the default adapter registry. The
// contract decides whether bare numbers receive its unit; the contract
// itself is not enforced here.
func Coerce(v any, c Contract) (units.Quantity, error) { return defaultAdapters.Coerce(v, c) }

// Coerce turns v into a quantity, trying in order: quantities, registered
// adapters, slices of quantities, numbers, strings, numeric slices, byte
// buffers and record maps.
func (r *Registry) Coerce(v any, c Contract) (units.Quantity, error) {
	if q, ok, err := r.quantityOf(v); ok || err != nil {
		return q, err
	}
	if q, ok, err := r.stackRows(v); ok || err != nil {
		return q, err
	}
	switch t := v.(type) {
	case bool:
		return units.Quantity{}, qs.NewUnitError(qs.UnitValidation, "boolean values are not quantities")
	case json.Number:
		return implicit(c, t, func(u units.Unit) (units.Quantity, error) { return numberQuantity(t, u) })
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return implicit(c, t, func(u units.Unit) (units.Quantity, error) { return units.NewWithUnit(t, u) })
	case string:
		q, err := units.ParseQuantity(t)
		if err != nil {
			return units.Quantity{}, qs.WrapUnitError(qs.UnitValidation, err, "could not parse %q as a quantity: %v", t, err)
		}
		return q, nil
	case []byte:
		return implicit(c, "byte buffer", func(u units.Unit) (units.Quantity, error) { return fromBytes(t, u) })
	case *units.Array:
		if t == nil {
			break
		}
		return implicit(c, "array", func(u units.Unit) (units.Quantity, error) { return units.FromArray(t, u), nil })
	case map[string]any:
		return DecodeRecord(t)
	}
	rv := reflect.ValueOf(v)
	if rv.IsValid() {
		switch rv.Kind() {
		case reflect.Bool:
			return units.Quantity{}, qs.NewUnitError(qs.UnitValidation, "boolean values are not quantities")
		case reflect.Slice, reflect.Array:
			a, err := units.ArrayFrom(v)
			if err != nil {
				return units.Quantity{}, qs.WrapUnitError(qs.UnitValidation, err, "could not read %T as a numeric array: %v", v, err)
			}
			return implicit(c, "array", func(u units.Unit) (units.Quantity, error) { return units.FromArray(a, u), nil })
		}
	}
	return units.Quantity{}, qs.NewUnitError(qs.UnitValidation, "cannot coerce a value of type %T into a quantity", v)
}

// quantityOf recognizes canonical quantities and values claimed by an adapter.
func (r *Registry) quantityOf(v any) (units.Quantity, bool, error) {
	switch t := v.(type) {
	case units.Quantity:
		return t, true, nil
	case *units.Quantity:
		if t == nil {
			return units.Quantity{}, true, qs.NewUnitError(qs.UnitValidation, "nil quantity")
		}
		return *t, true, nil
	}
	q, ok, err := r.Adapt(v)
	if err != nil {
		if _, isUnit := qs.AsUnitError(err); !isUnit {
			err = qs.WrapUnitError(qs.UnitValidation, err, "%v", err)
		}
		return units.Quantity{}, true, err
	}
	return q, ok, nil
}

// stackRows handles a slice whose elements are quantities, such as box
// vectors given row by row. Every row is converted to the first row's unit
// and the rows are stacked into one array.
func (r *Registry) stackRows(v any) (units.Quantity, bool, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Len() == 0 {
		return units.Quantity{}, false, nil
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return units.Quantity{}, false, nil
	}
	first, ok, err := r.quantityOf(rv.Index(0).Interface())
	if err != nil || !ok {
		return units.Quantity{}, ok, err
	}
	rows := make([]units.Quantity, rv.Len())
	rows[0] = first
	for i := 1; i < rv.Len(); i++ {
		q, ok, err := r.quantityOf(rv.Index(i).Interface())
		if err != nil {
			return units.Quantity{}, true, err
		}
		if !ok {
			return units.Quantity{}, true, qs.NewUnitError(qs.UnitValidation,
				"row %d is a %T, but earlier rows are quantities", i, rv.Index(i).Interface())
		}
		rows[i] = q
	}
	q, err := stack(rows)
	return q, true, err
}

func stack(rows []units.Quantity) (units.Quantity, error) {
	u := rows[0].Unit()
	nested := make([]any, len(rows))
	for i, row := range rows {
		conv, err := row.To(u)
		if err != nil {
			return units.Quantity{}, qs.WrapUnitError(qs.IncompatibleUnit, err,
				"row %d with units %s cannot be stacked with units %s", i, row.Unit(), u)
		}
		switch conv.Kind() {
		case units.KindInt:
			nested[i] = conv.IntValue()
		case units.KindFloat:
			nested[i] = conv.FloatValue()
		default:
			nested[i] = conv.Array().Nested()
		}
	}
	a, err := units.ArrayFrom(nested)
	if err != nil {
		return units.Quantity{}, qs.WrapUnitError(qs.UnitValidation, err, "rows do not stack into an array: %v", err)
	}
	return units.FromArray(a, u), nil
}

func implicit(c Contract, what any, build func(units.Unit) (units.Quantity, error)) (units.Quantity, error) {
	if !c.ImplicitUnit() {
		return units.Quantity{}, qs.NewUnitError(qs.MissingUnit,
			"value %v has no unit; a unit compatible with %s must be given explicitly", what, c.Unit)
	}
	q, err := build(c.Unit)
	if err != nil {
		return units.Quantity{}, qs.WrapUnitError(qs.UnitValidation, err, "%v", err)
	}
	return q, nil
}

// maxExactBufferInt bounds buffer integers that int64 arrays hold exactly.
const maxExactBufferInt = 1 << 53

// fromBytes reads a little-endian int64 buffer.
func fromBytes(b []byte, u units.Unit) (units.Quantity, error) {
	if len(b)%8 != 0 {
		return units.Quantity{}, qs.NewUnitError(qs.UnitValidation,
			"byte buffer of length %d is not a whole number of 8-byte integers", len(b))
	}
	vals := make([]int64, len(b)/8)
	for i := range vals {
		v := int64(binary.LittleEndian.Uint64(b[i*8:]))
		if v > maxExactBufferInt || v < -maxExactBufferInt {
			return units.Quantity{}, qs.NewUnitError(qs.UnitValidation,
				"byte buffer element %d (%d) exceeds the exact integer range of 2^53", i, v)
		}
		vals[i] = v
	}
	return units.FromArray(units.Ints(vals...), u), nil
}
