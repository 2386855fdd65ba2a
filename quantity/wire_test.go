package quantity

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qs "github.com/reoring/qskema"
	"github.com/reoring/qskema/units"
)

func TestRoundTrip(t *testing.T) {
	box, err := units.Matrix([]float64{4, 0, 0}, []float64{0, 4, 0}, []float64{0, 0, 4.5})
	require.NoError(t, err)
	cases := []units.Quantity{
		units.MustNew(2.0, "nanometer"),
		units.MustNew(2, "nanometer"),
		units.MustNew(-0.5, "kJ/mol"),
		units.MustNew(1e-30, "gram"),
		units.MustNew(6.02214076e23, "dimensionless"),
		units.MustNew([]int{2, 3}, "picosecond"),
		units.MustNew([]float64{1.5, 2}, "angstrom"),
		units.FromArray(box, units.MustParseUnit("nm")),
		units.MustNew(1, "kilojoule / mole / nanometer ** 2"),
	}
	for _, q := range cases {
		s, err := EncodeString(q)
		require.NoError(t, err, q.String())
		back, err := DecodeString(s)
		require.NoError(t, err, s)
		assert.True(t, q.Equal(back), "%s -> %s", q, s)
		assert.Equal(t, q.Kind(), back.Kind(), s)
		assert.Equal(t, q.Units(), back.Units(), s)
		if q.IsArray() {
			assert.Equal(t, q.Array().Shape(), back.Array().Shape(), s)
			assert.Equal(t, q.Array().DType(), back.Array().DType(), s)
		}
	}
}

func TestArrayRecord(t *testing.T) {
	q, err := Array("picosecond").Coerce([]int{2, 3})
	require.NoError(t, err)
	b, err := Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"val": [2, 3], "unit": "picosecond"}`, string(b))

	back, err := Unmarshal(b)
	require.NoError(t, err)
	assert.True(t, back.Equal(q))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "2.0", FormatFloat(2))
	assert.Equal(t, "-0.5", FormatFloat(-0.5))
	assert.Equal(t, "1e-30", FormatFloat(1e-30))
	assert.Equal(t, "1e+21", FormatFloat(1e21))
	assert.Equal(t, "0.0", FormatFloat(0))
	assert.Equal(t, "123456.789", FormatFloat(123456.789))
}

func TestEncode_Unsupported(t *testing.T) {
	_, err := Marshal(units.MustNew(math.NaN(), "nm"))
	assert.True(t, errors.Is(err, qs.ErrUnsupportedExport))
	_, err = Marshal(units.FromArray(units.Floats(1, math.Inf(1)), units.MustParseUnit("nm")))
	assert.True(t, errors.Is(err, qs.ErrUnsupportedExport))
	_, err = EncodeAny(3.0)
	assert.True(t, errors.Is(err, qs.ErrUnsupportedExport))
	assert.Contains(t, err.Error(), "float64")
	_, err = EncodeAny((*units.Quantity)(nil))
	assert.True(t, errors.Is(err, qs.ErrUnsupportedExport))
}

func TestDecode_MalformedRecords(t *testing.T) {
	_, err := DecodeString(`{"val": 1.0, "unit": "angstrom", "extra": "extra"}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))
	assert.Contains(t, err.Error(), "exactly two keys")

	_, err = DecodeString(`{"data": [1, 2], "unit": "angstrom"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"data"`)

	_, err = DecodeString(`{"val": 1.0}`)
	assert.Contains(t, err.Error(), "exactly two keys")

	_, err = DecodeString(`{"val": 1.0, "val": 2.0}`)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))

	_, err = DecodeString(`{"val": "1.0", "unit": "angstrom"}`)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))

	_, err = DecodeString(`{"val": 1.0, "unit": 3}`)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))

	_, err = DecodeString(`{"val": 1.0, "unit": "furlong"}`)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))
	assert.True(t, errors.Is(err, units.ErrUndefinedUnit))

	_, err = DecodeString(`{"val": [[1, 2], [3]], "unit": "nm"}`)
	assert.True(t, errors.Is(err, units.ErrShape))

	_, err = DecodeString(`[1, 2]`)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))

	_, err = DecodeString(`{"val": 1.0,`)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))
}

func TestDecode_NumberKinds(t *testing.T) {
	q, err := DecodeString(`{"val": 2, "unit": "nm"}`)
	require.NoError(t, err)
	assert.Equal(t, units.KindInt, q.Kind())

	q, err = DecodeString(`{"val": 2.0, "unit": "nm"}`)
	require.NoError(t, err)
	assert.Equal(t, units.KindFloat, q.Kind())

	q, err = DecodeString(`{"val": 2e3, "unit": "nm"}`)
	require.NoError(t, err)
	assert.Equal(t, units.KindFloat, q.Kind())
	assert.Equal(t, 2000.0, q.FloatValue())
}

func TestDecodeJSON_BothEmbeddings(t *testing.T) {
	q, err := DecodeJSON([]byte(`{"val": 1.5, "unit": "nm"}`))
	require.NoError(t, err)
	assert.Equal(t, 1.5, q.FloatValue())

	q, err = DecodeJSON([]byte(`"{\"val\": 1.5, \"unit\": \"nm\"}"`))
	require.NoError(t, err)
	assert.Equal(t, 1.5, q.FloatValue())
}

func TestDecodePath(t *testing.T) {
	doc := []byte(`{
		"name": "water",
		"box": "{\"val\": [[2.0, 0.0], [0.0, 2.0]], \"unit\": \"nanometer\"}",
		"frames": [{"time": {"val": 0.5, "unit": "picosecond"}}]
	}`)
	box, err := DecodePath(doc, "box")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, box.Array().Shape())

	tm, err := DecodePath(doc, "frames.0.time")
	require.NoError(t, err)
	assert.Equal(t, "picosecond", tm.Units())

	_, err = DecodePath(doc, "missing")
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))
	_, err = DecodePath(doc, "name")
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))
}

func TestCoerce_Inputs(t *testing.T) {
	c := Contract{Kind: ExactCoerce, Unit: units.MustParseUnit("nm"), Numeric: NumericAny}

	q, err := Coerce(map[string]any{"val": 1.5, "unit": "angstrom"}, c)
	require.NoError(t, err)
	assert.Equal(t, "angstrom", q.Units())

	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf, 7)
	binary.LittleEndian.PutUint64(buf[8:], uint64(math.MaxUint64)) // -1
	q, err = Coerce(buf, c)
	require.NoError(t, err)
	assert.Equal(t, []float64{7, -1}, q.Array().Data())
	assert.Equal(t, units.Int64, q.Array().DType())

	_, err = Coerce(buf[:5], c)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))

	binary.LittleEndian.PutUint64(buf[8:], 1<<53+1)
	_, err = Coerce(buf, c)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))
	binary.LittleEndian.PutUint64(buf[8:], 1<<53)
	q, err = Coerce(buf, c)
	require.NoError(t, err)
	assert.Equal(t, float64(1<<53), q.Array().At(1))

	q, err = Coerce([][]float64{{1, 2}, {3, 4}}, c)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, q.Array().Shape())

	_, err = Coerce("not a quantity at all", c)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))

	_, err = Coerce(struct{}{}, c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "struct {}")

	_, err = Coerce(nil, c)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))

	type flag bool
	_, err = Coerce(flag(true), c)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))
}

func TestCoerce_StacksQuantityRows(t *testing.T) {
	c := Contract{Kind: DimensionOnly, Unit: units.MustParseUnit("nm")}
	rows := []units.Quantity{
		units.MustNew([]float64{2, 0, 0}, "nm"),
		units.MustNew([]float64{0, 20, 0}, "angstrom"),
		units.MustNew([]float64{0, 0, 2}, "nm"),
	}
	q, err := Coerce(rows, c)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3}, q.Array().Shape())
	assert.Equal(t, "nanometer", q.Units())
	assert.Equal(t, 2.0, q.Array().At(1, 1))

	_, err = Coerce([]any{units.MustNew(1, "nm"), 2.0}, c)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))

	_, err = Coerce([]units.Quantity{units.MustNew(1, "nm"), units.MustNew(1, "ps")}, c)
	assert.True(t, errors.Is(err, qs.ErrIncompatibleUnit))
}

type fakeForeign struct {
	v    float64
	unit string
}

func TestRegistry_Adapters(t *testing.T) {
	r := NewRegistry(AdapterFunc("fake", func(v any) (units.Quantity, bool, error) {
		f, ok := v.(fakeForeign)
		if !ok {
			return units.Quantity{}, false, nil
		}
		if f.unit == "" {
			return units.Quantity{}, true, errors.New("no unit")
		}
		q, err := units.New(f.v, f.unit)
		return q, true, err
	}))
	assert.Equal(t, []string{"fake"}, r.Names())

	fld := Float("nm").WithAdapters(r)
	q, err := fld.Coerce(fakeForeign{v: 15, unit: "angstrom"})
	require.NoError(t, err)
	assert.Equal(t, 1.5, q.FloatValue())

	_, err = fld.Coerce(fakeForeign{v: 1})
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))

	_, err = Float("nm").Coerce(fakeForeign{v: 1, unit: "nm"})
	assert.Error(t, err, "default registry does not know the fake adapter")
}

func TestCheckDimensionality(t *testing.T) {
	assert.NoError(t, CheckDimensionality(units.MustNew(1, "bohr"), units.MustParseUnit("angstrom")))
	err := CheckDimensionality(units.MustNew(1, "ps"), units.MustParseUnit("angstrom"))
	assert.True(t, errors.Is(err, qs.ErrIncompatibleUnit))
}
