package quantity

import (
	"context"
	"errors"
	"math"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qs "github.com/reoring/qskema"
	"github.com/reoring/qskema/units"
)

func TestFloat_WrapsBareNumber(t *testing.T) {
	q, err := Float("nanometer").Parse(context.Background(), 2.0)
	require.NoError(t, err)
	assert.Equal(t, units.KindFloat, q.Kind())
	assert.Equal(t, 2.0, q.FloatValue())
	assert.Equal(t, "nanometer", q.Units())
}

func TestFloat_CastsInt(t *testing.T) {
	q, err := Float("nanometer").Coerce(3)
	require.NoError(t, err)
	assert.Equal(t, units.KindFloat, q.Kind())
	assert.Equal(t, 3.0, q.FloatValue())
}

func TestInt_ConvertsCompatibleUnits(t *testing.T) {
	q, err := Int("nanometer").Coerce(units.MustNew(200, "angstrom"))
	require.NoError(t, err)
	assert.Equal(t, units.KindInt, q.Kind())
	assert.Equal(t, int64(20), q.IntValue())
	assert.Equal(t, "nanometer", q.Units())
}

func TestInt_TruncatesFloats(t *testing.T) {
	q, err := Int("nanometer").Coerce(4.7)
	require.NoError(t, err)
	assert.Equal(t, int64(4), q.IntValue())

	q, err = Int("nanometer").Coerce("-4.7 nm")
	require.NoError(t, err)
	assert.Equal(t, int64(-4), q.IntValue())
}

func TestInt_RejectsOutOfRange(t *testing.T) {
	for _, in := range []any{1e30, -1e19, math.Ldexp(1, 63), math.NaN(), math.Inf(-1), units.MustNew(1e300, "km")} {
		_, err := Int("nanometer").Coerce(in)
		require.Error(t, err, "%v", in)
		assert.True(t, errors.Is(err, qs.ErrUnitValidation), "%v", in)
	}

	q, err := Int("nanometer").Coerce(math.Ldexp(1, 62))
	require.NoError(t, err)
	assert.Equal(t, int64(1)<<62, q.IntValue())
}

func TestNonFiniteMagnitudesRejected(t *testing.T) {
	for _, f := range []*Field{Float("nanometer"), Unit("nanometer")} {
		for _, in := range []any{math.Inf(1), math.NaN(), units.MustNew(math.Inf(-1), "nm")} {
			_, err := f.Coerce(in)
			require.Error(t, err, "%s %v", f, in)
			assert.True(t, errors.Is(err, qs.ErrUnitValidation))
		}
	}
	_, err := Length.Coerce(units.MustNew(math.NaN(), "nm"))
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))

	_, err = Array("nanometer").Coerce(units.FromArray(units.Floats(1, math.NaN()), units.MustParseUnit("nm")))
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))

	_, err = Float("nanometer").Coerce(units.MustNew(1e300, "km"))
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))

	err = Float("nanometer").ValidateValue(context.Background(), units.MustNew(math.NaN(), "nm"))
	assert.Error(t, err)
}

func TestExactCoerce_SameUnitKeepsValue(t *testing.T) {
	in := units.Float(0.1+0.2, units.MustParseUnit("kJ/mol"))
	q, err := Float("kilojoule / mole").Coerce(in)
	require.NoError(t, err)
	assert.Equal(t, in.FloatValue(), q.FloatValue())
	assert.Equal(t, "kilojoule / mole", q.Units())
}

func TestExactCoerce_Idempotent(t *testing.T) {
	for _, f := range []*Field{Int("picosecond"), Float("angstrom"), Array("nanometer"), Unit("degree")} {
		var in any = "3 nm"
		switch f.Contract().Unit.String() {
		case "picosecond":
			in = "7 ps"
		case "degree":
			in = 1.5
		case "nanometer":
			in = []float64{1, 2, 3}
		}
		once, err := f.Coerce(in)
		require.NoError(t, err, f.String())
		twice, err := f.Coerce(once)
		require.NoError(t, err, f.String())
		assert.True(t, once.Equal(twice), f.String())
		assert.Equal(t, once.Kind(), twice.Kind(), f.String())
		assert.Equal(t, once.Units(), twice.Units(), f.String())
	}
}

func TestExactCoerce_Incompatible(t *testing.T) {
	_, err := Float("nanometer").Coerce(units.MustNew(1.0, "picosecond"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, qs.ErrIncompatibleUnit))
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))
	assert.Contains(t, err.Error(), "Cannot convert `Quantity` with units picosecond to nanometer.")
}

func TestBooleansRejected(t *testing.T) {
	for _, f := range []*Field{Int("nm"), Float(""), Array("ps"), Dimension(""), Unit("amu")} {
		_, err := f.Coerce(true)
		require.Error(t, err, f.String())
		assert.True(t, errors.Is(err, qs.ErrUnitValidation), f.String())
		assert.False(t, errors.Is(err, qs.ErrIncompatibleUnit), f.String())
	}
}

func TestDimension_PreservesUnit(t *testing.T) {
	q, err := Dimension("angstrom").Coerce(units.MustNew(1.5, "nanometer"))
	require.NoError(t, err)
	assert.Equal(t, "nanometer", q.Units())
	assert.Equal(t, 1.5, q.FloatValue())

	q, err = Length.Coerce("3 nm")
	require.NoError(t, err)
	assert.Equal(t, "nanometer", q.Units())
	assert.Equal(t, units.KindInt, q.Kind())

	_, err = Dimension("angstrom").Coerce(units.MustNew(1.0, "second"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, qs.ErrIncompatibleUnit))
}

func TestDimension_IncompatibleNamesUnit(t *testing.T) {
	_, err := Dimension("angstrom").Coerce("1.0 degree")
	require.Error(t, err)
	assert.True(t, errors.Is(err, qs.ErrIncompatibleUnit))
	assert.Equal(t, "Dimensionality must be compatible with unit angstrom", err.Error())

	_, err = Dimension("kilojoule / mole / nanometer ** 2").Coerce("1 kJ/mol")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kilojoule / mole / nanometer ** 2")
}

func TestDimension_BareNumberNeedsUnit(t *testing.T) {
	_, err := Length.Coerce(1.0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, qs.ErrMissingUnit))

	_, err = Length.Coerce([]float64{1, 2})
	assert.True(t, errors.Is(err, qs.ErrMissingUnit))

	q, err := Dimension("").Coerce(1.0)
	require.NoError(t, err)
	assert.True(t, q.Unit().IsDimensionless())
}

func TestUnitField_AcceptsEveryKind(t *testing.T) {
	q, err := OnlyAMU.Coerce([]int{1, 2})
	require.NoError(t, err)
	assert.True(t, q.IsArray())
	assert.Equal(t, "amu", q.Units())

	q, err = OnlyDegree.Coerce("1 radian")
	require.NoError(t, err)
	assert.InDelta(t, 57.29577951308232, q.FloatValue(), 1e-9)

	q, err = OnlyElementaryCharge.Coerce(-1)
	require.NoError(t, err)
	assert.Equal(t, units.KindInt, q.Kind())
}

func TestArray_RejectsScalars(t *testing.T) {
	_, err := Array("nanometer").Coerce(1.0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))

	_, err = Float("nanometer").Coerce([]float64{1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))
}

func TestParse_ReturnsIssues(t *testing.T) {
	_, err := Length.Parse(context.Background(), "1.0 degree")
	iss, ok := qs.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, qs.CodeIncompatibleUnit, iss[0].Code)
	assert.Equal(t, "/", iss[0].Path)
	assert.Equal(t, "angstrom", iss[0].Params["unit"])
	assert.True(t, errors.Is(err, qs.ErrIncompatibleUnit))
}

func TestParse_JSONModeNested(t *testing.T) {
	ctx := qs.WithMode(context.Background(), qs.ModeJSON)
	q, err := Float("nanometer").Parse(ctx, `{"val": 15, "unit": "angstrom"}`)
	require.NoError(t, err)
	assert.Equal(t, 1.5, q.FloatValue())

	_, err = Float("nanometer").Parse(ctx, map[string]any{"val": 1.0, "unit": "nanometer"})
	require.Error(t, err)
	iss, _ := qs.AsIssues(err)
	assert.Equal(t, qs.CodeUnitValidation, iss[0].Code)

	q, err = Float("nanometer").Parse(ctx, 2.5)
	require.NoError(t, err)
	assert.Equal(t, 2.5, q.FloatValue())

	_, err = Float("nanometer").Parse(ctx, true)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))
}

func TestParse_JSONModeInline(t *testing.T) {
	ctx := qs.WithEmbedding(qs.WithMode(context.Background(), qs.ModeJSON), qs.EmbedInline)
	q, err := Length.Parse(ctx, map[string]any{"val": 1.5, "unit": "nanometer"})
	require.NoError(t, err)
	assert.Equal(t, "nanometer", q.Units())

	_, err = Length.Parse(ctx, `{"val": 1.5, "unit": "nanometer"}`)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))
}

func TestValidateValue(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, Float("nanometer").ValidateValue(ctx, units.MustNew(1.0, "nm")))
	assert.Error(t, Float("nanometer").ValidateValue(ctx, units.MustNew(10.0, "angstrom")))
	assert.Error(t, Float("nanometer").ValidateValue(ctx, units.MustNew(1, "nm")))
	assert.NoError(t, Length.ValidateValue(ctx, units.MustNew(1, "nm")))
	assert.Error(t, Length.ValidateValue(ctx, units.MustNew(1, "ps")))
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, Float("nm").Validate(ctx, "1 angstrom"))
	assert.True(t, qs.Is[units.Quantity](ctx, Length, "2 bohr"))
	assert.False(t, qs.Is[units.Quantity](ctx, Length, "2 ps"))
	assert.Error(t, Float("nm").TypeCheck(ctx, struct{}{}))
	assert.NoError(t, Float("nm").TypeCheck(ctx, "2 ps"))
	assert.Error(t, Float("nm").RuleCheck(ctx, "2 ps"))
}

func TestEncodeValue_Embeddings(t *testing.T) {
	q := units.MustNew(2.0, "nm")
	v, err := Float("nm").EncodeValue(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, `{"val":2.0,"unit":"nanometer"}`, v)

	ctx := qs.WithEmbedding(context.Background(), qs.EmbedInline)
	v, err = Float("nm").EncodeValue(ctx, q)
	require.NoError(t, err)
	raw, ok := v.(json.RawMessage)
	require.True(t, ok)
	assert.JSONEq(t, `{"val":2.0,"unit":"nanometer"}`, string(raw))

	_, err = Float("nm").EncodeValue(context.Background(), "2 nm")
	assert.True(t, errors.Is(err, qs.ErrUnsupportedExport))
}

func TestJSONSchema(t *testing.T) {
	s, err := Int("nm").JSONSchema()
	require.NoError(t, err)
	assert.Equal(t, "integer", s.Type)
	assert.Equal(t, "nanometer", s.Unit)

	s, _ = Array("ps").JSONSchema()
	assert.Equal(t, "array", s.Type)
	assert.Equal(t, "number", s.Items.Type)

	s, _ = Length.JSONSchema()
	assert.Len(t, s.OneOf, 2)
	assert.Equal(t, "dimension", s.UnitContract)
	assert.Equal(t, "quantity with units compatible with angstrom", s.Description)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Config{Unit: "not_a_unit"})
	assert.Error(t, err)
	_, err = New(Config{Unit: "nm", Contract: DimensionOnly, Numeric: NumericFloat})
	assert.Error(t, err)
	assert.Panics(t, func() { Float("not_a_unit") })
}

func TestField_String(t *testing.T) {
	assert.Equal(t, "Float[nanometer]", Float("nm").String())
	assert.Equal(t, "Dimension[angstrom]", Length.String())
	assert.Equal(t, "Unit[amu]", OnlyAMU.String())
	assert.Equal(t, "Int[dimensionless]", Int("").String())
}
