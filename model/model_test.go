package model_test

import (
	"context"
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qs "github.com/reoring/qskema"
	"github.com/reoring/qskema/dsl"
	"github.com/reoring/qskema/interop/simunit"
	"github.com/reoring/qskema/model"
	"github.com/reoring/qskema/quantity"
	"github.com/reoring/qskema/units"
)

func mixedSchema() *dsl.ObjectSchema {
	return dsl.Object().
		Field("scalar_data", dsl.Quantity(quantity.Float("meter"))).Required().
		Field("array_data", dsl.Quantity(quantity.Time)).Required().
		Field("name", dsl.SchemaOf(dsl.String())).Required().
		MustBuild()
}

func TestMixedModel_JSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, err := model.New(ctx, mixedSchema(), map[string]any{
		"scalar_data": units.MustNew(1.0, "meter"),
		"array_data":  units.MustNew([]int{-1, 0}, "second"),
		"name":        "foo",
	})
	require.NoError(t, err)

	out, err := json.Marshal(m)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, map[string]any{
		"scalar_data": `{"val":1.0,"unit":"meter"}`,
		"array_data":  `{"val":[-1,0],"unit":"second"}`,
		"name":        "foo",
	}, doc)

	parsed, err := model.ParseJSON(ctx, mixedSchema(), out)
	require.NoError(t, err)
	assert.True(t, m.Equal(parsed))

	q, ok := parsed.Quantity("array_data")
	require.True(t, ok)
	assert.Equal(t, units.Int64, q.Array().DType())
}

func TestMixedModel_InlineJSON(t *testing.T) {
	ctx := context.Background()
	m := model.MustNew(ctx, mixedSchema(), map[string]any{
		"scalar_data": "2 m",
		"array_data":  units.MustNew([]float64{0.5}, "ps"),
		"name":        "bar",
	})
	ctx = qs.WithEmbedding(ctx, qs.EmbedInline)
	out, err := m.DumpJSON(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"scalar_data": {"val": 2.0, "unit": "meter"},
		"array_data": {"val": [0.5], "unit": "picosecond"},
		"name": "bar"
	}`, string(out))

	parsed, err := model.ParseJSON(ctx, mixedSchema(), out)
	require.NoError(t, err)
	assert.True(t, m.Equal(parsed))

	_, err = model.ParseJSON(context.Background(), mixedSchema(), out)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation), "nested embedding needs record strings")
}

func mutableSchema() *dsl.ObjectSchema {
	return dsl.Object().
		Field("time", dsl.Quantity(quantity.Time)).Required().
		Field("lengths", dsl.Quantity(quantity.Length)).Required().
		MustBuild()
}

func TestModel_Mutability(t *testing.T) {
	ctx := context.Background()
	m := model.MustNew(ctx, mutableSchema(), map[string]any{
		"time":    units.MustNew(10, "second"),
		"lengths": units.MustNew([]float64{0.3, 0.5}, "nanometer"),
	})

	require.NoError(t, m.Set(ctx, "time", units.MustNew(0.5, "minute")))
	require.NoError(t, m.Set(ctx, "lengths", units.MustNew([]float64{4.0, 1.0}, "angstrom")))

	tq, _ := m.Quantity("time")
	assert.True(t, tq.Equal(units.MustNew(30, "second")))
	lq, _ := m.Quantity("lengths")
	assert.True(t, lq.Equal(units.MustNew([]float64{0.4, 0.1}, "nanometer")))

	err := m.Set(ctx, "time", units.MustNew(1, "gram"))
	assert.True(t, errors.Is(err, qs.ErrIncompatibleUnit))
	iss, ok := qs.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "/time", iss[0].Path)

	err = m.Set(ctx, "lengths", units.MustNew(1, "joule"))
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))

	tq, _ = m.Quantity("time")
	assert.Equal(t, "minute", tq.Units(), "failed assignment must keep the previous value")
}

func TestModel_UpdateStopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	m := model.MustNew(ctx, mutableSchema(), map[string]any{
		"time":    "1 s",
		"lengths": "1 nm",
	})
	err := m.Update(ctx, map[string]any{
		"lengths": "2 nm",
		"time":    "3 m",
	})
	require.Error(t, err)
	lq, _ := m.Quantity("lengths")
	assert.True(t, lq.Equal(units.MustNew(2, "nm")))
	tq, _ := m.Quantity("time")
	assert.True(t, tq.Equal(units.MustNew(1, "s")))

	err = m.Set(ctx, "unknown", 1)
	iss, ok := qs.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, qs.CodeUnknownKey, iss[0].Code)
}

func TestModel_RefineGuardsAssignments(t *testing.T) {
	ctx := context.Background()
	s := dsl.Object().
		Field("start", dsl.Quantity(quantity.Time)).Required().
		Field("stop", dsl.Quantity(quantity.Time)).Required().
		Refine("ordered", func(_ context.Context, v map[string]any) error {
			start := v["start"].(units.Quantity)
			stop := v["stop"].(units.Quantity)
			inStart, err := stop.ConvertTo(start.Units())
			if err != nil {
				return err
			}
			if inStart.FloatValue() < start.FloatValue() {
				return errors.New("stop before start")
			}
			return nil
		}).
		MustBuild()
	m := model.MustNew(ctx, s, map[string]any{"start": "1 ns", "stop": "2 ns"})
	err := m.Set(ctx, "stop", "500 ps")
	require.Error(t, err)
	stop, _ := m.Quantity("stop")
	assert.True(t, stop.Equal(units.MustNew(2, "ns")))
	require.NoError(t, m.Set(ctx, "stop", "5000 ps"))
}

func TestModel_BoxVectors(t *testing.T) {
	ctx := context.Background()
	s := dsl.Object().
		Field("box_vectors", dsl.Quantity(quantity.Array("nanometer"))).Required().
		MustBuild()
	box := []simunit.Quantity{
		simunit.New(simunit.Vec3{X: 4}, "nanometer"),
		simunit.New(simunit.Vec3{Y: 4}, "nanometer"),
		simunit.New(simunit.Vec3{Z: 4}, "nanometer"),
	}
	m, err := model.New(ctx, s, map[string]any{"box_vectors": box})
	require.NoError(t, err)
	q, _ := m.Quantity("box_vectors")
	assert.Equal(t, []int{3, 3}, q.Array().Shape())

	out, err := m.DumpJSON(ctx)
	require.NoError(t, err)
	back, err := model.ParseJSON(ctx, s, out)
	require.NoError(t, err)
	assert.True(t, m.Equal(back))
}

func TestModel_YAMLRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := model.MustNew(ctx, mixedSchema(), map[string]any{
		"scalar_data": units.MustNew(2.0, "m"),
		"array_data":  units.MustNew([]int{1, 2}, "s"),
		"name":        "baz",
	})
	out, err := m.DumpYAML(ctx)
	require.NoError(t, err)
	assert.Equal(t, "array_data:\n  val: [1, 2]\n  unit: second\nname: baz\nscalar_data:\n  val: 2.0\n  unit: meter\n", string(out))

	back, err := model.ParseYAML(ctx, mixedSchema(), out)
	require.NoError(t, err)
	assert.True(t, m.Equal(back))
	sq, _ := back.Quantity("scalar_data")
	assert.Equal(t, units.KindFloat, sq.Kind())
}

func TestLoadJSONQuantities(t *testing.T) {
	got, err := model.LoadJSONQuantities([]byte(`{
		"a": "{\"val\": 1.5, \"unit\": \"nanometer\"}",
		"b": {"val": [1, 2], "unit": "second"},
		"c": "plain",
		"d": 3
	}`))
	require.NoError(t, err)
	a, ok := got["a"].(units.Quantity)
	require.True(t, ok)
	assert.True(t, a.Equal(units.MustNew(1.5, "nm")))
	b, ok := got["b"].(units.Quantity)
	require.True(t, ok)
	assert.Equal(t, units.KindArray, b.Kind())
	assert.Equal(t, "plain", got["c"])
	assert.Equal(t, json.Number("3"), got["d"])

	_, err = model.LoadJSONQuantities([]byte(`{"x": {"val": 1, "unit": "furlong_of_doom"}}`))
	iss, ok := qs.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "/x", iss[0].Path)
	assert.True(t, errors.Is(err, units.ErrUndefinedUnit))
}
