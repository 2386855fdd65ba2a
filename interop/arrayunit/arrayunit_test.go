package arrayunit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qs "github.com/reoring/qskema"
	"github.com/reoring/qskema/quantity"
	"github.com/reoring/qskema/units"
)

func TestRegisteredWithDefaultRegistry(t *testing.T) {
	assert.Contains(t, quantity.DefaultRegistry().Names(), AdapterName)
}

func TestSubjectFields(t *testing.T) {
	age, err := quantity.Time.Coerce(units.MustNew(20.0, "year"))
	require.NoError(t, err)
	assert.Equal(t, units.KindFloat, age.Kind())

	height, err := quantity.Length.Coerce(Of(170, "cm"))
	require.NoError(t, err)
	assert.Equal(t, units.KindFloat, height.Kind())
	assert.Equal(t, "centimeter", height.Units())

	weight, err := quantity.Mass.Coerce(Of([]int{100, 110, 80}, "kilogram"))
	require.NoError(t, err)
	require.True(t, weight.IsArray())
	assert.Equal(t, units.Float64, weight.Array().DType())
	assert.Equal(t, []float64{100, 110, 80}, weight.Array().Data())
}

func TestExactFieldConverts(t *testing.T) {
	q, err := quantity.Float("meter").Coerce(Scalar{V: 170, Unit: "cm"})
	require.NoError(t, err)
	assert.InDelta(t, 1.7, q.FloatValue(), 1e-12)

	_, err = quantity.Float("meter").Coerce(Scalar{V: 1, Unit: "kg"})
	assert.True(t, errors.Is(err, qs.ErrIncompatibleUnit))
}

func TestAdapt_Errors(t *testing.T) {
	_, ok, err := Adapt(Array{Data: [][]float64{{1, 2}, {3}}, Unit: "m"})
	assert.True(t, ok)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))

	_, ok, err = Adapt(Array{Unit: "m"})
	assert.True(t, ok)
	assert.Error(t, err)

	_, ok, err = Adapt(Scalar{V: 1, Unit: "m/"})
	assert.True(t, ok)
	assert.True(t, errors.Is(err, units.ErrSyntax))

	_, ok, _ = Adapt("1 m")
	assert.False(t, ok)
}

func TestFrom(t *testing.T) {
	v := From(units.MustNew([]int{1, 2}, "second"))
	arr, ok := v.(Array)
	require.True(t, ok)
	assert.Equal(t, []any{1.0, 2.0}, arr.Data)

	back, ok, err := Adapt(v)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, back.Equal(units.MustNew([]int{1, 2}, "second")))

	assert.Equal(t, Scalar{V: 3, Unit: "meter"}, From(units.MustNew(3, "m")))
}
