package simunit

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

func TestAdapt_Scalars(t *testing.T) {
	q, ok, err := Adapt(New(2, "nanometer"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, units.KindInt, q.Kind())

	q, ok, err = Adapt(&Quantity{Value: 0.4, Unit: "nanometer"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.4, q.FloatValue())

	_, ok, err = Adapt(3.0)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestAdapt_Errors(t *testing.T) {
	_, ok, err := Adapt(New("four", "nanometer"))
	assert.True(t, ok)
	assert.True(t, errors.Is(err, qs.ErrUnitValidation))

	_, ok, err = Adapt(New(1.0, "parsec_of_doom"))
	assert.True(t, ok)
	assert.True(t, errors.Is(err, units.ErrUndefinedUnit))
}

func TestField_AcceptsToolkitQuantities(t *testing.T) {
	q, err := quantity.Length.Coerce(New(0.4, "nanometer"))
	require.NoError(t, err)
	assert.Equal(t, "nanometer", q.Units())

	q, err = quantity.Int("nanometer").Coerce(New(2, "nanometer"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), q.IntValue())

	q, err = quantity.Time.Coerce(New([]int{3, 2, 1}, "second"))
	require.NoError(t, err)
	assert.True(t, q.Equal(units.MustNew([]int{3, 2, 1}, "second")))
	assert.Equal(t, units.Float64, q.Array().DType())

	_, err = quantity.Length.Coerce(New(1.0, "picosecond"))
	assert.True(t, errors.Is(err, qs.ErrIncompatibleUnit))
}

func TestBoxVectors(t *testing.T) {
	// Rows as returned by a periodic box vector getter.
	box := []Quantity{
		New(Vec3{X: 4}, "nanometer"),
		New(Vec3{Y: 2}, "nanometer"),
		New(Vec3{Z: 5}, "nanometer"),
	}
	for _, unit := range []string{"nanometer", "angstrom"} {
		f := quantity.Array(unit)
		q, err := f.Coerce(box)
		require.NoError(t, err, unit)
		assert.Equal(t, []int{3, 3}, q.Array().Shape(), unit)
		assert.Equal(t, f.Unit().String(), q.Units(), unit)

		inNm, err := q.ConvertTo("nanometer")
		require.NoError(t, err)
		for i, want := range []float64{4, 2, 5} {
			assert.InDelta(t, want, inNm.Array().At(i, i), 1e-12, unit)
		}
	}

	q, err := quantity.Length.Coerce(New([]Vec3{{X: 4}, {Y: 4}, {Z: 4}}, "nanometer"))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3}, q.Array().Shape())
}

func TestFromQuantity(t *testing.T) {
	box, err := units.Matrix([]float64{4, 0, 0}, []float64{0, 4, 0}, []float64{0, 0, 4})
	require.NoError(t, err)
	out := FromQuantity(units.FromArray(box, units.MustParseUnit("nm")))
	vecs, ok := out.Value.([]Vec3)
	require.True(t, ok)
	assert.Equal(t, Vec3{Z: 4}, vecs[2])
	assert.Equal(t, "nanometer", out.Unit)

	back, ok, err := Adapt(out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, back.Equal(units.FromArray(box, units.MustParseUnit("nm"))))

	assert.Equal(t, 2, FromQuantity(units.MustNew(2, "nm")).Value)
}
