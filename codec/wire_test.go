package codec

import (
	"context"
	"errors"
	"testing"

	qs "github.com/reoring/qskema"
	"github.com/reoring/qskema/quantity"
	"github.com/reoring/qskema/units"
)

func TestWireString_Codec_Basic(t *testing.T) {
	c := WireString(quantity.Float("nanometer"))
	ctx := context.Background()

	got, err := c.Decode(ctx, `{"val": 15, "unit": "angstrom"}`)
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if got.Units() != "nanometer" || got.FloatValue() != 1.5 {
		t.Fatalf("unexpected quantity: %s", got)
	}

	out, err := c.Encode(ctx, got)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if out != `{"val":1.5,"unit":"nanometer"}` {
		t.Fatalf("unexpected wire text: %s", out)
	}
}

func TestWireString_Codec_Errors(t *testing.T) {
	c := WireString(quantity.Float("nanometer"))
	ctx := context.Background()

	_, err := c.Decode(ctx, `{"val": 1.0, "unit": "picosecond"}`)
	iss, ok := qs.AsIssues(err)
	if !ok || iss[0].Code != qs.CodeIncompatibleUnit {
		t.Fatalf("expected incompatible_unit, got: %v", err)
	}

	_, err = c.Decode(ctx, `{"val": 1.0, "unit": "nm", "extra": 1}`)
	if !errors.Is(err, qs.ErrUnitValidation) {
		t.Fatalf("expected unit validation error, got: %v", err)
	}

	// Encode refuses values not already in the field's unit.
	if _, err := c.Encode(ctx, units.MustNew(10.0, "angstrom")); err == nil {
		t.Fatalf("expected encode to reject a non-canonical quantity")
	}
}

func TestWireRecord_Codec_RoundTrip(t *testing.T) {
	c := WireRecord(quantity.Array("picosecond"))
	ctx := context.Background()

	q, err := c.Decode(ctx, map[string]any{"val": []any{2, 3}, "unit": "picosecond"})
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	m, err := c.Encode(ctx, q)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if m["unit"] != "picosecond" {
		t.Fatalf("unexpected unit: %v", m["unit"])
	}
	back, err := c.Decode(ctx, m)
	if err != nil {
		t.Fatalf("re-decode err: %v", err)
	}
	if !back.Equal(q) || back.Array().DType() != units.Int64 {
		t.Fatalf("round trip mismatch: %s vs %s", back, q)
	}

	if _, err := c.In().Parse(ctx, map[string]any{"data": []any{1, 2}, "unit": "ps"}); err == nil {
		t.Fatalf("expected bad key to be rejected")
	}
}

func TestQsEncodeHelper(t *testing.T) {
	c := WireString(quantity.Length)
	s, err := qs.Encode(context.Background(), c, units.MustNew(2, "bohr"))
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if s != `{"val":2,"unit":"bohr"}` {
		t.Fatalf("dimension fields keep the unit: %s", s)
	}
}
