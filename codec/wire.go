package codec

import (
	"context"

	qs "github.com/reoring/qskema"
	js "github.com/reoring/qskema/jsonschema"
	"github.com/reoring/qskema/quantity"
	"github.com/reoring/qskema/units"
)

// WireString returns a Codec between record JSON text (the nested embedding)
// and quantities of field f.
func WireString(f *quantity.Field) qs.Codec[string, units.Quantity] {
	return &wireStringCodec{in: recordStringSchema{}, out: f}
}

// WireRecord returns a Codec between a decoded record map (the inline
// embedding, or a native dict) and quantities of field f.
func WireRecord(f *quantity.Field) qs.Codec[map[string]any, units.Quantity] {
	return &wireRecordCodec{in: recordMapSchema{}, out: f}
}

type wireStringCodec struct {
	in  qs.Schema[string]
	out *quantity.Field
}

func (c *wireStringCodec) In() qs.Schema[string]         { return c.in }
func (c *wireStringCodec) Out() qs.Schema[units.Quantity] { return c.out }

func (c *wireStringCodec) Decode(ctx context.Context, a string) (units.Quantity, error) {
	// wire(string) -> record -> contract -> Out.ValidateValue
	q, err := quantity.DecodeString(a)
	if err != nil {
		return units.Quantity{}, issueOf(err)
	}
	return c.toDomain(ctx, q)
}

func (c *wireStringCodec) toDomain(ctx context.Context, q units.Quantity) (units.Quantity, error) {
	q, err := c.out.Coerce(q)
	if err != nil {
		return units.Quantity{}, issueOf(err)
	}
	if err := c.out.ValidateValue(ctx, q); err != nil {
		return units.Quantity{}, err
	}
	return q, nil
}

func (c *wireStringCodec) Encode(ctx context.Context, b units.Quantity) (string, error) {
	// Validate using Out, convert to wire(string), then re-validate via In.Parse
	if err := c.out.ValidateValue(ctx, b); err != nil {
		return "", err
	}
	s, err := quantity.EncodeString(b)
	if err != nil {
		return "", issueOf(err)
	}
	if _, err := c.in.Parse(ctx, s); err != nil {
		return "", err
	}
	return s, nil
}

type wireRecordCodec struct {
	in  qs.Schema[map[string]any]
	out *quantity.Field
}

func (c *wireRecordCodec) In() qs.Schema[map[string]any] { return c.in }
func (c *wireRecordCodec) Out() qs.Schema[units.Quantity] { return c.out }

func (c *wireRecordCodec) Decode(ctx context.Context, a map[string]any) (units.Quantity, error) {
	q, err := quantity.DecodeRecord(a)
	if err != nil {
		return units.Quantity{}, issueOf(err)
	}
	q, err = c.out.Coerce(q)
	if err != nil {
		return units.Quantity{}, issueOf(err)
	}
	if err := c.out.ValidateValue(ctx, q); err != nil {
		return units.Quantity{}, err
	}
	return q, nil
}

func (c *wireRecordCodec) Encode(ctx context.Context, b units.Quantity) (map[string]any, error) {
	if err := c.out.ValidateValue(ctx, b); err != nil {
		return nil, err
	}
	if _, err := quantity.Encode(b); err != nil {
		return nil, issueOf(err)
	}
	m := map[string]any{quantity.KeyVal: b.Magnitude(), quantity.KeyUnit: b.Units()}
	if b.IsArray() {
		m[quantity.KeyVal] = b.Array().Nested()
	}
	if _, err := c.in.Parse(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func issueOf(err error) qs.Issues {
	if iss, ok := qs.AsIssues(err); ok {
		return iss
	}
	return qs.Issues{qs.UnitIssue(qs.RootPath(), err)}
}

// ---- wire-side schemas ----

type recordStringSchema struct{}

func (recordStringSchema) Parse(ctx context.Context, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", qs.Issues{{Path: "/", Code: qs.CodeInvalidType, Message: "expected a JSON-encoded quantity record"}}
	}
	if _, err := quantity.DecodeString(s); err != nil {
		return "", issueOf(err)
	}
	return s, nil
}

func (s recordStringSchema) ParseWithMeta(ctx context.Context, v any) (qs.Decoded[string], error) {
	str, err := s.Parse(ctx, v)
	return qs.Decoded[string]{Value: str, Presence: qs.PresenceMap{"/": qs.PresenceSeen}}, err
}
func (s recordStringSchema) TypeCheck(ctx context.Context, v any) error {
	if _, ok := v.(string); !ok {
		return qs.Issues{{Path: "/", Code: qs.CodeInvalidType, Message: "expected string"}}
	}
	return nil
}
func (s recordStringSchema) RuleCheck(ctx context.Context, v any) error {
	_, err := s.Parse(ctx, v)
	return err
}
func (s recordStringSchema) Validate(ctx context.Context, v any) error { return s.RuleCheck(ctx, v) }
func (s recordStringSchema) ValidateValue(ctx context.Context, v string) error {
	_, err := s.Parse(ctx, v)
	return err
}
func (recordStringSchema) JSONSchema() (*js.Schema, error) {
	return &js.Schema{Type: "string", Format: "quantity-record"}, nil
}

type recordMapSchema struct{}

func (recordMapSchema) Parse(ctx context.Context, v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, qs.Issues{{Path: "/", Code: qs.CodeInvalidType, Message: "expected a quantity record object"}}
	}
	if _, err := quantity.DecodeRecord(m); err != nil {
		return nil, issueOf(err)
	}
	return m, nil
}

func (s recordMapSchema) ParseWithMeta(ctx context.Context, v any) (qs.Decoded[map[string]any], error) {
	m, err := s.Parse(ctx, v)
	return qs.Decoded[map[string]any]{Value: m, Presence: qs.PresenceMap{"/": qs.PresenceSeen}}, err
}
func (s recordMapSchema) TypeCheck(ctx context.Context, v any) error {
	if _, ok := v.(map[string]any); !ok {
		return qs.Issues{{Path: "/", Code: qs.CodeInvalidType, Message: "expected object"}}
	}
	return nil
}
func (s recordMapSchema) RuleCheck(ctx context.Context, v any) error {
	_, err := s.Parse(ctx, v)
	return err
}
func (s recordMapSchema) Validate(ctx context.Context, v any) error { return s.RuleCheck(ctx, v) }
func (s recordMapSchema) ValidateValue(ctx context.Context, v map[string]any) error {
	_, err := s.Parse(ctx, v)
	return err
}
func (recordMapSchema) JSONSchema() (*js.Schema, error) {
	return &js.Schema{
		Type: "object",
		Properties: map[string]*js.Schema{
			quantity.KeyVal:  {OneOf: []*js.Schema{js.Number(), js.ArrayOf(js.Number())}},
			quantity.KeyUnit: {Type: "string"},
		},
		Required:             []string{quantity.KeyUnit, quantity.KeyVal},
		AdditionalProperties: false,
	}, nil
}
