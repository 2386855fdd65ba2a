package dsl

import (
	"context"

	qs "github.com/reoring/qskema"
	"github.com/reoring/qskema/i18n"
	js "github.com/reoring/qskema/jsonschema"
)

// ValueEncoder is implemented by schemas whose typed values need a different
// representation in a JSON document, such as quantity fields.
type ValueEncoder interface {
	EncodeValue(ctx context.Context, v any) (any, error)
}

// AnyAdapter adapts Schema[T] to an any-typed DSL wrapper.
// It keeps the original schema to support default application, encoding and
// JSON Schema augmentation.
type AnyAdapter struct {
	parse         func(context.Context, any) (any, error)
	validateValue func(context.Context, any) error
	encode        func(context.Context, any) (any, error)
	applyDefault  func(context.Context) (any, error)
	jsonSchema    func() (*js.Schema, error)
	orig          any
}

// anyAdapterFromSchema wraps a strongly typed Schema[T] as AnyAdapter for Field builders.
func anyAdapterFromSchema[T any](s qs.Schema[T]) AnyAdapter {
	ad := AnyAdapter{
		parse: func(ctx context.Context, v any) (any, error) { return s.Parse(ctx, v) },
		validateValue: func(ctx context.Context, v any) error {
			tv, ok := v.(T)
			if !ok {
				return qs.Issues{qs.Issue{Path: "/", Code: qs.CodeInvalidType, Message: i18n.T(qs.CodeInvalidType, nil)}}
			}
			return s.ValidateValue(ctx, tv)
		},
		jsonSchema: s.JSONSchema,
		orig:       s,
	}
	if enc, ok := any(s).(ValueEncoder); ok {
		ad.encode = enc.EncodeValue
	}
	return ad
}

// SchemaOf converts an arbitrary Schema[T] into an AnyAdapter for Field.
func SchemaOf[T any](s qs.Schema[T]) AnyAdapter { return anyAdapterFromSchema[T](s) }

// Orig returns the original underlying Schema[T] used to create this adapter.
func (ad AnyAdapter) Orig() any { return ad.orig }

// Parse runs the wrapped schema's Parse.
func (ad AnyAdapter) Parse(ctx context.Context, v any) (any, error) {
	if ad.parse == nil {
		return v, nil
	}
	return ad.parse(ctx, v)
}

// ValidateValue checks an already typed value.
func (ad AnyAdapter) ValidateValue(ctx context.Context, v any) error {
	if ad.validateValue == nil {
		return nil
	}
	return ad.validateValue(ctx, v)
}

// Encode renders a typed value for a JSON document. Values of schemas without
// a ValueEncoder are returned unchanged.
func (ad AnyAdapter) Encode(ctx context.Context, v any) (any, error) {
	if ad.encode == nil || v == nil {
		return v, nil
	}
	return ad.encode(ctx, v)
}

// JSONSchema projects the wrapped schema.
func (ad AnyAdapter) JSONSchema() (*js.Schema, error) {
	if ad.jsonSchema == nil {
		return &js.Schema{}, nil
	}
	return ad.jsonSchema()
}

// Nullable wraps an AnyAdapter to accept nulls (JSON null) for both parse and validate.
// When the input value is nil, parsing succeeds and returns nil; validation also succeeds.
func Nullable(ad AnyAdapter) AnyAdapter {
	prevParse := ad.parse
	prevValidate := ad.validateValue
	out := ad
	out.parse = func(ctx context.Context, v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		if prevParse == nil {
			return v, nil
		}
		return prevParse(ctx, v)
	}
	out.validateValue = func(ctx context.Context, v any) error {
		if v == nil || prevValidate == nil {
			return nil
		}
		return prevValidate(ctx, v)
	}
	return out
}

// Nullable enables fluent chaining: dsl.SchemaOf(quantity.Length).Nullable()
func (ad AnyAdapter) Nullable() AnyAdapter { return Nullable(ad) }

// Describe sets the JSON Schema description of the field.
func (ad AnyAdapter) Describe(text string) AnyAdapter {
	prev := ad.jsonSchema
	out := ad
	out.jsonSchema = func() (*js.Schema, error) {
		s := &js.Schema{}
		if prev != nil {
			ps, err := prev()
			if err != nil {
				return nil, err
			}
			if ps != nil {
				s = ps
			}
		}
		s.Description = text
		return s, nil
	}
	return out
}
