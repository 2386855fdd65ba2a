package dsl

import (
	"context"
	"math"
	"strconv"

	json "github.com/goccy/go-json"

	qs "github.com/reoring/qskema"
	"github.com/reoring/qskema/i18n"
	js "github.com/reoring/qskema/jsonschema"
)

// String returns the minimal string schema implementation.
func String() qs.Schema[string] { return stringSchema{} }

// Bool returns the minimal bool schema implementation.
func Bool() qs.Schema[bool] { return boolSchema{} }

// Int returns an integer schema. JSON numbers must be integral.
func Int() qs.Schema[int64] { return intSchema{} }

// Float returns a float schema accepting any JSON number.
func Float() qs.Schema[float64] { return floatSchema{} }

type stringSchema struct{}

type boolSchema struct{}

type intSchema struct{}

type floatSchema struct{}

func invalidType(hint string) qs.Issues {
	return qs.Issues{{Path: "/", Code: qs.CodeInvalidType, Message: i18n.T(qs.CodeInvalidType, nil), Hint: hint}}
}

func (stringSchema) Parse(ctx context.Context, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalidType("expected string")
	}
	// Normalize -> ValidateValue -> Refine
	ns, err := qs.ApplyNormalize[string](ctx, s, stringSchema{})
	if err != nil {
		return "", err
	}
	if err := (stringSchema{}).ValidateValue(ctx, ns); err != nil {
		return "", err
	}
	if err := qs.ApplyRefine[string](ctx, ns, stringSchema{}); err != nil {
		return "", err
	}
	return ns, nil
}

func (stringSchema) ParseWithMeta(ctx context.Context, v any) (qs.Decoded[string], error) {
	s, err := (stringSchema{}).Parse(ctx, v)
	return qs.Decoded[string]{Value: s, Presence: qs.PresenceMap{"/": qs.PresenceSeen}}, err
}

func (stringSchema) TypeCheck(ctx context.Context, v any) error {
	if _, ok := v.(string); !ok {
		return invalidType("expected string")
	}
	return nil
}

func (stringSchema) RuleCheck(ctx context.Context, v any) error { return nil }

func (stringSchema) Validate(ctx context.Context, v any) error {
	if err := (stringSchema{}).TypeCheck(ctx, v); err != nil {
		return err
	}
	return (stringSchema{}).RuleCheck(ctx, v)
}

func (stringSchema) ValidateValue(ctx context.Context, v string) error { return nil }

func (stringSchema) JSONSchema() (*js.Schema, error) { return &js.Schema{Type: "string"}, nil }

func (boolSchema) Parse(ctx context.Context, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, invalidType("expected boolean")
	}
	return b, nil
}

func (boolSchema) ParseWithMeta(ctx context.Context, v any) (qs.Decoded[bool], error) {
	b, err := (boolSchema{}).Parse(ctx, v)
	return qs.Decoded[bool]{Value: b, Presence: qs.PresenceMap{"/": qs.PresenceSeen}}, err
}

func (boolSchema) TypeCheck(ctx context.Context, v any) error {
	if _, ok := v.(bool); !ok {
		return invalidType("expected boolean")
	}
	return nil
}

func (boolSchema) RuleCheck(ctx context.Context, v any) error { return nil }

func (boolSchema) Validate(ctx context.Context, v any) error {
	if err := (boolSchema{}).TypeCheck(ctx, v); err != nil {
		return err
	}
	return (boolSchema{}).RuleCheck(ctx, v)
}

func (boolSchema) ValidateValue(ctx context.Context, v bool) error { return nil }

func (boolSchema) JSONSchema() (*js.Schema, error) { return &js.Schema{Type: "boolean"}, nil }

func (intSchema) Parse(ctx context.Context, v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case uint32:
		return int64(t), nil
	case json.Number:
		i, err := strconv.ParseInt(t.String(), 10, 64)
		if err != nil {
			return 0, qs.Issues{{Path: "/", Code: qs.CodeInvalidType, Message: i18n.T(qs.CodeInvalidType, nil), Hint: "expected integer", Cause: err}}
		}
		return i, nil
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t), nil
		}
	}
	return 0, invalidType("expected integer")
}

func (intSchema) ParseWithMeta(ctx context.Context, v any) (qs.Decoded[int64], error) {
	i, err := (intSchema{}).Parse(ctx, v)
	return qs.Decoded[int64]{Value: i, Presence: qs.PresenceMap{"/": qs.PresenceSeen}}, err
}

func (intSchema) TypeCheck(ctx context.Context, v any) error {
	_, err := (intSchema{}).Parse(ctx, v)
	return err
}

func (intSchema) RuleCheck(ctx context.Context, v any) error { return nil }

func (intSchema) Validate(ctx context.Context, v any) error { return (intSchema{}).TypeCheck(ctx, v) }

func (intSchema) ValidateValue(ctx context.Context, v int64) error { return nil }

func (intSchema) JSONSchema() (*js.Schema, error) { return &js.Schema{Type: "integer"}, nil }

func (floatSchema) Parse(ctx context.Context, v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, qs.Issues{{Path: "/", Code: qs.CodeInvalidType, Message: i18n.T(qs.CodeInvalidType, nil), Hint: "expected number", Cause: err}}
		}
		return f, nil
	}
	return 0, invalidType("expected number")
}

func (floatSchema) ParseWithMeta(ctx context.Context, v any) (qs.Decoded[float64], error) {
	f, err := (floatSchema{}).Parse(ctx, v)
	return qs.Decoded[float64]{Value: f, Presence: qs.PresenceMap{"/": qs.PresenceSeen}}, err
}

func (floatSchema) TypeCheck(ctx context.Context, v any) error {
	_, err := (floatSchema{}).Parse(ctx, v)
	return err
}

func (floatSchema) RuleCheck(ctx context.Context, v any) error { return nil }

func (floatSchema) Validate(ctx context.Context, v any) error {
	return (floatSchema{}).TypeCheck(ctx, v)
}

func (floatSchema) ValidateValue(ctx context.Context, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return qs.Issues{{Path: "/", Code: qs.CodeInvalidFormat, Message: i18n.T(qs.CodeInvalidFormat, nil), Hint: "finite number required"}}
	}
	return nil
}

func (floatSchema) JSONSchema() (*js.Schema, error) { return js.Number(), nil }
