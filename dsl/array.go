package dsl

import (
	"context"
	"strconv"

	qs "github.com/reoring/qskema"
	"github.com/reoring/qskema/i18n"
	js "github.com/reoring/qskema/jsonschema"
)

// ListSchema is a homogeneous list whose elements are parsed by one schema,
// for example a trajectory of times where every frame is its own quantity
// record. A unit array magnitude is a single quantity; use a quantity array
// field for that instead.
type ListSchema[E any] struct {
	elem   qs.Schema[E]
	minLen int
	maxLen int
}

var _ qs.Schema[[]any] = (*ListSchema[any])(nil)

// List returns a list schema with the given element schema.
func List[E any](elem qs.Schema[E]) *ListSchema[E] {
	return &ListSchema[E]{elem: elem, minLen: -1, maxLen: -1}
}

// ListOf adapts List[E] for object fields.
// Example: Field("frame_times", dsl.ListOf(quantity.Time))
func ListOf[E any](elem qs.Schema[E]) AnyAdapter {
	return anyAdapterFromSchema[[]E](List[E](elem))
}

// Min sets the minimum length.
func (a *ListSchema[E]) Min(n int) *ListSchema[E] { a.minLen = n; return a }

// Max sets the maximum length.
func (a *ListSchema[E]) Max(n int) *ListSchema[E] { a.maxLen = n; return a }

// Adapter returns the list as an AnyAdapter.
func (a *ListSchema[E]) Adapter() AnyAdapter { return anyAdapterFromSchema[[]E](a) }

func indexPath(i int) string { return "/" + strconv.Itoa(i) }

func (a *ListSchema[E]) Parse(ctx context.Context, v any) ([]E, error) {
	switch src := v.(type) {
	case []E:
		if err := a.ValidateValue(ctx, src); err != nil {
			return nil, err
		}
		return a.finish(ctx, src)
	case []any:
		res := make([]E, 0, len(src))
		var iss qs.Issues
		for i := range src {
			ev, err := a.elem.Parse(ctx, src[i])
			if err != nil {
				iss = qs.AppendIssues(iss, issuesFromErr(indexPath(i), err)...)
				if qs.IsFailFast(ctx) {
					return nil, iss
				}
				continue
			}
			res = append(res, ev)
		}
		if len(iss) > 0 {
			return nil, iss
		}
		if err := a.checkLen(len(res)); err != nil {
			return nil, err
		}
		return a.finish(ctx, res)
	default:
		return nil, qs.Issues{qs.Issue{Path: "/", Code: qs.CodeInvalidType, Message: i18n.T(qs.CodeInvalidType, nil), Hint: "expected array"}}
	}
}

func (a *ListSchema[E]) finish(ctx context.Context, v []E) ([]E, error) {
	nn, err := qs.ApplyNormalize[[]E](ctx, v, a)
	if err != nil {
		return nil, err
	}
	if err := qs.ApplyRefine[[]E](ctx, nn, a); err != nil {
		return nil, err
	}
	return nn, nil
}

func (a *ListSchema[E]) ParseWithMeta(ctx context.Context, v any) (qs.Decoded[[]E], error) {
	arr, err := a.Parse(ctx, v)
	return qs.Decoded[[]E]{Value: arr, Presence: qs.PresenceMap{"/": qs.PresenceSeen}}, err
}

func (a *ListSchema[E]) TypeCheck(ctx context.Context, v any) error {
	switch v.(type) {
	case []E, []any:
		return nil
	default:
		return qs.Issues{qs.Issue{Path: "/", Code: qs.CodeInvalidType, Message: i18n.T(qs.CodeInvalidType, nil), Hint: "expected array"}}
	}
}

func (a *ListSchema[E]) checkLen(n int) error {
	var iss qs.Issues
	if a.minLen >= 0 && n < a.minLen {
		iss = qs.AppendIssues(iss, qs.Issue{Path: "/", Code: qs.CodeTooShort, Message: i18n.T(qs.CodeTooShort, nil), Hint: "array is shorter than min"})
	}
	if a.maxLen >= 0 && n > a.maxLen {
		iss = qs.AppendIssues(iss, qs.Issue{Path: "/", Code: qs.CodeTooLong, Message: i18n.T(qs.CodeTooLong, nil), Hint: "array is longer than max"})
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func (a *ListSchema[E]) RuleCheck(ctx context.Context, v any) error {
	switch t := v.(type) {
	case []E:
		return a.checkLen(len(t))
	case []any:
		return a.checkLen(len(t))
	}
	return nil
}

func (a *ListSchema[E]) Validate(ctx context.Context, v any) error {
	if err := a.TypeCheck(ctx, v); err != nil {
		return err
	}
	return a.RuleCheck(ctx, v)
}

func (a *ListSchema[E]) ValidateValue(ctx context.Context, v []E) error {
	if err := a.checkLen(len(v)); err != nil {
		return err
	}
	for i := range v {
		if err := a.elem.ValidateValue(ctx, v[i]); err != nil {
			return issuesFromErr(indexPath(i), err)
		}
	}
	return nil
}

// EncodeValue encodes every element with the element schema's encoder, so a
// list of quantities becomes a list of wire records.
func (a *ListSchema[E]) EncodeValue(ctx context.Context, v any) (any, error) {
	enc, ok := any(a.elem).(ValueEncoder)
	if !ok {
		return v, nil
	}
	var items []any
	switch t := v.(type) {
	case []E:
		items = make([]any, len(t))
		for i := range t {
			items[i] = t[i]
		}
	case []any:
		items = t
	default:
		return nil, qs.Issues{qs.Issue{Path: "/", Code: qs.CodeInvalidType, Message: i18n.T(qs.CodeInvalidType, nil), Hint: "expected array"}}
	}
	out := make([]any, len(items))
	var iss qs.Issues
	for i, it := range items {
		e, err := enc.EncodeValue(ctx, it)
		if err != nil {
			iss = qs.AppendIssues(iss, issuesFromErr(indexPath(i), err)...)
			continue
		}
		out[i] = e
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (a *ListSchema[E]) JSONSchema() (*js.Schema, error) {
	es, err := a.elem.JSONSchema()
	if err != nil {
		return nil, err
	}
	s := &js.Schema{Type: "array", Items: es}
	if a.minLen >= 0 {
		n := a.minLen
		s.MinItems = &n
	}
	if a.maxLen >= 0 {
		n := a.maxLen
		s.MaxItems = &n
	}
	return s, nil
}
