package dsl

import (
	"context"
	"sort"

	qs "github.com/reoring/qskema"
	"github.com/reoring/qskema/i18n"
	js "github.com/reoring/qskema/jsonschema"
)

// ObjectSchema is the schema built by Object(). Besides Schema[map[string]any]
// it exposes its fields so model instances can validate single assignments
// and encode values.
type ObjectSchema struct {
	fields        map[string]AnyAdapter
	required      map[string]struct{}
	unknownPolicy qs.UnknownPolicy
	refines       []objRefine
	title         string
	sortedKeys    []string
}

var _ qs.Schema[map[string]any] = (*ObjectSchema)(nil)

type objRefine struct {
	name string
	fn   func(context.Context, map[string]any) error
}

// FieldNames returns the declared field names in ascending order.
func (o *ObjectSchema) FieldNames() []string { return append([]string(nil), o.sortedKeys...) }

// Field returns the adapter declared for name.
func (o *ObjectSchema) Field(name string) (AnyAdapter, bool) {
	ad, ok := o.fields[name]
	return ad, ok
}

// IsRequired reports whether name must be present.
func (o *ObjectSchema) IsRequired(name string) bool {
	_, ok := o.required[name]
	return ok
}

// issuesFromErr converts an error into Issues, wrapping non-Issues with CodeParseError.
func issuesFromErr(path string, err error) qs.Issues {
	if err == nil {
		return nil
	}
	if i2, ok := qs.AsIssues(err); ok {
		return qs.RebaseIssues(path, i2)
	}
	return qs.Issues{qs.Issue{Path: path, Code: qs.CodeParseError, Message: err.Error(), Cause: err}}
}

// ParseField parses a single field value, rebasing issues under "/name".
func (o *ObjectSchema) ParseField(ctx context.Context, name string, v any) (any, error) {
	ad, ok := o.fields[name]
	if !ok {
		return nil, qs.Issues{qs.Issue{Path: "/" + name, Code: qs.CodeUnknownKey, Message: i18n.T(qs.CodeUnknownKey, nil)}}
	}
	if v == nil && o.IsRequired(name) {
		return nil, qs.Issues{qs.Issue{Path: "/" + name, Code: qs.CodeRequired, Message: i18n.T(qs.CodeRequired, nil), Hint: "required property is null"}}
	}
	parsed, err := ad.Parse(ctx, v)
	if err != nil {
		return nil, issuesFromErr("/"+name, err)
	}
	return parsed, nil
}

func (o *ObjectSchema) collectKnown(ctx context.Context, src map[string]any, pm qs.PresenceMap) (map[string]any, qs.Issues) {
	out := make(map[string]any, len(src))
	var iss qs.Issues
	for _, k := range o.sortedKeys {
		ad := o.fields[k]
		if val, exists := src[k]; exists {
			pm["/"+k] |= qs.PresenceSeen
			if val == nil {
				pm["/"+k] |= qs.PresenceWasNull
			}
			parsed, err := o.ParseField(ctx, k, val)
			if err != nil {
				iss = qs.AppendIssues(iss, issuesFromErr("/", err)...)
				if qs.IsFailFast(ctx) {
					return out, iss
				}
				continue
			}
			out[k] = parsed
			continue
		}
		if ad.applyDefault != nil {
			dv, err := ad.applyDefault(ctx)
			if err != nil {
				iss = qs.AppendIssues(iss, issuesFromErr("/"+k, err)...)
				if qs.IsFailFast(ctx) {
					return out, iss
				}
				continue
			}
			pm["/"+k] |= qs.PresenceDefaultApplied
			out[k] = dv
			continue
		}
		if _, req := o.required[k]; req {
			iss = qs.AppendIssues(iss, qs.Issue{Path: "/" + k, Code: qs.CodeRequired, Message: i18n.T(qs.CodeRequired, nil), Hint: "required property missing"})
			if qs.IsFailFast(ctx) {
				return out, iss
			}
		}
	}
	return out, iss
}

func (o *ObjectSchema) collectUnknown(src map[string]any) qs.Issues {
	if o.unknownPolicy == qs.UnknownStrip {
		return nil
	}
	uks := make([]string, 0, len(src))
	for k := range src {
		if _, known := o.fields[k]; !known {
			uks = append(uks, k)
		}
	}
	sort.Strings(uks)
	var iss qs.Issues
	for _, k := range uks {
		iss = qs.AppendIssues(iss, qs.Issue{Path: "/" + k, Code: qs.CodeUnknownKey, Message: i18n.T(qs.CodeUnknownKey, nil)})
	}
	return iss
}

func (o *ObjectSchema) Parse(ctx context.Context, v any) (map[string]any, error) {
	d, err := o.ParseWithMeta(ctx, v)
	if err != nil {
		return nil, err
	}
	return d.Value, nil
}

func (o *ObjectSchema) ParseWithMeta(ctx context.Context, v any) (qs.Decoded[map[string]any], error) {
	pm := qs.PresenceMap{"/": qs.PresenceSeen}
	src, ok := v.(map[string]any)
	if !ok {
		return qs.Decoded[map[string]any]{Presence: pm}, invalidType("expected object")
	}
	out, iss := o.collectKnown(ctx, src, pm)
	if qs.IsFailFast(ctx) && len(iss) > 0 {
		return qs.Decoded[map[string]any]{Presence: pm}, iss
	}
	iss = qs.AppendIssues(iss, o.collectUnknown(src)...)
	if len(iss) > 0 {
		return qs.Decoded[map[string]any]{Presence: pm}, iss
	}
	nn, err := qs.ApplyNormalize[map[string]any](ctx, out, o)
	if err != nil {
		return qs.Decoded[map[string]any]{}, err
	}
	if err := qs.ApplyRefine[map[string]any](ctx, nn, o); err != nil {
		return qs.Decoded[map[string]any]{}, err
	}
	return qs.Decoded[map[string]any]{Value: nn, Presence: pm}, nil
}

func (o *ObjectSchema) TypeCheck(ctx context.Context, v any) error {
	if _, ok := v.(map[string]any); !ok {
		return invalidType("expected object")
	}
	return nil
}

func (o *ObjectSchema) RuleCheck(ctx context.Context, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	var iss qs.Issues
	for _, k := range o.sortedKeys {
		val, present := m[k]
		if !present {
			if _, req := o.required[k]; req {
				iss = qs.AppendIssues(iss, qs.Issue{Path: "/" + k, Code: qs.CodeRequired, Message: i18n.T(qs.CodeRequired, nil), Hint: "required property missing"})
			}
		} else if _, err := o.ParseField(ctx, k, val); err != nil {
			iss = qs.AppendIssues(iss, issuesFromErr("/", err)...)
		}
		if len(iss) > 0 && qs.IsFailFast(ctx) {
			return iss
		}
	}
	iss = qs.AppendIssues(iss, o.collectUnknown(m)...)
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func (o *ObjectSchema) Validate(ctx context.Context, v any) error {
	if err := o.TypeCheck(ctx, v); err != nil {
		return err
	}
	return o.RuleCheck(ctx, v)
}

// ValidateValue checks typed field values without conversion. A quantity
// stored in the wrong unit fails here even though Parse would convert it.
func (o *ObjectSchema) ValidateValue(ctx context.Context, v map[string]any) error {
	for _, k := range o.sortedKeys {
		ad := o.fields[k]
		if val, ok := v[k]; ok {
			if err := ad.ValidateValue(ctx, val); err != nil {
				return issuesFromErr("/"+k, err)
			}
		} else if _, req := o.required[k]; req {
			return qs.Issues{qs.Issue{Path: "/" + k, Code: qs.CodeRequired, Message: i18n.T(qs.CodeRequired, nil), Hint: "required property missing"}}
		}
	}
	return nil
}

// Encode renders typed field values for a JSON document; quantity fields
// become wire records in the context's embedding. Keys without a declared
// field are copied as is.
func (o *ObjectSchema) Encode(ctx context.Context, v map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(v))
	var iss qs.Issues
	for k, val := range v {
		ad, ok := o.fields[k]
		if !ok {
			out[k] = val
			continue
		}
		enc, err := ad.Encode(ctx, val)
		if err != nil {
			iss = qs.AppendIssues(iss, issuesFromErr("/"+k, err)...)
			continue
		}
		out[k] = enc
	}
	if len(iss) > 0 {
		sort.SliceStable(iss, func(i, j int) bool { return iss[i].Path < iss[j].Path })
		return nil, iss
	}
	return out, nil
}

func (o *ObjectSchema) JSONSchema() (*js.Schema, error) {
	props := make(map[string]*js.Schema, len(o.fields))
	for k, ad := range o.fields {
		ps, err := ad.JSONSchema()
		if err != nil {
			return nil, err
		}
		if ps == nil {
			ps = &js.Schema{}
		}
		props[k] = ps
	}
	req := make([]string, 0, len(o.required))
	for k := range o.required {
		req = append(req, k)
	}
	sort.Strings(req)
	var additional any
	switch o.unknownPolicy {
	case qs.UnknownStrict:
		additional = false
	case qs.UnknownStrip:
		// Runtime accepts then discards unknown keys.
		additional = true
	}
	return &js.Schema{Type: "object", Title: o.title, Properties: props, Required: req, AdditionalProperties: additional}, nil
}

// Refine implements qskema.Refiner[map[string]any] using builder-registered hooks.
func (o *ObjectSchema) Refine(ctx context.Context, v map[string]any) error {
	var iss qs.Issues
	for _, r := range o.refines {
		if err := r.fn(ctx, v); err != nil {
			if i2, ok := qs.AsIssues(err); ok {
				iss = qs.AppendIssues(iss, i2...)
			} else {
				iss = qs.AppendIssues(iss, qs.Issue{Path: "/", Code: "custom", Message: err.Error(), Hint: r.name, Cause: err})
			}
			if qs.IsFailFast(ctx) {
				return iss
			}
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}
