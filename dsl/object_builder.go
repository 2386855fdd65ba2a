package dsl

import (
	"context"
	"sort"

	qs "github.com/reoring/qskema"
	"github.com/reoring/qskema/i18n"
	js "github.com/reoring/qskema/jsonschema"
)

type objectBuilder struct {
	fields        map[string]AnyAdapter
	required      map[string]struct{}
	unknownPolicy qs.UnknownPolicy
	refines       []objRefine
	title         string
}

type fieldStep struct {
	b    *objectBuilder
	name string
}

// Object creates a new object builder with safe defaults (UnknownStrict).
func Object() *objectBuilder {
	return &objectBuilder{
		fields:        map[string]AnyAdapter{},
		required:      map[string]struct{}{},
		unknownPolicy: qs.UnknownStrict,
	}
}

// Field registers a field with its adapter.
func (b *objectBuilder) Field(name string, ad AnyAdapter) *fieldStep {
	b.fields[name] = ad
	return &fieldStep{b: b, name: name}
}

// Required marks the field as required and returns the builder.
func (f *fieldStep) Required() *objectBuilder {
	f.b.required[f.name] = struct{}{}
	return f.b
}

// Optional marks the field as optional (default) and returns the builder.
func (f *fieldStep) Optional() *objectBuilder {
	delete(f.b.required, f.name)
	return f.b
}

// Default sets a default for the current field. The default goes through the
// field's Parse, so "1.0 nm" is a valid default for a quantity field.
func (f *fieldStep) Default(v any) *objectBuilder {
	ad := f.b.fields[f.name]
	parse := ad.parse
	ad.applyDefault = func(ctx context.Context) (any, error) {
		if parse == nil {
			return v, nil
		}
		return parse(qs.WithMode(ctx, qs.ModeNative), v)
	}
	prev := ad.jsonSchema
	ad.jsonSchema = func() (*js.Schema, error) {
		if prev == nil {
			return &js.Schema{Default: v}, nil
		}
		s, err := prev()
		if err != nil {
			return nil, err
		}
		if s == nil {
			s = &js.Schema{}
		}
		s.Default = v
		return s, nil
	}
	f.b.fields[f.name] = ad
	return f.b
}

func (f *fieldStep) Require(names ...string) *objectBuilder      { return f.b.Require(names...) }
func (f *fieldStep) UnknownStrict() *objectBuilder               { return f.b.UnknownStrict() }
func (f *fieldStep) UnknownStrip() *objectBuilder                { return f.b.UnknownStrip() }
func (f *fieldStep) Field(name string, ad AnyAdapter) *fieldStep { return f.b.Field(name, ad) }
func (f *fieldStep) Build() (*ObjectSchema, error)               { return f.b.Build() }
func (f *fieldStep) MustBuild() *ObjectSchema                    { return f.b.MustBuild() }
func (f *fieldStep) Refine(name string, fn func(context.Context, map[string]any) error) *objectBuilder {
	return f.b.Refine(name, fn)
}

// Require marks one or more fields as required.
func (b *objectBuilder) Require(names ...string) *objectBuilder {
	for _, n := range names {
		b.required[n] = struct{}{}
	}
	return b
}

// UnknownStrict sets unknown policy to Strict.
func (b *objectBuilder) UnknownStrict() *objectBuilder {
	b.unknownPolicy = qs.UnknownStrict
	return b
}

// UnknownStrip sets unknown policy to Strip.
func (b *objectBuilder) UnknownStrip() *objectBuilder {
	b.unknownPolicy = qs.UnknownStrip
	return b
}

// Title names the object in JSON Schema output.
func (b *objectBuilder) Title(t string) *objectBuilder {
	b.title = t
	return b
}

// Refine adds an object-level refine function. It is executed after Normalize/ValidateValue.
func (b *objectBuilder) Refine(name string, fn func(context.Context, map[string]any) error) *objectBuilder {
	if fn == nil {
		return b
	}
	b.refines = append(b.refines, objRefine{name: name, fn: fn})
	return b
}

// Build validates the builder and returns a Schema.
func (b *objectBuilder) Build() (*ObjectSchema, error) {
	for k := range b.required {
		if _, ok := b.fields[k]; !ok {
			return nil, qs.Issues{qs.Issue{Path: "/" + k, Code: qs.CodeParseError, Message: i18n.T(qs.CodeParseError, nil), Hint: "required field is not declared"}}
		}
	}
	fields := make(map[string]AnyAdapter, len(b.fields))
	kfs := make([]string, 0, len(b.fields))
	for k, ad := range b.fields {
		fields[k] = ad
		kfs = append(kfs, k)
	}
	sort.Strings(kfs)
	required := make(map[string]struct{}, len(b.required))
	for k := range b.required {
		required[k] = struct{}{}
	}
	return &ObjectSchema{
		fields:        fields,
		required:      required,
		unknownPolicy: b.unknownPolicy,
		refines:       append([]objRefine(nil), b.refines...),
		title:         b.title,
		sortedKeys:    kfs,
	}, nil
}

// MustBuild is like Build but panics on error.
func (b *objectBuilder) MustBuild() *ObjectSchema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
