package qskema

import (
	"context"

	js "github.com/reoring/qskema/jsonschema"
)

// Schema surfaces the pillars of construction, type checking, value
// validation, and typed validation.
type Schema[T any] interface {
	// Parse transforms an unknown input into T (Coerce -> Normalize ->
	// Validate -> Refine). It returns an error when validation fails.
	Parse(ctx context.Context, v any) (T, error)
	// ParseWithMeta returns the typed value together with presence metadata.
	ParseWithMeta(ctx context.Context, v any) (Decoded[T], error)

	// TypeCheck verifies that v has a shape the schema can coerce.
	TypeCheck(ctx context.Context, v any) error

	// RuleCheck runs the schema's value rules (units, dimensionality,
	// required keys) assuming TypeCheck already succeeded.
	RuleCheck(ctx context.Context, v any) error

	// Validate composes TypeCheck followed by RuleCheck.
	Validate(ctx context.Context, v any) error

	// ValidateValue verifies a value already typed as T without any conversion.
	ValidateValue(ctx context.Context, v T) error

	// JSONSchema projects the schema into a JSON Schema representation.
	JSONSchema() (*js.Schema, error)
}

// Codec performs bidirectional transformation and validation between the wire
// representation A and the domain representation B.
type Codec[A, B any] interface {
	In() Schema[A]                              // Wire schema (input side).
	Out() Schema[B]                             // Domain schema (output side).
	Decode(ctx context.Context, a A) (B, error) // A (In) -> B (convert) -> Out.ValidateValue.
	Encode(ctx context.Context, b B) (A, error) // Out.ValidateValue -> A -> In.Parse for revalidation.
}

// Decode is a thin wrapper around Schema.Parse for the forward direction.
func Decode[T any](ctx context.Context, s Schema[T], v any) (T, error) {
	return s.Parse(ctx, v)
}

// Encode is a convenience wrapper over Codec.Encode (output->input) direction.
func Encode[A, B any](ctx context.Context, c Codec[A, B], b B) (A, error) {
	return c.Encode(ctx, b)
}

// Normalizer provides an optional hook to normalize typed values during the
// Normalize phase of parsing. If it is not implemented, the phase is skipped.
type Normalizer[T any] interface {
	Normalize(ctx context.Context, v T) (T, error)
}

// Refiner provides an optional hook at the end of parsing to perform
// cross-field validation. If it is not implemented, the phase is skipped.
type Refiner[T any] interface {
	Refine(ctx context.Context, v T) error
}

// SafeParse parses v into T, returning (zero, false) on validation error.
func SafeParse[T any](ctx context.Context, s Schema[T], v any) (T, bool) {
	val, err := s.Parse(ctx, v)
	if err != nil {
		var zero T
		return zero, false
	}
	return val, true
}

// Is returns true if v conforms to the schema s (TypeCheck+RuleCheck).
func Is[T any](ctx context.Context, s Schema[T], v any) bool {
	return s.Validate(ctx, v) == nil
}

// ---- Parse-time context options (exported for subpackages) ----

type contextKey int

const (
	_ctxKeyFailFast contextKey = iota
	_ctxKeyMode
	_ctxKeyEmbedding
)

// WithFailFast returns a child context that marks fail-fast parsing behavior.
// This is set by ParseFrom/ParseFromWithMeta based on ParseOpt and consumed by schema implementations.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current parse should stop on the first issue.
func IsFailFast(ctx context.Context) bool {
	v := ctx.Value(_ctxKeyFailFast)
	b, _ := v.(bool)
	return b
}

// WithMode returns a child context that selects native or JSON decoding for
// quantity fields.
func WithMode(ctx context.Context, m Mode) context.Context {
	return context.WithValue(ctx, _ctxKeyMode, m)
}

// ModeFrom reports the decoding mode, ModeNative when unset.
func ModeFrom(ctx context.Context) Mode {
	m, _ := ctx.Value(_ctxKeyMode).(Mode)
	return m
}

// WithEmbedding returns a child context that selects how wire records are
// embedded in JSON documents.
func WithEmbedding(ctx context.Context, e Embedding) context.Context {
	return context.WithValue(ctx, _ctxKeyEmbedding, e)
}

// EmbeddingFrom reports the active embedding, EmbedNested when unset.
func EmbeddingFrom(ctx context.Context) Embedding {
	e, _ := ctx.Value(_ctxKeyEmbedding).(Embedding)
	return e
}

func hasEmbedding(ctx context.Context) bool {
	_, ok := ctx.Value(_ctxKeyEmbedding).(Embedding)
	return ok
}
