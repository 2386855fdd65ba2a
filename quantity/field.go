package quantity

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	qs "github.com/reoring/qskema"
	"github.com/reoring/qskema/i18n"
	js "github.com/reoring/qskema/jsonschema"
	"github.com/reoring/qskema/units"
)

// Config describes a field type. An empty Unit means dimensionless.
type Config struct {
	Numeric     Numeric
	Unit        string
	Contract    ContractKind
	Description string
	// Adapters recognizes foreign quantities; nil means DefaultRegistry().
	Adapters *Registry
}

// Field is an immutable, reusable quantity field type. It implements
// qskema.Schema[units.Quantity].
type Field struct {
	cfg      Config
	contract Contract
	adapters *Registry
}

var _ qs.Schema[units.Quantity] = (*Field)(nil)

// New builds a field type from cfg. The unit is resolved once, here.
func New(cfg Config) (*Field, error) {
	u, err := units.ParseUnit(cfg.Unit)
	if err != nil {
		return nil, fmt.Errorf("quantity: field unit %q: %w", cfg.Unit, err)
	}
	if cfg.Contract == DimensionOnly && cfg.Numeric != NumericAny {
		return nil, fmt.Errorf("quantity: dimension fields accept any numeric kind, got %s", cfg.Numeric)
	}
	f := &Field{cfg: cfg, contract: Contract{Kind: cfg.Contract, Unit: u, Numeric: cfg.Numeric}, adapters: cfg.Adapters}
	if f.adapters == nil {
		f.adapters = defaultAdapters
	}
	return f, nil
}

// MustNew is like New but panics on error. Intended for package level field declarations.
func MustNew(cfg Config) *Field {
	f, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return f
}

// Int is a field storing an int magnitude in unit. Floats truncate toward zero.
func Int(unit string) *Field {
	return MustNew(Config{Numeric: NumericInt, Unit: unit, Contract: ExactCoerce})
}

// Float is a field storing a float magnitude in unit.
func Float(unit string) *Field {
	return MustNew(Config{Numeric: NumericFloat, Unit: unit, Contract: ExactCoerce})
}

// Array is a field storing an array magnitude in unit.
func Array(unit string) *Field {
	return MustNew(Config{Numeric: NumericArray, Unit: unit, Contract: ExactCoerce})
}

// Dimension is a field accepting any unit dimensionally compatible with unit,
// stored as given.
func Dimension(unit string) *Field {
	return MustNew(Config{Unit: unit, Contract: DimensionOnly})
}

// Unit is a field converting any numeric kind into unit.
func Unit(unit string) *Field {
	return MustNew(Config{Unit: unit, Contract: ExactCoerce})
}

// WithAdapters returns a copy of the field that recognizes foreign quantities through r.
func (f *Field) WithAdapters(r *Registry) *Field {
	out := *f
	out.cfg.Adapters = r
	out.adapters = r
	if r == nil {
		out.adapters = defaultAdapters
	}
	return &out
}

// Contract returns the field's unit contract.
func (f *Field) Contract() Contract { return f.contract }

// Unit returns the unit the field is bound to.
func (f *Field) Unit() units.Unit { return f.contract.Unit }

// String names the field type, for example "Float[nanometer]" or "Dimension[angstrom]".
func (f *Field) String() string {
	name := f.contract.Numeric.String()
	switch {
	case f.contract.Kind == DimensionOnly:
		name = "Dimension"
	case f.contract.Numeric == NumericAny:
		name = "Unit"
	}
	return name + "[" + f.contract.Unit.String() + "]"
}

// Coerce runs the coercion rules and the unit contract on v.
func (f *Field) Coerce(v any) (units.Quantity, error) {
	q, err := f.adapters.Coerce(v, f.contract)
	if err != nil {
		return units.Quantity{}, err
	}
	return f.contract.Apply(q)
}

// Parse coerces v according to the context mode. In qskema.ModeJSON only
// the wire record in the active embedding and bare numbers are accepted.
func (f *Field) Parse(ctx context.Context, v any) (units.Quantity, error) {
	q, err := f.parse(ctx, v)
	if err != nil {
		return units.Quantity{}, f.issues(err)
	}
	return q, nil
}

func (f *Field) parse(ctx context.Context, v any) (units.Quantity, error) {
	if qs.ModeFrom(ctx) == qs.ModeNative {
		return f.Coerce(v)
	}
	q, err := f.fromJSON(v, qs.EmbeddingFrom(ctx))
	if err != nil {
		return units.Quantity{}, err
	}
	return f.contract.Apply(q)
}

func (f *Field) fromJSON(v any, e qs.Embedding) (units.Quantity, error) {
	switch t := v.(type) {
	case string:
		if e != qs.EmbedNested {
			return units.Quantity{}, qs.NewUnitError(qs.UnitValidation, "expected an inline quantity record, got a string")
		}
		return DecodeString(t)
	case map[string]any:
		if e != qs.EmbedInline {
			return units.Quantity{}, qs.NewUnitError(qs.UnitValidation, "expected a JSON-encoded quantity string, got an object")
		}
		return DecodeRecord(t)
	case json.Number, float64, int, int64, []any:
		return f.adapters.Coerce(t, f.contract)
	default:
		return units.Quantity{}, qs.NewUnitError(qs.UnitValidation, "expected a quantity record, got %s", jsonKind(v))
	}
}

// ParseWithMeta parses v and marks the root as seen.
func (f *Field) ParseWithMeta(ctx context.Context, v any) (qs.Decoded[units.Quantity], error) {
	q, err := f.Parse(ctx, v)
	if err != nil {
		return qs.Decoded[units.Quantity]{}, err
	}
	return qs.Decoded[units.Quantity]{Value: q, Presence: qs.PresenceMap{"/": qs.PresenceSeen}}, nil
}

// TypeCheck reports whether v can be coerced into a quantity at all.
func (f *Field) TypeCheck(ctx context.Context, v any) error {
	var err error
	if qs.ModeFrom(ctx) == qs.ModeNative {
		_, err = f.adapters.Coerce(v, f.contract)
	} else {
		_, err = f.fromJSON(v, qs.EmbeddingFrom(ctx))
	}
	if err != nil {
		return f.issues(err)
	}
	return nil
}

// RuleCheck enforces the unit contract on v.
func (f *Field) RuleCheck(ctx context.Context, v any) error {
	_, err := f.Parse(ctx, v)
	return err
}

// Validate composes TypeCheck followed by RuleCheck.
func (f *Field) Validate(ctx context.Context, v any) error {
	if err := f.TypeCheck(ctx, v); err != nil {
		return err
	}
	return f.RuleCheck(ctx, v)
}

// ValidateValue checks a quantity without converting it.
func (f *Field) ValidateValue(ctx context.Context, q units.Quantity) error {
	if err := f.contract.Check(q); err != nil {
		return f.issues(err)
	}
	return nil
}

// EncodeValue renders a stored quantity for a JSON document in the context's embedding.
func (f *Field) EncodeValue(ctx context.Context, v any) (any, error) {
	rec, err := EncodeAny(v)
	if err != nil {
		return nil, f.issues(err)
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, f.issues(qs.WrapUnitError(qs.UnsupportedExport, err, "%v", err))
	}
	if qs.EmbeddingFrom(ctx) == qs.EmbedInline {
		return json.RawMessage(b), nil
	}
	return string(b), nil
}

// JSONSchema describes the record's "val" for the field's numeric kind and
// names the unit in the x-unit extension.
func (f *Field) JSONSchema() (*js.Schema, error) {
	var s *js.Schema
	switch {
	case f.contract.Kind == ExactCoerce && f.contract.Numeric == NumericInt:
		s = &js.Schema{Type: "integer"}
	case f.contract.Kind == ExactCoerce && f.contract.Numeric == NumericFloat:
		s = js.Number()
	case f.contract.Kind == ExactCoerce && f.contract.Numeric == NumericArray:
		s = js.ArrayOf(js.Number())
	default:
		s = &js.Schema{OneOf: []*js.Schema{js.Number(), js.ArrayOf(js.Number())}}
	}
	s.Unit = f.contract.Unit.String()
	s.UnitContract = f.contract.Kind.String()
	s.Description = f.cfg.Description
	if s.Description == "" {
		if f.contract.Kind == DimensionOnly {
			s.Description = "quantity with units compatible with " + s.Unit
		} else {
			s.Description = "quantity in " + s.Unit
		}
	}
	return s, nil
}

func (f *Field) issues(err error) qs.Issues {
	if iss, ok := qs.AsIssues(err); ok {
		return iss
	}
	it := qs.UnitIssue(qs.RootPath(), err)
	it.Hint = i18n.T(it.Code, map[string]string{"unit": f.contract.Unit.String()})
	it.Params = map[string]any{"unit": f.contract.Unit.String(), "field": f.String()}
	return qs.Issues{it}
}
