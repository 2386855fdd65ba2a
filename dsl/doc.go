// Package dsl provides the schema builder used to declare models with
// quantity fields.
//
// Overview
//   - Builder API: declare JSON object semantics (unknown/required/default/refine) with Object()/Field()/Required()/UnknownStrict()/MustBuild().
//   - Primitives: String()/Bool()/Int()/Float().
//   - Lists: List(elem)/ListOf(elem) for lists whose elements are each parsed by one schema.
//   - AnyAdapter: adapt any Schema[T], including quantity fields, via SchemaOf(s) to embed into builders.
//   - Encoding: schemas implementing ValueEncoder (quantity fields) render their values as wire records on Encode.
//
// File layout (roles)
//   - adapter.go: AnyAdapter, SchemaOf, Nullable, Describe.
//   - primitives.go: String/Bool/Int/Float.
//   - array.go: ListSchema (List/ListOf, Min/Max, per-element encoding).
//   - quantity.go: Quantity, the adapter for quantity field types.
//   - object_builder.go: objectBuilder/fieldStep and Build/MustBuild.
//   - object_core.go: ObjectSchema (Parse/ParseWithMeta/Validate/Encode/JSONSchema).
//
// Example (quickstart)
//
//	ctx := context.Background()
//	system := dsl.Object().
//	    Field("name", dsl.SchemaOf(dsl.String())).Required().
//	    Field("box", dsl.Quantity(quantity.Array("nanometer"))).Required().
//	    Field("temperature", dsl.Quantity(quantity.Temperature)).Default("300 K").
//	    MustBuild()
//
//	v, err := qskema.ParseFrom(ctx, system, qskema.JSONBytes(data))
//	_ = v["box"].(units.Quantity)
//	_ = err // Issues; quantity problems carry codes such as "incompatible_unit"
//
// Example (Refine: cross-field validation)
//
//	obj := dsl.Object().
//	    Field("cutoff", dsl.SchemaOf[units.Quantity](quantity.Distance)).Required().
//	    Field("switch", dsl.SchemaOf[units.Quantity](quantity.Distance)).Required().
//	    Refine("switch<cutoff", func(ctx context.Context, m map[string]any) error {
//	        d, err := units.Sub(m["cutoff"].(units.Quantity), m["switch"].(units.Quantity))
//	        if err != nil || d.FloatValue() <= 0 {
//	            return fmt.Errorf("switch distance must be below the cutoff")
//	        }
//	        return nil
//	    }).
//	    MustBuild()
//
// JSON Schema output hints
//
//	// Note: UnknownStrict => additionalProperties=false, UnknownStrip => additionalProperties=true.
//	// Quantity fields carry "x-unit" and "x-unit-contract".
package dsl
