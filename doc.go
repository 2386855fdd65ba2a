// Package qskema provides unit-aware quantity fields for schema models.
//
// - Type-safe validation and transformation based on Schema/Codec (Parse/Validate/Decode/Encode)
// - A stable error model via Issues (JSON Pointer, code, message) with quantity error kinds
// - Document parsing from JSON and YAML sources with duplicate-key and size enforcement
//
// Layout:
// - units/ holds the unit registry and the Quantity type.
// - quantity/ coerces inputs, enforces unit contracts and encodes the {"val", "unit"} wire record.
// - dsl/ builds object schemas from quantity fields, model/ wraps them as mutable models.
// - The CLI lives under cmd/qskema.
//
// Typical usage:
//
//	s := dsl.Object().
//		Field("box", dsl.SchemaOf[units.Quantity](quantity.Array("nanometer"))).Required().
//		Field("dt", dsl.SchemaOf[units.Quantity](quantity.Float("picosecond"))).Required().
//		MustBuild()
//	v, err := qskema.ParseFrom(ctx, s, qskema.JSONBytes(data))
package qskema
