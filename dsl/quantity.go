package dsl

import (
	"github.com/reoring/qskema/quantity"
	"github.com/reoring/qskema/units"
)

// Quantity adapts a quantity field type for Field.
//
//	dsl.Object().Field("box", dsl.Quantity(quantity.Array("nanometer")))
func Quantity(f *quantity.Field) AnyAdapter { return SchemaOf[units.Quantity](f) }
