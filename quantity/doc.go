// Package quantity implements unit-aware field types.
//
// A Field turns loosely typed input (numbers, strings such as "1.5 nm",
// numeric slices, byte buffers, {"val", "unit"} records, units.Quantity
// values and foreign quantities recognized by an Adapter) into a
// units.Quantity, then enforces a Contract:
//
//   - ExactCoerce converts into the declared unit and casts the magnitude
//     (Int, Float, Array, Unit).
//   - DimensionOnly only checks dimensionality and keeps the given unit
//     (Dimension, Length, Mass, ...).
//
// Quantities travel as {"val": 1.5, "unit": "nanometer"}, either inline or as
// a JSON string nested inside the surrounding document.
package quantity
