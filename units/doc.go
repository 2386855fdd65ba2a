// Package units provides physical units and quantities.
//
// A Unit is parsed from expressions such as "nanometer", "kJ/mol" or
// "kilojoule / mole / nanometer ** 2" against a process-wide registry that
// knows SI base units, SI prefixes, and the molecular units used in
// simulation inputs (angstrom, dalton, elementary_charge, degree, ...).
// Scales are held as exact rationals so that conversions such as
// 200 angstrom to nanometer land on exact values.
//
// A Quantity pairs a magnitude (int64, float64 or an n-dimensional Array)
// with a Unit. Quantities are immutable; To returns a converted copy.
//
//	q, _ := units.ParseQuantity("200 angstrom")
//	nm, _ := q.ConvertTo("nanometer") // 20 nanometer
package units
