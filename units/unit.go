package units

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// Unit is an immutable product of named atoms raised to integer powers,
// together with its dimension and exact scale relative to coherent SI.
// The zero value is dimensionless.
type Unit struct {
	terms []term
	dim   Dimension
	scale *big.Rat
}

type term struct {
	name string
	exp  int
}

var one = big.NewRat(1, 1)

// Dimensionless returns the unit of pure numbers.
func Dimensionless() Unit { return Unit{} }

// ParseUnit resolves a unit expression such as "nanometer",
// "kJ/mol" or "kilojoule / mole / nanometer ** 2".
func ParseUnit(s string) (Unit, error) { return defaultRegistry.parseUnit(s) }

// MustParseUnit is like ParseUnit but panics on error. Intended for package
// level declarations.
func MustParseUnit(s string) Unit {
	u, err := ParseUnit(s)
	if err != nil {
		panic(err)
	}
	return u
}

func atomUnit(r resolved) Unit {
	return Unit{terms: []term{{name: r.name, exp: 1}}, dim: r.dim, scale: r.scale}
}

func (u Unit) factor() *big.Rat {
	if u.scale == nil {
		return one
	}
	return u.scale
}

// Dimension returns the exponent vector over the base dimensions.
func (u Unit) Dimension() Dimension { return u.dim }

// IsDimensionless reports whether the unit has no dimension. Scaled ratios
// such as percent are dimensionless too.
func (u Unit) IsDimensionless() bool { return u.dim.IsDimensionless() }

// IsCompatibleWith reports whether values in u can be converted to o.
func (u Unit) IsCompatibleWith(o Unit) bool { return u.dim == o.dim }

// Equal reports whether both units are spelled with the same atoms and
// powers, independent of term order. Units that are merely convertible
// with a factor of one ("kilojoule_per_mole" and "kilojoule / mole") are
// not equal.
func (u Unit) Equal(o Unit) bool { return u.key() == o.key() }

func (u Unit) key() string {
	if len(u.terms) == 0 {
		return ""
	}
	parts := make([]string, 0, len(u.terms))
	for _, t := range u.terms {
		parts = append(parts, t.name+"^"+itoa(t.exp))
	}
	sort.Strings(parts)
	return strings.Join(parts, "*")
}

// String renders the unit in a stable, parseable form, for example
// "kilojoule / mole / nanometer ** 2".
func (u Unit) String() string {
	if len(u.terms) == 0 {
		return "dimensionless"
	}
	var num, den []string
	for _, t := range u.terms {
		switch {
		case t.exp == 1:
			num = append(num, t.name)
		case t.exp > 1:
			num = append(num, t.name+" ** "+itoa(t.exp))
		case t.exp == -1:
			den = append(den, t.name)
		default:
			den = append(den, t.name+" ** "+itoa(-t.exp))
		}
	}
	return joinFraction(num, den)
}

// Mul returns u * o.
func (u Unit) Mul(o Unit) Unit { return u.combine(o, 1) }

// Div returns u / o.
func (u Unit) Div(o Unit) Unit { return u.combine(o, -1) }

// Pow returns u raised to an integer power.
func (u Unit) Pow(n int) Unit {
	if n == 0 {
		return Dimensionless()
	}
	terms := make([]term, 0, len(u.terms))
	for _, t := range u.terms {
		terms = append(terms, term{name: t.name, exp: t.exp * n})
	}
	return Unit{terms: terms, dim: u.dim.scale(n), scale: ratPow(u.factor(), n)}
}

func (u Unit) combine(o Unit, sign int) Unit {
	terms := make([]term, 0, len(u.terms)+len(o.terms))
	terms = append(terms, u.terms...)
	for _, t := range o.terms {
		merged := false
		for i := range terms {
			if terms[i].name == t.name {
				terms[i].exp += sign * t.exp
				merged = true
				break
			}
		}
		if !merged {
			terms = append(terms, term{name: t.name, exp: sign * t.exp})
		}
	}
	kept := terms[:0]
	for _, t := range terms {
		if t.exp != 0 {
			kept = append(kept, t)
		}
	}
	var dim Dimension
	scale := new(big.Rat)
	if sign > 0 {
		dim = u.dim.add(o.dim)
		scale.Mul(u.factor(), o.factor())
	} else {
		dim = u.dim.sub(o.dim)
		scale.Quo(u.factor(), o.factor())
	}
	if len(kept) == 0 {
		kept = nil
	}
	return Unit{terms: kept, dim: dim, scale: scale}
}

func ratPow(r *big.Rat, n int) *big.Rat {
	out := big.NewRat(1, 1)
	base := r
	if n < 0 {
		base = new(big.Rat).Inv(r)
		n = -n
	}
	for i := 0; i < n; i++ {
		out.Mul(out, base)
	}
	return out
}

// converter maps magnitudes from one unit to another. When the ratio of
// scales is a small exact fraction it multiplies then divides, so that
// 200 angstrom becomes exactly 20 nanometer.
type converter struct {
	num, den float64
	f        float64
	exact    bool
}

const maxExactInt = 1 << 53

func newConverter(from, to Unit) converter {
	ratio := new(big.Rat).Quo(from.factor(), to.factor())
	n, d := ratio.Num(), ratio.Denom()
	if n.IsInt64() && d.IsInt64() && absInt64(n.Int64()) <= maxExactInt && d.Int64() <= maxExactInt {
		return converter{num: float64(n.Int64()), den: float64(d.Int64()), exact: true}
	}
	f, _ := ratio.Float64()
	return converter{f: f}
}

func (c converter) apply(v float64) float64 {
	if c.exact {
		if c.den == 1 {
			return v * c.num
		}
		return v * c.num / c.den
	}
	return v * c.f
}

func (c converter) identity() bool { return c.exact && c.num == 1 && c.den == 1 }

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// ConversionFactor returns the multiplier that maps values in from to values in to.
func ConversionFactor(from, to Unit) (float64, error) {
	if !from.IsCompatibleWith(to) {
		return math.NaN(), &DimensionalityError{From: from, To: to}
	}
	c := newConverter(from, to)
	if c.exact {
		return c.num / c.den, nil
	}
	return c.f, nil
}
