package units

import "strings"

// Base dimensions. Angle is kept as its own base so that degree and radian
// never silently convert to dimensionless values.
const (
	dimLength = iota
	dimMass
	dimTime
	dimCurrent
	dimTemperature
	dimSubstance
	dimAngle
	numBase
)

var baseNames = [numBase]string{
	"[length]",
	"[mass]",
	"[time]",
	"[current]",
	"[temperature]",
	"[substance]",
	"[angle]",
}

// Dimension is the exponent vector of a unit over the base dimensions.
type Dimension [numBase]int8

// IsDimensionless reports whether every exponent is zero.
func (d Dimension) IsDimensionless() bool { return d == Dimension{} }

func (d Dimension) add(o Dimension) Dimension {
	var out Dimension
	for i := range d {
		out[i] = d[i] + o[i]
	}
	return out
}

func (d Dimension) sub(o Dimension) Dimension {
	var out Dimension
	for i := range d {
		out[i] = d[i] - o[i]
	}
	return out
}

func (d Dimension) scale(n int) Dimension {
	var out Dimension
	for i := range d {
		out[i] = d[i] * int8(n)
	}
	return out
}

// String renders the dimension the way error messages show it, for example
// "[length] ** 2 / [time]".
func (d Dimension) String() string {
	if d.IsDimensionless() {
		return "dimensionless"
	}
	var num, den []string
	for i, e := range d {
		switch {
		case e == 1:
			num = append(num, baseNames[i])
		case e > 1:
			num = append(num, baseNames[i]+" ** "+itoa(int(e)))
		case e == -1:
			den = append(den, baseNames[i])
		case e < -1:
			den = append(den, baseNames[i]+" ** "+itoa(int(-e)))
		}
	}
	return joinFraction(num, den)
}

// joinFraction renders "a * b / c / d" with "1" standing in for an empty numerator.
func joinFraction(num, den []string) string {
	b := &strings.Builder{}
	if len(num) == 0 {
		b.WriteString("1")
	} else {
		b.WriteString(strings.Join(num, " * "))
	}
	for _, d := range den {
		b.WriteString(" / ")
		b.WriteString(d)
	}
	return b.String()
}
