package quantity

// Dimension fields for common molecular quantities. Values keep the unit
// they were given as long as it has the right dimensionality.
var (
	Length      = Dimension("angstrom")
	Mass        = Dimension("dalton")
	Time        = Dimension("second")
	Degree      = Dimension("degree")
	Temperature = Dimension("kelvin")
	MolarEnergy = Dimension("kilojoule_per_mole")
	Charge      = Dimension("elementary_charge")

	Distance = Length
	Angle    = Degree
)

// Fields converting any numeric kind into one fixed unit.
var (
	OnlyAMU              = Unit("amu")
	OnlyDegree           = Unit("degree")
	OnlyElementaryCharge = Unit("elementary_charge")
)
