package units

import "math/big"

func loadBuiltins(r *registry) {
	r.defineBase("meter", "m", dimLength, big.NewRat(1, 1), true, "metre")
	r.defineBase("gram", "g", dimMass, big.NewRat(1, 1000), true, "gramme")
	r.defineBase("second", "s", dimTime, big.NewRat(1, 1), true, "sec")
	r.defineBase("ampere", "A", dimCurrent, big.NewRat(1, 1), true, "amp")
	r.defineBase("kelvin", "K", dimTemperature, big.NewRat(1, 1), true, "Kelvin")
	r.defineBase("mole", "mol", dimSubstance, big.NewRat(1, 1), true)
	r.defineBase("radian", "rad", dimAngle, big.NewRat(1, 1), true)

	for _, d := range []Definition{
		// length
		{Name: "angstrom", Symbol: "Å", Aliases: []string{"ångström", "angstroem"}, Factor: "1e-10", Base: "meter"},
		{Name: "bohr", Aliases: []string{"bohr_radius"}, Factor: "5.29177210903e-11", Base: "meter"},
		{Name: "micron", Factor: "1e-6", Base: "meter"},
		{Name: "inch", Symbol: "in", Factor: "0.0254", Base: "meter"},

		// mass
		{Name: "dalton", Symbol: "Da", Aliases: []string{"unified_atomic_mass_unit"}, Factor: "1.66053906660e-24", Base: "gram", Prefixable: true},
		{Name: "amu", Aliases: []string{"atomic_mass_unit"}, Base: "dalton"},

		// time
		{Name: "minute", Symbol: "min", Factor: "60", Base: "second"},
		{Name: "hour", Symbol: "h", Aliases: []string{"hr"}, Factor: "3600", Base: "second"},
		{Name: "day", Symbol: "d", Factor: "86400", Base: "second"},
		{Name: "year", Aliases: []string{"julian_year"}, Factor: "31557600", Base: "second"},

		// angle
		{Name: "degree", Symbol: "deg", Aliases: []string{"arcdeg"}, Factor: "0.017453292519943295769236907684886127", Base: "radian"},

		// energy
		{Name: "joule", Symbol: "J", Base: "kilogram * meter ** 2 / second ** 2", Prefixable: true},
		{Name: "calorie", Symbol: "cal", Aliases: []string{"thermochemical_calorie"}, Factor: "4.184", Base: "joule", Prefixable: true},
		{Name: "electron_volt", Symbol: "eV", Aliases: []string{"electronvolt"}, Factor: "1.602176634e-19", Base: "joule", Prefixable: true},
		{Name: "hartree", Symbol: "Eh", Aliases: []string{"hartree_energy"}, Factor: "4.3597447222071e-18", Base: "joule"},
		{Name: "kilojoule_per_mole", Aliases: []string{"kJ_per_mol"}, Base: "kilojoule / mole"},
		{Name: "kilocalorie_per_mole", Aliases: []string{"kcal_per_mol"}, Base: "kilocalorie / mole"},

		// mechanics
		{Name: "newton", Symbol: "N", Base: "kilogram * meter / second ** 2", Prefixable: true},
		{Name: "pascal", Symbol: "Pa", Base: "newton / meter ** 2", Prefixable: true},
		{Name: "bar", Factor: "1e5", Base: "pascal", Prefixable: true},
		{Name: "atmosphere", Symbol: "atm", Aliases: []string{"standard_atmosphere"}, Factor: "101325", Base: "pascal"},
		{Name: "watt", Symbol: "W", Base: "joule / second", Prefixable: true},
		{Name: "hertz", Symbol: "Hz", Base: "1 / second", Prefixable: true},
		{Name: "liter", Symbol: "L", Aliases: []string{"litre", "l"}, Factor: "1e-3", Base: "meter ** 3", Prefixable: true},

		// electromagnetism
		{Name: "coulomb", Symbol: "C", Base: "ampere * second", Prefixable: true},
		{Name: "elementary_charge", Symbol: "e", Factor: "1.602176634e-19", Base: "coulomb"},
		{Name: "volt", Symbol: "V", Base: "watt / ampere", Prefixable: true},

		// ratios
		{Name: "percent", Symbol: "%", Factor: "0.01"},
	} {
		if err := r.define(d); err != nil {
			panic(err)
		}
	}
}
