package units

import (
	"fmt"
	"math/big"
	"strings"
	"sync"
)

// Definition declares a named unit in terms of an existing unit expression.
// Factor is an exact decimal ("1e-10") or ratio ("1/3") and defaults to 1;
// Base is a unit expression and defaults to dimensionless.
type Definition struct {
	Name       string
	Symbol     string
	Aliases    []string
	Factor     string
	Base       string
	Prefixable bool
}

type entry struct {
	name       string
	symbol     string
	dim        Dimension
	scale      *big.Rat
	prefixable bool
}

type prefix struct {
	name   string
	symbol string
	scale  *big.Rat
}

// resolved is a fully qualified atom: prefix applied, canonical long name.
type resolved struct {
	name  string
	dim   Dimension
	scale *big.Rat
}

var prefixes = []prefix{
	{"yotta", "Y", pow10(24)},
	{"zetta", "Z", pow10(21)},
	{"exa", "E", pow10(18)},
	{"peta", "P", pow10(15)},
	{"tera", "T", pow10(12)},
	{"giga", "G", pow10(9)},
	{"mega", "M", pow10(6)},
	{"kilo", "k", pow10(3)},
	{"hecto", "h", pow10(2)},
	{"deca", "da", pow10(1)},
	{"deci", "d", pow10(-1)},
	{"centi", "c", pow10(-2)},
	{"milli", "m", pow10(-3)},
	{"micro", "µ", pow10(-6)},
	{"micro", "u", pow10(-6)},
	{"nano", "n", pow10(-9)},
	{"pico", "p", pow10(-12)},
	{"femto", "f", pow10(-15)},
	{"atto", "a", pow10(-18)},
	{"zepto", "z", pow10(-21)},
	{"yocto", "y", pow10(-24)},
}

func pow10(n int) *big.Rat {
	r := new(big.Rat)
	ten := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(n))), nil)
	if n >= 0 {
		return r.SetInt(ten)
	}
	return r.SetFrac(big.NewInt(1), ten)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

type registry struct {
	mu      sync.RWMutex
	byName  map[string]*entry // canonical names and long aliases
	bySym   map[string]*entry // short symbols
	ordered []*entry
}

func newRegistry() *registry {
	return &registry{byName: map[string]*entry{}, bySym: map[string]*entry{}}
}

var defaultRegistry = func() *registry {
	r := newRegistry()
	loadBuiltins(r)
	return r
}()

// Define adds a unit to the process-wide registry. Redefining an existing
// name, symbol or alias is an error.
func Define(d Definition) error { return defaultRegistry.define(d) }

// IsDefined reports whether name resolves to a unit, prefixes and plurals included.
func IsDefined(name string) bool {
	_, err := defaultRegistry.lookup(name)
	return err == nil
}

func (r *registry) define(d Definition) error {
	if d.Name == "" {
		return fmt.Errorf("units: definition without a name")
	}
	factor := big.NewRat(1, 1)
	if d.Factor != "" {
		if _, ok := factor.SetString(d.Factor); !ok {
			return fmt.Errorf("units: invalid factor %q for %s", d.Factor, d.Name)
		}
	}
	base := Dimensionless()
	if d.Base != "" {
		u, err := r.parseUnit(d.Base)
		if err != nil {
			return fmt.Errorf("units: base of %s: %w", d.Name, err)
		}
		base = u
	}
	e := &entry{
		name:       d.Name,
		symbol:     d.Symbol,
		dim:        base.dim,
		scale:      new(big.Rat).Mul(factor, base.factor()),
		prefixable: d.Prefixable,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(e, d.Aliases)
}

func (r *registry) defineBase(name, symbol string, dim int, scale *big.Rat, prefixable bool, aliases ...string) {
	var d Dimension
	d[dim] = 1
	e := &entry{name: name, symbol: symbol, dim: d, scale: scale, prefixable: prefixable}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.insertLocked(e, aliases); err != nil {
		panic(err)
	}
}

func (r *registry) insertLocked(e *entry, aliases []string) error {
	keys := append([]string{e.name}, aliases...)
	for _, k := range keys {
		if _, dup := r.byName[k]; dup {
			return fmt.Errorf("units: %q already defined", k)
		}
	}
	if e.symbol != "" {
		if _, dup := r.bySym[e.symbol]; dup {
			return fmt.Errorf("units: symbol %q already defined", e.symbol)
		}
	}
	for _, k := range keys {
		r.byName[k] = e
	}
	if e.symbol != "" {
		r.bySym[e.symbol] = e
	}
	r.ordered = append(r.ordered, e)
	return nil
}

func (e *entry) resolve(p *prefix) resolved {
	if p == nil {
		return resolved{name: e.name, dim: e.dim, scale: e.scale}
	}
	return resolved{name: p.name + e.name, dim: e.dim, scale: new(big.Rat).Mul(p.scale, e.scale)}
}

// lookup resolves a single identifier: exact names and symbols first, then
// plurals, then prefixed forms, then a lower-cased retry of long names.
func (r *registry) lookup(name string) (resolved, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if res, ok := r.lookupLocked(name); ok {
		return res, nil
	}
	if lower := strings.ToLower(name); lower != name && len(name) > 3 {
		if res, ok := r.lookupLocked(lower); ok {
			return res, nil
		}
	}
	return resolved{}, &UndefinedUnitError{Name: name}
}

func (r *registry) lookupLocked(name string) (resolved, bool) {
	if e, ok := r.byName[name]; ok {
		return e.resolve(nil), true
	}
	if e, ok := r.bySym[name]; ok {
		return e.resolve(nil), true
	}
	if singular, ok := strings.CutSuffix(name, "s"); ok && len(singular) > 1 {
		if e, ok := r.byName[singular]; ok {
			return e.resolve(nil), true
		}
	}
	for i := range prefixes {
		p := &prefixes[i]
		if rest, ok := strings.CutPrefix(name, p.name); ok && rest != "" {
			e, found := r.byName[rest]
			if !found {
				if singular, ok := strings.CutSuffix(rest, "s"); ok {
					e, found = r.byName[singular]
				}
			}
			if found && e.prefixable {
				return e.resolve(p), true
			}
		}
		if rest, ok := strings.CutPrefix(name, p.symbol); ok && rest != "" {
			if e, found := r.bySym[rest]; found && e.prefixable {
				return e.resolve(p), true
			}
		}
	}
	return resolved{}, false
}
