package units

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokMul
	tokDiv
	tokPow
	tokLParen
	tokRParen
	tokMinus
	tokPlus
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(s string) ([]token, error) {
	var out []token
	i := 0
	for i < len(s) {
		r, w := utf8.DecodeRuneInString(s[i:])
		switch {
		case unicode.IsSpace(r):
			i += w
		case r == '*':
			if strings.HasPrefix(s[i:], "**") {
				out = append(out, token{tokPow, "**", i})
				i += 2
			} else {
				out = append(out, token{tokMul, "*", i})
				i++
			}
		case r == '^':
			out = append(out, token{tokPow, "^", i})
			i++
		case r == '/':
			out = append(out, token{tokDiv, "/", i})
			i++
		case r == '(':
			out = append(out, token{tokLParen, "(", i})
			i++
		case r == ')':
			out = append(out, token{tokRParen, ")", i})
			i++
		case r == '-':
			out = append(out, token{tokMinus, "-", i})
			i++
		case r == '+':
			out = append(out, token{tokPlus, "+", i})
			i++
		case r == '%':
			out = append(out, token{tokIdent, "%", i})
			i++
		case unicode.IsDigit(r):
			j := i
			for j < len(s) && (s[j] >= '0' && s[j] <= '9' || s[j] == '.') {
				j++
			}
			out = append(out, token{tokNumber, s[i:j], i})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i + w
			for j < len(s) {
				r2, w2 := utf8.DecodeRuneInString(s[j:])
				if !(unicode.IsLetter(r2) || unicode.IsDigit(r2) || r2 == '_') {
					break
				}
				j += w2
			}
			out = append(out, token{tokIdent, s[i:j], i})
			i = j
		default:
			return nil, &SyntaxError{Input: s, Pos: i, Msg: "unexpected character " + strconv.QuoteRune(r)}
		}
	}
	out = append(out, token{kind: tokEOF, pos: len(s)})
	return out, nil
}

type unitParser struct {
	reg   *registry
	input string
	toks  []token
	pos   int
}

func (r *registry) parseUnit(s string) (Unit, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == "dimensionless" {
		return Dimensionless(), nil
	}
	toks, err := tokenize(trimmed)
	if err != nil {
		return Unit{}, err
	}
	p := &unitParser{reg: r, input: trimmed, toks: toks}
	u, err := p.expr()
	if err != nil {
		return Unit{}, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return Unit{}, p.fail(t, "unexpected "+strconv.Quote(t.text))
	}
	return u, nil
}

func (p *unitParser) peek() token { return p.toks[p.pos] }

func (p *unitParser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *unitParser) fail(t token, msg string) error {
	return &SyntaxError{Input: p.input, Pos: t.pos, Msg: msg}
}

func (p *unitParser) expr() (Unit, error) {
	u, err := p.factor()
	if err != nil {
		return Unit{}, err
	}
	for {
		switch p.peek().kind {
		case tokMul:
			p.next()
			rhs, err := p.factor()
			if err != nil {
				return Unit{}, err
			}
			u = u.Mul(rhs)
		case tokDiv:
			p.next()
			rhs, err := p.factor()
			if err != nil {
				return Unit{}, err
			}
			u = u.Div(rhs)
		case tokIdent, tokLParen:
			// implicit multiplication: "kJ mol"
			rhs, err := p.factor()
			if err != nil {
				return Unit{}, err
			}
			u = u.Mul(rhs)
		default:
			return u, nil
		}
	}
}

func (p *unitParser) factor() (Unit, error) {
	u, err := p.primary()
	if err != nil {
		return Unit{}, err
	}
	if p.peek().kind != tokPow {
		return u, nil
	}
	p.next()
	sign := 1
	switch p.peek().kind {
	case tokMinus:
		p.next()
		sign = -1
	case tokPlus:
		p.next()
	}
	t := p.next()
	if t.kind != tokNumber {
		return Unit{}, p.fail(t, "expected integer exponent")
	}
	n, err := strconv.Atoi(t.text)
	if err != nil {
		return Unit{}, p.fail(t, "exponent must be an integer")
	}
	return u.Pow(sign * n), nil
}

func (p *unitParser) primary() (Unit, error) {
	t := p.next()
	switch t.kind {
	case tokIdent:
		if t.text == "dimensionless" {
			return Dimensionless(), nil
		}
		res, err := p.reg.lookup(t.text)
		if err != nil {
			return Unit{}, err
		}
		return atomUnit(res), nil
	case tokNumber:
		if f, err := strconv.ParseFloat(t.text, 64); err != nil || f != 1 {
			return Unit{}, p.fail(t, "only 1 may appear as a number in a unit")
		}
		return Dimensionless(), nil
	case tokLParen:
		u, err := p.expr()
		if err != nil {
			return Unit{}, err
		}
		if c := p.next(); c.kind != tokRParen {
			return Unit{}, p.fail(c, "expected ')'")
		}
		return u, nil
	case tokEOF:
		return Unit{}, p.fail(t, "unexpected end of input")
	default:
		return Unit{}, p.fail(t, "unexpected "+strconv.Quote(t.text))
	}
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseQuantity reads strings such as "1.5 nm", "200 angstrom",
// "-3 kJ/mol" or "nanometer". A magnitude written without a decimal point or
// exponent yields an int quantity; a bare unit means one of that unit.
func ParseQuantity(s string) (Quantity, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Quantity{}, &SyntaxError{Input: s, Msg: "empty quantity"}
	}
	loc := leadingNumber.FindStringIndex(trimmed)
	if loc == nil {
		u, err := ParseUnit(trimmed)
		if err != nil {
			return Quantity{}, err
		}
		return Int(1, u), nil
	}
	lit := trimmed[:loc[1]]
	rest := strings.TrimSpace(trimmed[loc[1]:])
	if strings.HasPrefix(rest, "/") {
		rest = "1 " + rest
	} else if strings.HasPrefix(rest, "*") && !strings.HasPrefix(rest, "**") {
		rest = strings.TrimSpace(rest[1:])
	}
	u, err := ParseUnit(rest)
	if err != nil {
		return Quantity{}, err
	}
	if !strings.ContainsAny(lit, ".eE") {
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return Int(i, u), nil
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return Quantity{}, &SyntaxError{Input: s, Msg: "invalid magnitude " + strconv.Quote(lit)}
	}
	return Float(f, u), nil
}
