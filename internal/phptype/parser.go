package phptype

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/doITmagic/php-analyzer/internal/symbols"
)

// This file implements the type-expression mini-language parser of
// spec §4.8: the grammar PHPDoc tags embed for @var/@param/@return
// annotations. It is a hand-written recursive-descent parser over a
// simple token stream, grounded on orig:src/phpdoc/types.rs's
// handwritten Pratt-style parser — re-expressed here as Go functions
// returning (value, rest, error) rather than a stateful cursor struct,
// since Go has no first-class sum-type pattern matching to lean on.
//
// Grammar (informal):
//
//	union        := intersection ( '|' intersection )*
//	intersection := concrete ( '&' concrete )*
//	concrete     := '?' concrete | atom suffix*
//	suffix       := '[]'
//	atom         := generic | shape | callable | classtype | literal-name
//	generic      := name '<' union ( ',' union )* '>'
//	classtype    := name '::' ident
//	callable     := ( 'callable' | 'Closure' ) '(' union ( ',' union )* ')' ':' concrete
//	shape        := 'array' '{' field ( ',' field )* '}'
//	field        := ident '?'? ':' union

// ParseError reports a malformed type expression with its offending
// position, matching the byte-accurate diagnostics style of §4.7.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("phptype: %s at byte %d in %q", e.Msg, e.Pos, e.Input)
}

// ParseTypeExpression parses a full PHPDoc type-expression string (the
// content of an @var/@param/@return tag's type field) into an
// IntersectionType of UnionType members. Most expressions are a bare
// union with no intersection operator, in which case the result
// Normalize()s to that union directly.
func ParseTypeExpression(raw string) (IntersectionType, error) {
	p := &typeParser{src: raw}
	p.skipSpace()
	it, err := p.parseIntersectionUnion()
	if err != nil {
		return IntersectionType{}, err
	}
	p.skipSpace()
	if !p.atEnd() {
		return IntersectionType{}, &ParseError{Input: raw, Pos: p.pos, Msg: "trailing input"}
	}
	return it, nil
}

// ParseUnion is a convenience wrapper for the common case of an
// @var/@param/@return tag with no top-level intersection.
func ParseUnion(raw string) (UnionType, error) {
	it, err := ParseTypeExpression(raw)
	if err != nil {
		return UnionType{}, err
	}
	return it.Normalize(), nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) atEnd() bool { return p.pos >= len(p.src) }

func (p *typeParser) peek() byte {
	if p.atEnd() {
		return 0
	}
	return p.src[p.pos]
}

func (p *typeParser) skipSpace() {
	for !p.atEnd() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) consume(b byte) bool {
	p.skipSpace()
	if p.peek() == b {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) expect(b byte) error {
	if !p.consume(b) {
		return &ParseError{Input: p.src, Pos: p.pos, Msg: fmt.Sprintf("expected %q", b)}
	}
	return nil
}

// parseIntersectionUnion handles the top level: one or more
// intersection-members separated by '|', each of which is itself one
// or more concrete types separated by '&'. PHP's grammar disallows
// mixing '|' and '&' without parens at the same nesting level in
// practice, so a bare '&' chain with no '|' collapses to a single
// IntersectionType, and a bare '|' chain collapses to a single-member
// IntersectionType wrapping one UnionType.
func (p *typeParser) parseIntersectionUnion() (IntersectionType, error) {
	first, err := p.parseIntersectionChain()
	if err != nil {
		return IntersectionType{}, err
	}
	// A pure intersection (no '|' at all) is returned as-is.
	p.skipSpace()
	if p.peek() != '|' {
		if first.Len() == 1 {
			return first, nil
		}
		return first, nil
	}
	members := first.Normalize()
	for p.consume('|') {
		chain, err := p.parseIntersectionChain()
		if err != nil {
			return IntersectionType{}, err
		}
		members = members.Merge(chain.Normalize())
	}
	return IntersectionOf(members), nil
}

func (p *typeParser) parseIntersectionChain() (IntersectionType, error) {
	first, err := p.parseConcrete()
	if err != nil {
		return IntersectionType{}, err
	}
	members := []UnionType{first}
	for {
		p.skipSpace()
		if p.peek() != '&' {
			break
		}
		// Disambiguate from a by-ref parameter marker ("&$x") handled
		// upstream by phpdoc; here '&' is always the intersection
		// operator since this parser only ever sees a type field.
		p.pos++
		next, err := p.parseConcrete()
		if err != nil {
			return IntersectionType{}, err
		}
		members = append(members, next)
	}
	return IntersectionOf(members...), nil
}

func (p *typeParser) parseConcrete() (UnionType, error) {
	p.skipSpace()
	nullable := p.consume('?')
	d, err := p.parseAtom()
	if err != nil {
		return UnionType{}, err
	}
	for {
		p.skipSpace()
		if p.pos+1 < len(p.src) && p.src[p.pos] == '[' && p.src[p.pos+1] == ']' {
			p.pos += 2
			d = Vector(UnionOf(d))
			continue
		}
		break
	}
	u := UnionOf(d)
	if nullable {
		u = u.Add(Null())
	}
	return u, nil
}

func (p *typeParser) parseAtom() (DiscreteType, error) {
	p.skipSpace()
	if p.peek() == '(' {
		p.pos++
		it, err := p.parseIntersectionUnion()
		if err != nil {
			return DiscreteType{}, err
		}
		if err := p.expect(')'); err != nil {
			return DiscreteType{}, err
		}
		u := it.Normalize()
		if u.Len() == 1 {
			return u.types[0], nil
		}
		// A parenthesized multi-alternative union used as a single
		// atom (e.g. inside callable(...):(A|B)) has no single
		// DiscreteType home; wrap it as a 1-ary generic of a synthetic
		// "union" marker so round-tripping through String() stays
		// legible instead of silently dropping alternatives.
		return Generic(Named("", symbols.FQNOf("(union)")), []UnionType{u}), nil
	}

	name, err := p.parseIdent()
	if err != nil {
		return DiscreteType{}, err
	}
	// parseIdent stops at '-', so the hyphenated class-string keyword is
	// joined back together here.
	if strings.EqualFold(name, "class") && strings.HasPrefix(p.src[p.pos:], "-string") {
		p.pos += len("-string")
		name += "-string"
	}

	switch strings.ToLower(name) {
	case "null":
		return Null(), nil
	case "void":
		return Void(), nil
	case "int", "integer":
		return Int(), nil
	case "float", "double":
		return Float(), nil
	case "string":
		return String(), nil
	case "bool", "boolean":
		return Bool(), nil
	case "true":
		return True(), nil
	case "false":
		return False(), nil
	case "resource":
		return Resource(), nil
	case "mixed":
		return Mixed(), nil
	case "iterable":
		return Iterable(), nil
	case "object":
		return Object(), nil
	case "self":
		return SpecialSelfType(), nil
	case "static":
		return SpecialStaticType(), nil
	case "parent":
		return SpecialParentType(), nil
	case "class-string":
		if p.consume('<') {
			inner, err := p.parseIdent()
			if err != nil {
				return DiscreteType{}, err
			}
			if err := p.expect('>'); err != nil {
				return DiscreteType{}, err
			}
			fq := symbols.NewFQN(inner)
			return ClassString(&fq), nil
		}
		return ClassString(nil), nil
	case "callable", "closure":
		return p.parseCallableTail(name)
	case "array":
		p.skipSpace()
		if p.peek() == '{' {
			return p.parseShapeTail()
		}
		if p.peek() == '<' {
			return p.parseArrayGenericTail()
		}
		return Array(), nil
	}

	// Template-style single-uppercase-letter or bracketed names are
	// common in generic class docblocks (@template T); treat a bare
	// identifier that never resolves against a known class as a
	// Named type instead and let the symbol table decide later
	// whether it's actually a declared @template parameter (spec §4.8
	// defers that disambiguation to pass 2's cross-linking).
	p.skipSpace()
	if p.peek() == '<' {
		return p.parseGenericTail(name)
	}
	if p.pos+1 < len(p.src) && p.src[p.pos] == ':' && p.src[p.pos+1] == ':' {
		p.pos += 2
		member, err := p.parseIdent()
		if err != nil {
			return DiscreteType{}, err
		}
		return ClassType(symbols.NewFQN(name), symbols.Name(member)), nil
	}
	return Named(symbols.Name(name), symbols.NewFQN(name)), nil
}

func (p *typeParser) parseGenericTail(name string) (DiscreteType, error) {
	p.pos++ // '<'
	args := []UnionType{}
	for {
		u, err := p.parseIntersectionUnion()
		if err != nil {
			return DiscreteType{}, err
		}
		args = append(args, u.Normalize())
		p.skipSpace()
		if p.consume(',') {
			continue
		}
		break
	}
	if err := p.expect('>'); err != nil {
		return DiscreteType{}, err
	}
	base := Named(symbols.Name(name), symbols.NewFQN(name))
	return Generic(base, args), nil
}

func (p *typeParser) parseArrayGenericTail() (DiscreteType, error) {
	p.pos++ // '<'
	first, err := p.parseIntersectionUnion()
	if err != nil {
		return DiscreteType{}, err
	}
	firstU := first.Normalize()
	p.skipSpace()
	if p.consume(',') {
		second, err := p.parseIntersectionUnion()
		if err != nil {
			return DiscreteType{}, err
		}
		if err := p.expect('>'); err != nil {
			return DiscreteType{}, err
		}
		return HashMap(firstU, second.Normalize()), nil
	}
	if err := p.expect('>'); err != nil {
		return DiscreteType{}, err
	}
	return Vector(firstU), nil
}

func (p *typeParser) parseShapeTail() (DiscreteType, error) {
	p.pos++ // '{'
	var fields []ShapeField
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return Shape(fields), nil
	}
	for {
		p.skipSpace()
		key, err := p.parseIdent()
		if err != nil {
			return DiscreteType{}, err
		}
		optional := p.consume('?')
		if err := p.expect(':'); err != nil {
			return DiscreteType{}, err
		}
		u, err := p.parseIntersectionUnion()
		if err != nil {
			return DiscreteType{}, err
		}
		fields = append(fields, ShapeField{Key: key, Type: u.Normalize(), Optional: optional})
		p.skipSpace()
		if p.consume(',') {
			continue
		}
		break
	}
	if err := p.expect('}'); err != nil {
		return DiscreteType{}, err
	}
	return Shape(fields), nil
}

func (p *typeParser) parseCallableTail(kw string) (DiscreteType, error) {
	p.skipSpace()
	if p.peek() != '(' {
		return Callable(), nil
	}
	p.pos++
	var params []UnionType
	p.skipSpace()
	if p.peek() != ')' {
		for {
			u, err := p.parseIntersectionUnion()
			if err != nil {
				return DiscreteType{}, err
			}
			params = append(params, u.Normalize())
			p.skipSpace()
			if p.consume(',') {
				continue
			}
			break
		}
	}
	if err := p.expect(')'); err != nil {
		return DiscreteType{}, err
	}
	ret := VoidUnion()
	p.skipSpace()
	if p.consume(':') {
		u, err := p.parseIntersectionUnion()
		if err != nil {
			return DiscreteType{}, err
		}
		ret = u.Normalize()
	}
	_ = kw
	return TypedCallable(params, ret), nil
}

// parseIdent reads a PHP name: an optional leading backslash, then
// namespace-separated identifier segments, digits permitted after the
// first character of each segment.
func (p *typeParser) parseIdent() (string, error) {
	p.skipSpace()
	start := p.pos
	if p.peek() == '\\' {
		p.pos++
	}
	for {
		segStart := p.pos
		for !p.atEnd() && isIdentChar(p.src[p.pos], p.pos == segStart) {
			p.pos++
		}
		if p.pos == segStart {
			return "", &ParseError{Input: p.src, Pos: p.pos, Msg: "expected identifier"}
		}
		if p.peek() == '\\' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos], nil
}

func isIdentChar(b byte, first bool) bool {
	if b == '_' {
		return true
	}
	r := rune(b)
	if unicode.IsLetter(r) {
		return true
	}
	if !first && unicode.IsDigit(r) {
		return true
	}
	return false
}
