package expression

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression is a parsed formula in a single free variable. It is immutable and may be shared
// between goroutines.
type Expression struct {
	text     string
	variable string
	root     node
	usesVar  bool
}

// Parse parses text as an expression in the named free variable. Identifiers other than the
// variable, the constants i, pi and e, and the built-in functions are rejected.
func Parse(text string, variable string) (*Expression, error) {
	if variable == "" {
		return nil, &ParseError{Text: text, Message: "no free variable name given"}
	}
	if _, ok := constants[variable]; ok {
		return nil, &ParseError{Text: text, Message: fmt.Sprintf("variable %q shadows a constant", variable)}
	}
	if _, ok := functions[variable]; ok {
		return nil, &ParseError{Text: text, Message: fmt.Sprintf("variable %q shadows a function", variable)}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Text: text, Message: "empty expression"}
	}

	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{src: text, tokens: tokens, variable: variable}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.typ != tokEOF {
		return nil, p.errorf(tok, "unexpected %s", describe(tok))
	}

	return &Expression{text: text, variable: variable, root: root, usesVar: p.usesVar}, nil
}

// String returns the text the expression was parsed from.
func (e *Expression) String() string {
	return e.text
}

// Tree returns a fully parenthesized rendering of the parsed expression.
func (e *Expression) Tree() string {
	return e.root.String()
}

func (e *Expression) Variable() string {
	return e.variable
}

// UsesVariable reports whether the free variable appears in the expression at all.
func (e *Expression) UsesVariable() bool {
	return e.usesVar
}

type parser struct {
	src      string
	tokens   []token
	pos      int
	variable string
	usesVar  bool
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.typ != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(typ tokenType) (token, error) {
	tok := p.next()
	if tok.typ != typ {
		return tok, p.errorf(tok, "expected %s, found %s", typ, describe(tok))
	}
	return tok, nil
}

func (p *parser) errorf(tok token, format string, values ...interface{}) error {
	return &ParseError{Text: p.src, Offset: tok.offset, Message: fmt.Sprintf(format, values...)}
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().typ
		if op != tokPlus && op != tokMinus {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().typ
		switch op {
		case tokStar, tokSlash:
			p.next()
		case tokNumber, tokIdent, tokLParen:
			// implicit multiplication: 2z, 3(z+1), z(z-1)
			op = tokStar
		default:
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	switch p.peek().typ {
	case tokMinus:
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &negateNode{operand: operand}, nil
	case tokPlus:
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().typ != tokCaret {
		return base, nil
	}
	p.next()
	exponent, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: tokCaret, left: base, right: exponent}, nil
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.next()
	switch tok.typ {
	case tokNumber:
		value, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid number %q", tok.text)
		}
		return &numberNode{text: tok.text, value: value}, nil

	case tokIdent:
		if fn, ok := functions[tok.text]; ok {
			return p.parseCall(tok, fn)
		}
		if _, ok := constants[tok.text]; ok {
			return &constantNode{name: tok.text}, nil
		}
		if tok.text == p.variable {
			p.usesVar = true
			return &variableNode{name: tok.text}, nil
		}
		return nil, p.errorf(tok, "unknown identifier %q", tok.text)

	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, p.errorf(tok, "unexpected %s", describe(tok))
}

func (p *parser) parseCall(name token, fn *function) (node, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return nil, p.errorf(name, "function %s must be called with parentheses", fn.name)
	}
	var args []node
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek().typ != tokComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	if len(args) != fn.arity {
		return nil, p.errorf(name, "function %s takes %d argument(s), got %d", fn.name, fn.arity, len(args))
	}
	return &callNode{fn: fn, args: args}, nil
}

func describe(tok token) string {
	if tok.typ == tokEOF {
		return tok.typ.String()
	}
	return fmt.Sprintf("%s %q", tok.typ, tok.text)
}
