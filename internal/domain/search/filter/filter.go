// Package filter implements the attribute filter language: comparisons
// (=, !=, <, <=, >, >=), set membership (IN), and boolean combination
// with AND, OR, NOT and parentheses.
//
// Evaluation is a pure function over a document's attributes and is safe
// for concurrent use. Referencing an attribute the document does not have
// is not an error: the comparison is simply false.
package filter

import (
	"strconv"

	"github.com/quillsearch/quill/internal/domain"
	"github.com/quillsearch/quill/internal/domain/document"
)

// Expression is a compiled filter predicate.
type Expression interface {
	// Matches reports whether the document satisfies the filter.
	Matches(doc *document.Document) bool
}

// MatchAll is the expression an empty filter compiles to.
func MatchAll() Expression { return matchAll{} }

// Compile parses a filter expression. Empty or whitespace-only input
// compiles to a match-all expression.
func Compile(input string) (Expression, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}
	if tokens[0].kind == tokenEOF {
		return matchAll{}, nil
	}
	p := &parser{tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, domain.NewFilterParseError(tok.offset, "unexpected %q", tok.text)
	}
	return expr, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseOr() (Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokenKeyword && p.peek().text == "OR" {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orExpr{left, right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokenKeyword && p.peek().text == "AND" {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andExpr{left, right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expression, error) {
	if p.peek().kind == tokenKeyword && p.peek().text == "NOT" {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notExpr{inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expression, error) {
	tok := p.peek()
	if tok.kind == tokenLParen {
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokenRParen {
			return nil, domain.NewFilterParseError(closing.offset, "expected )")
		}
		return inner, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Expression, error) {
	attr := p.next()
	if attr.kind != tokenIdent && attr.kind != tokenString && attr.kind != tokenNumber {
		return nil, domain.NewFilterParseError(attr.offset, "expected attribute name, got %q", attr.text)
	}

	op := p.next()
	switch {
	case op.kind == tokenOp:
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return comparison{attr: attr.text, op: op.text, value: val}, nil
	case op.kind == tokenKeyword && op.text == "IN":
		values, err := p.parseValueList()
		if err != nil {
			return nil, err
		}
		return inExpr{attr: attr.text, values: values}, nil
	case op.kind == tokenKeyword && op.text == "NOT":
		if in := p.next(); in.kind != tokenKeyword || in.text != "IN" {
			return nil, domain.NewFilterParseError(in.offset, "expected IN after NOT")
		}
		values, err := p.parseValueList()
		if err != nil {
			return nil, err
		}
		return notExpr{inExpr{attr: attr.text, values: values}}, nil
	default:
		return nil, domain.NewFilterParseError(op.offset, "expected comparison operator, got %q", op.text)
	}
}

func (p *parser) parseValueList() ([]literal, error) {
	if open := p.next(); open.kind != tokenLBrack {
		return nil, domain.NewFilterParseError(open.offset, "expected [")
	}
	var values []literal
	for {
		tok := p.peek()
		if tok.kind == tokenRBrack {
			p.next()
			return values, nil
		}
		if len(values) > 0 {
			if comma := p.next(); comma.kind != tokenComma {
				return nil, domain.NewFilterParseError(comma.offset, "expected , or ]")
			}
			// Trailing comma before the closing bracket is allowed.
			if p.peek().kind == tokenRBrack {
				p.next()
				return values, nil
			}
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		values = append(values, val)
	}
}

func (p *parser) parseValue() (literal, error) {
	tok := p.next()
	switch tok.kind {
	case tokenString:
		return literal{raw: tok.text}, nil
	case tokenNumber:
		num, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return literal{}, domain.NewFilterParseError(tok.offset, "invalid number %q", tok.text)
		}
		return literal{raw: tok.text, num: num, isNumber: true}, nil
	case tokenIdent:
		lit := literal{raw: tok.text}
		if tok.text == "true" || tok.text == "false" {
			lit.boolean = tok.text == "true"
			lit.isBool = true
		}
		return lit, nil
	default:
		return literal{}, domain.NewFilterParseError(tok.offset, "expected value, got %q", tok.text)
	}
}
