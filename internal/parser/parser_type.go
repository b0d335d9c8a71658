package parser

import (
	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/lexer"
)

// parseTypeExpr parses one type expression. `(` always opens a
// function-type parameter list here: the reduced CST has no bare
// parenthesized-grouping node, so a lone `(T)` is read as a one
// parameter function type missing its arrow, which reportExpected
// will flag.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	switch p.curToken.Type {
	case lexer.PROPERNAME:
		return p.parseTypeConstructorOrCall()
	case lexer.NAME:
		start := p.curToken.Start
		name := p.parseName()
		return &ast.TypeExprVariable{VarSpan: p.span(start), Name: ast.ProperName{Value: name.Value, Span: name.Span}}
	case lexer.LPAREN:
		return p.parseTypeExprFunction()
	case lexer.LBRACE:
		return p.parseTypeExprRecord()
	default:
		p.reportExpected(lexer.PROPERNAME)
		return nil
	}
}

func (p *Parser) parseTypeConstructorOrCall() ast.TypeExpr {
	start := p.curToken.Start
	first := p.parseProperName()

	var qualified ast.Qualified[ast.ProperName]
	if p.curIs(lexer.DOT) {
		p.nextToken()
		qualified = ast.Qualified[ast.ProperName]{ModuleName: &first, Value: p.parseProperName()}
	} else {
		qualified = ast.Qualified[ast.ProperName]{Value: first}
	}

	var function ast.TypeExpr = &ast.TypeExprConstructor{ConSpan: p.span(start), Name: qualified}
	if p.curIs(lexer.LPAREN) {
		p.nextToken()
		var args []ast.TypeExpr
		if !p.curIs(lexer.RPAREN) {
			args = append(args, p.parseTypeExpr())
			for p.curIs(lexer.COMMA) {
				p.nextToken()
				if p.curIs(lexer.RPAREN) {
					break
				}
				args = append(args, p.parseTypeExpr())
			}
		}
		p.expect(lexer.RPAREN)
		function = &ast.TypeExprCall{CallSpan: p.span(start), Function: function, Arguments: args}
	}
	return function
}

func (p *Parser) parseTypeExprFunction() ast.TypeExpr {
	start := p.curToken.Start
	p.expect(lexer.LPAREN)
	var params []ast.TypeExpr
	if !p.curIs(lexer.RPAREN) {
		params = append(params, p.parseTypeExpr())
		for p.curIs(lexer.COMMA) {
			p.nextToken()
			if p.curIs(lexer.RPAREN) {
				break
			}
			params = append(params, p.parseTypeExpr())
		}
	}
	p.expect(lexer.RPAREN)
	p.expect(lexer.RARROW)
	ret := p.parseTypeExpr()
	return &ast.TypeExprFunction{FnSpan: p.span(start), Parameters: params, Return: ret}
}

// parseTypeExprRecord handles both `{ field: T, ... }` and the open
// row form `{ tail | field: T, ... }`, disambiguated by whether the
// token after the first field name is `|` or `:`.
func (p *Parser) parseTypeExprRecord() ast.TypeExpr {
	start := p.curToken.Start
	p.expect(lexer.LBRACE)

	if p.curIs(lexer.RBRACE) {
		p.nextToken()
		return &ast.TypeExprRecordClosed{RecSpan: p.span(start)}
	}

	firstName := p.parseName()
	if p.curIs(lexer.PIPE) {
		p.nextToken()
		tail := ast.ProperName{Value: firstName.Value, Span: firstName.Span}
		fields := p.parseTypeExprFieldList()
		p.expect(lexer.RBRACE)
		return &ast.TypeExprRecordOpen{RecSpan: p.span(start), Tail: tail, Fields: fields}
	}

	p.expect(lexer.COLON)
	firstType := p.parseTypeExpr()
	fields := []ast.TypeExprField{{Span: firstName.Span.Merge(firstType.Span()), Name: firstName, Type: firstType}}
	for p.curIs(lexer.COMMA) {
		p.nextToken()
		if p.curIs(lexer.RBRACE) {
			break
		}
		fields = append(fields, p.parseTypeExprField())
	}
	p.expect(lexer.RBRACE)
	return &ast.TypeExprRecordClosed{RecSpan: p.span(start), Fields: fields}
}

func (p *Parser) parseTypeExprFieldList() []ast.TypeExprField {
	var fields []ast.TypeExprField
	if p.curIs(lexer.RBRACE) {
		return fields
	}
	fields = append(fields, p.parseTypeExprField())
	for p.curIs(lexer.COMMA) {
		p.nextToken()
		if p.curIs(lexer.RBRACE) {
			break
		}
		fields = append(fields, p.parseTypeExprField())
	}
	return fields
}

func (p *Parser) parseTypeExprField() ast.TypeExprField {
	start := p.curToken.Start
	name := p.parseName()
	p.expect(lexer.COLON)
	t := p.parseTypeExpr()
	return ast.TypeExprField{Span: p.span(start), Name: name, Type: t}
}
