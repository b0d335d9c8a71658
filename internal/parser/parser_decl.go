package parser

import (
	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/lexer"
)

// parseTypeDecl parses `type Name(vars...) = alias TypeExpr ;` or
// `type Name(vars...) = Ctor(Field, ...) | Ctor2 ;`. The leading
// `alias` keyword is what disambiguates the two: without it, Ditto's
// grammar for a single-constructor type and a type alias to a call
// expression would otherwise collide.
func (p *Parser) parseTypeDecl() *ast.TypeDecl {
	start := p.curToken.Start
	decl := &ast.TypeDecl{}
	p.expect(lexer.TYPE)
	decl.Name = p.parseProperName()

	if p.curIs(lexer.LPAREN) {
		p.nextToken()
		if !p.curIs(lexer.RPAREN) {
			decl.Variables = append(decl.Variables, p.parseTypeVariable())
			for p.curIs(lexer.COMMA) {
				p.nextToken()
				if p.curIs(lexer.RPAREN) {
					break
				}
				decl.Variables = append(decl.Variables, p.parseTypeVariable())
			}
		}
		p.expect(lexer.RPAREN)
	}

	p.expect(lexer.EQUALS)

	if p.curIs(lexer.ALIAS) {
		p.nextToken()
		decl.Alias = p.parseTypeExpr()
	} else {
		decl.Constructors = append(decl.Constructors, p.parseConstructorDecl())
		for p.curIs(lexer.PIPE) {
			p.nextToken()
			decl.Constructors = append(decl.Constructors, p.parseConstructorDecl())
		}
	}

	if !p.expect(lexer.SEMICOLON) {
		p.synchronize()
	}
	decl.Span = p.span(start)
	return decl
}

// parseTypeVariable reads a lowercase type parameter name into a
// ProperName slot: TypeDecl.Variables reuses ProperName as a generic
// identifier container, it does not imply an uppercase lexeme.
func (p *Parser) parseTypeVariable() ast.ProperName {
	name := p.parseName()
	return ast.ProperName{Value: name.Value, Span: name.Span}
}

func (p *Parser) parseConstructorDecl() *ast.ConstructorDecl {
	start := p.curToken.Start
	name := p.parseProperName()
	var fields []ast.TypeExpr
	if p.curIs(lexer.LPAREN) {
		p.nextToken()
		if !p.curIs(lexer.RPAREN) {
			fields = append(fields, p.parseTypeExpr())
			for p.curIs(lexer.COMMA) {
				p.nextToken()
				if p.curIs(lexer.RPAREN) {
					break
				}
				fields = append(fields, p.parseTypeExpr())
			}
		}
		p.expect(lexer.RPAREN)
	}
	return &ast.ConstructorDecl{Span: p.span(start), Name: name, Fields: fields}
}

// parseValueDecl parses a top-level binding: `name : Type = expr ;`,
// `name = expr ;`, or a foreign declaration `foreign name : Type ;`
// with no Ditto-side body.
func (p *Parser) parseValueDecl() *ast.ValueDecl {
	start := p.curToken.Start
	decl := &ast.ValueDecl{}

	if p.curIs(lexer.FOREIGN) {
		p.nextToken()
		decl.IsForeign = true
	}

	decl.Name = p.parseName()

	if p.curIs(lexer.COLON) {
		p.nextToken()
		decl.Annotation = p.parseTypeExpr()
	}

	if decl.IsForeign {
		if !p.expect(lexer.SEMICOLON) {
			p.synchronize()
		}
		decl.Span = p.span(start)
		return decl
	}

	p.expect(lexer.EQUALS)
	decl.Expr = p.parseExpr()
	if !p.expect(lexer.SEMICOLON) {
		p.synchronize()
	}
	decl.Span = p.span(start)
	return decl
}
