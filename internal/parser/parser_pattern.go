package parser

import (
	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/lexer"
)

func (p *Parser) parsePattern() ast.Pattern {
	switch p.curToken.Type {
	case lexer.PROPERNAME:
		return p.parsePatternConstructor()
	case lexer.NAME:
		start := p.curToken.Start
		name := p.parseName()
		return &ast.PatternVariable{PatSpan: p.span(start), Name: name}
	case lexer.UNUSEDNAME:
		start := p.curToken.Start
		tok := p.curToken
		p.nextToken()
		return &ast.PatternUnused{PatSpan: p.span(start), Name: ast.UnusedName{Value: tok.Literal, Span: p.tokenSpan(tok)}}
	default:
		p.reportExpected(lexer.NAME)
		return nil
	}
}

func (p *Parser) parsePatternConstructor() ast.Pattern {
	start := p.curToken.Start
	first := p.parseProperName()

	var qualified ast.Qualified[ast.ProperName]
	if p.curIs(lexer.DOT) {
		p.nextToken()
		qualified = ast.Qualified[ast.ProperName]{ModuleName: &first, Value: p.parseProperName()}
	} else {
		qualified = ast.Qualified[ast.ProperName]{Value: first}
	}

	var args []ast.Pattern
	if p.curIs(lexer.LPAREN) {
		p.nextToken()
		if !p.curIs(lexer.RPAREN) {
			args = append(args, p.parsePattern())
			for p.curIs(lexer.COMMA) {
				p.nextToken()
				if p.curIs(lexer.RPAREN) {
					break
				}
				args = append(args, p.parsePattern())
			}
		}
		p.expect(lexer.RPAREN)
	}
	return &ast.PatternConstructor{PatSpan: p.span(start), Name: qualified, Args: args}
}
