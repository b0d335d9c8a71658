// Package parser turns a Ditto token stream into the CST defined by
// internal/ast. There is no operator-precedence climbing to speak of:
// Ditto has no infix operators, so expression parsing is a plain
// recursive descent over primary forms and a `(...)`/`.field` postfix
// loop, grounded on the call/record-access interleaving the original
// grammar's test suite exercises (see parser_expr.go).
package parser

import (
	"fmt"

	"github.com/ditto-lang/ditto/internal/ast"
	dittoerrors "github.com/ditto-lang/ditto/internal/errors"
	"github.com/ditto-lang/ditto/internal/lexer"
)

// Parser consumes a token stream with one token of lookahead.
type Parser struct {
	l *lexer.Lexer

	curToken  lexer.Token
	peekToken lexer.Token

	errors []error
}

// New creates a Parser reading from l. Callers typically construct l
// over lexer.Normalize(src).
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

// ParseFile lexes and parses a whole module from src.
func ParseFile(filename string, src []byte) (*ast.Module, []error) {
	l := lexer.New(string(lexer.Normalize(src)), filename)
	p := New(l)
	module := p.parseModule()
	return module, p.errors
}

// PartialParseHeader parses only a module's `module ... exports (..);`
// header and its `import` lines, stopping before the first type or
// value declaration. The build driver's planning pass uses this to
// build the cross-module dependency graph without paying for a full
// parse of every file up front.
func PartialParseHeader(filename string, src []byte) (*ast.Module, []error) {
	l := lexer.New(string(lexer.Normalize(src)), filename)
	p := New(l)
	start := p.curToken.Start
	module := &ast.Module{}

	if !p.expect(lexer.MODULE) {
		return module, p.errors
	}
	module.Name = p.parseModuleName()

	if p.expect(lexer.EXPORTS) {
		p.skipExportList()
	}
	if !p.expect(lexer.SEMICOLON) {
		p.synchronize()
	}

	for p.curIs(lexer.IMPORT) {
		module.Imports = append(module.Imports, p.parseImportLine())
	}

	module.Span = p.span(start)
	return module, p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) span(start int) ast.Span {
	return ast.Span{Start: start, End: p.curToken.Start}
}

// expect asserts the current token's type, records an error and
// returns false if it doesn't match. On success it advances past it.
func (p *Parser) expect(t lexer.TokenType) bool {
	if !p.curIs(t) {
		p.reportExpected(t)
		return false
	}
	p.nextToken()
	return true
}

// Errors returns accumulated parse errors in source order.
func (p *Parser) Errors() []error { return p.errors }

// synchronize skips tokens until a plausible declaration boundary, so
// one malformed declaration doesn't swallow the rest of the module.
func (p *Parser) synchronize() {
	for !p.curIs(lexer.EOF) {
		if p.curIs(lexer.SEMICOLON) {
			p.nextToken()
			return
		}
		if p.curIs(lexer.TYPE) || p.curIs(lexer.FOREIGN) || p.curIs(lexer.IMPORT) {
			return
		}
		p.nextToken()
	}
}

func (p *Parser) parseModule() *ast.Module {
	start := p.curToken.Start
	module := &ast.Module{}

	if !p.expect(lexer.MODULE) {
		return module
	}
	module.Name = p.parseModuleName()

	if p.expect(lexer.EXPORTS) {
		p.skipExportList()
	}
	if !p.expect(lexer.SEMICOLON) {
		p.synchronize()
	}

	for p.curIs(lexer.IMPORT) {
		module.Imports = append(module.Imports, p.parseImportLine())
	}

	for !p.curIs(lexer.EOF) {
		switch {
		case p.curIs(lexer.TYPE):
			module.Types = append(module.Types, p.parseTypeDecl())
		case p.curIs(lexer.FOREIGN), p.curIs(lexer.NAME), p.curIs(lexer.UNUSEDNAME):
			module.Values = append(module.Values, p.parseValueDecl())
		default:
			p.report(dittoerrors.ParseUnexpectedToken, fmt.Sprintf("unexpected token %s at module scope", p.curToken.Type))
			p.synchronize()
		}
	}

	module.Span = p.span(start)
	return module
}

func (p *Parser) parseModuleName() ast.ModuleName {
	var segments []ast.ProperName
	segments = append(segments, p.parseProperName())
	for p.curIs(lexer.DOT) {
		p.nextToken()
		segments = append(segments, p.parseProperName())
	}
	return ast.ModuleName{Segments: segments}
}

func (p *Parser) parseProperName() ast.ProperName {
	if !p.curIs(lexer.PROPERNAME) {
		p.reportExpected(lexer.PROPERNAME)
		return ast.ProperName{}
	}
	n := ast.ProperName{Value: p.curToken.Literal, Span: p.tokenSpan(p.curToken)}
	p.nextToken()
	return n
}

func (p *Parser) parseName() ast.Name {
	if !p.curIs(lexer.NAME) && !p.curIs(lexer.UNUSEDNAME) {
		p.reportExpected(lexer.NAME)
		return ast.Name{}
	}
	n := ast.Name{Value: p.curToken.Literal, Span: p.tokenSpan(p.curToken)}
	p.nextToken()
	return n
}

func (p *Parser) tokenSpan(t lexer.Token) ast.Span {
	return ast.Span{Start: t.Start, End: t.End}
}

// skipExportList consumes `(..)` or `(item, item, ...)` without
// retaining it: internal/ast.Module carries no export clause, since
// internal/core.Exports is built from the checked declarations
// themselves rather than replayed from the CST (see internal/resolve).
func (p *Parser) skipExportList() {
	if !p.expect(lexer.LPAREN) {
		return
	}
	depth := 1
	for depth > 0 && !p.curIs(lexer.EOF) {
		switch p.curToken.Type {
		case lexer.LPAREN:
			depth++
		case lexer.RPAREN:
			depth--
		}
		p.nextToken()
	}
}

func (p *Parser) parseImportLine() *ast.ImportLine {
	start := p.curToken.Start
	line := &ast.ImportLine{}
	p.expect(lexer.IMPORT)

	if p.curIs(lexer.LPAREN) {
		p.nextToken()
		if p.curIs(lexer.PACKAGENAME) {
			pkg := ast.PackageName{Value: p.curToken.Literal}
			line.Package = &pkg
			p.nextToken()
		} else {
			p.reportExpected(lexer.PACKAGENAME)
		}
		p.expect(lexer.RPAREN)
	}

	moduleStart := p.curToken.Start
	line.ModuleName = p.parseModuleName()
	line.ModuleSpan = ast.Span{Start: moduleStart, End: p.curToken.Start}

	if p.curIs(lexer.AS) {
		p.nextToken()
		aliasStart := p.curToken.Start
		alias := p.parseProperName()
		line.Alias = &alias
		line.AliasSpan = ast.Span{Start: aliasStart, End: p.curToken.Start}
	} else {
		line.AliasSpan = line.ModuleSpan
	}

	if p.curIs(lexer.LPAREN) {
		p.nextToken()
		if !p.curIs(lexer.RPAREN) {
			line.Unqualified = append(line.Unqualified, p.parseImportItem())
			for p.curIs(lexer.COMMA) {
				p.nextToken()
				if p.curIs(lexer.RPAREN) {
					break
				}
				line.Unqualified = append(line.Unqualified, p.parseImportItem())
			}
		}
		p.expect(lexer.RPAREN)
	}

	if !p.expect(lexer.SEMICOLON) {
		p.synchronize()
	}
	line.Span = p.span(start)
	return line
}

func (p *Parser) parseImportItem() ast.ImportItem {
	start := p.curToken.Start
	item := ast.ImportItem{}
	if p.curIs(lexer.PROPERNAME) {
		name := p.parseProperName()
		item.Type = &name
		if p.curIs(lexer.LPAREN) {
			p.nextToken()
			p.expect(lexer.DOTDOT)
			p.expect(lexer.RPAREN)
			item.WithConstructors = true
		}
	} else {
		name := p.parseName()
		item.Value = &name
	}
	item.Span = p.span(start)
	return item
}
