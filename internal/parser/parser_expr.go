package parser

import (
	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/lexer"
)

// parseExpr parses one expression: a primary form followed by zero or
// more postfix applications and record accesses. There is no
// binary-operator precedence table to climb; Ditto has none.
func (p *Parser) parseExpr() ast.Expr {
	expr := p.parsePrimaryExpr()
	if expr == nil {
		return nil
	}
	return p.parsePostfix(expr)
}

func (p *Parser) parsePostfix(expr ast.Expr) ast.Expr {
	for {
		switch p.curToken.Type {
		case lexer.LPAREN:
			start := expr.Span().Start
			p.nextToken()
			var args []ast.Expr
			if !p.curIs(lexer.RPAREN) {
				args = append(args, p.parseExpr())
				for p.curIs(lexer.COMMA) {
					p.nextToken()
					if p.curIs(lexer.RPAREN) {
						break
					}
					args = append(args, p.parseExpr())
				}
			}
			p.expect(lexer.RPAREN)
			expr = &ast.ExprCall{ExprSpan: p.span(start), Function: expr, Arguments: args}
		case lexer.DOT:
			start := expr.Span().Start
			p.nextToken()
			label := p.parseName()
			expr = &ast.ExprRecordAccess{ExprSpan: p.span(start), Target: expr, Label: label}
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	start := p.curToken.Start
	switch p.curToken.Type {
	case lexer.TRUE:
		p.nextToken()
		return &ast.ExprTrue{ExprSpan: p.span(start)}
	case lexer.FALSE:
		p.nextToken()
		return &ast.ExprFalse{ExprSpan: p.span(start)}
	case lexer.UNIT:
		p.nextToken()
		return &ast.ExprUnit{ExprSpan: p.span(start)}
	case lexer.INT:
		lit := p.curToken.Literal
		p.nextToken()
		return &ast.ExprInt{ExprSpan: p.span(start), Lexeme: lit}
	case lexer.FLOAT:
		lit := p.curToken.Literal
		p.nextToken()
		return &ast.ExprFloat{ExprSpan: p.span(start), Lexeme: lit}
	case lexer.STRING:
		lit := p.curToken.Literal
		p.nextToken()
		return &ast.ExprString{ExprSpan: p.span(start), Lexeme: lit}
	case lexer.NAME:
		name := p.parseName()
		return &ast.ExprVariable{ExprSpan: p.span(start), Name: ast.Qualified[ast.Name]{Value: name}}
	case lexer.PROPERNAME:
		return p.parseQualifiedExprHead(start)
	case lexer.LBRACKET:
		return p.parseArrayExpr(start)
	case lexer.LBRACE:
		return p.parseRecordExpr(start)
	case lexer.IF:
		return p.parseIfExpr(start)
	case lexer.MATCH:
		return p.parseMatchExpr(start)
	case lexer.FN:
		return p.parseFunctionExpr(start)
	case lexer.LET:
		return p.parseLetExpr(start)
	case lexer.DO:
		return p.parseDoExpr(start)
	default:
		p.noPrimaryExprError()
		p.nextToken()
		return nil
	}
}

// parseQualifiedExprHead handles the PROPERNAME-led forms: a bare or
// qualified constructor reference (Foo, Foo.Bar) and a qualified
// variable reference (Foo.bar). An unqualified lowercase access like
// `foo.bar` is a record access instead, handled by the postfix loop.
func (p *Parser) parseQualifiedExprHead(start int) ast.Expr {
	first := p.parseProperName()
	if !p.curIs(lexer.DOT) {
		return &ast.ExprConstructor{ExprSpan: p.span(start), Name: ast.Qualified[ast.ProperName]{Value: first}}
	}
	p.nextToken()
	if p.curIs(lexer.NAME) {
		value := p.parseName()
		return &ast.ExprVariable{ExprSpan: p.span(start), Name: ast.Qualified[ast.Name]{ModuleName: &first, Value: value}}
	}
	ctor := p.parseProperName()
	return &ast.ExprConstructor{ExprSpan: p.span(start), Name: ast.Qualified[ast.ProperName]{ModuleName: &first, Value: ctor}}
}

func (p *Parser) parseArrayExpr(start int) ast.Expr {
	p.expect(lexer.LBRACKET)
	var elements []ast.Expr
	if !p.curIs(lexer.RBRACKET) {
		elements = append(elements, p.parseExpr())
		for p.curIs(lexer.COMMA) {
			p.nextToken()
			if p.curIs(lexer.RBRACKET) {
				break
			}
			elements = append(elements, p.parseExpr())
		}
	}
	p.expect(lexer.RBRACKET)
	return &ast.ExprArray{ExprSpan: p.span(start), Elements: elements}
}

// parseRecordExpr handles an empty record, a record literal (possibly
// with punned fields), and a record update `{ target | field = v, ... }`.
// The form is disambiguated by looking at what follows the first name:
// `|` means the token we just read was the update target, `=`/`,`/`}`
// means it was the first field.
func (p *Parser) parseRecordExpr(start int) ast.Expr {
	p.expect(lexer.LBRACE)
	if p.curIs(lexer.RBRACE) {
		p.nextToken()
		return &ast.ExprRecord{ExprSpan: p.span(start)}
	}

	if p.curIs(lexer.PROPERNAME) {
		target := p.parsePostfix(p.parseQualifiedExprHead(p.curToken.Start))
		p.expect(lexer.PIPE)
		fields := p.parseExprFieldList()
		p.expect(lexer.RBRACE)
		return &ast.ExprRecordUpdate{ExprSpan: p.span(start), Target: target, Fields: fields}
	}

	firstName := p.parseName()
	if p.curIs(lexer.PIPE) {
		p.nextToken()
		target := ast.Expr(&ast.ExprVariable{ExprSpan: firstName.Span, Name: ast.Qualified[ast.Name]{Value: firstName}})
		fields := p.parseExprFieldList()
		p.expect(lexer.RBRACE)
		return &ast.ExprRecordUpdate{ExprSpan: p.span(start), Target: target, Fields: fields}
	}

	first := p.parseExprFieldRest(firstName)
	fields := []ast.ExprRecordField{first}
	for p.curIs(lexer.COMMA) {
		p.nextToken()
		if p.curIs(lexer.RBRACE) {
			break
		}
		fields = append(fields, p.parseExprField())
	}
	p.expect(lexer.RBRACE)
	return &ast.ExprRecord{ExprSpan: p.span(start), Fields: fields}
}

func (p *Parser) parseExprFieldList() []ast.ExprRecordField {
	var fields []ast.ExprRecordField
	if p.curIs(lexer.RBRACE) {
		return fields
	}
	fields = append(fields, p.parseExprField())
	for p.curIs(lexer.COMMA) {
		p.nextToken()
		if p.curIs(lexer.RBRACE) {
			break
		}
		fields = append(fields, p.parseExprField())
	}
	return fields
}

func (p *Parser) parseExprField() ast.ExprRecordField {
	name := p.parseName()
	return p.parseExprFieldRest(name)
}

// parseExprFieldRest finishes a field once its name is already
// consumed: `= expr` for a value, or nothing for a punned field.
func (p *Parser) parseExprFieldRest(name ast.Name) ast.ExprRecordField {
	if p.curIs(lexer.EQUALS) {
		p.nextToken()
		value := p.parseExpr()
		span := name.Span
		if value != nil {
			span = span.Merge(value.Span())
		}
		return ast.ExprRecordField{Span: span, Name: name, Value: value}
	}
	return ast.ExprRecordField{Span: name.Span, Name: name}
}

func (p *Parser) parseIfExpr(start int) ast.Expr {
	p.expect(lexer.IF)
	cond := p.parseExpr()
	p.expect(lexer.THEN)
	then := p.parseExpr()
	p.expect(lexer.ELSE)
	els := p.parseExpr()
	return &ast.ExprIf{ExprSpan: p.span(start), Condition: cond, Then: then, Else: els}
}

func (p *Parser) parseMatchExpr(start int) ast.Expr {
	p.expect(lexer.MATCH)
	scrutinee := p.parseExpr()
	p.expect(lexer.WITH)

	var arms []ast.MatchArm
	for p.curIs(lexer.PIPE) {
		armStart := p.curToken.Start
		p.nextToken()
		pattern := p.parsePattern()
		var guard ast.Expr
		if p.curIs(lexer.IF) {
			p.nextToken()
			guard = p.parseExpr()
		}
		p.expect(lexer.RARROW)
		body := p.parseExpr()
		arms = append(arms, ast.MatchArm{Span: p.span(armStart), Pattern: pattern, Guard: guard, Body: body})
	}
	p.expect(lexer.END)
	return &ast.ExprMatch{ExprSpan: p.span(start), Scrutinee: scrutinee, Arms: arms}
}

func (p *Parser) parseFunctionExpr(start int) ast.Expr {
	p.expect(lexer.FN)
	p.expect(lexer.LPAREN)
	var binders []ast.FunctionBinder
	if !p.curIs(lexer.RPAREN) {
		binders = append(binders, p.parseFunctionBinder())
		for p.curIs(lexer.COMMA) {
			p.nextToken()
			if p.curIs(lexer.RPAREN) {
				break
			}
			binders = append(binders, p.parseFunctionBinder())
		}
	}
	p.expect(lexer.RPAREN)

	// An optional `: ReturnType` is accepted and discarded: ExprFunction
	// carries no return-type field, matching resolve/typecheck inferring
	// it from the body rather than an explicit annotation.
	if p.curIs(lexer.COLON) {
		p.nextToken()
		p.parseTypeExpr()
	}

	p.expect(lexer.RARROW)
	body := p.parseExpr()
	return &ast.ExprFunction{ExprSpan: p.span(start), Binders: binders, Body: body}
}

func (p *Parser) parseFunctionBinder() ast.FunctionBinder {
	start := p.curToken.Start
	var name ast.Name
	if p.curIs(lexer.UNUSEDNAME) {
		name = ast.Name{Value: p.curToken.Literal, Span: p.tokenSpan(p.curToken)}
		p.nextToken()
	} else {
		name = p.parseName()
	}
	var annotation ast.TypeExpr
	if p.curIs(lexer.COLON) {
		p.nextToken()
		annotation = p.parseTypeExpr()
	}
	return ast.FunctionBinder{Span: p.span(start), Name: name, Annotation: annotation}
}

// parseLetExpr parses `let name (: Type)? = expr ;` one binding at a
// time, recursing on the remainder so that `let a = 1; b = 2; in body`
// desugars into nested ExprLet values without a separate AST shape for
// multi-binding lets.
func (p *Parser) parseLetExpr(start int) ast.Expr {
	p.expect(lexer.LET)
	return p.parseLetBindings(start)
}

func (p *Parser) parseLetBindings(start int) ast.Expr {
	name := p.parseName()
	var annotation ast.TypeExpr
	if p.curIs(lexer.COLON) {
		p.nextToken()
		annotation = p.parseTypeExpr()
	}
	p.expect(lexer.EQUALS)
	value := p.parseExpr()
	p.expect(lexer.SEMICOLON)

	var rest ast.Expr
	if p.curIs(lexer.IN) {
		p.nextToken()
		rest = p.parseExpr()
	} else {
		rest = p.parseLetBindings(start)
	}
	return &ast.ExprLet{ExprSpan: p.span(start), Name: name, Annotation: annotation, Value: value, Rest: rest}
}

// parseDoExpr parses an effect block `do { stmt; stmt; ... }`.
func (p *Parser) parseDoExpr(start int) ast.Expr {
	p.expect(lexer.DO)
	p.expect(lexer.LBRACE)

	var stmts []ast.EffectStmt
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		stmts = append(stmts, p.parseEffectStmt())
		if p.curIs(lexer.SEMICOLON) {
			p.nextToken()
		} else {
			break
		}
	}
	p.expect(lexer.RBRACE)
	return &ast.ExprEffect{ExprSpan: p.span(start), Statements: stmts}
}

func (p *Parser) parseEffectStmt() ast.EffectStmt {
	start := p.curToken.Start

	if p.curIs(lexer.RETURN) {
		p.nextToken()
		value := p.parseExpr()
		return &ast.EffectReturn{StmtSpan: p.span(start), Value: value}
	}

	if p.curIs(lexer.LET) {
		p.nextToken()
		name := p.parseName()
		var annotation ast.TypeExpr
		if p.curIs(lexer.COLON) {
			p.nextToken()
			annotation = p.parseTypeExpr()
		}
		p.expect(lexer.EQUALS)
		value := p.parseExpr()
		return &ast.EffectLet{StmtSpan: p.span(start), Name: name, Annotation: annotation, Value: value}
	}

	if p.curIs(lexer.NAME) && p.peekIs(lexer.LARROW) {
		name := p.parseName()
		p.expect(lexer.LARROW)
		value := p.parseExpr()
		return &ast.EffectBind{StmtSpan: p.span(start), Name: name, Value: value}
	}

	value := p.parseExpr()
	hasRest := p.curIs(lexer.SEMICOLON)
	return &ast.EffectExpression{StmtSpan: p.span(start), Value: value, HasRest: hasRest}
}
