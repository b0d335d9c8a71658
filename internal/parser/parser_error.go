package parser

import (
	"fmt"

	dittoerrors "github.com/ditto-lang/ditto/internal/errors"
	"github.com/ditto-lang/ditto/internal/lexer"
)

// ParserError is a structured parse error: a code, a human message,
// the offending token, and what the parser was expecting when it
// failed, suitable for rendering with source context.
type ParserError struct {
	Code     string
	Message  string
	Token    lexer.Token
	Expected []lexer.TokenType
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Code, e.Token.Position(), e.Message)
}

func newParserError(code string, tok lexer.Token, message string, expected ...lexer.TokenType) *ParserError {
	return &ParserError{Code: code, Message: message, Token: tok, Expected: expected}
}

// report records a grammar-violation error at the current token. Every
// parser-level failure is a ParseUnexpectedToken: a genuinely
// unterminated literal or malformed number is a lexer concern the
// lexer doesn't yet surface as a structured error of its own, only as
// an ILLEGAL token the parser then rejects here too.
func (p *Parser) report(code string, message string) {
	p.errors = append(p.errors, newParserError(code, p.curToken, message))
}

// reportExpected records an "expected X, got Y" error at the current token.
func (p *Parser) reportExpected(expected lexer.TokenType) {
	message := fmt.Sprintf("expected %s, got %s", expected, p.curToken.Type)
	p.errors = append(p.errors, newParserError(dittoerrors.ParseUnexpectedToken, p.curToken, message, expected))
}

// noPrimaryExprError records that the current token cannot start an expression.
func (p *Parser) noPrimaryExprError() {
	message := fmt.Sprintf("unexpected token in expression: %s", p.curToken.Type)
	p.errors = append(p.errors, newParserError(dittoerrors.ParseUnexpectedToken, p.curToken, message))
}
