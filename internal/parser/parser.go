// Package parser implements the precedence-driven mixfix parser of §4.1: a
// hand-written recursive-descent parser whose hard part is a level-indexed
// expression grammar walking the shared precedence.Table, rather than a
// generated grammar. Operators are data, not syntax: declaring one at
// runtime (via a fixity declaration or an implicit type-declaration
// default) changes how subsequent expressions parse.
package parser

import (
	"fmt"

	"github.com/ambulancja/falopa/internal/ast"
	"github.com/ambulancja/falopa/internal/config"
	"github.com/ambulancja/falopa/internal/diagnostics"
	"github.com/ambulancja/falopa/internal/lexer"
	"github.com/ambulancja/falopa/internal/mixfix"
	"github.com/ambulancja/falopa/internal/precedence"
	"github.com/ambulancja/falopa/internal/token"
)

// Parser consumes a token stream and produces a Program. It owns the
// mutable precedence table: fixity declarations parsed along the way are
// visible to every expression parsed afterward.
type Parser struct {
	stream *lexer.Stream
	table  *precedence.Table
	tok    token.Token
}

// New seeds the precedence table with the primitive operators of
// config.PrimitiveOperators (the three of §4.1 plus `_==_`) and primes the
// token stream.
func New(source string) *Parser {
	p := &Parser{stream: lexer.NewStream(source), table: precedence.New()}
	p.advance()
	for _, seed := range config.PrimitiveOperators {
		p.table.Declare(seed.Fixity, seed.Precedence, seed.Name)
	}
	return p
}

// Parse runs the full program grammar.
func Parse(source string) (*ast.Program, error) {
	return New(source).Program()
}

func (p *Parser) advance() {
	p.tok = p.stream.Next()
}

// unshiftCurrent restores replacement as the current token, pushing the
// token that was current back onto the stream so the next advance() (or
// match()) picks it up. This is the parser's one-token pushback, used to
// look past a leading identifier to see whether a ':' follows (§4.1).
func (p *Parser) unshiftCurrent(replacement token.Token) {
	p.stream.Unshift(p.tok)
	p.tok = replacement
}

func (p *Parser) currentPosition() token.Position {
	return p.tok.Position
}

func (p *Parser) fail(code diagnostics.Code, details map[string]any) error {
	return diagnostics.Fail(diagnostics.Parser, code, p.tok.Position, details)
}

func (p *Parser) match(tt token.Type) error {
	if p.tok.Type == tt {
		p.advance()
		return nil
	}
	return p.fail("token-mismatch", diagnostics.D("expected", string(tt), "got", p.tok.String()))
}

func (p *Parser) matchAny(types ...token.Type) error {
	for _, tt := range types {
		if p.tok.Type == tt {
			p.advance()
			return nil
		}
	}
	return p.fail("token-mismatch", diagnostics.D("expected", fmt.Sprint(types), "got", p.tok.String()))
}

func (p *Parser) isOperatorPart() bool {
	return p.tok.Type == token.ID && p.table.IsDeclaredPart(p.tok.Lexeme)
}

func (p *Parser) declareOperator(fixity precedence.Fixity, prec int, name string, at token.Position) error {
	if !p.table.Declare(fixity, prec, name) {
		if !mixfix.IsOperator(name) {
			return diagnostics.Fail(diagnostics.Parser, "not-an-operator", at, diagnostics.D("name", name))
		}
		return diagnostics.Fail(diagnostics.Parser, "operator-already-exists", at, diagnostics.D("name", name))
	}
	return nil
}

// Program parses the BEGIN ... END EOF envelope of §4.1, collecting data
// declarations separately and wrapping the remaining value declarations in
// a single outer Let whose body is Variable("main").
func (p *Parser) Program() (*ast.Program, error) {
	startPos := p.currentPosition()
	if err := p.match(token.BEGIN); err != nil {
		return nil, err
	}

	var dataDecls []*ast.DataDeclaration
	var valueDecls []ast.Decl

	collect := func() error {
		decl, err := p.toplevelDeclaration()
		if err != nil {
			return err
		}
		if decl == nil {
			return nil
		}
		if dd, ok := decl.(*ast.DataDeclaration); ok {
			dataDecls = append(dataDecls, dd)
		} else {
			valueDecls = append(valueDecls, decl)
		}
		return nil
	}

	if p.tok.Type != token.END {
		if err := collect(); err != nil {
			return nil, err
		}
		for p.tok.Type == token.DELIM {
			if err := p.match(token.DELIM); err != nil {
				return nil, err
			}
			if err := collect(); err != nil {
				return nil, err
			}
		}
	}

	if err := p.match(token.END); err != nil {
		return nil, err
	}
	if err := p.match(token.EOF); err != nil {
		return nil, err
	}

	body := ast.NewLet(startPos, valueDecls, ast.NewVariable(startPos, config.EntryPoint))
	return ast.NewProgram(dataDecls, body), nil
}

// toplevelDeclaration returns nil with no error for a fixity declaration,
// which carries no AST node.
func (p *Parser) toplevelDeclaration() (ast.Decl, error) {
	switch p.tok.Type {
	case token.INFIX, token.INFIXL, token.INFIXR:
		return nil, p.fixityDeclaration()
	case token.DATA:
		return p.dataDeclaration()
	default:
		return p.valueDeclaration()
	}
}

func (p *Parser) fixityDeclaration() error {
	pos := p.currentPosition()
	fixity, err := fixityOf(p.tok.Type)
	if err != nil {
		return err
	}
	if err := p.matchAny(token.INFIX, token.INFIXL, token.INFIXR); err != nil {
		return err
	}
	prec, err := p.num()
	if err != nil {
		return err
	}
	// Do not use p.id() here: a fixity declaration names an operator that
	// may not yet be declared, and may not even look like a variable.
	name := p.tok.Lexeme
	if err := p.match(token.ID); err != nil {
		return err
	}
	if (fixity == precedence.Infixl || fixity == precedence.Infixr) && !mixfix.IsBinary(name) {
		return diagnostics.Fail(diagnostics.Parser, "must-be-binary-operator", pos, diagnostics.D("name", name))
	}
	return p.declareOperator(fixity, int(prec), name, pos)
}

func fixityOf(tt token.Type) (precedence.Fixity, error) {
	switch tt {
	case token.INFIX:
		return precedence.Infix, nil
	case token.INFIXL:
		return precedence.Infixl, nil
	case token.INFIXR:
		return precedence.Infixr, nil
	default:
		return "", diagnostics.Fail(diagnostics.Parser, "not-a-fixity-token", token.Position{}, diagnostics.D("token", string(tt)))
	}
}

func (p *Parser) dataDeclaration() (*ast.DataDeclaration, error) {
	pos := p.currentPosition()
	if err := p.match(token.DATA); err != nil {
		return nil, err
	}
	lhs, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.match(token.WHERE); err != nil {
		return nil, err
	}
	ctors, err := p.constructorDeclarations()
	if err != nil {
		return nil, err
	}
	return ast.NewDataDeclaration(pos, lhs, ctors), nil
}

func (p *Parser) constructorDeclarations() ([]*ast.TypeDeclaration, error) {
	if err := p.match(token.BEGIN); err != nil {
		return nil, err
	}
	var decls []*ast.TypeDeclaration
	if p.tok.Type != token.END {
		d, err := p.typeDeclaration()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
		for p.tok.Type == token.DELIM {
			if err := p.match(token.DELIM); err != nil {
				return nil, err
			}
			d, err := p.typeDeclaration()
			if err != nil {
				return nil, err
			}
			decls = append(decls, d)
		}
	}
	if err := p.match(token.END); err != nil {
		return nil, err
	}
	return decls, nil
}

func (p *Parser) valueDeclarations() ([]ast.Decl, error) {
	if err := p.match(token.BEGIN); err != nil {
		return nil, err
	}
	var decls []ast.Decl
	if p.tok.Type != token.END {
		d, err := p.valueDeclaration()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
		for p.tok.Type == token.DELIM {
			if err := p.match(token.DELIM); err != nil {
				return nil, err
			}
			d, err := p.valueDeclaration()
			if err != nil {
				return nil, err
			}
			decls = append(decls, d)
		}
	}
	if err := p.match(token.END); err != nil {
		return nil, err
	}
	return decls, nil
}

// valueDeclaration disambiguates a TypeDeclaration from a Definition by
// peeking one token past the leading identifier (§4.1).
func (p *Parser) valueDeclaration() (ast.Decl, error) {
	if p.tok.Type != token.ID {
		return nil, p.fail("expected-value-declaration", diagnostics.D("got", p.tok.String()))
	}
	tok := p.tok
	p.advance()
	isColon := p.tok.Type == token.COLON
	p.unshiftCurrent(tok)
	if isColon {
		return p.typeDeclaration()
	}
	return p.declaration()
}

func (p *Parser) typeDeclaration() (*ast.TypeDeclaration, error) {
	pos := p.currentPosition()
	// Do not use p.id() here: an as-yet-undeclared operator name is valid
	// on the left of a type declaration and implicitly declares it.
	name := p.tok.Lexeme
	if err := p.match(token.ID); err != nil {
		return nil, err
	}
	if mixfix.IsOperator(name) && !p.table.IsDeclaredOperator(name) {
		if err := p.declareOperator(precedence.Infix, config.DefaultOperatorPrecedence, name, pos); err != nil {
			return nil, err
		}
	}
	if err := p.match(token.COLON); err != nil {
		return nil, err
	}
	typ, err := p.expression()
	if err != nil {
		return nil, err
	}
	return ast.NewTypeDeclaration(pos, name, typ), nil
}

func (p *Parser) declaration() (*ast.Definition, error) {
	pos := p.currentPosition()
	lhs, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.match(token.EQ); err != nil {
		return nil, err
	}
	rhs, err := p.expression()
	if err != nil {
		return nil, err
	}
	var where []ast.Decl
	if p.tok.Type == token.WHERE {
		if err := p.match(token.WHERE); err != nil {
			return nil, err
		}
		where, err = p.valueDeclarations()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewDefinition(pos, lhs, rhs, where), nil
}

func (p *Parser) id() (string, error) {
	name := p.tok.Lexeme
	if p.isOperatorPart() {
		return "", p.fail("operator-part-is-not-a-variable", diagnostics.D("name", name))
	}
	if err := p.match(token.ID); err != nil {
		return "", err
	}
	if mixfix.IsOperator(name) && !p.table.IsDeclaredOperator(name) {
		return "", diagnostics.Fail(diagnostics.Parser, "undeclared-operator", p.tok.Position, diagnostics.D("name", name))
	}
	return name, nil
}

func (p *Parser) num() (int64, error) {
	tok := p.tok
	if err := p.match(token.NUM); err != nil {
		return 0, err
	}
	return tok.Value, nil
}

func (p *Parser) expression() (ast.Expr, error) {
	if p.tok.Type == token.FRESH {
		return p.freshExpression()
	}
	first, ok := p.table.FirstLevel()
	return p.expressionMixfix(first, ok)
}

// freshExpression parses `fresh v . body` (§3.2); the body extends as far
// right as possible, so `fresh x . fresh y . e` nests as two bindings
// around `e` rather than one binding around `fresh y`.
func (p *Parser) freshExpression() (ast.Expr, error) {
	pos := p.currentPosition()
	if err := p.match(token.FRESH); err != nil {
		return nil, err
	}
	name := p.tok.Lexeme
	if err := p.match(token.ID); err != nil {
		return nil, err
	}
	if err := p.match(token.DOT); err != nil {
		return nil, err
	}
	body, err := p.expression()
	if err != nil {
		return nil, err
	}
	return ast.NewFresh(pos, name, body), nil
}

func (p *Parser) expressionMixfix(level precedence.Key, hasLevel bool) (ast.Expr, error) {
	if !hasLevel {
		return p.application()
	}
	switch p.table.Fixity(level) {
	case precedence.Infix:
		return p.expressionInfix(level)
	case precedence.Infixl:
		return p.expressionInfixl(level)
	case precedence.Infixr:
		return p.expressionInfixr(level)
	default:
		return nil, p.fail("fixity-not-implemented", nil)
	}
}

// expressionInfix implements the status-tracking algorithm of §4.1: status
// is an alternating list of "" (a filled argument slot) and operator-part
// strings, extended one token or one sub-expression at a time until it
// matches some declared operator's parts exactly.
func (p *Parser) expressionInfix(level precedence.Key) (ast.Expr, error) {
	pos := p.currentPosition()
	var status []string
	var children []ast.Expr

	for !p.endOfExpression() {
		tokVal := p.tok.Lexeme
		mustReadPart := (len(status) == 0 && p.isOperatorPart() && p.table.IsStatusPrefixInLevel(level, []string{tokVal})) ||
			(len(status) > 0 && status[len(status)-1] == "")

		if mustReadPart {
			status = append(status, tokVal)
			if !p.isOperatorPart() || !p.table.IsStatusPrefixInLevel(level, status) {
				if len(status) == 2 {
					status = status[:len(status)-1]
					break
				}
				return nil, p.fail("expected-operator-part", diagnostics.D("status", mixfix.FromParts(status)))
			}
			p.advance()
		} else {
			status = append(status, "")
			nextLevel, nextOk := p.table.NextLevel(level)
			child, err := p.expressionMixfix(nextLevel, nextOk)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}

		if p.table.IsStatusInLevel(level, status) {
			name := mixfix.FromParts(status)
			expr := ast.Expr(ast.NewVariable(pos, name))
			for _, arg := range children {
				expr = ast.Apply(pos, expr, arg)
			}
			return expr, nil
		}
	}

	if len(status) == 1 && status[0] == "" {
		return children[0], nil
	}
	return nil, p.fail("cannot-parse-expression", nil)
}

func (p *Parser) expressionInfixl(level precedence.Key) (ast.Expr, error) {
	pos := p.currentPosition()
	nextLevel, nextOk := p.table.NextLevel(level)
	expr, err := p.expressionMixfix(nextLevel, nextOk)
	if err != nil {
		return nil, err
	}
	for p.isOperatorPart() && p.table.IsBinopInLevel(level, p.tok.Lexeme) {
		opName := mixfix.FromParts([]string{"", p.tok.Lexeme, ""})
		operator := ast.NewVariable(pos, opName)
		p.advance()
		arg, err := p.expressionMixfix(nextLevel, nextOk)
		if err != nil {
			return nil, err
		}
		expr = ast.Apply(pos, operator, expr, arg)
	}
	return expr, nil
}

func (p *Parser) expressionInfixr(level precedence.Key) (ast.Expr, error) {
	pos := p.currentPosition()
	nextLevel, nextOk := p.table.NextLevel(level)
	expr, err := p.expressionMixfix(nextLevel, nextOk)
	if err != nil {
		return nil, err
	}
	if p.isOperatorPart() && p.table.IsBinopInLevel(level, p.tok.Lexeme) {
		opName := mixfix.FromParts([]string{"", p.tok.Lexeme, ""})
		operator := ast.NewVariable(pos, opName)
		p.advance()
		arg, err := p.expressionMixfix(level, true)
		if err != nil {
			return nil, err
		}
		return ast.Apply(pos, operator, expr, arg), nil
	}
	return expr, nil
}

func (p *Parser) endOfExpression() bool {
	switch p.tok.Type {
	case token.EQ, token.WHERE, token.DELIM, token.RPAREN, token.END:
		return true
	default:
		return false
	}
}

func (p *Parser) application() (ast.Expr, error) {
	pos := p.currentPosition()
	expr, err := p.atom()
	if err != nil {
		return nil, err
	}
	for !p.endOfApplication() {
		arg, err := p.atom()
		if err != nil {
			return nil, err
		}
		expr = ast.Apply(pos, expr, arg)
	}
	return expr, nil
}

func (p *Parser) endOfApplication() bool {
	return p.isOperatorPart() || p.endOfExpression()
}

func (p *Parser) atom() (ast.Expr, error) {
	pos := p.currentPosition()
	switch p.tok.Type {
	case token.LPAREN:
		if err := p.match(token.LPAREN); err != nil {
			return nil, err
		}
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.match(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case token.NUM:
		v, err := p.num()
		if err != nil {
			return nil, err
		}
		return ast.NewIntegerConstant(pos, int64(v)), nil
	case token.ID:
		name, err := p.id()
		if err != nil {
			return nil, err
		}
		return ast.NewVariable(pos, name), nil
	case token.UNDERSCORE:
		p.advance()
		return ast.NewWildcard(pos), nil
	default:
		return nil, p.fail("expected-atom", diagnostics.D("got", p.tok.String()))
	}
}
