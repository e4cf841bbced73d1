// Package parser implements the syntactic analyzer for the C-like
// scripting language compiled by this module.
//
// The parser takes a stream of tokens from the lexer and constructs an
// Abstract Syntax Tree (AST) that represents the structure of the program.
// It implements a recursive descent parser with Pratt parsing (precedence
// climbing) for expressions.
//
// Key features:
//   - Top-down parsing of statements and expressions
//   - Precedence-based expression parsing, covering the full operator set
//     (assignment and its compound forms, the ternary conditional, logical
//     and bitwise operators, equality/relational/shift families,
//     arithmetic including right-associative exponentiation, prefix/postfix
//     update expressions, member access, call, and new)
//   - Error reporting for syntax errors
//
// The main entry point is the [New] function, which creates a new [Parser]
// instance, and the [Parser.ParseProgram] method, which parses a complete
// program and returns its AST. Check [Parser.Errors] afterward to see if
// any parsing errors occurred.
package parser

import (
	"fmt"
	"strconv"

	"github.com/clscript/clscript/ast"
	"github.com/clscript/clscript/lexer"
	"github.com/clscript/clscript/token"
)

const (
	_ int = iota

	// Lowest is the precedence floor: any operator binds tighter than this.
	Lowest

	// CommaPrec is the precedence of the top-level sequence (comma)
	// operator — the loosest-binding operator in the grammar.
	CommaPrec

	// AssignPrec is the precedence of `=` and its compound forms,
	// right-associative.
	AssignPrec

	// ConditionalPrec is the precedence of the ternary `?:`, right-associative.
	ConditionalPrec

	// LogicalOrPrec is the precedence of `||`.
	LogicalOrPrec

	// LogicalAndPrec is the precedence of `&&`.
	LogicalAndPrec

	// BitOrPrec is the precedence of `|`.
	BitOrPrec

	// BitXorPrec is the precedence of `^`.
	BitXorPrec

	// BitAndPrec is the precedence of `&`.
	BitAndPrec

	// EqualityPrec is the precedence of `==`, `!=`, `===`, `!==`.
	EqualityPrec

	// RelationalPrec is the precedence of `<`, `<=`, `>`, `>=`.
	RelationalPrec

	// ShiftPrec is the precedence of `<<`, `>>`, `>>>`.
	ShiftPrec

	// AdditivePrec is the precedence of binary `+` and `-`.
	AdditivePrec

	// MultiplicativePrec is the precedence of `*`, `/`, `%`.
	MultiplicativePrec

	// ExponentPrec is the precedence of `**`, right-associative.
	ExponentPrec

	// UnaryPrec is the precedence at which prefix operators parse their
	// operand.
	UnaryPrec

	// CallPrec is the precedence of member access, call, and postfix
	// `++`/`--` — the tightest-binding operators.
	CallPrec
)

// precedences maps an infix/postfix token to its precedence level.
var precedences = map[token.Type]int{
	token.Comma: CommaPrec,

	token.Assign:        AssignPrec,
	token.PlusAssign:    AssignPrec,
	token.MinusAssign:   AssignPrec,
	token.StarAssign:    AssignPrec,
	token.SlashAssign:   AssignPrec,
	token.PercentAssign: AssignPrec,
	token.AndAssign:     AssignPrec,
	token.OrAssign:      AssignPrec,
	token.XorAssign:     AssignPrec,
	token.ShlAssign:     AssignPrec,
	token.ShrAssign:     AssignPrec,
	token.UShrAssign:    AssignPrec,

	token.Question: ConditionalPrec,

	token.Or:  LogicalOrPrec,
	token.And: LogicalAndPrec,

	token.BitOr:  BitOrPrec,
	token.Caret:  BitXorPrec,
	token.BitAnd: BitAndPrec,

	token.Eq:          EqualityPrec,
	token.NotEq:       EqualityPrec,
	token.StrictEq:    EqualityPrec,
	token.StrictNotEq: EqualityPrec,

	token.Lt:  RelationalPrec,
	token.Lte: RelationalPrec,
	token.Gt:  RelationalPrec,
	token.Gte: RelationalPrec,

	token.Shl: ShiftPrec,
	token.Shr: ShiftPrec,
	token.UShr: ShiftPrec,

	token.Plus:  AdditivePrec,
	token.Minus: AdditivePrec,

	token.Star:    MultiplicativePrec,
	token.Slash:   MultiplicativePrec,
	token.Percent: MultiplicativePrec,

	token.Pow: ExponentPrec,

	token.Lparen:   CallPrec,
	token.Dot:      CallPrec,
	token.Lbracket: CallPrec,
	token.Inc:      CallPrec,
	token.Dec:      CallPrec,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser parses source text for the C-like scripting language into an AST.
type Parser struct {
	l      *lexer.Lexer
	errors []string

	currentToken token.Token
	peekToken    token.Token

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New creates a new [Parser] reading tokens from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, errors: []string{}}

	p.prefixParseFns = make(map[token.Type]prefixParseFn)
	p.registerPrefix(token.Ident, p.parseIdentifier)
	p.registerPrefix(token.Number, p.parseNumberLiteral)
	p.registerPrefix(token.String, p.parseStringLiteral)
	p.registerPrefix(token.True, p.parseBooleanLiteral)
	p.registerPrefix(token.False, p.parseBooleanLiteral)
	p.registerPrefix(token.Null, p.parseNullLiteral)
	p.registerPrefix(token.Undefined, p.parseUndefinedLiteral)
	p.registerPrefix(token.This, p.parseThisExpression)
	p.registerPrefix(token.Bang, p.parsePrefixExpression)
	p.registerPrefix(token.Tilde, p.parsePrefixExpression)
	p.registerPrefix(token.Plus, p.parsePrefixExpression)
	p.registerPrefix(token.Minus, p.parsePrefixExpression)
	p.registerPrefix(token.Typeof, p.parsePrefixExpression)
	p.registerPrefix(token.Void, p.parsePrefixExpression)
	p.registerPrefix(token.Delete, p.parsePrefixExpression)
	p.registerPrefix(token.Inc, p.parsePrefixUpdate)
	p.registerPrefix(token.Dec, p.parsePrefixUpdate)
	p.registerPrefix(token.Lparen, p.parseGroupedExpression)
	p.registerPrefix(token.Lbracket, p.parseArrayLiteral)
	p.registerPrefix(token.Lbrace, p.parseObjectLiteral)
	p.registerPrefix(token.Function, p.parseFunctionLiteral)
	p.registerPrefix(token.New, p.parseNewExpression)

	p.infixParseFns = make(map[token.Type]infixParseFn)
	p.registerInfix(token.Comma, p.parseSequenceExpression)
	for _, t := range []token.Type{
		token.Assign, token.PlusAssign, token.MinusAssign, token.StarAssign,
		token.SlashAssign, token.PercentAssign, token.AndAssign, token.OrAssign,
		token.XorAssign, token.ShlAssign, token.ShrAssign, token.UShrAssign,
	} {
		p.registerInfix(t, p.parseAssignmentExpression)
	}
	p.registerInfix(token.Question, p.parseConditionalExpression)
	p.registerInfix(token.Or, p.parseLogicalExpression)
	p.registerInfix(token.And, p.parseLogicalExpression)
	for _, t := range []token.Type{
		token.BitOr, token.Caret, token.BitAnd,
		token.Eq, token.NotEq, token.StrictEq, token.StrictNotEq,
		token.Lt, token.Lte, token.Gt, token.Gte,
		token.Shl, token.Shr, token.UShr,
		token.Plus, token.Minus, token.Star, token.Slash, token.Percent,
	} {
		p.registerInfix(t, p.parseBinaryExpression)
	}
	p.registerInfix(token.Pow, p.parseExponentExpression)
	p.registerInfix(token.Lparen, p.parseCallExpression)
	p.registerInfix(token.Dot, p.parseDotExpression)
	p.registerInfix(token.Lbracket, p.parseBracketExpression)
	p.registerInfix(token.Inc, p.parsePostfixUpdate)
	p.registerInfix(token.Dec, p.parsePostfixUpdate)

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) registerPrefix(t token.Type, fn prefixParseFn) {
	p.prefixParseFns[t] = fn
}

func (p *Parser) registerInfix(t token.Type, fn infixParseFn) {
	p.infixParseFns[t] = fn
}

// Errors returns the list of errors encountered during parsing.
func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) peekError(t token.Type) {
	p.errors = append(p.errors, fmt.Sprintf(
		"expected next token to be %s, got %s (%q) instead", t, p.peekToken.Type, p.peekToken.Literal))
}

func (p *Parser) noPrefixParseFnError(t token.Type) {
	p.errors = append(p.errors, fmt.Sprintf("no prefix parse function for %s found", t))
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return Lowest
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.currentToken.Type]; ok {
		return pr
	}
	return Lowest
}

func (p *Parser) nextToken() {
	p.currentToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) currentTokenIs(t token.Type) bool {
	return p.currentToken.Type == t
}

func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

// ParseProgram parses a complete program and returns its AST. Check
// [Parser.Errors] afterward to see if any parsing errors occurred.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	for !p.currentTokenIs(token.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}
	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.currentToken.Type {
	case token.Semicolon:
		return &ast.EmptyStatement{Token: p.currentToken}
	case token.Lbrace:
		return p.parseBlockStatement()
	case token.Var:
		decl := p.parseVariableDeclaration()
		if p.peekTokenIs(token.Semicolon) {
			p.nextToken()
		}
		return decl
	case token.If:
		return p.parseIfStatement()
	case token.While:
		return p.parseWhileStatement()
	case token.Do:
		return p.parseDoWhileStatement()
	case token.For:
		return p.parseForStatement()
	case token.Switch:
		return p.parseSwitchStatement()
	case token.Break:
		stmt := &ast.BreakStatement{Token: p.currentToken}
		if p.peekTokenIs(token.Semicolon) {
			p.nextToken()
		}
		return stmt
	case token.Continue:
		stmt := &ast.ContinueStatement{Token: p.currentToken}
		if p.peekTokenIs(token.Semicolon) {
			p.nextToken()
		}
		return stmt
	case token.Return:
		return p.parseReturnStatement()
	case token.Function:
		return p.parseFunctionDeclaration()
	default:
		tok := p.currentToken
		expr := p.parseExpression(Lowest)
		if p.peekTokenIs(token.Semicolon) {
			p.nextToken()
		}
		return &ast.ExpressionStatement{Token: tok, Expression: expr}
	}
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.currentToken}
	p.nextToken()
	for !p.currentTokenIs(token.Rbrace) && !p.currentTokenIs(token.EOF) {
		block.Statements = append(block.Statements, p.parseStatement())
		p.nextToken()
	}
	return block
}

// parseVariableDeclaration parses `var a = 1, b, c = 3` without consuming a
// trailing semicolon, so the for-loop initializer can reuse it.
func (p *Parser) parseVariableDeclaration() *ast.VariableDeclaration {
	tok := p.currentToken
	if !p.expectPeek(token.Ident) {
		return &ast.VariableDeclaration{Token: tok}
	}
	var decls []*ast.VariableDeclarator
	for {
		name := &ast.Identifier{Token: p.currentToken, Name: p.currentToken.Literal}
		var init ast.Expression
		if p.peekTokenIs(token.Assign) {
			p.nextToken()
			p.nextToken()
			init = p.parseExpression(AssignPrec)
		}
		decls = append(decls, &ast.VariableDeclarator{Name: name, Init: init})
		if !p.peekTokenIs(token.Comma) {
			break
		}
		p.nextToken()
		if !p.expectPeek(token.Ident) {
			break
		}
	}
	return &ast.VariableDeclaration{Token: tok, Declarations: decls}
}

func (p *Parser) parseIfStatement() ast.Statement {
	tok := p.currentToken
	if !p.expectPeek(token.Lparen) {
		return nil
	}
	p.nextToken()
	condition := p.parseExpression(Lowest)
	if !p.expectPeek(token.Rparen) {
		return nil
	}
	p.nextToken()
	consequent := p.parseStatement()

	var alternative ast.Statement
	if p.peekTokenIs(token.Else) {
		p.nextToken()
		p.nextToken()
		alternative = p.parseStatement()
	}
	return &ast.IfStatement{Token: tok, Condition: condition, Consequent: consequent, Alternative: alternative}
}

func (p *Parser) parseWhileStatement() ast.Statement {
	tok := p.currentToken
	if !p.expectPeek(token.Lparen) {
		return nil
	}
	p.nextToken()
	condition := p.parseExpression(Lowest)
	if !p.expectPeek(token.Rparen) {
		return nil
	}
	p.nextToken()
	body := p.parseStatement()
	return &ast.WhileStatement{Token: tok, Condition: condition, Body: body}
}

func (p *Parser) parseDoWhileStatement() ast.Statement {
	tok := p.currentToken
	p.nextToken()
	body := p.parseStatement()
	if !p.expectPeek(token.While) {
		return nil
	}
	if !p.expectPeek(token.Lparen) {
		return nil
	}
	p.nextToken()
	condition := p.parseExpression(Lowest)
	if !p.expectPeek(token.Rparen) {
		return nil
	}
	if p.peekTokenIs(token.Semicolon) {
		p.nextToken()
	}
	return &ast.DoWhileStatement{Token: tok, Body: body, Condition: condition}
}

func (p *Parser) parseForStatement() ast.Statement {
	tok := p.currentToken
	if !p.expectPeek(token.Lparen) {
		return nil
	}
	p.nextToken()

	var init ast.Node
	switch {
	case p.currentTokenIs(token.Semicolon):
		// no initializer
	case p.currentTokenIs(token.Var):
		init = p.parseVariableDeclaration()
		if !p.expectPeek(token.Semicolon) {
			return nil
		}
	default:
		initTok := p.currentToken
		expr := p.parseExpression(Lowest)
		init = &ast.ExpressionStatement{Token: initTok, Expression: expr}
		if !p.expectPeek(token.Semicolon) {
			return nil
		}
	}

	p.nextToken()
	var test ast.Expression
	if !p.currentTokenIs(token.Semicolon) {
		test = p.parseExpression(Lowest)
		if !p.expectPeek(token.Semicolon) {
			return nil
		}
	}

	p.nextToken()
	var update ast.Expression
	if !p.currentTokenIs(token.Rparen) {
		update = p.parseExpression(Lowest)
		if !p.expectPeek(token.Rparen) {
			return nil
		}
	}

	p.nextToken()
	body := p.parseStatement()
	return &ast.ForStatement{Token: tok, Init: init, Test: test, Update: update, Body: body}
}

func (p *Parser) parseSwitchStatement() ast.Statement {
	tok := p.currentToken
	if !p.expectPeek(token.Lparen) {
		return nil
	}
	p.nextToken()
	discriminant := p.parseExpression(Lowest)
	if !p.expectPeek(token.Rparen) {
		return nil
	}
	if !p.expectPeek(token.Lbrace) {
		return nil
	}
	p.nextToken()

	var cases []*ast.SwitchCase
	for !p.currentTokenIs(token.Rbrace) && !p.currentTokenIs(token.EOF) {
		var test ast.Expression
		switch p.currentToken.Type {
		case token.Case:
			p.nextToken()
			test = p.parseExpression(Lowest)
			if !p.expectPeek(token.Colon) {
				return nil
			}
		case token.Default:
			if !p.expectPeek(token.Colon) {
				return nil
			}
		default:
			p.errors = append(p.errors, fmt.Sprintf("expected case or default, got %s", p.currentToken.Type))
			return nil
		}
		p.nextToken()

		var body []ast.Statement
		for !p.currentTokenIs(token.Case) && !p.currentTokenIs(token.Default) &&
			!p.currentTokenIs(token.Rbrace) && !p.currentTokenIs(token.EOF) {
			body = append(body, p.parseStatement())
			p.nextToken()
		}
		cases = append(cases, &ast.SwitchCase{Test: test, Consequent: body})
	}
	return &ast.SwitchStatement{Token: tok, Discriminant: discriminant, Cases: cases}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.currentToken
	var argument ast.Expression
	if !p.peekTokenIs(token.Semicolon) {
		p.nextToken()
		argument = p.parseExpression(Lowest)
	}
	if p.peekTokenIs(token.Semicolon) {
		p.nextToken()
	}
	return &ast.ReturnStatement{Token: tok, Argument: argument}
}

func (p *Parser) parseFunctionDeclaration() ast.Statement {
	tok := p.currentToken
	if !p.expectPeek(token.Ident) {
		return nil
	}
	name := &ast.Identifier{Token: p.currentToken, Name: p.currentToken.Literal}
	if !p.expectPeek(token.Lparen) {
		return nil
	}
	params := p.parseFunctionParameters()
	if !p.expectPeek(token.Lbrace) {
		return nil
	}
	body := p.parseBlockStatement()
	return &ast.FunctionDeclaration{Token: tok, Name: name, Params: params, Body: body}
}

func (p *Parser) parseFunctionParameters() []*ast.Identifier {
	var params []*ast.Identifier
	if p.peekTokenIs(token.Rparen) {
		p.nextToken()
		return params
	}
	p.nextToken()
	params = append(params, &ast.Identifier{Token: p.currentToken, Name: p.currentToken.Literal})
	for p.peekTokenIs(token.Comma) {
		p.nextToken()
		p.nextToken()
		params = append(params, &ast.Identifier{Token: p.currentToken, Name: p.currentToken.Literal})
	}
	if !p.expectPeek(token.Rparen) {
		return nil
	}
	return params
}

// parseExpression is the Pratt loop: it parses a prefix expression, then
// repeatedly extends it with infix/postfix operators while their
// precedence exceeds precedence.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.currentToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.currentToken.Type)
		return nil
	}
	left := prefix()
	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.currentToken, Name: p.currentToken.Literal}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	v, err := strconv.ParseFloat(p.currentToken.Literal, 64)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("could not parse %q as a number", p.currentToken.Literal))
		return nil
	}
	return &ast.Literal{Token: p.currentToken, Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.Literal{Token: p.currentToken, Value: p.currentToken.Literal}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.Literal{Token: p.currentToken, Value: p.currentTokenIs(token.True)}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.Literal{Token: p.currentToken, Value: nil}
}

func (p *Parser) parseUndefinedLiteral() ast.Expression {
	return &ast.UndefinedLiteral{Token: p.currentToken}
}

func (p *Parser) parseThisExpression() ast.Expression {
	return &ast.ThisExpression{Token: p.currentToken}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(Lowest)
	if !p.expectPeek(token.Rparen) {
		return nil
	}
	return expr
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	tok := p.currentToken
	p.nextToken()
	argument := p.parseExpression(UnaryPrec)
	return &ast.UnaryExpression{Token: tok, Operator: tok.Literal, Argument: argument}
}

func (p *Parser) parsePrefixUpdate() ast.Expression {
	tok := p.currentToken
	p.nextToken()
	argument := p.parseExpression(UnaryPrec)
	return &ast.UpdateExpression{Token: tok, Operator: tok.Literal, Argument: argument, Prefix: true}
}

func (p *Parser) parsePostfixUpdate(left ast.Expression) ast.Expression {
	tok := p.currentToken
	return &ast.UpdateExpression{Token: tok, Operator: tok.Literal, Argument: left, Prefix: false}
}

func (p *Parser) parseNewExpression() ast.Expression {
	tok := p.currentToken
	p.nextToken()
	callee := p.parseExpression(CallPrec)
	var args []ast.Expression
	if p.peekTokenIs(token.Lparen) {
		p.nextToken()
		args = p.parseExpressionList(token.Rparen)
	}
	return &ast.NewExpression{Token: tok, Callee: callee, Arguments: args}
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	tok := p.currentToken
	name := ""
	if p.peekTokenIs(token.Ident) {
		p.nextToken()
		name = p.currentToken.Literal
	}
	if !p.expectPeek(token.Lparen) {
		return nil
	}
	params := p.parseFunctionParameters()
	if !p.expectPeek(token.Lbrace) {
		return nil
	}
	body := p.parseBlockStatement()
	return &ast.FunctionLiteral{Token: tok, Name: name, Params: params, Body: body}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.currentToken
	elements := p.parseArrayElements()
	return &ast.ArrayExpression{Token: tok, Elements: elements}
}

// parseArrayElements parses a bracketed element list, preserving elided
// (sparse) slots as nil elements. On return, the current token is the
// closing bracket.
func (p *Parser) parseArrayElements() []ast.Expression {
	var elems []ast.Expression
	if p.peekTokenIs(token.Rbracket) {
		p.nextToken()
		return elems
	}
	p.nextToken()
	for {
		switch {
		case p.currentTokenIs(token.Rbracket):
			return elems
		case p.currentTokenIs(token.Comma):
			elems = append(elems, nil)
			p.nextToken()
		default:
			elems = append(elems, p.parseExpression(AssignPrec))
			switch {
			case p.peekTokenIs(token.Comma):
				p.nextToken()
				p.nextToken()
			case p.peekTokenIs(token.Rbracket):
				p.nextToken()
				return elems
			default:
				p.peekError(token.Rbracket)
				return elems
			}
		}
	}
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	tok := p.currentToken
	var props []*ast.ObjectProperty
	if p.peekTokenIs(token.Rbrace) {
		p.nextToken()
		return &ast.ObjectExpression{Token: tok, Properties: props}
	}
	for {
		p.nextToken()
		prop, ok := p.parseObjectProperty()
		if !ok {
			return nil
		}
		props = append(props, prop)
		if !p.peekTokenIs(token.Comma) {
			break
		}
		p.nextToken()
		if p.peekTokenIs(token.Rbrace) {
			break
		}
	}
	if !p.expectPeek(token.Rbrace) {
		return nil
	}
	return &ast.ObjectExpression{Token: tok, Properties: props}
}

func (p *Parser) parseObjectProperty() (*ast.ObjectProperty, bool) {
	var key ast.Node
	computed := false
	switch {
	case p.currentTokenIs(token.Lbracket):
		p.nextToken()
		expr := p.parseExpression(AssignPrec)
		if !p.expectPeek(token.Rbracket) {
			return nil, false
		}
		key = expr
		computed = true
	case p.currentTokenIs(token.String):
		key = &ast.Identifier{Token: p.currentToken, Name: p.currentToken.Literal}
	case p.currentTokenIs(token.Ident):
		key = &ast.Identifier{Token: p.currentToken, Name: p.currentToken.Literal}
	default:
		p.errors = append(p.errors, fmt.Sprintf("unexpected object key token %s", p.currentToken.Type))
		return nil, false
	}
	if !p.expectPeek(token.Colon) {
		return nil, false
	}
	p.nextToken()
	value := p.parseExpression(AssignPrec)
	return &ast.ObjectProperty{Key: key, Value: value, Computed: computed}, true
}

func (p *Parser) parseSequenceExpression(left ast.Expression) ast.Expression {
	tok := p.currentToken
	p.nextToken()
	right := p.parseExpression(CommaPrec)
	if seq, ok := left.(*ast.SequenceExpression); ok {
		seq.Expressions = append(seq.Expressions, right)
		return seq
	}
	return &ast.SequenceExpression{Token: tok, Expressions: []ast.Expression{left, right}}
}

func (p *Parser) parseAssignmentExpression(left ast.Expression) ast.Expression {
	tok := p.currentToken
	p.nextToken()
	right := p.parseExpression(AssignPrec - 1)
	return &ast.AssignmentExpression{Token: tok, Operator: tok.Literal, Left: left, Right: right}
}

func (p *Parser) parseConditionalExpression(test ast.Expression) ast.Expression {
	tok := p.currentToken
	p.nextToken()
	consequent := p.parseExpression(AssignPrec)
	if !p.expectPeek(token.Colon) {
		return nil
	}
	p.nextToken()
	alternative := p.parseExpression(ConditionalPrec - 1)
	return &ast.ConditionalExpression{Token: tok, Test: test, Consequent: consequent, Alternative: alternative}
}

func (p *Parser) parseLogicalExpression(left ast.Expression) ast.Expression {
	tok := p.currentToken
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.LogicalExpression{Token: tok, Left: left, Operator: tok.Literal, Right: right}
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	tok := p.currentToken
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.BinaryExpression{Token: tok, Left: left, Operator: tok.Literal, Right: right}
}

func (p *Parser) parseExponentExpression(left ast.Expression) ast.Expression {
	tok := p.currentToken
	p.nextToken()
	right := p.parseExpression(ExponentPrec - 1)
	return &ast.BinaryExpression{Token: tok, Left: left, Operator: tok.Literal, Right: right}
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	tok := p.currentToken
	args := p.parseExpressionList(token.Rparen)
	return &ast.CallExpression{Token: tok, Callee: callee, Arguments: args}
}

func (p *Parser) parseDotExpression(object ast.Expression) ast.Expression {
	tok := p.currentToken
	if !p.expectPeek(token.Ident) {
		return nil
	}
	property := &ast.Identifier{Token: p.currentToken, Name: p.currentToken.Literal}
	return &ast.MemberExpression{Token: tok, Object: object, Property: property, Computed: false}
}

func (p *Parser) parseBracketExpression(object ast.Expression) ast.Expression {
	tok := p.currentToken
	p.nextToken()
	index := p.parseExpression(Lowest)
	if !p.expectPeek(token.Rbracket) {
		return nil
	}
	return &ast.MemberExpression{Token: tok, Object: object, Property: index, Computed: true}
}

// parseExpressionList parses a comma-separated list of assignment-level
// expressions terminated by end, consuming end on return.
func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	var list []ast.Expression
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(AssignPrec))
	for p.peekTokenIs(token.Comma) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(AssignPrec))
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}
