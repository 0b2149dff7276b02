package parser

import (
	"strconv"

	"github.com/sambeau/qanta/pkg/qanta/ast"
	qerrors "github.com/sambeau/qanta/pkg/qanta/errors"
	"github.com/sambeau/qanta/pkg/qanta/lexer"
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	ASSIGNMENT  // =
	LOGIC_OR    // or
	LOGIC_AND   // and
	EQUALS      // ==
	LESSGREATER // > or <
	SUM         // +
	PRODUCT     // *
	PREFIX      // -X or !X
	CALL        // myFunction(X) or obj.field
)

// MaxArgs is the largest number of parameters a function may declare and
// the largest number of arguments a call may pass.
const MaxArgs = 255

// precedences maps tokens to their precedence
var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:   ASSIGNMENT,
	lexer.OR:       LOGIC_OR,
	lexer.AND:      LOGIC_AND,
	lexer.EQ:       EQUALS,
	lexer.NOT_EQ:   EQUALS,
	lexer.LT:       LESSGREATER,
	lexer.GT:       LESSGREATER,
	lexer.LTE:      LESSGREATER,
	lexer.GTE:      LESSGREATER,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.SLASH:    PRODUCT,
	lexer.ASTERISK: PRODUCT,
	lexer.PERCENT:  PRODUCT,
	lexer.DOT:      CALL,
	lexer.LPAREN:   CALL,
}

// Parser represents the parser
type Parser struct {
	tokens []lexer.Token
	pos    int // index of curToken in tokens

	errors qerrors.ErrorList
	lastID ast.NodeID

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parse turns a token sequence into a list of statements. Syntax errors do
// not stop the parse: every error found is collected and, if there were any,
// returned together as a qerrors.ErrorList with no statements.
func Parse(tokens []lexer.Token) ([]ast.Statement, error) {
	p := New(tokens)
	program := p.ParseProgram()
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return program.Statements, nil
}

// New creates a new parser instance over tokens. A missing trailing EOF
// token is supplied.
func New(tokens []lexer.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.EOF {
		eof := lexer.Token{Type: lexer.EOF}
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			eof.Line = last.Line
			eof.Column = last.Column + len(last.Literal)
		}
		tokens = append(append([]lexer.Token(nil), tokens...), eof)
	}

	p := &Parser{tokens: tokens, pos: -1}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBoolean)
	p.registerPrefix(lexer.FALSE, p.parseBoolean)
	p.registerPrefix(lexer.NIL, p.parseNil)
	p.registerPrefix(lexer.THIS, p.parseThis)
	p.registerPrefix(lexer.SUPER, p.parseSuper)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.FUNCTION, p.parseFunctionLiteral)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	p.registerInfix(lexer.PLUS, p.parseInfixExpression)
	p.registerInfix(lexer.MINUS, p.parseInfixExpression)
	p.registerInfix(lexer.SLASH, p.parseInfixExpression)
	p.registerInfix(lexer.ASTERISK, p.parseInfixExpression)
	p.registerInfix(lexer.PERCENT, p.parseInfixExpression)
	p.registerInfix(lexer.EQ, p.parseInfixExpression)
	p.registerInfix(lexer.NOT_EQ, p.parseInfixExpression)
	p.registerInfix(lexer.LT, p.parseInfixExpression)
	p.registerInfix(lexer.GT, p.parseInfixExpression)
	p.registerInfix(lexer.LTE, p.parseInfixExpression)
	p.registerInfix(lexer.GTE, p.parseInfixExpression)
	p.registerInfix(lexer.AND, p.parseLogicalExpression)
	p.registerInfix(lexer.OR, p.parseLogicalExpression)
	p.registerInfix(lexer.ASSIGN, p.parseAssignExpression)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.DOT, p.parseDotExpression)

	// Sets both curToken and peekToken
	p.nextToken()

	return p
}

// Errors returns every error recorded so far.
func (p *Parser) Errors() qerrors.ErrorList {
	return p.errors
}

// addError records a catalog error at the given position.
func (p *Parser) addError(code string, line, column int, data map[string]any) {
	p.errors = append(p.errors, qerrors.NewWithPosition(code, line, column, data))
}

// registerPrefix registers a prefix parse function
func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

// registerInfix registers an infix parse function
func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// nextToken advances curToken and peekToken. Both stay on EOF once the
// input is exhausted.
func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.curToken = p.tokens[p.pos]
	if p.pos+1 < len(p.tokens) {
		p.peekToken = p.tokens[p.pos+1]
	} else {
		p.peekToken = p.tokens[len(p.tokens)-1]
	}
}

// ContinueFrom makes node IDs start after last. Statements from several
// parses can then share one resolution map.
func (p *Parser) ContinueFrom(last ast.NodeID) {
	p.lastID = last
}

// LastID returns the most recently assigned node ID.
func (p *Parser) LastID() ast.NodeID {
	return p.lastID
}

func (p *Parser) newID() ast.NodeID {
	p.lastID++
	return p.lastID
}

// ParseProgram parses the program and returns the AST. Statements that
// failed to parse are left out; check Errors before using the result.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

// parseDeclaration parses one declaration or statement. Every parse
// function leaves curToken on the last token of its construct and returns
// nil on failure, in which case the parser synchronizes to the next likely
// statement boundary.
func (p *Parser) parseDeclaration() ast.Statement {
	var stmt ast.Statement

	switch {
	case p.curTokenIs(lexer.CLASS):
		stmt = p.parseClassStatement()
	case p.curTokenIs(lexer.FUNCTION) && p.peekTokenIs(lexer.IDENT):
		stmt = p.parseFunctionStatement()
	case p.curTokenIs(lexer.VAR):
		stmt = p.parseVarStatement()
	default:
		stmt = p.parseStatement()
	}

	if stmt == nil {
		p.synchronize()
		return nil
	}
	return stmt
}

// synchronize discards tokens until curToken ends a statement or peekToken
// starts one.
func (p *Parser) synchronize() {
	for !p.curTokenIs(lexer.EOF) {
		if p.curTokenIs(lexer.SEMICOLON) {
			return
		}
		switch p.peekToken.Type {
		case lexer.CLASS, lexer.FUNCTION, lexer.VAR, lexer.FOR, lexer.IF,
			lexer.WHILE, lexer.RETURN, lexer.BREAK, lexer.CONTINUE,
			lexer.RBRACE, lexer.EOF:
			return
		}
		p.nextToken()
	}
}

// parseStatement parses statements
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.BREAK:
		if !p.expectPeek(lexer.SEMICOLON, "';' after 'break'") {
			return nil
		}
		return &ast.BreakStatement{Token: p.prevToken()}
	case lexer.CONTINUE:
		if !p.expectPeek(lexer.SEMICOLON, "';' after 'continue'") {
			return nil
		}
		return &ast.ContinueStatement{Token: p.prevToken()}
	case lexer.LBRACE:
		block := p.parseBlockStatement()
		if block == nil {
			return nil
		}
		return block
	default:
		return p.parseExpressionStatement()
	}
}

// prevToken returns the token before curToken.
func (p *Parser) prevToken() lexer.Token {
	if p.pos == 0 {
		return p.curToken
	}
	return p.tokens[p.pos-1]
}

// parseVarStatement parses 'var name;' and 'var name = value;'.
func (p *Parser) parseVarStatement() ast.Statement {
	stmt := &ast.VarStatement{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT, "variable name") {
		return nil
	}
	stmt.Name = &ast.Identifier{ID: p.newID(), Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
		if stmt.Value == nil {
			return nil
		}
	}

	if !p.expectPeek(lexer.SEMICOLON, "';' after variable declaration") {
		return nil
	}
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		return stmt
	}

	p.nextToken()
	stmt.ReturnValue = p.parseExpression(LOWEST)
	if stmt.ReturnValue == nil {
		return nil
	}

	if !p.expectPeek(lexer.SEMICOLON, "';' after return value") {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}

	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}

	if !p.expectPeek(lexer.SEMICOLON, "';' after expression") {
		return nil
	}
	return stmt
}

// parseBlockStatement parses '{ declaration* }'. Errors inside the block
// are recovered from within the block.
func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	block.Statements = []ast.Statement{}

	p.nextToken()

	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}

	if !p.curTokenIs(lexer.RBRACE) {
		p.curError("'}' after block")
		return nil
	}
	return block
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN, "'(' after 'if'") {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN, "')' after if condition") {
		return nil
	}

	p.nextToken()
	stmt.Consequence = p.parseStatement()
	if stmt.Consequence == nil {
		return nil
	}

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken()
		p.nextToken()
		stmt.Alternative = p.parseStatement()
		if stmt.Alternative == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN, "'(' after 'while'") {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN, "')' after condition") {
		return nil
	}

	p.nextToken()
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseForStatement desugars
//
//	for (init; cond; incr) body
//
// into
//
//	{ init; while (cond; incr) body }
//
// keeping the increment on the loop so continue still runs it.
func (p *Parser) parseForStatement() ast.Statement {
	forToken := p.curToken

	if !p.expectPeek(lexer.LPAREN, "'(' after 'for'") {
		return nil
	}
	p.nextToken()

	var initializer ast.Statement
	switch {
	case p.curTokenIs(lexer.SEMICOLON):
	case p.curTokenIs(lexer.VAR):
		initializer = p.parseVarStatement()
		if initializer == nil {
			return nil
		}
	default:
		initializer = p.parseExpressionStatement()
		if initializer == nil {
			return nil
		}
	}
	p.nextToken()

	var condition ast.Expression
	if !p.curTokenIs(lexer.SEMICOLON) {
		condition = p.parseExpression(LOWEST)
		if condition == nil {
			return nil
		}
		if !p.expectPeek(lexer.SEMICOLON, "';' after loop condition") {
			return nil
		}
	}
	p.nextToken()

	var increment ast.Expression
	if !p.curTokenIs(lexer.RPAREN) {
		increment = p.parseExpression(LOWEST)
		if increment == nil {
			return nil
		}
		if !p.expectPeek(lexer.RPAREN, "')' after for clauses") {
			return nil
		}
	}
	p.nextToken()

	body := p.parseStatement()
	if body == nil {
		return nil
	}

	if condition == nil {
		condition = &ast.Boolean{ID: p.newID(), Token: forToken, Value: true}
	}
	loop := &ast.WhileStatement{
		Token:     forToken,
		Condition: condition,
		Body:      body,
		Increment: increment,
	}

	if initializer == nil {
		return loop
	}
	return &ast.BlockStatement{
		Token:      forToken,
		Statements: []ast.Statement{initializer, loop},
	}
}

func (p *Parser) parseFunctionStatement() ast.Statement {
	stmt := &ast.FunctionStatement{Token: p.curToken}

	p.nextToken()
	stmt.Name = &ast.Identifier{ID: p.newID(), Token: p.curToken, Value: p.curToken.Literal}

	stmt.Function = p.parseFunction()
	if stmt.Function == nil {
		return nil
	}
	return stmt
}

// parseFunction parses 'name(params) { body }' with curToken on the name.
// It serves both function declarations and class methods.
func (p *Parser) parseFunction() *ast.FunctionLiteral {
	fn := &ast.FunctionLiteral{
		ID:    p.newID(),
		Token: p.curToken,
		Name:  p.curToken.Literal,
	}

	if !p.expectPeek(lexer.LPAREN, "'(' after function name") {
		return nil
	}
	params, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	fn.Parameters = params

	if !p.expectPeek(lexer.LBRACE, "'{' before function body") {
		return nil
	}
	fn.Body = p.parseBlockStatement()
	if fn.Body == nil {
		return nil
	}
	return fn
}

// parseFunctionParameters parses a parameter list with curToken on '('.
func (p *Parser) parseFunctionParameters() ([]*ast.Identifier, bool) {
	params := []*ast.Identifier{}

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params, true
	}

	for {
		if !p.expectPeek(lexer.IDENT, "parameter name") {
			return nil, false
		}
		if len(params) == MaxArgs {
			p.addError("PARSE-0004", p.curToken.Line, p.curToken.Column,
				map[string]any{"Limit": MaxArgs, "What": "parameters"})
		}
		params = append(params, &ast.Identifier{ID: p.newID(), Token: p.curToken, Value: p.curToken.Literal})

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(lexer.RPAREN, "')' after parameters") {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseClassStatement() ast.Statement {
	stmt := &ast.ClassStatement{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT, "class name") {
		return nil
	}
	stmt.Name = &ast.Identifier{ID: p.newID(), Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		if !p.expectPeek(lexer.IDENT, "superclass name") {
			return nil
		}
		stmt.Superclass = &ast.Identifier{ID: p.newID(), Token: p.curToken, Value: p.curToken.Literal}
	}

	if !p.expectPeek(lexer.LBRACE, "'{' before class body") {
		return nil
	}
	p.nextToken()

	stmt.Methods = []*ast.FunctionLiteral{}
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if !p.curTokenIs(lexer.IDENT) {
			p.curError("method name")
			return nil
		}
		method := p.parseFunction()
		if method == nil {
			return nil
		}
		stmt.Methods = append(stmt.Methods, method)
		p.nextToken()
	}

	if !p.curTokenIs(lexer.RBRACE) {
		p.curError("'}' after class body")
		return nil
	}
	return stmt
}

// ============================================================================
// Expressions
// ============================================================================

// parseExpression parses expressions using Pratt parsing
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError()
		return nil
	}

	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{ID: p.newID(), Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	lit := &ast.NumberLiteral{ID: p.newID(), Token: p.curToken}

	if v, ok := p.curToken.Value.(float64); ok {
		lit.Value = v
		return lit
	}

	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError("PARSE-0005", p.curToken.Line, p.curToken.Column,
			map[string]any{"Literal": p.curToken.Literal})
		return nil
	}
	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	lit := &ast.StringLiteral{ID: p.newID(), Token: p.curToken}

	if v, ok := p.curToken.Value.(string); ok {
		lit.Value = v
		return lit
	}

	raw := p.curToken.Literal
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	lit.Value = raw
	return lit
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.Boolean{ID: p.newID(), Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNil() ast.Expression {
	return &ast.NilLiteral{ID: p.newID(), Token: p.curToken}
}

func (p *Parser) parseThis() ast.Expression {
	return &ast.ThisExpression{ID: p.newID(), Token: p.curToken}
}

func (p *Parser) parseSuper() ast.Expression {
	expr := &ast.SuperExpression{ID: p.newID(), Token: p.curToken}

	if !p.expectPeek(lexer.DOT, "'.' after 'super'") {
		return nil
	}
	if !p.expectPeek(lexer.IDENT, "superclass method name") {
		return nil
	}
	expr.Method = p.curToken
	return expr
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		ID:       p.newID(),
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		ID:       p.newID(),
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Literal,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseLogicalExpression(left ast.Expression) ast.Expression {
	expression := &ast.LogicalExpression{
		ID:       p.newID(),
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Literal,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

// parseAssignExpression handles '='. It is right-associative, so the value
// is parsed at the lowest precedence. An invalid target is reported without
// abandoning the statement.
func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	assignToken := p.curToken

	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}

	switch target := left.(type) {
	case *ast.Identifier:
		return &ast.AssignExpression{ID: p.newID(), Token: target.Token, Name: target.Value, Value: value}
	case *ast.GetExpression:
		return &ast.SetExpression{ID: p.newID(), Token: target.Token, Object: target.Object, Name: target.Name, Value: value}
	}

	p.addError("PARSE-0003", assignToken.Line, assignToken.Column, nil)
	return left
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	group := &ast.GroupedExpression{ID: p.newID(), Token: p.curToken}

	p.nextToken()
	group.Expression = p.parseExpression(LOWEST)
	if group.Expression == nil {
		return nil
	}

	if !p.expectPeek(lexer.RPAREN, "')' after expression") {
		return nil
	}
	return group
}

// parseFunctionLiteral parses an anonymous 'fun (params) { body }'.
func (p *Parser) parseFunctionLiteral() ast.Expression {
	fn := &ast.FunctionLiteral{ID: p.newID(), Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN, "'(' after 'fun'") {
		return nil
	}
	params, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	fn.Parameters = params

	if !p.expectPeek(lexer.LBRACE, "'{' before function body") {
		return nil
	}
	fn.Body = p.parseBlockStatement()
	if fn.Body == nil {
		return nil
	}
	return fn
}

func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	exp := &ast.CallExpression{ID: p.newID(), Token: p.curToken, Function: fn}

	args, ok := p.parseCallArguments()
	if !ok {
		return nil
	}
	exp.Arguments = args
	return exp
}

// parseCallArguments parses an argument list with curToken on '('.
func (p *Parser) parseCallArguments() ([]ast.Expression, bool) {
	args := []ast.Expression{}

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return args, true
	}

	p.nextToken()
	for {
		if len(args) == MaxArgs {
			p.addError("PARSE-0004", p.curToken.Line, p.curToken.Column,
				map[string]any{"Limit": MaxArgs, "What": "arguments"})
		}
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken() // consume comma
		p.nextToken() // move to next argument
	}

	if !p.expectPeek(lexer.RPAREN, "')' after arguments") {
		return nil, false
	}
	return args, true
}

// parseDotExpression parses property access 'obj.name'.
func (p *Parser) parseDotExpression(left ast.Expression) ast.Expression {
	if !p.expectPeek(lexer.IDENT, "property name after '.'") {
		return nil
	}
	return &ast.GetExpression{ID: p.newID(), Token: p.curToken, Object: left, Name: p.curToken.Literal}
}

// Helper functions
func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t lexer.TokenType, expected string) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(expected)
	return false
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

// peekError reports that peekToken is not what the grammar expected.
func (p *Parser) peekError(expected string) {
	p.addError("PARSE-0001", p.peekToken.Line, p.peekToken.Column,
		map[string]any{"Expected": expected, "Got": displayToken(p.peekToken)})
}

// curError reports that curToken is not what the grammar expected.
func (p *Parser) curError(expected string) {
	p.addError("PARSE-0001", p.curToken.Line, p.curToken.Column,
		map[string]any{"Expected": expected, "Got": displayToken(p.curToken)})
}

func (p *Parser) noPrefixParseFnError() {
	p.addError("PARSE-0002", p.curToken.Line, p.curToken.Column,
		map[string]any{"Token": displayToken(p.curToken)})
}

func displayToken(tok lexer.Token) string {
	if tok.Type == lexer.EOF {
		return "end of input"
	}
	return tok.Literal
}
