package ast

import (
	"bytes"
	"strings"

	"github.com/sambeau/qanta/pkg/qanta/lexer"
)

// NodeID identifies an expression node independently of its structure.
// IDs are assigned by the parser from a per-parse counter and are unique
// within one parse.
type NodeID int

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement represents statement nodes
type Statement interface {
	Node
	statementNode()
}

// Expression represents expression nodes
type Expression interface {
	Node
	expressionNode()
	NodeID() NodeID
}

// Program represents the root node of every AST
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer

	for _, s := range p.Statements {
		out.WriteString(s.String())
	}

	return out.String()
}

// ============================================================================
// Statements
// ============================================================================

// ExpressionStatement is an expression evaluated for its side effects.
type ExpressionStatement struct {
	Token      lexer.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String() + ";"
	}
	return ";"
}

// VarStatement declares a variable: 'var x = 5;' or 'var x;'.
type VarStatement struct {
	Token lexer.Token // the lexer.VAR token
	Name  *Identifier
	Value Expression // nil when there is no initializer
}

func (vs *VarStatement) statementNode()       {}
func (vs *VarStatement) TokenLiteral() string { return vs.Token.Literal }
func (vs *VarStatement) String() string {
	var out bytes.Buffer

	out.WriteString("var ")
	out.WriteString(vs.Name.String())
	if vs.Value != nil {
		out.WriteString(" = ")
		out.WriteString(vs.Value.String())
	}
	out.WriteString(";")
	return out.String()
}

// BlockStatement is a braced list of statements with its own scope.
type BlockStatement struct {
	Token      lexer.Token // the { token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer

	out.WriteString("{ ")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

// IfStatement represents 'if (cond) then else alt'.
type IfStatement struct {
	Token       lexer.Token // the 'if' token
	Condition   Expression
	Consequence Statement
	Alternative Statement // nil without an else branch
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string {
	var out bytes.Buffer

	out.WriteString("if (")
	out.WriteString(is.Condition.String())
	out.WriteString(") ")
	out.WriteString(is.Consequence.String())
	if is.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(is.Alternative.String())
	}
	return out.String()
}

// WhileStatement represents a while loop. For loops are desugared into a
// WhileStatement whose Increment runs after every iteration, including
// iterations cut short by continue.
type WhileStatement struct {
	Token     lexer.Token // the 'while' or 'for' token
	Condition Expression
	Body      Statement
	Increment Expression // nil for plain while loops
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) String() string {
	var out bytes.Buffer

	out.WriteString("while (")
	out.WriteString(ws.Condition.String())
	if ws.Increment != nil {
		out.WriteString("; ")
		out.WriteString(ws.Increment.String())
	}
	out.WriteString(") ")
	out.WriteString(ws.Body.String())
	return out.String()
}

// FunctionStatement declares a named function: 'fun add(a, b) { ... }'.
type FunctionStatement struct {
	Token    lexer.Token // the 'fun' token
	Name     *Identifier
	Function *FunctionLiteral
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *FunctionStatement) String() string {
	return "fun " + fs.Name.String() + fs.Function.signature()
}

// ReturnStatement represents 'return;' or 'return value;'.
type ReturnStatement struct {
	Token       lexer.Token // the 'return' token
	ReturnValue Expression  // nil for a bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue != nil {
		return "return " + rs.ReturnValue.String() + ";"
	}
	return "return;"
}

// BreakStatement exits the innermost loop.
type BreakStatement struct {
	Token lexer.Token
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) String() string       { return "break;" }

// ContinueStatement skips to the next iteration of the innermost loop.
type ContinueStatement struct {
	Token lexer.Token
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStatement) String() string       { return "continue;" }

// ClassStatement declares a class with an optional superclass.
type ClassStatement struct {
	Token      lexer.Token // the 'class' token
	Name       *Identifier
	Superclass *Identifier // nil when the class has no superclass
	Methods    []*FunctionLiteral
}

func (cs *ClassStatement) statementNode()       {}
func (cs *ClassStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ClassStatement) String() string {
	var out bytes.Buffer

	out.WriteString("class ")
	out.WriteString(cs.Name.String())
	if cs.Superclass != nil {
		out.WriteString(" < ")
		out.WriteString(cs.Superclass.String())
	}
	out.WriteString(" { ")
	for _, m := range cs.Methods {
		out.WriteString(m.Name)
		out.WriteString(m.signature())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

// ============================================================================
// Expressions
// ============================================================================

// Identifier is a variable reference.
type Identifier struct {
	ID    NodeID
	Token lexer.Token // the lexer.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) NodeID() NodeID       { return i.ID }
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// NumberLiteral holds a numeric constant.
type NumberLiteral struct {
	ID    NodeID
	Token lexer.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) NodeID() NodeID       { return nl.ID }
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) String() string       { return nl.Token.Literal }

// StringLiteral holds a string constant; Value has escapes decoded.
type StringLiteral struct {
	ID    NodeID
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) NodeID() NodeID       { return sl.ID }
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return sl.Token.Literal }

// Boolean is 'true' or 'false'.
type Boolean struct {
	ID    NodeID
	Token lexer.Token
	Value bool
}

func (b *Boolean) expressionNode()      {}
func (b *Boolean) NodeID() NodeID       { return b.ID }
func (b *Boolean) TokenLiteral() string { return b.Token.Literal }
func (b *Boolean) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// NilLiteral is 'nil'.
type NilLiteral struct {
	ID    NodeID
	Token lexer.Token
}

func (n *NilLiteral) expressionNode()      {}
func (n *NilLiteral) NodeID() NodeID       { return n.ID }
func (n *NilLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NilLiteral) String() string       { return "nil" }

// AssignExpression assigns to an existing variable: 'x = value'.
type AssignExpression struct {
	ID    NodeID
	Token lexer.Token // the identifier token
	Name  string
	Value Expression
}

func (ae *AssignExpression) expressionNode()      {}
func (ae *AssignExpression) NodeID() NodeID       { return ae.ID }
func (ae *AssignExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignExpression) String() string {
	return "(" + ae.Name + " = " + ae.Value.String() + ")"
}

// PrefixExpression is a unary operator applied to an operand: '-x', '!x'.
type PrefixExpression struct {
	ID       NodeID
	Token    lexer.Token // the prefix token, e.g. !
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) NodeID() NodeID       { return pe.ID }
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

// InfixExpression is a binary arithmetic, comparison or equality operator.
type InfixExpression struct {
	ID       NodeID
	Token    lexer.Token // the operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) NodeID() NodeID       { return ie.ID }
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// LogicalExpression is 'and' or 'or'; the right side is evaluated only
// when needed.
type LogicalExpression struct {
	ID       NodeID
	Token    lexer.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (le *LogicalExpression) expressionNode()      {}
func (le *LogicalExpression) NodeID() NodeID       { return le.ID }
func (le *LogicalExpression) TokenLiteral() string { return le.Token.Literal }
func (le *LogicalExpression) String() string {
	return "(" + le.Left.String() + " " + le.Operator + " " + le.Right.String() + ")"
}

// GroupedExpression is a parenthesised expression.
type GroupedExpression struct {
	ID         NodeID
	Token      lexer.Token // the ( token
	Expression Expression
}

func (ge *GroupedExpression) expressionNode()      {}
func (ge *GroupedExpression) NodeID() NodeID       { return ge.ID }
func (ge *GroupedExpression) TokenLiteral() string { return ge.Token.Literal }
func (ge *GroupedExpression) String() string       { return ge.Expression.String() }

// CallExpression calls a function, class or native.
type CallExpression struct {
	ID        NodeID
	Token     lexer.Token // the ( token
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) NodeID() NodeID       { return ce.ID }
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	args := make([]string, len(ce.Arguments))
	for i, a := range ce.Arguments {
		args[i] = a.String()
	}
	return ce.Function.String() + "(" + strings.Join(args, ", ") + ")"
}

// GetExpression reads a property: 'obj.name'.
type GetExpression struct {
	ID     NodeID
	Token  lexer.Token // the property name token
	Object Expression
	Name   string
}

func (ge *GetExpression) expressionNode()      {}
func (ge *GetExpression) NodeID() NodeID       { return ge.ID }
func (ge *GetExpression) TokenLiteral() string { return ge.Token.Literal }
func (ge *GetExpression) String() string       { return ge.Object.String() + "." + ge.Name }

// SetExpression writes a field: 'obj.name = value'.
type SetExpression struct {
	ID     NodeID
	Token  lexer.Token // the property name token
	Object Expression
	Name   string
	Value  Expression
}

func (se *SetExpression) expressionNode()      {}
func (se *SetExpression) NodeID() NodeID       { return se.ID }
func (se *SetExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SetExpression) String() string {
	return "(" + se.Object.String() + "." + se.Name + " = " + se.Value.String() + ")"
}

// ThisExpression is the 'this' keyword inside a method.
type ThisExpression struct {
	ID    NodeID
	Token lexer.Token
}

func (te *ThisExpression) expressionNode()      {}
func (te *ThisExpression) NodeID() NodeID       { return te.ID }
func (te *ThisExpression) TokenLiteral() string { return te.Token.Literal }
func (te *ThisExpression) String() string       { return "this" }

// SuperExpression looks up a method on the superclass: 'super.name'.
type SuperExpression struct {
	ID     NodeID
	Token  lexer.Token // the 'super' token
	Method lexer.Token
}

func (se *SuperExpression) expressionNode()      {}
func (se *SuperExpression) NodeID() NodeID       { return se.ID }
func (se *SuperExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SuperExpression) String() string       { return "super." + se.Method.Literal }

// FunctionLiteral is a function body with its parameters. Named functions
// and methods carry their name; anonymous 'fun (...) {}' expressions do not.
type FunctionLiteral struct {
	ID         NodeID
	Token      lexer.Token // the 'fun' token or the method name
	Name       string
	Parameters []*Identifier
	Body       *BlockStatement
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) NodeID() NodeID       { return fl.ID }
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) String() string       { return "fun" + fl.signature() }

func (fl *FunctionLiteral) signature() string {
	params := make([]string, len(fl.Parameters))
	for i, p := range fl.Parameters {
		params[i] = p.String()
	}
	return "(" + strings.Join(params, ", ") + ") " + fl.Body.String()
}
