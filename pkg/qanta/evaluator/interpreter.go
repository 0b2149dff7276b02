package evaluator

import (
	"math"

	"github.com/sambeau/qanta/pkg/qanta/ast"
	qerrors "github.com/sambeau/qanta/pkg/qanta/errors"
	"github.com/sambeau/qanta/pkg/qanta/lexer"
	"github.com/sambeau/qanta/pkg/qanta/resolver"
)

// DefaultMaxCallDepth is the call depth at which a program fails with a
// stack overflow unless the interpreter is configured otherwise.
const DefaultMaxCallDepth = 1000

// signal tells a statement's caller how control leaves it.
type signal int

const (
	signalNormal signal = iota
	signalReturn
	signalBreak
	signalContinue
)

// completion is the outcome of executing a statement. value is set only
// for signalReturn.
type completion struct {
	signal signal
	value  Object
}

var normal = completion{signal: signalNormal}

// ScopeTrace observes variable reads, assignments and super lookups. resolved is the distance recorded by
// the resolver, or -1 for a reference left to global lookup; hops is the
// number of outer links a full chain walk follows to find the binding, or
// -1 if nothing binds the name.
type ScopeTrace func(name string, tok lexer.Token, resolved, hops int)

// Interpreter executes statements against an environment chain rooted at
// a global environment. It is not safe for concurrent use; run separate
// programs with separate interpreters.
type Interpreter struct {
	globals *Environment
	env     *Environment
	locals  resolver.Locals
	depth   int

	// MaxCallDepth bounds nested calls. Zero means DefaultMaxCallDepth.
	MaxCallDepth int

	// ScopeTrace, when set, is called on every variable read.
	ScopeTrace ScopeTrace
}

// NewGlobals creates a global environment holding natives.
func NewGlobals(natives []*Native) *Environment {
	env := NewEnvironment()
	for _, native := range natives {
		env.Define(native.Name, native)
	}
	return env
}

// New creates an interpreter over globals using the resolution map locals.
func New(globals *Environment, locals resolver.Locals) *Interpreter {
	if globals == nil {
		globals = NewEnvironment()
	}
	return &Interpreter{
		globals: globals,
		env:     globals,
		locals:  locals,
	}
}

// Interpret runs stmts with a fresh interpreter and default settings.
func Interpret(stmts []ast.Statement, locals resolver.Locals, globals *Environment) error {
	return New(globals, locals).Interpret(stmts)
}

// Interpret executes stmts in order and stops at the first runtime error.
func (in *Interpreter) Interpret(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if _, err := in.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Execute adds locals to the resolution map and runs stmts in the global
// environment. Successive calls share state, so node IDs must not repeat
// across them.
func (in *Interpreter) Execute(stmts []ast.Statement, locals resolver.Locals) error {
	if in.locals == nil {
		in.locals = make(resolver.Locals, len(locals))
	}
	for id, distance := range locals {
		in.locals[id] = distance
	}
	return in.Interpret(stmts)
}

// Globals returns the global environment.
func (in *Interpreter) Globals() *Environment {
	return in.globals
}

func (in *Interpreter) maxCallDepth() int {
	if in.MaxCallDepth > 0 {
		return in.MaxCallDepth
	}
	return DefaultMaxCallDepth
}

// ============================================================================
// Statements
// ============================================================================

func (in *Interpreter) execute(stmt ast.Statement) (completion, error) {
	switch node := stmt.(type) {
	case *ast.ExpressionStatement:
		_, err := in.evaluate(node.Expression)
		return normal, err

	case *ast.VarStatement:
		var value Object = NIL
		if node.Value != nil {
			v, err := in.evaluate(node.Value)
			if err != nil {
				return normal, err
			}
			value = v
		}
		in.env.Define(node.Name.Value, value)
		return normal, nil

	case *ast.BlockStatement:
		return in.executeBlock(node.Statements, NewEnclosedEnvironment(in.env))

	case *ast.IfStatement:
		cond, err := in.evaluate(node.Condition)
		if err != nil {
			return normal, err
		}
		if IsTruthy(cond) {
			return in.execute(node.Consequence)
		}
		if node.Alternative != nil {
			return in.execute(node.Alternative)
		}
		return normal, nil

	case *ast.WhileStatement:
		return in.executeWhile(node)

	case *ast.FunctionStatement:
		fn := &Function{Declaration: node.Function, Closure: in.env}
		in.env.Define(node.Name.Value, fn)
		return normal, nil

	case *ast.ReturnStatement:
		var value Object = NIL
		if node.ReturnValue != nil {
			v, err := in.evaluate(node.ReturnValue)
			if err != nil {
				return normal, err
			}
			value = v
		}
		return completion{signal: signalReturn, value: value}, nil

	case *ast.BreakStatement:
		return completion{signal: signalBreak}, nil

	case *ast.ContinueStatement:
		return completion{signal: signalContinue}, nil

	case *ast.ClassStatement:
		return normal, in.executeClass(node)
	}

	return normal, nil
}

// executeBlock runs stmts in env and restores the current environment
// afterwards. Any signal other than normal stops the block and is passed up.
func (in *Interpreter) executeBlock(stmts []ast.Statement, env *Environment) (completion, error) {
	previous := in.env
	in.env = env
	defer func() { in.env = previous }()

	for _, stmt := range stmts {
		c, err := in.execute(stmt)
		if err != nil {
			return normal, err
		}
		if c.signal != signalNormal {
			return c, nil
		}
	}
	return normal, nil
}

func (in *Interpreter) executeWhile(node *ast.WhileStatement) (completion, error) {
	for {
		cond, err := in.evaluate(node.Condition)
		if err != nil {
			return normal, err
		}
		if !IsTruthy(cond) {
			return normal, nil
		}

		c, err := in.execute(node.Body)
		if err != nil {
			return normal, err
		}
		switch c.signal {
		case signalBreak:
			return normal, nil
		case signalReturn:
			return c, nil
		}

		if node.Increment != nil {
			if _, err := in.evaluate(node.Increment); err != nil {
				return normal, err
			}
		}
	}
}

func (in *Interpreter) executeClass(node *ast.ClassStatement) error {
	var superclass *Class
	if node.Superclass != nil {
		value, err := in.evaluate(node.Superclass)
		if err != nil {
			return err
		}
		class, ok := value.(*Class)
		if !ok {
			return newRuntimeError("TYPE-0006", node.Superclass.Token, map[string]any{"Got": typeName(value)})
		}
		superclass = class
	}

	in.env.Define(node.Name.Value, NIL)

	methodEnv := in.env
	if superclass != nil {
		methodEnv = NewEnclosedEnvironment(in.env)
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*Function, len(node.Methods))
	for _, method := range node.Methods {
		methods[method.Name] = &Function{
			Declaration:   method,
			Closure:       methodEnv,
			IsInitializer: method.Name == "init",
		}
	}

	in.env.Define(node.Name.Value, &Class{
		Name:       node.Name.Value,
		Superclass: superclass,
		Methods:    methods,
	})
	return nil
}

// ============================================================================
// Expressions
// ============================================================================

func (in *Interpreter) evaluate(expr ast.Expression) (Object, error) {
	switch node := expr.(type) {
	case *ast.NumberLiteral:
		return &Number{Value: node.Value}, nil

	case *ast.StringLiteral:
		return &String{Value: node.Value}, nil

	case *ast.Boolean:
		return nativeBoolToBooleanObject(node.Value), nil

	case *ast.NilLiteral:
		return NIL, nil

	case *ast.GroupedExpression:
		return in.evaluate(node.Expression)

	case *ast.Identifier:
		return in.lookUpVariable(node.Value, node.ID, node.Token)

	case *ast.ThisExpression:
		return in.lookUpVariable("this", node.ID, node.Token)

	case *ast.AssignExpression:
		return in.evalAssign(node)

	case *ast.PrefixExpression:
		right, err := in.evaluate(node.Right)
		if err != nil {
			return nil, err
		}
		return evalPrefixExpression(node.Token, right)

	case *ast.InfixExpression:
		left, err := in.evaluate(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := in.evaluate(node.Right)
		if err != nil {
			return nil, err
		}
		return evalInfixExpression(node.Token, left, right)

	case *ast.LogicalExpression:
		left, err := in.evaluate(node.Left)
		if err != nil {
			return nil, err
		}
		if node.Token.Type == lexer.OR {
			if IsTruthy(left) {
				return left, nil
			}
		} else if !IsTruthy(left) {
			return left, nil
		}
		return in.evaluate(node.Right)

	case *ast.CallExpression:
		return in.evalCall(node)

	case *ast.GetExpression:
		object, err := in.evaluate(node.Object)
		if err != nil {
			return nil, err
		}
		instance, ok := object.(*Instance)
		if !ok {
			return nil, newRuntimeError("PROP-0001", node.Token, map[string]any{"Got": typeName(object)})
		}
		value, ok := instance.Get(node.Name)
		if !ok {
			return nil, newRuntimeError("UNDEF-0002", node.Token, map[string]any{"Name": node.Name})
		}
		return value, nil

	case *ast.SetExpression:
		object, err := in.evaluate(node.Object)
		if err != nil {
			return nil, err
		}
		instance, ok := object.(*Instance)
		if !ok {
			return nil, newRuntimeError("PROP-0002", node.Token, map[string]any{"Got": typeName(object)})
		}
		value, err := in.evaluate(node.Value)
		if err != nil {
			return nil, err
		}
		instance.Set(node.Name, value)
		return value, nil

	case *ast.SuperExpression:
		return in.evalSuper(node)

	case *ast.FunctionLiteral:
		return &Function{Declaration: node, Closure: in.env}, nil
	}

	return NIL, nil
}

// lookUpVariable reads name through the resolution map. References the
// resolver left unresolved are looked up in the global environment.
func (in *Interpreter) lookUpVariable(name string, id ast.NodeID, tok lexer.Token) (Object, error) {
	distance, resolved := in.locals[id]
	in.trace(name, id, tok)

	var value Object
	var ok bool
	if resolved {
		value, ok = in.env.GetAt(distance, name)
	} else {
		value, ok = in.globals.Get(name)
	}
	if !ok {
		return nil, qerrors.NewUndefinedVariable(name, tok.Line, tok.Column, in.env.AllIdentifiers())
	}
	return value, nil
}

// trace reports a variable access to ScopeTrace, with -1 as the distance
// of references left for the global environment.
func (in *Interpreter) trace(name string, id ast.NodeID, tok lexer.Token) {
	if in.ScopeTrace == nil {
		return
	}
	recorded := -1
	if distance, resolved := in.locals[id]; resolved {
		recorded = distance
	}
	in.ScopeTrace(name, tok, recorded, in.env.Hops(name))
}

func (in *Interpreter) evalAssign(node *ast.AssignExpression) (Object, error) {
	value, err := in.evaluate(node.Value)
	if err != nil {
		return nil, err
	}
	in.trace(node.Name, node.ID, node.Token)

	var ok bool
	if distance, resolved := in.locals[node.ID]; resolved {
		ok = in.env.AssignAt(distance, node.Name, value)
	} else {
		ok = in.globals.Assign(node.Name, value)
	}
	if !ok {
		return nil, qerrors.NewUndefinedVariable(node.Name, node.Token.Line, node.Token.Column, in.env.AllIdentifiers())
	}
	return value, nil
}

func (in *Interpreter) evalSuper(node *ast.SuperExpression) (Object, error) {
	distance := in.locals[node.ID]
	in.trace("super", node.ID, node.Token)

	value, _ := in.env.GetAt(distance, "super")
	superclass, ok := value.(*Class)
	if !ok {
		return nil, newRuntimeError("UNDEF-0001", node.Token, map[string]any{"Name": "super"})
	}

	// 'this' lives in the environment just inside the one holding 'super'.
	this, _ := in.env.GetAt(distance-1, "this")
	instance, ok := this.(*Instance)
	if !ok {
		return nil, newRuntimeError("UNDEF-0001", node.Token, map[string]any{"Name": "this"})
	}

	method := superclass.FindMethod(node.Method.Literal)
	if method == nil {
		return nil, newRuntimeError("UNDEF-0003", node.Method, map[string]any{"Name": node.Method.Literal})
	}
	return method.Bind(instance), nil
}

func (in *Interpreter) evalCall(node *ast.CallExpression) (Object, error) {
	callee, err := in.evaluate(node.Function)
	if err != nil {
		return nil, err
	}

	args := make([]Object, 0, len(node.Arguments))
	for _, argExpr := range node.Arguments {
		arg, err := in.evaluate(argExpr)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	return in.call(callee, args, node.Token)
}

// call checks arity and call depth, then dispatches on the callee's kind.
func (in *Interpreter) call(callee Object, args []Object, tok lexer.Token) (Object, error) {
	fn, ok := callee.(Callable)
	if !ok {
		return nil, newRuntimeError("TYPE-0005", tok, map[string]any{"Got": typeName(callee)})
	}
	if len(args) != fn.Arity() {
		return nil, newArityError(tok, callableName(fn), fn.Arity(), len(args))
	}

	if in.depth >= in.maxCallDepth() {
		return nil, newRuntimeError("STATE-0001", tok, map[string]any{"Limit": in.maxCallDepth()})
	}
	in.depth++
	defer func() { in.depth-- }()

	switch fn := fn.(type) {
	case *Native:
		result, err := fn.Fn(args)
		if err != nil {
			return nil, positionNativeError(err, tok)
		}
		if result == nil {
			return NIL, nil
		}
		return result, nil

	case *Function:
		return in.applyFunction(fn, args)

	case *Class:
		instance := NewInstance(fn)
		if init := fn.FindMethod("init"); init != nil {
			if _, err := in.applyFunction(init.Bind(instance), args); err != nil {
				return nil, err
			}
		}
		return instance, nil
	}

	return NIL, nil
}

// applyFunction binds args in a new environment enclosed by the closure
// and runs the body there. Falling off the end yields nil; initializers
// always yield their instance.
func (in *Interpreter) applyFunction(fn *Function, args []Object) (Object, error) {
	env := extendFunctionEnv(fn, args)

	c, err := in.executeBlock(fn.Declaration.Body.Statements, env)
	if err != nil {
		return nil, err
	}

	if fn.IsInitializer {
		this, _ := fn.Closure.GetAt(0, "this")
		return this, nil
	}
	if c.signal == signalReturn {
		return c.value, nil
	}
	return NIL, nil
}

func extendFunctionEnv(fn *Function, args []Object) *Environment {
	env := NewEnclosedEnvironment(fn.Closure)
	for i, param := range fn.Declaration.Parameters {
		env.Define(param.Value, args[i])
	}
	return env
}

// ============================================================================
// Operators
// ============================================================================

func evalPrefixExpression(tok lexer.Token, right Object) (Object, error) {
	switch tok.Type {
	case lexer.BANG:
		return nativeBoolToBooleanObject(!IsTruthy(right)), nil
	case lexer.MINUS:
		n, ok := right.(*Number)
		if !ok {
			return nil, newOperandError(tok, right)
		}
		return &Number{Value: -n.Value}, nil
	}
	return nil, newOperandError(tok, right)
}

func evalInfixExpression(tok lexer.Token, left, right Object) (Object, error) {
	switch tok.Type {
	case lexer.EQ:
		return nativeBoolToBooleanObject(ValuesEqual(left, right)), nil
	case lexer.NOT_EQ:
		return nativeBoolToBooleanObject(!ValuesEqual(left, right)), nil
	case lexer.PLUS:
		return evalPlus(tok, left, right)
	case lexer.LT, lexer.GT, lexer.LTE, lexer.GTE:
		return evalComparison(tok, left, right)
	}

	l, lok := left.(*Number)
	r, rok := right.(*Number)
	if !lok || !rok {
		return nil, newOperandsError("TYPE-0002", tok, left, right)
	}

	switch tok.Type {
	case lexer.MINUS:
		return &Number{Value: l.Value - r.Value}, nil
	case lexer.ASTERISK:
		return &Number{Value: l.Value * r.Value}, nil
	case lexer.SLASH:
		if r.Value == 0 {
			return nil, newDivisionByZeroError(tok, left, right)
		}
		return &Number{Value: l.Value / r.Value}, nil
	case lexer.PERCENT:
		if r.Value == 0 {
			return nil, newDivisionByZeroError(tok, left, right)
		}
		return &Number{Value: math.Mod(l.Value, r.Value)}, nil
	}
	return nil, newOperandsError("TYPE-0002", tok, left, right)
}

// evalPlus adds numbers, or concatenates when either side is a string.
func evalPlus(tok lexer.Token, left, right Object) (Object, error) {
	_, lstr := left.(*String)
	_, rstr := right.(*String)
	if lstr || rstr {
		return &String{Value: left.Inspect() + right.Inspect()}, nil
	}

	l, lok := left.(*Number)
	r, rok := right.(*Number)
	if !lok || !rok {
		return nil, newOperandsError("TYPE-0003", tok, left, right)
	}
	return &Number{Value: l.Value + r.Value}, nil
}

// evalComparison orders two numbers or two strings.
func evalComparison(tok lexer.Token, left, right Object) (Object, error) {
	var cmp int
	switch l := left.(type) {
	case *Number:
		r, ok := right.(*Number)
		if !ok {
			return nil, newOperandsError("TYPE-0004", tok, left, right)
		}
		cmp = compareFloats(l.Value, r.Value)
	case *String:
		r, ok := right.(*String)
		if !ok {
			return nil, newOperandsError("TYPE-0004", tok, left, right)
		}
		cmp = compareStrings(l.Value, r.Value)
	default:
		return nil, newOperandsError("TYPE-0004", tok, left, right)
	}

	switch tok.Type {
	case lexer.LT:
		return nativeBoolToBooleanObject(cmp < 0), nil
	case lexer.GT:
		return nativeBoolToBooleanObject(cmp > 0), nil
	case lexer.LTE:
		return nativeBoolToBooleanObject(cmp <= 0), nil
	default:
		return nativeBoolToBooleanObject(cmp >= 0), nil
	}
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
