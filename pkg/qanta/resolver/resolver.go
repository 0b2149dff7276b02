// Package resolver performs static scope resolution over a parsed program.
//
// For every variable reference inside a local scope the resolver records how
// many environments the interpreter must walk outward to find the binding.
// References it cannot place locally are left out of the map and looked up
// in the global environment at runtime.
package resolver

import (
	"github.com/sambeau/qanta/pkg/qanta/ast"
	qerrors "github.com/sambeau/qanta/pkg/qanta/errors"
	"github.com/sambeau/qanta/pkg/qanta/lexer"
)

// Locals maps a variable-reference node to its scope distance.
type Locals map[ast.NodeID]int

type functionType int

const (
	functionNone functionType = iota
	functionFunction
	functionMethod
	functionInitializer
)

type classType int

const (
	classNone classType = iota
	classClass
	classSubclass
)

// Resolver walks the AST once. A Resolver is single-use.
type Resolver struct {
	scopes          []map[string]bool // name -> initialised
	locals          Locals
	currentFunction functionType
	currentClass    classType
	loopDepth       int
}

// New creates a resolver.
func New() *Resolver {
	return &Resolver{locals: Locals{}}
}

// Resolve resolves stmts and returns the resolution map. Resolution stops
// at the first error.
func Resolve(stmts []ast.Statement) (Locals, error) {
	return New().Resolve(stmts)
}

// Resolve resolves stmts and returns the resolution map.
func (r *Resolver) Resolve(stmts []ast.Statement) (Locals, error) {
	if err := r.resolveStatements(stmts); err != nil {
		return nil, err
	}
	return r.locals, nil
}

func (r *Resolver) resolveStatements(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := r.resolveStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolveStatement(stmt ast.Statement) error {
	switch node := stmt.(type) {
	case *ast.ExpressionStatement:
		return r.resolveExpression(node.Expression)

	case *ast.VarStatement:
		if err := r.declare(node.Name.Token); err != nil {
			return err
		}
		if node.Value != nil {
			if err := r.resolveExpression(node.Value); err != nil {
				return err
			}
		}
		r.define(node.Name.Value)
		return nil

	case *ast.BlockStatement:
		r.beginScope()
		defer r.endScope()
		return r.resolveStatements(node.Statements)

	case *ast.IfStatement:
		if err := r.resolveExpression(node.Condition); err != nil {
			return err
		}
		if err := r.resolveStatement(node.Consequence); err != nil {
			return err
		}
		if node.Alternative != nil {
			return r.resolveStatement(node.Alternative)
		}
		return nil

	case *ast.WhileStatement:
		if err := r.resolveExpression(node.Condition); err != nil {
			return err
		}
		r.loopDepth++
		err := r.resolveStatement(node.Body)
		r.loopDepth--
		if err != nil {
			return err
		}
		if node.Increment != nil {
			return r.resolveExpression(node.Increment)
		}
		return nil

	case *ast.FunctionStatement:
		if err := r.declare(node.Name.Token); err != nil {
			return err
		}
		r.define(node.Name.Value)
		return r.resolveFunction(node.Function, functionFunction)

	case *ast.ReturnStatement:
		if r.currentFunction == functionNone {
			return at("RESOLVE-0003", node.Token, nil)
		}
		if node.ReturnValue != nil {
			if r.currentFunction == functionInitializer {
				return at("RESOLVE-0004", node.Token, nil)
			}
			return r.resolveExpression(node.ReturnValue)
		}
		return nil

	case *ast.BreakStatement:
		if r.loopDepth == 0 {
			return at("RESOLVE-0009", node.Token, map[string]any{"Keyword": "break"})
		}
		return nil

	case *ast.ContinueStatement:
		if r.loopDepth == 0 {
			return at("RESOLVE-0009", node.Token, map[string]any{"Keyword": "continue"})
		}
		return nil

	case *ast.ClassStatement:
		return r.resolveClass(node)
	}

	return nil
}

func (r *Resolver) resolveClass(node *ast.ClassStatement) error {
	enclosingClass := r.currentClass
	r.currentClass = classClass
	defer func() { r.currentClass = enclosingClass }()

	if err := r.declare(node.Name.Token); err != nil {
		return err
	}
	r.define(node.Name.Value)

	if node.Superclass != nil {
		if node.Superclass.Value == node.Name.Value {
			return at("RESOLVE-0008", node.Superclass.Token, map[string]any{"Name": node.Name.Value})
		}
		r.currentClass = classSubclass
		if err := r.resolveExpression(node.Superclass); err != nil {
			return err
		}

		r.beginScope()
		defer r.endScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	defer r.endScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, method := range node.Methods {
		kind := functionMethod
		if method.Name == "init" {
			kind = functionInitializer
		}
		if err := r.resolveFunction(method, kind); err != nil {
			return err
		}
	}
	return nil
}

// resolveFunction opens one scope holding the parameters and resolves the
// body directly inside it, matching the single environment a call creates.
func (r *Resolver) resolveFunction(fn *ast.FunctionLiteral, kind functionType) error {
	enclosingFunction := r.currentFunction
	enclosingLoops := r.loopDepth
	r.currentFunction = kind
	r.loopDepth = 0
	defer func() {
		r.currentFunction = enclosingFunction
		r.loopDepth = enclosingLoops
	}()

	r.beginScope()
	defer r.endScope()

	for _, param := range fn.Parameters {
		if err := r.declare(param.Token); err != nil {
			return err
		}
		r.define(param.Value)
	}
	return r.resolveStatements(fn.Body.Statements)
}

func (r *Resolver) resolveExpression(expr ast.Expression) error {
	switch node := expr.(type) {
	case *ast.Identifier:
		if len(r.scopes) > 0 {
			if initialised, ok := r.scopes[len(r.scopes)-1][node.Value]; ok && !initialised {
				return at("RESOLVE-0001", node.Token, map[string]any{"Name": node.Value})
			}
		}
		r.resolveLocal(node.ID, node.Value)
		return nil

	case *ast.AssignExpression:
		if err := r.resolveExpression(node.Value); err != nil {
			return err
		}
		r.resolveLocal(node.ID, node.Name)
		return nil

	case *ast.InfixExpression:
		if err := r.resolveExpression(node.Left); err != nil {
			return err
		}
		return r.resolveExpression(node.Right)

	case *ast.LogicalExpression:
		if err := r.resolveExpression(node.Left); err != nil {
			return err
		}
		return r.resolveExpression(node.Right)

	case *ast.PrefixExpression:
		return r.resolveExpression(node.Right)

	case *ast.GroupedExpression:
		return r.resolveExpression(node.Expression)

	case *ast.CallExpression:
		if err := r.resolveExpression(node.Function); err != nil {
			return err
		}
		for _, arg := range node.Arguments {
			if err := r.resolveExpression(arg); err != nil {
				return err
			}
		}
		return nil

	case *ast.GetExpression:
		return r.resolveExpression(node.Object)

	case *ast.SetExpression:
		if err := r.resolveExpression(node.Value); err != nil {
			return err
		}
		return r.resolveExpression(node.Object)

	case *ast.ThisExpression:
		if r.currentClass == classNone {
			return at("RESOLVE-0005", node.Token, nil)
		}
		r.resolveLocal(node.ID, "this")
		return nil

	case *ast.SuperExpression:
		switch r.currentClass {
		case classNone:
			return at("RESOLVE-0006", node.Token, nil)
		case classClass:
			return at("RESOLVE-0007", node.Token, nil)
		}
		r.resolveLocal(node.ID, "super")
		return nil

	case *ast.FunctionLiteral:
		return r.resolveFunction(node, functionFunction)
	}

	// Literals reference nothing.
	return nil
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, map[string]bool{})
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare adds name to the innermost scope as not yet initialised. Globals
// are not tracked and may be redeclared.
func (r *Resolver) declare(name lexer.Token) error {
	if len(r.scopes) == 0 {
		return nil
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, exists := scope[name.Literal]; exists {
		return at("RESOLVE-0002", name, map[string]any{"Name": name.Literal})
	}
	scope[name.Literal] = false
	return nil
}

func (r *Resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}

// resolveLocal records the distance from the innermost scope to the scope
// declaring name. Names not found locally are left for global lookup.
func (r *Resolver) resolveLocal(id ast.NodeID, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.locals[id] = len(r.scopes) - 1 - i
			return
		}
	}
}

func at(code string, tok lexer.Token, data map[string]any) error {
	return qerrors.NewWithPosition(code, tok.Line, tok.Column, data)
}
