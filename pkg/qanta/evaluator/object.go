package evaluator

import (
	"strconv"

	"github.com/sambeau/qanta/pkg/qanta/ast"
)

// ObjectType represents the type of objects in our language
type ObjectType string

const (
	NIL_OBJ      = "nil"
	BOOLEAN_OBJ  = "boolean"
	NUMBER_OBJ   = "number"
	STRING_OBJ   = "string"
	NATIVE_OBJ   = "native function"
	FUNCTION_OBJ = "function"
	CLASS_OBJ    = "class"
	INSTANCE_OBJ = "instance"
)

// Object represents all values in our language. The set of implementations
// is closed: only the types in this file satisfy it.
type Object interface {
	Type() ObjectType
	Inspect() string
	object()
}

// Callable is implemented by objects that can appear in call position.
type Callable interface {
	Object
	Arity() int
}

// Singletons for the values that need no allocation.
var (
	NIL   = &Nil{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

// Nil is the absence of a value.
type Nil struct{}

func (n *Nil) object()          {}
func (n *Nil) Inspect() string  { return "nil" }
func (n *Nil) Type() ObjectType { return NIL_OBJ }

// Boolean represents boolean objects
type Boolean struct {
	Value bool
}

func (b *Boolean) object()          {}
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }
func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }

// Number is a double-precision float. Integral values print without a
// decimal point.
type Number struct {
	Value float64
}

func (n *Number) object()          {}
func (n *Number) Inspect() string  { return strconv.FormatFloat(n.Value, 'f', -1, 64) }
func (n *Number) Type() ObjectType { return NUMBER_OBJ }

// String represents string objects
type String struct {
	Value string
}

func (s *String) object()          {}
func (s *String) Inspect() string  { return s.Value }
func (s *String) Type() ObjectType { return STRING_OBJ }

// NativeFn is the Go implementation behind a native callable. Errors it
// returns abort the program; a *qerrors.QantaError without a position is
// given the position of the call.
type NativeFn func(args []Object) (Object, error)

// Native is a fixed-arity function implemented in Go.
type Native struct {
	Name    string
	ArgsLen int
	Fn      NativeFn
}

func (n *Native) object()          {}
func (n *Native) Arity() int       { return n.ArgsLen }
func (n *Native) Inspect() string  { return "<native fn " + n.Name + ">" }
func (n *Native) Type() ObjectType { return NATIVE_OBJ }

// Function is a user-defined closure: its declaration plus the environment
// that was active where it was defined.
type Function struct {
	Declaration   *ast.FunctionLiteral
	Closure       *Environment
	IsInitializer bool
}

func (f *Function) object()          {}
func (f *Function) Arity() int       { return len(f.Declaration.Parameters) }
func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	if f.Declaration.Name == "" {
		return "<fn>"
	}
	return "<fn " + f.Declaration.Name + ">"
}

// Bind returns a copy of the method whose closure holds 'this'.
func (f *Function) Bind(instance *Instance) *Function {
	env := NewEnclosedEnvironment(f.Closure)
	env.Define("this", instance)
	return &Function{Declaration: f.Declaration, Closure: env, IsInitializer: f.IsInitializer}
}

// Class holds a method table and an optional superclass. Calling a class
// constructs an instance.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func (c *Class) object()          {}
func (c *Class) Inspect() string  { return c.Name }
func (c *Class) Type() ObjectType { return CLASS_OBJ }

// Arity is the arity of the class's initializer, or zero without one.
func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// FindMethod looks name up on the class and then its superclasses.
func (c *Class) FindMethod(name string) *Function {
	for class := c; class != nil; class = class.Superclass {
		if method, ok := class.Methods[name]; ok {
			return method
		}
	}
	return nil
}

// Instance is an object created by calling a class.
type Instance struct {
	Class  *Class
	Fields map[string]Object
}

// NewInstance creates an instance with no fields.
func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: make(map[string]Object)}
}

func (i *Instance) object()          {}
func (i *Instance) Inspect() string  { return i.Class.Name + " instance" }
func (i *Instance) Type() ObjectType { return INSTANCE_OBJ }

// Get reads a field, falling back to a method bound to this instance.
func (i *Instance) Get(name string) (Object, bool) {
	if value, ok := i.Fields[name]; ok {
		return value, true
	}
	if method := i.Class.FindMethod(name); method != nil {
		return method.Bind(i), true
	}
	return nil, false
}

// Set writes a field, creating it if needed.
func (i *Instance) Set(name string, value Object) {
	i.Fields[name] = value
}

// nativeBoolToBooleanObject converts a Go bool to the shared Boolean objects
func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// IsTruthy reports whether obj counts as true in a condition. Only nil and
// false are falsy.
func IsTruthy(obj Object) bool {
	switch obj := obj.(type) {
	case *Nil:
		return false
	case *Boolean:
		return obj.Value
	default:
		return true
	}
}

// ValuesEqual implements ==. Numbers, strings and booleans compare by value,
// nil equals only nil, and callables and instances compare by identity.
func ValuesEqual(a, b Object) bool {
	switch a := a.(type) {
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *Boolean:
		bv, ok := b.(*Boolean)
		return ok && a.Value == bv.Value
	case *Number:
		bv, ok := b.(*Number)
		return ok && a.Value == bv.Value
	case *String:
		bv, ok := b.(*String)
		return ok && a.Value == bv.Value
	case *Native:
		bv, ok := b.(*Native)
		return ok && a == bv
	case *Function:
		bv, ok := b.(*Function)
		return ok && a == bv
	case *Class:
		bv, ok := b.(*Class)
		return ok && a == bv
	case *Instance:
		bv, ok := b.(*Instance)
		return ok && a == bv
	}
	return false
}
