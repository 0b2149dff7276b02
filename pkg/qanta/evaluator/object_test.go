package evaluator

import (
	"testing"

	"github.com/sambeau/qanta/pkg/qanta/ast"
)

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		name string
		obj  Object
		want bool
	}{
		{"nil", NIL, false},
		{"false", FALSE, false},
		{"true", TRUE, true},
		{"zero", &Number{Value: 0}, true},
		{"empty string", &String{Value: ""}, true},
		{"instance", NewInstance(&Class{Name: "A"}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTruthy(tt.obj); got != tt.want {
				t.Errorf("IsTruthy(%s) = %v, want %v", tt.obj.Inspect(), got, tt.want)
			}
		})
	}
}

func TestValuesEqual(t *testing.T) {
	class := &Class{Name: "A", Methods: map[string]*Function{}}
	inst := NewInstance(class)
	decl := &ast.FunctionLiteral{Name: "f", Body: &ast.BlockStatement{}}
	fn := &Function{Declaration: decl}
	sameDecl := &Function{Declaration: decl}
	native := &Native{Name: "n"}

	tests := []struct {
		name string
		a, b Object
		want bool
	}{
		{"nil nil", NIL, NIL, true},
		{"nil false", NIL, FALSE, false},
		{"numbers", &Number{Value: 2}, &Number{Value: 2}, true},
		{"different numbers", &Number{Value: 2}, &Number{Value: 3}, false},
		{"strings", &String{Value: "a"}, &String{Value: "a"}, true},
		{"number and string", &Number{Value: 1}, &String{Value: "1"}, false},
		{"booleans", &Boolean{Value: true}, TRUE, true},
		{"same instance", inst, inst, true},
		{"equal-looking instances", NewInstance(class), NewInstance(class), false},
		{"same function", fn, fn, true},
		{"functions sharing a declaration", fn, sameDecl, false},
		{"same class", class, class, true},
		{"same native", native, native, true},
		{"different natives", native, &Native{Name: "n"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValuesEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("ValuesEqual = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNumberInspect(t *testing.T) {
	a, b := 0.1, 0.2

	tests := []struct {
		value float64
		want  string
	}{
		{14, "14"},
		{-3, "-3"},
		{2.5, "2.5"},
		{a + b, "0.30000000000000004"},
		{1e6, "1000000"},
	}

	for _, tt := range tests {
		if got := (&Number{Value: tt.value}).Inspect(); got != tt.want {
			t.Errorf("Inspect(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestClassFindMethod(t *testing.T) {
	greet := &Function{Declaration: &ast.FunctionLiteral{Name: "greet", Body: &ast.BlockStatement{}}}
	base := &Class{Name: "Base", Methods: map[string]*Function{"greet": greet}}
	derived := &Class{Name: "Derived", Superclass: base, Methods: map[string]*Function{}}

	if derived.FindMethod("greet") != greet {
		t.Errorf("inherited method not found")
	}
	if derived.FindMethod("missing") != nil {
		t.Errorf("found a method that does not exist")
	}
	if derived.Arity() != 0 {
		t.Errorf("Arity() without init = %d, want 0", derived.Arity())
	}
}
