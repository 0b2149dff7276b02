// eval_errors.go - Error creation helpers for the Qanta evaluator
//
// Runtime errors are *qerrors.QantaError values carrying the line and column
// of the token that triggered them.

package evaluator

import (
	"errors"

	qerrors "github.com/sambeau/qanta/pkg/qanta/errors"
	"github.com/sambeau/qanta/pkg/qanta/lexer"
)

// newRuntimeError creates a structured error from the catalog positioned at tok.
func newRuntimeError(code string, tok lexer.Token, data map[string]any) *qerrors.QantaError {
	return qerrors.NewWithPosition(code, tok.Line, tok.Column, data)
}

// newOperandError reports a unary operator applied to the wrong type.
func newOperandError(tok lexer.Token, operand Object) *qerrors.QantaError {
	return newRuntimeError("TYPE-0001", tok, map[string]any{
		"Operator": tok.Literal,
		"Got":      typeName(operand),
	})
}

// newOperandsError reports a binary operator applied to the wrong types.
func newOperandsError(code string, tok lexer.Token, left, right Object) *qerrors.QantaError {
	return newRuntimeError(code, tok, map[string]any{
		"Operator": tok.Literal,
		"Left":     typeName(left),
		"Right":    typeName(right),
	})
}

// newDivisionByZeroError names both operands of the failed operation.
func newDivisionByZeroError(tok lexer.Token, left, right Object) *qerrors.QantaError {
	return newRuntimeError("OP-0001", tok, map[string]any{
		"Left":     left.Inspect(),
		"Operator": tok.Literal,
		"Right":    right.Inspect(),
	})
}

// newArityError reports a call with the wrong number of arguments.
func newArityError(tok lexer.Token, name string, expected, got int) *qerrors.QantaError {
	return newRuntimeError("ARITY-0001", tok, map[string]any{
		"Name":     name,
		"Expected": expected,
		"Got":      got,
	})
}

// positionNativeError gives an error returned by a native the position of
// the call that produced it.
func positionNativeError(err error, tok lexer.Token) error {
	var qerr *qerrors.QantaError
	if errors.As(err, &qerr) {
		if qerr.Line == 0 {
			return qerr.WithPosition(tok.Line, tok.Column)
		}
		return qerr
	}
	out := qerrors.NewSimple(qerrors.ClassType, err.Error())
	out.Line = tok.Line
	out.Column = tok.Column
	return out
}

// typeName describes a value for error messages.
func typeName(obj Object) string {
	switch obj := obj.(type) {
	case *Instance:
		return obj.Class.Name + " instance"
	case *Class:
		return "class " + obj.Name
	}
	return string(obj.Type())
}

// callableName names a callee for arity errors.
func callableName(obj Callable) string {
	switch fn := obj.(type) {
	case *Native:
		return fn.Name
	case *Function:
		if fn.Declaration.Name != "" {
			return fn.Declaration.Name
		}
		return "function"
	case *Class:
		return fn.Name
	}
	return obj.Inspect()
}
