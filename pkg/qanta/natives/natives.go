// Package natives provides the built-in functions installed in the global
// environment of every Qanta program.
//
// Each native has a fixed arity that the interpreter checks before the call.
// A native that receives a value of the wrong type returns a TYPE-0007
// error, which the interpreter positions at the call site.
package natives

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	qerrors "github.com/sambeau/qanta/pkg/qanta/errors"
	"github.com/sambeau/qanta/pkg/qanta/evaluator"
)

// Table is the set of natives handed to evaluator.NewGlobals.
type Table []*evaluator.Native

// Options configures the default table.
type Options struct {
	// Logger receives print output. Nil means evaluator.DefaultLogger.
	Logger evaluator.Logger

	// Locale is a BCP 47 tag (or en_GB style name) used by the case,
	// number and date natives. Empty means "en-US".
	Locale string

	// Disabled names natives to leave out of the table.
	Disabled []string

	// Now is the clock read by clock(). Nil means time.Now.
	Now func() time.Time
}

// Default returns every standard native configured by opts.
func Default(opts Options) Table {
	logger := opts.Logger
	if logger == nil {
		logger = evaluator.DefaultLogger
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	loc := newLocale(opts.Locale)

	all := Table{
		{Name: "print", ArgsLen: 1, Fn: func(args []evaluator.Object) (evaluator.Object, error) {
			logger.LogLine(args[0].Inspect())
			return evaluator.NIL, nil
		}},
		{Name: "clock", ArgsLen: 0, Fn: func([]evaluator.Object) (evaluator.Object, error) {
			return &evaluator.Number{Value: float64(now().UnixNano()) / float64(time.Second)}, nil
		}},
		{Name: "str", ArgsLen: 1, Fn: func(args []evaluator.Object) (evaluator.Object, error) {
			return &evaluator.String{Value: args[0].Inspect()}, nil
		}},
		{Name: "len", ArgsLen: 1, Fn: nativeLen},
		{Name: "num", ArgsLen: 1, Fn: nativeNum},
		{Name: "upper", ArgsLen: 1, Fn: loc.upper},
		{Name: "lower", ArgsLen: 1, Fn: loc.lower},
		{Name: "formatNumber", ArgsLen: 1, Fn: loc.formatNumber},
		{Name: "parseDate", ArgsLen: 1, Fn: loc.parseDate},
		{Name: "formatDate", ArgsLen: 2, Fn: loc.formatDate},
	}

	return all.Without(opts.Disabled...)
}

// Without returns the table minus the named natives.
func (t Table) Without(names ...string) Table {
	if len(names) == 0 {
		return t
	}
	skip := make(map[string]bool, len(names))
	for _, name := range names {
		skip[name] = true
	}
	out := make(Table, 0, len(t))
	for _, native := range t {
		if !skip[native.Name] {
			out = append(out, native)
		}
	}
	return out
}

// Names lists the natives in the table in order.
func (t Table) Names() []string {
	names := make([]string, len(t))
	for i, native := range t {
		names[i] = native.Name
	}
	return names
}

func nativeLen(args []evaluator.Object) (evaluator.Object, error) {
	s, ok := args[0].(*evaluator.String)
	if !ok {
		return nil, newTypeError("len", "a string", args[0])
	}
	return &evaluator.Number{Value: float64(utf8.RuneCountInString(s.Value))}, nil
}

// nativeNum converts a string to a number, yielding nil when the string
// does not hold one.
func nativeNum(args []evaluator.Object) (evaluator.Object, error) {
	switch arg := args[0].(type) {
	case *evaluator.Number:
		return arg, nil
	case *evaluator.String:
		v, err := strconv.ParseFloat(strings.TrimSpace(arg.Value), 64)
		if err != nil {
			return evaluator.NIL, nil
		}
		return &evaluator.Number{Value: v}, nil
	}
	return nil, newTypeError("num", "a string or number", args[0])
}

func newTypeError(function, expected string, got evaluator.Object) *qerrors.QantaError {
	return qerrors.New("TYPE-0007", map[string]any{
		"Function": function,
		"Expected": expected,
		"Got":      string(got.Type()),
	})
}

func stringArg(function string, arg evaluator.Object) (string, error) {
	s, ok := arg.(*evaluator.String)
	if !ok {
		return "", newTypeError(function, "a string", arg)
	}
	return s.Value, nil
}

func numberArg(function string, arg evaluator.Object) (float64, error) {
	n, ok := arg.(*evaluator.Number)
	if !ok {
		return 0, newTypeError(function, "a number", arg)
	}
	return n.Value, nil
}
