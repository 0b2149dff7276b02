// Package errors provides structured error types for the Qanta language.
//
// This package defines QantaError, a unified error type that represents
// lexer, parser, resolver and runtime errors with rich metadata for display
// and programmatic handling, and ErrorList for stages that accumulate more
// than one error before failing.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassLex       ErrorClass = "lex"       // Tokenizer errors
	ClassParse     ErrorClass = "parse"     // Parser/syntax errors
	ClassResolve   ErrorClass = "resolve"   // Static scope errors
	ClassType      ErrorClass = "type"      // Type mismatches
	ClassArity     ErrorClass = "arity"     // Wrong argument count
	ClassUndefined ErrorClass = "undefined" // Not found/defined
	ClassOperator  ErrorClass = "operator"  // Invalid operations
	ClassProperty  ErrorClass = "property"  // Property access on non-instances
	ClassState     ErrorClass = "state"     // Invalid interpreter state
)

// QantaError represents any error produced by the pipeline.
type QantaError struct {
	Class   ErrorClass     `json:"class"`           // Error category
	Code    string         `json:"code"`            // Error code (e.g., "TYPE-0001")
	Message string         `json:"message"`         // Human-readable message
	Hints   []string       `json:"hints,omitempty"` // Suggestions for fixing
	Line    int            `json:"line"`            // 1-based line (0 if unknown)
	Column  int            `json:"column"`          // 1-based column (0 if unknown)
	File    string         `json:"file,omitempty"`  // File path (if known)
	Data    map[string]any `json:"data,omitempty"`  // Template variables
}

// Error implements the error interface.
func (e *QantaError) Error() string {
	return e.String()
}

// String returns a formatted string representation of the error.
func (e *QantaError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *QantaError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassLex:
		sb.WriteString("Syntax error")
	case ClassParse:
		sb.WriteString("Parser error")
	case ClassResolve:
		sb.WriteString("Resolve error")
	default:
		sb.WriteString("Runtime error")
	}

	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for i, hint := range e.Hints {
		sb.WriteString("\n  ")
		if i == 0 {
			sb.WriteString("Hint: ")
		} else {
			sb.WriteString("  or: ")
		}
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *QantaError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file path set.
func (e *QantaError) WithFile(file string) *QantaError {
	copy := *e
	copy.File = file
	return &copy
}

// WithPosition returns a copy of the error with line and column set.
func (e *QantaError) WithPosition(line, column int) *QantaError {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// IsStatic reports whether the error was raised before execution began
// (by the lexer, parser or resolver).
func (e *QantaError) IsStatic() bool {
	switch e.Class {
	case ClassLex, ClassParse, ClassResolve:
		return true
	}
	return false
}

// IsRuntimeError returns true if this error aborted a running program.
func (e *QantaError) IsRuntimeError() bool {
	return !e.IsStatic()
}

// ErrorList is a set of errors reported together by one stage.
type ErrorList []*QantaError

// Error implements the error interface, one error per line.
func (l ErrorList) Error() string {
	parts := make([]string, len(l))
	for i, err := range l {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "\n")
}

// WithFile returns a copy of the list with every error's file set.
func (l ErrorList) WithFile(file string) ErrorList {
	out := make(ErrorList, len(l))
	for i, err := range l {
		out[i] = err.WithFile(file)
	}
	return out
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass // Error category
	Template string     // Message template with {{.placeholders}}
	Hints    []string   // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// ========================================
	// Lexer errors (LEX-0xxx)
	// ========================================
	"LEX-0001": {
		Class:    ClassLex,
		Template: "unexpected character '{{.Char}}'",
	},
	"LEX-0002": {
		Class:    ClassLex,
		Template: "unterminated string",
		Hints:    []string{"close the string with a matching \""},
	},
	"LEX-0003": {
		Class:    ClassLex,
		Template: "unterminated block comment",
		Hints:    []string{"close the comment with */"},
	},
	"LEX-0004": {
		Class:    ClassLex,
		Template: "invalid escape sequence '\\{{.Char}}'",
		Hints:    []string{`supported escapes are \n \t \r \" \\ \0`},
	},

	// ========================================
	// Parse errors (PARSE-0xxx)
	// ========================================
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "expected {{.Expected}}, got '{{.Got}}'",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "expected expression, got '{{.Token}}'",
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "invalid assignment target",
		Hints:    []string{"only variables and properties can be assigned to"},
	},
	"PARSE-0004": {
		Class:    ClassParse,
		Template: "can't have more than {{.Limit}} {{.What}}",
	},
	"PARSE-0005": {
		Class:    ClassParse,
		Template: "invalid number literal: {{.Literal}}",
	},

	// ========================================
	// Resolve errors (RESOLVE-0xxx)
	// ========================================
	"RESOLVE-0001": {
		Class:    ClassResolve,
		Template: "can't read local variable '{{.Name}}' in its own initializer",
	},
	"RESOLVE-0002": {
		Class:    ClassResolve,
		Template: "'{{.Name}}' is already declared in this scope",
		Hints:    []string{"use assignment ({{.Name}} = ...) or choose a different name"},
	},
	"RESOLVE-0003": {
		Class:    ClassResolve,
		Template: "can't return from top-level code",
	},
	"RESOLVE-0004": {
		Class:    ClassResolve,
		Template: "can't return a value from an initializer",
	},
	"RESOLVE-0005": {
		Class:    ClassResolve,
		Template: "can't use 'this' outside of a class method",
	},
	"RESOLVE-0006": {
		Class:    ClassResolve,
		Template: "can't use 'super' outside of a class",
	},
	"RESOLVE-0007": {
		Class:    ClassResolve,
		Template: "can't use 'super' in a class with no superclass",
	},
	"RESOLVE-0008": {
		Class:    ClassResolve,
		Template: "class '{{.Name}}' can't inherit from itself",
	},
	"RESOLVE-0009": {
		Class:    ClassResolve,
		Template: "can't use '{{.Keyword}}' outside of a loop",
	},

	// ========================================
	// Undefined errors (UNDEF-0xxx)
	// ========================================
	"UNDEF-0001": {
		Class:    ClassUndefined,
		Template: "undefined variable '{{.Name}}'",
	},
	"UNDEF-0002": {
		Class:    ClassUndefined,
		Template: "undefined property '{{.Name}}'",
	},
	"UNDEF-0003": {
		Class:    ClassUndefined,
		Template: "undefined method '{{.Name}}' on superclass",
	},

	// ========================================
	// Type errors (TYPE-0xxx)
	// ========================================
	"TYPE-0001": {
		Class:    ClassType,
		Template: "operand of '{{.Operator}}' must be a number, got {{.Got}}",
	},
	"TYPE-0002": {
		Class:    ClassType,
		Template: "operands of '{{.Operator}}' must be numbers, got {{.Left}} and {{.Right}}",
	},
	"TYPE-0003": {
		Class:    ClassType,
		Template: "operands of '+' must be two numbers or include a string, got {{.Left}} and {{.Right}}",
	},
	"TYPE-0004": {
		Class:    ClassType,
		Template: "operands of '{{.Operator}}' must be two numbers or two strings, got {{.Left}} and {{.Right}}",
	},
	"TYPE-0005": {
		Class:    ClassType,
		Template: "can only call functions and classes, got {{.Got}}",
	},
	"TYPE-0006": {
		Class:    ClassType,
		Template: "superclass must be a class, got {{.Got}}",
	},
	"TYPE-0007": {
		Class:    ClassType,
		Template: "{{.Function}} expected {{.Expected}}, got {{.Got}}",
	},

	// ========================================
	// Property errors (PROP-0xxx)
	// ========================================
	"PROP-0001": {
		Class:    ClassProperty,
		Template: "only instances have properties, got {{.Got}}",
	},
	"PROP-0002": {
		Class:    ClassProperty,
		Template: "only instances have fields, got {{.Got}}",
	},

	// ========================================
	// Arity errors (ARITY-0xxx)
	// ========================================
	"ARITY-0001": {
		Class:    ClassArity,
		Template: "{{.Name}}: expected {{.Expected}} arguments, got {{.Got}}",
	},

	// ========================================
	// Operator errors (OP-0xxx)
	// ========================================
	"OP-0001": {
		Class:    ClassOperator,
		Template: "division by zero: {{.Left}} {{.Operator}} {{.Right}}",
	},

	// ========================================
	// State errors (STATE-0xxx)
	// ========================================
	"STATE-0001": {
		Class:    ClassState,
		Template: "stack overflow: call depth exceeded {{.Limit}}",
		Hints:    []string{"check for unbounded recursion"},
	},
}

// New creates a QantaError from the catalog.
// If the code is not found, creates a generic error with the message.
func New(code string, data map[string]any) *QantaError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &QantaError{
			Class:   ClassType,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &QantaError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates a QantaError with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *QantaError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// NewSimple creates a simple error without using the catalog.
func NewSimple(class ErrorClass, message string) *QantaError {
	return &QantaError{
		Class:   class,
		Message: message,
	}
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// ============================================================================
// Fuzzy Matching - "Did you mean?" suggestions
// ============================================================================

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

// threshold returns the maximum edit distance worth suggesting for input.
func threshold(input string) int {
	switch {
	case len(input) >= 7:
		return 3
	case len(input) >= 4:
		return 2
	default:
		return 1
	}
}

// FindClosestMatch finds the closest match to the given string from candidates.
// Returns the best match if the distance is within the threshold, otherwise empty string.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	inputLower := strings.ToLower(input)

	// Sorted so ties resolve the same way on every run.
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	var bestMatch string
	bestDistance := -1

	for _, candidate := range sorted {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	if bestDistance <= 0 || bestDistance > threshold(input) {
		return ""
	}

	return bestMatch
}

// NewUndefinedVariable creates an undefined variable error with optional fuzzy matching.
func NewUndefinedVariable(name string, line, column int, available []string) *QantaError {
	err := NewWithPosition("UNDEF-0001", line, column, map[string]any{"Name": name})

	if suggestion := FindClosestMatch(name, available); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}

	return err
}
