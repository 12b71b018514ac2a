// Package errors provides the structured error taxonomy shared by every
// stage of the jasp pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/jasp-lang/jasp/internal/position"
)

// Kind identifies which stage rejected the input and why.
type Kind string

const (
	KindParse       Kind = "PARSE_ERROR"
	KindUnknownData Kind = "UNKNOWN_DATA"
	KindSyntax      Kind = "SYNTAX_ERROR"
	KindNotDefined  Kind = "NOT_DEFINED"
	KindAst         Kind = "AST_ERROR"
)

// StandardError provides a consistent error format
type StandardError struct {
	Kind    Kind
	Message string
	Span    position.Span // zero when the failure has no source location
	Context map[string]interface{}
	Cause   error
	Caller  string
}

// Error implements the error interface
func (e *StandardError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Span.IsValid() {
		b.WriteString(" at ")
		b.WriteString(e.Span.Start.String())
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes the wrapped cause, if any.
func (e *StandardError) Unwrap() error { return e.Cause }

// NewStandardError creates a new standardized error
func NewStandardError(kind Kind, message string, context map[string]interface{}) *StandardError {
	return newError(kind, message, context, 2)
}

// newError records the function skip frames above itself as the caller.
func newError(kind Kind, message string, context map[string]interface{}, skip int) *StandardError {
	pc, _, _, ok := runtime.Caller(skip)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &StandardError{
		Kind:    kind,
		Message: message,
		Context: context,
		Caller:  caller,
	}
}

// Common error constructors

// Parse reports a grammar violation or malformed literal at span.
func Parse(span position.Span, format string, args ...interface{}) *StandardError {
	err := newError(KindParse, fmt.Sprintf(format, args...), nil, 2)
	err.Span = span
	return err
}

// UnknownData reports a host value matching none of the recognised shapes.
// path locates the value inside the enclosing host list.
func UnknownData(value interface{}, path string) *StandardError {
	return newError(KindUnknownData,
		fmt.Sprintf("unsupported value of type %T at %s", value, path),
		map[string]interface{}{"value": value, "path": path}, 2)
}

// Syntax reports a recognised form the compiler cannot lower.
func Syntax(format string, args ...interface{}) *StandardError {
	return newError(KindSyntax, fmt.Sprintf(format, args...), nil, 2)
}

// NotDefined reports an identifier in call position with no binding.
func NotDefined(identifier string) *StandardError {
	return newError(KindNotDefined,
		fmt.Sprintf("%s is not defined", identifier),
		map[string]interface{}{"identifier": identifier}, 2)
}

// Ast wraps a failed host-value conversion surfaced through the compiler.
func Ast(cause error) *StandardError {
	err := newError(KindAst, "invalid input tree", nil, 2)
	err.Cause = cause
	return err
}

// As returns the first StandardError in err's chain.
func As(err error) (*StandardError, bool) {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Is reports whether err, or any error it wraps, has the given kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		var se *StandardError
		if !stderrors.As(err, &se) {
			return false
		}
		if se.Kind == kind {
			return true
		}
		err = se.Cause
	}
	return false
}

// Identifier returns the identifier named by a NotDefined error.
func Identifier(err error) (string, bool) {
	se, ok := As(err)
	if !ok || se.Kind != KindNotDefined {
		return "", false
	}
	name, ok := se.Context["identifier"].(string)
	return name, ok
}
