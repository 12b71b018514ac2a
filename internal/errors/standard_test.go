package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jasp-lang/jasp/internal/position"
)

func TestNotDefined(t *testing.T) {
	err := NotDefined("foo")
	if err.Kind != KindNotDefined {
		t.Fatalf("expected kind %s, got %s", KindNotDefined, err.Kind)
	}
	name, ok := Identifier(fmt.Errorf("compile: %w", err))
	if !ok || name != "foo" {
		t.Errorf("expected identifier 'foo', got %q (ok=%v)", name, ok)
	}
	if !strings.Contains(err.Error(), "foo is not defined") {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if !strings.Contains(err.Caller, "TestNotDefined") {
		t.Errorf("expected caller to name the test, got %s", err.Caller)
	}
}

func TestAstWrapsCause(t *testing.T) {
	cause := UnknownData(struct{}{}, "[0]")
	err := Ast(cause)

	if !Is(err, KindAst) {
		t.Error("expected AST_ERROR kind")
	}
	if !Is(err, KindUnknownData) {
		t.Error("expected wrapped UNKNOWN_DATA to be found")
	}
	if Is(err, KindSyntax) {
		t.Error("did not expect SYNTAX_ERROR")
	}
	if err.Unwrap() != cause {
		t.Error("expected Unwrap to return the cause")
	}
}

func TestParseCarriesSpan(t *testing.T) {
	span := position.Span{
		Start: position.Position{Line: 2, Column: 3, Offset: 9},
		End:   position.Position{Line: 2, Column: 4, Offset: 10},
	}
	err := Parse(span, "unexpected %q", ")")
	if err.Span != span {
		t.Errorf("span not preserved: %v", err.Span)
	}
	if got := err.Error(); got != `PARSE_ERROR at 2:3: unexpected ")"` {
		t.Errorf("unexpected message %q", got)
	}
}

func TestIsOnPlainError(t *testing.T) {
	if Is(fmt.Errorf("plain"), KindParse) {
		t.Error("plain errors have no kind")
	}
	if _, ok := As(nil); ok {
		t.Error("nil is not a StandardError")
	}
}
