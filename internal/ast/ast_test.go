package ast

import (
	"encoding/json"
	"math"
	"testing"

	jerrors "github.com/jasp-lang/jasp/internal/errors"
	"github.com/jasp-lang/jasp/internal/hash"
	"github.com/jasp-lang/jasp/internal/interop"
)

func TestNewKeywordDerivesIdentity(t *testing.T) {
	kw := NewKeyword("m", "k")
	if kw.FullName != "m/k" {
		t.Errorf("expected full name 'm/k', got %q", kw.FullName)
	}
	if kw.Hash != hash.Cyrb53("m/k") {
		t.Errorf("expected hash of full name, got %d", kw.Hash)
	}

	bare := NewKeyword("", "k")
	if bare.FullName != "k" || bare.Hash != hash.Cyrb53("k") {
		t.Errorf("unexpected bare keyword %+v", bare)
	}
}

func TestIdentifierEqualityByHash(t *testing.T) {
	a := NewIdentifier("foo")
	b := NewIdentifier("foo")
	if !Equal(a, b) {
		t.Error("identifiers with equal names must be equal")
	}
	if Equal(a, NewIdentifier("bar")) {
		t.Error("different identifiers must not be equal")
	}
	if Equal(a, NewKeyword("", "foo")) {
		t.Error("identifier and keyword must not be equal")
	}
}

func TestCallAndHead(t *testing.T) {
	l := Call("vec", Int{Value: 1}, Int{Value: 2})
	name, args, ok := l.Head()
	if !ok || name != "vec" || len(args) != 2 {
		t.Fatalf("unexpected head: %q %v %v", name, args, ok)
	}

	if _, _, ok := NewList().Head(); ok {
		t.Error("empty list has no head")
	}
	if _, _, ok := NewList(Int{Value: 1}).Head(); ok {
		t.Error("list headed by a literal has no identifier head")
	}
}

func TestFormat(t *testing.T) {
	tree := []Node{
		Call("+", Int{Value: 1}, Float{Value: 2}, Float{Value: 2.5}),
		NewList(String{Value: "a\"b\n"}, NewKeyword("m", "k"), Null{}, Undefined{}),
		NewList(),
	}
	expected := "(+ 1 2.0 2.5)\n(\"a\\\"b\\n\" :m/k null undefined)\n()"
	if got := Format(tree); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestFromHostPriority(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected Node
	}{
		{"nil is null", nil, Null{}},
		{"undefined", interop.Undefined{}, Undefined{}},
		{"int", 42, Int{Value: 42}},
		{"integral float", 3.0, Int{Value: 3}},
		{"fraction", 1.5, Float{Value: 1.5}},
		{"beyond safe range", float64(1 << 60), Float{Value: float64(1 << 60)}},
		{"int64 beyond safe range", int64(1 << 60), Float{Value: float64(1 << 60)}},
		{"json integer", json.Number("7"), Int{Value: 7}},
		{"json float", json.Number("7.25"), Float{Value: 7.25}},
		{"string", "s", String{Value: "s"}},
		{"list", []interface{}{1, "a"}, NewList(Int{Value: 1}, String{Value: "a"})},
		{"keyword", interop.NewKeyword("m", "k"), NewKeyword("m", "k")},
		{"identifier", interop.NewIdentifier("x"), NewIdentifier("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromHost(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !Equal(got, tt.expected) {
				t.Errorf("expected=%s (%T), got=%s (%T)", tt.expected, tt.expected, got, got)
			}
		})
	}
}

func TestFromHostKeepsHostHash(t *testing.T) {
	host := interop.Keyword{Module: "m", Name: "k", FullName: "m/k", HashCode: 99}
	got, err := FromHost(host)
	if err != nil {
		t.Fatal(err)
	}
	kw := got.(Keyword)
	if kw.Hash != 99 {
		t.Errorf("expected host hash 99 to be kept, got %d", kw.Hash)
	}
}

func TestFromHostNaN(t *testing.T) {
	got, err := FromHost(math.NaN())
	if err != nil {
		t.Fatal(err)
	}
	if f, ok := got.(Float); !ok || !math.IsNaN(f.Value) {
		t.Errorf("expected NaN float, got %#v", got)
	}
}

func TestFromHostUnknownData(t *testing.T) {
	_, err := FromHost([]interface{}{1, []interface{}{map[string]int{}}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !jerrors.Is(err, jerrors.KindUnknownData) {
		t.Fatalf("expected UNKNOWN_DATA, got %v", err)
	}
	se, _ := jerrors.As(err)
	if se.Context["path"] != "$[1][0]" {
		t.Errorf("expected path $[1][0], got %v", se.Context["path"])
	}
}

func TestFromHostListLogs(t *testing.T) {
	var seen int
	sink := interop.FuncSink(func(msg string, value interface{}) { seen++ })
	nodes, err := FromHostList([]interface{}{1, []interface{}{2}}, sink)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 {
		t.Errorf("expected 2 forms, got %d", len(nodes))
	}
	if seen != 4 {
		t.Errorf("expected 4 log calls, got %d", seen)
	}

	if _, err := FromHostList("not a list", nil); !jerrors.Is(err, jerrors.KindUnknownData) {
		t.Errorf("expected UNKNOWN_DATA for non-list input, got %v", err)
	}
}
