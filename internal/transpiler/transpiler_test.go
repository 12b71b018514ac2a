package transpiler

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/jasp-lang/jasp/internal/compiler"
	jerrors "github.com/jasp-lang/jasp/internal/errors"
	"github.com/jasp-lang/jasp/internal/interop"
)

func TestTranspile(t *testing.T) {
	out, err := Transpile("(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var doc struct {
		Type       string `json:"type"`
		SourceType string `json:"source_type"`
		Body       []struct {
			Type       string `json:"type"`
			Expression struct {
				Type     string `json:"type"`
				Operator string `json:"operator"`
			} `json:"expression"`
		} `json:"body"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if doc.Type != "Program" || doc.SourceType != "module" {
		t.Errorf("program header wrong: %+v", doc)
	}
	if len(doc.Body) != 2 || doc.Body[0].Type != "ImportDeclaration" {
		t.Fatalf("body wrong: %+v", doc.Body)
	}
	if e := doc.Body[1].Expression; e.Type != "BinaryExpression" || e.Operator != "+" {
		t.Errorf("expression wrong: %+v", e)
	}
	if !bytes.Contains(out, []byte("\n  \"source_type\"")) {
		t.Errorf("expected indented output, got %s", out)
	}
}

func TestTranspileIsDeterministic(t *testing.T) {
	src := `[1 2.0 "three" :four] {:a 'b}`
	first, err := Transpile(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Transpile(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("output differs between runs")
	}
	if !bytes.Contains(first, []byte(`"value": 2.0`)) {
		t.Errorf("float literal lost its fraction:\n%s", first)
	}
}

func TestTranspileDeepNesting(t *testing.T) {
	const depth = 6000
	src := strings.Repeat("[", depth) + strings.Repeat("]", depth)

	out, err := Transpile(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := bytes.Count(out, []byte(`"name": "vecLiteral"`)); got != depth {
		t.Errorf("vecLiteral count wrong. expected=%d, got=%d", depth, got)
	}

	prog, err := TranspileTree(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out2, err := marshal(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, out2) {
		t.Error("tree and direct output differ")
	}
}

func TestTranspileManyForms(t *testing.T) {
	const forms = 20000
	src := strings.Repeat("(+ 1 2.5) [:k \"s\"] ", forms)

	out, err := Transpile(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc struct {
		Body []json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(doc.Body) != 2*forms+1 {
		t.Errorf("body length wrong. expected=%d, got=%d", 2*forms+1, len(doc.Body))
	}
}

func TestTranspileErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  jerrors.Kind
	}{
		{"(+ 1", jerrors.KindParse},
		{"(nope)", jerrors.KindNotDefined},
		{"(quote)", jerrors.KindSyntax},
	}

	for i, tt := range tests {
		out, err := Transpile(tt.input)
		if !jerrors.Is(err, tt.kind) {
			t.Errorf("tests[%d] - expected %s, got %v", i, tt.kind, err)
		}
		if out != nil {
			t.Errorf("tests[%d] - expected no output on failure", i)
		}
	}
}

func TestFilenameInParseErrors(t *testing.T) {
	_, err := New(compiler.Options{}).Transpile("(", "main.jasp")
	se, ok := jerrors.As(err)
	if !ok || se.Span.Start.Filename != "main.jasp" {
		t.Fatalf("expected span in main.jasp, got %v", err)
	}
}

func TestCompileHost(t *testing.T) {
	host, err := interop.DecodeJSONBytes([]byte(`[[{"$identifier":"str"}, "a", {"$keyword":"m/k"}]]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, err := CompileHost(host)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), `"name": "str"`) || !strings.Contains(string(out), `"value": "m/k"`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestConcurrentUse(t *testing.T) {
	tr := New(compiler.Options{})
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tr.Transpile(`(import "./a.js" a f) (f (vec 1 2))`, ""); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}
}
