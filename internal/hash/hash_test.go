package hash

import "testing"

func TestCyrb53KnownValues(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"", 3338908027751811},
		{"a", 7929297801672961},
		{"k", 3919474532866556},
		{"m/k", 1276703296126976},
		{"vec", 3078466860991140},
		{"foo", 6104293464250660},
		{"quote", 8223992780562128},
		{"+", 2516174307666489},
		{"στδ", 3282057595988824},
		{"😀", 184983221247852},
	}

	for i, tt := range tests {
		if got := Cyrb53(tt.input); got != tt.expected {
			t.Errorf("tests[%d] - Cyrb53(%q) wrong. expected=%d, got=%d",
				i, tt.input, tt.expected, got)
		}
	}
}

func TestCyrb53Deterministic(t *testing.T) {
	inputs := []string{"", "hello", "a/b", "λ", "with space"}
	for _, in := range inputs {
		first := Cyrb53(in)
		for i := 0; i < 3; i++ {
			if got := Cyrb53(in); got != first {
				t.Fatalf("Cyrb53(%q) not stable: %d then %d", in, first, got)
			}
		}
	}
}

func TestCyrb53Range(t *testing.T) {
	for _, in := range []string{"", "x", "a much longer identifier-name?", "ключ"} {
		got := Cyrb53(in)
		if got < 0 || got > MaxSafeInteger {
			t.Errorf("Cyrb53(%q) = %d outside [0, 2^53-1]", in, got)
		}
	}
}

func TestCyrb53Distinguishes(t *testing.T) {
	if Cyrb53("ab") == Cyrb53("ba") {
		t.Error("expected order-sensitive fingerprints")
	}
}

func BenchmarkCyrb53(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Cyrb53("some-module/some-keyword-name")
	}
}
