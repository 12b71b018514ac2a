// Package interop defines the host-side values the compiler accepts when its
// input arrives as an already-built tree instead of source text, and the
// logging sink the host may provide.
package interop

import (
	"fmt"
	"strings"

	"github.com/jasp-lang/jasp/internal/hash"
)

// Undefined is the host's undefined value. It is distinct from nil, which
// stands for null.
type Undefined struct{}

// Keyword is a host keyword value.
type Keyword struct {
	Module   string
	Name     string
	FullName string
	HashCode int64
}

// NewKeyword builds a Keyword from a module and name, deriving the full name
// and hash the same way the runtime does.
func NewKeyword(module, name string) Keyword {
	full := name
	if module != "" {
		full = module + "/" + name
	}
	return Keyword{Module: module, Name: name, FullName: full, HashCode: hash.Cyrb53(full)}
}

// ParseKeyword splits "module/name" (or a bare "name") into a Keyword.
func ParseKeyword(fq string) Keyword {
	if i := strings.LastIndex(fq, "/"); i > 0 && i < len(fq)-1 {
		return NewKeyword(fq[:i], fq[i+1:])
	}
	return NewKeyword("", fq)
}

func (k Keyword) String() string { return ":" + k.FullName }

// Identifier is a host identifier value.
type Identifier struct {
	Name     string
	HashCode int64
}

// NewIdentifier builds an Identifier with its derived hash.
func NewIdentifier(name string) Identifier {
	return Identifier{Name: name, HashCode: hash.Cyrb53(name)}
}

func (id Identifier) String() string { return id.Name }

// LogSink receives diagnostic messages. Logging never affects compilation.
type LogSink interface {
	Log(msg string, value interface{})
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Log(string, interface{}) {}

// FuncSink adapts a function to LogSink.
type FuncSink func(msg string, value interface{})

func (f FuncSink) Log(msg string, value interface{}) { f(msg, value) }

// Describe renders a host value for log output.
func Describe(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case Undefined:
		return "undefined"
	case string:
		return fmt.Sprintf("%q", v)
	case []interface{}:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = Describe(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}
