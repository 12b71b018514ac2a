package ast

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	jerrors "github.com/jasp-lang/jasp/internal/errors"
	"github.com/jasp-lang/jasp/internal/hash"
	"github.com/jasp-lang/jasp/internal/interop"
)

// FromHost converts a host value into a node. Shapes are tried in a fixed
// order: null, undefined, safe integer, float, string, list, keyword,
// identifier. Anything else fails with an UnknownData error.
func FromHost(value interface{}) (Node, error) {
	return fromHost(value, "$", interop.NopSink{})
}

// FromHostLogged is FromHost reporting each visited value to sink.
func FromHostLogged(value interface{}, sink interop.LogSink) (Node, error) {
	if sink == nil {
		sink = interop.NopSink{}
	}
	return fromHost(value, "$", sink)
}

// FromHostList converts a host list into top-level forms.
func FromHostList(value interface{}, sink interop.LogSink) ([]Node, error) {
	n, err := FromHostLogged(value, sink)
	if err != nil {
		return nil, err
	}
	list, ok := n.(List)
	if !ok {
		return nil, jerrors.UnknownData(value, "$")
	}
	return list.Items, nil
}

func fromHost(value interface{}, path string, sink interop.LogSink) (Node, error) {
	sink.Log("Try AST", value)

	if value == nil {
		return Null{}, nil
	}
	if _, ok := value.(interop.Undefined); ok {
		return Undefined{}, nil
	}
	if i, ok := safeInteger(value); ok {
		return Int{Value: i}, nil
	}
	if f, ok := float(value); ok {
		return Float{Value: f}, nil
	}
	if s, ok := value.(string); ok {
		return String{Value: s}, nil
	}
	if items, ok := value.([]interface{}); ok {
		nodes := make([]Node, len(items))
		for i, item := range items {
			n, err := fromHost(item, fmt.Sprintf("%s[%d]", path, i), sink)
			if err != nil {
				return nil, err
			}
			nodes[i] = n
		}
		return List{Items: nodes}, nil
	}
	if kw, ok := value.(interop.Keyword); ok {
		return Keyword{Module: kw.Module, Name: kw.Name, FullName: kw.FullName, Hash: kw.HashCode}, nil
	}
	if id, ok := value.(interop.Identifier); ok {
		return Identifier{Name: id.Name, Hash: id.HashCode}, nil
	}
	return nil, jerrors.UnknownData(value, path)
}

// safeInteger reports whether value is an integer exactly representable as
// a float64, mirroring Number.isSafeInteger.
func safeInteger(value interface{}) (int64, bool) {
	var i int64
	switch v := value.(type) {
	case int:
		i = int64(v)
	case int8:
		i = int64(v)
	case int16:
		i = int64(v)
	case int32:
		i = int64(v)
	case int64:
		i = v
	case uint:
		if uint64(v) > uint64(hash.MaxSafeInteger) {
			return 0, false
		}
		i = int64(v)
	case uint8:
		i = int64(v)
	case uint16:
		i = int64(v)
	case uint32:
		i = int64(v)
	case uint64:
		if v > uint64(hash.MaxSafeInteger) {
			return 0, false
		}
		i = int64(v)
	case float32:
		return integralFloat(float64(v))
	case float64:
		return integralFloat(v)
	case json.Number:
		if strings.ContainsAny(string(v), ".eE") {
			f, err := v.Float64()
			if err != nil {
				return 0, false
			}
			return integralFloat(f)
		}
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		i = n
	default:
		return 0, false
	}
	if i > hash.MaxSafeInteger || i < -hash.MaxSafeInteger {
		return 0, false
	}
	return i, true
}

func integralFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if math.Abs(f) > float64(hash.MaxSafeInteger) {
		return 0, false
	}
	return int64(f), true
}

// float accepts every numeric host value that is not a safe integer.
func float(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
