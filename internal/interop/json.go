package interop

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Marker keys that tag JSON objects as host values.
const (
	KeywordKey    = "$keyword"
	IdentifierKey = "$identifier"
	UndefinedKey  = "$undefined"
)

// DecodeJSON reads a JSON document and converts it into host values: JSON
// null, numbers, strings and arrays map directly; marker objects become
// Keyword, Identifier or Undefined. Numbers are kept as json.Number so the
// integer/float distinction survives. Any other object is rejected.
func DecodeJSON(r io.Reader) (interface{}, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("interop: decode: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("interop: trailing data after JSON value")
	}
	return fromJSON(raw, "$")
}

// DecodeJSONBytes is DecodeJSON over a byte slice.
func DecodeJSONBytes(data []byte) (interface{}, error) {
	return DecodeJSON(bytes.NewReader(data))
}

func fromJSON(raw interface{}, path string) (interface{}, error) {
	switch v := raw.(type) {
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			conv, err := fromJSON(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case map[string]interface{}:
		return markerFromJSON(v, path)
	default:
		return v, nil
	}
}

func markerFromJSON(obj map[string]interface{}, path string) (interface{}, error) {
	if len(obj) != 1 {
		return nil, fmt.Errorf("interop: object at %s is not a host value marker", path)
	}
	for key, val := range obj {
		switch key {
		case KeywordKey:
			s, ok := val.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("interop: %s at %s must be a non-empty string", key, path)
			}
			return ParseKeyword(s), nil
		case IdentifierKey:
			s, ok := val.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("interop: %s at %s must be a non-empty string", key, path)
			}
			return NewIdentifier(s), nil
		case UndefinedKey:
			return Undefined{}, nil
		}
	}
	return nil, fmt.Errorf("interop: object at %s is not a host value marker", path)
}
