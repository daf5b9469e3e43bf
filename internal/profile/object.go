package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Entry is one key/value pair of a JSON object, kept in document order.
type Entry struct {
	Key   string
	Value any
}

// Object is a JSON object that remembers the order its keys appeared in.
// Values are string, json.Number, bool, nil, Object or []any.
type Object []Entry

// Get returns the first value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, e := range o {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Object returns the nested object stored under key, or nil.
func (o Object) Object(key string) Object {
	v, _ := o.Get(key)
	obj, _ := v.(Object)
	return obj
}

// String returns the value stored under key rendered as text. Missing keys
// and nested structures yield "".
func (o Object) String(key string) string {
	v, ok := o.Get(key)
	if !ok {
		return ""
	}
	return scalarText(v)
}

// Strings flattens the scalar members of o into a map. Nested objects are skipped.
func (o Object) Strings() map[string]string {
	out := make(map[string]string, len(o))
	for _, e := range o {
		switch e.Value.(type) {
		case Object, []any:
			continue
		}
		out[e.Key] = scalarText(e.Value)
	}
	return out
}

func scalarText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return ""
	}
}

// DecodeObject reads a single JSON object from data, preserving key order at
// every level.
func DecodeObject(data []byte) (Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decoding profile json: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("decoding profile json: top-level value is not an object")
	}
	obj, err := decodeObject(dec)
	if err != nil {
		return nil, fmt.Errorf("decoding profile json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("decoding profile json: trailing data after object")
	}
	return obj, nil
}

// decodeObject consumes members up to and including the closing brace.
func decodeObject(dec *json.Decoder) (Object, error) {
	obj := Object{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		obj = append(obj, Entry{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		return decodeObject(dec)
	case '[':
		var arr []any
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}
