package advisor

import (
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"
)

// field returns the first non-null value stored under key, trying each object in order.
func field(key string, objs ...map[string]any) (any, bool) {
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		if v, ok := obj[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// textField resolves key like field and converts the value to display text.
// Objects and arrays are not text and report absent.
func textField(key string, objs ...map[string]any) (string, bool) {
	v, ok := field(key, objs...)
	if !ok {
		return "", false
	}
	return textValue(v)
}

// stringField only accepts values that are already strings.
func stringField(key string, objs ...map[string]any) (string, bool) {
	v, ok := field(key, objs...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

func boolField(key string, objs ...map[string]any) (bool, bool) {
	v, ok := field(key, objs...)
	if !ok {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	default:
		return truthy(v), true
	}
}

// listField returns the value under key only when it is an actual array.
func listField(key string, objs ...map[string]any) ([]any, bool) {
	v, ok := field(key, objs...)
	if !ok {
		return nil, false
	}
	list, ok := v.([]any)
	return list, ok
}

func objectField(key string, objs ...map[string]any) map[string]any {
	v, ok := field(key, objs...)
	if !ok {
		return nil
	}
	obj, _ := v.(map[string]any)
	return obj
}

func textValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), t
	default:
		return "", false
	}
}

// truthy mirrors the loose truth test the agent payloads were designed around:
// null, false, 0 and "" count as missing.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
	}
}

// decodeJSON parses s as a single JSON document. Trailing content is a failure.
func decodeJSON(s string) (any, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return v, true
}

// canonical turns byte payloads into strings so they take the decode path.
func canonical(raw any) any {
	switch t := raw.(type) {
	case json.RawMessage:
		if t == nil {
			return nil
		}
		return string(t)
	case []byte:
		if t == nil {
			return nil
		}
		return string(t)
	default:
		return raw
	}
}
