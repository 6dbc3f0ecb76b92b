package domain

import (
	"bytes"
	"encoding/json"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// Extra holds the members of a JSON object that the model does not name.
// They are written back after the named fields, in key order.
type Extra map[string]json.RawMessage

var memberNames sync.Map // reflect.Type -> map[string]struct{}

// namedMembers returns the lower-cased json names of t's fields, matching the
// case-insensitive field lookup of encoding/json.
func namedMembers(t reflect.Type) map[string]struct{} {
	if names, ok := memberNames.Load(t); ok {
		return names.(map[string]struct{})
	}

	names := make(map[string]struct{}, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		names[strings.ToLower(name)] = struct{}{}
	}
	memberNames.Store(t, names)
	return names
}

// decodeWithExtra decodes data into fields (a pointer to a struct) and returns
// the members fields has no place for.
func decodeWithExtra(data []byte, fields any) (Extra, error) {
	if err := json.Unmarshal(data, fields); err != nil {
		return nil, err
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}

	named := namedMembers(reflect.TypeOf(fields).Elem())
	for name := range members {
		if _, ok := named[strings.ToLower(name)]; ok {
			delete(members, name)
		}
	}
	if len(members) == 0 {
		return nil, nil
	}
	return members, nil
}

// encodeWithExtra encodes fields and appends the extra members to the object.
func encodeWithExtra(fields any, extra Extra) ([]byte, error) {
	out, err := encodeNoEscape(fields)
	if err != nil || len(extra) == 0 {
		return out, err
	}

	out = out[:len(out)-1] // closing brace
	for _, name := range slices.Sorted(maps.Keys(extra)) {
		key, err := encodeNoEscape(name)
		if err != nil {
			return nil, err
		}
		if len(out) > 1 {
			out = append(out, ',')
		}
		out = append(out, key...)
		out = append(out, ':')
		out = append(out, extra[name]...)
	}
	return append(out, '}'), nil
}

func encodeNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
