package plugins

import (
	"fmt"
	"sort"
)

// ValueKind tags the shape of a constraint value.
type ValueKind uint8

const (
	TuplePairs ValueKind = iota + 1
	StringList
	Boolean
	String
	Object
)

func (k ValueKind) String() string {
	switch k {
	case TuplePairs:
		return "tuplePairs"
	case StringList:
		return "stringList"
	case Boolean:
		return "boolean"
	case String:
		return "string"
	case Object:
		return "object"
	}
	return "unknown"
}

// Value is a constraint value as declared on a kind.
type Value struct {
	Kind       ValueKind
	Pairs      [][2]string
	Strings    []string
	Bool       bool
	Str        string
	Properties []Property
}

// Property is one named entry of an Object value.
type Property struct {
	Name  string
	Value Value
}

// Property returns the named property of an Object value.
func (v Value) Property(name string) (Value, bool) {
	for _, p := range v.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return Value{}, false
}

// ValueOf converts a decoded YAML/TOML value into a Value. Lists of
// two-element lists become tuple pairs, lists of strings become string
// lists and maps become objects with properties in key order.
func ValueOf(raw any) (Value, error) {
	switch v := raw.(type) {
	case bool:
		return Value{Kind: Boolean, Bool: v}, nil
	case string:
		return Value{Kind: String, Str: v}, nil
	case []string:
		return Value{Kind: StringList, Strings: v}, nil
	case [][]string:
		return pairsOf(len(v), func(i int) ([]string, bool) { return v[i], true })
	case []any:
		return listOf(v)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := Value{Kind: Object}
		for _, k := range keys {
			pv, err := ValueOf(v[k])
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			out.Properties = append(out.Properties, Property{Name: k, Value: pv})
		}
		return out, nil
	}
	return Value{}, fmt.Errorf("unsupported constraint value %v (%T)", raw, raw)
}

func listOf(items []any) (Value, error) {
	if len(items) == 0 {
		return Value{Kind: StringList}, nil
	}
	if _, nested := items[0].([]any); nested {
		return pairsOf(len(items), func(i int) ([]string, bool) {
			inner, ok := items[i].([]any)
			if !ok {
				return nil, false
			}
			out := make([]string, len(inner))
			for j, e := range inner {
				s, ok := e.(string)
				if !ok {
					return nil, false
				}
				out[j] = s
			}
			return out, true
		})
	}
	out := Value{Kind: StringList, Strings: make([]string, len(items))}
	for i, e := range items {
		s, ok := e.(string)
		if !ok {
			return Value{}, fmt.Errorf("list element %d is %T, want string", i, e)
		}
		out.Strings[i] = s
	}
	return out, nil
}

func pairsOf(n int, at func(int) ([]string, bool)) (Value, error) {
	out := Value{Kind: TuplePairs, Pairs: make([][2]string, n)}
	for i := 0; i < n; i++ {
		pair, ok := at(i)
		if !ok || len(pair) != 2 {
			return Value{}, fmt.Errorf("pair %d must be a list of two member names", i)
		}
		out.Pairs[i] = [2]string{pair[0], pair[1]}
	}
	return out, nil
}
