package value

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindNull is the absent value.
	KindNull Kind = iota
	// KindScalar holds a bool, string, int64, uint64 or float64.
	KindScalar
	// KindMap holds string-keyed children.
	KindMap
	// KindList holds ordered children.
	KindList
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is an immutable-by-convention structured configuration value.
type Value struct {
	kind   Kind
	scalar any
	fields map[string]Value
	items  []Value
}

// Null returns the null Value.
func Null() Value {
	return Value{}
}

// Scalar wraps a scalar. A nil argument yields Null. Numeric types are normalised
// the same way FromAny normalises them.
func Scalar(scalar any) Value {
	return FromAny(scalar)
}

// Map wraps string-keyed children. A nil map yields an empty Map.
func Map(fields map[string]Value) Value {
	if fields == nil {
		fields = make(map[string]Value)
	}

	return Value{kind: KindMap, fields: fields}
}

// List wraps ordered children. A nil slice yields an empty List.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}

	return Value{kind: KindList, items: items}
}

// FromAny converts a decoded document into a Value.
//
// Supported inputs are nil, bool, string, all integer and float types, values with
// Int64/Float64 methods (such as json.Number), map[string]any, map[any]any, []any and
// Value itself. Integers become int64, or uint64 above math.MaxInt64. Floats become
// float64. Anything else is kept as an opaque scalar.
func FromAny(raw any) Value {
	switch typed := raw.(type) {
	case nil:
		return Value{}
	case Value:
		return typed
	case bool, string, int64, float64:
		return Value{kind: KindScalar, scalar: typed}
	case int:
		return Value{kind: KindScalar, scalar: int64(typed)}
	case int8:
		return Value{kind: KindScalar, scalar: int64(typed)}
	case int16:
		return Value{kind: KindScalar, scalar: int64(typed)}
	case int32:
		return Value{kind: KindScalar, scalar: int64(typed)}
	case uint:
		return fromUnsigned(uint64(typed))
	case uint8:
		return fromUnsigned(uint64(typed))
	case uint16:
		return fromUnsigned(uint64(typed))
	case uint32:
		return fromUnsigned(uint64(typed))
	case uint64:
		return fromUnsigned(typed)
	case float32:
		return Value{kind: KindScalar, scalar: float64(typed)}
	case number:
		return fromNumber(typed)
	case map[string]any:
		fields := make(map[string]Value, len(typed))
		for name, child := range typed {
			fields[name] = FromAny(child)
		}

		return Value{kind: KindMap, fields: fields}
	case map[any]any:
		fields := make(map[string]Value, len(typed))
		for name, child := range typed {
			fields[fmt.Sprint(name)] = FromAny(child)
		}

		return Value{kind: KindMap, fields: fields}
	case []any:
		items := make([]Value, len(typed))
		for i, child := range typed {
			items[i] = FromAny(child)
		}

		return Value{kind: KindList, items: items}
	default:
		return Value{kind: KindScalar, scalar: typed}
	}
}

type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
}

func fromUnsigned(n uint64) Value {
	if n > math.MaxInt64 {
		return Value{kind: KindScalar, scalar: n}
	}

	return Value{kind: KindScalar, scalar: int64(n)}
}

func fromNumber(n number) Value {
	if i, err := n.Int64(); err == nil {
		return Value{kind: KindScalar, scalar: i}
	}

	if f, err := n.Float64(); err == nil {
		return Value{kind: KindScalar, scalar: f}
	}

	return Value{kind: KindScalar, scalar: fmt.Sprint(n)}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is Null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsContainer reports whether v is a Map or a List.
func (v Value) IsContainer() bool {
	return v.kind == KindMap || v.kind == KindList
}

// Len returns the number of children of a container, or 0.
func (v Value) Len() int {
	switch v.kind {
	case KindMap:
		return len(v.fields)
	case KindList:
		return len(v.items)
	case KindNull, KindScalar:
		return 0
	default:
		return 0
	}
}

// Interface converts v back into plain Go values: nil, scalars, map[string]any and []any.
func (v Value) Interface() any {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindMap:
		out := make(map[string]any, len(v.fields))
		for name, child := range v.fields {
			out[name] = child.Interface()
		}

		return out
	case KindList:
		out := make([]any, len(v.items))
		for i, child := range v.items {
			out[i] = child.Interface()
		}

		return out
	case KindNull:
		return nil
	default:
		return nil
	}
}

// Lookup resolves a dotted path inside v.
//
// An empty path returns v itself. On a Map an exact match of the whole path wins
// before the path is split into segments. Map segments match keys, List segments must
// be decimal indexes. A present null leaf counts as found.
func (v Value) Lookup(path string) (Value, bool) {
	if path == "" {
		return v, true
	}

	if v.kind == KindMap {
		if child, ok := v.fields[path]; ok {
			return child, true
		}
	}

	current := v

	for _, segment := range strings.Split(path, ".") {
		child, ok := current.child(segment)
		if !ok {
			return Value{}, false
		}

		current = child
	}

	return current, true
}

func (v Value) child(segment string) (Value, bool) {
	switch v.kind {
	case KindMap:
		child, ok := v.fields[segment]

		return child, ok
	case KindList:
		index, err := strconv.Atoi(segment)
		if err != nil || index < 0 || index >= len(v.items) {
			return Value{}, false
		}

		return v.items[index], true
	case KindNull, KindScalar:
		return Value{}, false
	default:
		return Value{}, false
	}
}

// AsString returns the string scalar held by v.
func (v Value) AsString() (string, bool) {
	s, ok := v.scalar.(string)

	return s, ok && v.kind == KindScalar
}

// AsBool returns the bool scalar held by v.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.scalar.(bool)

	return b, ok && v.kind == KindScalar
}

// AsInt returns the int64 scalar held by v.
func (v Value) AsInt() (int64, bool) {
	i, ok := v.scalar.(int64)

	return i, ok && v.kind == KindScalar
}

// AsFloat returns the float64 scalar held by v.
func (v Value) AsFloat() (float64, bool) {
	f, ok := v.scalar.(float64)

	return f, ok && v.kind == KindScalar
}

// AsMap returns a copy of the children of a Map.
func (v Value) AsMap() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}

	out := make(map[string]Value, len(v.fields))
	for name, child := range v.fields {
		out[name] = child
	}

	return out, true
}

// AsList returns a copy of the children of a List.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}

	out := make([]Value, len(v.items))
	copy(out, v.items)

	return out, true
}

// Keys returns the sorted keys of a Map, or nil.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}

	keys := make([]string, 0, len(v.fields))
	for name := range v.fields {
		keys = append(keys, name)
	}

	sort.Strings(keys)

	return keys
}

// Equal reports whether v and other hold the same structure and scalars.
func (v Value) Equal(other Value) bool {
	return reflect.DeepEqual(v.Interface(), other.Interface())
}

// Format implements fmt.Formatter so Values print as their plain form.
func (v Value) Format(state fmt.State, verb rune) {
	_, _ = fmt.Fprintf(state, fmt.FormatString(state, verb), v.Interface())
}
