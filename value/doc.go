// Package value provides the structured value held by configuration groups.
//
// A Value is a tagged union of four kinds: Null, Scalar, Map and List. The zero Value
// is Null. Values are built from decoded documents with FromAny and navigated with
// Lookup, which walks a dotted path through maps (by key) and lists (by index).
//
//	v := value.FromAny(map[string]any{"db": map[string]any{"host": "localhost"}})
//	host, found := v.Lookup("db.host")
//
// Accessors such as AsString and AsInt never coerce: they report ok=false when the
// value is of another kind or type.
package value
