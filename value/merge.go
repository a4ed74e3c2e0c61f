package value

// Merge overlays override onto base.
// Maps are merged key by key, recursively. Any other override replaces base entirely,
// except a Null override, which keeps base.
func Merge(base, override Value) Value {
	if override.kind == KindNull {
		return base
	}

	if base.kind != KindMap || override.kind != KindMap {
		return override
	}

	fields := make(map[string]Value, len(base.fields)+len(override.fields))
	for name, child := range base.fields {
		fields[name] = child
	}

	for name, child := range override.fields {
		fields[name] = Merge(fields[name], child)
	}

	return Value{kind: KindMap, fields: fields}
}
