package viewstate

// Reduce returns the minimal form of raw: every field whose value a decoder
// would rebuild identically from defaults is removed. raw is not modified.
//
// Topology options are first diffed option by option against their default
// with DiffDeep. Three fields are then dropped by shape before the generic
// comparison because their "nothing set" form differs from their default: a
// falsy control pipe, an empty node-details list and an empty
// topology-options map.
func Reduce(raw ViewState, defaults DefaultsTable) ViewState {
	out := make(ViewState, len(raw))
	for field, value := range raw {
		if field == FieldTopologyOptions {
			value = diffOptions(value, defaults[field])
		}
		if absent(field, value) {
			continue
		}
		if def, ok := defaults[field]; ok && Equal(value, def) {
			continue
		}
		out[field] = value
	}
	return out
}

func diffOptions(value, def any) any {
	vm, ok := asMap(value)
	if !ok || vm == nil {
		return value
	}
	dm, ok := asMap(def)
	if !ok {
		return value
	}
	return DiffDeep(vm, dm)
}

func absent(field string, value any) bool {
	switch field {
	case FieldControlPipe:
		return !Truthy(value)
	case FieldNodeDetails, FieldTopologyOptions:
		return Empty(value)
	}
	return false
}

// DiffDeep returns the entries of value that differ from defaults. Nested
// maps are diffed recursively and dropped when nothing in them differs; any
// other value is kept unless it equals the default at the same key.
func DiffDeep(value, defaults map[string]any) map[string]any {
	out := make(map[string]any)
	for k, v := range value {
		def, hasDef := defaults[k]
		if vm, ok := asMap(v); ok && v != nil {
			dm, _ := asMap(def)
			if !hasDef || dm == nil {
				if len(vm) > 0 {
					out[k] = v
				}
				continue
			}
			if sub := DiffDeep(vm, dm); len(sub) > 0 {
				out[k] = sub
			}
			continue
		}
		if hasDef && Equal(v, def) {
			continue
		}
		out[k] = v
	}
	return out
}
