package moshi

// readValueTree reads one complete value from r into the natural Go tree:
// map[string]any, []any, string, json.Number, bool, or nil.
func readValueTree(r Reader, depth int) (any, error) {
	if depth > maxNestingDepth {
		return nil, dataErrorf(r.Path(), "nesting too deep (%d levels)", maxNestingDepth)
	}
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	switch k {
	case KindBeginArray:
		if err := r.BeginArray(); err != nil {
			return nil, err
		}
		list := []any{}
		for {
			more, err := r.HasNext()
			if err != nil {
				return nil, err
			}
			if !more {
				break
			}
			v, err := readValueTree(r, depth+1)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, r.EndArray()
	case KindBeginObject:
		if err := r.BeginObject(); err != nil {
			return nil, err
		}
		m := make(map[string]any)
		for {
			more, err := r.HasNext()
			if err != nil {
				return nil, err
			}
			if !more {
				break
			}
			name, err := r.NextName()
			if err != nil {
				return nil, err
			}
			v, err := readValueTree(r, depth+1)
			if err != nil {
				return nil, err
			}
			if _, dup := m[name]; dup {
				return nil, dataErrorf(r.Path(), "map key %q has multiple values", name)
			}
			m[name] = v
		}
		return m, r.EndObject()
	case KindString:
		return r.NextString()
	case KindNumber:
		return r.NextNumber()
	case KindBool:
		return r.NextBool()
	case KindNull:
		return nil, r.NextNull()
	default:
		return nil, dataErrorf(r.Path(), "expected a value but was %s", k)
	}
}
