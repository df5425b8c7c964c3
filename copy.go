package moshi

// Copy pumps one complete value from src to dst token by token, without
// materializing it. Numbers keep their exact source text.
func Copy(dst Writer, src Reader) error {
	return copyValue(dst, src, 0)
}

func copyValue(dst Writer, src Reader, depth int) error {
	if depth > maxNestingDepth {
		return dataErrorf(src.Path(), "nesting too deep (%d levels)", maxNestingDepth)
	}
	k, err := src.Peek()
	if err != nil {
		return err
	}
	switch k {
	case KindBeginArray:
		if err := src.BeginArray(); err != nil {
			return err
		}
		if err := dst.BeginArray(); err != nil {
			return err
		}
		for {
			more, err := src.HasNext()
			if err != nil {
				return err
			}
			if !more {
				break
			}
			if err := copyValue(dst, src, depth+1); err != nil {
				return err
			}
		}
		if err := src.EndArray(); err != nil {
			return err
		}
		return dst.EndArray()
	case KindBeginObject:
		if err := src.BeginObject(); err != nil {
			return err
		}
		if err := dst.BeginObject(); err != nil {
			return err
		}
		for {
			more, err := src.HasNext()
			if err != nil {
				return err
			}
			if !more {
				break
			}
			name, err := src.NextName()
			if err != nil {
				return err
			}
			if err := dst.Name(name); err != nil {
				return err
			}
			if err := copyValue(dst, src, depth+1); err != nil {
				return err
			}
		}
		if err := src.EndObject(); err != nil {
			return err
		}
		return dst.EndObject()
	case KindString:
		s, err := src.NextString()
		if err != nil {
			return err
		}
		return dst.WriteString(s)
	case KindNumber:
		n, err := src.NextNumber()
		if err != nil {
			return err
		}
		return dst.WriteNumber(n)
	case KindBool:
		b, err := src.NextBool()
		if err != nil {
			return err
		}
		return dst.WriteBool(b)
	case KindNull:
		if err := src.NextNull(); err != nil {
			return err
		}
		return dst.WriteNull()
	default:
		return dataErrorf(src.Path(), "expected a value but was %s", k)
	}
}
