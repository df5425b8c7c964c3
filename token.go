package moshi

// Kind enumerates the structure, name, or value types of a JSON token as
// reported by Reader.Peek.
type Kind int

const (
	KindBeginArray Kind = iota
	KindEndArray
	KindBeginObject
	KindEndObject
	KindName
	KindString
	KindNumber
	KindBool
	KindNull
	KindEndOfDocument
)

func (k Kind) String() string {
	switch k {
	case KindBeginArray:
		return "BEGIN_ARRAY"
	case KindEndArray:
		return "END_ARRAY"
	case KindBeginObject:
		return "BEGIN_OBJECT"
	case KindEndObject:
		return "END_OBJECT"
	case KindName:
		return "NAME"
	case KindString:
		return "STRING"
	case KindNumber:
		return "NUMBER"
	case KindBool:
		return "BOOLEAN"
	case KindNull:
		return "NULL"
	case KindEndOfDocument:
		return "END_DOCUMENT"
	default:
		return "UNKNOWN"
	}
}
