package bencode

import "fmt"

// MalformedSubkind categorizes why a decode failed.
type MalformedSubkind int

const (
	// UnexpectedEnd means the buffer ended before a value was complete,
	// or an integer had an empty body ("ie").
	UnexpectedEnd MalformedSubkind = iota
	// LeadingZero means an integer or string length began with '0' but
	// was not exactly "0".
	LeadingZero
	// NegativeZero means an integer body was "-0".
	NegativeZero
	// BadKeyOrder means a dict key did not strictly exceed the previous
	// key in byte-lex order.
	BadKeyOrder
	// BadDiscriminator means the byte at a value position was none of
	// 'i', '0'-'9', 'l', 'd' (or 'u' when the UTF-8 extension is enabled),
	// or an integer body or string length held a byte other than an ASCII
	// digit (an integer may start with a single '-' followed by digits).
	BadDiscriminator
	// LengthOverflow means a string's declared length exceeds the
	// remaining buffer.
	LengthOverflow
	// TrailingGarbage means strict-mode decode left unconsumed bytes.
	TrailingGarbage
	// NonByteStringKey means a dict key position held something other
	// than a byte-string discriminator.
	NonByteStringKey
	// DepthExceeded means nesting exceeded the configured maximum depth.
	DepthExceeded
)

func (s MalformedSubkind) String() string {
	switch s {
	case UnexpectedEnd:
		return "unexpected end of input"
	case LeadingZero:
		return "leading zero"
	case NegativeZero:
		return "negative zero"
	case BadKeyOrder:
		return "dict keys not strictly ascending"
	case NonByteStringKey:
		return "dict key is not a byte string"
	case BadDiscriminator:
		return "unrecognized value discriminator"
	case LengthOverflow:
		return "string length exceeds remaining input"
	case TrailingGarbage:
		return "trailing data after top-level value"
	case DepthExceeded:
		return "maximum nesting depth exceeded"
	default:
		return "malformed input"
	}
}

// MalformedInput is returned by the decoder when the input cannot be
// interpreted as bencode. Offset is the byte position at which the defect
// was detected, when that is meaningful.
type MalformedInput struct {
	Subkind MalformedSubkind
	Offset  int
}

func (e *MalformedInput) Error() string {
	return fmt.Sprintf("bencode: malformed input at offset %d: %s", e.Offset, e.Subkind)
}

// Is reports whether target is a MalformedInput with the same Subkind,
// so callers can write errors.Is(err, &MalformedInput{Subkind: LeadingZero}).
func (e *MalformedInput) Is(target error) bool {
	t, ok := target.(*MalformedInput)
	if !ok {
		return false
	}
	return t.Subkind == e.Subkind
}

// UnsupportedSubkind categorizes why encoding a value failed.
type UnsupportedSubkind int

const (
	// UnknownKind means the value's kind is not one of the four bencode
	// kinds (or Precomputed).
	UnknownKind UnsupportedSubkind = iota
	// NonByteStringKeyUnsupported means a dict being encoded has a key
	// that is not a byte string.
	NonByteStringKeyUnsupported
)

func (s UnsupportedSubkind) String() string {
	switch s {
	case UnknownKind:
		return "unknown value kind"
	case NonByteStringKeyUnsupported:
		return "dict key is not a byte string"
	default:
		return "unsupported value"
	}
}

// UnsupportedValue is returned by the encoder when the logical value is out
// of the bencode model (§3): a dict key that is not a byte string, or a Go
// value with no bencode representation (e.g. a float).
type UnsupportedValue struct {
	Subkind UnsupportedSubkind
}

func (e *UnsupportedValue) Error() string {
	return fmt.Sprintf("bencode: unsupported value: %s", e.Subkind)
}

func (e *UnsupportedValue) Is(target error) bool {
	t, ok := target.(*UnsupportedValue)
	if !ok {
		return false
	}
	return t.Subkind == e.Subkind
}
