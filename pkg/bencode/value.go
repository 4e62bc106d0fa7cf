// Package bencode implements the bencode serialization format used by
// BitTorrent metainfo files and peer-exchange protocols: a decoder and
// encoder over a small, self-delimiting value model (integers, byte
// strings, lists, sorted byte-keyed dicts).
package bencode

import (
	"bytes"
	"math/big"
	"sort"
)

// Kind discriminates the alternatives of the bencode value model.
type Kind int

const (
	// KindInteger is a signed integer of arbitrary magnitude.
	KindInteger Kind = iota
	// KindBytes is an immutable sequence of 8-bit bytes.
	KindBytes
	// KindList is an ordered sequence of Values.
	KindList
	// KindDict is a mapping from byte-string keys to Values, always
	// emitted in ascending byte-lex key order.
	KindDict
	// KindPrecomputed is an opaque, already-encoded byte fragment; it is
	// encoder-only input and participates in no structural operation.
	KindPrecomputed
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	case KindPrecomputed:
		return "precomputed"
	default:
		return "invalid"
	}
}

// Value is the tagged-variant model shared by the decoder and encoder
// (spec §3). The zero Value reports KindInteger but holds no integer
// payload (Int returns a nil *big.Int); build Values with the constructors
// below. Values are immutable once constructed.
type Value struct {
	kind Kind
	i    *big.Int
	b    []byte
	l    []Value
	d    map[string]Value
	pre  []byte
}

// Int constructs an Integer Value from an int64.
func Int(n int64) Value {
	return Value{kind: KindInteger, i: big.NewInt(n)}
}

// BigInt constructs an Integer Value of arbitrary magnitude. n is not
// retained; the Value holds its own copy.
func BigInt(n *big.Int) Value {
	return Value{kind: KindInteger, i: new(big.Int).Set(n)}
}

// Bool constructs an Integer Value of 0 or 1, the convenience conversion
// spec.md §4.2 describes for host languages that distinguish booleans.
func Bool(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

// Bytes constructs a Bytes Value. b is not retained; the Value holds its
// own copy so that later mutation of b cannot change the Value.
func Bytes(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: KindBytes, b: cp}
}

// String constructs a Bytes Value from a Go string.
func String(s string) Value {
	return Value{kind: KindBytes, b: []byte(s)}
}

// List constructs a List Value. items is copied; mutating the slice passed
// in afterward does not affect the Value.
func List(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindList, l: cp}
}

// Dict constructs a Dict Value from a map of byte-string keys to Values.
// The map is copied; storage order is irrelevant, since encoding always
// walks keys in ascending byte-lex order.
func Dict(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: KindDict, d: cp}
}

// Precomputed wraps a byte slice believed to already be valid bencode. It
// is spliced verbatim into encoder output without re-encoding; the decoder
// never produces one. The caller is responsible for b actually being valid
// bencode — this is not verified.
func Precomputed(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: KindPrecomputed, pre: cp}
}

// Kind reports which alternative of the value model v holds.
func (v Value) Kind() Kind { return v.kind }

// Int returns v's integer payload and true if v is a KindInteger Value.
func (v Value) Int() (*big.Int, bool) {
	if v.kind != KindInteger {
		return nil, false
	}
	return v.i, true
}

// Int64 returns v's integer payload narrowed to int64, and whether v was
// both a KindInteger Value and representable without truncation.
func (v Value) Int64() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	if !v.i.IsInt64() {
		return 0, false
	}
	return v.i.Int64(), true
}

// Bytes returns v's byte-string payload and true if v is a KindBytes Value.
// The returned slice aliases v's internal storage and must not be mutated.
func (v Value) Bytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return v.b, true
}

// String returns v's byte-string payload converted to a Go string, and
// true if v is a KindBytes Value.
func (v Value) String() (string, bool) {
	if v.kind != KindBytes {
		return "", false
	}
	return string(v.b), true
}

// List returns v's element slice and true if v is a KindList Value. The
// returned slice aliases v's internal storage and must not be mutated.
func (v Value) List() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.l, true
}

// Dict returns v's key/value map and true if v is a KindDict Value. The
// returned map aliases v's internal storage and must not be mutated.
func (v Value) Dict() (map[string]Value, bool) {
	if v.kind != KindDict {
		return nil, false
	}
	return v.d, true
}

// Get returns the value at key in a Dict Value, or the zero Value and false
// if v is not a dict or has no such key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindDict {
		return Value{}, false
	}
	val, ok := v.d[key]
	return val, ok
}

// sortedKeys returns a Dict Value's keys in ascending unsigned byte-lex
// order, the order encoding always emits them in regardless of map
// iteration order (spec §3's dict-order invariant).
func (v Value) sortedKeys() []string {
	keys := make([]string, 0, len(v.d))
	for k := range v.d {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare([]byte(keys[i]), []byte(keys[j])) < 0
	})
	return keys
}

// Clone returns a deep copy of v whose byte-string leaves do not alias any
// buffer v might have borrowed from (spec §5: decoders may borrow
// byte-string leaves from the input buffer; Clone lets a tree outlive it).
func (v Value) Clone() Value {
	switch v.kind {
	case KindBytes:
		return Bytes(v.b)
	case KindList:
		items := make([]Value, len(v.l))
		for i, e := range v.l {
			items[i] = e.Clone()
		}
		return Value{kind: KindList, l: items}
	case KindDict:
		d := make(map[string]Value, len(v.d))
		for k, e := range v.d {
			d[k] = e.Clone()
		}
		return Value{kind: KindDict, d: d}
	case KindPrecomputed:
		return Precomputed(v.pre)
	default: // KindInteger
		return BigInt(v.i)
	}
}

// Equal reports whether v and other represent the same logical value.
// Two Dict values compare equal regardless of insertion order, since a
// Dict's storage order is never part of its logical identity (spec §3).
// A Precomputed value is equal only to another Precomputed value with
// identical bytes; it is never equal to a structurally equivalent Bytes,
// List, or Dict value, since it is opaque to structural comparison.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindInteger:
		return v.i.Cmp(other.i) == 0
	case KindBytes:
		return bytes.Equal(v.b, other.b)
	case KindPrecomputed:
		return bytes.Equal(v.pre, other.pre)
	case KindList:
		if len(v.l) != len(other.l) {
			return false
		}
		for i := range v.l {
			if !v.l[i].Equal(other.l[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if len(v.d) != len(other.d) {
			return false
		}
		for k, e := range v.d {
			oe, ok := other.d[k]
			if !ok || !e.Equal(oe) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
