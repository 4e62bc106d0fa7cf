package bencode

import (
	"math/big"
	"reflect"
)

// FromGo converts a native Go value into a Value, performing the "type
// dispatch at encode time" spec §9 describes for a statically typed target:
// Value itself is a closed tagged union where UnsupportedValue is
// unreachable by construction, so FromGo is the one place a caller can still
// hand in something out of the bencode model — an int-keyed map, a float —
// and have that surface as *UnsupportedValue.
//
// Supported inputs: Value (returned as-is), string, []byte, bool,
// int/int8/.../uint64, *big.Int, and any slice or map[string-kind]T built
// from these, recursively.
func FromGo(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case []byte:
		return Bytes(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return BigInt(new(big.Int).SetUint64(uint64(x))), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return BigInt(new(big.Int).SetUint64(x)), nil
	case *big.Int:
		return BigInt(x), nil
	case []any:
		items := make([]Value, len(x))
		for i, e := range x {
			conv, err := FromGo(e)
			if err != nil {
				return Value{}, err
			}
			items[i] = conv
		}
		return List(items...), nil
	case map[string]any:
		m := make(map[string]Value, len(x))
		for k, e := range x {
			conv, err := FromGo(e)
			if err != nil {
				return Value{}, err
			}
			m[k] = conv
		}
		return Dict(m), nil
	default:
		return fromGoReflect(v)
	}
}

// fromGoReflect handles slice and map types not covered by the type switch
// above (e.g. []string, map[string]int), and is where a map with a
// non-string key kind is rejected.
func fromGoReflect(v any) (Value, error) {
	if v == nil {
		return Value{}, &UnsupportedValue{Subkind: UnknownKind}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, &UnsupportedValue{Subkind: NonByteStringKeyUnsupported}
		}
		m := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			conv, err := FromGo(iter.Value().Interface())
			if err != nil {
				return Value{}, err
			}
			m[iter.Key().String()] = conv
		}
		return Dict(m), nil
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			conv, err := FromGo(rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}
			items[i] = conv
		}
		return List(items...), nil
	default:
		return Value{}, &UnsupportedValue{Subkind: UnknownKind}
	}
}

// ToGo converts v into a native Go value: *big.Int, []byte, []any, or
// map[string]any. A Precomputed Value — which the decoder never
// produces — converts to its raw bytes.
func (v Value) ToGo() any {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindBytes:
		return v.b
	case KindPrecomputed:
		return v.pre
	case KindList:
		out := make([]any, len(v.l))
		for i, e := range v.l {
			out[i] = e.ToGo()
		}
		return out
	case KindDict:
		out := make(map[string]any, len(v.d))
		for k, e := range v.d {
			out[k] = e.ToGo()
		}
		return out
	default:
		return nil
	}
}

// Marshal converts v with FromGo and encodes the result.
func Marshal(v any) ([]byte, error) {
	val, err := FromGo(v)
	if err != nil {
		return nil, err
	}
	return Encode(val)
}
