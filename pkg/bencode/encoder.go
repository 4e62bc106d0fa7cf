package bencode

import (
	"bytes"
	"io"
)

// Encode returns the bencoded form of v.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	e := NewEncoder(&buf)
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encoder writes bencoded values to an io.Writer.
//
// The zero Encoder is not usable; construct with NewEncoder.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns a new Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes the bencoded representation of v to the underlying writer.
// Encoding is deterministic: the same Value produces byte-identical output
// on every call. Encode fails with *UnsupportedValue if v's Kind is not one
// of the model's five alternatives — which, since Value is a closed tagged
// union, can only happen for the zero Value of an invalid Kind produced by
// unsafe construction elsewhere in this package.
func (e *Encoder) Encode(v Value) error {
	switch v.kind {
	case KindInteger:
		return e.encodeInteger(v)
	case KindBytes:
		return e.encodeBytes(v.b)
	case KindList:
		return e.encodeList(v)
	case KindDict:
		return e.encodeDict(v)
	case KindPrecomputed:
		_, err := e.w.Write(v.pre)
		return err
	default:
		return &UnsupportedValue{Subkind: UnknownKind}
	}
}

func (e *Encoder) encodeInteger(v Value) error {
	if _, err := e.w.Write([]byte{TokenInteger.Byte()}); err != nil {
		return err
	}
	if _, err := io.WriteString(e.w, v.i.String()); err != nil {
		return err
	}
	_, err := e.w.Write([]byte{TokenEnding.Byte()})
	return err
}

func (e *Encoder) encodeBytes(b []byte) error {
	var lenBuf [20]byte
	n := appendDecimal(lenBuf[:0], len(b))
	if _, err := e.w.Write(n); err != nil {
		return err
	}
	if _, err := e.w.Write([]byte{TokenStringSeparator.Byte()}); err != nil {
		return err
	}
	_, err := e.w.Write(b)
	return err
}

func (e *Encoder) encodeList(v Value) error {
	if _, err := e.w.Write([]byte{TokenList.Byte()}); err != nil {
		return err
	}
	for _, item := range v.l {
		if err := e.Encode(item); err != nil {
			return err
		}
	}
	_, err := e.w.Write([]byte{TokenEnding.Byte()})
	return err
}

// encodeDict writes the dict's keys in ascending byte-lex order regardless
// of the underlying map's iteration order (spec §3, §4.2).
func (e *Encoder) encodeDict(v Value) error {
	if _, err := e.w.Write([]byte{TokenDict.Byte()}); err != nil {
		return err
	}
	for _, k := range v.sortedKeys() {
		if err := e.encodeBytes([]byte(k)); err != nil {
			return err
		}
		if err := e.Encode(v.d[k]); err != nil {
			return err
		}
	}
	_, err := e.w.Write([]byte{TokenEnding.Byte()})
	return err
}

// appendDecimal appends the base-10 digits of a non-negative int to dst,
// avoiding strconv's allocation for the common small-length-prefix case.
func appendDecimal(dst []byte, n int) []byte {
	if n == 0 {
		return append(dst, '0')
	}
	var tmp [20]byte
	i := len(tmp)
	for n > 0 {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
	}
	return append(dst, tmp[i:]...)
}
