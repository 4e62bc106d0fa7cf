package bencode

import (
	"math/big"
	"testing"
)

// TestRoundTrip_InModelValues exercises spec property 1: for every Value v
// constructible in the model, decode(encode(v)) == (v, len(encode(v))).
func TestRoundTrip_InModelValues(t *testing.T) {
	big20, _ := new(big.Int).SetString("99999999999999999999", 10)

	values := []Value{
		Int(0),
		Int(-1),
		Int(42),
		BigInt(big20),
		String(""),
		String("hello world"),
		Bytes([]byte{0x00, 0xff, 0x10}),
		List(),
		List(Int(1), String("two"), List(Int(3))),
		Dict(nil),
		Dict(map[string]Value{
			"a": Int(1),
			"b": List(String("x"), String("y")),
			"c": Dict(map[string]Value{"nested": Int(-7)}),
		}),
	}

	for i, v := range values {
		encoded, err := Encode(v)
		if err != nil {
			t.Fatalf("case %d: Encode error: %v", i, err)
		}

		decoded, n, err := Decode(encoded)
		if err != nil {
			t.Fatalf("case %d: Decode error: %v", i, err)
		}
		if n != len(encoded) {
			t.Fatalf("case %d: consumed %d, want %d", i, n, len(encoded))
		}
		if !decoded.Equal(v) {
			t.Fatalf("case %d: decoded %v != original %v", i, decoded, v)
		}
	}
}

// TestRoundTrip_CanonicalEncoding exercises the determinism half of spec
// property 2: encoding the same dict Value repeatedly yields identical bytes.
// Independence from construction order is checked by
// TestEncode_DictKeyOrderIndependentOfConstruction.
func TestRoundTrip_CanonicalEncoding(t *testing.T) {
	v := Dict(map[string]Value{"z": Int(1), "a": Int(2), "m": Int(3)})

	first, err := Encode(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Encode(v)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(again) != string(first) {
			t.Fatalf("encoding not deterministic: %q vs %q", again, first)
		}
	}
}

// TestRoundTrip_StrictAcceptedIsCanonical exercises spec property 3: any
// buffer accepted in strict mode already equals its own re-encoding.
func TestRoundTrip_StrictAcceptedIsCanonical(t *testing.T) {
	inputs := []string{
		"i4e",
		"i-1e",
		"i0e",
		"0:",
		"3:abc",
		"le",
		"l3:asd2:xye",
		"de",
		"d3:agei25e4:eyes4:bluee",
		"d8:spam.mp3d6:author5:Alice6:lengthi100000eee",
	}

	for _, in := range inputs {
		v, err := Unmarshal([]byte(in))
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		out, err := Encode(v)
		if err != nil {
			t.Fatalf("%q: Encode error: %v", in, err)
		}
		if string(out) != in {
			t.Fatalf("got %q, want %q", out, in)
		}
	}
}

// TestRoundTrip_UTF8ExtensionReencodesPlain documents the one exception to
// property 3: the 'u' extension, when opted into, re-encodes as a plain
// byte string rather than byte-identically.
func TestRoundTrip_UTF8ExtensionReencodesPlain(t *testing.T) {
	v, _, err := Decode([]byte("u4:spam"), WithAcceptUTF8Extension())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := Encode(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "4:spam" {
		t.Fatalf("got %q, want 4:spam", out)
	}
}

// TestRoundTrip_KeyOrderEnforcement exercises spec property 5.
func TestRoundTrip_KeyOrderEnforcement(t *testing.T) {
	tests := []string{
		"d1:b0:1:a0:e", // descending
		"d1:a0:1:a0:e", // duplicate
	}
	for _, in := range tests {
		_, err := Unmarshal([]byte(in))
		wantMalformed(t, err, BadKeyOrder)
	}
}
