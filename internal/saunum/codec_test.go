// internal/saunum/codec_test.go
package saunum

import "testing"

func TestDecodeSignedWord_AllWords(t *testing.T) {
	for i := 0; i <= 0xFFFF; i++ {
		w := uint16(i)
		want := i
		if i >= 0x8000 {
			want = i - 0x10000
		}
		if got := int(DecodeSignedWord(w)); got != want {
			t.Fatalf("DecodeSignedWord(0x%04X) = %d, want %d", w, got, want)
		}
	}
}

func TestDecodeSignedWord_Boundaries(t *testing.T) {
	cases := map[uint16]int16{
		0x0000: 0,
		0x7FFF: 32767,
		0x8000: -32768,
		0xFFFF: -1,
		0xFFF6: -10,
	}
	for raw, want := range cases {
		if got := DecodeSignedWord(raw); got != want {
			t.Fatalf("DecodeSignedWord(0x%04X) = %d, want %d", raw, got, want)
		}
	}
}

func TestDecodeComposite32(t *testing.T) {
	if got := DecodeComposite32(1, 0); got != 65536 {
		t.Fatalf("expected 65536, got %d", got)
	}
	if got := DecodeComposite32(0, 0); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := DecodeComposite32(0xFFFF, 0xFFFF); got != 0xFFFFFFFF {
		t.Fatalf("expected max uint32, got %d", got)
	}
}

func TestComposite32_RoundTrip(t *testing.T) {
	words := []uint16{0, 1, 2, 0x00FF, 0x1234, 0x7FFF, 0x8000, 0xABCD, 0xFFFE, 0xFFFF}

	for _, hi := range words {
		for _, lo := range words {
			gotHi, gotLo := SplitComposite32(DecodeComposite32(hi, lo))
			if gotHi != hi || gotLo != lo {
				t.Fatalf("round trip (%d,%d) -> (%d,%d)", hi, lo, gotHi, gotLo)
			}
		}
	}
}

func TestDecodeBool(t *testing.T) {
	if DecodeBool(0) {
		t.Fatalf("0 must decode false")
	}
	for _, w := range []uint16{1, 2, 0xFFFF} {
		if !DecodeBool(w) {
			t.Fatalf("%d must decode true", w)
		}
	}
	if EncodeBool(true) != 1 || EncodeBool(false) != 0 {
		t.Fatalf("EncodeBool must write 1/0")
	}
}

func TestDecodeEnum_Known(t *testing.T) {
	e := DecodeEnum(2, SaunaType.Valid)

	v, ok := e.Get()
	if !ok {
		t.Fatalf("code 2 should be known")
	}
	if v != SaunaType3 {
		t.Fatalf("expected SaunaType3, got %v", v)
	}
	if e.String() != "type3" {
		t.Fatalf("unexpected string %q", e.String())
	}
}

func TestDecodeEnum_UnrecognizedKeepsRaw(t *testing.T) {
	e := DecodeEnum(9, SaunaType.Valid)

	if e.IsKnown() {
		t.Fatalf("code 9 must not be known")
	}
	if e.Raw() != 9 {
		t.Fatalf("raw not preserved: got %d", e.Raw())
	}
	if e.String() != "unknown(9)" {
		t.Fatalf("unexpected string %q", e.String())
	}
}

func TestOptional(t *testing.T) {
	o := Some(FanHigh)
	if v, ok := o.Get(); !ok || v != FanHigh {
		t.Fatalf("expected present FanHigh, got %v %v", v, ok)
	}

	n := None[FanSpeed]()
	if n.Present() {
		t.Fatalf("None must be absent")
	}
	if n.String() != "absent" {
		t.Fatalf("unexpected string %q", n.String())
	}
}

func TestEncodeWord_Identity(t *testing.T) {
	for _, v := range []int{0, 40, 100, 720, 65535} {
		if got := EncodeWord(v); int(got) != v {
			t.Fatalf("EncodeWord(%d) = %d", v, got)
		}
	}
}
