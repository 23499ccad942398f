// internal/saunum/codec.go
package saunum

import "fmt"

// Value codec: raw 16-bit register words <-> domain values.
// Pure functions. No IO.

// DecodeSignedWord interprets raw as a two's-complement 16-bit value.
func DecodeSignedWord(raw uint16) int16 {
	return int16(raw)
}

// DecodeComposite32 joins two consecutive words, high word first.
// A device-side counter reset is observed, not corrected.
func DecodeComposite32(high, low uint16) uint32 {
	return uint32(high)<<16 | uint32(low)
}

// SplitComposite32 is the inverse of DecodeComposite32.
func SplitComposite32(v uint32) (high, low uint16) {
	return uint16(v >> 16), uint16(v)
}

// DecodeBool treats any non-zero word as true.
func DecodeBool(raw uint16) bool {
	return raw != 0
}

// EncodeBool writes 1 for true and 0 for false.
func EncodeBool(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

// EncodeWord is the identity encoding for writable integers.
// Callers validate the domain range first.
func EncodeWord(v int) uint16 {
	return uint16(v)
}

// ---- ENUMERATIONS ----

// SaunaType selects the device's heating profile. Codes are 0-indexed on the wire.
type SaunaType int

const (
	SaunaType1 SaunaType = 0
	SaunaType2 SaunaType = 1
	SaunaType3 SaunaType = 2
)

// Valid reports whether t is one of the known type codes.
func (t SaunaType) Valid() bool {
	return t >= SaunaType1 && t <= SaunaType3
}

func (t SaunaType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("SaunaType(%d)", int(t))
	}
	return fmt.Sprintf("type%d", int(t)+1)
}

// FanSpeed is the fan stage.
type FanSpeed int

const (
	FanOff    FanSpeed = 0
	FanLow    FanSpeed = 1
	FanMedium FanSpeed = 2
	FanHigh   FanSpeed = 3
)

// Valid reports whether s is one of the four fan stages.
func (s FanSpeed) Valid() bool {
	return s >= FanOff && s <= FanHigh
}

func (s FanSpeed) String() string {
	switch s {
	case FanOff:
		return "off"
	case FanLow:
		return "low"
	case FanMedium:
		return "medium"
	case FanHigh:
		return "high"
	default:
		return fmt.Sprintf("FanSpeed(%d)", int(s))
	}
}

// Enum is either a known enumeration value or an unrecognized raw code.
// Unrecognized codes are kept so callers can still display or log them.
type Enum[T ~int] struct {
	value T
	raw   uint16
	known bool
}

// DecodeEnum tests raw for membership using valid.
func DecodeEnum[T ~int](raw uint16, valid func(T) bool) Enum[T] {
	v := T(raw)
	if !valid(v) {
		return Enum[T]{raw: raw}
	}
	return Enum[T]{value: v, raw: raw, known: true}
}

// Known wraps a recognised value.
func Known[T ~int](v T) Enum[T] {
	return Enum[T]{value: v, raw: uint16(v), known: true}
}

// Get returns the value and whether it was recognised.
func (e Enum[T]) Get() (T, bool) { return e.value, e.known }

// IsKnown reports whether the raw code was recognised.
func (e Enum[T]) IsKnown() bool { return e.known }

// Raw returns the word as read from the device.
func (e Enum[T]) Raw() uint16 { return e.raw }

func (e Enum[T]) String() string {
	if !e.known {
		return fmt.Sprintf("unknown(%d)", e.raw)
	}
	return fmt.Sprint(e.value)
}

// Optional holds a value that may be absent.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some returns a present Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.value, o.ok }

// Present reports whether a value is set.
func (o Optional[T]) Present() bool { return o.ok }

func (o Optional[T]) String() string {
	if !o.ok {
		return "absent"
	}
	return fmt.Sprint(o.value)
}
