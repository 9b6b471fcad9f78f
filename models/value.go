package models

import "strconv"

// Kind identifies the scalar type carried by a Value.
type Kind int

const (
	KindUnknown Kind = iota
	KindInt
	KindDecimal
	KindCurrency
	KindText
	KindBool
)

// Value is a typed scalar extracted from a page. The zero Value is the
// sentinel "unknown", which is distinct from a real zero, false or empty
// string result.
type Value struct {
	kind Kind
	i    int64
	d    float64
	s    string
	b    bool
}

// Unknown returns the sentinel "could not determine" value.
func Unknown() Value { return Value{} }

// IntVal wraps an integer count.
func IntVal(n int64) Value { return Value{kind: KindInt, i: n} }

// DecimalVal wraps a floating-point rating.
func DecimalVal(f float64) Value { return Value{kind: KindDecimal, d: f} }

// CurrencyVal wraps an integer amount in minor-agnostic units. The source
// currency symbol has already been discarded by the normalizer.
func CurrencyVal(n int64) Value { return Value{kind: KindCurrency, i: n} }

// TextVal wraps free text. Empty text is still a known value.
func TextVal(s string) Value { return Value{kind: KindText, s: s} }

// BoolVal wraps a boolean flag.
func BoolVal(b bool) Value { return Value{kind: KindBool, b: b} }

// Known reports whether the value is anything other than the sentinel.
func (v Value) Known() bool { return v.kind != KindUnknown }

// Kind returns the scalar type tag.
func (v Value) Kind() Kind { return v.kind }

// Int returns the integer payload of an int or currency value.
func (v Value) Int() int64 { return v.i }

// Decimal returns the floating-point payload.
func (v Value) Decimal() float64 { return v.d }

// Text returns the free-text payload.
func (v Value) Text() string { return v.s }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// String renders the value for persistence. Unknown renders as the empty
// string so spreadsheet tooling shows a blank cell, not a fake zero.
func (v Value) String() string {
	switch v.kind {
	case KindInt, KindCurrency:
		return strconv.FormatInt(v.i, 10)
	case KindDecimal:
		return strconv.FormatFloat(v.d, 'f', -1, 64)
	case KindText:
		return v.s
	case KindBool:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// Equal compares two values including their kind tags.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt, KindCurrency:
		return v.i == o.i
	case KindDecimal:
		return v.d == o.d
	case KindText:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}

// TriState is the persisted form of an optional boolean: "TRUE", "FALSE",
// or empty meaning "not yet evaluated".
type TriState string

const (
	TriEmpty TriState = ""
	TriTrue  TriState = "TRUE"
	TriFalse TriState = "FALSE"
)

// TriFromBool converts a known boolean into its persisted form.
func TriFromBool(b bool) TriState {
	if b {
		return TriTrue
	}
	return TriFalse
}
