// Package filmcsv reads and writes the CSV exports produced by Letterboxd.
package filmcsv

import (
	"math"
	"strconv"
)

// Kind identifies the type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "null"
	}
}

// Value is a single CSV cell: null, a number, or a string.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// NullValue returns the empty cell.
func NullValue() Value { return Value{} }

// NumberValue wraps a number.
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }

// StringValue wraps a string. An empty string is still a string, not null.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Number returns the numeric value and whether the cell holds a number.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Text returns the string value and whether the cell holds a string.
func (v Value) Text() (string, bool) {
	return v.str, v.kind == KindString
}

// String renders the cell as it appears in CSV output, before escaping.
// Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return formatNumber(v.num)
	case KindString:
		return v.str
	default:
		return ""
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// parseNumber accepts only canonical numeric text, i.e. text that formats back
// to itself. "2000" and "3.5" are numbers; "007", "1e3" and "+4" stay strings.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	if formatNumber(f) != s {
		return 0, false
	}
	return f, true
}

// parseValue classifies a raw field.
func parseValue(raw string) Value {
	if raw == "" {
		return NullValue()
	}
	if f, ok := parseNumber(raw); ok {
		return NumberValue(f)
	}
	return StringValue(raw)
}
