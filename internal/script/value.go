package script

import (
	"math"
	"strconv"
)

// ValueKind discriminates the shapes a property value can take.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueString
	ValueBool
	ValueNumber
	// Non-scalar shapes. They are carried through transforms but never
	// serialized into generated code.
	ValueObject
	ValueFunc
	ValueElement
)

func (k ValueKind) String() string {
	switch k {
	case ValueNull:
		return "null"
	case ValueString:
		return "string"
	case ValueBool:
		return "bool"
	case ValueNumber:
		return "number"
	case ValueObject:
		return "object"
	case ValueFunc:
		return "func"
	case ValueElement:
		return "element"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single property value.
type Value struct {
	Kind ValueKind
	Str  string
	Bool bool
	Num  float64
}

// String returns a string value.
func String(s string) Value { return Value{Kind: ValueString, Str: s} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{Kind: ValueNumber, Num: f} }

// Null returns the null value.
func Null() Value { return Value{Kind: ValueNull} }

// Object returns an opaque nested-object value. desc is kept for debugging only.
func Object(desc string) Value { return Value{Kind: ValueObject, Str: desc} }

// Func returns an opaque callback value (an event handler, for example).
func Func(name string) Value { return Value{Kind: ValueFunc, Str: name} }

// IsScalar reports whether the value is a string, boolean or number.
func (v Value) IsScalar() bool {
	switch v.Kind {
	case ValueString, ValueBool, ValueNumber:
		return true
	}
	return false
}

// Truthy reports whether the value is truthy under JavaScript rules.
// Opaque objects and callbacks are always truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case ValueString:
		return v.Str != ""
	case ValueBool:
		return v.Bool
	case ValueNumber:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case ValueObject, ValueFunc, ValueElement:
		return true
	}
	return false
}

// Text renders a scalar the way JavaScript's String() would.
// Non-scalars render as an empty string.
func (v Value) Text() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueNumber:
		return FormatNumber(v.Num)
	}
	return ""
}

// FormatNumber formats f as a JavaScript number literal.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
