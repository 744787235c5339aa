// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package cinterfaces

import (
	"strconv"
	"strings"
)

// ValueType identifies the variant of a value. The numeric code is the wire
// identity of the type and must never change.
type ValueType uint8

const (
	NullValue ValueType = iota
	BoolValue
	ShortValue
	UShortValue
	IntValue
	UIntValue
	LongValue
	ULongValue
	LLongValue
	ULLongValue
	FloatValue
	DoubleValue
	StringValue
	BytesValue
	ContainerValue
	ArrayValue

	numValueTypes
)

var typeNames = [numValueTypes]string{
	NullValue:      "null",
	BoolValue:      "bool",
	ShortValue:     "short",
	UShortValue:    "ushort",
	IntValue:       "int",
	UIntValue:      "uint",
	LongValue:      "long",
	ULongValue:     "ulong",
	LLongValue:     "llong",
	ULLongValue:    "ullong",
	FloatValue:     "float",
	DoubleValue:    "double",
	StringValue:    "string",
	BytesValue:     "bytes",
	ContainerValue: "container",
	ArrayValue:     "array",
}

var typesByName = func() map[string]ValueType {
	m := make(map[string]ValueType, numValueTypes)
	for t, n := range typeNames {
		m[n] = ValueType(t)
	}
	return m
}()

// Valid returns whether t is a member of the closed set of value types
func (t ValueType) Valid() bool {
	return t < numValueTypes
}

// String returns the human readable name of the type ("int", "string", ...)
func (t ValueType) String() string {
	return TypeName(t)
}

// Code returns the wire code of the type
func (t ValueType) Code() string {
	return TypeToCode(t)
}

// TypeToCode returns the decimal wire code for t. Unknown types map to the
// code of NullValue.
func TypeToCode(t ValueType) string {
	if !t.Valid() {
		return "0"
	}
	return strconv.Itoa(int(t))
}

// LookupCode parses a wire type code, reporting whether it was recognised
func LookupCode(code string) (ValueType, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(code), 10, 8)
	if err != nil || !ValueType(n).Valid() {
		return NullValue, false
	}
	return ValueType(n), true
}

// CodeToType parses a wire type code. Unknown or malformed codes map to NullValue.
func CodeToType(code string) ValueType {
	t, _ := LookupCode(code)
	return t
}

// TypeName returns the human readable name of t; unknown types map to "null"
func TypeName(t ValueType) string {
	if !t.Valid() {
		return typeNames[NullValue]
	}
	return typeNames[t]
}

// LookupName resolves a type by name (case insensitive), reporting whether it
// was recognised
func LookupName(name string) (ValueType, bool) {
	t, ok := typesByName[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// TypeFromName resolves a type by name. Unknown names map to NullValue.
func TypeFromName(name string) ValueType {
	t, _ := LookupName(name)
	return t
}

// ParseType accepts either a type name or a decimal wire code
func ParseType(s string) (ValueType, bool) {
	if t, ok := LookupName(s); ok {
		return t, true
	}
	return LookupCode(s)
}

// IsNumeric returns true for every integral and floating point type
func IsNumeric(t ValueType) bool {
	return IsInteger(t) || IsFloating(t)
}

// IsInteger returns true for the integral types, short through ullong
func IsInteger(t ValueType) bool {
	return t >= ShortValue && t <= ULLongValue
}

// IsFloating returns true for float and double
func IsFloating(t ValueType) bool {
	return t == FloatValue || t == DoubleValue
}

// IsComposite returns true for types whose value is a sequence of child values
func IsComposite(t ValueType) bool {
	return t == ContainerValue || t == ArrayValue
}

// IsSigned returns true for the signed integral types
func IsSigned(t ValueType) bool {
	switch t {
	case ShortValue, IntValue, LongValue, LLongValue:
		return true
	}
	return false
}

// FixedSize returns the length of the binary payload of fixed width types, and
// -1 for variable width types
func FixedSize(t ValueType) int {
	switch t {
	case NullValue:
		return 0
	case BoolValue:
		return 1
	case ShortValue, UShortValue:
		return 2
	case IntValue, UIntValue, LongValue, ULongValue, FloatValue:
		return 4
	case LLongValue, ULLongValue, DoubleValue:
		return 8
	}
	return -1
}
