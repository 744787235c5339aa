// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package cinterfaces

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeCodeBijection(t *testing.T) {
	t.Parallel()

	for vt := NullValue; vt < numValueTypes; vt++ {
		code := TypeToCode(vt)
		back, ok := LookupCode(code)
		assert.True(t, ok, code)
		assert.Equal(t, vt, back)

		name := TypeName(vt)
		assert.Equal(t, vt, TypeFromName(name))
	}
}

func TestTypeCodes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", TypeToCode(NullValue))
	assert.Equal(t, "6", TypeToCode(LongValue))
	assert.Equal(t, "12", TypeToCode(StringValue))
	assert.Equal(t, "13", TypeToCode(BytesValue))
	assert.Equal(t, "15", TypeToCode(ArrayValue))
	assert.Equal(t, "0", TypeToCode(ValueType(99)))
}

func TestUnknownDefaultsToNull(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"16", "-1", "abc", "", "255"} {
		assert.Equal(t, NullValue, CodeToType(code), code)
	}
	assert.Equal(t, NullValue, TypeFromName("quaternion"))
	assert.Equal(t, "null", TypeName(ValueType(200)))
}

func TestParseType(t *testing.T) {
	t.Parallel()

	vt, ok := ParseType("double")
	assert.True(t, ok)
	assert.Equal(t, DoubleValue, vt)

	vt, ok = ParseType("11")
	assert.True(t, ok)
	assert.Equal(t, DoubleValue, vt)

	_, ok = ParseType("nope")
	assert.False(t, ok)
}

func TestClassification(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		T         ValueType
		Numeric   bool
		Integer   bool
		Floating  bool
		Composite bool
	}{
		{NullValue, false, false, false, false},
		{BoolValue, false, false, false, false},
		{ShortValue, true, true, false, false},
		{ULLongValue, true, true, false, false},
		{FloatValue, true, false, true, false},
		{DoubleValue, true, false, true, false},
		{StringValue, false, false, false, false},
		{ContainerValue, false, false, false, true},
		{ArrayValue, false, false, false, true},
	}

	for _, tc := range testcases {
		assert.Equal(t, tc.Numeric, IsNumeric(tc.T), tc.T.String())
		assert.Equal(t, tc.Integer, IsInteger(tc.T), tc.T.String())
		assert.Equal(t, tc.Floating, IsFloating(tc.T), tc.T.String())
		assert.Equal(t, tc.Composite, IsComposite(tc.T), tc.T.String())
	}
}

func TestFixedSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, FixedSize(NullValue))
	assert.Equal(t, 1, FixedSize(BoolValue))
	assert.Equal(t, 2, FixedSize(UShortValue))
	assert.Equal(t, 4, FixedSize(LongValue))
	assert.Equal(t, 8, FixedSize(DoubleValue))
	assert.Equal(t, -1, FixedSize(StringValue))
}
