// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package container

import (
	"math"
	"strconv"
	"strings"

	cinterfaces "go.e43.eu/container/interfaces"
	"go.e43.eu/container/internal/binary"
	"go.e43.eu/container/internal/errors"
	"go.e43.eu/container/internal/wire"
)

// NumericValue holds any of the integral or floating point types. The value
// is stored at 64-bit precision, and is always within the range of its type.
type NumericValue struct {
	base
}

func newNumeric(name string, t ValueType, view numView) *NumericValue {
	return &NumericValue{base{name: name, vt: t, view: view}}
}

func NewShort(name string, v int16) *NumericValue {
	return newNumeric(name, ShortType, viewOfInt(int64(v)))
}

func NewUShort(name string, v uint16) *NumericValue {
	return newNumeric(name, UShortType, viewOfUint(uint64(v)))
}

func NewInt(name string, v int32) *NumericValue {
	return newNumeric(name, IntType, viewOfInt(int64(v)))
}

func NewUInt(name string, v uint32) *NumericValue {
	return newNumeric(name, UIntType, viewOfUint(uint64(v)))
}

// NewLong constructs a long value. Longs are 32 bits wide on the wire
// regardless of platform; values outside the int32 range are rejected with a
// RangeError (use NewLLong for those).
func NewLong(name string, v int64) (*NumericValue, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return nil, errors.RangeError{
			Type:    LongType,
			Value:   strconv.FormatInt(v, 10),
			Min:     strconv.FormatInt(math.MinInt32, 10),
			Max:     strconv.FormatInt(math.MaxInt32, 10),
			Suggest: LLongType,
		}
	}
	return newNumeric(name, LongType, viewOfInt(v)), nil
}

// NewULong constructs an unsigned long value. Unsigned longs are 32 bits wide
// on the wire; values outside the uint32 range (including negative values) are
// rejected with a RangeError (use NewULLong for those).
func NewULong(name string, v int64) (*NumericValue, error) {
	if v < 0 || v > math.MaxUint32 {
		return nil, ulongRangeError(strconv.FormatInt(v, 10))
	}
	return newNumeric(name, ULongType, viewOfUint(uint64(v))), nil
}

func ulongRangeError(v string) error {
	return errors.RangeError{
		Type:    ULongType,
		Value:   v,
		Min:     "0",
		Max:     strconv.FormatUint(math.MaxUint32, 10),
		Suggest: ULLongType,
	}
}

func NewLLong(name string, v int64) *NumericValue {
	return newNumeric(name, LLongType, viewOfInt(v))
}

func NewULLong(name string, v uint64) *NumericValue {
	return newNumeric(name, ULLongType, viewOfUint(v))
}

func NewFloat(name string, v float32) *NumericValue {
	return newNumeric(name, FloatType, viewOfFloat(float64(v)))
}

func NewDouble(name string, v float64) *NumericValue {
	return newNumeric(name, DoubleType, viewOfFloat(v))
}

// Int64 returns the value of a signed integral type (or the conversion of any
// other numeric type)
func (v *NumericValue) Int64() int64 {
	return v.view.i
}

// Uint64 returns the value of an unsigned integral type (or the conversion of
// any other numeric type)
func (v *NumericValue) Uint64() uint64 {
	return v.view.u
}

// Float64 returns the value of a floating point type (or the conversion of any
// other numeric type)
func (v *NumericValue) Float64() float64 {
	return v.view.f
}

func (v *NumericValue) Data() []byte {
	e := binary.NewEncoder()
	defer e.Release()

	switch v.vt {
	case ShortType:
		e.EncodeInt16(int16(v.view.i))
	case UShortType:
		e.EncodeUint16(uint16(v.view.u))
	case IntType, LongType:
		e.EncodeInt32(int32(v.view.i))
	case UIntType, ULongType:
		e.EncodeUint32(uint32(v.view.u))
	case FloatType:
		e.EncodeFloat32(float32(v.view.f))
	case DoubleType:
		e.EncodeFloat64(v.view.f)
	case LLongType:
		e.EncodeInt64(v.view.i)
	default: // ULLongType
		e.EncodeUint64(v.view.u)
	}
	return e.Bytes()
}

func (v *NumericValue) Size() int {
	return cinterfaces.FixedSize(v.vt)
}

func (v *NumericValue) ToString() string {
	switch {
	case v.vt == FloatType:
		return strconv.FormatFloat(v.view.f, 'g', -1, 32)
	case v.vt == DoubleType:
		return strconv.FormatFloat(v.view.f, 'g', -1, 64)
	case cinterfaces.IsSigned(v.vt):
		return strconv.FormatInt(v.view.i, 10)
	default:
		return strconv.FormatUint(v.view.u, 10)
	}
}

func (v *NumericValue) ToBytes() []byte { return v.Data() }
func (v *NumericValue) Serialize() string { return serialize(v) }
func (v *NumericValue) ToXML() string { return toXML(v) }
func (v *NumericValue) ToJSON() (string, error) { return valueJSON(v) }

func (v *NumericValue) appendWire(b *strings.Builder) {
	wire.AppendTuple(b, v.name, v.vt.Code(), v.ToString())
}

// bitsOf returns the width in bits of an integral type on the wire
func bitsOf(t ValueType) int {
	return cinterfaces.FixedSize(t) * 8
}

func widerType(t ValueType) ValueType {
	switch t {
	case ShortType, IntType, LongType:
		return LLongType
	case UShortType, UIntType, ULongType:
		return ULLongType
	default:
		return t
	}
}

func intRangeError(t ValueType, s string) error {
	bits := uint(bitsOf(t))
	if cinterfaces.IsSigned(t) {
		return errors.RangeError{
			Type:    t,
			Value:   s,
			Min:     strconv.FormatInt(-1<<(bits-1), 10),
			Max:     strconv.FormatInt(1<<(bits-1)-1, 10),
			Suggest: widerType(t),
		}
	}
	return errors.RangeError{
		Type:    t,
		Value:   s,
		Min:     "0",
		Max:     strconv.FormatUint(1<<bits-1, 10),
		Suggest: widerType(t),
	}
}

// parseNumeric parses the decimal text form of a numeric type
func parseNumeric(t ValueType, name, s string) (*NumericValue, error) {
	s = strings.TrimSpace(s)

	if cinterfaces.IsFloating(t) {
		bits := 64
		if t == FloatType {
			bits = 32
		}
		f, err := strconv.ParseFloat(s, bits)
		switch {
		case isRangeErr(err):
			max := strconv.FormatFloat(math.MaxFloat32, 'g', -1, 32)
			if t == DoubleType {
				max = strconv.FormatFloat(math.MaxFloat64, 'g', -1, 64)
			}
			return nil, errors.RangeError{Type: t, Value: s, Min: "-" + max, Max: max, Suggest: DoubleType}
		case err != nil:
			return nil, errors.DecodeError{Format: "text", Offset: -1, Reason: "invalid " + t.String() + " '" + s + "'", Err: err}
		}
		return newNumeric(name, t, viewOfFloat(f)), nil
	}

	if cinterfaces.IsSigned(t) {
		i, err := strconv.ParseInt(s, 10, bitsOf(t))
		switch {
		case isRangeErr(err):
			return nil, intRangeError(t, s)
		case err != nil:
			return nil, errors.DecodeError{Format: "text", Offset: -1, Reason: "invalid " + t.String() + " '" + s + "'", Err: err}
		}
		return newNumeric(name, t, viewOfInt(i)), nil
	}

	u, err := strconv.ParseUint(s, 10, bitsOf(t))
	switch {
	case isRangeErr(err) || (err != nil && strings.HasPrefix(s, "-")):
		return nil, intRangeError(t, s)
	case err != nil:
		return nil, errors.DecodeError{Format: "text", Offset: -1, Reason: "invalid " + t.String() + " '" + s + "'", Err: err}
	}
	return newNumeric(name, t, viewOfUint(u)), nil
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

// numericFromBytes decodes the little-endian payload of a numeric type
func numericFromBytes(t ValueType, name string, data []byte) (*NumericValue, error) {
	if n := cinterfaces.FixedSize(t); len(data) != n {
		return nil, errors.Decode("binary", -1, "%s '%s' payload is %d bytes, expected %d", t, name, len(data), n)
	}

	switch t {
	case ShortType:
		return NewShort(name, int16(binary.Uint16(data))), nil
	case UShortType:
		return NewUShort(name, binary.Uint16(data)), nil
	case IntType, LongType:
		return newNumeric(name, t, viewOfInt(int64(int32(binary.Uint32(data))))), nil
	case UIntType, ULongType:
		return newNumeric(name, t, viewOfUint(uint64(binary.Uint32(data)))), nil
	case LLongType:
		return NewLLong(name, int64(binary.Uint64(data))), nil
	case ULLongType:
		return NewULLong(name, binary.Uint64(data)), nil
	case FloatType:
		return NewFloat(name, math.Float32frombits(binary.Uint32(data))), nil
	case DoubleType:
		return NewDouble(name, math.Float64frombits(binary.Uint64(data))), nil
	default:
		panic("unreachable")
	}
}
