// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package container

import (
	"encoding/base64"
	"strconv"
	"strings"

	"go.e43.eu/container/internal/errors"
	"go.e43.eu/container/internal/wire"
)

const nullText = "null"

// NullValue is a value which is present but carries no data
type NullValue struct {
	base
}

// NewNull constructs a null value
func NewNull(name string) *NullValue {
	return &NullValue{base{name: name, vt: NullType}}
}

func (v *NullValue) Data() []byte { return nil }
func (v *NullValue) Size() int { return 0 }
func (v *NullValue) ToString() string { return nullText }
func (v *NullValue) ToBytes() []byte { return nil }
func (v *NullValue) Serialize() string { return serialize(v) }
func (v *NullValue) ToXML() string { return toXML(v) }
func (v *NullValue) ToJSON() (string, error) { return valueJSON(v) }

func (v *NullValue) appendWire(b *strings.Builder) {
	wire.AppendTuple(b, v.name, NullType.Code(), nullText)
}

// BoolValue holds a boolean
type BoolValue struct {
	base
	value bool
}

// NewBool constructs a boolean value
func NewBool(name string, value bool) *BoolValue {
	n := uint64(0)
	if value {
		n = 1
	}
	return &BoolValue{base{name: name, vt: BoolType, view: viewOfUint(n)}, value}
}

// Value returns the boolean
func (v *BoolValue) Value() bool {
	return v.value
}

func (v *BoolValue) Data() []byte {
	if v.value {
		return []byte{1}
	}
	return []byte{0}
}

func (v *BoolValue) Size() int { return 1 }

func (v *BoolValue) ToString() string {
	return strconv.FormatBool(v.value)
}

func (v *BoolValue) ToBytes() []byte { return v.Data() }
func (v *BoolValue) Serialize() string { return serialize(v) }
func (v *BoolValue) ToXML() string { return toXML(v) }
func (v *BoolValue) ToJSON() (string, error) { return valueJSON(v) }

func (v *BoolValue) appendWire(b *strings.Builder) {
	wire.AppendTuple(b, v.name, BoolType.Code(), v.ToString())
}

func parseBool(name, s string) (*BoolValue, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return NewBool(name, true), nil
	case "false", "0":
		return NewBool(name, false), nil
	default:
		return nil, errors.Decode("text", -1, "invalid bool '%s'", s)
	}
}

// StringValue holds text. The payload is kept byte for byte; invalid UTF-8
// is carried unchanged through the wire and binary forms.
type StringValue struct {
	base
	value string
}

// NewString constructs a string value
func NewString(name, value string) *StringValue {
	return &StringValue{base{name: name, vt: StringType, view: stringView(value)}, value}
}

// stringView parses the numeric interpretation of a string. Unparsable text
// has a zero view (but is still true if non-empty).
func stringView(s string) numView {
	t := strings.TrimSpace(s)
	if i, err := strconv.ParseInt(t, 10, 64); err == nil {
		return viewOfInt(i)
	}
	if u, err := strconv.ParseUint(t, 10, 64); err == nil {
		return viewOfUint(u)
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return viewOfFloat(f)
	}
	if b, err := strconv.ParseBool(t); err == nil {
		return numView{b: b}
	}
	return numView{b: s != ""}
}

// Value returns the string
func (v *StringValue) Value() string {
	return v.value
}

func (v *StringValue) Data() []byte { return []byte(v.value) }
func (v *StringValue) Size() int { return len(v.value) }
func (v *StringValue) ToString() string { return v.value }
func (v *StringValue) ToBytes() []byte { return v.Data() }
func (v *StringValue) Serialize() string { return serialize(v) }
func (v *StringValue) ToXML() string { return toXML(v) }
func (v *StringValue) ToJSON() (string, error) { return valueJSON(v) }

func (v *StringValue) appendWire(b *strings.Builder) {
	wire.AppendTuple(b, v.name, StringType.Code(), v.value)
}

func stringFromBytes(name string, data []byte) (*StringValue, error) {
	return NewString(name, string(data)), nil
}

// BytesValue holds an opaque byte payload
type BytesValue struct {
	base
	data []byte
}

// NewBytes constructs a bytes value. The value takes ownership of data.
func NewBytes(name string, data []byte) *BytesValue {
	if data == nil {
		data = []byte{}
	}
	return &BytesValue{base{name: name, vt: BytesType}, data}
}

// Value returns the payload. It must not be modified.
func (v *BytesValue) Value() []byte {
	return v.data
}

func (v *BytesValue) Data() []byte { return v.data }
func (v *BytesValue) Size() int { return len(v.data) }

func (v *BytesValue) ToString() string {
	return base64.StdEncoding.EncodeToString(v.data)
}

func (v *BytesValue) ToBytes() []byte { return append([]byte(nil), v.data...) }
func (v *BytesValue) Serialize() string { return serialize(v) }
func (v *BytesValue) ToXML() string { return toXML(v) }
func (v *BytesValue) ToJSON() (string, error) { return valueJSON(v) }

func (v *BytesValue) appendWire(b *strings.Builder) {
	wire.AppendTuple(b, v.name, BytesType.Code(), v.ToString())
}

func parseBytes(name, s string) (*BytesValue, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.DecodeError{Format: "text", Offset: -1, Reason: "invalid base64 in '" + name + "'", Err: err}
	}
	return NewBytes(name, data), nil
}
