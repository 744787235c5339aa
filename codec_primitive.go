// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package container

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"go.e43.eu/container/internal/errors"
)

func mismatch(val Value, to reflect.Type) error {
	return errors.TypeMismatchError{Name: val.Name(), From: val.Type(), To: to.String()}
}

func overflow(val Value, to reflect.Type) error {
	return fmt.Errorf("%w: %s '%s' (%s) overflows %s", errors.ErrRange, val.Type(), val.Name(), val.ToString(), to)
}

// scalar reports whether val has a numeric interpretation
func scalar(val Value) bool {
	switch val.(type) {
	case *BoolValue, *NumericValue, *StringValue:
		return true
	}
	return false
}

// numericText rejects string values which don't hold a number
func numericText(val Value, to reflect.Type) error {
	sv, ok := val.(*StringValue)
	if !ok {
		return nil
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(sv.value), 64); err != nil {
		return fmt.Errorf("%w: '%s' is not a number for %s", errors.ErrInvalidValue, sv.value, to)
	}
	return nil
}

type boolCodec struct{}

func (boolCodec) encode(name string, v reflect.Value) (Value, error) {
	return NewBool(name, v.Bool()), nil
}

func (boolCodec) decode(val Value, v reflect.Value) error {
	if !scalar(val) {
		return mismatch(val, v.Type())
	}
	b, err := val.ToBool()
	if err != nil {
		return err
	}
	v.SetBool(b)
	return nil
}

// intCodec handles the signed integer kinds
type intCodec struct {
	vt ValueType
}

func (c intCodec) encode(name string, v reflect.Value) (Value, error) {
	s := strconv.FormatInt(v.Int(), 10)
	if c.vt == StringType {
		return NewString(name, s), nil
	}
	return parseNumeric(c.vt, name, s)
}

func (c intCodec) decode(val Value, v reflect.Value) error {
	if !scalar(val) {
		return mismatch(val, v.Type())
	}
	if err := numericText(val, v.Type()); err != nil {
		return err
	}
	if isUnsigned(val.Type()) {
		u, err := val.ToULLong()
		if err != nil {
			return err
		}
		if u > 1<<63-1 || v.OverflowInt(int64(u)) {
			return overflow(val, v.Type())
		}
		v.SetInt(int64(u))
		return nil
	}

	i, err := val.ToLLong()
	if err != nil {
		return err
	}
	if v.OverflowInt(i) {
		return overflow(val, v.Type())
	}
	v.SetInt(i)
	return nil
}

// uintCodec handles the unsigned integer kinds
type uintCodec struct {
	vt ValueType
}

func (c uintCodec) encode(name string, v reflect.Value) (Value, error) {
	s := strconv.FormatUint(v.Uint(), 10)
	if c.vt == StringType {
		return NewString(name, s), nil
	}
	return parseNumeric(c.vt, name, s)
}

func (c uintCodec) decode(val Value, v reflect.Value) error {
	if !scalar(val) {
		return mismatch(val, v.Type())
	}
	if err := numericText(val, v.Type()); err != nil {
		return err
	}
	if !isUnsigned(val.Type()) {
		i, err := val.ToLLong()
		if err != nil {
			return err
		}
		if i < 0 {
			return overflow(val, v.Type())
		}
	}

	u, err := val.ToULLong()
	if err != nil {
		return err
	}
	if v.OverflowUint(u) {
		return overflow(val, v.Type())
	}
	v.SetUint(u)
	return nil
}

func isUnsigned(t ValueType) bool {
	switch t {
	case UShortType, UIntType, ULongType, ULLongType:
		return true
	}
	return false
}

type floatCodec struct {
	vt ValueType
}

func (c floatCodec) encode(name string, v reflect.Value) (Value, error) {
	if c.vt == FloatType {
		return NewFloat(name, float32(v.Float())), nil
	}
	return NewDouble(name, v.Float()), nil
}

func (c floatCodec) decode(val Value, v reflect.Value) error {
	if !scalar(val) {
		return mismatch(val, v.Type())
	}
	if err := numericText(val, v.Type()); err != nil {
		return err
	}
	f, err := val.ToDouble()
	if err != nil {
		return err
	}
	if v.OverflowFloat(f) {
		return overflow(val, v.Type())
	}
	v.SetFloat(f)
	return nil
}

// stringCodec handles strings, stored either as string or bytes values
type stringCodec struct {
	vt ValueType
}

func (c stringCodec) encode(name string, v reflect.Value) (Value, error) {
	if c.vt == BytesType {
		return NewBytes(name, []byte(v.String())), nil
	}
	return NewString(name, v.String()), nil
}

func (c stringCodec) decode(val Value, v reflect.Value) error {
	switch val := val.(type) {
	case *BytesValue:
		v.SetString(string(val.data))
	case *ContainerValue, *ArrayValue:
		return mismatch(val, v.Type())
	default:
		v.SetString(val.ToString())
	}
	return nil
}

// bytesCodec handles []byte (and named byte slice types)
type bytesCodec struct{}

func (bytesCodec) encode(name string, v reflect.Value) (Value, error) {
	if v.IsNil() {
		return NewNull(name), nil
	}
	return NewBytes(name, append([]byte(nil), v.Bytes()...)), nil
}

func (bytesCodec) decode(val Value, v reflect.Value) error {
	var data []byte
	switch val := val.(type) {
	case *BytesValue:
		data = val.data
	case *StringValue:
		data = []byte(val.value)
	default:
		return mismatch(val, v.Type())
	}
	b := reflect.MakeSlice(v.Type(), len(data), len(data))
	reflect.Copy(b, reflect.ValueOf(data))
	v.Set(b)
	return nil
}
