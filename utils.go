// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package container

import (
	"reflect"

	"go.e43.eu/container/internal/errors"
	"go.e43.eu/container/internal/tags"
)

// The binder used by the package functions. Codecs are built on first use of
// each Go type and shared by every goroutine.
var defaultBinder binder

// Marshal converts a struct, or a map with string keys, into a container. Each
// field or entry becomes one top level value.
//
// Go types map to value types as follows:
//
//     bool                   bool
//     int8, int16            short
//     uint8, uint16          ushort
//     int32                  int
//     uint32                 uint
//     int, int64             llong
//     uint, uint64           ullong
//     float32, float64       float, double
//     string                 string
//     []byte                 bytes
//     slices and arrays      array (elements named by index)
//     structs, map[string]T  container (map keys in sorted order)
//     nil pointer            null
//
// Fields may be tagged `container:"name,options"`. The name defaults to the
// field name; `-` skips the field. Options are `omitempty` and a type override
// such as `long`, `ulong`, `string` or `bytes`. Unexported fields are ignored.
func Marshal(v interface{}) (*Container, error) {
	val, err := MarshalValue("", v)
	if err != nil {
		return nil, err
	}
	cv, ok := val.(*ContainerValue)
	if !ok {
		return nil, errors.InvalidTypeError{T: reflect.TypeOf(v)}
	}

	c := New()
	children := cv.children
	cv.children = nil
	c.Add(children...)
	return c, nil
}

// Unmarshal decodes the values of c into the struct or map pointed to by ptr.
// Values with no corresponding field are ignored, as are fields with no
// corresponding value.
func Unmarshal(c *Container, ptr interface{}) error {
	// The units are wrapped without reparenting them
	cv := &ContainerValue{base: base{vt: ContainerType}, children: c.Units()}
	return UnmarshalValue(cv, ptr)
}

// MarshalValue converts an arbitrary supported Go value into a value with the
// given name
func MarshalValue(name string, v interface{}) (Value, error) {
	if v == nil {
		return NewNull(name), nil
	}
	rv := reflect.ValueOf(v)
	return defaultBinder.codecFor(rv.Type(), tags.Tag{}).encode(name, rv)
}

// UnmarshalValue decodes val into the Go value pointed to by ptr
func UnmarshalValue(val Value, ptr interface{}) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.ErrNotPointer
	}
	elem := rv.Elem()
	return decodeInto(defaultBinder.codecFor(elem.Type(), tags.Tag{}), val, elem)
}
