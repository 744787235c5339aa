// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package container

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	cinterfaces "go.e43.eu/container/interfaces"
	"go.e43.eu/container/internal/errors"
	"go.e43.eu/container/internal/tags"
)

// elementsOf returns the children of a composite value
func elementsOf(val Value, to reflect.Type) ([]Value, error) {
	switch val := val.(type) {
	case *ArrayValue:
		return val.elements, nil
	case *ContainerValue:
		return val.children, nil
	default:
		return nil, mismatch(val, to)
	}
}

// sliceCodec maps slices onto arrays. Elements are named by their index.
type sliceCodec struct {
	elem codec
}

func (c *sliceCodec) encode(name string, v reflect.Value) (Value, error) {
	if v.IsNil() {
		return NewNull(name), nil
	}
	return encodeElements(c.elem, name, v)
}

func encodeElements(elem codec, name string, v reflect.Value) (Value, error) {
	elements := make([]Value, v.Len())
	for i := range elements {
		idx := strconv.Itoa(i)
		e, err := elem.encode(idx, v.Index(i))
		if err != nil {
			return nil, errors.WithFieldError(err, name, idx)
		}
		elements[i] = e
	}
	return NewArrayValue(name, elements...), nil
}

func (c *sliceCodec) decode(val Value, v reflect.Value) error {
	elements, err := elementsOf(val, v.Type())
	if err != nil {
		return err
	}

	s := reflect.MakeSlice(v.Type(), len(elements), len(elements))
	for i, e := range elements {
		if err := decodeInto(c.elem, e, s.Index(i)); err != nil {
			return errors.WithFieldError(err, val.Name(), strconv.Itoa(i))
		}
	}
	v.Set(s)
	return nil
}

// arrayCodec maps fixed length Go arrays onto arrays of exactly that length
type arrayCodec struct {
	len  int
	elem codec
}

func (c *arrayCodec) encode(name string, v reflect.Value) (Value, error) {
	return encodeElements(c.elem, name, v)
}

func (c *arrayCodec) decode(val Value, v reflect.Value) error {
	elements, err := elementsOf(val, v.Type())
	if err != nil {
		return err
	}
	if len(elements) != c.len {
		return fmt.Errorf("%w: %d elements for %s", errors.ErrInvalidValue, len(elements), v.Type())
	}

	for i, e := range elements {
		if err := decodeInto(c.elem, e, v.Index(i)); err != nil {
			return errors.WithFieldError(err, val.Name(), strconv.Itoa(i))
		}
	}
	return nil
}

// mapCodec maps string keyed maps onto containers. Keys are emitted in sorted
// order; on decode, later duplicate names overwrite earlier ones.
type mapCodec struct {
	t    reflect.Type
	elem codec
}

func (c *mapCodec) encode(name string, v reflect.Value) (Value, error) {
	if v.IsNil() {
		return NewNull(name), nil
	}

	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	children := make([]Value, 0, len(keys))
	for _, k := range keys {
		child, err := c.elem.encode(k.String(), v.MapIndex(k))
		if err != nil {
			return nil, errors.WithFieldError(err, name, k.String())
		}
		children = append(children, child)
	}
	return NewContainerValue(name, children...), nil
}

func (c *mapCodec) decode(val Value, v reflect.Value) error {
	children, err := elementsOf(val, v.Type())
	if err != nil {
		return err
	}

	m := reflect.MakeMapWithSize(c.t, len(children))
	for _, child := range children {
		e := reflect.New(c.t.Elem()).Elem()
		if err := decodeInto(c.elem, child, e); err != nil {
			return errors.WithFieldError(err, val.Name(), child.Name())
		}
		m.SetMapIndex(reflect.ValueOf(child.Name()).Convert(c.t.Key()), e)
	}
	v.Set(m)
	return nil
}

type field struct {
	name      string
	index     int
	omitEmpty bool
	codec     codec
}

// structCodec maps structs onto containers, one child per exported field
type structCodec struct {
	name   string
	fields []field
}

func (b *binder) makeStructCodec(t reflect.Type) codec {
	c := &structCodec{name: t.Name()}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}

		tag, err := tags.ParseStructTag(f)
		if err != nil {
			return errorCodec{fmt.Errorf("Parsing tag of field '%s' of '%s': %w", f.Name, t, err)}
		}
		if tag.Skip {
			continue
		}

		c.fields = append(c.fields, field{
			name:      tag.Name,
			index:     i,
			omitEmpty: tag.OmitEmpty,
			codec:     b.codecFor(f.Type, tag),
		})
	}
	return c
}

func (c *structCodec) encode(name string, v reflect.Value) (Value, error) {
	children := make([]Value, 0, len(c.fields))
	for _, f := range c.fields {
		fv := v.Field(f.index)
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		child, err := f.codec.encode(f.name, fv)
		if err != nil {
			return nil, errors.WithFieldError(err, c.name, f.name)
		}
		children = append(children, child)
	}
	return NewContainerValue(name, children...), nil
}

func (c *structCodec) decode(val Value, v reflect.Value) error {
	children, err := elementsOf(val, v.Type())
	if err != nil {
		return err
	}

	for _, f := range c.fields {
		child := nthNamed(children, f.name, 0)
		if child == nil {
			continue
		}
		if err := decodeInto(f.codec, child, v.Field(f.index)); err != nil {
			return errors.WithFieldError(err, c.name, f.name)
		}
	}
	return nil
}

// ptrCodec maps nil pointers to null and otherwise encodes the pointee
type ptrCodec struct {
	t    reflect.Type
	elem codec
}

func (c *ptrCodec) encode(name string, v reflect.Value) (Value, error) {
	if v.IsNil() {
		return NewNull(name), nil
	}
	return c.elem.encode(name, v.Elem())
}

func (c *ptrCodec) decode(val Value, v reflect.Value) error {
	if v.IsNil() {
		v.Set(reflect.New(c.t.Elem()))
	}
	return decodeInto(c.elem, val, v.Elem())
}

// interfaceCodec encodes by dynamic type. Only the empty interface can be
// decoded into, producing bool, int64, uint64, float64, string, []byte,
// []interface{} or map[string]interface{}.
type interfaceCodec struct {
	b *binder
	t reflect.Type
}

func (c *interfaceCodec) encode(name string, v reflect.Value) (Value, error) {
	if v.IsNil() {
		return NewNull(name), nil
	}
	e := v.Elem()
	return c.b.codecFor(e.Type(), tags.Tag{}).encode(name, e)
}

func (c *interfaceCodec) decode(val Value, v reflect.Value) error {
	if c.t.NumMethod() != 0 {
		return errors.InvalidTypeError{T: c.t}
	}
	nv := Native(val)
	if nv == nil {
		v.Set(reflect.Zero(c.t))
		return nil
	}
	v.Set(reflect.ValueOf(nv))
	return nil
}

// Native converts a value into the plain Go value it holds: nil, bool, int64
// (signed integers), uint64 (unsigned integers), float64, string, []byte,
// []interface{} (arrays) or map[string]interface{} (containers; the first
// child wins for duplicate names).
func Native(val Value) interface{} {
	switch val := val.(type) {
	case *NullValue:
		return nil
	case *BoolValue:
		return val.value
	case *NumericValue:
		switch {
		case cinterfaces.IsSigned(val.vt):
			return val.view.i
		case isUnsigned(val.vt):
			return val.view.u
		default:
			return val.view.f
		}
	case *StringValue:
		return val.value
	case *BytesValue:
		return append([]byte(nil), val.data...)
	case *ArrayValue:
		out := make([]interface{}, len(val.elements))
		for i, e := range val.elements {
			out[i] = Native(e)
		}
		return out
	case *ContainerValue:
		out := make(map[string]interface{}, len(val.children))
		for _, ch := range val.children {
			if _, dup := out[ch.Name()]; !dup {
				out[ch.Name()] = Native(ch)
			}
		}
		return out
	default:
		return nil
	}
}
