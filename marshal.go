// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package container

import (
	"reflect"
	"sync"
	"sync/atomic"

	"go.e43.eu/container/internal/errors"
	"go.e43.eu/container/internal/tags"
)

// interface ValueMarshaler is implemented by types which build their own
// value. The returned value must carry the given name.
type ValueMarshaler interface {
	MarshalContainerValue(name string) (Value, error)
}

// interface ValueUnmarshaler is implemented by types which decode themselves
// from a value. Null values are handled by the caller and never passed in.
type ValueUnmarshaler interface {
	UnmarshalContainerValue(v Value) error
}

var (
	marshalerType   = reflect.TypeOf((*ValueMarshaler)(nil)).Elem()
	unmarshalerType = reflect.TypeOf((*ValueUnmarshaler)(nil)).Elem()
)

// codec converts between one Go type and values
type codec interface {
	encode(name string, v reflect.Value) (Value, error)
	decode(val Value, v reflect.Value) error
}

type codecKey struct {
	t   reflect.Type
	tag string
}

// binder builds and caches the codec of each Go type
type binder struct {
	codecs sync.Map // map[codecKey]codec
}

func (b *binder) codecFor(t reflect.Type, tag tags.Tag) codec {
	key := codecKey{t, tag.Key()}
	if c, ok := b.codecs.Load(key); ok {
		return c.(codec)
	}

	// Register a placeholder first so that recursive types (and concurrent
	// lookups of this one) find something; it blocks until the real codec is
	// published.
	dc := newDeferredCodec()
	if c, loaded := b.codecs.LoadOrStore(key, dc); loaded {
		return c.(codec)
	}

	c := b.build(t, tag)
	b.codecs.Store(key, c)
	dc.resolve(c)
	return c
}

func (b *binder) build(t reflect.Type, tag tags.Tag) codec {
	// Pointers are dereferenced first so that the methods may have either
	// receiver kind
	pt := reflect.PtrTo(t)
	if !tag.HasType && t.Kind() != reflect.Ptr &&
		pt.Implements(marshalerType) && pt.Implements(unmarshalerType) {
		return marshalerCodec{t}
	}

	vt := tag.Type
	override := func(def ValueType) ValueType {
		if tag.HasType {
			return vt
		}
		return def
	}

	switch t.Kind() {
	case reflect.Bool:
		return boolCodec{}
	case reflect.Int8, reflect.Int16:
		return intCodec{override(ShortType)}
	case reflect.Int32:
		return intCodec{override(IntType)}
	case reflect.Int, reflect.Int64:
		return intCodec{override(LLongType)}
	case reflect.Uint8, reflect.Uint16:
		return uintCodec{override(UShortType)}
	case reflect.Uint32:
		return uintCodec{override(UIntType)}
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return uintCodec{override(ULLongType)}
	case reflect.Float32:
		return floatCodec{override(FloatType)}
	case reflect.Float64:
		return floatCodec{override(DoubleType)}
	case reflect.String:
		return stringCodec{override(StringType)}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 && override(BytesType) == BytesType {
			return bytesCodec{}
		}
		return &sliceCodec{elem: b.codecFor(t.Elem(), tags.Tag{})}
	case reflect.Array:
		return &arrayCodec{len: t.Len(), elem: b.codecFor(t.Elem(), tags.Tag{})}
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return errorCodec{errors.InvalidTypeError{T: t}}
		}
		return &mapCodec{t: t, elem: b.codecFor(t.Elem(), tags.Tag{})}
	case reflect.Struct:
		return b.makeStructCodec(t)
	case reflect.Ptr:
		return &ptrCodec{t: t, elem: b.codecFor(t.Elem(), tag)}
	case reflect.Interface:
		return &interfaceCodec{b: b, t: t}
	default:
		return errorCodec{errors.InvalidTypeError{T: t}}
	}
}

// decodeInto applies c, except that null values zero the destination
func decodeInto(c codec, val Value, v reflect.Value) error {
	if val.IsNull() {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}
	return c.decode(val, v)
}

// codec embedding a fixed, memoised error (generally indicating that a type
// can't be bound)
type errorCodec struct {
	err error
}

func (c errorCodec) encode(string, reflect.Value) (Value, error) {
	return nil, c.err
}

func (c errorCodec) decode(Value, reflect.Value) error {
	return c.err
}

// placeholder codec for types under construction, to handle cycles
type deferredCodec struct {
	real atomic.Value // codec
	wg   sync.WaitGroup
}

func newDeferredCodec() *deferredCodec {
	dc := new(deferredCodec)
	dc.wg.Add(1)
	return dc
}

func (dc *deferredCodec) get() codec {
	real := dc.real.Load()
	if real == nil {
		dc.wg.Wait()
		real = dc.real.Load()
	}
	return real.(codecBox).codec
}

// codecBox gives atomic.Value a single concrete type to store
type codecBox struct {
	codec
}

func (dc *deferredCodec) encode(name string, v reflect.Value) (Value, error) {
	return dc.get().encode(name, v)
}

func (dc *deferredCodec) decode(val Value, v reflect.Value) error {
	return dc.get().decode(val, v)
}

func (dc *deferredCodec) resolve(real codec) {
	dc.real.Store(codecBox{real})
	dc.wg.Done()
}

// marshalerCodec handles types which convert themselves
type marshalerCodec struct {
	t reflect.Type
}

func (c marshalerCodec) encode(name string, v reflect.Value) (Value, error) {
	if v.CanAddr() {
		v = v.Addr()
	} else {
		p := reflect.New(c.t)
		p.Elem().Set(v)
		v = p
	}
	return v.Interface().(ValueMarshaler).MarshalContainerValue(name)
}

func (c marshalerCodec) decode(val Value, v reflect.Value) error {
	return v.Addr().Interface().(ValueUnmarshaler).UnmarshalContainerValue(val)
}
