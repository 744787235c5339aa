// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package msgpack packs plain Go values (and containers) as MessagePack.
//
// Pack accepts nil, bool, every integer width, float32 and float64 (both
// emitted as 64-bit floats), string, []byte, slices and arrays, and maps with
// string keys, whose keys are written in sorted order so that equal inputs
// produce equal bytes. Unpack yields nil, bool, int64 (uint64 for values above
// math.MaxInt64), float64, string, []byte, []interface{} and
// map[string]interface{}.
package msgpack

import (
	"bytes"
	stderrors "errors"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"sync"

	logger "github.com/multiversx/mx-chain-logger-go"
	vmsgpack "github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
	"go.e43.eu/container/internal/errors"
)

var log = logger.GetOrCreate("container/msgpack")

const format = "msgpack"

type encoderPoolEntry struct {
	buf *bytes.Buffer
	enc *vmsgpack.Encoder
}

var encoderPool = sync.Pool{
	New: func() interface{} {
		buf := new(bytes.Buffer)
		return &encoderPoolEntry{buf: buf, enc: vmsgpack.NewEncoder(buf)}
	},
}

// Pack encodes v as MessagePack
func Pack(v interface{}) ([]byte, error) {
	entry := encoderPool.Get().(*encoderPoolEntry)
	defer encoderPool.Put(entry)
	entry.buf.Reset()

	if err := pack(entry.enc, v); err != nil {
		return nil, err
	}

	// Copy result before returning to pool
	out := make([]byte, entry.buf.Len())
	copy(out, entry.buf.Bytes())
	return out, nil
}

func pack(enc *vmsgpack.Encoder, v interface{}) error {
	switch v := v.(type) {
	case nil:
		return enc.EncodeNil()
	case bool:
		return enc.EncodeBool(v)
	case int:
		return enc.EncodeInt(int64(v))
	case int8:
		return enc.EncodeInt(int64(v))
	case int16:
		return enc.EncodeInt(int64(v))
	case int32:
		return enc.EncodeInt(int64(v))
	case int64:
		return enc.EncodeInt(v)
	case uint:
		return enc.EncodeUint(uint64(v))
	case uint8:
		return enc.EncodeUint(uint64(v))
	case uint16:
		return enc.EncodeUint(uint64(v))
	case uint32:
		return enc.EncodeUint(uint64(v))
	case uint64:
		return enc.EncodeUint(v)
	case float32:
		return enc.EncodeFloat64(float64(v))
	case float64:
		return enc.EncodeFloat64(v)
	case string:
		return enc.EncodeString(v)
	case []byte:
		if v == nil {
			return enc.EncodeNil()
		}
		return enc.EncodeBytes(v)
	case []interface{}:
		if v == nil {
			return enc.EncodeNil()
		}
		if err := enc.EncodeArrayLen(len(v)); err != nil {
			return err
		}
		for i, e := range v {
			if err := pack(enc, e); err != nil {
				return errors.WithFieldError(err, strconv.Itoa(i))
			}
		}
		return nil
	case map[string]interface{}:
		if v == nil {
			return enc.EncodeNil()
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if err := enc.EncodeMapLen(len(keys)); err != nil {
			return err
		}
		for _, k := range keys {
			if err := enc.EncodeString(k); err != nil {
				return err
			}
			if err := pack(enc, v[k]); err != nil {
				return errors.WithFieldError(err, k)
			}
		}
		return nil
	default:
		return packReflect(enc, reflect.ValueOf(v))
	}
}

// packReflect handles named types and typed slices and maps
func packReflect(enc *vmsgpack.Encoder, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Bool:
		return enc.EncodeBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return enc.EncodeInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return enc.EncodeUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return enc.EncodeFloat64(rv.Float())
	case reflect.String:
		return enc.EncodeString(rv.String())
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return enc.EncodeNil()
		}
		return pack(enc, rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return enc.EncodeNil()
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return enc.EncodeBytes(rv.Bytes())
		}
		fallthrough
	case reflect.Array:
		if err := enc.EncodeArrayLen(rv.Len()); err != nil {
			return err
		}
		for i := 0; i < rv.Len(); i++ {
			if err := pack(enc, rv.Index(i).Interface()); err != nil {
				return errors.WithFieldError(err, strconv.Itoa(i))
			}
		}
		return nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return errors.InvalidTypeError{T: rv.Type()}
		}
		if rv.IsNil() {
			return enc.EncodeNil()
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return keys[i].String() < keys[j].String()
		})
		if err := enc.EncodeMapLen(len(keys)); err != nil {
			return err
		}
		for _, k := range keys {
			if err := enc.EncodeString(k.String()); err != nil {
				return err
			}
			if err := pack(enc, rv.MapIndex(k).Interface()); err != nil {
				return errors.WithFieldError(err, k.String())
			}
		}
		return nil
	default:
		return errors.InvalidTypeError{T: rv.Type()}
	}
}

// Unpack decodes a single MessagePack value occupying all of b
func Unpack(b []byte) (interface{}, error) {
	r := bytes.NewReader(b)
	dec := vmsgpack.NewDecoder(r)

	v, err := unpack(dec, r, len(b))
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, errors.Decode(format, len(b)-r.Len(), "%d trailing bytes", r.Len())
	}
	return v, nil
}

func unpack(dec *vmsgpack.Decoder, r *bytes.Reader, size int) (interface{}, error) {
	offset := func() int { return size - r.Len() }

	c, err := dec.PeekCode()
	if err != nil {
		return nil, readError(err, offset(), "value")
	}

	switch {
	case c == msgpcode.Nil:
		return nil, readError(dec.DecodeNil(), offset(), "nil")

	case c == msgpcode.False || c == msgpcode.True:
		v, err := dec.DecodeBool()
		return v, readError(err, offset(), "bool")

	case c == msgpcode.Uint8 || c == msgpcode.Uint16 || c == msgpcode.Uint32 || c == msgpcode.Uint64:
		u, err := dec.DecodeUint64()
		if err != nil {
			return nil, readError(err, offset(), "uint")
		}
		if u > math.MaxInt64 {
			return u, nil
		}
		return int64(u), nil

	case msgpcode.IsFixedNum(c) ||
		c == msgpcode.Int8 || c == msgpcode.Int16 || c == msgpcode.Int32 || c == msgpcode.Int64:
		v, err := dec.DecodeInt64()
		return v, readError(err, offset(), "int")

	case c == msgpcode.Float || c == msgpcode.Double:
		v, err := dec.DecodeFloat64()
		return v, readError(err, offset(), "float")

	case msgpcode.IsString(c):
		v, err := dec.DecodeString()
		return v, readError(err, offset(), "string")

	case msgpcode.IsBin(c):
		v, err := dec.DecodeBytes()
		return v, readError(err, offset(), "bin")

	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, readError(err, offset(), "array length")
		}
		// Every element takes at least one byte
		if n > r.Len() {
			return nil, errors.Truncated(format, offset(), "array")
		}
		out := make([]interface{}, n)
		for i := range out {
			if out[i], err = unpack(dec, r, size); err != nil {
				return nil, errors.WithFieldError(err, strconv.Itoa(i))
			}
		}
		return out, nil

	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return nil, readError(err, offset(), "map length")
		}
		if 2*n > r.Len() {
			return nil, errors.Truncated(format, offset(), "map")
		}
		out := make(map[string]interface{}, n)
		for i := 0; i < n; i++ {
			at := offset()
			k, err := unpack(dec, r, size)
			if err != nil {
				return nil, err
			}
			key, ok := k.(string)
			if !ok {
				return nil, errors.Decode(format, at, "map key of type %T, expected string", k)
			}
			if out[key], err = unpack(dec, r, size); err != nil {
				return nil, errors.WithFieldError(err, key)
			}
		}
		return out, nil

	default:
		log.Debug("unsupported msgpack code", "code", c, "offset", offset())
		return nil, errors.Decode(format, offset(), "unsupported code 0x%02x", c)
	}
}

// readError converts an error from the underlying decoder into a DecodeError
func readError(err error, offset int, what string) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF):
		return errors.Truncated(format, offset, what)
	default:
		return errors.DecodeError{Format: format, Offset: offset, Reason: "invalid " + what, Err: err}
	}
}
