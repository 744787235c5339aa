// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package binary implements the little-endian primitives shared by the binary
// value payloads and the binary ValueStore format.
//
// Every multi-byte quantity is written least significant byte first, regardless
// of the host platform.
package binary

import (
	"math"
	"sync"

	"go.e43.eu/container/internal/errors"
)

// Longest length prefix which may be encoded
var maxLength uint64 = math.MaxUint32

var encoderPool = sync.Pool{
	New: func() interface{} {
		return &Encoder{b: make([]byte, 0, 256)}
	},
}

// Encoder appends little-endian primitives to an internal buffer
type Encoder struct {
	b []byte
}

// NewEncoder returns an empty encoder from the pool. Release it when done.
func NewEncoder() *Encoder {
	e := encoderPool.Get().(*Encoder)
	e.b = e.b[:0]
	return e
}

// Release returns the encoder to the pool. The encoder must not be used afterwards.
func (e *Encoder) Release() {
	if cap(e.b) > 64*1024 {
		// Don't pin large buffers
		e.b = make([]byte, 0, 256)
	}
	encoderPool.Put(e)
}

// Bytes returns a copy of the encoded data
func (e *Encoder) Bytes() []byte {
	return append([]byte(nil), e.b...)
}

// Len returns the number of bytes encoded so far
func (e *Encoder) Len() int {
	return len(e.b)
}

func (e *Encoder) EncodeUint8(u uint8) {
	e.b = append(e.b, u)
}

func (e *Encoder) EncodeBool(b bool) {
	if b {
		e.b = append(e.b, 1)
	} else {
		e.b = append(e.b, 0)
	}
}

func (e *Encoder) EncodeUint16(u uint16) {
	e.b = append(e.b, byte(u), byte(u>>8))
}

func (e *Encoder) EncodeInt16(i int16) {
	e.EncodeUint16(uint16(i))
}

func (e *Encoder) EncodeUint32(u uint32) {
	e.b = append(e.b, byte(u), byte(u>>8), byte(u>>16), byte(u>>24))
}

func (e *Encoder) EncodeInt32(i int32) {
	e.EncodeUint32(uint32(i))
}

func (e *Encoder) EncodeUint64(u uint64) {
	e.b = append(e.b,
		byte(u), byte(u>>8), byte(u>>16), byte(u>>24),
		byte(u>>32), byte(u>>40), byte(u>>48), byte(u>>56))
}

func (e *Encoder) EncodeInt64(i int64) {
	e.EncodeUint64(uint64(i))
}

func (e *Encoder) EncodeFloat32(f float32) {
	e.EncodeUint32(math.Float32bits(f))
}

func (e *Encoder) EncodeFloat64(f float64) {
	e.EncodeUint64(math.Float64bits(f))
}

// EncodeBytes appends buf prefixed by its length as a u32
func (e *Encoder) EncodeBytes(buf []byte) error {
	if uint64(len(buf)) > maxLength {
		return errors.ErrRange
	}
	e.EncodeUint32(uint32(len(buf)))
	e.b = append(e.b, buf...)
	return nil
}

// EncodeString appends s prefixed by its length as a u32
func (e *Encoder) EncodeString(s string) error {
	if uint64(len(s)) > maxLength {
		return errors.ErrRange
	}
	e.EncodeUint32(uint32(len(s)))
	e.b = append(e.b, s...)
	return nil
}

// Fixed width readers, used when decoding a single value payload

func Uint16(b []byte) uint16 {
	_ = b[1] // bounds check hint to compiler; see golang.org/issue/14808
	return uint16(b[0]) | uint16(b[1])<<8
}

func Uint32(b []byte) uint32 {
	_ = b[3] // bounds check hint to compiler; see golang.org/issue/14808
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func Uint64(b []byte) uint64 {
	_ = b[7] // bounds check hint to compiler; see golang.org/issue/14808
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}
