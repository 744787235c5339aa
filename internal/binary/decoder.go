// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package binary

import (
	"math"

	"go.e43.eu/container/internal/errors"
)

// Decoder reads little-endian primitives from a byte slice, checking every
// read against the remaining length before advancing
type Decoder struct {
	b      []byte
	off    int
	format string
}

// NewDecoder constructs a decoder over buf. format names the encoding for
// error messages.
func NewDecoder(buf []byte, format string) *Decoder {
	return &Decoder{b: buf, format: format}
}

// Offset returns the current read offset
func (d *Decoder) Offset() int {
	return d.off
}

// Remaining returns the number of unread bytes
func (d *Decoder) Remaining() int {
	return len(d.b) - d.off
}

// Finish returns an error if any bytes remain unread
func (d *Decoder) Finish() error {
	if d.Remaining() != 0 {
		return errors.Decode(d.format, d.off, "%d trailing bytes", d.Remaining())
	}
	return nil
}

func (d *Decoder) take(n int, what string) ([]byte, error) {
	if n < 0 || n > d.Remaining() {
		return nil, errors.Truncated(d.format, d.off, what)
	}
	buf := d.b[d.off : d.off+n]
	d.off += n
	return buf, nil
}

func (d *Decoder) DecodeUint8(what string) (uint8, error) {
	buf, err := d.take(1, what)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (d *Decoder) DecodeUint16(what string) (uint16, error) {
	buf, err := d.take(2, what)
	if err != nil {
		return 0, err
	}
	return Uint16(buf), nil
}

func (d *Decoder) DecodeUint32(what string) (uint32, error) {
	buf, err := d.take(4, what)
	if err != nil {
		return 0, err
	}
	return Uint32(buf), nil
}

func (d *Decoder) DecodeUint64(what string) (uint64, error) {
	buf, err := d.take(8, what)
	if err != nil {
		return 0, err
	}
	return Uint64(buf), nil
}

func (d *Decoder) DecodeFloat64(what string) (float64, error) {
	u, err := d.DecodeUint64(what)
	return math.Float64frombits(u), err
}

// DecodeBytes reads a u32 length prefix followed by that many bytes. The
// returned slice aliases the input buffer.
func (d *Decoder) DecodeBytes(what string) ([]byte, error) {
	n, err := d.DecodeUint32(what + " length")
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(d.Remaining()) {
		return nil, errors.Truncated(d.format, d.off, what)
	}
	return d.take(int(n), what)
}

// DecodeString reads a u32 length prefixed string
func (d *Decoder) DecodeString(what string) (string, error) {
	buf, err := d.DecodeBytes(what)
	return string(buf), err
}
