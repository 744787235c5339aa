// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package container

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"strings"

	logger "github.com/multiversx/mx-chain-logger-go"
	"go.e43.eu/container/internal/errors"
)

var log = logger.GetOrCreate("container")

// interface Value is implemented by every value variant. The set of variants
// is closed: NullValue, BoolValue, NumericValue, StringValue, BytesValue,
// ContainerValue and ArrayValue.
//
// The narrowing accessors (ToBool through ToDouble) convert between types
// where a conversion is meaningful, truncating as a Go conversion would, and
// return zero for values which have no numeric interpretation. They fail only
// when invoked on a null value.
type Value interface {
	// Name returns the value's name. Names need not be unique within a parent.
	Name() string
	Type() ValueType

	// Data returns the canonical binary payload; empty for null and composites
	Data() []byte
	// Size returns len(Data())
	Size() int

	Parent() Parent
	SetParent(p Parent)
	IsNull() bool

	ToBool() (bool, error)
	ToShort() (int16, error)
	ToUShort() (uint16, error)
	ToInt() (int32, error)
	ToUInt() (uint32, error)
	ToLong() (int32, error)
	ToULong() (uint32, error)
	ToLLong() (int64, error)
	ToULLong() (uint64, error)
	ToFloat() (float32, error)
	ToDouble() (float64, error)

	// ToString returns the canonical text form: "true"/"false" for bools,
	// decimal for numerics, base64 for bytes and "null" for null
	ToString() string

	// ToBytes returns the binary form accepted by FromBytes. For scalars this
	// is Data(); composites return their nested child encoding.
	ToBytes() []byte

	// Serialize returns the wire fragment of this value (and its children)
	Serialize() string

	// ToJSON returns the flat JSON object describing this value
	ToJSON() (string, error)

	// ToXML returns the XML element describing this value
	ToXML() string

	appendWire(b *strings.Builder)
}

// numView is the numeric interpretation of a value, computed on construction
type numView struct {
	i int64
	u uint64
	f float64
	b bool
}

func viewOfInt(i int64) numView {
	return numView{i: i, u: uint64(i), f: float64(i), b: i != 0}
}

func viewOfUint(u uint64) numView {
	return numView{i: int64(u), u: u, f: float64(u), b: u != 0}
}

func viewOfFloat(f float64) numView {
	v := numView{f: f, b: f != 0}
	switch {
	case math.IsNaN(f):
	case f < 0:
		v.i = int64(f)
		v.u = uint64(v.i)
	default:
		v.u = uint64(f)
		v.i = int64(v.u)
	}
	return v
}

// base carries the state common to every variant
type base struct {
	name   string
	vt     ValueType
	parent Parent
	view   numView
}

func (b *base) Name() string {
	return b.name
}

func (b *base) Type() ValueType {
	return b.vt
}

func (b *base) Parent() Parent {
	return b.parent
}

func (b *base) SetParent(p Parent) {
	b.parent = p
}

func (b *base) IsNull() bool {
	return b.vt == NullType
}

// invalidate notifies the parent chain that the structure beneath it changed
func (b *base) invalidate() {
	if b.parent != nil {
		b.parent.Invalidate()
	}
}

func (b *base) mismatch(to string) error {
	return errors.TypeMismatchError{Name: b.name, From: b.vt, To: to}
}

func (b *base) ToBool() (bool, error) {
	if b.vt == NullType {
		return false, b.mismatch("bool")
	}
	return b.view.b, nil
}

func (b *base) ToShort() (int16, error) {
	if b.vt == NullType {
		return 0, b.mismatch("short")
	}
	return int16(b.view.i), nil
}

func (b *base) ToUShort() (uint16, error) {
	if b.vt == NullType {
		return 0, b.mismatch("ushort")
	}
	return uint16(b.view.u), nil
}

func (b *base) ToInt() (int32, error) {
	if b.vt == NullType {
		return 0, b.mismatch("int")
	}
	return int32(b.view.i), nil
}

func (b *base) ToUInt() (uint32, error) {
	if b.vt == NullType {
		return 0, b.mismatch("uint")
	}
	return uint32(b.view.u), nil
}

func (b *base) ToLong() (int32, error) {
	if b.vt == NullType {
		return 0, b.mismatch("long")
	}
	return int32(b.view.i), nil
}

func (b *base) ToULong() (uint32, error) {
	if b.vt == NullType {
		return 0, b.mismatch("ulong")
	}
	return uint32(b.view.u), nil
}

func (b *base) ToLLong() (int64, error) {
	if b.vt == NullType {
		return 0, b.mismatch("llong")
	}
	return b.view.i, nil
}

func (b *base) ToULLong() (uint64, error) {
	if b.vt == NullType {
		return 0, b.mismatch("ullong")
	}
	return b.view.u, nil
}

func (b *base) ToFloat() (float32, error) {
	if b.vt == NullType {
		return 0, b.mismatch("float")
	}
	return float32(b.view.f), nil
}

func (b *base) ToDouble() (float64, error) {
	if b.vt == NullType {
		return 0, b.mismatch("double")
	}
	return b.view.f, nil
}

func isNilValue(v Value) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

// checkValues rejects nil entries before any of vs is adopted by a parent
func checkValues(vs []Value) error {
	for i, v := range vs {
		if isNilValue(v) {
			return fmt.Errorf("%w: nil value at position %d", errors.ErrInvalidValue, i)
		}
	}
	return nil
}

// dropNil returns vs without its nil entries
func dropNil(owner string, vs []Value) []Value {
	if checkValues(vs) == nil {
		return vs
	}
	kept := make([]Value, 0, len(vs))
	for _, v := range vs {
		if isNilValue(v) {
			log.Warn("dropping nil value", "parent", owner)
			continue
		}
		kept = append(kept, v)
	}
	return kept
}

func serialize(v Value) string {
	var b strings.Builder
	v.appendWire(&b)
	return b.String()
}

func toXML(v Value) string {
	var b strings.Builder
	appendValueXML(&b, v)
	return b.String()
}

// Equal reports whether two values have the same name, type and payload.
// Composite values are compared recursively; parents are ignored.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Name() != b.Name() || a.Type() != b.Type() {
		return false
	}

	ac, bc := childrenOf(a), childrenOf(b)
	if ac != nil || bc != nil {
		if len(ac) != len(bc) {
			return false
		}
		for i := range ac {
			if !Equal(ac[i], bc[i]) {
				return false
			}
		}
		return true
	}

	return bytes.Equal(a.Data(), b.Data())
}

// childrenOf returns the children of a composite, or nil
func childrenOf(v Value) []Value {
	switch v := v.(type) {
	case *ContainerValue:
		if v.children == nil {
			return []Value{}
		}
		return v.children
	case *ArrayValue:
		if v.elements == nil {
			return []Value{}
		}
		return v.elements
	default:
		return nil
	}
}

// Clone returns a deep copy of v with no parent
func Clone(v Value) Value {
	switch v := v.(type) {
	case nil:
		return nil
	case *NullValue:
		c := *v
		c.parent = nil
		return &c
	case *BoolValue:
		c := *v
		c.parent = nil
		return &c
	case *NumericValue:
		c := *v
		c.parent = nil
		return &c
	case *StringValue:
		c := *v
		c.parent = nil
		return &c
	case *BytesValue:
		c := *v
		c.parent = nil
		c.data = append([]byte(nil), v.data...)
		return &c
	case *ContainerValue:
		c := NewContainerValue(v.name)
		for _, ch := range v.children {
			c.Add(Clone(ch))
		}
		return c
	case *ArrayValue:
		c := NewArrayValue(v.name)
		for _, e := range v.elements {
			c.Append(Clone(e))
		}
		return c
	default:
		panic("unreachable")
	}
}
