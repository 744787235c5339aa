// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package container

import (
	"strconv"
	"strings"

	"go.e43.eu/container/internal/binary"
	"go.e43.eu/container/internal/errors"
	"go.e43.eu/container/internal/wire"
)

// ContainerValue is a named, nested group of values. It owns its children:
// adding a value sets the value's parent, and any structural change is
// propagated upwards so that an enclosing Container drops its cached
// serialization.
type ContainerValue struct {
	base
	children []Value
}

var _ Parent = &ContainerValue{}

// NewContainerValue constructs a container value holding children. Nil
// children are dropped.
func NewContainerValue(name string, children ...Value) *ContainerValue {
	cv := &ContainerValue{base: base{name: name, vt: ContainerType}}
	children = dropNil(name, children)
	for _, c := range children {
		c.SetParent(cv)
	}
	cv.children = append(make([]Value, 0, len(children)), children...)
	return cv
}

// Invalidate notifies the enclosing parents that this value changed
func (v *ContainerValue) Invalidate() {
	v.invalidate()
}

// Add appends children and takes ownership of them. Nothing is added if any
// child is nil.
func (v *ContainerValue) Add(children ...Value) error {
	if err := checkValues(children); err != nil {
		return errors.WithFieldError(err, v.name)
	}
	for _, c := range children {
		c.SetParent(v)
		v.children = append(v.children, c)
	}
	v.invalidate()
	return nil
}

// Remove removes every child with the given name, returning the number removed
func (v *ContainerValue) Remove(name string) int {
	var removed int
	v.children, removed = removeNamed(v.children, name)
	if removed > 0 {
		v.invalidate()
	}
	return removed
}

// RemoveAll removes every child
func (v *ContainerValue) RemoveAll() {
	for _, c := range v.children {
		c.SetParent(nil)
	}
	v.children = nil
	v.invalidate()
}

// ChildCount returns the number of children
func (v *ContainerValue) ChildCount() int {
	return len(v.children)
}

// Children returns a copy of the child list
func (v *ContainerValue) Children() []Value {
	return append([]Value(nil), v.children...)
}

// ValueArray returns every child with the given name, in order
func (v *ContainerValue) ValueArray(name string) []Value {
	return valuesNamed(v.children, name)
}

// GetValue returns the first child with the given name, or nil
func (v *ContainerValue) GetValue(name string) Value {
	return nthNamed(v.children, name, 0)
}

// GetValueIndex returns the index'th child with the given name, or nil
func (v *ContainerValue) GetValueIndex(name string, index int) Value {
	return nthNamed(v.children, name, index)
}

func (v *ContainerValue) Data() []byte { return nil }
func (v *ContainerValue) Size() int { return 0 }

func (v *ContainerValue) ToString() string {
	return "Container(" + strconv.Itoa(len(v.children)) + " values)"
}

func (v *ContainerValue) ToBytes() []byte { return mustEncode(v) }

// MarshalBinary returns the nested binary form of the children
func (v *ContainerValue) MarshalBinary() ([]byte, error) { return encodeChildren(v.children) }
func (v *ContainerValue) Serialize() string { return serialize(v) }
func (v *ContainerValue) ToXML() string { return toXML(v) }
func (v *ContainerValue) ToJSON() (string, error) { return valueJSON(v) }

func (v *ContainerValue) appendWire(b *strings.Builder) {
	wire.AppendTuple(b, v.name, ContainerType.Code(), strconv.Itoa(len(v.children)))
	for _, c := range v.children {
		c.appendWire(b)
	}
}

// ArrayValue is a named, ordered sequence of elements. Elements may be of
// differing types.
type ArrayValue struct {
	base
	elements []Value
}

var _ Parent = &ArrayValue{}

// NewArrayValue constructs an array holding elements. Nil elements are
// dropped.
func NewArrayValue(name string, elements ...Value) *ArrayValue {
	av := &ArrayValue{base: base{name: name, vt: ArrayType}}
	elements = dropNil(name, elements)
	for _, e := range elements {
		e.SetParent(av)
	}
	av.elements = append(make([]Value, 0, len(elements)), elements...)
	return av
}

// Invalidate notifies the enclosing parents that this value changed
func (v *ArrayValue) Invalidate() {
	v.invalidate()
}

// Append adds elements to the end of the array and takes ownership of them.
// Nothing is added if any element is nil.
func (v *ArrayValue) Append(elements ...Value) error {
	if err := checkValues(elements); err != nil {
		return errors.WithFieldError(err, v.name)
	}
	for _, e := range elements {
		e.SetParent(v)
		v.elements = append(v.elements, e)
	}
	v.invalidate()
	return nil
}

// At returns the element at index i
func (v *ArrayValue) At(i int) (Value, error) {
	if i < 0 || i >= len(v.elements) {
		return nil, errors.IndexError{Index: i, Len: len(v.elements)}
	}
	return v.elements[i], nil
}

// Set replaces the element at index i
func (v *ArrayValue) Set(i int, e Value) error {
	if i < 0 || i >= len(v.elements) {
		return errors.IndexError{Index: i, Len: len(v.elements)}
	}
	if isNilValue(e) {
		return errors.WithFieldError(checkValues([]Value{e}), v.name)
	}
	v.elements[i].SetParent(nil)
	e.SetParent(v)
	v.elements[i] = e
	v.invalidate()
	return nil
}

// Len returns the number of elements
func (v *ArrayValue) Len() int {
	return len(v.elements)
}

// Empty returns whether the array has no elements
func (v *ArrayValue) Empty() bool {
	return len(v.elements) == 0
}

// Clear removes every element
func (v *ArrayValue) Clear() {
	for _, e := range v.elements {
		e.SetParent(nil)
	}
	v.elements = nil
	v.invalidate()
}

// Values returns a copy of the element list
func (v *ArrayValue) Values() []Value {
	return append([]Value(nil), v.elements...)
}

func (v *ArrayValue) Data() []byte { return nil }
func (v *ArrayValue) Size() int { return 0 }

func (v *ArrayValue) ToString() string {
	return "Array(" + strconv.Itoa(len(v.elements)) + " elements)"
}

func (v *ArrayValue) ToBytes() []byte { return mustEncode(v) }

// MarshalBinary returns the nested binary form of the elements
func (v *ArrayValue) MarshalBinary() ([]byte, error) { return encodeChildren(v.elements) }
func (v *ArrayValue) Serialize() string { return serialize(v) }
func (v *ArrayValue) ToXML() string { return toXML(v) }
func (v *ArrayValue) ToJSON() (string, error) { return valueJSON(v) }

func (v *ArrayValue) appendWire(b *strings.Builder) {
	wire.AppendTuple(b, v.name, ArrayType.Code(), strconv.Itoa(len(v.elements)))
	for _, e := range v.elements {
		e.appendWire(b)
	}
}

func newComposite(t ValueType, name string, children []Value) Value {
	if t == ArrayType {
		return NewArrayValue(name, children...)
	}
	return NewContainerValue(name, children...)
}

func removeNamed(vs []Value, name string) ([]Value, int) {
	kept := vs[:0]
	for _, v := range vs {
		if v.Name() == name {
			v.SetParent(nil)
			continue
		}
		kept = append(kept, v)
	}
	removed := len(vs) - len(kept)
	for i := len(kept); i < len(vs); i++ {
		vs[i] = nil
	}
	return kept, removed
}

func valuesNamed(vs []Value, name string) []Value {
	var out []Value
	for _, v := range vs {
		if v.Name() == name {
			out = append(out, v)
		}
	}
	return out
}

func nthNamed(vs []Value, name string, n int) Value {
	for _, v := range vs {
		if v.Name() == name {
			if n == 0 {
				return v
			}
			n--
		}
	}
	return nil
}

// encodeChildren produces the nested binary form of a composite:
//
//     [count:u32] then per child [type:u8][name_len:u32][name][value_len:u32][value]
//
// where each child's value is its own ToBytes()
func encodeChildren(children []Value) ([]byte, error) {
	e := binary.NewEncoder()
	defer e.Release()

	e.EncodeUint32(uint32(len(children)))
	for _, c := range children {
		e.EncodeUint8(uint8(c.Type()))
		if err := e.EncodeString(c.Name()); err != nil {
			return nil, errors.WithFieldError(err, c.Name())
		}
		payload, err := payloadOf(c)
		if err != nil {
			return nil, errors.WithFieldError(err, c.Name())
		}
		if err := e.EncodeBytes(payload); err != nil {
			return nil, errors.WithFieldError(err, c.Name())
		}
	}
	return e.Bytes(), nil
}

// payloadOf returns the binary payload of v, reporting length overflows in
// nested composites
func payloadOf(v Value) ([]byte, error) {
	if m, ok := v.(interface{ MarshalBinary() ([]byte, error) }); ok {
		return m.MarshalBinary()
	}
	return v.ToBytes(), nil
}

// mustEncode backs ToBytes on composites, which cannot report errors
func mustEncode(v Value) []byte {
	b, err := payloadOf(v)
	if err != nil {
		log.Error("cannot encode composite", "name", v.Name(), "error", err)
		return nil
	}
	return b
}

// decodeChildren reverses encodeChildren
func decodeChildren(t ValueType, name string, data []byte) (Value, error) {
	d := binary.NewDecoder(data, "binary")
	children, err := decodeChildList(d)
	if err != nil {
		return nil, errors.WithFieldError(err, name)
	}
	if err := d.Finish(); err != nil {
		return nil, errors.WithFieldError(err, name)
	}
	return newComposite(t, name, children), nil
}

func decodeChildList(d *binary.Decoder) ([]Value, error) {
	count, err := d.DecodeUint32("child count")
	if err != nil {
		return nil, err
	}
	// Every child occupies at least 9 bytes, which bounds the allocation
	if uint64(count)*9 > uint64(d.Remaining()) {
		return nil, errors.Truncated("binary", d.Offset(), "child list")
	}

	children := make([]Value, 0, count)
	for i := uint32(0); i < count; i++ {
		code, err := d.DecodeUint8("child type")
		if err != nil {
			return nil, err
		}
		cname, err := d.DecodeString("child name")
		if err != nil {
			return nil, err
		}
		payload, err := d.DecodeBytes("child value")
		if err != nil {
			return nil, errors.WithFieldError(err, cname)
		}
		child, err := fromBinaryCode(code, cname, payload)
		if err != nil {
			return nil, errors.WithFieldError(err, cname)
		}
		children = append(children, child)
	}
	return children, nil
}

// fromBinaryCode builds a value from a binary type byte. Unknown codes decode
// as null, dropping their payload.
func fromBinaryCode(code uint8, name string, payload []byte) (Value, error) {
	t := ValueType(code)
	if !t.Valid() {
		log.Warn("unknown type code, decoding as null", "name", name, "code", code)
		return NewNull(name), nil
	}
	return FromBytes(t, name, payload)
}
