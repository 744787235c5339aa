// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package container implements typed value containers and their serialization
// to a delimited text wire format shared with sibling implementations in other
// languages, as well as to JSON, XML and a compact little-endian binary form.
//
// A Container carries six routing header fields and an ordered list of
// values. The wire form of a container is
//
//     @header={{[1,target_id];[2,target_sub_id];[3,source_id];[4,source_sub_id];[5,message_type];[6,version];}}@data={{[name,type,value];...}};
//
// Composite values (containers and arrays) are flattened in pre-order: the
// composite's tuple carries its child count in place of a value, and is
// immediately followed by the tuples of its children.
//
// The mapping from type codes to value types is:
//
//     code | type      | Go constructor    | payload
//     -----+-----------+-------------------+----------------------------
//        0 | null      | NewNull           | empty
//        1 | bool      | NewBool           | 1 byte, 0 or 1
//        2 | short     | NewShort          | int16, little-endian
//        3 | ushort    | NewUShort         | uint16, little-endian
//        4 | int       | NewInt            | int32, little-endian
//        5 | uint      | NewUInt           | uint32, little-endian
//        6 | long      | NewLong           | int32 (range checked), little-endian
//        7 | ulong     | NewULong          | uint32 (range checked), little-endian
//        8 | llong     | NewLLong          | int64, little-endian
//        9 | ullong    | NewULLong         | uint64, little-endian
//       10 | float     | NewFloat          | IEEE 754 binary32, little-endian
//       11 | double    | NewDouble         | IEEE 754 binary64, little-endian
//       12 | string    | NewString         | UTF-8
//       13 | bytes     | NewBytes          | raw (base64 in text forms)
//       14 | container | NewContainerValue | children
//       15 | array     | NewArrayValue     | elements
//
// Go values may also be bound to containers through reflection using Marshal
// and Unmarshal; see the documentation of Marshal for the type mapping and
// the `container:"..."` struct tag.
package container

import cinterfaces "go.e43.eu/container/interfaces"

// ValueType identifies the variant of a value; its numeric code is the wire identity
type ValueType = cinterfaces.ValueType

const (
	NullType      = cinterfaces.NullValue
	BoolType      = cinterfaces.BoolValue
	ShortType     = cinterfaces.ShortValue
	UShortType    = cinterfaces.UShortValue
	IntType       = cinterfaces.IntValue
	UIntType      = cinterfaces.UIntValue
	LongType      = cinterfaces.LongValue
	ULongType     = cinterfaces.ULongValue
	LLongType     = cinterfaces.LLongValue
	ULLongType    = cinterfaces.ULLongValue
	FloatType     = cinterfaces.FloatValue
	DoubleType    = cinterfaces.DoubleValue
	StringType    = cinterfaces.StringValue
	BytesType     = cinterfaces.BytesValue
	ContainerType = cinterfaces.ContainerValue
	ArrayType     = cinterfaces.ArrayValue
)

// interface Parent is implemented by every owner of values: Container,
// ContainerValue and ArrayValue
type Parent = cinterfaces.Parent

// interface Serializer is implemented by everything with a text wire form
type Serializer = cinterfaces.Serializer

// interface Deserializer is implemented by everything which can be populated
// from the text wire form
type Deserializer = cinterfaces.Deserializer
