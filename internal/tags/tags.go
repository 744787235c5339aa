// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package tags

import (
	"fmt"
	"reflect"
	"strings"

	cinterfaces "go.e43.eu/container/interfaces"
	"go.e43.eu/container/internal/errors"
)

// Tag represents a decoded `container:"..."` struct tag:
//
//    Field int64 `container:"name,long,omitempty"`
//
// The first entry is the value name (defaulting to the Go field name). Later
// entries are options: a type override naming one of the value types, or
// `omitempty`. A tag of exactly `-` skips the field.
type Tag struct {
	Name      string
	Skip      bool
	OmitEmpty bool

	// Type override; only meaningful if HasType is set
	Type    cinterfaces.ValueType
	HasType bool
}

// Key returns a string uniquely identifying the options which affect codec
// selection, for use in codec cache keys
func (t Tag) Key() string {
	if !t.HasType {
		return ""
	}
	return t.Type.Code()
}

// Overrides permitted per Go kind. The override must be able to represent
// every value of the field, or be a deliberate narrowing the caller asked for
// (long/ulong are range checked on encode).
var allowedOverrides = map[reflect.Kind][]cinterfaces.ValueType{
	reflect.Int:     {cinterfaces.LongValue, cinterfaces.LLongValue, cinterfaces.IntValue, cinterfaces.StringValue},
	reflect.Int64:   {cinterfaces.LongValue, cinterfaces.LLongValue, cinterfaces.IntValue, cinterfaces.StringValue},
	reflect.Int32:   {cinterfaces.LongValue, cinterfaces.IntValue, cinterfaces.LLongValue, cinterfaces.StringValue},
	reflect.Int16:   {cinterfaces.ShortValue, cinterfaces.IntValue, cinterfaces.LongValue, cinterfaces.LLongValue},
	reflect.Int8:    {cinterfaces.ShortValue, cinterfaces.IntValue, cinterfaces.LongValue, cinterfaces.LLongValue},
	reflect.Uint:    {cinterfaces.ULongValue, cinterfaces.ULLongValue, cinterfaces.UIntValue, cinterfaces.StringValue},
	reflect.Uint64:  {cinterfaces.ULongValue, cinterfaces.ULLongValue, cinterfaces.UIntValue, cinterfaces.StringValue},
	reflect.Uint32:  {cinterfaces.ULongValue, cinterfaces.UIntValue, cinterfaces.ULLongValue, cinterfaces.StringValue},
	reflect.Uint16:  {cinterfaces.UShortValue, cinterfaces.UIntValue, cinterfaces.ULongValue, cinterfaces.ULLongValue},
	reflect.Uint8:   {cinterfaces.UShortValue, cinterfaces.UIntValue, cinterfaces.ULongValue, cinterfaces.ULLongValue},
	reflect.Float32: {cinterfaces.FloatValue, cinterfaces.DoubleValue},
	reflect.Float64: {cinterfaces.DoubleValue, cinterfaces.FloatValue},
	reflect.String:  {cinterfaces.StringValue, cinterfaces.BytesValue},
	reflect.Slice:   {cinterfaces.BytesValue, cinterfaces.ArrayValue},
}

func overrideAllowed(t reflect.Type, vt cinterfaces.ValueType) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for _, a := range allowedOverrides[t.Kind()] {
		if a == vt {
			if t.Kind() == reflect.Slice && vt == cinterfaces.BytesValue {
				return t.Elem().Kind() == reflect.Uint8
			}
			return true
		}
	}
	return false
}

// ParseStructTag parses the container tag of a struct field
func ParseStructTag(f reflect.StructField) (Tag, error) {
	tag, err := ParseTag(f.Type, f.Tag.Get("container"))
	if err != nil {
		return tag, err
	}
	if tag.Name == "" {
		tag.Name = f.Name
	}
	return tag, nil
}

// ParseTag parses the body of a container tag to be applied to the specified type
func ParseTag(t reflect.Type, stag string) (Tag, error) {
	var tag Tag

	stag = strings.TrimSpace(stag)
	if stag == "-" {
		tag.Skip = true
		return tag, nil
	}

	parts := strings.Split(stag, ",")
	tag.Name = strings.TrimSpace(parts[0])
	if strings.ContainsAny(tag.Name, ",[];") {
		return tag, fmt.Errorf("Value name '%s' contains reserved characters", tag.Name)
	}

	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		switch p {
		case "":
			continue

		case "omitempty":
			tag.OmitEmpty = true

		default:
			vt, ok := cinterfaces.LookupName(p)
			if !ok {
				return tag, fmt.Errorf("Unknown container tag option '%s'", p)
			}
			if tag.HasType {
				return tag, fmt.Errorf("Multiple type overrides ('%s', '%s')", tag.Type, vt)
			}
			if !overrideAllowed(t, vt) {
				return tag, errors.InvalidTagForTypeError{T: t, Tag: p}
			}
			tag.Type = vt
			tag.HasType = true
		}
	}

	return tag, nil
}
