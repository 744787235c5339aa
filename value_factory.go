// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package container

import (
	cinterfaces "go.e43.eu/container/interfaces"
	"go.e43.eu/container/internal/errors"
	"go.e43.eu/container/internal/wire"
)

// FromBytes constructs a value of type t from its binary form (as returned by
// Value.ToBytes). Fixed width types must be given exactly the right number of
// bytes; composites are reconstructed recursively.
func FromBytes(t ValueType, name string, data []byte) (Value, error) {
	switch {
	case t == NullType:
		if len(data) != 0 {
			return nil, errors.Decode("binary", -1, "null '%s' has %d byte payload", name, len(data))
		}
		return NewNull(name), nil

	case t == BoolType:
		if len(data) != 1 {
			return nil, errors.Decode("binary", -1, "bool '%s' payload is %d bytes, expected 1", name, len(data))
		}
		return NewBool(name, data[0] != 0), nil

	case cinterfaces.IsNumeric(t):
		return numericFromBytes(t, name, data)

	case t == StringType:
		return stringFromBytes(name, data)

	case t == BytesType:
		return NewBytes(name, append([]byte(nil), data...)), nil

	case cinterfaces.IsComposite(t):
		return decodeChildren(t, name, data)

	default:
		log.Warn("unknown type, decoding as null", "name", name, "type", int(t))
		return NewNull(name), nil
	}
}

// FromString constructs a value of type t from its canonical text form (as
// returned by Value.ToString): "true"/"false" for bools, decimal numbers,
// base64 for bytes. Any text is accepted for null.
//
// The text of a composite is the concatenated wire fragments of its children,
// as produced by serializing each child in turn.
func FromString(t ValueType, name, text string) (Value, error) {
	switch {
	case t == NullType:
		return NewNull(name), nil
	case t == BoolType:
		return parseBool(name, text)
	case cinterfaces.IsNumeric(t):
		return parseNumeric(t, name, text)
	case t == StringType:
		return NewString(name, text), nil
	case t == BytesType:
		return parseBytes(name, text)
	case cinterfaces.IsComposite(t):
		children, err := parseFragment(text, false)
		if err != nil {
			return nil, errors.WithFieldError(err, name)
		}
		return newComposite(t, name, children), nil
	default:
		log.Warn("unknown type, decoding as null", "name", name, "type", int(t))
		return NewNull(name), nil
	}
}

// ParseValue parses a single wire fragment, such as the output of
// Value.Serialize. The fragment must contain exactly one value (which may be
// a composite followed by its children).
func ParseValue(fragment string) (Value, error) {
	values, err := parseFragment(fragment, false)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, errors.Decode("wire", -1, "fragment holds %d values, expected 1", len(values))
	}
	return values[0], nil
}

// ParseValues parses a concatenation of wire fragments
func ParseValues(fragment string) ([]Value, error) {
	return parseFragment(fragment, false)
}

func parseFragment(text string, lenient bool) ([]Value, error) {
	tuples, err := wire.ScanFragment(text, lenient)
	if err != nil {
		return nil, err
	}
	p := treeParser{tuples: tuples, lenient: lenient}
	return p.parseAll()
}
