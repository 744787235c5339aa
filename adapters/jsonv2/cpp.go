// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package jsonv2

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
	"go.e43.eu/container"
	"go.e43.eu/container/internal/errors"
)

type cppHeader struct {
	TargetID    string `json:"target_id"`
	TargetSubID string `json:"target_sub_id"`
	SourceID    string `json:"source_id"`
	SourceSubID string `json:"source_sub_id"`
	MessageType string `json:"message_type"`
	Version     string `json:"version"`
}

type cppValue struct {
	Type   int       `json:"type"`
	Data   *string   `json:"data,omitempty"`
	Values cppValues `json:"values,omitempty"`
}

type cppEntry struct {
	name  string
	value cppValue
}

// cppValues is a JSON object keyed by value name, written in order.
// Duplicate names are written as duplicate keys.
type cppValues []cppEntry

func (vs cppValues) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, e := range vs {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(e.name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.value)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

type cppDocument struct {
	Header cppHeader `json:"header"`
	Values cppValues `json:"values"`
}

// ToCppJSON encodes c in the nested dialect used by the C++ implementation.
// Scalars carry their canonical text in "data" (empty for null, base64 for
// bytes); composites carry their children in a nested "values" object.
func ToCppJSON(c *container.Container, pretty bool) (string, error) {
	doc := cppDocument{
		Header: cppHeader{
			TargetID:    c.TargetID(),
			TargetSubID: c.TargetSubID(),
			SourceID:    c.SourceID(),
			SourceSubID: c.SourceSubID(),
			MessageType: c.MessageType(),
			Version:     c.Version(),
		},
		Values: cppValuesOf(c.Units()),
	}
	return marshal(&doc, pretty)
}

func cppValuesOf(vs []container.Value) cppValues {
	out := make(cppValues, 0, len(vs))
	for _, v := range vs {
		cv := cppValue{Type: int(v.Type())}
		switch v := v.(type) {
		case *container.ContainerValue:
			cv.Values = cppValuesOf(v.Children())
		case *container.ArrayValue:
			cv.Values = cppValuesOf(v.Values())
		case *container.NullValue:
			empty := ""
			cv.Data = &empty
		default:
			s := v.ToString()
			cv.Data = &s
		}
		out = append(out, cppEntry{v.Name(), cv})
	}
	return out
}

// FromCppJSON decodes the nested C++ dialect, keeping the document order of
// each "values" object
func FromCppJSON(doc string) (*container.Container, error) {
	if !gjson.Valid(doc) {
		return nil, decodeError("invalid JSON")
	}
	root := gjson.Parse(doc)
	if !root.IsObject() {
		return nil, decodeError("expected object")
	}

	h := root.Get("header")
	c := container.NewMessage(
		h.Get("source_id").String(), h.Get("source_sub_id").String(),
		h.Get("target_id").String(), h.Get("target_sub_id").String(),
		h.Get("message_type").String(),
	)
	if v := h.Get("version"); v.Exists() {
		c.SetVersion(v.String())
	}

	values, err := cppValuesFrom(root.Get("values"))
	if err != nil {
		return nil, err
	}
	c.Add(values...)
	return c, nil
}

func cppValuesFrom(obj gjson.Result) ([]container.Value, error) {
	if !obj.Exists() || obj.Type == gjson.Null {
		return nil, nil
	}
	if !obj.IsObject() {
		return nil, decodeError("values must be an object")
	}

	var (
		out []container.Value
		err error
	)
	obj.ForEach(func(key, item gjson.Result) bool {
		var v container.Value
		v, err = cppValueFrom(key.String(), item)
		if err != nil {
			return false
		}
		out = append(out, v)
		return true
	})
	return out, err
}

func cppValueFrom(name string, r gjson.Result) (container.Value, error) {
	if !r.IsObject() {
		return nil, errors.WithFieldError(decodeError("value must be an object"), name)
	}

	vt, ok := lookupType(r.Get("type"))
	if !ok {
		log.Warn("unknown type, decoding as null", "name", name, "type", r.Get("type").Raw)
		return container.NewNull(name), nil
	}

	switch vt {
	case container.NullType:
		return container.NewNull(name), nil
	case container.ContainerType, container.ArrayType:
		children, err := cppValuesFrom(r.Get("values"))
		if err != nil {
			return nil, errors.WithFieldError(err, name)
		}
		if vt == container.ArrayType {
			return container.NewArrayValue(name, children...), nil
		}
		return container.NewContainerValue(name, children...), nil
	}

	v, err := container.FromString(vt, name, dataText(r.Get("data")))
	if err != nil {
		return nil, errors.WithFieldError(err, name)
	}
	return v, nil
}
