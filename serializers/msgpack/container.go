// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package msgpack

import (
	"github.com/mitchellh/mapstructure"
	"go.e43.eu/container"
	cinterfaces "go.e43.eu/container/interfaces"
	"go.e43.eu/container/internal/errors"
)

type header struct {
	SourceID    string `mapstructure:"source_id"`
	SourceSubID string `mapstructure:"source_sub_id"`
	TargetID    string `mapstructure:"target_id"`
	TargetSubID string `mapstructure:"target_sub_id"`
	MessageType string `mapstructure:"message_type"`
	Version     string `mapstructure:"version"`
}

type record struct {
	Name     string   `mapstructure:"name"`
	Type     string   `mapstructure:"type"`
	Data     []byte   `mapstructure:"data"`
	Children []record `mapstructure:"children"`
}

type document struct {
	Header header   `mapstructure:"header"`
	Values []record `mapstructure:"values"`
}

// ContainerToMsgpack encodes c as the MessagePack map
//
//     {"header": {"source_id", "source_sub_id", "target_id", "target_sub_id",
//                 "message_type", "version"},
//      "values": [{"name", "type": "<code>", "data": <bin>}, ...]}
//
// where data is the value's ToBytes form. Composites carry "children"
// instead of "data".
func ContainerToMsgpack(c *container.Container) ([]byte, error) {
	doc := map[string]interface{}{
		"header": map[string]interface{}{
			"source_id":     c.SourceID(),
			"source_sub_id": c.SourceSubID(),
			"target_id":     c.TargetID(),
			"target_sub_id": c.TargetSubID(),
			"message_type":  c.MessageType(),
			"version":       c.Version(),
		},
		"values": recordsOf(c.Units()),
	}
	return Pack(doc)
}

func recordsOf(vs []container.Value) []interface{} {
	out := make([]interface{}, 0, len(vs))
	for _, v := range vs {
		r := map[string]interface{}{
			"name": v.Name(),
			"type": v.Type().Code(),
		}
		switch v := v.(type) {
		case *container.ContainerValue:
			r["children"] = recordsOf(v.Children())
		case *container.ArrayValue:
			r["children"] = recordsOf(v.Values())
		default:
			r["data"] = v.ToBytes()
		}
		out = append(out, r)
	}
	return out
}

// MsgpackToContainer decodes the output of ContainerToMsgpack
func MsgpackToContainer(b []byte) (*container.Container, error) {
	raw, err := Unpack(b)
	if err != nil {
		return nil, err
	}
	if _, ok := raw.(map[string]interface{}); !ok {
		return nil, errors.Decode(format, 0, "expected map, found %T", raw)
	}

	var doc document
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, errors.DecodeError{Format: format, Offset: -1, Reason: "malformed container", Err: err}
	}

	c := container.NewMessage(
		doc.Header.SourceID, doc.Header.SourceSubID,
		doc.Header.TargetID, doc.Header.TargetSubID,
		doc.Header.MessageType,
	)
	if doc.Header.Version != "" {
		c.SetVersion(doc.Header.Version)
	}

	values, err := valuesOf(doc.Values)
	if err != nil {
		return nil, err
	}
	c.Add(values...)
	return c, nil
}

func valuesOf(rs []record) ([]container.Value, error) {
	out := make([]container.Value, 0, len(rs))
	for _, r := range rs {
		v, err := valueOf(r)
		if err != nil {
			return nil, errors.WithFieldError(err, r.Name)
		}
		out = append(out, v)
	}
	return out, nil
}

func valueOf(r record) (container.Value, error) {
	vt, ok := cinterfaces.ParseType(r.Type)
	if !ok {
		log.Warn("unknown type, decoding as null", "name", r.Name, "type", r.Type)
		return container.NewNull(r.Name), nil
	}

	switch vt {
	case container.ContainerType, container.ArrayType:
		children, err := valuesOf(r.Children)
		if err != nil {
			return nil, err
		}
		if vt == container.ArrayType {
			return container.NewArrayValue(r.Name, children...), nil
		}
		return container.NewContainerValue(r.Name, children...), nil
	default:
		return container.FromBytes(vt, r.Name, r.Data)
	}
}
