// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package container

import (
	"encoding/json"

	"github.com/tidwall/gjson"
	cinterfaces "go.e43.eu/container/interfaces"
	"go.e43.eu/container/internal/errors"
)

// jsonValue is the flat JSON description of a value
type jsonValue struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	Data     *string     `json:"data"`
	Children []jsonValue `json:"children,omitempty"`
	Elements []jsonValue `json:"elements,omitempty"`
}

type jsonContainer struct {
	SourceID    string      `json:"source_id"`
	SourceSubID string      `json:"source_sub_id"`
	TargetID    string      `json:"target_id"`
	TargetSubID string      `json:"target_sub_id"`
	MessageType string      `json:"message_type"`
	Version     string      `json:"version"`
	Values      []jsonValue `json:"values"`
}

func recordOf(v Value) jsonValue {
	r := jsonValue{Name: v.Name(), Type: v.Type().String()}
	if !v.IsNull() {
		s := v.ToString()
		r.Data = &s
	}

	switch v := v.(type) {
	case *ContainerValue:
		r.Children = recordsOf(v.children)
	case *ArrayValue:
		r.Elements = recordsOf(v.elements)
	}
	return r
}

func recordsOf(vs []Value) []jsonValue {
	out := make([]jsonValue, 0, len(vs))
	for _, v := range vs {
		out = append(out, recordOf(v))
	}
	return out
}

func valueJSON(v Value) (string, error) {
	b, err := json.Marshal(recordOf(v))
	return string(b), err
}

// ToJSON returns the flat JSON document describing the container:
//
//     {"source_id": ..., "source_sub_id": ..., "target_id": ..., "target_sub_id": ...,
//      "message_type": ..., "version": ..., "values": [{"name", "type", "data"}, ...]}
//
// Value types are given by name; data is the canonical text form (null for null
// values). Composites carry their children in "children" (containers) or
// "elements" (arrays).
func (c *Container) ToJSON() (string, error) {
	defer c.lock()()
	c.resolvePending()
	c.stats.serializations.Add(1)

	doc := jsonContainer{
		SourceID:    c.sourceID,
		SourceSubID: c.sourceSubID,
		TargetID:    c.targetID,
		TargetSubID: c.targetSubID,
		MessageType: c.messageType,
		Version:     c.version,
		Values:      recordsOf(c.units),
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	return string(b), err
}

// FromJSON decodes the flat JSON document produced by Container.ToJSON. Types
// may be given by name or by numeric code.
func FromJSON(doc string) (*Container, error) {
	if !gjson.Valid(doc) {
		return nil, errors.Decode("json", -1, "invalid JSON")
	}
	root := gjson.Parse(doc)
	if !root.IsObject() {
		return nil, errors.Decode("json", -1, "expected object")
	}

	c := New()
	c.sourceID = root.Get("source_id").String()
	c.sourceSubID = root.Get("source_sub_id").String()
	c.targetID = root.Get("target_id").String()
	c.targetSubID = root.Get("target_sub_id").String()
	if mt := root.Get("message_type"); mt.Exists() {
		c.messageType = mt.String()
	}
	if v := root.Get("version"); v.Exists() {
		c.version = v.String()
	}

	units, err := valuesFromJSON(root.Get("values"))
	if err != nil {
		return nil, err
	}
	c.setUnits(units)
	return c, nil
}

// ValueFromJSON decodes the flat JSON description of a single value, as
// produced by Value.ToJSON
func ValueFromJSON(doc string) (Value, error) {
	if !gjson.Valid(doc) {
		return nil, errors.Decode("json", -1, "invalid JSON")
	}
	return valueFromJSON(gjson.Parse(doc))
}

func valuesFromJSON(list gjson.Result) ([]Value, error) {
	if !list.Exists() || list.Type == gjson.Null {
		return nil, nil
	}
	if !list.IsArray() {
		return nil, errors.Decode("json", -1, "values must be a list")
	}

	var (
		out []Value
		err error
	)
	list.ForEach(func(_, item gjson.Result) bool {
		var v Value
		v, err = valueFromJSON(item)
		if err != nil {
			return false
		}
		out = append(out, v)
		return true
	})
	return out, err
}

func valueFromJSON(r gjson.Result) (Value, error) {
	if !r.IsObject() {
		return nil, errors.Decode("json", -1, "value must be an object")
	}
	name := r.Get("name").String()

	typ := r.Get("type")
	vt, ok := cinterfaces.ParseType(typ.String())
	if !ok {
		log.Warn("unknown type, decoding as null", "name", name, "type", typ.String())
		return NewNull(name), nil
	}

	switch {
	case vt == ContainerType:
		children, err := valuesFromJSON(r.Get("children"))
		if err != nil {
			return nil, errors.WithFieldError(err, name)
		}
		return NewContainerValue(name, children...), nil

	case vt == ArrayType:
		elements, err := valuesFromJSON(r.Get("elements"))
		if err != nil {
			return nil, errors.WithFieldError(err, name)
		}
		return NewArrayValue(name, elements...), nil
	}

	data := r.Get("data")
	if vt == NullType || data.Type == gjson.Null || !data.Exists() {
		if vt != NullType {
			return nil, errors.WithFieldError(errors.Decode("json", -1, "%s value has no data", vt), name)
		}
		return NewNull(name), nil
	}

	// Numbers and bools may appear unquoted; Raw keeps full integer precision
	text := data.String()
	if data.Type == gjson.Number {
		text = data.Raw
	}
	v, err := FromString(vt, name, text)
	if err != nil {
		return nil, errors.WithFieldError(err, name)
	}
	return v, nil
}
