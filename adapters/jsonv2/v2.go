// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package jsonv2

import (
	"encoding/base64"
	"encoding/json"
	"math"

	"github.com/tidwall/gjson"
	"go.e43.eu/container"
	"go.e43.eu/container/internal/errors"
)

const v2Version = "2.0"

type v2Endpoint struct {
	ID    string `json:"id"`
	SubID string `json:"sub_id"`
}

type v2Metadata struct {
	MessageType     string     `json:"message_type"`
	ProtocolVersion string     `json:"protocol_version"`
	Source          v2Endpoint `json:"source"`
	Target          v2Endpoint `json:"target"`
}

type v2Value struct {
	Name       string          `json:"name"`
	Type       int             `json:"type"`
	TypeName   string          `json:"type_name"`
	Data       json.RawMessage `json:"data"`
	Encoding   string          `json:"encoding,omitempty"`
	ChildCount *int            `json:"child_count,omitempty"`
}

type v2Document struct {
	Container struct {
		Version  string     `json:"version"`
		Metadata v2Metadata `json:"metadata"`
		Values   []v2Value  `json:"values"`
	} `json:"container"`
}

// ToV2JSON encodes c in the v2.0 dialect. Integers are written as JSON
// numbers at full 64-bit precision, bytes as base64 with
// "encoding":"base64", and composites as a list of child values in "data"
// alongside "child_count".
func ToV2JSON(c *container.Container, pretty bool) (string, error) {
	var doc v2Document
	doc.Container.Version = v2Version
	doc.Container.Metadata = v2Metadata{
		MessageType:     c.MessageType(),
		ProtocolVersion: c.Version(),
		Source:          v2Endpoint{c.SourceID(), c.SourceSubID()},
		Target:          v2Endpoint{c.TargetID(), c.TargetSubID()},
	}

	values, err := v2Values(c.Units())
	if err != nil {
		return "", err
	}
	doc.Container.Values = values
	return marshal(&doc, pretty)
}

func v2Values(vs []container.Value) ([]v2Value, error) {
	out := make([]v2Value, 0, len(vs))
	for _, v := range vs {
		r, err := v2ValueOf(v)
		if err != nil {
			return nil, errors.WithFieldError(err, v.Name())
		}
		out = append(out, r)
	}
	return out, nil
}

func v2ValueOf(v container.Value) (v2Value, error) {
	r := v2Value{Name: v.Name(), Type: int(v.Type()), TypeName: v.Type().String()}

	var (
		data interface{}
		raw  string
	)
	switch v := v.(type) {
	case *container.NullValue:
		raw = "null"
	case *container.BoolValue:
		raw = v.ToString()
	case *container.NumericValue:
		raw = v.ToString()
		if t := v.Type(); t == container.FloatType || t == container.DoubleType {
			f, _ := v.ToDouble()
			if math.IsNaN(f) || math.IsInf(f, 0) {
				// Not representable as a JSON number
				raw, data = "", raw
			}
		}
	case *container.StringValue:
		data = v.Value()
	case *container.BytesValue:
		data = base64.StdEncoding.EncodeToString(v.Data())
		r.Encoding = "base64"
	case *container.ContainerValue:
		return v2Composite(r, v.Children())
	case *container.ArrayValue:
		return v2Composite(r, v.Values())
	default:
		data = v.ToString()
	}

	if raw != "" {
		r.Data = json.RawMessage(raw)
		return r, nil
	}
	b, err := json.Marshal(data)
	r.Data = b
	return r, err
}

func v2Composite(r v2Value, children []container.Value) (v2Value, error) {
	values, err := v2Values(children)
	if err != nil {
		return r, err
	}
	b, err := json.Marshal(values)
	if err != nil {
		return r, err
	}
	n := len(children)
	r.Data = b
	r.ChildCount = &n
	return r, nil
}

// FromV2JSON decodes a v2.0 document. Value types are read from the numeric
// "type" field, falling back to "type_name"; values of unknown type decode
// as null.
func FromV2JSON(doc string) (*container.Container, error) {
	if !gjson.Valid(doc) {
		return nil, decodeError("invalid JSON")
	}
	root := gjson.Parse(doc).Get("container")
	if !root.IsObject() {
		return nil, decodeError("missing container object")
	}
	if ver := root.Get("version").String(); ver != v2Version {
		return nil, errors.UnsupportedFormatError{Format: "JSON version " + ver}
	}

	md := root.Get("metadata")
	c := container.NewMessage(
		md.Get("source.id").String(), md.Get("source.sub_id").String(),
		md.Get("target.id").String(), md.Get("target.sub_id").String(),
		md.Get("message_type").String(),
	)
	if pv := md.Get("protocol_version"); pv.Exists() {
		c.SetVersion(pv.String())
	}

	values, err := v2ValuesFrom(root.Get("values"))
	if err != nil {
		return nil, err
	}
	c.Add(values...)
	return c, nil
}

func v2ValuesFrom(list gjson.Result) ([]container.Value, error) {
	if !list.Exists() || list.Type == gjson.Null {
		return nil, nil
	}
	if !list.IsArray() {
		return nil, decodeError("values must be a list")
	}

	var (
		out []container.Value
		err error
	)
	list.ForEach(func(_, item gjson.Result) bool {
		var v container.Value
		v, err = v2ValueFrom(item)
		if err != nil {
			return false
		}
		out = append(out, v)
		return true
	})
	return out, err
}

func v2ValueFrom(r gjson.Result) (container.Value, error) {
	if !r.IsObject() {
		return nil, decodeError("value must be an object")
	}
	name := r.Get("name").String()

	vt, ok := lookupType(r.Get("type"))
	if !ok {
		vt, ok = lookupType(r.Get("type_name"))
	}
	if !ok {
		log.Warn("unknown type, decoding as null", "name", name, "type", r.Get("type").Raw)
		return container.NewNull(name), nil
	}

	data := r.Get("data")
	switch vt {
	case container.NullType:
		return container.NewNull(name), nil

	case container.ContainerType, container.ArrayType:
		children, err := v2ValuesFrom(data)
		if err != nil {
			return nil, errors.WithFieldError(err, name)
		}
		if n := r.Get("child_count"); n.Exists() && n.Int() != int64(len(children)) {
			return nil, errors.WithFieldError(decodeError("child_count %d, but %d children", n.Int(), len(children)), name)
		}
		if vt == container.ArrayType {
			return container.NewArrayValue(name, children...), nil
		}
		return container.NewContainerValue(name, children...), nil

	case container.BytesType:
		if enc := r.Get("encoding"); enc.Exists() && enc.String() != "base64" {
			return container.NewBytes(name, []byte(data.String())), nil
		}
	}

	if !data.Exists() || data.Type == gjson.Null {
		return nil, errors.WithFieldError(decodeError("%s value has no data", vt), name)
	}
	v, err := container.FromString(vt, name, dataText(data))
	if err != nil {
		return nil, errors.WithFieldError(err, name)
	}
	return v, nil
}
