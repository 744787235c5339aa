// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package jsonv2 converts containers to and from the JSON dialects used by
// other container implementations:
//
//     v2.0    {"container":{"version":"2.0","metadata":{...},"values":[...]}}
//     cpp     {"header":{...},"values":{"name":{"type":..,"data":..},...}}
//     python  the flat document produced by Container.ToJSON
//
// DetectFormat tells them apart, and ConvertFormat translates between them.
package jsonv2

import (
	"bytes"
	"encoding/json"
	"strings"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/tidwall/gjson"
	"go.e43.eu/container"
	cinterfaces "go.e43.eu/container/interfaces"
	"go.e43.eu/container/internal/errors"
)

var log = logger.GetOrCreate("container/jsonv2")

// Format identifies a JSON dialect
type Format string

const (
	V2      Format = "v2.0"
	Cpp     Format = "cpp"
	Python  Format = "python"
	Unknown Format = "unknown"
	Invalid Format = "invalid"
)

// ParseFormat maps a user supplied format name onto a Format. Besides the
// canonical names, "v2" and "flat" are accepted.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "v2.0", "v2":
		return V2, true
	case "cpp":
		return Cpp, true
	case "python", "flat":
		return Python, true
	}
	return Unknown, false
}

// DetectFormat reports which dialect doc is written in
func DetectFormat(doc string) Format {
	if !gjson.Valid(doc) {
		return Invalid
	}
	root := gjson.Parse(doc)
	if !root.IsObject() {
		return Unknown
	}

	if root.Get("container.version").String() == v2Version {
		return V2
	}
	if root.Get("header").Exists() && root.Get("values").IsObject() {
		return Cpp
	}
	if root.Get("message_type").Exists() && root.Get("values").IsArray() {
		return Python
	}
	return Unknown
}

// Decode parses doc in whichever dialect it is written in
func Decode(doc string) (*container.Container, Format, error) {
	f := DetectFormat(doc)
	log.Trace("detected JSON dialect", "format", string(f))

	var (
		c   *container.Container
		err error
	)
	switch f {
	case V2:
		c, err = FromV2JSON(doc)
	case Cpp:
		c, err = FromCppJSON(doc)
	case Python:
		c, err = container.FromJSON(doc)
	default:
		return nil, f, errors.UnsupportedFormatError{Format: string(f)}
	}
	return c, f, err
}

// Encode writes c in the given dialect
func Encode(c *container.Container, target Format, pretty bool) (string, error) {
	switch target {
	case V2:
		return ToV2JSON(c, pretty)
	case Cpp:
		return ToCppJSON(c, pretty)
	case Python:
		doc, err := c.ToJSON()
		if err != nil || pretty {
			return doc, err
		}
		var b bytes.Buffer
		if err := json.Compact(&b, []byte(doc)); err != nil {
			return "", err
		}
		return b.String(), nil
	default:
		return "", errors.UnsupportedFormatError{Format: string(target)}
	}
}

// ConvertFormat translates doc from its detected dialect into target
func ConvertFormat(doc string, target Format, pretty bool) (string, error) {
	// Check the target first so that nothing is parsed in vain
	switch target {
	case V2, Cpp, Python:
	default:
		return "", errors.UnsupportedFormatError{Format: string(target)}
	}

	c, _, err := Decode(doc)
	if err != nil {
		return "", err
	}
	return Encode(c, target, pretty)
}

// marshal encodes v without HTML escaping, optionally indented by two spaces
func marshal(v interface{}, pretty bool) (string, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

func decodeError(reason string, args ...interface{}) error {
	return errors.Decode("json", -1, reason, args...)
}

// dataText returns the text of a scalar data field. Numbers and bools use
// their raw JSON text, which keeps full integer precision.
func dataText(r gjson.Result) string {
	switch r.Type {
	case gjson.Number, gjson.True, gjson.False:
		return r.Raw
	default:
		return r.String()
	}
}

// lookupType reads a type given either as a numeric code or a name
func lookupType(r gjson.Result) (container.ValueType, bool) {
	if !r.Exists() {
		return container.NullType, false
	}
	return cinterfaces.ParseType(r.String())
}
