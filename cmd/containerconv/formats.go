// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"go.e43.eu/container"
	"go.e43.eu/container/adapters/jsonv2"
	"go.e43.eu/container/serializers/msgpack"
)

const (
	formatWire    = "wire"
	formatXML     = "xml"
	formatMsgpack = "msgpack"
)

func isWire(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte("@header"))
}

// detect names the format of data without fully decoding it, except for
// MessagePack which has no distinguishing prefix
func detect(data []byte) string {
	if isWire(data) {
		return formatWire
	}
	if f := jsonv2.DetectFormat(string(data)); f != jsonv2.Invalid {
		return string(f)
	}
	if _, err := msgpack.MsgpackToContainer(data); err == nil {
		return formatMsgpack
	}
	return string(jsonv2.Unknown)
}

// decode parses data in whichever supported format it is written in
func decode(data []byte, lenient bool) (*container.Container, string, error) {
	if isWire(data) {
		c, err := container.ParseWith(string(data), container.DecodeOptions{Lenient: lenient})
		return c, formatWire, err
	}
	if jsonv2.DetectFormat(string(data)) != jsonv2.Invalid {
		c, f, err := jsonv2.Decode(string(data))
		return c, string(f), err
	}
	c, err := msgpack.MsgpackToContainer(data)
	if err != nil {
		return nil, "", container.UnsupportedFormatError{Format: string(jsonv2.Unknown)}
	}
	return c, formatMsgpack, nil
}

// encode writes c in the named format
func encode(c *container.Container, format string, pretty bool) ([]byte, error) {
	switch strings.ToLower(format) {
	case formatWire:
		return c.SerializeBytes(), nil
	case formatXML:
		return []byte(c.ToXML()), nil
	case formatMsgpack:
		return msgpack.ContainerToMsgpack(c)
	}

	f, ok := jsonv2.ParseFormat(format)
	if !ok {
		return nil, container.UnsupportedFormatError{Format: format}
	}
	doc, err := jsonv2.Encode(c, f, pretty)
	return []byte(doc), err
}

// inspect prints the header and value tree of c
func inspect(w io.Writer, c *container.Container) {
	fmt.Fprintf(w, "source:       %s/%s\n", c.SourceID(), c.SourceSubID())
	fmt.Fprintf(w, "target:       %s/%s\n", c.TargetID(), c.TargetSubID())
	fmt.Fprintf(w, "message_type: %s\n", c.MessageType())
	fmt.Fprintf(w, "version:      %s\n", c.Version())
	fmt.Fprintf(w, "values:       %d\n", c.Len())
	inspectValues(w, c.Units(), 1)
}

func inspectValues(w io.Writer, vs []container.Value, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, v := range vs {
		switch v := v.(type) {
		case *container.ContainerValue:
			fmt.Fprintf(w, "%s%s (%s, %d children)\n", indent, v.Name(), v.Type(), v.ChildCount())
			inspectValues(w, v.Children(), depth+1)
		case *container.ArrayValue:
			fmt.Fprintf(w, "%s%s (%s, %d elements)\n", indent, v.Name(), v.Type(), v.Len())
			inspectValues(w, v.Values(), depth+1)
		case *container.NullValue:
			fmt.Fprintf(w, "%s%s (%s)\n", indent, v.Name(), v.Type())
		default:
			fmt.Fprintf(w, "%s%s (%s) = %s\n", indent, v.Name(), v.Type(), v.ToString())
		}
	}
}
