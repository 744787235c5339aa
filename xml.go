// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package container

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// ToXML returns the XML description of the container:
//
//     <container message_type=".." version="..">
//       <source id=".." sub_id=".."/><target id=".." sub_id=".."/>
//       <values><value name=".." type="..">text</value>...</values>
//     </container>
//
// Composite values are written as <container name=".."> and
// <array name=".." count=".."> elements wrapping their children. The output is
// not indented.
func (c *Container) ToXML() string {
	defer c.lock()()
	c.resolvePending()
	c.stats.serializations.Add(1)

	var b strings.Builder
	b.WriteString("<container")
	writeAttr(&b, "message_type", c.messageType)
	writeAttr(&b, "version", c.version)
	b.WriteString("><source")
	writeAttr(&b, "id", c.sourceID)
	writeAttr(&b, "sub_id", c.sourceSubID)
	b.WriteString("/><target")
	writeAttr(&b, "id", c.targetID)
	writeAttr(&b, "sub_id", c.targetSubID)
	b.WriteString("/><values>")
	for _, u := range c.units {
		appendValueXML(&b, u)
	}
	b.WriteString("</values></container>")
	return b.String()
}

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	escapeXML(b, value)
	b.WriteByte('"')
}

func escapeXML(b *strings.Builder, s string) {
	// strings.Builder never fails to write
	_ = xml.EscapeText(b, []byte(s))
}

func appendValueXML(b *strings.Builder, v Value) {
	switch v := v.(type) {
	case *ContainerValue:
		b.WriteString("<container")
		writeAttr(b, "name", v.name)
		b.WriteByte('>')
		for _, c := range v.children {
			appendValueXML(b, c)
		}
		b.WriteString("</container>")

	case *ArrayValue:
		b.WriteString("<array")
		writeAttr(b, "name", v.name)
		writeAttr(b, "count", strconv.Itoa(len(v.elements)))
		b.WriteByte('>')
		for _, e := range v.elements {
			appendValueXML(b, e)
		}
		b.WriteString("</array>")

	case *NullValue:
		b.WriteString("<value")
		writeAttr(b, "name", v.name)
		writeAttr(b, "type", NullType.String())
		b.WriteString("/>")

	default:
		b.WriteString("<value")
		writeAttr(b, "name", v.Name())
		writeAttr(b, "type", v.Type().String())
		b.WriteByte('>')
		escapeXML(b, v.ToString())
		b.WriteString("</value>")
	}
}
