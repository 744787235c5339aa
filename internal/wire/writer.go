// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package wire

import (
	"strconv"
	"strings"
)

// HeaderField identifies one of the six header fields by its numeric wire ID
type HeaderField int

const (
	TargetID HeaderField = iota + 1
	TargetSubID
	SourceID
	SourceSubID
	MessageType
	Version

	NumHeaderFields = int(Version)
)

var legacyHeaderKeys = map[string]HeaderField{
	"target_id":     TargetID,
	"target_sub_id": TargetSubID,
	"source_id":     SourceID,
	"source_sub_id": SourceSubID,
	"message_type":  MessageType,
	"version":       Version,
}

// LookupHeaderKey resolves a header tuple key. Numeric IDs are the canonical
// form; the legacy string keys are accepted as well.
func LookupHeaderKey(key string) (HeaderField, bool) {
	key = strings.TrimSpace(key)
	if n, err := strconv.Atoi(key); err == nil {
		if n >= int(TargetID) && n <= int(Version) {
			return HeaderField(n), true
		}
		return 0, false
	}
	f, ok := legacyHeaderKeys[key]
	return f, ok
}

// Writer builds a wire document
type Writer struct {
	b strings.Builder
}

// Grow reserves space for at least n more bytes
func (w *Writer) Grow(n int) {
	w.b.Grow(n)
}

// BeginHeader opens the header block
func (w *Writer) BeginHeader() {
	w.b.WriteString(headerMarker)
	w.b.WriteString("{{")
}

// HeaderTuple writes a `[ID,value];` header item
func (w *Writer) HeaderTuple(f HeaderField, value string) {
	w.b.WriteByte('[')
	w.b.WriteString(strconv.Itoa(int(f)))
	w.b.WriteByte(',')
	w.b.WriteString(Escape(value))
	w.b.WriteString(closeTuple)
}

// BeginData closes the header block and opens the data block
func (w *Writer) BeginData() {
	w.b.WriteString("}}")
	w.b.WriteString(dataMarker)
	w.b.WriteString("{{")
}

// Raw appends an already serialized fragment
func (w *Writer) Raw(s string) {
	w.b.WriteString(s)
}

// End closes the data block
func (w *Writer) End() {
	w.b.WriteString("}};")
}

// String returns the document written so far
func (w *Writer) String() string {
	return w.b.String()
}

// AppendTuple appends a `[name,code,value];` value item to b. value is
// escaped.
func AppendTuple(b *strings.Builder, name, code, value string) {
	b.Grow(len(name) + len(code) + len(value) + 4)
	b.WriteByte('[')
	b.WriteString(name)
	b.WriteByte(',')
	b.WriteString(code)
	b.WriteByte(',')
	b.WriteString(Escape(value))
	b.WriteString(closeTuple)
}
