// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package wire implements the lexical layer of the text wire format:
//
//     @header={{[ID,value];...}}@data={{[name,type,value];...}};
//
// It locates the header and data blocks and splits them into flat tuples.
// Rebuilding the value tree from the tuple stream is left to the caller.
package wire

import (
	"strings"

	logger "github.com/multiversx/mx-chain-logger-go"
	"go.e43.eu/container/internal/errors"
)

var log = logger.GetOrCreate("container/wire")

const (
	headerMarker = "@header="
	dataMarker   = "@data="
	closeTuple   = "];"
	escapedClose = `\];`
	format       = "wire"
)

// Tuple is one bracketed item of the header or data block. Header tuples
// carry the field key in Name and leave Type empty.
type Tuple struct {
	Name  string
	Type  string
	Value string

	// Byte offset of the opening bracket within the full input
	Offset int
}

// Document is the result of splitting the envelope
type Document struct {
	Header []Tuple

	// Body is the unparsed input from the start of the data marker, or empty
	// if the input has no data block
	Body string
	// Offset of Body within the full input
	BodyOffset int
}

// HasData returns whether the input carried a data block
func (d *Document) HasData() bool {
	return d.Body != ""
}

// Escape replaces every tuple terminator in s with its escaped form
func Escape(s string) string {
	if !strings.Contains(s, closeTuple) {
		return s
	}
	return strings.ReplaceAll(s, closeTuple, escapedClose)
}

// Unescape restores escaped tuple terminators
func Unescape(s string) string {
	if !strings.Contains(s, escapedClose) {
		return s
	}
	return strings.ReplaceAll(s, escapedClose, closeTuple)
}

type scanner struct {
	src     string
	pos     int
	base    int
	lenient bool
}

func (s *scanner) errorf(reason string, args ...interface{}) error {
	return errors.Decode(format, s.base+s.pos, reason, args...)
}

func (s *scanner) truncated(what string) error {
	return errors.Truncated(format, s.base+s.pos, what)
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\r', '\n':
			s.pos++
		default:
			return
		}
	}
}

func (s *scanner) rest() string {
	return s.src[s.pos:]
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) consume(lit string) bool {
	if strings.HasPrefix(s.rest(), lit) {
		s.pos += len(lit)
		return true
	}
	return false
}

// openBlock consumes the `{{` opening a block. A single brace is tolerated.
func (s *scanner) openBlock() error {
	s.skipSpace()
	if !s.consume("{") {
		if s.eof() {
			return s.truncated("block")
		}
		return s.errorf("expected '{{'")
	}
	s.consume("{")
	return nil
}

// closeBlock consumes the `}}` closing a block. A single brace is tolerated.
func (s *scanner) closeBlock() bool {
	if !s.consume("}") {
		return false
	}
	s.consume("}")
	return true
}

// findClose returns the index (relative to src) of the first unescaped tuple
// terminator at or after s.pos
func (s *scanner) findClose() int {
	for from := s.pos; ; {
		i := strings.Index(s.src[from:], closeTuple)
		if i < 0 {
			return -1
		}
		at := from + i
		if at > s.pos && s.src[at-1] == '\\' {
			from = at + len(closeTuple)
			continue
		}
		return at
	}
}

// tuple scans one `[f1,f2,...];` item with the given number of fields. The
// last field runs to the terminator and may contain commas.
func (s *scanner) tuple(fields int) (Tuple, error) {
	t := Tuple{Offset: s.base + s.pos}
	if !s.consume("[") {
		return t, s.errorf("expected '['")
	}

	for i := 0; i < fields-1; i++ {
		rest := s.rest()
		c := strings.IndexByte(rest, ',')
		e := strings.Index(rest, closeTuple)
		switch {
		case c < 0 && e < 0:
			return t, s.truncated("tuple")
		case c < 0 || (e >= 0 && e < c):
			return t, s.errorf("tuple has fewer than %d fields", fields)
		}

		field := rest[:c]
		s.pos += c + 1
		switch i {
		case 0:
			t.Name = field
		case 1:
			t.Type = strings.TrimSpace(field)
		}
	}

	end := s.findClose()
	if end < 0 {
		return t, s.truncated("tuple")
	}
	t.Value = Unescape(s.src[s.pos:end])
	s.pos = end + len(closeTuple)
	return t, nil
}

// resync skips past the next tuple terminator after a malformed tuple
func (s *scanner) resync() bool {
	end := s.findClose()
	if end < 0 {
		s.pos = len(s.src)
		return false
	}
	s.pos = end + len(closeTuple)
	return true
}

// tuples scans tuples until the block is closed
func (s *scanner) tuples(fields int) ([]Tuple, error) {
	var out []Tuple
	for {
		s.skipSpace()
		switch {
		case s.eof():
			if s.lenient {
				log.Warn("block not terminated", "offset", s.base+s.pos)
				return out, nil
			}
			return out, s.truncated("block")

		case s.closeBlock():
			return out, nil
		}

		t, err := s.tuple(fields)
		if err != nil {
			if !s.lenient {
				return out, err
			}
			log.Warn("skipping malformed tuple", "error", err)
			if !s.resync() {
				return out, nil
			}
			continue
		}
		out = append(out, t)
	}
}

// Split locates the header block and parses its tuples. The data block is
// returned unparsed in Document.Body.
func Split(src string, lenient bool) (*Document, error) {
	s := &scanner{src: src, lenient: lenient}

	i := strings.Index(src, headerMarker)
	if i < 0 {
		return nil, s.errorf("missing %s block", headerMarker)
	}
	if strings.TrimSpace(src[:i]) != "" && !lenient {
		return nil, s.errorf("unexpected data before %s", headerMarker)
	}
	s.pos = i + len(headerMarker)

	if err := s.openBlock(); err != nil {
		return nil, err
	}

	header, err := s.tuples(2)
	if err != nil {
		return nil, err
	}

	doc := &Document{Header: header}
	s.skipSpace()
	switch {
	case strings.HasPrefix(s.rest(), dataMarker):
		doc.Body = s.rest()
		doc.BodyOffset = s.pos
	case s.eof():
	default:
		if !lenient {
			return nil, s.errorf("expected %s block", dataMarker)
		}
		j := strings.Index(s.rest(), dataMarker)
		if j < 0 {
			log.Warn("ignoring trailing data after header", "offset", s.pos)
			break
		}
		log.Warn("skipping unexpected data before data block", "offset", s.pos)
		s.pos += j
		doc.Body = s.rest()
		doc.BodyOffset = s.pos
	}
	return doc, nil
}

// ScanData splits a data block (as returned in Document.Body) into tuples.
// base is the offset of body within the full input.
func ScanData(body string, base int, lenient bool) ([]Tuple, error) {
	s := &scanner{src: body, base: base, lenient: lenient}
	if !s.consume(dataMarker) {
		return nil, s.errorf("expected %s", dataMarker)
	}
	if err := s.openBlock(); err != nil {
		if lenient {
			log.Warn("malformed data block", "error", err)
			return nil, nil
		}
		return nil, err
	}

	tuples, err := s.tuples(3)
	if err != nil {
		return nil, err
	}

	s.consume(";")
	s.skipSpace()
	if !s.eof() {
		if !lenient {
			return nil, s.errorf("%d trailing bytes", len(s.rest()))
		}
		log.Warn("ignoring trailing data", "offset", s.base+s.pos)
	}
	return tuples, nil
}

// ScanFragment splits a bare concatenation of value tuples (no envelope)
func ScanFragment(src string, lenient bool) ([]Tuple, error) {
	s := &scanner{src: src, lenient: lenient}
	var out []Tuple
	for {
		s.skipSpace()
		if s.eof() {
			return out, nil
		}
		t, err := s.tuple(3)
		if err != nil {
			if !lenient {
				return out, err
			}
			log.Warn("skipping malformed tuple", "error", err)
			if !s.resync() {
				return out, nil
			}
			continue
		}
		out = append(out, t)
	}
}
