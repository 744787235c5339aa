// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package container

import (
	"fmt"
	"strconv"
	"strings"

	cinterfaces "go.e43.eu/container/interfaces"
	"go.e43.eu/container/internal/errors"
	"go.e43.eu/container/internal/wire"
)

// DecodeOptions control how wire input is decoded
type DecodeOptions struct {
	// Only parse the header. The data block is kept unparsed until
	// Container.ParseValues is called (or the values are first accessed).
	HeaderOnly bool

	// Skip malformed tuples and values (logging a warning for each) instead of
	// failing. Composites which declare more children than follow keep the
	// children which do.
	Lenient bool
}

// treeParser rebuilds the value tree from the flat tuple stream. Composite
// tuples carry their child count; the next that many subtrees are their
// children, after which parsing resumes with the composite's next sibling.
type treeParser struct {
	tuples  []wire.Tuple
	pos     int
	lenient bool
}

func (p *treeParser) parseAll() ([]Value, error) {
	out := make([]Value, 0, len(p.tuples))
	for p.pos < len(p.tuples) {
		v, err := p.next()
		if err != nil {
			return nil, err
		}
		if v != nil {
			out = append(out, v)
		}
	}
	return out, nil
}

// next consumes one subtree. It returns a nil value (and no error) for a
// subtree skipped in lenient mode.
func (p *treeParser) next() (Value, error) {
	t := p.tuples[p.pos]
	p.pos++

	vt, ok := cinterfaces.LookupCode(t.Type)
	if !ok {
		log.Warn("unknown type code, decoding as null", "name", t.Name, "code", t.Type)
		return NewNull(t.Name), nil
	}

	if cinterfaces.IsComposite(vt) {
		return p.composite(t, vt)
	}

	v, err := valueFromWire(vt, t.Name, t.Value)
	if err != nil {
		err = errors.WithFieldError(errors.DecodeError{Format: "wire", Offset: t.Offset, Err: err}, t.Name)
		if p.lenient {
			log.Warn("skipping malformed value", "name", t.Name, "error", err)
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

func (p *treeParser) composite(t wire.Tuple, vt ValueType) (Value, error) {
	count, err := strconv.ParseUint(strings.TrimSpace(t.Value), 10, 31)
	if err != nil {
		err = errors.WithFieldError(errors.Decode("wire", t.Offset, "invalid child count '%s'", t.Value), t.Name)
		if !p.lenient {
			return nil, err
		}
		log.Warn("treating composite as empty", "name", t.Name, "error", err)
		count = 0
	}

	n := int(count)
	if remaining := len(p.tuples) - p.pos; n > remaining {
		reason := fmt.Sprintf("%s declares %d children, %d tuples follow", vt, n, remaining)
		if !p.lenient {
			return nil, errors.WithFieldError(errors.Truncated("wire", t.Offset, reason), t.Name)
		}
		log.Warn("composite truncated", "name", t.Name, "reason", reason)
	}

	children := make([]Value, 0, minInt(n, len(p.tuples)-p.pos))
	for i := 0; i < n && p.pos < len(p.tuples); i++ {
		child, err := p.next()
		if err != nil {
			return nil, errors.WithFieldError(err, t.Name)
		}
		if child != nil {
			children = append(children, child)
		}
	}
	return newComposite(vt, t.Name, children), nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// valueFromWire parses a scalar from its wire tuple value. Only strings keep
// surrounding whitespace.
func valueFromWire(t ValueType, name, text string) (Value, error) {
	if t == StringType {
		return NewString(name, text), nil
	}
	return FromString(t, name, strings.TrimSpace(text))
}

// header holds the six routing fields
type header struct {
	sourceID    string
	sourceSubID string
	targetID    string
	targetSubID string
	messageType string
	version     string
}

func defaultHeader() header {
	return header{messageType: DefaultMessageType, version: DefaultVersion}
}

func (h *header) set(f wire.HeaderField, v string) {
	switch f {
	case wire.TargetID:
		h.targetID = v
	case wire.TargetSubID:
		h.targetSubID = v
	case wire.SourceID:
		h.sourceID = v
	case wire.SourceSubID:
		h.sourceSubID = v
	case wire.MessageType:
		h.messageType = v
	case wire.Version:
		h.version = v
	}
}

func (h *header) appendWire(w *wire.Writer) {
	w.BeginHeader()
	w.HeaderTuple(wire.TargetID, h.targetID)
	w.HeaderTuple(wire.TargetSubID, h.targetSubID)
	w.HeaderTuple(wire.SourceID, h.sourceID)
	w.HeaderTuple(wire.SourceSubID, h.sourceSubID)
	w.HeaderTuple(wire.MessageType, h.messageType)
	w.HeaderTuple(wire.Version, h.version)
}

// parseHeader maps header tuples onto the header fields. Values are kept
// verbatim. Unknown keys are ignored so that peers may extend the header.
func parseHeader(tuples []wire.Tuple) header {
	h := defaultHeader()
	for _, t := range tuples {
		f, ok := wire.LookupHeaderKey(t.Name)
		if !ok {
			log.Debug("ignoring unknown header key", "key", t.Name)
			continue
		}
		h.set(f, t.Value)
	}
	return h
}

// pendingData is a data block kept unparsed by a header only decode
type pendingData struct {
	body    string
	offset  int
	lenient bool
}

func (pd *pendingData) parse() ([]Value, error) {
	tuples, err := wire.ScanData(pd.body, pd.offset, pd.lenient)
	if err != nil {
		return nil, err
	}
	p := treeParser{tuples: tuples, lenient: pd.lenient}
	return p.parseAll()
}
