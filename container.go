// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package container

import (
	"sync"
	"sync/atomic"

	"go.e43.eu/container/internal/wire"
)

const (
	DefaultMessageType = "data_container"
	DefaultVersion     = "1.0.0.0"
)

// Stats are the access counters of a Container or ValueStore
type Stats struct {
	Reads          uint64
	Writes         uint64
	Serializations uint64
}

type stats struct {
	reads          atomic.Uint64
	writes         atomic.Uint64
	serializations atomic.Uint64
}

func (s *stats) snapshot() Stats {
	return Stats{
		Reads:          s.reads.Load(),
		Writes:         s.writes.Load(),
		Serializations: s.serializations.Load(),
	}
}

func (s *stats) reset() {
	s.reads.Store(0)
	s.writes.Store(0)
	s.serializations.Store(0)
}

// guard is an optionally enabled mutex. Go mutexes are not reentrant, so
// exported methods take the lock once and call unexported helpers which
// assume it is held.
type guard struct {
	mu      sync.Mutex
	enabled atomic.Bool
}

// lock acquires the mutex if thread safety is enabled, and returns the
// matching unlock function:
//
//    defer g.lock()()
func (g *guard) lock() func() {
	if !g.enabled.Load() {
		return func() {}
	}
	g.mu.Lock()
	return g.mu.Unlock
}

// Container is a message: six routing header fields and an ordered list of
// values (units). Unit names need not be unique; lookups by name return the
// first match unless an index is given.
//
// A Container is not safe for concurrent use unless EnableThreadSafety(true)
// has been called, after which every method holds the container's lock.
type Container struct {
	guard
	stats stats

	header
	units []Value

	// Cached output of Serialize; valid while dirty is false
	cache string
	dirty bool

	// Unparsed data block left by a header only decode
	pending *pendingData
}

var _ Parent = &Container{}

// New constructs an empty container with the default header
func New() *Container {
	return &Container{header: defaultHeader(), dirty: true}
}

// NewMessage constructs an empty container with the given routing header
func NewMessage(sourceID, sourceSubID, targetID, targetSubID, messageType string) *Container {
	c := New()
	c.sourceID, c.sourceSubID = sourceID, sourceSubID
	c.targetID, c.targetSubID = targetID, targetSubID
	c.messageType = messageType
	return c
}

// Parse decodes a wire document into a new container
func Parse(s string) (*Container, error) {
	return ParseWith(s, DecodeOptions{})
}

// ParseWith decodes a wire document into a new container with the given options
func ParseWith(s string, opts DecodeOptions) (*Container, error) {
	c := New()
	if err := c.DeserializeWith(s, opts); err != nil {
		return nil, err
	}
	return c, nil
}

// EnableThreadSafety turns the per-container lock on or off. It must not be
// called while another goroutine is using the container.
func (c *Container) EnableThreadSafety(enabled bool) {
	c.enabled.Store(enabled)
}

// ThreadSafe returns whether the per-container lock is enabled
func (c *Container) ThreadSafe() bool {
	return c.enabled.Load()
}

// Invalidate drops the cached serialization. It is called by composite values
// held by the container when their children change.
func (c *Container) Invalidate() {
	defer c.lock()()
	c.dirty = true
}

func (c *Container) modified() {
	c.dirty = true
	c.stats.writes.Add(1)
}

// Stats returns the access counters
func (c *Container) Stats() Stats {
	return c.stats.snapshot()
}

// ResetStats zeroes the access counters
func (c *Container) ResetStats() {
	c.stats.reset()
}

func (c *Container) SourceID() string {
	defer c.lock()()
	return c.sourceID
}

func (c *Container) SourceSubID() string {
	defer c.lock()()
	return c.sourceSubID
}

func (c *Container) TargetID() string {
	defer c.lock()()
	return c.targetID
}

func (c *Container) TargetSubID() string {
	defer c.lock()()
	return c.targetSubID
}

func (c *Container) MessageType() string {
	defer c.lock()()
	return c.messageType
}

func (c *Container) Version() string {
	defer c.lock()()
	return c.version
}

// SetSource sets the source routing identifiers
func (c *Container) SetSource(id, subID string) {
	defer c.lock()()
	c.sourceID, c.sourceSubID = id, subID
	c.modified()
}

// SetTarget sets the target routing identifiers
func (c *Container) SetTarget(id, subID string) {
	defer c.lock()()
	c.targetID, c.targetSubID = id, subID
	c.modified()
}

func (c *Container) SetMessageType(messageType string) {
	defer c.lock()()
	c.messageType = messageType
	c.modified()
}

func (c *Container) SetVersion(version string) {
	defer c.lock()()
	c.version = version
	c.modified()
}

// SwapHeader exchanges the source and target identifiers, as when replying to
// a message
func (c *Container) SwapHeader() {
	defer c.lock()()
	c.sourceID, c.targetID = c.targetID, c.sourceID
	c.sourceSubID, c.targetSubID = c.targetSubID, c.sourceSubID
	c.modified()
}

// resolvePending parses a data block left by a header only decode. Values
// which cannot be parsed are dropped.
func (c *Container) resolvePending() {
	if c.pending == nil {
		return
	}
	if err := c.parsePending(); err != nil {
		log.Warn("discarding unparsable data block", "error", err)
	}
}

func (c *Container) parsePending() error {
	pd := c.pending
	c.pending = nil
	c.dirty = true

	units, err := pd.parse()
	if err != nil {
		return err
	}
	c.setUnits(units)
	return nil
}

// ParseValues completes a header only decode, parsing the retained data
// block. It does nothing if there is no pending data.
func (c *Container) ParseValues() error {
	defer c.lock()()
	if c.pending == nil {
		return nil
	}
	return c.parsePending()
}

// HasPendingValues returns whether the container holds an unparsed data block
func (c *Container) HasPendingValues() bool {
	defer c.lock()()
	return c.pending != nil
}

func (c *Container) setUnits(units []Value) {
	for _, u := range c.units {
		if u.Parent() == Parent(c) {
			u.SetParent(nil)
		}
	}
	c.units = units
	for _, u := range units {
		u.SetParent(c)
	}
}

// Add appends values to the container and takes ownership of them. Nothing
// is added if any value is nil.
func (c *Container) Add(values ...Value) error {
	if err := checkValues(values); err != nil {
		return err
	}
	defer c.lock()()
	c.resolvePending()
	for _, v := range values {
		v.SetParent(c)
		c.units = append(c.units, v)
	}
	c.modified()
	return nil
}

// SetUnits replaces every value in the container. The container is left
// unchanged if any value is nil.
func (c *Container) SetUnits(values []Value) error {
	if err := checkValues(values); err != nil {
		return err
	}
	defer c.lock()()
	c.pending = nil
	c.setUnits(append([]Value(nil), values...))
	c.modified()
	return nil
}

// Remove removes every value with the given name, returning the number removed
func (c *Container) Remove(name string) int {
	defer c.lock()()
	c.resolvePending()
	var removed int
	c.units, removed = removeNamed(c.units, name)
	if removed > 0 {
		c.modified()
	}
	return removed
}

// RemoveValue removes the given value (compared by identity), returning
// whether it was found
func (c *Container) RemoveValue(v Value) bool {
	defer c.lock()()
	c.resolvePending()
	for i, u := range c.units {
		if u == v {
			u.SetParent(nil)
			c.units = append(c.units[:i], c.units[i+1:]...)
			c.modified()
			return true
		}
	}
	return false
}

// ClearValues removes every value
func (c *Container) ClearValues() {
	defer c.lock()()
	c.pending = nil
	c.setUnits(nil)
	c.modified()
}

// Initialize resets the container to its freshly constructed state, keeping
// the thread safety setting
func (c *Container) Initialize() {
	defer c.lock()()
	c.pending = nil
	c.setUnits(nil)
	c.header = defaultHeader()
	c.cache = ""
	c.modified()
}

// Len returns the number of top level values
func (c *Container) Len() int {
	defer c.lock()()
	c.resolvePending()
	return len(c.units)
}

// Units returns a copy of the list of top level values
func (c *Container) Units() []Value {
	defer c.lock()()
	c.resolvePending()
	c.stats.reads.Add(1)
	return append([]Value(nil), c.units...)
}

// ValueArray returns every top level value with the given name, in order
func (c *Container) ValueArray(name string) []Value {
	defer c.lock()()
	c.resolvePending()
	c.stats.reads.Add(1)
	return valuesNamed(c.units, name)
}

// GetValue returns the first top level value with the given name, or nil
func (c *Container) GetValue(name string) Value {
	return c.GetValueIndex(name, 0)
}

// GetValueIndex returns the index'th top level value with the given name, or nil
func (c *Container) GetValueIndex(name string, index int) Value {
	defer c.lock()()
	c.resolvePending()
	c.stats.reads.Add(1)
	return nthNamed(c.units, name, index)
}

// Copy returns a new container with the same header. Values are deep copied
// if withValues is set; otherwise the copy is empty.
func (c *Container) Copy(withValues bool) *Container {
	defer c.lock()()

	n := New()
	n.header = c.header
	if withValues {
		c.resolvePending()
		units := make([]Value, 0, len(c.units))
		for _, u := range c.units {
			units = append(units, Clone(u))
		}
		n.setUnits(units)
	}
	return n
}

// Serialize returns the wire form of the container. The result is cached
// until the container is next modified.
func (c *Container) Serialize() string {
	defer c.lock()()
	return c.serialize()
}

func (c *Container) serialize() string {
	c.stats.serializations.Add(1)
	if !c.dirty {
		return c.cache
	}

	var w wire.Writer
	c.header.appendWire(&w)
	if c.pending != nil {
		// Header only decode: re-emit the data block untouched
		w.Raw("}}")
		w.Raw(trimBody(c.pending.body))
	} else {
		w.BeginData()
		for _, u := range c.units {
			w.Raw(serialize(u))
		}
		w.End()
	}

	c.cache = w.String()
	c.dirty = false
	return c.cache
}

// SerializeBytes returns the wire form as a byte slice
func (c *Container) SerializeBytes() []byte {
	return []byte(c.Serialize())
}

// Deserialize replaces the container's header and values with those decoded
// from s. On error the container is left unchanged.
func (c *Container) Deserialize(s string) error {
	return c.DeserializeWith(s, DecodeOptions{})
}

// DeserializeBytes is Deserialize for a byte slice
func (c *Container) DeserializeBytes(b []byte) error {
	return c.DeserializeWith(string(b), DecodeOptions{})
}

// DeserializeWith is Deserialize with explicit options
func (c *Container) DeserializeWith(s string, opts DecodeOptions) error {
	doc, err := wire.Split(s, opts.Lenient)
	if err != nil {
		return err
	}
	h := parseHeader(doc.Header)

	var (
		units []Value
		pd    *pendingData
	)
	if doc.HasData() {
		pd = &pendingData{body: doc.Body, offset: doc.BodyOffset, lenient: opts.Lenient}
		if !opts.HeaderOnly {
			units, err = pd.parse()
			if err != nil {
				return err
			}
			pd = nil
		}
	}

	defer c.lock()()
	c.header = h
	c.pending = pd
	c.setUnits(units)
	c.modified()
	return nil
}

// trimBody strips trailing whitespace from a retained data block
func trimBody(body string) string {
	end := len(body)
	for end > 0 {
		switch body[end-1] {
		case ' ', '\t', '\r', '\n':
			end--
			continue
		}
		break
	}
	return body[:end]
}
