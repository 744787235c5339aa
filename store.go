// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package container

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
	"go.e43.eu/container/internal/binary"
	"go.e43.eu/container/internal/errors"
)

// StoreBinaryVersion is the leading version byte of the binary store format
const StoreBinaryVersion = 1

// ValueStore maps unique keys to values. Setting an existing key replaces its
// value but keeps its position; iteration and serialization follow insertion
// order.
//
// Like Container, a ValueStore is only safe for concurrent use after
// EnableThreadSafety(true).
type ValueStore struct {
	guard
	stats stats

	keys   []string
	values map[string]Value
}

// NewValueStore constructs an empty store
func NewValueStore() *ValueStore {
	return &ValueStore{values: make(map[string]Value)}
}

// EnableThreadSafety turns the store's lock on or off. It must not be called
// while another goroutine is using the store.
func (s *ValueStore) EnableThreadSafety(enabled bool) {
	s.enabled.Store(enabled)
}

func (s *ValueStore) ThreadSafe() bool {
	return s.enabled.Load()
}

func (s *ValueStore) set(key string, v Value) {
	if s.values == nil {
		s.values = make(map[string]Value)
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = v
	s.stats.writes.Add(1)
}

// Set stores v under key, replacing any previous value. A nil v is rejected.
func (s *ValueStore) Set(key string, v Value) error {
	if isNilValue(v) {
		return errors.WithFieldError(checkValues([]Value{v}), key)
	}
	defer s.lock()()
	s.set(key, v)
	return nil
}

// Add is an alias of Set
func (s *ValueStore) Add(key string, v Value) error {
	return s.Set(key, v)
}

// Get returns the value stored under key
func (s *ValueStore) Get(key string) (Value, bool) {
	defer s.lock()()
	s.stats.reads.Add(1)
	v, ok := s.values[key]
	return v, ok
}

func (s *ValueStore) Contains(key string) bool {
	defer s.lock()()
	s.stats.reads.Add(1)
	_, ok := s.values[key]
	return ok
}

// Remove deletes key, returning whether it was present
func (s *ValueStore) Remove(key string) bool {
	defer s.lock()()
	if _, ok := s.values[key]; !ok {
		return false
	}
	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	s.stats.writes.Add(1)
	return true
}

func (s *ValueStore) Clear() {
	defer s.lock()()
	s.clear()
	s.stats.writes.Add(1)
}

func (s *ValueStore) clear() {
	s.keys = nil
	s.values = make(map[string]Value)
}

func (s *ValueStore) Size() int {
	defer s.lock()()
	return len(s.keys)
}

func (s *ValueStore) Empty() bool {
	return s.Size() == 0
}

// Keys returns the keys in insertion order
func (s *ValueStore) Keys() []string {
	defer s.lock()()
	s.stats.reads.Add(1)
	return append([]string(nil), s.keys...)
}

// Values returns the values in key insertion order
func (s *ValueStore) Values() []Value {
	defer s.lock()()
	s.stats.reads.Add(1)
	out := make([]Value, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.values[k])
	}
	return out
}

// Range calls fn for each entry in insertion order until fn returns false.
// The store's lock is not held while fn runs, so fn may use the store.
func (s *ValueStore) Range(fn func(key string, v Value) bool) {
	unlock := s.lock()
	keys := append([]string(nil), s.keys...)
	vals := make([]Value, len(keys))
	for i, k := range keys {
		vals[i] = s.values[k]
	}
	s.stats.reads.Add(1)
	unlock()

	for i, k := range keys {
		if !fn(k, vals[i]) {
			return
		}
	}
}

func (s *ValueStore) ReadCount() uint64 {
	return s.stats.reads.Load()
}

func (s *ValueStore) WriteCount() uint64 {
	return s.stats.writes.Load()
}

func (s *ValueStore) SerializationCount() uint64 {
	return s.stats.serializations.Load()
}

func (s *ValueStore) ResetStatistics() {
	s.stats.reset()
}

// Serialize returns the store as a JSON object mapping each key (in insertion
// order) to the flat JSON description of its value
func (s *ValueStore) Serialize() (string, error) {
	defer s.lock()()
	s.stats.serializations.Add(1)

	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return "", err
		}
		vb, err := json.Marshal(recordOf(s.values[k]))
		if err != nil {
			return "", errors.WithFieldError(err, k)
		}
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return b.String(), nil
}

// DeserializeStore decodes a store from the output of Serialize, preserving
// the document's key order
func DeserializeStore(doc string) (*ValueStore, error) {
	if !gjson.Valid(doc) {
		return nil, errors.Decode("json", -1, "invalid JSON")
	}
	root := gjson.Parse(doc)
	if !root.IsObject() {
		return nil, errors.Decode("json", -1, "expected object")
	}

	s := NewValueStore()
	var err error
	root.ForEach(func(key, item gjson.Result) bool {
		var v Value
		v, err = valueFromJSON(item)
		if err != nil {
			err = errors.WithFieldError(err, key.String())
			return false
		}
		s.set(key.String(), v)
		return true
	})
	if err != nil {
		return nil, err
	}
	s.stats.reset()
	return s, nil
}

// SerializeBinary encodes the store as
//
//     [version:u8=1][count:u32] then per entry
//     [key_len:u32][key][type:u8][value_len:u32][value]
//
// with every integer little-endian. Each value is its ToBytes() form.
func (s *ValueStore) SerializeBinary() ([]byte, error) {
	defer s.lock()()
	s.stats.serializations.Add(1)

	e := binary.NewEncoder()
	defer e.Release()

	e.EncodeUint8(StoreBinaryVersion)
	e.EncodeUint32(uint32(len(s.keys)))
	for _, k := range s.keys {
		v := s.values[k]
		if err := e.EncodeString(k); err != nil {
			return nil, errors.WithFieldError(err, k)
		}
		e.EncodeUint8(uint8(v.Type()))
		payload, err := payloadOf(v)
		if err != nil {
			return nil, errors.WithFieldError(err, k)
		}
		if err := e.EncodeBytes(payload); err != nil {
			return nil, errors.WithFieldError(err, k)
		}
	}
	return e.Bytes(), nil
}

// DeserializeBinary decodes the output of SerializeBinary. Every length is
// checked against the remaining input and trailing bytes are rejected.
func DeserializeBinary(data []byte) (*ValueStore, error) {
	d := binary.NewDecoder(data, "binary")

	ver, err := d.DecodeUint8("version")
	if err != nil {
		return nil, err
	}
	if ver != StoreBinaryVersion {
		return nil, errors.Decode("binary", 0, "unsupported store version %d", ver)
	}

	count, err := d.DecodeUint32("entry count")
	if err != nil {
		return nil, err
	}
	// Every entry occupies at least 9 bytes
	if uint64(count)*9 > uint64(d.Remaining()) {
		return nil, errors.Truncated("binary", d.Offset(), "entry list")
	}

	s := NewValueStore()
	for i := uint32(0); i < count; i++ {
		key, err := d.DecodeString("key")
		if err != nil {
			return nil, err
		}
		code, err := d.DecodeUint8("value type")
		if err != nil {
			return nil, errors.WithFieldError(err, key)
		}
		payload, err := d.DecodeBytes("value")
		if err != nil {
			return nil, errors.WithFieldError(err, key)
		}
		v, err := fromBinaryCode(code, key, payload)
		if err != nil {
			return nil, errors.WithFieldError(err, key)
		}
		s.set(key, v)
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	s.stats.reset()
	return s, nil
}
