// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package container

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"io/ioutil"
	"testing"
)

func EncodeBenchmarkCommon(b *testing.B, ob interface{}) {
	b.Run("Marshal", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := Marshal(ob)
			if err != nil {
				b.Fatalf("Marshal: %s", err)
			}
		}
	})

	c, err := Marshal(ob)
	if err != nil {
		b.Fatalf("Marshal: %s", err)
	}

	b.Run("Serialize", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			c.Invalidate()
			_ = c.Serialize()
		}
	})

	b.Run("SerializeCached", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = c.Serialize()
		}
	})

	b.Run("ToJSON", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := c.ToJSON()
			if err != nil {
				b.Fatalf("ToJSON: %s", err)
			}
		}
	})

	b.Run("StoreBinary", func(b *testing.B) {
		s := NewValueStore()
		for _, u := range c.Units() {
			s.Set(u.Name(), u)
		}
		for i := 0; i < b.N; i++ {
			_, err := s.SerializeBinary()
			if err != nil {
				b.Fatalf("SerializeBinary: %s", err)
			}
		}
	})

	b.Run("JSONMarshal", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := json.Marshal(ob)
			if err != nil {
				b.Fatalf("json.Marshal: %s", err)
			}
		}
	})

	b.Run("GobEncoderDiscard", func(b *testing.B) {
		w := gob.NewEncoder(ioutil.Discard)
		for i := 0; i < b.N; i++ {
			err := w.Encode(ob)
			if err != nil {
				b.Fatalf("Encode: %s", err)
			}
		}
	})

	b.Run("JSONEncoderBuffer", func(b *testing.B) {
		var buf bytes.Buffer
		w := json.NewEncoder(&buf)
		for i := 0; i < b.N; i++ {
			err := w.Encode(ob)
			if err != nil {
				b.Fatalf("Encode: %s", err)
			}

			if (i % 2048) == 0 {
				buf.Reset()
			}
		}
	})
}

func DecodeBenchmarkCommon(b *testing.B, ob interface{}) {
	c, err := Marshal(ob)
	if err != nil {
		b.Fatalf("Marshal: %s", err)
	}
	wire := c.Serialize()
	doc, err := c.ToJSON()
	if err != nil {
		b.Fatalf("ToJSON: %s", err)
	}

	b.Run("Parse", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := Parse(wire)
			if err != nil {
				b.Fatalf("Parse: %s", err)
			}
		}
	})

	b.Run("ParseHeaderOnly", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := ParseWith(wire, DecodeOptions{HeaderOnly: true})
			if err != nil {
				b.Fatalf("ParseWith: %s", err)
			}
		}
	})

	b.Run("FromJSON", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := FromJSON(doc)
			if err != nil {
				b.Fatalf("FromJSON: %s", err)
			}
		}
	})

	b.Run("Unmarshal", func(b *testing.B) {
		parsed, err := Parse(wire)
		if err != nil {
			b.Fatalf("Parse: %s", err)
		}
		for i := 0; i < b.N; i++ {
			err := Unmarshal(parsed, &map[string]interface{}{})
			if err != nil {
				b.Fatalf("Unmarshal: %s", err)
			}
		}
	})
}

type benchStruct struct {
	X int32
	Y int64
	S string
	O []byte
	F float64
	L []string
	N struct {
		A uint16
		B bool
	}
}

func newBenchStruct() *benchStruct {
	s := &benchStruct{
		X: 123456,
		Y: 12345678,
		S: "Hello Encoders",
		O: []byte("Byte Slice"),
		F: 3.25,
		L: []string{"one", "two", "three"},
	}
	s.N.A = 512
	s.N.B = true
	return s
}

func BenchmarkSimpleStructEncode(b *testing.B) {
	EncodeBenchmarkCommon(b, newBenchStruct())
}

func BenchmarkSimpleStructDecode(b *testing.B) {
	DecodeBenchmarkCommon(b, newBenchStruct())
}

func BenchmarkMapEncode(b *testing.B) {
	m := map[string]interface{}{
		"name":   "Alice",
		"age":    int32(30),
		"active": true,
		"score":  95.5,
		"tags":   []string{"a", "b"},
	}
	EncodeBenchmarkCommon(b, m)
}

func BenchmarkDeepNesting(b *testing.B) {
	c := New()
	c.Add(nest(16))
	wire := c.Serialize()

	b.Run("Serialize", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			c.Invalidate()
			_ = c.Serialize()
		}
	})

	b.Run("Parse", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := Parse(wire)
			if err != nil {
				b.Fatalf("Parse: %s", err)
			}
		}
	})
}
