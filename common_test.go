// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package container

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDirection int

const (
	bothTest testDirection = iota
	encodeTest
	decodeTest
)

type testcase struct {
	// Name of this test case
	Name string

	// Which directions to run this test in (defaults to both)
	Direction testDirection

	// The value to serialize, or to compare against after decoding
	Value Value

	// The wire fragment of the value
	Wire string

	// The binary form of the value, as returned by ToBytes. Binary checks are
	// skipped if nil.
	Bytes []byte

	// Error expected when decoding Wire
	DecErrorIs error

	// Comparator to use (instead of Equal) after successful decoding
	DecodeComparator func(t *testing.T, expt, actual Value)
}

func requireErrorIs(t *testing.T, err, target error) {
	t.Helper()
	require.Error(t, err, "expected an error matching %s", target)
	require.Truef(t, errors.Is(err, target), "Error expected to be %s, but was %s", target, err)
}

func isErr(err, target error) bool {
	return errors.Is(err, target)
}

func assertValuesEqual(t *testing.T, expt, actual Value) {
	t.Helper()
	if !Equal(expt, actual) {
		assert.Failf(t, "values differ", "expected %s\nactual   %s", describe(expt), describe(actual))
	}
}

func describe(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.Serialize()
}

func RunTestcases(t *testing.T, tcs []testcase) {
	for i := range tcs {
		tc := &tcs[i]
		if tc.DecodeComparator == nil {
			tc.DecodeComparator = assertValuesEqual
		}
	}

	t.Parallel()
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			if tc.Direction != decodeTest {
				t.Run("Encode", func(t *testing.T) {
					t.Parallel()
					assert.Equal(t, tc.Wire, tc.Value.Serialize(), "wire fragment should match")
					if tc.Bytes != nil {
						assert.Equal(t, tc.Bytes, tc.Value.ToBytes(), "binary form should match")
					}
				})
			}

			if tc.Direction != encodeTest {
				t.Run("Decode", func(t *testing.T) {
					t.Parallel()
					v, err := ParseValue(tc.Wire)
					if tc.DecErrorIs != nil {
						requireErrorIs(t, err, tc.DecErrorIs)
						return
					}
					require.NoError(t, err, "ParseValue should succeed")
					tc.DecodeComparator(t, tc.Value, v)
				})

				if tc.Bytes != nil {
					t.Run("DecodeBytes", func(t *testing.T) {
						t.Parallel()
						v, err := FromBytes(tc.Value.Type(), tc.Value.Name(), tc.Bytes)
						require.NoError(t, err, "FromBytes should succeed")
						tc.DecodeComparator(t, tc.Value, v)
					})
				}
			}

			if tc.Direction == bothTest {
				t.Run("JSON", func(t *testing.T) {
					t.Parallel()
					doc, err := tc.Value.ToJSON()
					require.NoError(t, err)
					v, err := ValueFromJSON(doc)
					require.NoError(t, err, "ValueFromJSON should succeed")
					tc.DecodeComparator(t, tc.Value, v)
				})
			}
		})
	}
}
