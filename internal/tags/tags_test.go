// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package tags

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cinterfaces "go.e43.eu/container/interfaces"
	"go.e43.eu/container/internal/errors"
)

func TestParseStructTag(t *testing.T) {
	t.Parallel()

	type sample struct {
		Plain   int32
		Named   string `container:"renamed"`
		Skipped int    `container:"-"`
		Long    int64  `container:"l,long"`
		Omit    string `container:",omitempty"`
		Blob    []byte `container:"b,bytes"`
	}

	st := reflect.TypeOf(sample{})
	parse := func(i int) Tag {
		tag, err := ParseStructTag(st.Field(i))
		require.NoError(t, err)
		return tag
	}

	assert.Equal(t, Tag{Name: "Plain"}, parse(0))
	assert.Equal(t, Tag{Name: "renamed"}, parse(1))
	assert.True(t, parse(2).Skip)
	assert.Equal(t, Tag{Name: "l", Type: cinterfaces.LongValue, HasType: true}, parse(3))
	assert.Equal(t, Tag{Name: "Omit", OmitEmpty: true}, parse(4))
	assert.Equal(t, cinterfaces.BytesValue, parse(5).Type)
}

func TestParseTagErrors(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		Name string
		T    reflect.Type
		Tag  string
	}{
		{"unknown option", reflect.TypeOf(0), "x,frobnicate"},
		{"bad override", reflect.TypeOf(""), "x,double"},
		{"bytes on non-byte slice", reflect.TypeOf([]int{}), "x,bytes"},
		{"two overrides", reflect.TypeOf(int64(0)), "x,long,llong"},
		{"reserved character", reflect.TypeOf(0), "a;b"},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseTag(tc.T, tc.Tag)
			assert.Error(t, err)
		})
	}
}

func TestInvalidOverride(t *testing.T) {
	t.Parallel()

	_, err := ParseTag(reflect.TypeOf(""), "x,double")
	var tte errors.InvalidTagForTypeError
	require.True(t, stderrors.As(err, &tte), "%v", err)
	assert.Equal(t, "double", tte.Tag)
	assert.Equal(t, reflect.TypeOf(""), tte.T)
}

func TestTagKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Tag{Name: "x"}.Key())
	assert.Equal(t, "6", Tag{Type: cinterfaces.LongValue, HasType: true}.Key())
}
