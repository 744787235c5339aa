// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package wire

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xerrors "go.e43.eu/container/internal/errors"
)

func TestEscape(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain", Escape("plain"))
	assert.Equal(t, `a\];b`, Escape("a];b"))
	assert.Equal(t, "a];b", Unescape(`a\];b`))
	assert.Equal(t, "x];y];", Unescape(Escape("x];y];")))
}

func TestSplitHeader(t *testing.T) {
	t.Parallel()

	doc, err := Split("@header={{[1,t];[2,ts];[3,s];[4,ss];[5,msg];[6,1.0];}}@data={{[a,4,1];}};", false)
	require.NoError(t, err)
	require.Len(t, doc.Header, 6)
	assert.Equal(t, "1", doc.Header[0].Name)
	assert.Equal(t, "t", doc.Header[0].Value)
	assert.Equal(t, "1.0", doc.Header[5].Value)
	assert.True(t, doc.HasData())

	tuples, err := ScanData(doc.Body, doc.BodyOffset, false)
	require.NoError(t, err)
	require.Len(t, tuples, 1)
	assert.Equal(t, Tuple{Name: "a", Type: "4", Value: "1", Offset: strings.Index(doc.Body, "[a") + doc.BodyOffset + 0}, tuples[0])
}

func TestHeaderOnlyDocument(t *testing.T) {
	t.Parallel()

	doc, err := Split("@header={{[message_type,x];}}", false)
	require.NoError(t, err)
	assert.False(t, doc.HasData())
	f, ok := LookupHeaderKey(doc.Header[0].Name)
	assert.True(t, ok)
	assert.Equal(t, MessageType, f)
}

func TestScanEscapedValue(t *testing.T) {
	t.Parallel()

	tuples, err := ScanFragment(`[s,12,a\];b,c];[n,4,5];`, false)
	require.NoError(t, err)
	require.Len(t, tuples, 2)
	assert.Equal(t, "a];b,c", tuples[0].Value)
	assert.Equal(t, "n", tuples[1].Name)
}

func TestScanTrailingBackslash(t *testing.T) {
	t.Parallel()

	// A value ending in a backslash escapes its own terminator, so the tuple
	// runs on to the next unescaped one.
	tuples, err := ScanFragment(`[s,12,x\];[b,4,5];`, false)
	require.NoError(t, err)
	require.Len(t, tuples, 1)
	assert.Equal(t, "s", tuples[0].Name)
	assert.Equal(t, "x];[b,4,5", tuples[0].Value)

	_, err = ScanFragment(`[s,12,x\];`, false)
	assert.True(t, errors.Is(err, xerrors.ErrTruncated), "%v", err)
}

func TestScanErrors(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		Name      string
		Input     string
		Truncated bool
	}{
		{"no header", "@data={{}};", false},
		{"unterminated header", "@header={{[1,a];", true},
		{"unterminated tuple", "@header={{[1,a", true},
		{"garbage between blocks", "@header={{}}junk", false},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()
			_, err := Split(tc.Input, false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, xerrors.ErrDecode))
			assert.Equal(t, tc.Truncated, errors.Is(err, xerrors.ErrTruncated))
		})
	}
}

func TestScanDataErrors(t *testing.T) {
	t.Parallel()

	_, err := ScanData("@data={{[a,4];}};", 0, false)
	assert.True(t, errors.Is(err, xerrors.ErrDecode))

	_, err = ScanData("@data={{[a,4,1];", 0, false)
	assert.True(t, errors.Is(err, xerrors.ErrTruncated))

	_, err = ScanData("@data={{[a,4,1];}};extra", 0, false)
	assert.True(t, errors.Is(err, xerrors.ErrDecode))
}

func TestScanLenient(t *testing.T) {
	t.Parallel()

	tuples, err := ScanData("@data={{[bad];[a,4,1];[b,4,2];", 0, true)
	require.NoError(t, err)
	require.Len(t, tuples, 2)
	assert.Equal(t, "a", tuples[0].Name)
	assert.Equal(t, "b", tuples[1].Name)
}

func TestWriter(t *testing.T) {
	t.Parallel()

	var w Writer
	w.BeginHeader()
	w.HeaderTuple(TargetID, "t")
	w.HeaderTuple(Version, "1.0")
	w.BeginData()
	var b strings.Builder
	AppendTuple(&b, "s", "12", "x];y")
	w.Raw(b.String())
	w.End()

	assert.Equal(t, `@header={{[1,t];[6,1.0];}}@data={{[s,12,x\];y];}};`, w.String())
}

func TestLookupHeaderKey(t *testing.T) {
	t.Parallel()

	for key, want := range map[string]HeaderField{
		"1": TargetID, "source_id": SourceID, " 4 ": SourceSubID, "version": Version,
	} {
		f, ok := LookupHeaderKey(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, f, key)
	}

	_, ok := LookupHeaderKey("7")
	assert.False(t, ok)
	_, ok = LookupHeaderKey("nope")
	assert.False(t, ok)
}
