// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package jsonv2

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.e43.eu/container"
)

func sample() *container.Container {
	c := container.NewMessage("client", "session", "server", "handler", "user_profile")
	c.Add(
		container.NewString("username", "john_doe"),
		container.NewBool("active", true),
		container.NewShort("s", -2),
		container.NewUInt("u", 4000000000),
		container.NewLLong("big", math.MaxInt64),
		container.NewULLong("huge", math.MaxUint64),
		container.NewFloat("f", 1.5),
		container.NewDouble("d", 0.1),
		container.NewBytes("blob", []byte{0, 1, 2, 0xff}),
		container.NewNull("nothing"),
		container.NewContainerValue("meta",
			container.NewString("k", "v"),
			container.NewArrayValue("list", container.NewInt("0", 1), container.NewInt("1", 2)),
			container.NewContainerValue("empty"),
		),
	)
	return c
}

func TestV2Document(t *testing.T) {
	t.Parallel()

	c := container.NewMessage("client", "session", "server", "handler", "user_profile")
	c.Add(container.NewString("username", "john_doe"))

	doc, err := ToV2JSON(c, false)
	require.NoError(t, err)
	assert.Equal(t,
		`{"container":{"version":"2.0","metadata":{"message_type":"user_profile","protocol_version":"1.0.0.0",`+
			`"source":{"id":"client","sub_id":"session"},"target":{"id":"server","sub_id":"handler"}},`+
			`"values":[{"name":"username","type":12,"type_name":"string","data":"john_doe"}]}}`,
		doc)

	pretty, err := ToV2JSON(c, true)
	require.NoError(t, err)
	assert.Contains(t, pretty, "\n  \"container\": {")
}

func TestV2Values(t *testing.T) {
	t.Parallel()

	doc, err := ToV2JSON(sample(), false)
	require.NoError(t, err)

	values := gjson.Get(doc, "container.values")
	get := func(name string) gjson.Result {
		return values.Get(`#(name=="` + name + `")`)
	}

	assert.Equal(t, "9223372036854775807", get("big").Get("data").Raw, "full precision")
	assert.Equal(t, "18446744073709551615", get("huge").Get("data").Raw)
	assert.Equal(t, "true", get("active").Get("data").Raw)
	assert.Equal(t, "null", get("nothing").Get("data").Raw)
	assert.Equal(t, "AAEC/w==", get("blob").Get("data").String())
	assert.Equal(t, "base64", get("blob").Get("encoding").String())
	assert.Equal(t, "bytes", get("blob").Get("type_name").String())

	meta := get("meta")
	assert.Equal(t, int64(3), meta.Get("child_count").Int())
	assert.Equal(t, int64(2), meta.Get(`data.#(name=="list").child_count`).Int())
	assert.False(t, get("username").Get("child_count").Exists())

	rt, err := FromV2JSON(doc)
	require.NoError(t, err)
	assert.Equal(t, sample().Serialize(), rt.Serialize())
}

func TestV2NonFinite(t *testing.T) {
	t.Parallel()

	c := container.New()
	c.Add(container.NewDouble("nan", math.NaN()), container.NewFloat("inf", float32(math.Inf(1))))

	doc, err := ToV2JSON(c, false)
	require.NoError(t, err)
	assert.True(t, gjson.Valid(doc))

	rt, err := FromV2JSON(doc)
	require.NoError(t, err)
	f, err := rt.GetValue("nan").ToDouble()
	require.NoError(t, err)
	assert.True(t, math.IsNaN(f))
	g, err := rt.GetValue("inf").ToFloat()
	require.NoError(t, err)
	assert.True(t, math.IsInf(float64(g), 1))
}

func TestV2Reader(t *testing.T) {
	t.Parallel()

	doc := `{"container":{"version":"2.0","metadata":{"message_type":"m"},"values":[
		{"name":"a","type":99,"type_name":"int","data":5},
		{"name":"b","type_name":"ullong","data":"18446744073709551615"},
		{"name":"c","type":13,"encoding":"utf-8","data":"raw"},
		{"name":"d","type":"nonsense","data":1}
	]}}`
	c, err := FromV2JSON(doc)
	require.NoError(t, err)
	assert.Equal(t, "m", c.MessageType())
	assert.Equal(t, "1.0.0.0", c.Version(), "protocol version defaults")

	a := c.GetValue("a")
	assert.Equal(t, container.IntType, a.Type(), "type_name is used when the code is unknown")
	b, err := c.GetValue("b").ToULLong()
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), b)
	assert.Equal(t, []byte("raw"), c.GetValue("c").Data())
	assert.True(t, c.GetValue("d").IsNull())
}

func TestV2Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		doc  string
		err  error
	}{
		{"invalid", `{`, container.ErrDecode},
		{"no container", `{"values":[]}`, container.ErrDecode},
		{"old version", `{"container":{"version":"1.0"}}`, container.ErrUnsupportedFormat},
		{"values not a list", `{"container":{"version":"2.0","values":{}}}`, container.ErrDecode},
		{"bad number", `{"container":{"version":"2.0","values":[{"name":"a","type":4,"data":"x"}]}}`, container.ErrDecode},
		{"out of range", `{"container":{"version":"2.0","values":[{"name":"a","type":6,"data":4294967296}]}}`, container.ErrRange},
		{"missing data", `{"container":{"version":"2.0","values":[{"name":"a","type":4}]}}`, container.ErrDecode},
		{"bad base64", `{"container":{"version":"2.0","values":[{"name":"a","type":13,"data":"!!"}]}}`, container.ErrDecode},
		{"child count", `{"container":{"version":"2.0","values":[{"name":"a","type":14,"data":[],"child_count":1}]}}`, container.ErrDecode},
	}
	for _, c := range cases {
		_, err := FromV2JSON(c.doc)
		if assert.Error(t, err, c.name) {
			assert.Truef(t, errors.Is(err, c.err), "%s: expected %s, got %s", c.name, c.err, err)
		}
	}
}

func TestCppDocument(t *testing.T) {
	t.Parallel()

	c := container.NewMessage("src", "", "dst", "", "m")
	c.Add(
		container.NewInt("z", 1),
		container.NewNull("a"),
		container.NewContainerValue("n", container.NewBool("b", false)),
	)

	doc, err := ToCppJSON(c, false)
	require.NoError(t, err)
	assert.Equal(t,
		`{"header":{"target_id":"dst","target_sub_id":"","source_id":"src","source_sub_id":"",`+
			`"message_type":"m","version":"1.0.0.0"},"values":{"z":{"type":4,"data":"1"},`+
			`"a":{"type":0,"data":""},"n":{"type":14,"values":{"b":{"type":1,"data":"false"}}}}}`,
		doc)

	rt, err := FromCppJSON(doc)
	require.NoError(t, err)
	assert.Equal(t, c.Serialize(), rt.Serialize(), "document order is kept")
}

func TestCppRoundTrip(t *testing.T) {
	t.Parallel()

	doc, err := ToCppJSON(sample(), true)
	require.NoError(t, err)

	rt, err := FromCppJSON(doc)
	require.NoError(t, err)
	assert.Equal(t, sample().Serialize(), rt.Serialize())

	empty, err := ToCppJSON(container.New(), false)
	require.NoError(t, err)
	assert.Equal(t, Cpp, DetectFormat(empty))

	_, err = FromCppJSON(`{"header":{},"values":{"a":{"type":4,"data":"x"}}}`)
	assert.True(t, errors.Is(err, container.ErrDecode), "%v", err)
	_, err = FromCppJSON(`{"header":{},"values":{"a":1}}`)
	assert.True(t, errors.Is(err, container.ErrDecode), "%v", err)
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	v2, err := ToV2JSON(sample(), true)
	require.NoError(t, err)
	cpp, err := ToCppJSON(sample(), false)
	require.NoError(t, err)
	flat, err := sample().ToJSON()
	require.NoError(t, err)

	cases := []struct {
		doc    string
		format Format
	}{
		{v2, V2},
		{cpp, Cpp},
		{flat, Python},
		{`{"container":{"version":"1.0"}}`, Unknown},
		{`{"header":{},"values":[]}`, Unknown},
		{`{"foo":1}`, Unknown},
		{`[1,2]`, Unknown},
		{`{"foo":`, Invalid},
		{``, Invalid},
	}
	for _, c := range cases {
		assert.Equal(t, c.format, DetectFormat(c.doc), c.doc)
	}
}

func TestConvertFormat(t *testing.T) {
	t.Parallel()

	want := sample().Serialize()
	cpp, err := ToCppJSON(sample(), false)
	require.NoError(t, err)

	v2, err := ConvertFormat(cpp, V2, false)
	require.NoError(t, err)
	assert.Equal(t, V2, DetectFormat(v2))

	flat, err := ConvertFormat(v2, Python, false)
	require.NoError(t, err)
	assert.Equal(t, Python, DetectFormat(flat))
	assert.NotContains(t, flat, "\n")

	back, err := ConvertFormat(flat, Cpp, true)
	require.NoError(t, err)
	assert.Equal(t, Cpp, DetectFormat(back))

	c, f, err := Decode(back)
	require.NoError(t, err)
	assert.Equal(t, Cpp, f)
	assert.Equal(t, want, c.Serialize())

	_, err = ConvertFormat(`{"foo":1}`, V2, false)
	var ufe container.UnsupportedFormatError
	require.True(t, errors.As(err, &ufe), "%v", err)
	assert.Equal(t, "unknown", ufe.Format)

	_, err = ConvertFormat(`{`, V2, false)
	assert.True(t, errors.Is(err, container.ErrUnsupportedFormat))

	_, err = ConvertFormat(cpp, Format("yaml"), false)
	assert.True(t, errors.Is(err, container.ErrUnsupportedFormat))
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{"v2.0": V2, "V2": V2, "cpp": Cpp, " python ": Python, "flat": Python} {
		f, ok := ParseFormat(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, f, in)
	}
	_, ok := ParseFormat("xml")
	assert.False(t, ok)
}
