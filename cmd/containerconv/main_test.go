// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.e43.eu/container"
	"go.e43.eu/container/adapters/jsonv2"
	"go.e43.eu/container/serializers/msgpack"
)

func sample() *container.Container {
	c := container.NewMessage("src", "s1", "dst", "d1", "greeting")
	c.Add(
		container.NewString("name", "Alice"),
		container.NewInt("age", 30),
		container.NewNull("nothing"),
		container.NewContainerValue("meta", container.NewBool("ok", true)),
	)
	return c
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	app := newApp(strings.NewReader(stdin), &out)
	err := app.Run(append([]string{"containerconv"}, args...))
	return out.String(), err
}

func TestDetect(t *testing.T) {
	c := sample()
	cpp, err := jsonv2.ToCppJSON(c, false)
	require.NoError(t, err)
	mp, err := msgpack.ContainerToMsgpack(c)
	require.NoError(t, err)

	dir := t.TempDir()
	cases := []struct {
		name  string
		data  []byte
		found string
	}{
		{"wire", []byte(c.Serialize()), "wire"},
		{"cpp", []byte(cpp), "cpp"},
		{"msgpack", mp, "msgpack"},
		{"json array", []byte("[1]"), "unknown"},
		{"garbage", []byte("garbage"), "unknown"},
	}
	for _, tc := range cases {
		out, err := run(t, "", "detect", writeFile(t, dir, tc.name, tc.data))
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.found+"\n", out, tc.name)
	}
}

func TestConvert(t *testing.T) {
	c := sample()

	out, err := run(t, c.Serialize(), "convert", "--to", "v2.0", "-")
	require.NoError(t, err)
	assert.Equal(t, jsonv2.V2, jsonv2.DetectFormat(out))
	rt, err := jsonv2.FromV2JSON(out)
	require.NoError(t, err)
	assert.Equal(t, c.Serialize(), rt.Serialize())

	back, err := run(t, out, "convert", "--to", "wire")
	require.NoError(t, err)
	assert.Equal(t, c.Serialize(), back)

	mp, err := run(t, back, "convert", "--to", "msgpack")
	require.NoError(t, err)
	rt, err = msgpack.MsgpackToContainer([]byte(mp))
	require.NoError(t, err)
	assert.Equal(t, c.Serialize(), rt.Serialize())

	xml, err := run(t, back, "convert", "--to", "xml")
	require.NoError(t, err)
	assert.Equal(t, c.ToXML(), xml)
}

func TestConvertErrors(t *testing.T) {
	_, err := run(t, sample().Serialize(), "convert", "--to", "yaml")
	assert.True(t, errors.Is(err, container.ErrUnsupportedFormat), "%v", err)

	_, err = run(t, "garbage", "convert", "--to", "wire")
	assert.True(t, errors.Is(err, container.ErrUnsupportedFormat), "%v", err)

	_, err = run(t, "", "convert", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, err = run(t, sample().Serialize(), "--log-level", "*:NOPE", "convert")
	assert.Error(t, err)
}

func TestConvertLenient(t *testing.T) {
	broken := "@header={{[5,m];}}@data={{[a,4,1];[b,4,x];[c,4,3];}};"

	_, err := run(t, broken, "convert", "--to", "wire")
	assert.True(t, errors.Is(err, container.ErrDecode), "%v", err)

	out, err := run(t, broken, "convert", "--lenient", "--to", "wire")
	require.NoError(t, err)
	c, err := container.Parse(out)
	require.NoError(t, err)
	assert.NotNil(t, c.GetValue("a"))
	assert.NotNil(t, c.GetValue("c"))
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "conv.toml", []byte(`
pretty = true
lenient = true
log_level = "*:WARN"
default_format = "cpp"
`))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Pretty:        true,
		Lenient:       true,
		LogLevel:      "*:WARN",
		DefaultFormat: "cpp",
	}, cfg)

	cfg, err = loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)

	_, err = loadConfig(writeFile(t, dir, "bad.toml", []byte("pretty = = true")))
	assert.Error(t, err)

	out, err := run(t, sample().Serialize(), "--config", path, "convert")
	require.NoError(t, err)
	assert.Equal(t, jsonv2.Cpp, jsonv2.DetectFormat(out))
	assert.Contains(t, out, "\n  ", "pretty output from config")

	out, err = run(t, sample().Serialize(), "--config", path, "convert", "--to", "python")
	require.NoError(t, err)
	assert.Equal(t, jsonv2.Python, jsonv2.DetectFormat(out), "flags override config")
}

func TestInspect(t *testing.T) {
	out, err := run(t, sample().Serialize(), "inspect")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"format:       wire",
		"source:       src/s1",
		"target:       dst/d1",
		"message_type: greeting",
		"version:      1.0.0.0",
		"values:       4",
		"  name (string) = Alice",
		"  age (int) = 30",
		"  nothing (null)",
		"  meta (container, 1 children)",
		"    ok (bool) = true",
		"",
	}, "\n"), out)
}

func TestAppMetadata(t *testing.T) {
	app := newApp(strings.NewReader(""), &bytes.Buffer{})
	assert.Equal(t, "containerconv", app.Name)
	assert.Empty(t, app.Authors)

	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"detect", "convert", "inspect"}, names)
}
