// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package main

import (
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Config holds the defaults read from the TOML configuration file. Command
// line flags take precedence over every field.
type Config struct {
	Pretty        bool   `toml:"pretty"`
	Lenient       bool   `toml:"lenient"`
	LogLevel      string `toml:"log_level"`
	DefaultFormat string `toml:"default_format"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:      "*:INFO",
		DefaultFormat: "v2.0",
	}
}

// loadConfig decodes the TOML file at path over the defaults
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "opening config %s", path)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Error("cannot close config file", "path", path, "error", err.Error())
		}
	}()

	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "decoding config %s", path)
	}
	return cfg, nil
}

// applyFlags overrides cfg with every flag set on the command line
func applyFlags(cfg Config, ctx *cli.Context) Config {
	if ctx.GlobalIsSet(logLevel.Name) {
		cfg.LogLevel = ctx.GlobalString(logLevel.Name)
	}
	if ctx.IsSet(pretty.Name) {
		cfg.Pretty = ctx.Bool(pretty.Name)
	}
	if ctx.IsSet(lenient.Name) {
		cfg.Lenient = ctx.Bool(lenient.Name)
	}
	if ctx.IsSet(target.Name) {
		cfg.DefaultFormat = ctx.String(target.Name)
	}
	return cfg
}
