// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Command containerconv detects, converts and inspects serialized
// containers in the wire, JSON, XML and MessagePack formats.
package main

import (
	"fmt"
	"io"
	"os"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

var log = logger.GetOrCreate("containerconv")

var (
	configFile = cli.StringFlag{
		Name:  "config",
		Usage: "The TOML `file` providing default options",
	}
	logLevel = cli.StringFlag{
		Name:  "log-level",
		Usage: "The logger level(s), e.g. \"*:DEBUG\"",
		Value: "*:INFO",
	}
	target = cli.StringFlag{
		Name:  "to",
		Usage: "The output `format`: wire, xml, msgpack, v2.0, cpp or python",
	}
	pretty = cli.BoolFlag{
		Name:  "pretty",
		Usage: "Indent JSON output",
	}
	lenient = cli.BoolFlag{
		Name:  "lenient",
		Usage: "Skip malformed wire elements instead of failing",
	}
)

func main() {
	err := newApp(os.Stdin, os.Stdout).Run(os.Args)
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "containerconv"
	app.Version = "v1.0.0"
	app.Usage = "Converts serialized containers between formats"
	app.Writer = stdout
	app.Flags = []cli.Flag{configFile, logLevel}

	read := func(ctx *cli.Context) ([]byte, Config, error) {
		cfg, err := setup(ctx)
		if err != nil {
			return nil, cfg, err
		}
		data, err := readInput(ctx.Args().First(), stdin)
		return data, cfg, err
	}

	app.Commands = []cli.Command{
		{
			Name:      "detect",
			Usage:     "Prints the format of the input",
			ArgsUsage: "[file|-]",
			Action: func(ctx *cli.Context) error {
				data, _, err := read(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(stdout, detect(data))
				return err
			},
		},
		{
			Name:      "convert",
			Usage:     "Re-encodes the input in another format",
			ArgsUsage: "[file|-]",
			Flags:     []cli.Flag{target, pretty, lenient},
			Action: func(ctx *cli.Context) error {
				data, cfg, err := read(ctx)
				if err != nil {
					return err
				}
				c, from, err := decode(data, cfg.Lenient)
				if err != nil {
					return err
				}
				out, err := encode(c, cfg.DefaultFormat, cfg.Pretty)
				if err != nil {
					return err
				}
				log.Debug("converted", "from", from, "to", cfg.DefaultFormat, "values", c.Len(), "bytes", len(out))
				_, err = stdout.Write(out)
				return err
			},
		},
		{
			Name:      "inspect",
			Usage:     "Prints the header and values of the input",
			ArgsUsage: "[file|-]",
			Flags:     []cli.Flag{lenient},
			Action: func(ctx *cli.Context) error {
				data, cfg, err := read(ctx)
				if err != nil {
					return err
				}
				c, from, err := decode(data, cfg.Lenient)
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "format:       %s\n", from)
				inspect(stdout, c)
				return nil
			},
		},
	}

	return app
}

// setup loads the configuration and applies its log level
func setup(ctx *cli.Context) (Config, error) {
	cfg, err := loadConfig(ctx.GlobalString(configFile.Name))
	if err != nil {
		return cfg, err
	}
	cfg = applyFlags(cfg, ctx)

	if err := logger.SetLogLevel(cfg.LogLevel); err != nil {
		return cfg, errors.Wrap(err, "setting log level")
	}
	return cfg, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	return data, errors.Wrapf(err, "reading %s", path)
}
