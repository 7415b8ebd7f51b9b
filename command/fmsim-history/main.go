// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"
)

type metadata struct {
	database string
	verbose  bool
	e        io.Writer
	w        io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	app := newApp(os.Stdout, os.Stderr)

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer, e io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "fmsim-history"
	app.Usage = "inspect recorded simulation runs"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "database, d",
			Value: "history.leveldb",
			Usage: " history database `DIRECTORY`",
		},
		cli.StringFlag{
			Name:  "log-directory, l",
			Value: ".",
			Usage: " write the log file to `DIRECTORY`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "list",
			Usage:     "list recorded runs, newest first",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "count, c",
					Value: 20,
					Usage: " maximum records to output `COUNT`",
				},
			},
			Action: runList,
		},
		{
			Name:      "show",
			Usage:     "display one run with its per block results",
			ArgsUsage: "[ID]\n   (* = required, ID may be given as the argument)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "id, i",
					Value: "",
					Usage: "*run `UUID`",
				},
			},
			Action: runShow,
		},
		{
			Name:      "delete",
			Usage:     "remove one run",
			ArgsUsage: "[ID]\n   (* = required, ID may be given as the argument)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "id, i",
					Value: "",
					Usage: "*run `UUID`",
				},
			},
			Action: runDelete,
		},
		{
			Name:   "version",
			Usage:  "display fmsim-history version",
			Action: runVersion,
		},
	}

	app.Before = func(c *cli.Context) error {
		database := c.GlobalString("database")
		if "" == database {
			return ErrMissingDatabase
		}

		logging := logger.Configuration{
			Directory: c.GlobalString("log-directory"),
			File:      "fmsim-history.log",
			Size:      1048576,
			Count:     10,
			Console:   false,
			Levels: map[string]string{
				logger.DefaultTag: "critical",
			},
		}
		if err := logger.Initialise(logging); nil != err {
			return err
		}

		c.App.Metadata["config"] = &metadata{
			database: database,
			verbose:  c.GlobalBool("verbose"),
			e:        c.App.ErrWriter,
			w:        c.App.Writer,
		}
		return nil
	}

	app.After = func(c *cli.Context) error {
		if _, ok := c.App.Metadata["config"].(*metadata); ok {
			logger.Finalise()
		}
		return nil
	}

	return app
}

func runVersion(c *cli.Context) error {
	fmt.Fprintf(c.App.Writer, "%s\n", version)
	return nil
}
