// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/bitmark-inc/logger"
	"github.com/google/uuid"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/fmsim/history"
)

func runShow(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	id, err := runID(c)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "database: %q  id: %s\n", m.database, id)
	}

	store, err := history.Open(m.database, true, logger.New("history"))
	if nil != err {
		return err
	}
	defer store.Close()

	record, err := store.Get(id)
	if nil != err {
		return err
	}
	return printJson(m.w, record)
}

// run id from --id or the first argument
func runID(c *cli.Context) (uuid.UUID, error) {
	s := c.String("id")
	if "" == s {
		s = c.Args().First()
	}
	if "" == s {
		return uuid.Nil, ErrMissingRunID
	}
	return uuid.Parse(s)
}
