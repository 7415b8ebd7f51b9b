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

func runDelete(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	id, err := runID(c)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "database: %q  delete id: %s\n", m.database, id)
	}

	store, err := history.Open(m.database, false, logger.New("history"))
	if nil != err {
		return err
	}
	defer store.Close()

	if err := store.Delete(id); nil != err {
		return err
	}

	return printJson(m.w, struct {
		Deleted uuid.UUID `json:"deleted"`
	}{
		Deleted: id,
	})
}
