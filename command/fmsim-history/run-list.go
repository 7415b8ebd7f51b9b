// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/google/uuid"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/fmsim/history"
	"github.com/bitmark-inc/fmsim/simulator"
)

// one line of the list output, blocks are left to show
type listEntry struct {
	ID         uuid.UUID          `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Parameters history.Parameters `json:"parameters"`
	Summary    simulator.Summary  `json:"summary"`
}

func runList(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	count := c.Int("count")
	if count <= 0 {
		return fmt.Errorf("invalid count: %d", count)
	}

	if m.verbose {
		fmt.Fprintf(m.e, "database: %q  count: %d\n", m.database, count)
	}

	store, err := history.Open(m.database, true, logger.New("history"))
	if nil != err {
		return err
	}
	defer store.Close()

	records, err := store.List(count)
	if nil != err {
		return err
	}

	entries := make([]listEntry, len(records))
	for i, r := range records {
		entries[i] = listEntry{
			ID:         r.ID,
			Timestamp:  r.Timestamp,
			Parameters: r.Parameters,
			Summary:    r.Summary,
		}
	}
	return printJson(m.w, entries)
}
