// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/fmsim/history"
	"github.com/bitmark-inc/fmsim/peerlog"
)

func testSettings(t *testing.T, dir string, options map[string][]string) *settings {
	c, err := getConfiguration("")
	require.Nil(t, err, "configuration")
	c.DataDirectory = dir

	base := map[string][]string{
		"ecdsa-engine-latency": {"100ms"},
		"front-end-latency":    {"10ms"},
		"commit-latency":       {"20ms"},
		"blocks":               {"2"},
		"block-size":           {"4"},
		"ends":                 {"2:1.0"},
		"seed":                 {"1"},
		"quiet":                {""},
	}
	for k, v := range options {
		base[k] = v
	}
	require.Nil(t, applyOptions(c, base), "apply")

	s, err := resolve(c)
	require.Nil(t, err, "resolve")
	return s
}

func TestSimulateOutputs(t *testing.T) {
	dir, err := ioutil.TempDir("", "fmsim")
	require.Nil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	s := testSettings(t, dir, map[string][]string{
		"peer-log":     {"peer.log"},
		"metrics-file": {"fmsim.prom"},
		"history":      {"history.leveldb"},
	})

	buffer := &bytes.Buffer{}
	report, err := simulate(context.Background(), s, buffer, logger.New("test"))
	require.Nil(t, err, "simulate")

	expected := "block0 10.0 + 10.0 + 100.0 + 20.0 = 140.0ms\n" +
		"block1 10.0 + 10.0 + 100.0 + 20.0 = 140.0ms\n" +
		"average block latency: 140.0ms\n" +
		"average throughput: 28.571tps\n"
	assert.Equal(t, expected, buffer.String(), "wrong summary")

	assert.Equal(t, 2, report.Summary.Blocks, "wrong blocks")
	assert.Equal(t, 8, report.Summary.Transactions, "wrong transactions")
	assert.Equal(t, 8, report.Summary.Units, "wrong units")
	assert.Equal(t, 280*time.Millisecond, report.Summary.TotalLatency, "wrong total")

	// peer log
	f, err := os.Open(filepath.Join(dir, "peer.log"))
	require.Nil(t, err, "open peer log")
	defer f.Close()

	scanner := peerlog.NewScanner(f)
	n := 0
	for scanner.Scan() {
		c := scanner.Committed()
		assert.Equal(t, uint64(n), c.Block, "wrong block number")
		assert.Equal(t, 4, c.Transactions, "wrong transactions")
		assert.Equal(t, 140*time.Millisecond, c.Latency, "wrong latency")
		n += 1
	}
	assert.Nil(t, scanner.Err(), "scan")
	assert.Equal(t, 2, n, "wrong block records")

	// metrics
	text, err := ioutil.ReadFile(filepath.Join(dir, "fmsim.prom"))
	require.Nil(t, err, "read metrics")
	assert.True(t, strings.Contains(string(text), "fmsim_blocks_total 2"), "blocks metric: %s", text)
	assert.True(t, strings.Contains(string(text), "fmsim_engine_pool_capacity 8"), "capacity metric: %s", text)

	// history
	store, err := history.Open(filepath.Join(dir, "history.leveldb"), true, logger.New("test"))
	require.Nil(t, err, "open history")
	defer store.Close()

	records, err := store.List(10)
	require.Nil(t, err, "list")
	require.Equal(t, 1, len(records), "wrong record count")
	assert.Equal(t, report.Summary, records[0].Summary, "wrong recorded summary")
	assert.Equal(t, int64(1), records[0].Parameters.Seed, "wrong recorded seed")
	assert.Equal(t, 2, len(records[0].Blocks), "wrong recorded blocks")
}

func TestSimulateReplay(t *testing.T) {
	dir, err := ioutil.TempDir("", "fmsim")
	require.Nil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	s := testSettings(t, dir, map[string][]string{
		"block-size": {"3"},
		"peer-log":   {"first.log"},
	})
	_, err = simulate(context.Background(), s, ioutil.Discard, logger.New("test"))
	require.Nil(t, err, "first simulate")

	s = testSettings(t, dir, map[string][]string{
		"blocks":      {"-1"},
		"blocks-file": {"first.log"},
	})
	report, err := simulate(context.Background(), s, ioutil.Discard, logger.New("test"))
	require.Nil(t, err, "replay simulate")

	require.Equal(t, 2, len(report.Blocks), "wrong replayed blocks")
	for _, b := range report.Blocks {
		assert.Equal(t, 3, b.Block.Transactions, "wrong replayed size")
	}
}

func TestSimulateBanner(t *testing.T) {
	dir, err := ioutil.TempDir("", "fmsim")
	require.Nil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	s := testSettings(t, dir, nil)
	s.quiet = false

	buffer := &bytes.Buffer{}
	_, err = simulate(context.Background(), s, buffer, logger.New("test"))
	require.Nil(t, err, "simulate")

	assert.True(t, strings.Contains(buffer.String(), "=== Fabric Machine v1 ===\n"), "missing banner: %s", buffer.String())
}

func TestSimulateMissingBlocksFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "fmsim")
	require.Nil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	s := testSettings(t, dir, map[string][]string{
		"blocks-file": {"absent.log"},
	})
	_, err = simulate(context.Background(), s, ioutil.Discard, logger.New("test"))
	assert.NotNil(t, err, "missing blocks file accepted")
}

func TestSimulateCancelled(t *testing.T) {
	dir, err := ioutil.TempDir("", "fmsim")
	require.Nil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := testSettings(t, dir, nil)
	_, err = simulate(ctx, s, ioutil.Discard, logger.New("test"))
	assert.Equal(t, context.Canceled, err, "wrong error")
}
