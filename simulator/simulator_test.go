// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package simulator_test

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/fmsim/endorsement"
	"github.com/bitmark-inc/fmsim/engine"
	"github.com/bitmark-inc/fmsim/peerlog"
	"github.com/bitmark-inc/fmsim/pipeline"
	"github.com/bitmark-inc/fmsim/scheduler"
	"github.com/bitmark-inc/fmsim/simulator"
	"github.com/bitmark-inc/fmsim/workload"
)

const testingDirName = "testing"

func setupTestLogger() {
	removeFiles()
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

func teardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	_ = os.RemoveAll(testingDirName)
}

// records everything it receives
type recorder struct {
	blocks   []simulator.BlockResult
	summary  *simulator.Summary
	blockErr error
}

func (r *recorder) Block(result simulator.BlockResult) error {
	r.blocks = append(r.blocks, result)
	return r.blockErr
}

func (r *recorder) Finish(summary simulator.Summary) error {
	r.summary = &summary
	return nil
}

func setup(t *testing.T, blocks int, sinks ...simulator.Sink) (*simulator.Simulator, *workload.Source) {
	pool, err := engine.NewVirtual(engine.Parameters{
		Capacity:        2,
		EnginesPerGroup: 1,
		EngineLatency:   100 * time.Millisecond,
	})
	require.Nil(t, err, "pool")

	d, err := endorsement.Parse("2:1.0")
	require.Nil(t, err, "distribution")

	source, err := workload.Synthetic(blocks, 3, d, rand.New(rand.NewSource(1)))
	require.Nil(t, err, "workload")

	model := pipeline.Model{
		FrontEnd: 100 * time.Millisecond,
		Commit:   100 * time.Millisecond,
	}
	s := scheduler.New(logger.New("scheduler"), pool)
	return simulator.New(logger.New("simulator"), s, model, sinks...), source
}

func TestRun(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	r := &recorder{}
	sim, source := setup(t, 2, r)

	report, err := sim.Run(context.Background(), source)
	require.Nil(t, err, "run")

	assert.Equal(t, 2, len(report.Blocks), "wrong block count")
	for i, b := range report.Blocks {
		assert.Equal(t, uint64(i), b.Block.Number, "wrong block number")
		assert.Equal(t, 400*time.Millisecond, b.Latency.Verification, "wrong verification")
		assert.Equal(t, 700*time.Millisecond, b.Latency.Total(), "wrong total")
		assert.Equal(t, 3, b.Units, "wrong units")
	}

	s := report.Summary
	assert.Equal(t, 2, s.Blocks, "wrong blocks")
	assert.Equal(t, 6, s.Transactions, "wrong transactions")
	assert.Equal(t, 6, s.Units, "wrong units")
	assert.Equal(t, 1400*time.Millisecond, s.TotalLatency, "wrong total")
	assert.Equal(t, 700*time.Millisecond, s.AverageLatency, "wrong average")
	assert.InDelta(t, 6.0/1.4, s.Throughput, 1e-9, "wrong throughput")

	assert.Equal(t, report.Blocks, r.blocks, "sink saw different blocks")
	require.NotNil(t, r.summary, "sink not finished")
	assert.Equal(t, s, *r.summary, "sink saw different summary")
}

func TestRunEmpty(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	sim, source := setup(t, 0)
	report, err := sim.Run(context.Background(), source)
	require.Nil(t, err, "run")
	assert.Equal(t, simulator.Summary{}, report.Summary, "non zero summary")
}

func TestRunCancelled(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	r := &recorder{}
	sim, source := setup(t, 3, r)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := sim.Run(ctx, source)
	assert.Equal(t, context.Canceled, err, "wrong error")
	assert.Equal(t, 0, len(report.Blocks), "blocks run after cancel")
	assert.Nil(t, r.summary, "finished after cancel")
}

func TestRunSinkError(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	failure := errors.New("sink failed")
	r := &recorder{blockErr: failure}
	sim, source := setup(t, 3, r)

	report, err := sim.Run(context.Background(), source)
	assert.Equal(t, failure, err, "wrong error")
	assert.Equal(t, 1, len(report.Blocks), "run continued after sink error")
}

func TestSummaryWriter(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	buffer := &bytes.Buffer{}
	sim, source := setup(t, 2, simulator.NewSummaryWriter(buffer))

	_, err := sim.Run(context.Background(), source)
	require.Nil(t, err, "run")

	expected := "block0 100.0 + 100.0 + 400.0 + 100.0 = 700.0ms\n" +
		"block1 100.0 + 100.0 + 400.0 + 100.0 = 700.0ms\n" +
		"average block latency: 700.0ms\n" +
		"average throughput: 4.286tps\n"
	assert.Equal(t, expected, buffer.String(), "wrong output")
}

func TestPeerLogSink(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	buffer := &bytes.Buffer{}
	w, err := peerlog.NewWriter(buffer, nil)
	require.Nil(t, err, "writer")

	sim, source := setup(t, 4, simulator.NewPeerLogSink(w))
	_, err = sim.Run(context.Background(), source)
	require.Nil(t, err, "run")

	s := peerlog.NewScanner(buffer)
	n := 0
	for s.Scan() {
		c := s.Committed()
		assert.Equal(t, uint64(n), c.Block, "wrong block")
		assert.Equal(t, 3, c.Transactions, "wrong transactions")
		assert.Equal(t, 700*time.Millisecond, c.Latency, "wrong latency")
		n += 1
	}
	assert.Equal(t, 4, n, "wrong block count")
}

func TestWriteBanner(t *testing.T) {
	buffer := &bytes.Buffer{}
	err := simulator.WriteBanner(buffer, simulator.Banner{
		EngineLatency:   360 * time.Millisecond,
		Threads:         8,
		EnginesPerGroup: 2,
		Blocks:          5,
		BlockSize:       100,
		Endorsements:    "pop=[2] prob=[1]",
		FrontEnd:        360 * time.Millisecond,
		Commit:          360 * time.Millisecond,
		Seed:            99,
	})
	require.Nil(t, err, "banner")

	out := buffer.String()
	for _, s := range []string{
		"=== Fabric Machine v1 ===",
		"ecdsa_engine_latency: 360ms",
		"vscc_threads: 8",
		"tx_vscc_ecdsa_engines: 2",
		"blocks: 5",
		"block_size: 100",
		"endorsements: pop=[2] prob=[1]",
		"seed: 99",
		"pool: virtual",
	} {
		assert.True(t, strings.Contains(out, s), "missing: %q", s)
	}
}
