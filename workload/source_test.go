// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package workload_test

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/fmsim/endorsement"
	"github.com/bitmark-inc/fmsim/fault"
	"github.com/bitmark-inc/fmsim/peerlog"
	"github.com/bitmark-inc/fmsim/workload"
)

func fixed(t *testing.T, e int) *endorsement.Distribution {
	d, err := endorsement.New([]int{e}, []float64{1.0})
	require.Nil(t, err, "distribution")
	return d
}

func TestSynthetic(t *testing.T) {
	s, err := workload.Synthetic(3, 4, fixed(t, 2), rand.New(rand.NewSource(1)))
	require.Nil(t, err, "synthetic")

	assert.Equal(t, 3, s.Blocks(), "wrong block count")
	assert.Equal(t, 12, s.Transactions(), "wrong transaction count")
	assert.Equal(t, 4.0, s.MeanBlockSize(), "wrong mean")
	assert.False(t, s.Replayed(), "not replayed")

	for i := 0; i < 3; i += 1 {
		b, ok := s.NextBlock()
		assert.True(t, ok, "block %d missing", i)
		assert.Equal(t, workload.Block{Number: uint64(i), Transactions: 4}, b, "wrong block")
	}
	_, ok := s.NextBlock()
	assert.False(t, ok, "extra block")

	for i := 0; i < 12; i += 1 {
		e, err := s.NextEndorsements()
		assert.Nil(t, err, "endorsements %d", i)
		assert.Equal(t, 2, e, "wrong endorsements")
	}
	_, err = s.NextEndorsements()
	assert.Equal(t, fault.ErrWorkloadExhausted, err, "wrong error")
}

func TestSyntheticInvalid(t *testing.T) {
	d := fixed(t, 1)
	rng := rand.New(rand.NewSource(1))

	_, err := workload.Synthetic(-1, 4, d, rng)
	assert.Equal(t, fault.ErrInvalidBlockCount, err, "negative count")

	_, err = workload.Synthetic(1, -4, d, rng)
	assert.Equal(t, fault.ErrInvalidBlockSize, err, "negative size")
}

func TestSyntheticTooLarge(t *testing.T) {
	d := fixed(t, 1)
	rng := rand.New(rand.NewSource(1))

	_, err := workload.Synthetic(4, 1<<62, d, rng)
	assert.Equal(t, fault.ErrInvalidBlockSize, err, "huge size")

	_, err = workload.Synthetic(1, workload.MaximumBlockSize+1, d, rng)
	assert.Equal(t, fault.ErrInvalidBlockSize, err, "size over limit")

	_, err = workload.Synthetic(1<<40, 0, d, rng)
	assert.Equal(t, fault.ErrInvalidBlockCount, err, "huge count")

	_, err = workload.Synthetic(workload.MaximumBlocks, 100, d, rng)
	assert.Equal(t, fault.ErrTooManyTransactions, err, "too many transactions")
}

func TestSyntheticSeeded(t *testing.T) {
	d, err := endorsement.Parse("1,2,3:0.2,0.3,0.5")
	require.Nil(t, err, "parse")

	s1, _ := workload.Synthetic(2, 50, d, rand.New(rand.NewSource(42)))
	s2, _ := workload.Synthetic(2, 50, d, rand.New(rand.NewSource(42)))

	for i := 0; i < 100; i += 1 {
		e1, _ := s1.NextEndorsements()
		e2, _ := s2.NextEndorsements()
		assert.Equal(t, e1, e2, "seeded draws differ at %d", i)
	}
}

func TestReplay(t *testing.T) {
	buffer := &bytes.Buffer{}
	w, err := peerlog.NewWriter(buffer, nil)
	require.Nil(t, err, "writer")
	_ = w.WriteBlock(0, 10, time.Millisecond)
	_ = w.WriteBlock(1, 3, time.Millisecond)
	_ = w.WriteBlock(2, 5, time.Millisecond)

	s, err := workload.Replay(buffer, fixed(t, 4), rand.New(rand.NewSource(1)))
	require.Nil(t, err, "replay")

	assert.True(t, s.Replayed(), "replayed")
	assert.Equal(t, 3, s.Blocks(), "wrong block count")
	assert.Equal(t, 6.0, s.MeanBlockSize(), "wrong mean")

	blocks, endorsements := s.Pending()
	assert.Equal(t, 3, blocks, "wrong pending blocks")
	assert.Equal(t, 18, endorsements, "wrong pending endorsements")

	sizes := []int{}
	for {
		b, ok := s.NextBlock()
		if !ok {
			break
		}
		sizes = append(sizes, b.Transactions)
	}
	assert.Equal(t, []int{10, 3, 5}, sizes, "wrong sizes")
}

func TestReplayNoBlocks(t *testing.T) {
	_, err := workload.Replay(strings.NewReader("nothing\nhere\n"), fixed(t, 1), rand.New(rand.NewSource(1)))
	assert.Equal(t, fault.ErrNoReplayBlocks, err, "wrong error")
}

func committedLine(block int, transactions uint64) string {
	return fmt.Sprintf("2019-12-03 17:23:29.415 UTC [kvledger] Committed block [%d] with %d transaction(s) in 12ms (state_validation=1ms block_and_pvtdata_commit=2ms state_commit=3ms)\n", block, transactions)
}

func TestReplayTooLarge(t *testing.T) {
	d := fixed(t, 1)
	rng := rand.New(rand.NewSource(1))

	_, err := workload.Replay(strings.NewReader(committedLine(0, 1<<62)), d, rng)
	assert.Equal(t, fault.ErrInvalidBlockSize, errors.Cause(err), "huge block: %v", err)

	log := ""
	for i := 0; i <= workload.MaximumTransactions/workload.MaximumBlockSize; i += 1 {
		log += committedLine(i, workload.MaximumBlockSize)
	}
	_, err = workload.Replay(strings.NewReader(log), d, rng)
	assert.Equal(t, fault.ErrTooManyTransactions, errors.Cause(err), "total over limit: %v", err)
}

func TestReplayFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "workload")
	require.Nil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	name := filepath.Join(dir, "peer.log")
	line := "2019-12-03 17:23:29.415 UTC [kvledger] Committed block [9] with 7 transaction(s) in 12ms (state_validation=1ms block_and_pvtdata_commit=2ms state_commit=3ms)\n"
	require.Nil(t, ioutil.WriteFile(name, []byte(line), 0600), "write")

	s, err := workload.ReplayFile(name, fixed(t, 1), rand.New(rand.NewSource(1)))
	require.Nil(t, err, "replay file")
	b, ok := s.NextBlock()
	assert.True(t, ok, "missing block")
	assert.Equal(t, workload.Block{Number: 0, Transactions: 7}, b, "wrong block")

	_, err = workload.ReplayFile(filepath.Join(dir, "absent.log"), fixed(t, 1), rand.New(rand.NewSource(1)))
	assert.NotNil(t, err, "missing file accepted")

	empty := filepath.Join(dir, "empty.log")
	require.Nil(t, ioutil.WriteFile(empty, nil, 0600), "write")
	_, err = workload.ReplayFile(empty, fixed(t, 1), rand.New(rand.NewSource(1)))
	assert.True(t, fault.IsErrNotFound(err), "wrong error: %v", err)
}
