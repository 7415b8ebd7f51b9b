// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package workload

import (
	"io"
	"math/rand"
	"os"

	"github.com/pkg/errors"

	"github.com/bitmark-inc/fmsim/endorsement"
	"github.com/bitmark-inc/fmsim/fault"
	"github.com/bitmark-inc/fmsim/peerlog"
)

// limits on the queued workload, every transaction holds one
// endorsement count in memory
const (
	MaximumBlocks       = 1000000
	MaximumBlockSize    = 1000000
	MaximumTransactions = 50000000
)

// Block - one block to be validated
type Block struct {
	Number       uint64 `json:"number"`
	Transactions int    `json:"transactions"`
}

// Source - FIFO of blocks and FIFO of endorsement counts
type Source struct {
	blocks       []Block
	endorsements []int

	totalBlocks       int
	totalTransactions int
	replayed          bool
}

// Synthetic - count blocks each holding size transactions
func Synthetic(count int, size int, distribution *endorsement.Distribution, rng *rand.Rand) (*Source, error) {
	if count < 0 || count > MaximumBlocks {
		return nil, fault.ErrInvalidBlockCount
	}
	if size < 0 || size > MaximumBlockSize {
		return nil, fault.ErrInvalidBlockSize
	}
	if size > 0 && count > MaximumTransactions/size {
		return nil, fault.ErrTooManyTransactions
	}

	s := &Source{
		blocks:       make([]Block, 0, count),
		endorsements: make([]int, 0, count*size),
	}
	for i := 0; i < count; i += 1 {
		s.add(size, distribution, rng)
	}
	return s, nil
}

// Replay - block sizes from the committed block records of a peer log
//
// endorsement counts are still drawn from the distribution since
// peer logs do not record them
func Replay(r io.Reader, distribution *endorsement.Distribution, rng *rand.Rand) (*Source, error) {
	s := &Source{
		replayed: true,
	}

	sizes := make([]int, 0)
	total := 0
	scanner := peerlog.NewScanner(r)
	for scanner.Scan() {
		c := scanner.Committed()
		if len(sizes) >= MaximumBlocks {
			return nil, errors.Wrapf(fault.ErrInvalidBlockCount, "replay block [%d]", c.Block)
		}
		if c.Transactions > MaximumBlockSize {
			return nil, errors.Wrapf(fault.ErrInvalidBlockSize, "replay block [%d] with %d transactions", c.Block, c.Transactions)
		}
		if total > MaximumTransactions-c.Transactions {
			return nil, errors.Wrapf(fault.ErrTooManyTransactions, "replay block [%d]", c.Block)
		}
		total += c.Transactions
		sizes = append(sizes, c.Transactions)
	}
	if err := scanner.Err(); nil != err {
		return nil, errors.Wrap(err, "replay")
	}

	// draw only after the whole log is known to fit
	for _, size := range sizes {
		s.add(size, distribution, rng)
	}
	if 0 == s.totalBlocks {
		return nil, fault.ErrNoReplayBlocks
	}
	return s, nil
}

// ReplayFile - Replay from a named peer log
func ReplayFile(name string, distribution *endorsement.Distribution, rng *rand.Rand) (*Source, error) {
	f, err := os.Open(name)
	if nil != err {
		return nil, err
	}
	defer f.Close()

	s, err := Replay(f, distribution, rng)
	if nil != err {
		return nil, errors.Wrapf(err, "blocks file: %q", name)
	}
	return s, nil
}

func (s *Source) add(size int, distribution *endorsement.Distribution, rng *rand.Rand) {
	s.blocks = append(s.blocks, Block{
		Number:       uint64(s.totalBlocks),
		Transactions: size,
	})
	s.endorsements = append(s.endorsements, distribution.DrawN(rng, size)...)
	s.totalBlocks += 1
	s.totalTransactions += size
}

// NextBlock - remove the block at the front of the queue
func (s *Source) NextBlock() (Block, bool) {
	if 0 == len(s.blocks) {
		return Block{}, false
	}
	b := s.blocks[0]
	s.blocks = s.blocks[1:]
	return b, true
}

// NextEndorsements - remove the endorsement count at the front of the queue
func (s *Source) NextEndorsements() (int, error) {
	if 0 == len(s.endorsements) {
		return 0, fault.ErrWorkloadExhausted
	}
	e := s.endorsements[0]
	s.endorsements = s.endorsements[1:]
	return e, nil
}

// Blocks - number of blocks in the workload
func (s *Source) Blocks() int {
	return s.totalBlocks
}

// Transactions - number of transactions in the workload
func (s *Source) Transactions() int {
	return s.totalTransactions
}

// MeanBlockSize - average transactions per block
func (s *Source) MeanBlockSize() float64 {
	if 0 == s.totalBlocks {
		return 0
	}
	return float64(s.totalTransactions) / float64(s.totalBlocks)
}

// Replayed - true if block sizes came from a peer log
func (s *Source) Replayed() bool {
	return s.replayed
}

// Pending - blocks and endorsement counts not yet consumed
func (s *Source) Pending() (int, int) {
	return len(s.blocks), len(s.endorsements)
}
