// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package scheduler

import (
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/pkg/errors"

	"github.com/bitmark-inc/fmsim/engine"
	"github.com/bitmark-inc/fmsim/fault"
	"github.com/bitmark-inc/fmsim/workload"
)

// EndorsementSource - supplies the endorsement count of each
// transaction in issue order
type EndorsementSource interface {
	NextEndorsements() (int, error)
}

// Observer - optional callbacks, invoked in event order
type Observer struct {
	Issued  func(block uint64, transaction Transaction)
	Retired func(block uint64, id uint64)
}

// Result - outcome of verifying one block
type Result struct {
	Block      workload.Block `json:"block"`
	Units      int            `json:"units"`
	Span       time.Duration  `json:"span"`
	PeakLedger int            `json:"peak_ledger"`
}

// Scheduler - drives an engine pool one block at a time
type Scheduler struct {
	log      *logger.L
	pool     engine.Pool
	observer Observer
}

// New - create a scheduler for a pool
func New(log *logger.L, pool engine.Pool) *Scheduler {
	return &Scheduler{
		log:  log,
		pool: pool,
	}
}

// SetObserver - replace the event callbacks
func (s *Scheduler) SetObserver(observer Observer) {
	s.observer = observer
}

// Pool - the pool being driven
func (s *Scheduler) Pool() engine.Pool {
	return s.pool
}

// Run - verify all transactions of a block and return when the last
// one is retired, the pool is empty on return
func (s *Scheduler) Run(block workload.Block, endorsements EndorsementSource) (Result, error) {
	if block.Transactions < 0 {
		return Result{Block: block}, fault.ErrInvalidBlockSize
	}
	capacity := s.pool.Capacity()
	n := uint64(block.Transactions)
	tracked := newLedger(capacity)

	result := Result{
		Block: block,
	}
	start := s.pool.Now()

	issued := uint64(0)
	issuedLast := true

	for issued < n || tracked.Len() > 0 {
		s.log.Tracef("block %d: transactions: %d  issued: %d  tracked: %d", block.Number, n, issued, tracked.Len())

		if s.pool.InFlight() == capacity || !issuedLast {
			done, err := s.pool.Wait()
			if nil != err {
				return result, err
			}
			for _, c := range done {
				t, ok := tracked.Get(c.Transaction)
				if !ok {
					s.log.Errorf("block %d: completion for untracked tx%d", block.Number, c.Transaction)
					return result, fault.ErrUntrackedTransaction
				}
				t.Finished += c.Endorsements
				if t.Finished > t.Required {
					s.log.Errorf("block %d: tx%d finished: %d  required: %d", block.Number, t.ID, t.Finished, t.Required)
					return result, fault.ErrOverVerified
				}
			}
			s.retire(block.Number, tracked)
		}
		issuedLast = false

		if !tracked.Full() && issued < n {
			required, err := endorsements.NextEndorsements()
			if nil != err {
				return result, errors.Wrapf(err, "block %d tx%d", block.Number, issued)
			}
			t, err := tracked.Append(issued, required)
			if nil != err {
				return result, err
			}
			if tracked.Len() > result.PeakLedger {
				result.PeakLedger = tracked.Len()
			}

			if t.Outstanding() > 0 {
				unit := engine.Unit{
					Transaction:  t.ID,
					Endorsements: t.Outstanding(),
				}
				if _, err := s.pool.Submit(unit); nil != err {
					return result, err
				}
				s.log.Debugf("block %d: scheduled tx%d ends%d-%d", block.Number, t.ID, t.Issued, t.Required-1)
				t.Issued = t.Required
				result.Units += 1
			}
			if nil != s.observer.Issued {
				s.observer.Issued(block.Number, *t)
			}
			if t.Done() {
				s.retire(block.Number, tracked)
			}

			issued += 1
			issuedLast = true
		}
	}

	result.Span = s.pool.Now() - start
	s.log.Debugf("block %d: %d transactions  %d units  span: %v", block.Number, n, result.Units, result.Span)
	return result, nil
}

func (s *Scheduler) retire(number uint64, tracked *ledger) {
	for _, id := range tracked.RetirePrefix() {
		s.log.Debugf("block %d: finished tx%d", number, id)
		if nil != s.observer.Retired {
			s.observer.Retired(number, id)
		}
	}
}
