// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package scheduler

import (
	"github.com/bitmark-inc/fmsim/fault"
)

// tracked transactions of a block, a ring indexed by id modulo capacity
//
// ids oldest .. oldest+length-1 are present with no gaps
type ledger struct {
	slots  []Transaction
	oldest uint64
	length int
}

func newLedger(capacity int) *ledger {
	return &ledger{
		slots: make([]Transaction, capacity),
	}
}

func (l *ledger) Len() int {
	return l.length
}

func (l *ledger) Full() bool {
	return l.length == len(l.slots)
}

func (l *ledger) slot(id uint64) *Transaction {
	return &l.slots[id%uint64(len(l.slots))]
}

// Append - track the next transaction, ids must be consecutive
func (l *ledger) Append(id uint64, required int) (*Transaction, error) {
	if l.Full() {
		return nil, fault.ErrLedgerFull
	}
	if id != l.oldest+uint64(l.length) {
		return nil, fault.ErrLedgerOutOfOrder
	}
	t := l.slot(id)
	*t = Transaction{
		ID:       id,
		Required: required,
	}
	l.length += 1
	return t, nil
}

// Get - a tracked transaction
func (l *ledger) Get(id uint64) (*Transaction, bool) {
	if id < l.oldest || id >= l.oldest+uint64(l.length) {
		return nil, false
	}
	return l.slot(id), true
}

// RetirePrefix - remove the longest run of finished transactions from
// the front and return their ids in order
func (l *ledger) RetirePrefix() []uint64 {
	var retired []uint64
	for l.length > 0 {
		t := l.slot(l.oldest)
		if !t.Done() {
			break
		}
		retired = append(retired, t.ID)
		l.oldest += 1
		l.length -= 1
	}
	return retired
}
