// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"container/heap"
	"time"

	"github.com/bitmark-inc/fmsim/counter"
	"github.com/bitmark-inc/fmsim/fault"
)

// priority queue of pending completions, earliest first, ties in
// submission order
type eventList []Completion

func (e eventList) Len() int { return len(e) }
func (e eventList) Less(i, j int) bool {
	if e[i].Finished == e[j].Finished {
		return e[i].Token < e[j].Token
	}
	return e[i].Finished < e[j].Finished
}
func (e eventList) Swap(i, j int) { e[i], e[j] = e[j], e[i] }
func (e *eventList) Push(x interface{}) {
	*e = append(*e, x.(Completion))
}
func (e *eventList) Pop() interface{} {
	old := *e
	n := len(old)
	x := old[n-1]
	*e = old[0 : n-1]
	return x
}

// VirtualPool - discrete event pool, the clock only moves in Wait
type VirtualPool struct {
	parameters Parameters
	now        time.Duration
	nextToken  Token
	events     eventList
	submitted  counter.Counter
	completed  counter.Counter
}

// NewVirtual - create a pool with its clock at zero
func NewVirtual(parameters Parameters) (*VirtualPool, error) {
	if err := parameters.Validate(); err != nil {
		return nil, err
	}
	p := &VirtualPool{
		parameters: parameters,
		events:     make(eventList, 0, parameters.Capacity),
	}
	return p, nil
}

// Capacity - maximum units in flight
func (p *VirtualPool) Capacity() int {
	return p.parameters.Capacity
}

// InFlight - units not yet completed
func (p *VirtualPool) InFlight() int {
	return len(p.events)
}

// Now - current virtual time
func (p *VirtualPool) Now() time.Duration {
	return p.now
}

// Submit - schedule the completion event of a unit
func (p *VirtualPool) Submit(unit Unit) (Token, error) {
	if len(p.events) >= p.parameters.Capacity {
		return 0, fault.ErrPoolExhausted
	}
	p.nextToken += 1
	heap.Push(&p.events, Completion{
		Unit:     unit,
		Token:    p.nextToken,
		Started:  p.now,
		Finished: p.now + p.parameters.Duration(unit.Endorsements),
	})
	p.submitted.Increment()
	return p.nextToken, nil
}

// Wait - advance the clock to the next completion and return all
// units finishing at that instant
func (p *VirtualPool) Wait() ([]Completion, error) {
	if len(p.events) == 0 {
		return nil, fault.ErrPoolIdle
	}

	first := heap.Pop(&p.events).(Completion)
	p.now = first.Finished
	done := []Completion{first}

	for len(p.events) > 0 && p.events[0].Finished == p.now {
		done = append(done, heap.Pop(&p.events).(Completion))
	}
	p.completed.Add(uint64(len(done)))
	return done, nil
}

// Statistics - unit counts
func (p *VirtualPool) Statistics() Statistics {
	return Statistics{
		Submitted: p.submitted.Uint64(),
		Completed: p.completed.Uint64(),
	}
}
