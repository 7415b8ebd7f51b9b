// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/fmsim/background"
	"github.com/bitmark-inc/fmsim/counter"
	"github.com/bitmark-inc/fmsim/fault"
)

// RealtimePool - worker goroutines that sleep for the unit duration
type RealtimePool struct {
	parameters Parameters
	log        *logger.L
	start      time.Time

	work chan Completion
	done chan Completion

	workers   *background.T
	inFlight  int
	nextToken Token
	stopped   bool

	submitted counter.Counter
	completed counter.Counter
}

// one verification engine group
type verifier struct {
	log *logger.L
}

// NewRealtime - start Capacity workers, the clock starts now
func NewRealtime(parameters Parameters, log *logger.L) (*RealtimePool, error) {
	if err := parameters.Validate(); err != nil {
		return nil, err
	}

	p := &RealtimePool{
		parameters: parameters,
		log:        log,
		start:      time.Now(),
		work:       make(chan Completion, parameters.Capacity),
		done:       make(chan Completion, parameters.Capacity),
	}

	processes := make(background.Processes, parameters.Capacity)
	for i := range processes {
		processes[i] = &verifier{
			log: log,
		}
	}
	p.workers = background.Start(processes, p)

	log.Infof("started %d workers", parameters.Capacity)
	return p, nil
}

// Capacity - maximum units in flight
func (p *RealtimePool) Capacity() int {
	return p.parameters.Capacity
}

// InFlight - units not yet returned by Wait
func (p *RealtimePool) InFlight() int {
	return p.inFlight
}

// Now - wall time since the pool was created
func (p *RealtimePool) Now() time.Duration {
	return time.Since(p.start)
}

// Submit - queue a unit for the next free worker
func (p *RealtimePool) Submit(unit Unit) (Token, error) {
	if p.stopped {
		return 0, fault.ErrPoolStopped
	}
	if p.inFlight >= p.parameters.Capacity {
		return 0, fault.ErrPoolExhausted
	}
	p.nextToken += 1
	p.inFlight += 1
	p.submitted.Increment()

	// cannot block: the channel holds Capacity items
	p.work <- Completion{
		Unit:    unit,
		Token:   p.nextToken,
		Started: p.Now(),
	}
	return p.nextToken, nil
}

// Wait - block for the first completion then collect any others that
// are already available
func (p *RealtimePool) Wait() ([]Completion, error) {
	if p.stopped {
		return nil, fault.ErrPoolStopped
	}
	if 0 == p.inFlight {
		return nil, fault.ErrPoolIdle
	}

	done := []Completion{<-p.done}
collect:
	for {
		select {
		case c := <-p.done:
			done = append(done, c)
		default:
			break collect
		}
	}
	p.inFlight -= len(done)
	return done, nil
}

// Statistics - unit counts
func (p *RealtimePool) Statistics() Statistics {
	return Statistics{
		Submitted: p.submitted.Uint64(),
		Completed: p.completed.Uint64(),
	}
}

// Stop - shut down all workers, units still running are abandoned
func (p *RealtimePool) Stop() {
	if p.stopped {
		return
	}
	p.stopped = true
	p.workers.Stop()
	p.log.Info("stopped")
}

// Run - take units from the pool and sleep for each one
func (v *verifier) Run(args interface{}, shutdown <-chan struct{}) {
	p := args.(*RealtimePool)

	for {
		select {
		case <-shutdown:
			return
		case c := <-p.work:
			d := p.parameters.Duration(c.Endorsements)
			c.Started = p.Now()

			timer := time.NewTimer(d)
			select {
			case <-shutdown:
				timer.Stop()
				return
			case <-timer.C:
			}

			c.Finished = p.Now()
			p.completed.Increment()
			v.log.Tracef("tx%d with %d endorsements: %v", c.Transaction, c.Endorsements, c.Finished-c.Started)
			p.done <- c
		}
	}
}
