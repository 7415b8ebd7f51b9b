// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/fmsim/engine"
	"github.com/bitmark-inc/fmsim/fault"
)

func newVirtual(t *testing.T, capacity int) *engine.VirtualPool {
	p, err := engine.NewVirtual(engine.Parameters{
		Capacity:        capacity,
		EnginesPerGroup: 1,
		EngineLatency:   100 * time.Millisecond,
	})
	assert.Nil(t, err, "wrong error")
	return p
}

func TestNewVirtualInvalid(t *testing.T) {
	_, err := engine.NewVirtual(engine.Parameters{})
	assert.Equal(t, fault.ErrInvalidCapacity, err, "wrong error")
}

func TestVirtualCapacity(t *testing.T) {
	p := newVirtual(t, 2)

	assert.Equal(t, 2, p.Capacity(), "wrong capacity")

	_, err := p.Submit(engine.Unit{Transaction: 0, Endorsements: 2})
	assert.Nil(t, err, "first submit")
	_, err = p.Submit(engine.Unit{Transaction: 1, Endorsements: 2})
	assert.Nil(t, err, "second submit")
	assert.Equal(t, 2, p.InFlight(), "wrong in flight")

	_, err = p.Submit(engine.Unit{Transaction: 2, Endorsements: 2})
	assert.Equal(t, fault.ErrPoolExhausted, err, "submit beyond capacity")
	assert.Equal(t, 2, p.InFlight(), "rejected unit counted")
}

func TestVirtualWaitIdle(t *testing.T) {
	p := newVirtual(t, 1)

	done, err := p.Wait()
	assert.Nil(t, done, "completions from idle pool")
	assert.Equal(t, fault.ErrPoolIdle, err, "wrong error")
}

func TestVirtualWaitForFirst(t *testing.T) {
	p := newVirtual(t, 3)

	t1, _ := p.Submit(engine.Unit{Transaction: 0, Endorsements: 3})
	t2, _ := p.Submit(engine.Unit{Transaction: 1, Endorsements: 1})
	t3, _ := p.Submit(engine.Unit{Transaction: 2, Endorsements: 2})
	assert.True(t, t1 < t2 && t2 < t3, "tokens not increasing")

	done, err := p.Wait()
	assert.Nil(t, err, "first wait")
	assert.Equal(t, 1, len(done), "wrong completion count")
	assert.Equal(t, uint64(1), done[0].Transaction, "wrong first transaction")
	assert.Equal(t, 100*time.Millisecond, p.Now(), "wrong clock")

	done, _ = p.Wait()
	assert.Equal(t, uint64(2), done[0].Transaction, "wrong second transaction")
	assert.Equal(t, 200*time.Millisecond, done[0].Finished, "wrong finish")
	assert.Equal(t, time.Duration(0), done[0].Started, "wrong start")

	done, _ = p.Wait()
	assert.Equal(t, uint64(0), done[0].Transaction, "wrong third transaction")
	assert.Equal(t, 300*time.Millisecond, p.Now(), "wrong final clock")
	assert.Equal(t, 0, p.InFlight(), "pool not drained")
}

func TestVirtualSimultaneousCompletions(t *testing.T) {
	p := newVirtual(t, 2)

	_, _ = p.Submit(engine.Unit{Transaction: 5, Endorsements: 2})
	_, _ = p.Submit(engine.Unit{Transaction: 6, Endorsements: 2})

	done, err := p.Wait()
	assert.Nil(t, err, "wrong error")
	assert.Equal(t, 2, len(done), "simultaneous completions split")
	assert.Equal(t, uint64(5), done[0].Transaction, "ties not in submission order")
	assert.Equal(t, uint64(6), done[1].Transaction, "ties not in submission order")

	s := p.Statistics()
	assert.Equal(t, uint64(2), s.Submitted, "wrong submitted")
	assert.Equal(t, uint64(2), s.Completed, "wrong completed")
}

func TestVirtualClockContinues(t *testing.T) {
	p := newVirtual(t, 1)

	_, _ = p.Submit(engine.Unit{Transaction: 0, Endorsements: 1})
	_, _ = p.Wait()

	_, _ = p.Submit(engine.Unit{Transaction: 0, Endorsements: 4})
	done, _ := p.Wait()
	assert.Equal(t, 100*time.Millisecond, done[0].Started, "wrong start")
	assert.Equal(t, 500*time.Millisecond, done[0].Finished, "wrong finish")
}
