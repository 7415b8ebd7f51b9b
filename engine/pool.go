// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"time"
)

// Token - identifies one submitted unit, increases in submission order
type Token uint64

// Unit - the simultaneous check of some endorsements of one transaction
type Unit struct {
	Transaction  uint64
	Endorsements int
}

// Completion - reported back when a unit has been verified
type Completion struct {
	Unit
	Token    Token
	Started  time.Duration
	Finished time.Duration
}

// Statistics - unit counts since the pool was created
type Statistics struct {
	Submitted uint64
	Completed uint64
}

//go:generate mockgen -source=pool.go -destination=mocks/pool.go -package=mocks

// Pool - a fixed capacity set of interchangeable verification workers
//
// A pool is driven by a single caller: Submit and Wait are never
// called concurrently.
type Pool interface {
	// maximum units in flight
	Capacity() int

	// units submitted but not yet returned by Wait
	InFlight() int

	// the pool clock, starting from zero
	Now() time.Duration

	// start a unit, fails with fault.ErrPoolExhausted when InFlight() == Capacity()
	Submit(unit Unit) (Token, error)

	// block until at least one unit completes and return every unit
	// that has completed, fails with fault.ErrPoolIdle if nothing is in flight
	Wait() ([]Completion, error)

	Statistics() Statistics
}
