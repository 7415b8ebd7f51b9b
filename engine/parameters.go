// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"time"

	"github.com/bitmark-inc/fmsim/fault"
)

// Parameters - immutable description of a pool
type Parameters struct {
	Capacity        int           `json:"capacity"`          // concurrently active units
	EnginesPerGroup int           `json:"engines_per_group"` // sub-engines cooperating in one slot
	EngineLatency   time.Duration `json:"engine_latency"`    // one verification round
}

// Validate - check the parameters are usable
func (p Parameters) Validate() error {
	if p.Capacity < 1 {
		return fault.ErrInvalidCapacity
	}
	if p.EnginesPerGroup < 1 {
		return fault.ErrInvalidEnginesPerGroup
	}
	if p.EngineLatency < 0 {
		return fault.ErrInvalidEngineLatency
	}
	return nil
}

// Rounds - verification rounds needed for a number of endorsements
func (p Parameters) Rounds(endorsements int) int {
	if endorsements <= 0 {
		return 0
	}
	return (endorsements + p.EnginesPerGroup - 1) / p.EnginesPerGroup
}

// Duration - time taken by one unit covering the endorsements
func (p Parameters) Duration(endorsements int) time.Duration {
	return time.Duration(p.Rounds(endorsements)) * p.EngineLatency
}
