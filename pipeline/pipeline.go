// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pipeline - the constant stages around endorsement
// verification
//
// In a filled pipeline only the verification stage grows with the
// block, the front end stage is paid twice (block and transaction
// verification) and commit once.
package pipeline

import (
	"time"

	"github.com/bitmark-inc/fmsim/fault"
)

// Model - fixed stage latencies
type Model struct {
	FrontEnd time.Duration `json:"front_end"`
	Commit   time.Duration `json:"commit"`
}

// Latency - the stages of one block
type Latency struct {
	FrontEnd     time.Duration `json:"front_end"`
	Verification time.Duration `json:"verification"`
	Commit       time.Duration `json:"commit"`
}

// Validate - stage latencies cannot be negative
func (m Model) Validate() error {
	if m.FrontEnd < 0 || m.Commit < 0 {
		return fault.ErrInvalidPipelineLatency
	}
	return nil
}

// Block - latency of a block whose verification took span
func (m Model) Block(span time.Duration) Latency {
	return Latency{
		FrontEnd:     m.FrontEnd,
		Verification: span,
		Commit:       m.Commit,
	}
}

// Total - end to end block latency
func (l Latency) Total() time.Duration {
	return 2*l.FrontEnd + l.Verification + l.Commit
}

// Milliseconds - a duration as fractional milliseconds
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
