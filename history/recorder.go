// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package history

import (
	"github.com/bitmark-inc/fmsim/simulator"
)

// Recorder - a simulator sink that archives the run when it finishes
type Recorder struct {
	store      *Store
	parameters Parameters
	blocks     []simulator.BlockResult
	last       *Record
}

// NewRecorder - archive runs with these parameters into the store
func NewRecorder(store *Store, parameters Parameters) *Recorder {
	return &Recorder{
		store:      store,
		parameters: parameters,
	}
}

// Block - collect a block result
func (r *Recorder) Block(result simulator.BlockResult) error {
	r.blocks = append(r.blocks, result)
	return nil
}

// Finish - store the record and start collecting a new run
func (r *Recorder) Finish(summary simulator.Summary) error {
	record := &Record{
		Parameters: r.parameters,
		Summary:    summary,
		Blocks:     r.blocks,
	}
	r.blocks = nil
	if err := r.store.Put(record); nil != err {
		return err
	}
	r.last = record
	return nil
}

// Last - the most recently stored record, nil before the first run
func (r *Recorder) Last() *Record {
	return r.last
}
