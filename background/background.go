// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package background - start and stop a set of long running goroutines
package background

// the shutdown and completed channels for one process
type shutdown struct {
	shutdown chan struct{}
	finished chan struct{}
}

// T - handle for a set of started processes
type T struct {
	s []shutdown
}

// Process - a background process
//
// Run must return soon after the shutdown channel is closed
type Process interface {
	Run(args interface{}, shutdown <-chan struct{})
}

// Processes - list of processes to start
type Processes []Process

// Start - start up a set of background processes, all receiving the same args
func Start(processes Processes, args interface{}) *T {

	register := &T{
		s: make([]shutdown, len(processes)),
	}

	for i, p := range processes {
		sd := make(chan struct{})
		finished := make(chan struct{})
		register.s[i].shutdown = sd
		register.s[i].finished = finished
		go func(p Process) {
			defer close(finished)
			p.Run(args, sd)
		}(p)
	}
	return register
}

// Stop - signal all processes to stop and wait for them to finish
func (t *T) Stop() {
	if nil == t {
		return
	}

	for _, s := range t.s {
		close(s.shutdown)
	}

	for _, s := range t.s {
		<-s.finished
	}
}
