// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peerlog

import (
	"bufio"
	"fmt"
	"io"
	"time"
)

// Header - first line of every simulated log
const Header = "Fabric Machine Simulator v1"

const (
	timestampFormat = "2006-01-02 15:04:05.000000 UTC"
	flagsPerWord    = 32
	allValid        = 0xffffffff
)

// Clock - source of log line timestamps
type Clock func() time.Time

// Writer - emit block records in peer log format
type Writer struct {
	w     *bufio.Writer
	clock Clock
}

// NewWriter - write the header and return a writer
//
// a nil clock uses the current time
func NewWriter(w io.Writer, clock Clock) (*Writer, error) {
	if nil == clock {
		clock = time.Now
	}
	pw := &Writer{
		w:     bufio.NewWriter(w),
		clock: clock,
	}
	if _, err := fmt.Fprintf(pw.w, "%s\n\n", Header); nil != err {
		return nil, err
	}
	return pw, pw.w.Flush()
}

// WriteBlock - the four lines describing one validated and committed
// block with every transaction marked valid
func (pw *Writer) WriteBlock(number uint64, transactions int, latency time.Duration) error {
	w := pw.w

	fmt.Fprintf(w, ".....%s ... START Block Validation for block [%d]\n", pw.now(), number)
	fmt.Fprintf(w, ".....%s ... Validated block [%d] in 0us\n", pw.now(), number)
	fmt.Fprintf(w, ".....%s ... Block [%d] transaction validation flags: ", pw.now(), number)
	for _, word := range ValidationFlags(transactions) {
		fmt.Fprintf(w, "0X%08X ", word)
	}
	fmt.Fprintf(w, "\n.....%s ... Committed block [%d] with %d transaction(s) in %dus "+
		"(state_validation=0us block_and_pvtdata_commit=0us state_commit=0us)\n\n",
		pw.now(), number, transactions, latency/time.Microsecond)

	return w.Flush()
}

func (pw *Writer) now() string {
	return pw.clock().UTC().Format(timestampFormat)
}

// ValidationFlags - one bit per transaction, the partial word first
func ValidationFlags(transactions int) []uint32 {
	if transactions < 0 {
		transactions = 0
	}
	words := transactions / flagsPerWord
	first := uint(transactions % flagsPerWord)

	flags := make([]uint32, 1, words+1)
	flags[0] = uint32(1)<<first - 1
	for i := 0; i < words; i += 1 {
		flags = append(flags, allValid)
	}
	return flags
}
