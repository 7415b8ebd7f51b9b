// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peerlog

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"time"
)

// older peers logged the same record in milliseconds
var committedPattern = regexp.MustCompile(
	`(.*) UTC(.*)Committed block \[(\d+)\] with (\d+) transaction\(s\) in (\d+)(us|ms) ` +
		`\(state_validation=(\d+)(us|ms) block_and_pvtdata_commit=(\d+)(us|ms) state_commit=(\d+)(us|ms)\)`)

// Committed - one committed block record
type Committed struct {
	Block           uint64
	Transactions    int
	Latency         time.Duration
	StateValidation time.Duration
	BlockCommit     time.Duration
	StateCommit     time.Duration
}

// ParseCommitted - decode a committed block line
//
// returns false for any other line
func ParseCommitted(line string) (Committed, bool) {
	m := committedPattern.FindStringSubmatch(line)
	if nil == m {
		return Committed{}, false
	}

	block, err := strconv.ParseUint(m[3], 10, 64)
	if nil != err {
		return Committed{}, false
	}
	transactions, err := strconv.Atoi(m[4])
	if nil != err {
		return Committed{}, false
	}

	durations := [4]time.Duration{}
	for i := range durations {
		d, ok := duration(m[5+2*i], m[6+2*i])
		if !ok {
			return Committed{}, false
		}
		durations[i] = d
	}

	c := Committed{
		Block:           block,
		Transactions:    transactions,
		Latency:         durations[0],
		StateValidation: durations[1],
		BlockCommit:     durations[2],
		StateCommit:     durations[3],
	}
	return c, true
}

func duration(value string, unit string) (time.Duration, bool) {
	n, err := strconv.ParseInt(value, 10, 64)
	if nil != err {
		return 0, false
	}
	if "ms" == unit {
		return time.Duration(n) * time.Millisecond, true
	}
	return time.Duration(n) * time.Microsecond, true
}

// Scanner - iterate over the committed block records of a log
type Scanner struct {
	s       *bufio.Scanner
	current Committed
	lines   int
	skipped int
}

// NewScanner - scan a peer log
func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Scanner{
		s: s,
	}
}

// Scan - advance to the next committed record, skipping other lines
func (s *Scanner) Scan() bool {
	for s.s.Scan() {
		s.lines += 1
		if c, ok := ParseCommitted(s.s.Text()); ok {
			s.current = c
			return true
		}
		s.skipped += 1
	}
	return false
}

// Committed - the record found by the last successful Scan
func (s *Scanner) Committed() Committed {
	return s.current
}

// Err - first read error, nil at a clean end of input
func (s *Scanner) Err() error {
	return s.s.Err()
}

// Lines - lines read so far
func (s *Scanner) Lines() int {
	return s.lines
}

// Skipped - lines that were not committed block records
func (s *Scanner) Skipped() int {
	return s.skipped
}
