// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package simulator

import (
	"fmt"
	"io"
	"time"

	"github.com/bitmark-inc/fmsim/peerlog"
	"github.com/bitmark-inc/fmsim/pipeline"
)

// Banner - the parameters printed before a run
type Banner struct {
	EngineLatency   time.Duration
	Threads         int
	EnginesPerGroup int
	Blocks          int
	BlockSize       float64
	Endorsements    string
	FrontEnd        time.Duration
	Commit          time.Duration
	Seed            int64
	Realtime        bool
}

// WriteBanner - print the run parameters
func WriteBanner(w io.Writer, b Banner) error {
	pool := "virtual"
	if b.Realtime {
		pool = "realtime"
	}
	_, err := fmt.Fprintf(w, "\n=== Fabric Machine v1 ===\n"+
		"ecdsa_engine_latency: %v\n"+
		"vscc_threads: %d\n"+
		"tx_vscc_ecdsa_engines: %d\n"+
		"blocks: %d\n"+
		"block_size: %g\n"+
		"endorsements: %s\n"+
		"front_end_latency: %v\n"+
		"commit_latency: %v\n"+
		"seed: %d\n"+
		"pool: %s\n\n",
		b.EngineLatency,
		b.Threads,
		b.EnginesPerGroup,
		b.Blocks,
		b.BlockSize,
		b.Endorsements,
		b.FrontEnd,
		b.Commit,
		b.Seed,
		pool,
	)
	return err
}

// SummaryWriter - human readable per block and final lines
type SummaryWriter struct {
	w io.Writer
}

// NewSummaryWriter - a sink printing to w
func NewSummaryWriter(w io.Writer) *SummaryWriter {
	return &SummaryWriter{
		w: w,
	}
}

// Block - "blockN fe + fe + verify + commit = totalms"
func (s *SummaryWriter) Block(r BlockResult) error {
	l := r.Latency
	_, err := fmt.Fprintf(s.w, "block%d %.1f + %.1f + %.1f + %.1f = %.1fms\n",
		r.Block.Number,
		pipeline.Milliseconds(l.FrontEnd),
		pipeline.Milliseconds(l.FrontEnd),
		pipeline.Milliseconds(l.Verification),
		pipeline.Milliseconds(l.Commit),
		pipeline.Milliseconds(l.Total()),
	)
	return err
}

// Finish - averages over the run
func (s *SummaryWriter) Finish(summary Summary) error {
	average := 0.0
	if summary.Blocks > 0 {
		average = pipeline.Milliseconds(summary.TotalLatency) / float64(summary.Blocks)
	}
	_, err := fmt.Fprintf(s.w, "average block latency: %.1fms\naverage throughput: %.3ftps\n", average, summary.Throughput)
	return err
}

// PeerLogSink - write each block as a peer log commit record
type PeerLogSink struct {
	w *peerlog.Writer
}

// NewPeerLogSink - wrap a peer log writer
func NewPeerLogSink(w *peerlog.Writer) *PeerLogSink {
	return &PeerLogSink{
		w: w,
	}
}

// Block - write the block record
func (p *PeerLogSink) Block(r BlockResult) error {
	return p.w.WriteBlock(r.Block.Number, r.Block.Transactions, r.Latency.Total())
}

// Finish - nothing to add after the last block
func (p *PeerLogSink) Finish(Summary) error {
	return nil
}
