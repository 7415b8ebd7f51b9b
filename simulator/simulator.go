// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package simulator

import (
	"context"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/fmsim/pipeline"
	"github.com/bitmark-inc/fmsim/scheduler"
	"github.com/bitmark-inc/fmsim/workload"
)

// Workload - blocks and their endorsement counts
type Workload interface {
	NextBlock() (workload.Block, bool)
	scheduler.EndorsementSource
}

// BlockResult - outcome of one block
type BlockResult struct {
	Block      workload.Block   `json:"block"`
	Latency    pipeline.Latency `json:"latency"`
	Units      int              `json:"units"`
	PeakLedger int              `json:"peak_ledger"`
}

// Summary - aggregate over the whole run
type Summary struct {
	Blocks         int           `json:"blocks"`
	Transactions   int           `json:"transactions"`
	Units          int           `json:"units"`
	TotalLatency   time.Duration `json:"total_latency"`
	AverageLatency time.Duration `json:"average_latency"`
	Throughput     float64       `json:"throughput"`
}

// Report - everything a run produced
type Report struct {
	Blocks  []BlockResult `json:"blocks"`
	Summary Summary       `json:"summary"`
}

// Sink - receives results as the run progresses
type Sink interface {
	Block(result BlockResult) error
	Finish(summary Summary) error
}

// Simulator - sequential block runner
type Simulator struct {
	log       *logger.L
	scheduler *scheduler.Scheduler
	model     pipeline.Model
	sinks     []Sink
}

// New - create a simulator
func New(log *logger.L, s *scheduler.Scheduler, model pipeline.Model, sinks ...Sink) *Simulator {
	return &Simulator{
		log:       log,
		scheduler: s,
		model:     model,
		sinks:     sinks,
	}
}

// Run - process every block of the workload
//
// cancelling the context stops the run before the next block, the
// partial report is returned with the context error
func (sim *Simulator) Run(ctx context.Context, source Workload) (*Report, error) {
	report := &Report{}

	for {
		if err := ctx.Err(); nil != err {
			sim.log.Warnf("run cancelled after %d blocks", len(report.Blocks))
			report.Summary = summarise(report.Blocks)
			return report, err
		}

		block, ok := source.NextBlock()
		if !ok {
			break
		}

		r, err := sim.scheduler.Run(block, source)
		if nil != err {
			sim.log.Errorf("block %d: error: %s", block.Number, err)
			return report, err
		}

		result := BlockResult{
			Block:      block,
			Latency:    sim.model.Block(r.Span),
			Units:      r.Units,
			PeakLedger: r.PeakLedger,
		}
		report.Blocks = append(report.Blocks, result)
		sim.log.Infof("block %d: %d transactions  latency: %v", block.Number, block.Transactions, result.Latency.Total())

		for _, sink := range sim.sinks {
			if err := sink.Block(result); nil != err {
				return report, err
			}
		}
	}

	report.Summary = summarise(report.Blocks)
	sim.log.Infof("summary: %d blocks  average latency: %v  throughput: %.3f tps", report.Summary.Blocks, report.Summary.AverageLatency, report.Summary.Throughput)

	for _, sink := range sim.sinks {
		if err := sink.Finish(report.Summary); nil != err {
			return report, err
		}
	}
	return report, nil
}

func summarise(blocks []BlockResult) Summary {
	s := Summary{
		Blocks: len(blocks),
	}
	for _, b := range blocks {
		s.Transactions += b.Block.Transactions
		s.Units += b.Units
		s.TotalLatency += b.Latency.Total()
	}
	if s.Blocks > 0 {
		s.AverageLatency = s.TotalLatency / time.Duration(s.Blocks)
	}
	if s.TotalLatency > 0 {
		s.Throughput = float64(s.Transactions) / s.TotalLatency.Seconds()
	}
	return s
}
