// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/fmsim/engine"
	"github.com/bitmark-inc/fmsim/history"
	"github.com/bitmark-inc/fmsim/metrics"
	"github.com/bitmark-inc/fmsim/peerlog"
	"github.com/bitmark-inc/fmsim/scheduler"
	"github.com/bitmark-inc/fmsim/simulator"
	"github.com/bitmark-inc/fmsim/workload"
)

// run one simulation with all requested outputs
func simulate(ctx context.Context, s *settings, out io.Writer, log *logger.L) (*simulator.Report, error) {
	seed := s.seed
	if !s.seeded {
		seed = time.Now().UnixNano()
	}
	log.Infof("seed: %d", seed)
	rng := rand.New(rand.NewSource(seed))

	var source *workload.Source
	var err error
	if "" != s.blocksFile {
		source, err = workload.ReplayFile(s.blocksFile, s.distribution, rng)
	} else {
		source, err = workload.Synthetic(s.blocks, s.blockSize, s.distribution, rng)
	}
	if nil != err {
		log.Errorf("workload error: %s", err)
		return nil, err
	}
	log.Infof("workload: %d blocks  mean size: %g  replayed: %t", source.Blocks(), source.MeanBlockSize(), source.Replayed())

	var pool engine.Pool
	if s.realtime {
		p, err := engine.NewRealtime(s.engine, logger.New("engine"))
		if nil != err {
			return nil, err
		}
		defer p.Stop()
		pool = p
	} else {
		p, err := engine.NewVirtual(s.engine)
		if nil != err {
			return nil, err
		}
		pool = p
	}

	if !s.quiet {
		err := simulator.WriteBanner(out, simulator.Banner{
			EngineLatency:   s.engine.EngineLatency,
			Threads:         s.engine.Capacity,
			EnginesPerGroup: s.engine.EnginesPerGroup,
			Blocks:          source.Blocks(),
			BlockSize:       source.MeanBlockSize(),
			Endorsements:    s.endorsements,
			FrontEnd:        s.model.FrontEnd,
			Commit:          s.model.Commit,
			Seed:            seed,
			Realtime:        s.realtime,
		})
		if nil != err {
			return nil, err
		}
	}

	sinks := []simulator.Sink{
		simulator.NewSummaryWriter(out),
	}

	if "" != s.peerLog {
		f, err := os.Create(s.peerLog)
		if nil != err {
			log.Errorf("peer log: %q  error: %s", s.peerLog, err)
			return nil, err
		}
		defer f.Close()

		w, err := peerlog.NewWriter(f, nil)
		if nil != err {
			return nil, err
		}
		sinks = append(sinks, simulator.NewPeerLogSink(w))
	}

	var m *metrics.Metrics
	if "" != s.metricsFile {
		m = metrics.New(s.engine.Capacity)
		sinks = append(sinks, m)
	}

	if "" != s.history {
		store, err := history.Open(s.history, false, logger.New("history"))
		if nil != err {
			log.Errorf("history: %q  error: %s", s.history, err)
			return nil, err
		}
		defer store.Close()

		sinks = append(sinks, history.NewRecorder(store, history.Parameters{
			Engine:       s.engine,
			Pipeline:     s.model,
			Endorsements: s.endorsements,
			Blocks:       source.Blocks(),
			BlockSize:    source.MeanBlockSize(),
			BlocksFile:   s.blocksFile,
			Seed:         seed,
			Realtime:     s.realtime,
		}))
	}

	sched := scheduler.New(logger.New("scheduler"), pool)
	sim := simulator.New(logger.New("simulator"), sched, s.model, sinks...)

	report, err := sim.Run(ctx, source)
	if nil != err {
		return report, err
	}

	stats := pool.Statistics()
	log.Infof("pool: submitted: %d  completed: %d", stats.Submitted, stats.Completed)

	if nil != m {
		if err := m.WriteTextfile(s.metricsFile); nil != err {
			log.Errorf("metrics file: %q  error: %s", s.metricsFile, err)
			return report, err
		}
	}
	return report, nil
}
