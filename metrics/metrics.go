// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package metrics - Prometheus counters for a simulation run, written
// out in text exposition format for a node exporter textfile collector
package metrics

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/bitmark-inc/fmsim/simulator"
)

const namespace = "fmsim"

// Metrics - a private registry holding the run's collectors
type Metrics struct {
	registry *prometheus.Registry

	blockLatency   prometheus.Histogram
	blocks         prometheus.Counter
	transactions   prometheus.Counter
	units          prometheus.Counter
	averageLatency prometheus.Gauge
	throughput     prometheus.Gauge
	capacity       prometheus.Gauge
}

// New - register all collectors, capacity is the engine pool size
func New(capacity int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		blockLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "block_latency_seconds",
			Help:      "End to end latency of a validated block.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		blocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_total",
			Help:      "Blocks validated.",
		}),
		transactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Transactions validated.",
		}),
		units: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_units_total",
			Help:      "Verification units submitted to the engine pool.",
		}),
		averageLatency: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "average_block_latency_seconds",
			Help:      "Average block latency over the run.",
		}),
		throughput: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "throughput_tps",
			Help:      "Transactions per second over the run.",
		}),
		capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "engine_pool_capacity",
			Help:      "Verification units that may run concurrently.",
		}),
	}

	m.registry.MustRegister(
		m.blockLatency,
		m.blocks,
		m.transactions,
		m.units,
		m.averageLatency,
		m.throughput,
		m.capacity,
	)
	m.capacity.Set(float64(capacity))
	return m
}

// Block - record one block
func (m *Metrics) Block(r simulator.BlockResult) error {
	m.blockLatency.Observe(r.Latency.Total().Seconds())
	m.blocks.Inc()
	m.transactions.Add(float64(r.Block.Transactions))
	m.units.Add(float64(r.Units))
	return nil
}

// Finish - record the run averages
func (m *Metrics) Finish(s simulator.Summary) error {
	m.averageLatency.Set(s.AverageLatency.Seconds())
	m.throughput.Set(s.Throughput)
	return nil
}

// Gather - current values of every collector
func (m *Metrics) Gather() ([]*dto.MetricFamily, error) {
	return m.registry.Gather()
}

// WriteText - text exposition of every collector
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if nil != err {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); nil != err {
			return err
		}
	}
	return nil
}

// WriteTextfile - replace a file with the text exposition
//
// the data is written to a temporary file in the same directory then
// renamed so a collector never sees a partial file
func (m *Metrics) WriteTextfile(name string) error {
	f, err := ioutil.TempFile(filepath.Dir(name), filepath.Base(name)+".tmp")
	if nil != err {
		return err
	}
	tmp := f.Name()

	err = m.WriteText(f)
	if closeErr := f.Close(); nil == err {
		err = closeErr
	}
	if nil == err {
		// collectors may run as another user
		err = os.Chmod(tmp, 0644)
	}
	if nil != err {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, name)
}
