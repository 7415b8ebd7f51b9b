// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package workload - queues of blocks and per-transaction endorsement
// counts consumed by a simulation run
//
// A workload is either synthetic (a fixed number of equally sized
// blocks) or replayed from the committed block records of a peer log.
// In both cases every transaction's endorsement count is drawn from an
// endorsement distribution when the workload is created, so a seeded
// random source gives a reproducible run.
package workload
