// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package simulator - run a workload block by block through the
// scheduler and aggregate latency and throughput
//
// Blocks are processed strictly one after another, the engine pool
// drains between blocks. Every block result and the final summary are
// passed to each registered sink in order.
package simulator
