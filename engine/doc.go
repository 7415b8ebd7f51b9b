// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package engine - pool of endorsement verification engines
//
// No cryptography is performed, a verification unit only costs time:
//
//   ceil(endorsements / engines_per_group) * engine_latency
//
// Two pools implement the same interface: a virtual clock pool that
// jumps from one completion event to the next, and a realtime pool
// whose workers really sleep for the duration of each unit.
package engine
