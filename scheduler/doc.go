// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package scheduler - issue the endorsement verification work of one
// block to an engine pool and retire transactions in order
//
// At most pool capacity transactions are tracked at once. A
// transaction is retired only when all of its endorsements are
// verified and every older transaction of the block has been retired,
// so retirement is strictly ascending by transaction id even though
// the pool may complete units in any order.
//
// The scheduler is single threaded, it only suspends inside
// Pool.Wait.
package scheduler
