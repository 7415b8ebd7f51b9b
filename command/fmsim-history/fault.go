// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/bitmark-inc/fmsim/fault"
)

// common errors - keep in alphabetic order
const (
	ErrMissingDatabase = fault.InvalidError("database directory is required")
	ErrMissingRunID    = fault.InvalidError("run id is required")
)
