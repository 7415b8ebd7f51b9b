// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package peerlog - read and write block commit records in the text
// format produced by a validating peer
//
// Only the lines needed to recover block sizes are parsed, everything
// else in a peer log is ignored.
package peerlog
