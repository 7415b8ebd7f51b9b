// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package history - archive of finished simulation runs in a LevelDB
// database
//
// key layout:
//   0x00 "VERSION"        -> uint32 database version
//   'R' + cursor          -> JSON record
//   'I' + uuid            -> cursor
//
// Records are listed in the order they were stored.
package history
