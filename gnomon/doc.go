// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package gnomon - a specialised timestamp used as a database key
//
// consists of:
//   seconds (int64)      -> the UTC unix time
//   nano seconds (int32) -> fractional time [0 .. 999,999,999]
//
// The binary form is big-endian so keys sort in time order. Cursors
// handed out by NewCursor are strictly increasing within a process
// even when called faster than the clock resolution.
package gnomon
