// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package gnomon

import (
	"encoding/binary"
	"encoding/hex"
	"sync"
	"time"

	"github.com/bitmark-inc/fmsim/fault"
)

// Cursor - effectively a limited timestamp
type Cursor struct {
	seconds     int64
	nanoSeconds int32 // 0 .. 999,999,999
}

// this is to prevent duplicate values
var localData struct {
	sync.Mutex
	current Cursor
}

// description of binary record
const (
	secondsStart     = 0
	secondsSize      = 8
	nanoSecondsStart = secondsStart + secondsSize
	nanoSecondsSize  = 4
	totalSize        = secondsSize + nanoSecondsSize
	hexSize          = 2 * totalSize

	maxNanoSeconds = 999999999
)

// Size - length of the binary form
const Size = totalSize

// NewCursor - a cursor for the current time, always after the
// previous one returned
func NewCursor() *Cursor {
	cursor := FromTime(time.Now())

	localData.Lock()
	defer localData.Unlock()

	if !localData.current.Before(cursor) {
		cursor = localData.current
		cursor.Next()
	}
	localData.current = cursor
	return &cursor
}

// FromTime - the cursor for a specific time
func FromTime(t time.Time) Cursor {
	t = t.UTC()
	return Cursor{
		seconds:     t.Unix(),
		nanoSeconds: int32(t.Nanosecond()),
	}
}

// FromBytes - decode the binary form
func FromBytes(b []byte) (Cursor, error) {
	c := Cursor{}
	err := c.UnmarshalBinary(b)
	return c, err
}

// Next - advance by one LSB
func (cursor *Cursor) Next() {
	cursor.nanoSeconds += 1
	if cursor.nanoSeconds > maxNanoSeconds {
		cursor.nanoSeconds = 0
		cursor.seconds += 1
	}
}

// Before - true if cursor sorts before other
func (cursor Cursor) Before(other Cursor) bool {
	if cursor.seconds == other.seconds {
		return cursor.nanoSeconds < other.nanoSeconds
	}
	return cursor.seconds < other.seconds
}

// Time - the timestamp as UTC time
func (cursor Cursor) Time() time.Time {
	return time.Unix(cursor.seconds, int64(cursor.nanoSeconds)).UTC()
}

// Bytes - the binary form
func (cursor Cursor) Bytes() []byte {
	b := make([]byte, totalSize)
	binary.BigEndian.PutUint64(b[secondsStart:], uint64(cursor.seconds))
	binary.BigEndian.PutUint32(b[nanoSecondsStart:], uint32(cursor.nanoSeconds))
	return b
}

// String - hex of the binary form
func (cursor Cursor) String() string {
	return hex.EncodeToString(cursor.Bytes())
}

// MarshalBinary - big-endian so database indexing will be in
// ascending time order
func (cursor Cursor) MarshalBinary() ([]byte, error) {
	return cursor.Bytes(), nil
}

// UnmarshalBinary - decode the binary form
func (cursor *Cursor) UnmarshalBinary(s []byte) error {
	if totalSize != len(s) {
		return fault.ErrInvalidCursor
	}
	nanoSeconds := int32(binary.BigEndian.Uint32(s[nanoSecondsStart:]))
	if nanoSeconds < 0 || nanoSeconds > maxNanoSeconds {
		return fault.ErrInvalidCursor
	}
	cursor.seconds = int64(binary.BigEndian.Uint64(s[secondsStart:]))
	cursor.nanoSeconds = nanoSeconds
	return nil
}

// MarshalText - hex string
func (cursor Cursor) MarshalText() ([]byte, error) {
	return []byte(cursor.String()), nil
}

// UnmarshalText - decode a hex string
func (cursor *Cursor) UnmarshalText(s []byte) error {
	if hexSize != len(s) {
		return fault.ErrInvalidCursor
	}
	b := make([]byte, totalSize)
	if _, err := hex.Decode(b, s); nil != err {
		return fault.ErrInvalidCursor
	}
	return cursor.UnmarshalBinary(b)
}
