// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package scheduler

// Transaction - verification progress of one transaction
type Transaction struct {
	ID       uint64 `json:"id"`
	Required int    `json:"required"`
	Issued   int    `json:"issued"`
	Finished int    `json:"finished"`
}

// Done - all required endorsements are verified
func (t *Transaction) Done() bool {
	return t.Finished == t.Required
}

// Outstanding - endorsements not yet issued to the pool
func (t *Transaction) Outstanding() int {
	return t.Required - t.Issued
}
