// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package endorsement - categorical distribution of endorsements per transaction
//
// A distribution is a population of possible endorsement counts with a
// matching list of probabilities.  The textual forms accepted are:
//
//   e1,e2,e3:p1,p2,p3   explicit population and probabilities
//   e  with  alpha,beta expanded to population [e/2, e, e+1, 2(e+1)]
//                       and probabilities [beta/2, alpha, 1-alpha-beta, beta/2]
//
package endorsement
