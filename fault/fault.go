// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"github.com/pkg/errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrConfigurationNotTable  = InvalidError("configuration file must return a table")
	ErrEmptyPopulation        = InvalidError("endorsement population is empty")
	ErrIncompatibleDatabase   = InvalidError("database version is not compatible")
	ErrInvalidBlockCount      = InvalidError("block count must not be negative")
	ErrInvalidBlockSize       = InvalidError("block size must not be negative")
	ErrInvalidCapacity        = InvalidError("engine pool capacity must be positive")
	ErrInvalidCursor          = InvalidError("invalid cursor")
	ErrInvalidEngineLatency   = InvalidError("engine latency must not be negative")
	ErrInvalidEnginesPerGroup = InvalidError("engines per group must be positive")
	ErrInvalidPipelineLatency = InvalidError("pipeline latency must not be negative")
	ErrInvalidShapeParameters = InvalidError("endorsement shape parameters are invalid")
	ErrInvalidStructPointer   = InvalidError("invalid struct pointer")
	ErrLedgerFull             = ProcessError("transaction ledger is full")
	ErrLedgerOutOfOrder       = ProcessError("transaction ledger insert out of order")
	ErrMissingConfigFile      = InvalidError("watch mode requires a configuration file")
	ErrNegativeEndorsements   = InvalidError("endorsement count must not be negative")
	ErrNegativeProbability    = InvalidError("endorsement probability must not be negative")
	ErrNoReplayBlocks         = NotFoundError("no committed blocks found in replay log")
	ErrNotInitialised         = NotFoundError("not initialised")
	ErrOverVerified           = ProcessError("transaction verified more endorsements than required")
	ErrPoolExhausted          = ProcessError("verification pool is at capacity")
	ErrPoolIdle               = ProcessError("no verification units in flight")
	ErrPoolStopped            = ProcessError("verification pool is stopped")
	ErrPopulationLength       = InvalidError("endorsement population and probability lengths differ")
	ErrProbabilitySum         = InvalidError("endorsement probabilities do not sum to 1")
	ErrRunExists              = ExistsError("run already exists")
	ErrRunNotFound            = NotFoundError("run not found")
	ErrTooManyTransactions    = InvalidError("workload has too many transactions")
	ErrUntrackedTransaction   = ProcessError("completion for untracked transaction")
	ErrWorkloadExhausted      = ProcessError("endorsement stream exhausted")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := errors.Cause(e).(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := errors.Cause(e).(InvalidError); return ok }
func IsErrNotFound(e error) bool { _, ok := errors.Cause(e).(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := errors.Cause(e).(ProcessError); return ok }
