// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package history

import (
	"encoding/binary"
	"encoding/json"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/fmsim/engine"
	"github.com/bitmark-inc/fmsim/fault"
	"github.com/bitmark-inc/fmsim/gnomon"
	"github.com/bitmark-inc/fmsim/pipeline"
	"github.com/bitmark-inc/fmsim/simulator"
)

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const currentVersion = 0x100

// key prefixes
const (
	recordPrefix = 'R'
	indexPrefix  = 'I'
)

// Parameters - inputs that determine a run
type Parameters struct {
	Engine       engine.Parameters `json:"engine"`
	Pipeline     pipeline.Model    `json:"pipeline"`
	Endorsements string            `json:"endorsements"`
	Blocks       int               `json:"blocks"`
	BlockSize    float64           `json:"block_size"`
	BlocksFile   string            `json:"blocks_file,omitempty"`
	Seed         int64             `json:"seed"`
	Realtime     bool              `json:"realtime"`
}

// Record - one archived run
type Record struct {
	ID         uuid.UUID               `json:"id"`
	Cursor     gnomon.Cursor           `json:"cursor"`
	Timestamp  time.Time               `json:"timestamp"`
	Parameters Parameters              `json:"parameters"`
	Summary    simulator.Summary       `json:"summary"`
	Blocks     []simulator.BlockResult `json:"blocks"`
}

// Store - an open history database
type Store struct {
	sync.RWMutex

	log *logger.L
	db  *leveldb.DB
}

// Open - open or create the database
//
// a read only open requires an existing database
func Open(name string, readOnly bool, log *logger.L) (*Store, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, errors.Wrapf(err, "history: %q", name)
	}

	version, err := getVersion(db)
	if nil != err {
		db.Close()
		return nil, err
	}

	switch {
	case version > currentVersion:
		log.Criticalf("history database version: %d > current version: %d", version, currentVersion)
		db.Close()
		return nil, fault.ErrIncompatibleDatabase

	case 0 == version && !readOnly:
		if err := putVersion(db, currentVersion); nil != err {
			db.Close()
			return nil, err
		}

	case version < currentVersion && readOnly:
		log.Criticalf("history database version: %d < current version: %d", version, currentVersion)
		db.Close()
		return nil, fault.ErrIncompatibleDatabase
	}

	log.Infof("opened: %q  read only: %t", name, readOnly)
	s := &Store{
		log: log,
		db:  db,
	}
	return s, nil
}

// Close - release the database
func (s *Store) Close() error {
	s.Lock()
	defer s.Unlock()

	if nil == s.db {
		return fault.ErrNotInitialised
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Put - store a record, assigning its id and cursor if not set
func (s *Store) Put(record *Record) error {
	s.Lock()
	defer s.Unlock()

	if nil == s.db {
		return fault.ErrNotInitialised
	}

	if uuid.Nil == record.ID {
		record.ID = uuid.New()
	}
	if (gnomon.Cursor{}) == record.Cursor {
		record.Cursor = *gnomon.NewCursor()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = record.Cursor.Time()
	}

	exists, err := s.db.Has(indexKey(record.ID), nil)
	if nil != err {
		return err
	}
	if exists {
		return fault.ErrRunExists
	}

	data, err := json.Marshal(record)
	if nil != err {
		return err
	}

	batch := new(leveldb.Batch)
	batch.Put(recordKey(record.Cursor), data)
	batch.Put(indexKey(record.ID), record.Cursor.Bytes())

	s.log.Debugf("put: %s  cursor: %s", record.ID, record.Cursor)
	return s.db.Write(batch, nil)
}

// Get - fetch a record by id
func (s *Store) Get(id uuid.UUID) (*Record, error) {
	s.RLock()
	defer s.RUnlock()

	if nil == s.db {
		return nil, fault.ErrNotInitialised
	}

	key, err := s.lookup(id)
	if nil != err {
		return nil, err
	}
	data, err := s.db.Get(key, nil)
	if leveldb.ErrNotFound == err {
		return nil, fault.ErrRunNotFound
	} else if nil != err {
		return nil, err
	}

	record := &Record{}
	if err := json.Unmarshal(data, record); nil != err {
		return nil, errors.Wrapf(err, "record: %s", id)
	}
	return record, nil
}

// List - records newest first, at most count of them when count is
// positive
func (s *Store) List(count int) ([]Record, error) {
	s.RLock()
	defer s.RUnlock()

	if nil == s.db {
		return nil, fault.ErrNotInitialised
	}

	iter := s.db.NewIterator(ldb_util.BytesPrefix([]byte{recordPrefix}), nil)
	defer iter.Release()

	records := make([]Record, 0)
	for ok := iter.Last(); ok; ok = iter.Prev() {
		if count > 0 && len(records) >= count {
			break
		}
		var r Record
		if err := json.Unmarshal(iter.Value(), &r); nil != err {
			s.log.Warnf("skip corrupt record: %x  error: %s", iter.Key(), err)
			continue
		}
		records = append(records, r)
	}
	return records, iter.Error()
}

// Delete - remove a record by id
func (s *Store) Delete(id uuid.UUID) error {
	s.Lock()
	defer s.Unlock()

	if nil == s.db {
		return fault.ErrNotInitialised
	}

	key, err := s.lookup(id)
	if nil != err {
		return err
	}

	batch := new(leveldb.Batch)
	batch.Delete(key)
	batch.Delete(indexKey(id))

	s.log.Debugf("delete: %s", id)
	return s.db.Write(batch, nil)
}

// record key for an id
func (s *Store) lookup(id uuid.UUID) ([]byte, error) {
	c, err := s.db.Get(indexKey(id), nil)
	if leveldb.ErrNotFound == err {
		return nil, fault.ErrRunNotFound
	} else if nil != err {
		return nil, err
	}
	cursor, err := gnomon.FromBytes(c)
	if nil != err {
		return nil, err
	}
	return recordKey(cursor), nil
}

func recordKey(cursor gnomon.Cursor) []byte {
	return append([]byte{recordPrefix}, cursor.Bytes()...)
}

func indexKey(id uuid.UUID) []byte {
	return append([]byte{indexPrefix}, id[:]...)
}

func getVersion(db *leveldb.DB) (int, error) {
	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return 0, nil
	} else if nil != err {
		return 0, err
	}
	if 4 != len(versionValue) {
		return 0, fault.ErrIncompatibleDatabase
	}
	return int(binary.BigEndian.Uint32(versionValue)), nil
}

func putVersion(db *leveldb.DB, version int) error {
	v := make([]byte, 4)
	binary.BigEndian.PutUint32(v, uint32(version))
	return db.Put(versionKey, v, nil)
}
