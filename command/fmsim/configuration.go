// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/pkg/errors"

	"github.com/bitmark-inc/fmsim/configuration"
	"github.com/bitmark-inc/fmsim/endorsement"
	"github.com/bitmark-inc/fmsim/engine"
	"github.com/bitmark-inc/fmsim/fault"
	"github.com/bitmark-inc/fmsim/pipeline"
)

// basic defaults (files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "." // same directory as the config file, or the current directory

	defaultEngineLatency   = "360ms"
	defaultEnginesPerGroup = 2
	defaultThreads         = 8

	defaultBlocks       = 5
	defaultBlockSize    = 100
	defaultEndorsements = "2:1.0"

	defaultLogDirectory = "log"
	defaultLogFile      = "fmsim.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

// EngineSection - the verification engine pool
type EngineSection struct {
	Latency         string `gluamapper:"latency" json:"latency"`
	EnginesPerGroup int    `gluamapper:"engines_per_group" json:"engines_per_group"`
	Threads         int    `gluamapper:"threads" json:"threads"`
	Realtime        bool   `gluamapper:"realtime" json:"realtime"`
}

// WorkloadSection - blocks and endorsements
type WorkloadSection struct {
	Blocks       int    `gluamapper:"blocks" json:"blocks"`
	BlockSize    int    `gluamapper:"block_size" json:"block_size"`
	BlocksFile   string `gluamapper:"blocks_file" json:"blocks_file"`
	Endorsements string `gluamapper:"endorsements" json:"endorsements"`
	Shape        string `gluamapper:"shape" json:"shape"`
	Seed         int64  `gluamapper:"seed" json:"seed"` // zero picks a time based seed
}

// PipelineSection - fixed stage latencies, empty means the engine latency
type PipelineSection struct {
	FrontEnd string `gluamapper:"front_end_latency" json:"front_end_latency"`
	Commit   string `gluamapper:"commit_latency" json:"commit_latency"`
}

// OutputSection - optional result files
type OutputSection struct {
	PeerLog     string `gluamapper:"peer_log" json:"peer_log"`
	MetricsFile string `gluamapper:"metrics_file" json:"metrics_file"`
	History     string `gluamapper:"history" json:"history"`
	Quiet       bool   `gluamapper:"quiet" json:"quiet"`
}

// LoggingSection - mapped to logger.Configuration
type LoggingSection struct {
	Directory string      `gluamapper:"directory" json:"directory"`
	File      string      `gluamapper:"file" json:"file"`
	Size      int         `gluamapper:"size" json:"size"`
	Count     int         `gluamapper:"count" json:"count"`
	Console   bool        `gluamapper:"console" json:"console"`
	Levels    LoglevelMap `gluamapper:"levels" json:"levels"`
}

// Configuration - everything that can be set in the Lua file
type Configuration struct {
	DataDirectory string          `gluamapper:"data_directory" json:"data_directory"`
	Engine        EngineSection   `gluamapper:"engine" json:"engine"`
	Workload      WorkloadSection `gluamapper:"workload" json:"workload"`
	Pipeline      PipelineSection `gluamapper:"pipeline" json:"pipeline"`
	Output        OutputSection   `gluamapper:"output" json:"output"`
	Logging       LoggingSection  `gluamapper:"logging" json:"logging"`
}

// settings - validated values ready for a run
type settings struct {
	engine       engine.Parameters
	realtime     bool
	model        pipeline.Model
	distribution *endorsement.Distribution
	endorsements string
	blocks       int
	blockSize    int
	blocksFile   string
	seed         int64
	seeded       bool
	peerLog      string
	metricsFile  string
	history      string
	quiet        bool
	logging      logger.Configuration
}

func defaultConfiguration() *Configuration {
	levels := make(LoglevelMap)
	for k, v := range defaultLogLevels {
		levels[k] = v
	}
	return &Configuration{
		DataDirectory: defaultDataDirectory,
		Engine: EngineSection{
			Latency:         defaultEngineLatency,
			EnginesPerGroup: defaultEnginesPerGroup,
			Threads:         defaultThreads,
		},
		Workload: WorkloadSection{
			Blocks:       defaultBlocks,
			BlockSize:    defaultBlockSize,
			Endorsements: defaultEndorsements,
		},
		Logging: LoggingSection{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    levels,
		},
	}
}

// will read and decode the configuration, an empty file name gives the
// defaults relative to the current directory
func getConfiguration(configurationFileName string) (*Configuration, error) {
	options := defaultConfiguration()

	baseDirectory, err := os.Getwd()
	if nil != err {
		return nil, err
	}

	if "" != configurationFileName {
		configurationFileName, err = filepath.Abs(filepath.Clean(configurationFileName))
		if nil != err {
			return nil, err
		}

		// absolute path to the main directory
		baseDirectory, _ = filepath.Split(configurationFileName)

		if err := configuration.ParseConfigurationFile(configurationFileName, options); nil != err {
			return nil, err
		}
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, errors.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = baseDirectory
	} else if !filepath.IsAbs(options.DataDirectory) {
		options.DataDirectory = filepath.Join(baseDirectory, options.DataDirectory)
	}
	options.DataDirectory = filepath.Clean(options.DataDirectory)

	return options, nil
}

// overlay command line options onto the configuration
func applyOptions(c *Configuration, options map[string][]string) error {
	var err error

	str := func(name string, value *string) {
		if v := last(options, name); "" != v {
			*value = v
		}
	}
	integer := func(name string, value *int) {
		if v := last(options, name); "" != v && nil == err {
			n, e := strconv.Atoi(v)
			if nil != e {
				err = errors.Wrapf(e, "--%s", name)
				return
			}
			*value = n
		}
	}

	str("ecdsa-engine-latency", &c.Engine.Latency)
	integer("tx-vscc-ecdsa-engines", &c.Engine.EnginesPerGroup)
	integer("vscc-threads", &c.Engine.Threads)
	integer("blocks", &c.Workload.Blocks)
	integer("block-size", &c.Workload.BlockSize)
	str("blocks-file", &c.Workload.BlocksFile)
	str("ends", &c.Workload.Endorsements)
	str("ends-params", &c.Workload.Shape)
	str("front-end-latency", &c.Pipeline.FrontEnd)
	str("commit-latency", &c.Pipeline.Commit)
	str("peer-log", &c.Output.PeerLog)
	str("metrics-file", &c.Output.MetricsFile)
	str("history", &c.Output.History)

	if v := last(options, "seed"); "" != v && nil == err {
		n, e := strconv.ParseInt(v, 10, 64)
		if nil != e {
			err = errors.Wrap(e, "--seed")
		} else {
			c.Workload.Seed = n
		}
	}
	if len(options["realtime"]) > 0 {
		c.Engine.Realtime = true
	}
	if len(options["quiet"]) > 0 {
		c.Output.Quiet = true
	}
	if len(options["verbose"]) > 0 {
		c.Logging.Console = true
		if nil == c.Logging.Levels {
			c.Logging.Levels = make(LoglevelMap)
		}
		c.Logging.Levels[logger.DefaultTag] = "debug"
	}
	return err
}

// the final value of a repeated option
func last(options map[string][]string, name string) string {
	values := options[name]
	if 0 == len(values) {
		return ""
	}
	return values[len(values)-1]
}

// validate and convert to the values used by the run
func resolve(c *Configuration) (*settings, error) {
	latency, err := parseDuration(c.Engine.Latency)
	if nil != err {
		return nil, errors.Wrap(err, "engine latency")
	}

	s := &settings{
		engine: engine.Parameters{
			Capacity:        c.Engine.Threads,
			EnginesPerGroup: c.Engine.EnginesPerGroup,
			EngineLatency:   latency,
		},
		realtime: c.Engine.Realtime,
		model: pipeline.Model{
			FrontEnd: latency,
			Commit:   latency,
		},
		blocks:      c.Workload.Blocks,
		blockSize:   c.Workload.BlockSize,
		blocksFile:  dataFile(c.DataDirectory, c.Workload.BlocksFile),
		seed:        c.Workload.Seed,
		seeded:      0 != c.Workload.Seed,
		peerLog:     dataFile(c.DataDirectory, c.Output.PeerLog),
		metricsFile: dataFile(c.DataDirectory, c.Output.MetricsFile),
		history:     dataFile(c.DataDirectory, c.Output.History),
		quiet:       c.Output.Quiet,
		logging: logger.Configuration{
			Directory: dataFile(c.DataDirectory, c.Logging.Directory),
			File:      c.Logging.File,
			Size:      c.Logging.Size,
			Count:     c.Logging.Count,
			Console:   c.Logging.Console,
			Levels:    c.Logging.Levels,
		},
	}

	if err := s.engine.Validate(); nil != err {
		return nil, err
	}

	if "" != c.Pipeline.FrontEnd {
		if s.model.FrontEnd, err = parseDuration(c.Pipeline.FrontEnd); nil != err {
			return nil, errors.Wrap(err, "front end latency")
		}
	}
	if "" != c.Pipeline.Commit {
		if s.model.Commit, err = parseDuration(c.Pipeline.Commit); nil != err {
			return nil, errors.Wrap(err, "commit latency")
		}
	}
	if err := s.model.Validate(); nil != err {
		return nil, err
	}

	if "" == s.blocksFile {
		if s.blocks < 0 {
			return nil, fault.ErrInvalidBlockCount
		}
		if s.blockSize < 0 {
			return nil, fault.ErrInvalidBlockSize
		}
	}

	if "" != c.Workload.Shape {
		s.distribution, err = endorsement.ParseShape(c.Workload.Endorsements, c.Workload.Shape)
	} else {
		s.distribution, err = endorsement.Parse(c.Workload.Endorsements)
	}
	if nil != err {
		return nil, errors.Wrapf(err, "endorsement parameters are incorrect")
	}
	s.endorsements = s.distribution.String()

	return s, nil
}

// a Go duration, or a plain number of milliseconds
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseFloat(s, 64); nil == err {
		return time.Duration(ms * float64(time.Millisecond)), nil
	}
	return time.ParseDuration(s)
}

// relative names are in the data directory, empty stays empty
func dataFile(directory string, name string) string {
	if "" == name || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(directory, name)
}

func (s *settings) String() string {
	return fmt.Sprintf("engine: %+v  realtime: %t  pipeline: %+v  endorsements: %s  seed: %d", s.engine, s.realtime, s.model, s.endorsements, s.seed)
}
