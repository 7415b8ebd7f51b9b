// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"
	"github.com/kr/pretty"

	"github.com/bitmark-inc/fmsim/fault"
	"github.com/bitmark-inc/fmsim/filewatch"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "ecdsa-engine-latency", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'l'},
		{Long: "tx-vscc-ecdsa-engines", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'e'},
		{Long: "vscc-threads", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 't'},
		{Long: "blocks", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'b'},
		{Long: "block-size", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 's'},
		{Long: "blocks-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'f'},
		{Long: "ends", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'n'},
		{Long: "ends-params", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'p'},
		{Long: "front-end-latency", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'F'},
		{Long: "commit-latency", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'C'},
		{Long: "seed", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'S'},
		{Long: "realtime", HasArg: getoptions.NO_ARGUMENT, Short: 'r'},
		{Long: "peer-log", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'o'},
		{Long: "metrics-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'm'},
		{Long: "history", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'H'},
		{Long: "watch", HasArg: getoptions.NO_ARGUMENT, Short: 'w'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		fmt.Printf("%s\n", version)
		return
	}

	if len(options["help"]) > 0 || len(arguments) > 0 {
		if len(arguments) > 0 {
			fmt.Printf("error: unexpected arguments: %q\n", arguments)
		}
		usage(program)
		return
	}

	if len(options["config-file"]) > 1 {
		exitwithstatus.Message("%s: only one config-file option is allowed, %d were detected", program, len(options["config-file"]))
	}
	configurationFile := last(options, "config-file")

	watch := len(options["watch"]) > 0
	if watch && "" == configurationFile {
		exitwithstatus.Message("%s: %s", program, fault.ErrMissingConfigFile)
	}

	theSettings, theConfiguration, err := load(configurationFile, options)
	if nil != err {
		exitwithstatus.Message("%s: configuration error: %s", program, err)
	}

	if len(options["verbose"]) > 0 {
		pretty.Printf("%# v\n", theConfiguration)
	}

	// start logging
	if err := os.MkdirAll(theSettings.logging.Directory, 0700); nil != err {
		exitwithstatus.Message("%s: log directory: %q  error: %s", program, theSettings.logging.Directory, err)
	}
	if err = logger.Initialise(theSettings.logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("settings: %s", theSettings)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// stop on a signal
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-ch:
			log.Infof("received signal: %v", sig)
			if !theSettings.quiet {
				fmt.Printf("\nreceived signal: %v\n", sig)
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	if !watch {
		if _, err := simulate(ctx, theSettings, os.Stdout, log); nil != err {
			log.Criticalf("simulation error: %s", err)
			logger.Finalise()
			exitwithstatus.Message("%s: simulation error: %s", program, err)
		}
		return
	}

	if err := watchAndRun(ctx, configurationFile, options, theSettings, log); nil != err {
		log.Criticalf("watch error: %s", err)
		logger.Finalise()
		exitwithstatus.Message("%s: watch error: %s", program, err)
	}
}

// read the configuration file then apply the command line
func load(configurationFile string, options map[string][]string) (*settings, *Configuration, error) {
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		return nil, nil, err
	}
	if err := applyOptions(theConfiguration, options); nil != err {
		return nil, nil, err
	}
	theSettings, err := resolve(theConfiguration)
	if nil != err {
		return nil, nil, err
	}
	return theSettings, theConfiguration, nil
}

// run once then again after every change to the configuration file
//
// an invalid edit is reported and the previous settings are kept
func watchAndRun(ctx context.Context, configurationFile string, options map[string][]string, current *settings, log *logger.L) error {
	watcher, err := filewatch.New(configurationFile, logger.New("watcher"))
	if nil != err {
		return err
	}
	if err := watcher.Start(); nil != err {
		return err
	}
	defer watcher.Stop()

	for {
		if _, err := simulate(ctx, current, os.Stdout, log); nil != err {
			if nil != ctx.Err() {
				return nil
			}
			log.Errorf("simulation error: %s", err)
			fmt.Printf("simulation error: %s\n", err)
		}

		if !current.quiet {
			fmt.Printf("\nwaiting for changes to: %s\n", watcher.FilePath())
		}

	wait:
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-watcher.Remove():
				log.Warn("configuration file removed")
				return nil
			case <-watcher.Change():
				next, _, err := load(configurationFile, options)
				if nil != err {
					log.Errorf("reload error: %s", err)
					fmt.Printf("configuration error: %s\n", err)
					continue
				}
				current = next
				break wait
			}
		}
	}
}

func usage(program string) {
	fmt.Printf("usage: %s [--help] [--verbose] [--quiet] [--config-file=FILE] [options...]\n\n", program)
	fmt.Printf("simulate endorsement verification latency of a Fabric Machine peer\n\n")
	fmt.Printf("options:\n")
	fmt.Printf("  --config-file=FILE           (-c)  - Lua configuration file\n")
	fmt.Printf("  --ecdsa-engine-latency=DUR   (-l)  - one verification round (default: %s)\n", defaultEngineLatency)
	fmt.Printf("  --tx-vscc-ecdsa-engines=N    (-e)  - engines per transaction (default: %d)\n", defaultEnginesPerGroup)
	fmt.Printf("  --vscc-threads=N             (-t)  - transactions verified in parallel (default: %d)\n", defaultThreads)
	fmt.Printf("  --blocks=N                   (-b)  - number of blocks (default: %d)\n", defaultBlocks)
	fmt.Printf("  --block-size=N               (-s)  - transactions per block (default: %d)\n", defaultBlockSize)
	fmt.Printf("  --blocks-file=FILE           (-f)  - take block sizes from a peer log\n")
	fmt.Printf("                                       overrides --blocks and --block-size\n")
	fmt.Printf("  --ends=E:P                   (-n)  - endorsements \"e1,e2:p1,p2\" (default: %q)\n", defaultEndorsements)
	fmt.Printf("                                       or \"e\" when used with --ends-params\n")
	fmt.Printf("  --ends-params=ALPHA,BETA     (-p)  - expand e to [e/2, e, e+1, 2(e+1)]\n")
	fmt.Printf("                                       with [beta/2, alpha, 1-alpha-beta, beta/2]\n")
	fmt.Printf("  --front-end-latency=DUR      (-F)  - front end stage (default: engine latency)\n")
	fmt.Printf("  --commit-latency=DUR         (-C)  - commit stage (default: engine latency)\n")
	fmt.Printf("  --seed=N                     (-S)  - random seed (default: time based)\n")
	fmt.Printf("  --realtime                   (-r)  - use sleeping workers instead of a virtual clock\n")
	fmt.Printf("  --peer-log=FILE              (-o)  - write results in peer log format\n")
	fmt.Printf("  --metrics-file=FILE          (-m)  - write Prometheus text metrics\n")
	fmt.Printf("  --history=DIR                (-H)  - archive the run in a database\n")
	fmt.Printf("  --watch                      (-w)  - rerun when the configuration file changes\n")
	fmt.Printf("  --verbose                    (-v)  - log to console at debug level\n")
	fmt.Printf("  --quiet                      (-q)  - no banner\n")
	fmt.Printf("  --version                    (-V)  - display version string\n")
	fmt.Printf("\n")
}
