// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package filewatch - report writes to and removal of a single file
package filewatch

import (
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"
	"github.com/fsnotify/fsnotify"
)

// Watcher - change and remove notifications for one file
//
// the channels hold one pending event, further events of the same
// kind are discarded until it is read
type Watcher struct {
	log      *logger.L
	watcher  *fsnotify.Watcher
	filePath string
	change   chan struct{}
	remove   chan struct{}
	finished chan struct{}
}

// New - create a watcher for an existing file
func New(fileName string, log *logger.L) (*Watcher, error) {
	filePath, err := filepath.Abs(filepath.Clean(fileName))
	if nil != err {
		log.Errorf("parse file %s error: %s", fileName, err)
		return nil, err
	}

	if _, err := os.Stat(filePath); nil != err {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		log.Errorf("new watcher with error: %s", err)
		return nil, err
	}

	w := &Watcher{
		log:      log,
		watcher:  watcher,
		filePath: filePath,
		change:   make(chan struct{}, 1),
		remove:   make(chan struct{}, 1),
		finished: make(chan struct{}),
	}
	return w, nil
}

// FilePath - absolute path of the watched file
func (w *Watcher) FilePath() string {
	return w.filePath
}

// Change - signalled when the file is written
func (w *Watcher) Change() <-chan struct{} {
	return w.change
}

// Remove - signalled once when the file is removed or renamed
func (w *Watcher) Remove() <-chan struct{} {
	return w.remove
}

// Start - begin delivering events
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.filePath); nil != err {
		w.log.Errorf("watcher add error: %s, abort", err)
		return err
	}

	go w.run()
	return nil
}

// Stop - release the watcher, safe to call after the file is removed
func (w *Watcher) Stop() {
	_ = w.watcher.Close()
	<-w.finished
}

func (w *Watcher) run() {
	defer close(w.finished)

	base := filepath.Base(w.filePath)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.log.Debugf("file event: %v", event)

			if fileRemoved(event) {
				w.log.Warnf("file %s removed, stop", w.filePath)
				w.sendEvent(w.remove, "remove")
				return
			}

			if filepath.Base(event.Name) != base {
				w.log.Debugf("file %s not match, discard event", event.Name)
				continue
			}

			if fileChanged(event) {
				w.log.Info("sending change event")
				w.sendEvent(w.change, "change")
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Errorf("watcher error: %s", err)
		}
	}
}

func (w *Watcher) sendEvent(ch chan<- struct{}, name string) {
	select {
	case ch <- struct{}{}:
	default:
		w.log.Debugf("event channel %s full, discard event", name)
	}
}

func fileRemoved(event fsnotify.Event) bool {
	return event.Name == "" ||
		event.Op&fsnotify.Remove == fsnotify.Remove ||
		event.Op&fsnotify.Rename == fsnotify.Rename
}

func fileChanged(event fsnotify.Event) bool {
	return event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Chmod == fsnotify.Chmod
}
