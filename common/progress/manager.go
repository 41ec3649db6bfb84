// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package progress

import (
	"io"
	"sync"
	"time"
)

// BarWriter implements a threadsafe handler for multiple progress bars,
// writing them all to a shared writer on a regular interval.
type BarWriter struct {
	sync.Mutex

	writer    io.Writer
	waitTime  time.Duration
	barLength int
	isBytes   bool

	bars     []*Bar
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewBarWriter returns an initialized BarWriter with the given bar
// rendering parameters.
func NewBarWriter(w io.Writer, waitTime time.Duration, barLength int, isBytes bool) *BarWriter {
	return &BarWriter{
		writer:    w,
		waitTime:  waitTime,
		barLength: barLength,
		isBytes:   isBytes,
	}
}

// Attach registers a new progress bar under the given name. The name must
// be unique among the attached bars.
func (manager *BarWriter) Attach(name string, progressor Progressor) {
	pb := &Bar{
		Name:      name,
		Watching:  progressor,
		BarLength: manager.barLength,
		IsBytes:   manager.isBytes,
		Writer:    manager.writer,
	}

	manager.Lock()
	defer manager.Unlock()

	manager.bars = append(manager.bars, pb)
}

// Detach removes the progress bar with the given name from the manager.
func (manager *BarWriter) Detach(name string) {
	manager.Lock()
	defer manager.Unlock()

	updatedBars := make([]*Bar, 0, len(manager.bars))
	for _, bar := range manager.bars {
		if bar.Name != name {
			updatedBars = append(updatedBars, bar)
		}
	}
	manager.bars = updatedBars
}

// renderAllBars writes each attached bar, plus a separating line when more
// than one bar is being tracked.
func (manager *BarWriter) renderAllBars() {
	manager.Lock()
	defer manager.Unlock()

	for _, bar := range manager.bars {
		bar.renderToWriter()
	}
	if len(manager.bars) > 1 {
		//nolint:errcheck
		manager.writer.Write([]byte("\n"))
	}
}

// Start kicks off the periodic rendering of all attached bars.
func (manager *BarWriter) Start() {
	manager.stopChan = make(chan struct{})
	manager.doneChan = make(chan struct{})
	go manager.run()
}

func (manager *BarWriter) run() {
	defer close(manager.doneChan)

	ticker := time.NewTicker(manager.waitTime)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			manager.renderAllBars()
		case <-manager.stopChan:
			manager.renderAllBars()
			return
		}
	}
}

// Stop renders a final update of all bars and halts the render loop.
func (manager *BarWriter) Stop() {
	close(manager.stopChan)
	<-manager.doneChan
}
