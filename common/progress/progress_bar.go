// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package progress

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mongodb/mongo-migrate/common/text"
)

// Bar drawing characters.
const (
	BarFilling = "#"
	BarEmpty   = "."
	BarLeft    = "["
	BarRight   = "]"
)

const (
	DefaultWaitTime  = 3 * time.Second
	defaultBarLength = 24
)

// Bar renders a text progress bar for a watched Progressor at a regular
// interval. It can be run standalone with Start/Stop or rendered on demand
// by a BarWriter.
type Bar struct {
	// Name is an identifier printed along with the bar.
	Name string
	// Watching is the object that implements the Progressor interface, to
	// be used for determining the progress of any operation.
	Watching Progressor
	// Writer is where the Bar is written out to.
	Writer io.Writer
	// WaitTime is the time to wait between writing the bar. Defaults to
	// DefaultWaitTime if unset.
	WaitTime time.Duration
	// BarLength is the number of characters used to print the bar.
	BarLength int
	// IsBytes denotes whether byte-specific formatting should be applied
	// to the numeric output.
	IsBytes bool

	stopChan chan struct{}
	doneChan chan struct{}
}

// Start begins a periodic rendering of the progress bar in a background
// goroutine. Two calls to Start without an intervening Stop cause a panic.
func (pb *Bar) Start() {
	pb.validate()
	pb.stopChan = make(chan struct{})
	pb.doneChan = make(chan struct{})

	go pb.start()
}

// validate does a set of sanity checks against the progress bar, and panics
// if the bar is unfit for starting.
func (pb *Bar) validate() {
	if pb.Watching == nil {
		panic("Cannot use a progress.Bar with a nil Watching")
	}
	if pb.Writer == nil {
		panic("Cannot use a progress.Bar with a nil Writer")
	}
	if pb.stopChan != nil {
		panic("Cannot start a progress.Bar more than once")
	}
}

// Stop ends the rendering of the progress bar after a final update is
// written. Panics if the bar was not started.
func (pb *Bar) Stop() {
	if pb.stopChan == nil {
		panic("Cannot stop a progress.Bar that was not started")
	}
	close(pb.stopChan)
	<-pb.doneChan
}

func (pb *Bar) start() {
	defer close(pb.doneChan)

	if pb.WaitTime <= 0 {
		pb.WaitTime = DefaultWaitTime
	}
	ticker := time.NewTicker(pb.WaitTime)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pb.renderToWriter()
		case <-pb.stopChan:
			pb.renderToWriter()
			return
		}
	}
}

// renderToWriter writes the current state of the bar in a single write.
func (pb *Bar) renderToWriter() {
	//nolint:errcheck
	pb.Writer.Write([]byte(pb.renderString() + "\n"))
}

func (pb *Bar) renderString() string {
	current, max := pb.Watching.Progress()

	// without a total, we can only render a count
	if max <= 0 {
		return fmt.Sprintf("%v\t%v", pb.Name, pb.formatAmount(current))
	}

	barLength := pb.BarLength
	if barLength <= 0 {
		barLength = defaultBarLength
	}

	percent := float64(current) / float64(max)
	return fmt.Sprintf("%v\t%v %v/%v (%2.1f%%)",
		pb.Name,
		drawBar(barLength, percent),
		pb.formatAmount(current),
		pb.formatAmount(max),
		percent*100,
	)
}

func (pb *Bar) formatAmount(amount int64) string {
	if pb.IsBytes {
		return text.FormatByteAmount(amount)
	}
	return strconv.FormatInt(amount, 10)
}

// drawBar renders a bar of the given character length representing the
// given amount of progress, clamped to [0%, 100%].
func drawBar(barLength int, progress float64) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	filling := int(progress * float64(barLength))
	return BarLeft +
		strings.Repeat(BarFilling, filling) +
		strings.Repeat(BarEmpty, barLength-filling) +
		BarRight
}
