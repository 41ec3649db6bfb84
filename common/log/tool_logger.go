// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package log provides a utility to log timestamped messages to stderr,
// filtered by verbosity level.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Tool Logger verbosity constants.
const (
	Always = iota
	Info
	DebugLow
	DebugHigh
)

const (
	ToolTimeFormat = "2006-01-02T15:04:05.000-0700"
)

// VerbosityLevel is an interface that specifies how verbose a logger
// should be, and whether it should be silenced.
type VerbosityLevel interface {
	Level() int
	IsQuiet() bool
}

// ToolLogger is a logger for a command-line tool. It has a configurable
// verbosity level, and writes timestamped log messages to an io.Writer.
type ToolLogger struct {
	mutex     *sync.Mutex
	writer    io.Writer
	format    string
	verbosity int
}

// NewToolLogger constructs a ToolLogger that writes to stderr with the
// given verbosity.
func NewToolLogger(verbosity VerbosityLevel) *ToolLogger {
	tl := &ToolLogger{
		mutex:  &sync.Mutex{},
		writer: os.Stderr,
		format: ToolTimeFormat,
	}
	tl.SetVerbosity(verbosity)
	return tl
}

// SetVerbosity updates the logger's verbosity level. A quiet verbosity
// silences all output.
func (tl *ToolLogger) SetVerbosity(verbosity VerbosityLevel) {
	if verbosity == nil {
		tl.verbosity = 0
		return
	}
	if verbosity.IsQuiet() {
		tl.verbosity = -1
	} else {
		tl.verbosity = verbosity.Level()
	}
}

// SetWriter redirects the logger's output.
func (tl *ToolLogger) SetWriter(writer io.Writer) {
	tl.writer = writer
}

// SetDateFormat changes the timestamp format of future log lines.
func (tl *ToolLogger) SetDateFormat(dateFormat string) {
	tl.format = dateFormat
}

// Logvf formats the message and writes it if the logger's verbosity is at
// least minVerb. Panics if minVerb is negative.
func (tl *ToolLogger) Logvf(minVerb int, format string, a ...interface{}) {
	if minVerb < 0 {
		panic("cannot set a minimum log verbosity that is less than 0")
	}

	if minVerb <= tl.verbosity {
		tl.mutex.Lock()
		defer tl.mutex.Unlock()
		tl.log(fmt.Sprintf(format, a...))
	}
}

// Logv writes the message if the logger's verbosity is at least minVerb.
// Panics if minVerb is negative.
func (tl *ToolLogger) Logv(minVerb int, msg string) {
	if minVerb < 0 {
		panic("cannot set a minimum log verbosity that is less than 0")
	}

	if minVerb <= tl.verbosity {
		tl.mutex.Lock()
		defer tl.mutex.Unlock()
		tl.log(msg)
	}
}

func (tl *ToolLogger) log(msg string) {
	fmt.Fprintf(tl.writer, "%v\t%v\n", time.Now().Format(tl.format), msg)
}

// Writer returns an io.Writer that logs whatever is written to it at the
// given verbosity, for hooking up components that expect a plain writer.
func (tl *ToolLogger) Writer(minVerb int) io.Writer {
	return &ToolLogWriter{tl, minVerb}
}

// ToolLogWriter is an io.Writer adapter over a ToolLogger at a fixed
// verbosity level.
type ToolLogWriter struct {
	logger       *ToolLogger
	minVerbosity int
}

func (tlw *ToolLogWriter) Write(message []byte) (int, error) {
	tlw.logger.Logv(tlw.minVerbosity, string(message))
	return len(message), nil
}

// Log Writer Interface

// The global logger used by the package-level logging functions. Tools are
// expected to configure it once at startup via SetVerbosity/SetWriter.
var globalToolLogger *ToolLogger

type quietVerbosity struct{}

func (*quietVerbosity) Level() int    { return 0 }
func (*quietVerbosity) IsQuiet() bool { return false }

func init() {
	if globalToolLogger == nil {
		// initialize tool logger with verbosity level = 0
		globalToolLogger = NewToolLogger(&quietVerbosity{})
	}
}

// IsInVerbosity returns whether the given verbosity level would be logged
// by the global logger.
func IsInVerbosity(minVerb int) bool {
	return minVerb <= globalToolLogger.verbosity
}

func Logvf(minVerb int, format string, a ...interface{}) {
	globalToolLogger.Logvf(minVerb, format, a...)
}

func Logv(minVerb int, msg string) {
	globalToolLogger.Logv(minVerb, msg)
}

func SetVerbosity(verbosity VerbosityLevel) {
	globalToolLogger.SetVerbosity(verbosity)
}

func SetWriter(writer io.Writer) {
	globalToolLogger.SetWriter(writer)
}

func SetDateFormat(dateFormat string) {
	globalToolLogger.SetDateFormat(dateFormat)
}

func Writer(minVerb int) io.Writer {
	return globalToolLogger.Writer(minVerb)
}
