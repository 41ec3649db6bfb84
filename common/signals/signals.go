// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package signals handles termination signals for command-line tools.
package signals

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mongodb/mongo-migrate/common/log"
	"github.com/mongodb/mongo-migrate/common/util"
)

// Handle is like HandleWithInterrupt, but without an interrupt handler.
func Handle() chan struct{} {
	return HandleWithInterrupt(nil)
}

// HandleWithInterrupt starts a goroutine which listens for termination
// signals. The first signal runs the onInterrupt handler if one is given;
// a second signal, or the first if no handler is given, exits the process
// with the kill exit code. Closing the returned channel stops the
// listener.
func HandleWithInterrupt(onInterrupt func()) chan struct{} {
	finishedChan := make(chan struct{})
	go handleSignals(onInterrupt, finishedChan)
	return finishedChan
}

func handleSignals(onInterrupt func(), finishedChan chan struct{}) {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	if onInterrupt != nil {
		select {
		case sig := <-sigChan:
			log.Logvf(log.Always, "signal '%s' received; attempting to shut down", sig)
			onInterrupt()
		case <-finishedChan:
			return
		}
	}

	select {
	case sig := <-sigChan:
		log.Logvf(log.Always, "signal '%s' received; forcefully terminating", sig)
		os.Exit(util.ExitKill)
	case <-finishedChan:
	}
}
