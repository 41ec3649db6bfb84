// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Main package for the mongomigrate tool.
package main

import (
	"context"
	"os"

	"github.com/mongodb/mongo-migrate/common/db"
	"github.com/mongodb/mongo-migrate/common/log"
	"github.com/mongodb/mongo-migrate/common/signals"
	"github.com/mongodb/mongo-migrate/common/util"
	"github.com/mongodb/mongo-migrate/mongomigrate"
)

var (
	VersionStr = "built-without-version-string"
	GitCommit  = "build-without-git-commit"
)

func main() {
	opts, err := mongomigrate.ParseOptions(os.Args[1:], VersionStr, GitCommit)
	if err != nil {
		log.Logvf(log.Always, "error parsing command line options: %s", err.Error())
		log.Logvf(log.Always, util.ShortUsage("mongomigrate"))
		os.Exit(util.ExitBadOptions)
	}

	// print help, if specified
	if opts.PrintHelp(false) {
		return
	}

	// print version, if specified
	if opts.PrintVersion() {
		return
	}

	log.SetVerbosity(opts.Verbosity)

	if opts.MigrateOptions.List {
		mongomigrate.ListMigrations()
		return
	}

	if err := opts.MigrateOptions.Validate(); err != nil {
		log.Logvf(log.Always, "invalid options: %v", err)
		log.Logvf(log.Always, util.ShortUsage("mongomigrate"))
		os.Exit(util.ExitBadOptions)
	}

	// verify uri options and log them
	opts.URI.LogUnsupportedOptions()

	sessionProvider, err := db.NewSessionProvider(*opts.ToolOptions)
	if err != nil {
		log.Logvf(log.Always, "error connecting to host: %v", err)
		os.Exit(util.ExitError)
	}
	defer sessionProvider.Close()

	migrator := &mongomigrate.MongoMigrate{
		ToolOptions:     opts.ToolOptions,
		MigrateOptions:  opts.MigrateOptions,
		SessionProvider: sessionProvider,
	}

	if opts.MigrateOptions.LogPath != "" {
		logFile, err := migrator.OpenLogFile()
		if err != nil {
			log.Logvf(log.Always, "%v", err)
			os.Exit(util.ExitBadOptions)
		}
		defer logFile.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	finishedChan := signals.HandleWithInterrupt(mongomigrate.HandleInterrupt(cancel))
	defer close(finishedChan)

	if err := migrator.Run(ctx); err != nil {
		log.Logvf(log.Always, "Failed: %v", err)
		migrator.LogSummary()
		os.Exit(util.ExitError)
	}
	migrator.LogSummary()
}
