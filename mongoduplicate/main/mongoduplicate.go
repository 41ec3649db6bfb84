// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Main package for the mongoduplicate tool.
package main

import (
	"context"
	"os"

	"github.com/mongodb/mongo-migrate/common/db"
	"github.com/mongodb/mongo-migrate/common/log"
	"github.com/mongodb/mongo-migrate/common/signals"
	"github.com/mongodb/mongo-migrate/common/util"
	"github.com/mongodb/mongo-migrate/mongoduplicate"
)

var (
	VersionStr = "built-without-version-string"
	GitCommit  = "build-without-git-commit"
)

func main() {
	opts, err := mongoduplicate.ParseOptions(os.Args[1:], VersionStr, GitCommit)
	if err != nil {
		log.Logvf(log.Always, "error parsing command line options: %s", err.Error())
		log.Logvf(log.Always, util.ShortUsage("mongoduplicate"))
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

	if err := opts.DuplicateOptions.Validate(); err != nil {
		log.Logvf(log.Always, "invalid options: %v", err)
		log.Logvf(log.Always, util.ShortUsage("mongoduplicate"))
		os.Exit(util.ExitBadOptions)
	}

	// verify uri options and log them
	opts.URI.LogUnsupportedOptions()

	sourceProvider, err := db.NewSessionProvider(*opts.ToolOptions)
	if err != nil {
		log.Logvf(log.Always, "error connecting to source host: %v", err)
		os.Exit(util.ExitError)
	}
	defer sourceProvider.Close()
	log.Logvf(log.Info, "connected to: %v", util.SanitizeURI(opts.URI.ConnectionString))

	targetProvider, err := mongoduplicate.NewTargetSessionProvider(
		opts.DuplicateOptions, VersionStr, GitCommit)
	if err != nil {
		log.Logvf(log.Always, "%v", err)
		os.Exit(util.ExitError)
	}
	if targetProvider == nil {
		targetProvider = sourceProvider
	} else {
		defer targetProvider.Close()
	}

	duplicator := &mongoduplicate.MongoDuplicate{
		ToolOptions:      opts.ToolOptions,
		DuplicateOptions: opts.DuplicateOptions,
		SourceProvider:   sourceProvider,
		TargetProvider:   targetProvider,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	finishedChan := signals.HandleWithInterrupt(cancel)
	defer close(finishedChan)

	if err := duplicator.Run(ctx); err != nil {
		log.Logvf(log.Always, "Failed: %v", err)
		duplicator.LogSummary()
		os.Exit(util.ExitError)
	}
	duplicator.LogSummary()
}
