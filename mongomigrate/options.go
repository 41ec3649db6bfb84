// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongomigrate

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mongodb/mongo-migrate/common/options"
)

var Usage = `<options> <connection-string>

Apply a registered batch migration to a database, one document at a time.
Runs in dry-run mode unless --live is given.

Connection strings must begin with mongodb:// or mongodb+srv://.`

// Environment variables consulted as defaults when the matching flag is
// absent. Flags always win.
const (
	uriEnv          = "MONGO_URI"
	databaseEnv     = "MONGO_DB"
	batchSizeEnv    = "MONGO_BATCH_SIZE"
	dryRunEnv       = "MONGO_DRY_RUN"
	skipExistingEnv = "MONGO_SKIP_EXISTING"
)

const defaultBatchSize = 1000

type Options struct {
	*options.ToolOptions
	*MigrateOptions
}

// MigrateOptions defines the set of options for running a migration.
type MigrateOptions struct {
	MigrationName  string `long:"migration" short:"m" value-name:"<name>" description:"name of the registered migration to run"`
	Live           bool   `long:"live" description:"apply updates to the database; without this flag the run is a dry run that only reports what would change"`
	BatchSize      int    `long:"batchSize" value-name:"<number>" description:"number of documents per batch (default 1000)"`
	NoSkipExisting bool   `long:"no-skip-existing" description:"process documents even when the migration's target field is already present"`
	List           bool   `long:"list" description:"list the registered migrations and exit"`
	LogPath        string `long:"logPath" value-name:"<directory>" description:"directory in which to append a per-migration log file (<name>.log)"`

	// SkipExisting is the resolved value of the skip-existing toggle after
	// merging NoSkipExisting with the environment.
	SkipExisting bool
}

// Name returns a human-readable group name for migration options.
func (*MigrateOptions) Name() string {
	return "migrate"
}

func ParseOptions(rawArgs []string, versionStr, gitCommit string) (Options, error) {
	opts := options.New("mongomigrate", versionStr, gitCommit, Usage, true,
		options.EnabledOptions{Auth: true, Connection: true, Namespace: true, URI: true})

	migrateOpts := &MigrateOptions{}
	opts.AddOptions(migrateOpts)

	rawArgs = mergeURIFromEnv(rawArgs)

	extraArgs, err := opts.ParseArgs(rawArgs)
	if err != nil {
		return Options{}, err
	}
	if len(extraArgs) > 0 {
		return Options{}, fmt.Errorf("error parsing positional arguments: " +
			"provide only one MongoDB connection string. " +
			"Connection strings must begin with mongodb:// or mongodb+srv:// schemes")
	}

	if err := migrateOpts.mergeEnvDefaults(); err != nil {
		return Options{}, err
	}
	if opts.Namespace.DB == "" {
		opts.Namespace.DB = os.Getenv(databaseEnv)
	}

	return Options{opts, migrateOpts}, nil
}

// mergeURIFromEnv appends the MONGO_URI environment value as a positional
// connection string when no connection target was given on the command
// line.
func mergeURIFromEnv(rawArgs []string) []string {
	uri := os.Getenv(uriEnv)
	if uri == "" {
		return rawArgs
	}
	for _, arg := range rawArgs {
		if arg == "--uri" || strings.HasPrefix(arg, "--uri=") ||
			arg == "--host" || strings.HasPrefix(arg, "--host=") ||
			arg == "-h" ||
			strings.HasPrefix(arg, "mongodb://") || strings.HasPrefix(arg, "mongodb+srv://") {
			return rawArgs
		}
	}
	return append(rawArgs, uri)
}

// mergeEnvDefaults fills in option values that were not set by flags from
// the environment, then applies the hard defaults.
func (o *MigrateOptions) mergeEnvDefaults() error {
	if o.BatchSize == 0 {
		if fromEnv := os.Getenv(batchSizeEnv); fromEnv != "" {
			size, err := strconv.Atoi(fromEnv)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %q", batchSizeEnv, fromEnv)
			}
			o.BatchSize = size
		} else {
			o.BatchSize = defaultBatchSize
		}
	}
	if o.BatchSize <= 0 {
		return fmt.Errorf("batch size must be a positive number, got %d", o.BatchSize)
	}

	if !o.Live {
		if fromEnv := os.Getenv(dryRunEnv); fromEnv != "" {
			dryRun, err := strconv.ParseBool(fromEnv)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %q", dryRunEnv, fromEnv)
			}
			o.Live = !dryRun
		}
	}

	o.SkipExisting = !o.NoSkipExisting
	if o.SkipExisting {
		if fromEnv := os.Getenv(skipExistingEnv); fromEnv != "" {
			skip, err := strconv.ParseBool(fromEnv)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %q", skipExistingEnv, fromEnv)
			}
			o.SkipExisting = skip
		}
	}

	return nil
}

// Validate checks option combinations that only matter for an actual
// migration run.
func (o *MigrateOptions) Validate() error {
	if o.List {
		return nil
	}
	if o.MigrationName == "" {
		return fmt.Errorf("no migration given; use --migration <name>, or --list to see the registered migrations")
	}
	return nil
}
