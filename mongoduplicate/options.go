// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongoduplicate

import (
	"fmt"

	"github.com/mongodb/mongo-migrate/common/options"
	"github.com/mongodb/mongo-migrate/common/util"
)

var Usage = `<options> <connection-string>

Duplicate the collections of one database into another, batch by batch.
Runs in dry-run mode unless --live is given; a dry run only reports
collection names and document counts.

Connection strings must begin with mongodb:// or mongodb+srv://.`

const defaultBatchSize = 1000

type Options struct {
	*options.ToolOptions
	*DuplicateOptions
}

// DuplicateOptions defines the set of options for duplicating a database.
type DuplicateOptions struct {
	SourceDB  string   `long:"sourceDb" value-name:"<database>" description:"name of the database to copy from"`
	TargetDB  string   `long:"targetDb" value-name:"<database>" description:"name of the database to copy into"`
	TargetURI string   `long:"targetUri" value-name:"<uri>" description:"connection string of the target deployment; defaults to the source deployment"`
	Excluded  []string `long:"exclude" value-name:"<collection>" description:"collection to leave out of the copy (may be repeated)"`
	Drop      bool     `long:"drop" description:"drop each target collection before copying into it (live mode only)"`
	Live      bool     `long:"live" description:"perform the copy; without this flag the run is a dry run that only reports what would be copied"`
	BatchSize int      `long:"batchSize" value-name:"<number>" description:"number of documents per batch (default 1000)"`

	// password for the target deployment, settable only through the
	// --config file
	DestinationPassword string
}

// Name returns a human-readable group name for duplication options.
func (*DuplicateOptions) Name() string {
	return "duplicate"
}

// SetDestinationPassword implements options.DestinationAuthOptions so the
// --config file can carry the target deployment's password.
func (o *DuplicateOptions) SetDestinationPassword(password string) {
	o.DestinationPassword = password
}

func ParseOptions(rawArgs []string, versionStr, gitCommit string) (Options, error) {
	opts := options.New("mongoduplicate", versionStr, gitCommit, Usage, true,
		options.EnabledOptions{Auth: true, Connection: true, Namespace: false, URI: true})

	duplicateOpts := &DuplicateOptions{}
	opts.AddOptions(duplicateOpts)

	extraArgs, err := opts.ParseArgs(rawArgs)
	if err != nil {
		return Options{}, err
	}
	if len(extraArgs) > 0 {
		return Options{}, fmt.Errorf("error parsing positional arguments: " +
			"provide only one MongoDB connection string. " +
			"Connection strings must begin with mongodb:// or mongodb+srv:// schemes")
	}

	if duplicateOpts.BatchSize == 0 {
		duplicateOpts.BatchSize = defaultBatchSize
	}

	return Options{opts, duplicateOpts}, nil
}

// Validate checks that the selected databases form a runnable copy.
func (o *DuplicateOptions) Validate() error {
	if o.SourceDB == "" {
		return fmt.Errorf("no source database given; use --sourceDb")
	}
	if o.TargetDB == "" {
		return fmt.Errorf("no target database given; use --targetDb")
	}
	if err := util.ValidateDBName(o.SourceDB); err != nil {
		return err
	}
	if err := util.ValidateDBName(o.TargetDB); err != nil {
		return err
	}
	if o.TargetURI == "" && o.SourceDB == o.TargetDB {
		return fmt.Errorf("source and target database may not be the same on a single deployment")
	}
	if o.BatchSize <= 0 {
		return fmt.Errorf("batch size must be a positive number, got %d", o.BatchSize)
	}
	if o.Drop && !o.Live {
		return fmt.Errorf("--drop only applies to live runs; add --live or remove --drop")
	}
	return nil
}
