// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package mongomigrate applies registered batch migrations to a single
// collection, dry-run by default.
package mongomigrate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mongodb/mongo-migrate/common/db"
	"github.com/mongodb/mongo-migrate/common/log"
	"github.com/mongodb/mongo-migrate/common/migrate"
	"github.com/mongodb/mongo-migrate/common/options"
	"github.com/mongodb/mongo-migrate/common/progress"
	"github.com/mongodb/mongo-migrate/common/util"
	"github.com/pkg/errors"
)

const progressBarLength = 24

// MongoMigrate is a container for the user-specified options and the
// session needed to run one migration.
type MongoMigrate struct {
	ToolOptions     *options.ToolOptions
	MigrateOptions  *MigrateOptions
	SessionProvider *db.SessionProvider

	// the report of the most recent Run, for the final summary
	Report *migrate.Report
}

// ListMigrations prints the registered migrations, one per line.
func ListMigrations() {
	for _, migration := range Migrations() {
		log.Logvf(log.Always, "%-28s%s (collection: %s)",
			migration.Name, migration.Description, migration.Collection)
	}
}

// OpenLogFile appends further log output to <logPath>/<migration>.log in
// addition to standard error. The returned file is owned by the caller.
func (mm *MongoMigrate) OpenLogFile() (*os.File, error) {
	path := filepath.Join(mm.MigrateOptions.LogPath, mm.MigrateOptions.MigrationName+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening log file %v", path)
	}
	log.SetWriter(io.MultiWriter(os.Stderr, file))
	return file, nil
}

// Run executes the selected migration against the configured database.
// Per-document failures are recorded on the report and do not produce an
// error; a returned error means the run aborted.
func (mm *MongoMigrate) Run(ctx context.Context) error {
	migration, err := FindMigration(mm.MigrateOptions.MigrationName)
	if err != nil {
		return err
	}
	if mm.ToolOptions.Namespace.DB == "" {
		return fmt.Errorf("no database given; use --db or %s", databaseEnv)
	}
	if err := util.ValidateDBName(mm.ToolOptions.Namespace.DB); err != nil {
		return err
	}

	session, err := mm.SessionProvider.GetSession()
	if err != nil {
		return errors.Wrap(err, "error getting database session")
	}
	log.Logvf(log.Info, "connected to: %v", util.SanitizeURI(mm.ToolOptions.URI.ConnectionString))
	coll := session.Database(mm.ToolOptions.Namespace.DB).Collection(migration.Collection)

	filter := migration.Filter(mm.MigrateOptions.SkipExisting)
	expected, err := (&db.DeferredQuery{Coll: coll, Filter: filter}).Count()
	if err != nil {
		return errors.Wrapf(err, "error counting documents in %v", coll.Name())
	}

	mode := "dry run"
	if mm.MigrateOptions.Live {
		mode = "live"
	}
	log.Logvf(log.Always, "running migration '%v' against %v.%v (%v): %v matching document(s)",
		migration.Name, mm.ToolOptions.Namespace.DB, migration.Collection, mode, expected)

	source, err := migrate.NewCollectionSource(coll, filter, mm.MigrateOptions.BatchSize)
	if err != nil {
		return errors.Wrapf(err, "error opening cursor on %v", coll.Name())
	}
	defer func() {
		if closeErr := source.Close(ctx); closeErr != nil {
			log.Logvf(log.Info, "error closing cursor: %v", closeErr)
		}
	}()

	report := migrate.NewReport(int64(expected))
	mm.Report = report

	progressManager := progress.NewBarWriter(
		log.Writer(0),
		progress.DefaultWaitTime,
		progressBarLength,
		false,
	)
	progressManager.Start()
	defer progressManager.Stop()
	barName := fmt.Sprintf("%v.%v", mm.ToolOptions.Namespace.DB, migration.Collection)
	progressManager.Attach(barName, report)
	defer progressManager.Detach(barName)

	migrator := &migrate.Migrator{
		Source:    source,
		Transform: migration.Transformer(mm.MigrateOptions.SkipExisting),
		Writer:    migrate.NewCollectionWriter(coll),
		Report:    report,
		DryRun:    !mm.MigrateOptions.Live,
	}

	start := time.Now()
	if err := migrator.Run(ctx); err != nil {
		return err
	}
	log.Logvf(log.Info, "migration '%v' finished in %v",
		migration.Name, time.Since(start).Round(time.Millisecond))
	return nil
}

// LogSummary prints the final report, if a run got far enough to create
// one. It is safe to call after a failed run.
func (mm *MongoMigrate) LogSummary() {
	if mm.Report == nil {
		return
	}
	mm.Report.LogFinal()
}

// HandleInterrupt is installed as the signal callback: a first interrupt
// asks the run to stop by cancelling its context.
func HandleInterrupt(cancel context.CancelFunc) func() {
	return func() {
		log.Logvf(log.Always, "stopping after the current document; interrupt again to kill")
		cancel()
	}
}
