// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package mongoduplicate copies the collections of one database into
// another, batch by batch, dry-run by default.
package mongoduplicate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/mongodb/mongo-migrate/common/db"
	"github.com/mongodb/mongo-migrate/common/log"
	"github.com/mongodb/mongo-migrate/common/migrate"
	"github.com/mongodb/mongo-migrate/common/options"
	"github.com/mongodb/mongo-migrate/common/progress"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/mongo"
)

const progressBarLength = 24

// A CollectionResult records the outcome of copying one collection.
type CollectionResult struct {
	Collection string
	Documents  int64
	Err        error
}

// MongoDuplicate is a container for the user-specified options and the
// sessions needed to duplicate a database. TargetProvider may be the
// same provider as SourceProvider when both databases live on one
// deployment.
type MongoDuplicate struct {
	ToolOptions      *options.ToolOptions
	DuplicateOptions *DuplicateOptions
	SourceProvider   *db.SessionProvider
	TargetProvider   *db.SessionProvider

	// per-collection outcomes of the most recent Run
	Results []CollectionResult

	progressManager *progress.BarWriter
}

// NewTargetSessionProvider connects to the deployment named by
// --targetUri. It returns nil when no separate target was given; the
// caller then reuses the source provider.
func NewTargetSessionProvider(duplicateOpts *DuplicateOptions, versionStr, gitCommit string) (*db.SessionProvider, error) {
	if duplicateOpts.TargetURI == "" {
		return nil, nil
	}

	targetOpts := options.New("mongoduplicate", versionStr, gitCommit, "", false,
		options.EnabledOptions{Auth: true, Connection: true, URI: true})
	targetOpts.URI.ConnectionString = duplicateOpts.TargetURI
	if duplicateOpts.DestinationPassword != "" {
		targetOpts.Auth.Password = duplicateOpts.DestinationPassword
	}
	if err := targetOpts.NormalizeOptionsAndURI(); err != nil {
		return nil, errors.Wrap(err, "error parsing --targetUri")
	}

	provider, err := db.NewSessionProvider(*targetOpts)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to target host")
	}
	return provider, nil
}

// Run copies every non-excluded collection of the source database into
// the target database. Collections are processed independently: a
// failing collection is recorded and the remaining collections are still
// attempted. A returned error means the whole run aborted.
func (md *MongoDuplicate) Run(ctx context.Context) error {
	sourceSession, err := md.SourceProvider.GetSession()
	if err != nil {
		return errors.Wrap(err, "error getting source session")
	}
	targetSession, err := md.TargetProvider.GetSession()
	if err != nil {
		return errors.Wrap(err, "error getting target session")
	}
	sourceDB := sourceSession.Database(md.DuplicateOptions.SourceDB)
	targetDB := targetSession.Database(md.DuplicateOptions.TargetDB)

	sourceVersion, err := md.SourceProvider.ServerVersion()
	if err != nil {
		return errors.Wrap(err, "error reading source server version")
	}
	targetVersion, err := md.TargetProvider.ServerVersion()
	if err != nil {
		return errors.Wrap(err, "error reading target server version")
	}
	log.Logvf(log.Info, "source server version: %v; target server version: %v",
		sourceVersion, targetVersion)

	names, err := md.SourceProvider.CollectionNames(md.DuplicateOptions.SourceDB)
	if err != nil {
		return errors.Wrapf(err, "error listing collections in %v", md.DuplicateOptions.SourceDB)
	}
	sort.Strings(names)

	exclusions := mapset.NewSet(md.DuplicateOptions.Excluded...)

	mode := "dry run"
	if md.DuplicateOptions.Live {
		mode = "live"
	}
	log.Logvf(log.Always, "duplicating %v into %v (%v): %v collection(s) found",
		md.DuplicateOptions.SourceDB, md.DuplicateOptions.TargetDB, mode, len(names))

	if md.DuplicateOptions.Live {
		md.progressManager = progress.NewBarWriter(
			log.Writer(0),
			progress.DefaultWaitTime,
			progressBarLength,
			false,
		)
		md.progressManager.Start()
		defer md.progressManager.Stop()
	}

	for _, name := range names {
		if strings.HasPrefix(name, "system.") {
			log.Logvf(log.Info, "skipping system collection %v", name)
			continue
		}
		if exclusions.Contains(name) {
			log.Logvf(log.Always, "skipping excluded collection %v", name)
			continue
		}

		copied, err := md.copyCollection(ctx, sourceDB, targetDB, name)
		md.Results = append(md.Results, CollectionResult{Collection: name, Documents: copied, Err: err})
		if err == nil {
			continue
		}
		if migrate.IsFatalWriteError(err) {
			return errors.Wrapf(err, "fatal error duplicating %v", name)
		}
		log.Logvf(log.Always, "error duplicating %v (continuing with the remaining collections): %v", name, err)
	}
	return nil
}

// copyCollection copies one collection and returns the number of
// documents copied, or counted in dry-run mode.
func (md *MongoDuplicate) copyCollection(
	ctx context.Context,
	sourceDB, targetDB *mongo.Database,
	name string,
) (int64, error) {
	sourceColl := sourceDB.Collection(name)

	expected, err := (&db.DeferredQuery{Coll: sourceColl}).Count()
	if err != nil {
		return 0, errors.Wrap(err, "error counting documents")
	}

	if !md.DuplicateOptions.Live {
		log.Logvf(log.Always, "would copy %v: %v document(s)", name, expected)
		return int64(expected), nil
	}

	targetColl := targetDB.Collection(name)
	if md.DuplicateOptions.Drop {
		if err := targetColl.Drop(ctx); err != nil {
			return 0, errors.Wrap(err, "error dropping target collection")
		}
	}

	source, err := migrate.NewCollectionSource(sourceColl, nil, md.DuplicateOptions.BatchSize)
	if err != nil {
		return 0, errors.Wrap(err, "error opening cursor")
	}
	defer func() {
		if closeErr := source.Close(ctx); closeErr != nil {
			log.Logvf(log.Info, "error closing cursor on %v: %v", name, closeErr)
		}
	}()

	counter := progress.NewCounter(int64(expected))
	if md.progressManager != nil {
		barName := fmt.Sprintf("%v.%v", md.DuplicateOptions.TargetDB, name)
		md.progressManager.Attach(barName, counter)
		defer md.progressManager.Detach(barName)
	}

	// copied counts actual inserts, reported by the bulk writes on each
	// flush; documents dropped as ignorable duplicate keys are excluded
	inserter := db.NewUnorderedBufferedBulkInserter(targetColl, md.DuplicateOptions.BatchSize)
	var copied int64
	for {
		batch, err := source.Next(ctx)
		if err != nil {
			return copied, errors.Wrap(err, "error reading next batch")
		}
		if batch == nil {
			break
		}
		for _, doc := range batch {
			result, err := inserter.InsertRaw(doc)
			if result != nil {
				copied += result.InsertedCount
			}
			if err != nil {
				// duplicate keys are reported and skipped, everything
				// else fails the collection
				if filtered := db.FilterError(false, err); filtered != nil {
					return copied, filtered
				}
			}
			counter.Inc(1)
		}
	}
	result, err := inserter.Flush()
	if result != nil {
		copied += result.InsertedCount
	}
	if err != nil {
		if filtered := db.FilterError(false, err); filtered != nil {
			return copied, filtered
		}
	}

	log.Logvf(log.Info, "copied %v: %v document(s)", name, copied)
	return copied, nil
}

// LogSummary prints the per-collection outcomes and the totals. It is
// safe to call after a failed run.
func (md *MongoDuplicate) LogSummary() {
	verb := "copied"
	if !md.DuplicateOptions.Live {
		verb = "would copy"
	}
	for _, result := range md.Results {
		if result.Err != nil {
			log.Logvf(log.Always, "    %v: failed: %v", result.Collection, result.Err)
			continue
		}
		log.Logvf(log.Always, "    %v: %v %v document(s)", result.Collection, verb, result.Documents)
	}

	failed := lo.CountBy(md.Results, func(r CollectionResult) bool {
		return r.Err != nil
	})
	total := lo.SumBy(md.Results, func(r CollectionResult) int64 {
		return r.Documents
	})
	log.Logvf(log.Always, "%v collection(s) processed, %v failed, %v document(s) %v",
		len(md.Results), failed, total, verb)
}
