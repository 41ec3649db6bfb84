// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package migrate

import (
	"context"

	"github.com/mongodb/mongo-migrate/common/log"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/tomb.v2"
)

// A DocumentWriter commits a partial-document update keyed by the
// document's unique id.
type DocumentWriter interface {
	UpdateByID(ctx context.Context, id interface{}, update interface{}) error
}

// CollectionWriter is a DocumentWriter issuing single-document updates
// against a collection.
type CollectionWriter struct {
	coll *mongo.Collection
}

func NewCollectionWriter(coll *mongo.Collection) *CollectionWriter {
	return &CollectionWriter{coll: coll}
}

func (cw *CollectionWriter) UpdateByID(
	ctx context.Context,
	id interface{},
	update interface{},
) error {
	_, err := cw.coll.UpdateByID(ctx, id, update)
	return err
}

// Migrator is the migration control loop. It pulls batches from Source,
// classifies each document with Transform, and commits updates through
// Writer unless DryRun is set. Per-document failures are recorded on
// Report and never abort the run; only losing the connection does.
type Migrator struct {
	Source    BatchSource
	Transform Transformer
	Writer    DocumentWriter
	Report    *Report
	DryRun    bool
}

// Run processes the source to exhaustion. Fetching the next batch is
// pipelined with processing the current one; a processing failure stops
// the fetcher before Run returns.
func (m *Migrator) Run(ctx context.Context) error {
	if m.Source == nil || m.Transform == nil || m.Report == nil {
		return errors.New("migrator is missing a source, transform, or report")
	}
	if !m.DryRun && m.Writer == nil {
		return errors.New("a live run requires a document writer")
	}

	batches := make(chan []bson.Raw, 1)
	var fetcher tomb.Tomb
	fetcher.Go(func() error {
		defer close(batches)
		for {
			batch, err := m.Source.Next(ctx)
			if err != nil {
				return errors.Wrap(err, "error reading next batch")
			}
			if batch == nil {
				return nil
			}
			select {
			case batches <- batch:
			case <-fetcher.Dying():
				return nil
			}
		}
	})

	batchCount := 0
	for batch := range batches {
		batchCount++
		if err := m.processBatch(ctx, batch); err != nil {
			fetcher.Kill(nil)
			//nolint:errcheck
			fetcher.Wait()
			return err
		}
		counts := m.Report.Snapshot()
		log.Logvf(log.Info, "batch %v done: %v document(s) seen, %v updated, %v skipped, %v failed",
			batchCount, counts.TotalSeen, counts.Updated, counts.Skipped, counts.Failed)
	}
	return fetcher.Wait()
}

// processBatch handles the documents of one batch in order. The returned
// error is non-nil only for fatal write errors.
func (m *Migrator) processBatch(ctx context.Context, batch []bson.Raw) error {
	for _, doc := range batch {
		id, err := doc.LookupErr("_id")
		if err != nil {
			m.Report.RecordFailure(nil, errors.New("document has no _id"))
			continue
		}

		result := m.Transform.Transform(doc)
		switch {
		case result.IsFailure():
			m.Report.RecordFailure(id, result.Err())
			log.Logvf(log.DebugLow, "transform failed for _id=%v: %v", id, result.Err())
		case result.IsSkip():
			m.Report.RecordSkip()
			log.Logvf(log.DebugHigh, "skipping _id=%v: %v", id, result.SkipReason())
		default:
			if err := m.commitUpdate(ctx, id, result.Update()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Migrator) commitUpdate(
	ctx context.Context,
	id interface{},
	update *UpdateInstruction,
) error {
	if m.DryRun {
		m.Report.RecordUpdate()
		log.Logvf(log.DebugLow, "dry run: would update _id=%v with %v", id, update.Document())
		return nil
	}

	if err := m.Writer.UpdateByID(ctx, id, update.Document()); err != nil {
		if IsFatalWriteError(err) {
			return errors.Wrapf(err, "fatal write error updating _id=%v", id)
		}
		m.Report.RecordFailure(id, err)
		log.Logvf(log.DebugLow, "write failed for _id=%v: %v", id, err)
		return nil
	}
	m.Report.RecordUpdate()
	return nil
}
