// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package migrate

import (
	"context"

	"github.com/mongodb/mongo-migrate/common/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// A BatchSource produces a finite, single-pass sequence of document
// batches. Next returns a nil batch once the sequence is exhausted.
// Restarting a migration means opening a new BatchSource with the same
// filter; no resume bookmark is kept across runs.
type BatchSource interface {
	Next(ctx context.Context) ([]bson.Raw, error)
	Close(ctx context.Context) error
}

// CollectionSource is a BatchSource reading from a single collection,
// optionally restricted by a filter.
type CollectionSource struct {
	cursor    *mongo.Cursor
	batchSize int
}

// NewCollectionSource opens a filtered cursor over the given collection
// and returns a BatchSource yielding batches of at most batchSize
// documents. A nil filter scans the whole collection.
func NewCollectionSource(
	coll *mongo.Collection,
	filter interface{},
	batchSize int,
) (*CollectionSource, error) {
	query := db.DeferredQuery{
		Coll:            coll,
		Filter:          filter,
		BatchSize:       int32(batchSize),
		NoCursorTimeout: true,
	}
	cursor, err := query.Iter()
	if err != nil {
		return nil, err
	}
	return &CollectionSource{cursor: cursor, batchSize: batchSize}, nil
}

// Next returns the next batch of documents, or nil when the cursor is
// exhausted. The returned documents are copies and stay valid after the
// next call.
func (cs *CollectionSource) Next(ctx context.Context) ([]bson.Raw, error) {
	batch := make([]bson.Raw, 0, cs.batchSize)
	for len(batch) < cs.batchSize && cs.cursor.Next(ctx) {
		// cursor.Current is only valid until the next call to Next
		doc := make(bson.Raw, len(cs.cursor.Current))
		copy(doc, cs.cursor.Current)
		batch = append(batch, doc)
	}
	if err := cs.cursor.Err(); err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, nil
	}
	return batch, nil
}

// Close releases the underlying cursor.
func (cs *CollectionSource) Close(ctx context.Context) error {
	return cs.cursor.Close(ctx)
}

// FieldMissing is a filter matching documents that lack the given field.
// Migrations that only add fields use it to make re-runs idempotent:
// documents updated by an earlier run no longer match.
func FieldMissing(field string) bson.D {
	return bson.D{{Key: field, Value: bson.D{{Key: "$exists", Value: false}}}}
}

// FieldExists is a filter matching documents that have the given field.
func FieldExists(field string) bson.D {
	return bson.D{{Key: field, Value: bson.D{{Key: "$exists", Value: true}}}}
}

// And combines filters into a single conjunction. Nil and empty filters
// are dropped; an empty combination yields a match-all filter.
func And(filters ...bson.D) bson.D {
	conjuncts := make([]bson.D, 0, len(filters))
	for _, filter := range filters {
		if len(filter) > 0 {
			conjuncts = append(conjuncts, filter)
		}
	}
	switch len(conjuncts) {
	case 0:
		return bson.D{}
	case 1:
		return conjuncts[0]
	default:
		return bson.D{{Key: "$and", Value: conjuncts}}
	}
}
