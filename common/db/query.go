// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mopt "go.mongodb.org/mongo-driver/mongo/options"
)

// DeferredQuery represents a deferred query.
type DeferredQuery struct {
	Coll            *mongo.Collection
	Filter          interface{}
	Hint            interface{}
	BatchSize       int32
	NoCursorTimeout bool
}

// Count issues an EstimatedDocumentCount command when there is no Filter in
// the query and a CountDocuments command otherwise.
func (q *DeferredQuery) Count() (int, error) {
	emptyFilter := false

	filter := q.Filter
	if q.Filter == nil {
		emptyFilter = true
		filter = bson.D{}
	} else if val, ok := q.Filter.(bson.D); ok && len(val) == 0 {
		emptyFilter = true
	} else if val, ok := q.Filter.(bson.M); ok && len(val) == 0 {
		emptyFilter = true
	}

	if emptyFilter {
		opt := mopt.EstimatedDocumentCount()
		c, err := q.Coll.EstimatedDocumentCount(context.TODO(), opt)
		return int(c), err
	}

	opt := mopt.Count()
	c, err := q.Coll.CountDocuments(context.TODO(), filter, opt)
	return int(c), err
}

// Iter executes a find query and returns a cursor.
func (q *DeferredQuery) Iter() (*mongo.Cursor, error) {
	opts := mopt.Find()
	if q.Hint != nil {
		opts.SetHint(q.Hint)
	}
	if q.BatchSize > 0 {
		opts.SetBatchSize(q.BatchSize)
	}
	if q.NoCursorTimeout {
		opts.SetNoCursorTimeout(true)
	}
	filter := q.Filter
	if filter == nil {
		filter = bson.D{}
	}
	return q.Coll.Find(context.TODO(), filter, opts)
}
