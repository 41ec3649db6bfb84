// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package migrate implements a generic engine for batched document
// migrations: documents are read from a collection in bounded batches, a
// per-document transform classifies each one as an update, a skip, or a
// failure, and updates are committed one document at a time (or only
// counted, in dry-run mode).
package migrate

import (
	"go.mongodb.org/mongo-driver/bson"
)

// A Transformer maps a source document to the outcome of migrating it. A
// Transformer must be a pure function of the document: it never touches
// the database and has no side effects beyond constructing an error.
type Transformer interface {
	Transform(doc bson.Raw) Result
}

// TransformerFunc is an adapter to allow ordinary functions to be used as
// Transformers.
type TransformerFunc func(doc bson.Raw) Result

func (f TransformerFunc) Transform(doc bson.Raw) Result {
	return f(doc)
}

// UpdateInstruction describes a partial-document update: fields to set and
// fields to unset. The document's _id is never part of the instruction; it
// is used as the match key when the update is committed.
type UpdateInstruction struct {
	Set   bson.D
	Unset []string
}

// Document renders the instruction as an update document suitable for a
// single-document update operation.
func (ui *UpdateInstruction) Document() bson.D {
	update := bson.D{}
	if len(ui.Set) > 0 {
		update = append(update, bson.E{Key: "$set", Value: ui.Set})
	}
	if len(ui.Unset) > 0 {
		unset := bson.D{}
		for _, field := range ui.Unset {
			unset = append(unset, bson.E{Key: field, Value: ""})
		}
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}
	return update
}

// Result is the outcome of transforming a single document: exactly one of
// an update instruction, a skip reason, or an error.
type Result struct {
	update     *UpdateInstruction
	skipReason string
	err        error
}

// UpdateFields returns a Result instructing the executor to set the given
// fields on the document.
func UpdateFields(set bson.D) Result {
	return Result{update: &UpdateInstruction{Set: set}}
}

// UpdateDocument returns a Result carrying a full update instruction, with
// fields to set and fields to unset.
func UpdateDocument(set bson.D, unset ...string) Result {
	return Result{update: &UpdateInstruction{Set: set, Unset: unset}}
}

// SkipBecause returns a Result instructing the executor to leave the
// document untouched, with a human-readable reason.
func SkipBecause(reason string) Result {
	return Result{skipReason: reason}
}

// Fail returns a Result recording that the document could not be
// transformed. The executor records the error and continues with the next
// document.
func Fail(err error) Result {
	return Result{err: err}
}

// Update returns the update instruction carried by the result, or nil if
// the result is a skip or a failure.
func (r Result) Update() *UpdateInstruction {
	return r.update
}

// SkipReason returns the reason the document was skipped. Only meaningful
// when IsSkip is true.
func (r Result) SkipReason() string {
	return r.skipReason
}

// Err returns the transform error, or nil if the result is an update or a
// skip.
func (r Result) Err() error {
	return r.err
}

func (r Result) IsUpdate() bool {
	return r.update != nil
}

func (r Result) IsSkip() bool {
	return r.update == nil && r.err == nil
}

func (r Result) IsFailure() bool {
	return r.err != nil
}
