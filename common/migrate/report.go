// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package migrate

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/go-wordwrap"
	"github.com/mongodb/mongo-migrate/common/log"
)

// maxRecordedErrors caps the number of individually retained error
// records. Past the cap, failures still increment the failed counter but
// are not kept, so a pathological input cannot grow the report without
// bound.
const maxRecordedErrors = 2000

// errorDetailWidth is the wrap width for error details in the final
// summary.
const errorDetailWidth = 80

// An ErrorRecord pairs a failed document's id with the error that caused
// the failure.
type ErrorRecord struct {
	DocumentID interface{}
	Err        error
}

func (er ErrorRecord) String() string {
	return fmt.Sprintf("_id=%v: %v", er.DocumentID, er.Err)
}

// Counts is a point-in-time snapshot of a report's counters.
type Counts struct {
	TotalSeen int64
	Updated   int64
	Skipped   int64
	Failed    int64
}

// Report accumulates per-document outcomes for one migration run. It is
// written by the single processing goroutine and may be read concurrently
// by a progress bar.
type Report struct {
	mutex sync.Mutex

	totalSeen int64
	updated   int64
	skipped   int64
	failed    int64

	errors []ErrorRecord

	// estimated number of matching documents, for progress rendering;
	// zero when unknown
	expectedTotal int64

	startedAt time.Time
}

// NewReport returns a Report expecting roughly expectedTotal documents.
// Pass zero when the total is unknown.
func NewReport(expectedTotal int64) *Report {
	return &Report{
		expectedTotal: expectedTotal,
		startedAt:     time.Now(),
	}
}

// RecordUpdate counts a document that was updated, or would be updated in
// dry-run mode.
func (r *Report) RecordUpdate() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.totalSeen++
	r.updated++
}

// RecordSkip counts a document that was intentionally left untouched.
func (r *Report) RecordSkip() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.totalSeen++
	r.skipped++
}

// RecordFailure counts a failed document and retains its id and error up
// to the record cap.
func (r *Report) RecordFailure(documentID interface{}, err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.totalSeen++
	r.failed++
	if len(r.errors) < maxRecordedErrors {
		r.errors = append(r.errors, ErrorRecord{DocumentID: documentID, Err: err})
	}
}

// Snapshot returns the current counters.
func (r *Report) Snapshot() Counts {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return Counts{
		TotalSeen: r.totalSeen,
		Updated:   r.updated,
		Skipped:   r.skipped,
		Failed:    r.failed,
	}
}

// Errors returns the retained error records, in the order the failures
// occurred.
func (r *Report) Errors() []ErrorRecord {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	records := make([]ErrorRecord, len(r.errors))
	copy(records, r.errors)
	return records
}

// Progress implements progress.Progressor against the estimated total.
func (r *Report) Progress() (int64, int64) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.totalSeen, r.expectedTotal
}

// Summary renders the one-line human-readable summary that is always
// printed at the end of a run.
func (r *Report) Summary() string {
	counts := r.Snapshot()
	elapsed := time.Since(r.startedAt).Round(time.Millisecond)
	return fmt.Sprintf("%v document(s) seen: %v updated, %v skipped, %v failed (%v)",
		counts.TotalSeen, counts.Updated, counts.Skipped, counts.Failed, elapsed)
}

// LogFinal writes the final summary and the retained error details to the
// log, wrapping long error messages for readability.
func (r *Report) LogFinal() {
	log.Logv(log.Always, r.Summary())

	records := r.Errors()
	counts := r.Snapshot()
	if counts.Failed > int64(len(records)) {
		log.Logvf(log.Always, "%v error(s) occurred; only the first %v were retained",
			counts.Failed, len(records))
	}
	for _, record := range records {
		wrapped := wordwrap.WrapString(record.String(), errorDetailWidth)
		for _, line := range strings.Split(wrapped, "\n") {
			log.Logvf(log.Always, "    %v", line)
		}
	}
}
