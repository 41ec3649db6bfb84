// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongoduplicate

import (
	"testing"

	"github.com/mongodb/mongo-migrate/common/testtype"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseOptions(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	Convey("Parsing duplication options", t, func() {
		Convey("should default to a dry run with the standard batch size", func() {
			opts, err := ParseOptions([]string{
				"--sourceDb", "prod",
				"--targetDb", "staging",
			}, "", "")
			So(err, ShouldBeNil)
			So(opts.Live, ShouldBeFalse)
			So(opts.Drop, ShouldBeFalse)
			So(opts.BatchSize, ShouldEqual, 1000)
		})

		Convey("should collect repeated --exclude flags", func() {
			opts, err := ParseOptions([]string{
				"--sourceDb", "prod",
				"--targetDb", "staging",
				"--exclude", "audit",
				"--exclude", "sessions",
			}, "", "")
			So(err, ShouldBeNil)
			So(opts.Excluded, ShouldResemble, []string{"audit", "sessions"})
		})

		Convey("should reject extra positional arguments", func() {
			_, err := ParseOptions([]string{
				"mongodb://localhost:27017",
				"unexpected",
			}, "", "")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestDuplicateOptionsValidate(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	valid := func() *DuplicateOptions {
		return &DuplicateOptions{
			SourceDB:  "prod",
			TargetDB:  "staging",
			BatchSize: 1000,
		}
	}

	Convey("Validate", t, func() {
		Convey("should accept a complete set of options", func() {
			So(valid().Validate(), ShouldBeNil)
		})

		Convey("should require both database names", func() {
			opts := valid()
			opts.SourceDB = ""
			So(opts.Validate(), ShouldNotBeNil)

			opts = valid()
			opts.TargetDB = ""
			So(opts.Validate(), ShouldNotBeNil)
		})

		Convey("should reject copying a database onto itself", func() {
			opts := valid()
			opts.TargetDB = opts.SourceDB
			So(opts.Validate(), ShouldNotBeNil)

			Convey("unless the target is another deployment", func() {
				opts.TargetURI = "mongodb://otherhost:27017"
				So(opts.Validate(), ShouldBeNil)
			})
		})

		Convey("should reject --drop on a dry run", func() {
			opts := valid()
			opts.Drop = true
			So(opts.Validate(), ShouldNotBeNil)

			opts.Live = true
			So(opts.Validate(), ShouldBeNil)
		})

		Convey("should reject a non-positive batch size", func() {
			opts := valid()
			opts.BatchSize = 0
			So(opts.Validate(), ShouldNotBeNil)
		})
	})
}
