// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongoduplicate

import (
	"context"
	"testing"

	"github.com/mongodb/mongo-migrate/common/testtype"
	"github.com/mongodb/mongo-migrate/common/testutil"
	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/bson"
)

func TestDuplicateRun(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.IntegrationTestType)

	ctx := context.Background()
	sourceDBName := "duplicate-test-source"
	targetDBName := "duplicate-test-target"

	Convey("With a source database of three collections", t, func() {
		provider, _, err := testutil.GetBareSessionProvider()
		So(err, ShouldBeNil)
		session, err := provider.GetSession()
		So(err, ShouldBeNil)

		seed := map[string]int{"users": 12, "orders": 30, "audit": 5}
		for collName, count := range seed {
			coll := session.Database(sourceDBName).Collection(collName)
			for i := 0; i < count; i++ {
				_, err := coll.InsertOne(ctx, bson.D{{Key: "_id", Value: i}})
				So(err, ShouldBeNil)
			}
		}

		newDuplicator := func(live bool) *MongoDuplicate {
			return &MongoDuplicate{
				DuplicateOptions: &DuplicateOptions{
					SourceDB:  sourceDBName,
					TargetDB:  targetDBName,
					Excluded:  []string{"audit"},
					Live:      live,
					BatchSize: 10,
				},
				SourceProvider: provider,
				TargetProvider: provider,
			}
		}

		Convey("a dry run should count documents without writing", func() {
			duplicator := newDuplicator(false)
			So(duplicator.Run(ctx), ShouldBeNil)
			So(duplicator.Results, ShouldHaveLength, 2)

			counts := map[string]int64{}
			for _, result := range duplicator.Results {
				So(result.Err, ShouldBeNil)
				counts[result.Collection] = result.Documents
			}
			So(counts["users"], ShouldEqual, 12)
			So(counts["orders"], ShouldEqual, 30)

			targetNames, err := provider.CollectionNames(targetDBName)
			So(err, ShouldBeNil)
			So(targetNames, ShouldBeEmpty)
		})

		Convey("a live run should copy everything except the excluded collection", func() {
			duplicator := newDuplicator(true)
			So(duplicator.Run(ctx), ShouldBeNil)

			for collName, want := range map[string]int64{"users": 12, "orders": 30} {
				got, err := session.Database(targetDBName).
					Collection(collName).
					CountDocuments(ctx, bson.D{})
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}

			targetNames, err := provider.CollectionNames(targetDBName)
			So(err, ShouldBeNil)
			So(targetNames, ShouldNotContain, "audit")

			Convey("and re-running without --drop should skip the duplicate keys", func() {
				rerun := newDuplicator(true)
				So(rerun.Run(ctx), ShouldBeNil)

				got, err := session.Database(targetDBName).
					Collection("users").
					CountDocuments(ctx, bson.D{})
				So(err, ShouldBeNil)
				So(got, ShouldEqual, 12)

				Convey("reporting zero copied documents", func() {
					for _, result := range rerun.Results {
						So(result.Err, ShouldBeNil)
						So(result.Documents, ShouldEqual, 0)
					}
				})
			})
		})

		Reset(func() {
			So(provider.DropDatabase(sourceDBName), ShouldBeNil)
			So(provider.DropDatabase(targetDBName), ShouldBeNil)
			provider.Close()
		})
	})
}
