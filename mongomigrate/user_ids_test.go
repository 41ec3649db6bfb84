// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongomigrate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mongodb/mongo-migrate/common/testtype"
	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMigrateUserIDsTransform(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	transform := migrateUserIDsTransformer(true)

	Convey("The userId migration", t, func() {
		Convey("should set userId from an ObjectID _id", func() {
			oid := primitive.NewObjectID()
			result := transform.Transform(testDoc(bson.D{
				{Key: "_id", Value: oid},
				{Key: "userId", Value: "legacy-17"},
			}))
			So(result.IsUpdate(), ShouldBeTrue)

			want := bson.D{{Key: "$set", Value: bson.D{{Key: "userId", Value: oid.Hex()}}}}
			So(cmp.Diff(want, decodeUpdate(result.Update().Document())), ShouldBeEmpty)
		})

		Convey("should set userId on documents that never had one", func() {
			result := transform.Transform(testDoc(bson.D{
				{Key: "_id", Value: int32(42)},
			}))
			So(result.IsUpdate(), ShouldBeTrue)

			want := bson.D{{Key: "$set", Value: bson.D{{Key: "userId", Value: "42"}}}}
			So(cmp.Diff(want, decodeUpdate(result.Update().Document())), ShouldBeEmpty)
		})

		Convey("should skip documents whose userId already matches", func() {
			result := transform.Transform(testDoc(bson.D{
				{Key: "_id", Value: "user-9"},
				{Key: "userId", Value: "user-9"},
			}))
			So(result.IsSkip(), ShouldBeTrue)
		})

		Convey("should fail on an _id type that has no string form", func() {
			result := transform.Transform(testDoc(bson.D{
				{Key: "_id", Value: bson.D{{Key: "part", Value: 1}}},
			}))
			So(result.IsFailure(), ShouldBeTrue)
			So(result.Err().Error(), ShouldContainSubstring, "_id")
		})
	})
}

func TestIDAsString(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	Convey("idAsString should render scalar _id types", t, func() {
		cases := []struct {
			doc  bson.D
			want string
		}{
			{bson.D{{Key: "_id", Value: "abc"}}, "abc"},
			{bson.D{{Key: "_id", Value: int32(7)}}, "7"},
			{bson.D{{Key: "_id", Value: int64(1 << 40)}}, "1099511627776"},
		}
		for _, testCase := range cases {
			got, err := idAsString(testDoc(testCase.doc).Lookup("_id"))
			So(err, ShouldBeNil)
			So(got, ShouldEqual, testCase.want)
		}
	})
}
