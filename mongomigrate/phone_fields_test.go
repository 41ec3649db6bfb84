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
)

func TestCopyPhoneFieldsTransform(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	transform := copyPhoneFieldsTransformer(true)

	Convey("With skip-existing enabled", t, func() {
		Convey("both source fields should be copied to their targets", func() {
			result := transform.Transform(testDoc(bson.D{
				{Key: "_id", Value: 1},
				{Key: "phone", Value: "+1234567890"},
				{Key: "phoneVerification", Value: true},
			}))
			So(result.IsUpdate(), ShouldBeTrue)

			want := bson.D{
				{Key: "$set", Value: bson.D{
					{Key: "phoneNumber", Value: "+1234567890"},
					{Key: "phoneNumberVerification", Value: true},
				}},
			}
			So(cmp.Diff(want, decodeUpdate(result.Update().Document())), ShouldBeEmpty)
		})

		Convey("a document without phone fields should be skipped", func() {
			result := transform.Transform(testDoc(bson.D{
				{Key: "_id", Value: 1},
				{Key: "email", Value: "user@example.com"},
			}))
			So(result.IsSkip(), ShouldBeTrue)
			So(result.SkipReason(), ShouldContainSubstring, "no phone fields")
		})

		Convey("a document with targets already set should be skipped", func() {
			result := transform.Transform(testDoc(bson.D{
				{Key: "_id", Value: 1},
				{Key: "phone", Value: "+1234567890"},
				{Key: "phoneNumber", Value: "+1234567890"},
			}))
			So(result.IsSkip(), ShouldBeTrue)
		})

		Convey("a partially migrated document should only update the missing target", func() {
			result := transform.Transform(testDoc(bson.D{
				{Key: "_id", Value: 1},
				{Key: "phone", Value: "+1234567890"},
				{Key: "phoneNumber", Value: "+1234567890"},
				{Key: "phoneVerification", Value: false},
			}))
			So(result.IsUpdate(), ShouldBeTrue)

			want := bson.D{
				{Key: "$set", Value: bson.D{{Key: "phoneNumberVerification", Value: false}}},
			}
			So(cmp.Diff(want, decodeUpdate(result.Update().Document())), ShouldBeEmpty)
		})
	})

	Convey("With skip-existing disabled, existing targets should be overwritten", t, func() {
		overwrite := copyPhoneFieldsTransformer(false)
		result := overwrite.Transform(testDoc(bson.D{
			{Key: "_id", Value: 1},
			{Key: "phone", Value: "+1987654321"},
			{Key: "phoneNumber", Value: "stale"},
		}))
		So(result.IsUpdate(), ShouldBeTrue)

		want := bson.D{
			{Key: "$set", Value: bson.D{{Key: "phoneNumber", Value: "+1987654321"}}},
		}
		So(cmp.Diff(want, decodeUpdate(result.Update().Document())), ShouldBeEmpty)
	})
}

func TestCopyPhoneFieldsFilter(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	Convey("The scan filter should require a source field", t, func() {
		filter := copyPhoneFieldsFilter(false)
		So(filter, ShouldHaveLength, 1)
		So(filter[0].Key, ShouldEqual, "$or")

		Convey("and exclude migrated documents when skipping existing", func() {
			skipping := copyPhoneFieldsFilter(true)
			branches := skipping[0].Value.([]bson.D)
			So(branches, ShouldHaveLength, 2)
			for _, branch := range branches {
				So(branch[0].Key, ShouldEqual, "$and")
			}
		})
	})
}
