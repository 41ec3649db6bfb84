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

func TestRenameOfferIDTransform(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	transform := renameOfferIDTransformer(true)

	Convey("The offer id rename", t, func() {
		Convey("should rename id to offerId in every entry, preserving order", func() {
			result := transform.Transform(testDoc(bson.D{
				{Key: "_id", Value: int32(1)},
				{Key: "offers", Value: bson.A{
					bson.D{{Key: "id", Value: "offer-1"}, {Key: "discount", Value: int32(10)}},
					bson.D{{Key: "discount", Value: int32(20)}, {Key: "id", Value: "offer-2"}},
				}},
			}))
			So(result.IsUpdate(), ShouldBeTrue)

			want := bson.D{{Key: "$set", Value: bson.D{{Key: "offers", Value: bson.A{
				bson.D{{Key: "offerId", Value: "offer-1"}, {Key: "discount", Value: int32(10)}},
				bson.D{{Key: "discount", Value: int32(20)}, {Key: "offerId", Value: "offer-2"}},
			}}}}}
			So(cmp.Diff(want, decodeUpdate(result.Update().Document())), ShouldBeEmpty)
		})

		Convey("should leave entries without an id untouched", func() {
			result := transform.Transform(testDoc(bson.D{
				{Key: "_id", Value: int32(1)},
				{Key: "offers", Value: bson.A{
					bson.D{{Key: "offerId", Value: "offer-1"}},
					bson.D{{Key: "id", Value: "offer-2"}},
				}},
			}))
			So(result.IsUpdate(), ShouldBeTrue)

			want := bson.D{{Key: "$set", Value: bson.D{{Key: "offers", Value: bson.A{
				bson.D{{Key: "offerId", Value: "offer-1"}},
				bson.D{{Key: "offerId", Value: "offer-2"}},
			}}}}}
			So(cmp.Diff(want, decodeUpdate(result.Update().Document())), ShouldBeEmpty)
		})

		Convey("should drop a stale id when offerId is already present", func() {
			result := transform.Transform(testDoc(bson.D{
				{Key: "_id", Value: int32(1)},
				{Key: "offers", Value: bson.A{
					bson.D{{Key: "id", Value: "old"}, {Key: "offerId", Value: "new"}},
				}},
			}))
			So(result.IsUpdate(), ShouldBeTrue)

			want := bson.D{{Key: "$set", Value: bson.D{{Key: "offers", Value: bson.A{
				bson.D{{Key: "offerId", Value: "new"}},
			}}}}}
			So(cmp.Diff(want, decodeUpdate(result.Update().Document())), ShouldBeEmpty)
		})

		Convey("should skip documents with no renameable entries", func() {
			result := transform.Transform(testDoc(bson.D{
				{Key: "_id", Value: int32(1)},
				{Key: "offers", Value: bson.A{
					bson.D{{Key: "offerId", Value: "offer-1"}},
				}},
			}))
			So(result.IsSkip(), ShouldBeTrue)
		})

		Convey("should skip documents with no offers array", func() {
			result := transform.Transform(testDoc(bson.D{{Key: "_id", Value: int32(1)}}))
			So(result.IsSkip(), ShouldBeTrue)
		})

		Convey("should fail when offers is not an array", func() {
			result := transform.Transform(testDoc(bson.D{
				{Key: "_id", Value: int32(1)},
				{Key: "offers", Value: "not-an-array"},
			}))
			So(result.IsFailure(), ShouldBeTrue)
		})
	})

	Convey("The scan filter should match entries still carrying an id", t, func() {
		So(renameOfferIDFilter(true), ShouldResemble, bson.D{
			{Key: "offers.id", Value: bson.D{{Key: "$exists", Value: true}}},
		})
	})
}
