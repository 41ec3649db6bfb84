// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongomigrate

import (
	"fmt"

	"github.com/mongodb/mongo-migrate/common/migrate"
	"go.mongodb.org/mongo-driver/bson"
)

// renameOfferIDFilter matches orders whose offers array holds at least
// one entry with an id field. The filter is the same with or without
// skip-existing: an entry that still has id has not been renamed yet.
func renameOfferIDFilter(skipExisting bool) bson.D {
	return migrate.FieldExists("offers.id")
}

// renameOfferIDTransformer rewrites the offers array, renaming id to
// offerId inside each entry. Entries without an id field pass through
// untouched; an entry that somehow carries both keeps its offerId and
// drops the stale id.
func renameOfferIDTransformer(skipExisting bool) migrate.Transformer {
	return migrate.TransformerFunc(func(doc bson.Raw) migrate.Result {
		offersValue, err := doc.LookupErr("offers")
		if err != nil {
			return migrate.SkipBecause("document has no offers array")
		}
		offersArray, ok := offersValue.ArrayOK()
		if !ok {
			return migrate.Fail(fmt.Errorf("offers field has type %v, expected array", offersValue.Type))
		}
		entries, err := offersArray.Values()
		if err != nil {
			return migrate.Fail(fmt.Errorf("cannot read offers array: %v", err))
		}

		rewritten := make(bson.A, 0, len(entries))
		changed := false
		for i, entry := range entries {
			offer, ok := entry.DocumentOK()
			if !ok {
				rewritten = append(rewritten, entry)
				continue
			}
			newOffer, renamed, err := renameOfferEntry(offer)
			if err != nil {
				return migrate.Fail(fmt.Errorf("offers[%d]: %v", i, err))
			}
			if !renamed {
				rewritten = append(rewritten, entry)
				continue
			}
			rewritten = append(rewritten, newOffer)
			changed = true
		}

		if !changed {
			return migrate.SkipBecause("no offers array entry has an id field")
		}
		return migrate.UpdateFields(bson.D{{Key: "offers", Value: rewritten}})
	})
}

// renameOfferEntry rebuilds one offers entry with its id element renamed
// to offerId, preserving element order.
func renameOfferEntry(offer bson.Raw) (bson.D, bool, error) {
	elements, err := offer.Elements()
	if err != nil {
		return nil, false, err
	}

	hasOfferID := false
	hasID := false
	for _, element := range elements {
		switch element.Key() {
		case "id":
			hasID = true
		case "offerId":
			hasOfferID = true
		}
	}
	if !hasID {
		return nil, false, nil
	}

	rebuilt := make(bson.D, 0, len(elements))
	for _, element := range elements {
		if element.Key() == "id" {
			if hasOfferID {
				continue
			}
			rebuilt = append(rebuilt, bson.E{Key: "offerId", Value: element.Value()})
			continue
		}
		rebuilt = append(rebuilt, bson.E{Key: element.Key(), Value: element.Value()})
	}
	return rebuilt, true, nil
}
