// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongomigrate

import (
	"github.com/mongodb/mongo-migrate/common/migrate"
	"go.mongodb.org/mongo-driver/bson"
)

// phoneFieldMappings lists the source-to-target copies performed by the
// copy-phone-fields migration. Values are copied exactly, whatever their
// type; the source fields are never modified.
var phoneFieldMappings = []struct {
	source string
	target string
}{
	{"phone", "phoneNumber"},
	{"phoneVerification", "phoneNumberVerification"},
}

// copyPhoneFieldsFilter matches documents that have at least one source
// field. With skipExisting set, documents where every present source
// already has its target are excluded, so re-runs only fetch unfinished
// documents.
func copyPhoneFieldsFilter(skipExisting bool) bson.D {
	perMapping := make([]bson.D, 0, len(phoneFieldMappings))
	for _, mapping := range phoneFieldMappings {
		condition := migrate.FieldExists(mapping.source)
		if skipExisting {
			condition = migrate.And(condition, migrate.FieldMissing(mapping.target))
		}
		perMapping = append(perMapping, condition)
	}
	return bson.D{{Key: "$or", Value: perMapping}}
}

func copyPhoneFieldsTransformer(skipExisting bool) migrate.Transformer {
	return migrate.TransformerFunc(func(doc bson.Raw) migrate.Result {
		set := bson.D{}
		sourcesSeen := 0
		for _, mapping := range phoneFieldMappings {
			value, err := doc.LookupErr(mapping.source)
			if err != nil {
				continue
			}
			sourcesSeen++
			if skipExisting {
				if _, err := doc.LookupErr(mapping.target); err == nil {
					continue
				}
			}
			set = append(set, bson.E{Key: mapping.target, Value: value})
		}

		if sourcesSeen == 0 {
			return migrate.SkipBecause("document has no phone fields")
		}
		if len(set) == 0 {
			return migrate.SkipBecause("target fields already present")
		}
		return migrate.UpdateFields(set)
	})
}
