// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongomigrate

import (
	"fmt"
	"strconv"

	"github.com/mongodb/mongo-migrate/common/migrate"
	"go.mongodb.org/mongo-driver/bson"
)

// migrateUserIDsFilter scans the whole collection: whether a document
// needs its userId rewritten depends on the _id value and cannot be
// expressed as a plain query. The transform skips documents that already
// match.
func migrateUserIDsFilter(skipExisting bool) bson.D {
	return bson.D{}
}

func migrateUserIDsTransformer(skipExisting bool) migrate.Transformer {
	return migrate.TransformerFunc(func(doc bson.Raw) migrate.Result {
		id := doc.Lookup("_id")
		idStr, err := idAsString(id)
		if err != nil {
			return migrate.Fail(err)
		}

		if current, lookupErr := doc.LookupErr("userId"); lookupErr == nil {
			if existing, ok := current.StringValueOK(); ok && existing == idStr {
				return migrate.SkipBecause("userId already matches _id")
			}
		}
		return migrate.UpdateFields(bson.D{{Key: "userId", Value: idStr}})
	})
}

// idAsString renders an _id value the way the userId field stores it.
func idAsString(id bson.RawValue) (string, error) {
	switch id.Type {
	case bson.TypeObjectID:
		return id.ObjectID().Hex(), nil
	case bson.TypeString:
		return id.StringValue(), nil
	case bson.TypeInt32:
		return strconv.FormatInt(int64(id.Int32()), 10), nil
	case bson.TypeInt64:
		return strconv.FormatInt(id.Int64(), 10), nil
	default:
		return "", fmt.Errorf("cannot render _id of type %v as a string userId", id.Type)
	}
}
