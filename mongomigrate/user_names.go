// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongomigrate

import (
	"strings"

	"github.com/mongodb/mongo-migrate/common/migrate"
	"go.mongodb.org/mongo-driver/bson"
)

// concatUserNamesFilter scans every user; with skip-existing, users that
// already have a name field are excluded.
func concatUserNamesFilter(skipExisting bool) bson.D {
	if skipExisting {
		return migrate.FieldMissing("name")
	}
	return bson.D{}
}

// concatUserNamesTransformer sets name from firstName and lastName:
// both present joins them with a space, one present uses it alone, and
// neither present sets an empty name. Non-string name parts are treated
// as absent.
func concatUserNamesTransformer(skipExisting bool) migrate.Transformer {
	return migrate.TransformerFunc(func(doc bson.Raw) migrate.Result {
		if skipExisting {
			if _, err := doc.LookupErr("name"); err == nil {
				return migrate.SkipBecause("name field already present")
			}
		}

		parts := make([]string, 0, 2)
		for _, field := range []string{"firstName", "lastName"} {
			value, err := doc.LookupErr(field)
			if err != nil {
				continue
			}
			if str, ok := value.StringValueOK(); ok && str != "" {
				parts = append(parts, str)
			}
		}
		return migrate.UpdateFields(bson.D{{Key: "name", Value: strings.Join(parts, " ")}})
	})
}
