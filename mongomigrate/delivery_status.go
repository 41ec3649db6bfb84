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

const (
	deliveryStatusField = "deliveryStatus"
	oldDeliveryStatus   = "PREPARING_FOR_DISPATCH"
	newDeliveryStatus   = "PREPARING"
)

// normalizeDeliveryStatusFilter matches only orders still carrying the
// old status, which makes re-runs idempotent regardless of the
// skip-existing toggle.
func normalizeDeliveryStatusFilter(skipExisting bool) bson.D {
	return bson.D{{Key: deliveryStatusField, Value: oldDeliveryStatus}}
}

func normalizeDeliveryStatusTransformer(skipExisting bool) migrate.Transformer {
	return migrate.TransformerFunc(func(doc bson.Raw) migrate.Result {
		status, err := doc.LookupErr(deliveryStatusField)
		if err != nil {
			return migrate.SkipBecause("document has no deliveryStatus field")
		}
		if str, ok := status.StringValueOK(); !ok || str != oldDeliveryStatus {
			// the document changed between the scan and the transform
			return migrate.SkipBecause("deliveryStatus is no longer " + oldDeliveryStatus)
		}
		return migrate.UpdateFields(bson.D{{Key: deliveryStatusField, Value: newDeliveryStatus}})
	})
}
