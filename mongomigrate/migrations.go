// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongomigrate

import (
	"fmt"

	"github.com/mongodb/mongo-migrate/common/migrate"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
)

// A Migration is one registered rewrite of a single collection. Filter
// restricts the scan server-side; Transformer classifies each fetched
// document. Both receive the resolved skip-existing toggle, so a
// migration that only adds fields can exclude already-migrated documents
// from the scan and stay idempotent across partial runs.
type Migration struct {
	Name        string
	Collection  string
	Description string
	Filter      func(skipExisting bool) bson.D
	Transformer func(skipExisting bool) migrate.Transformer
}

// migrations is the ordered registry of runnable migrations.
var migrations = []Migration{
	{
		Name:        "copy-phone-fields",
		Collection:  "users",
		Description: "copy phone to phoneNumber and phoneVerification to phoneNumberVerification, leaving the originals untouched",
		Filter:      copyPhoneFieldsFilter,
		Transformer: copyPhoneFieldsTransformer,
	},
	{
		Name:        "migrate-user-ids",
		Collection:  "users",
		Description: "set userId to the string form of the document's _id",
		Filter:      migrateUserIDsFilter,
		Transformer: migrateUserIDsTransformer,
	},
	{
		Name:        "rename-offer-id-field",
		Collection:  "orders",
		Description: "rename id to offerId inside each entry of the offers array",
		Filter:      renameOfferIDFilter,
		Transformer: renameOfferIDTransformer,
	},
	{
		Name:        "concat-user-names",
		Collection:  "users",
		Description: "set name from firstName and lastName",
		Filter:      concatUserNamesFilter,
		Transformer: concatUserNamesTransformer,
	},
	{
		Name:        "normalize-delivery-status",
		Collection:  "orders",
		Description: "change deliveryStatus PREPARING_FOR_DISPATCH to PREPARING",
		Filter:      normalizeDeliveryStatusFilter,
		Transformer: normalizeDeliveryStatusTransformer,
	},
}

// FindMigration looks up a registered migration by name.
func FindMigration(name string) (Migration, error) {
	for _, migration := range migrations {
		if migration.Name == name {
			return migration, nil
		}
	}
	return Migration{}, fmt.Errorf("no migration named %q is registered; use --list to see the registered migrations", name)
}

// MigrationNames returns the registered migration names in registry
// order.
func MigrationNames() []string {
	return lo.Map(migrations, func(m Migration, _ int) string {
		return m.Name
	})
}

// Migrations returns a copy of the registry in registration order.
func Migrations() []Migration {
	registry := make([]Migration, len(migrations))
	copy(registry, migrations)
	return registry
}
