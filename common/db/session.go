// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	mopt "go.mongodb.org/mongo-driver/mongo/options"
)

// Run issues the provided command against the given database and unmarshals
// the result into out.
func (sp *SessionProvider) Run(command interface{}, out interface{}, name string) error {
	result := sp.DB(name).RunCommand(context.Background(), command)
	if err := result.Err(); err != nil {
		return err
	}
	return result.Decode(out)
}

// DatabaseNames returns a slice containing the names of all the databases on the
// connected server.
func (sp *SessionProvider) DatabaseNames() ([]string, error) {
	session, err := sp.GetSession()
	if err != nil {
		return nil, err
	}
	return session.ListDatabaseNames(context.Background(), bson.D{})
}

// CollectionNames returns the names of all the collections in the given database.
func (sp *SessionProvider) CollectionNames(dbName string) ([]string, error) {
	return sp.DB(dbName).ListCollectionNames(context.Background(), bson.D{})
}

// DropDatabase drops the database with the given name.
func (sp *SessionProvider) DropDatabase(dbName string) error {
	return sp.DB(dbName).Drop(context.Background())
}

// CreateCollection creates the collection with the given name in the given
// database.
func (sp *SessionProvider) CreateCollection(dbName, collName string) error {
	command := bson.D{{Key: "create", Value: collName}}
	var result bson.M
	return sp.Run(command, &result, dbName)
}

// FindOne retrieves a document from the given database and collection,
// skipping the given number of documents, and unmarshals it into into.
func (sp *SessionProvider) FindOne(
	dbName, collName string,
	skip int,
	query interface{},
	sort interface{},
	into interface{},
	flags int,
) error {
	opts := mopt.FindOne().SetSkip(int64(skip))
	if sort != nil {
		opts.SetSort(sort)
	}
	if query == nil {
		query = bson.D{}
	}

	res := sp.DB(dbName).Collection(collName).FindOne(context.Background(), query, opts)
	if err := res.Err(); err != nil {
		return err
	}
	return res.Decode(into)
}

// ServerVersion returns the version string of the connected server.
func (sp *SessionProvider) ServerVersion() (string, error) {
	var result struct {
		Version string `bson:"version"`
	}
	if err := sp.Run(bson.M{"buildInfo": 1}, &result, "admin"); err != nil {
		return "", err
	}
	return result.Version, nil
}

// ServerVersionArray returns the version of the connected server as a
// comparable Version.
func (sp *SessionProvider) ServerVersionArray() (Version, error) {
	versionStr, err := sp.ServerVersion()
	if err != nil {
		return Version{}, err
	}
	return StrToVersion(versionStr)
}
