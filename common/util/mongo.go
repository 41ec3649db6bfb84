// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package util

import (
	"fmt"
	"strings"
)

// SplitHostArg returns the hosts and replica set name out of a --host
// argument of the form "setname/host1:port,host2:port".
func SplitHostArg(host string) ([]string, string) {
	setName := ""
	if idx := strings.Index(host, "/"); idx != -1 {
		setName = host[:idx]
		host = host[idx+1:]
	}
	return strings.Split(host, ","), setName
}

// BuildURI assembles a mongodb:// connection string from --host and --port
// style arguments.
func BuildURI(host, port string) string {
	seedlist, setName := SplitHostArg(host)

	// the set name was the entire host argument
	if len(seedlist) == 1 && seedlist[0] == "" {
		seedlist[0] = "localhost"
	}

	if port != "" {
		for i, h := range seedlist {
			if !strings.Contains(h, ":") {
				seedlist[i] = h + ":" + port
			}
		}
	}

	uri := "mongodb://" + strings.Join(seedlist, ",") + "/"
	if setName != "" {
		uri += "?replicaSet=" + setName
	}
	return uri
}

const invalidDBChars = " /\\.\"\x00$"

// ValidateDBName validates that the given string is a valid database name.
func ValidateDBName(database string) error {
	if database == "" {
		return fmt.Errorf("database name cannot be empty")
	}
	if len(database) > 64 {
		return fmt.Errorf("database name %#q exceeds 64 characters", database)
	}
	if strings.ContainsAny(database, invalidDBChars) {
		return fmt.Errorf(`database name %#q cannot contain ' ', '/', '\', '.', '"', '$', or the null character`, database)
	}
	return nil
}

// ValidateCollectionName validates that the given string is a valid
// collection name.
func ValidateCollectionName(collection string) error {
	if collection == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if strings.Contains(collection, "$") {
		return fmt.Errorf("collection name %#q cannot contain '$'", collection)
	}
	if strings.Contains(collection, "\x00") {
		return fmt.Errorf("collection name %#q cannot contain the null character", collection)
	}
	return nil
}
