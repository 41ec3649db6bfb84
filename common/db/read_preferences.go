// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package db

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/tag"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"gopkg.in/yaml.v2"
)

// readPrefDoc is the document form of a read preference, as passed on the
// command line. YAML is used to parse it since it accepts both quoted and
// unquoted keys, like the shell does.
type readPrefDoc struct {
	Mode                string              `yaml:"mode"`
	TagSets             []map[string]string `yaml:"tagSets"`
	MaxStalenessSeconds int                 `yaml:"maxStalenessSeconds"`
}

// NewReadPreference takes a string (from the command line readPreference
// option) and a ConnString object (from the command line uri option) and
// returns a ReadPref. If both are provided, preference is given to the
// command line readPreference option. If neither is provided, a default
// read preference of 'primary' is constructed.
func NewReadPreference(rp string, cs *connstring.ConnString) (*readpref.ReadPref, error) {
	if rp == "" && (cs == nil || (cs.ReadPreference == "" &&
		len(cs.ReadPreferenceTagSets) == 0 && !cs.MaxStalenessSet)) {
		return readpref.Primary(), nil
	}

	var (
		mode         string
		tagSets      []map[string]string
		maxStaleness time.Duration
		stalenessSet bool
	)

	switch {
	case rp == "":
		mode = cs.ReadPreference
		if mode == "" {
			mode = "primary"
		}
		tagSets = cs.ReadPreferenceTagSets
		if cs.MaxStalenessSet {
			maxStaleness = cs.MaxStaleness
			stalenessSet = true
		}
	case strings.HasPrefix(rp, "{"):
		var doc readPrefDoc
		if err := yaml.Unmarshal([]byte(rp), &doc); err != nil {
			return nil, fmt.Errorf("invalid --readPreference json object: %v", err)
		}
		mode = doc.Mode
		tagSets = doc.TagSets
		if doc.MaxStalenessSeconds != 0 {
			maxStaleness = time.Duration(doc.MaxStalenessSeconds) * time.Second
			stalenessSet = true
		}
	default:
		mode = rp
	}

	readPrefMode, err := readpref.ModeFromString(mode)
	if err != nil {
		return nil, err
	}

	opts := make([]readpref.Option, 0, 2)
	if len(tagSets) > 0 {
		opts = append(opts, readpref.WithTagSets(tag.NewTagSetsFromMaps(tagSets)...))
	}
	if stalenessSet {
		opts = append(opts, readpref.WithMaxStaleness(maxStaleness))
	}

	return readpref.New(readPrefMode, opts...)
}
