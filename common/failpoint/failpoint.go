// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

//go:build failpoints
// +build failpoints

// Package failpoint implements triggers for custom debugging behavior,
// enabled with the --failpoints flag on debug builds.
package failpoint

import (
	"strings"
)

var values map[string]string

// ParseFailpoints registers a comma-separated list of failpoint=value pairs.
func ParseFailpoints(arg string) {
	values = make(map[string]string)
	fps := strings.Split(arg, ",")
	for _, fp := range fps {
		if sep := strings.Index(fp, "="); sep != -1 {
			values[fp[:sep]] = fp[sep+1:]
			continue
		}
		values[fp] = ""
	}
}

// Enabled returns whether the given failpoint was registered.
func Enabled(fp string) bool {
	_, ok := values[fp]
	return ok
}

// Get returns the value of the given failpoint and whether it was
// registered.
func Get(fp string) (string, bool) {
	val, ok := values[fp]
	return val, ok
}
