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

// ShortUsage returns a one-line hint pointing at the tool's --help output.
func ShortUsage(tool string) string {
	return fmt.Sprintf("try '%s --help' for more information", tool)
}

// SanitizeURI redacts the userinfo portion of a connection string so it is
// safe to log.
func SanitizeURI(u string) string {
	var scheme string
	switch {
	case strings.HasPrefix(u, "mongodb://"):
		scheme = "mongodb://"
	case strings.HasPrefix(u, "mongodb+srv://"):
		scheme = "mongodb+srv://"
	default:
		return u
	}

	rest := u[len(scheme):]

	// userinfo can only appear before the first path or query separator
	hostEnd := strings.IndexAny(rest, "/?")
	authority := rest
	if hostEnd != -1 {
		authority = rest[:hostEnd]
	}

	at := strings.LastIndex(authority, "@")
	if at == -1 {
		return u
	}
	return scheme + "[**REDACTED**]" + rest[at:]
}
