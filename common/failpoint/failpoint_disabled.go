// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

//go:build !failpoints
// +build !failpoints

package failpoint

// ParseFailpoints does nothing when failpoints are not compiled in.
func ParseFailpoints(_ string) {
}

// Enabled always returns false when failpoints are not compiled in.
func Enabled(_ string) bool {
	return false
}

// Get always reports an unregistered failpoint when failpoints are not
// compiled in.
func Get(_ string) (string, bool) {
	return "", false
}
