// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package testtype implements functions for gating tests by type.
package testtype

import (
	"os"
	"strings"
	"testing"
)

const (
	UnitTestType                = "unit"
	IntegrationTestType         = "integration"
	AuthTestType                = "auth"
	SSLTestType                 = "ssl"
	AWSAuthTestType             = "awsauth"
	SRVConnectionStringTestType = "srv"

	testTypesEnv = "TOOLS_TESTING_TYPES"
)

// HasTestType returns whether the given test type was enabled via the
// environment.
func HasTestType(testType string) bool {
	for _, enabled := range strings.Split(os.Getenv(testTypesEnv), ",") {
		if strings.TrimSpace(enabled) == testType {
			return true
		}
	}
	return false
}

// SkipUnlessTestType skips the test unless the given test type was enabled
// via the environment. Unit tests run by default when nothing is configured.
func SkipUnlessTestType(t *testing.T, testType string) {
	if os.Getenv(testTypesEnv) == "" && testType == UnitTestType {
		return
	}
	if !HasTestType(testType) {
		t.Skipf("skipping %v test", testType)
	}
}
