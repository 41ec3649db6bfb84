// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package text

import (
	"testing"

	"github.com/mongodb/mongo-migrate/common/testtype"
	"github.com/stretchr/testify/assert"
)

func TestFormatByteCount(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	tests := []struct {
		size   int64
		expect string
	}{
		{0, "0B"},
		{10, "10B"},
		{1024, "1.00KB"},
		{2500, "2.44KB"},
		{2 * 1024 * 1024, "2.00MB"},
		{5 * 1024 * 1024 * 1024, "5.00GB"},
		{5 * 1024 * 1024 * 1024 * 1024, "5120GB"},
	}

	for _, test := range tests {
		got := FormatByteAmount(test.size)
		assert.Equal(t, test.expect, got, "%d -> %s", test.size, test.expect)
	}
}
