// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package util

// Tool exit codes. A run that records per-document failures but hits no
// fatal error still exits clean; partial failure is a reported outcome,
// not a process failure.
const (
	ExitClean      = 0
	ExitError      = 1
	ExitBadOptions = 3
	ExitKill       = 4
)
