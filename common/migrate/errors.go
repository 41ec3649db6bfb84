// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package migrate

import (
	"strings"

	"github.com/mongodb/mongo-migrate/common/db"
	"go.mongodb.org/mongo-driver/mongo"
)

// IsFatalWriteError returns whether a write error indicates that the
// connection to the server is gone. Such errors abort the run: continuing
// without a connection cannot make progress. Every other write error is
// recorded against its document and the run continues.
func IsFatalWriteError(err error) bool {
	if err == nil {
		return false
	}
	if err == mongo.ErrClientDisconnected {
		return true
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}

	msg := err.Error()
	for _, indicator := range []string{
		db.ErrLostConnection,
		db.ErrNoReachableServers,
		db.ErrConnectionRefusedSuffix,
		"server selection error",
	} {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
