// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package util

import (
	"fmt"
)

// ToInt is a function for converting any numeric type into an int. A
// non-numeric input yields an error.
func ToInt(number interface{}) (int, error) {
	switch num := number.(type) {
	case int:
		return num, nil
	case int32:
		return int(num), nil
	case int64:
		return int(num), nil
	case float32:
		return int(num), nil
	case float64:
		return int(num), nil
	default:
		return 0, fmt.Errorf("%v is not a number", number)
	}
}
