// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package text provides utilities for formatting amounts for human
// consumption.
package text

import (
	"fmt"
	"strconv"
)

const binaryBase = 1024

var byteUnits = []string{"B", "KB", "MB", "GB"}

// FormatByteAmount takes an int64 representing a size in bytes and returns a
// formatted string of a minimum amount of significant figures, capped at GB.
//
//	e.g. 12.4GB, 0B, 124KB, 1.08MB
func FormatByteAmount(size int64) string {
	return formatUnitAmount(size, binaryBase, byteUnits)
}

// formatUnitAmount scales the amount down by the given base until it fits its
// largest unit, then prints it with three significant figures. Unscaled
// amounts print as plain integers.
func formatUnitAmount(size int64, base float64, units []string) string {
	amount := float64(size)
	unit := 0
	for amount >= base && unit < len(units)-1 {
		amount /= base
		unit++
	}
	if unit == 0 {
		return strconv.FormatInt(size, 10) + units[0]
	}
	return formatThreeSigFigures(amount) + units[unit]
}

func formatThreeSigFigures(amount float64) string {
	switch {
	case amount < 9.995:
		return fmt.Sprintf("%.2f", amount)
	case amount < 99.95:
		return fmt.Sprintf("%.1f", amount)
	default:
		return fmt.Sprintf("%.0f", amount)
	}
}
