// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "strconv"

// FloatToStringPrec converts a float64 to string with the given precision.
func FloatToStringPrec(f float64, prec int) string {
	return strconv.FormatFloat(f, 'f', prec, 64)
}

// Percent renders a ratio in [0,1] as a percentage with two decimals,
// e.g. 0.8734 -> "87.34%".
func Percent(ratio float64) string {
	return FloatToStringPrec(ratio*100, 2) + "%"
}

// IntToString converts an int to string.
func IntToString(n int) string {
	return strconv.Itoa(n)
}
