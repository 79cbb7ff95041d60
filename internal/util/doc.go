// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small string, number and file helpers shared by the
// agrinova packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateWidth: display-width safe truncation
//   - UpperFirst: capitalizes only the first character
//
// Number Formatting:
//   - Percent: ratio to two-decimal percentage
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	label := util.TruncateWidth(city, 20)
//	shown := util.Percent(0.8734) // "87.34%"
//	err := util.AtomicWriteFile(path, data, 0600)
package util
