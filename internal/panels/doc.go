// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package panels holds the state of the dashboard's feature panels:
// prediction, weather, chat and market prices.
//
// Each panel owns its input, result, error and pending flag, and issues
// exactly one kind of request. Panels do no I/O of their own (apart from
// reading the selected image) so the TUI can run requests off its update
// loop:
//
//	t, city, err := weather.Begin()      // validate, clear, mark pending
//	...                                  // send the request elsewhere
//	weather.Finish(t, result, err)       // ignored if t is stale
//
// The CLI uses the synchronous Submit form of the same steps.
package panels
