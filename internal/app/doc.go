// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the client's top-level controller.
//
// It owns the session, the auth form and the four feature panels, turns
// user actions into bubbletea commands, and applies their results. The
// screen to show is a pure function of the session:
//
//	anonymous      -> ViewAuth
//	authenticated  -> ViewDashboard
//
// Rendering lives in the root model; this package has no widgets.
package app
