// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the small set of widgets the AGRINOVA TUI is
built from.

  - Navbar (navbar.go) - brand, greeting or auth shortcuts
  - StatusBar (statusbar.go) - backend URL, session, last request id
  - Spinner (spinner.go) - shared loading indicator
  - Frame, Field, KeyValue, Notice (panel.go) - panel layout helpers

Components hold no application state of their own; the root model copies
what they show from the app before rendering.
*/
package components
