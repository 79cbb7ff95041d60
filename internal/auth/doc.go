// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth implements the login/signup form and logout.
//
// Switching between login and signup clears the notice and keeps whatever
// was typed, whichever key or command triggered the switch. A switch does
// not cancel a submit in flight: once the backend answers, the answer is
// applied, so the session always matches the cookie the backend issued.
// Every submit takes a ticket and an older answer never overwrites a newer
// one.
package auth
