// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks who the current caller is.
//
// # Key Types
//
//   - Session: optional identity plus a generation counter
//   - Resolution: result of the startup profile lookup
//
// # Usage
//
// Resolve the ambient credential at startup without blocking the UI:
//
//	gen := sess.Generation()
//	go func() {
//	    r := session.Resolve(ctx, client, gen)
//	    program.Send(r)
//	}()
//
// and apply it on the UI loop:
//
//	sess.Apply(r) // ignored if a login or logout happened meanwhile
package session
