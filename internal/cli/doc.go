// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the agrinova command tree.
//
// With no subcommand the root command starts the terminal UI through the
// RunTUI callback supplied by main. Every other command runs one backend
// operation and prints the result, which makes the client scriptable.
//
// # Usage
//
//	os.Exit(cli.Execute(cli.Options{Version: Version, RunTUI: runTUI}))
//
// # Commands
//
//   - whoami, login, signup, logout: session management
//   - predict, weather, market, chat: one call per dashboard panel
//   - status: backend health and current identity
//   - config: show, get, set and locate the config file
//   - version: build information
//
// Persistent flags --api-url, --config, --timeout and --verbose apply to
// every command. Errors map to process exit codes, see ExitCode.
package cli
