// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for agrinova.
//
// Supports TOML, JSON and YAML configuration formats, with sensible defaults,
// .env and environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Backend location, request timeout and rate limit
//   - SessionConfig: Cookie persistence
//   - ChatConfig: Chat language and markdown rendering
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (AGRINOVA_*), including those set by ./.env
//   - ~/.agrinova/config.toml
//   - ~/.agrinova/config.json
//   - ~/.agrinova/config.yaml
//   - Built-in defaults
//
// AGRINOVA_HOME relocates the ~/.agrinova directory.
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Watch for edits while the TUI runs:
//
//	err := config.Watch(ctx, config.ActivePath(), func(cfg *config.Config, err error) {
//	    program.Send(configReloadedMsg{cfg, err})
//	})
package config
