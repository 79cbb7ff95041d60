// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides credential persistence for the agrinova client.
//
// The backend identifies a session by cookie. CookieStore is an
// http.CookieJar backed by SQLite so a login survives restarts.
//
// # Usage
//
//	store, err := storage.OpenCookieStore(path, logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	client := api.NewClientWithConfig(&api.ClientConfig{Jar: store})
//
// # Storage Location
//
// Cookies are stored in ~/.agrinova/session.db with 0600 permissions.
package storage
