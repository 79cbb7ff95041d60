// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage_test

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/agrinova-tui/internal/api"
	"github.com/jeranaias/agrinova-tui/internal/apitest"
	"github.com/jeranaias/agrinova-tui/internal/storage"
)

func openStore(t *testing.T, path string) *storage.CookieStore {
	t.Helper()
	store, err := storage.OpenCookieStore(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

// =============================================================================
// COOKIE STORE TESTS
// =============================================================================

func TestCookieStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	u := mustURL(t, "http://127.0.0.1:5000/login")

	store := openStore(t, path)
	store.SetCookies(u, []*http.Cookie{
		{Name: "session", Value: "abc", Path: "/", HttpOnly: true},
		{Name: "pref", Value: "dark", Path: "/", Expires: time.Now().Add(time.Hour)},
	})
	require.NoError(t, store.Close())

	reopened := openStore(t, path)
	got := reopened.Cookies(mustURL(t, "http://127.0.0.1:5000/profile"))

	values := map[string]string{}
	for _, c := range got {
		values[c.Name] = c.Value
	}
	assert.Equal(t, map[string]string{"session": "abc", "pref": "dark"}, values)

	n, err := reopened.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCookieStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX permissions")
	}
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	openStore(t, path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestCookieStore_ExpiryRemovesRow(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "session.db"))
	u := mustURL(t, "http://127.0.0.1:5000/")

	store.SetCookies(u, []*http.Cookie{{Name: "session", Value: "abc", Path: "/"}})
	store.SetCookies(u, []*http.Cookie{{Name: "session", Value: "", Path: "/", MaxAge: -1}})

	n, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, store.Cookies(u))
}

func TestCookieStore_UpdateReplacesValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	u := mustURL(t, "http://127.0.0.1:5000/")

	store := openStore(t, path)
	store.SetCookies(u, []*http.Cookie{{Name: "session", Value: "one", Path: "/"}})
	store.SetCookies(u, []*http.Cookie{{Name: "session", Value: "two", Path: "/"}})
	require.NoError(t, store.Close())

	reopened := openStore(t, path)
	got := reopened.Cookies(u)
	require.Len(t, got, 1)
	assert.Equal(t, "two", got[0].Value)
}

func TestCookieStore_ExpiredRowsDroppedOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	u := mustURL(t, "http://127.0.0.1:5000/")

	store := openStore(t, path)
	store.SetCookies(u, []*http.Cookie{{Name: "brief", Value: "x", Path: "/", Expires: time.Now().Add(1100 * time.Millisecond)}})
	require.NoError(t, store.Close())

	time.Sleep(2 * time.Second)

	reopened := openStore(t, path)
	n, err := reopened.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, reopened.Cookies(u))
}

func TestCookieStore_Clear(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "session.db"))
	u := mustURL(t, "http://127.0.0.1:5000/")
	store.SetCookies(u, []*http.Cookie{{Name: "session", Value: "abc", Path: "/"}})

	require.NoError(t, store.Clear())
	assert.Empty(t, store.Cookies(u))
	n, err := store.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCookieStore_Closed(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "second close is a no-op")

	_, err := store.Count()
	assert.ErrorIs(t, err, storage.ErrStoreClosed)
	assert.ErrorIs(t, store.Clear(), storage.ErrStoreClosed)

	// The jar still works in memory.
	u := mustURL(t, "http://127.0.0.1:5000/")
	store.SetCookies(u, []*http.Cookie{{Name: "session", Value: "abc", Path: "/"}})
	assert.Len(t, store.Cookies(u), 1)
}

// =============================================================================
// CLIENT INTEGRATION
// =============================================================================

func TestCookieStore_SessionSurvivesRestart(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("asha", "asha@example.com", "s3cret")
	path := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	store := openStore(t, path)
	first := api.NewClientWithConfig(&api.ClientConfig{BaseURL: srv.URL, Jar: store})
	_, err := first.Login(ctx, "asha", "s3cret")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// A new process: fresh store, fresh client.
	reopened := openStore(t, path)
	second := api.NewClientWithConfig(&api.ClientConfig{BaseURL: srv.URL, Jar: reopened})

	user, err := second.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "asha", user.Username)

	require.NoError(t, second.Logout(ctx))
	n, err := reopened.Count()
	require.NoError(t, err)
	assert.Zero(t, n, "logout's expiring cookie removes the stored credential")
}
