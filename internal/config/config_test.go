// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// isolate points the config directory at a fresh temp dir and clears
// AGRINOVA_* overrides for the duration of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AGRINOVA_HOME", dir)
	for _, k := range []string{"AGRINOVA_API_URL", "AGRINOVA_TIMEOUT", "AGRINOVA_LANGUAGE", "AGRINOVA_LOG_LEVEL", "AGRINOVA_NO_PERSIST"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.API.BaseURL != "http://127.0.0.1:5000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout() != 15*time.Second {
		t.Errorf("Timeout() = %v, want 15s", cfg.API.Timeout())
	}
	if cfg.API.RateLimit != 5 || cfg.API.RateBurst != 5 {
		t.Errorf("rate = %v/%d, want 5/5", cfg.API.RateLimit, cfg.API.RateBurst)
	}
	if !cfg.Session.Persist {
		t.Error("Session.Persist should default to true")
	}
	if !cfg.Chat.Markdown {
		t.Error("Chat.Markdown should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "https url", modify: func(c *Config) { c.API.BaseURL = "https://agrinova.example" }},
		{name: "empty url", modify: func(c *Config) { c.API.BaseURL = "" }, wantErr: "api.base_url: cannot be empty"},
		{name: "ftp url", modify: func(c *Config) { c.API.BaseURL = "ftp://host" }, wantErr: "scheme must be http or https"},
		{name: "no host", modify: func(c *Config) { c.API.BaseURL = "http://" }, wantErr: "missing host"},
		{name: "timeout too small", modify: func(c *Config) { c.API.TimeoutSecs = 0 }, wantErr: "api.timeout_secs"},
		{name: "timeout too large", modify: func(c *Config) { c.API.TimeoutSecs = 301 }, wantErr: "api.timeout_secs"},
		{name: "timeout upper bound", modify: func(c *Config) { c.API.TimeoutSecs = 300 }},
		{name: "negative rate", modify: func(c *Config) { c.API.RateLimit = -1 }, wantErr: "api.rate_limit"},
		{name: "unlimited rate", modify: func(c *Config) { c.API.RateLimit = 0; c.API.RateBurst = 0 }},
		{name: "rate without burst", modify: func(c *Config) { c.API.RateBurst = 0 }, wantErr: "api.rate_burst"},
		{name: "valid language", modify: func(c *Config) { c.Chat.Language = "hi-IN" }},
		{name: "invalid language", modify: func(c *Config) { c.Chat.Language = "not a tag!" }, wantErr: "chat.language"},
		{name: "bad theme", modify: func(c *Config) { c.UI.Theme = "neon" }, wantErr: "ui.theme"},
		{name: "bad level", modify: func(c *Config) { c.Log.Level = "trace" }, wantErr: "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var verrs ValidateErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = "nope"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	verrs := err.(ValidateErrors)
	assert.Len(t, verrs, 2)
	assert.Equal(t, "api.base_url", verrs[0].Field)
	assert.Equal(t, "log.level", verrs[1].Field)
	assert.Contains(t, err.Error(), "; ")
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() without files mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, ActivePath())
}

func TestLoadFromPath_Formats(t *testing.T) {
	dir := isolate(t)

	files := map[string]string{
		"config.toml": "[api]\nbase_url = \"http://toml.example:5000/\"\ntimeout_secs = 20\n[chat]\nlanguage = \"en-us\"\n",
		"config.json": `{"api": {"base_url": "http://json.example:5000", "timeout_secs": 20}, "chat": {"language": "en-us"}}`,
		"config.yaml": "api:\n  base_url: http://yaml.example:5000\n  timeout_secs: 20\nchat:\n  language: en-us\n",
	}

	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(body), 0600))

			cfg, err := LoadFromPath(path)
			require.NoError(t, err)

			host := strings.TrimPrefix(name, "config.")
			assert.Equal(t, "http://"+host+".example:5000", cfg.API.BaseURL, "trailing slash is trimmed")
			assert.Equal(t, 20, cfg.API.TimeoutSecs)
			assert.Equal(t, "en-US", cfg.Chat.Language, "language tag is canonicalized")
			// Partial files keep defaults for everything else.
			assert.Equal(t, 5.0, cfg.API.RateLimit)
			assert.True(t, cfg.Chat.Markdown)
		})
	}
}

func TestLoadFromPath_Errors(t *testing.T) {
	dir := isolate(t)

	_, err := LoadFromPath(filepath.Join(dir, "missing.toml"))
	assert.ErrorContains(t, err, "failed to read config")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[api\nbase_url ="), 0600))
	_, err = LoadFromPath(bad)
	assert.ErrorContains(t, err, "failed to decode config")

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("[log]\nlevel = \"chatty\"\n"), 0600))
	_, err = LoadFromPath(invalid)
	assert.ErrorContains(t, err, "invalid config")
}

func TestLoad_TOMLTakesPrecedence(t *testing.T) {
	dir := isolate(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"api":{"base_url":"http://json.example"}}`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[api]\nbase_url = \"http://toml.example\"\n"), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://toml.example", cfg.API.BaseURL)
	assert.Equal(t, filepath.Join(dir, "config.toml"), ActivePath())
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("AGRINOVA_API_URL", "https://env.example")
	t.Setenv("AGRINOVA_TIMEOUT", "30s")
	t.Setenv("AGRINOVA_LANGUAGE", "te")
	t.Setenv("AGRINOVA_LOG_LEVEL", "DEBUG")
	t.Setenv("AGRINOVA_NO_PERSIST", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://env.example", cfg.API.BaseURL)
	assert.Equal(t, 30, cfg.API.TimeoutSecs)
	assert.Equal(t, "te", cfg.Chat.Language)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Session.Persist)
}

func TestApplyEnvOverrides_PlainSeconds(t *testing.T) {
	isolate(t)
	t.Setenv("AGRINOVA_TIMEOUT", "45")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, 45, cfg.API.TimeoutSecs)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("api.base_url")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:5000", v)

	require.NoError(t, cfg.Set("api.timeout_secs", "30"))
	assert.Equal(t, 30, cfg.API.TimeoutSecs)

	require.NoError(t, cfg.Set("api.rate_limit", "2.5"))
	assert.Equal(t, 2.5, cfg.API.RateLimit)

	require.NoError(t, cfg.Set("chat.markdown", "false"))
	assert.False(t, cfg.Chat.Markdown)

	require.NoError(t, cfg.Set("session.cookie_db", "/tmp/c.db"))
	assert.Equal(t, "/tmp/c.db", cfg.Session.CookieDB)

	require.NoError(t, cfg.Set("ui.compact", true))
	assert.True(t, cfg.UI.Compact)

	_, err = cfg.Get("api")
	assert.ErrorContains(t, err, "is a section")

	_, err = cfg.Get("api.nope")
	assert.ErrorContains(t, err, "unknown field: api.nope")

	assert.Error(t, cfg.Set("api.timeout_secs", "soon"))
	assert.Error(t, cfg.Set("", "x"))
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.API.BaseURL = "http://other"

	assert.Equal(t, "http://127.0.0.1:5000", cfg.API.BaseURL)
}

func TestDerivedPaths(t *testing.T) {
	dir := isolate(t)
	cfg := Default()

	p, err := cfg.CookieDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "session.db"), p)

	p, err = cfg.LogFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "agrinova.log"), p)

	cfg.Session.CookieDB = "/var/lib/agrinova/cookies.db"
	p, _ = cfg.CookieDBPath()
	assert.Equal(t, "/var/lib/agrinova/cookies.db", p)
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.API.BaseURL = "https://agrinova.example"
	cfg.Chat.Language = "hi"
	require.NoError(t, SaveTOML(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# agrinova configuration file"))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 8)
	err := Watch(ctx, path, func(cfg *Config, err error) {
		if err != nil {
			return
		}
		select {
		case reloaded <- cfg:
		default:
		}
	})
	require.NoError(t, err)

	updated := Default()
	updated.UI.Compact = true
	require.NoError(t, SaveTOML(updated, path))

	select {
	case cfg := <-reloaded:
		assert.True(t, cfg.UI.Compact)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after config file changed")
	}
	cancel()
}
