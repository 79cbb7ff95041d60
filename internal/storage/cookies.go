// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrStoreClosed   = errors.New("cookie store closed")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// COOKIE STORE
// =============================================================================

// CookieStore is an http.CookieJar that survives restarts.
//
// Matching and expiry follow net/http/cookiejar; every cookie the server
// sets or clears is mirrored into a SQLite table and replayed into the jar
// when the store is opened. Session cookies (no expiry) are kept too, the
// way a browser restoring its session would.
type CookieStore struct {
	db     *sql.DB
	logger *zap.Logger

	mu     sync.Mutex
	jar    *cookiejar.Jar
	closed bool
}

const cookieSchema = `
CREATE TABLE IF NOT EXISTS cookies (
	origin    TEXT    NOT NULL,
	domain    TEXT    NOT NULL,
	path      TEXT    NOT NULL,
	name      TEXT    NOT NULL,
	value     TEXT    NOT NULL,
	expires   INTEGER NOT NULL DEFAULT 0,
	secure    INTEGER NOT NULL DEFAULT 0,
	http_only INTEGER NOT NULL DEFAULT 0,
	updated   INTEGER NOT NULL,
	PRIMARY KEY (domain, path, name)
)`

// OpenCookieStore opens (creating if needed) the cookie database at path
// and loads its unexpired cookies. logger may be nil.
func OpenCookieStore(path string, logger *zap.Logger) (*CookieStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", cookieSchema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
	}

	// The file holds a live credential.
	_ = os.Chmod(path, 0600)

	s := &CookieStore{
		db:     db,
		logger: logger.Named("cookies"),
		jar:    newJar(),
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func newJar() *cookiejar.Jar {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return jar
}

// load replays stored cookies into the jar and drops expired rows.
func (s *CookieStore) load() error {
	now := time.Now()
	if _, err := s.db.Exec(`DELETE FROM cookies WHERE expires != 0 AND expires <= ?`, now.Unix()); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	rows, err := s.db.Query(`SELECT origin, domain, path, name, value, expires, secure, http_only FROM cookies`)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	loaded := 0
	for rows.Next() {
		var (
			origin, domain, path, name, value string
			expires                           int64
			secure, httpOnly                  bool
		)
		if err := rows.Scan(&origin, &domain, &path, &name, &value, &expires, &secure, &httpOnly); err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		u, err := url.Parse(origin)
		if err != nil {
			continue
		}

		c := &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     path,
			Secure:   secure,
			HttpOnly: httpOnly,
		}
		// Host-only cookies were stored under the bare host.
		if domain != u.Hostname() {
			c.Domain = domain
		}
		if expires != 0 {
			c.Expires = time.Unix(expires, 0)
		}
		s.jar.SetCookies(u, []*http.Cookie{c})
		loaded++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	s.logger.Debug("cookies loaded", zap.Int("count", loaded))
	return nil
}

// SetCookies implements http.CookieJar.
func (s *CookieStore) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jar.SetCookies(u, cookies)
	if s.closed {
		return
	}

	now := time.Now()
	origin := u.Scheme + "://" + u.Host
	for _, c := range cookies {
		domain := c.Domain
		if domain == "" {
			domain = u.Hostname()
		}
		if len(domain) > 0 && domain[0] == '.' {
			domain = domain[1:]
		}
		path := c.Path
		if path == "" || path[0] != '/' {
			path = defaultPath(u.Path)
		}

		var err error
		if expired(c, now) {
			_, err = s.db.Exec(`DELETE FROM cookies WHERE domain = ? AND path = ? AND name = ?`, domain, path, c.Name)
		} else {
			var expires int64
			switch {
			case c.MaxAge > 0:
				expires = now.Add(time.Duration(c.MaxAge) * time.Second).Unix()
			case !c.Expires.IsZero():
				expires = c.Expires.Unix()
			}
			_, err = s.db.Exec(`
				INSERT INTO cookies (origin, domain, path, name, value, expires, secure, http_only, updated)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (domain, path, name) DO UPDATE SET
					origin = excluded.origin,
					value = excluded.value,
					expires = excluded.expires,
					secure = excluded.secure,
					http_only = excluded.http_only,
					updated = excluded.updated`,
				origin, domain, path, c.Name, c.Value, expires, c.Secure, c.HttpOnly, now.Unix())
		}
		if err != nil {
			s.logger.Warn("failed to persist cookie", zap.String("name", c.Name), zap.Error(err))
		}
	}
}

// Cookies implements http.CookieJar.
func (s *CookieStore) Cookies(u *url.URL) []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jar.Cookies(u)
}

// Count returns the number of persisted cookies.
func (s *CookieStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrStoreClosed
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM cookies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n, nil
}

// Clear forgets every cookie, in memory and on disk.
func (s *CookieStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.jar = newJar()
	if _, err := s.db.Exec(`DELETE FROM cookies`); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// Close closes the database. The in-memory jar keeps working.
func (s *CookieStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func expired(c *http.Cookie, now time.Time) bool {
	if c.MaxAge < 0 {
		return true
	}
	return c.MaxAge == 0 && !c.Expires.IsZero() && !c.Expires.After(now)
}

// defaultPath is the RFC 6265 section 5.1.4 default cookie path.
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := len(p) - 1
	for i > 0 && p[i] != '/' {
		i--
	}
	if i == 0 {
		return "/"
	}
	return p[:i]
}
