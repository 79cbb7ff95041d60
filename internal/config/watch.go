// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 150 * time.Millisecond

// Watch reloads the config file at path whenever it changes and hands the
// result to onChange. An empty path watches the default TOML location so a
// file created later is picked up.
//
// The parent directory is watched rather than the file itself because
// editors and SaveTOML replace the file by rename. Watching stops when ctx
// is done.
func Watch(ctx context.Context, path string, onChange func(*Config, error)) error {
	if path == "" {
		p, err := ConfigPathTOML()
		if err != nil {
			return err
		}
		path = p
	}
	path = filepath.Clean(path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start config watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go watchLoop(ctx, w, path, onChange)
	return nil
}

func watchLoop(ctx context.Context, w *fsnotify.Watcher, path string, onChange func(*Config, error)) {
	defer w.Close()

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				reload = time.After(watchDebounce)
			}

		case <-reload:
			reload = nil
			if _, err := os.Stat(path); err != nil {
				// Renamed away or removed; wait for the replacement.
				continue
			}
			onChange(LoadFromPath(path))

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			onChange(nil, err)
		}
	}
}
