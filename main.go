// AGRINOVA TUI - A terminal client for the AGRINOVA farming assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/agrinova-tui/internal/app"
	"github.com/jeranaias/agrinova-tui/internal/cli"
	"github.com/jeranaias/agrinova-tui/internal/config"
	"github.com/jeranaias/agrinova-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	os.Exit(cli.Execute(cli.Options{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		RunTUI:    runTUI,
	}))
}

// runTUI starts the full-screen client and blocks until it exits.
func runTUI(ctx context.Context, env *cli.Env) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	theme := styles.NewTheme(env.Config.UI.Theme)
	a := app.New(ctx, env.Client, env.Logger)
	m := NewModel(a, env.Client, env.Config, theme)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	// With no config file yet, the default location is watched so one
	// written by "agrinova config set" is picked up live.
	err := config.Watch(ctx, env.ConfigPath, func(cfg *config.Config, err error) {
		p.Send(ConfigReloadedMsg{Config: cfg, Err: err})
	})
	if err != nil {
		env.Logger.Warn("config watch unavailable", zap.Error(err))
	}

	env.Logger.Info("tui started", zap.String("api", env.Client.BaseURL()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running agrinova: %w", err)
	}
	return nil
}
