// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/agrinova-tui/internal/api"
	"github.com/jeranaias/agrinova-tui/internal/config"
	"github.com/jeranaias/agrinova-tui/internal/logging"
	"github.com/jeranaias/agrinova-tui/internal/storage"
)

// Options are fixed by the binary.
type Options struct {
	Version   string
	GitCommit string
	BuildDate string

	// RunTUI starts the full-screen client. The root command calls it when
	// no subcommand is given.
	RunTUI func(ctx context.Context, env *Env) error
}

// Env is what a command runs against. It is built once per invocation from
// the config file, the environment and the persistent flags.
type Env struct {
	Config *config.Config

	// ConfigPath is the file the config came from, or "" for defaults.
	ConfigPath string

	Logger  *zap.Logger
	Client  *api.Client
	Cookies *storage.CookieStore // nil when session.persist is off
}

// Close releases the cookie store and flushes the logger.
func (e *Env) Close() {
	if e.Cookies != nil {
		if err := e.Cookies.Close(); err != nil {
			e.Logger.Warn("closing cookie store", zap.Error(err))
		}
	}
	logging.Sync(e.Logger)
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	apiURL     string
	configPath string
	timeout    time.Duration
	verbose    bool
}

// annotationNoEnv marks commands that must not build an Env, such as the
// config commands that have to work on a broken config file.
const annotationNoEnv = "agrinova/no-env"

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the agrinova command tree.
func NewRootCommand(opts Options) *cobra.Command {
	flags := &globalFlags{}
	var env *Env

	// Post-run hooks are skipped when a command fails, so commands close
	// the Env themselves.
	closeEnv := func() {
		if env != nil {
			env.Close()
			env = nil
		}
	}

	root := &cobra.Command{
		Use:   "agrinova",
		Short: "AGRINOVA farming assistant client",
		Long: `agrinova talks to an AGRINOVA backend: plant disease prediction from leaf
photos, weather, the farming chatbot and crop market prices.

Run without arguments to start the interactive terminal UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoEnv] != "" || cmd.RunE == nil {
				return nil
			}
			tui := cmd.Parent() == nil
			var err error
			env, err = newEnv(flags, opts, tui, cmd.ErrOrStderr())
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer closeEnv()
			if opts.RunTUI == nil {
				return cmd.Help()
			}
			if err := RequiresTTY("start the terminal UI"); err != nil {
				return err
			}
			return opts.RunTUI(cmd.Context(), env)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.apiURL, "api-url", "", "backend base URL (overrides api.base_url)")
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.agrinova/config.toml)")
	pf.DurationVar(&flags.timeout, "timeout", 0, "per-request timeout, e.g. 10s (overrides api.timeout_secs)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging to stderr")

	envOf := func() *Env { return env }
	root.AddCommand(
		newWhoamiCommand(envOf),
		newLoginCommand(envOf),
		newSignupCommand(envOf),
		newLogoutCommand(envOf),
		newPredictCommand(envOf),
		newWeatherCommand(envOf),
		newMarketCommand(envOf),
		newChatCommand(envOf),
		newStatusCommand(envOf),
		newConfigCommand(flags),
		newVersionCommand(opts),
	)
	for _, c := range root.Commands() {
		if c.RunE == nil || c.Annotations[annotationNoEnv] != "" {
			continue
		}
		run := c.RunE
		c.RunE = func(cmd *cobra.Command, args []string) error {
			defer closeEnv()
			return run(cmd, args)
		}
	}
	return root
}

// Execute runs the command tree against os.Args and returns the exit code.
func Execute(opts Options) int {
	root := NewRootCommand(opts)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		return ExitCode(err)
	}
	return ExitSuccess
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

// loadConfig reads the config named by --config, or the default one, and
// applies the flag overrides.
func loadConfig(flags *globalFlags) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if flags.configPath != "" {
		path = flags.configPath
		cfg, err = config.LoadFromPath(path)
	} else {
		path = config.ActivePath()
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, "", &ConfigError{Err: err}
	}

	if flags.apiURL != "" {
		cfg.API.BaseURL = flags.apiURL
	}
	if flags.timeout > 0 {
		secs := int(flags.timeout.Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		cfg.API.TimeoutSecs = secs
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, "", &ConfigError{Err: fmt.Errorf("invalid flags: %w", err)}
	}
	return cfg, path, nil
}

func newEnv(flags *globalFlags, opts Options, tui bool, stderr io.Writer) (*Env, error) {
	cfg, path, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	logOpts := logging.Options{Level: cfg.Log.Level, Verbose: flags.verbose}
	if tui {
		if logOpts.File, err = cfg.LogFilePath(); err != nil {
			return nil, &ConfigError{Err: err}
		}
	} else {
		logOpts.Stderr = flags.verbose
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	env := &Env{Config: cfg, ConfigPath: path, Logger: logger}

	var jar http.CookieJar
	if cfg.Session.Persist {
		dbPath, err := cfg.CookieDBPath()
		if err != nil {
			return nil, &ConfigError{Err: err}
		}
		store, err := storage.OpenCookieStore(dbPath, logger)
		if err != nil {
			fmt.Fprintln(stderr, WarningStyle.Render("Warning:"), "session will not be remembered:", err)
			logger.Warn("cookie store unavailable", zap.Error(err))
		} else {
			env.Cookies = store
			jar = store
		}
	}

	version := opts.Version
	if version == "" {
		version = "dev"
	}
	env.Client = api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout(),
		RateLimit: cfg.API.RateLimit,
		RateBurst: cfg.API.RateBurst,
		Jar:       jar,
		UserAgent: "agrinova-tui/" + version,
		Logger:    logger,
	})

	logger.Debug("environment ready",
		zap.String("api", cfg.API.BaseURL),
		zap.String("config", path),
		zap.Bool("persist", env.Cookies != nil))
	return env, nil
}
