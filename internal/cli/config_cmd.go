// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/agrinova-tui/internal/config"
)

// newConfigCommand builds "config". Its subcommands read the file directly
// so a config that fails validation can still be inspected and fixed.
func newConfigCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Show or change settings",
		Annotations: map[string]string{annotationNoEnv: "true"},
	}
	cmd.AddCommand(
		newConfigShowCommand(flags),
		newConfigGetCommand(flags),
		newConfigSetCommand(flags),
		newConfigPathCommand(flags),
	)
	return cmd
}

// noEnv marks a config subcommand; cobra does not inherit annotations.
func noEnv(c *cobra.Command) *cobra.Command {
	c.Annotations = map[string]string{annotationNoEnv: "true"}
	return c
}

func newConfigShowCommand(flags *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(flags)
			if err != nil {
				return err
			}
			out, err := encodeConfig(cfg, format)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "toml", "output format: toml, json or yaml")
	return noEnv(cmd)
}

func encodeConfig(cfg *config.Config, format string) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		return cfg.String() + "\n", nil
	case "yaml", "yml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	return "", &UsageError{Message: "unknown format " + format + " (want toml, json or yaml)"}
}

func newConfigGetCommand(flags *globalFlags) *cobra.Command {
	return noEnv(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Long:  "Keys use dot notation: " + strings.Join(config.GetAllKeys(), ", "),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(flags)
			if err != nil {
				return err
			}
			v, err := cfg.Get(args[0])
			if err != nil {
				return &UsageError{Message: err.Error()}
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	})
}

func newConfigSetCommand(flags *globalFlags) *cobra.Command {
	return noEnv(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting and save it",
		Long:  "Keys use dot notation: " + strings.Join(config.GetAllKeys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := writablePath(flags)
			if err != nil {
				return err
			}

			// Flags are not saved, only what the file already holds.
			cfg := config.Default()
			src := path
			if !fileExists(src) && flags.configPath == "" {
				src = config.ActivePath()
			}
			if src != "" && fileExists(src) {
				if cfg, err = config.LoadFromPath(src); err != nil {
					return &ConfigError{Err: err}
				}
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return &UsageError{Message: err.Error()}
			}
			if err := cfg.Validate(); err != nil {
				return &UsageError{Message: err.Error()}
			}
			if err := config.EnsureConfigDir(); err != nil {
				return &ConfigError{Err: err}
			}
			if err := config.SaveTOML(cfg, path); err != nil {
				return &ConfigError{Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Saved")+" "+args[0]+" = "+args[1]+DimStyle.Render(" ("+path+")"))
			return nil
		},
	})
}

// writablePath is where config set saves. Only TOML is written, so a JSON or
// YAML file is superseded by config.toml, which Load prefers.
func writablePath(flags *globalFlags) (string, error) {
	path := flags.configPath
	if path == "" {
		path = config.ActivePath()
	}
	if path != "" && strings.EqualFold(filepath.Ext(path), ".toml") {
		return path, nil
	}
	if flags.configPath != "" {
		return "", &UsageError{Message: "config set only writes TOML files: " + flags.configPath}
	}
	p, err := config.ConfigPathTOML()
	if err != nil {
		return "", &ConfigError{Err: err}
	}
	return p, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func newConfigPathCommand(flags *globalFlags) *cobra.Command {
	return noEnv(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if flags.configPath != "" {
				fmt.Fprintln(out, flags.configPath)
				return nil
			}
			if p := config.ActivePath(); p != "" {
				fmt.Fprintln(out, p)
				return nil
			}
			p, err := config.ConfigPathTOML()
			if err != nil {
				return &ConfigError{Err: err}
			}
			fmt.Fprintln(out, p+DimStyle.Render(" (not created yet)"))
			return nil
		},
	})
}
