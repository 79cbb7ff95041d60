// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/jeranaias/agrinova-tui/internal/api"
	"github.com/jeranaias/agrinova-tui/internal/config"
	"github.com/jeranaias/agrinova-tui/internal/panels"
	"github.com/jeranaias/agrinova-tui/internal/ui/styles"
	"github.com/jeranaias/agrinova-tui/internal/util"
)

// =============================================================================
// INPUT
// =============================================================================

// lineSource yields REPL input lines.
type lineSource interface {
	ReadInput(prompt string) (string, error)
	Close()
}

// historyInput is a liner-backed source with history navigation. History
// is kept in chat_history under the config directory.
type historyInput struct {
	line        *liner.State
	historyFile string
}

func newHistoryInput() *historyInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	h := &historyInput{line: line, historyFile: filepath.Join(dir, "chat_history")}
	if f, err := os.Open(h.historyFile); err == nil {
		h.line.ReadHistory(f)
		f.Close()
	}
	return h
}

func (h *historyInput) ReadInput(prompt string) (string, error) {
	input, err := h.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if !util.IsBlank(input) {
		h.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with owner-only permissions and restores the terminal.
func (h *historyInput) Close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(h.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			h.line.WriteHistory(f)
			f.Close()
		}
	}
	h.line.Close()
}

// pipedInput reads lines from a non-terminal stdin without echoing prompts.
type pipedInput struct {
	p *prompter
}

func (s pipedInput) ReadInput(string) (string, error) {
	line, err := s.p.Line("")
	if errors.Is(err, errNoInput) {
		return "", io.EOF
	}
	return line, err
}

func (pipedInput) Close() {}

// =============================================================================
// RENDERING
// =============================================================================

// replyRenderer formats assistant replies, as markdown when enabled.
type replyRenderer struct {
	md *glamour.TermRenderer
}

func newReplyRenderer(markdown bool, theme string) replyRenderer {
	if !markdown || !ColorsEnabled() {
		return replyRenderer{}
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.NewTheme(theme).GlamourStyle()),
		glamour.WithWordWrap(GetTerminalWidth()-4),
	)
	if err != nil {
		return replyRenderer{}
	}
	return replyRenderer{md: r}
}

func (r replyRenderer) Render(text string) string {
	if r.md != nil {
		if out, err := r.md.Render(text); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return text
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

func newChatCommand(envOf func() *Env) *cobra.Command {
	var (
		message    string
		lang       string
		noMarkdown bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the farming assistant",
		Long: `Without --message, chat starts a line-mode conversation. Type /quit or
press Ctrl+D to leave. Input history is kept between runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envOf()

			c := &panels.Chat{Language: env.Config.Chat.Language}
			if lang != "" {
				if _, err := language.Parse(lang); err != nil {
					return &UsageError{Message: "invalid --language " + lang + ": not a BCP 47 tag"}
				}
				c.Language = lang
			}
			render := newReplyRenderer(env.Config.Chat.Markdown && !noMarkdown, env.Config.UI.Theme)
			out := cmd.OutOrStdout()

			if message != "" {
				return sendChat(cmd, env, c, render, message)
			}

			var src lineSource
			if cmd.InOrStdin() == os.Stdin && IsTTY() {
				src = newHistoryInput()
				fmt.Fprintln(out, DimStyle.Render("Ask about crops, pests or weather. /quit to leave."))
			} else {
				src = pipedInput{p: newPrompter(cmd.InOrStdin(), out)}
			}
			defer src.Close()

			for {
				input, err := src.ReadInput(UserStyle.Render("you> "))
				if err != nil {
					if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
						return nil
					}
					return err
				}
				input = strings.TrimSpace(input)
				switch input {
				case "":
					continue
				case "/quit", "/exit":
					return nil
				}
				// A failed message does not end the conversation.
				if err := sendChat(cmd, env, c, render, input); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("Error:"), err)
				}
			}
		},
	}

	f := cmd.Flags()
	f.StringVarP(&message, "message", "m", "", "send one message and print the reply")
	f.StringVar(&lang, "language", "", "reply language as a BCP 47 tag (overrides chat.language)")
	f.BoolVar(&noMarkdown, "no-markdown", false, "print replies as plain text")
	return cmd
}

// sendChat sends one message and prints the reply.
func sendChat(cmd *cobra.Command, env *Env, c *panels.Chat, render replyRenderer, text string) error {
	if err := c.Submit(cmd.Context(), env.Client, text); err != nil {
		env.Logger.Debug("chat failed", zap.Error(err))
		return &failure{text: api.Describe(err, api.FallbackChat), err: err}
	}
	log := c.Log()
	reply := log[len(log)-1]
	fmt.Fprintln(cmd.OutOrStdout(), BotStyle.Render("bot>"), render.Render(reply.Text))
	return nil
}
