// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/agrinova-tui/internal/api"
	"github.com/jeranaias/agrinova-tui/internal/session"
	"github.com/jeranaias/agrinova-tui/internal/ui/styles"
)

// statusReport is what status found out.
type statusReport struct {
	health    string
	healthErr error
	latency   time.Duration

	user       *api.User
	profileErr error
}

// checkStatus asks for backend health and the current identity at once.
// Both checks always run to completion so one failing does not hide the
// other.
func checkStatus(cmd *cobra.Command, client *api.Client) statusReport {
	var (
		r statusReport
		g errgroup.Group
	)
	ctx := cmd.Context()

	g.Go(func() error {
		start := time.Now()
		r.health, r.healthErr = client.Health(ctx)
		r.latency = time.Since(start)
		return nil
	})
	g.Go(func() error {
		res := session.Resolve(ctx, client, 0)
		r.user, r.profileErr = res.User, res.Err
		return nil
	})
	_ = g.Wait()
	return r
}

func newStatusCommand(envOf func() *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the backend and the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envOf()
			r := checkStatus(cmd, env.Client)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, TitleStyle.Render("AGRINOVA status"))
			fmt.Fprintln(out, field("Backend", env.Client.BaseURL()))

			if r.healthErr != nil {
				fmt.Fprintln(out, field("Health", ErrorStyle.Render(styles.StatusIndicators.Error+" "+api.Describe(r.healthErr, "unhealthy"))))
			} else {
				fmt.Fprintln(out, field("Health", SuccessStyle.Render(styles.StatusIndicators.Success+" "+r.health)+
					DimStyle.Render(" ("+r.latency.Round(time.Millisecond).String()+")")))
			}

			switch {
			case r.user != nil:
				fmt.Fprintln(out, field("Signed in", r.user.Username))
			case api.IsNetwork(r.profileErr):
				fmt.Fprintln(out, field("Signed in", DimStyle.Render("unknown")))
			default:
				fmt.Fprintln(out, field("Signed in", DimStyle.Render("no")))
			}

			persist := "off"
			if env.Cookies != nil {
				persist = "on"
			}
			fmt.Fprintln(out, field("Persist", persist))

			if r.healthErr != nil {
				return describe(r.healthErr, "Backend is unhealthy")
			}
			return nil
		},
	}
}
