// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCommand(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoEnv: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			v := opts.Version
			if v == "" {
				v = "dev"
			}
			fmt.Fprintln(out, "agrinova "+v)
			fmt.Fprintln(out, field("Commit", opts.GitCommit))
			fmt.Fprintln(out, field("Built", opts.BuildDate))
			fmt.Fprintln(out, field("Go", runtime.Version()+" "+runtime.GOOS+"/"+runtime.GOARCH))
		},
	}
}
