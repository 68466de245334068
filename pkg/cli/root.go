// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func NewRootCommand(opts Options) *cobra.Command {
	o := &opts

	root := &cobra.Command{
		Use:           "contact-relay",
		Short:         "Relay website contact form submissions to email",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&o.ConfigPath, "config", o.ConfigPath, "Path to YAML config file (env CONTACT_RELAY_CONFIG)")
	root.PersistentFlags().StringVar(&o.EnvFile, "env-file", o.EnvFile, "Dotenv file loaded before configuration (env CONTACT_RELAY_ENV_FILE)")
	root.PersistentFlags().BoolVar(&o.Debug, "debug", o.Debug, "Enable debug level logging (env DEBUG)")

	root.AddCommand(
		newServeCommand(o),
		newVerifyCommand(o),
		newSendTestCommand(o),
		NewVersionCommand(),
	)

	// serve is the default action
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, o)
	}

	return root
}

// Execute runs the command tree with args and options taken from the
// environment, returning the process exit code.
func Execute(args []string) int {
	root := NewRootCommand(DefaultOptions())
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}
	return 0
}
