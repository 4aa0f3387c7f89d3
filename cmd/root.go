package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	return buildRootCommand(newCommandContext())
}

func buildRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "discord-presence",
		Short:         "Discord rich presence over the local IPC socket",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path (TOML)")
	flags.Uint64Var(&ctx.clientID, "client-id", 0, "Discord application id")
	flags.StringVar(&ctx.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&ctx.logFormat, "log-format", "", "Log format: auto, text or json")
	ctx.flags = flags

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newPingCommand(ctx))

	return rootCmd
}
