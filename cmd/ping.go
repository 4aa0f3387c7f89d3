package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ffx64/discord-presence-go/models"
	"github.com/ffx64/discord-presence-go/transport/ipc"
)

func newPingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Handshake with Discord and measure that it answers pings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(nil)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			conn, err := ipc.Dial(ipc.WithLogger(logger))
			if err != nil {
				return err
			}
			defer conn.Close()

			reply, err := conn.Handshake(cfg.ClientID)
			if err != nil {
				return fmt.Errorf("handshake: %w", err)
			}
			out := cmd.OutOrStdout()
			if p, err := models.DecodePayload[json.RawMessage](reply.Payload); err == nil && p.Data != nil {
				if ready, ok := models.EventReady.ParseData(*p.Data).(models.ReadyEvent); ok && ready.User != nil {
					fmt.Fprintf(out, "connected as %s\n", ready.User.Username)
				}
			}

			op, err := conn.Ping()
			if err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			fmt.Fprintf(out, "ping answered with %s\n", op)
			return nil
		},
	}
}
