package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ffx64/discord-presence-go/client"
	"github.com/ffx64/discord-presence-go/event"
	"github.com/ffx64/discord-presence-go/models"
	"github.com/ffx64/discord-presence-go/presence"
)

type runOptions struct {
	state      string
	details    string
	largeImage string
	largeText  string
	smallImage string
	smallText  string
	buttons    []string
	showTime   bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Show an activity until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			extra := map[string]any{}
			if cmd.Flags().Changed("show-time") {
				extra["show_time"] = opts.showTime
			}
			activity, err := opts.activity()
			if err != nil {
				return err
			}
			return runPresence(cmd.Context(), ctx, extra, activity)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.state, "state", "", "Activity state line")
	flags.StringVar(&opts.details, "details", "", "Activity details line")
	flags.StringVar(&opts.largeImage, "large-image", "", "Large image asset key or URL")
	flags.StringVar(&opts.largeText, "large-text", "", "Large image hover text")
	flags.StringVar(&opts.smallImage, "small-image", "", "Small image asset key or URL")
	flags.StringVar(&opts.smallText, "small-text", "", "Small image hover text")
	flags.StringArrayVar(&opts.buttons, "button", nil, "Button as label=url (repeatable, at most 2 are shown)")
	flags.BoolVar(&opts.showTime, "show-time", true, "Show elapsed time")

	return cmd
}

func (o runOptions) activity() (models.Activity, error) {
	a := models.NewActivity().WithState(o.state).WithDetails(o.details)
	if o.largeImage != "" || o.smallImage != "" {
		a.WithAssets(models.Assets{
			LargeImage: o.largeImage,
			LargeText:  o.largeText,
			SmallImage: o.smallImage,
			SmallText:  o.smallText,
		})
	}
	for _, b := range o.buttons {
		label, url, ok := strings.Cut(b, "=")
		if !ok || strings.TrimSpace(label) == "" || strings.TrimSpace(url) == "" {
			return models.Activity{}, fmt.Errorf("button %q: want label=url", b)
		}
		a.AppendButton(label, url)
	}
	if a.IsEmpty() {
		return models.Activity{}, errors.New("nothing to show: set --state, --details or an image")
	}
	return *a, nil
}

func runPresence(cmdCtx context.Context, ctx *commandContext, extra map[string]any, activity models.Activity) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig(extra)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	lock := flock.New(cfg.LockFile)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another discord-presence is running for client %d (lock %s)", cfg.ClientID, cfg.LockFile)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release lock", slog.Any("error", err))
		}
	}()

	c := client.NewWithErrorConfig(cfg.ClientID, cfg.ErrorSleep, cfg.RetryLimit,
		client.WithLogger(logger),
		client.WithPollInterval(cfg.PollInterval),
	)
	adapter := presence.NewWithClient(presence.Config{
		ClientID: cfg.ClientID,
		ShowTime: cfg.ShowTime,
		Interval: cfg.PollInterval,
	}, c, presence.NewState(activity), logger)

	ready := make(chan event.Context, 1)
	h := c.OnReady(func(ec event.Context) {
		select {
		case ready <- ec:
		default:
		}
	})
	defer h.Remove()

	g, gctx := errgroup.WithContext(signalCtx)
	g.Go(func() error {
		return adapter.Run(gctx)
	})
	g.Go(func() error {
		select {
		case ec := <-ready:
			attrs := []any{slog.Uint64("client_id", cfg.ClientID)}
			if data, ok := ec.Data.(models.ReadyEvent); ok && data.User != nil {
				attrs = append(attrs, slog.String("user", data.User.Username))
			}
			logger.Info("connected to discord", attrs...)
		case <-gctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("presence cleared")
	return nil
}
