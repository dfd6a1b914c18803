package main

import (
	"context"
	"fmt"

	"supplychain/internal/alertfeed"
	"supplychain/internal/client"
	"supplychain/internal/config"
	"supplychain/internal/push"
	"supplychain/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show low-stock alerts, refreshed whenever inventory changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			// the terminal belongs to the UI, so logs go to a file or nowhere
			logger := zap.NewNop()
			if logFile != "" {
				zc := zap.NewDevelopmentConfig()
				zc.OutputPaths = []string{logFile}
				zc.ErrorOutputPaths = []string{logFile}
				if logger, err = zc.Build(); err != nil {
					return err
				}
				defer logger.Sync()
			}
			return watch(cmd.Context(), cfg.Client, logger)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")
	return cmd
}

// newFeed wires an alert feed to the API: fetches go to the low-stock
// endpoint and push signals come from the inventory topic.
func newFeed(c *client.Client, logger *zap.Logger) *alertfeed.Feed {
	subscribe := func(ctx context.Context) (alertfeed.Subscription, error) {
		sub, err := c.Subscribe(ctx, push.InventoryTopic)
		if err != nil {
			return nil, err
		}
		return sub, nil
	}
	return alertfeed.New(c.LowStock, subscribe, logger)
}

func watch(ctx context.Context, cfg config.ClientConfig, logger *zap.Logger) error {
	c := client.New(cfg)
	feed := newFeed(c, logger)

	p := tea.NewProgram(tui.New(feed.Refresh, c.Session().Username), tea.WithAltScreen(), tea.WithContext(ctx))
	feed.OnChange(tui.Listener(p))

	defer mountInBackground(ctx, feed, logger)()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run alert view: %w", err)
	}
	return nil
}

// mountInBackground mounts feed without blocking the UI. The returned stop
// cancels a pending mount, waits for it to settle and then unmounts, so a
// subscription opened late is still closed.
func mountInBackground(ctx context.Context, feed *alertfeed.Feed, logger *zap.Logger) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := feed.Mount(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("alert feed not mounted", zap.Error(err))
		}
	}()
	return func() {
		cancel()
		<-done
		feed.Unmount()
	}
}
