package commands

import (
	"context"
	"time"

	"github.com/brainink/hub/internal/preload"
	"github.com/brainink/hub/pkg/utils"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// DataCommands returns the commands reading the preloaded data.
func DataCommands(deps *CLIDependencies) []*cli.Command {
	return []*cli.Command{
		{
			Name:   "snapshot",
			Usage:  "Preload and print all data for the logged-in user",
			Action: handleSnapshot(deps),
		},
		{
			Name:  "notifications",
			Usage: "Print the notification feed",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "grouped",
					Usage: "Group notifications by source instead of one flat list",
				},
			},
			Action: handleNotifications(deps),
		},
		{
			Name:      "refresh",
			Usage:     "Re-fetch one category of data",
			ArgsUsage: "CATEGORY",
			Description: `Re-fetch one category and print the regenerated notification feed.

Categories: user, friends, achievements, tournaments, all`,
			Action: handleRefresh(deps),
		},
		{
			Name:      "conversation",
			Usage:     "Print the cached conversation preview with a friend",
			ArgsUsage: "USERNAME",
			Action:    handleConversation(deps),
		},
		{
			Name:  "watch",
			Usage: "Keep the data preloaded and log the notification count on every refresh",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:  "interval",
					Usage: "Time between freshness checks",
					Value: time.Minute,
				},
			},
			Action: handleWatch(deps),
		},
	}
}

// handleSnapshot handles the 'snapshot' command.
func handleSnapshot(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		snap, err := deps.Cache.Preload(ctx)
		if err != nil {
			return err
		}
		return printJSON(deps, snap)
	}
}

// handleNotifications handles the 'notifications' command.
func handleNotifications(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		snap, err := deps.Cache.Preload(ctx)
		if err != nil {
			return err
		}

		if c.Bool("grouped") {
			return printJSON(deps, snap.Notifications)
		}
		return printJSON(deps, snap.Notifications.All())
	}
}

// handleRefresh handles the 'refresh' command.
func handleRefresh(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 1 {
			return ErrCategoryRequired
		}

		category, err := preload.ParseCategory(c.Args().First())
		if err != nil {
			return err
		}

		// A refresh patches an existing snapshot
		if _, err := deps.Cache.Preload(ctx); err != nil {
			return err
		}

		if err := deps.Cache.Refresh(ctx, category); err != nil {
			return err
		}

		return printJSON(deps, deps.Cache.Notifications())
	}
}

// handleConversation handles the 'conversation' command.
func handleConversation(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 1 {
			return ErrUsernameRequired
		}

		if _, err := deps.Cache.Preload(ctx); err != nil {
			return err
		}

		return printJSON(deps, deps.Cache.Conversation(c.Args().First()))
	}
}

// handleWatch handles the 'watch' command.
func handleWatch(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		interval := c.Duration("interval")

		var last time.Time

		for !utils.ContextGuard(ctx) {
			snap, err := deps.Cache.Preload(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}

			if !snap.LastUpdated.Equal(last) {
				last = snap.LastUpdated
				deps.Logger.Info("Preloaded data updated",
					zap.Time("lastUpdated", last),
					zap.Int("notifications", snap.Notifications.Count()))
			}

			if !utils.IntervalSleep(ctx, interval, deps.Logger, "watch") {
				break
			}
		}

		return nil
	}
}
