package commands

import (
	"context"
	"fmt"

	"github.com/brainink/hub/internal/session"
	"github.com/bytedance/sonic"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// SessionCommands returns the credential management commands.
func SessionCommands(deps *CLIDependencies) []*cli.Command {
	return []*cli.Command{
		{
			Name:      "login",
			Usage:     "Store an access token issued by the BrainInk backend",
			ArgsUsage: "TOKEN",
			Action:    handleLogin(deps),
		},
		{
			Name:   "logout",
			Usage:  "Remove the stored access token and cached data",
			Action: handleLogout(deps),
		},
		{
			Name:   "whoami",
			Usage:  "Show the identity carried by the stored access token",
			Action: handleWhoami(deps),
		},
	}
}

// handleLogin handles the 'login' command.
func handleLogin(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 1 {
			return ErrTokenRequired
		}

		token := c.Args().First()

		claims, err := session.DecodeClaims(token)
		if err != nil {
			return fmt.Errorf("refusing to store token: %w", err)
		}

		userData, err := sonic.Marshal(claims)
		if err != nil {
			return fmt.Errorf("failed to encode user data: %w", err)
		}

		if err := deps.Store.SetToken(ctx, token); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}

		if err := deps.Store.SetUserData(ctx, userData); err != nil {
			return fmt.Errorf("failed to store user data: %w", err)
		}

		// Data cached for a previous identity must not leak into this one
		deps.Cache.Clear()

		deps.Logger.Info("Stored access token",
			zap.Int64("userID", claims.UserID),
			zap.String("username", claims.Username))

		return printJSON(deps, claims)
	}
}

// handleLogout handles the 'logout' command.
func handleLogout(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		if err := deps.Store.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}

		deps.Cache.Clear()
		deps.Logger.Info("Cleared stored session")

		return nil
	}
}

// handleWhoami handles the 'whoami' command.
func handleWhoami(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		token, err := deps.Store.Token(ctx)
		if err != nil {
			return err
		}

		claims, err := session.DecodeClaims(token)
		if err != nil {
			return err
		}

		// Prefer the profile stored at login when it belongs to the same user
		data, err := deps.Store.UserData(ctx)
		if err != nil {
			deps.Logger.Warn("Failed to read stored user data", zap.Error(err))
		} else if len(data) > 0 {
			var stored session.Claims
			if err := sonic.Unmarshal(data, &stored); err == nil && stored.UserID == claims.UserID {
				stored.Raw = claims.Raw
				claims = &stored
			}
		}

		return printJSON(deps, claims)
	}
}
