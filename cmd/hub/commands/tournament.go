package commands

import (
	"context"
	"fmt"

	"github.com/brainink/hub/internal/brainink/types"
	"github.com/brainink/hub/internal/preload"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// TournamentCommands returns the tournament write commands. Each successful
// write refreshes the cached tournaments.
func TournamentCommands(deps *CLIDependencies) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "tournament",
			Usage: "Manage tournaments",
			Commands: []*cli.Command{
				{
					Name:      "create",
					Usage:     "Create a tournament",
					ArgsUsage: "NAME",
					Flags: []cli.Flag{
						addressFlag(),
						&cli.StringFlag{Name: "description", Usage: "Tournament description"},
						&cli.IntFlag{Name: "max-players", Usage: "Bracket size", Value: 8},
						&cli.Float64Flag{Name: "entry-fee", Usage: "Entry fee in tokens"},
						&cli.Float64Flag{Name: "prize-pool", Usage: "Prize pool in tokens"},
						&cli.IntFlag{Name: "questions", Usage: "Questions per match", Value: 10},
						&cli.StringFlag{Name: "difficulty", Usage: "Question difficulty"},
						&cli.StringFlag{Name: "subject", Usage: "Subject category"},
						&cli.StringSliceFlag{Name: "topic", Usage: "Custom topic (repeatable)"},
						&cli.BoolFlag{Name: "public", Usage: "List the tournament publicly"},
					},
					Action: handleCreate(deps),
				},
				{
					Name:      "join",
					Usage:     "Join a tournament",
					ArgsUsage: "TOURNAMENT",
					Flags:     []cli.Flag{addressFlag()},
					Action:    handleJoin(deps),
				},
				{
					Name:      "start",
					Usage:     "Start a tournament you created",
					ArgsUsage: "TOURNAMENT",
					Flags:     []cli.Flag{addressFlag()},
					Action:    handleStart(deps),
				},
				{
					Name:      "bracket",
					Usage:     "Print a tournament's bracket",
					ArgsUsage: "TOURNAMENT",
					Action:    handleBracket(deps),
				},
				{
					Name:      "invite",
					Usage:     "Invite players into a tournament",
					ArgsUsage: "TOURNAMENT ADDRESS...",
					Flags: []cli.Flag{
						addressFlag(),
						&cli.StringFlag{Name: "message", Usage: "Message sent with the invitation"},
					},
					Action: handleInvite(deps),
				},
				{
					Name:      "respond",
					Usage:     "Accept or decline a tournament invitation",
					ArgsUsage: "INVITATION accept|decline",
					Flags:     []cli.Flag{addressFlag()},
					Action:    handleRespond(deps),
				},
			},
		},
	}
}

// handleCreate handles the 'tournament create' command.
func handleCreate(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 1 {
			return ErrNameRequired
		}

		address, err := requireAddress(c)
		if err != nil {
			return err
		}

		resp, err := deps.Tournaments.Create(ctx, types.CreateTournamentRequest{
			Name:              c.Args().First(),
			Description:       c.String("description"),
			CreatorAddress:    address,
			MaxPlayers:        int(c.Int("max-players")),
			EntryFee:          c.Float64("entry-fee"),
			PrizePool:         c.Float64("prize-pool"),
			QuestionsPerMatch: int(c.Int("questions")),
			DifficultyLevel:   c.String("difficulty"),
			SubjectCategory:   c.String("subject"),
			CustomTopics:      c.StringSlice("topic"),
			IsPublic:          c.Bool("public"),
		})
		if err != nil {
			return err
		}

		refreshTournaments(ctx, deps)

		return printJSON(deps, resp)
	}
}

// handleJoin handles the 'tournament join' command.
func handleJoin(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 1 {
			return ErrTournamentRequired
		}

		address, err := requireAddress(c)
		if err != nil {
			return err
		}

		resp, err := deps.Tournaments.Join(ctx, c.Args().First(), address)
		if err != nil {
			return err
		}

		refreshTournaments(ctx, deps)

		return printJSON(deps, resp)
	}
}

// handleStart handles the 'tournament start' command.
func handleStart(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 1 {
			return ErrTournamentRequired
		}

		address, err := requireAddress(c)
		if err != nil {
			return err
		}

		resp, err := deps.Tournaments.Start(ctx, c.Args().First(), address)
		if err != nil {
			return err
		}

		refreshTournaments(ctx, deps)

		return printJSON(deps, resp)
	}
}

// handleBracket handles the 'tournament bracket' command.
func handleBracket(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 1 {
			return ErrTournamentRequired
		}

		resp, err := deps.Tournaments.Bracket(ctx, c.Args().First())
		if err != nil {
			return err
		}

		return printJSON(deps, resp)
	}
}

// handleInvite handles the 'tournament invite' command.
func handleInvite(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() < 2 {
			return fmt.Errorf("%w: TOURNAMENT ADDRESS...", ErrTournamentRequired)
		}

		address, err := requireAddress(c)
		if err != nil {
			return err
		}

		args := c.Args().Slice()

		resp, err := deps.Tournaments.Invite(ctx, args[0], types.InviteRequest{
			InviterAddress:   address,
			InvitedAddresses: args[1:],
			Message:          c.String("message"),
		})
		if err != nil {
			return err
		}

		if len(resp.Errors) > 0 {
			deps.Logger.Warn("Some invitations were not sent", zap.Int("failed", len(resp.Errors)))
		}

		return printJSON(deps, resp)
	}
}

// handleRespond handles the 'tournament respond' command.
func handleRespond(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 2 {
			return ErrInvitationRequired
		}

		address, err := requireAddress(c)
		if err != nil {
			return err
		}

		resp, err := deps.Tournaments.RespondToInvitation(ctx, c.Args().Get(0), address, c.Args().Get(1))
		if err != nil {
			return err
		}

		refreshTournaments(ctx, deps)

		return printJSON(deps, resp)
	}
}

func addressFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "address",
		Usage: "Player address acting in the tournament",
	}
}

func requireAddress(c *cli.Command) (string, error) {
	address := c.String("address")
	if address == "" {
		return "", ErrAddressRequired
	}
	return address, nil
}

// refreshTournaments updates cached tournaments after a write. Failures are logged.
func refreshTournaments(ctx context.Context, deps *CLIDependencies) {
	if err := deps.Cache.Refresh(ctx, preload.CategoryTournaments); err != nil {
		deps.Logger.Warn("Failed to refresh tournaments", zap.Error(err))
	}
}
