package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/brainink/hub/internal/brainink/fetcher"
	"github.com/brainink/hub/internal/preload"
	"github.com/brainink/hub/internal/session"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

var (
	ErrTokenRequired      = errors.New("TOKEN argument required")
	ErrNameRequired       = errors.New("NAME argument required")
	ErrCategoryRequired   = errors.New("CATEGORY argument required")
	ErrUsernameRequired   = errors.New("USERNAME argument required")
	ErrTournamentRequired = errors.New("TOURNAMENT argument required")
	ErrInvitationRequired = errors.New("INVITATION and RESPONSE arguments required")
	ErrAddressRequired    = errors.New("--address is required")
)

// CLIDependencies holds the common dependencies needed by CLI commands.
type CLIDependencies struct {
	Store       session.Store
	Cache       *preload.Cache
	Tournaments *fetcher.TournamentFetcher
	Logger      *zap.Logger
	Out         io.Writer
}

// printJSON writes v to the command output as indented JSON.
func printJSON(deps *CLIDependencies, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	_, err = fmt.Fprintln(deps.Out, string(data))
	return err
}
