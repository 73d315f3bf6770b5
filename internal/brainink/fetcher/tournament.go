package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/brainink/hub/internal/brainink/api"
	"github.com/brainink/hub/internal/brainink/types"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

var (
	// ErrMissingTournamentID is returned when a tournament call has no id.
	ErrMissingTournamentID = errors.New("tournament id is required")
	// ErrInvalidInvitationResponse is returned when a response is neither accept nor decline.
	ErrInvalidInvitationResponse = errors.New("invitation response must be accept or decline")
	// ErrRequestRejected is returned when the service answers with success=false.
	ErrRequestRejected = errors.New("request rejected by tournament service")
)

// MyTournamentsResult groups the acting user's tournaments by role.
type MyTournamentsResult struct {
	Created       []types.Tournament
	Participating []types.Tournament
	Invited       []types.Tournament
}

// TournamentsResult holds the tournaments group.
type TournamentsResult struct {
	Mine        MyTournamentsResult
	Available   []types.Tournament
	Invitations []types.TournamentInvitation
}

// TournamentFetcher handles the tournaments service.
type TournamentFetcher struct {
	api     *api.API
	baseURL string
	logger  *zap.Logger
}

// NewTournamentFetcher creates a TournamentFetcher for the tournaments service at baseURL.
func NewTournamentFetcher(a *api.API, baseURL string, logger *zap.Logger) *TournamentFetcher {
	return &TournamentFetcher{
		api:     a,
		baseURL: baseURL,
		logger:  logger.Named("tournament_fetcher"),
	}
}

// GetMyTournaments returns the tournaments the acting user created, joined or was invited to.
func (t *TournamentFetcher) GetMyTournaments(ctx context.Context) (*MyTournamentsResult, error) {
	var mine types.MyTournaments
	if err := t.api.GetEnvelope(ctx, api.Request{URL: t.baseURL + "/my-tournaments"}, &mine); err != nil {
		return nil, fmt.Errorf("failed to get my tournaments: %w", err)
	}
	logSkipped(t.logger, "my_tournaments", &mine)

	return &MyTournamentsResult{
		Created:       mine.Created,
		Participating: mine.Participating,
		Invited:       mine.Invited,
	}, nil
}

// GetAvailable returns the tournaments open for registration.
func (t *TournamentFetcher) GetAvailable(ctx context.Context) ([]types.Tournament, error) {
	var list types.TournamentList
	if err := t.api.GetEnvelope(ctx, api.Request{URL: t.baseURL + "/"}, &list); err != nil {
		return nil, fmt.Errorf("failed to get available tournaments: %w", err)
	}
	logSkipped(t.logger, "available_tournaments", &list)
	return list.Tournaments, nil
}

// GetInvitations returns the acting user's tournament invitations.
func (t *TournamentFetcher) GetInvitations(ctx context.Context) ([]types.TournamentInvitation, error) {
	var list types.InvitationList
	if err := t.api.GetEnvelope(ctx, api.Request{URL: t.baseURL + "/invitations/my-invitations"}, &list); err != nil {
		return nil, fmt.Errorf("failed to get invitations: %w", err)
	}
	logSkipped(t.logger, "invitations", &list)
	return list.Invitations, nil
}

// FetchAll retrieves my tournaments, available tournaments and invitations
// concurrently. Failed requests degrade to empty slices.
func (t *TournamentFetcher) FetchAll(ctx context.Context) *TournamentsResult {
	result := &TournamentsResult{
		Mine: MyTournamentsResult{
			Created:       []types.Tournament{},
			Participating: []types.Tournament{},
			Invited:       []types.Tournament{},
		},
		Available:   []types.Tournament{},
		Invitations: []types.TournamentInvitation{},
	}

	p := pool.New().WithContext(ctx)

	// Fetch my tournaments
	p.Go(func(ctx context.Context) error {
		mine, err := t.GetMyTournaments(ctx)
		if err != nil {
			t.logger.Warn("Failed to fetch my tournaments", zap.Error(err))
			return nil
		}
		result.Mine = *mine
		return nil
	})

	// Fetch available tournaments
	p.Go(func(ctx context.Context) error {
		available, err := t.GetAvailable(ctx)
		if err != nil {
			t.logger.Warn("Failed to fetch available tournaments", zap.Error(err))
			return nil
		}
		result.Available = available
		return nil
	})

	// Fetch invitations
	p.Go(func(ctx context.Context) error {
		invitations, err := t.GetInvitations(ctx)
		if err != nil {
			t.logger.Warn("Failed to fetch tournament invitations", zap.Error(err))
			return nil
		}
		result.Invitations = invitations
		return nil
	})

	_ = p.Wait()

	return result
}

// Create creates a tournament. Unset optional fields take the service defaults
// used by the web client.
func (t *TournamentFetcher) Create(
	ctx context.Context, req types.CreateTournamentRequest,
) (*types.CreateTournamentResponse, error) {
	if req.BracketType == "" {
		req.BracketType = "single_elimination"
	}
	if req.TimeLimitMinutes == 0 {
		req.TimeLimitMinutes = 30
	}
	if req.DifficultyLevel == "" {
		req.DifficultyLevel = "medium"
	}
	if req.SubjectCategory == "" {
		req.SubjectCategory = "general"
	}
	if req.CustomTopics == nil {
		req.CustomTopics = []string{}
	}

	var resp types.CreateTournamentResponse
	if err := t.api.PostJSON(ctx, t.baseURL+"/create", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrRequestRejected, resp.Message)
	}

	return &resp, nil
}

// Join registers userAddress in the tournament.
func (t *TournamentFetcher) Join(
	ctx context.Context, tournamentID, userAddress string,
) (*types.JoinTournamentResponse, error) {
	if tournamentID == "" {
		return nil, ErrMissingTournamentID
	}

	var resp types.JoinTournamentResponse
	if err := t.api.PostJSON(ctx, t.tournamentURL(tournamentID, "join"),
		types.JoinTournamentRequest{UserAddress: userAddress}, &resp); err != nil {
		return nil, fmt.Errorf("failed to join tournament %s: %w", tournamentID, err)
	}

	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrRequestRejected, resp.Message)
	}

	return &resp, nil
}

// Start starts the tournament and returns its generated bracket.
func (t *TournamentFetcher) Start(
	ctx context.Context, tournamentID, userAddress string,
) (*types.StartTournamentResponse, error) {
	if tournamentID == "" {
		return nil, ErrMissingTournamentID
	}

	var resp types.StartTournamentResponse
	if err := t.api.PostJSON(ctx, t.tournamentURL(tournamentID, "start"),
		types.JoinTournamentRequest{UserAddress: userAddress}, &resp); err != nil {
		return nil, fmt.Errorf("failed to start tournament %s: %w", tournamentID, err)
	}

	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrRequestRejected, resp.Message)
	}

	return &resp, nil
}

// Bracket returns the tournament's current bracket and matches.
func (t *TournamentFetcher) Bracket(ctx context.Context, tournamentID string) (*types.BracketResponse, error) {
	if tournamentID == "" {
		return nil, ErrMissingTournamentID
	}

	var resp types.BracketResponse
	if err := t.api.GetJSON(ctx, t.tournamentURL(tournamentID, "bracket"), &resp); err != nil {
		return nil, fmt.Errorf("failed to get bracket for %s: %w", tournamentID, err)
	}

	return &resp, nil
}

// Invite invites addresses into the tournament. Per-address failures are
// reported in the response; a rejected request as a whole is an error.
func (t *TournamentFetcher) Invite(
	ctx context.Context, tournamentID string, req types.InviteRequest,
) (*types.InviteResponse, error) {
	if tournamentID == "" {
		return nil, ErrMissingTournamentID
	}

	var resp types.InviteResponse
	if err := t.api.PostJSON(ctx, t.tournamentURL(tournamentID, "invite"), req, &resp); err != nil {
		return nil, fmt.Errorf("failed to invite to tournament %s: %w", tournamentID, err)
	}

	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrRequestRejected, resp.Message)
	}

	return &resp, nil
}

// RespondToInvitation accepts or declines an invitation.
func (t *TournamentFetcher) RespondToInvitation(
	ctx context.Context, invitationID, userAddress, response string,
) (*types.RespondInvitationResponse, error) {
	if response != types.ResponseAccept && response != types.ResponseDecline {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInvitationResponse, response)
	}

	reqURL := t.baseURL + "/invitations/" + url.PathEscape(invitationID) + "/respond"

	var resp types.RespondInvitationResponse
	if err := t.api.DoJSON(ctx, api.Request{
		Method: http.MethodPost,
		URL:    reqURL,
		Body:   types.RespondInvitationRequest{UserAddress: userAddress, Response: response},
	}, &resp); err != nil {
		return nil, fmt.Errorf("failed to respond to invitation %s: %w", invitationID, err)
	}

	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrRequestRejected, resp.Message)
	}

	return &resp, nil
}

func (t *TournamentFetcher) tournamentURL(tournamentID, action string) string {
	return t.baseURL + "/" + url.PathEscape(tournamentID) + "/" + action
}
