package types

// Tournament statuses.
const (
	TournamentRegistration = "registration"
	TournamentActive       = "active"
	TournamentCompleted    = "completed"
)

// Roles the acting user can hold in a tournament.
const (
	RoleCreator     = "creator"
	RoleParticipant = "participant"
	RoleInvited     = "invited"
)

// Invitation statuses and responses.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"

	ResponseAccept  = "accept"
	ResponseDecline = "decline"
)

// Tournament is a bracket quiz competition.
// UserRole, IsCreator and IsParticipant are only set on my-tournaments responses.
type Tournament struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	CreatorAddress    string     `json:"creator_address"`
	MaxPlayers        int        `json:"max_players"`
	CurrentPlayers    int        `json:"current_players"`
	EntryFee          float64    `json:"entry_fee"`
	PrizePool         float64    `json:"prize_pool"`
	BracketType       string     `json:"bracket_type"`
	QuestionsPerMatch int        `json:"questions_per_match"`
	TimeLimitMinutes  int        `json:"time_limit_minutes"`
	DifficultyLevel   string     `json:"difficulty_level"`
	SubjectCategory   string     `json:"subject_category"`
	CustomTopics      []string   `json:"custom_topics"`
	Status            string     `json:"status"`
	IsPublic          bool       `json:"is_public"`
	Participants      []string   `json:"participants"`
	CreatedAt         Timestamp  `json:"created_at"`
	StartTime         *Timestamp `json:"start_time,omitempty"`
	StartedAt         *Timestamp `json:"started_at,omitempty"`
	CompletedAt       *Timestamp `json:"completed_at,omitempty"`
	UserRole          string     `json:"user_role,omitempty"`
	IsCreator         bool       `json:"is_creator,omitempty"`
	IsParticipant     bool       `json:"is_participant,omitempty"`
}

// TournamentInvitation invites a player into a tournament.
type TournamentInvitation struct {
	ID             string      `json:"id"`
	TournamentID   string      `json:"tournament_id"`
	InviterAddress string      `json:"inviter_address"`
	InvitedAddress string      `json:"invited_address"`
	Message        string      `json:"message"`
	Status         string      `json:"status"`
	CreatedAt      Timestamp   `json:"created_at"`
	RespondedAt    *Timestamp  `json:"responded_at,omitempty"`
	Tournament     *Tournament `json:"tournament,omitempty"`
}

// TournamentName returns the invited tournament's name, or its id when unknown.
func (i TournamentInvitation) TournamentName() string {
	if i.Tournament != nil && i.Tournament.Name != "" {
		return i.Tournament.Name
	}
	return i.TournamentID
}

// TournamentMatch is one pairing in a bracket round.
type TournamentMatch struct {
	ID                 string     `json:"id"`
	TournamentID       string     `json:"tournament_id"`
	RoundNumber        int        `json:"round_number"`
	Player1Address     string     `json:"player1_address"`
	Player2Address     string     `json:"player2_address"`
	Status             string     `json:"status"`
	WinnerAddress      string     `json:"winner_address,omitempty"`
	QuestionsGenerated bool       `json:"questions_generated,omitempty"`
	StartedAt          *Timestamp `json:"started_at,omitempty"`
	CompletedAt        *Timestamp `json:"completed_at,omitempty"`
}

// Bracket is the round structure produced when a tournament starts.
type Bracket struct {
	TournamentID string            `json:"tournament_id"`
	TotalRounds  int               `json:"total_rounds"`
	CurrentRound int               `json:"current_round"`
	Matches      []TournamentMatch `json:"matches"`
}

// CreateTournamentRequest is the body of POST /create.
type CreateTournamentRequest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	CreatorAddress    string   `json:"creator_address"`
	MaxPlayers        int      `json:"max_players"`
	EntryFee          float64  `json:"entry_fee"`
	PrizePool         float64  `json:"prize_pool"`
	BracketType       string   `json:"bracket_type"`
	QuestionsPerMatch int      `json:"questions_per_match"`
	TimeLimitMinutes  int      `json:"time_limit_minutes"`
	DifficultyLevel   string   `json:"difficulty_level"`
	SubjectCategory   string   `json:"subject_category"`
	CustomTopics      []string `json:"custom_topics"`
	IsPublic          bool     `json:"is_public"`
}

// CreateTournamentResponse is the result of POST /create.
type CreateTournamentResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Tournament *Tournament `json:"tournament"`
}

// JoinTournamentRequest is the body of POST /{id}/join and /{id}/start.
type JoinTournamentRequest struct {
	UserAddress string `json:"user_address"`
}

// JoinTournamentResponse is the result of POST /{id}/join.
type JoinTournamentResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	CurrentPlayers int    `json:"current_players"`
}

// StartTournamentResponse is the result of POST /{id}/start.
type StartTournamentResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Bracket Bracket `json:"bracket"`
}

// BracketResponse is the result of GET /{id}/bracket.
type BracketResponse struct {
	Success          bool              `json:"success"`
	Bracket          *Bracket          `json:"bracket"`
	Matches          []TournamentMatch `json:"matches"`
	TournamentStatus string            `json:"tournament_status"`
}

// InviteRequest is the body of POST /{id}/invite.
type InviteRequest struct {
	InviterAddress   string   `json:"inviter_address"`
	InvitedAddresses []string `json:"invited_addresses"`
	Message          string   `json:"message"`
}

// InviteResult reports the outcome for one invited address.
type InviteResult struct {
	Address string `json:"address"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

// InviteResponse is the result of POST /{id}/invite.
type InviteResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Invited []InviteResult `json:"invited"`
	Errors  []InviteResult `json:"errors"`
}

// RespondInvitationRequest is the body of POST /invitations/{id}/respond.
type RespondInvitationRequest struct {
	UserAddress string `json:"user_address"`
	Response    string `json:"response"`
}

// RespondInvitationResponse is the result of POST /invitations/{id}/respond.
type RespondInvitationResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Response       string `json:"response"`
	InvitationID   string `json:"invitation_id"`
	TournamentID   string `json:"tournament_id"`
	Joined         bool   `json:"joined,omitempty"`
	CurrentPlayers int    `json:"current_players,omitempty"`
}
