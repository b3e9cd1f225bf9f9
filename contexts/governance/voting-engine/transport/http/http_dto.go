package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AddProposalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type AddProposalResponse struct {
	ProposalID int `json:"proposal_id"`
}

type WhitelistVoterRequest struct {
	Address string `json:"address"`
	Weight  uint64 `json:"weight"`
}

type StartVotingRequest struct {
	DurationMinutes uint64 `json:"duration_minutes"`
}

type DelegateRequest struct {
	To string `json:"to"`
}

type VoteRequest struct {
	ProposalID int `json:"proposal_id"`
}

type ProposalResponse struct {
	ProposalID     int    `json:"proposal_id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	QuadraticVotes uint64 `json:"quadratic_votes"`
	RawVotes       uint64 `json:"raw_votes"`
}

type ProposalListResponse struct {
	Items []ProposalResponse `json:"items"`
}

type VoterResponse struct {
	Address         string `json:"address"`
	Whitelisted     bool   `json:"whitelisted"`
	Weight          uint64 `json:"weight"`
	Voted           bool   `json:"voted"`
	VotedProposal   *int   `json:"voted_proposal,omitempty"`
	Delegate        string `json:"delegate,omitempty"`
	DelegatedWeight uint64 `json:"delegated_weight"`
}

type StatusResponse struct {
	Election       string    `json:"election"`
	Phase          string    `json:"phase"`
	Paused         bool      `json:"paused"`
	ProposalCount  int       `json:"proposal_count"`
	VoterCount     int       `json:"voter_count"`
	VotingStartsAt time.Time `json:"voting_starts_at,omitempty"`
	VotingEndsAt   time.Time `json:"voting_ends_at,omitempty"`
	Now            time.Time `json:"now"`
	WindowOpen     bool      `json:"window_open"`
}

type WinnerResponse struct {
	ProposalID     int    `json:"proposal_id"`
	Title          string `json:"title"`
	QuadraticVotes uint64 `json:"quadratic_votes"`
	RawVotes       uint64 `json:"raw_votes"`
}

type ResultsResponse struct {
	Winner int                `json:"winner"`
	Items  []ProposalResponse `json:"items"`
}

type QuadraticPreviewResponse struct {
	Weight         uint64 `json:"weight"`
	QuadraticVotes uint64 `json:"quadratic_votes"`
}

type AuditEventResponse struct {
	Sequence   uint64    `json:"sequence"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
}

type AuditTrailResponse struct {
	Items []AuditEventResponse `json:"items"`
}
