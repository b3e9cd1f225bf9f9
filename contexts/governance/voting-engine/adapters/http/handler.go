package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"

	"dvoting/contexts/governance/voting-engine/application/commands"
	"dvoting/contexts/governance/voting-engine/application/queries"
	"dvoting/contexts/governance/voting-engine/domain/entities"
	"dvoting/contexts/governance/voting-engine/ports"
	httptransport "dvoting/contexts/governance/voting-engine/transport/http"
)

// Handler adapts the governance use cases to the HTTP transport DTOs. The
// caller address always comes from the authenticated identity header, never
// from the request body.
type Handler struct {
	Elections commands.ElectionUseCase
	Results   queries.ResultsUseCase
	Logger    *slog.Logger
}

// AddProposalHandler godoc
// @Summary Add a proposal
// @Description Appends a proposal during Setup. Admin only.
// @Tags governance
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Authenticated caller address"
// @Param request body httptransport.AddProposalRequest true "Proposal"
// @Success 201 {object} httptransport.AddProposalResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/governance/v1/proposals [post]
func (h Handler) AddProposalHandler(ctx context.Context, caller string, req httptransport.AddProposalRequest) (httptransport.AddProposalResponse, error) {
	id, err := h.Elections.AddProposal(ctx, caller, commands.AddProposalCommand{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return httptransport.AddProposalResponse{}, err
	}
	return httptransport.AddProposalResponse{ProposalID: id}, nil
}

// WhitelistVoterHandler godoc
// @Summary Whitelist a voter
// @Description Inserts or resets a weighted voter record during Setup. Admin only.
// @Tags governance
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Authenticated caller address"
// @Param request body httptransport.WhitelistVoterRequest true "Voter"
// @Success 204
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/governance/v1/voters [post]
func (h Handler) WhitelistVoterHandler(ctx context.Context, caller string, req httptransport.WhitelistVoterRequest) error {
	return h.Elections.WhitelistVoter(ctx, caller, commands.WhitelistVoterCommand{
		Address: req.Address,
		Weight:  req.Weight,
	})
}

// StartVotingHandler godoc
// @Summary Start the voting window
// @Tags governance
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Authenticated caller address"
// @Param request body httptransport.StartVotingRequest true "Duration"
// @Success 204
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/governance/v1/voting/start [post]
func (h Handler) StartVotingHandler(ctx context.Context, caller string, req httptransport.StartVotingRequest) error {
	return h.Elections.StartVoting(ctx, caller, commands.StartVotingCommand{
		DurationMinutes: req.DurationMinutes,
	})
}

// CloseVotingHandler godoc
// @Summary Close voting and freeze the winner
// @Tags governance
// @Produce json
// @Param X-Caller-Address header string true "Authenticated caller address"
// @Success 204
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/governance/v1/voting/close [post]
func (h Handler) CloseVotingHandler(ctx context.Context, caller string) error {
	return h.Elections.CloseVoting(ctx, caller)
}

// FinalizeHandler godoc
// @Summary Finalize an expired voting window
// @Description Anyone may finalize once the window has elapsed.
// @Tags governance
// @Produce json
// @Param X-Caller-Address header string true "Authenticated caller address"
// @Success 204
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/governance/v1/voting/finalize [post]
func (h Handler) FinalizeHandler(ctx context.Context, caller string) error {
	return h.Elections.FinalizeIfExpired(ctx, caller)
}

// DelegateHandler godoc
// @Summary Delegate voting weight
// @Tags governance
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Authenticated caller address"
// @Param request body httptransport.DelegateRequest true "Target"
// @Success 204
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/governance/v1/delegation [post]
func (h Handler) DelegateHandler(ctx context.Context, caller string, req httptransport.DelegateRequest) error {
	return h.Elections.Delegate(ctx, caller, commands.DelegateCommand{To: req.To})
}

// RemoveDelegateHandler godoc
// @Summary Remove the caller's delegation
// @Tags governance
// @Produce json
// @Param X-Caller-Address header string true "Authenticated caller address"
// @Success 204
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/governance/v1/delegation [delete]
func (h Handler) RemoveDelegateHandler(ctx context.Context, caller string) error {
	return h.Elections.RemoveDelegate(ctx, caller)
}

// VoteHandler godoc
// @Summary Cast a vote
// @Tags governance
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Authenticated caller address"
// @Param request body httptransport.VoteRequest true "Ballot"
// @Success 204
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/governance/v1/votes [post]
func (h Handler) VoteHandler(ctx context.Context, caller string, req httptransport.VoteRequest) error {
	return h.Elections.Vote(ctx, caller, commands.VoteCommand{ProposalID: req.ProposalID})
}

// PauseHandler godoc
// @Summary Pause the election
// @Tags governance
// @Produce json
// @Param X-Caller-Address header string true "Authenticated caller address"
// @Success 204
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /api/governance/v1/pause [post]
func (h Handler) PauseHandler(ctx context.Context, caller string) error {
	return h.Elections.PauseElection(ctx, caller)
}

// ResumeHandler godoc
// @Summary Resume the election
// @Tags governance
// @Produce json
// @Param X-Caller-Address header string true "Authenticated caller address"
// @Success 204
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /api/governance/v1/resume [post]
func (h Handler) ResumeHandler(ctx context.Context, caller string) error {
	return h.Elections.ResumeElection(ctx, caller)
}

// ListProposalsHandler godoc
// @Summary List proposals with live tallies
// @Tags governance
// @Produce json
// @Success 200 {object} httptransport.ProposalListResponse
// @Router /api/governance/v1/proposals [get]
func (h Handler) ListProposalsHandler(ctx context.Context) (httptransport.ProposalListResponse, error) {
	proposals := h.Results.ListProposals(ctx)
	items := make([]httptransport.ProposalResponse, 0, len(proposals))
	for id, proposal := range proposals {
		items = append(items, mapProposal(id, proposal))
	}
	return httptransport.ProposalListResponse{Items: items}, nil
}

// GetProposalHandler godoc
// @Summary Get one proposal
// @Tags governance
// @Produce json
// @Param proposal_id path int true "Zero-based proposal index"
// @Success 200 {object} httptransport.ProposalResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/governance/v1/proposals/{proposal_id} [get]
func (h Handler) GetProposalHandler(ctx context.Context, proposalID int) (httptransport.ProposalResponse, error) {
	proposal, err := h.Results.GetProposal(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(proposalID, proposal), nil
}

// GetVoterHandler godoc
// @Summary Get a voter record
// @Description Unknown addresses come back with whitelisted=false.
// @Tags governance
// @Produce json
// @Param address path string true "Voter address"
// @Success 200 {object} httptransport.VoterResponse
// @Router /api/governance/v1/voters/{address} [get]
func (h Handler) GetVoterHandler(ctx context.Context, address string) httptransport.VoterResponse {
	voter := h.Results.GetVoter(ctx, address)
	resp := httptransport.VoterResponse{
		Address:         address,
		Whitelisted:     voter.Whitelisted,
		Weight:          voter.Weight,
		Voted:           voter.Voted,
		Delegate:        voter.Delegate,
		DelegatedWeight: voter.DelegatedWeight,
	}
	if voter.Voted {
		voted := voter.VotedProposal
		resp.VotedProposal = &voted
	}
	return resp
}

// StatusHandler godoc
// @Summary Election status and voting window
// @Tags governance
// @Produce json
// @Success 200 {object} httptransport.StatusResponse
// @Router /api/governance/v1/status [get]
func (h Handler) StatusHandler(ctx context.Context) httptransport.StatusResponse {
	info := h.Results.TimeInfo(ctx)
	return httptransport.StatusResponse{
		Election:       h.Elections.Election.Name(),
		Phase:          string(info.Phase),
		Paused:         info.Paused,
		ProposalCount:  h.Results.ProposalCount(ctx),
		VoterCount:     h.Results.VoterCount(ctx),
		VotingStartsAt: info.Start,
		VotingEndsAt:   info.End,
		Now:            info.Now,
		WindowOpen:     info.Open,
	}
}

// WinnerHandler godoc
// @Summary Winning proposal
// @Description Valid only once the election is Finished.
// @Tags governance
// @Produce json
// @Success 200 {object} httptransport.WinnerResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/governance/v1/winner [get]
func (h Handler) WinnerHandler(ctx context.Context) (httptransport.WinnerResponse, error) {
	winner, err := h.Results.WinningProposal(ctx)
	if err != nil {
		return httptransport.WinnerResponse{}, err
	}
	proposal, err := h.Results.GetProposal(ctx, winner)
	if err != nil {
		return httptransport.WinnerResponse{}, err
	}
	return httptransport.WinnerResponse{
		ProposalID:     winner,
		Title:          proposal.Title,
		QuadraticVotes: proposal.QuadraticVotes,
		RawVotes:       proposal.RawVotes,
	}, nil
}

// ResultsHandler godoc
// @Summary Full frozen tally
// @Description Valid only once the election is Finished.
// @Tags governance
// @Produce json
// @Success 200 {object} httptransport.ResultsResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/governance/v1/results [get]
func (h Handler) ResultsHandler(ctx context.Context) (httptransport.ResultsResponse, error) {
	results, err := h.Results.AllResults(ctx)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	winner, err := h.Results.WinningProposal(ctx)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	items := make([]httptransport.ProposalResponse, 0, len(results))
	for _, result := range results {
		items = append(items, httptransport.ProposalResponse{
			ProposalID:     result.ProposalID,
			Title:          result.Title,
			QuadraticVotes: result.QuadraticVotes,
			RawVotes:       result.RawVotes,
		})
	}
	return httptransport.ResultsResponse{Winner: winner, Items: items}, nil
}

// QuadraticPreviewHandler godoc
// @Summary Preview the quadratic transform
// @Description Pure floor(sqrt(weight)) computation with no state access.
// @Tags governance
// @Produce json
// @Param weight query int true "Raw voting power"
// @Success 200 {object} httptransport.QuadraticPreviewResponse
// @Router /api/governance/v1/quadratic [get]
func (h Handler) QuadraticPreviewHandler(ctx context.Context, weight uint64) httptransport.QuadraticPreviewResponse {
	return httptransport.QuadraticPreviewResponse{
		Weight:         weight,
		QuadraticVotes: h.Results.QuadraticPreview(ctx, weight),
	}
}

// AuditTrailHandler godoc
// @Summary Audit trail of committed operations
// @Description Events are returned in commit order.
// @Tags governance
// @Produce json
// @Success 200 {object} httptransport.AuditTrailResponse
// @Router /api/governance/v1/audit [get]
func (h Handler) AuditTrailHandler(ctx context.Context) (httptransport.AuditTrailResponse, error) {
	messages, err := h.Results.AuditTrail(ctx)
	if err != nil {
		return httptransport.AuditTrailResponse{}, err
	}
	items := make([]httptransport.AuditEventResponse, 0, len(messages))
	for _, message := range messages {
		items = append(items, mapAuditEvent(message))
	}
	return httptransport.AuditTrailResponse{Items: items}, nil
}

func mapProposal(id int, proposal entities.Proposal) httptransport.ProposalResponse {
	return httptransport.ProposalResponse{
		ProposalID:     id,
		Title:          proposal.Title,
		Description:    proposal.Description,
		QuadraticVotes: proposal.QuadraticVotes,
		RawVotes:       proposal.RawVotes,
	}
}

func mapAuditEvent(message ports.OutboxMessage) httptransport.AuditEventResponse {
	item := httptransport.AuditEventResponse{
		Sequence:  message.Sequence,
		EventType: message.EventType,
	}
	var envelope ports.EventEnvelope
	if err := json.Unmarshal(message.Payload, &envelope); err == nil {
		item.OccurredAt = envelope.OccurredAt
	}
	return item
}
