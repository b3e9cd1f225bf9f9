package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "dvoting/contexts/governance/voting-engine/application"
	"dvoting/contexts/governance/voting-engine/domain/entities"
	"dvoting/contexts/governance/voting-engine/ports"

	"github.com/google/uuid"
)

// AddProposalCommand is the write-model input for proposal creation.
type AddProposalCommand struct {
	Title       string
	Description string
}

// WhitelistVoterCommand assigns or overwrites a voter's weight.
type WhitelistVoterCommand struct {
	Address string
	Weight  uint64
}

// StartVotingCommand opens the voting window.
type StartVotingCommand struct {
	DurationMinutes uint64
}

// DelegateCommand points the caller's weight at another voter.
type DelegateCommand struct {
	To string
}

// VoteCommand casts the caller's one-shot ballot.
type VoteCommand struct {
	ProposalID int
}

// ElectionUseCase serializes every state-changing governance operation
// through the single Election aggregate, emits the audit event for each
// commit, and reports typed precondition failures unchanged to the caller.
type ElectionUseCase struct {
	Election *entities.Election
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

// AddProposal appends a proposal during Setup and returns its index.
func (uc ElectionUseCase) AddProposal(ctx context.Context, caller string, cmd AddProposalCommand) (int, error) {
	caller = strings.TrimSpace(caller)
	id, event, err := uc.Election.AddProposal(caller, cmd.Title, cmd.Description, uc.now())
	if err != nil {
		uc.warn("governance_add_proposal_rejected", caller, err)
		return 0, err
	}
	if err := uc.appendEvent(ctx, event); err != nil {
		return 0, err
	}
	uc.logger().Info("proposal added",
		"event", "governance_proposal_added",
		"module", "governance/voting-engine",
		"layer", "application",
		"caller", caller,
		"proposal_id", id,
		"title", strings.TrimSpace(cmd.Title),
	)
	return id, nil
}

// WhitelistVoter inserts or resets a voter record during Setup.
func (uc ElectionUseCase) WhitelistVoter(ctx context.Context, caller string, cmd WhitelistVoterCommand) error {
	caller = strings.TrimSpace(caller)
	event, err := uc.Election.WhitelistVoter(caller, cmd.Address, cmd.Weight, uc.now())
	if err != nil {
		uc.warn("governance_whitelist_rejected", caller, err)
		return err
	}
	if err := uc.appendEvent(ctx, event); err != nil {
		return err
	}
	uc.logger().Info("voter whitelisted",
		"event", "governance_voter_whitelisted",
		"module", "governance/voting-engine",
		"layer", "application",
		"caller", caller,
		"address", strings.TrimSpace(cmd.Address),
		"weight", cmd.Weight,
	)
	return nil
}

// StartVoting transitions Setup -> Voting.
func (uc ElectionUseCase) StartVoting(ctx context.Context, caller string, cmd StartVotingCommand) error {
	caller = strings.TrimSpace(caller)
	event, err := uc.Election.StartVoting(caller, cmd.DurationMinutes, uc.now())
	if err != nil {
		uc.warn("governance_start_voting_rejected", caller, err)
		return err
	}
	if err := uc.appendEvent(ctx, event); err != nil {
		return err
	}
	uc.logger().Info("voting started",
		"event", "governance_voting_started",
		"module", "governance/voting-engine",
		"layer", "application",
		"caller", caller,
		"duration_minutes", cmd.DurationMinutes,
	)
	return nil
}

// CloseVoting transitions Voting -> Finished on admin request.
func (uc ElectionUseCase) CloseVoting(ctx context.Context, caller string) error {
	caller = strings.TrimSpace(caller)
	event, err := uc.Election.CloseVoting(caller, uc.now())
	if err != nil {
		uc.warn("governance_close_voting_rejected", caller, err)
		return err
	}
	if err := uc.appendEvent(ctx, event); err != nil {
		return err
	}
	uc.logger().Info("voting closed",
		"event", "governance_voting_closed",
		"module", "governance/voting-engine",
		"layer", "application",
		"caller", caller,
	)
	return nil
}

// FinalizeIfExpired transitions Voting -> Finished once the window elapsed.
// Anyone may call it.
func (uc ElectionUseCase) FinalizeIfExpired(ctx context.Context, caller string) error {
	caller = strings.TrimSpace(caller)
	event, err := uc.Election.FinalizeIfExpired(caller, uc.now())
	if err != nil {
		uc.warn("governance_finalize_rejected", caller, err)
		return err
	}
	if err := uc.appendEvent(ctx, event); err != nil {
		return err
	}
	uc.logger().Info("voting finalized after expiry",
		"event", "governance_voting_finalized",
		"module", "governance/voting-engine",
		"layer", "application",
		"caller", caller,
	)
	return nil
}

// Delegate sets or retargets the caller's delegation edge during Setup.
func (uc ElectionUseCase) Delegate(ctx context.Context, caller string, cmd DelegateCommand) error {
	caller = strings.TrimSpace(caller)
	event, err := uc.Election.Delegate(caller, cmd.To, uc.now())
	if err != nil {
		uc.warn("governance_delegate_rejected", caller, err)
		return err
	}
	if err := uc.appendEvent(ctx, event); err != nil {
		return err
	}
	uc.logger().Info("delegation set",
		"event", "governance_delegation_set",
		"module", "governance/voting-engine",
		"layer", "application",
		"caller", caller,
		"to", strings.TrimSpace(cmd.To),
	)
	return nil
}

// RemoveDelegate clears the caller's delegation edge during Setup.
func (uc ElectionUseCase) RemoveDelegate(ctx context.Context, caller string) error {
	caller = strings.TrimSpace(caller)
	event, err := uc.Election.RemoveDelegate(caller, uc.now())
	if err != nil {
		uc.warn("governance_remove_delegate_rejected", caller, err)
		return err
	}
	if err := uc.appendEvent(ctx, event); err != nil {
		return err
	}
	uc.logger().Info("delegation removed",
		"event", "governance_delegation_removed",
		"module", "governance/voting-engine",
		"layer", "application",
		"caller", caller,
	)
	return nil
}

// Vote casts the caller's ballot during the open voting window.
func (uc ElectionUseCase) Vote(ctx context.Context, caller string, cmd VoteCommand) error {
	caller = strings.TrimSpace(caller)
	event, err := uc.Election.Vote(caller, cmd.ProposalID, uc.now())
	if err != nil {
		uc.warn("governance_vote_rejected", caller, err)
		return err
	}
	if err := uc.appendEvent(ctx, event); err != nil {
		return err
	}
	uc.logger().Info("vote cast",
		"event", "governance_vote_cast",
		"module", "governance/voting-engine",
		"layer", "application",
		"caller", caller,
		"proposal_id", cmd.ProposalID,
		"raw_power", event.Data["raw_power"],
		"quadratic_votes", event.Data["quadratic_votes"],
	)
	return nil
}

// PauseElection engages the circuit breaker.
func (uc ElectionUseCase) PauseElection(ctx context.Context, caller string) error {
	caller = strings.TrimSpace(caller)
	event, err := uc.Election.Pause(caller, uc.now())
	if err != nil {
		uc.warn("governance_pause_rejected", caller, err)
		return err
	}
	if err := uc.appendEvent(ctx, event); err != nil {
		return err
	}
	uc.logger().Info("election paused",
		"event", "governance_election_paused",
		"module", "governance/voting-engine",
		"layer", "application",
		"caller", caller,
	)
	return nil
}

// ResumeElection releases the circuit breaker.
func (uc ElectionUseCase) ResumeElection(ctx context.Context, caller string) error {
	caller = strings.TrimSpace(caller)
	event, err := uc.Election.Resume(caller, uc.now())
	if err != nil {
		uc.warn("governance_resume_rejected", caller, err)
		return err
	}
	if err := uc.appendEvent(ctx, event); err != nil {
		return err
	}
	uc.logger().Info("election resumed",
		"event", "governance_election_resumed",
		"module", "governance/voting-engine",
		"layer", "application",
		"caller", caller,
	)
	return nil
}

func (uc ElectionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc ElectionUseCase) logger() *slog.Logger {
	return application.ResolveLogger(uc.Logger)
}

func (uc ElectionUseCase) warn(eventName string, caller string, err error) {
	uc.logger().Warn("governance operation rejected",
		"event", eventName,
		"module", "governance/voting-engine",
		"layer", "application",
		"caller", caller,
		"error", err.Error(),
	)
}

// appendEvent records the committed operation on the audit outbox. Outbox is
// optional for pure read/test wiring, so nil is treated as no-op.
func (uc ElectionUseCase) appendEvent(ctx context.Context, event entities.Event) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.newID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newGovernanceEnvelope(eventID, event, uc.Election.Name())
	if err != nil {
		return err
	}
	if err := uc.Outbox.AppendOutbox(ctx, envelope); err != nil {
		uc.logger().Error("audit event append failed",
			"event", "governance_outbox_append_failed",
			"module", "governance/voting-engine",
			"layer", "application",
			"event_type", string(event.Type),
			"sequence", event.Sequence,
			"error", err.Error(),
		)
		return err
	}
	return nil
}

func (uc ElectionUseCase) newID(ctx context.Context) (string, error) {
	if uc.IDGen == nil {
		return uuid.NewString(), nil
	}
	return uc.IDGen.NewID(ctx)
}
