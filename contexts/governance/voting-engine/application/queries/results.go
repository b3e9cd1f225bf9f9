package queries

import (
	"context"
	"time"

	"dvoting/contexts/governance/voting-engine/domain/entities"
	"dvoting/contexts/governance/voting-engine/ports"
)

// ResultsUseCase exposes the read-only projections of the election: proposal
// tallies, voter records, the voting window, the frozen winner, and the audit
// trail consumed by the presentation layer.
type ResultsUseCase struct {
	Election *entities.Election
	Audit    ports.OutboxRepository
	Clock    ports.Clock
}

func (uc ResultsUseCase) ProposalCount(_ context.Context) int {
	return uc.Election.ProposalCount()
}

func (uc ResultsUseCase) GetProposal(_ context.Context, proposalID int) (entities.Proposal, error) {
	return uc.Election.GetProposal(proposalID)
}

// ListProposals returns every proposal in index order regardless of phase.
func (uc ResultsUseCase) ListProposals(ctx context.Context) []entities.Proposal {
	count := uc.Election.ProposalCount()
	proposals := make([]entities.Proposal, 0, count)
	for id := 0; id < count; id++ {
		proposal, err := uc.Election.GetProposal(id)
		if err != nil {
			break
		}
		proposals = append(proposals, proposal)
	}
	return proposals
}

func (uc ResultsUseCase) GetVoter(_ context.Context, address string) entities.Voter {
	return uc.Election.GetVoter(address)
}

func (uc ResultsUseCase) VoterCount(_ context.Context) int {
	return uc.Election.VoterCount()
}

func (uc ResultsUseCase) TimeInfo(_ context.Context) entities.TimeInfo {
	return uc.Election.TimeInfo(uc.now())
}

func (uc ResultsUseCase) WinningProposal(_ context.Context) (int, error) {
	return uc.Election.WinningProposal()
}

func (uc ResultsUseCase) AllResults(_ context.Context) ([]entities.Result, error) {
	return uc.Election.AllResults()
}

// QuadraticPreview is the pure floor-sqrt transform with no state access,
// exposed so callers can preview the credit a given power would produce.
func (uc ResultsUseCase) QuadraticPreview(_ context.Context, weight uint64) uint64 {
	return entities.QuadraticVotes(weight)
}

// AuditTrail lists the committed audit events in commit order. Nil audit
// wiring returns an empty trail.
func (uc ResultsUseCase) AuditTrail(ctx context.Context) ([]ports.OutboxMessage, error) {
	if uc.Audit == nil {
		return nil, nil
	}
	return uc.Audit.ListOutbox(ctx)
}

func (uc ResultsUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
