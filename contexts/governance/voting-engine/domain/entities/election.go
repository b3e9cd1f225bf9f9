package entities

import (
	"fmt"
	"strings"
	"sync"
	"time"

	domainerrors "dvoting/contexts/governance/voting-engine/domain/errors"
)

// Phase is the three-state lifecycle gate controlling which operations are
// legal. It only ever moves forward: Setup -> Voting -> Finished.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseVoting   Phase = "voting"
	PhaseFinished Phase = "finished"
)

// Proposal is immutable once created except for its two tally accumulators,
// which only grow. Proposals are identified by zero-based insertion index.
type Proposal struct {
	Title          string
	Description    string
	QuadraticVotes uint64
	RawVotes       uint64
}

// Voter is the per-address ballot record. DelegatedWeight is maintained
// incrementally and always equals the sum of Weight over voters whose
// Delegate currently points at this address.
type Voter struct {
	Whitelisted     bool
	Weight          uint64
	Voted           bool
	VotedProposal   int
	Delegate        string
	DelegatedWeight uint64
}

// TimeInfo is the voting-window projection read by the presentation layer.
type TimeInfo struct {
	Phase  Phase
	Paused bool
	Start  time.Time
	End    time.Time
	Now    time.Time
	Open   bool
}

// Result is one row of the frozen tally exposed once the election finishes.
type Result struct {
	ProposalID     int
	Title          string
	QuadraticVotes uint64
	RawVotes       uint64
}

type EventType string

const (
	EventProposalAdded     EventType = "governance.proposal_added"
	EventVoterWhitelisted  EventType = "governance.voter_whitelisted"
	EventDelegationSet     EventType = "governance.delegation_set"
	EventDelegationRemoved EventType = "governance.delegation_removed"
	EventVoteCast          EventType = "governance.vote_cast"
	EventPhaseChanged      EventType = "governance.phase_changed"
	EventPaused            EventType = "governance.paused"
	EventResumed           EventType = "governance.resumed"
)

// Event is the audit record emitted by every committed mutation. Sequence is
// assigned under the election lock, so sorting by it reproduces commit order.
type Event struct {
	Sequence   uint64
	Type       EventType
	Caller     string
	OccurredAt time.Time
	Data       map[string]any
}

// Election is the authoritative governance state machine. One RWMutex guards
// every mutable field; admin and name are fixed at construction and need no
// locking. Every operation validates all guards before touching state, so a
// failed call never leaves partial effects behind.
type Election struct {
	mu sync.RWMutex

	name  string
	admin string

	phase    Phase
	paused   bool
	start    time.Time
	end      time.Time
	winner   int
	sequence uint64

	proposals []Proposal
	voters    map[string]Voter
}

// NewElection creates the single long-lived election instance. The creator
// identity becomes the fixed admin and is never a voter. Initial proposal
// titles are optional; the admin can add more during Setup.
func NewElection(name string, admin string, proposalTitles []string) (*Election, error) {
	name = strings.TrimSpace(name)
	admin = strings.TrimSpace(admin)
	if name == "" {
		return nil, fmt.Errorf("election name is required: %w", domainerrors.ErrInvalidArgument)
	}
	if admin == "" {
		return nil, fmt.Errorf("admin address is required: %w", domainerrors.ErrInvalidArgument)
	}

	proposals := make([]Proposal, 0, len(proposalTitles))
	for _, title := range proposalTitles {
		title = strings.TrimSpace(title)
		if title == "" {
			return nil, fmt.Errorf("proposal title is required: %w", domainerrors.ErrInvalidArgument)
		}
		proposals = append(proposals, Proposal{Title: title})
	}

	return &Election{
		name:      name,
		admin:     admin,
		phase:     PhaseSetup,
		proposals: proposals,
		voters:    make(map[string]Voter),
	}, nil
}

func (e *Election) Name() string  { return e.name }
func (e *Election) Admin() string { return e.admin }

// AddProposal appends a proposal during Setup. Admin only.
func (e *Election) AddProposal(caller string, title string, description string, now time.Time) (int, Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guardAdminMutation(caller, PhaseSetup); err != nil {
		return 0, Event{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, Event{}, fmt.Errorf("proposal title is required: %w", domainerrors.ErrInvalidArgument)
	}

	e.proposals = append(e.proposals, Proposal{
		Title:       title,
		Description: strings.TrimSpace(description),
	})
	id := len(e.proposals) - 1
	return id, e.commit(EventProposalAdded, caller, now, map[string]any{
		"proposal_id": id,
		"title":       title,
	}), nil
}

// WhitelistVoter inserts or overwrites a voter record during Setup. A
// re-whitelist wipes the voter's ballot state and repairs both sides of any
// delegation edge it was part of: the old target loses the parked weight and
// inbound delegators have their edges cleared, keeping delegated-weight
// accounting exact.
func (e *Election) WhitelistVoter(caller string, address string, weight uint64, now time.Time) (Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guardAdminMutation(caller, PhaseSetup); err != nil {
		return Event{}, err
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return Event{}, fmt.Errorf("voter address is required: %w", domainerrors.ErrInvalidArgument)
	}
	if weight == 0 {
		return Event{}, fmt.Errorf("voter weight must be positive: %w", domainerrors.ErrInvalidArgument)
	}
	if address == e.admin {
		return Event{}, fmt.Errorf("admin cannot be a voter: %w", domainerrors.ErrInvalidArgument)
	}

	if existing, ok := e.voters[address]; ok {
		if existing.Delegate != "" {
			target := e.voters[existing.Delegate]
			target.DelegatedWeight -= existing.Weight
			e.voters[existing.Delegate] = target
		}
		for from, voter := range e.voters {
			if voter.Delegate == address {
				voter.Delegate = ""
				e.voters[from] = voter
			}
		}
	}

	e.voters[address] = Voter{Whitelisted: true, Weight: weight}
	return e.commit(EventVoterWhitelisted, caller, now, map[string]any{
		"address": address,
		"weight":  weight,
	}), nil
}

// StartVoting transitions Setup -> Voting and opens the voting window.
func (e *Election) StartVoting(caller string, durationMinutes uint64, now time.Time) (Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guardAdminMutation(caller, PhaseSetup); err != nil {
		return Event{}, err
	}
	if durationMinutes == 0 {
		return Event{}, fmt.Errorf("voting duration must be positive: %w", domainerrors.ErrInvalidArgument)
	}
	if len(e.proposals) == 0 {
		return Event{}, fmt.Errorf("at least one proposal is required: %w", domainerrors.ErrInvalidArgument)
	}
	if e.whitelistedCount() == 0 {
		return Event{}, fmt.Errorf("at least one whitelisted voter is required: %w", domainerrors.ErrInvalidArgument)
	}

	e.phase = PhaseVoting
	e.start = now
	e.end = now.Add(time.Duration(durationMinutes) * time.Minute)
	return e.commit(EventPhaseChanged, caller, now, map[string]any{
		"phase":            string(PhaseVoting),
		"voting_starts_at": e.start,
		"voting_ends_at":   e.end,
	}), nil
}

// CloseVoting transitions Voting -> Finished and freezes the winner. Admin
// only; no time precondition.
func (e *Election) CloseVoting(caller string, now time.Time) (Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guardAdminMutation(caller, PhaseVoting); err != nil {
		return Event{}, err
	}
	return e.finish(caller, "closed_by_admin", now), nil
}

// FinalizeIfExpired transitions Voting -> Finished once the window has
// elapsed. Anyone may call it; the engine has no internal scheduler, so this
// operation is how an expired election gets finalized without the admin.
func (e *Election) FinalizeIfExpired(caller string, now time.Time) (Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return Event{}, domainerrors.ErrPaused
	}
	if e.phase != PhaseVoting {
		return Event{}, domainerrors.ErrWrongPhase
	}
	if !now.After(e.end) {
		return Event{}, domainerrors.ErrVotingWindowNotExpired
	}
	return e.finish(caller, "window_expired", now), nil
}

// Delegate points the caller's voting weight at another whitelisted voter.
// Single hop only: weight received through delegation is parked on the target
// and never forwarded, even if the target delegates too.
func (e *Election) Delegate(caller string, to string, now time.Time) (Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return Event{}, domainerrors.ErrPaused
	}
	if e.phase != PhaseSetup {
		return Event{}, domainerrors.ErrWrongPhase
	}
	voter, ok := e.voters[caller]
	if !ok || !voter.Whitelisted {
		return Event{}, domainerrors.ErrNotWhitelisted
	}
	if voter.Voted {
		return Event{}, domainerrors.ErrAlreadyVoted
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return Event{}, fmt.Errorf("delegation target is required: %w", domainerrors.ErrInvalidArgument)
	}
	if to == caller {
		return Event{}, domainerrors.ErrSelfDelegation
	}
	target, ok := e.voters[to]
	if !ok || !target.Whitelisted {
		return Event{}, domainerrors.ErrInvalidTarget
	}

	previous := voter.Delegate
	if previous != "" {
		old := e.voters[previous]
		old.DelegatedWeight -= voter.Weight
		e.voters[previous] = old
		target = e.voters[to]
	}
	target.DelegatedWeight += voter.Weight
	e.voters[to] = target
	voter.Delegate = to
	e.voters[caller] = voter

	return e.commit(EventDelegationSet, caller, now, map[string]any{
		"to":       to,
		"previous": previous,
		"weight":   voter.Weight,
	}), nil
}

// RemoveDelegate clears the caller's outgoing delegation edge.
func (e *Election) RemoveDelegate(caller string, now time.Time) (Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return Event{}, domainerrors.ErrPaused
	}
	if e.phase != PhaseSetup {
		return Event{}, domainerrors.ErrWrongPhase
	}
	voter, ok := e.voters[caller]
	if !ok || !voter.Whitelisted {
		return Event{}, domainerrors.ErrNotWhitelisted
	}
	if voter.Delegate == "" {
		return Event{}, domainerrors.ErrNoDelegation
	}

	previous := voter.Delegate
	target := e.voters[previous]
	target.DelegatedWeight -= voter.Weight
	e.voters[previous] = target
	voter.Delegate = ""
	e.voters[caller] = voter

	return e.commit(EventDelegationRemoved, caller, now, map[string]any{
		"previous": previous,
		"weight":   voter.Weight,
	}), nil
}

// Vote casts the caller's one-shot ballot. Total power is weight plus
// delegated weight read at this moment; the proposal is credited
// floor(sqrt(power)) quadratic votes and the raw power for transparency.
func (e *Election) Vote(caller string, proposalID int, now time.Time) (Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return Event{}, domainerrors.ErrPaused
	}
	if e.phase != PhaseVoting {
		return Event{}, domainerrors.ErrWrongPhase
	}
	// The phase flag alone is not enough: finalization may lag real time.
	if now.Before(e.start) || now.After(e.end) {
		return Event{}, domainerrors.ErrVotingWindowNotOpen
	}
	if proposalID < 0 || proposalID >= len(e.proposals) {
		return Event{}, fmt.Errorf("unknown proposal %d: %w", proposalID, domainerrors.ErrInvalidArgument)
	}
	voter, ok := e.voters[caller]
	if !ok || !voter.Whitelisted {
		return Event{}, domainerrors.ErrNotWhitelisted
	}
	if voter.Voted {
		return Event{}, domainerrors.ErrAlreadyVoted
	}
	if voter.Delegate != "" {
		return Event{}, fmt.Errorf("delegating voters cannot vote: %w", domainerrors.ErrInvalidArgument)
	}
	power := voter.Weight + voter.DelegatedWeight
	if power == 0 {
		return Event{}, domainerrors.ErrNoVotingPower
	}

	quadratic := QuadraticVotes(power)
	voter.Voted = true
	voter.VotedProposal = proposalID
	e.voters[caller] = voter
	e.proposals[proposalID].QuadraticVotes += quadratic
	e.proposals[proposalID].RawVotes += power

	return e.commit(EventVoteCast, caller, now, map[string]any{
		"proposal_id":     proposalID,
		"raw_power":       power,
		"quadratic_votes": quadratic,
	}), nil
}

// Pause engages the circuit breaker. Orthogonal to phase: every mutating
// operation fails with ErrPaused until the admin resumes, reads stay open.
func (e *Election) Pause(caller string, now time.Time) (Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return Event{}, domainerrors.ErrUnauthorized
	}
	if e.paused {
		return Event{}, fmt.Errorf("election is already paused: %w", domainerrors.ErrInvalidArgument)
	}
	e.paused = true
	return e.commit(EventPaused, caller, now, nil), nil
}

// Resume releases the circuit breaker without losing any prior state.
func (e *Election) Resume(caller string, now time.Time) (Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return Event{}, domainerrors.ErrUnauthorized
	}
	if !e.paused {
		return Event{}, fmt.Errorf("election is not paused: %w", domainerrors.ErrInvalidArgument)
	}
	e.paused = false
	return e.commit(EventResumed, caller, now, nil), nil
}

func (e *Election) Phase() Phase {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.phase
}

func (e *Election) Paused() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.paused
}

func (e *Election) ProposalCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.proposals)
}

func (e *Election) GetProposal(proposalID int) (Proposal, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if proposalID < 0 || proposalID >= len(e.proposals) {
		return Proposal{}, fmt.Errorf("unknown proposal %d: %w", proposalID, domainerrors.ErrInvalidArgument)
	}
	return e.proposals[proposalID], nil
}

// GetVoter returns the voter record for an address. Unknown addresses come
// back as a zero record with Whitelisted false.
func (e *Election) GetVoter(address string) Voter {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.voters[strings.TrimSpace(address)]
}

func (e *Election) VoterCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.whitelistedCount()
}

func (e *Election) TimeInfo(now time.Time) TimeInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return TimeInfo{
		Phase:  e.phase,
		Paused: e.paused,
		Start:  e.start,
		End:    e.end,
		Now:    now,
		Open:   e.phase == PhaseVoting && !now.Before(e.start) && !now.After(e.end),
	}
}

// WinningProposal returns the frozen winner index. Valid only once Finished.
// Tallies never change after Finished, so the stored value and a fresh scan
// always agree.
func (e *Election) WinningProposal() (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.phase != PhaseFinished {
		return 0, domainerrors.ErrWrongPhase
	}
	return e.winner, nil
}

// AllResults returns the full frozen tally in proposal index order. Valid
// only once Finished.
func (e *Election) AllResults() ([]Result, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.phase != PhaseFinished {
		return nil, domainerrors.ErrWrongPhase
	}
	results := make([]Result, 0, len(e.proposals))
	for id, proposal := range e.proposals {
		results = append(results, Result{
			ProposalID:     id,
			Title:          proposal.Title,
			QuadraticVotes: proposal.QuadraticVotes,
			RawVotes:       proposal.RawVotes,
		})
	}
	return results, nil
}

// guardAdminMutation covers the shared circuit-breaker, identity, and phase
// checks for admin-only mutations. Pause is checked first: a paused election
// rejects everything except the admin toggles and reads.
func (e *Election) guardAdminMutation(caller string, phase Phase) error {
	if e.paused {
		return domainerrors.ErrPaused
	}
	if caller != e.admin {
		return domainerrors.ErrUnauthorized
	}
	if e.phase != phase {
		return domainerrors.ErrWrongPhase
	}
	return nil
}

func (e *Election) finish(caller string, reason string, now time.Time) Event {
	e.winner = winningProposal(e.proposals)
	e.phase = PhaseFinished
	return e.commit(EventPhaseChanged, caller, now, map[string]any{
		"phase":       string(PhaseFinished),
		"reason":      reason,
		"winner":      e.winner,
		"proposal_id": e.winner,
	})
}

func (e *Election) whitelistedCount() int {
	count := 0
	for _, voter := range e.voters {
		if voter.Whitelisted {
			count++
		}
	}
	return count
}

// commit assigns the next audit sequence number under the election lock so
// event order matches commit order exactly.
func (e *Election) commit(eventType EventType, caller string, now time.Time, data map[string]any) Event {
	e.sequence++
	if data == nil {
		data = map[string]any{}
	}
	data["election"] = e.name
	return Event{
		Sequence:   e.sequence,
		Type:       eventType,
		Caller:     caller,
		OccurredAt: now.UTC(),
		Data:       data,
	}
}
