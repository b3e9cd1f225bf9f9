package errors

import "errors"

var (
	ErrUnauthorized           = errors.New("caller is not the election admin")
	ErrWrongPhase             = errors.New("operation is not valid in the current phase")
	ErrPaused                 = errors.New("election is paused")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrAlreadyVoted           = errors.New("voter has already voted")
	ErrNotWhitelisted         = errors.New("caller is not a whitelisted voter")
	ErrNoVotingPower          = errors.New("voter has no voting power")
	ErrNoDelegation           = errors.New("voter has no active delegation")
	ErrSelfDelegation         = errors.New("voter cannot delegate to itself")
	ErrInvalidTarget          = errors.New("delegation target is not a whitelisted voter")
	ErrVotingWindowNotOpen    = errors.New("voting window is not open")
	ErrVotingWindowNotExpired = errors.New("voting window has not expired")

	// ErrAuditConflict is an adapter-level sentinel for duplicate audit rows
	// carrying a different payload. It is never returned by engine operations.
	ErrAuditConflict = errors.New("audit record conflict")
)
