// Package votingengine implements the governance voting engine inside the
// governance context.
//
// The module owns the single authoritative election state machine: proposal
// registration, weighted whitelisting, single-hop delegation, the
// Setup/Voting/Finished lifecycle with a wall-clock voting window, quadratic
// tallying, deterministic winner computation, and the admin pause circuit
// breaker. Business rules live in the domain/application layers; audit-event
// persistence, publication, and HTTP exposure sit behind ports and adapters.
package votingengine
