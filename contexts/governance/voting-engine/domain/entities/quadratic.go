package entities

// QuadraticVotes converts raw voting power into the quadratic vote amount
// credited to a proposal: the exact integer floor of sqrt(power).
//
// Babylonian (Newton) iteration on integers with floor division. For every
// n >= 0 the loop converges to floor(sqrt(n)); 0 and 1 are fixed points.
func QuadraticVotes(power uint64) uint64 {
	if power < 2 {
		return power
	}
	x := power
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (power/x + x) / 2
	}
	return x
}

// winningProposal scans proposals in index order and returns the index of the
// highest quadratic tally. Ties keep the earliest index: the comparison is
// strictly greater, so an election with no votes at all reports proposal 0.
func winningProposal(proposals []Proposal) int {
	winner := 0
	var best uint64
	for id, proposal := range proposals {
		if proposal.QuadraticVotes > best {
			best = proposal.QuadraticVotes
			winner = id
		}
	}
	return winner
}
