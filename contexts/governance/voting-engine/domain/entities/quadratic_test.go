package entities

import "testing"

func TestQuadraticVotesIsFloorSqrt(t *testing.T) {
	cases := []struct {
		power uint64
		want  uint64
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 1},
		{4, 2},
		{8, 2},
		{9, 3},
		{13, 3},
		{15, 3},
		{16, 4},
		{99, 9},
		{100, 10},
		{10000, 100},
		{10001, 100},
		{1<<32 - 1, 65535},
		{1 << 32, 65536},
	}
	for _, tc := range cases {
		if got := QuadraticVotes(tc.power); got != tc.want {
			t.Fatalf("QuadraticVotes(%d) = %d, want %d", tc.power, got, tc.want)
		}
	}
}

func TestQuadraticVotesExactAroundSquares(t *testing.T) {
	for root := uint64(1); root < 2000; root++ {
		square := root * root
		if got := QuadraticVotes(square); got != root {
			t.Fatalf("QuadraticVotes(%d) = %d, want %d", square, got, root)
		}
		if got := QuadraticVotes(square - 1); got != root-1 {
			t.Fatalf("QuadraticVotes(%d) = %d, want %d", square-1, got, root-1)
		}
		if got := QuadraticVotes(square + 1); got != root {
			t.Fatalf("QuadraticVotes(%d) = %d, want %d", square+1, got, root)
		}
	}
}

func TestWinningProposalTieBreaksOnEarliestIndex(t *testing.T) {
	proposals := []Proposal{
		{Title: "a", QuadraticVotes: 5},
		{Title: "b", QuadraticVotes: 5},
		{Title: "c", QuadraticVotes: 3},
	}
	if got := winningProposal(proposals); got != 0 {
		t.Fatalf("winner = %d, want 0", got)
	}

	allZero := []Proposal{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	if got := winningProposal(allZero); got != 0 {
		t.Fatalf("all-zero winner = %d, want 0", got)
	}

	later := []Proposal{
		{Title: "a", QuadraticVotes: 2},
		{Title: "b", QuadraticVotes: 7},
		{Title: "c", QuadraticVotes: 7},
	}
	if got := winningProposal(later); got != 1 {
		t.Fatalf("winner = %d, want 1", got)
	}
}
