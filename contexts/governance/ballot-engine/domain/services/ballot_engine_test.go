package services

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"ballot/contexts/governance/ballot-engine/domain/entities"
	domainerrors "ballot/contexts/governance/ballot-engine/domain/errors"
)

var testProposals = []string{"Proposal 1", "Proposal 2", "Proposal 3"}

func account(n byte) entities.Identity {
	return entities.Identity{19: n}
}

func newTestBallot(t *testing.T) *entities.Ballot {
	t.Helper()
	ballot, err := InitializeBallot("ballot-1", testProposals, account(1), false, time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("initialize ballot failed: %v", err)
	}
	return &ballot
}

func mustGiveRight(t *testing.T, ballot *entities.Ballot, voters ...entities.Identity) {
	t.Helper()
	for _, voter := range voters {
		if err := GiveRightToVote(ballot, ballot.Chairperson, voter); err != nil {
			t.Fatalf("give right to %s failed: %v", voter.Hex(), err)
		}
	}
}

func TestInitializeBallotSetsChairpersonAndProposals(t *testing.T) {
	ballot := newTestBallot(t)

	if ballot.Chairperson != account(1) {
		t.Fatalf("expected chairperson %s, got %s", account(1).Hex(), ballot.Chairperson.Hex())
	}
	if weight := ballot.VoterOf(account(1)).Weight; weight != 1 {
		t.Fatalf("expected chairperson weight 1, got %d", weight)
	}
	if len(ballot.Proposals) != len(testProposals) {
		t.Fatalf("expected %d proposals, got %d", len(testProposals), len(ballot.Proposals))
	}
	for index, proposal := range ballot.Proposals {
		if proposal.Name.String() != testProposals[index] {
			t.Fatalf("expected proposal %d to be %q, got %q", index, testProposals[index], proposal.Name.String())
		}
		if proposal.VoteCount != 0 {
			t.Fatalf("expected zero votes for proposal %d, got %d", index, proposal.VoteCount)
		}
	}
}

func TestInitializeBallotRejectsInvalidInput(t *testing.T) {
	now := time.Now().UTC()
	if _, err := InitializeBallot("ballot-1", nil, account(1), false, now); !errors.Is(err, domainerrors.ErrInvalidBallotInput) {
		t.Fatalf("expected ErrInvalidBallotInput for empty proposals, got %v", err)
	}
	tooLong := "this proposal name is longer than thirty-two bytes"
	if _, err := InitializeBallot("ballot-1", []string{tooLong}, account(1), false, now); !errors.Is(err, domainerrors.ErrInvalidBallotInput) {
		t.Fatalf("expected ErrInvalidBallotInput for long name, got %v", err)
	}
	if _, err := InitializeBallot("ballot-1", testProposals, entities.Identity{}, false, now); !errors.Is(err, domainerrors.ErrInvalidIdentity) {
		t.Fatalf("expected ErrInvalidIdentity for zero chairperson, got %v", err)
	}
}

func TestGiveRightToVote(t *testing.T) {
	ballot := newTestBallot(t)
	mustGiveRight(t, ballot, account(2))

	if weight := ballot.VoterOf(account(2)).Weight; weight != 1 {
		t.Fatalf("expected weight 1, got %d", weight)
	}
}

func TestGiveRightToVoteRejectsNonChairperson(t *testing.T) {
	ballot := newTestBallot(t)
	before := ballot.Clone()

	err := GiveRightToVote(ballot, account(2), account(2))
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(ballot.Voters) != len(before.Voters) || ballot.VoterOf(account(2)).Weight != 0 {
		t.Fatalf("expected no mutation after unauthorized grant")
	}
}

func TestGiveRightToVoteRejectsVotedTarget(t *testing.T) {
	ballot := newTestBallot(t)
	mustGiveRight(t, ballot, account(2))
	if err := CastVote(ballot, account(2), 0); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	if err := GiveRightToVote(ballot, account(1), account(2)); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
}

func TestGiveRightToVoteRejectsRegisteredTarget(t *testing.T) {
	ballot := newTestBallot(t)
	mustGiveRight(t, ballot, account(2))

	if err := GiveRightToVote(ballot, account(1), account(2)); !errors.Is(err, domainerrors.ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if weight := ballot.VoterOf(account(2)).Weight; weight != 1 {
		t.Fatalf("expected weight to stay 1, got %d", weight)
	}
}

func TestCastVote(t *testing.T) {
	ballot := newTestBallot(t)
	mustGiveRight(t, ballot, account(2))

	if err := CastVote(ballot, account(1), 1); err != nil {
		t.Fatalf("chairperson vote failed: %v", err)
	}
	if err := CastVote(ballot, account(2), 1); err != nil {
		t.Fatalf("voter vote failed: %v", err)
	}

	voter := ballot.VoterOf(account(2))
	if !voter.Voted || voter.Vote != 1 {
		t.Fatalf("expected voted=true vote=1, got voted=%v vote=%d", voter.Voted, voter.Vote)
	}
	if count := ballot.Proposals[1].VoteCount; count != 2 {
		t.Fatalf("expected 2 votes for proposal 1, got %d", count)
	}
}

func TestCastVoteRejections(t *testing.T) {
	ballot := newTestBallot(t)

	if err := CastVote(ballot, account(2), 0); !errors.Is(err, domainerrors.ErrNoRightToVote) {
		t.Fatalf("expected ErrNoRightToVote, got %v", err)
	}

	mustGiveRight(t, ballot, account(2))
	if err := CastVote(ballot, account(2), 3); !errors.Is(err, domainerrors.ErrInvalidProposal) {
		t.Fatalf("expected ErrInvalidProposal, got %v", err)
	}
	if err := CastVote(ballot, account(2), -1); !errors.Is(err, domainerrors.ErrInvalidProposal) {
		t.Fatalf("expected ErrInvalidProposal for negative index, got %v", err)
	}
	if ballot.VoterOf(account(2)).Voted {
		t.Fatalf("rejected vote must not mark voter as voted")
	}

	if err := CastVote(ballot, account(2), 1); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if err := CastVote(ballot, account(2), 1); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	if count := ballot.Proposals[1].VoteCount; count != 1 {
		t.Fatalf("expected single counted vote, got %d", count)
	}
}

func TestDelegateRejectsSelfDelegation(t *testing.T) {
	ballot := newTestBallot(t)
	if _, err := Delegate(ballot, account(2), account(2)); !errors.Is(err, domainerrors.ErrSelfDelegation) {
		t.Fatalf("expected ErrSelfDelegation for unregistered caller, got %v", err)
	}

	mustGiveRight(t, ballot, account(3))
	if _, err := Delegate(ballot, account(3), account(3)); !errors.Is(err, domainerrors.ErrSelfDelegation) {
		t.Fatalf("expected ErrSelfDelegation for registered caller, got %v", err)
	}
	if ballot.VoterOf(account(3)).Voted {
		t.Fatalf("self delegation must not mark voter as voted")
	}
}

func TestDelegateRejectsLoopWithoutMutation(t *testing.T) {
	ballot := newTestBallot(t)
	voter, delegatee := account(2), account(3)
	mustGiveRight(t, ballot, voter, delegatee)

	if _, err := Delegate(ballot, delegatee, voter); err != nil {
		t.Fatalf("first delegation failed: %v", err)
	}
	before := ballot.Clone()

	if _, err := Delegate(ballot, voter, delegatee); !errors.Is(err, domainerrors.ErrDelegationLoop) {
		t.Fatalf("expected ErrDelegationLoop, got %v", err)
	}
	if ballot.VoterOf(voter).Voted != before.VoterOf(voter).Voted {
		t.Fatalf("voter voted flag changed after rejected delegation")
	}
	if ballot.VoterOf(delegatee).Voted != before.VoterOf(delegatee).Voted {
		t.Fatalf("delegatee voted flag changed after rejected delegation")
	}
	if ballot.VoterOf(voter).Weight != 2 {
		t.Fatalf("expected voter weight 2, got %d", ballot.VoterOf(voter).Weight)
	}
}

func TestDelegateRejectsLongLoop(t *testing.T) {
	ballot := newTestBallot(t)
	a, b, c := account(2), account(3), account(4)
	mustGiveRight(t, ballot, a, b, c)

	if _, err := Delegate(ballot, b, c); err != nil {
		t.Fatalf("b -> c failed: %v", err)
	}
	if _, err := Delegate(ballot, c, a); err != nil {
		t.Fatalf("c -> a failed: %v", err)
	}
	// Walking from b reaches c, then a.
	if _, err := Delegate(ballot, a, b); !errors.Is(err, domainerrors.ErrDelegationLoop) {
		t.Fatalf("expected ErrDelegationLoop, got %v", err)
	}
}

func TestDelegateFollowsChainToFinalDelegate(t *testing.T) {
	ballot := newTestBallot(t)
	voter, delegatee, final := account(2), account(3), account(4)
	mustGiveRight(t, ballot, voter, delegatee, final)

	if _, err := Delegate(ballot, delegatee, final); err != nil {
		t.Fatalf("delegatee delegation failed: %v", err)
	}
	resolved, err := Delegate(ballot, voter, delegatee)
	if err != nil {
		t.Fatalf("voter delegation failed: %v", err)
	}
	if resolved != final {
		t.Fatalf("expected final delegate %s, got %s", final.Hex(), resolved.Hex())
	}
	record := ballot.VoterOf(voter)
	if !record.Voted || record.Delegate == nil || *record.Delegate != final {
		t.Fatalf("expected voter to be voted and delegate to final, got %+v", record)
	}
	if weight := ballot.VoterOf(final).Weight; weight != 3 {
		t.Fatalf("expected final delegate weight 3, got %d", weight)
	}
}

func TestDelegateForwardsWeightToVotedDelegate(t *testing.T) {
	ballot := newTestBallot(t)
	voter, delegatee := account(2), account(3)
	mustGiveRight(t, ballot, voter, delegatee)

	if err := CastVote(ballot, delegatee, 1); err != nil {
		t.Fatalf("delegatee vote failed: %v", err)
	}
	if count := ballot.Proposals[1].VoteCount; count != 1 {
		t.Fatalf("expected 1 vote before delegation, got %d", count)
	}
	if _, err := Delegate(ballot, voter, delegatee); err != nil {
		t.Fatalf("delegation failed: %v", err)
	}
	if count := ballot.Proposals[1].VoteCount; count != 2 {
		t.Fatalf("expected 2 votes after delegation, got %d", count)
	}
	if weight := ballot.VoterOf(delegatee).Weight; weight != 1 {
		t.Fatalf("voted delegate weight must not change, got %d", weight)
	}
}

func TestDelegateAddsWeightToPendingDelegate(t *testing.T) {
	ballot := newTestBallot(t)
	voter, delegatee := account(2), account(3)
	mustGiveRight(t, ballot, voter, delegatee)

	if _, err := Delegate(ballot, voter, delegatee); err != nil {
		t.Fatalf("delegation failed: %v", err)
	}
	if weight := ballot.VoterOf(delegatee).Weight; weight != 2 {
		t.Fatalf("expected delegatee weight 2, got %d", weight)
	}
	if total := TotalVotes(ballot.Proposals); total != 0 {
		t.Fatalf("expected no votes before delegatee votes, got %d", total)
	}
	if weight := ballot.VoterOf(voter).Weight; weight != 1 {
		t.Fatalf("delegating voter keeps its own weight, got %d", weight)
	}

	if err := CastVote(ballot, delegatee, 2); err != nil {
		t.Fatalf("delegatee vote failed: %v", err)
	}
	if count := ballot.Proposals[2].VoteCount; count != 2 {
		t.Fatalf("expected 2 votes once delegatee votes, got %d", count)
	}
}

func TestDelegateRejectsVotedCaller(t *testing.T) {
	ballot := newTestBallot(t)
	mustGiveRight(t, ballot, account(2))
	if err := CastVote(ballot, account(2), 1); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := Delegate(ballot, account(2), account(3)); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
}

func TestDelegateWithZeroWeight(t *testing.T) {
	ballot := newTestBallot(t)
	attacker, delegatee := account(2), account(3)
	mustGiveRight(t, ballot, delegatee)

	if _, err := Delegate(ballot, attacker, delegatee); err != nil {
		t.Fatalf("zero weight delegation failed: %v", err)
	}
	if weight := ballot.VoterOf(delegatee).Weight; weight != 1 {
		t.Fatalf("expected delegatee weight to stay 1, got %d", weight)
	}
	if !ballot.VoterOf(attacker).Voted {
		t.Fatalf("expected attacker to be marked voted")
	}
	// The terminal delegate does not have to hold rights by default.
	if _, err := Delegate(ballot, account(4), account(5)); err != nil {
		t.Fatalf("delegation to unregistered identity failed: %v", err)
	}
}

func TestDelegateRequireRegisteredDelegate(t *testing.T) {
	ballot, err := InitializeBallot("ballot-strict", testProposals, account(1), true, time.Now())
	if err != nil {
		t.Fatalf("initialize ballot failed: %v", err)
	}
	mustGiveRight(t, &ballot, account(2))

	if _, err := Delegate(&ballot, account(2), account(3)); !errors.Is(err, domainerrors.ErrDelegateHasNoRight) {
		t.Fatalf("expected ErrDelegateHasNoRight, got %v", err)
	}
	if ballot.VoterOf(account(2)).Voted {
		t.Fatalf("rejected delegation must not mark voter as voted")
	}
	if _, err := Delegate(&ballot, account(2), account(1)); err != nil {
		t.Fatalf("delegation to chairperson failed: %v", err)
	}
}

func TestVotedFlagIsPermanent(t *testing.T) {
	ballot := newTestBallot(t)
	mustGiveRight(t, ballot, account(2), account(3))
	if _, err := Delegate(ballot, account(2), account(3)); err != nil {
		t.Fatalf("delegation failed: %v", err)
	}

	if err := CastVote(ballot, account(2), 0); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted on vote after delegation, got %v", err)
	}
	if _, err := Delegate(ballot, account(2), account(1)); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted on second delegation, got %v", err)
	}
	if err := GiveRightToVote(ballot, account(1), account(2)); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted on grant after delegation, got %v", err)
	}
}

func TestWinningProposal(t *testing.T) {
	ballot := newTestBallot(t)
	if winner := WinningProposal(ballot.Proposals); winner != 0 {
		t.Fatalf("expected default winner 0, got %d", winner)
	}
	if name := WinnerName(ballot.Proposals).String(); name != "Proposal 1" {
		t.Fatalf("expected default winner name Proposal 1, got %q", name)
	}

	if err := CastVote(ballot, account(1), 0); err != nil {
		t.Fatalf("chairperson vote failed: %v", err)
	}
	if winner := WinningProposal(ballot.Proposals); winner != 0 {
		t.Fatalf("expected winner 0, got %d", winner)
	}
	if name := WinnerName(ballot.Proposals).String(); name != "Proposal 1" {
		t.Fatalf("expected winner name Proposal 1, got %q", name)
	}
}

func TestWinningProposalTieKeepsEarliestIndex(t *testing.T) {
	proposals := []entities.Proposal{{VoteCount: 2}, {VoteCount: 2}, {VoteCount: 1}}
	if winner := WinningProposal(proposals); winner != 0 {
		t.Fatalf("expected tie to resolve to 0, got %d", winner)
	}
	proposals = []entities.Proposal{{VoteCount: 1}, {VoteCount: 3}, {VoteCount: 3}}
	if winner := WinningProposal(proposals); winner != 1 {
		t.Fatalf("expected tie to resolve to 1, got %d", winner)
	}
}

func TestWinningProposalAfterSeveralVotes(t *testing.T) {
	ballot := newTestBallot(t)
	mustGiveRight(t, ballot, account(2), account(3), account(4), account(5))

	votes := []struct {
		voter    entities.Identity
		proposal int
	}{
		{account(1), 2},
		{account(2), 1},
		{account(3), 2},
		{account(4), 0},
		{account(5), 2},
	}
	for _, item := range votes {
		if err := CastVote(ballot, item.voter, item.proposal); err != nil {
			t.Fatalf("vote by %s failed: %v", item.voter.Hex(), err)
		}
	}

	want := []uint64{1, 1, 3}
	for index, count := range want {
		if ballot.Proposals[index].VoteCount != count {
			t.Fatalf("expected %d votes for proposal %d, got %d", count, index, ballot.Proposals[index].VoteCount)
		}
	}
	if winner := WinningProposal(ballot.Proposals); winner != 2 {
		t.Fatalf("expected winner 2, got %d", winner)
	}
	if name := WinnerName(ballot.Proposals).String(); name != "Proposal 3" {
		t.Fatalf("expected winner name Proposal 3, got %q", name)
	}
}

func TestProposalAt(t *testing.T) {
	ballot := newTestBallot(t)
	proposal, err := ProposalAt(ballot, 2)
	if err != nil {
		t.Fatalf("proposal lookup failed: %v", err)
	}
	if proposal.Name.String() != "Proposal 3" {
		t.Fatalf("expected Proposal 3, got %q", proposal.Name.String())
	}
	if _, err := ProposalAt(ballot, 3); !errors.Is(err, domainerrors.ErrInvalidProposal) {
		t.Fatalf("expected ErrInvalidProposal, got %v", err)
	}
}

// pendingWeight is the weight held by registered voters that neither voted
// nor delegated yet.
func pendingWeight(ballot *entities.Ballot) uint64 {
	var total uint64
	for _, voter := range ballot.Voters {
		if !voter.Voted {
			total += voter.Weight
		}
	}
	return total
}

func TestRandomOperationsConserveWeight(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ballot := newTestBallot(t)
	granted := uint64(1)
	voted := make(map[entities.Identity]bool)

	for step := 0; step < 2000; step++ {
		caller := account(byte(1 + rng.Intn(24)))
		target := account(byte(1 + rng.Intn(24)))
		wasVoted := ballot.VoterOf(caller).Voted

		var err error
		switch rng.Intn(3) {
		case 0:
			err = GiveRightToVote(ballot, ballot.Chairperson, target)
			if err == nil {
				granted++
			}
		case 1:
			err = CastVote(ballot, caller, rng.Intn(len(ballot.Proposals)))
		default:
			_, err = Delegate(ballot, caller, target)
		}

		if wasVoted && !ballot.VoterOf(caller).Voted {
			t.Fatalf("step %d: voted flag of %s was cleared", step, caller.Hex())
		}
		for identity := range voted {
			if !ballot.VoterOf(identity).Voted {
				t.Fatalf("step %d: voted flag of %s was cleared", step, identity.Hex())
			}
		}
		for identity, voter := range ballot.Voters {
			if voter.Voted {
				voted[identity] = true
			}
		}

		total := TotalVotes(ballot.Proposals)
		if total+pendingWeight(ballot) != granted {
			t.Fatalf("step %d: weight not conserved: votes=%d pending=%d granted=%d", step, total, pendingWeight(ballot), granted)
		}
		if total > granted {
			t.Fatalf("step %d: votes %d exceed granted weight %d", step, total, granted)
		}
		assertDelegationForest(t, ballot)
	}
}

func assertDelegationForest(t *testing.T, ballot *entities.Ballot) {
	t.Helper()
	for start := range ballot.Voters {
		seen := map[entities.Identity]bool{start: true}
		current := start
		for {
			next := ballot.VoterOf(current).Delegate
			if next == nil {
				break
			}
			if seen[*next] {
				t.Fatalf("delegation cycle reachable from %s", start.Hex())
			}
			seen[*next] = true
			current = *next
		}
	}
}

func TestEngineDelegationScenario(t *testing.T) {
	ballot := newTestBallot(t)
	engine := NewEngine(ballot)
	chair, voter, delegatee := account(1), account(2), account(3)

	for _, identity := range []entities.Identity{voter, delegatee} {
		if err := engine.GiveRightToVote(chair, identity); err != nil {
			t.Fatalf("give right failed: %v", err)
		}
	}
	if _, err := engine.Delegate(voter, delegatee); err != nil {
		t.Fatalf("delegate failed: %v", err)
	}
	if err := engine.Vote(delegatee, 1); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	proposal, err := engine.Proposal(1)
	if err != nil {
		t.Fatalf("proposal lookup failed: %v", err)
	}
	if proposal.VoteCount != 2 {
		t.Fatalf("expected 2 votes, got %d", proposal.VoteCount)
	}
	if engine.WinningProposal() != 1 || engine.WinnerName().String() != "Proposal 2" {
		t.Fatalf("expected Proposal 2 to win, got %d %q", engine.WinningProposal(), engine.WinnerName().String())
	}
	if engine.Chairperson() != chair {
		t.Fatalf("unexpected chairperson %s", engine.Chairperson().Hex())
	}

	proposals := engine.Proposals()
	proposals[1].VoteCount = 99
	if ballot.Proposals[1].VoteCount != 2 {
		t.Fatalf("proposals accessor must return a copy")
	}
}
