package services

import (
	"ballot/contexts/governance/ballot-engine/domain/entities"
	domainerrors "ballot/contexts/governance/ballot-engine/domain/errors"
)

// CastVote records a direct vote and adds the caller's full weight, including
// any weight delegated to them so far, to the chosen proposal.
func CastVote(ballot *entities.Ballot, caller entities.Identity, proposal int) error {
	voter := ballot.VoterOf(caller)
	if voter.Weight == 0 {
		return domainerrors.ErrNoRightToVote
	}
	if voter.Voted {
		return domainerrors.ErrAlreadyVoted
	}
	if !ballot.ValidProposal(proposal) {
		return domainerrors.ErrInvalidProposal
	}

	voter.Voted = true
	voter.Vote = proposal
	ballot.SetVoter(caller, voter)
	ballot.Proposals[proposal].VoteCount += voter.Weight
	return nil
}
