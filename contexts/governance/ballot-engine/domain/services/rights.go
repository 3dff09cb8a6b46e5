package services

import (
	"ballot/contexts/governance/ballot-engine/domain/entities"
	domainerrors "ballot/contexts/governance/ballot-engine/domain/errors"
)

// GiveRightToVote admits target with weight 1. Only the chairperson may call it.
func GiveRightToVote(ballot *entities.Ballot, caller entities.Identity, target entities.Identity) error {
	if caller != ballot.Chairperson {
		return domainerrors.ErrUnauthorized
	}
	voter := ballot.VoterOf(target)
	if voter.Voted {
		return domainerrors.ErrAlreadyVoted
	}
	if voter.Weight != 0 {
		return domainerrors.ErrAlreadyRegistered
	}
	voter.Weight = 1
	ballot.SetVoter(target, voter)
	return nil
}
