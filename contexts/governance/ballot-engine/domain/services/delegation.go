package services

import (
	"ballot/contexts/governance/ballot-engine/domain/entities"
	domainerrors "ballot/contexts/governance/ballot-engine/domain/errors"
)

// ResolveDelegate follows delegate links starting at to and returns the first
// identity without a delegate. Reaching caller on the way means the new edge
// caller -> to would close a cycle.
//
// Without the caller's edge the stored links form a forest, so the walk visits
// at most one identity per stored voter. The bound only trips on corrupt state.
func ResolveDelegate(ballot *entities.Ballot, caller entities.Identity, to entities.Identity) (entities.Identity, error) {
	current := to
	for steps := 0; ; steps++ {
		if steps > len(ballot.Voters) {
			return entities.Identity{}, domainerrors.ErrDelegationLoop
		}
		next := ballot.VoterOf(current).Delegate
		if next == nil {
			return current, nil
		}
		current = *next
		if current == caller {
			return entities.Identity{}, domainerrors.ErrDelegationLoop
		}
	}
}

// Delegate hands caller's weight to the terminal delegate of to. When that
// delegate already voted the weight goes straight to the chosen proposal.
func Delegate(ballot *entities.Ballot, caller entities.Identity, to entities.Identity) (entities.Identity, error) {
	sender := ballot.VoterOf(caller)
	if sender.Voted {
		return entities.Identity{}, domainerrors.ErrAlreadyVoted
	}
	if to == caller {
		return entities.Identity{}, domainerrors.ErrSelfDelegation
	}

	final, err := ResolveDelegate(ballot, caller, to)
	if err != nil {
		return entities.Identity{}, err
	}
	delegate := ballot.VoterOf(final)
	if ballot.RequireRegisteredDelegate && delegate.Weight == 0 {
		return entities.Identity{}, domainerrors.ErrDelegateHasNoRight
	}
	if delegate.Voted && !ballot.ValidProposal(delegate.Vote) {
		// A voted terminal delegate always holds a recorded proposal index.
		return entities.Identity{}, domainerrors.ErrInvalidProposal
	}

	sender.Voted = true
	sender.Delegate = &final
	ballot.SetVoter(caller, sender)

	if delegate.Voted {
		ballot.Proposals[delegate.Vote].VoteCount += sender.Weight
		return final, nil
	}
	delegate.Weight += sender.Weight
	ballot.SetVoter(final, delegate)
	return final, nil
}
