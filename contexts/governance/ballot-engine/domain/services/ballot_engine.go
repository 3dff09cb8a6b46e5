package services

import (
	"strings"
	"time"

	"ballot/contexts/governance/ballot-engine/domain/entities"
	domainerrors "ballot/contexts/governance/ballot-engine/domain/errors"
)

// InitializeBallot builds a fresh ballot. The chairperson starts registered
// with weight 1 and every proposal starts at zero votes.
func InitializeBallot(
	ballotID string,
	proposalNames []string,
	chairperson entities.Identity,
	requireRegisteredDelegate bool,
	now time.Time,
) (entities.Ballot, error) {
	if strings.TrimSpace(ballotID) == "" || len(proposalNames) == 0 {
		return entities.Ballot{}, domainerrors.ErrInvalidBallotInput
	}
	if chairperson == (entities.Identity{}) {
		return entities.Ballot{}, domainerrors.ErrInvalidIdentity
	}

	proposals := make([]entities.Proposal, 0, len(proposalNames))
	for _, raw := range proposalNames {
		name, ok := entities.NewProposalName(raw)
		if !ok {
			return entities.Ballot{}, domainerrors.ErrInvalidBallotInput
		}
		proposals = append(proposals, entities.Proposal{Name: name})
	}

	ballot := entities.Ballot{
		BallotID:                  strings.TrimSpace(ballotID),
		Chairperson:               chairperson,
		Proposals:                 proposals,
		RequireRegisteredDelegate: requireRegisteredDelegate,
		CreatedAt:                 now.UTC(),
		UpdatedAt:                 now.UTC(),
	}
	ballot.SetVoter(chairperson, entities.Voter{Weight: 1})
	return ballot, nil
}

// ProposalAt is the bounds-checked proposals(index) accessor.
func ProposalAt(ballot *entities.Ballot, index int) (entities.Proposal, error) {
	if !ballot.ValidProposal(index) {
		return entities.Proposal{}, domainerrors.ErrInvalidProposal
	}
	return ballot.Proposals[index], nil
}

// Engine binds the ballot operations to one aggregate. It holds no state of
// its own; callers serialize access to the ballot.
type Engine struct {
	ballot *entities.Ballot
}

func NewEngine(ballot *entities.Ballot) Engine {
	return Engine{ballot: ballot}
}

func (e Engine) GiveRightToVote(caller, target entities.Identity) error {
	return GiveRightToVote(e.ballot, caller, target)
}

func (e Engine) Vote(caller entities.Identity, proposal int) error {
	return CastVote(e.ballot, caller, proposal)
}

// Delegate returns the terminal delegate that received the weight.
func (e Engine) Delegate(caller, to entities.Identity) (entities.Identity, error) {
	return Delegate(e.ballot, caller, to)
}

func (e Engine) WinningProposal() int {
	return WinningProposal(e.ballot.Proposals)
}

func (e Engine) WinnerName() entities.ProposalName {
	return WinnerName(e.ballot.Proposals)
}

// Proposals returns a copy of the registry in declaration order.
func (e Engine) Proposals() []entities.Proposal {
	return append([]entities.Proposal(nil), e.ballot.Proposals...)
}

func (e Engine) Proposal(index int) (entities.Proposal, error) {
	return ProposalAt(e.ballot, index)
}

func (e Engine) Voter(identity entities.Identity) entities.Voter {
	return e.ballot.VoterOf(identity)
}

func (e Engine) Chairperson() entities.Identity {
	return e.ballot.Chairperson
}
