package queries

import (
	"context"
	"strings"

	"ballot/contexts/governance/ballot-engine/domain/entities"
	domainerrors "ballot/contexts/governance/ballot-engine/domain/errors"
	"ballot/contexts/governance/ballot-engine/domain/services"
	"ballot/contexts/governance/ballot-engine/ports"
)

// Winner is the current leader of a ballot.
type Winner struct {
	Index     int
	Name      entities.ProposalName
	VoteCount uint64
}

// BallotOverview summarizes one ballot for read models.
type BallotOverview struct {
	BallotID                  string
	Chairperson               entities.Identity
	Proposals                 []entities.Proposal
	RequireRegisteredDelegate bool
	RegisteredVoters          int
	TotalVotes                uint64
	Winner                    Winner
}

type TallyUseCase struct {
	Ballots ports.BallotRepository
}

func (uc TallyUseCase) WinningProposal(ctx context.Context, ballotID string) (int, error) {
	ballot, err := uc.load(ctx, ballotID)
	if err != nil {
		return 0, err
	}
	return services.NewEngine(&ballot).WinningProposal(), nil
}

func (uc TallyUseCase) WinnerName(ctx context.Context, ballotID string) (entities.ProposalName, error) {
	ballot, err := uc.load(ctx, ballotID)
	if err != nil {
		return entities.ProposalName{}, err
	}
	return services.NewEngine(&ballot).WinnerName(), nil
}

// Winner returns index, name and count from one consistent snapshot.
func (uc TallyUseCase) Winner(ctx context.Context, ballotID string) (Winner, error) {
	ballot, err := uc.load(ctx, ballotID)
	if err != nil {
		return Winner{}, err
	}
	return winnerOf(&ballot), nil
}

func (uc TallyUseCase) Proposals(ctx context.Context, ballotID string) ([]entities.Proposal, error) {
	ballot, err := uc.load(ctx, ballotID)
	if err != nil {
		return nil, err
	}
	return services.NewEngine(&ballot).Proposals(), nil
}

func (uc TallyUseCase) Proposal(ctx context.Context, ballotID string, index int) (entities.Proposal, error) {
	ballot, err := uc.load(ctx, ballotID)
	if err != nil {
		return entities.Proposal{}, err
	}
	return services.NewEngine(&ballot).Proposal(index)
}

// Voter returns the registry record of identity; unknown identities yield the
// zero record rather than an error.
func (uc TallyUseCase) Voter(ctx context.Context, ballotID string, identity string) (entities.Voter, error) {
	parsed, ok := entities.ParseIdentity(identity)
	if !ok {
		return entities.Voter{}, domainerrors.ErrInvalidIdentity
	}
	ballot, err := uc.load(ctx, ballotID)
	if err != nil {
		return entities.Voter{}, err
	}
	return services.NewEngine(&ballot).Voter(parsed), nil
}

func (uc TallyUseCase) Ballot(ctx context.Context, ballotID string) (BallotOverview, error) {
	ballot, err := uc.load(ctx, ballotID)
	if err != nil {
		return BallotOverview{}, err
	}
	registered := 0
	for _, voter := range ballot.Voters {
		if voter.Weight > 0 {
			registered++
		}
	}
	return BallotOverview{
		BallotID:                  ballot.BallotID,
		Chairperson:               ballot.Chairperson,
		Proposals:                 services.NewEngine(&ballot).Proposals(),
		RequireRegisteredDelegate: ballot.RequireRegisteredDelegate,
		RegisteredVoters:          registered,
		TotalVotes:                services.TotalVotes(ballot.Proposals),
		Winner:                    winnerOf(&ballot),
	}, nil
}

func (uc TallyUseCase) load(ctx context.Context, ballotID string) (entities.Ballot, error) {
	ballotID = strings.TrimSpace(ballotID)
	if ballotID == "" {
		return entities.Ballot{}, domainerrors.ErrBallotNotFound
	}
	return uc.Ballots.GetBallot(ctx, ballotID)
}

func winnerOf(ballot *entities.Ballot) Winner {
	engine := services.NewEngine(ballot)
	index := engine.WinningProposal()
	winner := Winner{Index: index, Name: engine.WinnerName()}
	if ballot.ValidProposal(index) {
		winner.VoteCount = ballot.Proposals[index].VoteCount
	}
	return winner
}
