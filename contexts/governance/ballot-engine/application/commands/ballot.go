package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	contractsv1 "ballot/contracts/gen/events/v1"
	application "ballot/contexts/governance/ballot-engine/application"
	"ballot/contexts/governance/ballot-engine/domain/entities"
	domainerrors "ballot/contexts/governance/ballot-engine/domain/errors"
	"ballot/contexts/governance/ballot-engine/domain/services"
	"ballot/contexts/governance/ballot-engine/ports"
)

const moduleName = "governance/ballot-engine"

// InitializeBallotCommand deploys a new ballot. The caller becomes chairperson.
// BallotID is optional; an ID is generated when it is empty.
type InitializeBallotCommand struct {
	BallotID                  string
	Chairperson               string
	Proposals                 []string
	RequireRegisteredDelegate bool
}

type GiveRightCommand struct {
	BallotID string
	Caller   string
	Voter    string
}

type VoteCommand struct {
	BallotID string
	Caller   string
	Proposal int
}

type DelegateCommand struct {
	BallotID string
	Caller   string
	To       string
}

// VoteResult carries the caller's record and the proposal after the vote.
type VoteResult struct {
	Voter    entities.Voter
	Proposal entities.Proposal
}

// DelegateResult reports where the caller's weight ended up. When the final
// delegate had already voted, Forwarded is set and ProposalIndex names the
// proposal that received the weight.
type DelegateResult struct {
	Voter         entities.Voter
	FinalDelegate entities.Identity
	Forwarded     bool
	ProposalIndex int
}

// BallotUseCase orchestrates the mutating ballot operations. Each operation
// runs inside one repository transition, and its outbox event is stored in
// that same transition.
type BallotUseCase struct {
	Ballots ports.BallotRepository
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

func (uc BallotUseCase) InitializeBallot(ctx context.Context, cmd InitializeBallotCommand) (entities.Ballot, error) {
	logger := application.ResolveLogger(uc.Logger)
	chairperson, err := parseIdentity(cmd.Chairperson)
	if err != nil {
		logger.Warn("ballot initialize rejected invalid chairperson",
			"event", "ballot_initialize_invalid_identity",
			"module", moduleName,
			"layer", "application",
			"chairperson", strings.TrimSpace(cmd.Chairperson),
		)
		return entities.Ballot{}, err
	}

	ballotID := strings.TrimSpace(cmd.BallotID)
	if ballotID == "" {
		ballotID, err = uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.Ballot{}, err
		}
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Ballot{}, err
	}

	now := uc.now()
	ballot, err := services.InitializeBallot(ballotID, cmd.Proposals, chairperson, cmd.RequireRegisteredDelegate, now)
	if err != nil {
		logger.Warn("ballot initialize validation failed",
			"event", "ballot_initialize_validation_failed",
			"module", moduleName,
			"layer", "application",
			"ballot_id", ballotID,
			"proposal_count", len(cmd.Proposals),
			"error", err.Error(),
		)
		return entities.Ballot{}, err
	}

	names := make([]string, 0, len(ballot.Proposals))
	for _, proposal := range ballot.Proposals {
		names = append(names, proposal.Name.String())
	}
	events, err := ballotEvents(eventID, contractsv1.TopicBallotInitialized, ballot.BallotID, now, map[string]any{
		"chairperson":                 ballot.Chairperson.Hex(),
		"proposals":                   names,
		"require_registered_delegate": ballot.RequireRegisteredDelegate,
	})
	if err != nil {
		return entities.Ballot{}, err
	}
	if err := uc.Ballots.CreateBallot(ctx, ballot, events); err != nil {
		logger.Error("ballot initialize persist failed",
			"event", "ballot_initialize_persist_failed",
			"module", moduleName,
			"layer", "application",
			"ballot_id", ballotID,
			"error", err.Error(),
		)
		return entities.Ballot{}, err
	}

	logger.Info("ballot initialized",
		"event", "ballot_initialized",
		"module", moduleName,
		"layer", "application",
		"ballot_id", ballot.BallotID,
		"chairperson", ballot.Chairperson.Hex(),
		"proposal_count", len(ballot.Proposals),
		"require_registered_delegate", ballot.RequireRegisteredDelegate,
	)
	return ballot, nil
}

func (uc BallotUseCase) GiveRightToVote(ctx context.Context, cmd GiveRightCommand) (entities.Voter, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller, err := parseIdentity(cmd.Caller)
	if err != nil {
		return entities.Voter{}, err
	}
	target, err := parseIdentity(cmd.Voter)
	if err != nil {
		return entities.Voter{}, err
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Voter{}, err
	}

	now := uc.now()
	var voter entities.Voter
	updated, err := uc.Ballots.UpdateBallot(ctx, cmd.BallotID, func(ballot *entities.Ballot) ([]ports.EventEnvelope, error) {
		if err := services.NewEngine(ballot).GiveRightToVote(caller, target); err != nil {
			return nil, err
		}
		ballot.UpdatedAt = now
		voter = ballot.VoterOf(target)
		return ballotEvents(eventID, contractsv1.TopicBallotVoterRegistered, ballot.BallotID, now, map[string]any{
			"voter":  target.Hex(),
			"weight": voter.Weight,
		})
	})
	if err != nil {
		logger.Warn("give right to vote rejected",
			"event", "ballot_give_right_rejected",
			"module", moduleName,
			"layer", "application",
			"ballot_id", cmd.BallotID,
			"caller", caller.Hex(),
			"voter", target.Hex(),
			"error", err.Error(),
		)
		return entities.Voter{}, err
	}

	logger.Info("voting right granted",
		"event", "ballot_voter_registered",
		"module", moduleName,
		"layer", "application",
		"ballot_id", updated.BallotID,
		"voter", target.Hex(),
	)
	return voter, nil
}

func (uc BallotUseCase) Vote(ctx context.Context, cmd VoteCommand) (VoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller, err := parseIdentity(cmd.Caller)
	if err != nil {
		return VoteResult{}, err
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return VoteResult{}, err
	}

	now := uc.now()
	var result VoteResult
	updated, err := uc.Ballots.UpdateBallot(ctx, cmd.BallotID, func(ballot *entities.Ballot) ([]ports.EventEnvelope, error) {
		if err := services.NewEngine(ballot).Vote(caller, cmd.Proposal); err != nil {
			return nil, err
		}
		ballot.UpdatedAt = now
		result = VoteResult{
			Voter:    ballot.VoterOf(caller),
			Proposal: ballot.Proposals[cmd.Proposal],
		}
		return ballotEvents(eventID, contractsv1.TopicBallotVoteCast, ballot.BallotID, now, map[string]any{
			"voter":      caller.Hex(),
			"proposal":   cmd.Proposal,
			"weight":     result.Voter.Weight,
			"vote_count": result.Proposal.VoteCount,
		})
	})
	if err != nil {
		logger.Warn("vote rejected",
			"event", "ballot_vote_rejected",
			"module", moduleName,
			"layer", "application",
			"ballot_id", cmd.BallotID,
			"caller", caller.Hex(),
			"proposal", cmd.Proposal,
			"error", err.Error(),
		)
		return VoteResult{}, err
	}

	logger.Info("vote cast",
		"event", "ballot_vote_cast",
		"module", moduleName,
		"layer", "application",
		"ballot_id", updated.BallotID,
		"voter", caller.Hex(),
		"proposal", cmd.Proposal,
		"weight", result.Voter.Weight,
	)
	return result, nil
}

func (uc BallotUseCase) Delegate(ctx context.Context, cmd DelegateCommand) (DelegateResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller, err := parseIdentity(cmd.Caller)
	if err != nil {
		return DelegateResult{}, err
	}
	to, err := parseIdentity(cmd.To)
	if err != nil {
		return DelegateResult{}, err
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return DelegateResult{}, err
	}

	now := uc.now()
	var result DelegateResult
	updated, err := uc.Ballots.UpdateBallot(ctx, cmd.BallotID, func(ballot *entities.Ballot) ([]ports.EventEnvelope, error) {
		final, err := services.NewEngine(ballot).Delegate(caller, to)
		if err != nil {
			return nil, err
		}
		ballot.UpdatedAt = now

		delegate := ballot.VoterOf(final)
		result = DelegateResult{
			Voter:         ballot.VoterOf(caller),
			FinalDelegate: final,
			Forwarded:     delegate.Voted,
			ProposalIndex: -1,
		}
		data := map[string]any{
			"voter":          caller.Hex(),
			"to":             to.Hex(),
			"final_delegate": final.Hex(),
			"weight":         result.Voter.Weight,
			"forwarded":      delegate.Voted,
		}
		if delegate.Voted {
			result.ProposalIndex = delegate.Vote
			data["proposal"] = delegate.Vote
		}
		return ballotEvents(eventID, contractsv1.TopicBallotVoteDelegated, ballot.BallotID, now, data)
	})
	if err != nil {
		logger.Warn("delegation rejected",
			"event", "ballot_delegation_rejected",
			"module", moduleName,
			"layer", "application",
			"ballot_id", cmd.BallotID,
			"caller", caller.Hex(),
			"to", to.Hex(),
			"error", err.Error(),
		)
		return DelegateResult{}, err
	}

	logger.Info("vote delegated",
		"event", "ballot_vote_delegated",
		"module", moduleName,
		"layer", "application",
		"ballot_id", updated.BallotID,
		"voter", caller.Hex(),
		"final_delegate", result.FinalDelegate.Hex(),
		"weight", result.Voter.Weight,
		"forwarded", result.Forwarded,
	)
	return result, nil
}

func (uc BallotUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func parseIdentity(raw string) (entities.Identity, error) {
	identity, ok := entities.ParseIdentity(raw)
	if !ok {
		return entities.Identity{}, domainerrors.ErrInvalidIdentity
	}
	return identity, nil
}
