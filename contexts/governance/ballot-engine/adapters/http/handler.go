package httpadapter

import (
	"context"
	"errors"
	"log/slog"

	application "ballot/contexts/governance/ballot-engine/application"
	"ballot/contexts/governance/ballot-engine/application/commands"
	"ballot/contexts/governance/ballot-engine/application/queries"
	"ballot/contexts/governance/ballot-engine/domain/entities"
	domainerrors "ballot/contexts/governance/ballot-engine/domain/errors"
	httptransport "ballot/contexts/governance/ballot-engine/transport/http"
)

type Handler struct {
	Ballots commands.BallotUseCase
	Tally   queries.TallyUseCase
	Logger  *slog.Logger
}

// rejections are expected outcomes of a request and log at warn level.
var rejections = []error{
	domainerrors.ErrUnauthorized,
	domainerrors.ErrAlreadyVoted,
	domainerrors.ErrAlreadyRegistered,
	domainerrors.ErrNoRightToVote,
	domainerrors.ErrInvalidProposal,
	domainerrors.ErrSelfDelegation,
	domainerrors.ErrDelegationLoop,
	domainerrors.ErrDelegateHasNoRight,
	domainerrors.ErrInvalidBallotInput,
	domainerrors.ErrInvalidIdentity,
	domainerrors.ErrBallotNotFound,
}

func (h Handler) logFailure(ctx context.Context, event string, ballotID string, err error) error {
	logger := application.ResolveLogger(h.Logger)
	level := slog.LevelError
	for _, rejection := range rejections {
		if errors.Is(err, rejection) {
			level = slog.LevelWarn
			break
		}
	}
	logger.Log(ctx, level, "ballot request failed",
		"event", event,
		"module", "governance/ballot-engine",
		"layer", "transport",
		"ballot_id", ballotID,
		"error", err.Error(),
	)
	return err
}

// InitializeBallotHandler godoc
// @Summary Deploy a ballot
// @Description Creates a ballot with a fixed proposal list. The caller becomes chairperson with weight 1.
// @Tags ballot-engine
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller address"
// @Param request body httptransport.InitializeBallotRequest true "Proposal names (at most 32 bytes each)"
// @Success 201 {object} httptransport.BallotResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/ballots [post]
func (h Handler) InitializeBallotHandler(
	ctx context.Context,
	callerID string,
	req httptransport.InitializeBallotRequest,
) (httptransport.BallotResponse, error) {
	ballot, err := h.Ballots.InitializeBallot(ctx, commands.InitializeBallotCommand{
		BallotID:                  req.BallotID,
		Chairperson:               callerID,
		Proposals:                 req.Proposals,
		RequireRegisteredDelegate: req.RequireRegisteredDelegate,
	})
	if err != nil {
		return httptransport.BallotResponse{}, h.logFailure(ctx, "http_initialize_ballot_failed", req.BallotID, err)
	}
	return h.BallotHandler(ctx, ballot.BallotID)
}

// BallotHandler godoc
// @Summary Get ballot overview
// @Tags ballot-engine
// @Produce json
// @Param ballot_id path string true "Ballot id"
// @Success 200 {object} httptransport.BallotResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/ballots/{ballot_id} [get]
func (h Handler) BallotHandler(ctx context.Context, ballotID string) (httptransport.BallotResponse, error) {
	overview, err := h.Tally.Ballot(ctx, ballotID)
	if err != nil {
		return httptransport.BallotResponse{}, h.logFailure(ctx, "http_get_ballot_failed", ballotID, err)
	}
	return httptransport.BallotResponse{
		BallotID:                  overview.BallotID,
		Chairperson:               overview.Chairperson.Hex(),
		Proposals:                 mapProposals(overview.Proposals),
		RequireRegisteredDelegate: overview.RequireRegisteredDelegate,
		RegisteredVoters:          overview.RegisteredVoters,
		TotalVotes:                overview.TotalVotes,
		Winner:                    mapWinner(overview.Winner),
	}, nil
}

// GiveRightToVoteHandler godoc
// @Summary Give right to vote
// @Description Chairperson-only. Sets the voter weight to 1.
// @Tags ballot-engine
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller address"
// @Param ballot_id path string true "Ballot id"
// @Param request body httptransport.GiveRightRequest true "Voter address"
// @Success 200 {object} httptransport.VoterResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/ballots/{ballot_id}/voters [post]
func (h Handler) GiveRightToVoteHandler(
	ctx context.Context,
	ballotID string,
	callerID string,
	req httptransport.GiveRightRequest,
) (httptransport.VoterResponse, error) {
	voter, err := h.Ballots.GiveRightToVote(ctx, commands.GiveRightCommand{
		BallotID: ballotID,
		Caller:   callerID,
		Voter:    req.Voter,
	})
	if err != nil {
		return httptransport.VoterResponse{}, h.logFailure(ctx, "http_give_right_failed", ballotID, err)
	}
	identity, _ := entities.ParseIdentity(req.Voter)
	return mapVoter(identity, voter), nil
}

// VoterHandler godoc
// @Summary Get voter record
// @Tags ballot-engine
// @Produce json
// @Param ballot_id path string true "Ballot id"
// @Param address path string true "Voter address"
// @Success 200 {object} httptransport.VoterResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/ballots/{ballot_id}/voters/{address} [get]
func (h Handler) VoterHandler(ctx context.Context, ballotID string, address string) (httptransport.VoterResponse, error) {
	voter, err := h.Tally.Voter(ctx, ballotID, address)
	if err != nil {
		return httptransport.VoterResponse{}, h.logFailure(ctx, "http_get_voter_failed", ballotID, err)
	}
	identity, _ := entities.ParseIdentity(address)
	return mapVoter(identity, voter), nil
}

// VoteHandler godoc
// @Summary Cast a vote
// @Tags ballot-engine
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller address"
// @Param ballot_id path string true "Ballot id"
// @Param request body httptransport.VoteRequest true "Proposal index"
// @Success 200 {object} httptransport.VoteResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/ballots/{ballot_id}/votes [post]
func (h Handler) VoteHandler(
	ctx context.Context,
	ballotID string,
	callerID string,
	req httptransport.VoteRequest,
) (httptransport.VoteResponse, error) {
	if req.Proposal == nil {
		return httptransport.VoteResponse{}, h.logFailure(ctx, "http_vote_failed", ballotID, domainerrors.ErrInvalidProposal)
	}
	result, err := h.Ballots.Vote(ctx, commands.VoteCommand{
		BallotID: ballotID,
		Caller:   callerID,
		Proposal: *req.Proposal,
	})
	if err != nil {
		return httptransport.VoteResponse{}, h.logFailure(ctx, "http_vote_failed", ballotID, err)
	}
	identity, _ := entities.ParseIdentity(callerID)
	return httptransport.VoteResponse{
		Voter:    mapVoter(identity, result.Voter),
		Proposal: mapProposal(*req.Proposal, result.Proposal),
	}, nil
}

// DelegateHandler godoc
// @Summary Delegate vote
// @Description Follows the delegation chain of the target and hands the caller's weight to its end.
// @Tags ballot-engine
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller address"
// @Param ballot_id path string true "Ballot id"
// @Param request body httptransport.DelegateRequest true "Delegate address"
// @Success 200 {object} httptransport.DelegateResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/ballots/{ballot_id}/delegations [post]
func (h Handler) DelegateHandler(
	ctx context.Context,
	ballotID string,
	callerID string,
	req httptransport.DelegateRequest,
) (httptransport.DelegateResponse, error) {
	result, err := h.Ballots.Delegate(ctx, commands.DelegateCommand{
		BallotID: ballotID,
		Caller:   callerID,
		To:       req.To,
	})
	if err != nil {
		return httptransport.DelegateResponse{}, h.logFailure(ctx, "http_delegate_failed", ballotID, err)
	}
	identity, _ := entities.ParseIdentity(callerID)
	response := httptransport.DelegateResponse{
		Voter:         mapVoter(identity, result.Voter),
		FinalDelegate: result.FinalDelegate.Hex(),
		Forwarded:     result.Forwarded,
	}
	if result.Forwarded {
		index := result.ProposalIndex
		response.Proposal = &index
	}
	return response, nil
}

// ProposalsHandler godoc
// @Summary List proposals
// @Tags ballot-engine
// @Produce json
// @Param ballot_id path string true "Ballot id"
// @Success 200 {object} httptransport.ProposalsResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/ballots/{ballot_id}/proposals [get]
func (h Handler) ProposalsHandler(ctx context.Context, ballotID string) (httptransport.ProposalsResponse, error) {
	proposals, err := h.Tally.Proposals(ctx, ballotID)
	if err != nil {
		return httptransport.ProposalsResponse{}, h.logFailure(ctx, "http_list_proposals_failed", ballotID, err)
	}
	return httptransport.ProposalsResponse{Items: mapProposals(proposals)}, nil
}

// ProposalHandler godoc
// @Summary Get proposal by index
// @Tags ballot-engine
// @Produce json
// @Param ballot_id path string true "Ballot id"
// @Param index path int true "Proposal index"
// @Success 200 {object} httptransport.ProposalResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/ballots/{ballot_id}/proposals/{index} [get]
func (h Handler) ProposalHandler(ctx context.Context, ballotID string, index int) (httptransport.ProposalResponse, error) {
	proposal, err := h.Tally.Proposal(ctx, ballotID, index)
	if err != nil {
		return httptransport.ProposalResponse{}, h.logFailure(ctx, "http_get_proposal_failed", ballotID, err)
	}
	return mapProposal(index, proposal), nil
}

// WinnerHandler godoc
// @Summary Get winning proposal
// @Description Ties resolve to the lowest index; a ballot without votes reports proposal 0.
// @Tags ballot-engine
// @Produce json
// @Param ballot_id path string true "Ballot id"
// @Success 200 {object} httptransport.WinnerResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/ballots/{ballot_id}/winner [get]
func (h Handler) WinnerHandler(ctx context.Context, ballotID string) (httptransport.WinnerResponse, error) {
	winner, err := h.Tally.Winner(ctx, ballotID)
	if err != nil {
		return httptransport.WinnerResponse{}, h.logFailure(ctx, "http_get_winner_failed", ballotID, err)
	}
	return mapWinner(winner), nil
}

func mapProposal(index int, proposal entities.Proposal) httptransport.ProposalResponse {
	return httptransport.ProposalResponse{
		Index:     index,
		Name:      proposal.Name.String(),
		NameHex:   proposal.Name.Hex(),
		VoteCount: proposal.VoteCount,
	}
}

func mapProposals(proposals []entities.Proposal) []httptransport.ProposalResponse {
	items := make([]httptransport.ProposalResponse, 0, len(proposals))
	for index, proposal := range proposals {
		items = append(items, mapProposal(index, proposal))
	}
	return items
}

func mapVoter(identity entities.Identity, voter entities.Voter) httptransport.VoterResponse {
	response := httptransport.VoterResponse{
		Address: identity.Hex(),
		Weight:  voter.Weight,
		Voted:   voter.Voted,
		Vote:    voter.Vote,
	}
	if voter.Delegate != nil {
		response.Delegate = voter.Delegate.Hex()
	}
	return response
}

func mapWinner(winner queries.Winner) httptransport.WinnerResponse {
	return httptransport.WinnerResponse{
		WinningProposal: winner.Index,
		WinnerName:      winner.Name.String(),
		WinnerNameHex:   winner.Name.Hex(),
		VoteCount:       winner.VoteCount,
	}
}
