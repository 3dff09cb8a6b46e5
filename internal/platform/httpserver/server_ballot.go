package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	ballotdomainerrors "ballot/contexts/governance/ballot-engine/domain/errors"
	ballothttp "ballot/contexts/governance/ballot-engine/transport/http"
)

func (s *Server) registerBallotRoutes() {
	s.mux.HandleFunc("POST /v1/ballots", s.handleInitializeBallot)
	s.mux.HandleFunc("GET /v1/ballots/{ballot_id}", s.handleGetBallot)
	s.mux.HandleFunc("POST /v1/ballots/{ballot_id}/voters", s.handleGiveRightToVote)
	s.mux.HandleFunc("GET /v1/ballots/{ballot_id}/voters/{address}", s.handleGetVoter)
	s.mux.HandleFunc("POST /v1/ballots/{ballot_id}/votes", s.handleVote)
	s.mux.HandleFunc("POST /v1/ballots/{ballot_id}/delegations", s.handleDelegate)
	s.mux.HandleFunc("GET /v1/ballots/{ballot_id}/proposals", s.handleListProposals)
	s.mux.HandleFunc("GET /v1/ballots/{ballot_id}/proposals/{index}", s.handleGetProposal)
	s.mux.HandleFunc("GET /v1/ballots/{ballot_id}/winner", s.handleGetWinner)
}

func (s *Server) handleInitializeBallot(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req ballothttp.InitializeBallotRequest
	if !decodeBallotBody(w, r, &req) {
		return
	}
	resp, err := s.ballot.Handler.InitializeBallotHandler(r.Context(), callerID, req)
	if err != nil {
		s.writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetBallot(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballot.Handler.BallotHandler(r.Context(), r.PathValue("ballot_id"))
	if err != nil {
		s.writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGiveRightToVote(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req ballothttp.GiveRightRequest
	if !decodeBallotBody(w, r, &req) {
		return
	}
	resp, err := s.ballot.Handler.GiveRightToVoteHandler(r.Context(), r.PathValue("ballot_id"), callerID, req)
	if err != nil {
		s.writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetVoter(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballot.Handler.VoterHandler(r.Context(), r.PathValue("ballot_id"), r.PathValue("address"))
	if err != nil {
		s.writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req ballothttp.VoteRequest
	if !decodeBallotBody(w, r, &req) {
		return
	}
	resp, err := s.ballot.Handler.VoteHandler(r.Context(), r.PathValue("ballot_id"), callerID, req)
	if err != nil {
		s.writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDelegate(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req ballothttp.DelegateRequest
	if !decodeBallotBody(w, r, &req) {
		return
	}
	resp, err := s.ballot.Handler.DelegateHandler(r.Context(), r.PathValue("ballot_id"), callerID, req)
	if err != nil {
		s.writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballot.Handler.ProposalsHandler(r.Context(), r.PathValue("ballot_id"))
	if err != nil {
		s.writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_proposal", "proposal index must be an integer")
		return
	}
	resp, err := s.ballot.Handler.ProposalHandler(r.Context(), r.PathValue("ballot_id"), index)
	if err != nil {
		s.writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetWinner(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballot.Handler.WinnerHandler(r.Context(), r.PathValue("ballot_id"))
	if err != nil {
		s.writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func requireCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	callerID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if callerID == "" {
		writeBallotError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return callerID, true
}

func decodeBallotBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func (s *Server) writeBallotDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ballotdomainerrors.ErrUnauthorized):
		writeBallotError(w, http.StatusForbidden, "unauthorized", "Only chairperson can give right to vote.")
	case errors.Is(err, ballotdomainerrors.ErrAlreadyVoted):
		writeBallotError(w, http.StatusConflict, "already_voted", "The voter already voted.")
	case errors.Is(err, ballotdomainerrors.ErrAlreadyRegistered):
		// Re-registration is rejected without a reason string.
		writeBallotError(w, http.StatusConflict, "already_registered", "")
	case errors.Is(err, ballotdomainerrors.ErrNoRightToVote):
		writeBallotError(w, http.StatusForbidden, "no_right_to_vote", "Has no right to vote")
	case errors.Is(err, ballotdomainerrors.ErrInvalidProposal):
		writeBallotError(w, http.StatusBadRequest, "invalid_proposal", err.Error())
	case errors.Is(err, ballotdomainerrors.ErrSelfDelegation):
		writeBallotError(w, http.StatusConflict, "self_delegation", "Self-delegation is disallowed.")
	case errors.Is(err, ballotdomainerrors.ErrDelegationLoop):
		writeBallotError(w, http.StatusConflict, "delegation_loop", "Found loop in delegation.")
	case errors.Is(err, ballotdomainerrors.ErrDelegateHasNoRight):
		writeBallotError(w, http.StatusConflict, "delegate_has_no_right", err.Error())
	case errors.Is(err, ballotdomainerrors.ErrInvalidIdentity):
		writeBallotError(w, http.StatusBadRequest, "invalid_identity", err.Error())
	case errors.Is(err, ballotdomainerrors.ErrInvalidBallotInput):
		writeBallotError(w, http.StatusBadRequest, "invalid_ballot_input", err.Error())
	case errors.Is(err, ballotdomainerrors.ErrBallotNotFound):
		writeBallotError(w, http.StatusNotFound, "ballot_not_found", err.Error())
	case errors.Is(err, ballotdomainerrors.ErrConflict):
		writeBallotError(w, http.StatusConflict, "ballot_conflict", err.Error())
	default:
		s.logger.Error("ballot request failed",
			"event", "http_ballot_request_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeBallotError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeBallotError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ballothttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
