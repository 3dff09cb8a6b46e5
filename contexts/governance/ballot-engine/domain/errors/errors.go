package errors

import "errors"

var (
	ErrUnauthorized       = errors.New("only chairperson can give right to vote")
	ErrAlreadyVoted       = errors.New("the voter already voted")
	ErrAlreadyRegistered  = errors.New("voter already holds voting rights")
	ErrNoRightToVote      = errors.New("has no right to vote")
	ErrInvalidProposal    = errors.New("invalid proposal index")
	ErrSelfDelegation     = errors.New("self-delegation is disallowed")
	ErrDelegationLoop     = errors.New("found loop in delegation")
	ErrDelegateHasNoRight = errors.New("delegate has no right to vote")
	ErrInvalidBallotInput = errors.New("invalid ballot input")
	ErrInvalidIdentity    = errors.New("invalid identity")
	ErrBallotNotFound     = errors.New("ballot not found")
	ErrConflict           = errors.New("ballot conflict")
)
