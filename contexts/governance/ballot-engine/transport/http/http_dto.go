package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type InitializeBallotRequest struct {
	BallotID                  string   `json:"ballot_id,omitempty"`
	Proposals                 []string `json:"proposals"`
	RequireRegisteredDelegate bool     `json:"require_registered_delegate"`
}

type GiveRightRequest struct {
	Voter string `json:"voter"`
}

// VoteRequest uses a pointer so a missing index is rejected instead of
// silently voting for proposal 0.
type VoteRequest struct {
	Proposal *int `json:"proposal"`
}

type DelegateRequest struct {
	To string `json:"to"`
}

type ProposalResponse struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	NameHex   string `json:"name_hex"`
	VoteCount uint64 `json:"vote_count"`
}

type ProposalsResponse struct {
	Items []ProposalResponse `json:"items"`
}

type VoterResponse struct {
	Address  string `json:"address"`
	Weight   uint64 `json:"weight"`
	Voted    bool   `json:"voted"`
	Vote     int    `json:"vote"`
	Delegate string `json:"delegate,omitempty"`
}

type WinnerResponse struct {
	WinningProposal int    `json:"winning_proposal"`
	WinnerName      string `json:"winner_name"`
	WinnerNameHex   string `json:"winner_name_hex"`
	VoteCount       uint64 `json:"vote_count"`
}

type BallotResponse struct {
	BallotID                  string             `json:"ballot_id"`
	Chairperson               string             `json:"chairperson"`
	Proposals                 []ProposalResponse `json:"proposals"`
	RequireRegisteredDelegate bool               `json:"require_registered_delegate"`
	RegisteredVoters          int                `json:"registered_voters"`
	TotalVotes                uint64             `json:"total_votes"`
	Winner                    WinnerResponse     `json:"winner"`
}

type VoteResponse struct {
	Voter    VoterResponse    `json:"voter"`
	Proposal ProposalResponse `json:"proposal"`
}

type DelegateResponse struct {
	Voter         VoterResponse `json:"voter"`
	FinalDelegate string        `json:"final_delegate"`
	Forwarded     bool          `json:"forwarded"`
	Proposal      *int          `json:"proposal,omitempty"`
}
