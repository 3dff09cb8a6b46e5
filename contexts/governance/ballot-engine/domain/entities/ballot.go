package entities

import "time"

// Voter is the registry record of one identity. The zero value is the state
// of every identity that never interacted with the ballot.
type Voter struct {
	Weight   uint64
	Voted    bool
	Vote     int
	Delegate *Identity
}

// HasDelegate reports whether the voter delegated instead of voting directly.
func (v Voter) HasDelegate() bool {
	return v.Delegate != nil
}

// Ballot is the aggregate owning one proposal set and its voter registry.
type Ballot struct {
	BallotID                  string
	Chairperson               Identity
	Proposals                 []Proposal
	Voters                    map[Identity]Voter
	RequireRegisteredDelegate bool
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// VoterOf returns the stored record or the default one for unknown identities.
func (b *Ballot) VoterOf(identity Identity) Voter {
	if b.Voters == nil {
		return Voter{}
	}
	return b.Voters[identity]
}

// SetVoter stores a record, allocating the registry on first write.
func (b *Ballot) SetVoter(identity Identity, voter Voter) {
	if b.Voters == nil {
		b.Voters = make(map[Identity]Voter)
	}
	b.Voters[identity] = voter
}

// ValidProposal reports whether index addresses an existing proposal.
func (b *Ballot) ValidProposal(index int) bool {
	return index >= 0 && index < len(b.Proposals)
}

// Clone returns a deep copy; adapters apply transitions on a clone and only
// swap it in once the transition succeeded.
func (b Ballot) Clone() Ballot {
	out := b
	out.Proposals = append([]Proposal(nil), b.Proposals...)
	out.Voters = make(map[Identity]Voter, len(b.Voters))
	for identity, voter := range b.Voters {
		if voter.Delegate != nil {
			delegate := *voter.Delegate
			voter.Delegate = &delegate
		}
		out.Voters[identity] = voter
	}
	return out
}
