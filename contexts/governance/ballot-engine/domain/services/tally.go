package services

import "ballot/contexts/governance/ballot-engine/domain/entities"

// WinningProposal returns the index with the strictly greatest vote count.
// Ties keep the earliest index, so a ballot without votes reports 0.
func WinningProposal(proposals []entities.Proposal) int {
	winner := 0
	var best uint64
	for index, proposal := range proposals {
		if index == 0 || proposal.VoteCount > best {
			winner = index
			best = proposal.VoteCount
		}
	}
	return winner
}

// WinnerName returns the name of the winning proposal, or the zero name when
// the registry is empty.
func WinnerName(proposals []entities.Proposal) entities.ProposalName {
	if len(proposals) == 0 {
		return entities.ProposalName{}
	}
	return proposals[WinningProposal(proposals)].Name
}

// TotalVotes sums the vote counts of all proposals.
func TotalVotes(proposals []entities.Proposal) uint64 {
	var total uint64
	for _, proposal := range proposals {
		total += proposal.VoteCount
	}
	return total
}
