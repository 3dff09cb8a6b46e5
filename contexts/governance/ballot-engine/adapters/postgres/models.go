package postgresadapter

import (
	"strings"
	"time"

	"ballot/contexts/governance/ballot-engine/domain/entities"

	"github.com/ethereum/go-ethereum/common"
)

type ballotModel struct {
	BallotID                  string    `gorm:"column:ballot_id;primaryKey"`
	Chairperson               string    `gorm:"column:chairperson;size:42;not null"`
	RequireRegisteredDelegate bool      `gorm:"column:require_registered_delegate;not null;default:false"`
	CreatedAt                 time.Time `gorm:"column:created_at"`
	UpdatedAt                 time.Time `gorm:"column:updated_at"`
}

func (ballotModel) TableName() string {
	return "ballots"
}

func ballotModelFromEntity(ballot entities.Ballot) ballotModel {
	row := ballotModel{
		BallotID:                  strings.TrimSpace(ballot.BallotID),
		Chairperson:               ballot.Chairperson.Hex(),
		RequireRegisteredDelegate: ballot.RequireRegisteredDelegate,
		CreatedAt:                 ballot.CreatedAt.UTC(),
		UpdatedAt:                 ballot.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m ballotModel) toEntity() entities.Ballot {
	return entities.Ballot{
		BallotID:                  m.BallotID,
		Chairperson:               common.HexToAddress(m.Chairperson),
		RequireRegisteredDelegate: m.RequireRegisteredDelegate,
		CreatedAt:                 m.CreatedAt.UTC(),
		UpdatedAt:                 m.UpdatedAt.UTC(),
	}
}

type proposalModel struct {
	BallotID      string `gorm:"column:ballot_id;primaryKey"`
	ProposalIndex int    `gorm:"column:proposal_index;primaryKey;autoIncrement:false"`
	Name          []byte `gorm:"column:name;not null"`
	VoteCount     int64  `gorm:"column:vote_count;not null;default:0"`
}

func (proposalModel) TableName() string {
	return "ballot_proposals"
}

func proposalModelFromEntity(ballotID string, index int, proposal entities.Proposal) proposalModel {
	return proposalModel{
		BallotID:      ballotID,
		ProposalIndex: index,
		Name:          append([]byte(nil), proposal.Name[:]...),
		VoteCount:     int64(proposal.VoteCount),
	}
}

func (m proposalModel) toEntity() entities.Proposal {
	return entities.Proposal{
		Name:      entities.ProposalNameFromBytes(m.Name),
		VoteCount: uint64(m.VoteCount),
	}
}

type voterModel struct {
	BallotID string  `gorm:"column:ballot_id;primaryKey"`
	Address  string  `gorm:"column:address;primaryKey;size:42"`
	Weight   int64   `gorm:"column:weight;not null"`
	Voted    bool    `gorm:"column:voted;not null"`
	Vote     int     `gorm:"column:vote;not null"`
	Delegate *string `gorm:"column:delegate;size:42"`
}

func (voterModel) TableName() string {
	return "ballot_voters"
}

func voterModelFromEntity(ballotID string, identity entities.Identity, voter entities.Voter) voterModel {
	row := voterModel{
		BallotID: ballotID,
		Address:  identity.Hex(),
		Weight:   int64(voter.Weight),
		Voted:    voter.Voted,
		Vote:     voter.Vote,
	}
	if voter.Delegate != nil {
		delegate := voter.Delegate.Hex()
		row.Delegate = &delegate
	}
	return row
}

func (m voterModel) toEntity() entities.Voter {
	voter := entities.Voter{
		Weight: uint64(m.Weight),
		Voted:  m.Voted,
		Vote:   m.Vote,
	}
	if m.Delegate != nil {
		delegate := common.HexToAddress(*m.Delegate)
		voter.Delegate = &delegate
	}
	return voter
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	Sequence     int64      `gorm:"column:sequence;autoIncrement;uniqueIndex"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "ballot_outbox"
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "ballot_event_dedup"
}
