package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the versioned event envelope shared by the ballot service, its
// outbox relay and downstream consumers. Fields may be added but never renamed.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// Topics emitted by the ballot service.
const (
	TopicBallotInitialized     = "ballot.initialized"
	TopicBallotVoterRegistered = "ballot.voter_registered"
	TopicBallotVoteCast        = "ballot.vote_cast"
	TopicBallotVoteDelegated   = "ballot.vote_delegated"
)
