package commands

import (
	"encoding/json"
	"time"

	"ballot/contexts/governance/ballot-engine/ports"
)

// ballotEvents wraps one ballot event for a repository transition. The
// payload always carries ballot_id and occurred_at next to data.
func ballotEvents(
	eventID string,
	eventType string,
	ballotID string,
	occurredAt time.Time,
	data map[string]any,
) ([]ports.EventEnvelope, error) {
	payload := map[string]any{
		"ballot_id":   ballotID,
		"occurred_at": occurredAt.Format(time.RFC3339),
	}
	for key, value := range data {
		payload[key] = value
	}
	envelope, err := newBallotEnvelope(eventID, eventType, ballotID, occurredAt, payload)
	if err != nil {
		return nil, err
	}
	return []ports.EventEnvelope{envelope}, nil
}

func newBallotEnvelope(
	eventID string,
	eventType string,
	ballotID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Ballot events are partitioned by ballot so consumers see each ballot's
	// transitions in commit order.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "ballot-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "ballot_id",
		PartitionKey:     ballotID,
		Data:             payload,
	}, nil
}
