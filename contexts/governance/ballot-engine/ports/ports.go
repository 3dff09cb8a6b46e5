package ports

import (
	"context"
	"time"

	contractsv1 "ballot/contracts/gen/events/v1"
	"ballot/contexts/governance/ballot-engine/domain/entities"
)

// Transition mutates a ballot and returns the events that describe the change.
type Transition func(*entities.Ballot) ([]EventEnvelope, error)

// BallotRepository persists ballot aggregates together with their outbox
// events. State and events are written in one unit: either both are stored
// or neither is.
type BallotRepository interface {
	// CreateBallot fails with ErrConflict when the ballot ID is taken.
	CreateBallot(ctx context.Context, ballot entities.Ballot, events []EventEnvelope) error
	GetBallot(ctx context.Context, ballotID string) (entities.Ballot, error)
	// UpdateBallot runs fn against the current state under an exclusive lock.
	// The mutated state and the returned events are persisted only when fn
	// returns nil; on any error the stored ballot and outbox are untouched.
	UpdateBallot(ctx context.Context, ballotID string, fn Transition) (entities.Ballot, error)
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventEnvelope reuses the canonical envelope contract.
type EventEnvelope = contractsv1.Envelope

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a topic consumer callback.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventDedupStore provides idempotent processing guarantees for consumed events.
// ReserveEvent reports true when the event was already processed.
type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}
