package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"ballot/contexts/governance/ballot-engine/domain/entities"
	domainerrors "ballot/contexts/governance/ballot-engine/domain/errors"
	"ballot/contexts/governance/ballot-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	sequence  uint64
	published bool
}

type dedupRecord struct {
	payloadHash string
	expiresAt   time.Time
}

// Store keeps ballots, outbox rows and consumer dedup records in process.
// Ballot transitions are serialized by a single lock.
type Store struct {
	mu sync.RWMutex

	ballots    map[string]entities.Ballot
	outbox     map[string]outboxRecord
	outboxSeq  uint64
	eventDedup map[string]dedupRecord
}

func NewStore(seed []entities.Ballot) *Store {
	ballots := make(map[string]entities.Ballot, len(seed))
	for _, ballot := range seed {
		ballots[strings.TrimSpace(ballot.BallotID)] = ballot.Clone()
	}
	return &Store{
		ballots:    ballots,
		outbox:     make(map[string]outboxRecord),
		eventDedup: make(map[string]dedupRecord),
	}
}

func (s *Store) CreateBallot(_ context.Context, ballot entities.Ballot, events []ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ballotID := strings.TrimSpace(ballot.BallotID)
	if _, exists := s.ballots[ballotID]; exists {
		return domainerrors.ErrConflict
	}
	staged, err := s.stageOutboxLocked(events)
	if err != nil {
		return err
	}
	s.ballots[ballotID] = ballot.Clone()
	s.commitOutboxLocked(staged)
	return nil
}

func (s *Store) GetBallot(_ context.Context, ballotID string) (entities.Ballot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ballot, ok := s.ballots[strings.TrimSpace(ballotID)]
	if !ok {
		return entities.Ballot{}, domainerrors.ErrBallotNotFound
	}
	return ballot.Clone(), nil
}

// UpdateBallot applies fn to a private copy. The copy and fn's events are
// stored together under the lock, or not at all.
func (s *Store) UpdateBallot(
	_ context.Context,
	ballotID string,
	fn ports.Transition,
) (entities.Ballot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ballotID = strings.TrimSpace(ballotID)
	current, ok := s.ballots[ballotID]
	if !ok {
		return entities.Ballot{}, domainerrors.ErrBallotNotFound
	}
	working := current.Clone()
	events, err := fn(&working)
	if err != nil {
		return entities.Ballot{}, err
	}
	staged, err := s.stageOutboxLocked(events)
	if err != nil {
		return entities.Ballot{}, err
	}
	s.ballots[ballotID] = working
	s.commitOutboxLocked(staged)
	return working.Clone(), nil
}

// stageOutboxLocked validates events without touching the outbox. Replaying
// an identical event is a no-op; reusing an event ID with another payload is
// ErrConflict.
func (s *Store) stageOutboxLocked(events []ports.EventEnvelope) ([]ports.OutboxMessage, error) {
	staged := make([]ports.OutboxMessage, 0, len(events))
	seen := make(map[string][]byte, len(events))
	for _, envelope := range events {
		payload, err := json.Marshal(envelope)
		if err != nil {
			return nil, err
		}
		outboxID := strings.TrimSpace(envelope.EventID)
		if outboxID == "" {
			outboxID = uuid.NewString()
		}
		if existing, ok := s.outbox[outboxID]; ok {
			if !bytes.Equal(existing.message.Payload, payload) {
				return nil, domainerrors.ErrConflict
			}
			continue
		}
		if previous, ok := seen[outboxID]; ok {
			if !bytes.Equal(previous, payload) {
				return nil, domainerrors.ErrConflict
			}
			continue
		}
		seen[outboxID] = payload
		createdAt := envelope.OccurredAt.UTC()
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		staged = append(staged, ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		})
	}
	return staged, nil
}

func (s *Store) commitOutboxLocked(staged []ports.OutboxMessage) {
	for _, message := range staged {
		s.outboxSeq++
		s.outbox[message.OutboxID] = outboxRecord{
			message:  message,
			sequence: s.outboxSeq,
		}
	}
}

// ListPendingOutbox returns unpublished rows in append order.
func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows := make([]outboxRecord, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].sequence < rows[j].sequence
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.message)
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) ReserveEvent(
	_ context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(eventID)
	existing, ok := s.eventDedup[key]
	if ok {
		if !existing.expiresAt.IsZero() && time.Now().UTC().After(existing.expiresAt.UTC()) {
			delete(s.eventDedup, key)
		} else {
			if existing.payloadHash != payloadHash {
				return false, domainerrors.ErrConflict
			}
			return true, nil
		}
	}
	s.eventDedup[key] = dedupRecord{
		payloadHash: payloadHash,
		expiresAt:   expiresAt.UTC(),
	}
	return false, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
