package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	contractsv1 "ballot/contracts/gen/events/v1"
	application "ballot/contexts/governance/ballot-engine/application"
	"ballot/contexts/governance/ballot-engine/ports"
)

const defaultVoterRegisteredCG = "ballot-engine-voter-registered-cg"

// VoterRegistered is the decoded payload of a ballot.voter_registered event.
type VoterRegistered struct {
	BallotID string `json:"ballot_id"`
	Voter    string `json:"voter"`
	Weight   uint64 `json:"weight"`
}

// VoterRegisteredListener follows newly registered voters. Each event is
// handled once per dedup window and forwarded to OnVoter when set.
type VoterRegisteredListener struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	OnVoter       func(context.Context, VoterRegistered) error
	Logger        *slog.Logger
}

func (l VoterRegisteredListener) Start(ctx context.Context) error {
	logger := application.ResolveLogger(l.Logger)
	if l.Disabled {
		logger.Info("voter registered listener disabled by feature flag",
			"event", "ballot_voter_listener_disabled",
			"module", "governance/ballot-engine",
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(l.ConsumerGroup)
	if group == "" {
		group = defaultVoterRegisteredCG
	}
	if err := l.Subscriber.Subscribe(ctx, contractsv1.TopicBallotVoterRegistered, group, l.handle); err != nil {
		logger.Error("voter registered listener subscribe failed",
			"event", "ballot_voter_listener_subscribe_failed",
			"module", "governance/ballot-engine",
			"layer", "worker",
			"topic", contractsv1.TopicBallotVoterRegistered,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("voter registered listener subscribed",
		"event", "ballot_voter_listener_started",
		"module", "governance/ballot-engine",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (l VoterRegisteredListener) handle(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(l.Logger)
	if l.Dedup != nil {
		seen, err := l.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), l.now().Add(l.dedupTTL()))
		if err != nil {
			return err
		}
		if seen {
			logger.Debug("ballot.voter_registered replay skipped",
				"event", "ballot_voter_registered_replayed",
				"module", "governance/ballot-engine",
				"layer", "worker",
				"event_id", event.EventID,
			)
			return nil
		}
	}

	var payload VoterRegistered
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("ballot.voter_registered payload decode failed",
			"event", "ballot_voter_registered_decode_failed",
			"module", "governance/ballot-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("new voter registered",
		"event", "ballot_voter_registered_observed",
		"module", "governance/ballot-engine",
		"layer", "worker",
		"event_id", event.EventID,
		"ballot_id", payload.BallotID,
		"voter", payload.Voter,
		"weight", payload.Weight,
	)
	if l.OnVoter != nil {
		return l.OnVoter(ctx, payload)
	}
	return nil
}

func (l VoterRegisteredListener) dedupTTL() time.Duration {
	if l.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return l.DedupTTL
}

func (l VoterRegisteredListener) now() time.Time {
	if l.Clock == nil {
		return time.Now().UTC()
	}
	return l.Clock.Now().UTC()
}
