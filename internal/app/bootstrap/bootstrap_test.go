package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	ballotengine "ballot/contexts/governance/ballot-engine"
	"ballot/contexts/governance/ballot-engine/application/commands"
	workerapp "ballot/contexts/governance/ballot-engine/application/workers"
	"ballot/contexts/governance/ballot-engine/ports"
	"ballot/internal/platform/config"
	"ballot/internal/platform/messaging"
)

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{
		"":      ":8080",
		"9090":  ":9090",
		":7070": ":7070",
	}
	for in, want := range cases {
		if got := normalizeAddr(in); got != want {
			t.Fatalf("normalizeAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEmbeddedEventLoopDeliversVoterRegistered(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	module := ballotengine.NewInMemoryModule(nil, logger)
	bus, err := messaging.NewKafka(nil, logger)
	if err != nil {
		t.Fatalf("new kafka failed: %v", err)
	}
	loop := newEventLoop(config.Config{
		OutboxPollInterval:            10 * time.Millisecond,
		OutboxBatchSize:               10,
		EnableVoterRegisteredListener: true,
	}, module.Store, module.Store, module.Store, bus, logger)

	observed := make(chan workerapp.VoterRegistered, 1)
	loop.voterEvents.OnVoter = func(_ context.Context, voter workerapp.VoterRegistered) error {
		observed <- voter
		return nil
	}

	uc := commands.BallotUseCase{Ballots: module.Store, Clock: module.Store, IDGen: module.Store}
	ballot, err := uc.InitializeBallot(context.Background(), commands.InitializeBallotCommand{
		BallotID:    "ballot-1",
		Chairperson: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		Proposals:   []string{"A", "B"},
	})
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if _, err := uc.GiveRightToVote(context.Background(), commands.GiveRightCommand{
		BallotID: ballot.BallotID,
		Caller:   "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		Voter:    "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
	}); err != nil {
		t.Fatalf("give right failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.run(ctx) }()

	select {
	case voter := <-observed:
		if voter.BallotID != "ballot-1" || voter.Voter != "0x70997970C51812dc3A010C7d01b50e0d17dc79C8" {
			t.Fatalf("unexpected voter %+v", voter)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for voter_registered delivery")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("event loop returned error: %v", err)
	}
}

func TestRelayKeepsEventPendingWhenSubscriberIsFull(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	module := ballotengine.NewInMemoryModule(nil, logger)
	bus, _ := messaging.NewKafka(nil, logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := make(chan struct{})
	if err := bus.Subscribe(ctx, "ballot.initialized", "test-cg", func(context.Context, ports.EventEnvelope) error {
		<-release
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	full := false
	for i := 0; i < 200 && !full; i++ {
		full = errors.Is(bus.Publish(ctx, "ballot.initialized", ports.EventEnvelope{EventID: fmt.Sprintf("filler-%d", i)}), messaging.ErrSubscriberBackpressure)
	}
	if !full {
		t.Fatalf("subscriber buffer never filled")
	}

	uc := commands.BallotUseCase{Ballots: module.Store, Clock: module.Store, IDGen: module.Store}
	if _, err := uc.InitializeBallot(ctx, commands.InitializeBallotCommand{
		BallotID:    "ballot-1",
		Chairperson: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		Proposals:   []string{"A", "B"},
	}); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	relay := workerapp.OutboxRelay{Outbox: module.Store, Publisher: bus, Clock: module.Store, Logger: logger}
	if err := relay.RunOnce(ctx); !errors.Is(err, messaging.ErrSubscriberBackpressure) {
		t.Fatalf("expected ErrSubscriberBackpressure from relay, got %v", err)
	}
	pending, _ := module.Store.ListPendingOutbox(ctx, 10)
	if len(pending) != 1 || pending[0].EventType != "ballot.initialized" {
		t.Fatalf("dropped event was marked published: %+v", pending)
	}

	close(release)
	deadline := time.Now().Add(2 * time.Second)
	for {
		err := relay.RunOnce(ctx)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("relay never delivered after the subscriber drained: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	pending, _ = module.Store.ListPendingOutbox(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("expected outbox to drain, got %+v", pending)
	}
}
