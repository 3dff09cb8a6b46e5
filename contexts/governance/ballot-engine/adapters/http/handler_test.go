package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"ballot/contexts/governance/ballot-engine/adapters/memory"
	"ballot/contexts/governance/ballot-engine/application/commands"
	"ballot/contexts/governance/ballot-engine/application/queries"
	"ballot/contexts/governance/ballot-engine/domain/entities"
	domainerrors "ballot/contexts/governance/ballot-engine/domain/errors"
	"ballot/contexts/governance/ballot-engine/ports"
	httptransport "ballot/contexts/governance/ballot-engine/transport/http"
)

type brokenRepository struct {
	err error
}

func (r brokenRepository) CreateBallot(context.Context, entities.Ballot, []ports.EventEnvelope) error {
	return r.err
}

func (r brokenRepository) GetBallot(context.Context, string) (entities.Ballot, error) {
	return entities.Ballot{}, r.err
}

func (r brokenRepository) UpdateBallot(context.Context, string, ports.Transition) (entities.Ballot, error) {
	return entities.Ballot{}, r.err
}

func newLoggedHandler(repo ports.BallotRepository, idGen ports.IDGenerator) (Handler, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return Handler{
		Ballots: commands.BallotUseCase{Ballots: repo, IDGen: idGen, Logger: logger},
		Tally:   queries.TallyUseCase{Ballots: repo},
		Logger:  logger,
	}, &buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer, event string) map[string]any {
	t.Helper()
	var found map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var record map[string]any
		if err := json.Unmarshal(line, &record); err != nil {
			t.Fatalf("decode log line failed: %v", err)
		}
		if record["event"] == event {
			found = record
		}
	}
	if found == nil {
		t.Fatalf("no %s record in logs: %s", event, buf.String())
	}
	return found
}

func TestHandlerLogsRejectionsAtWarn(t *testing.T) {
	store := memory.NewStore(nil)
	handler, buf := newLoggedHandler(store, store)

	proposal := 0
	_, err := handler.VoteHandler(context.Background(), "missing", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", httptransport.VoteRequest{Proposal: &proposal})
	if !errors.Is(err, domainerrors.ErrBallotNotFound) {
		t.Fatalf("expected ErrBallotNotFound, got %v", err)
	}

	record := lastRecord(t, buf, "http_vote_failed")
	if record["level"] != "WARN" || record["ballot_id"] != "missing" || record["layer"] != "transport" {
		t.Fatalf("unexpected log record %v", record)
	}
}

func TestHandlerLogsUnexpectedFailuresAtError(t *testing.T) {
	storageErr := errors.New("connection reset")
	handler, buf := newLoggedHandler(brokenRepository{err: storageErr}, memory.NewStore(nil))

	if _, err := handler.WinnerHandler(context.Background(), "ballot-1"); !errors.Is(err, storageErr) {
		t.Fatalf("expected storage error, got %v", err)
	}

	record := lastRecord(t, buf, "http_get_winner_failed")
	if record["level"] != "ERROR" || record["error"] != "connection reset" {
		t.Fatalf("unexpected log record %v", record)
	}
}
