package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	ballotengine "ballot/contexts/governance/ballot-engine"
	ballothttp "ballot/contexts/governance/ballot-engine/transport/http"
	"ballot/internal/platform/apiclient"
	"ballot/internal/platform/httpserver"
)

const (
	chair = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	voter = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := httpserver.New(ballotengine.NewInMemoryModule(nil, logger), logger, ":0")
	api := httptest.NewServer(server.Handler())
	t.Cleanup(api.Close)
	return api
}

func run(t *testing.T, api string, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--api", api, "--retries", "1"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDeployVoteAndWinner(t *testing.T) {
	api := newAPI(t)

	out, err := run(t, api.URL, "--as", chair, "deploy", "--id", "b1", "--proposal", "Proposal 1", "--proposal", "Proposal 2")
	if err != nil {
		t.Fatalf("deploy failed: %v", err)
	}
	var ballot ballothttp.BallotResponse
	if err := json.Unmarshal([]byte(out), &ballot); err != nil {
		t.Fatalf("decode deploy output failed: %v out=%s", err, out)
	}
	if ballot.BallotID != "b1" || len(ballot.Proposals) != 2 {
		t.Fatalf("unexpected ballot %+v", ballot)
	}

	if _, err := run(t, api.URL, "--as", chair, "give-right", "b1", voter); err != nil {
		t.Fatalf("give-right failed: %v", err)
	}
	if _, err := run(t, api.URL, "--as", voter, "delegate", "b1", chair); err != nil {
		t.Fatalf("delegate failed: %v", err)
	}
	if _, err := run(t, api.URL, "--as", chair, "vote", "b1", "1"); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	out, err = run(t, api.URL, "winner", "b1")
	if err != nil {
		t.Fatalf("winner failed: %v", err)
	}
	var winner ballothttp.WinnerResponse
	if err := json.Unmarshal([]byte(out), &winner); err != nil {
		t.Fatalf("decode winner failed: %v", err)
	}
	if winner.WinningProposal != 1 || winner.WinnerName != "Proposal 2" || winner.VoteCount != 2 {
		t.Fatalf("unexpected winner %+v", winner)
	}

	out, err = run(t, api.URL, "proposals", "b1", "--index", "1")
	if err != nil {
		t.Fatalf("proposal lookup failed: %v", err)
	}
	var proposal ballothttp.ProposalResponse
	if err := json.Unmarshal([]byte(out), &proposal); err != nil || proposal.VoteCount != 2 {
		t.Fatalf("unexpected proposal output %s err=%v", out, err)
	}
}

func TestRejectionSurfacesAPIError(t *testing.T) {
	api := newAPI(t)
	if _, err := run(t, api.URL, "--as", chair, "deploy", "--id", "b1", "--proposal", "A"); err != nil {
		t.Fatalf("deploy failed: %v", err)
	}

	_, err := run(t, api.URL, "--as", voter, "give-right", "b1", voter)
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "unauthorized" {
		t.Fatalf("expected unauthorized APIError, got %v", err)
	}
}

func TestMutatingCommandsRequireIdentity(t *testing.T) {
	t.Setenv("BALLOT_IDENTITY", "")
	if _, err := run(t, "http://127.0.0.1:1", "vote", "b1", "0"); err == nil {
		t.Fatalf("expected missing identity error")
	}
	if _, err := run(t, "http://127.0.0.1:1", "--as", chair, "deploy"); err == nil {
		t.Fatalf("expected missing proposal error")
	}
}
