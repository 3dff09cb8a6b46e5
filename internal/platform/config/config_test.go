package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, name := range []string{
		"SERVICE_NAME", "HTTP_PORT", "POSTGRES_DSN", "KAFKA_BROKERS", "BALLOT_STORE",
		"OUTBOX_POLL_INTERVAL", "OUTBOX_BATCH_SIZE", "ENABLE_VOTER_REGISTERED_LISTENER",
		"POSTGRES_MAX_OPEN_CONNS", "POSTGRES_MAX_IDLE_CONNS", "POSTGRES_CONN_MAX_LIFETIME",
	} {
		t.Setenv(name, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.ServiceName != "ballot" || cfg.HTTPPort != "8080" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.BallotStore != StoreMemory {
		t.Fatalf("expected memory store without DSN, got %q", cfg.BallotStore)
	}
	if cfg.OutboxPollInterval != 2*time.Second || cfg.OutboxBatchSize != 100 {
		t.Fatalf("unexpected outbox defaults %s %d", cfg.OutboxPollInterval, cfg.OutboxBatchSize)
	}
	if !cfg.EnableVoterRegisteredListener {
		t.Fatalf("expected listener enabled by default")
	}
	if cfg.PostgresMaxOpenConns != 10 || cfg.PostgresMaxIdleConns != 5 || cfg.PostgresConnMaxLifetime != 30*time.Minute {
		t.Fatalf("unexpected pool defaults %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "localhost:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://ballot@localhost/ballot")
	t.Setenv("BALLOT_STORE", "")
	t.Setenv("KAFKA_BROKERS", " broker-a:9092, ,broker-b:9092 ")
	t.Setenv("OUTBOX_POLL_INTERVAL", "500ms")
	t.Setenv("OUTBOX_BATCH_SIZE", "25")
	t.Setenv("ENABLE_VOTER_REGISTERED_LISTENER", "off")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.BallotStore != StorePostgres {
		t.Fatalf("expected postgres store with DSN, got %q", cfg.BallotStore)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "broker-b:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.OutboxPollInterval != 500*time.Millisecond || cfg.OutboxBatchSize != 25 {
		t.Fatalf("unexpected outbox settings %s %d", cfg.OutboxPollInterval, cfg.OutboxBatchSize)
	}
	if cfg.EnableVoterRegisteredListener {
		t.Fatalf("expected listener disabled")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("BALLOT_STORE", "postgres")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for postgres store without DSN")
	}

	t.Setenv("BALLOT_STORE", "redis")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown store")
	}

	t.Setenv("BALLOT_STORE", "")
	t.Setenv("OUTBOX_BATCH_SIZE", "-1")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative batch size")
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("FLAG", "garbage")
	if !envBool("FLAG", true) {
		t.Fatalf("expected fallback for unparsable value")
	}
	t.Setenv("FLAG", "YES")
	if !envBool("FLAG", false) {
		t.Fatalf("expected true for YES")
	}
}
