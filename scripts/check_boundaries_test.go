package main

import "testing"

func TestLayerRules(t *testing.T) {
	cases := []struct {
		dir        string
		importPath string
		allowed    bool
	}{
		{enginePath + "/domain/entities", "github.com/ethereum/go-ethereum/common", true},
		{enginePath + "/domain/entities", "github.com/google/uuid", false},
		{enginePath + "/domain/services", engine("domain/errors"), true},
		{enginePath + "/domain/services", engine("ports"), false},
		{enginePath + "/domain/errors", engine("domain/entities"), false},
		{enginePath + "/ports", "ballot/contracts/gen/events/v1", true},
		{enginePath + "/ports", engine("domain/services"), false},
		{enginePath + "/application/commands", engine("domain/services"), true},
		{enginePath + "/application/commands", engine("adapters/memory"), false},
		{enginePath + "/application/commands", "gorm.io/gorm", false},
		{enginePath + "/application/queries", "ballot/contracts/gen/events/v1", false},
		{enginePath + "/application/workers", engine("application/commands"), false},
		{enginePath + "/application", engine("ports"), false},
		{enginePath + "/transport/http", engine("domain/entities"), false},
		{enginePath + "/transport/http", "encoding/json", true},
		{enginePath + "/adapters/http", engine("application/commands"), true},
		{enginePath + "/adapters/http", engine("application/workers"), false},
		{enginePath + "/adapters/http", engine("adapters/memory"), false},
		{enginePath + "/adapters/memory", "gorm.io/gorm", false},
		{enginePath + "/adapters/postgres", "gorm.io/gorm/clause", true},
		{enginePath + "/adapters/postgres", "github.com/jackc/pgx/v5/pgconn", true},
		{enginePath + "/adapters/postgres", "ballot/internal/platform/db", false},
		{enginePath, engine("adapters/http"), true},
		{enginePath, "ballot/internal/platform/config", false},
		{"contracts/gen/events/v1", engine("ports"), false},
	}
	for _, tc := range cases {
		rule, ok := ruleFor(tc.dir)
		if !ok {
			t.Fatalf("no rule for %s", tc.dir)
		}
		reason := rule.check(tc.importPath)
		if (reason == "") != tc.allowed {
			t.Fatalf("%s importing %s: allowed=%v, reason %q", tc.dir, tc.importPath, tc.allowed, reason)
		}
	}
}

func TestRuleForPrefersMostSpecificDir(t *testing.T) {
	rule, ok := ruleFor(enginePath + "/application/commands")
	if !ok || rule.name != "commands" {
		t.Fatalf("expected commands rule, got %+v", rule)
	}
	if _, ok := ruleFor(enginePath + "/reporting"); ok {
		t.Fatalf("unlisted package must not inherit a rule")
	}
	if rule, ok := ruleFor("contracts/gen/events/v2"); !ok || rule.name != "contracts" {
		t.Fatalf("expected contracts rule for new contract versions, got %+v", rule)
	}
}

func TestIsStdlib(t *testing.T) {
	if !isStdlib("encoding/json") || isStdlib("ballot/contracts") || isStdlib("github.com/google/uuid") {
		t.Fatalf("unexpected stdlib classification")
	}
}

func TestRepositoryHasNoViolations(t *testing.T) {
	violations, err := collectViolations("..")
	if err != nil {
		t.Fatalf("collect violations failed: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("unexpected boundary violations: %+v", violations)
	}
}
