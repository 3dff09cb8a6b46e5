package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Import patterns follow the go tool: a trailing "/..." matches the path and
// everything below it, anything else matches one package exactly.

const (
	modulePath = "ballot"
	enginePath = "contexts/governance/ballot-engine"
)

type layerRule struct {
	name  string
	dir   string
	allow []string
}

func engine(rel string) string {
	return modulePath + "/" + enginePath + "/" + rel
}

// layerRules lists, for every package directory under contexts/ and
// contracts/, the imports it may use beyond the standard library.
var layerRules = []layerRule{
	{name: "module root", dir: enginePath, allow: []string{
		engine("adapters/..."),
		engine("application/..."),
		engine("domain/..."),
		engine("ports"),
	}},
	{name: "domain errors", dir: enginePath + "/domain/errors"},
	{name: "domain entities", dir: enginePath + "/domain/entities", allow: []string{
		"github.com/ethereum/go-ethereum/common",
	}},
	{name: "domain services", dir: enginePath + "/domain/services", allow: []string{
		engine("domain/entities"),
		engine("domain/errors"),
	}},
	{name: "ports", dir: enginePath + "/ports", allow: []string{
		engine("domain/entities"),
		modulePath + "/contracts/gen/events/...",
	}},
	{name: "application", dir: enginePath + "/application"},
	{name: "commands", dir: enginePath + "/application/commands", allow: []string{
		engine("application"),
		engine("domain/..."),
		engine("ports"),
		modulePath + "/contracts/gen/events/...",
	}},
	{name: "queries", dir: enginePath + "/application/queries", allow: []string{
		engine("application"),
		engine("domain/..."),
		engine("ports"),
	}},
	{name: "workers", dir: enginePath + "/application/workers", allow: []string{
		engine("application"),
		engine("domain/errors"),
		engine("ports"),
		modulePath + "/contracts/gen/events/...",
	}},
	{name: "transport", dir: enginePath + "/transport/..."},
	{name: "http adapter", dir: enginePath + "/adapters/http", allow: []string{
		engine("application"),
		engine("application/commands"),
		engine("application/queries"),
		engine("domain/..."),
		engine("transport/http"),
	}},
	{name: "memory adapter", dir: enginePath + "/adapters/memory", allow: []string{
		engine("domain/..."),
		engine("ports"),
		"github.com/google/uuid",
	}},
	{name: "postgres adapter", dir: enginePath + "/adapters/postgres", allow: []string{
		engine("domain/..."),
		engine("ports"),
		"github.com/ethereum/go-ethereum/common",
		"github.com/google/uuid",
		"github.com/jackc/pgx/v5/...",
		"gorm.io/gorm/...",
	}},
	{name: "contracts", dir: "contracts/..."},
}

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

func main() {
	violations, err := collectViolations(".")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File != violations[j].File {
			return violations[i].File < violations[j].File
		}
		return violations[i].Line < violations[j].Line
	})
	fmt.Println("boundary violations found:")
	for _, v := range violations {
		if v.Import == "" {
			fmt.Printf("- %s: %s\n", v.File, v.Rule)
			continue
		}
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

// collectViolations checks every non-test Go file under root's contexts/ and
// contracts/ trees.
func collectViolations(root string) ([]violation, error) {
	var violations []violation
	for _, tree := range []string{"contexts", "contracts"} {
		err := filepath.WalkDir(filepath.Join(root, tree), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			found, err := checkFile(path, filepath.ToSlash(rel))
			if err != nil {
				return err
			}
			violations = append(violations, found...)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return violations, nil
}

func checkFile(path string, rel string) ([]violation, error) {
	rule, ok := ruleFor(filepath.ToSlash(filepath.Dir(rel)))
	if !ok {
		return []violation{{File: rel, Rule: "package has no layer rule"}}, nil
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rel, err)
	}
	var violations []violation
	for _, spec := range file.Imports {
		importPath := strings.Trim(spec.Path.Value, `"`)
		if reason := rule.check(importPath); reason != "" {
			violations = append(violations, violation{
				File:   rel,
				Line:   fset.Position(spec.Pos()).Line,
				Import: importPath,
				Rule:   reason,
			})
		}
	}
	return violations, nil
}

// ruleFor picks the most specific rule whose dir pattern covers dir.
func ruleFor(dir string) (layerRule, bool) {
	var (
		best  layerRule
		found bool
	)
	for _, rule := range layerRules {
		if !matchPattern(rule.dir, dir) {
			continue
		}
		if !found || len(rule.dir) > len(best.dir) {
			best, found = rule, true
		}
	}
	return best, found
}

func (r layerRule) check(importPath string) string {
	if isStdlib(importPath) {
		return ""
	}
	for _, pattern := range r.allow {
		if matchPattern(pattern, importPath) {
			return ""
		}
	}
	return fmt.Sprintf("%s may not import it", r.name)
}

func matchPattern(pattern string, path string) bool {
	if base, ok := strings.CutSuffix(pattern, "/..."); ok {
		return path == base || strings.HasPrefix(path, base+"/")
	}
	return path == pattern
}

// isStdlib treats any path whose first element has no dot as standard
// library, except this module's own packages.
func isStdlib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return first != modulePath && !strings.Contains(first, ".")
}
