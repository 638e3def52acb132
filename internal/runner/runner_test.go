package runner

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/shirushi/internal/config"
	"github.com/hyperjump/shirushi/internal/models"
	"github.com/hyperjump/shirushi/internal/scanner"
)

func testConfig(root string) *config.Config {
	cfg := &config.Config{Root: root}
	config.ApplyDefaults(cfg)
	return cfg
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeMapping(t *testing.T, root string, mapping map[string]string) {
	t.Helper()
	data, err := json.Marshal(mapping)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".shirushi.json"), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func readMapping(t *testing.T, root string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, ".shirushi.json"))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestRun_roundTrip(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/new.md", "# New\n\nbody\n")

	r := New(testConfig(root), nil)
	report, err := r.Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if report.Scanned != 1 || report.Tracked != 1 {
		t.Errorf("report = %+v", report)
	}
	if report.CountKind(models.DriftStamp) != 1 {
		t.Errorf("expected one stamp event: %+v", report.Events)
	}

	data, err := os.ReadFile(filepath.Join(root, "docs/new.md"))
	if err != nil {
		t.Fatal(err)
	}
	first := strings.SplitN(string(data), "\n", 2)[0]
	token, ok := scanner.MarkerToken(first)
	if !ok {
		t.Fatalf("marker not prepended: %q", first)
	}
	mapping := readMapping(t, root)
	if mapping[token] != "docs/new.md" {
		t.Errorf("saved mapping should carry the stamped token: %v", mapping)
	}
}

func TestRun_idempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "alpha\n")
	writeFile(t, root, "docs/b.md", "beta\n")

	r := New(testConfig(root), nil)
	if _, err := r.Run(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	first := readMapping(t, root)
	firstA, _ := os.ReadFile(filepath.Join(root, "a.md"))

	report, err := r.Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Events) != 0 {
		t.Errorf("second run should be a no-op: %+v", report.Events)
	}
	second := readMapping(t, root)
	if len(first) != len(second) {
		t.Fatalf("mapping changed between runs: %v vs %v", first, second)
	}
	for token, path := range first {
		if second[token] != path {
			t.Errorf("entry drifted: %s %s vs %s", token, path, second[token])
		}
	}
	secondA, _ := os.ReadFile(filepath.Join(root, "a.md"))
	if string(firstA) != string(secondA) {
		t.Errorf("file restamped on second run:\n%q\nvs\n%q", firstA, secondA)
	}
}

func TestRun_moveUpdatesPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/sub/a.md", "<!-- ID: AB12CD -->\ncontent\n")
	writeMapping(t, root, map[string]string{"AB12CD": "docs/a.md"})

	r := New(testConfig(root), nil)
	report, err := r.Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if report.CountKind(models.DriftMove) != 1 {
		t.Errorf("expected one move event: %+v", report.Events)
	}
	mapping := readMapping(t, root)
	if mapping["AB12CD"] != "docs/sub/a.md" {
		t.Errorf("mapping = %v", mapping)
	}
}

func TestRun_adoptsUntrackedMarker(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/a.md", "<!-- ID: EF34GH -->\nhand-added\n")

	r := New(testConfig(root), nil)
	report, err := r.Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if report.CountKind(models.DriftAdoption) != 1 {
		t.Errorf("expected one adoption event: %+v", report.Events)
	}
	if readMapping(t, root)["EF34GH"] != "docs/a.md" {
		t.Errorf("marker not adopted: %v", readMapping(t, root))
	}
}

func TestRun_duplicateAbortsWithoutWrites(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/a.md", "<!-- ID: ZZ9999 -->\n")
	writeFile(t, root, "docs/b.md", "<!-- ID: ZZ9999 -->\n")
	writeFile(t, root, "docs/new.md", "unmarked\n")
	writeMapping(t, root, map[string]string{"ZZ9999": "docs/a.md"})
	before := readMapping(t, root)

	r := New(testConfig(root), nil)
	_, err := r.Run(context.Background(), false)
	var dup *models.DuplicateIDError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateIDError, got %v", err)
	}
	after := readMapping(t, root)
	if len(after) != len(before) || after["ZZ9999"] != before["ZZ9999"] {
		t.Errorf("store modified despite fatal error: %v", after)
	}
	data, _ := os.ReadFile(filepath.Join(root, "docs/new.md"))
	if string(data) != "unmarked\n" {
		t.Errorf("file stamped despite fatal error: %q", data)
	}
}

func TestRun_missingIdentifierAbortsWithoutWrites(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/other.md", "<!-- ID: AB12CD -->\n")
	writeMapping(t, root, map[string]string{
		"AB12CD": "docs/other.md",
		"Q1W2E3": "docs/gone.md",
	})
	before := readMapping(t, root)

	r := New(testConfig(root), nil)
	_, err := r.Run(context.Background(), false)
	var missing *models.MissingIDError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingIDError, got %v", err)
	}
	if missing.Token != "Q1W2E3" {
		t.Errorf("token = %q", missing.Token)
	}
	after := readMapping(t, root)
	if len(after) != len(before) {
		t.Errorf("store modified despite fatal error: %v", after)
	}
}

func TestRun_checkOnlyNeverWrites(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/sub/a.md", "<!-- ID: AB12CD -->\n")
	writeFile(t, root, "docs/new.md", "unmarked\n")
	writeMapping(t, root, map[string]string{"AB12CD": "docs/a.md"})
	before := readMapping(t, root)

	r := New(testConfig(root), nil)
	report, err := r.Run(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	if report.Clean() {
		t.Error("check should report pending drift and unmarked documents")
	}
	if report.Unmarked != 1 || report.CountKind(models.DriftMove) != 1 {
		t.Errorf("report = %+v", report)
	}

	after := readMapping(t, root)
	if after["AB12CD"] != before["AB12CD"] {
		t.Errorf("check mode wrote to the store: %v", after)
	}
	data, _ := os.ReadFile(filepath.Join(root, "docs/new.md"))
	if string(data) != "unmarked\n" {
		t.Errorf("check mode stamped a file: %q", data)
	}
}

func TestRun_cleanTreeCheckIsClean(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "body\n")

	r := New(testConfig(root), nil)
	if _, err := r.Run(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	report, err := r.Run(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Clean() {
		t.Errorf("freshly stamped tree should check clean: %+v", report)
	}
}

func TestRun_skipsMappingFileItself(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	cfg.Extensions = []string{".md", ".json"}
	writeFile(t, root, "a.md", "body\n")
	writeMapping(t, root, map[string]string{})

	r := New(cfg, nil)
	if _, err := r.Run(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	mapping := readMapping(t, root)
	for _, path := range mapping {
		if path == ".shirushi.json" {
			t.Errorf("mapping file stamped itself: %v", mapping)
		}
	}
}

func TestRun_cancelledContext(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := New(testConfig(root), nil)
	if _, err := r.Run(ctx, false); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
