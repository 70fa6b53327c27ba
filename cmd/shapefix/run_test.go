package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/defs"
	"github.com/reoring/shapefix/source"
)

const accountDefs = `
root: Account
definitions:
  Account:
    id: !string
    plan: !union [free, premium]
    tags: [!string]
`

func testSession(t *testing.T) (*session, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	set, err := defs.Parse([]byte(accountDefs))
	if err != nil {
		t.Fatalf("defs: %v", err)
	}
	root, err := set.Root()
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &session{
		validator: sf.New(sf.DefaultConfig()),
		schema:    root,
		out:       out,
		errOut:    errOut,
		colors:    newPalette(false),
	}, out, errOut
}

func doc(name, data string) document {
	return document{name: name, format: source.FormatOf(name), data: []byte(data)}
}

func lines(b *bytes.Buffer) []string {
	return strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
}

func TestValidate(t *testing.T) {
	s, out, _ := testSession(t)
	ok, err := validate(s, []document{
		doc("good.json", `{"id":"a","plan":"free","tags":[]}`),
		doc("bad.yaml", "id: 7\nplan: gold\ntags: [x, 1]\n"),
	}, false)
	if err != nil || ok {
		t.Fatalf("validate = %v, %v; want false, nil", ok, err)
	}
	want := []string{
		"good.json: ok",
		"bad.yaml: $.id: Expected string but got number (invalid_type)",
		"bad.yaml: $.tags[1]: Expected string but got number (invalid_type)",
		`bad.yaml: $.plan: Unexpected string "gold" (allowed: "free" | "premium") (invalid_enum)`,
	}
	if d := cmp.Diff(want, lines(out)); d != "" {
		t.Fatalf("output (-want +got):\n%s", d)
	}
}

func TestAssertAndIs(t *testing.T) {
	s, out, errOut := testSession(t)
	docs := []document{
		doc("a.json", `{"id":"a","plan":"premium","tags":["t"]}`),
		doc("b.json", `{"id":"b","plan":"free"}`),
		doc("c.json", `{"id":`),
	}
	if ok, _ := assert(s, docs, false); ok {
		t.Fatalf("assert should fail")
	}
	if d := cmp.Diff([]string{"b.json: $: Missing key tags (required)"}, lines(out)); d != "" {
		t.Fatalf("assert output (-want +got):\n%s", d)
	}
	if !strings.HasPrefix(errOut.String(), "c.json: $: json: ") {
		t.Fatalf("parse error not reported: %q", errOut.String())
	}

	out.Reset()
	if ok, _ := is(s, docs, false); ok {
		t.Fatalf("is should fail")
	}
	if d := cmp.Diff([]string{"a.json: true", "b.json: false", "c.json: false"}, lines(out)); d != "" {
		t.Fatalf("is output (-want +got):\n%s", d)
	}
}

func TestFix(t *testing.T) {
	s, out, errOut := testSession(t)
	clean, err := s.fix([]document{doc("in.json", `{"id":"a","plan":"gold","tags":["x",2]}`)}, outputDocument)
	if err != nil || clean {
		t.Fatalf("fix = %v, %v", clean, err)
	}
	got, err := source.DecodeJSON(out.Bytes(), source.Options{})
	if err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	want := map[string]any{"id": "a", "plan": "free", "tags": []any{"x", ""}}
	if d := cmp.Diff(want, got); d != "" {
		t.Fatalf("fixed (-want +got):\n%s", d)
	}
	if n := len(lines(errOut)); n != 2 {
		t.Fatalf("expected 2 reported errors, got %d:\n%s", n, errOut)
	}
}

func TestFix_DiffAndPatch(t *testing.T) {
	s, out, _ := testSession(t)
	in := doc("in.yaml", "id: a\nplan: free\ntags:\n- x\n- 2\n")
	if _, err := s.fix([]document{in}, outputDiff); err != nil {
		t.Fatalf("diff: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "--- in.yaml\n+++ in.yaml (fixed)\n") ||
		!strings.Contains(text, "\n-- 2\n") || !strings.Contains(text, "\n+- ") {
		t.Fatalf("unexpected diff:\n%s", text)
	}

	out.Reset()
	if _, err := s.fix([]document{doc("in.json", `{"id":5,"plan":"free","tags":[]}`)}, outputPatch); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != `{"id":""}` {
		t.Fatalf("patch = %s", got)
	}
}

func TestLoadFileConfig(t *testing.T) {
	fc, err := loadFileConfig("")
	if err != nil || fc.MaxErrors != sf.DefaultMaxErrors || fc.Threshold != sf.DefaultThreshold {
		t.Fatalf("defaults: %+v %v", fc, err)
	}
	path := filepath.Join(t.TempDir(), "shapefix.yaml")
	data := "maxErrors: 5\nthreshold: 0\nlanguage: ja\ninput:\n  maxDepth: 8\n  rejectDuplicateKeys: true\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	fc, err = loadFileConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := FileConfig{
		Config:   sf.Config{MaxErrors: 5, Threshold: 0},
		Language: "ja",
		Input:    source.Options{MaxDepth: 8, RejectDuplicateKeys: true},
	}
	if d := cmp.Diff(want, fc); d != "" {
		t.Fatalf("config (-want +got):\n%s", d)
	}
}

func TestLineDiff(t *testing.T) {
	got := lineDiff("a\nb\nc\n", "a\nB\nc\n")
	want := []diffLine{
		{op: diffpatch.DiffEqual, text: "a"},
		{op: diffpatch.DiffDelete, text: "b"},
		{op: diffpatch.DiffInsert, text: "B"},
		{op: diffpatch.DiffEqual, text: "c"},
	}
	if d := cmp.Diff(want, got, cmp.AllowUnexported(diffLine{})); d != "" {
		t.Fatalf("diff (-want +got):\n%s", d)
	}
}
