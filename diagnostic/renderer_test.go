// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/luthersystems/reval/eval"
)

// testRenderer returns a Renderer with colors disabled.
func testRenderer() *Renderer {
	return &Renderer{Color: ColorNever}
}

func TestRenderError(t *testing.T) {
	r := testRenderer()

	d := Diagnostic{
		Severity:  SeverityError,
		Condition: "need-value",
		Message:   "c: missing argument x",
		Spans: []Span{
			{Level: 1, Label: "c", Where: "[c x]"},
		},
		Notes: []string{"in 2 [b]"},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	want := `error[need-value]: c: missing argument x
  --> level 1: c
   |
 1 |  [c x]
   |   ^
   |
   = note: in 2 [b]
`
	if got := buf.String(); got != want {
		t.Errorf("unexpected output:\n%s", got)
	}
}

func TestRenderPending(t *testing.T) {
	r := testRenderer()

	d := Diagnostic{
		Severity: SeverityError,
		Message:  "stopped",
		Spans: []Span{
			{Pending: true, Label: "append", Where: "[append [1 2] ...]"},
		},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assertContains(t, got, "--> pending: append")
	assertContains(t, got, " * |  [append [1 2] ...]")
	assertContains(t, got, "^^^^^^ gathering arguments")
}

func TestRenderMultilineWhere(t *testing.T) {
	r := testRenderer()

	d := Diagnostic{
		Severity: SeverityError,
		Message:  "boom",
		Spans: []Span{
			{Level: 12, Label: "f", Where: "[f\n    x\n]"},
		},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	want := `error: boom
  --> level 12: f
    |
 12 |  [f
    |   ^
    |      x
    |  ]
    |
`
	if got := buf.String(); got != want {
		t.Errorf("unexpected output:\n%s", got)
	}
}

func TestRenderAnonymous(t *testing.T) {
	r := testRenderer()

	d := Diagnostic{
		Severity: SeverityError,
		Message:  "boom",
		Spans:    []Span{{Level: 1, Where: "[_ 1 2]"}},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assertContains(t, got, "--> level 1\n")
	assertContains(t, got, "   |  ^\n")
}

func TestRenderNoWhere(t *testing.T) {
	r := testRenderer()

	d := Diagnostic{
		Severity: SeverityError,
		Message:  "some error",
		Spans:    []Span{{Level: 3, Label: "f"}},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assertContains(t, got, "--> level 3: f")
	assertContains(t, got, "|")
	assertNotContains(t, got, "^")
}

func TestRenderMultipleDiagnostics(t *testing.T) {
	r := testRenderer()

	diags := []Diagnostic{
		{Severity: SeverityWarning, Message: "frame limit reached"},
		{Severity: SeverityNote, Message: "raise max-frames"},
	}

	var buf bytes.Buffer
	if err := r.RenderAll(&buf, diags); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	parts := strings.Split(got, "\n\n")
	if len(parts) < 2 {
		t.Errorf("expected diagnostics separated by blank line, got:\n%s", got)
	}
	assertContains(t, got, "warning: frame limit reached")
	assertContains(t, got, "note: raise max-frames")
}

func TestRenderColor(t *testing.T) {
	r := &Renderer{Color: ColorAlways}
	var buf bytes.Buffer
	if err := r.Render(&buf, Diagnostic{Message: "boom"}); err != nil {
		t.Fatal(err)
	}
	assertContains(t, buf.String(), "\033[1;31m")

	// Auto mode never colors a buffer.
	buf.Reset()
	r.Color = ColorAuto
	if err := r.Render(&buf, Diagnostic{Message: "boom"}); err != nil {
		t.Fatal(err)
	}
	assertNotContains(t, buf.String(), "\033[")
}

func TestRenderYAML(t *testing.T) {
	r := &Renderer{Format: FormatYAML}

	d := Diagnostic{
		Severity:  SeverityError,
		Condition: "no-value",
		Message:   "nope",
		Spans:     []Span{{Level: 1, Label: "c", Where: "[c nope]"}},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	want := `severity: error
condition: no-value
message: nope
spans:
  - level: 1
    label: c
    where: '[c nope]'
`
	if got := buf.String(); got != want {
		t.Errorf("unexpected output:\n%s", got)
	}
}

func TestFromError(t *testing.T) {
	err := eval.Errorf(eval.ErrNoValue, "word has no value: nope")
	err.Label = "c"
	err.Stack = []eval.Record{
		{Level: 3, Label: "a", Where: "[a]"},
		{Level: 2, Label: "b", Where: "[b]"},
		{Level: 1, Label: "c", Where: "[c nope]"},
	}

	d := FromError(err)
	if d.Condition != "no-value" {
		t.Errorf("unexpected condition: %q", d.Condition)
	}
	if d.Message != "c: word has no value: nope" {
		t.Errorf("unexpected message: %q", d.Message)
	}
	if len(d.Spans) != 1 || d.Spans[0].Where != "[c nope]" {
		t.Errorf("unexpected spans: %v", d.Spans)
	}
	if strings.Join(d.Notes, "|") != "in 2 [b]|in 3 [a]" {
		t.Errorf("unexpected notes: %v", d.Notes)
	}

	d = FromError(errors.New("plain"))
	if d.Condition != "" || d.Message != "plain" || len(d.Spans) != 0 {
		t.Errorf("unexpected diagnostic: %+v", d)
	}
}

func TestParseModes(t *testing.T) {
	if m, ok := ParseColorMode("never"); !ok || m != ColorNever {
		t.Errorf("never: %v %v", m, ok)
	}
	if _, ok := ParseColorMode("sometimes"); ok {
		t.Errorf("sometimes parsed")
	}
	if f, ok := ParseFormat("yaml"); !ok || f != FormatYAML {
		t.Errorf("yaml: %v %v", f, ok)
	}
	if _, ok := ParseFormat("json"); ok {
		t.Errorf("json parsed")
	}
}

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("output does not contain %q:\n%s", want, got)
	}
}

func assertNotContains(t *testing.T, got, unwanted string) {
	t.Helper()
	if strings.Contains(got, unwanted) {
		t.Errorf("output unexpectedly contains %q:\n%s", unwanted, got)
	}
}
