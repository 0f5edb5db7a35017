// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Format selects the encoding of rendered diagnostics.
type Format int

const (
	FormatText Format = iota // annotated snippets
	FormatYAML               // a YAML document per diagnostic
)

// ParseFormat returns the format named by s: "text" or "yaml".
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "", "text":
		return FormatText, true
	case "yaml":
		return FormatYAML, true
	}
	return FormatText, false
}

// Renderer formats diagnostics as annotated expression snippets.
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// Format selects text or YAML output.
	Format Format
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	if r.Format == FormatYAML {
		return r.renderYAML(w, d)
	}
	p := choosePalette(r.Color, fileFromWriter(w))
	bw := bufio.NewWriter(w)
	ew := &errWriter{w: bw}

	r.writeHeader(ew, d, p)

	for _, span := range d.Spans {
		r.writeSpan(ew, span, p)
	}

	for _, note := range d.Notes {
		ew.printf("   %s=%s note: %s\n", p.boldCyan, p.reset, note)
	}

	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

// RenderAll writes all diagnostics to w separated by blank lines.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	for i, d := range diags {
		if i > 0 && r.Format == FormatText {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := r.Render(w, d); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderYAML(w io.Writer, d Diagnostic) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

// errWriter wraps a writer and captures the first error, short-circuiting
// subsequent writes. This avoids checking every fmt.Fprintf return value.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, a ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (r *Renderer) writeHeader(ew *errWriter, d Diagnostic, p palette) {
	var sevColor string
	switch d.Severity {
	case SeverityError:
		sevColor = p.boldRed
	case SeverityWarning:
		sevColor = p.yellow
	case SeverityNote:
		sevColor = p.boldCyan
	}
	sevText := d.Severity.String()
	if d.Condition != "" {
		sevText += "[" + d.Condition + "]"
	}
	ew.printf("%s%s%s%s:%s %s%s%s\n",
		sevColor, p.bold, sevText, p.reset,
		p.reset,
		p.bold, d.Message, p.reset)
}

func (r *Renderer) writeSpan(ew *errWriter, span Span, p palette) {
	// Location line: "  --> level 1: foo"
	num := "*"
	loc := "pending"
	if !span.Pending {
		num = strconv.Itoa(span.Level)
		loc = "level " + num
	}
	if span.Label != "" {
		loc += ": " + span.Label
	}
	ew.printf("  %s-->%s %s\n", p.boldBlue, p.reset, loc)

	if span.Where == "" {
		ew.printf("   %s|%s\n", p.boldBlue, p.reset)
		return
	}

	pad := strings.Repeat(" ", len(num))
	lines := strings.Split(span.Where, "\n")

	ew.printf(" %s%s |%s\n", p.boldBlue, pad, p.reset)
	ew.printf(" %s%s |%s  %s\n", p.boldBlue, num, p.reset, lines[0])

	// The label leads the expression, just inside its opening bracket.
	col := 2
	endCol := detectEndCol(lines[0], col)
	if span.Label == "" || !strings.HasPrefix(lines[0], "["+span.Label) {
		col, endCol = 1, 1
	}
	underPad := strings.Repeat(" ", col-1)
	underline := strings.Repeat("^", endCol-col+1)
	ew.printf(" %s%s |%s  %s%s%s%s", p.boldBlue, pad, p.reset, underPad, p.boldRed, underline, p.reset)
	if span.Pending {
		ew.printf(" %sgathering arguments%s", p.boldRed, p.reset)
	}
	ew.print("\n")

	for _, line := range lines[1:] {
		ew.printf(" %s%s |%s  %s\n", p.boldBlue, pad, p.reset, line)
	}

	// Trailing gutter
	ew.printf(" %s%s |%s\n", p.boldBlue, pad, p.reset)
}

// detectEndCol scans from col to find the end of the current token.
func detectEndCol(source string, col int) int {
	if col <= 0 || col > len(source) {
		return col
	}
	end := col - 1 // 0-based
	for end < len(source) {
		ch, size := utf8.DecodeRuneInString(source[end:])
		if ch == ' ' || ch == '\t' || ch == ')' || ch == ']' || ch == '(' || ch == '[' {
			break
		}
		end += size
	}
	if end == col-1 {
		return col // single character
	}
	return end // convert back to 1-based end column
}

// fileFromWriter attempts to extract an *os.File from a writer for terminal
// detection. Returns nil if the writer is not backed by a file.
func fileFromWriter(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
