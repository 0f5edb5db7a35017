// Copyright © 2021 The ELPS authors

package evallib

import (
	"fmt"
	"io"
	"strings"

	"github.com/luthersystems/reval/eval"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

func helpNatives() []*eval.Native {
	return []*eval.Native{
		{Name: "help", Formals: eval.Formals("'word <end> word!"), Fun: nativeHelp,
			Doc: `Prints documentation for the value of word, or lists the
			words of the user context when no word is given.`},
	}
}

func nativeHelp(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	word := f.Arg("word")
	if word.IsEnd() {
		return false, RenderWords(rt.Stdout, f.Feed.Context())
	}
	return false, RenderWord(rt.Stdout, f.Feed.Context(), word.Str)
}

// MissingDoc names a native with no documentation.
type MissingDoc struct {
	Name string
}

// CheckMissing reports the actions bound in ctx which have no documentation.
// Operators (words made only of symbols) are not reported.
func CheckMissing(ctx *eval.Context) []MissingDoc {
	var missing []MissingDoc
	for _, name := range ctx.Words() {
		act := ctx.Action(name)
		if act == nil || act.Doc != "" || isOperator(name) {
			continue
		}
		missing = append(missing, MissingDoc{Name: name})
	}
	return missing
}

func isOperator(name string) bool {
	return strings.Trim(name, "+-*/=<>") == ""
}

// RenderWords writes the words bound in ctx to w, wrapped to fit a
// terminal.
func RenderWords(w io.Writer, ctx *eval.Context) error {
	s := wordwrap.String(strings.Join(ctx.Words(), " "), 72)
	_, err := fmt.Fprintln(w, indent.String(s, 2))
	return err
}

// RenderWord writes to w formatted documentation for the value bound to
// word in ctx.  The exact formatting of the rendered documentation is
// subject to change.
func RenderWord(w io.Writer, ctx *eval.Context, word string) error {
	v, ok := ctx.Get(word)
	if !ok {
		return eval.Errorf(eval.ErrNoValue, "%s has no value", word)
	}
	if v.Kind != eval.KindAction {
		_, err := fmt.Fprintf(w, "%v %s %v\n", v.Kind, word, v)
		return err
	}
	return renderAction(w, word, v.Action)
}

func renderAction(w io.Writer, word string, act *eval.Action) error {
	var sig strings.Builder
	if act.Enfix {
		sig.WriteString("enfix ")
	}
	sig.WriteString(word)
	for _, p := range act.Params {
		sig.WriteString(" ")
		sig.WriteString(p.String())
	}
	_, err := fmt.Fprintln(w, sig.String())
	if err != nil {
		return fmt.Errorf("rendering signature: %w", err)
	}
	doc := cleanDocstring(act.Doc)
	if doc != "" {
		_, err = fmt.Fprintln(w, doc)
		return err
	}
	return nil
}

func cleanDocstring(doc string) string {
	if doc == "" {
		return ""
	}
	if doc[0] == '\n' {
		doc = doc[1:]
	}
	doc = indent.String(wordwrap.String(dedentDoc(doc), 72), 2)
	doc = strings.TrimSuffix(doc, "\n")
	return doc
}

// dedentDoc removes common leading whitespace from all non-empty lines after
// the first.  Tabs are normalized to spaces before processing.
func dedentDoc(s string) string {
	s = strings.ReplaceAll(s, "\t", "    ")
	lines := strings.Split(s, "\n")
	minWS := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		ws := len(line) - len(trimmed)
		if minWS < 0 || ws < minWS {
			minWS = ws
		}
	}
	lines[0] = strings.TrimLeft(lines[0], " ")
	for i := 1; i < len(lines); i++ {
		switch {
		case strings.TrimSpace(lines[i]) == "":
			lines[i] = ""
		case minWS > 0 && len(lines[i]) >= minWS:
			lines[i] = lines[i][minWS:]
		}
	}
	// Paragraphs are reflowed by wordwrap.
	return strings.Join(joinParagraphs(lines), "\n")
}

func joinParagraphs(lines []string) []string {
	var out []string
	var para []string
	flush := func() {
		if len(para) > 0 {
			out = append(out, strings.Join(para, " "))
			para = nil
		}
	}
	for _, line := range lines {
		if line == "" {
			flush()
			out = append(out, "")
			continue
		}
		para = append(para, strings.TrimSpace(line))
	}
	flush()
	return out
}
