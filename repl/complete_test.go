// Copyright © 2018 The ELPS authors

package repl

import (
	"io"
	"testing"

	"github.com/luthersystems/reval/evaltest"
)

func TestWordCompleter(t *testing.T) {
	rt := evaltest.NewRuntime(t, io.Discard)
	evaltest.Eval(rt, `backtrack: 1`)

	c := &wordCompleter{ctx: rt.Context}

	// "back" should match backtrace, backtrace-index and backtrack.
	candidates, offset := c.Do([]rune("[back"), 5)
	if offset != 4 {
		t.Errorf("offset = %d, want 4", offset)
	}
	if len(candidates) != 3 {
		t.Errorf("expected 3 completions for 'back', got %d", len(candidates))
	}

	// Get-words complete after the sigil.
	candidates, offset = c.Do([]rune("f :ad"), 5)
	if offset != 2 {
		t.Errorf("offset = %d, want 2", offset)
	}
	if len(candidates) == 0 || string(candidates[0]) != "d" {
		t.Errorf("expected 'd' to complete 'ad', got %q", candidates)
	}

	// "zzz-nonexistent" should have no completions.
	candidates, _ = c.Do([]rune("zzz-nonexistent"), 15)
	if len(candidates) != 0 {
		t.Errorf("expected no completions for 'zzz-nonexistent', got %d", len(candidates))
	}

	// Nothing to complete at a word boundary.
	candidates, _ = c.Do([]rune("add "), 4)
	if len(candidates) != 0 {
		t.Errorf("expected no completions at a boundary, got %d", len(candidates))
	}
}
