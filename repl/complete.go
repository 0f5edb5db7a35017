// Copyright © 2018 The ELPS authors

package repl

import (
	"strings"

	"github.com/luthersystems/reval/eval"
)

// wordCompleter implements readline.AutoCompleter by enumerating the words
// bound in a context.
type wordCompleter struct {
	ctx *eval.Context
}

func (c *wordCompleter) Do(line []rune, pos int) ([][]rune, int) {
	// Extract the word being typed, back to whitespace, an opening bracket
	// or a get-word or lit-word sigil.
	start := pos
	for start > 0 {
		ch := line[start-1]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '[' || ch == '(' || ch == ':' || ch == '\'' {
			break
		}
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	candidates := c.collectWords(prefix)
	if len(candidates) == 0 {
		return nil, 0
	}

	// Build completions: each entry is the suffix to append.
	result := make([][]rune, 0, len(candidates))
	for _, word := range candidates {
		suffix := word[len(prefix):]
		result = append(result, []rune(suffix))
	}
	return result, len(prefix)
}

func (c *wordCompleter) collectWords(prefix string) []string {
	var result []string
	for _, word := range c.ctx.Words() {
		if strings.HasPrefix(word, prefix) {
			result = append(result, word)
		}
	}
	return result
}
