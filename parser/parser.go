// Copyright © 2018 The ELPS authors

// Package parser provides the default reader for evaluator source text.
package parser

import (
	"github.com/luthersystems/reval/eval"
	"github.com/luthersystems/reval/parser/regexparser"
)

// NewReader returns a new eval.Reader
func NewReader() eval.Reader {
	return regexparser.NewReader()
}

// ErrIncomplete is matched by errors returned for source text that ends
// inside a block, group or string.
var ErrIncomplete = regexparser.ErrIncomplete
