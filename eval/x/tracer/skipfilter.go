// Copyright © 2024 The ELPS authors

package tracer

import (
	"regexp"

	"github.com/luthersystems/reval/eval"
)

// SkipFilter returns true for invocations which should not be traced.
type SkipFilter func(f *eval.Frame) bool

func defaultSkipFilter(f *eval.Frame) bool {
	return f.Action == nil
}

// WithDocFilter filters to only include spans for actions with
// documentation that denotes tracing.
func WithDocFilter() Option {
	return WithSkipFilter(docSkipFilter)
}

// WithSkipFilter sets the filter for tracing spans.
func WithSkipFilter(skipFilter SkipFilter) Option {
	return func(p *tracer) {
		p.skipFilter = skipFilter
	}
}

// DocTrace is a magic string used to enable tracing in a tracer configured
// WithDocFilter.  All actions with documentation that contains this string
// will be traced.
const DocTrace = "@trace"

var docTraceRegExp = regexp.MustCompile(DocTrace)

func docSkipFilter(f *eval.Frame) bool {
	if f.Action == nil || f.Action.Doc == "" {
		return true
	}
	return !docTraceRegExp.MatchString(f.Action.Doc)
}
