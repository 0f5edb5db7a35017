// Copyright © 2024 The ELPS authors

// Package tracer provides eval.Tracer implementations which report action
// invocations to OpenTelemetry, OpenCensus, pprof labels or a logrus
// logger.
package tracer

import (
	"fmt"

	"github.com/luthersystems/reval/eval"
)

// tracer is a minimal eval.Tracer
type tracer struct {
	runtime    *eval.Runtime
	enabled    bool
	skipFilter SkipFilter
	labeler    Labeler
}

var _ eval.Tracer = &tracer{}

func (p *tracer) IsEnabled() bool {
	return p.enabled
}

// Option configures a tracer.
type Option func(*tracer)

func (p *tracer) applyConfigs(opts ...Option) {
	for _, opt := range opts {
		opt(p)
	}
}

func (p *tracer) Enable() error {
	if p.enabled {
		return fmt.Errorf("tracer already enabled")
	}
	p.enabled = true
	return nil
}

func (p *tracer) Complete() error {
	return nil
}

func (p *tracer) Step(f *eval.Frame) {}

func (p *tracer) Start(f *eval.Frame) func() {
	return func() {}
}

// actionName returns the name f invoked its action through, or the name of
// the action.
func actionName(f *eval.Frame) string {
	if f.Label != "" {
		return f.Label
	}
	if f.Action != nil {
		return f.Action.Name
	}
	return ""
}

// prettyName returns a display name and the original name for the action
// of f.  Without a labeler, or when it produces nothing, the display name is
// the original name.
func (p *tracer) prettyName(f *eval.Frame) (string, string) {
	orig := actionName(f)
	if orig == "" {
		return "", ""
	}
	pretty := orig
	if p.labeler != nil {
		pretty = p.labeler(f)
	}
	if pretty == "" {
		pretty = orig
	}
	return pretty, orig
}

// skipTrace decides whether the invocation in f is traced.
func (p *tracer) skipTrace(f *eval.Frame) bool {
	return !p.enabled || defaultSkipFilter(f) || p.skipFilter != nil && p.skipFilter(f)
}

// where summarizes the expression of f.  Variadic feeds are not reified for
// tracing and are reported without a summary.
func where(rt *eval.Runtime, f *eval.Frame) string {
	if f.Feed == nil || f.Feed.IsVariadic() {
		return ""
	}
	return eval.Mold(eval.Block(rt.WhereFor(f)))
}
