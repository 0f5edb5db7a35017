// Copyright © 2024 The ELPS authors

package tracer

import (
	"context"
	"runtime/pprof"

	"github.com/luthersystems/reval/eval"
)

// pprofTracer labels the goroutine with the running action so that CPU
// profiles, if the caller started one, can be broken down by action.
type pprofTracer struct {
	tracer
	currentContext context.Context
}

var _ eval.Tracer = &pprofTracer{}

// NewPprofTracer returns a tracer which sets pprof goroutine labels.  It does
// not start profiling.
func NewPprofTracer(runtime *eval.Runtime, parentContext context.Context, opts ...Option) eval.Tracer {
	p := &pprofTracer{
		tracer: tracer{
			runtime: runtime,
		},
		currentContext: parentContext,
	}
	p.tracer.applyConfigs(opts...)
	return p
}

func (p *pprofTracer) Enable() error {
	p.runtime.Tracer = p
	if p.currentContext == nil {
		p.currentContext = context.Background()
	}
	return p.tracer.Enable()
}

func (p *pprofTracer) Complete() error {
	pprof.SetGoroutineLabels(context.Background())
	return nil
}

func (p *pprofTracer) Start(f *eval.Frame) func() {
	if p.skipTrace(f) {
		return func() {}
	}
	oldContext := p.currentContext
	pretty, _ := p.prettyName(f)
	p.currentContext = pprof.WithLabels(p.currentContext, pprof.Labels("function", pretty))
	pprof.SetGoroutineLabels(p.currentContext)
	return func() {
		p.currentContext = oldContext
		pprof.SetGoroutineLabels(p.currentContext)
	}
}
