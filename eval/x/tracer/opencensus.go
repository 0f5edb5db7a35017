// Copyright © 2024 The ELPS authors

package tracer

import (
	"context"
	"errors"

	"github.com/golang-collections/collections/stack"
	"github.com/luthersystems/reval/eval"
	"go.opencensus.io/trace"
)

var _ eval.Tracer = &ocTracer{}

type ocTracer struct {
	tracer
	currentContext context.Context
	currentSpan    *trace.Span
	contexts       *stack.Stack
}

// NewOpenCensusTracer returns a tracer which starts an OpenCensus span, a
// child of the span in parentContext, for each action invocation.
func NewOpenCensusTracer(runtime *eval.Runtime, parentContext context.Context, opts ...Option) eval.Tracer {
	p := &ocTracer{
		tracer: tracer{
			runtime: runtime,
		},
		currentContext: parentContext,
		contexts:       stack.New(),
	}
	p.tracer.applyConfigs(opts...)
	return p
}

func (p *ocTracer) Enable() error {
	p.runtime.Tracer = p
	if p.currentContext == nil {
		return errors.New("spans can only be appended to a context linked to opencensus")
	}
	return p.tracer.Enable()
}

func (p *ocTracer) Complete() error {
	if p.currentSpan != nil {
		p.currentSpan.End()
	}
	return nil
}

func (p *ocTracer) Start(f *eval.Frame) func() {
	if p.skipTrace(f) {
		return func() {}
	}
	pretty, name := p.prettyName(f)
	p.contexts.Push(p.currentContext)
	p.currentContext, p.currentSpan = trace.StartSpan(p.currentContext, pretty)
	span := p.currentSpan
	span.AddAttributes(
		trace.StringAttribute("function", name),
		trace.Int64Attribute("height", int64(p.runtime.Stack.Len())),
	)
	w := where(p.runtime, f)
	return func() {
		if w != "" {
			span.Annotate([]trace.Attribute{trace.StringAttribute("where", w)}, "source")
		}
		span.End()
		p.currentContext = p.contexts.Pop().(context.Context)
		p.currentSpan = trace.FromContext(p.currentContext)
	}
}
