// Copyright © 2024 The ELPS authors

package tracer

import (
	"context"
	"errors"

	"github.com/luthersystems/reval/eval"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	// ContextOpenTelemetryTracerKey looks up a parent tracer name from a
	// context key.
	ContextOpenTelemetryTracerKey contextKey = "otelParentTracer"
)

var _ eval.Tracer = &otelTracer{}

type otelTracer struct {
	tracer
	currentContext context.Context
	currentSpan    trace.Span
}

// NewOpenTelemetryTracer returns a tracer which starts a span, a child of
// the span in parentContext, for each action invocation.
func NewOpenTelemetryTracer(runtime *eval.Runtime, parentContext context.Context, opts ...Option) eval.Tracer {
	p := &otelTracer{
		tracer: tracer{
			runtime: runtime,
		},
		currentContext: parentContext,
	}
	p.tracer.applyConfigs(opts...)
	return p
}

func (p *otelTracer) Enable() error {
	p.runtime.Tracer = p
	if p.currentContext == nil {
		return errors.New("spans can only be appended to a context linked to opentelemetry")
	}
	return p.tracer.Enable()
}

func (p *otelTracer) Complete() error {
	if p.currentSpan != nil {
		p.currentSpan.End()
	}
	return nil
}

func contextTracer(ctx context.Context) trace.Tracer {
	name, ok := ctx.Value(ContextOpenTelemetryTracerKey).(string)
	if !ok {
		name = "reval"
	}
	return otel.GetTracerProvider().Tracer(name)
}

func (p *otelTracer) Start(f *eval.Frame) func() {
	if p.skipTrace(f) {
		return func() {}
	}
	oldContext := p.currentContext
	pretty, name := p.prettyName(f)
	p.currentContext, p.currentSpan = contextTracer(p.currentContext).Start(p.currentContext, pretty)
	p.addCodeAttributes(f, name)
	return func() {
		p.currentSpan.End()
		p.currentContext = oldContext
		p.currentSpan = trace.SpanFromContext(p.currentContext)
	}
}

func (p *otelTracer) addCodeAttributes(f *eval.Frame, name string) {
	attrs := []attribute.KeyValue{
		semconv.CodeFunction(name),
		attribute.Int("reval.stack.height", p.runtime.Stack.Len()),
	}
	if w := where(p.runtime, f); w != "" {
		attrs = append(attrs, attribute.String("reval.where", w))
	}
	p.currentSpan.SetAttributes(attrs...)
}
