// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/luthersystems/reval/eval"
	"github.com/luthersystems/reval/eval/evallib"
	"github.com/luthersystems/reval/eval/x/tracer"
	"github.com/luthersystems/reval/parser"
	"github.com/sirupsen/logrus"
	octrace "go.opencensus.io/trace"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// newRuntime returns a runtime configured by s with the standard natives
// loaded.  The returned function completes tracing and must be called when
// evaluation is finished.
func newRuntime(s *settings, stdout, stderr io.Writer, config ...eval.Config) (*eval.Runtime, func() error, error) {
	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetLevel(s.LogLevel)
	log := logrus.NewEntry(logger)

	base := []eval.Config{
		eval.WithReader(parser.NewReader()),
		eval.WithStdout(stdout),
		eval.WithStderr(stderr),
		eval.WithLogger(log),
		eval.WithMaxFrames(s.MaxFrames),
		eval.WithBacktraceRows(s.BacktraceRows),
		eval.WithCollapseLimit(s.CollapseLimit),
	}
	rt, err := eval.StandardRuntime(append(base, config...)...)
	if err != nil {
		return nil, nil, err
	}
	err = evallib.LoadLibrary(rt)
	if err != nil {
		return nil, nil, err
	}
	complete, err := installTracer(rt, s.Trace, log)
	if err != nil {
		return nil, nil, err
	}
	return rt, complete, nil
}

// installTracer enables the named trace backend on rt.  Spans of the
// otel and opencensus backends are reported to log at debug level.
func installTracer(rt *eval.Runtime, name string, log *logrus.Entry) (func() error, error) {
	ctx := context.Background()
	var t eval.Tracer
	shutdown := func() error { return nil }
	switch name {
	case traceNone:
		return shutdown, nil
	case traceOtel:
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(&otelLogExporter{log: log}),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
		otel.SetTracerProvider(tp)
		shutdown = func() error { return tp.Shutdown(ctx) }
		t = tracer.NewOpenTelemetryTracer(rt, ctx)
	case traceOpenCensus:
		octrace.ApplyConfig(octrace.Config{DefaultSampler: octrace.AlwaysSample()})
		exp := &ocLogExporter{log: log}
		octrace.RegisterExporter(exp)
		shutdown = func() error {
			octrace.UnregisterExporter(exp)
			return nil
		}
		t = tracer.NewOpenCensusTracer(rt, ctx)
	case traceLog:
		t = tracer.NewLogTracer(rt, log)
	case tracePprof:
		t = tracer.NewPprofTracer(rt, ctx)
	default:
		return nil, fmt.Errorf("unknown trace backend: %q", name)
	}
	if err := t.Enable(); err != nil {
		return nil, err
	}
	return func() error {
		if err := t.Complete(); err != nil {
			return err
		}
		return shutdown()
	}, nil
}

// otelLogExporter logs finished OpenTelemetry spans.
type otelLogExporter struct {
	log *logrus.Entry
}

var _ sdktrace.SpanExporter = &otelLogExporter{}

func (e *otelLogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		fields := logrus.Fields{
			"span":     span.Name(),
			"duration": span.EndTime().Sub(span.StartTime()),
		}
		for _, kv := range span.Attributes() {
			fields[string(kv.Key)] = kv.Value.Emit()
		}
		e.log.WithFields(fields).Debug("span")
	}
	return nil
}

func (e *otelLogExporter) Shutdown(ctx context.Context) error {
	return nil
}

// ocLogExporter logs finished OpenCensus spans.
type ocLogExporter struct {
	log *logrus.Entry
}

var _ octrace.Exporter = &ocLogExporter{}

func (e *ocLogExporter) ExportSpan(sd *octrace.SpanData) {
	fields := logrus.Fields{
		"span":     sd.Name,
		"duration": sd.EndTime.Sub(sd.StartTime),
	}
	for k, v := range sd.Attributes {
		fields[k] = v
	}
	e.log.WithFields(fields).Debug("span")
}
