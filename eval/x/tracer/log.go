// Copyright © 2024 The ELPS authors

package tracer

import (
	"time"

	"github.com/luthersystems/reval/eval"
	"github.com/sirupsen/logrus"
)

type logTracer struct {
	tracer
	log *logrus.Entry
}

var _ eval.Tracer = &logTracer{}

// NewLogTracer returns a tracer which logs each evaluation step at trace
// level and each action invocation at debug level.
func NewLogTracer(runtime *eval.Runtime, log *logrus.Entry, opts ...Option) eval.Tracer {
	p := &logTracer{
		tracer: tracer{
			runtime: runtime,
		},
		log: log,
	}
	p.tracer.applyConfigs(opts...)
	return p
}

func (p *logTracer) Enable() error {
	p.runtime.Tracer = p
	if p.log == nil {
		p.log = p.runtime.Log
	}
	return p.tracer.Enable()
}

func (p *logTracer) Step(f *eval.Frame) {
	if !p.enabled || !p.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		return
	}
	p.log.WithFields(logrus.Fields{
		"height": p.runtime.Stack.Len(),
		"value":  eval.Mold(f.Current),
	}).Trace("step")
}

func (p *logTracer) Start(f *eval.Frame) func() {
	if p.skipTrace(f) {
		return func() {}
	}
	pretty, _ := p.prettyName(f)
	log := p.log.WithFields(logrus.Fields{
		"function": pretty,
		"height":   p.runtime.Stack.Len(),
	})
	if w := where(p.runtime, f); w != "" {
		log = log.WithField("where", w)
	}
	log.Debug("start")
	start := time.Now()
	return func() {
		log.WithField("duration", time.Since(start)).Debug("done")
	}
}
