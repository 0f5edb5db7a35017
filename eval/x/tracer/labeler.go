// Copyright © 2024 The ELPS authors

package tracer

import (
	"regexp"
	"strings"

	"github.com/luthersystems/reval/eval"
)

// Labeler provides an alternative name for an invocation in the trace.
type Labeler func(f *eval.Frame) string

// WithDocLabeler labels spans using documentation magic strings of the
// form @trace{label}.
func WithDocLabeler() Option {
	return WithLabeler(docLabeler)
}

// WithLabeler sets the labeler for tracing spans.
func WithLabeler(labeler Labeler) Option {
	return func(p *tracer) {
		p.labeler = labeler
	}
}

// DocLabel is a magic string used to extract span labels.
const DocLabel = `@trace\s*{([^}]+)}`

var (
	docLabelRegExp   = regexp.MustCompile(DocLabel)
	sanitizeRegExp   = regexp.MustCompile(`[\s_]+`)
	validLabelRegExp = regexp.MustCompile(`[[:graph:]]*`)
)

func sanitizeLabel(label string) string {
	if label == "" {
		return ""
	}
	label = sanitizeRegExp.ReplaceAllString(label, "_")
	return validLabelRegExp.FindString(label)
}

func extractLabel(doc string) string {
	if doc == "" {
		return ""
	}
	match := docLabelRegExp.FindStringSubmatch(doc)
	if len(match) < 2 {
		return ""
	}
	return strings.TrimSpace(match[1])
}

func docLabeler(f *eval.Frame) string {
	if f.Action == nil {
		return ""
	}
	return sanitizeLabel(extractLabel(f.Action.Doc))
}
