// Copyright © 2024 The ELPS authors

// Package diagnostic renders evaluation errors and their backtraces as
// annotated snippets for CLI output.
package diagnostic

import (
	"errors"

	"github.com/luthersystems/reval/eval"
)

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// MarshalYAML encodes s by name.
func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Span identifies a stack level whose expression is highlighted in the
// diagnostic.
type Span struct {
	Level   int    `yaml:"level"`
	Pending bool   `yaml:"pending,omitempty"`
	Label   string `yaml:"label,omitempty"` // word the action was invoked through
	Where   string `yaml:"where"`           // molded expression of the level
}

// Diagnostic represents a single error, warning, or note with optional
// stack annotations and trailing notes.
type Diagnostic struct {
	Severity  Severity `yaml:"severity"`
	Condition string   `yaml:"condition,omitempty"`
	Message   string   `yaml:"message"`
	Spans     []Span   `yaml:"spans,omitempty"`
	Notes     []string `yaml:"notes,omitempty"` // "= note:" lines (outer stack levels, etc.)
}

// FromError converts err to a diagnostic.  The innermost level of an
// *eval.Error backtrace becomes the highlighted span and outer levels
// become notes, innermost first.
func FromError(err error) Diagnostic {
	d := Diagnostic{
		Severity: SeverityError,
		Message:  err.Error(),
	}
	var e *eval.Error
	if !errors.As(err, &e) {
		return d
	}
	d.Condition = e.ConditionName()
	d.Message = e.Message
	if e.Label != "" {
		d.Message = e.Label + ": " + d.Message
	}
	for i := len(e.Stack) - 1; i >= 0; i-- {
		rec := e.Stack[i]
		if len(d.Spans) == 0 {
			d.Spans = append(d.Spans, Span{
				Level:   rec.Level,
				Pending: rec.Pending,
				Label:   rec.Label,
				Where:   rec.Where,
			})
			continue
		}
		d.Notes = append(d.Notes, "in "+rec.String())
	}
	return d
}
