// Copyright © 2018 The ELPS authors

package eval

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Config is a function that configures a Runtime.
type Config func(rt *Runtime) error

// WithStdout returns a Config that makes the runtime write printed output
// to w instead of the default, os.Stdout.
func WithStdout(w io.Writer) Config {
	return func(rt *Runtime) error {
		rt.Stdout = w
		return nil
	}
}

// WithStderr returns a Config that makes the runtime write debugging output
// to w instead of the default, os.Stderr.
func WithStderr(w io.Writer) Config {
	return func(rt *Runtime) error {
		rt.Stderr = w
		return nil
	}
}

// WithReader returns a Config that makes the runtime use r to parse source
// streams.  There is no default Reader for a runtime.
func WithReader(r Reader) Config {
	return func(rt *Runtime) error {
		rt.Reader = r
		return nil
	}
}

// WithLogger returns a Config that makes the runtime log through entry.
func WithLogger(entry *logrus.Entry) Config {
	return func(rt *Runtime) error {
		if entry == nil {
			return fmt.Errorf("nil logger")
		}
		rt.Log = entry
		return nil
	}
}

// WithTracer returns a Config that installs t and enables it.  An enabled
// tracer disables the inert fast path so that every step is observed.
func WithTracer(t Tracer) Config {
	return func(rt *Runtime) error {
		rt.Tracer = t
		if t == nil || t.IsEnabled() {
			return nil
		}
		return t.Enable()
	}
}

// WithPauseCheck returns a Config that makes stack reflection use fn to
// recognize debugger pause frames.
func WithPauseCheck(fn PauseCheck) Config {
	return func(rt *Runtime) error {
		rt.PauseCheck = fn
		return nil
	}
}

// WithPauseHandler returns a Config that makes pause natives call fn.
func WithPauseHandler(fn PauseHandler) Config {
	return func(rt *Runtime) error {
		rt.PauseHandler = fn
		return nil
	}
}

// WithSecurity returns a Config that gates diagnostic natives with fn.
func WithSecurity(fn SecurityCheck) Config {
	return func(rt *Runtime) error {
		rt.Security = fn
		return nil
	}
}

// WithMaxFrames returns a Config that will prevent the call stack from
// growing beyond n frames.  A value of 0 means unlimited (the default).
func WithMaxFrames(n int) Config {
	return func(rt *Runtime) error {
		if n < 0 {
			return fmt.Errorf("negative maximum frame count: %d", n)
		}
		rt.Stack.MaxHeightPhysical = n
		return nil
	}
}

// WithCollapseLimit returns a Config that sets the length beyond which
// nested sequences are collapsed in where summaries.
func WithCollapseLimit(n int) Config {
	return func(rt *Runtime) error {
		if n < 0 {
			return fmt.Errorf("negative collapse limit: %d", n)
		}
		rt.CollapseLimit = n
		return nil
	}
}

// WithBacktraceRows returns a Config that sets the number of rows listed by
// a backtrace which does not specify a limit.
func WithBacktraceRows(n int) Config {
	return func(rt *Runtime) error {
		if n < 0 {
			return fmt.Errorf("negative backtrace row count: %d", n)
		}
		rt.BacktraceRows = n
		return nil
	}
}
