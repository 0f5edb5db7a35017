// Copyright © 2018 The ELPS authors

package eval

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// DefaultBacktraceRows is the number of rows listed by a backtrace which
// does not specify a limit.  On an 80x25 terminal it leaves room to type
// afterward.
const DefaultBacktraceRows = 20

// DefaultCollapseLimit is the length beyond which nested sequences are
// collapsed in where summaries.
const DefaultCollapseLimit = 3

// PauseCheck reports whether f is running a debugger pause.  A leading
// pause frame is numbered 0 by stack reflection.
type PauseCheck func(f *Frame) bool

// PauseHandler is called by pause natives with the frame of the pause.
type PauseHandler func(rt *Runtime, f *Frame) error

// SecurityCheck is consulted before diagnostic natives read the stack.  A
// non-nil error denies access.
type SecurityCheck func(op string) error

// Runtime holds the state shared by all evaluation on one call stack and is
// responsible for writing output and debugging output to streams (typically
// os.Stdout and os.Stderr).
type Runtime struct {
	Stack   *CallStack
	Data    *DataStack
	Context *Context
	Stdout  io.Writer
	Stderr  io.Writer
	Log     *logrus.Entry
	Tracer  Tracer
	Reader  Reader

	PauseCheck   PauseCheck
	PauseHandler PauseHandler
	Security     SecurityCheck

	CollapseLimit int
	BacktraceRows int

	thrown Value
}

// StandardRuntime returns a new Runtime with an empty user context, output
// to os.Stdout and os.Stderr, and logging through the standard logrus logger
// at warn level.  The given configs are applied in order.
func StandardRuntime(config ...Config) (*Runtime, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	rt := &Runtime{
		Stack:         &CallStack{},
		Data:          &DataStack{},
		Context:       NewContext(nil),
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		Log:           logrus.NewEntry(logger),
		CollapseLimit: DefaultCollapseLimit,
		BacktraceRows: DefaultBacktraceRows,
	}
	for _, fn := range config {
		err := fn(rt)
		if err != nil {
			return nil, err
		}
	}
	return rt, nil
}

// IsPause returns true if f is recognized as a debugger pause.
func (rt *Runtime) IsPause(f *Frame) bool {
	return rt.PauseCheck != nil && rt.PauseCheck(f)
}

// CheckSecurity consults the runtime's security check for op.
func (rt *Runtime) CheckSecurity(op string) error {
	if rt.Security == nil {
		return nil
	}
	err := rt.Security(op)
	if err != nil {
		return WrapError(ErrSecurity, err)
	}
	return nil
}
