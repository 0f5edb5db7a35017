// Copyright © 2024 The ELPS authors

package eval

import (
	"bytes"
	"fmt"
)

// Frame is one in-progress evaluation step or action invocation.  A frame
// lives on its CallStack from Push until Drop.  A frame that steps through
// several expressions of its feed is reused for each of them, but each
// action it invokes gets a fresh identity so handles taken during one
// invocation do not outlive it.
type Frame struct {
	Feed  *Feed
	Out   *Value
	Mode  Mode
	Flags EvalFlags

	// DSPOrig is the height of the data stack when the frame started its
	// current step.
	DSPOrig int

	// Label is the spelling used to invoke Action, if any.
	Label  string
	Action *Action
	// Args holds one cell per parameter of Action.  Refinement parameters
	// hold a logic value.  Arguments which were not supplied hold the End
	// sentinel.
	Args []Value

	// Current is the value being dispatched.
	Current Value

	// ExprIndex is the feed position at the start of the current
	// expression.
	ExprIndex   int
	exprVirtual bool

	reeval      Value
	refinements []string

	stack  *CallStack
	index  int
	serial uint64
}

// NewFrame returns a frame which will step through feed, writing into out.
// The frame must be pushed before it is used.
func NewFrame(feed *Feed, out *Value, flags EvalFlags) *Frame {
	return &Frame{
		Feed:  feed,
		Out:   out,
		Flags: flags,
	}
}

// Handle returns a handle referencing the current invocation of f.
func (f *Frame) Handle() FrameHandle {
	return FrameHandle{
		stack:  f.stack,
		index:  f.index,
		serial: f.serial,
		label:  f.Label,
		action: f.Action,
	}
}

// Arg returns the argument for the parameter named name.  Arg returns the
// End sentinel for unknown names.
func (f *Frame) Arg(name string) Value {
	if f.Action == nil {
		return End()
	}
	i := f.Action.ParamIndex(name)
	if i < 0 || i >= len(f.Args) {
		return End()
	}
	return f.Args[i]
}

// Ref returns true if the refinement named name was used in the invocation.
func (f *Frame) Ref(name string) bool {
	return f.Arg(name).IsTruthy()
}

func (f *Frame) String() string {
	var buf bytes.Buffer
	if f.Label != "" {
		buf.WriteString(f.Label)
	} else if f.Action != nil {
		buf.WriteString(f.Action.Name)
	} else {
		buf.WriteString("_")
	}
	fmt.Fprintf(&buf, " [%s]", f.Mode)
	if f.Feed != nil {
		if f.Feed.IsVariadic() {
			buf.WriteString(" [variadic]")
		} else {
			fmt.Fprintf(&buf, " [index %d]", f.Feed.Index())
		}
	}
	return buf.String()
}

// FrameHandle references one invocation of a Frame.  A handle remains valid
// after the frame is dropped but no longer resolves to it.
type FrameHandle struct {
	stack  *CallStack
	index  int
	serial uint64
	label  string
	action *Action
}

// IsZero returns true if h references nothing.
func (h FrameHandle) IsZero() bool {
	return h.stack == nil
}

// Live returns the frame referenced by h while it is on the stack.
func (h FrameHandle) Live() (*Frame, bool) {
	if h.stack == nil || h.serial == 0 {
		return nil, false
	}
	if h.index < 0 || h.index >= len(h.stack.Frames) {
		return nil, false
	}
	f := h.stack.Frames[h.index]
	if f.serial != h.serial {
		return nil, false
	}
	return f, true
}

// Label returns the label of the invocation referenced by h.
func (h FrameHandle) Label() string {
	if f, ok := h.Live(); ok {
		return f.Label
	}
	return h.label
}

// Action returns the action of the invocation referenced by h.  Action
// works whether or not the frame is still on the stack.
func (h FrameHandle) Action() *Action {
	if f, ok := h.Live(); ok && f.Action != nil {
		return f.Action
	}
	return h.action
}

// Running returns true if h references a live frame which is running its
// action.
func (h FrameHandle) Running() bool {
	f, ok := h.Live()
	return ok && f.Mode.IsRunning()
}

// Pending returns true if h references a live frame which is gathering
// arguments.
func (h FrameHandle) Pending() bool {
	f, ok := h.Live()
	return ok && f.Mode.IsPending()
}

// Same returns true if h and other reference the same invocation.
func (h FrameHandle) Same(other FrameHandle) bool {
	return h.stack == other.stack && h.serial == other.serial && h.index == other.index
}
