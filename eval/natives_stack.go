// Copyright © 2024 The ELPS authors

package eval

import (
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// BacktraceWidth is the column at which printed backtraces are wrapped.
const BacktraceWidth = 78

const backtraceIndent = 2

// Native is the definition of a built-in action.
type Native struct {
	Name      string
	Formals   []Param
	Fun       NativeFunc
	Enfix     bool
	Invisible bool
	Doc       string
}

// Action returns a new action implementing n.
func (n *Native) Action() *Action {
	act := NewNative(n.Name, n.Formals, n.Fun)
	act.Enfix = n.Enfix
	act.Invisible = n.Invisible
	act.Doc = n.Doc
	return act
}

// Load binds each native in ctx.
func Load(ctx *Context, natives []*Native) {
	for _, n := range natives {
		ctx.Put(n.Name, ActionValue(n.Action()))
	}
}

// StackNatives returns the natives reflecting on the call stack.
func StackNatives() []*Native {
	return []*Native{
		{Name: "where-of", Formals: Formals("level frame! action! integer! blank!"), Fun: nativeWhereOf,
			Doc: `Returns a block summarizing what the frame at level is
			evaluating: its label followed by the values of the current
			expression.  Pending frames end with ...`},
		{Name: "label-of", Formals: Formals("level frame! action! integer!"), Fun: nativeLabelOf,
			Doc: `Returns the word an invocation was made through, or blank.`},
		{Name: "function-of", Formals: Formals("level frame! integer!"), Fun: nativeFunctionOf,
			Doc: `Returns the action running at level.  A frame value yields
			its action even after the invocation has finished.`},
		{Name: "backtrace-index", Formals: Formals("level action! frame!"), Fun: nativeBacktraceIndex,
			Doc: `Returns the backtrace number of a running frame, or blank.`},
		{Name: "backtrace", Formals: Formals(
			"/at", "level blank! integer! action! frame!",
			"/limit", "frames blank! integer!",
			"/brief",
			"/quiet",
		), Fun: nativeBacktrace,
			Doc: `Prints the frames on the call stack, the most recent last.
			With /quiet the listing block is returned instead.  With /at a
			frame value for the given level is returned.  /limit bounds
			the rows listed (blank for no bound) and /brief lists labels
			only.`},
		{Name: "running?", Formals: Formals("frame frame!"), Fun: nativeRunningQ,
			Doc: `Returns true if frame is on the stack running its action.`},
		{Name: "pending?", Formals: Formals("frame frame!"), Fun: nativePendingQ,
			Doc: `Returns true if frame is on the stack gathering arguments.`},
	}
}

const securityDebug = "debug"

func nativeWhereOf(rt *Runtime, f *Frame) (bool, error) {
	if err := rt.CheckSecurity(securityDebug); err != nil {
		return false, err
	}
	level := f.Arg("level")
	frame, _, ok := rt.FrameForLevel(level, true)
	if !ok {
		return false, Errorf(ErrInvalidArgument, "no frame at level %v", level)
	}
	*f.Out = Block(rt.WhereFor(frame))
	return false, nil
}

func nativeLabelOf(rt *Runtime, f *Frame) (bool, error) {
	if err := rt.CheckSecurity(securityDebug); err != nil {
		return false, err
	}
	frame, _, ok := rt.FrameForLevel(f.Arg("level"), true)
	if !ok {
		*f.Out = Blank()
		return false, nil
	}
	*f.Out = labelValue(frame.Label)
	return false, nil
}

func nativeFunctionOf(rt *Runtime, f *Frame) (bool, error) {
	if err := rt.CheckSecurity(securityDebug); err != nil {
		return false, err
	}
	level := f.Arg("level")
	if level.Kind == KindFrame {
		// The action of a frame is known even after it leaves the stack.
		act := level.Frame.Action()
		if act == nil {
			return false, Errorf(ErrInvalidArgument, "frame %v has no action", level)
		}
		*f.Out = ActionValue(act)
		return false, nil
	}
	frame, _, ok := rt.FrameForLevel(level, true)
	if !ok || frame.Action == nil {
		return false, Errorf(ErrInvalidArgument, "no frame at level %v", level)
	}
	*f.Out = ActionValue(frame.Action)
	return false, nil
}

func nativeBacktraceIndex(rt *Runtime, f *Frame) (bool, error) {
	if err := rt.CheckSecurity(securityDebug); err != nil {
		return false, err
	}
	_, number, ok := rt.FrameForLevel(f.Arg("level"), true)
	if !ok || number < 0 {
		*f.Out = Blank()
		return false, nil
	}
	*f.Out = Integer(int64(number))
	return false, nil
}

func nativeBacktrace(rt *Runtime, f *Frame) (bool, error) {
	if err := rt.CheckSecurity(securityDebug); err != nil {
		return false, err
	}
	opts := BacktraceOptions{
		Brief:       f.Ref("brief"),
		SkipCurrent: true,
	}
	if f.Ref("at") {
		opts.Level = f.Arg("level")
		if opts.Level.IsEnd() {
			opts.Level = Blank()
		}
	}
	if f.Ref("limit") {
		opts.Limit = f.Arg("frames")
	}
	result, err := rt.Backtrace(opts)
	if err != nil {
		return false, err
	}
	if result.Kind == KindFrame || f.Ref("quiet") {
		*f.Out = result
		return false, nil
	}
	// Printed backtraces produce no value.
	PrintBacktrace(rt, result)
	return false, nil
}

// PrintBacktrace writes a molded backtrace listing to rt.Stdout.
func PrintBacktrace(rt *Runtime, bt Value) {
	s := strings.TrimPrefix(MoldItems(bt.Seq, 0), "\n")
	s = wordwrap.String(s, BacktraceWidth-backtraceIndent)
	_, _ = io.WriteString(rt.Stdout, indent.String(s, backtraceIndent))
	_, _ = io.WriteString(rt.Stdout, "\n")
}

func nativeRunningQ(rt *Runtime, f *Frame) (bool, error) {
	if err := rt.CheckSecurity(securityDebug); err != nil {
		return false, err
	}
	*f.Out = Logic(f.Arg("frame").Frame.Running())
	return false, nil
}

func nativePendingQ(rt *Runtime, f *Frame) (bool, error) {
	if err := rt.CheckSecurity(securityDebug); err != nil {
		return false, err
	}
	*f.Out = Logic(f.Arg("frame").Frame.Pending())
	return false, nil
}
