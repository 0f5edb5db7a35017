// Copyright © 2024 The ELPS authors

package evallib

import (
	"github.com/luthersystems/reval/eval"
)

func debugNatives() []*eval.Native {
	return []*eval.Native{
		{Name: "pause", Formals: eval.Formals(), Fun: nativePause, Invisible: true,
			Doc: `Suspends evaluation in the runtime's pause handler, if one
			is installed.  While paused the pause is backtrace level 0 and
			the code that called it is level 1.`},
		{Name: "breakpoint", Formals: eval.Formals(), Fun: nativePause, Invisible: true,
			Doc: `Same as pause.`},
		{Name: "debug-stack", Formals: eval.Formals(), Fun: nativeDebugStack, Invisible: true,
			Doc: `Writes the frames of the call stack, including frames which
			are not shown by backtrace, to the debugging output.`},
	}
}

func nativePause(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	if err := rt.CheckSecurity("debug"); err != nil {
		return false, err
	}
	if rt.PauseHandler == nil {
		rt.Log.WithField("label", f.Label).Info("pause ignored without a handler")
		return false, nil
	}
	return false, rt.PauseHandler(rt, f)
}

func nativeDebugStack(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	if err := rt.CheckSecurity("debug"); err != nil {
		return false, err
	}
	_, err := rt.Stack.DebugPrint(rt.Stderr)
	return false, err
}
