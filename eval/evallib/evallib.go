// Copyright © 2018 The ELPS authors

// Package evallib is used to conveniently load the standard natives into a
// runtime.
package evallib

import (
	"github.com/luthersystems/reval/eval"
)

// LoadLibrary binds the base natives and the stack reflection natives in
// the user context of rt.  Unless rt already has one, a pause check is
// installed which recognizes invocations of the pause natives loaded here.
func LoadLibrary(rt *eval.Runtime) error {
	ctx := rt.Context
	ctx.Put("true", eval.Logic(true))
	ctx.Put("false", eval.Logic(false))
	ctx.Put("blank", eval.Blank())

	lib := &library{}
	natives := lib.natives()
	eval.Load(ctx, natives)
	eval.Load(ctx, eval.StackNatives())

	for _, name := range []string{"pause", "breakpoint"} {
		lib.pauses = append(lib.pauses, ctx.Action(name))
	}
	if rt.PauseCheck == nil {
		rt.PauseCheck = lib.isPause
	}
	return nil
}

// library holds the state shared by the natives of one LoadLibrary call.
type library struct {
	pauses []*eval.Action
}

func (lib *library) natives() []*eval.Native {
	var natives []*eval.Native
	natives = append(natives, mathNatives()...)
	natives = append(natives, controlNatives()...)
	natives = append(natives, seriesNatives()...)
	natives = append(natives, ioNatives()...)
	natives = append(natives, debugNatives()...)
	natives = append(natives, helpNatives()...)
	return natives
}

func (lib *library) isPause(f *eval.Frame) bool {
	if f.Action == nil {
		return false
	}
	for _, act := range lib.pauses {
		if f.Action == act {
			return true
		}
	}
	return false
}
