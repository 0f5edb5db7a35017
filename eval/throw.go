// Copyright © 2024 The ELPS authors

package eval

// Throw writes a throw labeled name into out and stashes arg until it is
// caught.  Throw always returns true so natives can write
//
//	return rt.Throw(f.Out, name, arg), nil
func (rt *Runtime) Throw(out *Value, name Value, arg Value) bool {
	name.stale = false
	*out = name
	arg.stale = false
	rt.thrown = arg
	return true
}

// CatchThrown completes a throw.  The argument of the throw is moved into
// out and the label of the throw, which out held, is returned.
func (rt *Runtime) CatchThrown(out *Value) Value {
	name := *out
	*out = rt.thrown
	rt.thrown = End()
	return name
}

// UncaughtError completes a throw which reached the top level without a
// matching catch and returns an error describing it.
func (rt *Runtime) UncaughtError(out *Value) error {
	name := rt.CatchThrown(out)
	if name.Kind == KindBlank {
		return Errorf(ErrNoCatch, "no catch for throw of %v", *out)
	}
	return Errorf(ErrNoCatch, "no catch for throw of %v named %v", *out, name)
}
