// Copyright © 2018 The ELPS authors

package eval

import (
	"io"
	"strings"
)

// Reader abstracts a parser implementation so that it may be implemented in a
// separate package as an optional/swappable component.
type Reader interface {
	// Read the contents of r and return the sequence of values that it
	// contains.  The returned sequence is evaluated as the body of a block.
	Read(name string, r io.Reader) (*Sequence, error)
}

// Load reads values from r and evaluates them in the runtime's user context.
// The product of the last step which produced a value is written to out.  If
// rt.Reader has not been set then an error will be returned by Load.
func (rt *Runtime) Load(out *Value, name string, r io.Reader) (bool, error) {
	if rt.Reader == nil {
		return false, Errorf(ErrInvalidArgument, "no reader for runtime")
	}
	seq, err := rt.Reader.Read(name, r)
	if err != nil {
		return false, err
	}
	return rt.EvalSequence(out, seq, 0, rt.Context)
}

// LoadString is like Load but reads its values from src.
func (rt *Runtime) LoadString(out *Value, name string, src string) (bool, error) {
	return rt.Load(out, name, strings.NewReader(src))
}
