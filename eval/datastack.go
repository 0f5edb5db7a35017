// Copyright © 2024 The ELPS authors

package eval

import (
	"log"
)

// DataStack accumulates values ahead of committing them to a Sequence.  An
// operation records Len before pushing and later pops exactly what it
// pushed with PopSequence or DropTo.
type DataStack struct {
	cells []Value
}

// Len returns the height of the stack, the DSP.
func (ds *DataStack) Len() int { return len(ds.cells) }

// Push pushes v onto the stack.
func (ds *DataStack) Push(v Value) {
	v.stale = false
	ds.cells = append(ds.cells, v)
}

// Top returns the value on top of the stack.  Top returns the End sentinel
// if the stack is empty.
func (ds *DataStack) Top() Value {
	if len(ds.cells) == 0 {
		return End()
	}
	return ds.cells[len(ds.cells)-1]
}

// DropTo pops values until the height of the stack is dsp.
func (ds *DataStack) DropTo(dsp int) {
	if dsp > len(ds.cells) || dsp < 0 {
		log.Panicf("data stack drop to %d with height %d", dsp, len(ds.cells))
	}
	for i := dsp; i < len(ds.cells); i++ {
		ds.cells[i] = Value{}
	}
	ds.cells = ds.cells[:dsp]
}

// PopSequence pops the values pushed since dspOrig into a new sequence,
// preserving their push order.
func (ds *DataStack) PopSequence(dspOrig int) *Sequence {
	if dspOrig > len(ds.cells) || dspOrig < 0 {
		log.Panicf("data stack pop to %d with height %d", dspOrig, len(ds.cells))
	}
	seq := NewSequence(ds.cells[dspOrig:]...)
	ds.DropTo(dspOrig)
	return seq
}
