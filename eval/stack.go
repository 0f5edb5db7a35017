// Copyright © 2018 The ELPS authors

package eval

import (
	"fmt"
	"io"
	"log"
	"os"
)

// CallStack is the stack of frames of in-progress evaluations.  Frames are
// addressed by index, the entrypoint at index 0.  The prior of a frame is the
// frame at the previous index.
type CallStack struct {
	Frames            []*Frame
	MaxHeightPhysical int
	serial            uint64
}

// Len returns the number of frames on the stack.
func (s *CallStack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Frames)
}

// Top returns the Frame at the top of the stack or nil if none exists.
func (s *CallStack) Top() *Frame {
	if s == nil || len(s.Frames) == 0 {
		return nil
	}
	return s.Frames[len(s.Frames)-1]
}

// Prior returns the frame pushed before f, or nil if f is the entrypoint.
func (s *CallStack) Prior(f *Frame) *Frame {
	if f == nil || f.index <= 0 || f.index > len(s.Frames) {
		return nil
	}
	return s.Frames[f.index-1]
}

// Walk calls fn on each frame from the top of the stack to its base,
// stopping early if fn returns false.
func (s *CallStack) Walk(fn func(f *Frame) bool) {
	for i := len(s.Frames) - 1; i >= 0; i-- {
		if !fn(s.Frames[i]) {
			return
		}
	}
}

// Push installs f as the new top of the stack.  Push fails if the stack has
// reached its maximum physical height.
func (s *CallStack) Push(f *Frame) error {
	err := s.checkHeightPhysical()
	if err != nil {
		return err
	}
	f.stack = s
	f.index = len(s.Frames)
	f.serial = s.nextSerial()
	// A barrier seen by an enclosing step does not stop this one.
	f.Feed.ClearFlag(FeedBarrierHit)
	s.Frames = append(s.Frames, f)
	return nil
}

// Drop removes f from the stack.  Only the top of the stack may be dropped,
// anything else indicates an inconsistent stack and panics.
func (s *CallStack) Drop(f *Frame) {
	top := s.Top()
	if top == nil || top != f {
		_, _ = s.DebugPrint(os.Stderr)
		log.Panicf("drop of a frame which is not the top of the stack -- inconsistent stack")
	}
	s.Frames[len(s.Frames)-1] = nil
	s.Frames = s.Frames[:len(s.Frames)-1]
	f.serial = 0
}

func (s *CallStack) nextSerial() uint64 {
	s.serial++
	return s.serial
}

// checkHeightPhysical performs an inclusive check against s.MaxHeightPhysical
// because it is assumed to be called preemptively, before a new frame is
// pushed onto the stack.  To account for this checkHeightPhysical adds one to
// the current physical height in any error produced.
func (s *CallStack) checkHeightPhysical() error {
	if s.MaxHeightPhysical <= 0 {
		return nil
	}
	if s.MaxHeightPhysical <= len(s.Frames) {
		return &StackOverflowError{len(s.Frames) + 1}
	}
	return nil
}

// DebugPrint prints s
func (s *CallStack) DebugPrint(w io.Writer) (int, error) {
	n, err := fmt.Fprintf(w, "Stack Trace [%d frames -- entrypoint last]:\n", len(s.Frames))
	if err != nil {
		return n, err
	}
	indent := "  "
	for i := len(s.Frames) - 1; i >= 0; i-- {
		fstr := s.Frames[i].String()
		_n, err := fmt.Fprintf(w, "%sheight %d: %s\n", indent, i, fstr)
		n += _n
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// StackOverflowError is returned when a push would exceed the maximum
// physical height of a CallStack.
type StackOverflowError struct {
	Height int
}

func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("physical stack height exceeded maximum: %v", e.Height)
}

// Is allows errors.Is to match ErrStackOverflow.
func (e *StackOverflowError) Is(target error) bool {
	return target == ErrStackOverflow
}
