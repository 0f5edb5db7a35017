// Copyright © 2018 The ELPS authors

package eval

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFrame() *Frame {
	out := End()
	feed := NewSequenceFeed(End(), NewSequence(), 0, NewContext(nil), 0)
	return NewFrame(feed, &out, 0)
}

func TestCallStackLIFO(t *testing.T) {
	s := &CallStack{}
	a, b := newTestFrame(), newTestFrame()
	require.NoError(t, s.Push(a))
	require.NoError(t, s.Push(b))
	assert.Equal(t, 2, s.Len())
	assert.Same(t, b, s.Top())
	assert.Same(t, a, s.Prior(b))
	assert.Nil(t, s.Prior(a))

	assert.Panics(t, func() { s.Drop(a) }, "only the top frame may be dropped")

	s.Drop(b)
	s.Drop(a)
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Top())
	assert.Panics(t, func() { s.Drop(a) })
}

func TestCallStackOverflow(t *testing.T) {
	s := &CallStack{MaxHeightPhysical: 2}
	require.NoError(t, s.Push(newTestFrame()))
	require.NoError(t, s.Push(newTestFrame()))
	err := s.Push(newTestFrame())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStackOverflow))
	var overflow *StackOverflowError
	require.True(t, errors.As(err, &overflow))
	assert.Equal(t, 3, overflow.Height)
	assert.Equal(t, 2, s.Len())
}

func TestCallStackPushClearsBarrier(t *testing.T) {
	s := &CallStack{}
	f := newTestFrame()
	f.Feed.SetFlag(FeedBarrierHit)
	require.NoError(t, s.Push(f))
	assert.False(t, f.Feed.Flags().Has(FeedBarrierHit))
}

func TestFrameHandle(t *testing.T) {
	s := &CallStack{}
	f := newTestFrame()
	require.NoError(t, s.Push(f))
	f.Label = "foo"
	f.Action = NewNative("foo", nil, nil)

	modes := []struct {
		mode    Mode
		running bool
		pending bool
	}{
		{ModeGuardOnly, false, false},
		{ModeArgs, false, true},
		{ModeRefinementPickup, false, true},
		{ModeFunction, true, false},
	}
	h := f.Handle()
	for _, m := range modes {
		f.Mode = m.mode
		assert.Equal(t, m.running, h.Running(), "running %v", m.mode)
		assert.Equal(t, m.pending, h.Pending(), "pending %v", m.mode)
		assert.False(t, h.Running() && h.Pending())
	}

	live, ok := h.Live()
	require.True(t, ok)
	assert.Same(t, f, live)

	s.Drop(f)
	for _, m := range modes {
		f.Mode = m.mode
		assert.False(t, h.Running(), "dropped frames are not running")
		assert.False(t, h.Pending(), "dropped frames are not pending")
	}
	_, ok = h.Live()
	assert.False(t, ok)
	assert.Equal(t, "foo", h.Label())
	assert.Equal(t, "foo", h.Action().Name)
}

func TestFrameHandleReuse(t *testing.T) {
	s := &CallStack{}
	f := newTestFrame()
	require.NoError(t, s.Push(f))
	h := f.Handle()
	s.Drop(f)

	// A different frame at the same height does not satisfy an old handle.
	g := newTestFrame()
	require.NoError(t, s.Push(g))
	g.Mode = ModeFunction
	assert.False(t, h.Running())
	assert.False(t, h.Same(g.Handle()))
	assert.True(t, g.Handle().Same(g.Handle()))
}

func TestDebugPrint(t *testing.T) {
	s := &CallStack{}
	f := newTestFrame()
	require.NoError(t, s.Push(f))
	g := newTestFrame()
	require.NoError(t, s.Push(g))
	g.Label = "foo"
	g.Mode = ModeFunction
	var buf bytes.Buffer
	_, err := s.DebugPrint(&buf)
	require.NoError(t, err)
	assert.Equal(t, `Stack Trace [2 frames -- entrypoint last]:
  height 1: foo [function] [index 0]
  height 0: _ [guard-only] [index 0]
`, buf.String())
}
