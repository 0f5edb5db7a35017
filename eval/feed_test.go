// Copyright © 2024 The ELPS authors

package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(spellings ...string) []Value {
	vals := make([]Value, len(spellings))
	for i, s := range spellings {
		vals[i] = Word(s)
	}
	return vals
}

func TestSequenceFeed(t *testing.T) {
	seq := NewSequence(words("a", "b", "c")...)
	fd := NewSequenceFeed(End(), seq, 0, NewContext(nil), 0)
	assert.False(t, fd.IsVariadic())
	assert.Equal(t, "a", fd.Value().Str)
	assert.Equal(t, 1, fd.Index())
	fd.Advance()
	fd.Advance()
	assert.Equal(t, "c", fd.Value().Str)
	assert.Equal(t, 3, fd.Index())
	fd.Advance()
	assert.True(t, fd.AtEnd())
	assert.Equal(t, 3, fd.Index())
	assert.Panics(t, fd.Advance)
}

func TestSequenceFeedFirst(t *testing.T) {
	seq := NewSequence(words("b", "c")...)
	fd := NewSequenceFeed(Word("a"), seq, 0, NewContext(nil), 0)
	assert.Equal(t, "a", fd.Value().Str)
	fd.Advance()
	assert.Equal(t, "b", fd.Value().Str)
}

func TestSequenceFeedMutation(t *testing.T) {
	seq := NewSequence(words("a", "b", "c", "d")...)
	fd := NewSequenceFeed(End(), seq, 0, NewContext(nil), 0)
	fd.Advance()
	fd.Advance()
	seq.Clear(1)
	assert.Equal(t, 1, fd.Index())
	assert.Equal(t, "c", fd.Value().Str, "the lookahead was fetched before mutation")
	fd.Advance()
	assert.True(t, fd.AtEnd())
}

func TestFeedConst(t *testing.T) {
	inner := BlockOf(Integer(1))
	seq := NewSequence(inner, Integer(2))
	fd := NewSequenceFeed(End(), seq, 0, NewContext(nil), FeedConst)
	assert.True(t, fd.Value().Const)
	fd.Advance()
	assert.False(t, fd.Value().Const, "only sequences are const")
	assert.False(t, seq.At(0).Const, "the source is not modified")
}

func TestReifyBeforeConsumption(t *testing.T) {
	fd := NewVariadicFeed(End(), Values(words("a", "b")...), NewContext(nil), 0)
	assert.True(t, fd.IsVariadic())
	assert.Panics(t, func() { fd.Index() })
	fd.Reify()
	assert.False(t, fd.IsVariadic())
	assert.Equal(t, "a b", fd.Sequence().String())
	assert.Equal(t, 1, fd.Index())
	assert.Equal(t, "a", fd.Value().Str)
	assert.True(t, fd.Sequence().IsHeld())
	assert.True(t, fd.Flags().Has(FeedTookHold))
}

func TestReifyAfterConsumption(t *testing.T) {
	fd := NewVariadicFeed(Word("a"), Values(words("b", "c", "d")...), NewContext(nil), 0)
	fd.Advance()
	fd.Advance()
	start := 1 // virtual position recorded while b was the lookahead
	fd.Reify()
	seq := fd.Sequence()
	assert.Equal(t, "--optimized-out-- c d", seq.String())
	assert.Equal(t, "c", fd.Value().Str)
	assert.Equal(t, 2, fd.Index())
	assert.Equal(t, 0, fd.translate(start), "the unrecoverable prefix maps to the marker")
	assert.Equal(t, 2, fd.translate(3))

	fd.Advance()
	assert.Equal(t, "d", fd.Value().Str)
	assert.Equal(t, 3, fd.Index())
}

func TestReifyIdempotent(t *testing.T) {
	fd := NewVariadicFeed(End(), Values(words("a", "b", "c")...), NewContext(nil), 0)
	fd.Advance()
	fd.Reify()
	once := fd.Sequence().String()
	index := fd.Index()
	fd.Reify()
	assert.Equal(t, once, fd.Sequence().String())
	assert.Equal(t, index, fd.Index())
}

func TestReifyAtEnd(t *testing.T) {
	fd := NewVariadicFeed(End(), Values(words("a")...), NewContext(nil), 0)
	fd.Advance()
	require.True(t, fd.AtEnd())
	fd.Reify()
	assert.Equal(t, "--optimized-out--", fd.Sequence().String())
	assert.Equal(t, 1, fd.Index())
	assert.True(t, fd.AtEnd())
}

func TestReifyEmpty(t *testing.T) {
	fd := NewVariadicFeed(End(), Values(), NewContext(nil), 0)
	require.True(t, fd.AtEnd())
	fd.Reify()
	assert.Equal(t, 0, fd.Sequence().Len())
	assert.Equal(t, 0, fd.Index())
}

func TestReifyRelease(t *testing.T) {
	fd := NewVariadicFeed(End(), Values(words("a")...), NewContext(nil), 0)
	fd.Reify()
	seq := fd.Sequence()
	require.True(t, seq.IsHeld())
	fd.Release()
	assert.False(t, seq.IsHeld())
	assert.False(t, fd.Flags().Has(FeedTookHold))
	fd.Release()
	assert.False(t, seq.IsHeld())
}

func TestTakeNoLookahead(t *testing.T) {
	fd := NewSequenceFeed(End(), NewSequence(), 0, NewContext(nil), FeedNoLookahead)
	assert.True(t, fd.TakeNoLookahead())
	assert.False(t, fd.TakeNoLookahead(), "no-lookahead is consumed on first use")
}
