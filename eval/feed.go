// Copyright © 2024 The ELPS authors

package eval

// Variadic is a one-shot stream of values.  Values returned by Next cannot be
// revisited.
type Variadic interface {
	Next() (Value, bool)
}

// VariadicFunc adapts a function to the Variadic interface.
type VariadicFunc func() (Value, bool)

// Next implements Variadic.
func (fn VariadicFunc) Next() (Value, bool) { return fn() }

// Values returns a Variadic that produces vals in order.
func Values(vals ...Value) Variadic {
	i := 0
	return VariadicFunc(func() (Value, bool) {
		if i >= len(vals) {
			return End(), false
		}
		v := vals[i]
		i++
		return v, true
	})
}

// Feed is a cursor over a sequence or a variadic stream with a single value
// of lookahead.
//
// Positions reported by a feed are the position just after the lookahead
// value, so an expression that starts with the lookahead records the
// position of its second value.  A variadic feed counts positions virtually
// until it is reified.
type Feed struct {
	value   Value
	seq     *Sequence
	index   int
	stream  Variadic
	fetched int
	shift   int
	flags   FeedFlags
	ctx     *Context
}

// NewSequenceFeed prepares a feed over seq starting at index.  If first is
// not the End sentinel it is produced before the values of seq.
func NewSequenceFeed(first Value, seq *Sequence, index int, ctx *Context, flags FeedFlags) *Feed {
	if index < 0 {
		index = 0
	}
	fd := &Feed{
		seq:   seq,
		index: index,
		ctx:   ctx,
		flags: flags,
	}
	if first.IsEnd() {
		fd.fetch()
	} else {
		fd.value = fd.constify(first)
	}
	return fd
}

// NewVariadicFeed prepares a feed over stream.  If first is not the End
// sentinel it is produced before the values of stream.
func NewVariadicFeed(first Value, stream Variadic, ctx *Context, flags FeedFlags) *Feed {
	fd := &Feed{
		stream: stream,
		ctx:    ctx,
		flags:  flags,
	}
	if first.IsEnd() {
		fd.fetch()
	} else {
		fd.value = fd.constify(first)
		fd.fetched = 1
	}
	return fd
}

func (fd *Feed) fetch() {
	if fd.stream != nil {
		v, ok := fd.stream.Next()
		if !ok {
			fd.value = End()
			return
		}
		fd.fetched++
		fd.value = fd.constify(v)
		return
	}
	if fd.index < fd.seq.Len() {
		fd.value = fd.constify(fd.seq.At(fd.index))
		fd.index++
		return
	}
	fd.value = End()
	fd.index = fd.seq.Len()
}

func (fd *Feed) constify(v Value) Value {
	if fd.flags&FeedConst != 0 && v.IsSequence() {
		v.Const = true
	}
	v.stale = false
	return v
}

// Value returns the lookahead value, which is the End sentinel once the feed
// is exhausted.
func (fd *Feed) Value() Value { return fd.value }

// AtEnd returns true if the feed is exhausted.
func (fd *Feed) AtEnd() bool { return fd.value.IsEnd() }

// Advance moves the lookahead forward one value.  Advance panics if the feed
// is at its end.
func (fd *Feed) Advance() {
	if fd.value.IsEnd() {
		panic("advance called on an exhausted feed")
	}
	fd.fetch()
}

// IsVariadic returns true while the feed reads from a variadic stream.
func (fd *Feed) IsVariadic() bool { return fd.stream != nil }

// Index returns the position just after the lookahead, clamped to the
// length of the backing sequence.  Index panics for variadic feeds, which
// must be reified first.
func (fd *Feed) Index() int {
	if fd.stream != nil {
		panic("index of a variadic feed requested before reification")
	}
	if n := fd.seq.Len(); fd.index > n {
		return n
	}
	return fd.index
}

// Sequence returns the backing sequence of the feed, or nil for variadic
// feeds.
func (fd *Feed) Sequence() *Sequence {
	if fd.stream != nil {
		return nil
	}
	return fd.seq
}

// Context returns the context words are looked up in.
func (fd *Feed) Context() *Context { return fd.ctx }

// Flags returns the current feed flags.
func (fd *Feed) Flags() FeedFlags { return fd.flags }

// SetFlag sets the bits of mask.
func (fd *Feed) SetFlag(mask FeedFlags) { fd.flags |= mask }

// ClearFlag clears the bits of mask.
func (fd *Feed) ClearFlag(mask FeedFlags) { fd.flags &^= mask }

// TakeNoLookahead clears FeedNoLookahead and returns true if it was set.
func (fd *Feed) TakeNoLookahead() bool {
	set := fd.flags&FeedNoLookahead != 0
	fd.flags &^= FeedNoLookahead
	return set
}

// pos returns the position just after the lookahead, virtual for variadic
// feeds.
func (fd *Feed) pos() int {
	if fd.stream != nil {
		return fd.fetched
	}
	return fd.index
}

// translate maps a virtual position recorded before reification onto the
// reified sequence.  Positions in the unrecoverable prefix map to 0, where
// the truncation marker is.
func (fd *Feed) translate(virtual int) int {
	p := virtual + fd.shift
	if p < 0 {
		return 0
	}
	return p
}

// Reify drains the remainder of a variadic feed into a new sequence which
// the feed holds until Release is called.  If values were consumed before
// reification the sequence begins with a `--optimized-out--` word marking
// the truncation.  Reify does nothing for sequence-backed feeds, including
// feeds that have already been reified.
func (fd *Feed) Reify() {
	if fd.stream == nil {
		return
	}
	consumed := fd.fetched
	if !fd.value.IsEnd() {
		consumed--
	}
	seq := MakeSequence(8)
	if consumed > 0 {
		seq.Append(Word(SymOptimizedOut))
	}
	head := seq.Len()
	if !fd.value.IsEnd() {
		seq.Append(fd.value)
		for {
			v, ok := fd.stream.Next()
			if !ok {
				break
			}
			seq.Append(fd.constify(v))
		}
	}
	checkf(fd.flags&FeedTookHold == 0, "feed reified twice")
	fd.stream = nil
	fd.seq = seq
	fd.shift = head - consumed
	if fd.value.IsEnd() {
		fd.index = seq.Len()
	} else {
		fd.index = head + 1
	}
	seq.Hold()
	fd.flags |= FeedTookHold
}

// Release drops the hold taken by Reify, if any.  The owner of a feed calls
// Release once it is finished with the feed.
func (fd *Feed) Release() {
	if fd.flags&FeedTookHold == 0 {
		return
	}
	fd.seq.Release()
	fd.flags &^= FeedTookHold
}
