// Copyright © 2024 The ELPS authors

package eval

import (
	"log"
)

// The stepping conventions below all return threw=true when evaluation
// threw.  The output cell then holds the label of the throw (see
// CatchThrown) and every frame pushed by the call has been dropped.

// didInertOptimization produces the lookahead of feed directly into out
// when it is inert and nothing can be gained by dispatching it.  If an enfix
// action, or the `/` operator, follows the inert value then the value is
// still consumed but false is returned with EvalPostSwitch set in flags, so
// that the caller enters the core directly at enfix lookahead.
func (rt *Runtime) didInertOptimization(out *Value, feed *Feed, flags *EvalFlags) bool {
	checkf(*flags&EvalPostSwitch == 0, "inert optimization entered in post-switch state")
	if feed.AtEnd() {
		return false
	}
	if !feed.value.IsInert() {
		return false
	}
	if rt.tracing() {
		return false
	}
	*out = feed.value
	feed.Advance()

	next := feed.value
	if next.Kind == KindWord {
		act := feed.ctx.Action(next.Str)
		if act == nil || !act.Enfix {
			feed.ClearFlag(FeedNoLookahead)
			return true
		}
		if act.QuotesFirst() {
			// Quoting defeats no-lookahead, but only for hard quotes.
			if !feed.flags.Has(FeedNoLookahead) {
				*flags |= EvalPostSwitch | EvalInertOptimization
				return false
			}
			feed.ClearFlag(FeedNoLookahead)
			if p, _ := act.FirstParam(); p.Class == ParamSoftQuote {
				return true
			}
			*flags |= EvalPostSwitch | EvalInertOptimization
			return false
		}
		if feed.TakeNoLookahead() {
			return true
		}
		if act.SkippableFirst() {
			p, _ := act.FirstParam()
			if !p.Types.Accepts(out.Kind) {
				return true
			}
		}
		*flags |= EvalPostSwitch | EvalInertOptimization
		return false
	}
	if feed.TakeNoLookahead() {
		return true
	}
	if next.IsSlash() {
		*flags |= EvalPostSwitch | EvalInertOptimization
		return false
	}
	return true
}

// EvalStep runs one step of f, which must be the top of the stack, writing
// the product into out.  The caller guarantees that out holds the End
// sentinel; out is left that way if the step produced nothing.
func (rt *Runtime) EvalStep(out *Value, f *Frame) (bool, error) {
	if !out.IsEnd() {
		log.Panicf("single step requires an empty output cell, got %v", *out)
	}
	rt.checkTop(f)
	if f.Feed.AtEnd() {
		return false, nil
	}
	if rt.didInertOptimization(out, f.Feed, &f.Flags) {
		return false, nil
	}
	f.Out = out
	f.DSPOrig = rt.Data.Len()
	return rt.evalCore(f)
}

// EvalStepMaybeStale runs one step of f like EvalStep, but out is preloaded
// with a prior value.  If the step produced nothing (all of it was
// invisible) the prior value remains and out.IsStale() reports true.
func (rt *Runtime) EvalStepMaybeStale(out *Value, f *Frame) (bool, error) {
	if out.IsEnd() {
		log.Panicf("maybe-stale step requires a preloaded output cell")
	}
	rt.checkTop(f)
	out.stale = true
	if f.Feed.AtEnd() {
		return false, nil
	}
	if rt.didInertOptimization(out, f.Feed, &f.Flags) {
		return false, nil
	}
	f.Out = out
	f.DSPOrig = rt.Data.Len()
	return rt.evalCore(f)
}

// EvalStepMidFrame runs one step of f reusing f itself, without pushing a
// frame.  The data stack mark of f must already be established.  The flags
// of f are replaced by flags for the duration of the step and restored
// afterward.
func (rt *Runtime) EvalStepMidFrame(f *Frame, flags EvalFlags) (bool, error) {
	if f.DSPOrig != rt.Data.Len() {
		log.Panicf("mid-frame step with data stack at %d, frame mark %d", rt.Data.Len(), f.DSPOrig)
	}
	prior := f.Flags
	f.Flags = flags
	defer func() { f.Flags = prior }()
	return rt.evalCore(f)
}

// EvalStepInSubframe runs one step of the feed of f in a new child frame,
// writing the product into out.  The child is dropped before returning.
func (rt *Runtime) EvalStepInSubframe(out *Value, f *Frame, flags EvalFlags) (bool, error) {
	if rt.didInertOptimization(out, f.Feed, &flags) {
		return false, nil
	}
	return rt.runFrame(NewFrame(f.Feed, out, flags))
}

// ReevaluateInSubframe dispatches v in a new child frame on the feed of f as
// if v had just been fetched from the feed.  Enfix lookahead continues into
// the feed.
func (rt *Runtime) ReevaluateInSubframe(out *Value, f *Frame, v Value, flags EvalFlags) (bool, error) {
	sub := NewFrame(f.Feed, out, flags|EvalReevaluateCell)
	sub.reeval = v
	return rt.runFrame(sub)
}

// EvalSequence evaluates seq from index to its end, leaving the product of
// the last step that produced a value in out.  If no step produces a value
// out is not modified.
func (rt *Runtime) EvalSequence(out *Value, seq *Sequence, index int, ctx *Context) (bool, error) {
	return rt.drain(out, NewSequenceFeed(End(), seq, index, ctx, 0))
}

// EvalSequenceFirst evaluates first followed by the values of seq from
// index, as a single feed.
func (rt *Runtime) EvalSequenceFirst(out *Value, first Value, seq *Sequence, index int, ctx *Context) (bool, error) {
	return rt.drain(out, NewSequenceFeed(first, seq, index, ctx, 0))
}

// EvalBlock evaluates the contents of a block or group value.  Sequence
// values fetched from a const block are const.
func (rt *Runtime) EvalBlock(out *Value, block Value, ctx *Context) (bool, error) {
	if !block.IsSequence() {
		return false, Errorf(ErrTypeMismatch, "cannot evaluate %v as a block", block.Kind)
	}
	var flags FeedFlags
	if block.Const {
		flags |= FeedConst
	}
	return rt.drain(out, NewSequenceFeed(End(), block.Seq, block.Index, ctx, flags))
}

// EvalVariadic evaluates first followed by every value of stream.  The feed
// inherits FeedConst from the feed of the top frame.
func (rt *Runtime) EvalVariadic(out *Value, first Value, stream Variadic, ctx *Context) (bool, error) {
	return rt.drain(out, NewVariadicFeed(first, stream, ctx, rt.inheritedConst()))
}

// EvalStepVariadic evaluates a single step of first followed by stream.  With
// EvalNoResidue in flags it is an error for values to remain afterward.
func (rt *Runtime) EvalStepVariadic(out *Value, first Value, stream Variadic, ctx *Context, flags EvalFlags) (bool, error) {
	feed := NewVariadicFeed(first, stream, ctx, rt.inheritedConst())
	defer feed.Release()
	if feed.AtEnd() {
		return false, nil
	}
	threw, err := rt.runFrame(NewFrame(feed, out, flags&^EvalToEnd))
	if threw || err != nil {
		return threw, err
	}
	if flags.Has(EvalNoResidue) && !feed.AtEnd() {
		return false, Errorf(ErrResidue, "too many values: %v was not consumed", feed.Value())
	}
	return false, nil
}

// EvalValue evaluates the single value v.  Inert values are produced
// directly.  It is an error for the evaluation to produce nothing.
func (rt *Runtime) EvalValue(out *Value, v Value, ctx *Context) (bool, error) {
	if v.IsInert() {
		v.stale = false
		*out = v
		return false, nil
	}
	*out = End()
	var flags FeedFlags
	if v.Const {
		flags |= FeedConst
	}
	threw, err := rt.drain(out, NewSequenceFeed(v, nil, 0, ctx, flags))
	if threw || err != nil {
		return threw, err
	}
	if out.IsEnd() {
		return false, Errorf(ErrNoValue, "evaluation of %v produced no value", v)
	}
	return false, nil
}

// drain evaluates feed to its end in one frame and releases the feed.
func (rt *Runtime) drain(out *Value, feed *Feed) (bool, error) {
	defer feed.Release()
	if feed.AtEnd() {
		return false, nil
	}
	return rt.runFrame(NewFrame(feed, out, EvalToEnd))
}

// runFrame pushes f and steps it once, or until its feed is exhausted when
// f has EvalToEnd.  The frame is dropped however the evaluation ends.
func (rt *Runtime) runFrame(f *Frame) (threw bool, err error) {
	err = rt.Stack.Push(f)
	if err != nil {
		return false, rt.annotate(rt.Stack.Top(), err)
	}
	f.DSPOrig = rt.Data.Len()
	defer func() {
		if (threw || err != nil) && rt.Data.Len() > f.DSPOrig {
			rt.Data.DropTo(f.DSPOrig)
		}
		rt.Stack.Drop(f)
	}()
	for {
		threw, err = rt.evalCore(f)
		if threw || err != nil {
			return threw, err
		}
		if !f.Flags.Has(EvalToEnd) || f.Feed.AtEnd() {
			return false, nil
		}
		f.DSPOrig = rt.Data.Len()
	}
}

// inheritedConst returns FeedConst if the feed of the top frame is const.
func (rt *Runtime) inheritedConst() FeedFlags {
	top := rt.Stack.Top()
	if top == nil || top.Feed == nil {
		return 0
	}
	return top.Feed.flags & FeedConst
}

func (rt *Runtime) checkTop(f *Frame) {
	if checkInvariants && rt.Stack.Top() != f {
		log.Panicf("step of a frame which is not the top of the stack")
	}
}

func checkf(cond bool, format string, args ...interface{}) {
	if checkInvariants && !cond {
		log.Panicf(format, args...)
	}
}
